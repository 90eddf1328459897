package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/playmatatu/nineball/internal/game"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	sendBuffer = 256
)

// WSMessage is the envelope for every frame in both directions.
type WSMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Client is one connected seat or spectator.
type Client struct {
	conn    *websocket.Conn
	matchID string
	seat    int
	send    chan []byte
}

// Hub fans match updates out to the clients watching each match.
type Hub struct {
	rooms      map[string]map[*Client]struct{} // matchID -> clients
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
}

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run serves register and unregister requests until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) error {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return nil

		case c := <-h.register:
			h.mu.Lock()
			room, ok := h.rooms[c.matchID]
			if !ok {
				room = make(map[*Client]struct{})
				h.rooms[c.matchID] = room
			}
			room[c] = struct{}{}
			size := len(room)
			h.mu.Unlock()
			slog.Info("client joined", "component", "ws", "match_id", c.matchID, "seat", c.seat, "room_size", size)

		case c := <-h.unregister:
			h.mu.Lock()
			if room, ok := h.rooms[c.matchID]; ok {
				if _, ok := room[c]; ok {
					delete(room, c)
					close(c.send)
					if len(room) == 0 {
						delete(h.rooms, c.matchID)
					}
				}
			}
			h.mu.Unlock()
			slog.Info("client left", "component", "ws", "match_id", c.matchID, "seat", c.seat)
		}
	}
}

// closeAll drops every connection; the pumps notice and exit.
func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, room := range h.rooms {
		for c := range room {
			if c.conn != nil {
				c.conn.Close()
			}
		}
		delete(h.rooms, id)
	}
}

// join registers c unless the hub has stopped.
func (h *Hub) join(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// RoomSize returns how many clients watch a match.
func (h *Hub) RoomSize(matchID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[matchID])
}

// BroadcastToMatch sends a typed message to every client of a match.
func (h *Hub) BroadcastToMatch(matchID, msgType string, payload interface{}) {
	data, err := encode(msgType, payload)
	if err != nil {
		slog.Error("failed to marshal message", "component", "ws", "type", msgType, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.rooms[matchID] {
		select {
		case c.send <- data:
		default:
			slog.Warn("client send buffer full, dropping message", "component", "ws", "match_id", matchID, "seat", c.seat)
		}
	}
}

// BroadcastState implements game.Broadcaster.
func (h *Hub) BroadcastState(matchID string, snap game.Snapshot) {
	h.BroadcastToMatch(matchID, "state", snap)
}

// BroadcastTurn implements game.Broadcaster.
func (h *Hub) BroadcastTurn(matchID string, res game.TurnResult) {
	h.BroadcastToMatch(matchID, "turn_result", res)
}

func encode(msgType string, payload interface{}) ([]byte, error) {
	msg := WSMessage{Type: msgType}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		msg.Data = raw
	}
	return json.Marshal(msg)
}

// sendTo queues a message for one client without blocking.
func (c *Client) sendTo(msgType string, payload interface{}) {
	data, err := encode(msgType, payload)
	if err != nil {
		slog.Error("failed to marshal message", "component", "ws", "type", msgType, "error", err)
		return
	}
	select {
	case c.send <- data:
	default:
		slog.Warn("client send buffer full, dropping message", "component", "ws", "match_id", c.matchID, "seat", c.seat)
	}
}

func (c *Client) sendError(message string) {
	c.sendTo("error", map[string]string{"message": message})
}

// writePump writes messages to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				slog.Debug("websocket write failed", "component", "ws", "match_id", c.matchID, "error", err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
