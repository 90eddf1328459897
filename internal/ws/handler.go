package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/playmatatu/nineball/internal/auth"
	"github.com/playmatatu/nineball/internal/config"
	"github.com/playmatatu/nineball/internal/game"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origins are checked by middleware.WebSocketCORSCheck.
	CheckOrigin: func(r *http.Request) bool { return true },
}

var (
	errNotYourTurn    = errors.New("not your turn")
	errSpectator      = errors.New("spectators cannot control the match")
	errShotRejected   = errors.New("shot not allowed now")
	errInvalidPayload = errors.New("invalid payload")
	errUnknownType    = errors.New("unknown message type")
)

// AimData is the payload of set_aim.
type AimData struct {
	Angle float64 `json:"angle"`
}

// PowerData is the payload of set_power.
type PowerData struct {
	Power float64 `json:"power"`
}

// ShootData optionally sets aim and power in the same message as the shot.
type ShootData struct {
	Angle *float64 `json:"angle,omitempty"`
	Power *float64 `json:"power,omitempty"`
}

// Handler upgrades match connections and applies their input.
type Handler struct {
	hub *Hub
	mm  *game.MatchManager
	cfg *config.Config
}

// NewHandler creates a websocket handler for the matches in mm.
func NewHandler(hub *Hub, mm *game.MatchManager, cfg *config.Config) *Handler {
	return &Handler{hub: hub, mm: mm, cfg: cfg}
}

// ServeWS handles GET /matches/:id/ws. A valid seat token in the token query
// parameter grants control of that seat; without one the client spectates.
func (h *Handler) ServeWS(c *gin.Context) {
	matchID := c.Param("id")
	m, err := h.mm.Get(matchID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "match not found"})
		return
	}

	seat := 0
	if raw := c.Query("token"); raw != "" {
		claims, err := auth.ParseSeatToken(h.cfg.JWTSecret, raw)
		if err != nil || claims.MatchID != matchID {
			c.JSON(http.StatusForbidden, gin.H{"error": "invalid seat token"})
			return
		}
		seat = claims.Seat
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "component", "ws", "match_id", matchID, "error", err)
		return
	}

	client := &Client{
		conn:    conn,
		matchID: matchID,
		seat:    seat,
		send:    make(chan []byte, sendBuffer),
	}
	if !h.hub.join(client) {
		conn.Close()
		return
	}

	client.sendTo("state", m.Snapshot())

	go client.writePump()
	go h.readPump(client)
}

func (h *Handler) readPump(c *Client) {
	defer func() {
		h.hub.leave(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(4096)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("websocket closed unexpectedly", "component", "ws", "match_id", c.matchID, "seat", c.seat, "error", err)
			}
			return
		}

		var msg WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			c.sendError("malformed message")
			continue
		}

		m, err := h.mm.Get(c.matchID)
		if err != nil {
			c.sendError("match not found")
			return
		}

		reply, err := h.dispatch(context.Background(), m, c.seat, msg)
		if err != nil {
			c.sendError(err.Error())
			continue
		}
		if reply != nil {
			c.sendTo("state", *reply)
		}
	}
}

// dispatch applies one client message to m. Only get_state produces a direct
// reply; every other change reaches clients through the frame loop.
func (h *Handler) dispatch(ctx context.Context, m *game.Match, seat int, msg WSMessage) (*game.Snapshot, error) {
	switch msg.Type {
	case "get_state":
		snap := m.Snapshot()
		return &snap, nil

	case "set_aim":
		var data AimData
		if err := decode(msg.Data, &data); err != nil {
			return nil, err
		}
		if err := requireTurn(m, seat); err != nil {
			return nil, err
		}
		m.SetAimAngle(data.Angle)

	case "set_power":
		var data PowerData
		if err := decode(msg.Data, &data); err != nil {
			return nil, err
		}
		if err := requireTurn(m, seat); err != nil {
			return nil, err
		}
		m.SetShotPower(data.Power)

	case "shoot":
		var data ShootData
		if len(msg.Data) > 0 {
			if err := decode(msg.Data, &data); err != nil {
				return nil, err
			}
		}
		if err := requireTurn(m, seat); err != nil {
			return nil, err
		}
		if data.Angle != nil {
			m.SetAimAngle(*data.Angle)
		}
		if data.Power != nil {
			m.SetShotPower(*data.Power)
		}
		if !m.ExecuteShot() {
			return nil, errShotRejected
		}
		slog.Info("shot taken", "component", "ws", "match_id", m.ID, "seat", seat)

	case "start", "pause", "resume", "restart":
		if seat == 0 {
			return nil, errSpectator
		}
		if !applyLifecycle(m, msg.Type) {
			return nil, fmt.Errorf("%s not allowed while %s", msg.Type, m.Status())
		}
		slog.Info("match lifecycle change", "component", "ws", "match_id", m.ID, "seat", seat, "action", msg.Type)

	default:
		return nil, errUnknownType
	}

	h.mm.TouchActivity(ctx, m.ID)
	return nil, nil
}

func applyLifecycle(m *game.Match, action string) bool {
	switch action {
	case "start":
		return m.Start()
	case "pause":
		return m.Pause()
	case "resume":
		return m.Resume()
	case "restart":
		m.Restart()
		return true
	}
	return false
}

func requireTurn(m *game.Match, seat int) error {
	if seat == 0 {
		return errSpectator
	}
	if seat != m.CurrentPlayer() {
		return errNotYourTurn
	}
	return nil
}

func decode(raw json.RawMessage, v interface{}) error {
	if len(raw) == 0 {
		return errInvalidPayload
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return errInvalidPayload
	}
	return nil
}
