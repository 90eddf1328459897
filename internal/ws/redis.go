package ws

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/playmatatu/nineball/internal/game"
	"github.com/redis/go-redis/v9"
)

// RunEventSubscriber relays match events published by any instance to the
// local clients of that match. It blocks until ctx is cancelled.
func RunEventSubscriber(ctx context.Context, rdb *redis.Client, hub *Hub) error {
	if rdb == nil {
		slog.Info("redis not configured; event subscriber disabled", "component", "ws")
		<-ctx.Done()
		return nil
	}

	pubsub := rdb.Subscribe(ctx, game.EventsChannel)
	defer pubsub.Close()

	slog.Info("event subscriber started", "component", "ws", "channel", game.EventsChannel)

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			hub.relayEvent(msg.Payload)
		}
	}
}

func (h *Hub) relayEvent(payload string) {
	var ev game.MatchEvent
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		slog.Warn("invalid event payload", "component", "ws", "error", err)
		return
	}
	if ev.MatchID == "" || ev.Type == "" {
		return
	}

	slog.Debug("relaying match event", "component", "ws", "type", ev.Type, "match_id", ev.MatchID, "room_size", h.RoomSize(ev.MatchID))
	h.BroadcastToMatch(ev.MatchID, ev.Type, ev)
}
