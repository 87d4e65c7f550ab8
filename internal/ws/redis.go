package ws

import (
	"context"
	"encoding/json"
	"log"

	"github.com/playmatatu/poolsim/internal/game"
	"github.com/redis/go-redis/v9"
)

// StartGameEventSubscriber relays game_over results published on the
// game_events channel to the client of that session, whichever instance
// recorded them.
func StartGameEventSubscriber(ctx context.Context, rdb *redis.Client, hub *Hub) {
	if rdb == nil || hub == nil {
		log.Println("[WS] Redis client not set; game event subscriber not started")
		return
	}

	pubsub := rdb.Subscribe(ctx, game.GameEventsChannel)
	ch := pubsub.Channel()
	go func() {
		defer pubsub.Close()
		log.Println("[WS] game_events subscriber started")
		for {
			select {
			case <-ctx.Done():
				log.Println("[WS] game_events subscriber stopping")
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				relayGameEvent(hub, []byte(msg.Payload))
			}
		}
	}()
}

// relayGameEvent forwards one published payload. Returns false when it was
// malformed or nobody is connected to the session.
func relayGameEvent(hub *Hub, payload []byte) bool {
	var msg game.GameOverMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		log.Printf("[WS] invalid event payload: %v", err)
		return false
	}
	if msg.Type != "game_over" || msg.SessionID == "" {
		return false
	}

	log.Printf("[WS] event received: type=%s session=%s", msg.Type, msg.SessionID)
	return hub.SendToSession(msg.SessionID, map[string]interface{}{
		"type":   "result",
		"result": msg.Result,
	})
}
