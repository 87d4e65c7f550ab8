package game

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// StartIdleWorker ends sessions with no input for longer than idle. With redis
// the candidates come from the session_idle sorted set; without it the live
// sessions are scanned directly.
func StartIdleWorker(ctx context.Context, gm *GameManager, idle, poll time.Duration) {
	if gm == nil || idle <= 0 || poll <= 0 {
		log.Println("[IDLE] Manager or intervals missing; idle worker not started")
		return
	}

	log.Println("[IDLE] Idle worker started")
	go func() {
		ticker := time.NewTicker(poll)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Println("[IDLE] Idle worker stopping")
				return
			case <-ticker.C:
				n := gm.SweepIdle(ctx, time.Now(), idle)
				if n > 0 {
					log.Printf("[IDLE] Ended %d idle sessions (active=%d)", n, gm.ActiveCount())
				}
			}
		}
	}()
}

// SweepIdle ends every session whose last activity is older than now-idle.
// Returns the number of sessions ended.
func (gm *GameManager) SweepIdle(ctx context.Context, now time.Time, idle time.Duration) int {
	cutoff := now.Add(-idle)

	if gm.rdb != nil {
		return gm.sweepIdleRedis(ctx, cutoff)
	}

	ended := 0
	for _, s := range gm.Sessions() {
		if s.LastActivity().Before(cutoff) {
			if err := gm.EndSession(s.ID); err == nil {
				ended++
			}
		}
	}
	return ended
}

func (gm *GameManager) sweepIdleRedis(ctx context.Context, cutoff time.Time) int {
	members, err := gm.rdb.ZRangeByScore(ctx, sessionIdleZSet, &redis.ZRangeBy{Min: "-inf", Max: fmt.Sprintf("%d", cutoff.Unix())}).Result()
	if err != nil {
		log.Printf("[IDLE] Failed to fetch idle sessions: %v", err)
		return 0
	}

	ended := 0
	for _, id := range members {
		// Attempt to remove (race-safe)
		removed, _ := gm.rdb.ZRem(ctx, sessionIdleZSet, id).Result()
		if removed == 0 {
			continue
		}
		s, err := gm.GetSession(id)
		if err != nil {
			continue // ended elsewhere or owned by another instance
		}
		if !s.LastActivity().Before(cutoff) {
			gm.touch(s)
			continue
		}
		log.Printf("[IDLE] Ending session %s due to inactivity", id)
		if err := gm.EndSession(id); err == nil {
			ended++
		}
	}
	return ended
}
