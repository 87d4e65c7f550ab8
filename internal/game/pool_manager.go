package game

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/playmatatu/poolsim/internal/models"
	"github.com/redis/go-redis/v9"
)

const (
	snapshotTTL     = time.Hour
	sessionIdleZSet = "session_idle"

	// GameEventsChannel is the redis channel finished games are published on.
	GameEventsChannel = "game_events"
)

// GameOverMessage is published on GameEventsChannel when a game ends.
type GameOverMessage struct {
	Type      string            `json:"type"`
	SessionID string            `json:"session_id"`
	ProfileID string            `json:"profile_id"`
	Result    models.GameResult `json:"result"`
}

func snapshotKey(id string) string {
	return fmt.Sprintf("session:%s:state", id)
}

// SaveSnapshot caches a frame in redis so it can be served after the
// session is gone.
func (gm *GameManager) SaveSnapshot(s Snapshot) error {
	if gm.rdb == nil {
		return nil
	}
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return gm.rdb.SetEx(context.Background(), snapshotKey(s.ID), data, snapshotTTL).Err()
}

// LoadSnapshot returns the cached frame for a session that is no longer live.
func (gm *GameManager) LoadSnapshot(ctx context.Context, id string) (*Snapshot, error) {
	if gm.rdb == nil {
		return nil, ErrSessionNotFound
	}
	data, err := gm.rdb.Get(ctx, snapshotKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// FindSnapshot serves a live session's frame, falling back to the cache.
func (gm *GameManager) FindSnapshot(ctx context.Context, id string) (*Snapshot, error) {
	if s, err := gm.GetSession(id); err == nil {
		snap := s.Snapshot()
		return &snap, nil
	}
	return gm.LoadSnapshot(ctx, id)
}

// ResultFor builds the history row for a finished frame.
func ResultFor(s *Session, snap Snapshot) models.GameResult {
	return models.GameResult{
		SessionID:    s.ID,
		ProfileID:    s.ProfileID,
		Mode:         string(snap.Mode),
		Difficulty:   string(snap.Difficulty),
		Player1Score: snap.Player1Score,
		Player2Score: snap.Player2Score,
		Shots:        snap.Shots,
		Reason:       snap.Reason,
		Won:          snap.Reason == ReasonWin,
		Scratched:    snap.Scratched,
		DurationMs:   int64(snap.ElapsedSeconds * 1000),
		CreatedAt:    time.Now(),
	}
}

// RecordResult persists a finished game once: a game_results row and a
// game_over message on the events channel. Calls for frames that are not
// game over, or for a game already recorded, do nothing.
func (gm *GameManager) RecordResult(ctx context.Context, s *Session, snap Snapshot) {
	if !s.markRecorded(snap.Status) {
		return
	}
	result := ResultFor(s, snap)

	if gm.db != nil {
		err := gm.db.QueryRowxContext(ctx, `
			INSERT INTO game_results (session_id, profile_id, mode, difficulty, player1_score, player2_score, shots, reason, won, scratched, duration_ms, created_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
			RETURNING id`,
			result.SessionID, result.ProfileID, result.Mode, result.Difficulty,
			result.Player1Score, result.Player2Score, result.Shots, result.Reason,
			result.Won, result.Scratched, result.DurationMs, result.CreatedAt,
		).Scan(&result.ID)
		if err != nil {
			log.Printf("[DB] Failed to record result for session %s: %v", s.ID, err)
		}
	}

	if err := gm.SaveSnapshot(snap); err != nil {
		log.Printf("[REDIS] Failed to save snapshot for session %s: %v", s.ID, err)
	}

	if gm.rdb != nil {
		msg := GameOverMessage{Type: "game_over", SessionID: s.ID, ProfileID: s.ProfileID, Result: result}
		b, _ := json.Marshal(msg)
		if n, err := gm.rdb.Publish(ctx, GameEventsChannel, b).Result(); err != nil {
			log.Printf("[REDIS] publish game_over failed: session=%s err=%v", s.ID, err)
		} else {
			log.Printf("[REDIS] published game_over: session=%s subscribers=%d", s.ID, n)
		}
	}
}

// RecentResults returns a profile's latest finished games, newest first.
func (gm *GameManager) RecentResults(ctx context.Context, profileID string, limit int) ([]models.GameResult, error) {
	if gm.db == nil {
		return []models.GameResult{}, nil
	}
	results := []models.GameResult{}
	err := gm.db.SelectContext(ctx, &results, `
		SELECT id, session_id, profile_id, mode, difficulty, player1_score, player2_score, shots, reason, won, scratched, duration_ms, created_at
		FROM game_results
		WHERE profile_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, profileID, limit)
	return results, err
}

// touch scores the session in the idle set with its last activity time.
func (gm *GameManager) touch(s *Session) {
	if gm.rdb == nil {
		return
	}
	score := float64(s.lastActivityUnix())
	if err := gm.rdb.ZAdd(context.Background(), sessionIdleZSet, redis.Z{Score: score, Member: s.ID}).Err(); err != nil {
		log.Printf("[REDIS] Failed to track idle for %s: %v", s.ID, err)
	}
}

func (gm *GameManager) untrack(id string) {
	if gm.rdb == nil {
		return
	}
	gm.rdb.ZRem(context.Background(), sessionIdleZSet, id)
}

func (s *Session) lastActivityUnix() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity.Unix()
}
