package game

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrTooManySessions = errors.New("too many active sessions")
)

// Session is a Game hosted by the server. The mutex serialises commands
// arriving from handlers with the loop that ticks the game.
type Session struct {
	ID        string
	ProfileID string
	CreatedAt time.Time

	mu           sync.Mutex
	game         *Game
	lastActivity time.Time
	recorded     bool
}

// Submit queues a command for the next tick.
func (s *Session) Submit(cmd Command) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.game.Enqueue(cmd)
	s.lastActivity = time.Now()
}

// Advance runs one tick and returns the resulting frame plus any events.
func (s *Session) Advance() (Snapshot, []Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.game.Tick()
	return s.game.Snapshot(), s.game.DrainEvents()
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game.Snapshot()
}

func (s *Session) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

// markRecorded returns true the first time it is called after a game over,
// so a finished game is written to history once. A restart clears it.
func (s *Session) markRecorded(status GameStatus) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status != StatusGameOver {
		s.recorded = false
		return false
	}
	if s.recorded {
		return false
	}
	s.recorded = true
	return true
}

// GameManager owns every live session.
type GameManager struct {
	sessions    map[string]*Session
	rdb         *redis.Client
	db          *sqlx.DB
	tuning      Tuning
	maxSessions int
	mu          sync.RWMutex
}

// NewGameManager creates a manager. db and rdb may be nil; persistence is
// then skipped.
func NewGameManager(db *sqlx.DB, rdb *redis.Client, tuning Tuning, maxSessions int) *GameManager {
	return &GameManager{
		sessions:    make(map[string]*Session),
		rdb:         rdb,
		db:          db,
		tuning:      tuning,
		maxSessions: maxSessions,
	}
}

// CreateSession creates a game at the start menu with the requested settings.
func (gm *GameManager) CreateSession(profileID string, mode PlayerMode, difficulty Difficulty) (*Session, error) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if gm.maxSessions > 0 && len(gm.sessions) >= gm.maxSessions {
		return nil, ErrTooManySessions
	}

	id := generateSessionID()
	now := time.Now()
	s := &Session{
		ID:        id,
		ProfileID: profileID,
		CreatedAt: now,
		game: NewGame(id, Options{
			Tuning:     gm.tuning,
			Mode:       mode,
			Difficulty: difficulty,
		}),
		lastActivity: now,
	}
	gm.sessions[id] = s
	gm.touch(s)

	log.Printf("[SESSION] Created %s for profile %s (mode=%s difficulty=%s)", id, profileID, s.game.Mode(), s.game.Difficulty())
	return s, nil
}

func (gm *GameManager) GetSession(id string) (*Session, error) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()
	s, ok := gm.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// EndSession removes a session and persists its last frame.
func (gm *GameManager) EndSession(id string) error {
	gm.mu.Lock()
	s, ok := gm.sessions[id]
	if ok {
		delete(gm.sessions, id)
	}
	gm.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	if err := gm.SaveSnapshot(s.Snapshot()); err != nil {
		log.Printf("[REDIS] Failed to save final snapshot for %s: %v", id, err)
	}
	gm.untrack(id)
	log.Printf("[SESSION] Ended %s", id)
	return nil
}

func (gm *GameManager) ActiveCount() int {
	gm.mu.RLock()
	defer gm.mu.RUnlock()
	return len(gm.sessions)
}

// Sessions returns the live sessions in no particular order.
func (gm *GameManager) Sessions() []*Session {
	gm.mu.RLock()
	defer gm.mu.RUnlock()
	out := make([]*Session, 0, len(gm.sessions))
	for _, s := range gm.sessions {
		out = append(out, s)
	}
	return out
}

// Submit queues a command on a session and records the activity for the
// idle worker.
func (gm *GameManager) Submit(s *Session, cmd Command) {
	s.Submit(cmd)
	gm.touch(s)
}

func (gm *GameManager) Tuning() Tuning {
	return gm.tuning
}

// SetMaxSessions changes the session limit. Live sessions above a lowered
// limit are kept; only new sessions are refused.
func (gm *GameManager) SetMaxSessions(n int) {
	gm.mu.Lock()
	gm.maxSessions = n
	gm.mu.Unlock()
}

func generateSessionID() string {
	return "tbl_" + generateToken(8)
}

func generateToken(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return hex.EncodeToString([]byte(time.Now().Format("150405.000000")))[:n*2]
	}
	return hex.EncodeToString(b)
}
