package achievements

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/jmoiron/sqlx"
	"github.com/playmatatu/poolsim/internal/models"
	"github.com/redis/go-redis/v9"
)

// Store persists unlock records per profile.
type Store interface {
	Load(ctx context.Context, profile string) ([]Record, error)
	Save(ctx context.Context, profile string, records []Record) error
	Reset(ctx context.Context, profile string) error
}

// NewStore picks a store by kind: "file", "redis" or "postgres".
func NewStore(kind, path string, db *sqlx.DB, rdb *redis.Client) (Store, error) {
	switch kind {
	case "", "file":
		return NewFileStore(path), nil
	case "redis":
		if rdb == nil {
			return nil, errors.New("redis achievement store needs REDIS_URL")
		}
		return NewRedisStore(rdb), nil
	case "postgres":
		if db == nil {
			return nil, errors.New("postgres achievement store needs DATABASE_URL")
		}
		return NewPostgresStore(db), nil
	}
	return nil, fmt.Errorf("unknown achievement store %q", kind)
}

// FileStore keeps every profile in one JSON document keyed by profile.
type FileStore struct {
	path string
	mu   sync.Mutex
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Load(_ context.Context, profile string) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := s.read()
	if err != nil {
		return nil, err
	}
	return all[profile], nil
}

func (s *FileStore) Save(_ context.Context, profile string, records []Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := s.read()
	if err != nil {
		return err
	}
	all[profile] = records
	return s.write(all)
}

func (s *FileStore) Reset(_ context.Context, profile string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := s.read()
	if err != nil {
		return err
	}
	delete(all, profile)
	return s.write(all)
}

func (s *FileStore) read() (map[string][]Record, error) {
	all := make(map[string][]Record)
	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return all, nil
		}
		return nil, fmt.Errorf("read achievements: %w", err)
	}
	if len(b) == 0 {
		return all, nil
	}
	if err := json.Unmarshal(b, &all); err != nil {
		return nil, fmt.Errorf("parse achievements: %w", err)
	}
	return all, nil
}

// write replaces the file atomically through a temp file in the same dir.
func (s *FileStore) write(all map[string][]Record) error {
	b, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return err
	}
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".achievements-*")
	if err != nil {
		return fmt.Errorf("write achievements: %w", err)
	}
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write achievements: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

// RedisStore keeps one hash per profile: field = achievement id, value = "1"
// when unlocked.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func redisKey(profile string) string {
	return "achievements:" + profile
}

func (s *RedisStore) Load(ctx context.Context, profile string) ([]Record, error) {
	fields, err := s.rdb.HGetAll(ctx, redisKey(profile)).Result()
	if err != nil {
		return nil, err
	}
	records := make([]Record, 0, len(fields))
	for _, d := range catalogue {
		if v, ok := fields[d.ID]; ok {
			records = append(records, Record{ID: d.ID, Unlocked: v == "1"})
		}
	}
	return records, nil
}

func (s *RedisStore) Save(ctx context.Context, profile string, records []Record) error {
	values := make(map[string]interface{}, len(records))
	for _, r := range records {
		v := "0"
		if r.Unlocked {
			v = "1"
		}
		values[r.ID] = v
	}
	if len(values) == 0 {
		return nil
	}
	return s.rdb.HSet(ctx, redisKey(profile), values).Err()
}

func (s *RedisStore) Reset(ctx context.Context, profile string) error {
	return s.rdb.Del(ctx, redisKey(profile)).Err()
}

// PostgresStore keeps one row per profile and achievement.
type PostgresStore struct {
	db *sqlx.DB
}

func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Load(ctx context.Context, profile string) ([]Record, error) {
	var rows []models.Achievement
	err := s.db.SelectContext(ctx, &rows, `
		SELECT profile_id, achievement_id, unlocked, unlocked_at
		FROM achievements
		WHERE profile_id = $1`, profile)
	if err != nil {
		return nil, err
	}
	records := make([]Record, len(rows))
	for i, row := range rows {
		records[i] = Record{ID: row.AchievementID, Unlocked: row.Unlocked}
	}
	return records, nil
}

func (s *PostgresStore) Save(ctx context.Context, profile string, records []Record) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, r := range records {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO achievements (profile_id, achievement_id, unlocked, unlocked_at)
			VALUES ($1, $2, $3, CASE WHEN $3::boolean THEN NOW() END)
			ON CONFLICT (profile_id, achievement_id) DO UPDATE SET
				unlocked = EXCLUDED.unlocked,
				unlocked_at = COALESCE(achievements.unlocked_at, EXCLUDED.unlocked_at)
		`, profile, r.ID, r.Unlocked)
		if err != nil {
			return fmt.Errorf("save achievement %s: %w", r.ID, err)
		}
	}
	return tx.Commit()
}

func (s *PostgresStore) Reset(ctx context.Context, profile string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM achievements WHERE profile_id = $1`, profile)
	return err
}
