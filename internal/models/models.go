package models

import (
	"database/sql"
	"time"

	"github.com/lib/pq"
)

// GameResult is one finished game, written when a session reaches game over.
type GameResult struct {
	ID           int       `db:"id" json:"id"`
	SessionID    string    `db:"session_id" json:"session_id"`
	ProfileID    string    `db:"profile_id" json:"profile_id"`
	Mode         string    `db:"mode" json:"mode"`
	Difficulty   string    `db:"difficulty" json:"difficulty"`
	Player1Score int       `db:"player1_score" json:"player1_score"`
	Player2Score int       `db:"player2_score" json:"player2_score"`
	Shots        int       `db:"shots" json:"shots"`
	Reason       string    `db:"reason" json:"reason"`
	Won          bool      `db:"won" json:"won"`
	Scratched    bool      `db:"scratched" json:"scratched"`
	DurationMs   int64     `db:"duration_ms" json:"duration_ms"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Achievement is a persisted unlock record for one profile.
type Achievement struct {
	ProfileID     string       `db:"profile_id" json:"profile_id"`
	AchievementID string       `db:"achievement_id" json:"id"`
	Unlocked      bool         `db:"unlocked" json:"unlocked"`
	UnlockedAt    sql.NullTime `db:"unlocked_at" json:"unlocked_at,omitempty"`
}

// AdminAccount holds a bcrypt hashed admin token and the IPs it may be used from.
type AdminAccount struct {
	Name        string         `db:"name" json:"name"`
	DisplayName sql.NullString `db:"display_name" json:"display_name,omitempty"`
	TokenHash   string         `db:"token_hash" json:"-"`
	Roles       pq.StringArray `db:"roles" json:"roles"`
	AllowedIPs  pq.StringArray `db:"allowed_ips" json:"allowed_ips"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}

// AdminAudit records an admin action.
type AdminAudit struct {
	ID        int       `db:"id" json:"id"`
	AdminName string    `db:"admin_name" json:"admin_name"`
	IP        string    `db:"ip" json:"ip"`
	Route     string    `db:"route" json:"route"`
	Action    string    `db:"action" json:"action"`
	Details   []byte    `db:"details" json:"details"`
	Success   bool      `db:"success" json:"success"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// RuntimeConfig is an operator override applied over the env configuration.
type RuntimeConfig struct {
	Key         string         `db:"key" json:"key"`
	Value       string         `db:"value" json:"value"`
	ValueType   string         `db:"value_type" json:"value_type"`
	Description sql.NullString `db:"description" json:"description,omitempty"`
	UpdatedBy   sql.NullString `db:"updated_by" json:"updated_by,omitempty"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}
