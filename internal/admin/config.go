package admin

import (
	"fmt"
	"log"
	"strconv"

	"github.com/jmoiron/sqlx"
	"github.com/playmatatu/poolsim/internal/config"
	"github.com/playmatatu/poolsim/internal/models"
)

// GetAllRuntimeConfig returns all runtime config entries
func GetAllRuntimeConfig(db *sqlx.DB) ([]models.RuntimeConfig, error) {
	configs := []models.RuntimeConfig{}
	err := db.Select(&configs, `
		SELECT key, value, value_type, description, updated_by, updated_at
		FROM runtime_config
		ORDER BY key
	`)
	return configs, err
}

// GetRuntimeConfigValue returns a single runtime config value
func GetRuntimeConfigValue(db *sqlx.DB, key string) (*models.RuntimeConfig, error) {
	var cfg models.RuntimeConfig
	err := db.Get(&cfg, `SELECT key, value, value_type, description, updated_by, updated_at FROM runtime_config WHERE key=$1`, key)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ValidateValue checks a raw value against a runtime config type.
func ValidateValue(valueType, value string) error {
	switch valueType {
	case "int":
		if _, err := strconv.Atoi(value); err != nil {
			return fmt.Errorf("invalid integer value: %s", value)
		}
	case "float":
		if _, err := strconv.ParseFloat(value, 64); err != nil {
			return fmt.Errorf("invalid float value: %s", value)
		}
	case "bool":
		if value != "true" && value != "false" {
			return fmt.Errorf("invalid boolean value: %s (must be 'true' or 'false')", value)
		}
	}
	return nil
}

// UpdateRuntimeConfigValue updates a single runtime config value
func UpdateRuntimeConfigValue(db *sqlx.DB, key, value, adminName string) error {
	existing, err := GetRuntimeConfigValue(db, key)
	if err != nil {
		return fmt.Errorf("config key not found: %s", key)
	}
	if err := ValidateValue(existing.ValueType, value); err != nil {
		return err
	}

	_, err = db.Exec(`
		UPDATE runtime_config SET value=$1, updated_by=$2, updated_at=NOW() WHERE key=$3
	`, value, adminName, key)
	return err
}

// ApplyRuntimeConfig applies overrides to the Config struct. Unknown keys and
// malformed values are skipped.
func ApplyRuntimeConfig(configs []models.RuntimeConfig, cfg *config.Config) int {
	applied := 0
	for _, c := range configs {
		v, err := strconv.Atoi(c.Value)
		if err != nil || v <= 0 {
			continue
		}
		switch c.Key {
		case "session_idle_minutes":
			cfg.SessionIdleMinutes = v
		case "max_sessions":
			cfg.MaxSessions = v
		case "tick_rate":
			cfg.TickRate = v
		default:
			continue
		}
		applied++
	}
	return applied
}

// ApplyRuntimeConfigToConfig loads runtime config from DB and applies overrides to the Config struct
func ApplyRuntimeConfigToConfig(db *sqlx.DB, cfg *config.Config) error {
	configs, err := GetAllRuntimeConfig(db)
	if err != nil {
		return err
	}

	n := ApplyRuntimeConfig(configs, cfg)
	log.Printf("[CONFIG] Applied %d runtime config overrides from database", n)
	return nil
}
