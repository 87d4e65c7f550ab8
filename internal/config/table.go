package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/playmatatu/poolsim/internal/game"
	"gopkg.in/yaml.v3"
)

// rawTable mirrors game.Tuning with optional fields so a file only needs to
// name what it overrides.
type rawTable struct {
	Width        *float64 `yaml:"width"`
	Height       *float64 `yaml:"height"`
	BallRadius   *float64 `yaml:"ball_radius"`
	PocketRadius *float64 `yaml:"pocket_radius"`
	Friction     *float64 `yaml:"friction"`
	MinSpeed     *float64 `yaml:"min_speed"`
	Restitution  *float64 `yaml:"restitution"`
}

// LoadTable reads a YAML table file and merges it over the default tuning.
// An empty path returns the defaults.
func LoadTable(path string) (game.Tuning, error) {
	t := game.DefaultTuning()
	if path == "" {
		return t, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return game.Tuning{}, fmt.Errorf("table config %s not found", path)
		}
		return game.Tuning{}, fmt.Errorf("read table config: %w", err)
	}
	return ParseTable(b)
}

// ParseTable merges YAML bytes over the default tuning and validates the result.
func ParseTable(b []byte) (game.Tuning, error) {
	var raw rawTable
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return game.Tuning{}, fmt.Errorf("parse table config: %w", err)
	}

	t := mergeTable(game.DefaultTuning(), raw)
	if err := t.Validate(); err != nil {
		return game.Tuning{}, fmt.Errorf("invalid table config: %w", err)
	}
	return t, nil
}

func mergeTable(base game.Tuning, o rawTable) game.Tuning {
	if o.Width != nil {
		base.Width = *o.Width
	}
	if o.Height != nil {
		base.Height = *o.Height
	}
	if o.BallRadius != nil {
		base.BallRadius = *o.BallRadius
	}
	if o.PocketRadius != nil {
		base.PocketRadius = *o.PocketRadius
	}
	if o.Friction != nil {
		base.Friction = *o.Friction
	}
	if o.MinSpeed != nil {
		base.MinSpeed = *o.MinSpeed
	}
	if o.Restitution != nil {
		base.Restitution = *o.Restitution
	}
	return base
}
