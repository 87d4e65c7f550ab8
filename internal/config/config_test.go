package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/playmatatu/poolsim/internal/game"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_PORT", "")
	t.Setenv("TICK_RATE", "")
	t.Setenv("ACHIEVEMENT_STORE", "")

	cfg := Load()
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.TickRate != 60 {
		t.Errorf("TickRate = %d, want 60", cfg.TickRate)
	}
	if cfg.AchievementStore != "file" {
		t.Errorf("AchievementStore = %q, want file", cfg.AchievementStore)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("TICK_RATE", "30")
	t.Setenv("SESSION_IDLE_MINUTES", "not-a-number")
	t.Setenv("MIGRATE_ON_START", "false")
	t.Setenv("ADMIN_ALLOWED_IPS", "127.0.0.1, ,10.0.0.2")

	cfg := Load()
	if cfg.TickRate != 30 {
		t.Errorf("TickRate = %d, want 30", cfg.TickRate)
	}
	if cfg.SessionIdleMinutes != 30 {
		t.Errorf("SessionIdleMinutes = %d, want default 30 on bad input", cfg.SessionIdleMinutes)
	}
	if cfg.MigrateOnStart {
		t.Error("MigrateOnStart should be false")
	}
	if len(cfg.AdminAllowedIPs) != 2 || cfg.AdminAllowedIPs[1] != "10.0.0.2" {
		t.Errorf("AdminAllowedIPs = %v", cfg.AdminAllowedIPs)
	}
}

func TestLoadTableEmptyPath(t *testing.T) {
	tn, err := LoadTable("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tn != game.DefaultTuning() {
		t.Errorf("got %+v, want defaults", tn)
	}
}

func TestLoadTableMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "table.yaml")
	if err := os.WriteFile(path, []byte("width: 1000\nfriction: 0.98\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	tn, err := LoadTable(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tn.Width != 1000 || tn.Friction != 0.98 {
		t.Errorf("overrides not applied: %+v", tn)
	}
	if tn.Height != game.DefaultHeight || tn.BallRadius != game.BallRadius {
		t.Errorf("defaults not kept: %+v", tn)
	}
}

func TestParseTableRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"friction":    "friction: 1.5\n",
		"restitution": "restitution: -0.1\n",
		"narrow":      "width: 100\n",
		"syntax":      "width: [\n",
	}
	for name, body := range cases {
		if _, err := ParseTable([]byte(body)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestLoadTableMissingFile(t *testing.T) {
	if _, err := LoadTable(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
