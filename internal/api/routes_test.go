package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/poolsim/internal/achievements"
	"github.com/playmatatu/poolsim/internal/admin"
	"github.com/playmatatu/poolsim/internal/auth"
	"github.com/playmatatu/poolsim/internal/config"
	"github.com/playmatatu/poolsim/internal/game"
	"github.com/playmatatu/poolsim/internal/ws"
)

const adminToken = "let-me-in"

type testEnv struct {
	router  *gin.Engine
	cfg     *config.Config
	manager *game.GameManager
	store   *achievements.FileStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hash, err := admin.HashToken(adminToken)
	if err != nil {
		t.Fatal(err)
	}
	cfg := &config.Config{
		Environment:        "development",
		JWTSecret:          "test-secret",
		SessionTokenMin:    60,
		SessionIdleMinutes: 30,
		MaxSessions:        2,
		TickRate:           60,
		AdminTokenHash:     hash,
	}
	manager := game.NewGameManager(nil, nil, game.DefaultTuning(), cfg.MaxSessions)
	store := achievements.NewFileStore(filepath.Join(t.TempDir(), "achievements.json"))
	hub := ws.NewHub()

	r := gin.New()
	SetupRoutes(r, Deps{
		Config:       cfg,
		Manager:      manager,
		Achievements: store,
		WS:           &ws.Server{Hub: hub, Manager: manager, Achievements: store, JWTSecret: cfg.JWTSecret, TickRate: cfg.TickRate},
	})
	return &testEnv{router: r, cfg: cfg, manager: manager, store: store}
}

func (e *testEnv) do(method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &m); err != nil {
		t.Fatalf("bad body %q: %v", w.Body.String(), err)
	}
	return m
}

func TestHealth(t *testing.T) {
	e := newTestEnv(t)
	w := e.do(http.MethodGet, "/api/v1/health", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	body := decode(t, w)
	if body["status"] != "ok" || body["database"] != "disabled" || body["redis"] != "disabled" {
		t.Errorf("body = %v", body)
	}
	if body["active_sessions"] != float64(0) {
		t.Errorf("active_sessions = %v", body["active_sessions"])
	}
}

func TestConfig(t *testing.T) {
	e := newTestEnv(t)
	body := decode(t, e.do(http.MethodGet, "/api/v1/config", nil, nil))

	if body["tick_rate"] != float64(60) {
		t.Errorf("tick_rate = %v", body["tick_rate"])
	}
	table := body["table"].(map[string]interface{})
	if table["width"] != float64(800) || table["height"] != float64(400) {
		t.Errorf("table = %v", table)
	}
	if got := len(body["achievements"].([]interface{})); got != 5 {
		t.Errorf("achievements = %d, want 5", got)
	}
}

func TestCreateAndFetchSession(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(http.MethodPost, "/api/v1/sessions", map[string]string{
		"profile_id": "Alice_1",
		"mode":       "two_player",
		"difficulty": "hard",
	}, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}
	body := decode(t, w)
	id := body["session_id"].(string)
	if body["profile_id"] != "alice_1" {
		t.Errorf("profile_id = %v", body["profile_id"])
	}

	claims, err := auth.ParseSessionToken(e.cfg.JWTSecret, body["token"].(string))
	if err != nil {
		t.Fatal(err)
	}
	if claims.SessionID != id || claims.ProfileID != "alice_1" {
		t.Errorf("claims = %+v", claims)
	}

	state := decode(t, e.do(http.MethodGet, "/api/v1/sessions/"+id, nil, nil))
	if state["status"] != string(game.StatusStart) || state["mode"] != "two_player" || state["difficulty"] != "hard" {
		t.Errorf("state = %v", state)
	}
}

func TestCreateSessionDefaultsToGuest(t *testing.T) {
	e := newTestEnv(t)
	w := e.do(http.MethodPost, "/api/v1/sessions", nil, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}
	body := decode(t, w)
	state := body["state"].(map[string]interface{})
	if state["mode"] != "one_player" || state["difficulty"] != "easy" {
		t.Errorf("state = %v", state)
	}
	if p, _ := body["profile_id"].(string); len(p) < len("guest_") || p[:6] != "guest_" {
		t.Errorf("profile_id = %v", body["profile_id"])
	}
}

func TestCreateSessionRejectsBadInput(t *testing.T) {
	e := newTestEnv(t)
	bodies := []map[string]string{
		{"mode": "three_player"},
		{"difficulty": "insane"},
		{"profile_id": "no spaces please"},
	}
	for _, b := range bodies {
		if w := e.do(http.MethodPost, "/api/v1/sessions", b, nil); w.Code != http.StatusBadRequest {
			t.Errorf("%v: status = %d, want 400", b, w.Code)
		}
	}
}

func TestSessionLimit(t *testing.T) {
	e := newTestEnv(t)
	for i := 0; i < e.cfg.MaxSessions; i++ {
		if w := e.do(http.MethodPost, "/api/v1/sessions", nil, nil); w.Code != http.StatusCreated {
			t.Fatalf("session %d: status = %d", i, w.Code)
		}
	}
	if w := e.do(http.MethodPost, "/api/v1/sessions", nil, nil); w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
}

func TestUnknownSession(t *testing.T) {
	e := newTestEnv(t)
	if w := e.do(http.MethodGet, "/api/v1/sessions/tbl_missing", nil, nil); w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestEndSessionNeedsToken(t *testing.T) {
	e := newTestEnv(t)
	body := decode(t, e.do(http.MethodPost, "/api/v1/sessions", nil, nil))
	id := body["session_id"].(string)
	token := body["token"].(string)

	if w := e.do(http.MethodDelete, "/api/v1/sessions/"+id, nil, nil); w.Code != http.StatusForbidden {
		t.Errorf("without token: status = %d, want 403", w.Code)
	}
	w := e.do(http.MethodDelete, "/api/v1/sessions/"+id, nil, map[string]string{"Authorization": "Bearer " + token})
	if w.Code != http.StatusOK {
		t.Fatalf("with token: status = %d", w.Code)
	}
	if e.manager.ActiveCount() != 0 {
		t.Errorf("session still live")
	}
}

func TestWebSocketRouteRequiresToken(t *testing.T) {
	e := newTestEnv(t)
	body := decode(t, e.do(http.MethodPost, "/api/v1/sessions", nil, nil))
	id := body["session_id"].(string)

	if w := e.do(http.MethodGet, "/api/v1/sessions/"+id+"/ws", nil, nil); w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestProfileResultsWithoutDatabase(t *testing.T) {
	e := newTestEnv(t)
	body := decode(t, e.do(http.MethodGet, "/api/v1/profiles/alice/results", nil, nil))
	if results := body["results"].([]interface{}); len(results) != 0 {
		t.Errorf("results = %v", results)
	}
}

func TestAchievementsAndAdminReset(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	tracker := achievements.NewTracker(ctx, e.store, "alice")
	tracker.Unlock(ctx, string(game.EventFirstShot))

	body := decode(t, e.do(http.MethodGet, "/api/v1/achievements/alice", nil, nil))
	if body["unlocked"] != float64(1) || body["total"] != float64(5) {
		t.Fatalf("body = %v", body)
	}

	path := "/api/v1/admin/achievements/alice"
	if w := e.do(http.MethodDelete, path, nil, nil); w.Code != http.StatusUnauthorized {
		t.Errorf("no token: status = %d, want 401", w.Code)
	}
	if w := e.do(http.MethodDelete, path, nil, map[string]string{"X-Admin-Token": "nope"}); w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token: status = %d, want 401", w.Code)
	}
	if w := e.do(http.MethodDelete, path, nil, map[string]string{"X-Admin-Token": adminToken}); w.Code != http.StatusOK {
		t.Fatalf("reset: status = %d body = %s", w.Code, w.Body.String())
	}

	body = decode(t, e.do(http.MethodGet, "/api/v1/achievements/alice", nil, nil))
	if body["unlocked"] != float64(0) {
		t.Errorf("unlocked after reset = %v", body["unlocked"])
	}
}

func TestAdminSessions(t *testing.T) {
	e := newTestEnv(t)
	e.do(http.MethodPost, "/api/v1/sessions", map[string]string{"profile_id": "bob"}, nil)
	hdr := map[string]string{"X-Admin-Token": adminToken}

	body := decode(t, e.do(http.MethodGet, "/api/v1/admin/sessions", nil, hdr))
	list := body["sessions"].([]interface{})
	if len(list) != 1 {
		t.Fatalf("sessions = %v", list)
	}
	entry := list[0].(map[string]interface{})
	if entry["profile_id"] != "bob" {
		t.Errorf("entry = %v", entry)
	}

	id := entry["id"].(string)
	if w := e.do(http.MethodDelete, "/api/v1/admin/sessions/"+id, nil, hdr); w.Code != http.StatusOK {
		t.Errorf("end: status = %d", w.Code)
	}
	if w := e.do(http.MethodDelete, "/api/v1/admin/sessions/"+id, nil, hdr); w.Code != http.StatusNotFound {
		t.Errorf("end twice: status = %d, want 404", w.Code)
	}
}

func TestAdminDatabaseRoutesWithoutDatabase(t *testing.T) {
	e := newTestEnv(t)
	hdr := map[string]string{"X-Admin-Token": adminToken}
	for _, path := range []string{"/api/v1/admin/audit", "/api/v1/admin/config"} {
		if w := e.do(http.MethodGet, path, nil, hdr); w.Code != http.StatusServiceUnavailable {
			t.Errorf("%s: status = %d, want 503", path, w.Code)
		}
	}
}

func TestCORSPreflight(t *testing.T) {
	e := newTestEnv(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/sessions", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}
