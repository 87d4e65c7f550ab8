package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/playmatatu/poolsim/internal/auth"
	"github.com/playmatatu/poolsim/internal/game"
)

const testSecret = "test-secret"

func TestDecodeCommand(t *testing.T) {
	cases := []struct {
		msg  string
		want game.Command
	}{
		{`{"type":"select_mode","data":{"mode":"two_player"}}`, game.Command{Type: game.CmdSelectMode, Mode: game.TwoPlayer}},
		{`{"type":"select_difficulty","data":{"difficulty":"hard"}}`, game.Command{Type: game.CmdSelectDifficulty, Difficulty: game.Hard}},
		{`{"type":"begin_aim","data":{"player":2}}`, game.Command{Type: game.CmdBeginAim, Player: 2}},
		{`{"type":"begin_aim"}`, game.Command{Type: game.CmdBeginAim}},
		{`{"type":"set_angle","data":{"angle":1.5}}`, game.Command{Type: game.CmdSetAngle, Angle: 1.5}},
		{`{"type":"aim_at","data":{"x":10,"y":20}}`, game.Command{Type: game.CmdAimAt, X: 10, Y: 20}},
		{`{"type":"commit_shot","data":{"power":7}}`, game.Command{Type: game.CmdCommitShot, Power: 7}},
		{`{"type":"restart"}`, game.Command{Type: game.CmdRestart}},
	}
	for _, c := range cases {
		var msg WSMessage
		if err := json.Unmarshal([]byte(c.msg), &msg); err != nil {
			t.Fatal(err)
		}
		got, err := decodeCommand(msg)
		if err != nil {
			t.Errorf("%s: %v", c.msg, err)
			continue
		}
		if got != c.want {
			t.Errorf("%s: got %+v, want %+v", c.msg, got, c.want)
		}
	}
}

func TestDecodeCommandErrors(t *testing.T) {
	if _, err := decodeCommand(WSMessage{Type: "take_shot"}); err != errUnknownMessage {
		t.Errorf("unknown type err = %v", err)
	}
	if _, err := decodeCommand(WSMessage{Type: "set_angle", Data: json.RawMessage(`{"angle":"left"}`)}); err != errInvalidData {
		t.Errorf("bad data err = %v", err)
	}
}

func TestRelayGameEventWithoutClient(t *testing.T) {
	hub := NewHub()
	payload, _ := json.Marshal(game.GameOverMessage{Type: "game_over", SessionID: "tbl_x"})

	if relayGameEvent(hub, payload) {
		t.Error("relayed to a session nobody is connected to")
	}
	if relayGameEvent(hub, []byte("{broken")) {
		t.Error("relayed a malformed payload")
	}
}

// startServer runs a hub and a websocket route over a fresh manager.
func TestHubStoppedDoesNotBlock(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	cancel()

	select {
	case <-hub.done:
	case <-time.After(2 * time.Second):
		t.Fatal("hub did not stop")
	}

	c := &Client{sessionID: "s1", done: make(chan struct{})}
	finished := make(chan bool)
	go func() {
		hub.Unregister(c)
		finished <- hub.Register(c)
	}()
	select {
	case ok := <-finished:
		if ok {
			t.Error("Register succeeded on a stopped hub")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("send to a stopped hub blocked")
	}
	select {
	case <-c.done:
	default:
		t.Error("client not stopped")
	}
}

func startServer(t *testing.T) (*httptest.Server, *game.GameManager, *Hub) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hub := NewHub()
	go hub.Run(ctx)

	manager := game.NewGameManager(nil, nil, game.DefaultTuning(), 0)
	srv := &Server{Hub: hub, Manager: manager, JWTSecret: testSecret, TickRate: 120}

	r := gin.New()
	r.GET("/sessions/:id/ws", srv.HandleWebSocket)
	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)
	return ts, manager, hub
}

func dial(t *testing.T, ts *httptest.Server, sessionID, token string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/sessions/" + sessionID + "/ws?token=" + token
	return websocket.DefaultDialer.Dial(url, nil)
}

// readUntil reads messages until match returns true or the deadline passes.
func readUntil(t *testing.T, conn *websocket.Conn, match func(map[string]interface{}) bool) map[string]interface{} {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		var m map[string]interface{}
		if err := json.Unmarshal(data, &m); err != nil {
			t.Fatalf("bad frame %s: %v", data, err)
		}
		if match(m) {
			return m
		}
	}
}

func TestWebSocketRejectsBadToken(t *testing.T) {
	ts, manager, _ := startServer(t)
	s, _ := manager.CreateSession("p1", game.OnePlayer, game.Easy)

	other, _ := auth.IssueSessionToken(testSecret, "tbl_other", "p1", time.Hour)
	_, resp, err := dial(t, ts, s.ID, other)
	if err == nil {
		t.Fatal("dial succeeded with a token for another session")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Errorf("response = %v, want 403", resp)
	}
}

func TestWebSocketDrivesSession(t *testing.T) {
	ts, manager, _ := startServer(t)
	s, _ := manager.CreateSession("p1", game.OnePlayer, game.Easy)
	token, _ := auth.IssueSessionToken(testSecret, s.ID, "p1", time.Hour)

	conn, _, err := dial(t, ts, s.ID, token)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	first := readUntil(t, conn, func(m map[string]interface{}) bool { return m["type"] == "frame" })
	if first["status"] != string(game.StatusStart) {
		t.Errorf("first frame status = %v", first["status"])
	}

	for _, msg := range []string{
		`{"type":"restart"}`,
		`{"type":"set_angle","data":{"angle":0}}`,
		`{"type":"begin_aim"}`,
		`{"type":"commit_shot","data":{"power":5}}`,
	} {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
			t.Fatal(err)
		}
	}

	readUntil(t, conn, func(m map[string]interface{}) bool {
		return m["type"] == "achievement"
	})
	readUntil(t, conn, func(m map[string]interface{}) bool {
		return m["type"] == "frame" && m["phase"] == string(game.PhaseSettling)
	})

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"bogus"}`)); err != nil {
		t.Fatal(err)
	}
	errMsg := readUntil(t, conn, func(m map[string]interface{}) bool { return m["type"] == "error" })
	if errMsg["message"] != errUnknownMessage.Error() {
		t.Errorf("error message = %v", errMsg["message"])
	}
}

func TestWebSocketSessionEnded(t *testing.T) {
	ts, manager, _ := startServer(t)
	s, _ := manager.CreateSession("p1", game.OnePlayer, game.Easy)
	token, _ := auth.IssueSessionToken(testSecret, s.ID, "p1", time.Hour)

	conn, _, err := dial(t, ts, s.ID, token)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	readUntil(t, conn, func(m map[string]interface{}) bool { return m["type"] == "frame" })

	if err := manager.EndSession(s.ID); err != nil {
		t.Fatal(err)
	}

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return // closed by the server
		}
		if strings.Contains(string(data), "session_ended") {
			return
		}
	}
}
