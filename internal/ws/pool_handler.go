package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/playmatatu/poolsim/internal/achievements"
	"github.com/playmatatu/poolsim/internal/auth"
	"github.com/playmatatu/poolsim/internal/game"
)

// idle frames are still sent this often so the client sees the clock move
const heartbeatFrames = 30

// Inbound message data.
type SelectModeData struct {
	Mode game.PlayerMode `json:"mode"`
}

type SelectDifficultyData struct {
	Difficulty game.Difficulty `json:"difficulty"`
}

type BeginAimData struct {
	Player int `json:"player"`
}

type SetAngleData struct {
	Angle float64 `json:"angle"`
}

type AimAtData struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type CommitShotData struct {
	Power float64 `json:"power"`
}

// FrameMessage is one rendered frame: the full snapshot plus the unlock toast.
type FrameMessage struct {
	Type string `json:"type"`
	game.Snapshot
	Toast *achievements.Toast `json:"toast,omitempty"`
}

// Server wires websocket connections to table sessions.
type Server struct {
	Hub          *Hub
	Manager      *game.GameManager
	Achievements achievements.Store
	JWTSecret    string
	TickRate     int
}

// HandleWebSocket upgrades a connection for the session named in the path,
// authorised by the token issued when the session was created.
func (s *Server) HandleWebSocket(c *gin.Context) {
	sessionID := c.Param("id")
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token required"})
		return
	}

	claims, err := auth.ParseSessionToken(s.JWTSecret, token)
	if err != nil || claims.SessionID != sessionID {
		c.JSON(http.StatusForbidden, gin.H{"error": "invalid session token"})
		return
	}

	session, err := s.Manager.GetSession(sessionID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WS] Upgrade error: %v", err)
		return
	}

	client := newClient(conn, session)
	if !s.Hub.Register(client) {
		conn.Close()
		return
	}

	go client.writePump()
	go s.sessionLoop(client)
	go s.readPump(client)
}

// readPump reads commands and queues them on the session.
func (s *Server) readPump(c *Client) {
	defer func() {
		s.Hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(65536)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[WS] Unexpected close for session %s: %v", c.sessionID, err)
			}
			return
		}
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))

		var msg WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			c.sendError("Invalid message")
			continue
		}
		s.handleMessage(c, msg)
	}
}

// handleMessage turns one inbound message into a queued game command.
func (s *Server) handleMessage(c *Client, msg WSMessage) {
	cmd, err := decodeCommand(msg)
	if err != nil {
		c.sendError(err.Error())
		return
	}
	if msg.Type == "get_state" {
		c.sendJSON(FrameMessage{Type: "frame", Snapshot: c.session.Snapshot()})
		return
	}
	s.Manager.Submit(c.session, cmd)
	c.active.Store(true)
}

var (
	errInvalidData    = errors.New("invalid message data")
	errUnknownMessage = errors.New("unknown message type")
)

// decodeCommand maps a wire message onto a game command. get_state yields a
// zero command.
func decodeCommand(msg WSMessage) (game.Command, error) {
	unmarshal := func(v interface{}) error {
		if len(msg.Data) == 0 {
			return nil
		}
		if err := json.Unmarshal(msg.Data, v); err != nil {
			return errInvalidData
		}
		return nil
	}

	switch msg.Type {
	case "select_mode":
		var d SelectModeData
		if err := unmarshal(&d); err != nil {
			return game.Command{}, err
		}
		return game.Command{Type: game.CmdSelectMode, Mode: d.Mode}, nil
	case "select_difficulty":
		var d SelectDifficultyData
		if err := unmarshal(&d); err != nil {
			return game.Command{}, err
		}
		return game.Command{Type: game.CmdSelectDifficulty, Difficulty: d.Difficulty}, nil
	case "begin_aim":
		var d BeginAimData
		if err := unmarshal(&d); err != nil {
			return game.Command{}, err
		}
		return game.Command{Type: game.CmdBeginAim, Player: d.Player}, nil
	case "set_angle":
		var d SetAngleData
		if err := unmarshal(&d); err != nil {
			return game.Command{}, err
		}
		return game.Command{Type: game.CmdSetAngle, Angle: d.Angle}, nil
	case "aim_at":
		var d AimAtData
		if err := unmarshal(&d); err != nil {
			return game.Command{}, err
		}
		return game.Command{Type: game.CmdAimAt, X: d.X, Y: d.Y}, nil
	case "commit_shot":
		var d CommitShotData
		if err := unmarshal(&d); err != nil {
			return game.Command{}, err
		}
		return game.Command{Type: game.CmdCommitShot, Power: d.Power}, nil
	case "restart":
		return game.Command{Type: game.CmdRestart}, nil
	case "get_state":
		return game.Command{}, nil
	}
	return game.Command{}, errUnknownMessage
}

// sessionLoop ticks the session at the configured rate and streams frames,
// events and unlocks to the client until it disconnects or the session ends.
func (s *Server) sessionLoop(c *Client) {
	rate := s.TickRate
	if rate <= 0 {
		rate = 60
	}
	ticker := time.NewTicker(time.Second / time.Duration(rate))
	defer ticker.Stop()

	ctx := context.Background()
	tracker := achievements.NewTracker(ctx, s.Achievements, c.profileID)
	frames := 0

	c.sendJSON(FrameMessage{Type: "frame", Snapshot: c.session.Snapshot()})

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
		}

		if _, err := s.Manager.GetSession(c.sessionID); err != nil {
			c.sendJSON(map[string]interface{}{"type": "session_ended", "message": "Session ended"})
			c.stop()
			return
		}

		snap, events := c.session.Advance()
		tracker.Tick()
		frames++

		for _, ev := range events {
			c.sendJSON(map[string]interface{}{"type": "event", "event": ev})
		}
		for _, a := range tracker.Handle(ctx, events) {
			c.sendJSON(map[string]interface{}{"type": "achievement", "achievement": a})
		}
		s.Manager.RecordResult(ctx, c.session, snap)

		toast, showing := tracker.Toast()
		busy := snap.Status == game.StatusPlaying && snap.Phase != game.PhaseAiming
		if !busy && !showing && len(events) == 0 && !c.active.Swap(false) && frames%heartbeatFrames != 0 {
			continue
		}

		frame := FrameMessage{Type: "frame", Snapshot: snap}
		if showing {
			frame.Toast = &toast
		}
		c.sendJSON(frame)
	}
}
