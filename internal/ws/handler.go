package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/playmatatu/poolsim/internal/game"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in development
	},
}

// Client is the one connection driving a table session.
type Client struct {
	conn      *websocket.Conn
	sessionID string
	profileID string
	session   *game.Session
	send      chan []byte

	active    atomic.Bool // input arrived since the last frame
	done      chan struct{}
	closeOnce sync.Once
}

func newClient(conn *websocket.Conn, s *game.Session) *Client {
	return &Client{
		conn:      conn,
		sessionID: s.ID,
		profileID: s.ProfileID,
		session:   s,
		send:      make(chan []byte, 256),
		done:      make(chan struct{}),
	}
}

// stop ends the client's pumps and loop. Safe to call more than once.
func (c *Client) stop() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

// Hub maintains the set of active clients, one per session.
type Hub struct {
	clients    map[string]*Client // sessionID -> Client
	register   chan *Client
	unregister chan *Client
	done       chan struct{} // closed when Run returns
	mu         sync.RWMutex
}

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Register adds a client, or stops it when the hub has shut down.
func (h *Hub) Register(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		c.stop()
		return false
	}
}

// Unregister removes a client. It never blocks once the hub has shut down.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
		c.stop()
	}
}

// Run processes registrations until ctx is done. A second connection to a
// session replaces the first.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for id, c := range h.clients {
				c.stop()
				c.conn.Close()
				delete(h.clients, id)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			if old, exists := h.clients[client.sessionID]; exists {
				log.Printf("[WS] Session %s reconnecting - closing old connection", client.sessionID)
				if err := old.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "replaced by new connection"), time.Now().Add(5*time.Second)); err != nil {
					log.Printf("[WS] Error writing close control to old client %s: %v", old.sessionID, err)
				}
				old.stop()
				old.conn.Close()
			}
			h.clients[client.sessionID] = client
			h.mu.Unlock()
			log.Printf("[WS] Profile %s connected to session %s", client.profileID, client.sessionID)

		case client := <-h.unregister:
			h.mu.Lock()
			if cur, ok := h.clients[client.sessionID]; ok && cur == client {
				delete(h.clients, client.sessionID)
				log.Printf("[WS] Profile %s disconnected from session %s", client.profileID, client.sessionID)
			}
			h.mu.Unlock()
			client.stop()
		}
	}
}

// SendToSession sends a message to the client driving a session, if any.
func (h *Hub) SendToSession(sessionID string, message interface{}) bool {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("[WS] Error marshaling message: %v", err)
		return false
	}

	h.mu.RLock()
	client, exists := h.clients[sessionID]
	h.mu.RUnlock()
	if !exists {
		return false
	}
	return client.sendRaw(data)
}

// Connected reports the number of live connections.
func (h *Hub) Connected() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// WSMessage is an inbound message.
type WSMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// writePump writes messages to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(time.Second))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("[WS] Write error for session %s: %v", c.sessionID, err)
				c.stop()
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("[WS] Ping error for session %s: %v", c.sessionID, err)
				c.stop()
				return
			}
		}
	}
}

func (c *Client) sendRaw(data []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- data:
		return true
	default:
		log.Printf("[WS] Send buffer full for session %s, dropping message", c.sessionID)
		return false
	}
}

func (c *Client) sendJSON(message interface{}) bool {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("[WS] Error marshaling message: %v", err)
		return false
	}
	return c.sendRaw(data)
}

// sendError sends an error message to the client
func (c *Client) sendError(message string) {
	c.sendJSON(map[string]interface{}{
		"type":    "error",
		"message": message,
	})
}
