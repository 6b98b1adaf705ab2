package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

// Event is a settlement notification pushed to the user's live connections.
type Event struct {
	Type    string `json:"type"`
	User    string `json:"user"`
	Payload any    `json:"payload,omitempty"`
}

const (
	writeWait      = 10 * time.Second
	clientSendSize = 16
)

// Hub fans settlement events out to websocket clients. Events are private:
// a client only receives events for the user it authenticated as.
type Hub struct {
	upgrader   websocket.Upgrader
	logger     *log.Logger
	clients    map[*client]bool
	register   chan *client
	unregister chan *client
	broadcast  chan Event
}

type client struct {
	conn *websocket.Conn
	user string
	send chan []byte
}

// NewHub creates an event hub. Run must be called for it to deliver.
func NewHub(logger *log.Logger) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger:     logger.WithPrefix("events"),
		clients:    make(map[*client]bool),
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan Event, 64),
	}
}

// Run handles client lifecycle and event delivery until ctx is done.
func (h *Hub) Run(ctx context.Context) error {
	for {
		select {
		case c := <-h.register:
			h.clients[c] = true
			h.logger.Info("Client connected", "user", c.user, "total", len(h.clients))

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			h.logger.Info("Client disconnected", "user", c.user, "total", len(h.clients))

		case event := <-h.broadcast:
			payload, err := json.Marshal(event)
			if err != nil {
				h.logger.Error("Failed to encode event", "error", err)
				continue
			}
			for c := range h.clients {
				if c.user != event.User {
					continue
				}
				select {
				case c.send <- payload:
				default:
					// Slow consumer; drop it rather than stall delivery.
					delete(h.clients, c)
					close(c.send)
				}
			}

		case <-ctx.Done():
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			return ctx.Err()
		}
	}
}

// Publish queues an event for delivery.
func (h *Hub) Publish(event Event) {
	select {
	case h.broadcast <- event:
	default:
		h.logger.Warn("Event dropped, broadcast queue full", "type", event.Type)
	}
}

// Serve upgrades the request and streams the user's events until the client
// goes away.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, user string) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	c := &client{conn: conn, user: user, send: make(chan []byte, clientSendSize)}
	h.register <- c

	go c.writePump()
	c.readPump(h)
}

// readPump discards inbound frames; the stream is one-way. It unregisters
// the client when the connection drops.
func (c *client) readPump(h *Hub) {
	defer func() {
		h.unregister <- c
		_ = c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *client) writePump() {
	defer func() { _ = c.conn.Close() }()
	for payload := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
	_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}
