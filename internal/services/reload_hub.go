package services

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// ReloadHub pushes reload notices to browsers previewing the generated site.
// Clients never send anything meaningful; the read side exists only to detect
// disconnects and answer pings.
type ReloadHub struct {
	clients    map[*reloadClient]bool
	broadcast  chan []byte
	register   chan *reloadClient
	unregister chan *reloadClient
	mu         sync.RWMutex
	logger     *logrus.Logger
	upgrader   websocket.Upgrader
}

type reloadClient struct {
	hub  *ReloadHub
	conn *websocket.Conn
	send chan []byte
}

// ReloadMessage is the payload pushed to connected browsers after a build.
type ReloadMessage struct {
	Type      string    `json:"type"`
	BuildID   string    `json:"buildId"`
	Timestamp time.Time `json:"timestamp"`
}

// NewReloadHub creates a new reload hub.
func NewReloadHub(logger *logrus.Logger) *ReloadHub {
	return &ReloadHub{
		clients:    make(map[*reloadClient]bool),
		broadcast:  make(chan []byte),
		register:   make(chan *reloadClient),
		unregister: make(chan *reloadClient),
		logger:     logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Local preview tool, any page may connect.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Run processes register, unregister and broadcast events. Call it in its own
// goroutine before serving connections.
func (h *ReloadHub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.logger.Debugf("Reload client connected: %s", client.conn.RemoteAddr())

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			h.logger.Debugf("Reload client disconnected: %s", client.conn.RemoteAddr())

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Client's send channel is full, drop it
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// NotifyReload tells every connected browser to refresh. buildID identifies
// the build that just finished.
func (h *ReloadHub) NotifyReload(buildID string) {
	message, err := json.Marshal(ReloadMessage{
		Type:      "reload",
		BuildID:   buildID,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		h.logger.Errorf("Failed to marshal reload message: %v", err)
		return
	}
	h.broadcast <- message
}

// ClientCount returns the number of connected preview clients.
func (h *ReloadHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeWS upgrades an HTTP request to a reload connection.
func (h *ReloadHub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Errorf("Failed to upgrade websocket: %v", err)
		return
	}

	client := &reloadClient{
		hub:  h,
		conn: conn,
		send: make(chan []byte, 256),
	}
	h.register <- client

	go client.writePump()
	go client.readPump()
}

func (c *reloadClient) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		// Clients have nothing to say; reads only surface disconnects.
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Debugf("Reload connection error: %v", err)
			}
			break
		}
	}
}

func (c *reloadClient) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
