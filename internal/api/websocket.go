package api

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/mescon/Composelab/internal/domain"
	"github.com/mescon/Composelab/internal/eventbus"
	"github.com/mescon/Composelab/internal/logger"
	"github.com/mescon/Composelab/internal/widgets"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// newWebSocketUpgrader returns an upgrader with origin validation
// based on the configured CORS origins
func newWebSocketUpgrader(corsOrigins string) websocket.Upgrader {
	allowedOrigins := parseOrigins(corsOrigins)

	return websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if corsOrigins == "*" {
				return true
			}
			origin := r.Header.Get("Origin")
			// If no CORS origins configured, only allow same-origin
			if corsOrigins == "" {
				if origin == "" {
					return true // No origin header = same-origin request
				}
				return sameHost(origin, r.Host)
			}
			return allowedOrigins[origin]
		},
	}
}

// sameHost reports whether origin names exactly host (host[:port]).
func sameHost(origin, host string) bool {
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}
	return strings.EqualFold(u.Host, host)
}

// clientMessage is what a WebSocket client sends to press a button.
type clientMessage struct {
	Action widgets.Action `json:"action"`
}

// WebSocketHub pushes the board view to every connected client after each
// widget event, streams log lines, and accepts button presses.
type WebSocketHub struct {
	clients    map[*websocket.Conn]bool
	broadcast  chan interface{}
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	mu         sync.Mutex
	board      Board
	limiter    *RateLimiter
	upgrader   websocket.Upgrader
	logCh      chan logger.LogEntry
	done       chan struct{}
	closeOnce  sync.Once

	// writeWait bounds every write so a client that stops reading cannot
	// hold mu. Guarded by mu.
	writeWait time.Duration
}

// NewWebSocketHub starts a hub. eventBus may be nil, in which case only
// connect-time state, action results and logs are sent. limiter may be nil.
func NewWebSocketHub(eventBus *eventbus.EventBus, board Board, limiter *RateLimiter, corsOrigins string) *WebSocketHub {
	h := &WebSocketHub{
		broadcast:  make(chan interface{}),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		clients:    make(map[*websocket.Conn]bool),
		board:      board,
		limiter:    limiter,
		upgrader:   newWebSocketUpgrader(corsOrigins),
		done:       make(chan struct{}),
		writeWait:  writeWait,
	}

	// Every widget event changes the view, so each one triggers a state push.
	if eventBus != nil {
		eventBus.SubscribeAll(func(domain.Event) {
			h.publish(h.stateMessage())
		})
	}

	// Subscribe to logs
	h.logCh = logger.Subscribe()
	go func() {
		for entry := range h.logCh {
			h.publish(map[string]interface{}{
				"type": "log",
				"data": entry,
			})
		}
	}()

	go h.run()
	return h
}

func (h *WebSocketHub) stateMessage() map[string]interface{} {
	return map[string]interface{}{
		"type": "state",
		"data": h.board.View(),
	}
}

// publish queues message for all clients. It returns without sending once
// the hub is closed.
func (h *WebSocketHub) publish(message interface{}) {
	select {
	case h.broadcast <- message:
	case <-h.done:
	}
}

func (h *WebSocketHub) run() {
	for {
		select {
		case <-h.done:
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			logger.Debugf("WebSocket client connected (Total: %d)", len(h.clients))
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				if err := client.Close(); err != nil {
					logger.Debugf("WebSocket close error: %v", err)
				}
				logger.Debugf("WebSocket client disconnected")
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				if err := h.writeJSONLocked(client, message); err != nil {
					logger.Errorf("WebSocket error, dropping client: %v", err)
					if closeErr := client.Close(); closeErr != nil {
						logger.Debugf("WebSocket close error during broadcast: %v", closeErr)
					}
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// writeJSONLocked writes message under the hub's write deadline. h.mu must be held.
func (h *WebSocketHub) writeJSONLocked(ws *websocket.Conn, message interface{}) error {
	if err := ws.SetWriteDeadline(time.Now().Add(h.writeWait)); err != nil {
		return err
	}
	return ws.WriteJSON(message)
}

// send writes message to one client. Writes are serialized with broadcasts.
// A failed write closes the connection, which ends its read loop.
func (h *WebSocketHub) send(ws *websocket.Conn, message interface{}) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	err := h.writeJSONLocked(ws, message)
	if err != nil {
		_ = ws.Close()
	}
	return err
}

func (h *WebSocketHub) HandleConnection(c *gin.Context) {
	ws, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Errorf("Failed to upgrade to WebSocket: %v", err)
		return
	}

	select {
	case h.register <- ws:
	case <-h.done:
		_ = ws.Close()
		return
	}
	defer func() {
		select {
		case h.unregister <- ws:
		case <-h.done:
		}
		logger.Debugf("WebSocket client handler exited")
	}()

	// Initial state so the client can render immediately
	if err := h.send(ws, h.stateMessage()); err != nil {
		logger.Debugf("Failed to send initial state: %v", err)
		return
	}

	if err := ws.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		logger.Debugf("Failed to set initial read deadline: %v", err)
	}
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	connDone := make(chan struct{})
	defer close(connDone)
	go h.pingLoop(ws, connDone)

	ip := c.ClientIP()
	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			break
		}
		h.handleClientMessage(ws, ip, data)
	}
}

// pingLoop keeps the connection alive until done is closed or a ping fails.
func (h *WebSocketHub) pingLoop(ws *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			h.mu.Lock()
			err := ws.WriteMessage(websocket.PingMessage, nil)
			h.mu.Unlock()
			if err != nil {
				logger.Debugf("WebSocket ping error: %v", err)
				_ = ws.Close()
				return
			}
		}
	}
}

// handleClientMessage dispatches a button press and replies with the result.
// The new state reaches every client through the event subscription.
func (h *WebSocketHub) handleClientMessage(ws *websocket.Conn, ip string, data []byte) {
	var msg clientMessage
	if err := json.Unmarshal(data, &msg); err != nil || msg.Action == "" {
		h.reply(ws, gin.H{"type": "error", "error": ErrMsgInvalidRequest})
		return
	}

	if h.limiter != nil && !h.limiter.Allow(ip) {
		h.reply(ws, gin.H{"type": "error", "action": msg.Action, "error": "Too many requests"})
		return
	}

	changed, err := h.board.Dispatch(msg.Action)
	if err != nil {
		logger.Debugf("WebSocket action rejected: %v", err)
		h.reply(ws, gin.H{"type": "error", "action": msg.Action, "error": err.Error()})
		return
	}
	h.reply(ws, gin.H{"type": "result", "action": msg.Action, "changed": changed})
}

func (h *WebSocketHub) reply(ws *websocket.Conn, message interface{}) {
	if err := h.send(ws, message); err != nil {
		logger.Debugf("WebSocket reply error: %v", err)
	}
}

// ClientCount returns the number of connected WebSocket clients
func (h *WebSocketHub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client and stops the hub. Safe to call twice.
func (h *WebSocketHub) Close() {
	h.closeOnce.Do(func() {
		close(h.done)
		logger.Unsubscribe(h.logCh)

		h.mu.Lock()
		defer h.mu.Unlock()
		for client := range h.clients {
			_ = client.Close()
			delete(h.clients, client)
		}
	})
}
