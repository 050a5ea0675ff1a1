// Package websocket pushes per-user events to connected portal sessions.
// Every client is subscribed to exactly one topic, its user's, so events
// for one patient never reach another.
package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	gorillawebsocket "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/clinic/clinic/internal/platform/auth"
)

// Event is one server-to-client notification.
type Event struct {
	Type      string          `json:"type"`
	Topic     string          `json:"topic"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// Publisher delivers events to a user's live connections.
type Publisher interface {
	PublishToUser(ctx context.Context, userID, eventType string, data interface{}) error
}

func UserTopic(userID string) string {
	return "user:" + userID
}

// Client is one WebSocket connection.
type Client struct {
	ID     string
	UserID string
	Send   chan []byte
}

func NewClient(userID string) *Client {
	return &Client{ID: uuid.NewString(), UserID: userID, Send: make(chan []byte, 64)}
}

type Hub struct {
	mu     sync.RWMutex
	topics map[string]map[*Client]struct{}
	all    map[*Client]struct{}
	now    func() time.Time
}

func NewHub() *Hub {
	return &Hub{
		topics: make(map[string]map[*Client]struct{}),
		all:    make(map[*Client]struct{}),
		now:    time.Now,
	}
}

// Register subscribes the client to its user's topic.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.all[client] = struct{}{}
	topic := UserTopic(client.UserID)
	if h.topics[topic] == nil {
		h.topics[topic] = make(map[*Client]struct{})
	}
	h.topics[topic][client] = struct{}{}
}

// Unregister removes the client and closes its Send channel. Calling it
// twice is a no-op.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.all[client]; !ok {
		return
	}
	topic := UserTopic(client.UserID)
	if subscribers, ok := h.topics[topic]; ok {
		delete(subscribers, client)
		if len(subscribers) == 0 {
			delete(h.topics, topic)
		}
	}
	delete(h.all, client)
	close(client.Send)
}

// Broadcast sends event to every client on topic. Clients with a full
// buffer miss the event rather than stall the sender.
func (h *Hub) Broadcast(topic string, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.topics[topic] {
		select {
		case client.Send <- data:
		default:
		}
	}
	return nil
}

func (h *Hub) PublishToUser(_ context.Context, userID, eventType string, data interface{}) error {
	var raw json.RawMessage
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("marshal %s payload: %w", eventType, err)
		}
		raw = b
	}
	topic := UserTopic(userID)
	return h.Broadcast(topic, Event{Type: eventType, Topic: topic, Timestamp: h.now().UTC(), Data: raw})
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.all)
}

// UserConnections returns how many live connections userID has.
func (h *Hub) UserConnections(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[UserTopic(userID)])
}

// ConnectFunc runs for the lifetime of one connection; ctx is canceled when
// the connection closes.
type ConnectFunc func(ctx context.Context, userID string)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// Handler upgrades authenticated requests to WebSocket connections.
type Handler struct {
	hub       *Hub
	upgrader  gorillawebsocket.Upgrader
	onConnect ConnectFunc
	logger    zerolog.Logger
}

// NewHandler accepts browser connections only from allowedOrigins. An empty
// list allows any origin, which is only meant for development.
func NewHandler(hub *Hub, allowedOrigins []string, onConnect ConnectFunc, logger zerolog.Logger) *Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &Handler{
		hub: hub,
		upgrader: gorillawebsocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return len(allowed) == 0 || origin == "" || allowed[origin]
			},
		},
		onConnect: onConnect,
		logger:    logger,
	}
}

func (h *Handler) HandleConnect(c echo.Context) error {
	uid := auth.UserIDFromContext(c.Request().Context())
	if uid == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	ws, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade has already written the error response.
		h.logger.Warn().Err(err).Str("user_id", uid).Msg("websocket upgrade failed")
		return nil
	}

	client := NewClient(uid)
	h.hub.Register(client)
	ctx, cancel := context.WithCancel(context.Background())

	go h.writePump(client, ws)
	if h.onConnect != nil {
		go h.onConnect(ctx, uid)
	}
	go func() {
		defer cancel()
		defer h.hub.Unregister(client)
		h.readPump(ws)
	}()
	return nil
}

// readPump drains client frames until the connection drops. The push
// channel is one-way, so payloads are discarded.
func (h *Handler) readPump(ws *gorillawebsocket.Conn) {
	ws.SetReadLimit(512)
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Handler) writePump(client *Client, ws *gorillawebsocket.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		ws.Close()
	}()

	for {
		select {
		case msg, ok := <-client.Send:
			_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = ws.WriteMessage(gorillawebsocket.CloseMessage, []byte{})
				return
			}
			if err := ws.WriteMessage(gorillawebsocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ws.WriteMessage(gorillawebsocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
