package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/pdlmetrix/pdlmetrix/internal/services/league"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

// Client message types.
const (
	msgSubscribe   = "subscribe"
	msgUnsubscribe = "unsubscribe"
	msgSubscribed  = "subscribed"
	msgPing        = "ping"
	msgPong        = "pong"
)

// ============================================================
// WebSocket Hub
// ============================================================

// WSMessage is a message sent over WebSocket connections. League events
// carry their event type as Type and the league.Event as Data.
type WSMessage struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// WSHub manages WebSocket connections and message broadcasting.
type WSHub struct {
	mu         sync.RWMutex
	clients    map[*WSClient]bool
	broadcast  chan WSMessage
	register   chan *WSClient
	unregister chan *WSClient
	done       chan struct{}
	log        *logrus.Entry
}

// WSClient represents a single WebSocket connection. A client without
// subscriptions receives every league event; otherwise only events that
// involve a subscribed player or concern the whole league.
type WSClient struct {
	hub  *WSHub
	send chan WSMessage

	mu      sync.Mutex
	players map[string]bool
}

// NewWSHub creates a new WebSocket hub.
func NewWSHub(log *logrus.Entry) *WSHub {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &WSHub{
		clients:    make(map[*WSClient]bool),
		broadcast:  make(chan WSMessage, 256),
		register:   make(chan *WSClient),
		unregister: make(chan *WSClient),
		done:       make(chan struct{}),
		log:        log.WithField("component", "ws"),
	}
}

func newWSClient(hub *WSHub) *WSClient {
	return &WSClient{
		hub:     hub,
		send:    make(chan WSMessage, 256),
		players: make(map[string]bool),
	}
}

// Run starts the hub event loop. It returns when ctx is done, closing every
// client. A hub runs once.
func (h *WSHub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			return
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
		case msg := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				if !client.accepts(msg) {
					continue
				}
				select {
				case client.send <- msg:
				default:
					// Slow client; disconnect
					delete(h.clients, client)
					close(client.send)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast sends a message to all connected WebSocket clients.
func (h *WSHub) Broadcast(msg WSMessage) {
	select {
	case h.broadcast <- msg:
	default:
		h.log.WithField("type", msg.Type).Warn("broadcast buffer full, message dropped")
	}
}

// ClientCount returns the number of connected WebSocket clients.
func (h *WSHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Register adds a client to the hub. It is a no-op once the hub stopped.
func (h *WSHub) Register(client *WSClient) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

// Unregister removes a client from the hub.
func (h *WSHub) Unregister(client *WSClient) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Subscribe limits the client to events involving the named players.
func (c *WSClient) Subscribe(names ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, n := range names {
		c.players[n] = true
	}
}

// Unsubscribe drops player subscriptions. With no names it drops them all.
func (c *WSClient) Unsubscribe(names ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(names) == 0 {
		clear(c.players)
		return
	}
	for _, n := range names {
		delete(c.players, n)
	}
}

func (c *WSClient) accepts(msg WSMessage) bool {
	e, ok := msg.Data.(league.Event)
	if !ok || e.Type == league.EventBackupLoaded || e.Type == league.EventDataCleared {
		return true
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.players) == 0 {
		return true
	}

	names := e.Players
	if e.Player != "" {
		names = append([]string{e.Player}, names...)
	}
	if len(names) == 0 {
		return true
	}
	for _, n := range names {
		if c.players[n] {
			return true
		}
	}
	return false
}

// subscription is the payload of subscribe and unsubscribe messages.
type subscription struct {
	Players []string `json:"players"`
}

// ============================================================
// Connection pumps
// ============================================================

// handleWebSocket upgrades HTTP connections to WebSocket and streams league
// events to the client.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	client := newWSClient(s.wsHub)
	s.wsHub.Register(client)

	go wsWritePump(conn, client)
	go wsReadPump(conn, client)
}

// wsReadPump handles client messages until the connection fails.
func wsReadPump(conn *websocket.Conn, client *WSClient) {
	defer func() {
		client.hub.Unregister(client)
		conn.Close()
	}()

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				client.hub.log.WithError(err).Debug("WebSocket read failed")
			}
			break
		}

		var msg struct {
			Type string       `json:"type"`
			Data subscription `json:"data"`
		}
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}

		var reply WSMessage
		switch msg.Type {
		case msgSubscribe:
			client.Subscribe(msg.Data.Players...)
			reply = WSMessage{Type: msgSubscribed, Data: msg.Data}
		case msgUnsubscribe:
			client.Unsubscribe(msg.Data.Players...)
			reply = WSMessage{Type: msgSubscribed, Data: client.subscriptions()}
		case msgPing:
			reply = WSMessage{Type: msgPong}
		default:
			continue
		}
		if !client.trySend(reply) {
			return
		}
	}
}

// trySend queues a reply unless the hub already dropped the client.
func (c *WSClient) trySend(msg WSMessage) (ok bool) {
	c.hub.mu.RLock()
	defer c.hub.mu.RUnlock()
	if !c.hub.clients[c] {
		return false
	}
	select {
	case c.send <- msg:
	default:
	}
	return true
}

func (c *WSClient) subscriptions() subscription {
	c.mu.Lock()
	defer c.mu.Unlock()
	sub := subscription{Players: make([]string, 0, len(c.players))}
	for n := range c.players {
		sub.Players = append(sub.Players, n)
	}
	return sub
}

// wsWritePump pumps messages from the hub to the WebSocket connection.
func wsWritePump(conn *websocket.Conn, client *WSClient) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case msg, ok := <-client.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := writeWSMessage(conn, msg); err != nil {
				return
			}

			// Flush queued messages
			n := len(client.send)
			for i := 0; i < n; i++ {
				next, ok := <-client.send
				if !ok {
					return
				}
				if err := writeWSMessage(conn, next); err != nil {
					return
				}
			}

		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func writeWSMessage(conn *websocket.Conn, msg WSMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, data)
}
