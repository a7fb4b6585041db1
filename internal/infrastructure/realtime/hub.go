// Package realtime pushes score, points, leaderboard and settlement events to
// websocket clients subscribed to match and contest topics.
package realtime

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"github.com/riskibarqy/fantasy-cricket/internal/platform/logging"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBufferSize = 256
	maxTopics      = 64
)

const (
	actionSubscribe   = "subscribe"
	actionUnsubscribe = "unsubscribe"
)

var topicPrefixes = []string{"match:", "contest:"}

type HubConfig struct {
	AllowedOrigins []string
	BroadcastQueue int
}

type clientFrame struct {
	Action string   `json:"action"`
	Topics []string `json:"topics"`
}

type controlFrame struct {
	Type    string   `json:"type"`
	Topics  []string `json:"topics,omitempty"`
	Message string   `json:"message,omitempty"`
}

type delivery struct {
	topic   string
	payload []byte
}

// Hub owns the connected clients. Only Run mutates the client set; a client
// whose send buffer is full misses the event instead of stalling the others.
type Hub struct {
	upgrader   websocket.Upgrader
	clients    map[*client]struct{}
	register   chan *client
	unregister chan *client
	broadcast  chan delivery
	done       chan struct{}
	count      int
	mu         sync.RWMutex
	logger     *logging.Logger
}

func NewHub(cfg HubConfig, logger *logging.Logger) *Hub {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.BroadcastQueue <= 0 {
		cfg.BroadcastQueue = 1024
	}

	h := &Hub{
		clients:    make(map[*client]struct{}),
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan delivery, cfg.BroadcastQueue),
		done:       make(chan struct{}),
		logger:     logger.Named("realtime.hub"),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(cfg.AllowedOrigins),
	}
	return h
}

// Run is the hub loop; it closes every client when ctx ends.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			h.setCount(0)
			return

		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.setCount(len(h.clients))
			h.logger.Debug("websocket client connected", "clients", len(h.clients))

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
				h.setCount(len(h.clients))
			}

		case msg := <-h.broadcast:
			for c := range h.clients {
				if !c.isSubscribed(msg.topic) {
					continue
				}
				select {
				case c.send <- msg.payload:
				default:
					h.logger.Warn("dropping event for slow websocket client", "topic", msg.topic)
				}
			}
		}
	}
}

// Deliver queues an encoded event for every client subscribed to topic. It
// never blocks; a full queue drops the event.
func (h *Hub) Deliver(_ context.Context, topic string, payload []byte) error {
	select {
	case h.broadcast <- delivery{topic: topic, payload: payload}:
	default:
		h.logger.Warn("hub broadcast queue full, event dropped", "topic", topic)
	}
	return nil
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.count
}

func (h *Hub) setCount(n int) {
	h.mu.Lock()
	h.count = n
	h.mu.Unlock()
}

// ServeHTTP upgrades GET /ws. Clients start with no subscriptions.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WarnContext(r.Context(), "websocket upgrade failed", "error", err)
		return
	}

	c := &client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
		subs: make(map[string]struct{}),
	}

	select {
	case h.register <- c:
	case <-h.done:
		_ = conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}

type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	subs map[string]struct{}
	mu   sync.RWMutex
}

func (c *client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Warn("websocket closed unexpectedly", "error", err)
			}
			return
		}

		var frame clientFrame
		if err := sonic.Unmarshal(message, &frame); err != nil {
			c.reply(controlFrame{Type: "error", Message: "frame must be JSON"})
			continue
		}
		c.reply(c.apply(frame))
	}
}

func (c *client) apply(frame clientFrame) controlFrame {
	topics := make([]string, 0, len(frame.Topics))
	for _, topic := range frame.Topics {
		topic = strings.TrimSpace(topic)
		if !validTopic(topic) {
			return controlFrame{Type: "error", Message: "unknown topic " + topic}
		}
		topics = append(topics, topic)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	switch frame.Action {
	case actionSubscribe:
		if len(c.subs)+len(topics) > maxTopics {
			return controlFrame{Type: "error", Message: "too many topics"}
		}
		for _, topic := range topics {
			c.subs[topic] = struct{}{}
		}
		return controlFrame{Type: "subscribed", Topics: topics}
	case actionUnsubscribe:
		for _, topic := range topics {
			delete(c.subs, topic)
		}
		return controlFrame{Type: "unsubscribed", Topics: topics}
	default:
		return controlFrame{Type: "error", Message: "unknown action " + frame.Action}
	}
}

// reply must not block the read loop; a client too slow for control frames
// will be dropped by the write pump anyway.
func (c *client) reply(frame controlFrame) {
	payload, err := sonic.Marshal(frame)
	if err != nil {
		return
	}
	defer func() {
		// send may already be closed by the hub shutting down.
		_ = recover()
	}()
	select {
	case c.send <- payload:
	default:
	}
}

func (c *client) isSubscribed(topic string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.subs[topic]
	return ok
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func validTopic(topic string) bool {
	for _, prefix := range topicPrefixes {
		if strings.HasPrefix(topic, prefix) && len(topic) > len(prefix) {
			return true
		}
	}
	return false
}

func originChecker(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	set := make(map[string]struct{}, len(allowed))
	for _, origin := range allowed {
		origin = strings.TrimSpace(origin)
		if origin == "*" {
			return func(*http.Request) bool { return true }
		}
		set[origin] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}
