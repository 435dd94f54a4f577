package websocket

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"tradie-match-server/middleware"
	"tradie-match-server/realtime"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origins are checked by the CORS middleware in front of this handler.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Message is one frame sent to the client.
type Message struct {
	Type      string             `json:"type"`
	Snapshot  *realtime.Snapshot `json:"snapshot,omitempty"`
	Timestamp time.Time          `json:"timestamp"`
}

// inbound is a frame received from the client. Only pings are understood.
type inbound struct {
	Type string `json:"type"`
}

// Client represents a connected WebSocket client
type Client struct {
	hub       *Hub
	AccountID string
	Role      string
	conn      *websocket.Conn

	// One subscription per topic, so a burst on one topic never hides the
	// latest snapshot of another.
	jobs    *realtime.Subscription
	chat    *realtime.Subscription
	profile *realtime.Subscription

	pong      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// Handler upgrades an authenticated request and streams the account's
// jobs, chat and profile snapshots until either side hangs up.
func (h *Hub) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		accountID := middleware.AccountID(c)
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			h.log.Warn("❌ WebSocket upgrade failed", zap.String("account_id", accountID), zap.Error(err))
			return
		}

		client := &Client{
			hub:       h,
			AccountID: accountID,
			Role:      c.GetString(middleware.ContextRole),
			conn:      conn,
			jobs:      h.broker.Subscribe(realtime.JobsTopic(accountID)),
			chat:      h.broker.Subscribe(realtime.ChatTopic(accountID)),
			profile:   h.broker.Subscribe(realtime.ProfileTopic(accountID)),
			pong:      make(chan struct{}, 1),
			done:      make(chan struct{}),
		}
		if !h.register(client) {
			client.close()
			return
		}

		go client.writePump()
		go client.readPump()

		h.runHooks(accountID)
	}
}

// close unsubscribes and drops the connection. Safe to call more than once.
func (c *Client) close() {
	c.closeOnce.Do(func() {
		c.jobs.Close()
		c.chat.Close()
		c.profile.Close()
		close(c.done)
		c.conn.Close()
	})
}

// readPump watches the connection for pings and hang-ups.
func (c *Client) readPump() {
	defer c.hub.unregister(c)

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Warn("❌ WebSocket read error", zap.String("account_id", c.AccountID), zap.Error(err))
			}
			return
		}

		var msg inbound
		if err := json.Unmarshal(data, &msg); err != nil || msg.Type != "ping" {
			c.hub.log.Debug("⚠️ Ignoring client frame", zap.String("account_id", c.AccountID))
			continue
		}
		select {
		case c.pong <- struct{}{}:
		default:
		}
	}
}

// writePump is the only writer on the connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		var snap realtime.Snapshot
		var ok bool

		select {
		case snap, ok = <-c.jobs.C():
		case snap, ok = <-c.chat.C():
		case snap, ok = <-c.profile.C():
		case <-c.pong:
			if err := c.write(Message{Type: "pong", Timestamp: time.Now()}); err != nil {
				return
			}
			continue
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
			continue
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}

		if !ok {
			// The broker shut down.
			c.hub.unregister(c)
			return
		}
		if err := c.write(Message{Type: "snapshot", Snapshot: &snap, Timestamp: time.Now()}); err != nil {
			c.hub.log.Debug("❌ WebSocket write failed", zap.String("account_id", c.AccountID), zap.Error(err))
			return
		}
	}
}

func (c *Client) write(msg Message) error {
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(msg)
}
