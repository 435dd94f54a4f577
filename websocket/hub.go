package websocket

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"tradie-match-server/logger"
	"tradie-match-server/realtime"
)

// Subscriber is the read side of the realtime broker.
type Subscriber interface {
	Subscribe(topic string) *realtime.Subscription
}

// ConnectHook runs once a client is subscribed, typically to publish the
// account's current state so the new stream starts with a snapshot.
type ConnectHook func(ctx context.Context, accountID string) error

const connectHookTimeout = 5 * time.Second

// Hub manages all WebSocket connections
type Hub struct {
	broker Subscriber
	hooks  []ConnectHook
	log    logger.Logger

	// Connected clients per account. An account may hold several tabs.
	clients map[string]map[*Client]struct{}

	// Register requests from clients
	Register chan *Client

	// Unregister requests from clients
	Unregister chan *Client

	done chan struct{}
	mu   sync.RWMutex
}

// NewHub creates a new WebSocket hub
func NewHub(broker Subscriber, log logger.Logger, hooks ...ConnectHook) *Hub {
	return &Hub{
		broker:     broker,
		hooks:      hooks,
		log:        log,
		clients:    make(map[string]map[*Client]struct{}),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run is the hub's main loop. It returns when ctx is done, after closing
// every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			if h.clients[client.AccountID] == nil {
				h.clients[client.AccountID] = make(map[*Client]struct{})
			}
			h.clients[client.AccountID][client] = struct{}{}
			h.mu.Unlock()
			h.log.Info("🔌 Client registered", zap.String("account_id", client.AccountID), zap.String("role", client.Role))

		case client := <-h.Unregister:
			h.mu.Lock()
			if set, ok := h.clients[client.AccountID]; ok {
				delete(set, client)
				if len(set) == 0 {
					delete(h.clients, client.AccountID)
				}
			}
			h.mu.Unlock()
			client.close()
			h.log.Info("🔌 Client unregistered", zap.String("account_id", client.AccountID))

		case <-ctx.Done():
			h.mu.Lock()
			all := h.clients
			h.clients = make(map[string]map[*Client]struct{})
			h.mu.Unlock()
			for _, set := range all {
				for client := range set {
					client.close()
				}
			}
			h.log.Info("🛑 WebSocket hub stopped")
			return
		}
	}
}

// Done is closed once Run has returned.
func (h *Hub) Done() <-chan struct{} { return h.done }

// register hands client to the loop. It fails once the hub has stopped.
func (h *Hub) register(client *Client) bool {
	select {
	case h.Register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) unregister(client *Client) {
	select {
	case h.Unregister <- client:
	case <-h.done:
		client.close()
	}
}

// runHooks publishes the starting snapshots for a new connection.
func (h *Hub) runHooks(accountID string) {
	ctx, cancel := context.WithTimeout(context.Background(), connectHookTimeout)
	defer cancel()
	for _, hook := range h.hooks {
		if err := hook(ctx, accountID); err != nil {
			h.log.Warn("⚠️ Initial snapshot failed", zap.String("account_id", accountID), zap.Error(err))
		}
	}
}

// ConnectedAccounts returns the accounts with at least one open stream.
func (h *Hub) ConnectedAccounts() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	ids := make([]string, 0, len(h.clients))
	for id := range h.clients {
		ids = append(ids, id)
	}
	return ids
}

// IsConnected checks if the account has an open stream
func (h *Hub) IsConnected(accountID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[accountID]) > 0
}
