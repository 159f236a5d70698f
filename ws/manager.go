package ws

import (
	"sync"

	"giglink_backend/internal/logger"
)

// Event is the frame written to a client connection.
type Event struct {
	Event   string `json:"event"`
	Payload any    `json:"payload"`
}

// Manager is the live channel registry: it owns the set of connected users
// and delivers per-user push events. It is injected into the notification
// dispatcher instead of being reached as ambient state.
type Manager struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

func (m *Manager) Run() {
	for {
		select {
		case client := <-m.register:
			m.attach(client)
		case client := <-m.unregister:
			m.detach(client)
		}
	}
}

func (m *Manager) attach(client *Client) {
	m.mu.Lock()
	// One live channel per user: a reconnect replaces the old connection.
	if old, ok := m.clients[client.UserID]; ok && old != client {
		close(old.Send)
	}
	m.clients[client.UserID] = client
	total := len(m.clients)
	m.mu.Unlock()
	logger.Debug("ws client attached", "user_id", client.UserID, "total", total)
}

func (m *Manager) detach(client *Client) {
	m.mu.Lock()
	if current, ok := m.clients[client.UserID]; ok && current == client {
		close(client.Send)
		delete(m.clients, client.UserID)
	}
	total := len(m.clients)
	m.mu.Unlock()
	logger.Debug("ws client detached", "user_id", client.UserID, "total", total)
}

// PushToUser implements services.LivePusher. No-op when the user has no
// attached channel; drops (and detaches) when the client's send buffer is
// full. Never blocks the caller.
//
// The read lock is held across the send: attach/detach close Send under the
// write lock, so the close can never interleave with the send. The send is
// non-blocking, so holding the lock is safe.
func (m *Manager) PushToUser(userID, event string, payload any) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	client, ok := m.clients[userID]
	if !ok {
		return
	}

	select {
	case client.Send <- Event{Event: event, Payload: payload}:
	default:
		logger.Warn("ws send buffer full, disconnecting client", "user_id", userID)
		go func() {
			m.unregister <- client
		}()
	}
}

func (m *Manager) IsConnected(userID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, exists := m.clients[userID]
	return exists
}

func (m *Manager) ClientCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients)
}
