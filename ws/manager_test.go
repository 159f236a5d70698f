package ws

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(userID string, buffer int) *Client {
	return &Client{
		UserID: userID,
		Send:   make(chan Event, buffer),
	}
}

func TestManager_AttachDetach(t *testing.T) {
	m := NewManager()
	client := newTestClient("user-1", 4)

	m.attach(client)
	assert.True(t, m.IsConnected("user-1"))
	assert.Equal(t, 1, m.ClientCount())

	m.detach(client)
	assert.False(t, m.IsConnected("user-1"))
	assert.Equal(t, 0, m.ClientCount())

	// detach closed the send channel
	_, open := <-client.Send
	assert.False(t, open)
}

func TestManager_ReconnectReplacesOldChannel(t *testing.T) {
	m := NewManager()
	old := newTestClient("user-1", 4)
	fresh := newTestClient("user-1", 4)

	m.attach(old)
	m.attach(fresh)

	assert.Equal(t, 1, m.ClientCount())
	_, open := <-old.Send
	assert.False(t, open, "stale channel should be closed on reconnect")

	// Detaching the stale client must not evict the fresh one.
	m.detach(old)
	assert.True(t, m.IsConnected("user-1"))

	m.PushToUser("user-1", "notification", "hello")
	select {
	case event := <-fresh.Send:
		assert.Equal(t, "notification", event.Event)
		assert.Equal(t, "hello", event.Payload)
	default:
		t.Fatal("expected event on the fresh channel")
	}
}

func TestManager_PushToUser(t *testing.T) {
	m := NewManager()
	client := newTestClient("user-1", 4)
	m.attach(client)

	m.PushToUser("user-1", "notification", map[string]any{"id": "n1"})

	select {
	case event := <-client.Send:
		assert.Equal(t, "notification", event.Event)
	default:
		t.Fatal("expected a queued event")
	}

	// Unknown users are a silent no-op.
	m.PushToUser("user-2", "notification", nil)
}

// Pushes racing a reconnect/disconnect of the same user must never hit the
// closed send channel: attach and detach close it under the write lock, and
// PushToUser sends under the read lock.
func TestManager_PushDuringReconnectChurn(t *testing.T) {
	m := NewManager()
	go m.Run()

	stop := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
					m.PushToUser("user-1", "notification", "payload")
				}
			}
		}()
	}

	for i := 0; i < 500; i++ {
		client := newTestClient("user-1", 4)
		m.attach(client)
		m.detach(client)
	}

	close(stop)
	wg.Wait()
}

func TestManager_PushToUser_FullBufferDisconnects(t *testing.T) {
	m := NewManager()
	go m.Run()

	client := newTestClient("user-1", 1)
	m.register <- client
	require.Eventually(t, func() bool { return m.IsConnected("user-1") }, time.Second, 5*time.Millisecond)

	m.PushToUser("user-1", "notification", "first")
	// Buffer is full now; the next push drops the event and detaches the client.
	m.PushToUser("user-1", "notification", "second")

	require.Eventually(t, func() bool { return !m.IsConnected("user-1") }, time.Second, 5*time.Millisecond)

	event, open := <-client.Send
	require.True(t, open)
	assert.Equal(t, "first", event.Payload)
	_, open = <-client.Send
	assert.False(t, open)
}
