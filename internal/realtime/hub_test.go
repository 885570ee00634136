package realtime_test

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskboard/internal/notify"
	"taskboard/internal/realtime"
)

func TestHub_SendToConnectedUser(t *testing.T) {
	hub := realtime.NewHub(2)
	userID := uuid.New()
	conn := hub.Register(userID)

	err := hub.Send(context.Background(), userID, notify.Payload{Message: "hello"})

	require.NoError(t, err)
	got := <-conn.Messages()
	assert.Equal(t, "hello", got.Message)
}

func TestHub_SendToAbsentUser(t *testing.T) {
	hub := realtime.NewHub(2)

	err := hub.Send(context.Background(), uuid.New(), notify.Payload{})

	assert.ErrorIs(t, err, realtime.ErrNotConnected)
}

func TestHub_SendNeverBlocks(t *testing.T) {
	hub := realtime.NewHub(1)
	userID := uuid.New()
	hub.Register(userID)

	require.NoError(t, hub.Send(context.Background(), userID, notify.Payload{}))
	err := hub.Send(context.Background(), userID, notify.Payload{})

	assert.ErrorIs(t, err, realtime.ErrBufferFull)
}

func TestHub_LastRegistrationWins(t *testing.T) {
	hub := realtime.NewHub(2)
	userID := uuid.New()
	first := hub.Register(userID)
	second := hub.Register(userID)

	_, open := <-first.Messages()
	assert.False(t, open, "replaced connection is closed")

	require.NoError(t, hub.Send(context.Background(), userID, notify.Payload{Message: "m"}))
	got := <-second.Messages()
	assert.Equal(t, "m", got.Message)
}

func TestHub_UnregisterIgnoresStaleConnection(t *testing.T) {
	hub := realtime.NewHub(2)
	userID := uuid.New()
	stale := hub.Register(userID)
	current := hub.Register(userID)

	hub.Unregister(stale)

	assert.True(t, hub.Connected(userID))
	hub.Unregister(current)
	assert.False(t, hub.Connected(userID))
}

func TestHub_ConcurrentUse(t *testing.T) {
	hub := realtime.NewHub(64)
	users := make([]uuid.UUID, 8)
	for i := range users {
		users[i] = uuid.New()
	}

	var wg sync.WaitGroup
	for _, userID := range users {
		wg.Add(2)
		go func(id uuid.UUID) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				conn := hub.Register(id)
				hub.Unregister(conn)
			}
		}(userID)
		go func(id uuid.UUID) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				_ = hub.Send(context.Background(), id, notify.Payload{})
			}
		}(userID)
	}
	wg.Wait()

	for _, userID := range users {
		assert.False(t, hub.Connected(userID))
	}
}
