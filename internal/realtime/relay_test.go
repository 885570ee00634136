package realtime_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskboard/internal/notify"
	"taskboard/internal/realtime"
)

func quietLog() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func TestRedisRelay_DeliversToAddressedUser(t *testing.T) {
	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rc.Close() })

	hub := realtime.NewHub(4)
	userID := uuid.New()
	conn := hub.Register(userID)
	relay := realtime.NewRedisRelay(rc, "test:notifications", hub, quietLog())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go relay.Run(ctx)

	require.Eventually(t, func() bool {
		return mr.PubSubNumSub("test:notifications")["test:notifications"] == 1
	}, 2*time.Second, 10*time.Millisecond)

	notificationID := uuid.New()
	require.NoError(t, relay.Send(ctx, uuid.New(), notify.Payload{Message: "not yours"}))
	require.NoError(t, relay.Send(ctx, userID, notify.Payload{NotificationID: notificationID, Message: "yours"}))

	select {
	case got := <-conn.Messages():
		assert.Equal(t, notificationID, got.NotificationID)
		assert.Equal(t, "yours", got.Message)
	case <-time.After(2 * time.Second):
		t.Fatal("relayed notification not delivered")
	}
}

func TestRedisRelay_SendFailsWhenRedisIsDown(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()
	rc := redis.NewClient(&redis.Options{Addr: addr, MaxRetries: -1, DialTimeout: 200 * time.Millisecond})
	t.Cleanup(func() { _ = rc.Close() })
	relay := realtime.NewRedisRelay(rc, "", realtime.NewHub(1), quietLog())

	err := relay.Send(context.Background(), uuid.New(), notify.Payload{})

	assert.Error(t, err)
}
