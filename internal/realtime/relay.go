package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"taskboard/internal/notify"
)

const (
	DefaultChannel   = "taskboard:notifications"
	resubscribeDelay = time.Second
)

type envelope struct {
	UserID  uuid.UUID      `json:"userId"`
	Payload notify.Payload `json:"payload"`
}

// RedisRelay fans notifications out through a Redis channel so that every
// instance delivers to the connections it holds.
type RedisRelay struct {
	rc      *redis.Client
	channel string
	hub     *Hub
	log     *logrus.Entry
}

var _ notify.Transport = (*RedisRelay)(nil)

func NewRedisRelay(rc *redis.Client, channel string, hub *Hub, log *logrus.Entry) *RedisRelay {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisRelay{rc: rc, channel: channel, hub: hub, log: log.WithField("component", "relay")}
}

// Send publishes the payload for the instance holding the user's stream.
func (r *RedisRelay) Send(ctx context.Context, userID uuid.UUID, payload notify.Payload) error {
	data, err := json.Marshal(envelope{UserID: userID, Payload: payload})
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	if err := r.rc.Publish(ctx, r.channel, data).Err(); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// Run delivers relayed payloads to the local hub until ctx is done.
func (r *RedisRelay) Run(ctx context.Context) {
	for {
		r.consume(ctx)
		select {
		case <-ctx.Done():
			return
		case <-time.After(resubscribeDelay):
			r.log.Info("resubscribing")
		}
	}
}

func (r *RedisRelay) consume(ctx context.Context) {
	sub := r.rc.Subscribe(ctx, r.channel)
	defer sub.Close()
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				r.log.Warn("subscription channel closed")
				return
			}
			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				r.log.WithError(err).Error("unable to parse relayed notification")
				continue
			}
			if err := r.hub.Send(ctx, env.UserID, env.Payload); err != nil {
				r.log.WithError(err).WithField("user_id", env.UserID).Debug("relayed notification dropped")
			}
		}
	}
}
