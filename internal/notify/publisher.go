package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"taskboard/internal/model"
	"taskboard/internal/repository"
)

const tracerName = "taskboard/notify"

// Payload is what a connected client receives for one notification.
type Payload struct {
	NotificationID uuid.UUID  `json:"notificationId"`
	Message        string     `json:"message"`
	Timestamp      time.Time  `json:"timestamp"`
	Kind           Kind       `json:"kind"`
	TaskID         *uuid.UUID `json:"taskId,omitempty"`
	SubtaskID      *uuid.UUID `json:"subtaskId,omitempty"`
	WorkspaceID    *uuid.UUID `json:"workspaceId,omitempty"`
	BoardID        *uuid.UUID `json:"boardId,omitempty"`
	ColumnID       *uuid.UUID `json:"columnId,omitempty"`
	CommentID      *uuid.UUID `json:"commentId,omitempty"`
}

// Transport pushes a payload to one user. Delivery is best effort.
type Transport interface {
	Send(ctx context.Context, userID uuid.UUID, payload Payload) error
}

// Batch is the set of rows persisted for one event.
type Batch struct {
	Event         Event
	Notifications []model.Notification
}

type Publisher struct {
	transport Transport
	log       *logrus.Entry
	tracer    trace.Tracer
}

// NewPublisher uses the global tracer provider when tp is nil.
func NewPublisher(transport Transport, log *logrus.Entry, tp trace.TracerProvider) *Publisher {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &Publisher{
		transport: transport,
		log:       log.WithField("component", "notify"),
		tracer:    tp.Tracer(tracerName),
	}
}

// Persist writes one notification per recipient. Each insert runs in its
// own nested transaction; a recipient whose insert fails is skipped.
func (p *Publisher) Persist(ctx context.Context, s repository.Store, ev Event, audience []uuid.UUID) Batch {
	ctx, span := p.tracer.Start(ctx, "notify.persist")
	defer span.End()

	batch := Batch{Event: ev}
	for _, userID := range audience {
		n := model.Notification{
			ID:          uuid.New(),
			Message:     ev.Message,
			UserID:      userID,
			TaskID:      ev.Subject.TaskID,
			SubtaskID:   ev.Subject.SubtaskID,
			WorkspaceID: ev.Subject.WorkspaceID,
			BoardID:     ev.Subject.BoardID,
			ColumnID:    ev.Subject.ColumnID,
		}
		err := s.InTx(ctx, func(tx repository.Store) error {
			return tx.Notifications().Create(ctx, &n)
		})
		if err != nil {
			p.log.WithFields(logrus.Fields{
				"kind":    ev.Kind,
				"user_id": userID,
			}).WithError(err).Warn("failed to persist notification")
			continue
		}
		batch.Notifications = append(batch.Notifications, n)
	}

	span.SetAttributes(
		attribute.String("notify.kind", string(ev.Kind)),
		attribute.Int("notify.recipients", len(audience)),
		attribute.Int("notify.persisted", len(batch.Notifications)),
	)
	return batch
}

// Deliver pushes every persisted notification to the transport. Failures
// are logged and dropped.
func (p *Publisher) Deliver(ctx context.Context, batches ...Batch) {
	ctx, span := p.tracer.Start(ctx, "notify.deliver")
	defer span.End()

	total, delivered := 0, 0
	for _, b := range batches {
		for _, n := range b.Notifications {
			total++
			err := p.transport.Send(ctx, n.UserID, payloadOf(b.Event, n))
			if err != nil {
				p.log.WithFields(logrus.Fields{
					"kind":            b.Event.Kind,
					"user_id":         n.UserID,
					"notification_id": n.ID,
				}).WithError(err).Debug("real-time delivery skipped")
				continue
			}
			delivered++
		}
	}

	span.SetAttributes(
		attribute.Int("notify.notifications", total),
		attribute.Int("notify.delivered", delivered),
	)
}

// Publish persists and delivers ev outside any caller transaction.
func (p *Publisher) Publish(ctx context.Context, s repository.Store, ev Event, audience []uuid.UUID) Batch {
	batch := p.Persist(ctx, s, ev, audience)
	p.Deliver(ctx, batch)
	return batch
}

func payloadOf(ev Event, n model.Notification) Payload {
	return Payload{
		NotificationID: n.ID,
		Message:        n.Message,
		Timestamp:      n.CreatedAt,
		Kind:           ev.Kind,
		TaskID:         n.TaskID,
		SubtaskID:      n.SubtaskID,
		WorkspaceID:    n.WorkspaceID,
		BoardID:        n.BoardID,
		ColumnID:       n.ColumnID,
		CommentID:      ev.Subject.CommentID,
	}
}
