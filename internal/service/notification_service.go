package service

import (
	"context"

	"github.com/google/uuid"

	"taskboard/internal/apperr"
	"taskboard/internal/model"
	"taskboard/internal/repository"
)

// NotificationService is the read side of the fan-out pipeline. Every
// operation is scoped to the owning user.
type NotificationService struct {
	store repository.Store
}

func NewNotificationService(store repository.Store) *NotificationService {
	return &NotificationService{store: store}
}

// List returns the user's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, userID uuid.UUID) ([]model.Notification, error) {
	notifications, err := s.store.Notifications().ListByUser(ctx, userID)
	if err != nil {
		return nil, apperr.From(err, "failed to fetch notifications")
	}
	if notifications == nil {
		notifications = []model.Notification{}
	}
	return notifications, nil
}

// MarkRead is idempotent.
func (s *NotificationService) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	return apperr.From(s.store.Notifications().MarkRead(ctx, id, userID), "failed to mark notification")
}

// Delete reports other users' notifications as not found.
func (s *NotificationService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return apperr.From(s.store.Notifications().Delete(ctx, id, userID), "failed to delete notification")
}
