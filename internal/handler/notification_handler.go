package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"taskboard/internal/model"
)

type NotificationService interface {
	List(ctx context.Context, userID uuid.UUID) ([]model.Notification, error)
	MarkRead(ctx context.Context, userID, id uuid.UUID) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// NotificationHandler serves the caller's own notifications only.
type NotificationHandler struct {
	notifications NotificationService
	log           *logrus.Entry
}

func NewNotificationHandler(notifications NotificationService, log *logrus.Entry) *NotificationHandler {
	return &NotificationHandler{notifications: notifications, log: log.WithField("component", "notification_handler")}
}

func (h *NotificationHandler) List(c *gin.Context) {
	actor, ok := actorID(c)
	if !ok {
		return
	}

	notifications, err := h.notifications.List(c.Request.Context(), actor)
	if err != nil {
		respondError(c, h.log.WithField("operation", "notification.list"), err)
		return
	}
	c.JSON(http.StatusOK, notifications)
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	actor, ok := actorID(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.notifications.MarkRead(c.Request.Context(), actor, id); err != nil {
		respondError(c, h.log.WithField("operation", "notification.mark_read"), err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}

func (h *NotificationHandler) Delete(c *gin.Context) {
	actor, ok := actorID(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.notifications.Delete(c.Request.Context(), actor, id); err != nil {
		respondError(c, h.log.WithField("operation", "notification.delete"), err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification deleted successfully"})
}
