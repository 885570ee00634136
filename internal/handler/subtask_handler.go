package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"taskboard/internal/model"
	"taskboard/internal/service"
)

type SubtaskService interface {
	Create(ctx context.Context, actorID, taskID uuid.UUID, title string) (*model.Subtask, error)
	Update(ctx context.Context, actorID, subtaskID uuid.UUID, in service.UpdateSubtaskInput) (*model.Subtask, error)
	Delete(ctx context.Context, actorID, subtaskID uuid.UUID) error
}

type SubtaskHandler struct {
	subtasks SubtaskService
	log      *logrus.Entry
}

func NewSubtaskHandler(subtasks SubtaskService, log *logrus.Entry) *SubtaskHandler {
	useJSONFieldNames()
	return &SubtaskHandler{subtasks: subtasks, log: log.WithField("component", "subtask_handler")}
}

type CreateSubtaskRequest struct {
	TaskID uuid.UUID `json:"taskId"`
	Title  string    `json:"title" binding:"required"`
}

// UpdateSubtaskRequest leaves absent fields untouched.
type UpdateSubtaskRequest struct {
	Title  *string `json:"title"`
	IsDone *bool   `json:"isDone"`
}

func (h *SubtaskHandler) Create(c *gin.Context) {
	log := h.log.WithField("operation", "subtask.create")
	actor, ok := actorID(c)
	if !ok {
		return
	}

	var req CreateSubtaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, log, bindError(err))
		return
	}

	subtask, err := h.subtasks.Create(c.Request.Context(), actor, req.TaskID, req.Title)
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusCreated, subtask)
}

func (h *SubtaskHandler) Update(c *gin.Context) {
	log := h.log.WithField("operation", "subtask.update")
	actor, ok := actorID(c)
	if !ok {
		return
	}
	subtaskID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req UpdateSubtaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, log, bindError(err))
		return
	}

	subtask, err := h.subtasks.Update(c.Request.Context(), actor, subtaskID, service.UpdateSubtaskInput{
		Title:  req.Title,
		IsDone: req.IsDone,
	})
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, subtask)
}

func (h *SubtaskHandler) Delete(c *gin.Context) {
	log := h.log.WithField("operation", "subtask.delete")
	actor, ok := actorID(c)
	if !ok {
		return
	}
	subtaskID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.subtasks.Delete(c.Request.Context(), actor, subtaskID); err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Subtask deleted successfully"})
}
