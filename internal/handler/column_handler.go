package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"taskboard/internal/model"
)

type ColumnService interface {
	Create(ctx context.Context, actorID, boardID uuid.UUID, name string) (*model.Column, error)
}

type ColumnHandler struct {
	columns ColumnService
	log     *logrus.Entry
}

func NewColumnHandler(columns ColumnService, log *logrus.Entry) *ColumnHandler {
	useJSONFieldNames()
	return &ColumnHandler{columns: columns, log: log.WithField("component", "column_handler")}
}

type CreateColumnRequest struct {
	Name    string    `json:"name" binding:"required"`
	BoardID uuid.UUID `json:"boardId"`
}

// Create appends a named column to the board.
func (h *ColumnHandler) Create(c *gin.Context) {
	log := h.log.WithField("operation", "column.create")
	actor, ok := actorID(c)
	if !ok {
		return
	}

	var req CreateColumnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, log, bindError(err))
		return
	}

	column, err := h.columns.Create(c.Request.Context(), actor, req.BoardID, req.Name)
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusCreated, column)
}
