package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"taskboard/internal/apperr"
	"taskboard/internal/model"
	"taskboard/internal/service"
)

type BoardService interface {
	Create(ctx context.Context, actorID, workspaceID uuid.UUID, name string) (*model.Board, error)
	Get(ctx context.Context, boardID uuid.UUID) (*service.BoardView, error)
	ByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Board, error)
	Suggested(ctx context.Context, userID uuid.UUID, limit int) ([]service.SuggestedBoard, error)
}

type BoardHandler struct {
	boards BoardService
	log    *logrus.Entry
}

func NewBoardHandler(boards BoardService, log *logrus.Entry) *BoardHandler {
	useJSONFieldNames()
	return &BoardHandler{boards: boards, log: log.WithField("component", "board_handler")}
}

type CreateBoardRequest struct {
	Name        string    `json:"name" binding:"required"`
	WorkspaceID uuid.UUID `json:"workspaceId"`
}

// Create creates a board inside an existing workspace
func (h *BoardHandler) Create(c *gin.Context) {
	log := h.log.WithField("operation", "board.create")
	actor, ok := actorID(c)
	if !ok {
		return
	}

	var req CreateBoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, log, bindError(err))
		return
	}

	board, err := h.boards.Create(c.Request.Context(), actor, req.WorkspaceID, req.Name)
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusCreated, board)
}

// Get returns the board with nested columns and tasks
func (h *BoardHandler) Get(c *gin.Context) {
	boardID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	board, err := h.boards.Get(c.Request.Context(), boardID)
	if err != nil {
		respondError(c, h.log.WithField("operation", "board.get"), err)
		return
	}
	c.JSON(http.StatusOK, board)
}

// ByIDs accepts ?ids=a,b,c as well as repeated ids parameters.
func (h *BoardHandler) ByIDs(c *gin.Context) {
	log := h.log.WithField("operation", "board.by_ids")

	var ids []uuid.UUID
	for _, raw := range c.QueryArray("ids") {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := uuid.Parse(part)
			if err != nil {
				respondError(c, log, apperr.ValidationFields("Invalid ids", map[string]string{"ids": "must be valid UUIDs"}))
				return
			}
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		respondError(c, log, apperr.ValidationFields("ids query parameter is required", map[string]string{"ids": "is required"}))
		return
	}

	boards, err := h.boards.ByIDs(c.Request.Context(), ids)
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, boards)
}

// Suggested ranks the caller's boards by recent activity.
func (h *BoardHandler) Suggested(c *gin.Context) {
	actor, ok := actorID(c)
	if !ok {
		return
	}

	boards, err := h.boards.Suggested(c.Request.Context(), actor, limitQuery(c, service.DefaultSuggestedLimit))
	if err != nil {
		respondError(c, h.log.WithField("operation", "board.suggested"), err)
		return
	}
	c.JSON(http.StatusOK, boards)
}
