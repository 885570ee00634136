package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"taskboard/internal/model"
)

type WorkspaceService interface {
	Create(ctx context.Context, actorID uuid.UUID, name string) (*model.Workspace, error)
	List(ctx context.Context) ([]model.Workspace, error)
}

type WorkspaceHandler struct {
	workspaces WorkspaceService
	log        *logrus.Entry
}

func NewWorkspaceHandler(workspaces WorkspaceService, log *logrus.Entry) *WorkspaceHandler {
	useJSONFieldNames()
	return &WorkspaceHandler{workspaces: workspaces, log: log.WithField("component", "workspace_handler")}
}

type CreateWorkspaceRequest struct {
	Name string `json:"name" binding:"required"`
}

func (h *WorkspaceHandler) Create(c *gin.Context) {
	log := h.log.WithField("operation", "workspace.create")
	actor, ok := actorID(c)
	if !ok {
		return
	}

	var req CreateWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, log, bindError(err))
		return
	}

	workspace, err := h.workspaces.Create(c.Request.Context(), actor, req.Name)
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusCreated, workspace)
}

func (h *WorkspaceHandler) List(c *gin.Context) {
	workspaces, err := h.workspaces.List(c.Request.Context())
	if err != nil {
		respondError(c, h.log.WithField("operation", "workspace.list"), err)
		return
	}
	c.JSON(http.StatusOK, workspaces)
}
