package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"taskboard/internal/model"
	"taskboard/internal/service"
)

type TaskService interface {
	Create(ctx context.Context, actorID uuid.UUID, in service.CreateTaskInput) (*service.CreateTaskResult, error)
	Get(ctx context.Context, taskID uuid.UUID) (*service.TaskView, error)
	List(ctx context.Context) ([]service.TaskView, error)
	Search(ctx context.Context, query string) ([]service.TaskView, error)
	Stats(ctx context.Context) ([]model.ColumnStat, error)
	Move(ctx context.Context, actorID, taskID, columnID uuid.UUID) (*service.MoveResult, error)
	Delete(ctx context.Context, actorID, taskID uuid.UUID) error
	Urgency(ctx context.Context, limit int) ([]service.BoardUrgency, error)
}

type TaskHandler struct {
	tasks TaskService
	log   *logrus.Entry
}

func NewTaskHandler(tasks TaskService, log *logrus.Entry) *TaskHandler {
	useJSONFieldNames()
	return &TaskHandler{tasks: tasks, log: log.WithField("component", "task_handler")}
}

// SubtaskRequest entries without a title are skipped.
type SubtaskRequest struct {
	Title  string `json:"title"`
	IsDone bool   `json:"isDone"`
}

// CommentRequest entries without content are skipped.
type CommentRequest struct {
	UserID  *uuid.UUID `json:"userId"`
	Content string     `json:"content"`
}

// CreateTaskRequest is the body of POST /task.
type CreateTaskRequest struct {
	Title           string           `json:"title" binding:"required"`
	Description     *string          `json:"description"`
	TimeStart       *time.Time       `json:"timeStart"`
	TimeEnd         *time.Time       `json:"timeEnd"`
	Priority        *string          `json:"priority"`
	AssignedUserIDs []uuid.UUID      `json:"assignedUserIds"`
	Subtasks        []SubtaskRequest `json:"subtasks"`
	Comments        []CommentRequest `json:"comments"`
}

func (r CreateTaskRequest) input() service.CreateTaskInput {
	in := service.CreateTaskInput{
		Title:           r.Title,
		Description:     r.Description,
		TimeStart:       r.TimeStart,
		TimeEnd:         r.TimeEnd,
		Priority:        r.Priority,
		AssignedUserIDs: r.AssignedUserIDs,
	}
	for _, st := range r.Subtasks {
		in.Subtasks = append(in.Subtasks, service.SubtaskInput{Title: st.Title, IsDone: st.IsDone})
	}
	for _, cm := range r.Comments {
		in.Comments = append(in.Comments, service.CommentInput{UserID: cm.UserID, Content: cm.Content})
	}
	return in
}

type MoveTaskRequest struct {
	TaskID   uuid.UUID `json:"taskId"`
	ColumnID uuid.UUID `json:"columnId"`
}

// Create provisions the task's workspace, board and column on demand.
func (h *TaskHandler) Create(c *gin.Context) {
	log := h.log.WithField("operation", "task.create")
	actor, ok := actorID(c)
	if !ok {
		return
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, log, bindError(err))
		return
	}

	result, err := h.tasks.Create(c.Request.Context(), actor, req.input())
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h *TaskHandler) Get(c *gin.Context) {
	log := h.log.WithField("operation", "task.get")
	taskID, ok := uuidParam(c, "taskId")
	if !ok {
		return
	}

	task, err := h.tasks.Get(c.Request.Context(), taskID)
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) List(c *gin.Context) {
	tasks, err := h.tasks.List(c.Request.Context())
	if err != nil {
		respondError(c, h.log.WithField("operation", "task.list"), err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (h *TaskHandler) Search(c *gin.Context) {
	tasks, err := h.tasks.Search(c.Request.Context(), c.Query("query"))
	if err != nil {
		respondError(c, h.log.WithField("operation", "task.search"), err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (h *TaskHandler) Stats(c *gin.Context) {
	stats, err := h.tasks.Stats(c.Request.Context())
	if err != nil {
		respondError(c, h.log.WithField("operation", "task.stats"), err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Move appends the task to the end of the target column.
func (h *TaskHandler) Move(c *gin.Context) {
	log := h.log.WithField("operation", "task.move")
	actor, ok := actorID(c)
	if !ok {
		return
	}

	var req MoveTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, log, bindError(err))
		return
	}

	result, err := h.tasks.Move(c.Request.Context(), actor, req.TaskID, req.ColumnID)
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *TaskHandler) Delete(c *gin.Context) {
	log := h.log.WithField("operation", "task.delete")
	actor, ok := actorID(c)
	if !ok {
		return
	}
	taskID, ok := uuidParam(c, "taskId")
	if !ok {
		return
	}

	if err := h.tasks.Delete(c.Request.Context(), actor, taskID); err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}

// Urgency ranks boards by their best subtask completion score.
func (h *TaskHandler) Urgency(c *gin.Context) {
	ranking, err := h.tasks.Urgency(c.Request.Context(), limitQuery(c, service.DefaultUrgencyLimit))
	if err != nil {
		respondError(c, h.log.WithField("operation", "board.urgency"), err)
		return
	}
	c.JSON(http.StatusOK, ranking)
}
