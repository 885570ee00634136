package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"taskboard/internal/config"
	"taskboard/internal/handler"
	"taskboard/internal/middleware"
	"taskboard/internal/notify"
	"taskboard/internal/ordering"
	"taskboard/internal/realtime"
	"taskboard/internal/service"
)

// NewRouter wires services and handlers over deps and registers every route.
func NewRouter(cfg *config.Config, log *logrus.Entry, deps Deps) *gin.Engine {
	if cfg.AppEnv == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := ordering.NewEngine()
	resolver := notify.NewResolver(deps.Policy)
	publisher := notify.NewPublisher(deps.Transport, log, deps.Tracer)

	taskService := service.NewTaskService(deps.Store, engine, resolver, publisher, log)
	boardService := service.NewBoardService(deps.Store, resolver, publisher, log)
	columnService := service.NewColumnService(deps.Store, engine, resolver, publisher, log)
	subtaskService := service.NewSubtaskService(deps.Store, resolver, publisher, log)
	workspaceService := service.NewWorkspaceService(deps.Store, resolver, publisher, log)
	notificationService := service.NewNotificationService(deps.Store)

	taskHandler := handler.NewTaskHandler(taskService, log)
	boardHandler := handler.NewBoardHandler(boardService, log)
	columnHandler := handler.NewColumnHandler(columnService, log)
	subtaskHandler := handler.NewSubtaskHandler(subtaskService, log)
	workspaceHandler := handler.NewWorkspaceHandler(workspaceService, log)
	notificationHandler := handler.NewNotificationHandler(notificationService, log)
	streamHandler := realtime.NewStreamHandler(deps.Hub, middleware.StreamUser(deps.Issuer), log)

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log))

	// Public routes
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/stream", streamHandler.Stream)

	// Protected routes - require authentication
	authorized := r.Group("/")
	authorized.Use(middleware.WithIssuer(deps.Issuer))
	{
		// Task routes
		authorized.POST("/task", taskHandler.Create)
		authorized.GET("/task/:taskId", taskHandler.Get)
		authorized.PATCH("/task/move", taskHandler.Move)
		authorized.DELETE("/task/:taskId", taskHandler.Delete)
		authorized.GET("/tasks", taskHandler.List)
		authorized.GET("/tasks/search", taskHandler.Search)
		authorized.GET("/stats", taskHandler.Stats)

		// Board routes
		authorized.POST("/board", boardHandler.Create)
		authorized.GET("/board/:id", boardHandler.Get)
		authorized.GET("/boards/urgency", taskHandler.Urgency)
		authorized.GET("/boards/suggested", boardHandler.Suggested)
		authorized.GET("/boards/by-ids", boardHandler.ByIDs)

		authorized.POST("/column", columnHandler.Create)

		// Subtask routes
		authorized.POST("/subtask", subtaskHandler.Create)
		authorized.POST("/subtask/:id", subtaskHandler.Update)
		authorized.DELETE("/subtask/:id", subtaskHandler.Delete)

		// Workspace routes
		authorized.POST("/workspace", workspaceHandler.Create)
		authorized.GET("/workspace", workspaceHandler.List)

		// Notification routes
		authorized.GET("/notifications", notificationHandler.List)
		authorized.PATCH("/notifications/:id/read", notificationHandler.MarkRead)
		authorized.DELETE("/notifications/:id", notificationHandler.Delete)
	}
	return r
}
