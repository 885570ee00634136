package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"taskboard/internal/auth"
	"taskboard/internal/config"
	"taskboard/internal/database"
	"taskboard/internal/notify"
	"taskboard/internal/realtime"
	"taskboard/internal/repository"
	"taskboard/internal/repository/memory"
)

type Server struct {
	Engine *gin.Engine
	DB     *gorm.DB
	Config *config.Config
	Log    *logrus.Entry

	redis  *redis.Client
	relay  *realtime.RedisRelay
	tracer *sdktrace.TracerProvider
}

// Deps are the collaborators the HTTP routes are built from.
type Deps struct {
	Store     repository.Store
	Hub       *realtime.Hub
	Transport notify.Transport
	Issuer    *auth.TokenIssuer
	Tracer    trace.TracerProvider
	Policy    notify.WorkspacePolicy
}

func Init(cfg *config.Config, log *logrus.Entry) (*Server, error) {
	s := &Server{Config: cfg, Log: log}

	store, err := s.openStore()
	if err != nil {
		return nil, err
	}

	hub := realtime.NewHub(0)
	var transport notify.Transport = hub
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("❌ invalid REDIS_URL: %w", err)
		}
		s.redis = redis.NewClient(opts)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.redis.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("❌ failed to connect to Redis: %w", err)
		}
		s.relay = realtime.NewRedisRelay(s.redis, cfg.RealtimeChannel, hub, log)
		transport = s.relay
		log.Info("✅ Connected to Redis")
	}

	s.tracer, err = newTracerProvider(cfg.TracesExporter, os.Stdout)
	if err != nil {
		return nil, fmt.Errorf("❌ %w", err)
	}
	otel.SetTracerProvider(s.tracer)
	if cfg.TracesExporter != "" && cfg.TracesExporter != TracesNone {
		log.WithField("exporter", cfg.TracesExporter).Info("✅ Trace export enabled")
	}

	s.Engine = NewRouter(cfg, log, Deps{
		Store:     store,
		Hub:       hub,
		Transport: transport,
		Issuer:    auth.NewTokenIssuer(cfg.JWTSecret, time.Duration(cfg.JWTExpiryHours)*time.Hour),
		Tracer:    s.tracer,
		Policy:    notify.ParseWorkspacePolicy(cfg.WorkspaceAudience),
	})
	return s, nil
}

func (s *Server) openStore() (repository.Store, error) {
	if s.Config.StorageDriver == config.StorageMemory {
		s.Log.Warn("⚠️  Using in-memory storage, data is lost on restart")
		return memory.NewStore(), nil
	}

	if s.Config.AutoMigrate {
		if err := database.MigrateUp(s.Config, s.Log); err != nil {
			return nil, fmt.Errorf("❌ failed to migrate DB: %w", err)
		}
	}
	db, err := database.Open(s.Config, s.Log)
	if err != nil {
		return nil, fmt.Errorf("❌ %w", err)
	}
	s.Log.Info("✅ Connected to database")
	s.DB = db
	return repository.NewStore(db), nil
}

func (s *Server) Run() {
	srv := &http.Server{
		Addr:    ":" + s.Config.ServerPort,
		Handler: s.Engine,
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	if s.relay != nil {
		go s.relay.Run(ctx)
	}

	go func() {
		s.Log.Infof("🚀 Server running on port %s", s.Config.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.Log.Fatalf("❌ Failed to listen: %s", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	s.Log.Info("🛑 Shutting down server...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.Log.Fatalf("❌ Server forced to shutdown: %s", err)
	}
	if err := s.tracer.Shutdown(shutdownCtx); err != nil {
		s.Log.WithError(err).Warn("tracer shutdown failed")
	}
	if s.redis != nil {
		_ = s.redis.Close()
	}

	s.Log.Info("✅ Server exited properly")
}
