package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"agrosense-backend/api"
	"agrosense-backend/internal/audit"
	"agrosense-backend/internal/auth"
	"agrosense-backend/internal/config"
	"agrosense-backend/internal/database"
	"agrosense-backend/internal/repository/mongodb"
	"agrosense-backend/internal/repository/redisstore"
	"agrosense-backend/internal/service"

	nuts "github.com/vaudience/go-nuts"
)

// Server represents our HTTP server
type Server struct {
	config   *config.Config
	srv      *http.Server
	service  *service.Service
	db       database.DB
	sessions *redisstore.SessionStore
}

// New creates a new server instance
func New(cfg *config.Config) *Server {
	return &Server{config: cfg}
}

// Start connects the backing stores, wires the service and begins
// listening. A store that cannot be reached before the first request is a
// fatal startup condition.
func (s *Server) Start() error {
	s.service = s.initializeService()
	s.setupAuditHandlers()

	router := api.NewRouter(s.service)
	s.srv = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port),
		Handler:      router.Handler(),
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
	}

	go func() {
		nuts.L.Infof("[Server] Starting server on %s", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			nuts.L.Errorf("[Server] Error starting server: %v", err)
			os.Exit(1)
		}
	}()

	return s.waitForShutdown()
}

// waitForShutdown waits for interrupt signal and gracefully shuts down the server
func (s *Server) waitForShutdown() error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	nuts.L.Infof("[Server] Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancel()

	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}

	if err := s.sessions.Close(); err != nil {
		nuts.L.Warnf("[Server] Error closing Redis client: %v", err)
	}
	if err := s.db.Close(ctx); err != nil {
		nuts.L.Warnf("[Server] Error closing MongoDB client: %v", err)
	}

	nuts.L.Infof("[Server] Server shut down successfully")
	return nil
}

// initializeService creates and wires the backing stores and the service
func (s *Server) initializeService() *service.Service {
	s.db = initMongoDB(s.config)
	s.sessions = initSessionStore(s.config)

	readings := mongodb.NewReadingRepository(s.db)
	reports := mongodb.NewReportRepository(s.db)
	users := mongodb.NewUserRepository(s.db)
	history := mongodb.NewLoginHistoryRepository(s.db)

	hasher := auth.NewBcryptHasher(s.config.Auth.BcryptCost)
	signer := auth.NewJWTSigner(s.config.Auth.JWTSecret, s.config.Auth.TokenExpiry)
	auditSvc := audit.New(history)

	svc := service.New(readings, reports, users, s.sessions, hasher, signer, auditSvc, s.config.Auth.TokenExpiry)
	if err := svc.Validate(); err != nil {
		nuts.L.Fatalf("[Server] Invalid service wiring: %v", err)
	}
	return svc
}

// setupAuditHandlers subscribes to the domain events the service emits.
func (s *Server) setupAuditHandlers() {
	s.service.Audit().OnEvent(audit.EventReportResolved, func(id string) {
		nuts.L.Infof("[Audit] Report %s resolved", id)
	})
	s.service.Audit().OnEvent(audit.EventUserDeleted, func(id string) {
		nuts.L.Infof("[Audit] User %s soft-deleted", id)
	})
	s.service.Audit().OnEvent(audit.EventLoginFailed, func(email string) {
		nuts.L.Warnf("[Audit] Failed login attempt for %s", email)
	})
}

func initMongoDB(cfg *config.Config) database.DB {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	db, err := database.NewMongoDB(ctx, cfg.Mongo)
	if err != nil {
		nuts.L.Fatalf("[Server] Failed to connect to MongoDB: %v", err)
	}
	if err := database.EnsureIndexes(ctx, db); err != nil {
		nuts.L.Fatalf("[Server] Failed to create indexes: %v", err)
	}
	return db
}

func initSessionStore(cfg *config.Config) *redisstore.SessionStore {
	store := redisstore.New(cfg.Redis)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := store.Ping(ctx); err != nil {
		nuts.L.Fatalf("[Server] Failed to ping Redis: %v", err)
	}
	return store
}
