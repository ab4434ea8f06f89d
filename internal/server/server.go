package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bioenroll/gateway/config"
	"github.com/bioenroll/gateway/internal/db"
	"github.com/bioenroll/gateway/internal/handlers"
	"github.com/bioenroll/gateway/internal/mq"
	"github.com/bioenroll/gateway/internal/services"
	"github.com/bioenroll/gateway/internal/storage"
	"github.com/bioenroll/gateway/internal/store"
	"github.com/bioenroll/gateway/internal/terminal"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server wraps the HTTP server and the resources it owns.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	publisher  *mq.Events
}

// New constructs a Server: audit database, terminal client, optional
// capture archive and event publisher, and the routed HTTP API.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	if strings.TrimSpace(cfg.Auth.JWTSecret) == "" && strings.TrimSpace(cfg.Auth.OperatorKeyHash) == "" {
		return nil, errors.New("JWT_SECRET or OPERATOR_KEY_HASH is required")
	}

	dbConn, err := db.Open(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	eventRepo := store.NewEventRepository(dbConn)

	terminalClient := terminal.NewClient(
		cfg.Terminal.BaseURL,
		terminal.FileTokenSource{Path: cfg.Terminal.TokenFile},
		cfg.Terminal.Timeout,
	)

	archive, err := newArchive(ctx, cfg.Storage)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	publisher, err := newPublisher(ctx, cfg.MQ)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	enrollmentService := services.NewEnrollmentService(terminalClient, eventRepo, archive, publisher)

	authMiddleware := handlers.RequireAuth(cfg.Auth)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	router.Get("/healthz", handlers.Healthz)
	router.Route("/users", func(r chi.Router) {
		r.Use(authMiddleware)
		handlers.UserRouter(r, enrollmentService)
		handlers.FaceRouter(r, archive)
	})
	router.Route("/events", func(r chi.Router) {
		r.Use(authMiddleware)
		handlers.EventRouter(r, enrollmentService)
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
		publisher:  publisher,
	}, nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown closes the server and the resources it owns.
func (s *Server) Shutdown() error {
	if s.publisher != nil {
		_ = s.publisher.Close()
	}
	if s.db != nil {
		_ = s.db.Close()
	}
	return s.httpServer.Close()
}

// newArchive selects the capture-archive backend, or returns nil when
// archival is disabled.
func newArchive(ctx context.Context, cfg config.StorageConfig) (*storage.Archive, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "":
		return nil, nil
	case "minio":
		backend, err := storage.NewMinioClient(cfg.Minio)
		if err != nil {
			return nil, err
		}
		archive := storage.NewArchive(backend)
		if err := archive.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return archive, nil
	case "gcs":
		backend, err := storage.NewGCSClient(ctx, cfg.GCS)
		if err != nil {
			return nil, err
		}
		archive := storage.NewArchive(backend)
		if err := archive.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return archive, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// newPublisher selects the event broker, or returns nil when
// publishing is disabled.
func newPublisher(ctx context.Context, cfg config.MQConfig) (*mq.Events, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "":
		return nil, nil
	case "rabbitmq":
		backend, err := mq.NewRabbitMQClient(cfg.RabbitMQ)
		if err != nil {
			return nil, err
		}
		return mq.NewEvents(backend), nil
	case "pubsub":
		backend, err := mq.NewPubSubClient(ctx, cfg.PubSub)
		if err != nil {
			return nil, err
		}
		return mq.NewEvents(backend), nil
	default:
		return nil, fmt.Errorf("unknown mq backend %q", cfg.Backend)
	}
}
