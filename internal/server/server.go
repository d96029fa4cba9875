package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/bitacora-blog/apiserver/config"
	"github.com/bitacora-blog/apiserver/internal/auth"
	"github.com/bitacora-blog/apiserver/internal/db"
	"github.com/bitacora-blog/apiserver/internal/handlers"
	"github.com/bitacora-blog/apiserver/internal/metrics"
	"github.com/bitacora-blog/apiserver/internal/mq"
	"github.com/bitacora-blog/apiserver/internal/services"
	"github.com/bitacora-blog/apiserver/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Dependencies are the collaborators the HTTP router is built from.
type Dependencies struct {
	Users          services.UserRepository
	Blogs          services.BlogRepository
	Hasher         services.PasswordCodec
	Tokens         *auth.TokenCodec
	Events         *services.EventEmitter
	Registry       *prometheus.Registry
	Logger         *slog.Logger
	RequestTimeout time.Duration
}

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	broker     *mq.MQ
	logger     *slog.Logger
}

// New connects to the database and, when configured, the message broker,
// and builds the HTTP server.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	broker, err := mq.Open(ctx, cfg.MQ)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	var events *services.EventEmitter
	if broker != nil {
		events = services.NewEventEmitter(broker, cfg.MQ.EventsChannel, logger)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	router := NewRouter(Dependencies{
		Users:          store.NewUserRepository(dbConn),
		Blogs:          store.NewBlogRepository(dbConn),
		Hasher:         auth.NewPasswordHasher(cfg.Auth.BcryptCost, cfg.Auth.BcryptMaxConcurrent),
		Tokens:         auth.NewTokenCodec([]byte(cfg.Auth.JWTSecret), cfg.Auth.TokenTTL, time.Now),
		Events:         events,
		Registry:       registry,
		Logger:         logger,
		RequestTimeout: cfg.Server.RequestTimeout,
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
		broker:     broker,
		logger:     logger,
	}, nil
}

// NewRouter builds the HTTP routes with basic middleware.
func NewRouter(deps Dependencies) *chi.Mux {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := deps.RequestTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	registry := deps.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	collector := metrics.NewCollector(registry)
	guard := handlers.NewGuard(deps.Tokens, collector)
	userHandler := handlers.NewUserHandler(services.NewUserService(deps.Users, deps.Hasher), deps.Tokens, collector, logger)
	blogHandler := handlers.NewBlogHandler(services.NewBlogService(deps.Blogs, deps.Events), logger)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		handlers.RequestLogger(logger),
		handlers.RequestMetrics(collector),
		middleware.Recoverer,
		middleware.Timeout(timeout),
	)
	router.Get("/healthz", handlers.Healthz)
	router.Method(http.MethodGet, "/metrics", metrics.Handler(registry))
	router.Route("/users", func(r chi.Router) {
		handlers.UserRouter(r, userHandler, guard)
	})
	router.Route("/blogs", func(r chi.Router) {
		handlers.BlogRouter(r, blogHandler, guard)
	})

	return router
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("server listening", slog.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and releases the broker and database.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	if s.broker != nil {
		if closeErr := s.broker.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close broker: %w", closeErr))
		}
	}
	if s.db != nil {
		if closeErr := s.db.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close database: %w", closeErr))
		}
	}
	return err
}
