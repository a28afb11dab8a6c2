// Package server provides the HTTP REST API for the interview service.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/ratuser/inter-prep-GenAi/internal/cache"
	"github.com/ratuser/inter-prep-GenAi/internal/config"
	"github.com/ratuser/inter-prep-GenAi/internal/db"
	"github.com/ratuser/inter-prep-GenAi/internal/interview"
	"github.com/ratuser/inter-prep-GenAi/internal/llm"
	"github.com/ratuser/inter-prep-GenAi/internal/observability"
	"github.com/ratuser/inter-prep-GenAi/internal/server/middleware"
	"github.com/ratuser/inter-prep-GenAi/internal/server/ratelimit"
	"github.com/ratuser/inter-prep-GenAi/internal/types"
)

// defaultRequestTimeout applies when Deps.RequestTimeout is unset.
const defaultRequestTimeout = 60 * time.Second

// Deps are the collaborators the HTTP layer is built from. Limiter and
// Metrics are optional; ProfileSource defaults to the Profiles store.
type Deps struct {
	Users              UserStore
	Profiles           ProfileStore
	Interviews         InterviewRepository
	ProfileSource      ProfileSource
	ProfileInvalidator ProfileInvalidator

	Controller *interview.Controller
	Recorder   *interview.Recorder
	JWT        *JWTService
	Passwords  *config.PasswordConfig

	Limiter *ratelimit.Limiter
	Metrics *observability.Metrics
	CORS    config.CORSConfig

	// RequestTimeout bounds each request; zero uses defaultRequestTimeout.
	RequestTimeout time.Duration
}

// NewHandler builds the routed API.
func NewHandler(d Deps) http.Handler {
	source := d.ProfileSource
	if source == nil {
		source = NewProfileLoader(d.Profiles)
	}

	authHandler := NewAuthHandler(NewUserService(d.Users, d.Passwords), d.JWT)
	interviewHandler := NewInterviewHandler(d.Controller, d.Recorder, source)
	profileHandler := NewProfileHandler(d.Profiles, d.ProfileInvalidator)
	dashboardHandler := NewDashboardHandler(d.Interviews)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(loggingMiddleware)
	r.Use(chimw.Recoverer)
	if d.Metrics != nil {
		r.Use(d.Metrics.HTTPMiddleware)
	}
	r.Use(cors.Handler(corsOptions(d.CORS)))
	if d.Limiter != nil {
		r.Use(rateLimitMiddleware(d.Limiter))
	}
	timeout := d.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	r.Use(chimw.Timeout(timeout))

	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", handleHealth)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.With(middleware.AuthMiddleware(d.JWT.TokenValidator())).Get("/me", authHandler.Me)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(d.JWT.TokenValidator()))

			r.Post("/interview/chat", interviewHandler.Chat)
			r.Post("/interview/complete", interviewHandler.Complete)

			r.Get("/profile", profileHandler.Get)
			r.Put("/profile", profileHandler.Put)

			r.Get("/dashboard/stats", dashboardHandler.Stats)
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		errorResponse(w, http.StatusNotFound, "Route not found")
	})

	return r
}

// corsOptions allows the configured origins plus, optionally, any Vercel
// preview deployment.
func corsOptions(c config.CORSConfig) cors.Options {
	return cors.Options{
		AllowOriginFunc: func(_ *http.Request, origin string) bool {
			return originAllowed(c, origin)
		},
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}
}

func originAllowed(c config.CORSConfig, origin string) bool {
	if slices.Contains(c.Origins, origin) {
		return true
	}
	return c.AllowVercel && strings.HasPrefix(origin, "https://") && strings.HasSuffix(origin, ".vercel.app")
}

// loggingMiddleware logs each request with slog once it completes.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		slog.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", chimw.GetReqID(r.Context()),
			"remote_addr", r.RemoteAddr,
		)
	})
}

// rateLimitMiddleware applies per-client, per-endpoint token buckets.
func rateLimitMiddleware(l *ratelimit.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			allowed, info := l.Allow(extractClientID(r), r.URL.Path, r.Method)
			setRateLimitHeaders(w, info)
			if !allowed {
				retryAfter := int(info.RetryAfter.Seconds())
				if retryAfter > 0 {
					w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				}
				slog.Warn("rate limit exceeded",
					"client", extractClientID(r),
					"path", r.URL.Path,
					"limit", info.Limit,
					"reset", info.ResetTime.Format(time.RFC3339),
				)
				errorResponse(w, http.StatusTooManyRequests, "Too many requests. Please try again later.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// extractClientID returns the caller's IP. RealIP has already replaced
// RemoteAddr when a trusted forwarding header is present.
func extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

func setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	jsonResponse(w, http.StatusOK, types.HealthResponse{Status: "ok", Timestamp: time.Now().UTC()})
}

// jsonResponse writes a JSON response
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// errorResponse writes an error JSON response
func errorResponse(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, types.ErrorResponse{Message: message})
}

// Server owns the listener and every connection the API depends on.
type Server struct {
	httpServer      *http.Server
	shutdownTimeout time.Duration
	db              *db.DB
	redis           *redis.Client
	gateway         llm.Client
	rateLimiter     *ratelimit.Limiter
}

// New connects to the database, the optional Redis cache and the model
// gateway, then wires the API.
func New(ctx context.Context, cfg *config.Config) (*Server, error) {
	if cfg.Database.URL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	database, err := db.Connect(ctx, cfg.Database.URL)
	if err != nil {
		return nil, err
	}

	s := &Server{
		shutdownTimeout: cfg.Server.ShutdownTimeout,
		db:              database,
	}
	ok := false
	defer func() {
		if !ok {
			s.close()
		}
	}()

	metrics := observability.NewMetrics()

	var (
		source      ProfileSource = NewProfileLoader(database)
		invalidator ProfileInvalidator
	)
	if cfg.Redis.Enabled() {
		client, err := cache.NewClient(ctx, cfg.Redis.URL)
		if err != nil {
			return nil, err
		}
		s.redis = client
		profileCache := cache.NewProfileCache(client, source, cfg.Redis.ProfileTTL)
		source, invalidator = profileCache, profileCache
		slog.Info("profile cache enabled", "ttl", cfg.Redis.ProfileTTL)
	}

	gateway, err := llm.NewClient(ctx, cfg.LLM.GatewayConfig(), cfg.LLM.ResolveAPIKey())
	if err != nil {
		return nil, fmt.Errorf("failed to create model gateway: %w", err)
	}
	s.gateway = gateway

	retry := cfg.LLM.RetryConfig()
	retry.OnRetry = metrics.ObserveRetry

	scripts, err := interview.DefaultScripts()
	if err != nil {
		return nil, err
	}
	controller, err := interview.NewController(interview.ControllerConfig{
		Gateway:  gateway,
		Scripts:  scripts,
		Retry:    retry,
		Options:  cfg.ControllerOptions(),
		Observer: metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create interview controller: %w", err)
	}
	recorder := interview.NewRecorder(scripts, &interviewWriter{repo: database}, metrics)

	passwordConfig, err := config.NewPasswordConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to create password config: %w", err)
	}
	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT config: %w", err)
	}

	limitConfig, err := ratelimit.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load rate limit config: %w", err)
	}
	s.rateLimiter = ratelimit.NewLimiter(limitConfig)

	handler := NewHandler(Deps{
		Users:              database,
		Profiles:           database,
		Interviews:         database,
		ProfileSource:      source,
		ProfileInvalidator: invalidator,
		Controller:         controller,
		Recorder:           recorder,
		JWT:                NewJWTService(jwtConfig),
		Passwords:          passwordConfig,
		Limiter:            s.rateLimiter,
		Metrics:            metrics,
		CORS:               cfg.CORS,
		RequestTimeout:     cfg.LLM.RequestTimeout(),
	})

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout(),
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	slog.Info("interview gateway configured",
		"provider", cfg.LLM.Provider,
		"model", cfg.LLM.GatewayConfig().ResolveModel(),
		"max_retries", retry.MaxRetries,
		"worst_case_retry_wait", cfg.LLM.WorstCaseRetryWait(),
		"request_timeout", cfg.LLM.RequestTimeout(),
	)

	ok = true
	return s, nil
}

// Start serves until ctx is cancelled, then shuts down gracefully and
// releases every connection.
func (s *Server) Start(ctx context.Context) error {
	defer s.close()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("server starting", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	slog.Info("server stopped")
	return nil
}

func (s *Server) close() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	if s.gateway != nil {
		if err := s.gateway.Close(); err != nil {
			slog.Warn("failed to close model gateway", "error", err)
		}
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			slog.Warn("failed to close redis", "error", err)
		}
	}
	if s.db != nil {
		s.db.Close()
	}
}
