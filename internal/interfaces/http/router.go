package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/arenalink/auth-service/internal/application"
	"github.com/arenalink/auth-service/internal/domain"
	"github.com/arenalink/auth-service/internal/infrastructure/config"
	"github.com/arenalink/auth-service/internal/infrastructure/database"
	"github.com/arenalink/auth-service/internal/infrastructure/jwt"
	"github.com/arenalink/auth-service/internal/infrastructure/ratelimit"
	"github.com/arenalink/auth-service/internal/infrastructure/repository"
	"github.com/arenalink/auth-service/internal/interfaces/http/handlers"
	"github.com/arenalink/auth-service/internal/interfaces/http/middleware/auth"
	ipratelimit "github.com/arenalink/auth-service/internal/interfaces/http/middleware/ratelimit"
	"github.com/arenalink/auth-service/internal/observability/metrics"
)

type Router struct {
	router *chi.Mux
	db     *database.Postgres
}

// NewRouter wires repositories, services, middleware and routes. The Redis
// client is optional; without it the fixed windows are kept in Postgres.
func NewRouter(
	db *database.Postgres,
	redisClient *redis.Client,
	cfg *config.Config,
	logger *zap.Logger,
) (*Router, error) {
	jwtService, err := jwt.NewService(cfg, logger)
	if err != nil {
		return nil, err
	}

	var limiter domain.Limiter
	if redisClient != nil {
		limiter = ratelimit.NewRedisLimiter(redisClient, logger)
	} else {
		limiter = ratelimit.NewPostgresLimiter(db, logger)
	}

	userRepo := repository.NewUserRepository(db, logger)
	clientRepo := repository.NewClientRepository(db, logger)
	codeRepo := repository.NewCodeRepository(db, logger)
	tokenRepo := repository.NewTokenRepository(db, logger)
	sessionRepo := repository.NewSessionRepository(db, logger)

	clientService := application.NewClientService(clientRepo, logger)
	codeService := application.NewAuthorizationService(codeRepo, logger)
	tokenService := application.NewTokenService(tokenRepo, userRepo, jwtService, logger)
	sessionService := application.NewSessionService(userRepo, sessionRepo, limiter,
		cfg.MaxLoginAttempts, cfg.LockoutDuration, cfg.UserSessionDuration, cfg.AdminSessionDuration, logger)

	m := metrics.Init()
	authMiddleware := auth.NewMiddleware(tokenService, sessionService, logger)
	oauthHandler := handlers.NewOAuthHandler(clientService, codeService, tokenService, userRepo, limiter, m, logger)
	authHandler := handlers.NewAuthHandler(sessionService, m, logger)

	router := createRouter()
	router.Use(m.Middleware)

	rateLimiter := ipratelimit.NewRateLimiter(100, 200, 3*time.Minute)
	router.Use(rateLimiter.Middleware)

	router.Group(func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("OK"))
		})

		r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
			if err := db.Ping(); err != nil {
				logger.Error("Database health check failed", zap.Error(err))
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte("Database connection failed"))
				return
			}
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("Ready"))
		})

		r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("Alive"))
		})
	})

	router.Method(http.MethodGet, "/metrics", metrics.Handler())

	// Login sessions
	router.Post("/login", authHandler.LoginHandler)
	router.Post("/logout", authHandler.LogoutHandler)

	// OAuth2 endpoints
	router.Route("/oauth2", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.RequireSession)
			r.Get("/authorize", oauthHandler.AuthorizeHandler)
		})

		r.Post("/token", oauthHandler.TokenHandler)
		r.Post("/revoke", oauthHandler.RevokeHandler)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.RequireScopes("openid"))
			r.Get("/userinfo", oauthHandler.UserInfoHandler)
		})
	})

	return &Router{router: router, db: db}, nil
}

func createRouter() *chi.Mux {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Timeout(60 * time.Second))

	return router
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.router.ServeHTTP(w, req)
}
