// Package httpapi wires the HTTP surface: role catalog reads, night
// action submission, and the moderator resolve endpoint.
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/davidarico/stinkbot-sub000/internal/catalog"
	"github.com/davidarico/stinkbot-sub000/internal/engine"
	"github.com/davidarico/stinkbot-sub000/internal/httpapi/handler"
	"github.com/davidarico/stinkbot-sub000/internal/ratelimit"
	"github.com/davidarico/stinkbot-sub000/internal/rules"
	"github.com/davidarico/stinkbot-sub000/internal/store"
	"github.com/davidarico/stinkbot-sub000/internal/websocket"
)

// Config carries everything the router needs beyond the database.
type Config struct {
	Catalog *catalog.Catalog
	Rules   *rules.GameRules
	// TokenSecret signs websocket tokens; empty disables the stream.
	TokenSecret []byte
	// ModeratorKeyHash is the bcrypt hash moderator requests must match.
	ModeratorKeyHash string
	// RateLimiter is optional; nil means no limiting.
	RateLimiter ratelimit.Limiter
}

// NewRouter builds the root HTTP router with basic middleware, the
// night resolution engine and the moderator websocket hub.
func NewRouter(pool *pgxpool.Pool, cfg Config) (http.Handler, error) {
	limiter := cfg.RateLimiter
	if limiter == nil {
		limiter = &ratelimit.Noop{}
	}

	gameStore := store.NewGameStore(pool)
	eng, err := engine.New(cfg.Catalog, cfg.Rules, gameStore)
	if err != nil {
		return nil, err
	}

	hub := websocket.NewHub()
	go hub.Run()
	wsHandler := websocket.NewHandler(hub, cfg.TokenSecret)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Moderator-Key"},
		MaxAge:         300,
	}))

	r.Get("/healthz", handler.Healthz)
	r.Get("/ws/games/{gameID}", wsHandler.ServeWS)

	rateLimitByIP := RateLimitMiddleware(limiter, RateLimitKeyByIP)
	requireModerator := RequireModerator(cfg.ModeratorKeyHash)

	roleHandler := handler.NewRoleHandler(cfg.Catalog)
	r.Route("/api/roles", func(r chi.Router) {
		r.Get("/", roleHandler.ListRoles)
		r.Get("/{roleID}", roleHandler.GetRole)
		r.Get("/{roleID}/input-requirements", roleHandler.GetInputRequirements)
	})

	nightHandler := handler.NewNightHandler(gameStore, eng, hub, cfg.TokenSecret)
	r.Route("/api/games/{gameID}", func(r chi.Router) {
		r.Use(LimitRequestBody(DefaultMaxBodyBytes))
		r.With(rateLimitByIP).Post("/nights/{night}/actions", nightHandler.SubmitAction)
		r.With(requireModerator).Post("/nights/{night}/resolve", nightHandler.ResolveNight)
		r.With(requireModerator).Post("/ws-token", nightHandler.IssueWSToken)
	})

	return r, nil
}

// DefaultRateLimiter limits action submissions to 30 per minute per IP.
// Single-instance only; swap for a shared limiter behind a balancer.
func DefaultRateLimiter() ratelimit.Limiter {
	return ratelimit.NewInMemory(30, time.Minute)
}
