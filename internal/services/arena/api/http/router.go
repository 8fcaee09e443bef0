// Package http exposes the arena engine over a JSON HTTP API and a
// websocket event feed.
package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/louisbranch/stakepot/internal/services/arena/auth"
	"github.com/louisbranch/stakepot/internal/services/arena/engine"
)

const defaultRequestsPerMinute = 120

// Config carries the dependencies for the arena route tree.
type Config struct {
	Engine *engine.Engine
	Grants auth.Config
	// Feed receives committed journal events for websocket fanout.
	// A nil feed still serves /ws, it just starts empty.
	Feed *Feed
	// AllowedOrigins restricts browser callers. Empty allows any
	// origin.
	AllowedOrigins []string
	// RequestsPerMinute caps requests per client IP. Zero applies
	// the default.
	RequestsPerMinute int
}

type api struct {
	engine *engine.Engine
	grants auth.Config
	feed   *Feed
}

// NewHandler builds the arena HTTP handler. The websocket feed mounts
// outside the timeout group so long-lived connections survive it.
func NewHandler(cfg Config) http.Handler {
	a := &api{engine: cfg.Engine, grants: cfg.Grants, feed: cfg.Feed}
	if a.feed == nil {
		a.feed = NewFeed()
	}
	limit := cfg.RequestsPerMinute
	if limit <= 0 {
		limit = defaultRequestsPerMinute
	}
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"https://*", "http://*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	})

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))
		r.Use(c.Handler)
		r.Use(httprate.LimitByIP(limit, 1*time.Minute))

		r.Get("/healthz", a.handleHealthz)

		r.Route("/v1", func(r chi.Router) {
			r.Use(a.requireGrant)

			r.Route("/matches", func(r chi.Router) {
				r.Post("/", a.handleCreateMatch)
				r.Get("/", a.handleListMatches)
				r.Route("/{matchID}", func(r chi.Router) {
					r.Get("/", a.handleGetMatch)
					r.Post("/join", a.handleJoinMatch)
					r.Post("/start", a.handleStartMatch)
					r.Post("/answers", a.handleSubmitAnswer)
					r.Post("/end", a.handleEndMatch)
					r.Post("/cancel", a.handleCancelMatch)
					r.Post("/claim", a.handleClaimPrize)
					r.Post("/refund", a.handleRefundEntryFee)
					r.Get("/score", a.handleGetScore)
					r.Get("/escrow", a.handleGetEscrow)
					r.Get("/events", a.handleMatchEvents)
				})
			})

			r.Get("/events", a.handleListEvents)
			r.Get("/players/{player}/stats", a.handlePlayerStats)
			r.Get("/config", a.handleGetConfig)
			r.Get("/tokens", a.handleListTokens)

			r.Route("/admin", func(r chi.Router) {
				r.Post("/tokens", a.handleAddToken)
				r.Delete("/tokens/{token}", a.handleRemoveToken)
				r.Put("/fee", a.handleSetFee)
				r.Put("/match-limit", a.handleSetMatchLimit)
				r.Post("/pause", a.handlePause)
				r.Post("/unpause", a.handleUnpause)
				r.Get("/treasury/{token}", a.handleTreasury)
			})
		})
	})

	r.Get("/ws", a.handleFeed)

	return r
}
