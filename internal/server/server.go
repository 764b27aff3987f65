package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"daylist/internal/event"
	"daylist/internal/handler"
	"daylist/internal/middleware"
	"daylist/internal/store"
	ws "daylist/internal/websocket"
)

// Config holds server wiring options.
type Config struct {
	// RateLimit / RateWindow bound mutating requests per client IP.
	RateLimit  int
	RateWindow time.Duration
}

// Server wires stores, handlers, and the change-notification hub.
type Server struct {
	db          *sql.DB
	cfg         Config
	hub         *ws.Hub
	categoryH   *handler.CategoryHandler
	rateLimiter *middleware.RateLimiter
	logger      *slog.Logger
}

// New builds a Server. The event publisher may be nil when AMQP publishing
// is not configured.
func New(db *sql.DB, events *event.Publisher, cfg Config, logger *slog.Logger) *Server {
	if cfg.RateLimit == 0 {
		cfg.RateLimit = 60
	}
	if cfg.RateWindow == 0 {
		cfg.RateWindow = time.Minute
	}

	hub := ws.NewHub(logger.With("component", "websocket"))
	categoryStore := store.NewCategoryStore(db)

	return &Server{
		db:          db,
		cfg:         cfg,
		hub:         hub,
		categoryH:   handler.NewCategoryHandler(categoryStore, hub, events, logger.With("component", "category")),
		rateLimiter: middleware.NewRateLimiter(),
		logger:      logger,
	}
}

// Hub returns the websocket hub, used by tests to observe broadcasts.
func (s *Server) Hub() *ws.Hub {
	return s.hub
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

// Router assembles the HTTP routes described in the external interface:
// date-scoped category listing, category/item creation and mutation, and
// the websocket change feed.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, s.logger.With("component", "websocket")))

	mux.HandleFunc("GET /categories/{date}", s.categoryH.List)
	mux.HandleFunc("POST /categories", s.rateLimited(s.categoryH.Create))
	mux.HandleFunc("POST /categories/items", s.rateLimited(s.categoryH.AddItem))
	mux.HandleFunc("PATCH /categories/{id}", s.rateLimited(s.categoryH.Rename))
	mux.HandleFunc("PATCH /categories/items/{categoryId}/{itemId}", s.rateLimited(s.categoryH.UpdateItem))
	mux.HandleFunc("DELETE /categories/{id}", s.rateLimited(s.categoryH.Delete))

	return middleware.RequestLogger(s.logger.With("component", "http"))(mux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimited(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, s.cfg.RateLimit, s.cfg.RateWindow)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}
