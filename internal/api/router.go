// Package api serves scores, statistics, achievements, replays and online
// match history over HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/vovakirdan/tui-tetris/internal/achievements"
	"github.com/vovakirdan/tui-tetris/internal/storage"
)

// maxReplayBytes bounds uploaded replay bodies.
const maxReplayBytes = 8 << 20

// NewRouter creates the Chi router with all routes and middleware.
func NewRouter(store *storage.Store, defs []achievements.Definition, logger *log.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(RequestID)
	r.Use(Logger(logger))
	r.Use(Recovery(logger))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found: "+r.URL.Path)
	})

	h := &Handler{store: store, achievements: defs, now: time.Now}

	r.Get("/healthz", h.Health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/modes", h.Modes)
		r.Get("/scores", h.Scores)
		r.Get("/stats", h.Stats)
		r.Get("/achievements", h.Achievements)
		r.Get("/matches", h.Matches)
		r.Get("/matches/{id}", h.GetMatch)
		r.Get("/standings", h.Standings)

		r.Route("/replays", func(r chi.Router) {
			r.Get("/", h.ListReplays)
			r.Post("/", h.UploadReplay)
			r.Get("/{id}", h.GetReplay)
			r.Delete("/{id}", h.DeleteReplay)
		})
	})

	return r
}

// NewServer wraps the router in an http.Server listening on addr.
func NewServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
