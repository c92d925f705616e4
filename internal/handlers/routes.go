package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// conditionalHTTPLogger only logs HTTP requests when HTTP logging is enabled
func (h *Handlers) conditionalHTTPLogger(next http.Handler) http.Handler {
	logger := middleware.Logger(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.Log != nil && h.Log.IsHTTPLoggingEnabled() {
			logger.ServeHTTP(w, r)
		} else {
			next.ServeHTTP(w, r)
		}
	})
}

// Router returns a configured chi router with all routes
func (h *Handlers) Router() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.conditionalHTTPLogger) // Custom conditional HTTP logger
	r.Use(middleware.Recoverer)
	r.Use(middleware.RedirectSlashes)
	r.Use(middleware.Timeout(60 * time.Second))

	// Static files (served from embedded filesystem)
	r.Handle("/static/*", http.StripPrefix("/static/", h.staticServer))

	// Board page
	r.Get("/", h.handleIndex)

	// WebSocket
	r.Get("/ws", h.Hub.ServeWs)

	// QR code for opening the board on another device
	r.Get("/qr", h.handleQR)

	// Auth routes (public)
	r.Post("/api/login", h.handleLogin)
	r.Post("/api/logout", h.handleLogout)
	r.Get("/api/me", h.handleMe)

	// Board API (protected)
	r.Group(func(r chi.Router) {
		r.Use(h.Auth.RequireAuthAPI)

		// Board
		r.Get("/api/board", h.handleGetBoard)
		r.Post("/api/start", h.handleStart)
		r.Post("/api/winner", h.handleSetWinner)
		r.Post("/api/names", h.handleSetNames)
		r.Post("/api/shuffle-seconds", h.handleShuffleSeconds)
		r.Post("/api/select-class", h.handleSelectClass)

		// Classes
		r.Get("/api/classes", h.handleGetClasses)
		r.Post("/api/classes", h.handleCreateClass)
		r.Put("/api/classes/{id}", h.handleUpdateClass)
		r.Delete("/api/classes/{id}", h.handleDeleteClass)

		// Ranking ledger
		r.Get("/api/ranking", h.handleGetRanking)
		r.Delete("/api/ranking/{ts}", h.handleDeleteRankingEntry)
		r.Post("/api/ranking/clear", h.handleClearRanking)
	})

	return r
}
