// Package web provides the local HTTP UI for weldview.
package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/JonMunkholm/weldview/internal/config"
	"github.com/JonMunkholm/weldview/internal/core"
	"github.com/JonMunkholm/weldview/internal/render"
	weblog "github.com/JonMunkholm/weldview/internal/web/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// contentSecurityPolicy allows the page's inline styles and same-origin charts.
const contentSecurityPolicy = "default-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; form-action 'self'; frame-ancestors 'none'"

// Server is the HTTP front-end over a Controller.
type Server struct {
	cfg        *config.Config
	controller *core.Controller
	charts     *render.Cache
	limiter    *core.UploadLimiter
	router     *chi.Mux
	server     *http.Server

	mu        sync.Mutex
	lastBatch *batchResponse
}

// NewServer creates a Server. charts must be the renderer the controller
// was built with, so the page always shows the last settled scene.
func NewServer(cfg *config.Config, controller *core.Controller, charts *render.Cache, limiter *core.UploadLimiter) *Server {
	s := &Server{
		cfg:        cfg,
		controller: controller,
		charts:     charts,
		limiter:    limiter,
		router:     chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(weblog.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))
	s.router.Use(securityHeaders(s.cfg.Security.EnableCSP))
}

func (s *Server) setupRoutes() {
	s.router.Get("/", s.handleIndex)
	s.router.Get("/chart.svg", s.handleChart(render.SVG))
	s.router.Get("/chart.png", s.handleChart(render.PNG))

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/files", s.handleListFiles)
		r.Post("/files", s.handleUpload)
		r.Delete("/files/{id}", s.handleRemove)

		// HTML forms can only POST.
		r.Post("/files/{id}/delete", s.handleRemove)
		r.Post("/files/{id}/toggle", s.handleToggle)
		r.Post("/files/{id}/color", s.handleSetColor)
		r.Post("/clear", s.handleClear)

		r.Get("/scene", s.handleScene)
		r.Get("/status", s.handleStatus)
	})
}

// Start begins listening on the configured address.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

func securityHeaders(enableCSP bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "same-origin")
			if enableCSP {
				h.Set("Content-Security-Policy", contentSecurityPolicy)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// writeJSON encodes v as JSON and writes it to w.
// Encoding errors are only logged since headers are already sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
