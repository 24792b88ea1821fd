package v1

import (
	"context"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/kurochkinivan/pdf2csv/internal/config"
)

type Server struct {
	httpServer *http.Server
}

func NewServer(cfg config.HTTP, sessions SessionRegistry, resolver URLResolver) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         net.JoinHostPort(cfg.Host, cfg.Port),
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
			Handler:      NewRouter(sessions, resolver),
		},
	}
}

func NewRouter(sessions SessionRegistry, resolver URLResolver) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	h := NewSessionsHandler(sessions, resolver)
	r.Route("/api/v1/sessions", func(r chi.Router) {
		r.Post("/", h.CreateSession)

		r.Route("/{session_id}", func(r chi.Router) {
			r.Get("/", h.GetSession)
			r.Delete("/", h.DeleteSession)
			r.With(middleware.RequestSize(maxUploadBody)).Post("/file", h.SubmitFile)
			r.Post("/selection/toggle", h.ToggleColumn)
			r.Post("/selection/columns", h.AddColumn)
			r.Delete("/selection", h.ClearSelection)
			r.Post("/generate", h.Generate)
			r.Post("/reset", h.Reset)
			r.Get("/download", h.Download)
		})
	})

	return r
}

func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
