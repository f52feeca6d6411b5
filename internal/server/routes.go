package server

import (
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/config", s.handleConfig)
		r.Post("/upload", s.handleUpload)
		r.Post("/convert", s.handleConvert)
	})

	r.Handle("/results/*", http.StripPrefix("/results", http.FileServer(http.Dir(s.cfg.OutputDir))))
	r.Handle("/inputs/*", http.StripPrefix("/inputs", http.FileServer(http.Dir(s.cfg.InputDir))))

	if info, err := os.Stat(s.cfg.StaticDir); err == nil && info.IsDir() {
		r.Handle("/*", http.FileServer(http.Dir(s.cfg.StaticDir)))
	} else {
		s.logger.Warn("frontend static directory not found", "dir", s.cfg.StaticDir)
	}

	return r
}
