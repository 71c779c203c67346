package main

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Simplici0/menucost/internal/service"
)

type server struct {
	svc *service.Service
	log *slog.Logger
}

func newServer(svc *service.Service, log *slog.Logger) *server {
	return &server{svc: svc, log: log}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/ingredients", func(r chi.Router) {
		r.Get("/", s.handleIngredientsList)
		r.Post("/", s.handleIngredientsCreate)
		r.Put("/{id}", s.handleIngredientsUpdate)
		r.Delete("/{id}", s.handleIngredientsDelete)
	})
	r.Route("/recipes", func(r chi.Router) {
		r.Get("/", s.handleRecipesList)
		r.Post("/", s.handleRecipesCreate)
		r.Put("/{id}", s.handleRecipesUpdate)
		r.Delete("/{id}", s.handleRecipesDelete)
		r.Get("/{id}/cost", s.handleRecipeCost)
	})
	r.Route("/entrees", func(r chi.Router) {
		r.Get("/", s.handleEntreesList)
		r.Post("/", s.handleEntreesCreate)
		r.Put("/{id}", s.handleEntreesUpdate)
		r.Delete("/{id}", s.handleEntreesDelete)
		r.Get("/{id}/cost", s.handleEntreeCost)
		r.Post("/{id}/quote", s.handleEntreeQuote)
	})
	r.Get("/reports/food-cost", s.handleFoodCostReport)
	r.Get("/convert", s.handleConvert)

	return r
}

func (s *server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.InfoContext(r.Context(), "http.request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
