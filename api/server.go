package api

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"meterdata-pipeline/logger"
	"meterdata-pipeline/models"
	"meterdata-pipeline/validator"
)

//SeriesSource provides the canonical series the dashboard queries run against
type SeriesSource interface {
	ReadSeries() (models.Series, error)
}

//Server exposes the query layer over HTTP. The series is held in memory and replaced on reload.
type Server struct {
	Router *chi.Mux

	mu        sync.RWMutex
	series    models.Series
	loadedAt  time.Time
	source    SeriesSource
	validator *validator.Validator
	price     float64
	log       logger.Logger
}

func NewServer(source SeriesSource, v *validator.Validator, lg logger.Logger) *Server {
	s := &Server{
		source:    source,
		validator: v,
		price:     v.Options().ElectricityPrice,
		log:       lg,
	}
	s.Router = s.routes()
	return s
}

func (s *Server) routes() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/series", s.handleSeries)
		r.Get("/statistics", s.handleStatistics)
		r.Get("/report", s.handleReport)
		r.Post("/reload", s.handleReload)
	})
	return r
}

//Reload replaces the in-memory series with the current canonical file
func (s *Server) Reload() error {
	series, err := s.source.ReadSeries()
	if err != nil {
		return fmt.Errorf("loading canonical series: %w", err)
	}
	s.mu.Lock()
	s.series = series
	s.loadedAt = time.Now()
	s.mu.Unlock()
	s.log.Info(fmt.Sprintf("Dashboard series loaded: %d rows", len(series)))
	return nil
}

func (s *Server) snapshot() (models.Series, time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.series, s.loadedAt
}

//ListenAndServe loads the series and serves until the listener fails
func (s *Server) ListenAndServe(addr string) error {
	if err := s.Reload(); err != nil {
		return err
	}
	s.log.Info("Dashboard API listening on " + addr)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		started := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug(fmt.Sprintf("%s %s %d %s", r.Method, r.URL.RequestURI(), ww.Status(), time.Since(started)))
	})
}
