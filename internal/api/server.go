package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"

	"hkstockanalyzer/internal/analyzer"
	"hkstockanalyzer/internal/utils"
)

// Server exposes the analysis pipeline over HTTP and runs it on a
// schedule.
type Server struct {
	router   *mux.Router
	logger   utils.Logger
	config   *utils.Config
	analyzer *analyzer.Analyzer
	cron     *cron.Cron
}

// NewServer creates and initializes the API server instance around an
// analyzer pipeline.
func NewServer(logger utils.Logger, config *utils.Config, a *analyzer.Analyzer) *Server {
	server := &Server{
		router:   mux.NewRouter(),
		logger:   logger,
		config:   config,
		analyzer: a,
		cron:     cron.New(),
	}

	server.setupRouter()
	server.setupRoutes()
	return server
}

// setupRoutes configures APIs for the server.
func (s *Server) setupRoutes() {
	s.logger.Debug("Setting up routes...")

	apiRouter := s.router.PathPrefix("/api").Subrouter()

	routes := []struct {
		path    string
		handler http.HandlerFunc
		methods []string
	}{
		{"/performance", s.GetPerformance, []string{"GET"}},
		{"/analysis/run", s.RunAnalysis, []string{"POST"}},
	}

	for _, route := range routes {
		apiRouter.HandleFunc(route.path, route.handler).Methods(route.methods...)
		s.logger.Debug("Registered route: %s /api%s", route.methods[0], route.path)
	}

	s.router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	s.logger.Info("Routes setup completed")
}

// setupRouter configures middleware for the server.
func (s *Server) setupRouter() {
	s.router.HandleFunc("/health", s.healthCheck).Methods("GET")

	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			s.logger.Debug("Request completed: %s %s (%v)", r.Method, r.URL.Path, time.Since(start))
		})
	})
}

// StartScheduler registers the cron schedule for recurring analysis runs.
func (s *Server) StartScheduler() error {
	spec := s.config.Schedule.Cron
	if spec == "" {
		s.logger.Info("No schedule configured, skipping scheduler")
		return nil
	}

	_, err := s.cron.AddFunc(spec, func() {
		s.logger.Info("Running scheduled analysis")
		if _, err := s.analyzer.Run(context.Background()); err != nil {
			s.logger.Error("Scheduled analysis failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", spec, err)
	}

	s.cron.Start()
	s.logger.Info("Scheduler started with spec %q", spec)
	return nil
}

// Start begins listening for HTTP requests and blocks until shutdown.
func (s *Server) Start() error {
	s.logger.Info("Starting API server on port %s", s.config.Server.Port)

	srv := &http.Server{
		Addr:         ":" + s.config.Server.Port,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second, // analysis runs render a chart
		IdleTimeout:  60 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening on http://localhost:%s", s.config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("HTTP server error: %v", err)
			errChan <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case <-stop:
		s.logger.Info("Shutdown signal received")
	}

	s.cron.Stop()

	s.logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		s.logger.Error("Server shutdown failed: %v", err)
		return err
	}

	s.logger.Info("Server stopped gracefully")
	return nil
}

// GetPerformance runs the core reconstruction and returns the records and
// skip markers as JSON, without rendering or delivery.
func (s *Server) GetPerformance(w http.ResponseWriter, r *http.Request) {
	records, skipped, err := s.analyzer.Reconstruct()
	if err != nil {
		s.respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"records": records,
		"skipped": skipped,
	})
}

// RunAnalysis triggers a full analysis run including chart rendering and
// delivery.
func (s *Server) RunAnalysis(w http.ResponseWriter, r *http.Request) {
	result, err := s.analyzer.Run(r.Context())
	if err != nil {
		s.respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondWithJSON(w, http.StatusOK, result)
}

// respondWithError sends an error response with the specified status code and message
func (s *Server) respondWithError(w http.ResponseWriter, code int, message string) {
	s.respondWithJSON(w, code, map[string]string{"error": message})
}

// respondWithJSON sends a JSON response with the specified status code and payload
func (s *Server) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}

func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	s.respondWithJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": "1.0.0",
	})
}

// Router exposes the handler for tests.
func (s *Server) Router() http.Handler {
	return s.router
}
