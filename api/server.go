package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"weather-bot/datasource"
	"weather-bot/models"

	"go.uber.org/zap"
)

// Reporter renders today's report for the configured cities
type Reporter interface {
	Cities() []models.City
	City(name string) (models.City, bool)
	Report(ctx context.Context, city models.City) (string, error)
}

// SubscriptionLister lists chats receiving the daily push
type SubscriptionLister interface {
	Subscriptions() []int64
}

// Server is the operator status API
type Server struct {
	reporter      Reporter
	subscriptions SubscriptionLister
	server        *http.Server
	logger        *zap.SugaredLogger
}

// NewServer creates a new status server
func NewServer(reporter Reporter, subscriptions SubscriptionLister, port int, logger *zap.SugaredLogger) *Server {
	mux := http.NewServeMux()

	server := &Server{
		reporter:      reporter,
		subscriptions: subscriptions,
		logger:        logger,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}

	mux.HandleFunc("/api/cities", server.handleGetCities)
	mux.HandleFunc("/api/subscriptions", server.handleGetSubscriptions)
	mux.HandleFunc("/api/report/", server.handleGetReport)

	// Health check
	mux.HandleFunc("/api/health", server.handleHealthCheck)

	return server
}

// Handler exposes the routes, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start begins the API server; it returns nil after Shutdown
func (s *Server) Start() error {
	s.logger.Infow("starting status server", "addr", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Debugw("failed to write response", "status", status, "error", err)
	}
}

// handleGetCities lists the configured cities
func (s *Server) handleGetCities(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	cities := s.reporter.Cities()
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"cities": cities,
		"count":  len(cities),
	})
}

// handleGetSubscriptions lists chats with a daily push
func (s *Server) handleGetSubscriptions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	chats := s.subscriptions.Subscriptions()
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"chats": chats,
		"count": len(chats),
	})
}

// handleGetReport fetches and renders today's report for one city
func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	path := r.URL.Path
	if len(path) <= len("/api/report/") {
		http.Error(w, "City not specified", http.StatusBadRequest)
		return
	}

	name := path[len("/api/report/"):]
	city, ok := s.reporter.City(name)
	if !ok {
		s.writeJSON(w, http.StatusNotFound, map[string]string{
			"error": fmt.Sprintf("City not configured: %s", name),
		})
		return
	}

	text, err := s.reporter.Report(r.Context(), city)
	if err != nil {
		s.logger.Errorw("on-demand report failed", "city", city.Name, "error", err)
		status := http.StatusInternalServerError
		if errors.Is(err, datasource.ErrUpstream) || errors.Is(err, datasource.ErrMalformedResponse) {
			status = http.StatusBadGateway
		}
		s.writeJSON(w, status, map[string]string{
			"error": fmt.Sprintf("Failed to fetch forecast: %v", err),
		})
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"city":      city.Name,
		"report":    text,
		"timestamp": time.Now(),
	})
}

// handleHealthCheck provides a simple health check endpoint
func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
