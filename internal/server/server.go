// Package server provides the HTTP surface of nidra: status polling, the
// MJPEG video feed, the status WebSocket and the landmark role API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/ayusman/nidra/internal/app"
	"github.com/ayusman/nidra/internal/server/api"
	"github.com/ayusman/nidra/internal/status"
	"github.com/ayusman/nidra/internal/store"
	"github.com/sirupsen/logrus"
)

// Config holds the server configuration. Routes whose collaborator is nil
// are not registered, except the status endpoints which fall back to the
// default snapshot.
type Config struct {
	StaticDir string
	Store     *store.Store
	App       *app.App
	Status    *status.Cell
	Logger    logrus.FieldLogger
}

// Server is the HTTP handler for nidra.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
	log    logrus.FieldLogger
}

// New creates a Server with the given configuration.
func New(config Config) *Server {
	if config.Logger == nil {
		config.Logger = logrus.StandardLogger()
	}
	if config.Status == nil {
		config.Status = status.NewCell()
	}

	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
		log:    config.Logger,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	s.mux.HandleFunc("/status", s.handleStatus)
	s.mux.HandleFunc("/api/status", s.handleStatus)
	s.mux.Handle("/api/status/ws", NewStatusSocket(s.config.Status, s.log))

	if s.config.App != nil {
		stream := NewStreamHandler(s.config.App, s.log)
		s.mux.Handle("/video_feed", stream)
		s.mux.Handle("/api/stream", stream)
	}

	if s.config.Store != nil {
		landmarks := api.NewLandmarkHandler(s.config.Store)
		s.mux.Handle("/api/landmarks", landmarks)
		s.mux.Handle("/api/landmarks/", landmarks)
	}

	if s.config.StaticDir != "" {
		s.mux.Handle("/", http.FileServer(http.Dir(s.config.StaticDir)))
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// handleHealth handles GET /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(s.start).Round(time.Second).String(),
	}
	if s.config.App != nil {
		response["detector"] = s.config.App.DetectorName()
		response["sessions"] = s.config.App.ActiveSessions()
	}

	writeJSON(w, response)
}

// handleStatus handles GET /status with the latest classification snapshot.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, s.config.Status.Read())
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", addr).Info("http server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.log.Info("http server stopped")
	return nil
}
