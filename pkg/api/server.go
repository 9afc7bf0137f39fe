package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/cuemby/swarm/pkg/broadcast"
	"github.com/cuemby/swarm/pkg/log"
	"github.com/cuemby/swarm/pkg/manager"
	"github.com/cuemby/swarm/pkg/metrics"
)

// Server serves the control API of one stack over HTTP
type Server struct {
	manager *manager.Manager
	hub     *broadcast.Hub
	version string
	router  *mux.Router
	http    *http.Server
}

// NewServer creates an API server. hub may be nil, in which case
// /logstream answers 503.
func NewServer(mgr *manager.Manager, hub *broadcast.Hub, version string) *Server {
	s := &Server{
		manager: mgr,
		hub:     hub,
		version: version,
		router:  mux.NewRouter(),
	}
	s.routes()

	s.http = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	// log streams only end when their channel closes
	if hub != nil {
		s.http.RegisterOnShutdown(hub.Close)
	}
	return s
}

func (s *Server) routes() {
	r := s.router
	r.Use(requestID, instrument)

	r.HandleFunc("/health", s.healthHandler).Methods(http.MethodGet)
	r.HandleFunc("/ready", s.readyHandler).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)

	authed := r.NewRoute().Subrouter()
	authed.Use(s.requireAuth)
	authed.HandleFunc("/cmd", s.handleCmd).Methods(http.MethodGet)
	authed.HandleFunc("/logs", s.handleLogs).Methods(http.MethodGet)
	authed.HandleFunc("/logstream", s.handleLogstream).Methods(http.MethodGet)
	authed.HandleFunc("/refresh_jwt", s.handleRefresh).Methods(http.MethodGet)
}

// ServeHTTP makes the server usable as a plain handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe listens on addr and serves until Stop
func (s *Server) ListenAndServe(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(lis)
}

// Serve serves on an existing listener until Stop
func (s *Server) Serve(lis net.Listener) error {
	metrics.RegisterComponent("api", true, "listening on "+lis.Addr().String())
	logger := log.WithComponent("api")
	logger.Info().Str("addr", lis.Addr().String()).Msg("API listening")

	if err := s.http.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		metrics.UpdateComponent("api", false, err.Error())
		return err
	}
	return nil
}

// Stop closes open log streams and waits for in-flight requests
func (s *Server) Stop(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
