package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/cuemby/swarm/pkg/auth"
	"github.com/cuemby/swarm/pkg/broadcast"
	"github.com/cuemby/swarm/pkg/images"
	"github.com/cuemby/swarm/pkg/manager"
	"github.com/cuemby/swarm/pkg/runtime"
	"github.com/cuemby/swarm/pkg/types"
)

// LoginRequest is the body of POST /login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse carries a freshly issued token
type TokenResponse struct {
	Token string `json:"token"`
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
}

// handleCmd runs one command. The command outlives a dropped connection so
// a half-applied change is never abandoned.
func (s *Server) handleCmd(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	txt := q.Get("txt")
	if txt == "" {
		writeError(w, r, fmt.Errorf("%w: txt is required", manager.ErrBadCommand))
		return
	}

	out, err := s.manager.Dispatch(context.WithoutCancel(r.Context()), callerID(r.Context()), q.Get("tag"), txt)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = io.WriteString(w, out)
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	lines := s.manager.Logs(r.Context(), r.URL.Query().Get("tag"))
	if lines == nil {
		lines = []string{}
	}
	writeJSON(w, http.StatusOK, lines)
}

// handleLogstream follows a node's logs as server-sent events. Each line is
// a JSON string in a data field; skipped lines are reported as a lagged
// event carrying their count.
func (s *Server) handleLogstream(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: "log streaming disabled"})
		return
	}
	tag := r.URL.Query().Get("tag")
	if tag == "" {
		writeError(w, r, fmt.Errorf("%w: tag is required", manager.ErrBadCommand))
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "streaming not supported"})
		return
	}

	sub, err := s.hub.Subscribe(images.Domain(tag))
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer sub.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		msg, err := sub.Recv(r.Context())
		if err != nil {
			return
		}
		if err := writeEvent(w, msg); err != nil {
			return
		}
		flusher.Flush()
	}
}

func writeEvent(w io.Writer, msg broadcast.Message) error {
	if msg.Lagged > 0 {
		_, err := fmt.Fprintf(w, "event: lagged\ndata: %d\n\n", msg.Lagged)
		return err
	}
	data, err := json.Marshal(msg.Line)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", data)
	return err
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<16)).Decode(&req); err != nil {
		writeError(w, r, fmt.Errorf("%w: %v", manager.ErrBadCommand, err))
		return
	}
	token, err := s.manager.Login(req.Username, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, TokenResponse{Token: token})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	token, err := s.manager.Auth().Refresh(bearerToken(r, false))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, TokenResponse{Token: token})
}

// statusOf maps an error to its HTTP status
func statusOf(err error) int {
	switch {
	case errors.Is(err, auth.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, auth.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, manager.ErrBadCommand):
		return http.StatusBadRequest
	case errors.Is(err, manager.ErrNoClient),
		errors.Is(err, types.ErrNodeNotFound),
		errors.Is(err, auth.ErrUserNotFound),
		errors.Is(err, runtime.ErrContainerNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusOf(err)
	msg := err.Error()
	switch code {
	case http.StatusUnauthorized:
		// do not tell a bad token from an unknown user
		msg = auth.ErrUnauthorized.Error()
	case http.StatusInternalServerError:
		zerolog.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	writeJSON(w, code, ErrorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
