package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/muurk/nfcprofile/internal/logging"
)

// Handler returns the HTTP routes:
//
//	GET  /tag      websocket endpoint for tag bridges
//	POST /write    write ?key= to a tag through the newest bridge
//	GET  /healthz  liveness and bridge count
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /tag", s.handleTag)
	mux.HandleFunc("POST /write", s.handleWrite)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return mux
}

func (s *Server) handleTag(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Error("Websocket upgrade failed", zap.String("remote_addr", r.RemoteAddr), zap.Error(err))
		return
	}

	s.wg.Add(1)
	defer s.wg.Done()
	s.serveBridge(newBridge(conn))
}

// WriteResponse is the JSON body returned by POST /write.
type WriteResponse struct {
	Key   string `json:"key"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

func (s *Server) handleWrite(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		writeJSON(w, http.StatusBadRequest, WriteResponse{Error: "missing key"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.config.WriteTimeout)
	defer cancel()

	res, err := s.WriteTag(ctx, key)
	switch {
	case errors.Is(err, ErrNoBridge):
		writeJSON(w, http.StatusServiceUnavailable, WriteResponse{Key: key, Error: err.Error()})
	case errors.Is(err, context.DeadlineExceeded):
		writeJSON(w, http.StatusGatewayTimeout, WriteResponse{Key: key, Error: "timed out waiting for tag"})
	case err != nil:
		writeJSON(w, http.StatusInternalServerError, WriteResponse{Key: key, Error: err.Error()})
	case !res.OK:
		writeJSON(w, http.StatusBadGateway, WriteResponse{Key: key, Error: res.Err})
	default:
		writeJSON(w, http.StatusOK, WriteResponse{Key: key, OK: true})
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"bridges": s.ActiveBridges(),
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Warn("Failed to write response", zap.Error(err))
	}
}
