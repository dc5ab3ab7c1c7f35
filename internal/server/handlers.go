package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/dcs-solutions/zabbix-chat/internal/chat"
)

const maxMessageBytes = 64 << 10

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (s *Server) handleChatMessage(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxMessageBytes))
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	reply, err := s.orch.HandleMessage(r.Context(), req.Message, req.SessionID)
	if err != nil {
		if errors.Is(err, chat.ErrEmptyMessage) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "message must not be empty"})
			return
		}
		s.logger.Error("chat message failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	h := s.orch.Health(r.Context())
	status := http.StatusOK
	if h.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, struct {
		chat.Health
		Timestamp string `json:"timestamp"`
	}{Health: h, Timestamp: time.Now().Format(time.RFC3339)})
}

func (s *Server) handleZabbixStatus(w http.ResponseWriter, r *http.Request) {
	st := s.orch.Status(r.Context())
	if !st.Connected {
		writeJSON(w, http.StatusServiceUnavailable, st)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleCacheClear(w http.ResponseWriter, r *http.Request) {
	removed := s.orch.ClearCache()
	writeJSON(w, http.StatusOK, map[string]int{"entries_removed": removed})
}
