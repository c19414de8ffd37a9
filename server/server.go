// Package server exposes the agent team over HTTP. Answers are streamed as
// server-sent events, one event per AgentStreamChunk.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/SaiNageswarS/opentargets-agent/agentboot"
	"github.com/SaiNageswarS/opentargets-agent/agents"
	"github.com/SaiNageswarS/opentargets-agent/memory"
	"github.com/SaiNageswarS/opentargets-agent/metrics"
	"github.com/SaiNageswarS/opentargets-agent/schema"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Server struct {
	team           *agents.Team
	conversations  *memory.ConversationManager
	requestsPerMin int
}

func New(team *agents.Team, conversations *memory.ConversationManager, requestsPerMin int) *Server {
	return &Server{
		team:           team,
		conversations:  conversations,
		requestsPerMin: requestsPerMin,
	}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.healthHandler)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		if s.requestsPerMin > 0 {
			r.Use(httprate.LimitByIP(s.requestsPerMin, time.Minute))
		}

		r.Get("/agents", s.listAgentsHandler)
		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", s.createSessionHandler)
			r.Get("/{id}", s.getSessionHandler)
			r.Post("/{id}/ask", s.askHandler)
		})
	})

	return r
}

type AgentInfo struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	OutputKey   string   `json:"output_key,omitempty"`
	Tools       []string `json:"tools"`
	Root        bool     `json:"root"`
}

type CreateSessionResponse struct {
	SessionID string `json:"session_id"`
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "root_agent": s.team.Root.Name()})
}

func (s *Server) listAgentsHandler(w http.ResponseWriter, r *http.Request) {
	var out []AgentInfo
	for _, a := range s.team.Agents() {
		out = append(out, AgentInfo{
			Name:        a.Name(),
			Description: a.Description(),
			OutputKey:   a.OutputKey(),
			Tools:       a.ToolNames(),
			Root:        a == s.team.Root,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createSessionHandler(w http.ResponseWriter, r *http.Request) {
	id := uuid.NewString()
	if err := s.conversations.SaveSession(r.Context(), memory.NewConversation(id)); err != nil {
		http.Error(w, "failed to create session", http.StatusInternalServerError)
		return
	}
	logger.Info("Session created", zap.String("session_id", id))
	writeJSON(w, http.StatusCreated, CreateSessionResponse{SessionID: id})
}

func (s *Server) getSessionHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	conv, err := s.conversations.GetSession(r.Context(), id)
	if errors.Is(err, memory.ErrSessionNotFound) {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	if err != nil {
		logger.Error("Failed to load session", zap.String("session_id", id), zap.Error(err))
		http.Error(w, "failed to load session", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, conv)
}

func (s *Server) askHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req schema.GenerateAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	req.Question = strings.TrimSpace(req.Question)
	if req.Question == "" {
		http.Error(w, "question is required", http.StatusBadRequest)
		return
	}
	req.SessionId = id

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	metrics.ActiveRequests.Inc()
	defer metrics.ActiveRequests.Dec()

	reporter := agentboot.NewSSEProgressReporter(w)
	if _, err := s.team.Root.Execute(r.Context(), reporter, &req); err != nil {
		logger.Error("Agent run failed", zap.String("session_id", id), zap.Error(err))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to write response", zap.Error(err))
	}
}
