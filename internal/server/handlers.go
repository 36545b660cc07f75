package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/tutuni-ai/backend/internal/chat"
	"github.com/tutuni-ai/backend/internal/logger"
	"github.com/tutuni-ai/backend/internal/tracer"
)

// ChatAPI is the business surface the HTTP layer exposes. Implemented
// by *chat.Manager.
type ChatAPI interface {
	SendMessage(ctx context.Context, req chat.TurnRequest) (*chat.TurnResult, error)
	History(ctx context.Context, projectID, userID int64, limit, offset int) (*chat.HistoryPage, error)
	ClearHistory(ctx context.Context, projectID, userID int64) (int64, error)
	Stats(ctx context.Context, projectID, userID int64) (*chat.StatsReport, error)
	SuggestedQuestions(ctx context.Context, projectID, userID int64) ([]string, error)
	Usage(ctx context.Context, userID int64) (used, limit int64, err error)
}

// Server is the HTTP front of the chat service.
type Server struct {
	cfg    Config
	api    ChatAPI
	tracer *tracer.Tracer
	log    *logger.Logger
}

// NewServer builds the HTTP layer.
func NewServer(cfg Config, api ChatAPI, tr *tracer.Tracer, log *logger.Logger) *Server {
	return &Server{cfg: cfg, api: api, tracer: tr, log: log}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("POST /projects/{id}/messages", s.traced("chat.send", s.withUser(s.handleSendMessage)))
	mux.Handle("GET /projects/{id}/history", s.traced("chat.history", s.withUser(s.handleHistory)))
	mux.Handle("DELETE /projects/{id}/history", s.traced("chat.clear_history", s.withUser(s.handleClearHistory)))
	mux.Handle("GET /projects/{id}/suggested-questions", s.traced("chat.suggestions", s.withUser(s.handleSuggestedQuestions)))
	mux.Handle("GET /projects/{id}/stats", s.traced("chat.stats", s.withUser(s.handleStats)))
	mux.Handle("GET /usage", s.traced("chat.usage", s.withUser(s.handleUsage)))

	return mux
}

type userHandler func(w http.ResponseWriter, r *http.Request, userID int64)

// withUser resolves the caller identity. Authentication proper lives at
// the gateway; this service trusts the X-User-ID header it forwards.
func (s *Server) withUser(next userHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := strconv.ParseInt(r.Header.Get("X-User-ID"), 10, 64)
		if err != nil || userID <= 0 {
			s.writeError(w, http.StatusUnauthorized, "unauthorized", "missing or invalid user identity")
			return
		}
		next(w, r, userID)
	})
}

// traced opens a server span per request and resumes any incoming W3C
// trace context.
func (s *Server) traced(name string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		carrier := map[string]string{
			"traceparent": r.Header.Get("traceparent"),
			"tracestate":  r.Header.Get("tracestate"),
		}
		ctx := s.tracer.SetCarrierOnContext(r.Context(), carrier)
		ctx, span := s.tracer.StartSpan(ctx, name)
		defer span.End()

		s.tracer.SetAttributes(span, map[string]interface{}{
			"http.method": r.Method,
			"http.path":   r.URL.Path,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type sendMessageRequest struct {
	Content string `json:"content"`
	Model   string `json:"model,omitempty"`
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request, userID int64) {
	projectID, ok := s.projectID(w, r)
	if !ok {
		return
	}

	var body sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, string(chat.ReasonValidation), "invalid request body")
		return
	}

	result, err := s.api.SendMessage(r.Context(), chat.TurnRequest{
		ProjectID: projectID,
		UserID:    userID,
		Content:   body.Content,
		Model:     body.Model,
	})
	if err != nil {
		s.writeTurnError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request, userID int64) {
	projectID, ok := s.projectID(w, r)
	if !ok {
		return
	}
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	page, err := s.api.History(r.Context(), projectID, userID, limit, offset)
	if err != nil {
		s.writeTurnError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, page)
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request, userID int64) {
	projectID, ok := s.projectID(w, r)
	if !ok {
		return
	}

	deleted, err := s.api.ClearHistory(r.Context(), projectID, userID)
	if err != nil {
		s.writeTurnError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"deleted_messages": deleted,
	})
}

func (s *Server) handleSuggestedQuestions(w http.ResponseWriter, r *http.Request, userID int64) {
	projectID, ok := s.projectID(w, r)
	if !ok {
		return
	}

	questions, err := s.api.SuggestedQuestions(r.Context(), projectID, userID)
	if err != nil {
		s.writeTurnError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"suggestions": questions,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request, userID int64) {
	projectID, ok := s.projectID(w, r)
	if !ok {
		return
	}

	report, err := s.api.Stats(r.Context(), projectID, userID)
	if err != nil {
		s.writeTurnError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleUsage(w http.ResponseWriter, r *http.Request, userID int64) {
	used, limit, err := s.api.Usage(r.Context(), userID)
	if err != nil {
		s.writeTurnError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"messages_used_today": used,
		"daily_limit":         limit,
		"unlimited":           limit == 0,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"service":   "tutuni-backend",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) projectID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		s.writeError(w, http.StatusBadRequest, string(chat.ReasonValidation), "invalid project id")
		return 0, false
	}
	return id, true
}

func queryInt(r *http.Request, key string, fallback int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
