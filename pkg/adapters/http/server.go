// Package http exposes sessions, act graphs, and settings as a JSON API with
// server-sent diff streams.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/aretw0/gitquest"
	"github.com/aretw0/gitquest/internal/logging"
	"github.com/aretw0/gitquest/pkg/domain"
	"github.com/aretw0/gitquest/pkg/runner"
	"github.com/aretw0/gitquest/pkg/session"
	"github.com/aretw0/gitquest/pkg/settings"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server serves the API over a session manager.
type Server struct {
	Manager  *session.Manager
	Settings *settings.Service
	Streams  *StreamManager
	Metrics  http.Handler
	logger   *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithSettings enables the /settings routes.
func WithSettings(svc *settings.Service) Option {
	return func(s *Server) { s.Settings = svc }
}

// WithMetrics mounts a Prometheus handler on /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) { s.Metrics = h }
}

// WithLogger configures the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// NewServer creates a Server.
func NewServer(mgr *session.Manager, opts ...Option) *Server {
	s := &Server{Manager: mgr, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams = NewStreamManager(s.logger)
	return s
}

// NewHandler creates the HTTP handler for mgr.
func NewHandler(mgr *session.Manager, opts ...Option) http.Handler {
	return NewServer(mgr, opts...).Routes()
}

// Routes builds the chi router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	if s.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.Metrics)
	}

	r.Get("/acts", s.ListActs)
	r.Get("/acts/{act}/graph", s.GetGraph)

	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", s.ListSessions)
		r.Post("/", s.StartSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetSession)
			r.Delete("/", s.DeleteSession)
			r.Post("/command", s.SubmitCommand)
			r.Post("/acknowledge", s.Acknowledge)
			r.Post("/elapse", s.Elapse)
			r.Post("/dismiss", s.Dismiss)
			r.Post("/confirm", s.ConfirmEdit)
			r.Get("/events", s.SubscribeEvents)
		})
	})

	if s.Settings != nil {
		r.Get("/settings", s.GetSettings)
		r.Patch("/settings", s.UpdateSettings)
		r.Delete("/settings", s.ResetSettings)
	}
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "gitquest-http",
		"version": gitquest.Version,
	})
}

type actLister interface {
	Acts() ([]int, error)
}

// ListActs handles GET /acts.
func (s *Server) ListActs(w http.ResponseWriter, r *http.Request) {
	l, ok := s.Manager.Engine().(actLister)
	if !ok {
		s.writeError(w, r, fmt.Errorf("engine cannot list acts"))
		return
	}
	ids, err := l.Acts()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string][]int{"acts": ids})
}

// GetGraph handles GET /acts/{act}/graph.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	actID, err := strconv.Atoi(chi.URLParam(r, "act"))
	if err != nil {
		s.writeStatus(w, http.StatusBadRequest, "act must be a number")
		return
	}
	steps, err := s.Manager.Engine().Inspect(actID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, steps)
}

// ListSessions handles GET /sessions.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Manager.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"sessions": ids})
}

// StartRequest is the body of POST /sessions.
type StartRequest struct {
	SessionID string `json:"session_id,omitempty"`
	ActID     int    `json:"act_id"`
	Hints     *bool  `json:"hints,omitempty"`
}

// StartSession handles POST /sessions. Hints default to the player settings when enabled.
func (s *Server) StartSession(w http.ResponseWriter, r *http.Request) {
	var body StartRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeStatus(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.ActID == 0 {
		body.ActID = 1
	}

	hints := true
	if s.Settings != nil {
		hints = s.Settings.Get().Hints
	}
	if body.Hints != nil {
		hints = *body.Hints
	}

	state, err := s.Manager.Start(r.Context(), body.SessionID, body.ActID, domain.StartOptions{HintsEnabled: hints})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("session started", "session_id", state.SessionID, "act_id", state.ActID)
	s.respondView(w, r, http.StatusCreated, state, domain.Diff(nil, state))
}

// GetSession handles GET /sessions/{id}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	state, err := s.Manager.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respondView(w, r, http.StatusOK, state, nil)
}

// DeleteSession handles DELETE /sessions/{id}.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.Manager.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CommandRequest is the body of POST /sessions/{id}/command.
type CommandRequest struct {
	Input string `json:"input"`
}

// SubmitCommand handles POST /sessions/{id}/command. Input is sanitized like terminal input.
func (s *Server) SubmitCommand(w http.ResponseWriter, r *http.Request) {
	var body CommandRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeStatus(w, http.StatusBadRequest, "invalid request body")
		return
	}
	input, err := runner.SanitizeInput(body.Input)
	if err != nil {
		s.logger.Warn("input rejected", "err", err, "size", len(body.Input))
		s.writeStatus(w, http.StatusBadRequest, fmt.Sprintf("invalid input: %v", err))
		return
	}
	engine := s.Manager.Engine()
	s.apply(w, r, func(ctx context.Context, st *domain.LessonState) (*domain.LessonState, error) {
		return engine.SubmitCommand(ctx, st, input)
	})
}

// Acknowledge handles POST /sessions/{id}/acknowledge.
func (s *Server) Acknowledge(w http.ResponseWriter, r *http.Request) {
	s.apply(w, r, s.Manager.Engine().Acknowledge)
}

// Elapse handles POST /sessions/{id}/elapse. Clients call it when a cinematic ends.
func (s *Server) Elapse(w http.ResponseWriter, r *http.Request) {
	s.apply(w, r, s.Manager.Engine().Elapse)
}

// DismissRequest is the optional body of POST /sessions/{id}/dismiss.
type DismissRequest struct {
	Key string `json:"key,omitempty"`
}

// Dismiss handles POST /sessions/{id}/dismiss.
func (s *Server) Dismiss(w http.ResponseWriter, r *http.Request) {
	var body DismissRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			s.writeStatus(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	engine := s.Manager.Engine()
	s.apply(w, r, func(ctx context.Context, st *domain.LessonState) (*domain.LessonState, error) {
		return engine.Dismiss(ctx, st, body.Key)
	})
}

// ConfirmRequest is the body of POST /sessions/{id}/confirm.
type ConfirmRequest struct {
	Source domain.ConfirmSource `json:"source"`
}

// ConfirmEdit handles POST /sessions/{id}/confirm.
func (s *Server) ConfirmEdit(w http.ResponseWriter, r *http.Request) {
	body := ConfirmRequest{Source: domain.SourcePlayer}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			s.writeStatus(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	engine := s.Manager.Engine()
	s.apply(w, r, func(ctx context.Context, st *domain.LessonState) (*domain.LessonState, error) {
		return engine.ConfirmEdit(ctx, st, body.Source)
	})
}

func (s *Server) apply(w http.ResponseWriter, r *http.Request, action session.Action) {
	id := chi.URLParam(r, "id")
	state, diff, err := s.Manager.Apply(r.Context(), id, action)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if diff != nil {
		if payload, err := json.Marshal(diff); err == nil {
			s.Streams.Broadcast(id, payload)
		}
	}
	s.respondView(w, r, http.StatusOK, state, diff)
}

// SubscribeEvents handles GET /sessions/{id}/events (SSE). The optional watch query
// (comma separated: lines, effects, status, step, completion) filters the diffs sent.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeStatus(w, http.StatusInternalServerError, "streaming not supported")
		return
	}
	id := chi.URLParam(r, "id")
	if _, err := s.Manager.Load(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}

	var watch []string
	if q := r.URL.Query().Get("watch"); q != "" {
		for _, f := range strings.Split(q, ",") {
			watch = append(watch, strings.TrimSpace(f))
		}
	}

	ch, cancel := s.Streams.Subscribe(id)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()
	s.logger.Debug("sse subscribed", "session_id", id)

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if len(watch) > 0 && !matchesWatch(msg, watch) {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

func matchesWatch(msg []byte, watch []string) bool {
	var diff domain.StateDiff
	if err := json.Unmarshal(msg, &diff); err != nil {
		return true
	}
	for _, field := range watch {
		switch field {
		case "lines":
			if len(diff.Lines) > 0 {
				return true
			}
		case "effects":
			if len(diff.Effects) > 0 {
				return true
			}
		case "status":
			if diff.Status != nil {
				return true
			}
		case "step":
			if diff.CurrentStepID != nil {
				return true
			}
		case "completion":
			if diff.Completion != nil {
				return true
			}
		}
	}
	return false
}

// GetSettings handles GET /settings.
func (s *Server) GetSettings(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Settings.Get())
}

// UpdateSettings handles PATCH /settings with a {"key": "value"} object using the
// same keys as `gitquest settings set`.
func (s *Server) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var body map[string]string
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeStatus(w, http.StatusBadRequest, "invalid request body")
		return
	}
	scratch := s.Settings.Get()
	var errs []error
	for k, v := range body {
		if err := scratch.Set(k, v); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		s.writeStatus(w, http.StatusBadRequest, err.Error())
		return
	}

	next, err := s.Settings.Update(r.Context(), func(st *settings.Settings) {
		for k, v := range body {
			_ = st.Set(k, v)
		}
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, next)
}

// ResetSettings handles DELETE /settings.
func (s *Server) ResetSettings(w http.ResponseWriter, r *http.Request) {
	def, err := s.Settings.Reset(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, def)
}

func (s *Server) respondView(w http.ResponseWriter, r *http.Request, status int, state *domain.LessonState, diff *domain.StateDiff) {
	view, err := runner.Render(s.Manager.Engine(), state, diff)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, status, view)
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrActNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrActionNotAllowed), errors.Is(err, domain.ErrActCompleted):
		return http.StatusConflict
	case errors.Is(err, settings.ErrInvalidVolume), errors.Is(err, settings.ErrInvalidTheme),
		errors.Is(err, settings.ErrInvalidDifficulty), errors.Is(err, settings.ErrPlayerName):
		return http.StatusBadRequest
	case domain.IsConfigError(err):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	}
	s.writeStatus(w, status, err.Error())
}

func (s *Server) writeStatus(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}
