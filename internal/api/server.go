// Package api implements the fiberlat HTTP service.
//
// The API is session-oriented: a client creates a session with a lattice
// configuration, pushes deformation inputs to it, and reads back the latest
// snapshot or a rendered artifact. All compute goes through the shared
// [pipeline.Runner], so the service and the CLI hit the same caches.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/poissonlab/fiberlat/pkg/cache"
	apperrors "github.com/poissonlab/fiberlat/pkg/errors"
	"github.com/poissonlab/fiberlat/pkg/lattice"
	"github.com/poissonlab/fiberlat/pkg/observability"
	"github.com/poissonlab/fiberlat/pkg/pipeline"
	"github.com/poissonlab/fiberlat/pkg/session"
	"github.com/poissonlab/fiberlat/pkg/solver"
)

// Server hosts the HTTP API.
type Server struct {
	store  session.Store
	runner *pipeline.Runner
	logger *log.Logger
}

// NewServer creates a server over the given session store and pipeline
// runner. A nil logger falls back to the default.
func NewServer(store session.Store, runner *pipeline.Runner, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{store: store, runner: runner, logger: logger}
}

// Router builds the chi route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", s.handleHealth)

	r.Route("/v1/sessions", func(r chi.Router) {
		r.Post("/", s.handleCreateSession)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleDeleteSession)
			r.Post("/deform", s.handleDeform)
			r.Get("/snapshot", s.handleSnapshot)
			r.Get("/render.svg", s.handleRenderSVG)
		})
	})

	return r
}

// observe reports request events to the registered HTTP hooks.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		observability.HTTP().OnRequest(req.Context(), req.Method, req.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)
		next.ServeHTTP(ww, req)

		observability.HTTP().OnResponse(req.Context(), req.Method, req.URL.Path, ww.Status(), time.Since(start))
	})
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type createSessionRequest struct {
	Mode    string        `json:"mode"`
	Size    int           `json:"size"`
	Spacing float64       `json:"spacing"`
	Tuning  solver.Tuning `json:"tuning"`

	// TTLSeconds overrides the default session lifetime when positive.
	TTLSeconds int `json:"ttl_seconds,omitempty"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "decode request body"))
		return
	}

	if req.Mode == "" {
		req.Mode = lattice.ModeDecay
	}
	if req.Size == 0 {
		if req.Mode == lattice.ModeClosedForm {
			req.Size = 3
		} else {
			req.Size = 20
		}
	}
	if req.Spacing == 0 {
		req.Spacing = 1.0
	}

	ttl := session.DefaultTTL
	if req.TTLSeconds > 0 {
		ttl = time.Duration(req.TTLSeconds) * time.Second
	}

	sess, err := session.New(lattice.Config{Size: req.Size, Spacing: req.Spacing}, req.Mode, req.Tuning, ttl)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.store.Set(r.Context(), sess); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Info("session created", "id", sess.ID, "mode", sess.Mode, "size", sess.Config.Size)
	writeJSON(w, http.StatusCreated, sess)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.loadSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type deformRequest struct {
	Input    float64            `json:"input"`
	Selected *lattice.Selection `json:"selected,omitempty"`
}

func (s *Server) handleDeform(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.loadSession(w, r)
	if !ok {
		return
	}

	var req deformRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "decode request body"))
		return
	}

	opts := pipeline.Options{
		Mode:     sess.Mode,
		Size:     sess.Config.Size,
		Spacing:  sess.Config.Spacing,
		Input:    req.Input,
		Selected: req.Selected,
		Tuning:   sess.Tuning,
		Logger:   s.logger,
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		s.writeError(w, r, err)
		return
	}

	snapshot, _, err := s.runner.SolveWithCacheInfo(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	sess.Snapshot = snapshot
	sess.UpdatedAt = time.Now()
	if err := s.store.Set(r.Context(), sess); err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, snapshot)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.loadSession(w, r)
	if !ok {
		return
	}
	if sess.Snapshot == nil {
		s.writeError(w, r, apperrors.New(apperrors.ErrCodeNotFound, "session has no snapshot yet"))
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot)
}

func (s *Server) handleRenderSVG(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.loadSession(w, r)
	if !ok {
		return
	}
	if sess.Snapshot == nil {
		s.writeError(w, r, apperrors.New(apperrors.ErrCodeNotFound, "session has no snapshot yet"))
		return
	}

	opts := pipeline.Options{
		Mode:    sess.Mode,
		Size:    sess.Config.Size,
		Spacing: sess.Config.Spacing,
		Formats: []string{pipeline.FormatSVG},
		Logger:  s.logger,
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		s.writeError(w, r, err)
		return
	}

	data, err := lattice.MarshalSnapshot(sess.Snapshot)
	if err != nil {
		s.writeError(w, r, apperrors.Wrap(apperrors.ErrCodeInternal, err, "serialize snapshot"))
		return
	}

	artifacts, _, err := s.runner.RenderWithCacheInfo(r.Context(), sess.Snapshot, cache.Hash(data), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifacts[pipeline.FormatSVG])
}

// =============================================================================
// Helpers
// =============================================================================

// loadSession fetches the session from the URL parameter, writing the error
// response itself on failure.
func (s *Server) loadSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.store.Get(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	return sess, true
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)
	if status >= 500 {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	}
	writeJSON(w, status, errorResponse{Error: errorBody{
		Code:    string(code),
		Message: apperrors.UserMessage(err),
	}})
}

// statusFor maps application errors to HTTP statuses.
func statusFor(err error) (int, apperrors.Code) {
	if errors.Is(err, session.ErrNotFound) || errors.Is(err, session.ErrExpired) {
		return http.StatusNotFound, apperrors.ErrCodeSessionNotFound
	}

	code := apperrors.GetCode(err)
	switch code {
	case apperrors.ErrCodeInvalidConfig, apperrors.ErrCodeInvalidInput,
		apperrors.ErrCodeInvalidSelection, apperrors.ErrCodeInvalidMode,
		apperrors.ErrCodeInvalidFormat, apperrors.ErrCodeInvalidSnapshot:
		return http.StatusBadRequest, code
	case apperrors.ErrCodeNotFound, apperrors.ErrCodeSessionNotFound, apperrors.ErrCodeFileNotFound:
		return http.StatusNotFound, code
	case apperrors.ErrCodeUnsupported:
		return http.StatusUnprocessableEntity, code
	default:
		return http.StatusInternalServerError, apperrors.ErrCodeInternal
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
