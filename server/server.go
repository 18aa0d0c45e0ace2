package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ai_quick_actions/generator"
	"ai_quick_actions/view"
)

// maxWait bounds GET /api/sessions/{id}?wait=1.
const maxWait = 60 * time.Second

type Server struct {
	gen      generator.TextGenerator
	variants []generator.Variant
	logger   *zap.SugaredLogger
	store    *sessionStore
	ttl      time.Duration
	now      func() time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithSessionTTL makes Sweep close sessions idle for longer than d. Zero disables it.
func WithSessionTTL(d time.Duration) Option {
	return func(s *Server) { s.ttl = d }
}

// WithClock overrides time.Now for idle tracking.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

type storedSession struct {
	sess     *generator.Session
	lastUsed time.Time
}

type sessionStore struct {
	mu       sync.Mutex
	sessions map[string]*storedSession
}

func newStore() *sessionStore {
	return &sessionStore{sessions: make(map[string]*storedSession)}
}

func (s *sessionStore) set(id string, sess *generator.Session, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = &storedSession{sess: sess, lastUsed: now}
}

// get returns the session and marks it used at now.
func (s *sessionStore) get(id string, now time.Time) (*generator.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	e.lastUsed = now
	return e.sess, true
}

func (s *sessionStore) remove(id string) (*generator.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	delete(s.sessions, id)
	return e.sess, true
}

// expire removes sessions idle since before cutoff that have nothing in flight.
func (s *sessionStore) expire(cutoff time.Time) map[string]*generator.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]*generator.Session)
	for id, e := range s.sessions {
		if !e.lastUsed.Before(cutoff) || e.sess.Snapshot().Pending() {
			continue
		}
		out[id] = e.sess
		delete(s.sessions, id)
	}
	return out
}

func (s *sessionStore) drain() []*generator.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*generator.Session, 0, len(s.sessions))
	for id, e := range s.sessions {
		out = append(out, e.sess)
		delete(s.sessions, id)
	}
	return out
}

// New 创建 HTTP 服务；每个请求文本对应一个独立的 Session。
func New(gen generator.TextGenerator, variants []generator.Variant, logger *zap.SugaredLogger, opts ...Option) (*Server, error) {
	if gen == nil {
		return nil, errors.New("text generator required")
	}
	if len(variants) == 0 {
		return nil, errors.New("at least one variant required")
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	s := &Server{
		gen:      gen,
		variants: variants,
		logger:   logger,
		store:    newStore(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/sessions", s.handleSessionCreate)
	mux.HandleFunc("GET /api/sessions/{id}", s.handleSessionGet)
	mux.HandleFunc("DELETE /api/sessions/{id}", s.handleSessionDelete)
	mux.HandleFunc("POST /api/sessions/{id}/regenerate", s.handleRegenerate)
	mux.HandleFunc("GET /api/sessions/{id}/variants/{variant}", s.handleVariant)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return logMiddleware(s.logger, mux)
}

// Close stops every live session.
func (s *Server) Close() {
	for _, sess := range s.store.drain() {
		sess.Close()
	}
}

// Sweep closes sessions idle longer than the TTL and returns how many it closed.
// Sessions with a generation in flight are kept.
func (s *Server) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}
	expired := s.store.expire(s.now().Add(-s.ttl))
	for id, sess := range expired {
		sess.Close()
		s.logger.Infow("session expired", "session", id, "ttl", s.ttl)
	}
	return len(expired)
}

// RunSweeper calls Sweep every interval until ctx is done.
func (s *Server) RunSweeper(ctx context.Context, interval time.Duration) {
	if s.ttl <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// SweepInterval picks how often RunSweeper should run for the configured TTL.
func (s *Server) SweepInterval() time.Duration {
	if s.ttl <= 0 {
		return 0
	}
	return min(max(s.ttl/4, time.Second), time.Minute)
}

// --- Handlers ---

type sessionCreateReq struct {
	Text string `json:"text"`
}

type sessionResp struct {
	SessionID string                `json:"session_id"`
	Text      string                `json:"text"`
	Slots     []generator.SlotState `json:"slots"`
}

type regenerateReq struct {
	Variant string `json:"variant"`
}

type variantResp struct {
	Variant  generator.VariantID `json:"variant"`
	Title    string              `json:"title"`
	Status   generator.Status    `json:"status"`
	Markdown string              `json:"markdown"`
	HTML     string              `json:"html"`
}

type errorResp struct {
	Error string `json:"error"`
}

func (s *Server) handleSessionCreate(w http.ResponseWriter, r *http.Request) {
	var req sessionCreateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	sess, err := generator.NewSession(s.gen, s.variants, generator.WithSessionLogger(s.logger))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if err := sess.StartAll(req.Text); err != nil {
		sess.Close()
		writeError(w, statusFor(err), err)
		return
	}
	id := uuid.NewString()
	s.store.set(id, sess, s.now())
	s.logger.Infow("session created", "session", id, "chars", len([]rune(req.Text)))
	writeJSON(w, http.StatusCreated, snapshotResp(id, sess.Snapshot()))
}

func (s *Server) handleSessionGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	sess, ok := s.store.get(id, s.now())
	if !ok {
		writeError(w, http.StatusNotFound, errors.New("session not found"))
		return
	}
	if wait := r.URL.Query().Get("wait"); wait != "" && wait != "0" && wait != "false" {
		ctx, cancel := context.WithTimeout(r.Context(), maxWait)
		err := sess.Wait(ctx)
		cancel()
		if err != nil && !errors.Is(err, context.DeadlineExceeded) {
			writeError(w, statusFor(err), err)
			return
		}
	}
	writeJSON(w, http.StatusOK, snapshotResp(id, sess.Snapshot()))
}

func (s *Server) handleSessionDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	sess, ok := s.store.remove(id)
	if !ok {
		writeError(w, http.StatusNotFound, errors.New("session not found"))
		return
	}
	sess.Close()
	s.logger.Infow("session closed", "session", id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRegenerate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	sess, ok := s.store.get(id, s.now())
	if !ok {
		writeError(w, http.StatusNotFound, errors.New("session not found"))
		return
	}
	var req regenerateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	vid, err := generator.ParseVariantID(s.variants, req.Variant)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := sess.Regenerate(vid); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusAccepted, snapshotResp(id, sess.Snapshot()))
}

func (s *Server) handleVariant(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	sess, ok := s.store.get(id, s.now())
	if !ok {
		writeError(w, http.StatusNotFound, errors.New("session not found"))
		return
	}
	snap := sess.Snapshot()
	sl, ok := snap.Get(generator.VariantID(r.PathValue("variant")))
	if !ok {
		writeError(w, http.StatusNotFound, generator.ErrUnknownVariant)
		return
	}
	md := view.DetailMarkdown(snap.Text, sl)
	html, err := view.ToHTML(md)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, variantResp{
		Variant:  sl.ID,
		Title:    sl.Variant.Title,
		Status:   sl.Status,
		Markdown: md,
		HTML:     html,
	})
}

// --- Helpers ---

func snapshotResp(id string, snap generator.Snapshot) sessionResp {
	return sessionResp{SessionID: id, Text: snap.Text, Slots: snap.Slots}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, generator.ErrEmptyInput),
		errors.Is(err, generator.ErrNoInput),
		errors.Is(err, generator.ErrUnknownVariant):
		return http.StatusBadRequest
	case errors.Is(err, generator.ErrClosed):
		return http.StatusGone
	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResp{Error: err.Error()})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func logMiddleware(logger *zap.SugaredLogger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Infow("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}
