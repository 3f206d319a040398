package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cpsdqs/prechoster/internal/logging"
	"github.com/cpsdqs/prechoster/internal/presentation/graph"
	"github.com/cpsdqs/prechoster/internal/runtime"
	"github.com/cpsdqs/prechoster/internal/validator"
	"github.com/cpsdqs/prechoster/pkg/domain"
	"github.com/cpsdqs/prechoster/pkg/plugin"
	"github.com/cpsdqs/prechoster/pkg/schema"
	"github.com/cpsdqs/prechoster/pkg/session"
	"github.com/cpsdqs/prechoster/pkg/value"
)

// MaxDocumentSize bounds request bodies of document uploads.
const MaxDocumentSize = 8 << 20

// Server serves stored documents and renders them on request.
type Server struct {
	Documents *session.Manager
	Engine    *runtime.Engine
	Registry  *plugin.Registry
	Streams   *StreamManager

	gatherer prometheus.Gatherer
	version  string
	logger   *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics exposes gatherer on /metrics.
func WithMetrics(gatherer prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = gatherer
	}
}

// WithVersion sets the version reported by /info.
func WithVersion(version string) Option {
	return func(s *Server) {
		s.version = version
	}
}

// NewServer creates a server. The engine must share registry.
func NewServer(docs *session.Manager, engine *runtime.Engine, registry *plugin.Registry, opts ...Option) *Server {
	s := &Server{
		Documents: docs,
		Engine:    engine,
		Registry:  registry,
		Streams:   NewStreamManager(),
		version:   "dev",
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/documents", func(r chi.Router) {
		r.Get("/", s.ListDocuments)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetDocument)
			r.Put("/", s.PutDocument)
			r.Delete("/", s.DeleteDocument)
			r.Get("/render", s.RenderDocument)
			r.Get("/graph", s.GetGraph)
			r.Get("/validate", s.ValidateDocument)
			r.Get("/events", s.SubscribeEvents)
		})
	})

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ErrorResponse is the JSON body of failed requests.
type ErrorResponse struct {
	Error    string          `json:"error"`
	ModuleID domain.ModuleID `json:"module_id,omitempty"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

// loadError maps store errors to responses.
func (s *Server) loadError(w http.ResponseWriter, id string, err error) {
	if errors.Is(err, domain.ErrDocumentNotFound) {
		s.writeError(w, http.StatusNotFound, fmt.Errorf("document %s not found", id))
		return
	}
	s.logger.Error("document load failed", "document_id", id, "err", err)
	s.writeError(w, http.StatusInternalServerError, err)
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"app":            "prechoster-http",
		"version":        strings.TrimSpace(s.version),
		"format_version": schema.CurrentVersion,
		"plugins":        s.Registry.Kinds(),
	})
}

// ListDocuments handles GET /documents.
func (s *Server) ListDocuments(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Documents.List(r.Context())
	if err != nil {
		s.logger.Error("document list failed", "err", err)
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"documents": ids})
}

// GetDocument handles GET /documents/{id}. The body is the stored document
// in the current format.
func (s *Server) GetDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	doc, err := s.Documents.Load(r.Context(), id)
	if err != nil {
		s.loadError(w, id, err)
		return
	}
	data, err := schema.Marshal(doc, schema.FormatJSON)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

// PutDocument handles PUT /documents/{id}. The body may be any supported
// format version; subscribers receive the diff against the previous version.
func (s *Server) PutDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxDocumentSize))
	if err != nil {
		s.writeError(w, http.StatusRequestEntityTooLarge, err)
		return
	}
	format := schema.FormatJSON
	if strings.Contains(r.Header.Get("Content-Type"), "yaml") {
		format = schema.FormatYAML
	}
	doc, err := schema.Unmarshal(data, format)
	if err != nil {
		s.logger.Warn("PutDocument: invalid document", "document_id", id, "err", err)
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	var diff *domain.DocumentDiff
	err = s.Documents.WithLock(r.Context(), id, func(ctx context.Context) error {
		store := s.Documents.Store()
		old, err := store.Load(ctx, id)
		switch {
		case err == nil:
			diff = domain.Diff(&old, doc)
		case errors.Is(err, domain.ErrDocumentNotFound):
			diff = domain.Diff(nil, doc)
		default:
			return err
		}
		return store.Save(ctx, id, doc)
	})
	if err != nil {
		s.logger.Error("document save failed", "document_id", id, "err", err)
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	if diff != nil {
		if payload, err := json.Marshal(diff); err == nil {
			s.Streams.Broadcast(id, string(payload))
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteDocument handles DELETE /documents/{id}.
func (s *Server) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.Documents.Delete(r.Context(), id); err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// renderedValue is one entry of a values-mode response.
type renderedValue struct {
	TypeID string `json:"type_id"`
	Text   string `json:"text,omitempty"`
}

// RenderDocument handles GET /documents/{id}/render?target=&format=.
// Evaluation failures answer 422 with the failing module.
func (s *Server) RenderDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	mode, err := runtime.ParseMode(r.URL.Query().Get("format"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	target := domain.OutputID
	if t := r.URL.Query().Get("target"); t != "" {
		target = domain.ModuleID(t)
	}

	doc, err := s.Documents.Load(r.Context(), id)
	if err != nil {
		s.loadError(w, id, err)
		return
	}

	res := s.Engine.Eval(r.Context(), doc, runtime.Request{Target: target, Mode: mode})
	defer res.Drop()

	if !res.OK() {
		status := http.StatusUnprocessableEntity
		if errors.Is(res.Err(), runtime.ErrMissingTarget) {
			status = http.StatusNotFound
		}
		s.writeJSON(w, status, ErrorResponse{Error: res.Error.Error(), ModuleID: res.Error.ModuleID})
		return
	}

	switch mode {
	case runtime.ModeHTML:
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = io.WriteString(w, res.Output)
	case runtime.ModeValues:
		out := make([]renderedValue, len(res.Values))
		for i, v := range res.Values {
			out[i].TypeID = v.TypeID()
			out[i].Text, _ = value.Markdown(v)
		}
		s.writeJSON(w, http.StatusOK, map[string]any{"values": out})
	default:
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		_, _ = io.WriteString(w, res.Output)
	}
}

// GetGraph handles GET /documents/{id}/graph as a Mermaid flowchart.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	doc, err := s.Documents.Load(r.Context(), id)
	if err != nil {
		s.loadError(w, id, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, graph.GenerateMermaid(doc, nil))
}

// issueResponse is one validation finding.
type issueResponse struct {
	Severity string          `json:"severity"`
	ModuleID domain.ModuleID `json:"module_id,omitempty"`
	Message  string          `json:"message"`
}

// ValidateDocument handles GET /documents/{id}/validate.
func (s *Server) ValidateDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	doc, err := s.Documents.Load(r.Context(), id)
	if err != nil {
		s.loadError(w, id, err)
		return
	}
	report := validator.ValidateDocument(r.Context(), doc, s.Registry)
	issues := make([]issueResponse, len(report.Issues))
	for i, issue := range report.Issues {
		issues[i] = issueResponse{Severity: string(issue.Severity), ModuleID: issue.ModuleID, Message: issue.Message}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"valid":  report.Err() == nil,
		"issues": issues,
	})
}

// StreamManager handles active SSE connections.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- string]struct{} // document id -> set of channels
}

func NewStreamManager() *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan<- string]struct{}),
	}
}

func (sm *StreamManager) Subscribe(id string) (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if _, ok := sm.subscribers[id]; !ok {
		sm.subscribers[id] = make(map[chan<- string]struct{})
	}
	sm.subscribers[id][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[id]; ok {
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, id)
			}
		}
	}
}

// Broadcast sends msg to every subscriber of id. Slow clients drop messages.
func (sm *StreamManager) Broadcast(id string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[id] {
		select {
		case ch <- msg:
		default:
			slog.Warn("SSE: Client buffer full, dropping message", "document_id", id)
		}
	}
}

// SubscribeEvents handles GET /documents/{id}/events (SSE). Each event is
// the JSON diff of one document update.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, http.StatusInternalServerError, errors.New("streaming not supported"))
		return
	}

	id := chi.URLParam(r, "id")
	ch, cancel := s.Streams.Subscribe(id)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}
