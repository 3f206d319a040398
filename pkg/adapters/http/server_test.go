package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cpsdqs/prechoster/internal/runtime"
	"github.com/cpsdqs/prechoster/pkg/adapters/memory"
	"github.com/cpsdqs/prechoster/pkg/observability"
	"github.com/cpsdqs/prechoster/pkg/plugin"
	"github.com/cpsdqs/prechoster/pkg/plugins"
	"github.com/cpsdqs/prechoster/pkg/session"
)

const helloDocument = `{
	"version": 2,
	"title": "hello",
	"modules": [
		{"id": "a", "plugin": "text", "data": {"contents": "hello", "language": "markdown"}, "sends": ["output"]},
		{"id": "b", "plugin": "text", "data": {"contents": "world", "language": "markdown"}, "sends": ["output"]}
	]
}`

const brokenDocument = `{
	"version": 2,
	"modules": [
		{"id": "a", "plugin": "text", "data": {"contents": "x", "language": "klingon"}, "sends": ["output"]}
	]
}`

func newTestServer(t *testing.T) (*Server, http.Handler) {
	t.Helper()
	registry := plugin.NewRegistry()
	plugins.RegisterBuiltins(registry, memory.NewBlobStore())

	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)
	engine := runtime.NewEngine(registry, runtime.WithHooks(metrics.Hooks()))

	s := NewServer(session.NewManager(memory.NewStore()), engine, registry, WithMetrics(reg), WithVersion("1.2.3\n"))
	return s, s.Handler()
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func put(t *testing.T, h http.Handler, id, body string) {
	t.Helper()
	w := do(h, "PUT", "/documents/"+id, body)
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())
}

func TestHealthAndInfo(t *testing.T) {
	_, h := newTestServer(t)

	w := do(h, "GET", "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = do(h, "GET", "/info", "")
	require.Equal(t, http.StatusOK, w.Code)
	var info map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.Equal(t, "1.2.3", info["version"])
	assert.Equal(t, 2.0, info["format_version"])
	assert.Contains(t, info["plugins"], "text")
}

func TestDocumentLifecycle(t *testing.T) {
	_, h := newTestServer(t)

	w := do(h, "GET", "/documents/post", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	put(t, h, "post", helloDocument)

	w = do(h, "GET", "/documents/", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"documents":["post"]}`, w.Body.String())

	w = do(h, "GET", "/documents/post", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"title": "hello"`)

	w = do(h, "PUT", "/documents/post", `{"version": 2, "modules": [{"id": "output", "plugin": "text"}]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(h, "DELETE", "/documents/post", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(h, "GET", "/documents/post", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRenderDocument(t *testing.T) {
	_, h := newTestServer(t)
	put(t, h, "post", helloDocument)
	put(t, h, "broken", brokenDocument)

	tests := []struct {
		name        string
		path        string
		status      int
		contentType string
		body        string
	}{
		{"markdown", "/documents/post/render", http.StatusOK, "text/markdown", "hello\n\nworld"},
		{"html", "/documents/post/render?format=html", http.StatusOK, "text/html", "<p>hello</p>"},
		{"values", "/documents/post/render?format=values", http.StatusOK, "application/json", `"type_id":"text/plain"`},
		{"single target", "/documents/post/render?target=b", http.StatusOK, "text/markdown", "world"},
		{"missing target", "/documents/post/render?target=zz", http.StatusNotFound, "application/json", "target"},
		{"module failure", "/documents/broken/render", http.StatusUnprocessableEntity, "application/json", `"module_id":"a"`},
		{"bad format", "/documents/post/render?format=pdf", http.StatusBadRequest, "application/json", "unknown render mode"},
		{"missing document", "/documents/nope/render", http.StatusNotFound, "application/json", "not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(h, "GET", tt.path, "")
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Contains(t, w.Header().Get("Content-Type"), tt.contentType)
			assert.Contains(t, w.Body.String(), tt.body)
		})
	}
}

func TestGraphAndValidate(t *testing.T) {
	_, h := newTestServer(t)
	put(t, h, "post", helloDocument)

	w := do(h, "GET", "/documents/post/graph", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "graph LR")
	assert.Contains(t, w.Body.String(), "a --> output")

	w = do(h, "GET", "/documents/post/validate", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"valid":true,"issues":[]}`, w.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	_, h := newTestServer(t)
	put(t, h, "post", helloDocument)
	require.Equal(t, http.StatusOK, do(h, "GET", "/documents/post/render", "").Code)

	w := do(h, "GET", "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `prechoster_passes_total{status="ok"} 1`)
	assert.Contains(t, w.Body.String(), `prechoster_transforms_total{plugin="text",status="ok"} 2`)
}

func TestCORS(t *testing.T) {
	_, h := newTestServer(t)
	w := do(h, "OPTIONS", "/documents/", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestSubscribeEvents(t *testing.T) {
	s, h := newTestServer(t)
	put(t, h, "post", helloDocument)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	wSub := httptest.NewRecorder()
	reqSub := httptest.NewRequest("GET", "/documents/post/events", nil).WithContext(ctx)

	done := make(chan struct{})
	go func() {
		defer close(done)
		h.ServeHTTP(wSub, reqSub)
	}()

	require.Eventually(t, func() bool {
		s.Streams.mu.RLock()
		defer s.Streams.mu.RUnlock()
		return len(s.Streams.subscribers["post"]) == 1
	}, time.Second, 10*time.Millisecond)

	put(t, h, "post", strings.Replace(helloDocument, `"title": "hello"`, `"title": "renamed"`, 1))

	cancel()
	<-done

	output := wSub.Body.String()
	assert.Contains(t, output, "event: ping")
	assert.Contains(t, output, `"title":"renamed"`)
	assert.NotContains(t, output, `"upserted"`, "unchanged modules are not resent")
}

func TestStreamManager_DropsForSlowClients(t *testing.T) {
	sm := NewStreamManager()
	ch, unsubscribe := sm.Subscribe("doc")

	for i := 0; i < 20; i++ {
		sm.Broadcast("doc", "msg")
	}
	assert.Len(t, ch, cap(ch))

	unsubscribe()
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	assert.Empty(t, sm.subscribers)
}
