package observability_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cpsdqs/prechoster/internal/runtime"
	"github.com/cpsdqs/prechoster/pkg/adapters/memory"
	"github.com/cpsdqs/prechoster/pkg/domain"
	"github.com/cpsdqs/prechoster/pkg/observability"
	"github.com/cpsdqs/prechoster/pkg/plugin"
	"github.com/cpsdqs/prechoster/pkg/plugins"
)

func newEngine(hooks domain.EvalHooks) *runtime.Engine {
	r := plugin.NewRegistry()
	plugins.RegisterBuiltins(r, memory.NewBlobStore())
	return runtime.NewEngine(r, runtime.WithHooks(hooks))
}

func textModule(id domain.ModuleID, contents, language string) *domain.Module {
	return &domain.Module{
		ID:     id,
		Plugin: plugins.KindText,
		Data:   map[string]any{"contents": contents, "language": language},
		Sends:  []domain.ModuleID{domain.OutputID},
	}
}

// metricValue sums counter and histogram sample counts of the named family
// whose labels include want.
func metricValue(t *testing.T, reg *prometheus.Registry, name string, want map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)

	var total float64
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
	metrics:
		for _, m := range f.GetMetric() {
			labels := map[string]string{}
			for _, l := range m.GetLabel() {
				labels[l.GetName()] = l.GetValue()
			}
			for k, v := range want {
				if labels[k] != v {
					continue metrics
				}
			}
			switch {
			case m.GetCounter() != nil:
				total += m.GetCounter().GetValue()
			case m.GetHistogram() != nil:
				total += float64(m.GetHistogram().GetSampleCount())
			case m.GetGauge() != nil:
				total += m.GetGauge().GetValue()
			}
		}
	}
	return total
}

func TestMetrics_Hooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)
	engine := newEngine(metrics.Hooks())
	ctx := context.Background()

	good := domain.DocumentState{Modules: []*domain.Module{
		textModule("a", "hello", "markdown"),
		textModule("b", "world", "markdown"),
	}}
	res := engine.Eval(ctx, good, runtime.Request{Target: domain.OutputID})
	require.True(t, res.OK())
	res.Drop()

	bad := domain.DocumentState{Modules: []*domain.Module{textModule("c", "x", "klingon")}}
	res = engine.Eval(ctx, bad, runtime.Request{Target: domain.OutputID})
	require.False(t, res.OK())

	assert.Equal(t, 1.0, metricValue(t, reg, "prechoster_passes_total", map[string]string{"status": "ok"}))
	assert.Equal(t, 1.0, metricValue(t, reg, "prechoster_passes_total", map[string]string{"status": "error"}))
	assert.Equal(t, 2.0, metricValue(t, reg, "prechoster_transforms_total", map[string]string{"plugin": "text", "status": "ok"}))
	assert.Equal(t, 1.0, metricValue(t, reg, "prechoster_transforms_total", map[string]string{"plugin": "text", "status": "error"}))
	assert.Equal(t, 3.0, metricValue(t, reg, "prechoster_transform_duration_seconds", map[string]string{"plugin": "text"}))
	assert.Equal(t, 2.0, metricValue(t, reg, "prechoster_pass_steps", nil))
	assert.Equal(t, 0.0, metricValue(t, reg, "prechoster_passes_in_flight", nil))
}

func TestNewMetrics_Unregistered(t *testing.T) {
	m := observability.NewMetrics(nil)
	assert.NotNil(t, m.Passes)

	// registering twice would panic if NewMetrics had used a global registry
	reg := prometheus.NewRegistry()
	observability.NewMetrics(reg)
	assert.Panics(t, func() { observability.NewMetrics(reg) })
}

func TestLoggingHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	engine := newEngine(observability.LoggingHooks(logger))

	bad := domain.DocumentState{Modules: []*domain.Module{textModule("c", "x", "klingon")}}
	res := engine.Eval(context.Background(), bad, runtime.Request{Target: domain.OutputID})
	require.False(t, res.OK())

	out := buf.String()
	assert.Contains(t, out, "msg=pass_start")
	assert.Contains(t, out, "msg=transform_failed")
	assert.Contains(t, out, "module_id=c")
	assert.Contains(t, out, "msg=pass_done")
}
