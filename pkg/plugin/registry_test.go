package plugin_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cpsdqs/prechoster/pkg/plugin"
	"github.com/cpsdqs/prechoster/pkg/value"
)

type echo struct{ kind string }

func (e echo) Kind() string             { return e.kind }
func (e echo) AcceptsInputs() bool      { return true }
func (e echo) AcceptsNamedInputs() bool { return false }
func (e echo) DefaultConfig() (map[string]any, error) {
	return map[string]any{}, nil
}
func (e echo) Describe(map[string]any) string { return e.kind }
func (e echo) Transform(_ context.Context, _ map[string]any, in []value.Value, _ map[string]value.Value, _ *plugin.TransformOptions) (value.Value, error) {
	if len(in) == 0 {
		return value.Text{}, nil
	}
	return in[0], nil
}

type slow struct{ echo }

func (slow) PrefersDebounce() bool { return true }

func TestRegistry_LoadLazilyOnce(t *testing.T) {
	r := plugin.NewRegistry()
	var calls atomic.Int32
	r.Register("echo", func(context.Context) (plugin.Capability, error) {
		calls.Add(1)
		return echo{kind: "echo"}, nil
	})

	assert.True(t, plugin.IsUnloaded(r.Peek("echo")))
	assert.Equal(t, int32(0), calls.Load())

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c, err := r.Load(context.Background(), "echo")
			assert.NoError(t, err)
			assert.Equal(t, "echo", c.Kind())
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	assert.False(t, plugin.IsUnloaded(r.Peek("echo")))
}

func TestRegistry_UnknownKind(t *testing.T) {
	r := plugin.NewRegistry()
	_, err := r.Load(context.Background(), "nope")
	assert.ErrorIs(t, err, plugin.ErrUnknownKind)
	assert.False(t, r.Has("nope"))
}

func TestRegistry_LoaderFailureNotCached(t *testing.T) {
	r := plugin.NewRegistry()
	fail := true
	r.Register("flaky", func(context.Context) (plugin.Capability, error) {
		if fail {
			return nil, errors.New("network down")
		}
		return echo{kind: "flaky"}, nil
	})

	_, err := r.Load(context.Background(), "flaky")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "network down")

	fail = false
	c, err := r.Load(context.Background(), "flaky")
	require.NoError(t, err)
	assert.Equal(t, "flaky", c.Kind())
}

func TestRegistry_ResolveAll(t *testing.T) {
	r := plugin.NewRegistry()
	r.Register("a", plugin.Static(echo{kind: "a"}))
	r.Register("b", plugin.Static(echo{kind: "b"}))

	got, err := r.ResolveAll(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, []string{"a", "b"}, r.Kinds())

	_, err = r.ResolveAll(context.Background(), []string{"a", "missing"})
	assert.ErrorIs(t, err, plugin.ErrUnknownKind)
}

func TestRegistry_RegisterReplacesCached(t *testing.T) {
	r := plugin.NewRegistry(plugin.WithCacheSize(4))
	r.Register("x", plugin.Static(echo{kind: "old"}))
	c, err := r.Load(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, "old", c.Kind())

	r.Register("x", plugin.Static(echo{kind: "new"}))
	c, err = r.Load(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, "new", c.Kind())
}

func TestUnloaded(t *testing.T) {
	u := plugin.NewUnloaded("text")

	_, err := u.DefaultConfig()
	assert.ErrorIs(t, err, plugin.ErrUnloaded)

	_, err = u.Transform(context.Background(), nil, nil, nil, &plugin.TransformOptions{})
	assert.ErrorIs(t, err, plugin.ErrUnloaded)
	assert.Equal(t, "text", u.Kind())
}

func TestPrefersDebounce(t *testing.T) {
	assert.False(t, plugin.PrefersDebounce(echo{}))
	assert.True(t, plugin.PrefersDebounce(slow{}))
}

func TestRegistry_LoadErrorNamesKind(t *testing.T) {
	r := plugin.NewRegistry()
	_, err := r.Load(context.Background(), "ghost")

	var loadErr *plugin.LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, "ghost", loadErr.Kind)
}
