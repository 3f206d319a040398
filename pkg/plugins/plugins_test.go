package plugins_test

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cpsdqs/prechoster/pkg/adapters/memory"
	"github.com/cpsdqs/prechoster/pkg/plugin"
	"github.com/cpsdqs/prechoster/pkg/plugins"
	"github.com/cpsdqs/prechoster/pkg/value"
)

func transform(t *testing.T, c plugin.Capability, config map[string]any, in []value.Value, named map[string]value.Value) (value.Value, map[string]any) {
	t.Helper()
	opts := &plugin.TransformOptions{UserData: map[string]any{}}
	out, err := c.Transform(context.Background(), config, in, named, opts)
	require.NoError(t, err)
	return out, opts.UserData
}

func TestText(t *testing.T) {
	tests := []struct {
		name     string
		config   map[string]any
		wantKind value.Kind
	}{
		{"Markdown", map[string]any{"contents": "# hi", "language": "markdown"}, value.KindText},
		{"HTML", map[string]any{"contents": "<b>hi</b>", "language": "html"}, value.KindHTML},
		{"CSS", map[string]any{"contents": "a{}", "language": "css"}, value.KindCSS},
		{"JavaScript", map[string]any{"contents": "x()", "language": "javascript"}, value.KindJavaScript},
		{"No Language", map[string]any{"contents": "plain"}, value.KindText},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _ := transform(t, plugins.Text{}, tt.config, nil, nil)
			assert.Equal(t, tt.wantKind, out.Kind())
			s, ok := value.TextContents(out)
			require.True(t, ok)
			assert.Equal(t, tt.config["contents"], s)
		})
	}

	t.Run("Invalid Language", func(t *testing.T) {
		_, err := plugins.Text{}.Transform(context.Background(), map[string]any{"language": "cobol"}, nil, nil, &plugin.TransformOptions{})
		assert.ErrorIs(t, err, plugins.ErrInvalidConfig)
		assert.Contains(t, err.Error(), "language must be one of")
	})

	t.Run("Default Config", func(t *testing.T) {
		cfg, err := plugins.Text{}.DefaultConfig()
		require.NoError(t, err)
		assert.Equal(t, "markdown", cfg["language"])
		assert.Equal(t, "", cfg["contents"])
		assert.Equal(t, "empty markdown", plugins.Text{}.Describe(cfg))
	})

	t.Run("Describe", func(t *testing.T) {
		assert.Equal(t, "first…", plugins.Text{}.Describe(map[string]any{"contents": "first\nsecond"}))
	})
}

func TestConcat(t *testing.T) {
	out, userData := transform(t, plugins.Concat{},
		map[string]any{"separator": ", ", "language": "html"},
		[]value.Value{value.Text{Contents: "a"}, value.CSS{Contents: "b"}, value.NewBlob("image/png", "mem://x", nil)},
		nil,
	)
	assert.Equal(t, value.HTML{Contents: "a, b, mem://x"}, out)
	assert.Equal(t, 3, userData["inputs"])

	t.Run("Bytes Input Fails", func(t *testing.T) {
		_, err := plugins.Concat{}.Transform(context.Background(), nil, []value.Value{value.Bytes{Data: []byte("x")}}, nil, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "input 1")
	})
}

func TestTemplate(t *testing.T) {
	out, _ := transform(t, plugins.Template{},
		map[string]any{"template": "{{ .greeting }}, {{ index .inputs 0 }}!"},
		[]value.Value{value.Text{Contents: "world"}},
		map[string]value.Value{"greeting": value.Text{Contents: "hello"}},
	)
	assert.Equal(t, value.Text{Contents: "hello, world!"}, out)

	t.Run("Missing Key", func(t *testing.T) {
		_, err := plugins.Template{}.Transform(context.Background(), map[string]any{"template": "{{ .nope }}"}, nil, nil, nil)
		assert.Error(t, err)
	})

	t.Run("Parse Error", func(t *testing.T) {
		_, err := plugins.Template{}.Transform(context.Background(), map[string]any{"template": "{{ .x "}, nil, nil, nil)
		assert.ErrorContains(t, err, "parse template")
	})

	t.Run("Reserved Input Name", func(t *testing.T) {
		_, err := plugins.Template{}.Transform(context.Background(),
			map[string]any{"template": "{{ index .inputs 0 }}"},
			[]value.Value{value.Text{Contents: "a"}},
			map[string]value.Value{"inputs": value.Text{Contents: "b"}},
			nil,
		)
		assert.ErrorContains(t, err, "reserved")
	})
}

func TestMarkdownToHTML(t *testing.T) {
	cfg, err := plugins.MarkdownToHTML{}.DefaultConfig()
	require.NoError(t, err)

	out, userData := transform(t, plugins.MarkdownToHTML{}, cfg,
		[]value.Value{value.Text{Contents: "# Title"}, value.Text{Contents: "*em*"}}, nil)

	html, ok := out.(value.HTML)
	require.True(t, ok)
	assert.Contains(t, html.Contents, "<h1>Title</h1>")
	assert.Contains(t, html.Contents, "<em>em</em>")
	assert.Equal(t, len(html.Contents), userData["bytes"])
}

func TestDataFile(t *testing.T) {
	blobs := memory.NewBlobStore()
	p := plugins.DataFile{Blobs: blobs}
	cfg := map[string]any{"mime_type": "image/png", "data": base64.StdEncoding.EncodeToString([]byte("png!"))}

	out, userData := transform(t, p, cfg, nil, nil)
	blob, ok := out.(*value.Blob)
	require.True(t, ok)
	assert.Equal(t, "image/png", blob.TypeID())
	assert.Equal(t, 4, userData["size"])

	data, _, err := blobs.Get(context.Background(), blob.URL)
	require.NoError(t, err)
	assert.Equal(t, "png!", string(data))

	blob.Release()
	assert.Equal(t, 0, blobs.Len())

	t.Run("Requires Mime Type", func(t *testing.T) {
		_, err := p.Transform(context.Background(), map[string]any{}, nil, nil, nil)
		assert.ErrorIs(t, err, plugins.ErrInvalidConfig)
		assert.Contains(t, err.Error(), "mimetype is required")
	})
}

func TestStyleWrap(t *testing.T) {
	out, _ := transform(t, plugins.StyleWrap{}, map[string]any{"tag": "div"},
		[]value.Value{value.HTML{Contents: "<p>x</p>"}},
		map[string]value.Value{plugins.StyleInput: value.CSS{Contents: "color: red;\nfont-weight: bold;"}},
	)
	assert.Equal(t, value.HTML{Contents: `<div style="color: red; font-weight: bold;">` + "<p>x</p></div>"}, out)
	assert.True(t, plugin.PrefersDebounce(plugins.StyleWrap{}))

	t.Run("Without Style", func(t *testing.T) {
		out, _ := transform(t, plugins.StyleWrap{}, map[string]any{}, []value.Value{value.Text{Contents: "x"}}, nil)
		assert.Equal(t, value.HTML{Contents: "<div>x</div>"}, out)
	})
}

func TestRegisterBuiltins(t *testing.T) {
	r := plugin.NewRegistry()
	plugins.RegisterBuiltins(r, memory.NewBlobStore())

	assert.Equal(t, []string{
		plugins.KindConcat,
		plugins.KindDataFile,
		plugins.KindMarkdownToHTML,
		plugins.KindStyleWrap,
		plugins.KindTemplate,
		plugins.KindText,
	}, r.Kinds())

	for _, kind := range r.Kinds() {
		c, err := r.Load(context.Background(), kind)
		require.NoError(t, err)
		assert.Equal(t, kind, c.Kind())
		_, err = c.DefaultConfig()
		assert.NoError(t, err, kind)
	}
}
