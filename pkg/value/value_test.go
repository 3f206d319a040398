package value_test

import (
	"testing"

	"github.com/cpsdqs/prechoster/pkg/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInto(t *testing.T) {
	tests := []struct {
		name   string
		in     value.Value
		target value.Kind
		want   value.Value
		ok     bool
	}{
		{"text to bytes", value.Text{Contents: "héllo"}, value.KindBytes, value.Bytes{Data: []byte("héllo")}, true},
		{"html to text", value.HTML{Contents: "<b>x</b>"}, value.KindText, value.Text{Contents: "<b>x</b>"}, true},
		{"css to bytes", value.CSS{Contents: "a{}"}, value.KindBytes, value.Bytes{Data: []byte("a{}")}, true},
		{"same kind", value.CSS{Contents: "a{}"}, value.KindCSS, value.CSS{Contents: "a{}"}, true},
		{"blob to text", value.NewBlob("image/png", "blob:mem/1", nil), value.KindText, value.Text{Contents: "blob:mem/1"}, true},
		{"bytes to text", value.Bytes{Data: []byte("x")}, value.KindText, nil, false},
		{"text to html", value.Text{Contents: "x"}, value.KindHTML, nil, false},
		{"blob to bytes", value.NewBlob("image/png", "blob:mem/1", nil), value.KindBytes, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := value.Into(tt.in, tt.target)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			} else {
				assert.Nil(t, got)
			}
		})
	}
}

func TestMarkdown(t *testing.T) {
	md, ok := value.Markdown(value.HTML{Contents: "<p>hi</p>"})
	require.True(t, ok)
	assert.Equal(t, "<p>hi</p>", md)

	_, ok = value.Markdown(value.Bytes{Data: []byte{0xff}})
	assert.False(t, ok)

	_, ok = value.Markdown(nil)
	assert.False(t, ok)
}

func TestBlob_ReleaseIdempotent(t *testing.T) {
	calls := 0
	b := value.NewBlob("text/plain", "file:///tmp/x", func() { calls++ })

	b.Release()
	b.Release()
	assert.Equal(t, 1, calls)

	// A zero blob never materialized anything.
	var zero value.Blob
	assert.NotPanics(t, zero.Release)
	assert.Equal(t, value.TypeBytes, zero.TypeID())
}

func TestCanConvert(t *testing.T) {
	assert.True(t, value.CanConvert(value.KindJavaScript, value.KindText))
	assert.True(t, value.CanConvert(value.KindBlob, value.KindBlob))
	assert.False(t, value.CanConvert(value.KindBytes, value.KindBlob))
}
