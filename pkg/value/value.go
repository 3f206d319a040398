package value

import (
	"fmt"
	"sync"
)

// Kind identifies a concrete value variant.
type Kind int

const (
	KindBytes Kind = iota
	KindText
	KindHTML
	KindCSS
	KindJavaScript
	KindBlob
)

// String returns the variant name used in logs and error messages.
func (k Kind) String() string {
	switch k {
	case KindBytes:
		return "bytes"
	case KindText:
		return "text"
	case KindHTML:
		return "html"
	case KindCSS:
		return "css"
	case KindJavaScript:
		return "javascript"
	case KindBlob:
		return "blob"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// MIME-like type identifiers for the built-in variants.
const (
	TypeBytes      = "application/octet-stream"
	TypeText       = "text/plain"
	TypeHTML       = "text/html"
	TypeCSS        = "text/css"
	TypeJavaScript = "application/javascript"
)

// Value is a typed artifact flowing along document edges.
// Release frees any external resource held by the value. It must be safe to
// call more than once and on values that never materialized anything.
type Value interface {
	Kind() Kind
	TypeID() string
	Release()
}

// Bytes is a raw byte sequence.
type Bytes struct {
	Data []byte
}

func (Bytes) Kind() Kind       { return KindBytes }
func (Bytes) TypeID() string   { return TypeBytes }
func (Bytes) Release()         {}
func (b Bytes) String() string { return fmt.Sprintf("Bytes(%d)", len(b.Data)) }

// Text is plain UTF-8 text.
type Text struct {
	Contents string
}

func (Text) Kind() Kind     { return KindText }
func (Text) TypeID() string { return TypeText }
func (Text) Release()       {}

// HTML is HTML source text.
type HTML struct {
	Contents string
}

func (HTML) Kind() Kind     { return KindHTML }
func (HTML) TypeID() string { return TypeHTML }
func (HTML) Release()       {}

// CSS is stylesheet source text.
type CSS struct {
	Contents string
}

func (CSS) Kind() Kind     { return KindCSS }
func (CSS) TypeID() string { return TypeCSS }
func (CSS) Release()       {}

// JavaScript is script source text.
type JavaScript struct {
	Contents string
}

func (JavaScript) Kind() Kind     { return KindJavaScript }
func (JavaScript) TypeID() string { return TypeJavaScript }
func (JavaScript) Release()       {}

// Blob references data held outside the process (an object URL, a temp
// file, a stored object). It owns the handle and revokes it on Release.
type Blob struct {
	MimeType string
	URL      string

	once    *sync.Once
	release func()
}

// NewBlob creates a blob whose release hook runs at most once.
// A nil hook is allowed.
func NewBlob(mimeType, url string, release func()) *Blob {
	return &Blob{
		MimeType: mimeType,
		URL:      url,
		once:     &sync.Once{},
		release:  release,
	}
}

func (b *Blob) Kind() Kind { return KindBlob }

func (b *Blob) TypeID() string {
	if b.MimeType == "" {
		return TypeBytes
	}
	return b.MimeType
}

// Release revokes the external handle. Repeated calls are no-ops.
func (b *Blob) Release() {
	if b == nil || b.once == nil {
		return
	}
	b.once.Do(func() {
		if b.release != nil {
			b.release()
		}
	})
}

// TextContents returns the source text of the text-like variants.
func TextContents(v Value) (string, bool) {
	switch t := v.(type) {
	case Text:
		return t.Contents, true
	case HTML:
		return t.Contents, true
	case CSS:
		return t.Contents, true
	case JavaScript:
		return t.Contents, true
	}
	return "", false
}

// FromText wraps contents in the text-like variant for kind.
// Non-text kinds fall back to plain Text.
func FromText(kind Kind, contents string) Value {
	switch kind {
	case KindHTML:
		return HTML{Contents: contents}
	case KindCSS:
		return CSS{Contents: contents}
	case KindJavaScript:
		return JavaScript{Contents: contents}
	default:
		return Text{Contents: contents}
	}
}

// ReleaseAll releases every value, skipping nils.
func ReleaseAll(values ...Value) {
	for _, v := range values {
		if v != nil {
			v.Release()
		}
	}
}
