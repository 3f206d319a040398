package plugins

import (
	"github.com/cpsdqs/prechoster/pkg/plugin"
	"github.com/cpsdqs/prechoster/pkg/ports"
)

// RegisterBuiltins installs every built-in kind into r.
// Blobs backs the data-file kind.
func RegisterBuiltins(r *plugin.Registry, blobs ports.BlobStore) {
	r.Register(KindText, plugin.Static(Text{}))
	r.Register(KindConcat, plugin.Static(Concat{}))
	r.Register(KindTemplate, plugin.Static(Template{}))
	r.Register(KindMarkdownToHTML, plugin.Static(MarkdownToHTML{}))
	r.Register(KindDataFile, plugin.Static(DataFile{Blobs: blobs}))
	r.Register(KindStyleWrap, plugin.Static(StyleWrap{}))
}
