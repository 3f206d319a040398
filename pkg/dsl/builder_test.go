package dsl

import (
	"testing"

	"github.com/cpsdqs/prechoster/pkg/domain"
)

func TestBuilder_SimpleDocument(t *testing.T) {
	b := New().Title("hello").TitleInPost(true)

	b.CSS("style", "color: red").Named("wrap", "style")
	b.HTML("body", "<p>hi</p>").To("wrap")
	b.Add("wrap", "style-wrap").Set("tag", "div").At(10, 20).Title("wrapper").ToOutput()

	state, err := b.Build()
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}

	if state.Title != "hello" || !state.TitleInPost {
		t.Errorf("Expected title 'hello' in post, got %q (%v)", state.Title, state.TitleInPost)
	}
	if len(state.Modules) != 3 {
		t.Fatalf("Expected 3 modules, got %d", len(state.Modules))
	}
	if state.Modules[0].ID != "style" || state.Modules[2].ID != "wrap" {
		t.Errorf("Modules should keep insertion order, got %s..%s", state.Modules[0].ID, state.Modules[2].ID)
	}

	style := state.Modules[0]
	if style.Plugin != "text" || style.Data["language"] != "css" {
		t.Errorf("Expected css text module, got %s %v", style.Plugin, style.Data)
	}

	named := domain.NamedInputs(state, "wrap")
	if len(named) != 1 || named[0].Name != "style" || named[0].Source != "style" {
		t.Errorf("Expected named input style<-style, got %v", named)
	}
	if got := domain.PositionalInputs(state, "wrap"); len(got) != 1 || got[0] != "body" {
		t.Errorf("Expected body -> wrap, got %v", got)
	}
	if got := domain.PositionalInputs(state, domain.OutputID); len(got) != 1 || got[0] != "wrap" {
		t.Errorf("Expected wrap -> output, got %v", got)
	}

	wrap := state.Modules[2]
	if wrap.GraphPos == nil || wrap.GraphPos.X != 10 {
		t.Errorf("Expected graph position, got %v", wrap.GraphPos)
	}
	if wrap.Title != "wrapper" {
		t.Errorf("Expected title 'wrapper', got %q", wrap.Title)
	}
}

func TestBuilder_AddReturnsExisting(t *testing.T) {
	b := New()
	b.Text("a", "one")
	b.Add("a", "ignored").To(domain.OutputID)

	state := b.MustBuild()
	if len(state.Modules) != 1 {
		t.Fatalf("Expected 1 module, got %d", len(state.Modules))
	}
	if state.Modules[0].Plugin != "text" {
		t.Errorf("Expected the first plugin kind to stick, got %s", state.Modules[0].Plugin)
	}
}

func TestBuilder_Errors(t *testing.T) {
	tests := []struct {
		name  string
		build func(*Builder)
	}{
		{"unknown target", func(b *Builder) { b.Text("a", "x").To("ghost") }},
		{"unknown named target", func(b *Builder) { b.Text("a", "x").Named("ghost", "slot") }},
		{"named output", func(b *Builder) { b.Text("a", "x").Named(domain.OutputID, "slot") }},
		{"reserved id", func(b *Builder) { b.Text(domain.OutputID, "x") }},
		{"missing plugin", func(b *Builder) { b.Add("a", "") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New()
			tt.build(b)
			if _, err := b.Build(); err == nil {
				t.Error("Expected Build() to fail")
			}
		})
	}
}

func TestBuilder_Document(t *testing.T) {
	b := New()
	b.Text("a", "x").ToOutput()

	doc, err := b.Document()
	if err != nil {
		t.Fatalf("Document() failed: %v", err)
	}
	if len(doc.Modules()) != 1 {
		t.Errorf("Expected 1 module, got %d", len(doc.Modules()))
	}
	if doc.CanUndo() {
		t.Error("A fresh document should have nothing to undo")
	}

	doc.SetTitle("changed")
	if b.MustBuild().Title != "" {
		t.Error("Editing the document must not touch the builder")
	}
}
