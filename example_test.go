package prechoster_test

import (
	"context"
	"fmt"
	"log"

	"github.com/cpsdqs/prechoster"
	"github.com/cpsdqs/prechoster/pkg/dsl"
	"github.com/cpsdqs/prechoster/pkg/domain"
)

// ExampleNew builds a small document with the dsl package and renders it.
func ExampleNew() {
	b := dsl.New().Title("Greeting").TitleInPost(true)
	b.Text("hello", "Hello,").To("joined")
	b.Text("world", "**world**").To("joined")
	b.Add("joined", "concat").Set("separator", " ").ToOutput()

	ed := prechoster.New(prechoster.WithState(b.MustBuild()))
	defer ed.Close()

	res := ed.Render(context.Background(), prechoster.ModeMarkdown)
	defer res.Drop()
	if err := res.Err(); err != nil {
		log.Fatal(err)
	}
	fmt.Println(res.Output)
	// Output:
	// # Greeting
	//
	// Hello, **world**
}

// ExampleEditor_Eval evaluates a single module instead of the output sink.
func ExampleEditor_Eval() {
	b := dsl.New()
	b.Text("a", "# Title").ToOutput()

	ed := prechoster.New(prechoster.WithState(b.MustBuild()))
	res := ed.Eval(context.Background(), prechoster.Request{Target: domain.ModuleID("a"), Mode: prechoster.ModeHTML})
	defer res.Drop()

	fmt.Print(res.Output)
	// Output:
	// <h1>Title</h1>
}
