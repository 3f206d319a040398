/*
Package dsl provides a fluent builder for constructing documents in Go.

It is an alternative to writing serialized documents by hand, useful for
tests, examples and documents generated by programs.

Example usage:

	b := dsl.New().Title("hello")

	b.CSS("style", "color: red").Named("wrap", "style")
	b.HTML("body", "<p>hi</p>").To("wrap")
	b.Add("wrap", "style-wrap").Set("tag", "div").ToOutput()

	state, err := b.Build()
*/
package dsl
