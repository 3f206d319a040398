// Package plugins provides the built-in module kinds.
//
// Every plugin decodes its module data with mapstructure and validates it
// with struct tags before transforming. RegisterBuiltins installs them all
// into a plugin.Registry.
package plugins
