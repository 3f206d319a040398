// Package cli holds the command implementations behind cmd/prechoster:
// configuration from flags and the environment, store selection, rendering,
// file watching and the HTTP server lifecycle.
package cli
