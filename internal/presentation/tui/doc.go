// Package tui renders previews and the banner for terminal output.
package tui
