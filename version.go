package prechoster

// Version is the release reported by the CLI and the HTTP info endpoint.
// Release builds override it with -ldflags "-X github.com/cpsdqs/prechoster.Version=...".
var Version = "0.1.0"
