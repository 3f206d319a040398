// Package http exposes stored documents over a chi HTTP API.
package http
