// Package graph exports documents as Mermaid flowcharts.
package graph
