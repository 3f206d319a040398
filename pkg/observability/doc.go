/*
Package observability provides monitoring for the evaluation engine.

It turns engine lifecycle hooks into Prometheus metrics and structured log
lines. Both are plain domain.EvalHooks values and can be merged.
*/
package observability
