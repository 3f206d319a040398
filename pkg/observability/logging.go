package observability

import (
	"context"
	"log/slog"

	"github.com/cpsdqs/prechoster/pkg/domain"
)

// LoggingHooks returns engine hooks that log every pass and transform.
// Passes log at Debug and failed transforms at Warn.
func LoggingHooks(logger *slog.Logger) domain.EvalHooks {
	return domain.EvalHooks{
		OnPassStart: func(ctx context.Context, e *domain.PassEvent) {
			logger.DebugContext(ctx, "pass_start", "pass_id", e.PassID, "target", e.Target)
		},
		OnPassDone: func(ctx context.Context, e *domain.PassEvent) {
			attrs := []any{"pass_id", e.PassID, "target", e.Target, "steps", e.Steps, "duration", e.Duration}
			if e.Err != nil {
				attrs = append(attrs, "err", e.Err)
			}
			logger.DebugContext(ctx, "pass_done", attrs...)
		},
		OnModuleDone: func(ctx context.Context, e *domain.ModuleEvent) {
			if e.Err != nil {
				logger.WarnContext(ctx, "transform_failed",
					"pass_id", e.PassID,
					"module_id", e.ModuleID,
					"plugin", e.Plugin,
					"err", e.Err,
				)
				return
			}
			logger.DebugContext(ctx, "transform_done",
				"pass_id", e.PassID,
				"module_id", e.ModuleID,
				"plugin", e.Plugin,
				"duration", e.Duration,
			)
		},
	}
}
