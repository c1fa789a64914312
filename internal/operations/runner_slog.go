package operations

import (
	"context"
	"log/slog"
	"time"

	"datacli/internal/infrastructure"
)

// logRunStart logs the start of a run
func (r *Runner) logRunStart(ctx context.Context, logger *slog.Logger, outputDir string) {
	logger.InfoContext(ctx, "run_start",
		slog.String("mode", string(r.opts.Mode)),
		slog.String("output_dir", outputDir))
}

// logRunComplete logs the completion of a run
func (r *Runner) logRunComplete(ctx context.Context, logger *slog.Logger, res *Result) {
	logger.InfoContext(ctx, "run_complete",
		slog.String("status", string(res.Status)),
		slog.String("kind", string(res.Kind)),
		slog.Int("files_written", len(res.Files)),
		slog.Duration("duration", res.Duration))
}

// logRunError logs a failed or cancelled run
func (r *Runner) logRunError(ctx context.Context, logger *slog.Logger, res *Result) {
	infrastructure.WithError(logger, res.Err).ErrorContext(ctx, "run_error",
		slog.String("status", string(res.Status)),
		slog.Duration("duration", res.Duration))
}

// logStageStart logs the start of a stage
func (r *Runner) logStageStart(ctx context.Context, logger *slog.Logger, stage string) {
	logger.DebugContext(ctx, "stage_start", slog.String("stage", stage))
}

// logStageComplete logs the completion of a stage
func (r *Runner) logStageComplete(ctx context.Context, logger *slog.Logger, stage string, duration time.Duration) {
	logger.InfoContext(ctx, "stage_complete",
		slog.String("stage", stage),
		slog.Duration("duration", duration))
}

// logStageError logs a stage error
func (r *Runner) logStageError(ctx context.Context, logger *slog.Logger, stage string, err error) {
	infrastructure.WithError(logger, err).ErrorContext(ctx, "stage_error",
		slog.String("stage", stage))
}
