package diag

import (
	"context"
	"log/slog"
	"time"
)

// RunStep runs op under label, logging its duration on success and its
// decomposed failure otherwise. The result and error of op are returned
// unchanged; no retries are performed.
func RunStep[T any](ctx context.Context, log *slog.Logger, label string, op func(context.Context) (T, error)) (T, error) {
	return runStep(ctx, log, label, slog.LevelError, op)
}

// RunAdvisoryStep is RunStep for calls whose failure the caller tolerates.
// The failure is logged at INFO instead of ERROR.
func RunAdvisoryStep[T any](ctx context.Context, log *slog.Logger, label string, op func(context.Context) (T, error)) (T, error) {
	return runStep(ctx, log, label, slog.LevelInfo, op)
}

func runStep[T any](ctx context.Context, log *slog.Logger, label string, failLevel slog.Level, op func(context.Context) (T, error)) (T, error) {
	if log == nil {
		log = slog.Default()
	}

	start := time.Now()
	log.Info("step started", slog.String("step", label))

	res, err := op(ctx)
	if err != nil {
		attrs := []any{slog.String("step", label), slog.Duration("duration", time.Since(start))}
		log.Log(ctx, failLevel, "step failed", append(attrs, Decompose(err).Attrs()...)...)
		return res, err
	}

	log.Info("step succeeded",
		slog.String("step", label),
		slog.Duration("duration", time.Since(start)))
	return res, nil
}
