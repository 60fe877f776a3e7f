package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"interview-ai-memo/internal/infra/worker"
)

// QueueWorker drives the queue runner on a fixed tick. It backs the
// long-running deployment; serverless deployments hit the cron endpoint
// instead and never start this loop.
type QueueWorker struct {
	interval time.Duration
	runner   *worker.Runner
	log      *zerolog.Logger
}

func NewQueueWorker(interval time.Duration, runner *worker.Runner, logger *zerolog.Logger) *QueueWorker {
	qwLog := logger.With().Str("component", "QueueWorker").Logger()
	if interval <= 0 {
		interval = time.Minute
	}
	return &QueueWorker{interval: interval, runner: runner, log: &qwLog}
}

func (w *QueueWorker) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("Starting queue worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping queue worker")
			return ctx.Err()
		case <-ticker.C:
			if _, err := w.runner.RunQueued(ctx); err != nil {
				w.log.Error().Err(err).Msg("queue batch error")
			}
		}
	}
}
