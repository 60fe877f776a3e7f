package worker

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"interview-ai-memo/internal/domain"
	"interview-ai-memo/internal/domain/ports/repository"
	"interview-ai-memo/internal/infra/logging"
	"interview-ai-memo/internal/infra/metrics"
)

// Summary is one queue batch's tally. Scanned counts every job picked up,
// including ones skipped because another runner held their lease.
type Summary struct {
	Scanned   int `json:"scanned"`
	Processed int `json:"processed"`
	Failed    int `json:"failed"`
}

// Runner drains queued jobs in batches. Jobs run sequentially; one job's
// failure is recorded on that job and never aborts the rest of the batch.
type Runner struct {
	jobs     repository.JobRepository
	pipeline *Pipeline
	limit    int
	log      *zerolog.Logger
}

func NewRunner(jobs repository.JobRepository, pipeline *Pipeline, limit int, log *zerolog.Logger) *Runner {
	if limit <= 0 {
		limit = 3
	}
	return &Runner{jobs: jobs, pipeline: pipeline, limit: limit, log: log}
}

// RunQueued processes one batch of queued jobs, oldest first.
func (r *Runner) RunQueued(ctx context.Context) (Summary, error) {
	metrics.IncQueueRun()

	queued, err := r.jobs.ListQueued(ctx, nil, r.limit)
	if err != nil {
		return Summary{}, err
	}

	var sum Summary
	for _, job := range queued {
		sum.Scanned++
		log := logging.With(logging.WithJobID(ctx, job.ID), r.log)

		if _, err := r.pipeline.Run(ctx, job.ID); err != nil {
			if errors.Is(err, domain.ErrPipelineLocked) {
				metrics.IncQueueJob("skipped")
				log.Debug().Msg("job locked by another runner, skipping")
				continue
			}
			sum.Failed++
			metrics.IncQueueJob("failed")
			log.Error().Err(err).Msg("queued job failed")
			continue
		}
		sum.Processed++
		metrics.IncQueueJob("processed")
	}

	r.log.Info().
		Int("scanned", sum.Scanned).
		Int("processed", sum.Processed).
		Int("failed", sum.Failed).
		Msg("queue batch finished")
	return sum, nil
}
