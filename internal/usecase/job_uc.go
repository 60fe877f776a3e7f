package usecase

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"interview-ai-memo/internal/domain"
	"interview-ai-memo/internal/domain/model"
	"interview-ai-memo/internal/domain/ports/repository"
	"interview-ai-memo/internal/infra/logging"
	"interview-ai-memo/internal/infra/worker"
)

// JobStatusView is the read model behind the job status endpoint: the job
// row plus whatever stage output the caller can already see.
type JobStatusView struct {
	Job          *model.Job
	PendingTerms []*model.TermOccurrence
	Memo         *model.Memo
}

// PipelineRunner is the slice of the pipeline the use cases need.
type PipelineRunner interface {
	Run(ctx context.Context, jobID string) (worker.Outcome, error)
}

// JobUseCase covers job-level operations outside the pipeline itself:
// queueing, direct triggering and the status read.
type JobUseCase struct {
	jobs     repository.JobRepository
	terms    repository.TermOccurrenceRepository
	memos    repository.MemoRepository
	pipeline PipelineRunner

	// pool is set in inline execution mode; enqueued jobs then also get an
	// immediate background run instead of waiting for the queue tick.
	pool *worker.Pool
	log  *zerolog.Logger
}

func NewJobUseCase(
	jobs repository.JobRepository,
	terms repository.TermOccurrenceRepository,
	memos repository.MemoRepository,
	pipeline PipelineRunner,
	pool *worker.Pool,
	logger *zerolog.Logger,
) *JobUseCase {
	l := logger.With().Str("component", "JobUseCase").Logger()
	return &JobUseCase{jobs: jobs, terms: terms, memos: memos, pipeline: pipeline, pool: pool, log: &l}
}

// Enqueue flags the job for processing. Ownership is enforced by reporting
// not-found for jobs that belong to someone else.
func (uc *JobUseCase) Enqueue(ctx context.Context, userID, jobID string) error {
	defer logging.TraceDuration(uc.log, "JobUC.Enqueue")()

	job, err := uc.jobs.FindByID(ctx, nil, jobID)
	if err != nil {
		return err
	}
	if job.UserID != userID {
		return domain.ErrNotFound
	}
	if job.Status == model.JobStatusCompleted {
		return nil
	}
	if err := uc.jobs.Enqueue(ctx, nil, jobID); err != nil {
		return err
	}
	uc.triggerInline(jobID)
	return nil
}

// Run triggers one pipeline pass synchronously.
func (uc *JobUseCase) Run(ctx context.Context, userID, jobID string) (worker.Outcome, error) {
	defer logging.TraceDuration(uc.log, "JobUC.Run")()

	job, err := uc.jobs.FindByID(ctx, nil, jobID)
	if err != nil {
		return "", err
	}
	if job.UserID != userID {
		return "", domain.ErrNotFound
	}
	return uc.pipeline.Run(ctx, jobID)
}

// Get assembles the status view for one job.
func (uc *JobUseCase) Get(ctx context.Context, userID, jobID string) (*JobStatusView, error) {
	defer logging.TraceDuration(uc.log, "JobUC.Get")()

	job, err := uc.jobs.FindByID(ctx, nil, jobID)
	if err != nil {
		return nil, err
	}
	if job.UserID != userID {
		return nil, domain.ErrNotFound
	}

	view := &JobStatusView{Job: job}
	if job.NeedsReview {
		pending, err := uc.terms.ListPending(ctx, nil, jobID)
		if err != nil {
			return nil, err
		}
		view.PendingTerms = pending
	}
	if job.Status == model.JobStatusCompleted {
		memo, err := uc.memos.FindByJobID(ctx, nil, jobID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		view.Memo = memo
	}
	return view, nil
}

// triggerInline fires a background run when inline mode is active. The
// submit can be dropped under saturation; the job stays queued and the next
// queue batch picks it up.
func (uc *JobUseCase) triggerInline(jobID string) {
	if uc.pool == nil {
		return
	}
	err := uc.pool.Submit(func(ctx context.Context) error {
		if _, err := uc.pipeline.Run(ctx, jobID); err != nil && !errors.Is(err, domain.ErrPipelineLocked) {
			return err
		}
		return nil
	})
	if err != nil {
		uc.log.Warn().Err(err).Str("job_id", jobID).Msg("inline trigger dropped")
	}
}
