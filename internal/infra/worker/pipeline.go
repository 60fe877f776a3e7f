package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"interview-ai-memo/internal/domain"
	"interview-ai-memo/internal/domain/model"
	"interview-ai-memo/internal/domain/ports/adapter"
	"interview-ai-memo/internal/domain/ports/repository"
	"interview-ai-memo/internal/extract"
	"interview-ai-memo/internal/infra/logging"
	"interview-ai-memo/internal/infra/metrics"
	infraRedis "interview-ai-memo/internal/infra/redis"
)

// Outcome classifies one pipeline invocation.
type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomePaused    Outcome = "paused"
	OutcomeNoop      Outcome = "noop"
)

// PipelineConfig holds the tunables one invocation needs.
type PipelineConfig struct {
	Language     string
	PollInterval time.Duration
	PollMaxTries int
	SignedURLTTL time.Duration
	LockTTL      time.Duration
}

// Pipeline drives one job through its stages. Every stage is gated on data
// presence, not on the status column, so a crashed or restarted run resumes
// at the first stage whose output is missing and never redoes finished work.
type Pipeline struct {
	jobs        repository.JobRepository
	audio       repository.AudioAssetRepository
	transcripts repository.TranscriptRepository
	occurrences repository.TermOccurrenceRepository
	glossary    repository.GlossaryRepository
	memos       repository.MemoRepository
	txm         repository.TransactionManager

	asr   adapter.TranscriptionAdapter
	llm   adapter.SummaryAdapter
	store adapter.ObjectStore

	locker infraRedis.Locker
	cfg    PipelineConfig
	log    *zerolog.Logger
}

func NewPipeline(
	jobs repository.JobRepository,
	audio repository.AudioAssetRepository,
	transcripts repository.TranscriptRepository,
	occurrences repository.TermOccurrenceRepository,
	glossary repository.GlossaryRepository,
	memos repository.MemoRepository,
	txm repository.TransactionManager,
	asr adapter.TranscriptionAdapter,
	llm adapter.SummaryAdapter,
	store adapter.ObjectStore,
	locker infraRedis.Locker,
	cfg PipelineConfig,
	log *zerolog.Logger,
) *Pipeline {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 5 * time.Second
	}
	if cfg.PollMaxTries <= 0 {
		cfg.PollMaxTries = 120
	}
	if cfg.SignedURLTTL <= 0 {
		cfg.SignedURLTTL = time.Hour
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 15 * time.Minute
	}
	return &Pipeline{
		jobs: jobs, audio: audio, transcripts: transcripts,
		occurrences: occurrences, glossary: glossary, memos: memos,
		txm: txm, asr: asr, llm: llm, store: store,
		locker: locker, cfg: cfg, log: log,
	}
}

func lockKey(jobID string) string { return "job:" + jobID + ":pipeline" }

// Run executes as many stages as the job's data allows in one pass.
// It returns OutcomePaused when the review gate stops the run, and
// domain.ErrPipelineLocked when another invocation holds the job's lease.
// Any stage error marks the job failed before being returned.
func (p *Pipeline) Run(ctx context.Context, jobID string) (Outcome, error) {
	ctx = logging.WithRunID(ctx, ulid.Make().String())
	ctx = logging.WithJobID(ctx, jobID)

	token, err := p.locker.TryLock(ctx, lockKey(jobID), p.cfg.LockTTL)
	if err != nil {
		if errors.Is(err, domain.ErrPipelineLocked) {
			metrics.IncJobOutcome("skipped")
		}
		return "", err
	}
	defer func() { _ = p.locker.Unlock(context.WithoutCancel(ctx), lockKey(jobID), token) }()

	start := time.Now()
	defer func() { metrics.ObservePipelineDuration(time.Since(start)) }()

	job, err := p.jobs.FindByID(ctx, nil, jobID)
	if err != nil {
		return "", err
	}
	ctx = logging.WithUserID(ctx, job.UserID)
	log := logging.With(ctx, p.log)

	if job.Status == model.JobStatusCompleted {
		log.Debug().Msg("job already completed, nothing to do")
		metrics.IncJobOutcome("noop")
		return OutcomeNoop, nil
	}

	transcript, err := p.runTranscription(ctx, log, job)
	if err != nil {
		return "", p.fail(ctx, log, job, err)
	}

	paused, err := p.runExtraction(ctx, log, job, transcript)
	if err != nil {
		return "", p.fail(ctx, log, job, err)
	}
	if paused {
		metrics.IncJobOutcome("paused")
		log.Info().Msg("pipeline paused for term review")
		return OutcomePaused, nil
	}

	if err := p.runSummarization(ctx, log, job, transcript); err != nil {
		return "", p.fail(ctx, log, job, err)
	}

	metrics.IncJobOutcome("completed")
	log.Info().Msg("pipeline completed")
	return OutcomeCompleted, nil
}

func (p *Pipeline) fail(ctx context.Context, log *zerolog.Logger, job *model.Job, cause error) error {
	log.Error().Err(cause).Msg("pipeline failed")
	if err := p.jobs.MarkFailed(context.WithoutCancel(ctx), nil, job.ID, cause.Error()); err != nil {
		log.Error().Err(err).Msg("mark job failed")
	}
	metrics.IncStageTransition(string(model.JobStatusFailed))
	metrics.IncJobOutcome("failed")
	return cause
}

func (p *Pipeline) setStatus(ctx context.Context, jobID string, status model.JobStatus) error {
	if err := p.jobs.SetStatus(ctx, nil, jobID, status); err != nil {
		return err
	}
	metrics.IncStageTransition(string(status))
	return nil
}

// runTranscription ensures a transcript row exists, submitting and polling
// the vendor task when it does not. Audio removal after a successful
// transcription is best effort and never fails the run.
func (p *Pipeline) runTranscription(ctx context.Context, log *zerolog.Logger, job *model.Job) (*model.Transcript, error) {
	transcript, err := p.transcripts.FindByJobID(ctx, nil, job.ID)
	if err == nil {
		return transcript, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	if err := p.setStatus(ctx, job.ID, model.JobStatusTranscribing); err != nil {
		return nil, err
	}

	asset, err := p.audio.FindByJobID(ctx, nil, job.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrAudioAssetMissing
		}
		return nil, err
	}
	if asset.Deleted() {
		return nil, fmt.Errorf("%w: audio object already removed", domain.ErrAudioAssetMissing)
	}

	audioURL, err := p.store.SignedURL(ctx, asset.StoragePath, p.cfg.SignedURLTTL)
	if err != nil {
		return nil, fmt.Errorf("sign audio url: %w", err)
	}

	taskID, err := p.asr.Submit(ctx, audioURL, p.cfg.Language)
	if err != nil {
		return nil, fmt.Errorf("submit transcription: %w", err)
	}
	log.Info().Str("vendor_task_id", taskID).Msg("transcription task submitted")

	submitted := time.Now()
	result, err := p.pollUntilDone(ctx, taskID)
	if err != nil {
		return nil, err
	}
	metrics.ObserveASRDuration(time.Since(submitted))

	transcript = &model.Transcript{
		UserID:         job.UserID,
		JobID:          job.ID,
		TranscriptText: result.TranscriptText,
		Raw:            result.Raw,
	}
	err = p.txm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		if err := p.transcripts.Insert(ctx, tx, transcript); err != nil {
			return err
		}
		return p.jobs.AttachTranscript(ctx, tx, job.ID, transcript.ID, model.JobStatusExtractingTerms)
	})
	if err != nil {
		return nil, err
	}
	job.TranscriptID = transcript.ID
	metrics.IncStageTransition(string(model.JobStatusExtractingTerms))
	log.Info().Int("transcript_chars", len(result.TranscriptText)).Msg("transcript stored")

	p.removeAudio(ctx, log, asset)
	return transcript, nil
}

func (p *Pipeline) pollUntilDone(ctx context.Context, taskID string) (adapter.ASRPollResult, error) {
	for attempt := 0; attempt < p.cfg.PollMaxTries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return adapter.ASRPollResult{}, ctx.Err()
			case <-time.After(p.cfg.PollInterval):
			}
		}
		result, err := p.asr.Poll(ctx, taskID)
		if err != nil {
			return adapter.ASRPollResult{}, fmt.Errorf("poll transcription: %w", err)
		}
		switch result.Status {
		case adapter.ASRTaskCompleted:
			return result, nil
		case adapter.ASRTaskFailed:
			return adapter.ASRPollResult{}, fmt.Errorf("%w: %s", domain.ErrVendorTaskFailed, result.ErrorMessage)
		}
	}
	return adapter.ASRPollResult{}, domain.ErrPollTimeout
}

// removeAudio deletes the consumed source object and tombstones the row.
// Failures are logged and swallowed; a leftover object never blocks the job.
func (p *Pipeline) removeAudio(ctx context.Context, log *zerolog.Logger, asset *model.AudioAsset) {
	if err := p.store.Remove(ctx, asset.StoragePath); err != nil {
		log.Warn().Err(err).Str("storage_path", asset.StoragePath).Msg("remove audio object")
		return
	}
	if err := p.audio.MarkDeleted(ctx, nil, asset.ID, asset.TombstonePath()); err != nil {
		log.Warn().Err(err).Msg("tombstone audio row")
		return
	}
	log.Info().Msg("audio object removed after transcription")
}

// runExtraction ensures term occurrences exist and decides whether the run
// pauses at the review gate. It returns true when pending occurrences await
// user decisions.
func (p *Pipeline) runExtraction(ctx context.Context, log *zerolog.Logger, job *model.Job, transcript *model.Transcript) (paused bool, err error) {
	count, err := p.occurrences.CountByJob(ctx, nil, job.ID)
	if err != nil {
		return false, err
	}

	if count == 0 {
		if err := p.setStatus(ctx, job.ID, model.JobStatusExtractingTerms); err != nil {
			return false, err
		}
		glossary, err := p.glossary.ListByUser(ctx, nil, job.UserID)
		if err != nil {
			return false, err
		}
		known := make([]string, 0, len(glossary))
		for _, g := range glossary {
			known = append(known, g.Term)
		}

		candidates := extract.Terms(transcript.TranscriptText, known)
		log.Info().Int("candidates", len(candidates)).Msg("terms extracted")
		if len(candidates) == 0 {
			// Nothing to review, continue straight to summarization.
			return false, nil
		}

		occs := make([]*model.TermOccurrence, 0, len(candidates))
		for _, c := range candidates {
			occs = append(occs, &model.TermOccurrence{
				UserID:     job.UserID,
				JobID:      job.ID,
				TermText:   c.Term,
				Confidence: c.Confidence,
				Context:    c.Context,
				Status:     model.TermStatusPending,
			})
		}
		err = p.txm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
			if err := p.occurrences.BulkInsert(ctx, tx, occs); err != nil {
				return err
			}
			return p.jobs.SetNeedsReview(ctx, tx, job.ID, true, model.JobStatusNeedsReview)
		})
		if err != nil {
			return false, err
		}
		metrics.IncStageTransition(string(model.JobStatusNeedsReview))
		return true, nil
	}

	pending, err := p.occurrences.ListPending(ctx, nil, job.ID)
	if err != nil {
		return false, err
	}
	if len(pending) > 0 {
		// Decisions still outstanding. Keep the review state visible in
		// case the job was re-queued by something other than the handshake.
		if job.Status != model.JobStatusNeedsReview {
			if err := p.jobs.SetNeedsReview(ctx, nil, job.ID, true, model.JobStatusNeedsReview); err != nil {
				return false, err
			}
			metrics.IncStageTransition(string(model.JobStatusNeedsReview))
		}
		return true, nil
	}
	return false, nil
}

// runSummarization generates both memo texts and completes the job. When a
// memo row already exists it only repairs the job linkage.
func (p *Pipeline) runSummarization(ctx context.Context, log *zerolog.Logger, job *model.Job, transcript *model.Transcript) error {
	memo, err := p.memos.FindByJobID(ctx, nil, job.ID)
	if err == nil {
		if err := p.jobs.AttachMemo(ctx, nil, job.ID, memo.ID); err != nil {
			return err
		}
		metrics.IncStageTransition(string(model.JobStatusCompleted))
		log.Debug().Msg("memo already present, job marked completed")
		return nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	if err := p.jobs.SetNeedsReview(ctx, nil, job.ID, false, model.JobStatusSummarizing); err != nil {
		return err
	}
	metrics.IncStageTransition(string(model.JobStatusSummarizing))

	glossaryTerms, uncertainTerms, err := p.promptTerms(ctx, job)
	if err != nil {
		return err
	}

	icQa, err := p.llm.Generate(ctx, adapter.GenerateRequest{
		Kind:           adapter.MemoKindIcQa,
		TranscriptText: transcript.TranscriptText,
		GlossaryTerms:  glossaryTerms,
		UncertainTerms: uncertainTerms,
	})
	if err != nil {
		return fmt.Errorf("generate ic_qa memo: %w", err)
	}
	article, err := p.llm.Generate(ctx, adapter.GenerateRequest{
		Kind:           adapter.MemoKindWeChatArticle,
		TranscriptText: transcript.TranscriptText,
		GlossaryTerms:  glossaryTerms,
		UncertainTerms: uncertainTerms,
	})
	if err != nil {
		return fmt.Errorf("generate wechat_article memo: %w", err)
	}

	memo = &model.Memo{
		UserID:            job.UserID,
		JobID:             job.ID,
		IcQaText:          icQa,
		WeChatArticleText: article,
	}
	err = p.txm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		if err := p.memos.Insert(ctx, tx, memo); err != nil {
			return err
		}
		return p.jobs.AttachMemo(ctx, tx, job.ID, memo.ID)
	})
	if err != nil {
		return err
	}
	metrics.IncStageTransition(string(model.JobStatusCompleted))
	return nil
}

// promptTerms splits the job's vocabulary for the prompt templates: the
// user's glossary on one side, rejected occurrences on the other.
func (p *Pipeline) promptTerms(ctx context.Context, job *model.Job) (glossary, uncertain []string, err error) {
	terms, err := p.glossary.ListByUser(ctx, nil, job.UserID)
	if err != nil {
		return nil, nil, err
	}
	for _, t := range terms {
		glossary = append(glossary, t.Term)
	}

	occs, err := p.occurrences.ListByJob(ctx, nil, job.ID)
	if err != nil {
		return nil, nil, err
	}
	seen := map[string]bool{}
	for _, o := range occs {
		if o.Status != model.TermStatusRejected {
			continue
		}
		if seen[o.TermText] {
			continue
		}
		seen[o.TermText] = true
		uncertain = append(uncertain, o.TermText)
	}
	return glossary, uncertain, nil
}
