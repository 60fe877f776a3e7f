package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"interview-ai-memo/internal/domain"
	"interview-ai-memo/internal/domain/model"
	"interview-ai-memo/internal/domain/ports/repository"
	"interview-ai-memo/internal/infra/logging"
)

// TermDecision is one reviewed occurrence: accept it as extracted, accept a
// corrected spelling, or reject it.
type TermDecision struct {
	OccurrenceID  string
	Action        model.ConfirmAction
	ConfirmedText string
}

// ConfirmTermsUseCase applies a batch of review decisions and re-queues the
// job so the pipeline resumes past the review gate.
type ConfirmTermsUseCase struct {
	jobs          repository.JobRepository
	terms         repository.TermOccurrenceRepository
	glossary      repository.GlossaryRepository
	confirmations repository.ConfirmationRepository
	txm           repository.TransactionManager
	jobUC         *JobUseCase
	log           *zerolog.Logger
}

func NewConfirmTermsUseCase(
	jobs repository.JobRepository,
	terms repository.TermOccurrenceRepository,
	glossary repository.GlossaryRepository,
	confirmations repository.ConfirmationRepository,
	txm repository.TransactionManager,
	jobUC *JobUseCase,
	logger *zerolog.Logger,
) *ConfirmTermsUseCase {
	l := logger.With().Str("component", "ConfirmTermsUseCase").Logger()
	return &ConfirmTermsUseCase{
		jobs: jobs, terms: terms, glossary: glossary,
		confirmations: confirmations, txm: txm, jobUC: jobUC, log: &l,
	}
}

// Confirm validates and applies the decisions in one transaction, then
// re-queues the job. Accepted and edited terms are promoted into the user's
// glossary so later extractions rank them high.
func (uc *ConfirmTermsUseCase) Confirm(ctx context.Context, userID, jobID string, decisions []TermDecision) error {
	defer logging.TraceDuration(uc.log, "ConfirmTermsUC.Confirm")()

	job, err := uc.jobs.FindByID(ctx, nil, jobID)
	if err != nil {
		return err
	}
	if job.UserID != userID {
		return domain.ErrNotFound
	}
	if job.Status == model.JobStatusCompleted {
		return fmt.Errorf("%w: job already completed", domain.ErrInvalidArgument)
	}
	if len(decisions) == 0 {
		return fmt.Errorf("%w: no decisions", domain.ErrInvalidArgument)
	}

	occs, err := uc.terms.ListByJob(ctx, nil, jobID)
	if err != nil {
		return err
	}
	byID := make(map[string]*model.TermOccurrence, len(occs))
	for _, o := range occs {
		byID[o.ID] = o
	}

	for _, d := range decisions {
		if _, ok := byID[d.OccurrenceID]; !ok {
			return fmt.Errorf("%w: occurrence %s", domain.ErrNotFound, d.OccurrenceID)
		}
		switch d.Action {
		case model.ConfirmActionAccept, model.ConfirmActionReject:
		case model.ConfirmActionEdit:
			if strings.TrimSpace(d.ConfirmedText) == "" {
				return fmt.Errorf("%w: edit without corrected text", domain.ErrInvalidArgument)
			}
		default:
			return fmt.Errorf("%w: action %q", domain.ErrInvalidArgument, d.Action)
		}
	}

	err = uc.txm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		for _, d := range decisions {
			occ := byID[d.OccurrenceID]
			if err := uc.apply(ctx, tx, userID, jobID, occ, d); err != nil {
				return err
			}
		}
		return uc.jobs.Enqueue(ctx, tx, jobID)
	})
	if err != nil {
		return err
	}

	uc.log.Info().Str("job_id", jobID).Int("decisions", len(decisions)).Msg("term review applied")
	uc.jobUC.triggerInline(jobID)
	return nil
}

func (uc *ConfirmTermsUseCase) apply(ctx context.Context, tx repository.Tx, userID, jobID string, occ *model.TermOccurrence, d TermDecision) error {
	confirmedText := occ.TermText
	status := model.TermStatusConfirmed

	switch d.Action {
	case model.ConfirmActionEdit:
		confirmedText = strings.TrimSpace(d.ConfirmedText)
	case model.ConfirmActionReject:
		status = model.TermStatusRejected
	}

	if err := uc.terms.SetStatus(ctx, tx, occ.ID, userID, status); err != nil {
		return err
	}
	if status == model.TermStatusConfirmed {
		err := uc.glossary.Upsert(ctx, tx, &model.GlossaryTerm{
			UserID:         userID,
			Term:           confirmedText,
			NormalizedTerm: strings.ToLower(confirmedText),
			Source:         model.GlossarySourceConfirmed,
		})
		if err != nil {
			return err
		}
	}
	return uc.confirmations.Insert(ctx, tx, &model.Confirmation{
		UserID:        userID,
		JobID:         jobID,
		TermText:      occ.TermText,
		ConfirmedText: confirmedText,
		Action:        d.Action,
		Context:       occ.Context,
		Source:        "review",
	})
}
