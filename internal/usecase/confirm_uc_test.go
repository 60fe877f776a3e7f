package usecase

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/rs/zerolog"

	"interview-ai-memo/internal/domain"
	"interview-ai-memo/internal/domain/model"
)

type confirmEnv struct {
	jobs     *memJobRepo
	terms    *memTermRepo
	gloss    *memGlossaryRepo
	confirms *memConfirmationRepo
	runner   *fakeRunner
	uc       *ConfirmTermsUseCase
}

func newConfirmEnv(t *testing.T) *confirmEnv {
	t.Helper()
	log := zerolog.New(io.Discard)
	env := &confirmEnv{
		jobs:     newMemJobRepo(),
		terms:    &memTermRepo{},
		gloss:    &memGlossaryRepo{},
		confirms: &memConfirmationRepo{},
		runner:   &fakeRunner{},
	}
	jobUC := NewJobUseCase(env.jobs, env.terms, newMemMemoRepo(), env.runner, nil, &log)
	env.uc = NewConfirmTermsUseCase(env.jobs, env.terms, env.gloss, env.confirms, memTxManager{}, jobUC, &log)
	return env
}

func (e *confirmEnv) seedReviewJob(t *testing.T, termTexts ...string) (*model.Job, []*model.TermOccurrence) {
	t.Helper()
	job := &model.Job{UserID: "u1", Status: model.JobStatusNeedsReview, NeedsReview: true}
	if err := e.jobs.Save(context.Background(), nil, job); err != nil {
		t.Fatal(err)
	}
	var occs []*model.TermOccurrence
	for _, text := range termTexts {
		o := &model.TermOccurrence{
			UserID: "u1", JobID: job.ID, TermText: text,
			Confidence: 0.6, Context: "..." + text + "...",
			Status: model.TermStatusPending,
		}
		e.terms.add(o)
		occs = append(occs, o)
	}
	return job, occs
}

func TestConfirmAcceptPromotesToGlossary(t *testing.T) {
	t.Parallel()
	env := newConfirmEnv(t)
	job, occs := env.seedReviewJob(t, "Kubernetes")

	err := env.uc.Confirm(context.Background(), "u1", job.ID, []TermDecision{
		{OccurrenceID: occs[0].ID, Action: model.ConfirmActionAccept},
	})
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}

	terms, _ := env.gloss.ListByUser(context.Background(), nil, "u1")
	if len(terms) != 1 || terms[0].Term != "Kubernetes" || terms[0].Source != model.GlossarySourceConfirmed {
		t.Fatalf("glossary = %+v, want confirmed Kubernetes", terms)
	}
	got, _ := env.jobs.FindByID(context.Background(), nil, job.ID)
	if got.Status != model.JobStatusQueued || got.NeedsReview {
		t.Fatalf("job = %+v, want re-queued", got)
	}
	if len(env.confirms.rows) != 1 || env.confirms.rows[0].Action != model.ConfirmActionAccept {
		t.Fatalf("confirmations = %+v", env.confirms.rows)
	}
}

func TestConfirmEditStoresCorrectedSpelling(t *testing.T) {
	t.Parallel()
	env := newConfirmEnv(t)
	job, occs := env.seedReviewJob(t, "Kuberneetes")

	err := env.uc.Confirm(context.Background(), "u1", job.ID, []TermDecision{
		{OccurrenceID: occs[0].ID, Action: model.ConfirmActionEdit, ConfirmedText: " Kubernetes "},
	})
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}

	terms, _ := env.gloss.ListByUser(context.Background(), nil, "u1")
	if len(terms) != 1 || terms[0].Term != "Kubernetes" {
		t.Fatalf("glossary = %+v, want corrected spelling", terms)
	}
	row := env.confirms.rows[0]
	if row.TermText != "Kuberneetes" || row.ConfirmedText != "Kubernetes" {
		t.Fatalf("confirmation = %+v", row)
	}
}

func TestConfirmRejectSkipsGlossary(t *testing.T) {
	t.Parallel()
	env := newConfirmEnv(t)
	job, occs := env.seedReviewJob(t, "Blorp")

	err := env.uc.Confirm(context.Background(), "u1", job.ID, []TermDecision{
		{OccurrenceID: occs[0].ID, Action: model.ConfirmActionReject},
	})
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}

	terms, _ := env.gloss.ListByUser(context.Background(), nil, "u1")
	if len(terms) != 0 {
		t.Fatalf("glossary = %+v, want empty", terms)
	}
	occsAfter, _ := env.terms.ListByJob(context.Background(), nil, job.ID)
	if occsAfter[0].Status != model.TermStatusRejected {
		t.Fatalf("occurrence status = %q, want rejected", occsAfter[0].Status)
	}
}

func TestConfirmMixedDecisions(t *testing.T) {
	t.Parallel()
	env := newConfirmEnv(t)
	job, occs := env.seedReviewJob(t, "Kubernetes", "Terrafrom", "Blorp")

	err := env.uc.Confirm(context.Background(), "u1", job.ID, []TermDecision{
		{OccurrenceID: occs[0].ID, Action: model.ConfirmActionAccept},
		{OccurrenceID: occs[1].ID, Action: model.ConfirmActionEdit, ConfirmedText: "Terraform"},
		{OccurrenceID: occs[2].ID, Action: model.ConfirmActionReject},
	})
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}

	terms, _ := env.gloss.ListByUser(context.Background(), nil, "u1")
	if len(terms) != 2 {
		t.Fatalf("glossary = %+v, want 2 entries", terms)
	}
	pending, _ := env.terms.ListPending(context.Background(), nil, job.ID)
	if len(pending) != 0 {
		t.Fatalf("pending = %d, want 0", len(pending))
	}
	if len(env.confirms.rows) != 3 {
		t.Fatalf("confirmations = %d, want 3", len(env.confirms.rows))
	}
}

func TestConfirmRejectsForeignJob(t *testing.T) {
	t.Parallel()
	env := newConfirmEnv(t)
	job, occs := env.seedReviewJob(t, "Kubernetes")

	err := env.uc.Confirm(context.Background(), "intruder", job.ID, []TermDecision{
		{OccurrenceID: occs[0].ID, Action: model.ConfirmActionAccept},
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestConfirmValidatesDecisions(t *testing.T) {
	t.Parallel()
	env := newConfirmEnv(t)
	job, occs := env.seedReviewJob(t, "Kubernetes")

	cases := []struct {
		name      string
		decisions []TermDecision
	}{
		{"empty batch", nil},
		{"unknown occurrence", []TermDecision{{OccurrenceID: "missing", Action: model.ConfirmActionAccept}}},
		{"edit without text", []TermDecision{{OccurrenceID: occs[0].ID, Action: model.ConfirmActionEdit}}},
		{"unknown action", []TermDecision{{OccurrenceID: occs[0].ID, Action: "promote"}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := env.uc.Confirm(context.Background(), "u1", job.ID, tc.decisions)
			if err == nil {
				t.Fatal("expected error")
			}
		})
	}

	// Validation failures must not mutate anything.
	occsAfter, _ := env.terms.ListByJob(context.Background(), nil, job.ID)
	if occsAfter[0].Status != model.TermStatusPending {
		t.Fatalf("occurrence status = %q, want pending", occsAfter[0].Status)
	}
}
