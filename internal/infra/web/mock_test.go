package web

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"interview-ai-memo/internal/domain"
	"interview-ai-memo/internal/domain/model"
	"interview-ai-memo/internal/domain/ports/repository"
	"interview-ai-memo/internal/infra/worker"
)

type memJobRepo struct {
	mu   sync.Mutex
	jobs map[string]*model.Job
}

func newMemJobRepo() *memJobRepo { return &memJobRepo{jobs: map[string]*model.Job{}} }

func (r *memJobRepo) Save(ctx context.Context, tx repository.Tx, job *model.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now()
	}
	cp := *job
	r.jobs[job.ID] = &cp
	return nil
}

func (r *memJobRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *j
	return &cp, nil
}

func (r *memJobRepo) ListQueued(ctx context.Context, tx repository.Tx, limit int) ([]*model.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Job
	for _, j := range r.jobs {
		if j.Status == model.JobStatusQueued && len(out) < limit {
			cp := *j
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memJobRepo) mutate(id string, fn func(*model.Job)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok {
		return domain.ErrNotFound
	}
	fn(j)
	return nil
}

func (r *memJobRepo) SetStatus(ctx context.Context, tx repository.Tx, id string, status model.JobStatus) error {
	return r.mutate(id, func(j *model.Job) { j.Status = status })
}

func (r *memJobRepo) AttachTranscript(ctx context.Context, tx repository.Tx, id, transcriptID string, status model.JobStatus) error {
	return r.mutate(id, func(j *model.Job) { j.TranscriptID = transcriptID; j.Status = status })
}

func (r *memJobRepo) AttachMemo(ctx context.Context, tx repository.Tx, id, memoID string) error {
	return r.mutate(id, func(j *model.Job) { j.MemoID = memoID; j.Status = model.JobStatusCompleted })
}

func (r *memJobRepo) SetNeedsReview(ctx context.Context, tx repository.Tx, id string, needs bool, status model.JobStatus) error {
	return r.mutate(id, func(j *model.Job) { j.NeedsReview = needs; j.Status = status })
}

func (r *memJobRepo) Enqueue(ctx context.Context, tx repository.Tx, id string) error {
	return r.mutate(id, func(j *model.Job) { j.NeedsReview = false; j.Status = model.JobStatusQueued })
}

func (r *memJobRepo) MarkFailed(ctx context.Context, tx repository.Tx, id, message string) error {
	return r.mutate(id, func(j *model.Job) { j.Status = model.JobStatusFailed; j.ErrorMessage = message })
}

type memTermRepo struct {
	mu   sync.Mutex
	occs []*model.TermOccurrence
}

func (r *memTermRepo) add(o *model.TermOccurrence) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	cp := *o
	r.occs = append(r.occs, &cp)
}

func (r *memTermRepo) CountByJob(ctx context.Context, tx repository.Tx, jobID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, o := range r.occs {
		if o.JobID == jobID {
			n++
		}
	}
	return n, nil
}

func (r *memTermRepo) ListByJob(ctx context.Context, tx repository.Tx, jobID string) ([]*model.TermOccurrence, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.TermOccurrence
	for _, o := range r.occs {
		if o.JobID == jobID {
			cp := *o
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memTermRepo) ListPending(ctx context.Context, tx repository.Tx, jobID string) ([]*model.TermOccurrence, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.TermOccurrence
	for _, o := range r.occs {
		if o.JobID == jobID && o.Status == model.TermStatusPending {
			cp := *o
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memTermRepo) BulkInsert(ctx context.Context, tx repository.Tx, occs []*model.TermOccurrence) error {
	for _, o := range occs {
		r.add(o)
	}
	return nil
}

func (r *memTermRepo) SetStatus(ctx context.Context, tx repository.Tx, id, userID string, status model.TermStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.occs {
		if o.ID == id && o.UserID == userID {
			o.Status = status
			return nil
		}
	}
	return domain.ErrNotFound
}

type memGlossaryRepo struct {
	mu    sync.Mutex
	terms []*model.GlossaryTerm
}

func (r *memGlossaryRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.GlossaryTerm, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.GlossaryTerm
	for _, t := range r.terms {
		if t.UserID == userID {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memGlossaryRepo) Upsert(ctx context.Context, tx repository.Tx, term *model.GlossaryTerm) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.terms {
		if t.UserID == term.UserID && t.Term == term.Term {
			return nil
		}
	}
	cp := *term
	r.terms = append(r.terms, &cp)
	return nil
}

func (r *memGlossaryRepo) UpsertBatch(ctx context.Context, tx repository.Tx, terms []*model.GlossaryTerm) error {
	for _, t := range terms {
		if err := r.Upsert(ctx, tx, t); err != nil {
			return err
		}
	}
	return nil
}

type memConfirmationRepo struct {
	mu   sync.Mutex
	rows []*model.Confirmation
}

func (r *memConfirmationRepo) Insert(ctx context.Context, tx repository.Tx, c *model.Confirmation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *c
	r.rows = append(r.rows, &cp)
	return nil
}

type memMemoRepo struct {
	mu    sync.Mutex
	byJob map[string]*model.Memo
}

func newMemMemoRepo() *memMemoRepo { return &memMemoRepo{byJob: map[string]*model.Memo{}} }

func (r *memMemoRepo) FindByJobID(ctx context.Context, tx repository.Tx, jobID string) (*model.Memo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.byJob[jobID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (r *memMemoRepo) Insert(ctx context.Context, tx repository.Tx, m *model.Memo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *m
	r.byJob[m.JobID] = &cp
	return nil
}

type memTxManager struct{}

func (memTxManager) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	return fn(ctx, nil)
}

type fakePipeline struct {
	mu   sync.Mutex
	runs []string
}

func (f *fakePipeline) Run(ctx context.Context, jobID string) (worker.Outcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs = append(f.runs, jobID)
	return worker.OutcomeCompleted, nil
}

type fakeQueueRunner struct {
	sum worker.Summary
	err error
}

func (f *fakeQueueRunner) RunQueued(ctx context.Context) (worker.Summary, error) {
	return f.sum, f.err
}
