package worker

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"interview-ai-memo/internal/domain"
	"interview-ai-memo/internal/domain/model"
	"interview-ai-memo/internal/domain/ports/adapter"
	"interview-ai-memo/internal/domain/ports/repository"
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
		if j.Status == model.JobStatusQueued {
			cp := *j
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, k int) bool { return out[i].CreatedAt.Before(out[k].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
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
	j.UpdatedAt = time.Now()
	return nil
}

func (r *memJobRepo) SetStatus(ctx context.Context, tx repository.Tx, id string, status model.JobStatus) error {
	return r.mutate(id, func(j *model.Job) { j.Status = status })
}

func (r *memJobRepo) AttachTranscript(ctx context.Context, tx repository.Tx, id, transcriptID string, status model.JobStatus) error {
	return r.mutate(id, func(j *model.Job) {
		j.TranscriptID = transcriptID
		j.Status = status
	})
}

func (r *memJobRepo) AttachMemo(ctx context.Context, tx repository.Tx, id, memoID string) error {
	return r.mutate(id, func(j *model.Job) {
		j.MemoID = memoID
		j.Status = model.JobStatusCompleted
	})
}

func (r *memJobRepo) SetNeedsReview(ctx context.Context, tx repository.Tx, id string, needs bool, status model.JobStatus) error {
	return r.mutate(id, func(j *model.Job) {
		j.NeedsReview = needs
		j.Status = status
	})
}

func (r *memJobRepo) Enqueue(ctx context.Context, tx repository.Tx, id string) error {
	return r.mutate(id, func(j *model.Job) {
		j.NeedsReview = false
		j.Status = model.JobStatusQueued
	})
}

func (r *memJobRepo) MarkFailed(ctx context.Context, tx repository.Tx, id, message string) error {
	return r.mutate(id, func(j *model.Job) {
		j.Status = model.JobStatusFailed
		j.ErrorMessage = message
	})
}

type memAudioRepo struct {
	mu    sync.Mutex
	byJob map[string]*model.AudioAsset
}

func newMemAudioRepo() *memAudioRepo { return &memAudioRepo{byJob: map[string]*model.AudioAsset{}} }

func (r *memAudioRepo) put(a *model.AudioAsset) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	r.byJob[a.JobID] = a
}

func (r *memAudioRepo) FindByJobID(ctx context.Context, tx repository.Tx, jobID string) (*model.AudioAsset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byJob[jobID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *memAudioRepo) MarkDeleted(ctx context.Context, tx repository.Tx, id, tombstonePath string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.byJob {
		if a.ID == id {
			a.StoragePath = tombstonePath
			return nil
		}
	}
	return domain.ErrNotFound
}

type memTranscriptRepo struct {
	mu    sync.Mutex
	byJob map[string]*model.Transcript
}

func newMemTranscriptRepo() *memTranscriptRepo {
	return &memTranscriptRepo{byJob: map[string]*model.Transcript{}}
}

func (r *memTranscriptRepo) FindByJobID(ctx context.Context, tx repository.Tx, jobID string) (*model.Transcript, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.byJob[jobID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *memTranscriptRepo) Insert(ctx context.Context, tx repository.Tx, t *model.Transcript) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	cp := *t
	r.byJob[t.JobID] = &cp
	return nil
}

type memTermRepo struct {
	mu   sync.Mutex
	occs []*model.TermOccurrence
}

func newMemTermRepo() *memTermRepo { return &memTermRepo{} }

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
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range occs {
		if o.ID == "" {
			o.ID = uuid.NewString()
		}
		cp := *o
		r.occs = append(r.occs, &cp)
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

func (r *memTermRepo) setAll(jobID string, status model.TermStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.occs {
		if o.JobID == jobID {
			o.Status = status
		}
	}
}

type memGlossaryRepo struct {
	mu    sync.Mutex
	terms []*model.GlossaryTerm
}

func newMemGlossaryRepo() *memGlossaryRepo { return &memGlossaryRepo{} }

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
			if t.Source != model.GlossarySourceConfirmed {
				t.Source = term.Source
			}
			return nil
		}
	}
	if term.ID == "" {
		term.ID = uuid.NewString()
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
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	cp := *m
	r.byJob[m.JobID] = &cp
	return nil
}

type memTxManager struct{}

func (memTxManager) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	return fn(ctx, nil)
}

// fakeASR scripts poll responses in order, then keeps returning the last.
type fakeASR struct {
	mu      sync.Mutex
	submits int
	polls   int
	taskID  string
	results []adapter.ASRPollResult
	subErr  error
}

func (f *fakeASR) Submit(ctx context.Context, audioURL, language string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submits++
	if f.subErr != nil {
		return "", f.subErr
	}
	if f.taskID == "" {
		f.taskID = "task-1"
	}
	return f.taskID, nil
}

func (f *fakeASR) Poll(ctx context.Context, vendorTaskID string) (adapter.ASRPollResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.results) == 0 {
		return adapter.ASRPollResult{Status: adapter.ASRTaskRunning}, nil
	}
	i := f.polls
	if i >= len(f.results) {
		i = len(f.results) - 1
	}
	f.polls++
	return f.results[i], nil
}

type fakeLLM struct {
	mu    sync.Mutex
	calls []adapter.GenerateRequest
	err   error
}

func (f *fakeLLM) Generate(ctx context.Context, req adapter.GenerateRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)
	if f.err != nil {
		return "", f.err
	}
	return "memo:" + string(req.Kind), nil
}

type fakeStore struct {
	mu        sync.Mutex
	signed    []string
	removed   []string
	removeErr error
}

func (f *fakeStore) SignedURL(ctx context.Context, storagePath string, ttl time.Duration) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signed = append(f.signed, storagePath)
	return "https://store.test/signed/" + storagePath, nil
}

func (f *fakeStore) Remove(ctx context.Context, storagePath string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.removeErr != nil {
		return f.removeErr
	}
	f.removed = append(f.removed, storagePath)
	return nil
}

type fakeLocker struct {
	mu   sync.Mutex
	held map[string]string
}

func newFakeLocker() *fakeLocker { return &fakeLocker{held: map[string]string{}} }

func (l *fakeLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.held[key]; ok {
		return "", domain.ErrPipelineLocked
	}
	token := fmt.Sprintf("tok-%d", len(l.held)+1)
	l.held[key] = token
	return token, nil
}

func (l *fakeLocker) Unlock(ctx context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] == token {
		delete(l.held, key)
	}
	return nil
}
