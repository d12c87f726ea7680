package service

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/veer7783/guest-blog-validation-tool-sub001/internal/domain"
	"github.com/veer7783/guest-blog-validation-tool-sub001/internal/logger"
	"github.com/veer7783/guest-blog-validation-tool-sub001/internal/registry"
)

// memState is shared in-memory storage backing the store fakes. The three
// fakes wrap the same state the way the gorm repositories share one
// database.
type memState struct {
	mu       sync.Mutex
	tasks    map[string]*domain.DataUploadTask
	taskIDs  []string
	rows     map[string]*domain.DataInProcess
	rowIDs   []string
	finals   map[string]*domain.DataFinal
	finalIDs []string
}

func newMemState() *memState {
	return &memState{
		tasks:  make(map[string]*domain.DataUploadTask),
		rows:   make(map[string]*domain.DataInProcess),
		finals: make(map[string]*domain.DataFinal),
	}
}

type fakeTaskStore struct{ s *memState }

func (f *fakeTaskStore) CreateWithRows(ctx context.Context, task *domain.DataUploadTask, rows []domain.DataInProcess) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	t := *task
	f.s.tasks[t.ID] = &t
	f.s.taskIDs = append(f.s.taskIDs, t.ID)
	for i := range rows {
		r := rows[i]
		f.s.rows[r.ID] = &r
		f.s.rowIDs = append(f.s.rowIDs, r.ID)
	}
	return nil
}

func (f *fakeTaskStore) GetByID(ctx context.Context, id string) (*domain.DataUploadTask, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	t, ok := f.s.tasks[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	c := *t
	return &c, nil
}

func (f *fakeTaskStore) List(ctx context.Context, limit, offset int) ([]domain.DataUploadTask, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	out := make([]domain.DataUploadTask, 0, len(f.s.taskIDs))
	for _, id := range f.s.taskIDs {
		if t, ok := f.s.tasks[id]; ok {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeTaskStore) UpdateStatus(ctx context.Context, id string, status domain.TaskStatus) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	t, ok := f.s.tasks[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	t.Status = status
	return nil
}

func (f *fakeTaskStore) UpdateAssignee(ctx context.Context, id string, assigneeID *string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	t, ok := f.s.tasks[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	t.AssigneeID = assigneeID
	return nil
}

func (f *fakeTaskStore) IncrementDiscarded(ctx context.Context, id string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	t, ok := f.s.tasks[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	t.DiscardedRows++
	return nil
}

func (f *fakeTaskStore) DeleteCascade(ctx context.Context, id string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if _, ok := f.s.tasks[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.s.tasks, id)
	kept := f.s.rowIDs[:0]
	for _, rid := range f.s.rowIDs {
		if f.s.rows[rid].TaskID == id {
			delete(f.s.rows, rid)
			continue
		}
		kept = append(kept, rid)
	}
	f.s.rowIDs = kept
	return nil
}

type fakeRowStore struct{ s *memState }

func (f *fakeRowStore) GetByID(ctx context.Context, id string) (*domain.DataInProcess, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	r, ok := f.s.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	c := *r
	return &c, nil
}

func (f *fakeRowStore) ListByTask(ctx context.Context, taskID string) ([]domain.DataInProcess, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []domain.DataInProcess
	for _, id := range f.s.rowIDs {
		if r, ok := f.s.rows[id]; ok && r.TaskID == taskID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeRowStore) CountByTask(ctx context.Context, taskID string) (int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var n int64
	for _, r := range f.s.rows {
		if r.TaskID == taskID {
			n++
		}
	}
	return n, nil
}

func (f *fakeRowStore) CountTouchedByTask(ctx context.Context, taskID string) (int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var n int64
	for _, r := range f.s.rows {
		if r.TaskID == taskID && r.ReviewState != domain.ReviewStatePending && r.ReviewState != domain.ReviewStateInvalid {
			n++
		}
	}
	return n, nil
}

func (f *fakeRowStore) Update(ctx context.Context, row *domain.DataInProcess) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if _, ok := f.s.rows[row.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	c := *row
	f.s.rows[row.ID] = &c
	return nil
}

func (f *fakeRowStore) Delete(ctx context.Context, id string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if _, ok := f.s.rows[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.s.rows, id)
	for i, rid := range f.s.rowIDs {
		if rid == id {
			f.s.rowIDs = append(f.s.rowIDs[:i], f.s.rowIDs[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeRowStore) ApplyClassification(ctx context.Context, updates []domain.RowClassification) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, u := range updates {
		if _, ok := f.s.rows[u.RowID]; !ok {
			return fmt.Errorf("failed to classify row %s: %w", u.RowID, gorm.ErrRecordNotFound)
		}
	}
	for _, u := range updates {
		r := f.s.rows[u.RowID]
		if u.Invalid {
			r.ReviewState = domain.ReviewStateInvalid
			continue
		}
		dup := u.Duplicate
		r.IsDuplicate = &dup
		r.RegistrySiteID = u.RegistrySiteID
		r.ReviewState = domain.ReviewStateClassified
	}
	return nil
}

func (f *fakeRowStore) PromoteToFinal(ctx context.Context, rowID string) (*domain.DataFinal, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	r, ok := f.s.rows[rowID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	final := &domain.DataFinal{
		ID:             uuid.New().String(),
		TaskID:         r.TaskID,
		RawURL:         r.RawURL,
		Domain:         r.Domain,
		PublisherName:  r.PublisherName,
		PublisherEmail: r.PublisherEmail,
		IsDuplicate:    r.IsDuplicate != nil && *r.IsDuplicate,
		RegistrySiteID: r.RegistrySiteID,
		PublisherID:    r.PublisherID,
		FinalizedAt:    time.Now().UTC(),
	}
	f.s.finals[final.ID] = final
	f.s.finalIDs = append(f.s.finalIDs, final.ID)
	delete(f.s.rows, rowID)
	for i, rid := range f.s.rowIDs {
		if rid == rowID {
			f.s.rowIDs = append(f.s.rowIDs[:i], f.s.rowIDs[i+1:]...)
			break
		}
	}
	c := *final
	return &c, nil
}

type fakeFinalStore struct{ s *memState }

func (f *fakeFinalStore) GetByID(ctx context.Context, id string) (*domain.DataFinal, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	fin, ok := f.s.finals[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	c := *fin
	return &c, nil
}

func (f *fakeFinalStore) List(ctx context.Context, limit, offset int) ([]domain.DataFinal, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	out := make([]domain.DataFinal, 0, len(f.s.finalIDs))
	for _, id := range f.s.finalIDs {
		if fin, ok := f.s.finals[id]; ok {
			out = append(out, *fin)
		}
	}
	return out, nil
}

func (f *fakeFinalStore) CountByTask(ctx context.Context, taskID string) (int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var n int64
	for _, fin := range f.s.finals {
		if fin.TaskID == taskID {
			n++
		}
	}
	return n, nil
}

func (f *fakeFinalStore) Update(ctx context.Context, final *domain.DataFinal) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if _, ok := f.s.finals[final.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	c := *final
	f.s.finals[final.ID] = &c
	return nil
}

// fakeDirectory is an in-memory publisher directory.
type fakeDirectory struct {
	publishers []domain.Publisher
}

func (d *fakeDirectory) GetByEmail(ctx context.Context, email string) (*domain.Publisher, error) {
	for _, p := range d.publishers {
		if p.Email == email {
			c := p
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (d *fakeDirectory) ListAll(ctx context.Context) ([]domain.Publisher, error) {
	return d.publishers, nil
}

func (d *fakeDirectory) Upsert(ctx context.Context, pub *domain.Publisher) error {
	for i := range d.publishers {
		if d.publishers[i].Email == pub.Email {
			d.publishers[i].Name = pub.Name
			return nil
		}
	}
	d.publishers = append(d.publishers, *pub)
	return nil
}

// fakeRegistry records duplicate-check calls. The first `failures` calls
// return ErrUnavailable; `err` overrides every call when set.
type fakeRegistry struct {
	mu          sync.Mutex
	calls       int
	lastDomains []string
	failures    int
	err         error
	result      *registry.DuplicateResult
}

func (f *fakeRegistry) CheckDuplicates(ctx context.Context, domains []string) (*registry.DuplicateResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastDomains = append([]string(nil), domains...)
	if f.err != nil {
		return nil, f.err
	}
	if f.calls <= f.failures {
		return nil, fmt.Errorf("duplicate check failed: %w", registry.ErrUnavailable)
	}
	if f.result != nil {
		return f.result, nil
	}
	return &registry.DuplicateResult{NewDomains: f.lastDomains}, nil
}

func (f *fakeRegistry) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type testEnv struct {
	state  *memState
	tasks  *fakeTaskStore
	rows   *fakeRowStore
	finals *fakeFinalStore
	locks  *TaskLocks
	svc    *TaskService
}

func newTestEnv() *testEnv {
	state := newMemState()
	env := &testEnv{
		state:  state,
		tasks:  &fakeTaskStore{s: state},
		rows:   &fakeRowStore{s: state},
		finals: &fakeFinalStore{s: state},
		locks:  NewTaskLocks(),
	}
	log := logger.New(&logger.Config{Level: "error", Output: io.Discard})
	env.svc = NewTaskService(env.tasks, env.rows, env.finals, nil, env.locks, log)
	return env
}

func testLogger() *logger.Logger {
	return logger.New(&logger.Config{Level: "error", Output: io.Discard})
}
