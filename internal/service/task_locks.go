package service

import (
	"context"
	"sync"
)

// TaskLocks provides per-task mutual exclusion. Reconciliation holds a
// task's lock for its full run so concurrent runs against the same task
// cannot interleave partial writes, and task deletion takes the same lock
// so it waits for any in-flight reconciliation instead of racing it.
type TaskLocks struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

type lockEntry struct {
	sem  chan struct{}
	refs int
}

// NewTaskLocks creates an empty lock table.
func NewTaskLocks() *TaskLocks {
	return &TaskLocks{locks: make(map[string]*lockEntry)}
}

func (t *TaskLocks) entry(taskID string) *lockEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.locks[taskID]
	if !ok {
		e = &lockEntry{sem: make(chan struct{}, 1)}
		t.locks[taskID] = e
	}
	e.refs++
	return e
}

func (t *TaskLocks) release(taskID string, e *lockEntry) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(t.locks, taskID)
	}
}

// Lock blocks until the task's lock is held or ctx is done.
func (t *TaskLocks) Lock(ctx context.Context, taskID string) error {
	e := t.entry(taskID)
	select {
	case e.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		t.release(taskID, e)
		return ctx.Err()
	}
}

// TryLock acquires the task's lock without blocking. Returns false when
// another operation already holds it.
func (t *TaskLocks) TryLock(taskID string) bool {
	e := t.entry(taskID)
	select {
	case e.sem <- struct{}{}:
		return true
	default:
		t.release(taskID, e)
		return false
	}
}

// Unlock releases the task's lock. Must pair with a successful Lock/TryLock.
func (t *TaskLocks) Unlock(taskID string) {
	t.mu.Lock()
	e, ok := t.locks[taskID]
	t.mu.Unlock()
	if !ok {
		return
	}
	<-e.sem
	t.release(taskID, e)
}
