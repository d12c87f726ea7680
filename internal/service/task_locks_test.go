package service

import (
	"context"
	"testing"
	"time"
)

func TestTaskLocks_TryLock(t *testing.T) {
	locks := NewTaskLocks()

	if !locks.TryLock("task-a") {
		t.Fatal("TryLock on a free task should succeed")
	}
	if locks.TryLock("task-a") {
		t.Fatal("TryLock on a held task should fail")
	}
	// Another task is unaffected.
	if !locks.TryLock("task-b") {
		t.Fatal("locks must be per task")
	}
	locks.Unlock("task-b")

	locks.Unlock("task-a")
	if !locks.TryLock("task-a") {
		t.Fatal("TryLock after Unlock should succeed")
	}
	locks.Unlock("task-a")
}

func TestTaskLocks_LockWaits(t *testing.T) {
	locks := NewTaskLocks()
	if !locks.TryLock("task-a") {
		t.Fatal("TryLock failed")
	}

	acquired := make(chan error, 1)
	go func() {
		acquired <- locks.Lock(context.Background(), "task-a")
	}()

	select {
	case <-acquired:
		t.Fatal("Lock acquired while held")
	case <-time.After(20 * time.Millisecond):
	}

	locks.Unlock("task-a")
	select {
	case err := <-acquired:
		if err != nil {
			t.Fatalf("Lock after release: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Lock did not acquire after release")
	}
	locks.Unlock("task-a")
}

func TestTaskLocks_LockHonorsContext(t *testing.T) {
	locks := NewTaskLocks()
	if !locks.TryLock("task-a") {
		t.Fatal("TryLock failed")
	}
	defer locks.Unlock("task-a")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := locks.Lock(ctx, "task-a"); err == nil {
		t.Fatal("Lock on a held task must fail once the context expires")
	}
}
