package service

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/veer7783/guest-blog-validation-tool-sub001/internal/domain"
	"github.com/veer7783/guest-blog-validation-tool-sub001/internal/source"
)

func TestTaskService_CreateTask_NormalizesRows(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	listings := []source.Listing{
		{SiteURL: "https://WWW.TechCrunch.com/submit", PublisherName: "TC Desk"},
		{SiteURL: "not a url"},
	}
	task, err := env.svc.CreateTask(ctx, "listings.csv", "ops", listings, nil)
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if task.Status != domain.TaskStatusPending {
		t.Errorf("expected pending status, got %s", task.Status)
	}
	if task.TotalRows != 2 {
		t.Errorf("expected 2 total rows, got %d", task.TotalRows)
	}

	rows, err := env.svc.ListRows(ctx, task.ID)
	if err != nil {
		t.Fatalf("ListRows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Domain != "techcrunch.com" {
		t.Errorf("expected normalized domain techcrunch.com, got %q", rows[0].Domain)
	}
	if rows[0].ReviewState != domain.ReviewStatePending {
		t.Errorf("expected pending review state, got %s", rows[0].ReviewState)
	}
	if rows[1].ReviewState != domain.ReviewStateInvalid {
		t.Errorf("expected invalid review state for bad reference, got %s", rows[1].ReviewState)
	}
	if rows[1].RawURL != "not a url" {
		t.Errorf("raw reference should be preserved, got %q", rows[1].RawURL)
	}
}

func TestTaskService_CreateTask_EmptyListings(t *testing.T) {
	env := newTestEnv()
	if _, err := env.svc.CreateTask(context.Background(), "empty.csv", "ops", nil, nil); err == nil {
		t.Fatal("expected error for empty listing file")
	}
}

func TestTaskService_StatusLifecycle(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	task, err := env.svc.CreateTask(ctx, "listings.csv", "ops", []source.Listing{
		{SiteURL: "https://alpha.example.com"},
		{SiteURL: "https://beta.example.com"},
	}, nil)
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	status, err := env.svc.RefreshStatus(ctx, task.ID)
	if err != nil {
		t.Fatalf("RefreshStatus: %v", err)
	}
	if status != domain.TaskStatusPending {
		t.Errorf("untouched task should be pending, got %s", status)
	}

	rows, _ := env.svc.ListRows(ctx, task.ID)
	if _, err := env.svc.FinalizeRow(ctx, rows[0].ID); err != nil {
		t.Fatalf("FinalizeRow: %v", err)
	}
	detail, err := env.svc.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if detail.Task.Status != domain.TaskStatusInProgress {
		t.Errorf("task with one final and one remaining row should be in_progress, got %s", detail.Task.Status)
	}
	if detail.RemainingRows != 1 || detail.FinalizedRows != 1 {
		t.Errorf("expected 1 remaining / 1 finalized, got %d / %d", detail.RemainingRows, detail.FinalizedRows)
	}

	if err := env.svc.DiscardRow(ctx, rows[1].ID); err != nil {
		t.Fatalf("DiscardRow: %v", err)
	}
	detail, _ = env.svc.GetTask(ctx, task.ID)
	if detail.Task.Status != domain.TaskStatusCompleted {
		t.Errorf("emptied task should be completed, got %s", detail.Task.Status)
	}
}

func TestTaskService_AllDiscardedCompletes(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	task, err := env.svc.CreateTask(ctx, "listings.csv", "ops", []source.Listing{
		{SiteURL: "https://alpha.example.com"},
	}, nil)
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	rows, _ := env.svc.ListRows(ctx, task.ID)
	if err := env.svc.DiscardRow(ctx, rows[0].ID); err != nil {
		t.Fatalf("DiscardRow: %v", err)
	}

	got, err := env.tasks.GetByID(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != domain.TaskStatusCompleted {
		t.Errorf("task emptied by discards alone should be completed, got %s", got.Status)
	}
	if got.DiscardedRows != 1 {
		t.Errorf("expected 1 discarded row, got %d", got.DiscardedRows)
	}
}

func TestTaskService_DeleteTask_RetainsFinals(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	task, err := env.svc.CreateTask(ctx, "listings.csv", "ops", []source.Listing{
		{SiteURL: "https://alpha.example.com"},
		{SiteURL: "https://beta.example.com"},
	}, nil)
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	rows, _ := env.svc.ListRows(ctx, task.ID)
	final, err := env.svc.FinalizeRow(ctx, rows[0].ID)
	if err != nil {
		t.Fatalf("FinalizeRow: %v", err)
	}

	if err := env.svc.DeleteTask(ctx, task.ID); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}

	if _, err := env.tasks.GetByID(ctx, task.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("expected task gone, got err=%v", err)
	}
	if n, _ := env.rows.CountByTask(ctx, task.ID); n != 0 {
		t.Errorf("expected in-process rows cascaded, %d remain", n)
	}
	kept, err := env.finals.GetByID(ctx, final.ID)
	if err != nil {
		t.Fatalf("final should survive task deletion: %v", err)
	}
	if kept.Domain != "alpha.example.com" {
		t.Errorf("unexpected final domain %q", kept.Domain)
	}
}

func TestTaskService_AssignTask(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	task, err := env.svc.CreateTask(ctx, "listings.csv", "ops", []source.Listing{
		{SiteURL: "https://alpha.example.com"},
	}, nil)
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	reviewer := "reviewer-1"
	got, err := env.svc.AssignTask(ctx, task.ID, &reviewer)
	if err != nil {
		t.Fatalf("AssignTask: %v", err)
	}
	if got.AssigneeID == nil || *got.AssigneeID != reviewer {
		t.Errorf("expected assignee %q, got %v", reviewer, got.AssigneeID)
	}

	got, err = env.svc.AssignTask(ctx, task.ID, nil)
	if err != nil {
		t.Fatalf("AssignTask unassign: %v", err)
	}
	if got.AssigneeID != nil {
		t.Errorf("expected unassigned task, got %v", *got.AssigneeID)
	}

	if _, err := env.svc.AssignTask(ctx, "missing", &reviewer); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("expected not-found for missing task, got %v", err)
	}
}
