package service

import (
	"bytes"
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/veer7783/guest-blog-validation-tool-sub001/internal/domain"
	"github.com/veer7783/guest-blog-validation-tool-sub001/internal/logger"
	"github.com/veer7783/guest-blog-validation-tool-sub001/internal/normalize"
	"github.com/veer7783/guest-blog-validation-tool-sub001/internal/source"
	"github.com/veer7783/guest-blog-validation-tool-sub001/internal/storage"
)

// TaskService owns the DataUploadTask state machine. Task status is derived
// from row state and recomputed after every row-level mutation; nothing else
// writes the status column.
type TaskService struct {
	tasks   TaskStore
	rows    InProcessStore
	finals  FinalStore
	archive storage.ObjectStorage // nil when listing archival is disabled
	locks   *TaskLocks
	logger  *logger.Logger
}

// NewTaskService creates a new task service.
func NewTaskService(
	tasks TaskStore,
	rows InProcessStore,
	finals FinalStore,
	archive storage.ObjectStorage,
	locks *TaskLocks,
	log *logger.Logger,
) *TaskService {
	return &TaskService{
		tasks:   tasks,
		rows:    rows,
		finals:  finals,
		archive: archive,
		locks:   locks,
		logger:  log,
	}
}

// log returns a logger from context if available, otherwise the default one.
func (s *TaskService) log(ctx context.Context) *logger.Logger {
	if l := logger.FromContext(ctx); l != nil {
		return l
	}
	return s.logger
}

// TaskDetail is a task together with its row counters.
type TaskDetail struct {
	Task          *domain.DataUploadTask `json:"task"`
	RemainingRows int64                  `json:"remaining_rows"`
	FinalizedRows int64                  `json:"finalized_rows"`
}

// CreateTask creates an upload task from a parsed listing batch. Listings
// are normalized on load: rows whose site reference cannot be reduced to a
// domain are created in the invalid review state so the reviewer still sees
// them. When archival is enabled the raw file is stored per task; a failed
// archive write is logged but does not fail the create, the listing data
// itself is already persisted.
func (s *TaskService) CreateTask(ctx context.Context, fileName, createdBy string, listings []source.Listing, raw []byte) (*domain.DataUploadTask, error) {
	if len(listings) == 0 {
		return nil, fmt.Errorf("listing file contains no candidate rows")
	}

	task := &domain.DataUploadTask{
		ID:        uuid.New().String(),
		FileName:  fileName,
		CreatedBy: createdBy,
		Status:    domain.TaskStatusPending,
		TotalRows: len(listings),
	}

	if s.archive != nil && len(raw) > 0 {
		key := fmt.Sprintf("tasks/%s/%s", task.ID, fileName)
		if err := s.archive.Upload(ctx, key, bytes.NewReader(raw), int64(len(raw)), "text/csv"); err != nil {
			s.log(ctx).WithError(err).WithField("task_id", task.ID).Warn("Failed to archive listing file")
		} else {
			task.StorageKey = key
		}
	}

	rows := make([]domain.DataInProcess, 0, len(listings))
	invalidCount := 0
	for _, l := range listings {
		row := domain.DataInProcess{
			ID:             uuid.New().String(),
			TaskID:         task.ID,
			RawURL:         l.SiteURL,
			PublisherName:  l.PublisherName,
			PublisherEmail: l.PublisherEmail,
			ReviewState:    domain.ReviewStatePending,
		}
		if d, err := normalize.Domain(l.SiteURL); err != nil {
			row.ReviewState = domain.ReviewStateInvalid
			invalidCount++
		} else {
			row.Domain = d
		}
		rows = append(rows, row)
	}

	if err := s.tasks.CreateWithRows(ctx, task, rows); err != nil {
		return nil, err
	}

	s.log(ctx).WithFields(logger.Fields{
		"task_id":      task.ID,
		"file":         fileName,
		"rows":         len(rows),
		"invalid_rows": invalidCount,
	}).Info("Upload task created")
	return task, nil
}

// GetTask returns a task with its row counters.
func (s *TaskService) GetTask(ctx context.Context, id string) (*TaskDetail, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	remaining, err := s.rows.CountByTask(ctx, id)
	if err != nil {
		return nil, err
	}
	finalized, err := s.finals.CountByTask(ctx, id)
	if err != nil {
		return nil, err
	}
	return &TaskDetail{Task: task, RemainingRows: remaining, FinalizedRows: finalized}, nil
}

// ListTasks returns tasks newest first.
func (s *TaskService) ListTasks(ctx context.Context, limit, offset int) ([]domain.DataUploadTask, error) {
	return s.tasks.List(ctx, limit, offset)
}

// ListFinals returns finalized rows, newest first.
func (s *TaskService) ListFinals(ctx context.Context, limit, offset int) ([]domain.DataFinal, error) {
	return s.finals.List(ctx, limit, offset)
}

// ListRows returns the in-process rows of a task for review.
func (s *TaskService) ListRows(ctx context.Context, taskID string) ([]domain.DataInProcess, error) {
	if _, err := s.tasks.GetByID(ctx, taskID); err != nil {
		return nil, err
	}
	return s.rows.ListByTask(ctx, taskID)
}

// AssignTask assigns the task to a reviewer; nil unassigns.
func (s *TaskService) AssignTask(ctx context.Context, id string, assigneeID *string) (*domain.DataUploadTask, error) {
	if _, err := s.tasks.GetByID(ctx, id); err != nil {
		return nil, err
	}
	if err := s.tasks.UpdateAssignee(ctx, id, assigneeID); err != nil {
		return nil, err
	}
	return s.tasks.GetByID(ctx, id)
}

// FinalizeRow promotes an accepted in-process row to DataFinal and
// recomputes the owning task's status.
func (s *TaskService) FinalizeRow(ctx context.Context, rowID string) (*domain.DataFinal, error) {
	row, err := s.rows.GetByID(ctx, rowID)
	if err != nil {
		return nil, err
	}
	final, err := s.rows.PromoteToFinal(ctx, rowID)
	if err != nil {
		return nil, err
	}
	if _, err := s.RefreshStatus(ctx, row.TaskID); err != nil {
		return nil, err
	}
	s.log(ctx).WithFields(logger.Fields{
		"task_id":  row.TaskID,
		"row_id":   rowID,
		"final_id": final.ID,
	}).Info("Row finalized")
	return final, nil
}

// DiscardRow removes an in-process row without finalizing it and recomputes
// the owning task's status. Discards count toward task completion.
func (s *TaskService) DiscardRow(ctx context.Context, rowID string) error {
	row, err := s.rows.GetByID(ctx, rowID)
	if err != nil {
		return err
	}
	if err := s.rows.Delete(ctx, rowID); err != nil {
		return err
	}
	if err := s.tasks.IncrementDiscarded(ctx, row.TaskID); err != nil {
		return err
	}
	_, err = s.RefreshStatus(ctx, row.TaskID)
	return err
}

// DeleteTask removes a task and its in-process rows. The per-task lock is
// taken first so deletion waits for any in-flight reconciliation; finals
// descended from the task are retained.
func (s *TaskService) DeleteTask(ctx context.Context, id string) error {
	if err := s.locks.Lock(ctx, id); err != nil {
		return err
	}
	defer s.locks.Unlock(id)

	if _, err := s.tasks.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.tasks.DeleteCascade(ctx, id); err != nil {
		return err
	}
	s.log(ctx).WithField("task_id", id).Info("Task deleted")
	return nil
}

// RefreshStatus recomputes and persists the derived task status:
//   - COMPLETED when no in-process rows remain and at least one row was
//     finalized or explicitly discarded,
//   - PENDING while nothing has touched the task's rows,
//   - IN_PROGRESS otherwise.
func (s *TaskService) RefreshStatus(ctx context.Context, taskID string) (domain.TaskStatus, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return "", err
	}
	remaining, err := s.rows.CountByTask(ctx, taskID)
	if err != nil {
		return "", err
	}
	touched, err := s.rows.CountTouchedByTask(ctx, taskID)
	if err != nil {
		return "", err
	}
	finalized, err := s.finals.CountByTask(ctx, taskID)
	if err != nil {
		return "", err
	}

	var status domain.TaskStatus
	switch {
	case remaining == 0 && (finalized > 0 || task.DiscardedRows > 0):
		status = domain.TaskStatusCompleted
	case touched == 0 && finalized == 0 && task.DiscardedRows == 0:
		status = domain.TaskStatusPending
	default:
		status = domain.TaskStatusInProgress
	}

	if status != task.Status {
		if err := s.tasks.UpdateStatus(ctx, taskID, status); err != nil {
			return "", err
		}
	}
	return status, nil
}
