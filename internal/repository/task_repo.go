package repository

import (
	"context"
	"fmt"

	"github.com/veer7783/guest-blog-validation-tool-sub001/internal/domain"
	"gorm.io/gorm"
)

// TaskRepository handles DataUploadTask persistence.
type TaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *TaskRepository: repository instance bound to db.
func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// CreateWithRows inserts a task and its initial in-process rows in one
// transaction: either the task and every row exist afterwards, or nothing.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - task: task record to persist.
//   - rows: initial candidate rows belonging to the task.
// Returns:
//   - error: non-nil if the insert fails.
func (r *TaskRepository) CreateWithRows(ctx context.Context, task *domain.DataUploadTask, rows []domain.DataInProcess) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(task).Error; err != nil {
			return fmt.Errorf("failed to create task: %w", err)
		}
		if len(rows) > 0 {
			if err := tx.Create(&rows).Error; err != nil {
				return fmt.Errorf("failed to create task rows: %w", err)
			}
		}
		return nil
	})
}

// GetByID retrieves a task by its ID.
func (r *TaskRepository) GetByID(ctx context.Context, id string) (*domain.DataUploadTask, error) {
	var task domain.DataUploadTask
	if err := r.db.WithContext(ctx).First(&task, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// List retrieves tasks ordered by creation time, newest first.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - limit: maximum number of records to return.
//   - offset: number of records to skip.
// Returns:
//   - []domain.DataUploadTask: matching task records.
//   - error: non-nil if the query fails.
func (r *TaskRepository) List(ctx context.Context, limit, offset int) ([]domain.DataUploadTask, error) {
	var tasks []domain.DataUploadTask
	if err := r.db.WithContext(ctx).
		Limit(limit).
		Offset(offset).
		Order("created_at DESC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// Update persists changed task fields.
func (r *TaskRepository) Update(ctx context.Context, task *domain.DataUploadTask) error {
	return r.db.WithContext(ctx).Save(task).Error
}

// UpdateStatus sets the derived status of a task.
func (r *TaskRepository) UpdateStatus(ctx context.Context, id string, status domain.TaskStatus) error {
	return r.db.WithContext(ctx).
		Model(&domain.DataUploadTask{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// UpdateAssignee assigns or unassigns a reviewer.
func (r *TaskRepository) UpdateAssignee(ctx context.Context, id string, assigneeID *string) error {
	return r.db.WithContext(ctx).
		Model(&domain.DataUploadTask{}).
		Where("id = ?", id).
		Update("assignee_id", assigneeID).Error
}

// IncrementDiscarded bumps the task's discarded-row counter.
func (r *TaskRepository) IncrementDiscarded(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&domain.DataUploadTask{}).
		Where("id = ?", id).
		Update("discarded_rows", gorm.Expr("discarded_rows + 1")).Error
}

// DeleteCascade removes a task and all of its in-process rows in a single
// transaction. DataFinal rows are independent once finalized and are kept.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: task ID to delete.
// Returns:
//   - error: non-nil if the delete fails.
func (r *TaskRepository) DeleteCascade(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&domain.DataInProcess{}, "task_id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete task rows: %w", err)
		}
		if err := tx.Delete(&domain.DataUploadTask{}, "id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete task: %w", err)
		}
		return nil
	})
}
