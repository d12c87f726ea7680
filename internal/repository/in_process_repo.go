package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/veer7783/guest-blog-validation-tool-sub001/internal/domain"
	"gorm.io/gorm"
)

// InProcessRepository handles DataInProcess persistence.
type InProcessRepository struct {
	db *gorm.DB
}

// NewInProcessRepository creates a new InProcessRepository.
func NewInProcessRepository(db *gorm.DB) *InProcessRepository {
	return &InProcessRepository{db: db}
}

// GetByID retrieves an in-process row by its ID.
func (r *InProcessRepository) GetByID(ctx context.Context, id string) (*domain.DataInProcess, error) {
	var row domain.DataInProcess
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// ListByTask retrieves all in-process rows belonging to a task.
func (r *InProcessRepository) ListByTask(ctx context.Context, taskID string) ([]domain.DataInProcess, error) {
	var rows []domain.DataInProcess
	if err := r.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// CountByTask counts the in-process rows remaining for a task.
func (r *InProcessRepository) CountByTask(ctx context.Context, taskID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&domain.DataInProcess{}).
		Where("task_id = ?", taskID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountTouchedByTask counts rows a review action has reached. Rows marked
// invalid at load time do not count: they never required reviewer work.
func (r *InProcessRepository) CountTouchedByTask(ctx context.Context, taskID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&domain.DataInProcess{}).
		Where("task_id = ? AND review_state NOT IN ?", taskID,
			[]domain.ReviewState{domain.ReviewStatePending, domain.ReviewStateInvalid}).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Update persists changed row fields.
func (r *InProcessRepository) Update(ctx context.Context, row *domain.DataInProcess) error {
	return r.db.WithContext(ctx).Save(row).Error
}

// Delete removes an in-process row by ID.
func (r *InProcessRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&domain.DataInProcess{}, "id = ?", id).Error
}

// ApplyClassification writes one reconciliation run's outcome for a task in
// a single transaction: every row in updates is written or none is, so a
// task is never left partially classified.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - updates: per-row classification outcomes.
// Returns:
//   - error: non-nil if any update fails (whole batch rolled back).
func (r *InProcessRepository) ApplyClassification(ctx context.Context, updates []domain.RowClassification) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, u := range updates {
			values := map[string]interface{}{}
			if u.Invalid {
				values["review_state"] = domain.ReviewStateInvalid
			} else {
				values["is_duplicate"] = u.Duplicate
				values["registry_site_id"] = u.RegistrySiteID
				values["review_state"] = domain.ReviewStateClassified
			}
			res := tx.Model(&domain.DataInProcess{}).Where("id = ?", u.RowID).Updates(values)
			if res.Error != nil {
				return fmt.Errorf("failed to classify row %s: %w", u.RowID, res.Error)
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("failed to classify row %s: %w", u.RowID, gorm.ErrRecordNotFound)
			}
		}
		return nil
	})
}

// PromoteToFinal copies an in-process row into data_final and deletes the
// source row in the same transaction. The in-process row is consumed: the
// pair insert+delete is the 1:1 promotion, never a separate best-effort step.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - rowID: in-process row to promote.
// Returns:
//   - *domain.DataFinal: the created final record.
//   - error: non-nil if the row is missing or the transaction fails.
func (r *InProcessRepository) PromoteToFinal(ctx context.Context, rowID string) (*domain.DataFinal, error) {
	var final *domain.DataFinal
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row domain.DataInProcess
		if err := tx.First(&row, "id = ?", rowID).Error; err != nil {
			return err
		}

		now := time.Now().UTC()
		final = &domain.DataFinal{
			ID:             uuid.New().String(),
			TaskID:         row.TaskID,
			RawURL:         row.RawURL,
			Domain:         row.Domain,
			PublisherName:  row.PublisherName,
			PublisherEmail: row.PublisherEmail,
			IsDuplicate:    row.IsDuplicate != nil && *row.IsDuplicate,
			RegistrySiteID: row.RegistrySiteID,
			PublisherID:    row.PublisherID,
			FinalizedAt:    now,
		}
		if err := tx.Create(final).Error; err != nil {
			return fmt.Errorf("failed to create final record: %w", err)
		}
		if err := tx.Delete(&domain.DataInProcess{}, "id = ?", rowID).Error; err != nil {
			return fmt.Errorf("failed to remove promoted row: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return final, nil
}
