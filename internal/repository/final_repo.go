package repository

import (
	"context"

	"github.com/veer7783/guest-blog-validation-tool-sub001/internal/domain"
	"gorm.io/gorm"
)

// FinalRepository handles DataFinal persistence. Finals are append-only from
// the engine's perspective; the only mutation is the publisher overwrite.
type FinalRepository struct {
	db *gorm.DB
}

// NewFinalRepository creates a new FinalRepository.
func NewFinalRepository(db *gorm.DB) *FinalRepository {
	return &FinalRepository{db: db}
}

// GetByID retrieves a final row by its ID.
func (r *FinalRepository) GetByID(ctx context.Context, id string) (*domain.DataFinal, error) {
	var final domain.DataFinal
	if err := r.db.WithContext(ctx).First(&final, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &final, nil
}

// List retrieves final rows with pagination, newest first.
func (r *FinalRepository) List(ctx context.Context, limit, offset int) ([]domain.DataFinal, error) {
	var finals []domain.DataFinal
	if err := r.db.WithContext(ctx).
		Limit(limit).
		Offset(offset).
		Order("finalized_at DESC").
		Find(&finals).Error; err != nil {
		return nil, err
	}
	return finals, nil
}

// CountByTask counts the finals descended from a task.
func (r *FinalRepository) CountByTask(ctx context.Context, taskID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&domain.DataFinal{}).
		Where("task_id = ?", taskID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Update persists changed final fields (publisher overwrite only).
func (r *FinalRepository) Update(ctx context.Context, final *domain.DataFinal) error {
	return r.db.WithContext(ctx).Save(final).Error
}
