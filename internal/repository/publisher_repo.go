package repository

import (
	"context"

	"github.com/veer7783/guest-blog-validation-tool-sub001/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PublisherRepository handles the local publisher directory.
type PublisherRepository struct {
	db *gorm.DB
}

// NewPublisherRepository creates a new PublisherRepository.
func NewPublisherRepository(db *gorm.DB) *PublisherRepository {
	return &PublisherRepository{db: db}
}

// GetByEmail retrieves a publisher by exact (normalized) email.
func (r *PublisherRepository) GetByEmail(ctx context.Context, email string) (*domain.Publisher, error) {
	var pub domain.Publisher
	if err := r.db.WithContext(ctx).First(&pub, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &pub, nil
}

// ListAll retrieves every publisher, used for the fuzzy-name fallback.
func (r *PublisherRepository) ListAll(ctx context.Context) ([]domain.Publisher, error) {
	var pubs []domain.Publisher
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&pubs).Error; err != nil {
		return nil, err
	}
	return pubs, nil
}

// Upsert creates or updates a publisher keyed by email. On conflict only the
// name is refreshed so the existing ID, and every record referencing it,
// stays valid.
func (r *PublisherRepository) Upsert(ctx context.Context, pub *domain.Publisher) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "updated_at"}),
	}).Create(pub).Error
}
