package service

import (
	"context"

	"github.com/veer7783/guest-blog-validation-tool-sub001/internal/domain"
	"github.com/veer7783/guest-blog-validation-tool-sub001/internal/registry"
)

// Store interfaces consumed by the services. The gorm repositories in
// internal/repository satisfy them; tests substitute in-memory fakes.

// TaskStore persists upload tasks.
type TaskStore interface {
	CreateWithRows(ctx context.Context, task *domain.DataUploadTask, rows []domain.DataInProcess) error
	GetByID(ctx context.Context, id string) (*domain.DataUploadTask, error)
	List(ctx context.Context, limit, offset int) ([]domain.DataUploadTask, error)
	UpdateStatus(ctx context.Context, id string, status domain.TaskStatus) error
	UpdateAssignee(ctx context.Context, id string, assigneeID *string) error
	IncrementDiscarded(ctx context.Context, id string) error
	DeleteCascade(ctx context.Context, id string) error
}

// InProcessStore persists in-process review rows.
type InProcessStore interface {
	GetByID(ctx context.Context, id string) (*domain.DataInProcess, error)
	ListByTask(ctx context.Context, taskID string) ([]domain.DataInProcess, error)
	CountByTask(ctx context.Context, taskID string) (int64, error)
	CountTouchedByTask(ctx context.Context, taskID string) (int64, error)
	Update(ctx context.Context, row *domain.DataInProcess) error
	Delete(ctx context.Context, id string) error
	ApplyClassification(ctx context.Context, updates []domain.RowClassification) error
	PromoteToFinal(ctx context.Context, rowID string) (*domain.DataFinal, error)
}

// FinalStore persists finalized rows.
type FinalStore interface {
	GetByID(ctx context.Context, id string) (*domain.DataFinal, error)
	List(ctx context.Context, limit, offset int) ([]domain.DataFinal, error)
	CountByTask(ctx context.Context, taskID string) (int64, error)
	Update(ctx context.Context, final *domain.DataFinal) error
}

// PublisherDirectory looks up and records known publisher identities.
type PublisherDirectory interface {
	GetByEmail(ctx context.Context, email string) (*domain.Publisher, error)
	ListAll(ctx context.Context) ([]domain.Publisher, error)
	Upsert(ctx context.Context, pub *domain.Publisher) error
}

// RegistryChecker is the duplicate-check surface of the registry client.
type RegistryChecker interface {
	CheckDuplicates(ctx context.Context, domains []string) (*registry.DuplicateResult, error)
}
