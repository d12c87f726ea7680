package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sahilm/fuzzy"
	"github.com/veer7783/guest-blog-validation-tool-sub001/internal/domain"
	"github.com/veer7783/guest-blog-validation-tool-sub001/internal/logger"
	"github.com/veer7783/guest-blog-validation-tool-sub001/internal/normalize"
	"gorm.io/gorm"
)

// PublisherService resolves reviewer-entered publisher details against the
// known publisher directory. MatchInProcess and MatchFinal share the one
// resolution algorithm; each call updates exactly one record and a miss is a
// valid terminal outcome, not an error.
type PublisherService struct {
	rows       InProcessStore
	finals     FinalStore
	publishers PublisherDirectory
	tasks      *TaskService
	logger     *logger.Logger
	minScore   int
}

// NewPublisherService creates a new publisher service.
func NewPublisherService(
	rows InProcessStore,
	finals FinalStore,
	publishers PublisherDirectory,
	tasks *TaskService,
	log *logger.Logger,
	minScore int,
) *PublisherService {
	return &PublisherService{
		rows:       rows,
		finals:     finals,
		publishers: publishers,
		tasks:      tasks,
		logger:     log,
		minScore:   minScore,
	}
}

func (s *PublisherService) log(ctx context.Context) *logger.Logger {
	if l := logger.FromContext(ctx); l != nil {
		return l
	}
	return s.logger
}

// RegisterPublisher adds a publisher identity to the directory, keyed by
// normalized email. Registering an email that already exists refreshes the
// name and returns the existing entry.
func (s *PublisherService) RegisterPublisher(ctx context.Context, name, email string) (*domain.Publisher, error) {
	normalized := normalize.Email(email)
	if name == "" || normalized == "" {
		return nil, fmt.Errorf("publisher name and email are required")
	}

	pub := &domain.Publisher{
		ID:    uuid.New().String(),
		Name:  name,
		Email: normalized,
	}
	if err := s.publishers.Upsert(ctx, pub); err != nil {
		return nil, err
	}
	// Re-read so an email conflict returns the canonical entry, not the
	// freshly generated ID.
	stored, err := s.publishers.GetByEmail(ctx, normalized)
	if err != nil {
		return nil, err
	}
	s.log(ctx).WithField("publisher_id", stored.ID).Info("Publisher registered")
	return stored, nil
}

// ListPublishers returns the whole directory, ordered by name.
func (s *PublisherService) ListPublishers(ctx context.Context) ([]domain.Publisher, error) {
	return s.publishers.ListAll(ctx)
}

// resolve looks up a publisher: exact normalized-email match first, fuzzy
// name match only when the email lookup finds nothing.
func (s *PublisherService) resolve(ctx context.Context, name, email string) (*string, error) {
	if normalized := normalize.Email(email); normalized != "" {
		pub, err := s.publishers.GetByEmail(ctx, normalized)
		if err == nil {
			return &pub.ID, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	if name == "" {
		return nil, nil
	}
	known, err := s.publishers.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(known))
	for i, p := range known {
		names[i] = p.Name
	}
	matches := fuzzy.Find(name, names)
	if len(matches) == 0 || matches[0].Score < s.minScore {
		return nil, nil
	}
	return &known[matches[0].Index].ID, nil
}

// MatchInProcess records publisher details on an in-process row and the
// match outcome. The raw name/email are kept even when nothing matches.
func (s *PublisherService) MatchInProcess(ctx context.Context, rowID, name, email string) (*domain.DataInProcess, domain.PublisherMatch, error) {
	row, err := s.rows.GetByID(ctx, rowID)
	if err != nil {
		return nil, domain.PublisherMatch{}, err
	}

	publisherID, err := s.resolve(ctx, name, email)
	if err != nil {
		return nil, domain.PublisherMatch{}, err
	}

	row.PublisherName = name
	row.PublisherEmail = email
	row.PublisherID = publisherID
	if row.ReviewState != domain.ReviewStateInvalid {
		row.ReviewState = domain.ReviewStateMatched
	}
	if err := s.rows.Update(ctx, row); err != nil {
		return nil, domain.PublisherMatch{}, err
	}
	if _, err := s.tasks.RefreshStatus(ctx, row.TaskID); err != nil {
		return nil, domain.PublisherMatch{}, err
	}

	match := domain.PublisherMatch{Matched: publisherID != nil, PublisherID: publisherID}
	s.log(ctx).WithFields(logger.Fields{
		"row_id":  rowID,
		"matched": match.Matched,
	}).Info("Publisher match on in-process row")
	return row, match, nil
}

// MatchFinal records publisher details on a final row and the match outcome.
// This is the only mutation a final accepts after creation.
func (s *PublisherService) MatchFinal(ctx context.Context, finalID, name, email string) (*domain.DataFinal, domain.PublisherMatch, error) {
	final, err := s.finals.GetByID(ctx, finalID)
	if err != nil {
		return nil, domain.PublisherMatch{}, err
	}

	publisherID, err := s.resolve(ctx, name, email)
	if err != nil {
		return nil, domain.PublisherMatch{}, err
	}

	final.PublisherName = name
	final.PublisherEmail = email
	final.PublisherID = publisherID
	if err := s.finals.Update(ctx, final); err != nil {
		return nil, domain.PublisherMatch{}, err
	}

	match := domain.PublisherMatch{Matched: publisherID != nil, PublisherID: publisherID}
	s.log(ctx).WithFields(logger.Fields{
		"final_id": finalID,
		"matched":  match.Matched,
	}).Info("Publisher match on final row")
	return final, match, nil
}
