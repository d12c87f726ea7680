package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/veer7783/guest-blog-validation-tool-sub001/internal/domain"
	"github.com/veer7783/guest-blog-validation-tool-sub001/internal/logger"
	"github.com/veer7783/guest-blog-validation-tool-sub001/internal/normalize"
	"github.com/veer7783/guest-blog-validation-tool-sub001/internal/registry"
)

var (
	// ErrReconciliationInFlight means another reconciliation already holds
	// the task's lock. The caller retries after the current run finishes.
	ErrReconciliationInFlight = errors.New("reconciliation already in progress for task")

	// ErrReconciliationFailed means the registry stayed unavailable through
	// every retry. No row in the batch was classified.
	ErrReconciliationFailed = errors.New("reconciliation failed: registry unavailable")
)

// ReconcileConfig holds retry bounds for the registry call.
type ReconcileConfig struct {
	MaxRetries     uint64
	InitialBackoff time.Duration
}

// ReconcileResult summarizes one reconciliation run.
type ReconcileResult struct {
	TaskID        string `json:"task_id"`
	TotalRows     int    `json:"total_rows"`
	UniqueDomains int    `json:"unique_domains"`
	Duplicates    int    `json:"duplicates"`
	New           int    `json:"new"`
	InvalidRows   int    `json:"invalid_rows"`
}

// ReconcileService classifies a task's candidate rows against the registry.
// Classification is all-or-nothing per run: no writes happen until the full
// outcome is computed, so an aborted run leaves the task untouched.
type ReconcileService struct {
	rows     InProcessStore
	registry RegistryChecker
	tasks    *TaskService
	locks    *TaskLocks
	logger   *logger.Logger

	maxRetries     uint64
	initialBackoff time.Duration
}

// NewReconcileService creates a new reconcile service. The lock table must
// be the same one the task service uses, otherwise deletion can race a run.
func NewReconcileService(
	rows InProcessStore,
	registryClient RegistryChecker,
	tasks *TaskService,
	locks *TaskLocks,
	log *logger.Logger,
	cfg *ReconcileConfig,
) *ReconcileService {
	maxRetries := cfg.MaxRetries
	backoff := cfg.InitialBackoff
	if backoff <= 0 {
		backoff = time.Second
	}
	return &ReconcileService{
		rows:           rows,
		registry:       registryClient,
		tasks:          tasks,
		locks:          locks,
		logger:         log,
		maxRetries:     maxRetries,
		initialBackoff: backoff,
	}
}

func (s *ReconcileService) log(ctx context.Context) *logger.Logger {
	if l := logger.FromContext(ctx); l != nil {
		return l
	}
	return s.logger
}

// Reconcile classifies every row of the task as duplicate or new. Rows whose
// raw reference normalizes to the same domain share one outcome and the
// registry sees each domain once. On transient registry failure the call is
// retried with exponential backoff; exhausting retries leaves all rows
// unclassified and returns ErrReconciliationFailed — rows are never defaulted
// to non-duplicate.
func (s *ReconcileService) Reconcile(ctx context.Context, taskID string) (*ReconcileResult, error) {
	if !s.locks.TryLock(taskID) {
		return nil, fmt.Errorf("%w: %s", ErrReconciliationInFlight, taskID)
	}
	defer s.locks.Unlock(taskID)

	if _, err := s.tasks.tasks.GetByID(ctx, taskID); err != nil {
		return nil, err
	}

	taskRows, err := s.rows.ListByTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	result := &ReconcileResult{TaskID: taskID, TotalRows: len(taskRows)}
	if len(taskRows) == 0 {
		// Nothing to classify; the registry is not called and the task
		// status stays as it was.
		return result, nil
	}

	raws := make([]string, len(taskRows))
	for i, row := range taskRows {
		raws[i] = row.RawURL
	}
	domains, byDomain, invalid := normalize.DomainSet(raws)
	result.UniqueDomains = len(domains)
	result.InvalidRows = len(invalid)

	s.log(ctx).WithFields(logger.Fields{
		"task_id":      taskID,
		"rows":         len(taskRows),
		"domains":      len(domains),
		"invalid_rows": len(invalid),
	}).Info("Starting reconciliation")

	var checked *registry.DuplicateResult
	if len(domains) > 0 {
		checked, err = s.checkWithRetry(ctx, domains)
		if err != nil {
			return nil, err
		}
	} else {
		checked = &registry.DuplicateResult{}
	}

	existing := make(map[string]bool, len(checked.ExistingDomains))
	for _, d := range checked.ExistingDomains {
		existing[d] = true
	}

	updates := make([]domain.RowClassification, 0, len(taskRows))
	for _, idx := range invalid {
		updates = append(updates, domain.RowClassification{
			RowID:   taskRows[idx].ID,
			Invalid: true,
		})
	}
	for _, d := range domains {
		duplicate := existing[d]
		siteID := ""
		if site, ok := checked.SiteFor(d); ok {
			siteID = site.ID
		}
		for _, idx := range byDomain[d] {
			updates = append(updates, domain.RowClassification{
				RowID:          taskRows[idx].ID,
				Duplicate:      duplicate,
				RegistrySiteID: siteID,
			})
			if duplicate {
				result.Duplicates++
			} else {
				result.New++
			}
		}
	}

	if err := s.rows.ApplyClassification(ctx, updates); err != nil {
		return nil, err
	}
	if _, err := s.tasks.RefreshStatus(ctx, taskID); err != nil {
		return nil, err
	}

	s.log(ctx).WithFields(logger.Fields{
		"task_id":    taskID,
		"duplicates": result.Duplicates,
		"new":        result.New,
	}).Info("Reconciliation completed")
	return result, nil
}

// checkWithRetry calls the duplicate-check endpoint, retrying only transient
// unavailability. Authentication failures and registry rejections surface
// immediately.
func (s *ReconcileService) checkWithRetry(ctx context.Context, domains []string) (*registry.DuplicateResult, error) {
	var result *registry.DuplicateResult
	backoff := retry.WithMaxRetries(s.maxRetries, retry.NewExponential(s.initialBackoff))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		res, err := s.registry.CheckDuplicates(ctx, domains)
		if err != nil {
			if errors.Is(err, registry.ErrUnavailable) {
				return retry.RetryableError(err)
			}
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		if errors.Is(err, registry.ErrUnavailable) {
			return nil, fmt.Errorf("%w: %v", ErrReconciliationFailed, err)
		}
		return nil, err
	}
	return result, nil
}
