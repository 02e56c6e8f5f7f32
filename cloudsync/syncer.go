package cloudsync

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/schedulehq/schedule-engine/timeoff"
)

// DefaultBatchSize stays under the 500-write limit of common document stores.
const DefaultBatchSize = 400

// Store is the local side of a sync.
type Store interface {
	ListEmployees(ctx context.Context) ([]timeoff.Employee, error)
	AllTimeOff(ctx context.Context) ([]timeoff.Entry, error)
	SaveEmployee(ctx context.Context, emp timeoff.Employee) (timeoff.EmployeeID, error)
	UpsertTimeOff(ctx context.Context, e timeoff.Entry) error
}

type Options struct {
	BatchSize int
	Timeout   time.Duration // per batch; zero means no timeout
}

// Summary counts what a sync moved.
type Summary struct {
	Employees int `json:"employees"`
	TimeOff   int `json:"time_off"`
	Batches   int `json:"batches"`
	Skipped   int `json:"skipped"`
}

type Syncer struct {
	store  Store
	mirror Mirror
	opts   Options
	logger logrus.FieldLogger
}

func NewSyncer(store Store, mirror Mirror, opts Options) *Syncer {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	return &Syncer{
		store:  store,
		mirror: mirror,
		opts:   opts,
		logger: logrus.StandardLogger(),
	}
}

func (s *Syncer) WithLogger(logger logrus.FieldLogger) *Syncer {
	s.logger = logger
	return s
}

// =============================================================================
// UPLOAD
// =============================================================================

// Upload writes every employee and time-off entry to the mirror. Batches are
// committed in order; the first failing batch stops the upload and the
// returned Summary counts only what was committed before it.
func (s *Syncer) Upload(ctx context.Context) (Summary, error) {
	var summary Summary

	employees, err := s.store.ListEmployees(ctx)
	if err != nil {
		return summary, fmt.Errorf("list employees: %w", err)
	}
	entries, err := s.store.AllTimeOff(ctx)
	if err != nil {
		return summary, fmt.Errorf("list time off: %w", err)
	}

	docs := make([]Document, 0, len(employees)+len(entries))
	for _, e := range employees {
		docs = append(docs, EmployeeDocument(e))
	}
	for _, e := range entries {
		docs = append(docs, TimeOffDocument(e))
	}

	for start := 0; start < len(docs); start += s.opts.BatchSize {
		end := min(start+s.opts.BatchSize, len(docs))
		batch := docs[start:end]

		if err := s.commit(ctx, batch); err != nil {
			s.logger.WithError(err).WithFields(logrus.Fields{
				"batch":     summary.Batches + 1,
				"committed": summary.Employees + summary.TimeOff,
			}).Error("Upload batch failed")
			return summary, fmt.Errorf("commit batch %d: %w", summary.Batches+1, err)
		}

		summary.Batches++
		for _, d := range batch {
			if d.Collection == CollectionEmployees {
				summary.Employees++
			} else {
				summary.TimeOff++
			}
		}
	}

	s.logger.WithFields(logrus.Fields{
		"employees": summary.Employees,
		"time_off":  summary.TimeOff,
		"batches":   summary.Batches,
	}).Info("Upload complete")
	return summary, nil
}

func (s *Syncer) commit(ctx context.Context, batch []Document) error {
	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}
	return s.mirror.Commit(ctx, batch)
}

// =============================================================================
// DOWNLOAD
// =============================================================================

// Download replaces local rows with the mirror's copy, keeping ids.
// Employees are written first so restored time off always has an owner.
// Documents that fail to convert are skipped and counted.
func (s *Syncer) Download(ctx context.Context) (Summary, error) {
	var summary Summary

	employees, err := s.mirror.List(ctx, CollectionEmployees)
	if err != nil {
		return summary, fmt.Errorf("list remote employees: %w", err)
	}
	for _, d := range employees {
		if d.Employee == nil {
			s.skip(&summary, d, "missing employee payload")
			continue
		}
		if _, err := s.store.SaveEmployee(ctx, d.Employee.Employee()); err != nil {
			s.skip(&summary, d, err.Error())
			continue
		}
		summary.Employees++
	}

	entries, err := s.mirror.List(ctx, CollectionTimeOff)
	if err != nil {
		return summary, fmt.Errorf("list remote time off: %w", err)
	}
	for _, d := range entries {
		if d.TimeOff == nil {
			s.skip(&summary, d, "missing time off payload")
			continue
		}
		entry, err := d.TimeOff.Entry()
		if err != nil {
			s.skip(&summary, d, err.Error())
			continue
		}
		if err := s.store.UpsertTimeOff(ctx, entry); err != nil {
			s.skip(&summary, d, err.Error())
			continue
		}
		summary.TimeOff++
	}

	s.logger.WithFields(logrus.Fields{
		"employees": summary.Employees,
		"time_off":  summary.TimeOff,
		"skipped":   summary.Skipped,
	}).Info("Download complete")
	return summary, nil
}

func (s *Syncer) skip(summary *Summary, d Document, reason string) {
	summary.Skipped++
	s.logger.WithFields(logrus.Fields{
		"collection": d.Collection,
		"doc_id":     d.ID,
		"reason":     reason,
	}).Warn("Skipping remote document")
}
