package ingest

import (
	"context"
	"errors"
	"sync"

	"github.com/chanuka/integrity/backend/internal/domain"
)

// RecordStore is the write contract required by the ingest pipeline.
type RecordStore interface {
	UpsertSponsor(ctx context.Context, sponsor domain.Sponsor, affiliations []domain.Affiliation, records []domain.TransparencyRecord) error
	UpsertBill(ctx context.Context, bill domain.Bill, sponsorships []domain.Sponsorship) error
}

// TaskError accumulates multiple errors produced during bulk ingestion.
type TaskError struct {
	Errors []error
}

func (e *TaskError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msg := "multiple errors:"
	for _, err := range e.Errors {
		msg += " " + err.Error() + ";"
	}
	return msg
}

func (e *TaskError) append(err error) {
	if err == nil {
		return
	}
	e.Errors = append(e.Errors, err)
}

func (e *TaskError) asError() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e
}

// BulkIngestor loads large seed datasets using worker pools.
type BulkIngestor struct {
	store   RecordStore
	workers int
}

// NewBulkIngestor creates a new BulkIngestor with the provided concurrency.
func NewBulkIngestor(store RecordStore, workers int) *BulkIngestor {
	if workers <= 0 {
		workers = 4
	}
	return &BulkIngestor{store: store, workers: workers}
}

// IngestSponsors processes the provided sponsor records concurrently.
func (bi *BulkIngestor) IngestSponsors(ctx context.Context, records []SponsorRecord) error {
	return bi.run(ctx, len(records), func(idx int) error {
		sponsor, affiliations, disclosures := records[idx].ToDomain()
		return bi.store.UpsertSponsor(ctx, sponsor, affiliations, disclosures)
	})
}

// IngestBills processes bill records concurrently. Bills must be loaded after
// sponsors so sponsorship edges resolve.
func (bi *BulkIngestor) IngestBills(ctx context.Context, records []BillRecord) error {
	return bi.run(ctx, len(records), func(idx int) error {
		bill, sponsorships := records[idx].ToDomain()
		return bi.store.UpsertBill(ctx, bill, sponsorships)
	})
}

func (bi *BulkIngestor) run(ctx context.Context, total int, workerFn func(idx int) error) error {
	if total == 0 {
		return nil
	}
	indexCh := make(chan int)
	errCh := make(chan error, total)
	var wg sync.WaitGroup

	worker := func() {
		defer wg.Done()
		for idx := range indexCh {
			if err := workerFn(idx); err != nil {
				select {
				case errCh <- err:
				case <-ctx.Done():
					return
				}
			}
		}
	}

	for i := 0; i < bi.workers; i++ {
		wg.Add(1)
		go worker()
	}

Loop:
	for i := 0; i < total; i++ {
		select {
		case indexCh <- i:
		case <-ctx.Done():
			break Loop
		}
	}
	close(indexCh)
	wg.Wait()
	close(errCh)

	var taskErr TaskError
	for err := range errCh {
		if err == nil {
			continue
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		taskErr.append(err)
	}
	return taskErr.asError()
}
