package tagger

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/mycok/sigterms/commentindex/index"
	"github.com/mycok/sigterms/handoff"
)

// State describes the progress of an Indexer.
type State int32

const (
	// StateRunning accumulates IDs and flushes full batches.
	StateRunning State = iota

	// StateDraining flushes the final partial batch after end of input.
	StateDraining

	// StateDone is reached once the final batch was submitted.
	StateDone
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateDraining:
		return "draining"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Indexer drains the hand-off queue and tags the received documents with
// batched bulk updates. It satisfies the service.Service interface.
type Indexer struct {
	config Config
	queue  handoff.Queue
	logger *logrus.Entry
	state  int32

	indexed int
	batches int
	dropped int
}

func newIndexer(config Config, queue handoff.Queue) *Indexer {
	ix := &Indexer{
		config: config,
		queue:  queue,
	}
	ix.logger = config.Logger.WithField("service", ix.Name())

	return ix
}

// Name returns the name of the service.
func (ix *Indexer) Name() string { return "indexer" }

// State returns the current state of the indexer.
func (ix *Indexer) State() State { return State(atomic.LoadInt32(&ix.state)) }

// Indexed returns the number of documents the store reported as tagged.
func (ix *Indexer) Indexed() int { return ix.indexed }

// Batches returns the number of bulk requests submitted, including the
// final drain request.
func (ix *Indexer) Batches() int { return ix.batches }

// DroppedBatches returns the number of full batches lost to timeouts.
func (ix *Indexer) DroppedBatches() int { return ix.dropped }

// Run tags documents until the queue is closed and drained, or ctx is
// cancelled. A full batch that times out is dropped; a timeout while
// submitting the final batch is returned.
func (ix *Indexer) Run(ctx context.Context) error {
	var (
		it    = ix.queue.Messages()
		batch = make([]index.Update, 0, ix.config.BatchSize)
	)

	for it.Next(ctx) {
		batch = append(batch, index.TagUpdate(it.Message(), ix.config.Tag))
		if len(batch) < ix.config.BatchSize {
			continue
		}

		err := ix.submit(ctx, batch)
		batch = make([]index.Update, 0, ix.config.BatchSize)

		switch {
		case err == nil:
			ix.logger.Infof(
				"indexed %d/%d\t%d%%",
				ix.indexed, ix.config.Limit, percent(ix.indexed, ix.config.Limit),
			)
		case errors.Is(err, index.ErrTimeout):
			ix.dropped++
			ix.logger.WithField("err", err).Warn("error indexing: connection timeout")
		case ctx.Err() != nil:
			return nil
		default:
			return fmt.Errorf("index: %w", err)
		}
	}

	// The fetcher closes the queue when it observes cancellation, so the
	// iterator may end cleanly even though ctx is done.
	if it.Error() != nil || ctx.Err() != nil {
		// Cancelled before the drain; the partial batch is abandoned.
		ix.logger.WithField("pending", len(batch)).Warn("indexing cancelled")

		return nil
	}

	atomic.StoreInt32(&ix.state, int32(StateDraining))

	if err := ix.submit(ctx, batch); err != nil {
		if ctx.Err() != nil {
			ix.logger.WithField("pending", len(batch)).Warn("indexing cancelled")

			return nil
		}

		return fmt.Errorf("index: drain: %w", err)
	}

	atomic.StoreInt32(&ix.state, int32(StateDone))
	ix.logger.Infof("indexed %d", ix.indexed)

	return nil
}

// submit sends a batch with store warnings suppressed. Rejected items are
// logged and do not fail the batch.
func (ix *Indexer) submit(ctx context.Context, batch []index.Update) error {
	applied, err := ix.config.IndexAPI.BulkUpdate(index.SuppressWarnings(ctx), batch)
	ix.batches++

	if err != nil && !errors.Is(err, index.ErrPartialUpdate) {
		return err
	}

	if err != nil {
		ix.logger.WithFields(logrus.Fields{
			"applied": applied,
			"batch":   len(batch),
			"err":     err,
		}).Warn("some documents could not be tagged")
	}

	ix.indexed += applied

	return nil
}
