package tagger

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/mycok/sigterms/service"
)

// Result summarises a tagging run.
type Result struct {
	// IDs handed over from the fetcher to the indexer.
	Fetched int

	// Search requests issued by the fetcher.
	Searches int

	// Documents the store reported as tagged.
	Indexed int

	// Bulk requests submitted by the indexer, including the final one.
	Batches int

	// Full batches lost to store timeouts.
	DroppedBatches int
}

// Tagger runs a fetcher and an indexer connected by a hand-off queue.
type Tagger struct {
	config Config
}

// New creates and returns a fully configured Tagger instance.
func New(config Config) (*Tagger, error) {
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("tagger: config validation failed: %w", err)
	}

	return &Tagger{config: config}, nil
}

// Run executes a single tagging run and blocks until both the fetcher and
// the indexer have returned. The result is populated even when an error
// is returned.
func (t *Tagger) Run(ctx context.Context) (Result, error) {
	queue := t.config.QueueFactory()
	fetcher := newFetcher(t.config, queue)
	indexer := newIndexer(t.config, queue)

	t.config.Logger.WithFields(logrus.Fields{
		"limit":      t.config.Limit,
		"page_size":  t.config.PageSize,
		"batch_size": t.config.BatchSize,
		"tag":        t.config.Tag,
	}).Info("started tagging run")

	startedAt := t.config.Clock.Now()
	err := service.Group{indexer, fetcher}.Execute(ctx)

	// Group.Execute joins both services, so their counters are safe to read.
	res := Result{
		Fetched:        fetcher.Fetched(),
		Searches:       fetcher.Searches(),
		Indexed:        indexer.Indexed(),
		Batches:        indexer.Batches(),
		DroppedBatches: indexer.DroppedBatches(),
	}

	t.config.Logger.WithFields(logrus.Fields{
		"fetched":               res.Fetched,
		"indexed":               res.Indexed,
		"dropped_batches":       res.DroppedBatches,
		"total_processing_time": t.config.Clock.Now().Sub(startedAt),
	}).Info("finished tagging run")

	return res, err
}
