package tagger

import (
	"context"
	"fmt"
	"io"

	"github.com/hashicorp/go-multierror"
	"github.com/juju/clock"
	"github.com/sirupsen/logrus"

	"github.com/mycok/sigterms/commentindex/index"
	"github.com/mycok/sigterms/handoff"
)

//go:generate mockgen -package mocks -destination mocks/mocks.go github.com/mycok/sigterms/tagger FetchAPI,IndexAPI

const (
	// DefaultLimit is the number of documents a run tries to tag.
	DefaultLimit = 10000

	// DefaultPageSize is the number of hits requested per search.
	DefaultPageSize = 100

	// DefaultBatchSize is the number of updates sent per bulk request.
	DefaultBatchSize = 20
)

// FetchAPI defines a minimum set of API methods for searching the comments index.
type FetchAPI interface {
	// Search runs q against the index and returns at most size hits
	// ordered by descending score.
	Search(ctx context.Context, q index.Query, size int) ([]index.Hit, error)
}

// IndexAPI defines a minimum set of API methods for tagging comments.
type IndexAPI interface {
	// BulkUpdate applies all updates in a single request and returns the
	// number of operations the store applied.
	BulkUpdate(ctx context.Context, updates []index.Update) (int, error)
}

// Config defines configurations for a tagging run.
type Config struct {
	// API used by the fetcher to find untagged comments.
	FetchAPI FetchAPI

	// API used by the indexer to tag comments. Kept separate from FetchAPI
	// so each side can own its own client connection.
	IndexAPI IndexAPI

	// The query selecting documents to tag. If not specified,
	// index.SigTermsQuery will be used instead.
	Query index.Query

	// The analysis field set to true on every selected document. If not
	// specified, index.SigTermsTag will be used instead.
	Tag string

	// Creates the hand-off queue between fetcher and indexer. If not
	// specified, handoff.NewInMemoryQueue will be used instead.
	QueueFactory handoff.Factory

	// A clock instance for measuring run durations. If not specified,
	// the default wall-clock will be used instead.
	Clock clock.Clock

	// The number of documents to fetch before the fetcher stops.
	Limit int

	// The number of hits requested per search.
	PageSize int

	// The number of updates sent per bulk request.
	BatchSize int

	// The logger to use. If not defined an output-discarding logger will
	// be used instead.
	Logger *logrus.Entry
}

func (config *Config) validate() error {
	var err error

	if config.FetchAPI == nil {
		err = multierror.Append(err, fmt.Errorf("fetch API not provided"))
	}

	if config.IndexAPI == nil {
		err = multierror.Append(err, fmt.Errorf("index API not provided"))
	}

	if len(config.Query.Clauses) == 0 {
		config.Query = index.SigTermsQuery
	}

	if config.Tag == "" {
		config.Tag = index.SigTermsTag
	}

	if config.QueueFactory == nil {
		config.QueueFactory = handoff.NewInMemoryQueue
	}

	if config.Clock == nil {
		config.Clock = clock.WallClock
	}

	if config.Limit < 0 {
		err = multierror.Append(err, fmt.Errorf("invalid value for limit, must be >= 0"))
	}

	if config.PageSize <= 0 {
		err = multierror.Append(err, fmt.Errorf("invalid value for page size, must be > 0"))
	}

	if config.BatchSize <= 0 {
		err = multierror.Append(err, fmt.Errorf("invalid value for batch size, must be > 0"))
	}

	if config.Logger == nil {
		config.Logger = logrus.NewEntry(&logrus.Logger{Out: io.Discard})
	}

	return err
}

// percent returns n as a whole percentage of total.
func percent(n, total int) int {
	if total <= 0 {
		return 0
	}

	return n * 100 / total
}
