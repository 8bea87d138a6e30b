package tagger

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/sirupsen/logrus"

	"github.com/mycok/sigterms/commentindex/index"
	"github.com/mycok/sigterms/handoff"
)

// Number of fetched documents between two progress milestones.
const fetchMilestone = 200

// Fetcher repeatedly searches for untagged comments and hands their IDs
// over to the indexer. It satisfies the service.Service interface.
type Fetcher struct {
	config    Config
	queue     handoff.Queue
	sanitizer *bluemonday.Policy
	logger    *logrus.Entry

	fetched  int
	searches int
}

func newFetcher(config Config, queue handoff.Queue) *Fetcher {
	f := &Fetcher{
		config:    config,
		queue:     queue,
		sanitizer: bluemonday.StrictPolicy(),
	}
	f.logger = config.Logger.WithField("service", f.Name())

	return f
}

// Name returns the name of the service.
func (f *Fetcher) Name() string { return "fetcher" }

// Fetched returns the number of IDs handed over to the indexer.
func (f *Fetcher) Fetched() int { return f.fetched }

// Searches returns the number of search requests issued.
func (f *Fetcher) Searches() int { return f.searches }

// Run fetches pages of matching documents until the limit is reached, the
// store stops returning hits, a search times out or ctx is cancelled. The
// hand-off queue is always closed on return.
func (f *Fetcher) Run(ctx context.Context) error {
	defer func() {
		_ = f.queue.Close()
	}()

	for f.fetched < f.config.Limit {
		// The same query is issued on every pass: documents tagged by the
		// indexer in the meantime drop out of the result set.
		hits, err := f.config.FetchAPI.Search(ctx, f.config.Query, f.config.PageSize)
		f.searches++

		if err != nil {
			switch {
			case errors.Is(err, index.ErrTimeout):
				f.logger.WithField("err", err).Warn("error fetching: connection timeout")

				return nil
			case ctx.Err() != nil:
				return nil
			default:
				return fmt.Errorf("fetch: %w", err)
			}
		}

		if len(hits) == 0 {
			f.logger.WithField("fetched", f.fetched).Info("no more matching documents")

			return nil
		}

		for _, hit := range hits {
			if err := f.queue.Enqueue(hit.ID); err != nil {
				return fmt.Errorf("fetch: %w", err)
			}

			f.fetched++

			f.logger.WithFields(logrus.Fields{
				"fetched": f.fetched,
				"score":   hit.Score,
			}).Info(f.snippet(hit.Document))

			if f.fetched%fetchMilestone == 0 {
				f.logger.Infof(
					"fetched %d/%d\t%d%%",
					f.fetched, f.config.Limit, percent(f.fetched, f.config.Limit),
				)
			}
		}
	}

	return nil
}

// snippet renders a comment body as a single line of plain text.
func (f *Fetcher) snippet(doc *index.Document) string {
	if doc == nil {
		return ""
	}

	text := html.UnescapeString(f.sanitizer.Sanitize(doc.TextData))

	return strings.Join(strings.Fields(text), " ")
}
