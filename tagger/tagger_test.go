package tagger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/juju/clock/testclock"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	check "gopkg.in/check.v1"

	"github.com/mycok/sigterms/commentindex/index"
	"github.com/mycok/sigterms/commentindex/store/memory"
	"github.com/mycok/sigterms/handoff"
	"github.com/mycok/sigterms/tagger/mocks"
)

var _ = check.Suite(new(ConfigTestSuite))
var _ = check.Suite(new(TaggerTestSuite))

func Test(t *testing.T) {
	check.TestingT(t)
}

var errSimulatedTimeout = fmt.Errorf("%w: simulated", index.ErrTimeout)

type ConfigTestSuite struct{}

func (s *ConfigTestSuite) TestConfigValidation(c *check.C) {
	ctrl := gomock.NewController(c)
	defer ctrl.Finish()

	originalConfig := Config{
		FetchAPI:  mocks.NewMockFetchAPI(ctrl),
		IndexAPI:  mocks.NewMockIndexAPI(ctrl),
		Limit:     DefaultLimit,
		PageSize:  DefaultPageSize,
		BatchSize: DefaultBatchSize,
	}

	config := originalConfig
	c.Assert(config.validate(), check.IsNil)

	c.Assert(config.Clock, check.Not(check.IsNil), check.Commentf("default clock was not assigned"))
	c.Assert(config.Logger, check.Not(check.IsNil), check.Commentf("default logger was not assigned"))
	c.Assert(config.QueueFactory, check.Not(check.IsNil), check.Commentf("default queue factory was not assigned"))
	c.Assert(config.Query, check.DeepEquals, index.SigTermsQuery)
	c.Assert(config.Tag, check.Equals, index.SigTermsTag)

	config = originalConfig
	config.FetchAPI = nil
	c.Assert(config.validate(), check.ErrorMatches, "(?ms).*fetch API not provided.*")

	config = originalConfig
	config.IndexAPI = nil
	c.Assert(config.validate(), check.ErrorMatches, "(?ms).*index API not provided.*")

	config = originalConfig
	config.Limit = -1
	c.Assert(config.validate(), check.ErrorMatches, "(?ms).*invalid value for limit.*")

	config = originalConfig
	config.PageSize = 0
	c.Assert(config.validate(), check.ErrorMatches, "(?ms).*invalid value for page size.*")

	config = originalConfig
	config.BatchSize = 0
	c.Assert(config.validate(), check.ErrorMatches, "(?ms).*invalid value for batch size.*")

	config = originalConfig
	config.Limit = 0
	c.Assert(config.validate(), check.IsNil)
}

type TaggerTestSuite struct {
	ctrl      *gomock.Controller
	mockFetch *mocks.MockFetchAPI
	mockIndex *mocks.MockIndexAPI
	logger    *logrus.Logger
	hook      *test.Hook
}

func (s *TaggerTestSuite) SetUpTest(c *check.C) {
	s.ctrl = gomock.NewController(c)
	s.mockFetch = mocks.NewMockFetchAPI(s.ctrl)
	s.mockIndex = mocks.NewMockIndexAPI(s.ctrl)
	s.logger, s.hook = test.NewNullLogger()
}

func (s *TaggerTestSuite) TearDownTest(c *check.C) {
	s.ctrl.Finish()
}

func (s *TaggerTestSuite) TestFetchStopsOncePagesReachTheLimit(c *check.C) {
	p := &pager{hits: makeHits(250)}
	s.mockFetch.EXPECT().Search(gomock.Any(), index.SigTermsQuery, 100).DoAndReturn(p.Search).Times(2)

	q := handoff.NewInMemoryQueue()
	f := newFetcher(s.config(c, 200), q)

	c.Assert(f.Run(context.TODO()), check.IsNil)
	c.Assert(f.Searches(), check.Equals, 2)
	c.Assert(f.Fetched(), check.Equals, 200)
	c.Assert(drain(c, q), check.DeepEquals, hitIDs(p.hits[:200]))
}

func (s *TaggerTestSuite) TestFetchOvershootsWithinTheLastPage(c *check.C) {
	p := &pager{hits: makeHits(500)}
	s.mockFetch.EXPECT().Search(gomock.Any(), gomock.Any(), 100).DoAndReturn(p.Search).Times(2)

	q := handoff.NewInMemoryQueue()
	config := s.config(c, 150)
	f := newFetcher(config, q)

	c.Assert(f.Run(context.TODO()), check.IsNil)

	// Every hit observed is enqueued, and at most a page minus one over limit.
	ids := drain(c, q)
	c.Assert(ids, check.HasLen, 200)
	c.Assert(f.Fetched(), check.Equals, len(ids))
	c.Assert(len(ids) <= config.Limit+config.PageSize-1, check.Equals, true)
}

func (s *TaggerTestSuite) TestFetchTimeoutEndsFetching(c *check.C) {
	p := &pager{hits: makeHits(500)}
	gomock.InOrder(
		s.mockFetch.EXPECT().Search(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(p.Search),
		s.mockFetch.EXPECT().Search(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errSimulatedTimeout),
	)

	q := handoff.NewInMemoryQueue()
	f := newFetcher(s.config(c, 1000), q)

	c.Assert(f.Run(context.TODO()), check.IsNil)
	c.Assert(f.Fetched(), check.Equals, 100)
	c.Assert(drain(c, q), check.HasLen, 100)

	warnings := s.entries("fetcher", logrus.WarnLevel)
	c.Assert(warnings, check.HasLen, 1)
	c.Assert(warnings[0].Message, check.Equals, "error fetching: connection timeout")
}

func (s *TaggerTestSuite) TestFetchStopsWhenNoDocumentsMatch(c *check.C) {
	p := &pager{hits: makeHits(30)}
	s.mockFetch.EXPECT().Search(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(p.Search).Times(2)

	q := handoff.NewInMemoryQueue()
	f := newFetcher(s.config(c, 1000), q)

	c.Assert(f.Run(context.TODO()), check.IsNil)
	c.Assert(f.Fetched(), check.Equals, 30)
	c.Assert(drain(c, q), check.HasLen, 30)
}

func (s *TaggerTestSuite) TestFetchReturnsOtherErrors(c *check.C) {
	s.mockFetch.EXPECT().Search(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, errors.New("index_not_found_exception"))

	q := handoff.NewInMemoryQueue()
	f := newFetcher(s.config(c, 100), q)

	c.Assert(f.Run(context.TODO()), check.ErrorMatches, "fetch: index_not_found_exception")
	c.Assert(drain(c, q), check.HasLen, 0)
}

func (s *TaggerTestSuite) TestIndexerFlushesFullBatchesThenDrains(c *check.C) {
	rec := newBulkRecorder()
	s.mockIndex.EXPECT().BulkUpdate(gomock.Any(), gomock.Any()).DoAndReturn(rec.BulkUpdate).Times(3)

	q := fillQueue(c, 45)
	ix := newIndexer(s.config(c, 45), q)
	c.Assert(ix.State(), check.Equals, StateRunning)

	c.Assert(ix.Run(context.TODO()), check.IsNil)
	c.Assert(ix.State(), check.Equals, StateDone)
	c.Assert(ix.Indexed(), check.Equals, 45)
	c.Assert(ix.Batches(), check.Equals, 3)
	c.Assert(rec.sizes(), check.DeepEquals, []int{20, 20, 5})
	c.Assert(rec.flatten(), check.DeepEquals, hitIDs(makeHits(45)))
	c.Assert(rec.unsuppressed, check.Equals, 0)

	for _, doc := range rec.docs {
		c.Assert(doc, check.DeepEquals, map[string]interface{}{index.SigTermsTag: true})
	}
}

func (s *TaggerTestSuite) TestIndexerDropsTimedOutBatch(c *check.C) {
	rec := newBulkRecorder()
	rec.failOn[2] = errSimulatedTimeout
	s.mockIndex.EXPECT().BulkUpdate(gomock.Any(), gomock.Any()).DoAndReturn(rec.BulkUpdate).Times(4)

	q := fillQueue(c, 60)
	ix := newIndexer(s.config(c, 60), q)

	c.Assert(ix.Run(context.TODO()), check.IsNil)
	c.Assert(ix.Indexed(), check.Equals, 40)
	c.Assert(ix.DroppedBatches(), check.Equals, 1)
	c.Assert(rec.sizes(), check.DeepEquals, []int{20, 20, 20, 0})
}

func (s *TaggerTestSuite) TestIndexerReturnsDrainTimeout(c *check.C) {
	rec := newBulkRecorder()
	rec.failOn[2] = errSimulatedTimeout
	s.mockIndex.EXPECT().BulkUpdate(gomock.Any(), gomock.Any()).DoAndReturn(rec.BulkUpdate).Times(2)

	q := fillQueue(c, 25)
	ix := newIndexer(s.config(c, 25), q)

	err := ix.Run(context.TODO())
	c.Assert(errors.Is(err, index.ErrTimeout), check.Equals, true)
	c.Assert(err, check.ErrorMatches, "index: drain: .*")
	c.Assert(ix.State(), check.Equals, StateDraining)
	c.Assert(ix.Indexed(), check.Equals, 20)
}

func (s *TaggerTestSuite) TestIndexerCountsPartiallyAppliedBatches(c *check.C) {
	partialErr := fmt.Errorf("%w: doc-007: document missing", index.ErrPartialUpdate)
	gomock.InOrder(
		s.mockIndex.EXPECT().BulkUpdate(gomock.Any(), gomock.Len(20)).Return(19, partialErr),
		s.mockIndex.EXPECT().BulkUpdate(gomock.Any(), gomock.Len(0)).Return(0, nil),
	)

	q := fillQueue(c, 20)
	ix := newIndexer(s.config(c, 20), q)

	c.Assert(ix.Run(context.TODO()), check.IsNil)
	c.Assert(ix.Indexed(), check.Equals, 19)
	c.Assert(ix.DroppedBatches(), check.Equals, 0)
}

func (s *TaggerTestSuite) TestIndexerReturnsOtherErrors(c *check.C) {
	s.mockIndex.EXPECT().BulkUpdate(gomock.Any(), gomock.Any()).
		Return(0, errors.New("cluster_block_exception"))

	q := fillQueue(c, 20)
	ix := newIndexer(s.config(c, 20), q)

	c.Assert(ix.Run(context.TODO()), check.ErrorMatches, "index: cluster_block_exception")
	c.Assert(ix.State(), check.Equals, StateRunning)
}

func (s *TaggerTestSuite) TestIndexerStopsOnCancellation(c *check.C) {
	q := handoff.NewInMemoryQueue()
	c.Assert(q.Enqueue("doc-000"), check.IsNil)

	ctx, cancelFn := context.WithTimeout(context.TODO(), 50*time.Millisecond)
	defer cancelFn()

	ix := newIndexer(s.config(c, 10), q)

	// No bulk request is expected: the single ID never fills a batch and
	// the queue is never closed.
	c.Assert(ix.Run(ctx), check.IsNil)
	c.Assert(ix.State(), check.Equals, StateRunning)
	c.Assert(ix.Batches(), check.Equals, 0)
}

func (s *TaggerTestSuite) TestIndexerAbandonsPartialBatchWhenCancelledAfterClose(c *check.C) {
	q := fillQueue(c, 5)

	ctx, cancelFn := context.WithCancel(context.TODO())
	cancelFn()

	ix := newIndexer(s.config(c, 5), q)

	// The queue is closed and drained cleanly, but ctx is already done so
	// the remaining partial batch must not be submitted.
	c.Assert(ix.Run(ctx), check.IsNil)
	c.Assert(ix.State(), check.Equals, StateRunning)
	c.Assert(ix.Batches(), check.Equals, 0)
	c.Assert(s.messages("indexer"), check.DeepEquals, []string{"indexing cancelled"})
}

func (s *TaggerTestSuite) TestIndexerDrainInterruptedByCancellation(c *check.C) {
	ctx, cancelFn := context.WithCancel(context.TODO())
	defer cancelFn()

	s.mockIndex.EXPECT().BulkUpdate(gomock.Any(), gomock.Len(5)).DoAndReturn(
		func(context.Context, []index.Update) (int, error) {
			cancelFn()

			return 0, fmt.Errorf("bulk update: %w", context.Canceled)
		},
	)

	q := fillQueue(c, 5)
	ix := newIndexer(s.config(c, 5), q)

	c.Assert(ix.Run(ctx), check.IsNil)
	c.Assert(ix.State(), check.Equals, StateDraining)
	c.Assert(ix.Indexed(), check.Equals, 0)
}

func (s *TaggerTestSuite) TestRunTagsEveryFetchedDocumentOnce(c *check.C) {
	p := &pager{hits: makeHits(250)}
	s.mockFetch.EXPECT().Search(gomock.Any(), index.SigTermsQuery, 100).DoAndReturn(p.Search).Times(2)

	rec := newBulkRecorder()
	s.mockIndex.EXPECT().BulkUpdate(gomock.Any(), gomock.Any()).DoAndReturn(rec.BulkUpdate).Times(11)

	t, err := New(s.rawConfig(200))
	c.Assert(err, check.IsNil)

	res, err := t.Run(context.TODO())
	c.Assert(err, check.IsNil)
	c.Assert(res, check.DeepEquals, Result{
		Fetched:  200,
		Searches: 2,
		Indexed:  200,
		Batches:  11,
	})

	sizes := rec.sizes()
	c.Assert(sizes[len(sizes)-1], check.Equals, 0)
	for _, size := range sizes[:len(sizes)-1] {
		c.Assert(size, check.Equals, DefaultBatchSize)
	}

	// Each ID lands in exactly one batch, in fetch order.
	ids := rec.flatten()
	c.Assert(ids, check.DeepEquals, hitIDs(p.hits[:200]))

	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		c.Assert(seen[id], check.Equals, false, check.Commentf("duplicate id %s", id))
		seen[id] = true
	}

	// One line per fetched document with its count, score and plain text
	// snippet, plus a single milestone line at 200.
	fetchLines := s.entries("fetcher", logrus.InfoLevel)
	c.Assert(fetchLines, check.HasLen, 201)
	c.Assert(fetchLines[0].Message, check.Equals, "Keep net neutrality")
	c.Assert(fetchLines[0].Data["fetched"], check.Equals, 1)
	c.Assert(fetchLines[0].Data["score"], check.Equals, float64(250))
	c.Assert(fetchLines[199].Data["fetched"], check.Equals, 200)
	c.Assert(fetchLines[200].Message, check.Equals, "fetched 200/200\t100%")

	expected := make([]string, 0, 11)
	for indexed := 20; indexed <= 200; indexed += 20 {
		expected = append(expected, fmt.Sprintf("indexed %d/200\t%d%%", indexed, indexed/2))
	}
	expected = append(expected, "indexed 200")
	c.Assert(s.messages("indexer"), check.DeepEquals, expected)
}

func (s *TaggerTestSuite) TestRunLosesBatchOnTimeout(c *check.C) {
	p := &pager{hits: makeHits(250)}
	s.mockFetch.EXPECT().Search(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(p.Search).Times(2)

	rec := newBulkRecorder()
	rec.failOn[3] = errSimulatedTimeout
	s.mockIndex.EXPECT().BulkUpdate(gomock.Any(), gomock.Any()).DoAndReturn(rec.BulkUpdate).Times(11)

	t, err := New(s.rawConfig(200))
	c.Assert(err, check.IsNil)

	res, err := t.Run(context.TODO())
	c.Assert(err, check.IsNil)
	c.Assert(res.Fetched, check.Equals, 200)
	c.Assert(res.Indexed, check.Equals, res.Fetched-DefaultBatchSize)
	c.Assert(res.DroppedBatches, check.Equals, 1)
	c.Assert(rec.batches[2], check.DeepEquals, hitIDs(p.hits[40:60]))

	expected := []string{
		"indexed 20/200\t10%",
		"indexed 40/200\t20%",
		"error indexing: connection timeout",
	}
	for indexed := 60; indexed <= 180; indexed += 20 {
		expected = append(expected, fmt.Sprintf("indexed %d/200\t%d%%", indexed, indexed/2))
	}
	expected = append(expected, "indexed 180")
	c.Assert(s.messages("indexer"), check.DeepEquals, expected)
	c.Assert(s.entries("indexer", logrus.WarnLevel), check.HasLen, 1)
}

func (s *TaggerTestSuite) TestRunWithZeroLimit(c *check.C) {
	s.mockIndex.EXPECT().BulkUpdate(gomock.Any(), gomock.Len(0)).Return(0, nil)

	t, err := New(s.rawConfig(0))
	c.Assert(err, check.IsNil)

	res, err := t.Run(context.TODO())
	c.Assert(err, check.IsNil)
	c.Assert(res, check.DeepEquals, Result{Batches: 1})
}

func (s *TaggerTestSuite) TestRunReportsDrainTimeout(c *check.C) {
	p := &pager{hits: makeHits(30)}
	s.mockFetch.EXPECT().Search(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(p.Search)

	rec := newBulkRecorder()
	rec.failOn[2] = errSimulatedTimeout
	s.mockIndex.EXPECT().BulkUpdate(gomock.Any(), gomock.Any()).DoAndReturn(rec.BulkUpdate).Times(2)

	t, err := New(s.rawConfig(30))
	c.Assert(err, check.IsNil)

	res, err := t.Run(context.TODO())
	c.Assert(err, check.ErrorMatches, "(?ms).*indexer: index: drain: connection timeout.*")
	c.Assert(res.Indexed, check.Equals, 20)
}

func (s *TaggerTestSuite) TestRunReportsFetchErrors(c *check.C) {
	s.mockFetch.EXPECT().Search(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, errors.New("search_phase_execution_exception"))
	// The indexer may observe the closed queue before the group cancels it.
	s.mockIndex.EXPECT().BulkUpdate(gomock.Any(), gomock.Len(0)).Return(0, nil).AnyTimes()

	t, err := New(s.rawConfig(100))
	c.Assert(err, check.IsNil)

	res, err := t.Run(context.TODO())
	c.Assert(err, check.ErrorMatches, "(?ms).*fetcher: fetch: search_phase_execution_exception.*")
	c.Assert(res.Fetched, check.Equals, 0)
	c.Assert(res.Indexed, check.Equals, 0)
}

func (s *TaggerTestSuite) TestSecondRunFindsNothingToTag(c *check.C) {
	store, err := memory.NewInMemoryStore()
	c.Assert(err, check.IsNil)
	defer func() { _ = store.Close() }()

	for i := 0; i < 30; i++ {
		err = store.Index(&index.Document{
			ID:       fmt.Sprintf("match-%02d", i),
			TextData: fmt.Sprintf("comment %d: <b>protect</b> net neutrality", i),
		})
		c.Assert(err, check.IsNil)
	}

	for i := 0; i < 5; i++ {
		err = store.Index(&index.Document{
			ID:       fmt.Sprintf("other-%02d", i),
			TextData: "broadband maps are outdated",
		})
		c.Assert(err, check.IsNil)
	}

	config := Config{
		FetchAPI:  store,
		IndexAPI:  store,
		Clock:     testclock.NewClock(time.Now()),
		Limit:     30,
		PageSize:  DefaultPageSize,
		BatchSize: DefaultBatchSize,
	}

	t, err := New(config)
	c.Assert(err, check.IsNil)

	res, err := t.Run(context.TODO())
	c.Assert(err, check.IsNil)
	c.Assert(res.Fetched, check.Equals, 30)
	c.Assert(res.Indexed, check.Equals, 30)

	for i := 0; i < 30; i++ {
		doc, err := store.FindByID(fmt.Sprintf("match-%02d", i))
		c.Assert(err, check.IsNil)
		c.Assert(doc.Analysis["sentiment_sig_terms_ordered"], check.Equals, true)
	}

	doc, err := store.FindByID("other-00")
	c.Assert(err, check.IsNil)
	c.Assert(doc.Analysis, check.IsNil)

	res, err = t.Run(context.TODO())
	c.Assert(err, check.IsNil)
	c.Assert(res.Searches, check.Equals, 1)
	c.Assert(res.Fetched, check.Equals, 0)
	c.Assert(res.Indexed, check.Equals, 0)
}

// rawConfig returns an unvalidated config wired to the suite mocks.
func (s *TaggerTestSuite) rawConfig(limit int) Config {
	return Config{
		FetchAPI:  s.mockFetch,
		IndexAPI:  s.mockIndex,
		Clock:     testclock.NewClock(time.Now()),
		Limit:     limit,
		PageSize:  DefaultPageSize,
		BatchSize: DefaultBatchSize,
		Logger:    logrus.NewEntry(s.logger),
	}
}

// messages returns the messages logged by the named service, in order.
func (s *TaggerTestSuite) messages(service string) []string {
	msgs := []string{}
	for _, entry := range s.hook.AllEntries() {
		if entry.Data["service"] == service {
			msgs = append(msgs, entry.Message)
		}
	}

	return msgs
}

// entries returns the entries logged by the named service at level.
func (s *TaggerTestSuite) entries(service string, level logrus.Level) []*logrus.Entry {
	var out []*logrus.Entry
	for _, entry := range s.hook.AllEntries() {
		if entry.Data["service"] == service && entry.Level == level {
			out = append(out, entry)
		}
	}

	return out
}

func (s *TaggerTestSuite) config(c *check.C, limit int) Config {
	config := s.rawConfig(limit)
	c.Assert(config.validate(), check.IsNil)

	return config
}

func makeHits(n int) []index.Hit {
	hits := make([]index.Hit, n)
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("doc-%03d", i)
		hits[i] = index.Hit{
			ID:    id,
			Score: float64(n - i),
			Document: &index.Document{
				ID:       id,
				TextData: "<p>Keep   net neutrality</p>",
			},
		}
	}

	return hits
}

func hitIDs(hits []index.Hit) []string {
	ids := make([]string, len(hits))
	for i, hit := range hits {
		ids[i] = hit.ID
	}

	return ids
}

func fillQueue(c *check.C, n int) handoff.Queue {
	q := handoff.NewInMemoryQueue()
	for _, id := range hitIDs(makeHits(n)) {
		c.Assert(q.Enqueue(id), check.IsNil)
	}
	c.Assert(q.Close(), check.IsNil)

	return q
}

func drain(c *check.C, q handoff.Queue) []string {
	var (
		ids = []string{}
		it  = q.Messages()
	)

	for it.Next(context.TODO()) {
		ids = append(ids, it.Message())
	}
	c.Assert(it.Error(), check.IsNil)

	return ids
}

// pager serves consecutive pages of hits, as a store would when every
// previously returned document has been tagged in the meantime.
type pager struct {
	mu   sync.Mutex
	hits []index.Hit
	pos  int
}

func (p *pager) Search(_ context.Context, _ index.Query, size int) ([]index.Hit, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	end := p.pos + size
	if end > len(p.hits) {
		end = len(p.hits)
	}

	page := p.hits[p.pos:end]
	p.pos = end

	return page, nil
}

// bulkRecorder records submitted batches and fails the calls listed in
// failOn (1-based).
type bulkRecorder struct {
	mu           sync.Mutex
	batches      [][]string
	docs         []map[string]interface{}
	failOn       map[int]error
	unsuppressed int
}

func newBulkRecorder() *bulkRecorder {
	return &bulkRecorder{failOn: make(map[int]error)}
}

func (r *bulkRecorder) BulkUpdate(ctx context.Context, updates []index.Update) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]string, len(updates))
	for i, u := range updates {
		ids[i] = u.ID
		r.docs = append(r.docs, u.Doc)
	}
	r.batches = append(r.batches, ids)

	if !index.WarningsSuppressed(ctx) {
		r.unsuppressed++
	}

	if err := r.failOn[len(r.batches)]; err != nil {
		return 0, err
	}

	return len(updates), nil
}

func (r *bulkRecorder) sizes() []int {
	sizes := make([]int, len(r.batches))
	for i, batch := range r.batches {
		sizes[i] = len(batch)
	}

	return sizes
}

func (r *bulkRecorder) flatten() []string {
	ids := []string{}
	for _, batch := range r.batches {
		ids = append(ids, batch...)
	}

	return ids
}
