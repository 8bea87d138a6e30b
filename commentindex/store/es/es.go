package es

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"github.com/mycok/sigterms/commentindex/index"
)

// Static and compile-time check to ensure ElasticsearchStore implements Store.
var _ index.Store = (*ElasticsearchStore)(nil)

const (
	// DefaultIndexName is the elasticsearch index holding the comments.
	DefaultIndexName = "fcc-comments"

	// DefaultDocType is the mapping type used by the comments index.
	DefaultDocType = "document"

	// DefaultRequestTimeout bounds every request made by the store.
	DefaultRequestTimeout = 10 * time.Second
)

// Mappings used when the comments index does not exist yet. An existing
// index is never modified.
var esMappings = `
{
  "mappings" : {
    "properties": {
      "text_data": {
        "type": "text",
        "fields": {
          "english": {"type": "text", "analyzer": "english"}
        }
      },
      "analysis": {"type": "object"}
    }
  }
}`

type esSearchRes struct {
	Hits esSearchResHits `json:"hits"`
}

type esSearchResHits struct {
	HitList []esHitWrapper `json:"hits"`
}

type esHitWrapper struct {
	ID        string  `json:"_id"`
	Score     float64 `json:"_score"`
	DocSource esDoc   `json:"_source"`
}

type esDoc struct {
	TextData string                 `json:"text_data,omitempty"`
	Analysis map[string]interface{} `json:"analysis,omitempty"`
}

type esGetRes struct {
	Found     bool   `json:"found"`
	DocSource esDoc  `json:"_source"`
	ID        string `json:"_id"`
}

type esBulkRes struct {
	Errors bool                      `json:"errors"`
	Items  []map[string]esBulkResult `json:"items"`
}

type esBulkResult struct {
	ID     string   `json:"_id"`
	Status int      `json:"status"`
	Error  *esError `json:"error,omitempty"`
}

type esErrorRes struct {
	Error esError `json:"error"`
}

type esError struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

func (e esError) Error() string {
	return fmt.Sprintf("%s: %s", e.Type, e.Reason)
}

// Config defines the connection settings for an ElasticsearchStore.
type Config struct {
	// Addresses of the elasticsearch nodes.
	Nodes []string

	// Index to operate on. Defaults to DefaultIndexName.
	IndexName string

	// Mapping type written into bulk operation metadata. Leave empty for
	// servers that no longer accept mapping types.
	DocType string

	// Upper bound for every request. Defaults to DefaultRequestTimeout.
	RequestTimeout time.Duration

	// Refresh the index after each write so that subsequent searches
	// observe it.
	SyncUpdates bool

	// Create the index with the comment mappings when it is missing. When
	// false the index must already exist.
	CreateIndex bool

	// The logger to use for server warnings. If not defined an
	// output-discarding logger will be used instead.
	Logger *logrus.Entry
}

func (config *Config) validate() error {
	var err error

	if len(config.Nodes) == 0 {
		err = multierror.Append(err, fmt.Errorf("no elasticsearch nodes provided"))
	}

	if config.IndexName == "" {
		config.IndexName = DefaultIndexName
	}

	if config.RequestTimeout < 0 {
		err = multierror.Append(err, fmt.Errorf("invalid value for request timeout, must be >= 0"))
	} else if config.RequestTimeout == 0 {
		config.RequestTimeout = DefaultRequestTimeout
	}

	if config.Logger == nil {
		config.Logger = logrus.NewEntry(&logrus.Logger{Out: io.Discard})
	}

	return err
}

// ElasticsearchStore is a Store implementation that uses elasticsearch
// to search and tag comments.
type ElasticsearchStore struct {
	client *elasticsearch.Client
	config Config
	// "true" or "false", passed as the refresh parameter of every write.
	refresh string
}

// NewElasticsearchStore instantiates and returns a store that uses an
// elasticsearch cluster. Unless config.CreateIndex is set, a missing
// comments index is reported as an error.
func NewElasticsearchStore(config Config) (*ElasticsearchStore, error) {
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("elasticsearch store: config validation failed: %w", err)
	}

	c, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: config.Nodes,
	})
	if err != nil {
		return nil, err
	}

	s := &ElasticsearchStore{
		client:  c,
		config:  config,
		refresh: "false",
	}

	if config.SyncUpdates {
		s.refresh = "true"
	}

	if config.CreateIndex {
		err = s.initIndex(context.Background())
	} else {
		err = s.checkIndex(context.Background())
	}

	if err != nil {
		return nil, err
	}

	return s, nil
}

// Index adds a new document or replaces an existing one.
func (s *ElasticsearchStore) Index(doc *index.Document) error {
	if doc.ID == "" {
		return fmt.Errorf("index: %w", index.ErrMissingID)
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(makeEsDoc(doc)); err != nil {
		return fmt.Errorf("index: %w", err)
	}

	ctx, cancelFn := s.requestContext(context.Background())
	defer cancelFn()

	res, err := s.client.Index(
		s.config.IndexName, &buf,
		s.client.Index.WithContext(ctx),
		s.client.Index.WithDocumentID(doc.ID),
		s.client.Index.WithRefresh(s.refresh),
	)
	if err != nil {
		return fmt.Errorf("index: %w", classifyErr(err))
	}

	s.logWarnings(ctx, res)

	if err = unmarshalResponse(res, nil); err != nil {
		return fmt.Errorf("index: %w", err)
	}

	return nil
}

// FindByID looks up a document by its ID.
func (s *ElasticsearchStore) FindByID(id string) (*index.Document, error) {
	ctx, cancelFn := s.requestContext(context.Background())
	defer cancelFn()

	res, err := s.client.Get(s.config.IndexName, id, s.client.Get.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("find by ID: %w", classifyErr(err))
	}

	s.logWarnings(ctx, res)

	if res.StatusCode == http.StatusNotFound {
		_ = res.Body.Close()

		return nil, fmt.Errorf("find by ID: %w", index.ErrNotFound)
	}

	var getRes esGetRes
	if err = unmarshalResponse(res, &getRes); err != nil {
		return nil, fmt.Errorf("find by ID: %w", err)
	}

	if !getRes.Found {
		return nil, fmt.Errorf("find by ID: %w", index.ErrNotFound)
	}

	return esDocToDoc(id, &getRes.DocSource), nil
}

// Search runs q against the index and returns at most size hits
// ordered by descending score.
func (s *ElasticsearchStore) Search(ctx context.Context, q index.Query, size int) ([]index.Hit, error) {
	query := makeEsQuery(q)
	query["size"] = size

	searchRes, err := s.performSearch(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	hits := make([]index.Hit, 0, len(searchRes.Hits.HitList))
	for i := range searchRes.Hits.HitList {
		hit := &searchRes.Hits.HitList[i]
		hits = append(hits, index.Hit{
			ID:       hit.ID,
			Score:    hit.Score,
			Document: esDocToDoc(hit.ID, &hit.DocSource),
		})
	}

	return hits, nil
}

// BulkUpdate sends all updates as a single bulk request and returns the
// number of operations the cluster applied. Rejected operations are
// reported as index.ErrPartialUpdate failures.
func (s *ElasticsearchStore) BulkUpdate(ctx context.Context, updates []index.Update) (int, error) {
	if len(updates) == 0 {
		return 0, nil
	}

	body, err := s.makeBulkBody(updates)
	if err != nil {
		return 0, fmt.Errorf("bulk update: %w", err)
	}

	reqCtx, cancelFn := s.requestContext(ctx)
	defer cancelFn()

	res, err := s.client.Bulk(
		body,
		s.client.Bulk.WithContext(reqCtx),
		s.client.Bulk.WithRefresh(s.refresh),
	)
	if err != nil {
		return 0, fmt.Errorf("bulk update: %w", classifyErr(err))
	}

	s.logWarnings(ctx, res)

	var bulkRes esBulkRes
	if err = unmarshalResponse(res, &bulkRes); err != nil {
		return 0, fmt.Errorf("bulk update: %w", classifyErr(err))
	}

	var (
		applied int
		itemErr error
	)

	for _, item := range bulkRes.Items {
		for _, result := range item {
			if result.Status >= 200 && result.Status < 300 {
				applied++

				continue
			}

			reason := fmt.Sprintf("status %d", result.Status)
			if result.Error != nil {
				reason = result.Error.Error()
			}

			itemErr = multierror.Append(itemErr, fmt.Errorf("%w: %s: %s", index.ErrPartialUpdate, result.ID, reason))
		}
	}

	return applied, itemErr
}

func (s *ElasticsearchStore) makeBulkBody(updates []index.Update) (io.Reader, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)

	for _, u := range updates {
		meta := map[string]interface{}{
			"_index": s.config.IndexName,
			"_id":    u.ID,
		}
		if s.config.DocType != "" {
			meta["_type"] = s.config.DocType
		}

		if err := enc.Encode(map[string]interface{}{"update": meta}); err != nil {
			return nil, err
		}

		if err := enc.Encode(map[string]interface{}{"doc": expandFields(u.Doc)}); err != nil {
			return nil, err
		}
	}

	return &buf, nil
}

func (s *ElasticsearchStore) performSearch(
	ctx context.Context, query map[string]interface{},
) (*esSearchRes, error) {
	var buf bytes.Buffer

	if err := json.NewEncoder(&buf).Encode(query); err != nil {
		return nil, err
	}

	reqCtx, cancelFn := s.requestContext(ctx)
	defer cancelFn()

	res, err := s.client.Search(
		s.client.Search.WithContext(reqCtx),
		s.client.Search.WithIndex(s.config.IndexName),
		s.client.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, classifyErr(err)
	}

	s.logWarnings(ctx, res)

	var esRes esSearchRes
	if err = unmarshalResponse(res, &esRes); err != nil {
		return nil, classifyErr(err)
	}

	return &esRes, nil
}

func (s *ElasticsearchStore) initIndex(ctx context.Context) error {
	reqCtx, cancelFn := s.requestContext(ctx)
	defer cancelFn()

	res, err := s.client.Indices.Create(
		s.config.IndexName,
		s.client.Indices.Create.WithContext(reqCtx),
		s.client.Indices.Create.WithBody(strings.NewReader(esMappings)),
	)
	// For cases where index creation fails due to client issues,
	// ie network connection issues.
	if err != nil {
		return fmt.Errorf("failed to create ES index: %w", classifyErr(err))
	}

	// For cases where index creation fails due to other issues, ie invalid params.
	if res.IsError() {
		err = unMarshalError(res)

		var esErr esError
		if errors.As(err, &esErr) && esErr.Type == "resource_already_exists_exception" {
			return nil
		}

		return fmt.Errorf("failed to create ES index: %w", err)
	}

	_ = res.Body.Close()

	return nil
}

// checkIndex verifies that the comments index exists without modifying it.
func (s *ElasticsearchStore) checkIndex(ctx context.Context) error {
	reqCtx, cancelFn := s.requestContext(ctx)
	defer cancelFn()

	res, err := s.client.Indices.Exists(
		[]string{s.config.IndexName},
		s.client.Indices.Exists.WithContext(reqCtx),
	)
	if err != nil {
		return fmt.Errorf("failed to check ES index: %w", classifyErr(err))
	}

	if res.Body != nil {
		_ = res.Body.Close()
	}

	switch {
	case res.StatusCode == http.StatusNotFound:
		return fmt.Errorf("ES index %q does not exist", s.config.IndexName)
	case res.IsError():
		return fmt.Errorf("failed to check ES index %q: %s", s.config.IndexName, res.Status())
	default:
		return nil
	}
}

func (s *ElasticsearchStore) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.config.RequestTimeout)
}

func (s *ElasticsearchStore) logWarnings(ctx context.Context, res *esapi.Response) {
	if !res.HasWarnings() || index.WarningsSuppressed(ctx) {
		return
	}

	for _, warning := range res.Warnings() {
		s.config.Logger.WithField("index", s.config.IndexName).Warn(warning)
	}
}

// classifyErr tags deadline and network timeouts with index.ErrTimeout.
func classifyErr(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: %v", index.ErrTimeout, err)
	}

	return err
}

func makeEsQuery(q index.Query) map[string]interface{} {
	should := make([]interface{}, 0, len(q.Clauses))
	for _, clause := range q.Clauses {
		switch clause.Type {
		case index.QueryTypePhrase:
			should = append(should, map[string]interface{}{
				"match_phrase": map[string]interface{}{
					q.PrimaryField(): clause.Expression,
				},
			})
		default:
			should = append(should, map[string]interface{}{
				"multi_match": map[string]interface{}{
					"query":  clause.Expression,
					"type":   "most_fields",
					"fields": q.Fields,
				},
			})
		}
	}

	mustNot := make([]interface{}, 0, len(q.ExcludeFields))
	for _, field := range q.ExcludeFields {
		mustNot = append(mustNot, map[string]interface{}{
			"exists": map[string]interface{}{"field": field},
		})
	}

	boolQuery := map[string]interface{}{
		"should": should,
		"filter": map[string]interface{}{
			"bool": map[string]interface{}{"must_not": mustNot},
		},
	}
	if q.MinimumShouldMatch > 0 {
		boolQuery["minimum_should_match"] = q.MinimumShouldMatch
	}

	query := map[string]interface{}{
		"query": map[string]interface{}{"bool": boolQuery},
	}
	if len(q.Source) != 0 {
		query["_source"] = q.Source
	}

	return query
}

// expandFields turns dotted keys into nested objects so that partial
// updates merge into existing objects instead of adding literal dotted keys
// to the document source.
func expandFields(doc map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(doc))

	for key, value := range doc {
		parts := strings.Split(key, ".")
		node := out

		for _, part := range parts[:len(parts)-1] {
			child, ok := node[part].(map[string]interface{})
			if !ok {
				child = make(map[string]interface{})
				node[part] = child
			}
			node = child
		}

		node[parts[len(parts)-1]] = value
	}

	return out
}

func unMarshalError(res *esapi.Response) error {
	return unmarshalResponse(res, nil)
}

func unmarshalResponse(res *esapi.Response, into interface{}) error {
	defer func() {
		_ = res.Body.Close()
	}()

	if res.IsError() {
		var errRes esErrorRes
		if err := json.NewDecoder(res.Body).Decode(&errRes); err != nil {
			return err
		}

		return errRes.Error
	}

	if into == nil {
		_, err := io.Copy(io.Discard, res.Body)

		return err
	}

	return json.NewDecoder(res.Body).Decode(into)
}

func esDocToDoc(id string, doc *esDoc) *index.Document {
	return &index.Document{
		ID:       id,
		TextData: doc.TextData,
		Analysis: doc.Analysis,
	}
}

func makeEsDoc(doc *index.Document) esDoc {
	return esDoc{
		TextData: doc.TextData,
		Analysis: doc.Analysis,
	}
}
