package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/blevesearch/bleve"
	"github.com/blevesearch/bleve/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/search/query"
	"github.com/hashicorp/go-multierror"

	"github.com/mycok/sigterms/commentindex/index"
)

// Static and compile-time check to ensure InMemoryStore implements Store.
var _ index.Store = (*InMemoryStore)(nil)

// Name of the synthetic bleve field that lists the analysis tags present on
// a document. Indexed with the keyword analyzer so exclusion filters can
// use exact term queries in place of field existence checks.
const tagsField = "tags"

// InMemoryStore is a Store implementation that uses a bleve instance
// to index and search comments but keeps everything in memory.
type InMemoryStore struct {
	mu   sync.RWMutex
	docs map[string]*index.Document
	idx  bleve.Index
}

// NewInMemoryStore instantiates and returns a comment store that
// uses an in-memory bleve instance to index documents.
func NewInMemoryStore() (*InMemoryStore, error) {
	tagsMapping := bleve.NewTextFieldMapping()
	tagsMapping.Analyzer = keyword.Name

	mapping := bleve.NewIndexMapping()
	mapping.DefaultMapping.AddFieldMappingsAt(tagsField, tagsMapping)

	idx, err := bleve.NewMemOnly(mapping)
	if err != nil {
		return nil, err
	}

	return &InMemoryStore{
		idx:  idx,
		docs: make(map[string]*index.Document),
	}, nil
}

// Close releases / frees any previously allocated resources.
func (s *InMemoryStore) Close() error {
	return s.idx.Close()
}

// Index adds a new document or replaces an existing one.
func (s *InMemoryStore) Index(doc *index.Document) error {
	if doc.ID == "" {
		return fmt.Errorf("index: %w", index.ErrMissingID)
	}

	dCopy := copyDoc(doc)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.idx.Index(dCopy.ID, makeBleveDoc(dCopy)); err != nil {
		return fmt.Errorf("index: %w", err)
	}

	s.docs[dCopy.ID] = dCopy

	return nil
}

// FindByID looks up a document by its ID.
func (s *InMemoryStore) FindByID(id string) (*index.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if doc, exists := s.docs[id]; exists {
		return copyDoc(doc), nil
	}

	return nil, fmt.Errorf("find by ID: %w", index.ErrNotFound)
}

// Search runs q against the index and returns at most size hits
// ordered by descending score.
func (s *InMemoryStore) Search(ctx context.Context, q index.Query, size int) ([]index.Hit, error) {
	searchReq := bleve.NewSearchRequestOptions(makeBleveQuery(q), size, 0, false)

	s.mu.RLock()
	defer s.mu.RUnlock()

	sr, err := s.idx.SearchInContext(ctx, searchReq)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	hits := make([]index.Hit, 0, len(sr.Hits))
	for _, match := range sr.Hits {
		doc, exists := s.docs[match.ID]
		if !exists {
			continue
		}

		hits = append(hits, index.Hit{
			ID:       match.ID,
			Score:    match.Score,
			Document: sourceDoc(doc, q.Source),
		})
	}

	return hits, nil
}

// BulkUpdate merges each update into its document and re-indexes it.
// Updates that reference unknown documents are reported as
// index.ErrPartialUpdate failures.
func (s *InMemoryStore) BulkUpdate(ctx context.Context, updates []index.Update) (int, error) {
	if len(updates) == 0 {
		return 0, nil
	}

	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("bulk update: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		pending []*index.Document
		err     error
	)

	batch := s.idx.NewBatch()
	for _, u := range updates {
		existing, exists := s.docs[u.ID]
		if !exists {
			err = multierror.Append(err, fmt.Errorf("%w: %s: document missing", index.ErrPartialUpdate, u.ID))

			continue
		}

		doc := copyDoc(existing)
		if patchErr := applyPatch(doc, u.Doc); patchErr != nil {
			err = multierror.Append(err, fmt.Errorf("%w: %s: %v", index.ErrPartialUpdate, u.ID, patchErr))

			continue
		}

		if idxErr := batch.Index(doc.ID, makeBleveDoc(doc)); idxErr != nil {
			return 0, fmt.Errorf("bulk update: %w", idxErr)
		}

		pending = append(pending, doc)
	}

	if batchErr := s.idx.Batch(batch); batchErr != nil {
		return 0, fmt.Errorf("bulk update: %w", batchErr)
	}

	for _, doc := range pending {
		s.docs[doc.ID] = doc
	}

	return len(pending), err
}

func makeBleveQuery(q index.Query) query.Query {
	should := make([]query.Query, 0, len(q.Clauses))
	for _, clause := range q.Clauses {
		switch clause.Type {
		case index.QueryTypePhrase:
			pq := bleve.NewMatchPhraseQuery(clause.Expression)
			pq.SetField(q.PrimaryField())
			should = append(should, pq)
		default:
			// Sum the per-field scores, as a most_fields multi-match does.
			perField := make([]query.Query, 0, len(q.Fields))
			for _, field := range q.Fields {
				mq := bleve.NewMatchQuery(clause.Expression)
				mq.SetField(field)
				perField = append(perField, mq)
			}
			should = append(should, bleve.NewDisjunctionQuery(perField...))
		}
	}

	mustNot := make([]query.Query, 0, len(q.ExcludeFields))
	for _, field := range q.ExcludeFields {
		tq := bleve.NewTermQuery(field)
		tq.SetField(tagsField)
		mustNot = append(mustNot, tq)
	}

	var must []query.Query
	if len(should) == 0 {
		must = append(must, bleve.NewMatchAllQuery())
	}

	bq := query.NewBooleanQuery(must, should, mustNot)
	if len(should) != 0 && q.MinimumShouldMatch > 0 {
		bq.SetMinShould(float64(q.MinimumShouldMatch))
	}

	return bq
}

// applyPatch merges fields addressed by dotted keys into doc.
func applyPatch(doc *index.Document, patch map[string]interface{}) error {
	for key, value := range patch {
		parts := strings.SplitN(key, ".", 2)

		switch {
		case parts[0] == index.TextField && len(parts) == 1:
			text, ok := value.(string)
			if !ok {
				return fmt.Errorf("field %q expects a string value", key)
			}
			doc.TextData = text
		case parts[0] == index.AnalysisField && len(parts) == 2:
			if doc.Analysis == nil {
				doc.Analysis = make(map[string]interface{})
			}
			doc.Analysis[parts[1]] = value
		case parts[0] == index.AnalysisField:
			tags, ok := value.(map[string]interface{})
			if !ok {
				return fmt.Errorf("field %q expects an object value", key)
			}
			if doc.Analysis == nil {
				doc.Analysis = make(map[string]interface{})
			}
			for tag, v := range tags {
				doc.Analysis[tag] = v
			}
		default:
			return fmt.Errorf("unsupported field %q", key)
		}
	}

	return nil
}

func makeBleveDoc(doc *index.Document) map[string]interface{} {
	tags := make([]string, 0, len(doc.Analysis))
	for tag := range doc.Analysis {
		tags = append(tags, index.AnalysisField+"."+tag)
	}
	sort.Strings(tags)

	return map[string]interface{}{
		index.TextField: doc.TextData,
		tagsField:       tags,
	}
}

// sourceDoc returns a copy of doc restricted to the requested source fields.
func sourceDoc(doc *index.Document, source []string) *index.Document {
	if len(source) == 0 {
		return copyDoc(doc)
	}

	out := &index.Document{ID: doc.ID}
	for _, field := range source {
		switch field {
		case index.TextField:
			out.TextData = doc.TextData
		case index.AnalysisField:
			out.Analysis = copyDoc(doc).Analysis
		}
	}

	return out
}

func copyDoc(doc *index.Document) *index.Document {
	dCopy := new(index.Document)
	*dCopy = *doc

	if doc.Analysis != nil {
		dCopy.Analysis = make(map[string]interface{}, len(doc.Analysis))
		for k, v := range doc.Analysis {
			dCopy.Analysis[k] = v
		}
	}

	return dCopy
}
