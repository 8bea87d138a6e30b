package index

import "context"

// Store should be implemented by objects that can search the comments index
// and apply partial updates to its documents.
type Store interface {
	// Index adds a new document or replaces an existing one.
	Index(doc *Document) error

	// FindByID looks up a document by its ID.
	FindByID(id string) (*Document, error)

	// Search runs q against the index and returns at most size hits
	// ordered by descending score.
	Search(ctx context.Context, q Query, size int) ([]Hit, error)

	// BulkUpdate applies all updates in a single request and returns the
	// number of operations the store applied. An empty batch is a no-op.
	BulkUpdate(ctx context.Context, updates []Update) (int, error)
}

// QueryType represents an integer value for a specific query clause.
type QueryType uint8

const (
	// QueryTypeMatch scores documents on any of the clause terms across
	// all query fields, summing the per-field scores.
	QueryTypeMatch QueryType = iota

	// QueryTypePhrase matches documents that contain the exact clause
	// phrase in the primary query field.
	QueryTypePhrase
)

// Clause is a single relevance-scored condition of a Query.
type Clause struct {
	Type       QueryType
	Expression string
}

// Query defines a relevance-scored disjunction of clauses, filtered to
// documents that carry none of the excluded fields.
type Query struct {
	// Fields searched by match clauses. The first entry is the primary
	// field used by phrase clauses.
	Fields []string

	// Clauses of which at least MinimumShouldMatch must match.
	Clauses            []Clause
	MinimumShouldMatch int

	// Documents where any of these fields exist are never returned.
	ExcludeFields []string

	// Source fields returned with each hit.
	Source []string
}

// PrimaryField returns the field used for phrase clauses.
func (q Query) PrimaryField() string {
	if len(q.Fields) == 0 {
		return TextField
	}

	return q.Fields[0]
}
