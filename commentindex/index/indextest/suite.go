package indextest

import (
	"context"
	"errors"
	"fmt"

	check "gopkg.in/check.v1"

	"github.com/mycok/sigterms/commentindex/index"
)

// BaseSuite defines a set of re-usable store related tests that can
// be executed against any concrete type that implements the index.Store interface.
type BaseSuite struct {
	store index.Store
}

// SetStore sets BaseSuite's store field.
func (s *BaseSuite) SetStore(store index.Store) {
	s.store = store
}

// TestIndexingDocument verifies the indexing and look-up logic for
// new and existing documents.
func (s *BaseSuite) TestIndexingDocument(c *check.C) {
	doc := &index.Document{
		ID:       "doc-1",
		TextData: "I support net neutrality",
		Analysis: map[string]interface{}{"titleii": true},
	}

	err := s.store.Index(doc)
	c.Assert(err, check.IsNil, check.Commentf("++++Index insert++++: %v", err))

	updatedDoc := &index.Document{
		ID:       doc.ID,
		TextData: "I strongly support net neutrality",
		Analysis: map[string]interface{}{"titleii": true},
	}

	err = s.store.Index(updatedDoc)
	c.Assert(err, check.IsNil, check.Commentf("++++Index update++++: %v", err))

	got, err := s.store.FindByID(doc.ID)
	c.Assert(err, check.IsNil)
	c.Assert(got, check.DeepEquals, updatedDoc)

	err = s.store.Index(&index.Document{TextData: "no id"})
	c.Assert(errors.Is(err, index.ErrMissingID), check.Equals, true)

	_, err = s.store.FindByID("missing")
	c.Assert(errors.Is(err, index.ErrNotFound), check.Equals, true)
}

// TestSearchSkipsTaggedDocuments verifies that documents carrying any of the
// excluded analysis tags, or matching none of the clauses, are not returned.
func (s *BaseSuite) TestSearchSkipsTaggedDocuments(c *check.C) {
	docs := []*index.Document{
		{ID: "untagged", TextData: "Please protect net neutrality and keep the internet open"},
		{
			ID:       "title-ii",
			TextData: "Please protect net neutrality and keep the internet open",
			Analysis: map[string]interface{}{"titleii": true},
		},
		{
			ID:       "manual",
			TextData: "Please protect net neutrality and keep the internet open",
			Analysis: map[string]interface{}{"sentiment_manual": "positive"},
		},
		{
			ID:       "sig-terms",
			TextData: "Please protect net neutrality and keep the internet open",
			Analysis: map[string]interface{}{"sentiment_sig_terms_ordered": true},
		},
		{ID: "unrelated", TextData: "Broadband maps should be updated annually"},
	}
	s.indexDocs(c, docs...)

	hits, err := s.store.Search(context.TODO(), index.SigTermsQuery, 10)
	c.Assert(err, check.IsNil)
	c.Assert(hits, check.HasLen, 1)
	c.Assert(hits[0].ID, check.Equals, "untagged")
	c.Assert(hits[0].Score > 0, check.Equals, true)
	c.Assert(hits[0].Document.TextData, check.Equals, docs[0].TextData)
}

// TestSearchPageSize verifies that a search never returns more hits than
// requested and that hits are ordered by descending score.
func (s *BaseSuite) TestSearchPageSize(c *check.C) {
	for i := 0; i < 5; i++ {
		s.indexDocs(c, &index.Document{
			ID:       fmt.Sprintf("doc-%d", i),
			TextData: fmt.Sprintf("comment %d: users trust isps to protect net neutrality", i),
		})
	}

	hits, err := s.store.Search(context.TODO(), index.SigTermsQuery, 3)
	c.Assert(err, check.IsNil)
	c.Assert(hits, check.HasLen, 3)

	for i := 1; i < len(hits); i++ {
		c.Assert(hits[i-1].Score >= hits[i].Score, check.Equals, true)
	}
}

// TestBulkUpdateTagsDocuments verifies that tagged documents are applied,
// persisted and excluded from subsequent searches.
func (s *BaseSuite) TestBulkUpdateTagsDocuments(c *check.C) {
	s.indexDocs(c,
		&index.Document{ID: "a", TextData: "keep net neutrality"},
		&index.Document{ID: "b", TextData: "stand up for net neutrality"},
		&index.Document{
			ID:       "c",
			TextData: "tell the fcc to protect net neutrality",
			Analysis: map[string]interface{}{"source": "form"},
		},
	)

	applied, err := s.store.BulkUpdate(context.TODO(), []index.Update{
		index.TagUpdate("a", index.SigTermsTag),
		index.TagUpdate("c", index.SigTermsTag),
	})
	c.Assert(err, check.IsNil)
	c.Assert(applied, check.Equals, 2)

	hits, err := s.store.Search(context.TODO(), index.SigTermsQuery, 10)
	c.Assert(err, check.IsNil)
	c.Assert(hits, check.HasLen, 1)
	c.Assert(hits[0].ID, check.Equals, "b")

	// Partial updates must merge with existing tags.
	got, err := s.store.FindByID("c")
	c.Assert(err, check.IsNil)
	c.Assert(got.Analysis, check.DeepEquals, map[string]interface{}{
		"source":                      "form",
		"sentiment_sig_terms_ordered": true,
	})
}

// TestBulkUpdateEmptyBatch verifies that an empty batch is a no-op.
func (s *BaseSuite) TestBulkUpdateEmptyBatch(c *check.C) {
	applied, err := s.store.BulkUpdate(context.TODO(), nil)
	c.Assert(err, check.IsNil)
	c.Assert(applied, check.Equals, 0)
}

// TestBulkUpdateMissingDocument verifies that rejected operations are
// reported without discarding the ones that were applied.
func (s *BaseSuite) TestBulkUpdateMissingDocument(c *check.C) {
	s.indexDocs(c, &index.Document{ID: "present", TextData: "keep net neutrality"})

	applied, err := s.store.BulkUpdate(context.TODO(), []index.Update{
		index.TagUpdate("present", index.SigTermsTag),
		index.TagUpdate("absent", index.SigTermsTag),
	})
	c.Assert(applied, check.Equals, 1)
	c.Assert(errors.Is(err, index.ErrPartialUpdate), check.Equals, true)
	c.Assert(err, check.ErrorMatches, "(?ms).*absent.*")
}

func (s *BaseSuite) indexDocs(c *check.C, docs ...*index.Document) {
	for _, doc := range docs {
		err := s.store.Index(doc)
		c.Assert(err, check.IsNil, check.Commentf("++++Index insert %s++++: %v", doc.ID, err))
	}
}
