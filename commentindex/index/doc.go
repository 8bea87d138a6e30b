package index

// Document defines a public comment stored in the comments index.
type Document struct {
	// Unique key of the document within the index.
	ID string

	// Free-text body of the comment.
	TextData string

	// Classification tags set by earlier analysis passes, keyed by tag
	// name (without the "analysis." prefix).
	Analysis map[string]interface{}
}

// Hit is a single scored match returned by a search.
type Hit struct {
	ID       string
	Score    float64
	Document *Document
}

// Update describes a partial-update operation for a single document.
type Update struct {
	// ID of the document to update.
	ID string

	// Fields to merge into the stored document. Dotted keys address
	// nested fields, ie "analysis.titleii".
	Doc map[string]interface{}
}
