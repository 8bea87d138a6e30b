package index

const (
	// TextField holds the comment body.
	TextField = "text_data"

	// AnalysisField is the object that holds classification tags.
	AnalysisField = "analysis"

	// TitleIITag is set on comments classified by the Title II regex pass.
	TitleIITag = AnalysisField + ".titleii"

	// ManualSentimentTag is set on comments tagged by hand.
	ManualSentimentTag = AnalysisField + ".sentiment_manual"

	// SigTermsTag is set on comments tagged by the significant terms pass.
	SigTermsTag = AnalysisField + ".sentiment_sig_terms_ordered"
)

// SigTermsQuery selects untagged comments that match the significant terms
// extracted from positively tagged comments. The phrase clause boosts
// "net neutrality" since both of its terms score high on their own.
var SigTermsQuery = Query{
	Fields: []string{TextField, TextField + ".english"},
	Clauses: []Clause{
		{
			Type:       QueryTypeMatch,
			Expression: "action cannot current despise escape isps job keep place protect stand tell trusted users",
		},
		{
			Type:       QueryTypeMatch,
			Expression: "keep stand tell net neutrality",
		},
		{
			Type:       QueryTypePhrase,
			Expression: "net neutrality",
		},
	},
	MinimumShouldMatch: 1,
	ExcludeFields:      []string{TitleIITag, ManualSentimentTag, SigTermsTag},
	Source:             []string{TextField},
}

// TagUpdate returns an update that sets tag to true on the document with
// the given ID.
func TagUpdate(id, tag string) Update {
	return Update{
		ID:  id,
		Doc: map[string]interface{}{tag: true},
	}
}
