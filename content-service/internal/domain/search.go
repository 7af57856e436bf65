package domain

// AggregatedSearchResult groups items by kind.
// Total is the number of items returned, not the number of store matches.
type AggregatedSearchResult struct {
	Query         string                `json:"query"`
	Items         map[EntityKind][]Item `json:"items"`
	Total         int                   `json:"total"`
	HasMore       bool                  `json:"has_more"`
	Page          int                   `json:"page"`
	Limit         int                   `json:"limit"`
	ExpandedTerms []string              `json:"expanded_terms,omitempty"`
}

// NewAggregatedSearchResult returns a result with an empty slice per kind.
func NewAggregatedSearchResult(query string, page, limit int) *AggregatedSearchResult {
	items := make(map[EntityKind][]Item, len(Kinds()))
	for _, k := range Kinds() {
		items[k] = []Item{}
	}
	return &AggregatedSearchResult{
		Query: query,
		Items: items,
		Page:  page,
		Limit: limit,
	}
}

// SearchOptions are the paging options of SearchAll.
type SearchOptions struct {
	Page  int
	Limit int
}

// Suggestion is one autocomplete candidate.
type Suggestion struct {
	Text string     `json:"text"`
	Type EntityKind `json:"type"`
	URL  string     `json:"url"`
	ID   string     `json:"id"`
}

// WordCorrection records a single replaced word.
type WordCorrection struct {
	Original  string `json:"original"`
	Corrected string `json:"corrected"`
}

// CorrectionResult is the outcome of spell correction.
type CorrectionResult struct {
	Corrected     string           `json:"corrected"`
	HasCorrection bool             `json:"has_correction"`
	Suggestions   []WordCorrection `json:"suggestions"`
}

// SearchRequest is a submitted search.
type SearchRequest struct {
	Query       string `form:"q"`
	Page        int    `form:"page"`
	Limit       int    `form:"limit"`
	Autocorrect *bool  `form:"autocorrect"`
}

// SearchResponse carries the aggregated result of a submitted search
// together with the correction that was applied, if any.
type SearchResponse struct {
	Query      string                  `json:"query"`
	Correction *CorrectionResult       `json:"correction,omitempty"`
	Result     *AggregatedSearchResult `json:"result"`
}

// SuggestRequest is an autocomplete request.
type SuggestRequest struct {
	Query string `form:"q"`
	Limit int    `form:"limit"`
}
