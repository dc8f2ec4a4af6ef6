package models

// SummaryResponse is the result of a summary request.
type SummaryResponse struct {
	Subject string `json:"subject"`
	Title   string `json:"title,omitempty"`
	Summary string `json:"summary"`
}

// AnswerResponse is the result of an answer request.
type AnswerResponse struct {
	Subject  string `json:"subject"`
	Question string `json:"question"`
	Title    string `json:"title,omitempty"`
	Answer   string `json:"answer"`
}

// SummarizeResponse is the result of summarizing raw text.
type SummarizeResponse struct {
	Summary string `json:"summary"`
}

// SearchResult is a single stored article hit.
type SearchResult struct {
	Article *Article `json:"article"`
	Score   float64  `json:"score"`
	Rank    int      `json:"rank"`
}

// SearchResponse is the response for a search request.
type SearchResponse struct {
	Results   []*SearchResult `json:"results"`
	Total     int             `json:"total"`
	QueryTime int64           `json:"query_time_ms"`
	Query     string          `json:"query"`
	// Suggestion is a spelling-corrected query, set when one exists.
	Suggestion string `json:"suggestion,omitempty"`
}
