package models

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrInvalidRequest is wrapped by every request validation failure.
var ErrInvalidRequest = errors.New("invalid request")

// SummaryRequest asks for a summary of a subject in a number of sentences.
// Zero Lines means the configured default.
type SummaryRequest struct {
	Subject string `json:"subject"`
	Lines   int    `json:"lines,omitempty"`
}

// Validate ensures the subject is set.
func (r *SummaryRequest) Validate() error {
	r.Subject = strings.TrimSpace(r.Subject)
	if r.Subject == "" {
		return fmt.Errorf("%w: subject cannot be empty", ErrInvalidRequest)
	}
	return nil
}

// AnswerRequest asks a question about a subject. Deep includes the sections
// and items whose titles are close to the question. A nil Threshold means the
// configured default.
type AnswerRequest struct {
	Subject   string   `json:"subject"`
	Question  string   `json:"question"`
	Lines     int      `json:"lines,omitempty"`
	Deep      bool     `json:"deep,omitempty"`
	Threshold *float64 `json:"threshold,omitempty"`
}

// Validate ensures subject and question are set and the threshold is usable.
func (r *AnswerRequest) Validate() error {
	r.Subject = strings.TrimSpace(r.Subject)
	r.Question = strings.TrimSpace(r.Question)
	if r.Subject == "" {
		return fmt.Errorf("%w: subject cannot be empty", ErrInvalidRequest)
	}
	if r.Question == "" {
		return fmt.Errorf("%w: question cannot be empty", ErrInvalidRequest)
	}
	if r.Threshold != nil && (math.IsNaN(*r.Threshold) || *r.Threshold < 0) {
		return fmt.Errorf("%w: threshold must be a non-negative number", ErrInvalidRequest)
	}
	return nil
}

// SummarizeRequest summarizes raw text without looking anything up. When
// Question is empty the text's first sentence is the reference.
type SummarizeRequest struct {
	Text     string `json:"text"`
	Question string `json:"question,omitempty"`
	Lines    int    `json:"lines,omitempty"`
}

// Validate ensures there is text to summarize.
func (r *SummarizeRequest) Validate() error {
	if strings.TrimSpace(r.Text) == "" {
		return fmt.Errorf("%w: text cannot be empty", ErrInvalidRequest)
	}
	return nil
}

// SearchQuery is a keyword search over stored articles.
type SearchQuery struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
	Fuzzy bool   `json:"fuzzy,omitempty"`
}

// Validate ensures the query is set and clamps the limit to [1, 100].
func (q *SearchQuery) Validate() error {
	if strings.TrimSpace(q.Query) == "" {
		return fmt.Errorf("%w: query cannot be empty", ErrInvalidRequest)
	}
	if q.Limit <= 0 {
		q.Limit = 10
	}
	if q.Limit > 100 {
		q.Limit = 100
	}
	return nil
}
