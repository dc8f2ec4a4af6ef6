// Package keyword provides keyword search over stored articles.
package keyword

import (
	"context"

	"github.com/hyperjump/seshat/internal/models"
)

// SearchOptions optional parameters for keyword search. Nil means use defaults.
type SearchOptions struct {
	// TitleBoost multiplies the score contribution from matches in the title field.
	// Use 1.0 for no boost.
	TitleBoost float64
	// FuzzyEnabled matches terms within Fuzziness edits of the query terms.
	FuzzyEnabled bool
	// Fuzziness is the maximum Levenshtein edit distance for fuzzy matching (1 or 2).
	Fuzziness int
}

// KeywordIndex defines keyword search operations.
type KeywordIndex interface {
	Index(ctx context.Context, a *models.Article) error
	Search(ctx context.Context, query string, limit int, opts *SearchOptions) ([]*KeywordResult, error)
	Delete(ctx context.Context, id string) error
	DocCount() (uint64, error)
	Close() error
}

// KeywordResult is a single keyword search hit.
type KeywordResult struct {
	ID    string
	Score float64
}

// TermDictionary exposes the indexed vocabulary for spell checking.
type TermDictionary interface {
	// GetAllTerms returns every distinct indexed term.
	GetAllTerms() ([]string, error)
	// GetTermFrequency returns the number of articles containing term.
	GetTermFrequency(term string) (int, error)
	ContainsTerm(term string) (bool, error)
	// QueryTerms analyzes text the way indexed fields are analyzed.
	QueryTerms(text string) []string
	// Generation changes whenever the index content changes.
	Generation() uint64
}
