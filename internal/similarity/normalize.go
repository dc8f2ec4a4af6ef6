// Package similarity scores how related two fragments of text are.
//
// Two metrics live here. Similarity compares stemmed token sets and is used
// for sentence-level relevance. EditSimilarity is a character-level
// Levenshtein ratio used for short title comparisons.
package similarity

import (
	"errors"
	"unicode/utf8"

	porterstemmer "github.com/blevesearch/go-porterstemmer"
	"github.com/blevesearch/segment"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrInvalidInput is returned when text cannot be normalized.
var ErrInvalidInput = errors.New("invalid input")

// stopWords is read-only after init.
var stopWords = map[string]struct{}{
	"a":     {},
	"the":   {},
	"to":    {},
	"when":  {},
	"about": {},
	"by":    {},
	"and":   {},
	"with":  {},
}

// isStopWord expects word already lowercased.
func isStopWord(word string) bool {
	_, ok := stopWords[word]
	return ok
}

// Normalize splits text on word boundaries, drops stopwords and stems what
// remains. Order is preserved and duplicates are kept.
func Normalize(text string) ([]string, error) {
	if !utf8.ValidString(text) {
		return nil, ErrInvalidInput
	}
	tokens := Tokenize(text)
	stems := make([]string, 0, len(tokens))
	caser := cases.Lower(language.Und)
	for _, tok := range tokens {
		tok = caser.String(tok)
		if isStopWord(tok) {
			continue
		}
		stems = append(stems, porterstemmer.StemString(tok))
	}
	return stems, nil
}

// Tokenize returns the word segments of text using Unicode word boundaries.
// Punctuation and whitespace segments are dropped.
func Tokenize(text string) []string {
	if text == "" {
		return nil
	}
	var words []string
	seg := segment.NewWordSegmenterDirect([]byte(text))
	for seg.Segment() {
		if seg.Type() == segment.None {
			continue
		}
		words = append(words, seg.Text())
	}
	return words
}

// lower builds a fresh Caser per call; Casers are not safe for concurrent use.
func lower(s string) string {
	return cases.Lower(language.Und).String(s)
}
