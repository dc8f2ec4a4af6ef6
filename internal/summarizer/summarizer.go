// Package summarizer builds extractive summaries: it ranks the sentences of a
// text by similarity to a reference and keeps the best ones in reading order.
package summarizer

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/hyperjump/seshat/internal/similarity"
)

// ErrComputation is returned when a sentence score is not a finite number.
var ErrComputation = errors.New("computation error")

// ScoredSentence is a sentence with its position in the source and its
// relevance to the reference.
type ScoredSentence struct {
	Index int     `json:"index"`
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

// Summarize keeps the budget sentences of text most similar to its first
// sentence.
func Summarize(text string, budget int) (string, error) {
	if budget <= 0 {
		return "", nil
	}
	sents, err := Split(text)
	if err != nil {
		return "", err
	}
	if len(sents) == 0 {
		return "", nil
	}
	return summarize(sents[0], sents, budget)
}

// SummarizeWithQuestion keeps the budget sentences of text most similar to
// question.
func SummarizeWithQuestion(question, text string, budget int) (string, error) {
	if budget <= 0 {
		return "", nil
	}
	sents, err := Split(text)
	if err != nil {
		return "", err
	}
	if len(sents) == 0 {
		return "", nil
	}
	return summarize(question, sents, budget)
}

func summarize(reference string, sents []string, budget int) (string, error) {
	scored, err := Score(reference, sents)
	if err != nil {
		return "", err
	}
	return Join(Select(scored, budget)), nil
}

// Score rates every sentence against reference. The result has one entry per
// sentence, in input order.
func Score(reference string, sents []string) ([]ScoredSentence, error) {
	ref, err := similarity.Normalize(reference)
	if err != nil {
		return nil, fmt.Errorf("normalize reference: %w", err)
	}
	scored := make([]ScoredSentence, len(sents))
	for i, s := range sents {
		tokens, err := similarity.Normalize(s)
		if err != nil {
			return nil, fmt.Errorf("normalize sentence %d: %w", i, err)
		}
		score := similarity.TokenSimilarity(ref, tokens)
		if math.IsNaN(score) || math.IsInf(score, 0) {
			return nil, fmt.Errorf("%w: sentence %d scored %v", ErrComputation, i, score)
		}
		scored[i] = ScoredSentence{Index: i, Text: s, Score: score}
	}
	return scored, nil
}

// Select returns the budget highest scoring sentences, restored to source
// order. Equal scores keep their input order when ranked. scored is not
// modified.
func Select(scored []ScoredSentence, budget int) []ScoredSentence {
	if budget <= 0 || len(scored) == 0 {
		return nil
	}
	ranked := slices.Clone(scored)
	slices.SortStableFunc(ranked, func(a, b ScoredSentence) int {
		return cmp.Compare(b.Score, a.Score)
	})
	if budget < len(ranked) {
		ranked = ranked[:budget]
	}
	slices.SortFunc(ranked, func(a, b ScoredSentence) int {
		return cmp.Compare(a.Index, b.Index)
	})
	return ranked
}

// Join concatenates sentence texts with single spaces. There is no trailing
// separator.
func Join(sents []ScoredSentence) string {
	texts := make([]string, len(sents))
	for i, s := range sents {
		texts[i] = s.Text
	}
	return strings.Join(texts, " ")
}
