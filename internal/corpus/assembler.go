// Package corpus assembles the text handed to the summarizer when answering
// a question. In deep mode sections and items whose titles resemble the
// question are appended to the article summary.
package corpus

import (
	"fmt"
	"iter"
	"math"
	"strings"

	"github.com/hyperjump/seshat/internal/models"
	"github.com/hyperjump/seshat/internal/similarity"
)

// Assemble returns the corpus for question. When deep is false it is the
// article summary, unchanged. Otherwise the summary is followed by the
// content of every relevant section and, within those sections only, of every
// relevant item, in document order and separated by single spaces.
func Assemble(article *models.Article, question string, deep bool, threshold float64) (string, error) {
	if article == nil {
		return "", fmt.Errorf("assemble corpus: %w: nil article", similarity.ErrInvalidInput)
	}
	summary := article.Content.Summary
	if !deep {
		return summary, nil
	}
	if err := ValidateThreshold(threshold); err != nil {
		return "", err
	}

	var parts []string
	if summary != "" {
		parts = append(parts, summary)
	}
	added := 0
	for fragment := range Fragments(article.Content.Sections, question, threshold) {
		parts = append(parts, fragment)
		added++
	}
	if added == 0 {
		return summary, nil
	}
	return strings.Join(parts, " "), nil
}

// ValidateThreshold rejects thresholds that cannot be compared meaningfully.
// Values above 1 are allowed and match nothing.
func ValidateThreshold(threshold float64) error {
	if math.IsNaN(threshold) || threshold < 0 {
		return fmt.Errorf("%w: threshold %v", similarity.ErrInvalidInput, threshold)
	}
	return nil
}

// Relevant reports whether title is within threshold of question.
func Relevant(title, question string, threshold float64) bool {
	return similarity.EditSimilarity(title, question) >= threshold
}

// Sections yields the sections whose title is relevant to question.
func Sections(sections []models.Section, question string, threshold float64) iter.Seq[models.Section] {
	return func(yield func(models.Section) bool) {
		for _, s := range sections {
			if Relevant(s.Title, question, threshold) && !yield(s) {
				return
			}
		}
	}
}

// Items yields the items whose title is relevant to question.
func Items(items []models.Item, question string, threshold float64) iter.Seq[models.Item] {
	return func(yield func(models.Item) bool) {
		for _, it := range items {
			if Relevant(it.Title, question, threshold) && !yield(it) {
				return
			}
		}
	}
}

// Fragments yields the non-blank content pieces of the relevant sections,
// each section followed by its relevant items.
func Fragments(sections []models.Section, question string, threshold float64) iter.Seq[string] {
	return func(yield func(string) bool) {
		for s := range Sections(sections, question, threshold) {
			if !yieldText(yield, s.Content) {
				return
			}
			for it := range Items(s.Items, question, threshold) {
				if !yieldText(yield, it.Content) {
					return
				}
			}
		}
	}
}

func yieldText(yield func(string) bool, text string) bool {
	if strings.TrimSpace(text) == "" {
		return true
	}
	return yield(text)
}
