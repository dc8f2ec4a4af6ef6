package summarizer

import (
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"

	"github.com/hyperjump/seshat/internal/similarity"
)

// loadTokenizer builds the English Punkt tokenizer once; it only reads its
// training data afterwards.
var loadTokenizer = sync.OnceValues(func() (*sentences.DefaultSentenceTokenizer, error) {
	return english.NewSentenceTokenizer(nil)
})

// Split breaks text into trimmed, non-empty sentences in document order.
func Split(text string) ([]string, error) {
	if !utf8.ValidString(text) {
		return nil, fmt.Errorf("split sentences: %w", similarity.ErrInvalidInput)
	}
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	tokenizer, err := loadTokenizer()
	if err != nil {
		return nil, fmt.Errorf("failed to load sentence tokenizer: %w", err)
	}
	var out []string
	for _, s := range tokenizer.Tokenize(text) {
		if t := strings.TrimSpace(s.Text); t != "" {
			out = append(out, t)
		}
	}
	return out, nil
}
