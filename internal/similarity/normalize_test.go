package similarity

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"empty", "", []string{}},
		{"only punctuation", "... !?", []string{}},
		{"only stopwords", "The and a with", []string{}},
		{"stopwords any case", "THE Cats AND Dogs", []string{"cat", "dog"}},
		{"stems plurals", "cats dogs", []string{"cat", "dog"}},
		{"keeps duplicates", "cat cats", []string{"cat", "cat"}},
		{"punctuation boundaries", "mammals, cats; dogs.", []string{"mammal", "cat", "dog"}},
		{"numbers are tokens", "born in 1990", []string{"born", "in", "1990"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalize_invalidUTF8(t *testing.T) {
	_, err := Normalize(string([]byte{0xff, 0xfe, 'a'}))
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestIsStopWord(t *testing.T) {
	for _, w := range []string{"a", "the", "to", "when", "about", "by", "and", "with"} {
		assert.True(t, isStopWord(w), w)
	}
	for _, w := range []string{"cat", "is", "an", "The", ""} {
		assert.False(t, isStopWord(w), w)
	}
}

func TestNormalize_stopwordsMatchedAfterLowering(t *testing.T) {
	got, err := Normalize("ABOUT With WHEN cats")
	require.NoError(t, err)
	assert.Equal(t, []string{"cat"}, got)
}

func TestTokenize(t *testing.T) {
	assert.Nil(t, Tokenize(""))
	assert.Equal(t, []string{"Hello", "world"}, Tokenize("Hello, world!"))
}
