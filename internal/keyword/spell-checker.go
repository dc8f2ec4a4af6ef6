package keyword

import (
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/hyperjump/seshat/internal/similarity"
)

// Suggestion is a dictionary term close to a misspelled one.
type Suggestion struct {
	Term      string  // The suggested term
	Distance  int     // Edit distance from the original term
	Frequency int     // Number of articles containing Term
	Score     float64 // Higher is better
}

// SpellCheckResult is the outcome of checking a query or subject.
type SpellCheckResult struct {
	OriginalQuery   string
	CorrectedQuery  string
	Suggestions     []Suggestion
	HasCorrections  bool
	MisspelledTerms []string
}

// SpellChecker corrects words against the vocabulary of the article index.
type SpellChecker struct {
	dictionary     TermDictionary
	maxDistance    int
	minFreq        int
	maxSuggestions int

	cacheMu    sync.RWMutex
	termsCache []string
	termSet    map[string]struct{}
	cacheGen   uint64
	cacheValid bool
}

// SpellCheckerOption configures a SpellChecker.
type SpellCheckerOption func(*SpellChecker)

// WithMaxDistance sets the maximum edit distance for suggestions.
func WithMaxDistance(d int) SpellCheckerOption {
	return func(s *SpellChecker) {
		if d > 0 {
			s.maxDistance = d
		}
	}
}

// WithMinFrequency ignores dictionary terms found in fewer than f articles.
func WithMinFrequency(f int) SpellCheckerOption {
	return func(s *SpellChecker) {
		if f >= 0 {
			s.minFreq = f
		}
	}
}

// WithMaxSuggestions caps the suggestions returned per term.
func WithMaxSuggestions(n int) SpellCheckerOption {
	return func(s *SpellChecker) {
		if n > 0 {
			s.maxSuggestions = n
		}
	}
}

// NewSpellChecker creates a SpellChecker over dict.
func NewSpellChecker(dict TermDictionary, opts ...SpellCheckerOption) *SpellChecker {
	s := &SpellChecker{
		dictionary:     dict,
		maxDistance:    2,
		minFreq:        1,
		maxSuggestions: 5,
		termSet:        make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RefreshCache reloads the term cache from the dictionary.
func (s *SpellChecker) RefreshCache() error {
	gen := s.dictionary.Generation()
	terms, err := s.dictionary.GetAllTerms()
	if err != nil {
		return err
	}

	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.termsCache = terms
	s.termSet = make(map[string]struct{}, len(terms))
	for _, t := range terms {
		s.termSet[strings.ToLower(t)] = struct{}{}
	}
	s.cacheGen = gen
	s.cacheValid = true
	return nil
}

// ensureCache reloads the cache when the index changed since the last load.
func (s *SpellChecker) ensureCache() error {
	s.cacheMu.RLock()
	fresh := s.cacheValid && s.cacheGen == s.dictionary.Generation()
	s.cacheMu.RUnlock()
	if fresh {
		return nil
	}
	return s.RefreshCache()
}

// Check corrects each word of query whose analyzed form is not in the
// dictionary. Words the analyzer drops, such as stop words, are kept as they
// are, so the corrected query reads like the original.
func (s *SpellChecker) Check(query string) (*SpellCheckResult, error) {
	if err := s.ensureCache(); err != nil {
		return nil, err
	}

	result := &SpellCheckResult{
		OriginalQuery:   query,
		Suggestions:     make([]Suggestion, 0),
		MisspelledTerms: make([]string, 0),
	}
	words := strings.Fields(query)
	corrected := make([]string, 0, len(words))
	for _, word := range words {
		terms := s.dictionary.QueryTerms(word)
		if len(terms) != 1 || s.known(terms[0]) {
			corrected = append(corrected, word)
			continue
		}
		suggestions := s.Suggest(terms[0])
		if len(suggestions) == 0 {
			corrected = append(corrected, word)
			continue
		}
		result.HasCorrections = true
		result.MisspelledTerms = append(result.MisspelledTerms, word)
		result.Suggestions = append(result.Suggestions, suggestions...)
		corrected = append(corrected, suggestions[0].Term)
	}
	result.CorrectedQuery = strings.Join(corrected, " ")
	return result, nil
}

func (s *SpellChecker) known(term string) bool {
	s.cacheMu.RLock()
	defer s.cacheMu.RUnlock()
	_, ok := s.termSet[strings.ToLower(term)]
	return ok
}

// Suggest returns dictionary terms within the maximum edit distance of term,
// best first. Closer and more frequent terms score higher.
func (s *SpellChecker) Suggest(term string) []Suggestion {
	if err := s.ensureCache(); err != nil {
		return nil
	}

	termLower := strings.ToLower(term)
	termLen := utf8.RuneCountInString(termLower)
	s.cacheMu.RLock()
	terms := s.termsCache
	s.cacheMu.RUnlock()

	suggestions := make([]Suggestion, 0)
	for _, dictTerm := range terms {
		dictLower := strings.ToLower(dictTerm)
		if dictLower == termLower {
			continue
		}
		lenDiff := utf8.RuneCountInString(dictLower) - termLen
		if lenDiff < 0 {
			lenDiff = -lenDiff
		}
		if lenDiff > s.maxDistance {
			continue
		}
		distance := similarity.LevenshteinDistance(termLower, dictLower)
		if distance > s.maxDistance {
			continue
		}
		freq, err := s.dictionary.GetTermFrequency(dictTerm)
		if err != nil || freq < s.minFreq {
			continue
		}
		suggestions = append(suggestions, Suggestion{
			Term:      dictTerm,
			Distance:  distance,
			Frequency: freq,
			Score:     float64(freq) / float64(distance+1),
		})
	}

	sort.Slice(suggestions, func(i, j int) bool {
		if suggestions[i].Score != suggestions[j].Score {
			return suggestions[i].Score > suggestions[j].Score
		}
		return suggestions[i].Term < suggestions[j].Term
	})
	if len(suggestions) > s.maxSuggestions {
		suggestions = suggestions[:s.maxSuggestions]
	}
	return suggestions
}

// IsMisspelled reports whether term is missing from the dictionary.
func (s *SpellChecker) IsMisspelled(term string) bool {
	if err := s.ensureCache(); err != nil {
		return false
	}
	return !s.known(term)
}

// GetSuggestedQuery returns the corrected query, or query itself when
// nothing was corrected.
func (s *SpellChecker) GetSuggestedQuery(query string) string {
	result, err := s.Check(query)
	if err != nil || !result.HasCorrections {
		return query
	}
	return result.CorrectedQuery
}
