package keyword

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	blevequery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/hyperjump/seshat/internal/models"
)

const defaultTitleBoost = 3.0

// indexedArticle is what bleve stores for an article.
type indexedArticle struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
	Body    string `json:"body"`
}

// indexedFields are the analyzed text fields of an indexed article.
var indexedFields = []string{"title", "summary", "body"}

// BleveIndex implements KeywordIndex and TermDictionary using Bleve.
type BleveIndex struct {
	index      bleve.Index
	generation atomic.Uint64
}

// NewBleveIndex creates or opens a Bleve index at path.
// If you change the index mapping in code, remove the index directory to force a full re-index.
func NewBleveIndex(path string) (*BleveIndex, error) {
	if _, err := os.Stat(path); err == nil {
		index, openErr := bleve.Open(path)
		if openErr != nil {
			return nil, fmt.Errorf("failed to open Bleve index: %w", openErr)
		}
		return &BleveIndex{index: index}, nil
	}

	index, err := bleve.New(path, newMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create Bleve index: %w", err)
	}
	return &BleveIndex{index: index}, nil
}

func newMapping() *mapping.IndexMappingImpl {
	im := bleve.NewIndexMapping()
	docMapping := bleve.NewDocumentMapping()
	text := bleve.NewTextFieldMapping()
	text.Analyzer = standard.Name
	for _, field := range indexedFields {
		docMapping.AddFieldMappingsAt(field, text)
	}
	im.AddDocumentMapping("article", docMapping)
	im.DefaultType = "article"
	im.DefaultMapping = docMapping
	return im
}

// Index adds or replaces an article under its ID.
func (b *BleveIndex) Index(ctx context.Context, a *models.Article) error {
	if a.ID == "" {
		return fmt.Errorf("cannot index article %q without id", a.Title)
	}
	if err := b.index.Index(a.ID, toIndexed(a)); err != nil {
		return err
	}
	b.generation.Add(1)
	return nil
}

func toIndexed(a *models.Article) indexedArticle {
	var body strings.Builder
	for _, s := range a.Content.Sections {
		body.WriteString(s.Title)
		body.WriteString(" ")
		body.WriteString(s.Content)
		for _, it := range s.Items {
			body.WriteString(" ")
			body.WriteString(it.Title)
			body.WriteString(" ")
			body.WriteString(it.Content)
		}
		body.WriteString("\n")
	}
	return indexedArticle{
		Title:   strings.ReplaceAll(a.Title, "_", " "),
		Summary: a.Content.Summary,
		Body:    body.String(),
	}
}

// Search runs title and text queries separately and merges them additively,
// with title scores multiplied by opts.TitleBoost.
func (b *BleveIndex) Search(ctx context.Context, query string, limit int, opts *SearchOptions) ([]*KeywordResult, error) {
	titleBoost := defaultTitleBoost
	fuzzy := false
	fuzziness := 2
	if opts != nil {
		if opts.TitleBoost > 0 {
			titleBoost = opts.TitleBoost
		}
		fuzzy = opts.FuzzyEnabled
		if opts.Fuzziness > 0 {
			fuzziness = opts.Fuzziness
		}
	}
	if limit <= 0 {
		limit = 10
	}
	reqSize := max(limit*2, 50)

	scores := make(map[string]float64)
	for _, field := range indexedFields {
		q := b.buildQuery(query, field, fuzzy, fuzziness)
		req := bleve.NewSearchRequestOptions(q, reqSize, 0, false)
		res, err := b.index.SearchInContext(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("Bleve %s search failed: %w", field, err)
		}
		weight := 1.0
		if field == "title" {
			weight = titleBoost
		}
		for _, hit := range res.Hits {
			scores[hit.ID] += hit.Score * weight
		}
	}

	out := make([]*KeywordResult, 0, len(scores))
	for id, score := range scores {
		out = append(out, &KeywordResult{ID: id, Score: score})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].ID < out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// buildQuery returns a match query on field, or a disjunction of fuzzy term
// queries when fuzzy is set.
func (b *BleveIndex) buildQuery(query, field string, fuzzy bool, fuzziness int) blevequery.Query {
	terms := strings.Fields(strings.ToLower(query))
	if !fuzzy || len(terms) == 0 {
		mq := bleve.NewMatchQuery(query)
		mq.SetField(field)
		return mq
	}
	queries := make([]blevequery.Query, 0, len(terms))
	for _, term := range terms {
		fq := bleve.NewFuzzyQuery(term)
		fq.SetFuzziness(fuzziness)
		fq.SetField(field)
		queries = append(queries, fq)
	}
	return bleve.NewDisjunctionQuery(queries...)
}

// Delete removes an article from the index.
func (b *BleveIndex) Delete(ctx context.Context, id string) error {
	if err := b.index.Delete(id); err != nil {
		return err
	}
	b.generation.Add(1)
	return nil
}

// DocCount returns the number of indexed articles.
func (b *BleveIndex) DocCount() (uint64, error) {
	return b.index.DocCount()
}

// GetTermDocFrequency returns the number of articles with term in any field.
func (b *BleveIndex) GetTermDocFrequency(term string) (int, error) {
	queries := make([]blevequery.Query, 0, len(indexedFields))
	for _, field := range indexedFields {
		tq := bleve.NewTermQuery(strings.ToLower(term))
		tq.SetField(field)
		queries = append(queries, tq)
	}
	req := bleve.NewSearchRequestOptions(bleve.NewDisjunctionQuery(queries...), 0, 0, false)
	res, err := b.index.Search(req)
	if err != nil {
		return 0, fmt.Errorf("failed to search for term frequency: %w", err)
	}
	return int(res.Total), nil
}

// GetTermFrequency is GetTermDocFrequency; it satisfies TermDictionary.
func (b *BleveIndex) GetTermFrequency(term string) (int, error) {
	return b.GetTermDocFrequency(term)
}

// ContainsTerm reports whether any article contains term.
func (b *BleveIndex) ContainsTerm(term string) (bool, error) {
	freq, err := b.GetTermDocFrequency(term)
	if err != nil {
		return false, err
	}
	return freq > 0, nil
}

// GetAllTerms returns the distinct terms of every indexed field.
func (b *BleveIndex) GetAllTerms() ([]string, error) {
	terms := make([]string, 0)
	seen := make(map[string]struct{})
	for _, field := range indexedFields {
		dict, err := b.index.FieldDict(field)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s terms: %w", field, err)
		}
		for {
			entry, err := dict.Next()
			if err != nil {
				_ = dict.Close()
				return nil, fmt.Errorf("failed to read %s terms: %w", field, err)
			}
			if entry == nil {
				break
			}
			if _, ok := seen[entry.Term]; !ok {
				seen[entry.Term] = struct{}{}
				terms = append(terms, entry.Term)
			}
		}
		_ = dict.Close()
	}
	return terms, nil
}

// QueryTerms runs text through the analyzer used for indexed fields.
func (b *BleveIndex) QueryTerms(text string) []string {
	analyzer := b.index.Mapping().AnalyzerNamed(standard.Name)
	if analyzer == nil {
		return strings.Fields(strings.ToLower(text))
	}
	tokens := analyzer.Analyze([]byte(text))
	terms := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		terms = append(terms, string(tok.Term))
	}
	return terms
}

// Generation returns a counter bumped by every Index and Delete.
func (b *BleveIndex) Generation() uint64 {
	return b.generation.Load()
}

// Close closes the Bleve index.
func (b *BleveIndex) Close() error {
	return b.index.Close()
}
