// Package oracle answers summary, article, and question requests about a
// subject, fetching and storing the article on first use.
package oracle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/seshat/internal/corpus"
	"github.com/hyperjump/seshat/internal/fetch"
	"github.com/hyperjump/seshat/internal/keyword"
	"github.com/hyperjump/seshat/internal/models"
	"github.com/hyperjump/seshat/internal/storage"
	"github.com/hyperjump/seshat/internal/summarizer"
)

var (
	// ErrNoSubject is returned when a request names no subject.
	ErrNoSubject = errors.New("no subject")
	// ErrNotFound is returned when no article can be found for a subject.
	ErrNotFound = errors.New("subject not found")
)

// Defaults are applied to requests that leave an option unset.
type Defaults struct {
	Lines     int
	Threshold float64
	Deep      bool
}

// DefaultDefaults returns the built-in request defaults.
func DefaultDefaults() Defaults {
	return Defaults{Lines: 100, Threshold: 0.5, Deep: false}
}

// Service resolves subjects to articles and summarizes them.
type Service struct {
	storage      storage.Storage
	keywordIndex keyword.KeywordIndex
	fetcher      fetch.Fetcher
	spell        *keyword.SpellChecker
	defaults     Defaults
	logger       *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithSpellChecker corrects misspelled subjects that nothing else resolves
// and adds suggestions to searches.
func WithSpellChecker(sc *keyword.SpellChecker) Option {
	return func(s *Service) { s.spell = sc }
}

// WithDefaults overrides the request defaults. Non-positive lines keep the built-in value.
func WithDefaults(d Defaults) Option {
	return func(s *Service) {
		if d.Lines <= 0 {
			d.Lines = s.defaults.Lines
		}
		s.defaults = d
	}
}

// NewService creates a service. fetcher may be nil, in which case only
// stored articles are served.
func NewService(store storage.Storage, kw keyword.KeywordIndex, fetcher fetch.Fetcher, opts ...Option) *Service {
	s := &Service{
		storage:      store,
		keywordIndex: kw,
		fetcher:      fetcher,
		defaults:     DefaultDefaults(),
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Defaults returns the request defaults in effect.
func (s *Service) Defaults() Defaults {
	return s.defaults
}

// Resolve returns the article for subject: a stored article whose title
// contains subject, or else one fetched, stored, and indexed now. When both
// miss, the subject is spell corrected against the index and looked up again.
func (s *Service) Resolve(ctx context.Context, subject string) (*models.Article, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return nil, ErrNoSubject
	}

	a, err := s.storage.FindByTitle(ctx, subject)
	if err == nil {
		s.logger.Debug("article found in storage", zap.String("subject", subject), zap.String("id", a.ID))
		return a, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up %q: %w", subject, err)
	}
	if s.fetcher == nil {
		return s.resolveCorrected(ctx, subject, fmt.Errorf("%w: %q", ErrNotFound, subject))
	}

	fetched, err := s.fetcher.Find(ctx, subject)
	if err != nil {
		return s.resolveCorrected(ctx, subject, fmt.Errorf("%w: %q: %w", ErrNotFound, subject, err))
	}

	// The subject may resolve to an article stored under another title.
	if stored, err := s.storage.GetByURL(ctx, fetched.URL); err == nil {
		return stored, nil
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up %s: %w", fetched.URL, err)
	}

	if err := s.storage.SaveArticle(ctx, fetched); err != nil {
		return nil, fmt.Errorf("failed to store article: %w", err)
	}
	if err := s.keywordIndex.Index(ctx, fetched); err != nil {
		s.logger.Warn("failed to index article", zap.String("id", fetched.ID), zap.Error(err))
	}
	s.logger.Info("article fetched",
		zap.String("subject", subject),
		zap.String("title", fetched.Title),
		zap.String("url", fetched.URL))
	return fetched, nil
}

// resolveCorrected looks subject up again with its spelling corrected. It
// returns notFound when there is no correction or the corrected title is not stored.
func (s *Service) resolveCorrected(ctx context.Context, subject string, notFound error) (*models.Article, error) {
	if s.spell == nil {
		return nil, notFound
	}
	res, err := s.spell.Check(subject)
	if err != nil {
		s.logger.Warn("spell check failed", zap.String("subject", subject), zap.Error(err))
		return nil, notFound
	}
	if !res.HasCorrections {
		return nil, notFound
	}
	a, err := s.storage.FindByTitle(ctx, res.CorrectedQuery)
	if err != nil {
		return nil, notFound
	}
	s.logger.Debug("subject corrected",
		zap.String("subject", subject),
		zap.String("corrected", res.CorrectedQuery),
		zap.String("id", a.ID))
	return a, nil
}

// Summary summarizes the lead of the subject's article.
func (s *Service) Summary(ctx context.Context, req *models.SummaryRequest) (*models.SummaryResponse, error) {
	if strings.TrimSpace(req.Subject) == "" {
		return nil, ErrNoSubject
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	a, err := s.Resolve(ctx, req.Subject)
	if err != nil {
		return nil, err
	}
	out, err := summarizer.Summarize(a.Content.Summary, s.lines(req.Lines))
	if err != nil {
		return nil, fmt.Errorf("failed to summarize %q: %w", a.Title, err)
	}
	return &models.SummaryResponse{Subject: req.Subject, Title: a.Title, Summary: out}, nil
}

// Article returns the public view of the subject's article.
func (s *Service) Article(ctx context.Context, subject string) (*models.ArticleView, error) {
	a, err := s.Resolve(ctx, subject)
	if err != nil {
		return nil, err
	}
	return a.View(), nil
}

// Answer summarizes the subject's article with respect to a question. In deep
// mode the corpus includes sections and items whose titles resemble the question.
func (s *Service) Answer(ctx context.Context, req *models.AnswerRequest) (*models.AnswerResponse, error) {
	if strings.TrimSpace(req.Subject) == "" {
		return nil, ErrNoSubject
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	a, err := s.Resolve(ctx, req.Subject)
	if err != nil {
		return nil, err
	}
	threshold := s.defaults.Threshold
	if req.Threshold != nil {
		threshold = *req.Threshold
	}
	deep := req.Deep || s.defaults.Deep

	text, err := corpus.Assemble(a, req.Question, deep, threshold)
	if err != nil {
		return nil, err
	}
	out, err := summarizer.SummarizeWithQuestion(req.Question, text, s.lines(req.Lines))
	if err != nil {
		return nil, fmt.Errorf("failed to answer %q: %w", req.Question, err)
	}
	return &models.AnswerResponse{
		Subject:  req.Subject,
		Question: req.Question,
		Title:    a.Title,
		Answer:   out,
	}, nil
}

// Summarize summarizes raw text, against its question when one is given.
func (s *Service) Summarize(ctx context.Context, req *models.SummarizeRequest) (*models.SummarizeResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var (
		out string
		err error
	)
	if q := strings.TrimSpace(req.Question); q != "" {
		out, err = summarizer.SummarizeWithQuestion(q, req.Text, s.lines(req.Lines))
	} else {
		out, err = summarizer.Summarize(req.Text, s.lines(req.Lines))
	}
	if err != nil {
		return nil, err
	}
	return &models.SummarizeResponse{Summary: out}, nil
}

// Search runs a keyword search over stored articles. With a spell checker,
// fuzzy or empty searches carry the corrected query as a suggestion.
func (s *Service) Search(ctx context.Context, q *models.SearchQuery) (*models.SearchResponse, error) {
	start := time.Now()
	if err := q.Validate(); err != nil {
		return nil, err
	}
	hits, err := s.keywordIndex.Search(ctx, q.Query, q.Limit, &keyword.SearchOptions{FuzzyEnabled: q.Fuzzy})
	if err != nil {
		return nil, fmt.Errorf("keyword search failed: %w", err)
	}

	results := make([]*models.SearchResult, 0, len(hits))
	for _, hit := range hits {
		a, err := s.storage.GetArticle(ctx, hit.ID)
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Debug("skipping stale index entry", zap.String("id", hit.ID))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load article %s: %w", hit.ID, err)
		}
		results = append(results, &models.SearchResult{
			Article: a,
			Score:   hit.Score,
			Rank:    len(results) + 1,
		})
	}
	return &models.SearchResponse{
		Results:    results,
		Total:      len(results),
		QueryTime:  time.Since(start).Milliseconds(),
		Query:      q.Query,
		Suggestion: s.suggest(q, len(results)),
	}, nil
}

func (s *Service) suggest(q *models.SearchQuery, hits int) string {
	if s.spell == nil || (!q.Fuzzy && hits > 0) {
		return ""
	}
	res, err := s.spell.Check(q.Query)
	if err != nil {
		s.logger.Warn("spell check failed", zap.String("query", q.Query), zap.Error(err))
		return ""
	}
	if !res.HasCorrections {
		return ""
	}
	return res.CorrectedQuery
}

func (s *Service) lines(n int) int {
	if n <= 0 {
		return s.defaults.Lines
	}
	return n
}
