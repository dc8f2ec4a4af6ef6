// Package storage defines the persistence interface for articles.
package storage

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/hyperjump/seshat/internal/models"
)

// ErrNotFound is returned when no stored article matches a lookup.
var ErrNotFound = errors.New("article not found")

// Storage defines article persistence operations.
type Storage interface {
	// SaveArticle inserts the article or replaces the one with the same URL.
	// ID, Hash and timestamps are filled in on a.
	SaveArticle(ctx context.Context, a *models.Article) error
	GetArticle(ctx context.Context, id string) (*models.Article, error)
	GetByURL(ctx context.Context, url string) (*models.Article, error)
	// FindByTitle returns the oldest article whose title contains pattern, ignoring case.
	FindByTitle(ctx context.Context, pattern string) (*models.Article, error)
	ListArticles(ctx context.Context, offset, limit int) ([]*models.Article, error)
	DeleteArticle(ctx context.Context, id string) error
	// DeleteBySource removes every article imported from source and returns their IDs.
	DeleteBySource(ctx context.Context, source string) ([]string, error)
	// ReplaceSource saves a and removes the other articles from a.Source
	// atomically, returning the removed IDs.
	ReplaceSource(ctx context.Context, a *models.Article) ([]string, error)
	CountArticles(ctx context.Context) (int64, error)

	Close() error
}

// ArticleID returns the stable ID for a canonical URL.
func ArticleID(url string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(url)).String()
}

// ContentHash returns the hex MD5 of an article's text: summary, then every
// section and item title and content.
func ContentHash(c models.Content) string {
	var b strings.Builder
	b.WriteString(c.Summary)
	for _, s := range c.Sections {
		b.WriteString("\n")
		b.WriteString(s.Title)
		b.WriteString("\n")
		b.WriteString(s.Content)
		for _, it := range s.Items {
			b.WriteString("\n")
			b.WriteString(it.Title)
			b.WriteString("\n")
			b.WriteString(it.Content)
		}
	}
	sum := md5.Sum([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
