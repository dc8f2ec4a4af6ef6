// Package fetch retrieves full articles from an external knowledge source.
package fetch

import (
	"context"
	"errors"

	"github.com/hyperjump/seshat/internal/models"
)

// ErrNotFound is returned when the source has no article for a subject.
var ErrNotFound = errors.New("article not found")

// Fetcher retrieves a complete article for a subject.
type Fetcher interface {
	Find(ctx context.Context, subject string) (*models.Article, error)
}
