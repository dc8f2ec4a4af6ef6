// Package importer loads article files (YAML or JSON) into storage and the keyword index.
package importer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/hyperjump/seshat/internal/fileid"
	"github.com/hyperjump/seshat/internal/keyword"
	"github.com/hyperjump/seshat/internal/models"
	"github.com/hyperjump/seshat/internal/storage"
)

// DefaultExtensions are the article file types read when none are configured.
var DefaultExtensions = []string{".yaml", ".yml", ".json"}

// Importer imports article files into storage and the keyword index.
type Importer struct {
	storage      storage.Storage
	keywordIndex keyword.KeywordIndex
	extensions   []string
	logger       *zap.Logger // optional; when set, logs debug events
}

// ImporterOption configures an Importer.
type ImporterOption func(*Importer)

// WithLogger sets a logger for debug output (file imported, file removed, etc.).
func WithLogger(l *zap.Logger) ImporterOption {
	return func(im *Importer) { im.logger = l }
}

// WithExtensions limits imports to files with the given extensions.
func WithExtensions(exts []string) ImporterOption {
	return func(im *Importer) {
		if len(exts) > 0 {
			im.extensions = exts
		}
	}
}

// NewImporter creates an importer writing to store and kw.
func NewImporter(store storage.Storage, kw keyword.KeywordIndex, opts ...ImporterOption) *Importer {
	im := &Importer{
		storage:      store,
		keywordIndex: kw,
		extensions:   DefaultExtensions,
	}
	for _, opt := range opts {
		opt(im)
	}
	return im
}

// Extensions returns the file extensions this importer reads.
func (im *Importer) Extensions() []string {
	return append([]string(nil), im.extensions...)
}

// LoadArticle parses a single article from YAML or JSON.
func LoadArticle(data []byte) (*models.Article, error) {
	var a models.Article
	if err := yaml.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("failed to parse article: %w", err)
	}
	a.Title = strings.TrimSpace(a.Title)
	if a.Title == "" {
		return nil, errors.New("article has no title")
	}
	return &a, nil
}

// ImportFile reads the article at path and saves and indexes it. An article
// without a URL is keyed by its file URL. Re-importing an unchanged file only
// refreshes the keyword index.
func (im *Importer) ImportFile(ctx context.Context, path string) (*models.Article, error) {
	if im.logger != nil {
		im.logger.Debug("importer importing file", zap.String("path", path))
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("absolute path: %w", err)
	}
	if !extensionAllowed(filepath.Ext(absPath), im.extensions) {
		return nil, fmt.Errorf("extension %q not in allowed list", filepath.Ext(absPath))
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("not a regular file: %s", absPath)
	}
	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	a, err := LoadArticle(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", absPath, err)
	}

	if a.URL == "" {
		a.URL = fileid.URL(absPath)
	}
	a.Source = fileid.Source(absPath)
	a.ID = ""
	a.Hash = storage.ContentHash(a.Content)

	if existing, getErr := im.storage.GetByURL(ctx, a.URL); getErr == nil &&
		existing.Source == a.Source && existing.Hash == a.Hash && existing.Title == a.Title {
		// Keeps the keyword index populated when it was rebuilt empty.
		if err := im.keywordIndex.Index(ctx, existing); err != nil {
			return nil, fmt.Errorf("failed to index keywords: %w", err)
		}
		if im.logger != nil {
			im.logger.Debug("importer skipping unchanged file", zap.String("path", absPath))
		}
		return existing, nil
	}

	// The file may previously have named a different URL.
	stale, err := im.storage.ReplaceSource(ctx, a)
	if err != nil {
		return nil, fmt.Errorf("failed to store article: %w", err)
	}
	if err := im.keywordIndex.Index(ctx, a); err != nil {
		return nil, fmt.Errorf("failed to index keywords: %w", err)
	}
	for _, id := range stale {
		if err := im.keywordIndex.Delete(ctx, id); err != nil {
			return nil, fmt.Errorf("failed to delete from keyword index: %w", err)
		}
	}
	if im.logger != nil {
		im.logger.Debug("importer file imported", zap.String("path", absPath), zap.String("article_id", a.ID))
	}
	return a, nil
}

// RemoveFile removes the articles imported from path.
func (im *Importer) RemoveFile(ctx context.Context, path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("absolute path: %w", err)
	}
	if im.logger != nil {
		im.logger.Debug("importer removing file", zap.String("path", absPath))
	}
	return im.removeSource(ctx, fileid.Source(absPath))
}

func (im *Importer) removeSource(ctx context.Context, source string) error {
	ids, err := im.storage.DeleteBySource(ctx, source)
	if err != nil {
		return fmt.Errorf("failed to delete articles: %w", err)
	}
	for _, id := range ids {
		if err := im.keywordIndex.Delete(ctx, id); err != nil {
			return fmt.Errorf("failed to delete from keyword index: %w", err)
		}
	}
	return nil
}

// ImportDir walks dir and imports each regular file with an allowed
// extension. When recursive is false only dir itself is read. Returns the
// number of files imported and the first error encountered, if any.
func (im *Importer) ImportDir(ctx context.Context, dir string, recursive bool) (n int, err error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return 0, fmt.Errorf("absolute path: %w", err)
	}
	info, err := os.Stat(absDir)
	if err != nil {
		return 0, fmt.Errorf("stat directory: %w", err)
	}
	if !info.IsDir() {
		return 0, fmt.Errorf("not a directory: %s", absDir)
	}
	err = filepath.WalkDir(absDir, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if !recursive && path != absDir {
				return filepath.SkipDir
			}
			return nil
		}
		if !extensionAllowed(filepath.Ext(path), im.extensions) {
			return nil
		}
		// Resolve symlinks so we only import regular files
		finfo, statErr := os.Stat(path)
		if statErr != nil || !finfo.Mode().IsRegular() {
			return nil
		}
		if _, importErr := im.ImportFile(ctx, path); importErr != nil {
			return importErr
		}
		n++
		return nil
	})
	return n, err
}

func extensionAllowed(ext string, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	extNorm := strings.ToLower(strings.TrimPrefix(ext, "."))
	for _, a := range allowed {
		if strings.ToLower(strings.TrimPrefix(a, ".")) == extNorm {
			return true
		}
	}
	return false
}
