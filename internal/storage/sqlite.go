package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/seshat/internal/models"
)

const articleColumns = `id, title, url, source, summary, sections, main_image, images, links, info, hash, created_at, updated_at`

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS articles (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		url TEXT NOT NULL UNIQUE,
		source TEXT,
		summary TEXT,
		sections TEXT,
		main_image TEXT,
		images TEXT,
		links TEXT,
		info TEXT,
		hash TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_articles_title ON articles(title);
	CREATE INDEX IF NOT EXISTS idx_articles_source ON articles(source);
	`
	_, err := db.Exec(schema)
	return err
}

// execQuerier is satisfied by *sql.DB and *sql.Tx.
type execQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SaveArticle upserts an article keyed by URL.
func (s *SQLiteStorage) SaveArticle(ctx context.Context, a *models.Article) error {
	return saveArticle(ctx, s.db, a)
}

// ReplaceSource upserts a and deletes the other articles imported from
// a.Source in one transaction. It returns the deleted IDs. On error nothing
// changes.
func (s *SQLiteStorage) ReplaceSource(ctx context.Context, a *models.Article) ([]string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	ids, err := sourceIDs(ctx, tx, `SELECT id FROM articles WHERE source = ? AND url <> ?`, a.Source, a.URL)
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM articles WHERE source = ? AND url <> ?`, a.Source, a.URL); err != nil {
		return nil, err
	}
	if err := saveArticle(ctx, tx, a); err != nil {
		return nil, err
	}
	return ids, tx.Commit()
}

func saveArticle(ctx context.Context, db execQuerier, a *models.Article) error {
	if a.URL == "" {
		return fmt.Errorf("article %q has no url", a.Title)
	}
	if a.ID == "" {
		a.ID = ArticleID(a.URL)
	}
	if a.Hash == "" {
		a.Hash = ContentHash(a.Content)
	}
	sections, err := json.Marshal(a.Content.Sections)
	if err != nil {
		return fmt.Errorf("failed to marshal sections: %w", err)
	}
	images, err := json.Marshal(a.Images.All)
	if err != nil {
		return fmt.Errorf("failed to marshal images: %w", err)
	}
	links, err := json.Marshal(a.Links)
	if err != nil {
		return fmt.Errorf("failed to marshal links: %w", err)
	}
	info, err := json.Marshal(a.Info)
	if err != nil {
		return fmt.Errorf("failed to marshal info: %w", err)
	}

	now := time.Now()
	_, err = db.ExecContext(ctx,
		`INSERT INTO articles (`+articleColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(url) DO UPDATE SET
			title=excluded.title, source=excluded.source, summary=excluded.summary,
			sections=excluded.sections, main_image=excluded.main_image, images=excluded.images,
			links=excluded.links, info=excluded.info, hash=excluded.hash, updated_at=excluded.updated_at`,
		a.ID, a.Title, a.URL, a.Source, a.Content.Summary, string(sections),
		a.Images.Main, string(images), string(links), string(info), a.Hash, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to save article: %w", err)
	}

	// The row may predate this call; report what is stored.
	err = db.QueryRowContext(ctx,
		`SELECT id, created_at, updated_at FROM articles WHERE url = ?`, a.URL,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to read back article: %w", err)
	}
	return nil
}

// GetArticle returns an article by ID.
func (s *SQLiteStorage) GetArticle(ctx context.Context, id string) (*models.Article, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+articleColumns+` FROM articles WHERE id = ?`, id)
	return scanOne(row, id)
}

// GetByURL returns the article stored under a canonical URL.
func (s *SQLiteStorage) GetByURL(ctx context.Context, url string) (*models.Article, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+articleColumns+` FROM articles WHERE url = ?`, url)
	return scanOne(row, url)
}

// FindByTitle returns the oldest article whose title contains pattern.
// SQLite LIKE is case-insensitive for ASCII.
func (s *SQLiteStorage) FindByTitle(ctx context.Context, pattern string) (*models.Article, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+articleColumns+` FROM articles
		 WHERE title LIKE ? ESCAPE '\'
		 ORDER BY created_at ASC, id ASC LIMIT 1`,
		"%"+escapeLike(pattern)+"%",
	)
	return scanOne(row, pattern)
}

// ListArticles returns articles, newest first, with offset and limit.
func (s *SQLiteStorage) ListArticles(ctx context.Context, offset, limit int) ([]*models.Article, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+articleColumns+` FROM articles ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var articles []*models.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

// DeleteArticle removes an article by ID.
func (s *SQLiteStorage) DeleteArticle(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM articles WHERE id = ?`, id)
	return err
}

// DeleteBySource removes the articles imported from source.
func (s *SQLiteStorage) DeleteBySource(ctx context.Context, source string) ([]string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	ids, err := sourceIDs(ctx, tx, `SELECT id FROM articles WHERE source = ?`, source)
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM articles WHERE source = ?`, source); err != nil {
		return nil, err
	}
	return ids, tx.Commit()
}

func sourceIDs(ctx context.Context, tx *sql.Tx, query string, args ...any) ([]string, error) {
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// CountArticles returns the total number of articles.
func (s *SQLiteStorage) CountArticles(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM articles`).Scan(&count)
	return count, err
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanOne(row scanner, key string) (*models.Article, error) {
	a, err := scanArticle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return a, err
}

func scanArticle(row scanner) (*models.Article, error) {
	var (
		a                                models.Article
		source, summary, mainImage, hash sql.NullString
		sections, images, links, info    sql.NullString
	)
	err := row.Scan(&a.ID, &a.Title, &a.URL, &source, &summary, &sections,
		&mainImage, &images, &links, &info, &hash, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	a.Source = source.String
	a.Content.Summary = summary.String
	a.Images.Main = mainImage.String
	a.Hash = hash.String

	if err := unmarshalColumn(sections, &a.Content.Sections); err != nil {
		return nil, fmt.Errorf("failed to unmarshal sections: %w", err)
	}
	if err := unmarshalColumn(images, &a.Images.All); err != nil {
		return nil, fmt.Errorf("failed to unmarshal images: %w", err)
	}
	if err := unmarshalColumn(links, &a.Links); err != nil {
		return nil, fmt.Errorf("failed to unmarshal links: %w", err)
	}
	if err := unmarshalColumn(info, &a.Info); err != nil {
		return nil, fmt.Errorf("failed to unmarshal info: %w", err)
	}
	return &a, nil
}

func unmarshalColumn(col sql.NullString, v any) error {
	if !col.Valid || col.String == "" || col.String == "null" {
		return nil
	}
	return json.Unmarshal([]byte(col.String), v)
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
