package keyword

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/hyperjump/seshat/internal/models"
)

func newTestIndex(t *testing.T) *BleveIndex {
	t.Helper()
	idx, err := NewBleveIndex(filepath.Join(t.TempDir(), "bleve"))
	if err != nil {
		t.Fatalf("NewBleveIndex: %v", err)
	}
	t.Cleanup(func() {
		_ = idx.Close()
	})
	return idx
}

func seedArticles(t *testing.T, idx *BleveIndex) {
	t.Helper()
	ctx := context.Background()
	articles := []*models.Article{
		{
			ID:    "a1",
			Title: "Albert_Einstein",
			Content: models.Content{
				Summary: "Albert Einstein was a theoretical physicist.",
				Sections: []models.Section{
					{Title: "Career", Content: "He developed the theory of relativity."},
				},
			},
		},
		{
			ID:    "a2",
			Title: "Marie Curie",
			Content: models.Content{
				Summary: "Marie Curie was a physicist and chemist who studied radioactivity.",
			},
		},
	}
	for _, a := range articles {
		if err := idx.Index(ctx, a); err != nil {
			t.Fatalf("Index %s: %v", a.ID, err)
		}
	}
}

func TestBleveIndex_SearchFindsTitle(t *testing.T) {
	idx := newTestIndex(t)
	seedArticles(t, idx)

	results, err := idx.Search(context.Background(), "einstein", 10, nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("expected at least one result for \"einstein\"")
	}
	if results[0].ID != "a1" {
		t.Errorf("first result ID = %q, want a1", results[0].ID)
	}
}

func TestBleveIndex_SearchFindsSummaryAndBody(t *testing.T) {
	idx := newTestIndex(t)
	seedArticles(t, idx)
	ctx := context.Background()

	results, err := idx.Search(ctx, "radioactivity", 10, nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].ID != "a2" {
		t.Errorf("radioactivity results = %+v, want [a2]", results)
	}

	results, err = idx.Search(ctx, "relativity", 10, nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].ID != "a1" {
		t.Errorf("relativity results = %+v, want [a1]", results)
	}
}

func TestBleveIndex_SearchMatchesBoth(t *testing.T) {
	idx := newTestIndex(t)
	seedArticles(t, idx)

	results, err := idx.Search(context.Background(), "physicist", 10, nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(results))
	}
	for i := 1; i < len(results); i++ {
		if results[i].Score > results[i-1].Score {
			t.Errorf("results not sorted by score: %v > %v", results[i].Score, results[i-1].Score)
		}
	}
}

func TestBleveIndex_SearchLimit(t *testing.T) {
	idx := newTestIndex(t)
	seedArticles(t, idx)

	results, err := idx.Search(context.Background(), "physicist", 1, nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("len(results) = %d, want 1", len(results))
	}
}

func TestBleveIndex_FuzzySearch(t *testing.T) {
	idx := newTestIndex(t)
	seedArticles(t, idx)
	ctx := context.Background()

	results, err := idx.Search(ctx, "einstien", 10, nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("exact search for misspelling returned %d results, want 0", len(results))
	}

	results, err = idx.Search(ctx, "einstien", 10, &SearchOptions{FuzzyEnabled: true, Fuzziness: 2})
	if err != nil {
		t.Fatalf("fuzzy Search: %v", err)
	}
	if len(results) == 0 || results[0].ID != "a1" {
		t.Errorf("fuzzy results = %+v, want a1 first", results)
	}
}

func TestBleveIndex_DeleteAndCount(t *testing.T) {
	idx := newTestIndex(t)
	seedArticles(t, idx)
	ctx := context.Background()

	n, err := idx.DocCount()
	if err != nil {
		t.Fatalf("DocCount: %v", err)
	}
	if n != 2 {
		t.Errorf("DocCount = %d, want 2", n)
	}

	if err := idx.Delete(ctx, "a1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	n, _ = idx.DocCount()
	if n != 1 {
		t.Errorf("DocCount after delete = %d, want 1", n)
	}
	results, err := idx.Search(ctx, "einstein", 10, nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("deleted article still found: %+v", results)
	}
}

func TestBleveIndex_IndexRequiresID(t *testing.T) {
	idx := newTestIndex(t)
	if err := idx.Index(context.Background(), &models.Article{Title: "No ID"}); err == nil {
		t.Error("expected error indexing article without id")
	}
}

func TestBleveIndex_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bleve")
	idx, err := NewBleveIndex(path)
	if err != nil {
		t.Fatalf("NewBleveIndex: %v", err)
	}
	seedArticles(t, idx)
	if err := idx.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := NewBleveIndex(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() {
		_ = reopened.Close()
	}()
	n, err := reopened.DocCount()
	if err != nil {
		t.Fatalf("DocCount: %v", err)
	}
	if n != 2 {
		t.Errorf("DocCount after reopen = %d, want 2", n)
	}
}
