package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hyperjump/seshat/internal/models"
)

type recordingHandler struct {
	mu       sync.Mutex
	imported []string
	removed  []string
}

func (h *recordingHandler) ImportFile(ctx context.Context, path string) (*models.Article, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.imported = append(h.imported, path)
	return &models.Article{Title: filepath.Base(path)}, nil
}

func (h *recordingHandler) RemoveFile(ctx context.Context, path string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removed = append(h.removed, path)
	return nil
}

func (h *recordingHandler) snapshot() (imported, removed []string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.imported...), append([]string(nil), h.removed...)
}

func countSuffix(paths []string, suffix string) int {
	n := 0
	for _, p := range paths {
		if strings.HasSuffix(p, suffix) {
			n++
		}
	}
	return n
}

func TestWatcher_AddRemoveDirectories(t *testing.T) {
	dir := t.TempDir()
	w := New(nil, []string{".yaml"}, true, &recordingHandler{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := w.AddDirectory(dir, false); err != nil {
		t.Fatal(err)
	}
	// Adding the same root twice is a no-op.
	if err := w.AddDirectory(dir, false); err != nil {
		t.Fatal(err)
	}
	dirs := w.Directories()
	if len(dirs) != 1 || filepath.Clean(dirs[0]) != filepath.Clean(dir) {
		t.Errorf("Directories() = %v", dirs)
	}

	if err := w.RemoveDirectory(dir); err != nil {
		t.Fatal(err)
	}
	if len(w.Directories()) != 0 {
		t.Errorf("after remove: %v", w.Directories())
	}
}

func TestWatcher_DebounceAndExtensionFilter(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	if err := mkdirAll(sub); err != nil {
		t.Fatal(err)
	}

	h := &recordingHandler{}
	w := New([]string{dir}, []string{".yaml"}, true, h, WithDebounce(150*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	fPath := filepath.Join(sub, "bee.yaml")
	for i := 0; i < 3; i++ {
		if err := writeFile(fPath, "title: Bee"); err != nil {
			t.Fatal(err)
		}
		time.Sleep(20 * time.Millisecond)
	}
	if err := writeFile(filepath.Join(sub, "notes.txt"), "skip"); err != nil {
		t.Fatal(err)
	}
	time.Sleep(600 * time.Millisecond)

	imported, _ := h.snapshot()
	if n := countSuffix(imported, "bee.yaml"); n != 1 {
		t.Errorf("bee.yaml imported %d times, want 1 (debounced): %v", n, imported)
	}
	if n := countSuffix(imported, "notes.txt"); n != 0 {
		t.Errorf("notes.txt should be filtered out: %v", imported)
	}
}

func TestWatcher_RemoveForwarded(t *testing.T) {
	dir := t.TempDir()
	fPath := filepath.Join(dir, "ant.yaml")
	if err := writeFile(fPath, "title: Ant"); err != nil {
		t.Fatal(err)
	}

	h := &recordingHandler{}
	w := New([]string{dir}, []string{".yaml"}, false, h)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := os.Remove(fPath); err != nil {
		t.Fatal(err)
	}
	time.Sleep(300 * time.Millisecond)

	_, removed := h.snapshot()
	if countSuffix(removed, "ant.yaml") != 1 {
		t.Errorf("expected ant.yaml removal, got %v", removed)
	}
}

func TestMatchExtension(t *testing.T) {
	tests := []struct {
		path       string
		extensions []string
		want       bool
	}{
		{"/a/b.yaml", []string{".yaml"}, true},
		{"/a/b.YAML", []string{".yaml"}, true},
		{"/a/b.json", []string{"json"}, true},
		{"/a/b.md", []string{".yaml"}, false},
		{"/a/b", nil, true},
		{"/a/b", []string{}, true},
	}
	for _, tt := range tests {
		got := matchExtension(tt.path, tt.extensions)
		if got != tt.want {
			t.Errorf("matchExtension(%q, %v) = %v, want %v", tt.path, tt.extensions, got, tt.want)
		}
	}
}

func TestInDir(t *testing.T) {
	tests := []struct {
		dir  string
		path string
		want bool
	}{
		{"/tmp/a", "/tmp/a", true},
		{"/tmp/a", "/tmp/a/b.yaml", true},
		{"/tmp/a", "/tmp/b", false},
		{"/tmp/a", "/tmp/a/../b", false},
	}
	for _, tt := range tests {
		got := inDir(tt.dir, tt.path)
		if got != tt.want {
			t.Errorf("inDir(%q, %q) = %v, want %v", tt.dir, tt.path, got, tt.want)
		}
	}
}

func TestWatcher_SyncExistingFiles(t *testing.T) {
	dir := t.TempDir()
	if err := writeFile(filepath.Join(dir, "a.yaml"), "title: A"); err != nil {
		t.Fatal(err)
	}
	if err := writeFile(filepath.Join(dir, "ignore.xyz"), "x"); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(dir, "nested")
	if err := mkdirAll(nested); err != nil {
		t.Fatal(err)
	}
	if err := writeFile(filepath.Join(nested, "b.yaml"), "title: B"); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name      string
		recursive bool
		want      int
	}{
		{"flat", false, 1},
		{"recursive", true, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &recordingHandler{}
			w := New([]string{dir}, []string{".yaml"}, tt.recursive, h)
			if err := w.Start(context.Background()); err != nil {
				t.Fatal(err)
			}
			defer w.Stop()
			w.SyncExistingFiles()

			imported, _ := h.snapshot()
			if len(imported) != tt.want {
				t.Errorf("imported %v, want %d files", imported, tt.want)
			}
		})
	}
}

func TestWatcher_Start_createsMissingRootDirectory(t *testing.T) {
	root := filepath.Join(t.TempDir(), "watch", "me")

	w := New([]string{root}, []string{".yaml"}, true, nil)
	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if _, err := os.Stat(root); err != nil {
		t.Errorf("root directory should exist after Start: %v", err)
	}
}

func TestWatcher_NewDirectory_importsNestedFiles(t *testing.T) {
	dir := t.TempDir()
	h := &recordingHandler{}
	w := New([]string{dir}, []string{".yaml"}, true, h, WithDebounce(100*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	nested := filepath.Join(dir, "level1", "level2")
	if err := mkdirAll(nested); err != nil {
		t.Fatal(err)
	}
	if err := writeFile(filepath.Join(nested, "deep.yaml"), "title: Deep"); err != nil {
		t.Fatal(err)
	}

	time.Sleep(800 * time.Millisecond)

	imported, _ := h.snapshot()
	if countSuffix(imported, "deep.yaml") == 0 {
		t.Errorf("expected deep.yaml to be imported, got %v", imported)
	}
}

func mkdirAll(path string) error {
	return os.MkdirAll(path, 0755)
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0600)
}
