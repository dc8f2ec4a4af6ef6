package e2e

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hyperjump/seshat/internal/models"
)

// SupportedFileExtensions are the article file formats written by E2E tests.
var SupportedFileExtensions = []string{".yaml", ".yml", ".json"}

// MarshalArticle encodes a as an article file of the given extension.
func MarshalArticle(ext string, a *models.Article) ([]byte, error) {
	switch ext {
	case ".yaml", ".yml":
		return yaml.Marshal(a)
	case ".json":
		return json.MarshalIndent(a, "", "  ")
	default:
		return nil, fmt.Errorf("unsupported article extension %q", ext)
	}
}

// WriteArticleFile writes a into dir as name plus ext and returns the path.
func WriteArticleFile(dir, name, ext string, a *models.Article) (string, error) {
	data, err := MarshalArticle(ext, a)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, strings.ToLower(name)+ext)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", err
	}
	return path, nil
}
