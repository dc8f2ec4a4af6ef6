// Package cli provides output formatting for the Seshat command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hyperjump/seshat/internal/models"
	"github.com/hyperjump/seshat/pkg/utils"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

const wrapWidth = 100

// ParseFormat returns the output format named by s. Unknown names are an error.
func ParseFormat(s string) (OutputFormat, error) {
	switch OutputFormat(strings.ToLower(s)) {
	case "", OutputText:
		return OutputText, nil
	case OutputJSON:
		return OutputJSON, nil
	}
	return "", fmt.Errorf("unknown output format %q (use text or json)", s)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeWrapped(w io.Writer, text string) {
	for _, line := range utils.Wrap(text, wrapWidth) {
		fmt.Fprintln(w, line)
	}
}

// WriteSummary writes a summary response.
func WriteSummary(w io.Writer, resp *models.SummaryResponse, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, resp)
	}
	if resp.Title != "" {
		fmt.Fprintf(w, "%s\n\n", resp.Title)
	}
	writeWrapped(w, resp.Summary)
	return nil
}

// WriteAnswer writes an answer response.
func WriteAnswer(w io.Writer, resp *models.AnswerResponse, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, resp)
	}
	fmt.Fprintf(w, "Q: %s\n", resp.Question)
	if resp.Title != "" {
		fmt.Fprintf(w, "(%s)\n", resp.Title)
	}
	fmt.Fprintln(w)
	writeWrapped(w, resp.Answer)
	return nil
}

// WriteSummarize writes the summary of raw text.
func WriteSummarize(w io.Writer, resp *models.SummarizeResponse, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, resp)
	}
	writeWrapped(w, resp.Summary)
	return nil
}

// WriteArticle writes an article with its sections and items.
func WriteArticle(w io.Writer, view *models.ArticleView, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, view)
	}
	fmt.Fprintf(w, "%s\n%s\n", view.Title, strings.Repeat("=", len([]rune(view.Title))))
	if view.Image != "" {
		fmt.Fprintf(w, "Image: %s\n", view.Image)
	}
	fmt.Fprintln(w)
	writeWrapped(w, view.Content.Summary)
	for _, s := range view.Content.Sections {
		fmt.Fprintf(w, "\n== %s ==\n", s.Title)
		writeWrapped(w, s.Content)
		for _, it := range s.Items {
			fmt.Fprintf(w, "\n=== %s ===\n", it.Title)
			writeWrapped(w, it.Content)
		}
	}
	return nil
}

// WriteSearchResults writes search results to w in the given format.
// Use OutputJSON for parseable output consumable by other apps.
func WriteSearchResults(w io.Writer, response *models.SearchResponse, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, response)
	}
	fmt.Fprintf(w, "\nFound %d results in %dms\n\n", response.Total, response.QueryTime)
	if response.Suggestion != "" {
		fmt.Fprintf(w, "Did you mean: %s\n\n", response.Suggestion)
	}
	for _, result := range response.Results {
		fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
		fmt.Fprintf(w, "Rank: %d | Score: %.4f\n", result.Rank, result.Score)
		if result.Article == nil {
			continue
		}
		fmt.Fprintf(w, "ID: %s\n", result.Article.ID)
		fmt.Fprintf(w, "Title: %s\n", result.Article.Title)
		if result.Article.URL != "" {
			fmt.Fprintf(w, "URL: %s\n", result.Article.URL)
		}
		fmt.Fprintf(w, "\n%s\n\n", utils.Truncate(result.Article.Content.Summary, 200))
	}
	return nil
}
