package fetch

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hyperjump/seshat/internal/models"
)

// DefaultBaseURL is the English Wikipedia action API endpoint.
const DefaultBaseURL = "https://en.wikipedia.org/w/api.php"

// commonsFilePath resolves a file name to its image URL.
const commonsFilePath = "https://commons.wikimedia.org/wiki/Special:FilePath/"

// Wikipedia fetches articles from a MediaWiki action API.
type Wikipedia struct {
	Client    *http.Client
	BaseURL   string
	UserAgent string
}

// NewWikipedia returns a Wikipedia fetcher. Empty baseURL uses DefaultBaseURL.
func NewWikipedia(baseURL, userAgent string, timeout time.Duration) *Wikipedia {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Wikipedia{
		Client:    &http.Client{Timeout: timeout},
		BaseURL:   baseURL,
		UserAgent: userAgent,
	}
}

type searchResponse struct {
	Query struct {
		Search []struct {
			Title string `json:"title"`
		} `json:"search"`
	} `json:"query"`
}

type pageResponse struct {
	Query struct {
		Pages []wikiPage `json:"pages"`
	} `json:"query"`
}

type wikiPage struct {
	PageID    int64  `json:"pageid"`
	Title     string `json:"title"`
	Missing   bool   `json:"missing"`
	Extract   string `json:"extract"`
	FullURL   string `json:"fullurl"`
	Touched   string `json:"touched"`
	LastRevID int64  `json:"lastrevid"`
	Length    int64  `json:"length"`
	Original  *struct {
		Source string `json:"source"`
	} `json:"original"`
	Images []struct {
		Title string `json:"title"`
	} `json:"images"`
	Links []struct {
		Title string `json:"title"`
	} `json:"links"`
}

// Find resolves subject to the best matching page title and fetches that page.
func (w *Wikipedia) Find(ctx context.Context, subject string) (*models.Article, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return nil, fmt.Errorf("empty subject: %w", ErrNotFound)
	}

	var sr searchResponse
	err := w.get(ctx, url.Values{
		"list":     {"search"},
		"srsearch": {subject},
		"srlimit":  {"1"},
	}, &sr)
	if err != nil {
		return nil, err
	}
	if len(sr.Query.Search) == 0 {
		return nil, fmt.Errorf("no page for %q: %w", subject, ErrNotFound)
	}
	title := sr.Query.Search[0].Title

	var pr pageResponse
	err = w.get(ctx, url.Values{
		"prop":            {"extracts|info|pageimages|images|links"},
		"titles":          {title},
		"redirects":       {"1"},
		"explaintext":     {"1"},
		"exsectionformat": {"wiki"},
		"inprop":          {"url"},
		"piprop":          {"original"},
		"imlimit":         {"max"},
		"pllimit":         {"max"},
	}, &pr)
	if err != nil {
		return nil, err
	}
	if len(pr.Query.Pages) == 0 || pr.Query.Pages[0].Missing {
		return nil, fmt.Errorf("page %q: %w", title, ErrNotFound)
	}
	return toArticle(pr.Query.Pages[0]), nil
}

func (w *Wikipedia) get(ctx context.Context, params url.Values, out any) error {
	params.Set("action", "query")
	params.Set("format", "json")
	params.Set("formatversion", "2")
	reqURL := w.BaseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if w.UserAgent != "" {
		req.Header.Set("User-Agent", w.UserAgent)
	}

	client := w.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("Wikipedia API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("Wikipedia API returned HTTP %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parsing Wikipedia response: %w", err)
	}
	return nil
}

func toArticle(p wikiPage) *models.Article {
	sum := md5.Sum([]byte(p.Extract))
	a := &models.Article{
		Title:   p.Title,
		URL:     p.FullURL,
		Source:  "wikipedia",
		Content: ParseExtract(p.Extract),
		Hash:    hex.EncodeToString(sum[:]),
		Info: map[string]interface{}{
			"pageid":    p.PageID,
			"lastrevid": p.LastRevID,
			"length":    p.Length,
			"touched":   p.Touched,
		},
	}
	if p.Original != nil {
		a.Images.Main = p.Original.Source
	}
	for _, img := range p.Images {
		name := strings.TrimPrefix(img.Title, "File:")
		a.Images.All = append(a.Images.All, commonsFilePath+url.PathEscape(strings.ReplaceAll(name, " ", "_")))
	}
	for _, l := range p.Links {
		a.Links = append(a.Links, l.Title)
	}
	return a
}
