package wiki

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrArticleNotFound is returned when a title resolves to no Wikipedia page.
var ErrArticleNotFound = errors.New("wikipedia article not found")

// SearchResult is one candidate article from a topic search
type SearchResult struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	URL     string `json:"url"`
}

// Article holds the fetched content for a single Wikipedia page
type Article struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
	Body    string `json:"body"` // Cleaned plain text, truncated to the char budget
	URL     string `json:"url"`
}

// Client talks to the MediaWiki action API (search) and the REST summary
// endpoint (content). All responses are plain JSON over HTTPS.
type Client struct {
	language   string
	charBudget int
	httpClient *http.Client
	userAgent  string

	// Overridable for tests
	actionBaseURL string
	restBaseURL   string
}

var (
	tagRe     = regexp.MustCompile(`<[^>]*>`)
	refRe     = regexp.MustCompile(`\[\d+\]`)
	headingRe = regexp.MustCompile(`==+[^=]*==+`)
	spaceRe   = regexp.MustCompile(`\s+`)
)

// NewClient creates a Wikipedia client for the given language edition
func NewClient(language string, charBudget int) *Client {
	if language == "" {
		language = "en"
	}
	return &Client{
		language:      language,
		charBudget:    charBudget,
		httpClient:    &http.Client{Timeout: 10 * time.Second},
		userAgent:     "podcast-gateway/1.0 (educational podcast generator)",
		actionBaseURL: fmt.Sprintf("https://%s.wikipedia.org/w/api.php", language),
		restBaseURL:   fmt.Sprintf("https://%s.wikipedia.org/api/rest_v1", language),
	}
}

type searchResponse struct {
	Query struct {
		Search []struct {
			Title   string `json:"title"`
			Snippet string `json:"snippet"`
		} `json:"search"`
	} `json:"query"`
}

// Search returns up to limit candidate articles matching query
func (c *Client) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("search query is empty")
	}
	if limit < 1 {
		limit = 10
	}

	params := url.Values{}
	params.Set("action", "query")
	params.Set("format", "json")
	params.Set("list", "search")
	params.Set("srsearch", query)
	params.Set("srlimit", strconv.Itoa(limit))
	params.Set("srprop", "snippet")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.actionBaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create search request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("wikipedia search failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("wikipedia search returned status %d", resp.StatusCode)
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	results := make([]SearchResult, 0, len(body.Query.Search))
	for _, item := range body.Query.Search {
		results = append(results, SearchResult{
			Title:   item.Title,
			Snippet: tagRe.ReplaceAllString(item.Snippet, ""),
			URL:     c.articleURL(item.Title),
		})
	}

	return results, nil
}

type summaryResponse struct {
	Title   string `json:"title"`
	Extract string `json:"extract"`
	Type    string `json:"type"`
	ContentURLs struct {
		Desktop struct {
			Page string `json:"page"`
		} `json:"desktop"`
	} `json:"content_urls"`
}

// Fetch returns the cleaned plain-text content for an article title.
// Returns ErrArticleNotFound when the title resolves to no page.
func (c *Client) Fetch(ctx context.Context, title string) (*Article, error) {
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("article title is empty")
	}

	endpoint := fmt.Sprintf("%s/page/summary/%s", c.restBaseURL, url.PathEscape(strings.ReplaceAll(title, " ", "_")))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create fetch request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("wikipedia fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %q", ErrArticleNotFound, title)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("wikipedia fetch returned status %d", resp.StatusCode)
	}

	var body summaryResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode fetch response: %w", err)
	}

	if body.Extract == "" {
		return nil, fmt.Errorf("%w: %q has no extract", ErrArticleNotFound, title)
	}

	cleaned := CleanContent(body.Extract, c.charBudget)

	pageURL := body.ContentURLs.Desktop.Page
	if pageURL == "" {
		pageURL = c.articleURL(body.Title)
	}

	return &Article{
		Title:   body.Title,
		Summary: truncate(body.Extract, 500),
		Body:    cleaned,
		URL:     pageURL,
	}, nil
}

// CleanContent strips reference markers, section headings and runs of
// whitespace, then truncates to maxChars at a sentence boundary where one
// falls in the final fifth of the budget.
func CleanContent(content string, maxChars int) string {
	content = refRe.ReplaceAllString(content, "")
	content = headingRe.ReplaceAllString(content, "")
	content = spaceRe.ReplaceAllString(content, " ")
	content = strings.TrimSpace(content)

	if maxChars > 0 && len(content) > maxChars {
		content = content[:maxChars]
		if idx := strings.LastIndex(content, "."); idx > maxChars*4/5 {
			content = content[:idx+1]
		}
	}

	return strings.TrimSpace(content)
}

func (c *Client) articleURL(title string) string {
	return fmt.Sprintf("https://%s.wikipedia.org/wiki/%s", c.language, strings.ReplaceAll(title, " ", "_"))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
