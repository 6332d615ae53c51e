package wiki

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestClient(actionURL, restURL string) *Client {
	c := NewClient("en", 5000)
	c.actionBaseURL = actionURL
	c.restBaseURL = restURL
	return c
}

func TestSearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("list") != "search" {
			t.Errorf("Expected list=search, got '%s'", r.URL.Query().Get("list"))
		}
		if r.URL.Query().Get("srsearch") != "ISRO" {
			t.Errorf("Expected srsearch=ISRO, got '%s'", r.URL.Query().Get("srsearch"))
		}
		fmt.Fprint(w, `{"query":{"search":[
			{"title":"ISRO","snippet":"<span class=\"searchmatch\">ISRO</span> is the space agency"},
			{"title":"Chandrayaan-3","snippet":"lunar mission by <span>ISRO</span>"}
		]}}`)
	}))
	defer server.Close()

	client := newTestClient(server.URL, "")

	results, err := client.Search(context.Background(), "ISRO", 5)
	if err != nil {
		t.Fatalf("Search() failed: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}

	if results[0].Title != "ISRO" {
		t.Errorf("Expected title 'ISRO', got '%s'", results[0].Title)
	}

	if strings.Contains(results[0].Snippet, "<") {
		t.Errorf("Expected snippet HTML to be stripped, got '%s'", results[0].Snippet)
	}
}

func TestSearch_EmptyQuery(t *testing.T) {
	client := NewClient("en", 5000)

	if _, err := client.Search(context.Background(), "  ", 5); err == nil {
		t.Error("Expected error for empty query")
	}
}

func TestFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "Indian_Space_Research_Organisation") {
			t.Errorf("Expected underscored title in path, got '%s'", r.URL.Path)
		}
		fmt.Fprint(w, `{"title":"Indian Space Research Organisation",
			"extract":"ISRO is the national space agency of India. [1] It operates launch vehicles.",
			"content_urls":{"desktop":{"page":"https://en.wikipedia.org/wiki/ISRO"}}}`)
	}))
	defer server.Close()

	client := newTestClient("", server.URL)

	article, err := client.Fetch(context.Background(), "Indian Space Research Organisation")
	if err != nil {
		t.Fatalf("Fetch() failed: %v", err)
	}

	if article.Title != "Indian Space Research Organisation" {
		t.Errorf("Unexpected title '%s'", article.Title)
	}

	if strings.Contains(article.Body, "[1]") {
		t.Errorf("Expected reference markers to be stripped, got '%s'", article.Body)
	}

	if article.URL != "https://en.wikipedia.org/wiki/ISRO" {
		t.Errorf("Unexpected URL '%s'", article.URL)
	}
}

func TestFetch_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient("", server.URL)

	_, err := client.Fetch(context.Background(), "No Such Page Anywhere")
	if !errors.Is(err, ErrArticleNotFound) {
		t.Errorf("Expected ErrArticleNotFound, got %v", err)
	}
}

func TestFetch_EmptyExtract(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"title":"Stub","extract":""}`)
	}))
	defer server.Close()

	client := newTestClient("", server.URL)

	_, err := client.Fetch(context.Background(), "Stub")
	if !errors.Is(err, ErrArticleNotFound) {
		t.Errorf("Expected ErrArticleNotFound for empty extract, got %v", err)
	}
}

func TestCleanContent(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		maxChars int
		expected string
	}{
		{
			name:     "references removed",
			input:    "ISRO was founded in 1969.[1] It has many centres.[23]",
			maxChars: 0,
			expected: "ISRO was founded in 1969. It has many centres.",
		},
		{
			name:     "headings removed",
			input:    "Intro text. == History == More text.",
			maxChars: 0,
			expected: "Intro text. More text.",
		},
		{
			name:     "whitespace collapsed",
			input:    "a  b\n\nc\td",
			maxChars: 0,
			expected: "a b c d",
		},
		{
			name:     "truncated at sentence boundary",
			input:    "First sentence ends now. Second sentence extends well past the limit for sure.",
			maxChars: 24,
			expected: "First sentence ends now.",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := CleanContent(tc.input, tc.maxChars)
			if got != tc.expected {
				t.Errorf("Expected '%s', got '%s'", tc.expected, got)
			}
		})
	}
}
