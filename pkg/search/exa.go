package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/JushrafRahman/ai-chatbot-with-web-search/pkg/observability"
)

const defaultExaURL = "https://api.exa.ai"

// ExaConfig holds the Exa adapter configuration.
type ExaConfig struct {
	// BaseURL of the Exa API. Default: https://api.exa.ai.
	BaseURL string

	// APIKey is required.
	APIKey string

	// MaxResults bounds the number of results requested. Default: 2, cap: 5.
	MaxResults int

	// MaxTextChars is the excerpt budget requested per result. Default: 500.
	MaxTextChars int

	// HTTPClient allows injecting a custom client (useful for testing).
	HTTPClient *http.Client
}

// ExaAdapter implements Provider against the Exa search API.
type ExaAdapter struct {
	cfg ExaConfig
}

var _ Provider = (*ExaAdapter)(nil)

// NewExa creates an Exa adapter with the given configuration.
func NewExa(cfg ExaConfig) (*ExaAdapter, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("search: exa api key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultExaURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 2
	}
	if cfg.MaxResults > 5 {
		cfg.MaxResults = 5
	}
	if cfg.MaxTextChars <= 0 {
		cfg.MaxTextChars = 500
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &ExaAdapter{cfg: cfg}, nil
}

// exaRequest is the JSON body of POST /search.
type exaRequest struct {
	Query      string      `json:"query"`
	Type       string      `json:"type"`
	Category   string      `json:"category,omitempty"`
	NumResults int         `json:"numResults"`
	Contents   exaContents `json:"contents"`
}

type exaContents struct {
	Text exaTextOpts `json:"text"`
}

type exaTextOpts struct {
	MaxCharacters int `json:"maxCharacters"`
}

// exaResponse is the JSON response from Exa.
type exaResponse struct {
	RequestID string      `json:"requestId"`
	Results   []exaResult `json:"results"`
}

type exaResult struct {
	Title         string `json:"title"`
	URL           string `json:"url"`
	PublishedDate string `json:"publishedDate"`
	Author        string `json:"author"`
	Text          string `json:"text"`
}

// Search queries Exa and returns results in relevance order.
func (a *ExaAdapter) Search(ctx context.Context, query, category string) ([]Result, error) {
	body, err := json.Marshal(exaRequest{
		Query:      query,
		Type:       "auto",
		Category:   category,
		NumResults: a.cfg.MaxResults,
		Contents:   exaContents{Text: exaTextOpts{MaxCharacters: a.cfg.MaxTextChars}},
	})
	if err != nil {
		return nil, fmt.Errorf("encoding search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.BaseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", a.cfg.APIKey)

	resp, err := a.cfg.HTTPClient.Do(req)
	if err != nil {
		observability.SearchQueriesTotal.WithLabelValues("exa", "error").Inc()
		return nil, fmt.Errorf("executing search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		observability.SearchQueriesTotal.WithLabelValues("exa", "error").Inc()
		return nil, fmt.Errorf("search backend returned status %d", resp.StatusCode)
	}

	var er exaResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		observability.SearchQueriesTotal.WithLabelValues("exa", "error").Inc()
		return nil, fmt.Errorf("decoding search response: %w", err)
	}

	results := make([]Result, 0, len(er.Results))
	for i, r := range er.Results {
		if i >= a.cfg.MaxResults {
			break
		}
		out := Result{
			Title:  r.Title,
			URL:    r.URL,
			Author: r.Author,
			Text:   r.Text,
		}
		if r.PublishedDate != "" {
			if ts, err := time.Parse(time.RFC3339, r.PublishedDate); err == nil {
				out.PublishedDate = &ts
			}
		}
		results = append(results, out)
	}

	observability.SearchQueriesTotal.WithLabelValues("exa", "success").Inc()
	observability.SearchResultsReturned.WithLabelValues("exa").Observe(float64(len(results)))

	return results, nil
}
