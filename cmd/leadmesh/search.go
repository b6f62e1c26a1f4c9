package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/hupe1980/leadmesh/tool"
)

// ddgSearchProvider backs the web_search tool with the DuckDuckGo instant
// answer API. It needs no API key, which keeps the CLI runnable out of the
// box; swap in a richer provider for production research quality.
type ddgSearchProvider struct {
	client *http.Client
}

func newSearchProvider() tool.SearchProvider {
	return &ddgSearchProvider{client: &http.Client{Timeout: 15 * time.Second}}
}

type ddgResponse struct {
	AbstractText  string `json:"AbstractText"`
	AbstractURL   string `json:"AbstractURL"`
	Heading       string `json:"Heading"`
	RelatedTopics []struct {
		Text     string `json:"Text"`
		FirstURL string `json:"FirstURL"`
	} `json:"RelatedTopics"`
}

// Search implements tool.SearchProvider.
func (p *ddgSearchProvider) Search(ctx context.Context, query string, maxResults int) ([]tool.SearchHit, error) {
	endpoint := "https://api.duckduckgo.com/?q=" + url.QueryEscape(query) + "&format=json&no_html=1"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build search request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search returned status %d", resp.StatusCode)
	}

	var body ddgResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	var hits []tool.SearchHit
	if body.AbstractText != "" {
		hits = append(hits, tool.SearchHit{
			Title:   body.Heading,
			URL:     body.AbstractURL,
			Snippet: body.AbstractText,
		})
	}

	for _, topic := range body.RelatedTopics {
		if len(hits) >= maxResults {
			break
		}
		if topic.Text == "" || topic.FirstURL == "" {
			continue
		}
		hits = append(hits, tool.SearchHit{
			Title:   topic.Text,
			URL:     topic.FirstURL,
			Snippet: topic.Text,
		})
	}

	return hits, nil
}
