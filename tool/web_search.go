package tool

import (
	"context"
	"fmt"

	"github.com/hupe1980/leadmesh/core"
	"github.com/hupe1980/leadmesh/schema"
)

// SearchHit is a single result returned by a SearchProvider.
type SearchHit struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// SearchProvider abstracts the backing search engine so the tool can be wired
// to any API (or a scripted provider in tests).
type SearchProvider interface {
	Search(ctx context.Context, query string, maxResults int) ([]SearchHit, error)
}

// SearchProviderFunc adapts a plain function into a SearchProvider.
type SearchProviderFunc func(ctx context.Context, query string, maxResults int) ([]SearchHit, error)

// Search implements SearchProvider.
func (f SearchProviderFunc) Search(ctx context.Context, query string, maxResults int) ([]SearchHit, error) {
	return f(ctx, query, maxResults)
}

// WebSearchTool exposes a SearchProvider as a callable tool so model agents
// can ground their answers in fresh search results.
type WebSearchTool struct {
	provider   SearchProvider
	maxResults int
}

// NewWebSearchTool creates a web search tool backed by the given provider.
func NewWebSearchTool(provider SearchProvider) *WebSearchTool {
	return &WebSearchTool{provider: provider, maxResults: 10}
}

// Name returns the tool identifier.
func (t *WebSearchTool) Name() string { return "web_search" }

// Description returns the tool description.
func (t *WebSearchTool) Description() string {
	return "Search the web and return a list of results with title, URL and snippet. " +
		"Use this to find current information about companies, people and news."
}

// Parameters returns the JSON schema for tool arguments.
func (t *WebSearchTool) Parameters() map[string]any {
	return schema.Object(map[string]*schema.Property{
		"query":       schema.String("The search query"),
		"max_results": schema.Number("Maximum number of results to return (default 10)"),
	}, "query")
}

// Call runs the search and returns hits as a JSON-serializable slice.
func (t *WebSearchTool) Call(toolCtx *core.ToolContext, args map[string]any) (any, error) {
	query, ok := args["query"].(string)
	if !ok || query == "" {
		return nil, NewToolError(t.Name(), "query parameter is required", CodeValidationError)
	}

	maxResults := t.maxResults
	if m, ok := args["max_results"].(float64); ok && int(m) > 0 {
		maxResults = int(m)
	}

	hits, err := t.provider.Search(toolCtx.Context(), query, maxResults)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	toolCtx.Logger().Debug("tool.web_search.done", "query", query, "hits", len(hits))

	return map[string]any{
		"query":   query,
		"count":   len(hits),
		"results": hits,
	}, nil
}
