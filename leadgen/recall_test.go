package leadgen

import (
	"testing"

	"github.com/hupe1980/leadmesh/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recallMemoryStore struct {
	recordingMemoryStore

	queries []string
	limits  []int
	hits    []core.SearchResult
}

func (m *recallMemoryStore) Search(sessionID, query string, limit int) ([]core.SearchResult, error) {
	m.queries = append(m.queries, query)
	m.limits = append(m.limits, limit)
	return m.hits, nil
}

func TestRecallFindingsTool_ReturnsStoredPatterns(t *testing.T) {
	memory := &recallMemoryStore{
		hits: []core.SearchResult{
			{
				ID:      "mem-1",
				Content: "1. Strong engineering culture",
				Metadata: map[string]any{
					"kind":    "discovered_patterns",
					"country": "Germany",
				},
			},
		},
	}
	rc := newHookTestContext(core.NewSession("s-recall"), memory)
	tc := core.NewToolContext(rc, "call-recall")

	recall := NewRecallFindingsTool()
	assert.Equal(t, ToolIDRecallFindings, recall.Name())

	out, err := recall.Call(tc, map[string]any{"query": "Germany fintech patterns"})
	require.NoError(t, err)

	result, ok := out.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Germany fintech patterns", result["query"])
	assert.Equal(t, 1, result["count"])

	findings, ok := result["findings"].([]map[string]any)
	require.True(t, ok)
	require.Len(t, findings, 1)
	assert.Equal(t, "1. Strong engineering culture", findings[0]["content"])

	require.Len(t, memory.queries, 1)
	assert.Equal(t, "Germany fintech patterns", memory.queries[0])
	assert.Equal(t, defaultRecallLimit, memory.limits[0])
}

func TestRecallFindingsTool_NoMemoryStore(t *testing.T) {
	rc := newHookTestContext(core.NewSession("s-recall-none"), nil)
	tc := core.NewToolContext(rc, "call-recall")

	_, err := NewRecallFindingsTool().Call(tc, map[string]any{"query": "anything"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "memory store not configured")
}
