package leadgen

import (
	"context"
	"sync"
	"testing"

	"github.com/hupe1980/leadmesh/agent"
	"github.com/hupe1980/leadmesh/internal/testutil"
	"github.com/hupe1980/leadmesh/tool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedSearch struct {
	mu      sync.Mutex
	queries []string
	hits    []tool.SearchHit
}

func (s *scriptedSearch) Search(_ context.Context, query string, maxResults int) ([]tool.SearchHit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = append(s.queries, query)

	return s.hits, nil
}

const acmeCompanyJSON = `{
	"companies_found": [{
		"company_name": "Acme Robotics",
		"country_of_origin": "Japan",
		"investment_type": "greenfield",
		"investment_date": "2025-03",
		"source_url": "https://news.example/acme",
		"business_description": "Industrial robot arms for mid-size factories."
	}]
}`

func TestPatternDiscoveryAgent_SingleCompany(t *testing.T) {
	search := &scriptedSearch{hits: []tool.SearchHit{
		{Title: "Acme opens German plant", URL: "https://news.example/acme", Snippet: "expansion"},
	}}

	advanced := testutil.NewScriptedModel("advanced").
		AddToolCall("call-1", "web_search", `{"query":"companies that invested in Germany manufacturing"}`).
		AddText("Acme Robotics opened a plant in Germany in March 2025.").
		AddText("Acme ran a two-year hiring spree in Germany before committing.").
		AddText("1. Sustained local hiring precedes the investment.")

	fast := testutil.NewScriptedModel("fast").
		AddText(acmeCompanyJSON).
		AddText(`{"company_name": "Acme Robotics", "is_valid": true, "reasoning": "record is consistent", "corrected_country_of_origin": null}`).
		AddText(`{"company_name": "Acme Robotics", "summary": "Hired 200 engineers locally before investing.", "sources": ["https://news.example/acme"]}`)

	pipeline := NewPatternDiscoveryAgent(Options{Advanced: advanced, Fast: fast, Search: search})

	result := testutil.Run(context.Background(), pipeline, map[string]any{
		StateKeyCountry:  "Germany",
		StateKeyIndustry: "manufacturing",
		StateKeyK:        "3",
	}, "find patterns")
	require.NoError(t, result.Err)

	require.Len(t, search.queries, 1)
	assert.Contains(t, search.queries[0], "Germany")

	structured, ok := result.State[StateKeyCompaniesStructured].(map[string]any)
	require.True(t, ok)
	companies := structured["companies_found"].([]any)
	require.Len(t, companies, 1)

	// the fan-out seeded the per-company key and count
	company, ok := result.State["company_0"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Acme Robotics", company["company_name"])
	assert.EqualValues(t, 1, result.State["company_count"])

	validation, ok := result.State["validation_result_0"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, validation["is_valid"])

	findings, ok := result.State[StateKeyResearchFindings].(string)
	require.True(t, ok)
	assert.Equal(t,
		"--- Finding 1 ---\n"+
			"Name: Acme Robotics\n"+
			"Summary: Hired 200 engineers locally before investing.\n"+
			"Sources: https://news.example/acme",
		findings)

	assert.Equal(t, "1. Sustained local hiring precedes the investment.", result.State[StateKeyDiscoveredPatterns])
}

func TestPatternDiscoveryAgent_NoCompaniesFound(t *testing.T) {
	advanced := testutil.NewScriptedModel("advanced").
		AddText("I could not find any recent investments matching the criteria.").
		AddText("There are no findings to synthesize patterns from.")

	fast := testutil.NewScriptedModel("fast").
		AddText(`{"companies_found": []}`)

	pipeline := NewPatternDiscoveryAgent(Options{Advanced: advanced, Fast: fast, Search: &scriptedSearch{}})

	result := testutil.Run(context.Background(), pipeline, map[string]any{
		StateKeyCountry:  "Germany",
		StateKeyIndustry: "manufacturing",
	}, "find patterns")
	require.NoError(t, result.Err)

	assert.EqualValues(t, 0, result.State["company_count"])
	// The fan-out's own marker survives consolidation untouched.
	assert.Equal(t, agent.EmptyFanOutSentinel, result.State[StateKeyResearchFindings])
	assert.Equal(t, "There are no findings to synthesize patterns from.", result.State[StateKeyDiscoveredPatterns])
}

func TestPatternDiscoveryAgent_InvalidCompanyIsDropped(t *testing.T) {
	advanced := testutil.NewScriptedModel("advanced").
		AddText("Acme Robotics reportedly invested, source unclear.").
		AddText("Could not find concrete expansion signals.").
		AddText("No reliable patterns could be derived.")

	fast := testutil.NewScriptedModel("fast").
		AddText(acmeCompanyJSON).
		AddText(`{"company_name": "Acme Robotics", "is_valid": false, "reasoning": "source does not mention an investment", "corrected_country_of_origin": null}`).
		AddText(`{"company_name": "Acme Robotics", "summary": "No verifiable signals.", "sources": []}`)

	pipeline := NewPatternDiscoveryAgent(Options{Advanced: advanced, Fast: fast, Search: &scriptedSearch{}})

	result := testutil.Run(context.Background(), pipeline, map[string]any{
		StateKeyCountry:  "Germany",
		StateKeyIndustry: "manufacturing",
	}, "find patterns")
	require.NoError(t, result.Err)

	// the findings exist but the failed validation keeps them out
	_, hasFindings := result.State["research_findings_0"]
	assert.True(t, hasFindings)
	assert.Equal(t, agent.NoFindingsSentinel, result.State[StateKeyResearchFindings])
}

func TestPatternDiscoveryAgent_MaxFanOutCap(t *testing.T) {
	twoCompanies := `{
		"companies_found": [
			{"company_name": "Acme Robotics", "country_of_origin": "Japan", "investment_type": "greenfield",
			 "investment_date": "2025-03", "source_url": "https://news.example/acme", "business_description": "Robots."},
			{"company_name": "Beta Logistics", "country_of_origin": "USA", "investment_type": "acquisition",
			 "investment_date": "2025-01", "source_url": "https://news.example/beta", "business_description": "Freight."}
		]
	}`

	advanced := testutil.NewScriptedModel("advanced").
		AddText("Two companies invested recently.").
		AddText("Acme hired locally for two years first.").
		AddText("1. Local hiring precedes investment.")

	fast := testutil.NewScriptedModel("fast").
		AddText(twoCompanies).
		AddText(`{"company_name": "Acme Robotics", "is_valid": true, "reasoning": "ok", "corrected_country_of_origin": null}`).
		AddText(`{"company_name": "Acme Robotics", "summary": "Hiring spree.", "sources": []}`)

	pipeline := NewPatternDiscoveryAgent(Options{Advanced: advanced, Fast: fast, Search: &scriptedSearch{}, MaxFanOut: 1})

	result := testutil.Run(context.Background(), pipeline, map[string]any{
		StateKeyCountry:  "Germany",
		StateKeyIndustry: "manufacturing",
	}, "find patterns")
	require.NoError(t, result.Err)

	assert.EqualValues(t, 1, result.State["company_count"])
	_, seededSecond := result.State["company_1"]
	assert.False(t, seededSecond, "capped items must not be seeded")
}
