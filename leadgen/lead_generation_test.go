package leadgen

import (
	"context"
	"testing"

	"github.com/hupe1980/leadmesh/agent"
	"github.com/hupe1980/leadmesh/core"
	"github.com/hupe1980/leadmesh/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeadGenerationAgent_SingleLead(t *testing.T) {
	advanced := testutil.NewScriptedModel("advanced").
		AddText("Gamma Mobility shows the same hiring pattern in Germany.").
		AddText("Gamma posted 40 German engineering roles over the last year.").
		AddText("# Lead Report\n\n1. Gamma Mobility, matching the local hiring pattern.")

	fast := testutil.NewScriptedModel("fast").
		AddText(`{"potential_leads": [{
			"company_name": "Gamma Mobility",
			"country_of_origin": "Sweden",
			"business_description": "Fleet software for logistics companies."
		}]}`).
		AddText(`{"company_name": "Gamma Mobility", "is_valid": true, "reasoning": "exhibits the hiring pattern"}`).
		AddText(`{"company_name": "Gamma Mobility", "summary": "Sustained German hiring over twelve months.", "sources": ["https://jobs.example/gamma"]}`)

	pipeline := NewLeadGenerationAgent(Options{Advanced: advanced, Fast: fast, Search: &scriptedSearch{}})

	result := testutil.Run(context.Background(), pipeline, map[string]any{
		StateKeyCountry:            "Germany",
		StateKeyIndustry:           "manufacturing",
		StateKeyDiscoveredPatterns: "1. Sustained local hiring precedes the investment.",
		StateKeyM:                  "5",
	}, "find leads")
	require.NoError(t, result.Err)

	lead, ok := result.State["lead_0"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Gamma Mobility", lead["company_name"])
	assert.EqualValues(t, 1, result.State["lead_count"])

	findings, ok := result.State[StateKeyLeadFindings].(string)
	require.True(t, ok)
	assert.Equal(t,
		"--- Finding 1 ---\n"+
			"Name: Gamma Mobility\n"+
			"Summary: Sustained German hiring over twelve months.\n"+
			"Sources: https://jobs.example/gamma",
		findings)

	report, ok := result.State[StateKeyLeadReport].(string)
	require.True(t, ok)
	assert.Contains(t, report, "Gamma Mobility")
}

func TestLeadGenerationAgent_RequiresDiscoveredPatterns(t *testing.T) {
	pipeline := NewLeadGenerationAgent(Options{
		Advanced: testutil.NewScriptedModel("advanced"),
		Fast:     testutil.NewScriptedModel("fast"),
		Search:   &scriptedSearch{},
	})

	result := testutil.Run(context.Background(), pipeline, map[string]any{
		StateKeyCountry:  "Germany",
		StateKeyIndustry: "manufacturing",
	}, "find leads")
	require.Error(t, result.Err)

	var missing *core.MissingStateError
	require.ErrorAs(t, result.Err, &missing)
	assert.Equal(t, StateKeyDiscoveredPatterns, missing.Key)
}

func TestLeadGenerationAgent_NoLeadsFound(t *testing.T) {
	advanced := testutil.NewScriptedModel("advanced").
		AddText("No companies currently match the discovered patterns.").
		AddText("# Lead Report\n\nNo qualified leads were found this time.")

	fast := testutil.NewScriptedModel("fast").
		AddText(`{"potential_leads": []}`)

	pipeline := NewLeadGenerationAgent(Options{Advanced: advanced, Fast: fast, Search: &scriptedSearch{}})

	result := testutil.Run(context.Background(), pipeline, map[string]any{
		StateKeyCountry:            "Germany",
		StateKeyIndustry:           "manufacturing",
		StateKeyDiscoveredPatterns: "1. Sustained local hiring precedes the investment.",
	}, "find leads")
	require.NoError(t, result.Err)

	assert.EqualValues(t, 0, result.State["lead_count"])
	// The fan-out's own marker survives consolidation untouched.
	assert.Equal(t, agent.EmptyFanOutSentinel, result.State[StateKeyLeadFindings])
	assert.Contains(t, result.State[StateKeyLeadReport], "No qualified leads")
}
