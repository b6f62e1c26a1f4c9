package leadgen

import (
	"context"
	"time"

	"github.com/hupe1980/leadmesh/agent"
	"github.com/hupe1980/leadmesh/hook"
)

// Hooks builds the hook manager carrying the conversation state machine.
// Stage transitions live here rather than in the agents themselves so the
// root agent's instruction can branch on state the pipelines never touch.
func Hooks() *hook.Manager {
	m := hook.NewManager()
	m.Register(hook.NewFunc(hook.TypeBeforeRun, seedSessionState))
	m.Register(hook.NewFunc(hook.TypeAfterTool, advanceConversation))

	return m
}

// seedSessionState refreshes the clock keys on every run and initializes the
// conversation defaults once per session.
func seedSessionState(_ context.Context, hookCtx *hook.Context) error {
	runCtx := hookCtx.RunContext

	now := time.Now()
	runCtx.SetState(StateKeyCurrentTime, now.Format("2006-01-02 15:04:05"))
	runCtx.SetState(StateKeyCurrentYear, now.Year())

	defaults := map[string]any{
		StateKeyCountry:  "",
		StateKeyIndustry: "",
		StateKeyStage:    StageInitial,
		StateKeyK:        nil,
		StateKeyM:        nil,
	}
	for key, value := range defaults {
		if !runCtx.HasState(key) {
			runCtx.SetState(key, value)
		}
	}

	return nil
}

// advanceConversation is the after-tool state machine. It dispatches on the
// stable tool identifier, never on agent display names.
func advanceConversation(_ context.Context, hookCtx *hook.Context) error {
	toolCtx, outcome := hookCtx.ToolContext, hookCtx.Outcome
	if outcome == nil || outcome.Err != nil {
		return nil
	}

	switch outcome.Tool {
	case ToolIDIntentExtractor:
		applyIntentExtraction(hookCtx)
	case ToolIDPatternDiscovery:
		if hasPatterns(hookCtx) {
			toolCtx.SetState(StateKeyStage, StagePatternsShown)
			rememberPatterns(hookCtx)
		}
	case ToolIDUserChoice:
		applyUserChoice(hookCtx)
	}

	return nil
}

func applyIntentExtraction(hookCtx *hook.Context) {
	toolCtx := hookCtx.ToolContext

	raw, ok := toolCtx.GetState(StateKeyIntentExtraction)
	if !ok {
		return
	}

	extraction, ok := raw.(map[string]any)
	if !ok {
		return
	}

	if country, _ := extraction["country"].(string); country != "" {
		toolCtx.SetState(StateKeyCountry, country)
	}

	if industry, _ := extraction["industry"].(string); industry != "" {
		toolCtx.SetState(StateKeyIndustry, industry)
	}

	if stage, _ := extraction["stage"].(string); stage != "" {
		toolCtx.SetState(StateKeyStage, stage)
	}
}

// hasPatterns reports whether pattern discovery produced a real synthesis,
// as opposed to a sentinel for an empty or fully invalid company batch.
func hasPatterns(hookCtx *hook.Context) bool {
	raw, ok := hookCtx.ToolContext.GetState(StateKeyDiscoveredPatterns)
	if !ok {
		return false
	}

	patterns, _ := raw.(string)

	return patterns != "" && patterns != agent.NoFindingsSentinel && patterns != agent.EmptyFanOutSentinel
}

// rememberPatterns stores a completed synthesis in the memory store so
// follow-up questions can recall it after the working state moves on.
// Storage failure is not fatal to the conversation.
func rememberPatterns(hookCtx *hook.Context) {
	toolCtx := hookCtx.ToolContext

	raw, _ := toolCtx.GetState(StateKeyDiscoveredPatterns)
	patterns, _ := raw.(string)
	if patterns == "" {
		return
	}

	country, _ := toolCtx.GetState(StateKeyCountry)
	industry, _ := toolCtx.GetState(StateKeyIndustry)

	if err := toolCtx.StoreMemory(patterns, map[string]any{
		"kind":     "discovered_patterns",
		"country":  country,
		"industry": industry,
	}); err != nil {
		toolCtx.Logger().Warn("leadgen.hooks.remember_patterns_failed", "error", err)
	}
}

func applyUserChoice(hookCtx *hook.Context) {
	toolCtx, outcome := hookCtx.ToolContext, hookCtx.Outcome

	selected, _ := outcome.Response.(string)
	if selected == "" {
		return
	}

	tag, _ := outcome.Args["context"].(string)

	switch tag {
	case ChoiceContextSetK:
		toolCtx.SetState(StateKeyK, selected)
	case ChoiceContextConfirmLead:
		if selected == ChoiceConfirmLeads {
			toolCtx.SetState(StateKeyStage, StageLeadGeneration)
		} else {
			toolCtx.SetState(StateKeyStage, StageInitial)
			toolCtx.SetState(StateKeyCountry, "")
			toolCtx.SetState(StateKeyIndustry, "")
			toolCtx.SetState(StateKeyK, nil)
		}
	case ChoiceContextSetM:
		toolCtx.SetState(StateKeyM, selected)
	}
}
