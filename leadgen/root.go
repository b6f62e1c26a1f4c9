package leadgen

import (
	"github.com/hupe1980/leadmesh/agent"
	"github.com/hupe1980/leadmesh/core"
	"github.com/hupe1980/leadmesh/tool"
)

// NewIntentExtractorAgent builds the intent extraction agent. It classifies
// the user's message into a stage and intent and extracts the target country
// and industry; the after-tool hook folds its result into session state.
func NewIntentExtractorAgent(opts Options) core.Agent {
	a := agent.NewModelAgent(ToolIDIntentExtractor, opts.Fast, func(o *agent.ModelAgentOptions) {
		o.Instruction = agent.NewInstructionFromText(intentExtractorInstruction)
		o.OutputSchema = IntentExtractionSchema()
		o.OutputKey = StateKeyIntentExtraction
	})
	a.SetDescription("Analyzes the user's message and extracts country, industry, conversation stage and intent. Call this first on every new user request.")

	return a
}

// NewRootAgent builds the conversational root agent. The sub-pipelines are
// exposed as tools so the root model decides when to invoke them; the
// user choice tool collects the parameters the flow needs along the way.
func NewRootAgent(opts Options, choices tool.ChoiceProvider) core.Agent {
	root := agent.NewModelAgent("LeadGenerationAssistant", opts.Advanced, func(o *agent.ModelAgentOptions) {
		o.Instruction = agent.NewInstructionFromText(rootInstruction)
		o.Tools = []tool.Tool{
			tool.NewAgentTool(NewIntentExtractorAgent(opts)),
			tool.NewAgentTool(NewPatternDiscoveryAgent(opts)),
			tool.NewAgentTool(NewLeadGenerationAgent(opts)),
			tool.NewUserChoiceTool(choices),
			NewRecallFindingsTool(),
		}
		o.MaxHistoryMessages = 20
	})
	root.SetDescription("Lead generation assistant discovering investment patterns and qualifying new leads.")

	return root
}
