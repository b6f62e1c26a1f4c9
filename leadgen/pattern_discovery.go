package leadgen

import (
	"fmt"

	"github.com/hupe1980/leadmesh/agent"
	"github.com/hupe1980/leadmesh/core"
	"github.com/hupe1980/leadmesh/model"
	"github.com/hupe1980/leadmesh/tool"
)

// Options carries the shared dependencies for the lead generation agents.
type Options struct {
	// Advanced is the model used for research and synthesis steps.
	Advanced model.Model

	// Fast is the model used for formatting and validation steps.
	Fast model.Model

	// Search backs the web_search tool used by the research agents.
	Search tool.SearchProvider

	// MaxFanOut caps how many companies or leads are researched in
	// parallel. Zero means no cap.
	MaxFanOut int
}

// NewPatternDiscoveryAgent builds the pattern discovery pipeline: find
// companies that recently invested in the target market, structure them,
// validate and research each one concurrently, consolidate the surviving
// findings, and synthesize the common pre-investment patterns.
func NewPatternDiscoveryAgent(opts Options) core.Agent {
	finder := agent.NewModelAgent("CompanyFinder", opts.Advanced, func(o *agent.ModelAgentOptions) {
		o.Instruction = agent.NewInstructionFromText(companyFinderInstruction)
		o.RequireState = []string{StateKeyCountry, StateKeyIndustry}
		o.OutputKey = StateKeyCompanyFinderOutput
		o.Tools = []tool.Tool{tool.NewWebSearchTool(opts.Search)}
	})

	formatter := agent.NewModelAgent("CompanyFormatter", opts.Fast, func(o *agent.ModelAgentOptions) {
		o.Instruction = agent.NewInstructionFromText(companyFormatterInstruction)
		o.RequireState = []string{StateKeyCompanyFinderOutput}
		o.OutputSchema = CompanyFinderOutputSchema()
		o.OutputKey = StateKeyCompaniesStructured
	})

	fanOut := agent.NewFanOutAgent(
		"CompanyResearch",
		StateKeyCompaniesStructured,
		func(i int) (core.Agent, error) { return newCompanyResearchPipeline(i, opts), nil },
		func(o *agent.FanOutOptions) {
			o.ItemsField = "companies_found"
			o.ItemKeyPrefix = PrefixCompany
			o.EmptyKey = StateKeyResearchFindings
			o.MaxItems = opts.MaxFanOut
		},
	)

	consolidator := agent.NewConsolidatorAgent(
		"ResearchConsolidator",
		PrefixResearchFindings,
		fanOut.CountKey(),
		StateKeyResearchFindings,
		func(o *agent.ConsolidatorOptions) {
			o.ValidPrefix = PrefixValidation
			o.ValidField = "is_valid"
		},
	)

	synthesizer := agent.NewModelAgent("PatternSynthesizer", opts.Advanced, func(o *agent.ModelAgentOptions) {
		o.Instruction = agent.NewInstructionFromText(synthesizerInstruction)
		o.RequireState = []string{StateKeyResearchFindings}
		o.OutputKey = StateKeyDiscoveredPatterns
	})

	pipeline := agent.NewSequentialAgent(ToolIDPatternDiscovery,
		finder, formatter, fanOut, consolidator, synthesizer)
	pipeline.SetDescription("Discovers the pre-investment patterns of companies that recently invested in the target market. Requires country, industry and k in session state.")

	return pipeline
}

// newCompanyResearchPipeline builds the per-company branch: validate the
// record, search for its pre-investment signals, and structure the findings.
// Each step reads and writes only index-suffixed keys, keeping concurrent
// branches disjoint.
func newCompanyResearchPipeline(i int, opts Options) core.Agent {
	companyKey := fmt.Sprintf("%s_%d", PrefixCompany, i)
	signalKey := fmt.Sprintf("%s_%d", PrefixSignalSearch, i)

	validator := agent.NewModelAgent(fmt.Sprintf("CompanyValidator_%d", i), opts.Fast, func(o *agent.ModelAgentOptions) {
		o.Instruction = agent.NewInstructionFromText(indexedPrompt(validatorInstruction, "company_data", companyKey))
		o.RequireState = []string{companyKey}
		o.OutputSchema = ValidationResultSchema()
		o.OutputKey = fmt.Sprintf("%s_%d", PrefixValidation, i)
	})

	searcher := agent.NewModelAgent(fmt.Sprintf("SignalSearcher_%d", i), opts.Advanced, func(o *agent.ModelAgentOptions) {
		o.Instruction = agent.NewInstructionFromText(indexedPrompt(signalSearcherInstruction, "company_data", companyKey))
		o.RequireState = []string{companyKey}
		o.OutputKey = signalKey
		o.Tools = []tool.Tool{tool.NewWebSearchTool(opts.Search)}
	})

	formatter := agent.NewModelAgent(fmt.Sprintf("FindingsFormatter_%d", i), opts.Fast, func(o *agent.ModelAgentOptions) {
		o.Instruction = agent.NewInstructionFromText(indexedPrompt(findingsFormatterInstruction, "signal_data", signalKey))
		o.RequireState = []string{signalKey}
		o.OutputSchema = ResearchFindingsSchema()
		o.OutputKey = fmt.Sprintf("%s_%d", PrefixResearchFindings, i)
	})

	return agent.NewSequentialAgent(fmt.Sprintf("CompanyResearchPipeline_%d", i),
		validator, searcher, formatter)
}
