package leadgen

import (
	"fmt"

	"github.com/hupe1980/leadmesh/agent"
	"github.com/hupe1980/leadmesh/core"
	"github.com/hupe1980/leadmesh/tool"
)

// NewLeadGenerationAgent builds the lead generation pipeline: search for
// companies currently showing the discovered pre-investment patterns,
// structure them, validate and analyze each one concurrently, consolidate
// the surviving analyses, and compile the final report.
func NewLeadGenerationAgent(opts Options) core.Agent {
	finder := agent.NewModelAgent("LeadFinder", opts.Advanced, func(o *agent.ModelAgentOptions) {
		o.Instruction = agent.NewInstructionFromText(leadFinderInstruction)
		o.RequireState = []string{StateKeyCountry, StateKeyIndustry, StateKeyDiscoveredPatterns}
		o.OutputKey = StateKeyLeadFinderOutput
		o.Tools = []tool.Tool{tool.NewWebSearchTool(opts.Search)}
	})

	formatter := agent.NewModelAgent("LeadFormatter", opts.Fast, func(o *agent.ModelAgentOptions) {
		o.Instruction = agent.NewInstructionFromText(leadFormatterInstruction)
		o.RequireState = []string{StateKeyLeadFinderOutput}
		o.OutputSchema = LeadFinderOutputSchema()
		o.OutputKey = StateKeyLeadsStructured
	})

	fanOut := agent.NewFanOutAgent(
		"LeadResearch",
		StateKeyLeadsStructured,
		func(i int) (core.Agent, error) { return newLeadResearchPipeline(i, opts), nil },
		func(o *agent.FanOutOptions) {
			o.ItemsField = "potential_leads"
			o.ItemKeyPrefix = PrefixLead
			o.EmptyKey = StateKeyLeadFindings
			o.MaxItems = opts.MaxFanOut
		},
	)

	consolidator := agent.NewConsolidatorAgent(
		"LeadConsolidator",
		PrefixLeadFindings,
		fanOut.CountKey(),
		StateKeyLeadFindings,
		func(o *agent.ConsolidatorOptions) {
			o.ValidPrefix = PrefixLeadValidation
			o.ValidField = "is_valid"
		},
	)

	compiler := agent.NewModelAgent("ReportCompiler", opts.Advanced, func(o *agent.ModelAgentOptions) {
		o.Instruction = agent.NewInstructionFromText(reportCompilerInstruction)
		o.RequireState = []string{StateKeyLeadFindings}
		o.OutputKey = StateKeyLeadReport
	})

	pipeline := agent.NewSequentialAgent(ToolIDLeadGeneration,
		finder, formatter, fanOut, consolidator, compiler)
	pipeline.SetDescription("Finds new leads currently exhibiting the discovered pre-investment patterns and compiles a report. Requires discovered_patterns and m in session state.")

	return pipeline
}

// newLeadResearchPipeline builds the per-lead branch: validate the lead
// against the discovered patterns, analyze which signals it exhibits, and
// structure the analysis.
func newLeadResearchPipeline(i int, opts Options) core.Agent {
	leadKey := fmt.Sprintf("%s_%d", PrefixLead, i)
	signalKey := fmt.Sprintf("%s_%d", PrefixLeadSignal, i)

	validator := agent.NewModelAgent(fmt.Sprintf("LeadValidator_%d", i), opts.Fast, func(o *agent.ModelAgentOptions) {
		o.Instruction = agent.NewInstructionFromText(indexedPrompt(leadValidatorInstruction, "company_data", leadKey))
		o.RequireState = []string{leadKey}
		o.OutputSchema = LeadValidationSchema()
		o.OutputKey = fmt.Sprintf("%s_%d", PrefixLeadValidation, i)
	})

	analyzer := agent.NewModelAgent(fmt.Sprintf("LeadSignalAnalyzer_%d", i), opts.Advanced, func(o *agent.ModelAgentOptions) {
		o.Instruction = agent.NewInstructionFromText(indexedPrompt(leadSignalAnalyzerInstruction, "company_data", leadKey))
		o.RequireState = []string{leadKey}
		o.OutputKey = signalKey
		o.Tools = []tool.Tool{tool.NewWebSearchTool(opts.Search)}
	})

	formatter := agent.NewModelAgent(fmt.Sprintf("LeadFindingsFormatter_%d", i), opts.Fast, func(o *agent.ModelAgentOptions) {
		o.Instruction = agent.NewInstructionFromText(indexedPrompt(leadFindingsFormatterInstruction, "signal_data", signalKey))
		o.RequireState = []string{signalKey}
		o.OutputSchema = LeadFindingsSchema()
		o.OutputKey = fmt.Sprintf("%s_%d", PrefixLeadFindings, i)
	})

	return agent.NewSequentialAgent(fmt.Sprintf("LeadResearchPipeline_%d", i),
		validator, analyzer, formatter)
}
