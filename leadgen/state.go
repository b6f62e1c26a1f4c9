// Package leadgen implements the lead generation research assistant: an
// intent-driven root agent orchestrating pattern discovery and lead
// generation pipelines over shared session state.
package leadgen

// Conversation stages tracked under StateKeyStage. Hooks advance the stage
// in response to tool outcomes; the root agent's instruction branches on it.
const (
	StageInitial          = "initial"
	StagePatternDiscovery = "pattern_discovery"
	StageLeadGeneration   = "lead_generation"
	StagePatternsShown    = "patterns_shown"
	StageFollowUp         = "follow_up"
	StageChitchat         = "chitchat"
)

// Stable tool identifiers. Hooks dispatch on these, never on display names,
// so renaming an agent cannot silently detach its state transitions.
const (
	ToolIDIntentExtractor  = "intent_extractor_agent"
	ToolIDPatternDiscovery = "pattern_discovery_agent"
	ToolIDLeadGeneration   = "lead_generation_agent"
	ToolIDUserChoice       = "get_user_choice"
	ToolIDRecallFindings   = "recall_findings"
)

// Choice context tags passed by the root agent to the user choice tool.
// Hooks use them to interpret the selected option.
const (
	ChoiceContextSetK        = "set_k_for_patterns"
	ChoiceContextConfirmLead = "confirm_lead_generation"
	ChoiceContextSetM        = "set_m_for_leads"
)

// ChoiceConfirmLeads is the affirmative option for the lead generation
// confirmation; any other selection resets the conversation.
const ChoiceConfirmLeads = "Yes, find leads"

// Session state keys.
const (
	StateKeyCountry     = "country"
	StateKeyIndustry    = "industry"
	StateKeyStage       = "stage"
	StateKeyK           = "k"
	StateKeyM           = "m"
	StateKeyCurrentTime = "current_time"
	StateKeyCurrentYear = "current_year"

	StateKeyIntentExtraction = "intent_extraction_result"

	StateKeyCompanyFinderOutput = "company_finder_output"
	StateKeyCompaniesStructured = "companies_found_structured"
	StateKeyResearchFindings    = "all_research_findings"
	StateKeyDiscoveredPatterns  = "discovered_patterns"

	StateKeyLeadFinderOutput = "lead_finder_output"
	StateKeyLeadsStructured  = "leads_found_structured"
	StateKeyLeadFindings     = "all_lead_findings"
	StateKeyLeadReport       = "lead_report"
)

// Index-suffixed key prefixes used by the fan-out pipelines. Item i of a
// fan-out writes "<prefix>_<i>".
const (
	PrefixCompany          = "company"
	PrefixValidation       = "validation_result"
	PrefixSignalSearch     = "signal_searcher_output"
	PrefixResearchFindings = "research_findings"

	PrefixLead           = "lead"
	PrefixLeadValidation = "lead_validation_result"
	PrefixLeadSignal     = "lead_signal_analyzer_output"
	PrefixLeadFindings   = "lead_analysis_findings"
)
