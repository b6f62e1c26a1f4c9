// Package review implements the code review assistant: a review pipeline
// producing structured feedback on submitted code and a bounded fix loop
// that rewrites the code until its tests pass.
package review

import (
	"github.com/hupe1980/leadmesh/agent"
	"github.com/hupe1980/leadmesh/core"
	"github.com/hupe1980/leadmesh/model"
	"github.com/hupe1980/leadmesh/schema"
	"github.com/hupe1980/leadmesh/tool"
)

// Session state keys.
const (
	StateKeyCode           = "code_to_review"
	StateKeyAnalysis       = "code_analysis"
	StateKeyStyleCheck     = "style_check"
	StateKeyTestResults    = "test_results"
	StateKeyReviewFeedback = "review_feedback"

	StateKeyFixedCode      = "fixed_code"
	StateKeyFixTestResults = "fix_test_results"
	StateKeyFixValidation  = "fix_validation"
	StateKeyFixStatus      = "fix_status"
	StateKeyFixSummary     = "fix_summary"
)

// Fix loop verdicts and statuses.
const (
	VerdictSuccessful = "SUCCESSFUL"
	VerdictFailed     = "FAILED"

	StatusResolved   = "resolved"
	StatusUnresolved = "unresolved"
)

// Options carries the shared dependencies for the review agents.
type Options struct {
	// Advanced is the model used for analysis, fixing and synthesis.
	Advanced model.Model

	// Fast is the model used for style checks and validation verdicts.
	Fast model.Model

	// Executor backs the execute_code tool used by the test runners.
	Executor tool.CodeExecutor

	// MaxFixAttempts bounds the fix loop. Values below one fall back to 3.
	MaxFixAttempts int
}

// fixValidationSchema constrains the fix validator's verdict. The loop stop
// condition reads the verdict field.
func fixValidationSchema() map[string]any {
	return schema.Object(map[string]*schema.Property{
		"verdict":   schema.Enum("Whether the fix resolved all test failures", VerdictSuccessful, VerdictFailed),
		"reasoning": schema.String("Short justification for the verdict"),
	}, "verdict", "reasoning")
}

// NewReviewAgent builds the review pipeline: analyze the code, check its
// style, run its tests, and synthesize the findings into actionable
// feedback.
func NewReviewAgent(opts Options) core.Agent {
	analyzer := agent.NewModelAgent("CodeAnalyzer", opts.Advanced, func(o *agent.ModelAgentOptions) {
		o.Instruction = agent.NewInstructionFromText(analyzerInstruction)
		o.RequireState = []string{StateKeyCode}
		o.OutputKey = StateKeyAnalysis
	})

	styleChecker := agent.NewModelAgent("StyleChecker", opts.Fast, func(o *agent.ModelAgentOptions) {
		o.Instruction = agent.NewInstructionFromText(styleCheckerInstruction)
		o.RequireState = []string{StateKeyCode}
		o.OutputKey = StateKeyStyleCheck
	})

	testRunner := agent.NewModelAgent("TestRunner", opts.Advanced, func(o *agent.ModelAgentOptions) {
		o.Instruction = agent.NewInstructionFromText(testRunnerInstruction)
		o.RequireState = []string{StateKeyCode}
		o.OutputKey = StateKeyTestResults
		o.Tools = []tool.Tool{tool.NewCodeExecutionTool(opts.Executor)}
	})

	synthesizer := agent.NewModelAgent("FeedbackSynthesizer", opts.Advanced, func(o *agent.ModelAgentOptions) {
		o.Instruction = agent.NewInstructionFromText(feedbackInstruction)
		o.RequireState = []string{StateKeyAnalysis, StateKeyStyleCheck, StateKeyTestResults}
		o.OutputKey = StateKeyReviewFeedback
	})

	pipeline := agent.NewSequentialAgent("code_review_agent",
		analyzer, styleChecker, testRunner, synthesizer)
	pipeline.SetDescription("Reviews submitted code: static analysis, style check, test execution and synthesized feedback.")

	return pipeline
}

// NewFixAgent builds the fix pipeline: a bounded loop of fixer, test runner
// and validator that stops as soon as a fix attempt passes validation,
// followed by a status marker and a summary of the outcome. An exhausted
// loop still reaches the summary, carrying the last attempt's artifacts
// under an unresolved status.
func NewFixAgent(opts Options) core.Agent {
	maxAttempts := opts.MaxFixAttempts
	if maxAttempts < 1 {
		maxAttempts = 3
	}

	fixer := agent.NewModelAgent("CodeFixer", opts.Advanced, func(o *agent.ModelAgentOptions) {
		o.Instruction = agent.NewInstructionFromText(fixerInstruction)
		o.RequireState = []string{StateKeyCode, StateKeyReviewFeedback}
		o.OutputKey = StateKeyFixedCode
	})

	fixTestRunner := agent.NewModelAgent("FixTestRunner", opts.Advanced, func(o *agent.ModelAgentOptions) {
		o.Instruction = agent.NewInstructionFromText(fixTestRunnerInstruction)
		o.RequireState = []string{StateKeyFixedCode}
		o.OutputKey = StateKeyFixTestResults
		o.Tools = []tool.Tool{tool.NewCodeExecutionTool(opts.Executor)}
	})

	fixValidator := agent.NewModelAgent("FixValidator", opts.Fast, func(o *agent.ModelAgentOptions) {
		o.Instruction = agent.NewInstructionFromText(fixValidatorInstruction)
		o.RequireState = []string{StateKeyFixTestResults}
		o.OutputSchema = fixValidationSchema()
		o.OutputKey = StateKeyFixValidation
	})

	loop := agent.NewLoopAgent("FixLoop",
		[]core.Agent{fixer, fixTestRunner, fixValidator},
		agent.WithMaxIters(maxAttempts),
		agent.WithStopWhen(fixSucceeded),
	)

	summarizer := agent.NewModelAgent("FixSynthesizer", opts.Advanced, func(o *agent.ModelAgentOptions) {
		o.Instruction = agent.NewInstructionFromText(fixSummaryInstruction)
		o.RequireState = []string{StateKeyFixedCode, StateKeyFixStatus}
		o.OutputKey = StateKeyFixSummary
	})

	pipeline := agent.NewSequentialAgent("code_fix_agent",
		loop, newFixStatusAgent(), summarizer)
	pipeline.SetDescription("Iteratively fixes reviewed code until its tests pass, bounded by the configured number of attempts.")

	return pipeline
}

// fixSucceeded is the loop stop condition: the last validation verdict was
// successful.
func fixSucceeded(state map[string]any) bool {
	validation, _ := state[StateKeyFixValidation].(map[string]any)
	verdict, _ := validation["verdict"].(string)

	return verdict == VerdictSuccessful
}
