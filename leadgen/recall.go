package leadgen

import (
	"fmt"

	"github.com/hupe1980/leadmesh/core"
	"github.com/hupe1980/leadmesh/schema"
	"github.com/hupe1980/leadmesh/tool"
)

const defaultRecallLimit = 5

// NewRecallFindingsTool exposes the memory store to the root agent so
// follow-up questions can be answered from previously synthesized patterns
// even after the working state has been reset.
func NewRecallFindingsTool() tool.Tool {
	return tool.NewFunctionTool(
		ToolIDRecallFindings,
		"Recall previously discovered investment patterns and lead findings from earlier turns of this session. Use this in the follow_up stage when the user asks about results that are no longer in the current state.",
		schema.Object(map[string]*schema.Property{
			"query": schema.String("Free-text query describing what to recall, e.g. a country or industry"),
		}),
		recallFindings,
	)
}

func recallFindings(toolCtx *core.ToolContext, args map[string]any) (any, error) {
	query, _ := args["query"].(string)

	results, err := toolCtx.SearchMemory(query, defaultRecallLimit)
	if err != nil {
		return nil, fmt.Errorf("recall failed: %w", err)
	}

	findings := make([]map[string]any, 0, len(results))
	for _, r := range results {
		findings = append(findings, map[string]any{
			"content":  r.Content,
			"metadata": r.Metadata,
		})
	}

	toolCtx.Logger().Debug("leadgen.recall_findings.done", "query", query, "count", len(findings))

	return map[string]any{
		"query":    query,
		"count":    len(findings),
		"findings": findings,
	}, nil
}
