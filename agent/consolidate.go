package agent

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hupe1980/leadmesh/core"
)

// NoFindingsSentinel is written to the consolidation output key when no item
// survived filtering, so downstream agents see an explicit marker instead of
// an empty list or absent key.
const NoFindingsSentinel = "no findings"

// ConsolidatorOptions configures a ConsolidatorAgent.
type ConsolidatorOptions struct {
	// ValidField names a boolean field on each item; items where it is not
	// true are dropped. Empty disables filtering.
	ValidField string

	// ValidPrefix, when set, reads the validity flag from the separate
	// indexed key "<ValidPrefix>_<i>" instead of the item itself. This
	// supports pipelines whose validation step writes its verdict next to,
	// not inside, the research payload.
	ValidPrefix string

	// ItemsField selects a field inside each indexed value that holds the
	// payload to collect. Empty collects the value itself.
	ItemsField string

	// Sentinel written to the output key when nothing survives. Defaults to
	// NoFindingsSentinel.
	Sentinel string

	// FormatItem renders one surviving payload into a text block. Blocks are
	// joined in ascending index order into the output text. Nil selects the
	// default formatter covering name/summary/sources records.
	FormatItem func(ordinal int, payload any) string
}

// ConsolidatorAgent gathers the index-suffixed results of a fan-out back
// into a single human-readable text block.
//
// It scans "<prefix>_0" .. "<prefix>_<count-1>" in ascending index order,
// reading the bound from the count key the fan-out wrote. Absent indices are
// skipped silently; a failed branch simply contributes nothing. Each
// surviving item is formatted into a block and the joined text is written to
// the output key in deterministic order, or the sentinel when none survive.
// When the fan-out already short-circuited, the empty marker it wrote is
// left in place untouched.
//
// ConsolidatorAgent is purely mechanical, no model call is involved.
type ConsolidatorAgent struct {
	BaseAgent
	sourcePrefix string
	countKey     string
	outputKey    string
	opts         ConsolidatorOptions
}

// NewConsolidatorAgent creates a consolidator collecting "<sourcePrefix>_<i>"
// values bounded by countKey into outputKey.
func NewConsolidatorAgent(
	name, sourcePrefix, countKey, outputKey string,
	optFns ...func(o *ConsolidatorOptions),
) *ConsolidatorAgent {
	opts := ConsolidatorOptions{Sentinel: NoFindingsSentinel}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &ConsolidatorAgent{
		BaseAgent:    NewBaseAgent(name),
		sourcePrefix: sourcePrefix,
		countKey:     countKey,
		outputKey:    outputKey,
		opts:         opts,
	}
}

// OutputKeys declares the consolidation output key.
func (c *ConsolidatorAgent) OutputKeys() []string { return []string{c.outputKey} }

// valid reports whether item i passes the configured validity filter.
func (c *ConsolidatorAgent) valid(runCtx *core.RunContext, i int, item any) bool {
	if c.opts.ValidField == "" {
		return true
	}

	source := item
	if c.opts.ValidPrefix != "" {
		v, ok := runCtx.GetState(fmt.Sprintf("%s_%d", c.opts.ValidPrefix, i))
		if !ok {
			return false
		}
		source = v
	}

	m, isMap := source.(map[string]any)
	if !isMap {
		return false
	}

	flag, _ := m[c.opts.ValidField].(bool)

	return flag
}

// payload extracts the collectible value from an indexed item.
func (c *ConsolidatorAgent) payload(item any) any {
	if c.opts.ItemsField == "" {
		return item
	}

	m, isMap := item.(map[string]any)
	if !isMap {
		return nil
	}

	return m[c.opts.ItemsField]
}

// defaultItemBlock formats one payload as a labeled block. Map payloads get
// their name, summary and source list as separate lines; anything else is
// rendered as compact JSON.
func defaultItemBlock(ordinal int, payload any) string {
	lines := []string{fmt.Sprintf("--- Finding %d ---", ordinal)}

	m, isMap := payload.(map[string]any)
	if !isMap {
		raw, _ := json.Marshal(payload)
		return strings.Join(append(lines, string(raw)), "\n")
	}

	if name, _ := m["company_name"].(string); name != "" {
		lines = append(lines, fmt.Sprintf("Name: %s", name))
	}
	if summary, _ := m["summary"].(string); summary != "" {
		lines = append(lines, fmt.Sprintf("Summary: %s", summary))
	}
	if raw, ok := m["sources"].([]any); ok && len(raw) > 0 {
		sources := make([]string, 0, len(raw))
		for _, s := range raw {
			if str, isStr := s.(string); isStr {
				sources = append(sources, str)
			}
		}
		lines = append(lines, fmt.Sprintf("Sources: %s", strings.Join(sources, ", ")))
	}

	return strings.Join(lines, "\n")
}

// Run implements core.Agent collecting surviving items in ascending index order.
func (c *ConsolidatorAgent) Run(runCtx *core.RunContext) error {
	count := 0
	if v, ok := runCtx.GetState(c.countKey); ok {
		switch n := v.(type) {
		case int:
			count = n
		case float64:
			count = int(n)
		}
	}

	// A short-circuited fan-out already wrote its marker; leave it in place.
	if count == 0 {
		if existing, ok := runCtx.GetState(c.outputKey); ok && existing == EmptyFanOutSentinel {
			runCtx.LogInfo("agent.consolidate.skipped", "agent", c.Name(), "output_key", c.outputKey)

			ev := core.NewMessageEvent(runCtx.RunID, c.Name(), EmptyFanOutSentinel)
			if err := runCtx.EmitEvent(ev); err != nil {
				return err
			}

			return runCtx.WaitForResume()
		}
	}

	format := c.opts.FormatItem
	if format == nil {
		format = defaultItemBlock
	}

	blocks := make([]string, 0, count)
	skipped := 0

	for i := 0; i < count; i++ {
		item, ok := runCtx.GetState(fmt.Sprintf("%s_%d", c.sourcePrefix, i))
		if !ok {
			skipped++
			continue
		}

		if !c.valid(runCtx, i, item) {
			skipped++
			continue
		}

		if p := c.payload(item); p != nil {
			blocks = append(blocks, format(len(blocks)+1, p))
		}
	}

	runCtx.LogInfo("agent.consolidate.done",
		"agent", c.Name(),
		"collected", len(blocks),
		"skipped", skipped,
	)

	var summary string
	if len(blocks) == 0 {
		runCtx.SetState(c.outputKey, c.opts.Sentinel)
		summary = c.opts.Sentinel
	} else {
		runCtx.SetState(c.outputKey, strings.Join(blocks, "\n\n"))
		summary = fmt.Sprintf("consolidated %d of %d results", len(blocks), count)
	}

	ev := core.NewMessageEvent(runCtx.RunID, c.Name(), summary)
	if err := runCtx.EmitEvent(ev); err != nil {
		return err
	}

	return runCtx.WaitForResume()
}
