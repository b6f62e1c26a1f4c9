package agent

import (
	"fmt"

	"github.com/hupe1980/leadmesh/core"
)

// EmptyFanOutSentinel is written to the consolidation key when a fan-out
// source holds no items, so downstream agents see an explicit marker instead
// of an absent key.
const EmptyFanOutSentinel = "nothing to process"

// FanOutOptions configures a FanOutAgent.
type FanOutOptions struct {
	// ItemsField selects a field inside the list key's map value that holds
	// the item slice. Empty means the value itself is the slice.
	ItemsField string

	// ItemKeyPrefix is the prefix for per-item state keys. Item i is seeded
	// under "<prefix>_<i>" before its pipeline launches. Defaults to "item".
	ItemKeyPrefix string

	// EmptyKey is the state key that receives the empty sentinel when the
	// source holds no items, typically the consolidation output key.
	EmptyKey string

	// MaxItems caps how many items are fanned out. Zero means no cap.
	MaxItems int
}

// FanOutAgent expands a list in session state into one pipeline per item and
// runs them concurrently.
//
// At run time the agent reads the item slice from the list key, seeds each
// item under an index-suffixed state key, and asks the builder for a
// pipeline per index. Index-suffixed keys keep concurrent pipelines
// disjoint; the built pipelines are executed as a parallel group, so a
// failed item only costs that item's outputs.
//
// An absent or empty source short-circuits the whole expansion: the empty
// sentinel is written to the configured key and no pipelines run.
type FanOutAgent struct {
	BaseAgent
	listKey  string
	build    func(index int) (core.Agent, error)
	opts     FanOutOptions
	countKey string
}

// NewFanOutAgent creates a fan-out coordinator over the list stored at
// listKey. The builder is invoked once per item index to construct that
// item's pipeline.
func NewFanOutAgent(
	name, listKey string,
	build func(index int) (core.Agent, error),
	optFns ...func(o *FanOutOptions),
) *FanOutAgent {
	opts := FanOutOptions{ItemKeyPrefix: "item"}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &FanOutAgent{
		BaseAgent: NewBaseAgent(name),
		listKey:   listKey,
		build:     build,
		opts:      opts,
		countKey:  fmt.Sprintf("%s_count", opts.ItemKeyPrefix),
	}
}

// CountKey returns the state key holding the number of fanned-out items.
// Consolidators use it as their scan bound.
func (f *FanOutAgent) CountKey() string { return f.countKey }

// items extracts the item slice from the state value at the list key.
// An absent key, sentinel strings and empty slices all count as no items.
func (f *FanOutAgent) items(runCtx *core.RunContext) ([]any, error) {
	value, ok := runCtx.GetState(f.listKey)
	if !ok {
		return nil, nil
	}

	if f.opts.ItemsField != "" {
		m, isMap := value.(map[string]any)
		if !isMap {
			return nil, fmt.Errorf("fan-out %s: state key %q is not an object with field %q", f.Name(), f.listKey, f.opts.ItemsField)
		}
		value = m[f.opts.ItemsField]
	}

	if value == nil {
		return nil, nil
	}
	if _, isSentinel := value.(string); isSentinel {
		return nil, nil
	}

	items, isSlice := value.([]any)
	if !isSlice {
		return nil, fmt.Errorf("fan-out %s: state key %q does not hold a list", f.Name(), f.listKey)
	}

	if f.opts.MaxItems > 0 && len(items) > f.opts.MaxItems {
		items = items[:f.opts.MaxItems]
	}

	return items, nil
}

// Run implements core.Agent. It seeds per-item state, builds the item
// pipelines and runs them as a parallel group.
func (f *FanOutAgent) Run(runCtx *core.RunContext) error {
	items, err := f.items(runCtx)
	if err != nil {
		return err
	}

	if len(items) == 0 {
		runCtx.LogInfo("agent.fanout.empty", "agent", f.Name(), "list_key", f.listKey)

		runCtx.SetState(f.countKey, 0)
		if f.opts.EmptyKey != "" {
			runCtx.SetState(f.opts.EmptyKey, EmptyFanOutSentinel)
		}

		ev := core.NewMessageEvent(runCtx.RunID, f.Name(), EmptyFanOutSentinel)
		if err := runCtx.EmitEvent(ev); err != nil {
			return err
		}

		return runCtx.WaitForResume()
	}

	// Seed item payloads and the count before any pipeline launches so every
	// branch observes them in its snapshot.
	for i, item := range items {
		runCtx.SetState(fmt.Sprintf("%s_%d", f.opts.ItemKeyPrefix, i), item)
	}
	runCtx.SetState(f.countKey, len(items))

	seedEv := core.NewMessageEvent(runCtx.RunID, f.Name(), fmt.Sprintf("fanning out over %d items", len(items)))
	if err := runCtx.EmitEvent(seedEv); err != nil {
		return err
	}
	if err := runCtx.WaitForResume(); err != nil {
		return err
	}

	children := make([]core.Agent, 0, len(items))
	for i := range items {
		child, err := f.build(i)
		if err != nil {
			return fmt.Errorf("fan-out %s: building pipeline %d: %w", f.Name(), i, err)
		}
		children = append(children, child)
	}

	group := NewParallelAgent(fmt.Sprintf("%s_group", f.Name()), children...)

	return group.Run(runCtx)
}
