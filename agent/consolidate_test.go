package agent

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/leadmesh/core"
)

func TestConsolidatorAgent_CollectsAscending(t *testing.T) {
	c := NewConsolidatorAgent("consolidate", "finding", "finding_count", "all_findings")

	sess := core.NewSession("test-session")
	sess.SetState("finding_count", 3)
	sess.SetState("finding_0", map[string]any{"summary": "alpha"})
	sess.SetState("finding_1", map[string]any{"summary": "beta"})
	sess.SetState("finding_2", map[string]any{"summary": "gamma"})

	runCtx, _ := newTestContext(t, sess)
	require.NoError(t, c.Run(runCtx))

	v, ok := sess.GetState("all_findings")
	require.True(t, ok)
	assert.Equal(t,
		"--- Finding 1 ---\nSummary: alpha\n\n"+
			"--- Finding 2 ---\nSummary: beta\n\n"+
			"--- Finding 3 ---\nSummary: gamma",
		v)
}

func TestConsolidatorAgent_FormatsFullBlocks(t *testing.T) {
	c := NewConsolidatorAgent("consolidate", "finding", "finding_count", "all_findings")

	sess := core.NewSession("test-session")
	sess.SetState("finding_count", 1)
	sess.SetState("finding_0", map[string]any{
		"company_name": "Acme Robotics",
		"summary":      "Hiring across three new offices",
		"sources":      []any{"https://a.example", "https://b.example"},
	})

	runCtx, _ := newTestContext(t, sess)
	require.NoError(t, c.Run(runCtx))

	v, _ := sess.GetState("all_findings")
	assert.Equal(t,
		"--- Finding 1 ---\n"+
			"Name: Acme Robotics\n"+
			"Summary: Hiring across three new offices\n"+
			"Sources: https://a.example, https://b.example",
		v)
}

func TestConsolidatorAgent_ScalarPayloadRendersAsJSON(t *testing.T) {
	c := NewConsolidatorAgent("consolidate", "finding", "finding_count", "all_findings")

	sess := core.NewSession("test-session")
	sess.SetState("finding_count", 1)
	sess.SetState("finding_0", "alpha")

	runCtx, _ := newTestContext(t, sess)
	require.NoError(t, c.Run(runCtx))

	v, _ := sess.GetState("all_findings")
	assert.Equal(t, "--- Finding 1 ---\n\"alpha\"", v)
}

func TestConsolidatorAgent_SkipsAbsentIndices(t *testing.T) {
	c := NewConsolidatorAgent("consolidate", "finding", "finding_count", "all_findings")

	sess := core.NewSession("test-session")
	sess.SetState("finding_count", 3)
	sess.SetState("finding_0", map[string]any{"summary": "alpha"})
	// finding_1 absent: its branch failed.
	sess.SetState("finding_2", map[string]any{"summary": "gamma"})

	runCtx, _ := newTestContext(t, sess)
	require.NoError(t, c.Run(runCtx))

	// Surviving items are renumbered contiguously.
	v, _ := sess.GetState("all_findings")
	assert.Equal(t,
		"--- Finding 1 ---\nSummary: alpha\n\n"+
			"--- Finding 2 ---\nSummary: gamma",
		v)
}

func TestConsolidatorAgent_FiltersByValidField(t *testing.T) {
	c := NewConsolidatorAgent("consolidate", "finding", "finding_count", "all_findings",
		func(o *ConsolidatorOptions) {
			o.ValidField = "is_valid"
		},
	)

	sess := core.NewSession("test-session")
	sess.SetState("finding_count", 2)
	sess.SetState("finding_0", map[string]any{"is_valid": true, "summary": "keep"})
	sess.SetState("finding_1", map[string]any{"is_valid": false, "summary": "drop"})

	runCtx, _ := newTestContext(t, sess)
	require.NoError(t, c.Run(runCtx))

	v, _ := sess.GetState("all_findings")
	text, ok := v.(string)
	require.True(t, ok)
	assert.Contains(t, text, "keep")
	assert.NotContains(t, text, "drop")
}

func TestConsolidatorAgent_ValidityFromSeparateKey(t *testing.T) {
	c := NewConsolidatorAgent("consolidate", "finding", "finding_count", "all_findings",
		func(o *ConsolidatorOptions) {
			o.ValidPrefix = "validation"
			o.ValidField = "is_valid"
		},
	)

	sess := core.NewSession("test-session")
	sess.SetState("finding_count", 3)
	sess.SetState("finding_0", map[string]any{"summary": "valid one"})
	sess.SetState("validation_0", map[string]any{"is_valid": true})
	sess.SetState("finding_1", map[string]any{"summary": "invalid one"})
	sess.SetState("validation_1", map[string]any{"is_valid": false})
	sess.SetState("finding_2", map[string]any{"summary": "unvalidated"})
	// validation_2 absent: treated as invalid.

	runCtx, _ := newTestContext(t, sess)
	require.NoError(t, c.Run(runCtx))

	v, _ := sess.GetState("all_findings")
	assert.Equal(t, "--- Finding 1 ---\nSummary: valid one", v)
}

func TestConsolidatorAgent_CustomFormatter(t *testing.T) {
	c := NewConsolidatorAgent("consolidate", "finding", "finding_count", "all_findings",
		func(o *ConsolidatorOptions) {
			o.FormatItem = func(ordinal int, payload any) string {
				return fmt.Sprintf("%d: %v", ordinal, payload.(map[string]any)["summary"])
			}
		},
	)

	sess := core.NewSession("test-session")
	sess.SetState("finding_count", 2)
	sess.SetState("finding_0", map[string]any{"summary": "alpha"})
	sess.SetState("finding_1", map[string]any{"summary": "beta"})

	runCtx, _ := newTestContext(t, sess)
	require.NoError(t, c.Run(runCtx))

	v, _ := sess.GetState("all_findings")
	assert.Equal(t, "1: alpha\n\n2: beta", v)
}

func TestConsolidatorAgent_SentinelWhenNothingSurvives(t *testing.T) {
	c := NewConsolidatorAgent("consolidate", "finding", "finding_count", "all_findings",
		func(o *ConsolidatorOptions) {
			o.ValidField = "is_valid"
		},
	)

	sess := core.NewSession("test-session")
	sess.SetState("finding_count", 1)
	sess.SetState("finding_0", map[string]any{"is_valid": false})

	runCtx, emit := newTestContext(t, sess)
	require.NoError(t, c.Run(runCtx))

	v, _ := sess.GetState("all_findings")
	assert.Equal(t, NoFindingsSentinel, v)

	events := drainEvents(emit)
	require.Len(t, events, 1)
	assert.Equal(t, NoFindingsSentinel, events[0].Content.Text())
}

func TestConsolidatorAgent_ZeroCountWritesSentinel(t *testing.T) {
	c := NewConsolidatorAgent("consolidate", "finding", "finding_count", "all_findings")

	sess := core.NewSession("test-session")
	sess.SetState("finding_count", 0)

	runCtx, _ := newTestContext(t, sess)
	require.NoError(t, c.Run(runCtx))

	v, _ := sess.GetState("all_findings")
	assert.Equal(t, NoFindingsSentinel, v)
}

func TestConsolidatorAgent_PreservesEmptyFanOutMarker(t *testing.T) {
	c := NewConsolidatorAgent("consolidate", "finding", "finding_count", "all_findings")

	sess := core.NewSession("test-session")
	sess.SetState("finding_count", 0)
	sess.SetState("all_findings", EmptyFanOutSentinel)

	runCtx, emit := newTestContext(t, sess)
	require.NoError(t, c.Run(runCtx))

	v, _ := sess.GetState("all_findings")
	assert.Equal(t, EmptyFanOutSentinel, v)

	events := drainEvents(emit)
	require.Len(t, events, 1)
	assert.Equal(t, EmptyFanOutSentinel, events[0].Content.Text())
}

func TestConsolidatorAgent_StaleMarkerOverwrittenWhenItemsExist(t *testing.T) {
	c := NewConsolidatorAgent("consolidate", "finding", "finding_count", "all_findings")

	// A previous turn short-circuited; this turn fanned out one item.
	sess := core.NewSession("test-session")
	sess.SetState("all_findings", EmptyFanOutSentinel)
	sess.SetState("finding_count", 1)
	sess.SetState("finding_0", map[string]any{"summary": "alpha"})

	runCtx, _ := newTestContext(t, sess)
	require.NoError(t, c.Run(runCtx))

	v, _ := sess.GetState("all_findings")
	assert.Equal(t, "--- Finding 1 ---\nSummary: alpha", v)
}

func TestConsolidatorAgent_FloatCountFromPersistence(t *testing.T) {
	c := NewConsolidatorAgent("consolidate", "finding", "finding_count", "all_findings")

	sess := core.NewSession("test-session")
	sess.SetState("finding_count", float64(2)) // JSON round-trips numbers as float64
	sess.SetState("finding_0", map[string]any{"summary": "alpha"})
	sess.SetState("finding_1", map[string]any{"summary": "beta"})

	runCtx, _ := newTestContext(t, sess)
	require.NoError(t, c.Run(runCtx))

	v, _ := sess.GetState("all_findings")
	assert.Equal(t,
		"--- Finding 1 ---\nSummary: alpha\n\n"+
			"--- Finding 2 ---\nSummary: beta",
		v)
}

func TestConsolidatorAgent_Idempotent(t *testing.T) {
	c := NewConsolidatorAgent("consolidate", "finding", "finding_count", "all_findings")

	sess := core.NewSession("test-session")
	sess.SetState("finding_count", 1)
	sess.SetState("finding_0", map[string]any{"summary": "alpha"})

	runCtx, _ := newTestContext(t, sess)
	require.NoError(t, c.Run(runCtx))
	first, _ := sess.GetState("all_findings")

	runCtx2, _ := newTestContext(t, sess)
	require.NoError(t, c.Run(runCtx2))
	second, _ := sess.GetState("all_findings")

	assert.Equal(t, first, second)
}
