package tool

import (
	"testing"

	"github.com/hupe1980/agentfleet/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistryKnowsBuiltins(t *testing.T) {
	r := NewDefaultRegistry()

	assert.True(t, r.Known(core.ToolWebSearch))
	assert.True(t, r.Known(core.ToolFinance))
	assert.False(t, r.Known("CRYSTAL_BALL"))
	assert.Equal(t, []core.ToolKind{core.ToolFinance, core.ToolWebSearch}, r.Kinds())
}

func TestResolveWebSearch(t *testing.T) {
	r := NewDefaultRegistry()

	tl, err := r.Resolve(core.ToolSpec{
		Kind:    core.ToolWebSearch,
		Options: map[string]any{"max_results": float64(3), "region": "us-en"},
	})
	require.NoError(t, err)
	assert.Equal(t, "web_search", tl.Name())
}

func TestResolveFinance(t *testing.T) {
	r := NewDefaultRegistry()

	tl, err := r.Resolve(core.ToolSpec{
		Kind:    core.ToolFinance,
		Options: map[string]any{"company_news": false},
	})
	require.NoError(t, err)
	assert.Equal(t, "finance", tl.Name())
}

func TestResolveUnknownKind(t *testing.T) {
	r := NewDefaultRegistry()

	_, err := r.Resolve(core.ToolSpec{Kind: "CRYSTAL_BALL"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CRYSTAL_BALL")
}

func TestResolveInvalidOptions(t *testing.T) {
	r := NewDefaultRegistry()

	_, err := r.Resolve(core.ToolSpec{
		Kind:    core.ToolWebSearch,
		Options: map[string]any{"max_results": "three"},
	})
	require.Error(t, err)

	_, err = r.Resolve(core.ToolSpec{
		Kind:    core.ToolFinance,
		Options: map[string]any{"stock_price": "yes"},
	})
	require.Error(t, err)
}
