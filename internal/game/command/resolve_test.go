package command

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

var rocks = []string{"Copper Ore", "Tin Ore", "Iron Ore", "Coal Ore", "Gold Ore", "Mithril Ore"}
var logs = []string{"Normal Log", "Oak Log", "Willow Log", "Teak Log", "Maple Log", "Mahogany Log", "Yew Log"}

func TestResolveTarget_Exact(t *testing.T) {
	got, err := ResolveTarget("copper ore", rocks)
	require.NoError(t, err)
	assert.Equal(t, "Copper Ore", got)

	got, err = ResolveTarget("oak_log", logs)
	require.NoError(t, err)
	assert.Equal(t, "Oak Log", got)
}

func TestResolveTarget_UniquePrefix(t *testing.T) {
	got, err := ResolveTarget("oak", logs)
	require.NoError(t, err)
	assert.Equal(t, "Oak Log", got)

	got, err = ResolveTarget("mith", rocks)
	require.NoError(t, err)
	assert.Equal(t, "Mithril Ore", got)
}

func TestResolveTarget_AmbiguousPrefix(t *testing.T) {
	_, err := ResolveTarget("m", logs)
	assert.True(t, errors.Is(err, ErrAmbiguous))
	assert.Contains(t, err.Error(), "Maple Log")
	assert.Contains(t, err.Error(), "Mahogany Log")
}

func TestResolveTarget_Typo(t *testing.T) {
	got, err := ResolveTarget("coper ore", rocks)
	require.NoError(t, err)
	assert.Equal(t, "Copper Ore", got)
}

func TestResolveTarget_NoMatch(t *testing.T) {
	_, err := ResolveTarget("runite", rocks)
	assert.True(t, errors.Is(err, ErrNoMatch))
	assert.Contains(t, err.Error(), "Copper Ore")

	_, err = ResolveTarget("", rocks)
	assert.True(t, errors.Is(err, ErrNoMatch))
}

func TestResolveTarget_ShortInputSkipsFuzzy(t *testing.T) {
	_, err := ResolveTarget("xx", []string{"xy"})
	assert.True(t, errors.Is(err, ErrNoMatch))
}

func TestProperty_ResolveTargetExactAlwaysWins(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		c := rapid.SampledFrom(rocks).Draw(t, "candidate")
		got, err := ResolveTarget(c, rocks)
		if err != nil || got != c {
			t.Fatalf("ResolveTarget(%q) = %q, %v", c, got, err)
		}
	})
}
