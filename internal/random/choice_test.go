package random

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ferroin/roll35/internal/domain/treasure"
	rollerr "github.com/Ferroin/roll35/internal/errors"
)

func TestWeightedChoice_BucketBoundaries(t *testing.T) {
	entries := []treasure.WeightedEntry[string]{
		{Weight: 2, Value: "common"},
		{Weight: 1, Value: "rare"},
	}

	// values 0 and 1 land in the first bucket, 2 in the second
	tests := []struct {
		scripted int
		expected string
	}{
		{scripted: 0, expected: "common"},
		{scripted: 1, expected: "common"},
		{scripted: 2, expected: "rare"},
	}

	for _, tt := range tests {
		src := NewScriptedSource(tt.scripted)
		got, err := WeightedChoice(src, entries)
		require.NoError(t, err)
		assert.Equal(t, tt.expected, got)
	}
}

func TestWeightedChoice_Empty(t *testing.T) {
	_, err := WeightedChoice(NewScriptedSource(), []treasure.WeightedEntry[string]{})
	assert.True(t, rollerr.IsNoMatch(err))
}

func TestWeightedChoice_RejectsZeroWeight(t *testing.T) {
	entries := []treasure.WeightedEntry[string]{{Weight: 0, Value: "never"}}
	_, err := WeightedChoice(NewScriptedSource(), entries)
	assert.True(t, rollerr.IsInvalid(err))
}

func TestWeightedChoice_Convergence(t *testing.T) {
	entries := []treasure.WeightedEntry[string]{
		{Weight: 3, Value: "a"},
		{Weight: 1, Value: "b"},
	}

	src := NewSeededSource(42)
	counts := make(map[string]int)
	const draws = 10000
	for i := 0; i < draws; i++ {
		v, err := WeightedChoice(src, entries)
		require.NoError(t, err)
		counts[v]++
	}

	// expected split is 3:1; allow generous slack for a fixed seed
	ratio := float64(counts["a"]) / float64(draws)
	assert.InDelta(t, 0.75, ratio, 0.03)
}

func TestFilteredChoice(t *testing.T) {
	entries := []treasure.WeightedEntry[int]{
		{Weight: 1, Value: 1},
		{Weight: 1, Value: 2},
		{Weight: 1, Value: 3},
	}

	got, err := FilteredChoice(NewScriptedSource(0), entries, func(v int) bool { return v%2 == 0 })
	require.NoError(t, err)
	assert.Equal(t, 2, got)

	_, err = FilteredChoice(NewScriptedSource(), entries, func(int) bool { return false })
	assert.True(t, rollerr.IsNoMatch(err))
}

func TestCostFilteredChoice(t *testing.T) {
	entries := []treasure.WeightedEntry[*treasure.Item]{
		{Weight: 1, Value: &treasure.Item{Name: "cheap", Cost: treasure.Cost{Value: 50}}},
		{Weight: 1, Value: &treasure.Item{Name: "dear", Cost: treasure.Cost{Value: 5000}}},
		{Weight: 1, Value: &treasure.Item{Name: "varies", Cost: treasure.Cost{Varies: true}}},
	}

	// bounds exclude "cheap"; "dear" and the unknown-cost item survive
	it, err := CostFilteredChoice(NewScriptedSource(0), entries, 1000, 10000)
	require.NoError(t, err)
	assert.Equal(t, "dear", it.Name)

	it, err = CostFilteredChoice(NewScriptedSource(1), entries, 1000, 10000)
	require.NoError(t, err)
	assert.Equal(t, "varies", it.Name)

	// nothing with a known cost below 10, but the varying item passes
	it, err = CostFilteredChoice(NewScriptedSource(0), entries, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, "varies", it.Name)
}

func TestCostFilteredChoice_NoMatchKeepsCode(t *testing.T) {
	entries := []treasure.WeightedEntry[*treasure.Item]{
		{Weight: 1, Value: &treasure.Item{Name: "cheap", Cost: treasure.Cost{Value: 50}}},
	}

	_, err := CostFilteredChoice(NewScriptedSource(), entries, 1000, 2000)
	assert.True(t, rollerr.IsNoMatch(err))
}

func TestUniform(t *testing.T) {
	got, err := Uniform(NewScriptedSource(2), []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Equal(t, "c", got)

	_, err = Uniform(NewScriptedSource(), []string{})
	assert.True(t, rollerr.IsNoMatch(err))
}

func TestScriptedSource_PanicsWhenExhausted(t *testing.T) {
	src := NewScriptedSource(1)
	assert.Equal(t, 1, src.Intn(5))
	assert.Equal(t, 0, src.Remaining())

	assert.Panics(t, func() { src.Intn(5) })
}

func TestScriptedSource_PanicsOutOfRange(t *testing.T) {
	src := NewScriptedSource(7)
	assert.Panics(t, func() { src.Intn(3) })
}
