package selector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextEmptyPools(t *testing.T) {
	s := NewWithSeed(1)
	_, ok := Next[string](s, nil, nil, nil)
	assert.False(t, ok)
}

func TestNextProblemIsWorstFirst(t *testing.T) {
	s := NewWithSeed(7)
	problem := []string{"/θ/", "/f/", "/v/"}
	for i := 0; i < 200; i++ {
		sel, ok := Next(s, problem, []string{"/m/"}, []string{"/s/"})
		require.True(t, ok)
		if sel.Focus == FocusProblem {
			assert.Equal(t, "/θ/", sel.Item)
			assert.Equal(t, "Focusing on challenging area", sel.Reason)
		}
	}
}

func TestNextWeighting(t *testing.T) {
	s := NewWithSeed(42)
	problem := []int{1, 2}
	mastered := []int{3, 4}
	fresh := []int{5, 6}

	const draws = 10000
	counts := map[Focus]int{}
	for i := 0; i < draws; i++ {
		sel, ok := Next(s, problem, mastered, fresh)
		require.True(t, ok)
		counts[sel.Focus]++
	}
	assert.InDelta(t, 0.7, float64(counts[FocusProblem])/draws, 0.03)
	assert.InDelta(t, 0.2, float64(counts[FocusNew])/draws, 0.03)
	assert.InDelta(t, 0.1, float64(counts[FocusMastered])/draws, 0.03)
}

func TestNextFallbacks(t *testing.T) {
	s := NewWithSeed(3)
	for i := 0; i < 100; i++ {
		sel, ok := Next(s, nil, nil, []string{"cat"})
		require.True(t, ok)
		assert.Equal(t, FocusNew, sel.Focus)
		assert.Equal(t, "cat", sel.Item)
	}
	for i := 0; i < 100; i++ {
		sel, ok := Next(s, nil, []string{"dog"}, nil)
		require.True(t, ok)
		assert.Equal(t, FocusMastered, sel.Focus)
	}
}

func TestNextProblemOnlyPoolNeverMisses(t *testing.T) {
	s := NewWithSeed(11)
	for i := 0; i < 1000; i++ {
		sel, ok := Next(s, []string{"sun", "bus"}, nil, nil)
		require.True(t, ok)
		assert.Equal(t, FocusProblem, sel.Focus)
		assert.Equal(t, "sun", sel.Item)
	}
}

func TestSeededSelectorsAgree(t *testing.T) {
	a := NewWithSeed(99)
	b := NewWithSeed(99)
	items := []string{"a", "b", "c", "d", "e"}
	for i := 0; i < 50; i++ {
		sa, _ := Next(a, nil, items, items)
		sb, _ := Next(b, nil, items, items)
		assert.Equal(t, sa, sb)
	}
}

func TestShuffleAndPick(t *testing.T) {
	s := NewWithSeed(5)
	items := []int{1, 2, 3, 4, 5, 6}
	Shuffle(s, items)
	assert.ElementsMatch(t, []int{1, 2, 3, 4, 5, 6}, items)

	_, ok := Pick[int](s, nil)
	assert.False(t, ok)
	v, ok := Pick(s, items)
	assert.True(t, ok)
	assert.Contains(t, items, v)
}
