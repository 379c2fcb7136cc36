package pareto_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weave-labs/gepa/pareto"
	"github.com/weave-labs/gepa/types"
)

func candidate(id string, metrics types.MetricScores, overall float64) types.PromptCandidate {
	return types.PromptCandidate{ID: id, Prompt: id, Metrics: metrics, OverallScore: overall}
}

func TestFrontierConsistencyLaw(t *testing.T) {
	f := pareto.NewFrontier(2)
	dims := []string{"tone", "accuracy"}

	b := candidate("B", types.MetricScores{"tone": 0.5, "accuracy": 0.5}, 0.5)
	f.UpdateFrontier(b, dims)
	require.Contains(t, f.Members(), "B")

	a := candidate("A", types.MetricScores{"tone": 0.9, "accuracy": 0.9}, 0.9)
	f.UpdateFrontier(a, dims)

	assert.NotContains(t, f.Members(), "B", "B is strictly dominated by A on every dimension")
	assert.Contains(t, f.Members(), "A")
}

func TestParetoDiversityScenario(t *testing.T) {
	f := pareto.NewFrontier(1)
	dims := []string{"tone", "accuracy"}

	a := candidate("A", types.MetricScores{"tone": 0.9, "accuracy": 0.5}, 0.7)
	b := candidate("B", types.MetricScores{"tone": 0.5, "accuracy": 0.9}, 0.7)
	f.UpdateFrontier(a, dims)
	f.UpdateFrontier(b, dims)
	assert.Len(t, f.Members(), 2, "neither A nor B dominates the other")

	c := candidate("C", types.MetricScores{"tone": 0.95, "accuracy": 0.95}, 0.95)
	f.UpdateFrontier(c, dims)
	assert.Equal(t, []string{"C"}, f.Members())
}

func TestObserveTracksBestPerSampleAndIgnoresUnobserved(t *testing.T) {
	f := pareto.NewFrontier(3)

	f.Observe("cand-1", map[int]float64{0: 0.4, 2: 0.6})
	assert.Equal(t, []float64{0.4, -1, 0.6}, f.Best())

	f.Observe("cand-2", map[int]float64{0: 0.9, 1: 0.2})
	best := f.Best()
	assert.Equal(t, 0.9, best[0])
	assert.Equal(t, 0.2, best[1])
	assert.Equal(t, 0.6, best[2], "sample 2 was never observed by cand-2, best must not regress")
}

func TestCurrentBestSelectorPicksHighestOverallScore(t *testing.T) {
	f := pareto.NewFrontier(1)
	f.UpdateFrontier(candidate("seed", types.MetricScores{"accuracy": 0.4}, 0.4), []string{"accuracy"})
	f.UpdateFrontier(candidate("candidate-1", types.MetricScores{"accuracy": 0.8}, 0.8), []string{"accuracy"})

	selector := pareto.CurrentBestSelector{}
	assert.Equal(t, "candidate-1", selector.Select(f))
}
