// Package pareto maintains per-sample best-score tracking and the
// non-dominated candidate frontier that drives parent selection.
package pareto

import (
	"math/rand"

	"github.com/weave-labs/gepa/types"
)

// Frontier tracks, for an N-sample validation set, the best overall score
// observed per sample and the non-dominated candidate set.
type Frontier struct {
	candidates map[string]types.PromptCandidate
	members    []string

	best           []float64
	bestCandidates [][]string
}

// NewFrontier builds an empty Frontier sized for n samples.
func NewFrontier(n int) *Frontier {
	best := make([]float64, n)
	for i := range best {
		best[i] = -1
	}
	return &Frontier{
		candidates:     make(map[string]types.PromptCandidate),
		best:           best,
		bestCandidates: make([][]string, n),
	}
}

// Best returns the current per-sample best scores.
func (f *Frontier) Best() []float64 {
	out := make([]float64, len(f.best))
	copy(out, f.best)
	return out
}

// Members returns the ids currently in the non-dominated frontier.
func (f *Frontier) Members() []string {
	out := make([]string, len(f.members))
	copy(out, f.members)
	return out
}

// Candidate looks up a known candidate by id.
func (f *Frontier) Candidate(id string) (types.PromptCandidate, bool) {
	c, ok := f.candidates[id]
	return c, ok
}

// Observe records, for candidateId, the overall score attained on each
// original sample index present in scores. A batch drawn with replacement
// need not cover every sample; indices absent from scores are left
// untouched, so best[i] only ever reflects samples the candidate was
// actually evaluated against.
func (f *Frontier) Observe(candidateID string, scores map[int]float64) {
	for i, score := range scores {
		if i < 0 || i >= len(f.best) {
			continue
		}
		switch {
		case score > f.best[i]:
			f.best[i] = score
			f.bestCandidates[i] = []string{candidateID}
		case score == f.best[i]:
			f.bestCandidates[i] = append(f.bestCandidates[i], candidateID)
		}
	}
}

// dominates reports whether a dominates b over dims: a's score is ≥ b's on
// every dimension, with strict inequality on at least one.
func dominates(a, b types.PromptCandidate, dims []string) bool {
	strictlyBetter := false
	for _, d := range dims {
		av, bv := a.Metrics[d], b.Metrics[d]
		if av < bv {
			return false
		}
		if av > bv {
			strictlyBetter = true
		}
	}
	return strictlyBetter
}

// UpdateFrontier inserts newCandidate into the known candidate index and
// the non-dominated frontier: any existing member dominated by
// newCandidate is removed; newCandidate is added iff no existing member
// dominates it.
func (f *Frontier) UpdateFrontier(newCandidate types.PromptCandidate, activeDimensions []string) {
	f.candidates[newCandidate.ID] = newCandidate

	dominated := false
	kept := f.members[:0:0]
	for _, id := range f.members {
		existing := f.candidates[id]
		if dominates(newCandidate, existing, activeDimensions) {
			continue
		}
		if dominates(existing, newCandidate, activeDimensions) {
			dominated = true
		}
		kept = append(kept, id)
	}
	if !dominated {
		kept = append(kept, newCandidate.ID)
	}
	f.members = kept
}

// Selector chooses a parent candidate id from the frontier's known state.
type Selector interface {
	Select(f *Frontier) string
}

// CurrentBestSelector returns the candidate with the highest overallScore
// among all candidates ever added. This is the spec's default selector.
type CurrentBestSelector struct{}

func (CurrentBestSelector) Select(f *Frontier) string {
	var bestID string
	bestScore := -1.0
	for id, c := range f.candidates {
		if c.OverallScore > bestScore {
			bestScore = c.OverallScore
			bestID = id
		}
	}
	return bestID
}

// ParetoSelector uniformly samples from the union of all bestCandidates[i]
// sets, an alternative to always exploiting the single best candidate.
type ParetoSelector struct {
	Rand *rand.Rand
}

func (s ParetoSelector) Select(f *Frontier) string {
	seen := make(map[string]bool)
	var pool []string
	for _, ids := range f.bestCandidates {
		for _, id := range ids {
			if !seen[id] {
				seen[id] = true
				pool = append(pool, id)
			}
		}
	}
	if len(pool) == 0 {
		return CurrentBestSelector{}.Select(f)
	}
	if s.Rand == nil {
		return pool[rand.Intn(len(pool))]
	}
	return pool[s.Rand.Intn(len(pool))]
}
