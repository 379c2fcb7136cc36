package types

// MetricScores maps a dimension name to a score in [0, 1]. A dimension
// absent from the map is treated as not evaluated, never as zero — the
// "missing means absent" rule applies everywhere scores are aggregated.
type MetricScores map[string]float64

// Clamp returns a copy with every value restricted to [0, 1], the rule the
// judge applies to anything an LLM returns outside range.
func (m MetricScores) Clamp() MetricScores {
	out := make(MetricScores, len(m))
	for k, v := range m {
		switch {
		case v < 0:
			out[k] = 0
		case v > 1:
			out[k] = 1
		default:
			out[k] = v
		}
	}
	return out
}

// WeightedMean computes the weighted mean of the scores present in m over
// the supplied dimension weights. Dimensions absent from m are excluded
// from both the numerator and the weight total, not treated as zero. An
// empty result (no overlapping dimensions) returns 0.
func (m MetricScores) WeightedMean(weights map[string]float64) float64 {
	var sum, totalWeight float64
	for dim, weight := range weights {
		score, ok := m[dim]
		if !ok {
			continue
		}
		sum += score * weight
		totalWeight += weight
	}
	if totalWeight == 0 {
		return 0
	}
	return sum / totalWeight
}

// MeanAcross computes, for each dimension present in any element of scores,
// the arithmetic mean over only the elements where that dimension is
// present. This implements the Batch Evaluator's per-dimension aggregation
// rule.
func MeanAcross(scores []MetricScores) MetricScores {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, s := range scores {
		for dim, val := range s {
			sums[dim] += val
			counts[dim]++
		}
	}
	out := make(MetricScores, len(sums))
	for dim, sum := range sums {
		out[dim] = sum / float64(counts[dim])
	}
	return out
}

// MeanOverallScore is the arithmetic mean of a batch's per-sample overall
// scores. An empty batch returns 0.
func MeanOverallScore(overall []float64) float64 {
	if len(overall) == 0 {
		return 0
	}
	var sum float64
	for _, v := range overall {
		sum += v
	}
	return sum / float64(len(overall))
}
