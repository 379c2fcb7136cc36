package config

// Dimension is a named quality axis the judge scores, in [0, 1], weighted
// when combined into an overall score.
type Dimension struct {
	Description string  `json:"description"`
	Weight      float64 `json:"weight" validate:"gte=0"`
}

// Dimensions maps dimension name to its configuration.
type Dimensions map[string]Dimension

// DefaultDimensions returns the single built-in dimension used whenever a
// run's active dimension set would otherwise be empty.
func DefaultDimensions() Dimensions {
	return Dimensions{
		"accuracy": {Description: "How factually correct and on-task the response is.", Weight: 1},
	}
}

// Active computes the active dimension set: the intersection of the
// configured dimensions and the caller's selected subset. An empty
// selection, or a selection with no overlap, falls back to
// DefaultDimensions.
func (d Dimensions) Active(selected []string) Dimensions {
	if len(selected) == 0 {
		return DefaultDimensions()
	}
	active := make(Dimensions, len(selected))
	for _, name := range selected {
		if dim, ok := d[name]; ok {
			active[name] = dim
		}
	}
	if len(active) == 0 {
		return DefaultDimensions()
	}
	return active
}

// Weights extracts the plain name->weight map Active dimensions provide to
// MetricScores.WeightedMean.
func (d Dimensions) Weights() map[string]float64 {
	weights := make(map[string]float64, len(d))
	for name, dim := range d {
		weights[name] = dim.Weight
	}
	return weights
}

// Names returns the dimension names in no particular order.
func (d Dimensions) Names() []string {
	names := make([]string, 0, len(d))
	for name := range d {
		names = append(names, name)
	}
	return names
}
