package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// Selector names a pluggable candidate-selection strategy for the
// optimization loop.
type Selector string

const (
	SelectorCurrentBest Selector = "current_best"
	SelectorPareto      Selector = "pareto"
)

// RunConfig mirrors the OptimizeRequest contract plus the enumerated
// knobs that parameterize one optimization run. It is loadable from the
// environment via caarlos0/env and validated via go-playground/validator
// struct tags.
type RunConfig struct {
	OptimizationModel   string        `env:"GEPA_OPTIMIZATION_MODEL" validate:"required"`
	ReflectionModel     string        `env:"GEPA_REFLECTION_MODEL"   validate:"required"`
	SelectedMetrics     []string      `env:"GEPA_SELECTED_METRICS"   envSeparator:","`
	Selector            Selector      `env:"GEPA_SELECTOR"           envDefault:"current_best" validate:"oneof=current_best pareto"`
	BatchSize           int           `env:"GEPA_BATCH_SIZE"         envDefault:"3"  validate:"gte=1"`
	NumRollouts         int           `env:"GEPA_NUM_ROLLOUTS"       envDefault:"10" validate:"gte=0"`
	MaxParallel         int           `env:"GEPA_MAX_PARALLEL"       envDefault:"4"  validate:"gte=1"`
	MaxSteps            int           `env:"GEPA_MAX_STEPS"          envDefault:"5"  validate:"gte=1"`
	CallTimeoutSeconds  int           `env:"GEPA_CALL_TIMEOUT_SECONDS" envDefault:"60" validate:"gt=0"`
	UseStructuredOutput bool          `env:"GEPA_USE_STRUCTURED_OUTPUT" envDefault:"false"`
}

// CallTimeout is CallTimeoutSeconds as a time.Duration.
func (c RunConfig) CallTimeout() time.Duration {
	return time.Duration(c.CallTimeoutSeconds) * time.Second
}

// LoadRunConfig reads RunConfig from the environment. Required fields
// (OptimizationModel, ReflectionModel) still need to be supplied by the
// caller if absent from the environment; Validate catches that before a
// run starts.
func LoadRunConfig() (*RunConfig, error) {
	cfg := &RunConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Preset returns the (batchSize, numRollouts) pair for one of the
// original optimizer's shorthand auto modes. RunConfig itself still takes
// explicit values; this is only a convenience constructor.
func Preset(name string) (batchSize, numRollouts int) {
	switch name {
	case "light":
		return 2, 5
	case "heavy":
		return 5, 20
	case "medium":
		fallthrough
	default:
		return 3, 10
	}
}
