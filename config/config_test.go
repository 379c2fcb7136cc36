package config_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weave-labs/gepa/config"
)

func TestDefaultDimensionsFallback(t *testing.T) {
	dims := config.Dimensions{
		"tone": {Description: "warmth", Weight: 0.3},
	}
	active := dims.Active(nil)
	assert.Contains(t, active, "accuracy")
	assert.NotContains(t, active, "tone")
}

func TestActiveIsIntersection(t *testing.T) {
	dims := config.Dimensions{
		"tone":     {Description: "warmth", Weight: 0.3},
		"accuracy": {Description: "correctness", Weight: 0.7},
	}
	active := dims.Active([]string{"tone", "nonexistent"})
	assert.Contains(t, active, "tone")
	assert.NotContains(t, active, "accuracy")
	assert.NotContains(t, active, "nonexistent")
}

func TestPresets(t *testing.T) {
	batch, rollouts := config.Preset("light")
	assert.Equal(t, 2, batch)
	assert.Equal(t, 5, rollouts)

	batch, rollouts = config.Preset("unknown")
	assert.Equal(t, 3, batch)
	assert.Equal(t, 10, rollouts)
}

func TestRunConfigValidateRejectsMissingModels(t *testing.T) {
	cfg := &config.RunConfig{
		Selector:           config.SelectorCurrentBest,
		BatchSize:          1,
		CallTimeoutSeconds: 1,
		MaxParallel:        1,
		MaxSteps:           1,
	}
	err := cfg.Validate()
	assert.Error(t, err)
}

func TestRunConfigValidateAcceptsCompleteConfig(t *testing.T) {
	cfg := &config.RunConfig{
		OptimizationModel:  "task-model",
		ReflectionModel:    "reflection-model",
		Selector:           config.SelectorPareto,
		BatchSize:          3,
		CallTimeoutSeconds: 60,
		MaxParallel:        1,
		MaxSteps:           1,
	}
	err := cfg.Validate()
	assert.NoError(t, err)
}

func TestLoadSamplesJSONL(t *testing.T) {
	data := `{"id":"s1","messages":[{"role":"user","content":[{"kind":"text","text":"hi"}]}]}
{"id":"s2","messages":[{"role":"user","content":[{"kind":"text","text":"bye"}]}]}
`
	samples, err := config.LoadSamplesJSONL(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, samples, 2)
	assert.Equal(t, "s1", samples[0].ID)
}

func TestLoadSamplesJSONLRejectsSampleWithoutUserMessage(t *testing.T) {
	data := `{"id":"s1","messages":[{"role":"assistant","content":[{"kind":"text","text":"hi"}]}]}` + "\n"
	_, err := config.LoadSamplesJSONL(strings.NewReader(data))
	assert.Error(t, err)
}
