package optimize_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/invopop/jsonschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weave-labs/gepa/config"
	"github.com/weave-labs/gepa/events"
	"github.com/weave-labs/gepa/llmclient"
	"github.com/weave-labs/gepa/optimize"
	"github.com/weave-labs/gepa/types"
)

// fakeClient drives both the task model and the reflection model. A
// TextGenerate call with an empty system argument is treated as a
// reflection-rewrite request (the rewriter always passes system ""); any
// other TextGenerate call is a task-model trajectory step and echoes its
// system prompt verbatim, so the judge (which renders the trajectory back
// to text) can recover which candidate prompt produced it.
type fakeClient struct {
	rewriteCount int
	scoreFor     func(judgePrompt string) float64
}

func (c *fakeClient) TextGenerate(_ context.Context, _, system string, _ []types.Message, _ []types.Tool) (llmclient.TextResult, error) {
	if system == "" {
		c.rewriteCount++
		text := fmt.Sprintf("REWRITE_%d", c.rewriteCount)
		return llmclient.TextResult{Text: text}, nil
	}
	return llmclient.TextResult{Steps: []llmclient.Step{{Text: system}}, Text: system}, nil
}

func (c *fakeClient) StructuredGenerate(context.Context, string, string, string, *jsonschema.Schema) (string, error) {
	return "", errors.New("not used")
}

func (c *fakeClient) ObjectGenerate(_ context.Context, _ string, _ *jsonschema.Schema, prompt string) (json.RawMessage, error) {
	score := c.scoreFor(prompt)
	raw := fmt.Sprintf(`{"scores":{"accuracy":%.2f},"detailedFeedback":"fb","suggestedImprovements":"imp"}`, score)
	return json.RawMessage(raw), nil
}

func samplesFixture(n int) []types.Sample {
	out := make([]types.Sample, n)
	for i := range out {
		out[i] = types.Sample{
			ID:       fmt.Sprintf("s%d", i),
			Messages: []types.Message{{Role: types.RoleUser, Content: []types.Part{types.TextPart("hi")}}},
		}
	}
	return out
}

func baseConfig() *config.RunConfig {
	return &config.RunConfig{
		OptimizationModel:  "task-model",
		ReflectionModel:    "reflection-model",
		BatchSize:          2,
		NumRollouts:        3,
		MaxParallel:        2,
		MaxSteps:           5,
		Selector:           config.SelectorCurrentBest,
		CallTimeoutSeconds: 60,
	}
}

func dims() config.Dimensions {
	return config.Dimensions{"accuracy": {Description: "correctness", Weight: 1}}
}

func TestExecuteNoSamplesEmitsError(t *testing.T) {
	sink := &events.SliceSink{}
	client := &fakeClient{scoreFor: func(string) float64 { return 0.4 }}
	loop := optimize.NewLoop(baseConfig(), dims(), optimize.Clients{Task: client, Reflection: client}, sink, nil, nil)

	finalPrompt, candidates := loop.Execute(context.Background(), nil, "seed prompt", optimize.Options{})

	assert.Equal(t, "seed prompt", finalPrompt)
	assert.Empty(t, candidates)
	require.Len(t, sink.Events, 1)
	assert.Equal(t, events.KindError, sink.Events[0].Kind)
	assert.Equal(t, "no_samples", sink.Events[0].Reason)
}

func TestExecuteStructuredModeWithoutSchemaEmitsError(t *testing.T) {
	sink := &events.SliceSink{}
	client := &fakeClient{scoreFor: func(string) float64 { return 0.4 }}
	cfg := baseConfig()
	cfg.UseStructuredOutput = true
	loop := optimize.NewLoop(cfg, dims(), optimize.Clients{Task: client, Reflection: client}, sink, nil, nil)

	finalPrompt, candidates := loop.Execute(context.Background(), samplesFixture(3), "seed prompt", optimize.Options{})

	assert.Equal(t, "seed prompt", finalPrompt)
	assert.Empty(t, candidates)
	require.Len(t, sink.Events, 1)
	assert.Equal(t, "missing_schema", sink.Events[0].Reason)
}

func scoreByRewriteMarker(prompt string) float64 {
	switch {
	case strings.Contains(prompt, "REWRITE_3"):
		return 0.7
	case strings.Contains(prompt, "REWRITE_2"):
		return 0.6
	case strings.Contains(prompt, "REWRITE_1"):
		return 0.5
	default:
		return 0.4
	}
}

func TestExecuteAcceptsStrictlyImprovingRewrites(t *testing.T) {
	sink := &events.SliceSink{}
	client := &fakeClient{scoreFor: scoreByRewriteMarker}
	loop := optimize.NewLoop(baseConfig(), dims(), optimize.Clients{Task: client, Reflection: client}, sink, nil, nil)

	finalPrompt, candidates := loop.Execute(context.Background(), samplesFixture(3), "seed prompt", optimize.Options{})

	assert.Equal(t, "REWRITE_3", finalPrompt)
	require.Len(t, candidates, 4)
	assert.Equal(t, types.SeedCandidateID, candidates[0].ID)
	assert.Equal(t, "candidate-1", candidates[1].ID)
	assert.Equal(t, "candidate-2", candidates[2].ID)
	assert.Equal(t, "candidate-3", candidates[3].ID)
	assert.InDelta(t, 0.7, candidates[3].OverallScore, 1e-9)

	var completeEvent *events.Event
	for i := range sink.Events {
		if sink.Events[i].Kind == events.KindComplete {
			completeEvent = &sink.Events[i]
		}
	}
	require.NotNil(t, completeEvent)
	assert.Equal(t, 4, completeEvent.CollectionSize)
	assert.InDelta(t, 0.7, completeEvent.BestScore, 1e-9)
}

func TestExecuteWithZeroRolloutsKeepsSeed(t *testing.T) {
	sink := &events.SliceSink{}
	client := &fakeClient{scoreFor: scoreByRewriteMarker}
	cfg := baseConfig()
	cfg.NumRollouts = 0
	loop := optimize.NewLoop(cfg, dims(), optimize.Clients{Task: client, Reflection: client}, sink, nil, nil)

	finalPrompt, candidates := loop.Execute(context.Background(), samplesFixture(3), "seed prompt", optimize.Options{})

	assert.Equal(t, "seed prompt", finalPrompt)
	require.Len(t, candidates, 1)
	assert.Equal(t, types.SeedCandidateID, candidates[0].ID)
	assert.InDelta(t, 0.4, candidates[0].OverallScore, 1e-9)
}
