package evaluator_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/invopop/jsonschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weave-labs/gepa/config"
	"github.com/weave-labs/gepa/evaluator"
	"github.com/weave-labs/gepa/judge"
	"github.com/weave-labs/gepa/llmclient"
	"github.com/weave-labs/gepa/trajectory"
	"github.com/weave-labs/gepa/types"
)

type stubClient struct {
	textResponses map[string]string
	objectErr     func(sampleText string) error
}

func (c *stubClient) TextGenerate(_ context.Context, _, _ string, messages []types.Message, _ []types.Tool) (llmclient.TextResult, error) {
	text := messages[0].Text()
	resp := c.textResponses[text]
	return llmclient.TextResult{Steps: []llmclient.Step{{Text: resp}}, Text: resp}, nil
}

func (c *stubClient) StructuredGenerate(context.Context, string, string, string, *jsonschema.Schema) (string, error) {
	return "", errors.New("not used")
}

func (c *stubClient) ObjectGenerate(_ context.Context, _ string, _ *jsonschema.Schema, prompt string) (json.RawMessage, error) {
	if c.objectErr != nil {
		if err := c.objectErr(prompt); err != nil {
			return nil, err
		}
	}
	return json.RawMessage(`{"scores":{"accuracy":0.7},"detailedFeedback":"ok","suggestedImprovements":"tighten wording"}`), nil
}

func dims() config.Dimensions {
	return config.Dimensions{"accuracy": {Description: "correctness", Weight: 1}}
}

func batchFixture(n int) []types.Sample {
	batch := make([]types.Sample, n)
	for i := range batch {
		batch[i] = types.Sample{
			ID:       string(rune('a' + i)),
			Messages: []types.Message{{Role: types.RoleUser, Content: []types.Part{types.TextPart(string(rune('a' + i)))}}},
		}
	}
	return batch
}

func TestEvaluateAggregatesAcrossBatch(t *testing.T) {
	client := &stubClient{textResponses: map[string]string{"a": "resp-a", "b": "resp-b", "c": "resp-c"}}
	gen := trajectory.NewGenerator(5, nil)
	j := judge.NewJudge(nil)
	ev := evaluator.NewEvaluator(gen, j, 2, 0, nil)

	result := ev.Evaluate(context.Background(), batchFixture(3), "prompt", client, client, evaluator.Options{
		Mode:            trajectory.ModeText,
		TaskModel:       "task-model",
		ReflectionModel: "reflection-model",
		Dimensions:      dims(),
	})

	assert.InDelta(t, 0.7, result.Metrics["accuracy"], 1e-9)
	assert.InDelta(t, 0.7, result.OverallScore, 1e-9)
	require.Len(t, result.Feedbacks, 3)
	require.Len(t, result.Suggestions, 3)
	for _, f := range result.Feedbacks {
		assert.Equal(t, "ok", f)
	}
}

func TestEvaluateEmptyBatchReturnsZero(t *testing.T) {
	client := &stubClient{}
	gen := trajectory.NewGenerator(5, nil)
	j := judge.NewJudge(nil)
	ev := evaluator.NewEvaluator(gen, j, 4, 0, nil)

	result := ev.Evaluate(context.Background(), nil, "prompt", client, client, evaluator.Options{Dimensions: dims()})

	assert.Equal(t, 0.0, result.OverallScore)
	assert.Empty(t, result.Metrics)
}

func TestEvaluateJudgeFailureMidBatchStillAggregatesRest(t *testing.T) {
	client := &stubClient{
		textResponses: map[string]string{"a": "resp-a", "b": "resp-b", "c": "resp-c"},
		objectErr: func(prompt string) error {
			if containsSampleB(prompt) {
				return errors.New("judge boom")
			}
			return nil
		},
	}
	gen := trajectory.NewGenerator(5, nil)
	j := judge.NewJudge(nil)
	ev := evaluator.NewEvaluator(gen, j, 3, 0, nil)

	result := ev.Evaluate(context.Background(), batchFixture(3), "prompt", client, client, evaluator.Options{
		Mode:            trajectory.ModeText,
		TaskModel:       "task-model",
		ReflectionModel: "reflection-model",
		Dimensions:      dims(),
	})

	require.Len(t, result.Feedbacks, 3)
	assert.Contains(t, result.Feedbacks[1], "[judge failed:")
	assert.Equal(t, 0.7, result.Metrics["accuracy"], "aggregation excludes the failed sample, not treats it as zero")
}

func containsSampleB(prompt string) bool {
	for _, r := range prompt {
		if r == 'b' {
			return true
		}
	}
	return false
}
