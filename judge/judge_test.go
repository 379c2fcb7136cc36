package judge_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/invopop/jsonschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/weave-labs/gepa/config"
	"github.com/weave-labs/gepa/judge"
	"github.com/weave-labs/gepa/llmclient"
	"github.com/weave-labs/gepa/types"
	"github.com/weave-labs/gepa/utils"
)

func dims() config.Dimensions {
	return config.Dimensions{
		"accuracy": {Description: "factual correctness", Weight: 1},
		"tone":     {Description: "politeness", Weight: 0.5},
	}
}

func sample() types.Sample {
	return types.Sample{
		ID:       "s1",
		Messages: []types.Message{{Role: types.RoleUser, Content: []types.Part{types.TextPart("hi")}}},
	}
}

func traj() types.Trajectory {
	return types.Trajectory{
		ID: "t1",
		Messages: []types.Message{
			{Role: types.RoleUser, Content: []types.Part{types.TextPart("hi")}},
			{Role: types.RoleAssistant, Content: []types.Part{types.TextPart("hello")}},
		},
	}
}

type objectOnlyClient struct {
	raw json.RawMessage
	err error
}

func (c *objectOnlyClient) TextGenerate(context.Context, string, string, []types.Message, []types.Tool) (llmclient.TextResult, error) {
	return llmclient.TextResult{}, errors.New("not used")
}

func (c *objectOnlyClient) StructuredGenerate(context.Context, string, string, string, *jsonschema.Schema) (string, error) {
	return "", errors.New("not used")
}

func (c *objectOnlyClient) ObjectGenerate(context.Context, string, *jsonschema.Schema, string) (json.RawMessage, error) {
	return c.raw, c.err
}

func TestJudgeScoreSuccess(t *testing.T) {
	raw := json.RawMessage(`{"scores":{"accuracy":0.9,"tone":1.5},"detailedFeedback":"good","suggestedImprovements":"be terser"}`)
	client := &objectOnlyClient{raw: raw}

	j := judge.NewJudge(nil)
	result := j.Score(context.Background(), client, "reflection-model", sample(), traj(), dims())

	require.Equal(t, 0.9, result.Metrics["accuracy"])
	assert.Equal(t, 1.0, result.Metrics["tone"], "tone score above range must be clamped to 1")
	assert.Equal(t, "good", result.DetailedFeedback)
	assert.Equal(t, "be terser", result.SuggestedImprovements)
	assert.InDelta(t, (0.9*1+1.0*0.5)/1.5, result.OverallScore, 1e-9)
}

func TestJudgeScoreMissingDimensionExcludedFromMean(t *testing.T) {
	raw := json.RawMessage(`{"scores":{"accuracy":0.6},"detailedFeedback":"","suggestedImprovements":""}`)
	client := &objectOnlyClient{raw: raw}

	j := judge.NewJudge(nil)
	result := j.Score(context.Background(), client, "reflection-model", sample(), traj(), dims())

	_, hasTone := result.Metrics["tone"]
	assert.False(t, hasTone)
	assert.Equal(t, 0.6, result.OverallScore)
}

func TestJudgeScoreFailureContract(t *testing.T) {
	client := &objectOnlyClient{err: errors.New("provider timeout")}

	j := judge.NewJudge(nil)
	result := j.Score(context.Background(), client, "reflection-model", sample(), traj(), dims())

	assert.Empty(t, result.Metrics)
	assert.Equal(t, 0.0, result.OverallScore)
	assert.Contains(t, result.DetailedFeedback, "[judge failed:")
	assert.Empty(t, result.SuggestedImprovements)
}

func TestJudgeScoreInvalidJSONContract(t *testing.T) {
	client := &objectOnlyClient{raw: json.RawMessage(`not json`)}

	j := judge.NewJudge(nil)
	result := j.Score(context.Background(), client, "reflection-model", sample(), traj(), dims())

	assert.Empty(t, result.Metrics)
	assert.Contains(t, result.DetailedFeedback, "[judge failed:")
}

func TestJudgeScoreLogsWarningOnFailure(t *testing.T) {
	client := &objectOnlyClient{err: errors.New("provider timeout")}

	logger := &utils.MockLogger{}
	logger.On("Warn", "judge call failed", mock.Anything).Return()

	j := judge.NewJudge(logger)
	j.Score(context.Background(), client, "reflection-model", sample(), traj(), dims())

	logger.AssertCalled(t, "Warn", "judge call failed", mock.Anything)
}

func TestJudgeScoreLogsWarningOnMissingScores(t *testing.T) {
	client := &objectOnlyClient{raw: json.RawMessage(`{"detailedFeedback":"x","suggestedImprovements":"y"}`)}

	logger := &utils.MockLogger{}
	logger.On("Warn", "judge response failed validation", mock.Anything).Return()

	j := judge.NewJudge(logger)
	result := j.Score(context.Background(), client, "reflection-model", sample(), traj(), dims())

	assert.Empty(t, result.Metrics)
	logger.AssertCalled(t, "Warn", "judge response failed validation", mock.Anything)
}
