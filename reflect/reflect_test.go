package reflect_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/invopop/jsonschema"
	"github.com/stretchr/testify/assert"

	"github.com/weave-labs/gepa/llmclient"
	"github.com/weave-labs/gepa/reflect"
	"github.com/weave-labs/gepa/types"
)

type stubClient struct {
	text string
	err  error
}

func (c *stubClient) TextGenerate(_ context.Context, _, _ string, _ []types.Message, _ []types.Tool) (llmclient.TextResult, error) {
	if c.err != nil {
		return llmclient.TextResult{}, c.err
	}
	return llmclient.TextResult{Text: c.text}, nil
}

func (c *stubClient) StructuredGenerate(context.Context, string, string, string, *jsonschema.Schema) (string, error) {
	return "", errors.New("not used")
}

func (c *stubClient) ObjectGenerate(context.Context, string, *jsonschema.Schema, string) (json.RawMessage, error) {
	return nil, errors.New("not used")
}

func TestRewriteReturnsTrimmedPrompt(t *testing.T) {
	client := &stubClient{text: "  improved prompt text  \n"}
	r := reflect.NewRewriter(nil)

	prompt, failed := r.Rewrite(context.Background(), client, "reflection-model", "old prompt", []string{"f1", "f2"}, []string{"s1", "s2"})

	assert.False(t, failed)
	assert.Equal(t, "improved prompt text", prompt)
}

func TestRewriteFailureReturnsCurrentPrompt(t *testing.T) {
	client := &stubClient{err: errors.New("boom")}
	r := reflect.NewRewriter(nil)

	prompt, failed := r.Rewrite(context.Background(), client, "reflection-model", "old prompt", []string{"f1"}, []string{"s1"})

	assert.True(t, failed)
	assert.Equal(t, "old prompt", prompt)
}

func TestRewriteEmptyResultReturnsCurrentPrompt(t *testing.T) {
	client := &stubClient{text: "   "}
	r := reflect.NewRewriter(nil)

	prompt, failed := r.Rewrite(context.Background(), client, "reflection-model", "old prompt", nil, nil)

	assert.True(t, failed)
	assert.Equal(t, "old prompt", prompt)
}
