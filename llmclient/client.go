// Package llmclient implements the ModelClient contract spec by wrapping
// a providers.Provider with the retry, timeout, and error-classification
// behavior the optimization core needs from every LLM call.
package llmclient

import (
	"context"
	"encoding/json"

	"github.com/invopop/jsonschema"

	"github.com/weave-labs/gepa/types"
)

// Step is one assistant/tool cycle within a TextResult.
type Step struct {
	ToolCalls   []types.Part `json:"toolCalls,omitempty"`
	ToolResults []types.Part `json:"toolResults,omitempty"`
	Text        string       `json:"text,omitempty"`
}

// TextResult is the return value of TextGenerate: the step sequence the
// trajectory generator walks, plus the final assistant text.
type TextResult struct {
	Steps []Step `json:"steps"`
	Text  string `json:"text"`
}

// ModelClient is the unified contract a task model or reflection model
// must satisfy. It is the Go rendering of the three-call interface the
// core requires of any model: free-form generation with optional tools,
// structured generation against an externally supplied schema, and
// object generation against an internally defined schema (used by the
// judge).
type ModelClient interface {
	TextGenerate(ctx context.Context, modelID, system string, messages []types.Message, tools []types.Tool) (TextResult, error)
	StructuredGenerate(ctx context.Context, modelID, system, prompt string, schema *jsonschema.Schema) (string, error)
	ObjectGenerate(ctx context.Context, modelID string, schema *jsonschema.Schema, prompt string) (json.RawMessage, error)
}
