// Package trajectory executes a candidate prompt against a sample's user
// input, producing the conversation a judge will later score.
package trajectory

import (
	"context"
	"encoding/json"
	"time"

	"github.com/invopop/jsonschema"

	"github.com/weave-labs/gepa/llmclient"
	"github.com/weave-labs/gepa/types"
	"github.com/weave-labs/gepa/utils"
)

// Mode selects how the generator drives the task model.
type Mode string

const (
	ModeText       Mode = "text"
	ModeStructured Mode = "structured"
)

// Generator produces a Trajectory from (sample, prompt, task model).
type Generator struct {
	Logger   utils.Logger
	MaxSteps int
}

// NewGenerator builds a Generator with the given step cap (spec default 5).
func NewGenerator(maxSteps int, logger utils.Logger) *Generator {
	if maxSteps <= 0 {
		maxSteps = 5
	}
	if logger == nil {
		logger = utils.NewLogger(utils.LogLevelOff)
	}
	return &Generator{MaxSteps: maxSteps, Logger: logger}
}

// Options configures one Generate call.
type Options struct {
	Schema *jsonschema.Schema
	Tools  []types.Tool
	Mode   Mode
}

// idFunc and nowFunc supply each trajectory's id (a types.NewCandidateID
// value) and timestamp (Unix milliseconds). They are package variables so
// in-package tests can substitute deterministic values.
var (
	idFunc  = func() string { return types.NewCandidateID() }
	nowFunc = func() int64 { return time.Now().UnixMilli() }
)

// Generate runs prompt against sample's user turn via client, returning a
// trajectory. Any failure (provider error, schema violation, timeout)
// yields a successful return carrying the well-known error-marker
// trajectory — Generate itself never returns an error.
func (g *Generator) Generate(ctx context.Context, sample types.Sample, prompt, modelID string, client llmclient.ModelClient, opts Options) types.Trajectory {
	id := idFunc()
	ts := nowFunc()

	switch opts.Mode {
	case ModeStructured:
		return g.generateStructured(ctx, sample, prompt, modelID, client, opts, id, ts)
	default:
		return g.generateText(ctx, sample, prompt, modelID, client, opts, id, ts)
	}
}

func (g *Generator) generateStructured(ctx context.Context, sample types.Sample, prompt, modelID string, client llmclient.ModelClient, opts Options, id string, ts int64) types.Trajectory {
	if opts.Schema == nil {
		g.Logger.Error("structured mode requires a schema")
		return types.ErrorTrajectory(id, ts, sample)
	}

	raw, err := client.StructuredGenerate(ctx, modelID, prompt, userText(sample), opts.Schema)
	if err != nil {
		g.Logger.Warn("structured generation failed", "error", err, "sample", sample.ID)
		return types.ErrorTrajectory(id, ts, sample)
	}
	var probe json.RawMessage
	if jerr := json.Unmarshal([]byte(raw), &probe); jerr != nil {
		g.Logger.Warn("structured generation returned invalid JSON", "error", jerr, "sample", sample.ID)
		return types.ErrorTrajectory(id, ts, sample)
	}

	messages := userMessages(sample)
	messages = append(messages, types.Message{Role: types.RoleAssistant, Content: []types.Part{types.TextPart(raw)}})
	return types.Trajectory{ID: id, Timestamp: ts, Messages: messages}
}

func (g *Generator) generateText(ctx context.Context, sample types.Sample, prompt, modelID string, client llmclient.ModelClient, opts Options, id string, ts int64) types.Trajectory {
	messages := userMessages(sample)

	for step := 0; step < g.MaxSteps; step++ {
		if err := ctx.Err(); err != nil {
			g.Logger.Warn("generation cancelled", "sample", sample.ID)
			return types.ErrorTrajectory(id, ts, sample)
		}

		result, err := client.TextGenerate(ctx, modelID, prompt, messages, opts.Tools)
		if err != nil {
			g.Logger.Warn("text generation failed", "error", err, "sample", sample.ID, "step", step)
			return types.ErrorTrajectory(id, ts, sample)
		}

		hadToolCalls := false
		for _, st := range result.Steps {
			if len(st.ToolCalls) > 0 {
				hadToolCalls = true
				for _, tc := range st.ToolCalls {
					if _, err := tc.Arguments(); err != nil {
						g.Logger.Warn("tool call arguments not valid JSON", "error", err, "sample", sample.ID, "tool", tc.ToolName)
					}
				}
				messages = append(messages, types.Message{Role: types.RoleAssistant, Content: st.ToolCalls})
				messages = append(messages, types.Message{Role: types.RoleTool, Content: st.ToolResults})
			}
			if st.Text != "" {
				messages = append(messages, types.Message{Role: types.RoleAssistant, Content: []types.Part{types.TextPart(st.Text)}})
			}
		}

		if !hadToolCalls {
			break
		}
	}

	if len(messages) == 0 || messages[len(messages)-1].Role != types.RoleAssistant {
		messages = append(messages, types.Message{Role: types.RoleAssistant, Content: []types.Part{types.TextPart(types.ErrorMarker)}})
	}

	traj := types.Trajectory{ID: id, Timestamp: ts, Messages: messages}
	if err := traj.Validate(); err != nil {
		g.Logger.Warn("generated trajectory failed validation", "error", err, "sample", sample.ID)
		return types.ErrorTrajectory(id, ts, sample)
	}
	return traj
}

func userMessages(sample types.Sample) []types.Message {
	var out []types.Message
	for _, m := range sample.Messages {
		if m.Role == types.RoleUser {
			out = append(out, m)
		}
	}
	return out
}

func userText(sample types.Sample) string {
	var text string
	for _, m := range sample.Messages {
		if m.Role == types.RoleUser {
			if text != "" {
				text += "\n"
			}
			text += m.Text()
		}
	}
	return text
}
