// Package judge scores a generated trajectory against a sample on a set of
// configured dimensions via a structured-output LLM call, and produces the
// feedback text the reflection rewriter consumes.
package judge

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"

	"github.com/weave-labs/gepa/config"
	"github.com/weave-labs/gepa/llmclient"
	"github.com/weave-labs/gepa/types"
	"github.com/weave-labs/gepa/utils"
)

// validate is the shared validator instance used across this package.
var validate = validator.New()

// Result is the judge's output for one (sample, trajectory) pair.
type Result struct {
	Metrics               types.MetricScores
	DetailedFeedback      string
	SuggestedImprovements string
	OverallScore          float64
}

const failurePrefix = "[judge failed: "

// Judge scores trajectories against a configured dimension set.
type Judge struct {
	Logger utils.Logger
	Debug  *utils.DebugManager

	PositiveFeedbackInstruction string
	NegativeFeedbackInstruction string
	ComparisonPositive          string
	ComparisonNegative          string

	cachedDimKey string
	cachedSchema *jsonschema.Schema
}

// NewJudge builds a Judge with the spec's default polarity instructions.
func NewJudge(logger utils.Logger) *Judge {
	if logger == nil {
		logger = utils.NewLogger(utils.LogLevelOff)
	}
	return &Judge{
		Logger:                       logger,
		PositiveFeedbackInstruction:  "Treat the sample's assistant turns as the reference answer the trajectory should match.",
		NegativeFeedbackInstruction:  "Treat the sample's assistant turns as an anti-example the trajectory should avoid resembling.",
		ComparisonPositive:           "How closely does the trajectory match the reference?",
		ComparisonNegative:           "How well does the trajectory avoid the anti-example's failure?",
	}
}

// response is the shape of the structured output the judge requests. The
// per-dimension score fields are declared dynamically in the schema and
// decode into the Scores map; the two textual fields are fixed.
type response struct {
	Scores                map[string]float64 `json:"scores"                validate:"required"`
	DetailedFeedback      string              `json:"detailedFeedback"`
	SuggestedImprovements string              `json:"suggestedImprovements"`
}

// Score judges one (sample, trajectory) pair against the active dimensions
// using reflectionModel. On any structured-output failure it returns the
// spec's failure contract rather than a Go error.
func (j *Judge) Score(ctx context.Context, client llmclient.ModelClient, reflectionModel string, sample types.Sample, traj types.Trajectory, dims config.Dimensions) Result {
	schema := j.schemaFor(dims)
	prompt := j.buildPrompt(sample, traj, dims)
	if j.Debug != nil {
		j.Debug.LogPrompt("judge_"+sample.ID, prompt)
	}

	raw, err := client.ObjectGenerate(ctx, reflectionModel, schema, prompt)
	if err != nil {
		j.Logger.Warn("judge call failed", "error", err, "sample", sample.ID)
		return failureResult(err)
	}
	if j.Debug != nil {
		j.Debug.LogResponse("judge_"+sample.ID, string(raw))
	}

	var parsed response
	if decodeErr := unmarshalResponse(raw, &parsed); decodeErr != nil {
		j.Logger.Warn("judge response did not match schema", "error", decodeErr, "sample", sample.ID)
		return failureResult(decodeErr)
	}
	if validErr := validate.Struct(parsed); validErr != nil {
		j.Logger.Warn("judge response failed validation", "error", validErr, "sample", sample.ID)
		return failureResult(validErr)
	}

	metrics := make(types.MetricScores, len(dims))
	for name := range dims {
		if v, ok := parsed.Scores[name]; ok {
			metrics[name] = v
		}
	}
	metrics = metrics.Clamp()

	return Result{
		Metrics:               metrics,
		OverallScore:          metrics.WeightedMean(dims.Weights()),
		DetailedFeedback:      parsed.DetailedFeedback,
		SuggestedImprovements: parsed.SuggestedImprovements,
	}
}

func failureResult(err error) Result {
	return Result{
		Metrics:          types.MetricScores{},
		OverallScore:     0,
		DetailedFeedback: failurePrefix + err.Error() + "]",
	}
}

// schemaFor builds (and caches) the JSON schema describing one numeric
// field per active dimension plus the two textual fields. The schema is
// rebuilt whenever the active dimension set changes between calls.
func (j *Judge) schemaFor(dims config.Dimensions) *jsonschema.Schema {
	key := dimensionKey(dims)
	if j.cachedSchema != nil && j.cachedDimKey == key {
		return j.cachedSchema
	}

	scoreProps := jsonschema.NewProperties()
	required := make([]string, 0, len(dims)+2)
	for name, dim := range dims {
		scoreProps.Set(name, &jsonschema.Schema{
			Type:        "number",
			Description: fmt.Sprintf("%s (score in [0, 1])", dim.Description),
		})
		required = append(required, name)
	}
	sort.Strings(required)

	props := jsonschema.NewProperties()
	props.Set("scores", &jsonschema.Schema{Type: "object", Properties: scoreProps, Required: required})
	props.Set("detailedFeedback", &jsonschema.Schema{Type: "string"})
	props.Set("suggestedImprovements", &jsonschema.Schema{Type: "string"})

	schema := &jsonschema.Schema{
		Type:       "object",
		Properties: props,
		Required:   []string{"scores", "detailedFeedback", "suggestedImprovements"},
	}

	j.cachedDimKey = key
	j.cachedSchema = schema
	return schema
}

func dimensionKey(dims config.Dimensions) string {
	names := dims.Names()
	sort.Strings(names)
	return strings.Join(names, ",")
}

func (j *Judge) buildPrompt(sample types.Sample, traj types.Trajectory, dims config.Dimensions) string {
	var b strings.Builder

	b.WriteString("Dimensions:\n")
	names := dims.Names()
	sort.Strings(names)
	for _, name := range names {
		dim := dims[name]
		fmt.Fprintf(&b, "- %s (weight %.2f): %s\n", name, dim.Weight, dim.Description)
	}

	polarity := sample.EffectivePolarity()
	b.WriteString("\nPolarity: ")
	b.WriteString(string(polarity))
	b.WriteString("\n")
	if polarity == types.PolarityPositive {
		b.WriteString(j.PositiveFeedbackInstruction)
		b.WriteString("\n")
		b.WriteString(j.ComparisonPositive)
	} else {
		b.WriteString(j.NegativeFeedbackInstruction)
		b.WriteString("\n")
		b.WriteString(j.ComparisonNegative)
	}
	if sample.Feedback != nil && sample.Feedback.Comment != "" {
		fmt.Fprintf(&b, "\nHuman comment: %s", sample.Feedback.Comment)
	}

	b.WriteString("\n\nSample conversation:\n")
	renderMessages(&b, sample.Messages)

	b.WriteString("\nGenerated trajectory:\n")
	renderMessages(&b, traj.Messages)

	return b.String()
}

func renderMessages(b *strings.Builder, messages []types.Message) {
	for _, m := range messages {
		fmt.Fprintf(b, "[%s] %s\n", m.Role, m.Text())
	}
}

func unmarshalResponse(raw json.RawMessage, out *response) error {
	return json.Unmarshal(raw, out)
}
