// Package reflect synthesizes an improved prompt from a batch's aggregated
// feedback and suggestions via the reflection model. (Not Go's reflect
// package — named for the optimization step it implements.)
package reflect

import (
	"context"
	"fmt"
	"strings"

	"github.com/weave-labs/gepa/llmclient"
	"github.com/weave-labs/gepa/types"
	"github.com/weave-labs/gepa/utils"
)

const delimiter = "\n\n---\n\n"

// Rewriter produces a new prompt text from the current prompt plus
// per-sample feedback and suggestion strings.
type Rewriter struct {
	Logger utils.Logger
	Debug  *utils.DebugManager
}

// NewRewriter builds a Rewriter.
func NewRewriter(logger utils.Logger) *Rewriter {
	if logger == nil {
		logger = utils.NewLogger(utils.LogLevelOff)
	}
	return &Rewriter{Logger: logger}
}

// Rewrite asks reflectionModel for an improved prompt. On any LLM failure
// it returns the current prompt unchanged and failed=true, so the loop's
// acceptance test naturally rejects it; this is a successful return, not
// a Go error.
func (r *Rewriter) Rewrite(ctx context.Context, client llmclient.ModelClient, reflectionModel, currentPrompt string, feedbacks, suggestions []string) (prompt string, failed bool) {
	metaPrompt := buildMetaPrompt(currentPrompt, feedbacks, suggestions)
	if r.Debug != nil {
		r.Debug.LogPrompt("reflect", metaPrompt)
	}

	messages := []types.Message{{Role: types.RoleUser, Content: []types.Part{types.TextPart(metaPrompt)}}}
	result, err := client.TextGenerate(ctx, reflectionModel, "", messages, nil)
	if err != nil {
		r.Logger.Warn("reflection call failed", "error", err)
		return currentPrompt, true
	}
	if r.Debug != nil {
		r.Debug.LogResponse("reflect", result.Text)
	}

	rewritten := strings.TrimSpace(result.Text)
	if rewritten == "" {
		r.Logger.Warn("reflection returned empty prompt")
		return currentPrompt, true
	}
	return rewritten, false
}

func buildMetaPrompt(currentPrompt string, feedbacks, suggestions []string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Current prompt:\n%s\n\n", currentPrompt)
	b.WriteString("Feedback from the most recent batch evaluation:\n")
	b.WriteString(strings.Join(feedbacks, delimiter))
	b.WriteString("\n\nSuggested improvements from the same evaluation:\n")
	b.WriteString(strings.Join(suggestions, delimiter))
	b.WriteString("\n\nRewrite the prompt to address the most critical issues above while preserving what already works. Return only the improved prompt text, with no preamble or commentary.")

	return b.String()
}
