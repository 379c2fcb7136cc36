// Package tokencount provides observability-only token counting for
// trajectories and judge prompts. It never truncates; callers use it to
// log or export usage, not to enforce limits.
package tokencount

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"github.com/weave-labs/gepa/types"
)

const fallbackModel = "gpt-4o"

var (
	mu    sync.Mutex
	cache = map[string]*tiktoken.Tiktoken{}
)

func encodingFor(model string) (*tiktoken.Tiktoken, error) {
	mu.Lock()
	defer mu.Unlock()
	if enc, ok := cache[model]; ok {
		return enc, nil
	}
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.EncodingForModel(fallbackModel)
		if err != nil {
			return nil, err
		}
	}
	cache[model] = enc
	return enc, nil
}

// Count returns the token count of text under model's encoding, falling
// back to gpt-4o's encoding when the model is unrecognized.
func Count(model, text string) int {
	enc, err := encodingFor(model)
	if err != nil {
		return 0
	}
	return len(enc.Encode(text, nil, nil))
}

// CountMessages sums the token count of every message's rendered text.
func CountMessages(model string, messages []types.Message) int {
	total := 0
	for _, m := range messages {
		total += Count(model, m.Text())
	}
	return total
}

// CountTrajectory sums the token count of a trajectory's messages.
func CountTrajectory(model string, traj types.Trajectory) int {
	return CountMessages(model, traj.Messages)
}
