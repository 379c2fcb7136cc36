package types

import "fmt"

// ErrorMarker is the well-known assistant text recorded in place of a
// trajectory's final turn whenever generation fails. It is a value, not
// an error: the trajectory generator always returns successfully and
// lets downstream scoring reflect the failure as a low score.
const ErrorMarker = "[Error generating response]"

// Trajectory is the conversation produced by executing a candidate prompt
// against a Sample's user input.
type Trajectory struct {
	ID        string    `json:"id"`
	Timestamp int64     `json:"timestamp"`
	Messages  []Message `json:"messages"`
}

// Validate enforces the tool-call/tool-result ordering invariant: every
// tool-result part must reference a tool-call part with the same id that
// appears earlier in the same trajectory.
func (t Trajectory) Validate() error {
	seen := make(map[string]bool)
	for _, msg := range t.Messages {
		for _, part := range msg.Content {
			switch part.Kind {
			case PartToolCall:
				seen[part.ToolCallID] = true
			case PartToolResult:
				if !seen[part.ToolResultFor] {
					return fmt.Errorf("tool-result %s references unknown or out-of-order tool-call", part.ToolResultFor)
				}
			}
		}
	}
	return nil
}

// ErrorTrajectory builds the well-known failure trajectory: the sample's
// user turn copied verbatim, followed by a single assistant turn carrying
// the error marker.
func ErrorTrajectory(id string, timestamp int64, sample Sample) Trajectory {
	messages := make([]Message, 0, len(sample.Messages)+1)
	for _, m := range sample.Messages {
		if m.Role == RoleUser {
			messages = append(messages, m)
		}
	}
	messages = append(messages, Message{Role: RoleAssistant, Content: []Part{TextPart(ErrorMarker)}})
	return Trajectory{ID: id, Timestamp: timestamp, Messages: messages}
}
