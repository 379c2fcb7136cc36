// Package types holds the data model shared across the optimization core:
// samples, message content, trajectories, metric scores, and prompt
// candidates. It exists to avoid import cycles between the components
// that produce and consume these values.
package types

import (
	"encoding/json"
	"fmt"
)

// Role identifies who produced a Message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
	RoleSystem    Role = "system"
)

// PartKind tags the variant a Part holds.
type PartKind string

const (
	PartText       PartKind = "text"
	PartToolCall   PartKind = "tool_call"
	PartToolResult PartKind = "tool_result"
)

// Part is a tagged-variant unit of message content. Exactly the fields
// matching Kind are meaningful; the others are zero. This replaces a
// dynamically typed union of strings and mixed-shape objects with a fixed
// shape per variant.
type Part struct {
	Kind PartKind `json:"kind"`

	// Text is set when Kind == PartText.
	Text string `json:"text,omitempty"`

	// ToolCallID, ToolName, ToolArgs are set when Kind == PartToolCall.
	ToolCallID string `json:"toolCallId,omitempty"`
	ToolName   string `json:"toolName,omitempty"`
	ToolArgs   string `json:"toolArgs,omitempty"`

	// ToolResultFor references the ToolCallID of the tool-call this part
	// answers, and ToolResult carries the result text. Set when
	// Kind == PartToolResult.
	ToolResultFor string `json:"toolResultFor,omitempty"`
	ToolResult    string `json:"toolResult,omitempty"`
}

// TextPart builds a plain-text content part.
func TextPart(text string) Part { return Part{Kind: PartText, Text: text} }

// ToolCallPart builds a tool-invocation content part.
func ToolCallPart(id, name, args string) Part {
	return Part{Kind: PartToolCall, ToolCallID: id, ToolName: name, ToolArgs: args}
}

// ToolResultPart builds a part carrying the result of a prior tool call.
func ToolResultPart(toolCallID, result string) Part {
	return Part{Kind: PartToolResult, ToolResultFor: toolCallID, ToolResult: result}
}

// Arguments parses a PartToolCall's raw argument string as JSON. It returns
// an error if Kind is not PartToolCall or ToolArgs is not valid JSON.
func (p Part) Arguments() (map[string]any, error) {
	if p.Kind != PartToolCall {
		return nil, fmt.Errorf("part %s: kind %s is not a tool call", p.ToolCallID, p.Kind)
	}
	var args map[string]any
	if err := json.Unmarshal([]byte(p.ToolArgs), &args); err != nil {
		return nil, fmt.Errorf("part %s: parse tool arguments: %w", p.ToolCallID, err)
	}
	return args, nil
}

// ArgumentString returns a named string argument from a PartToolCall, or ""
// if the arguments can't be parsed or the key is absent or not a string.
func (p Part) ArgumentString(key string) string {
	args, err := p.Arguments()
	if err != nil {
		return ""
	}
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

// Message is one turn of a Sample or Trajectory. Content is an ordered
// sequence of Parts; a plain-text message is simply a single PartText.
type Message struct {
	Role    Role   `json:"role"`
	Content []Part `json:"content"`
}

// Text renders the Part sequence as a verbatim concatenation, used when a
// message's content must be shown to an LLM judge without summarization.
func (m Message) Text() string {
	var out string
	for _, p := range m.Content {
		switch p.Kind {
		case PartText:
			out += p.Text
		case PartToolCall:
			out += fmt.Sprintf("[tool_call %s(%s) id=%s]", p.ToolName, p.ToolArgs, p.ToolCallID)
		case PartToolResult:
			out += fmt.Sprintf("[tool_result for=%s]%s", p.ToolResultFor, p.ToolResult)
		}
	}
	return out
}
