// Package llm defines the provider-agnostic completion-service abstraction.
// The rest of the application depends only on the message / tool-call /
// finish-reason shapes here, never on a vendor wire format.
package llm

import "encoding/json"

// Conversation roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Finish reasons reported by the completion service.
const (
	FinishStop      = "stop"
	FinishToolCalls = "tool_calls"
)

// Message is a single conversation turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	// ToolCalls is set on assistant turns that request tool invocations.
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
	// ToolCallID correlates a tool-result turn with the call that produced it.
	ToolCallID string `json:"tool_call_id,omitempty"`
}

// Tool describes one callable operation offered to the model.
type Tool struct {
	Name        string
	Description string
	// Parameters is a JSON Schema object (type=object).
	Parameters json.RawMessage
}

// ToolCall is one invocation requested by the model.
type ToolCall struct {
	ID        string
	Name      string
	Arguments json.RawMessage
}

// ChatRequest is the input for a non-streaming chat completion.
type ChatRequest struct {
	Messages    []Message
	Tools       []Tool
	Temperature float32
	MaxTokens   int
}

// ChatResponse is the completion service's answer for one turn.
type ChatResponse struct {
	// Content is the first text content block (empty when the model only
	// requested tools).
	Content      string
	FinishReason string
	ToolCalls    []ToolCall
	Tokens       int
}

// AssistantMessage converts the response into the turn to append before
// executing its tool calls.
func (r *ChatResponse) AssistantMessage() Message {
	return Message{
		Role:      RoleAssistant,
		Content:   r.Content,
		ToolCalls: r.ToolCalls,
	}
}
