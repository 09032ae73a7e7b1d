package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/expensahq/expensa/internal/infra/llm"
)

// maxIterations bounds the tool-calling loop. A run that is still asking for
// tools after this many completions is cut off and reported as truncated.
const maxIterations = 10

const systemPrompt = `You are the Expensa assistant. You help employees and managers work with expense reports: listing, creating, submitting, approving, and rejecting expenses, and summarizing spend.

Use the provided tools to read or change data; never invent expense records. Amounts in tool results are integer minor units (cents); present them to the user in major units (e.g. 2550 is 25.50). When a tool result contains an "error" field, explain the problem to the user instead of retrying blindly. Keep answers short and concrete.`

// ResultKind tags how an orchestration run ended.
type ResultKind string

const (
	// KindAnswer is the normal outcome: the model produced a final text reply.
	KindAnswer ResultKind = "answer"
	// KindDisabled means no completion service is configured.
	KindDisabled ResultKind = "disabled"
	// KindCompleted means the model stopped for a reason other than a final
	// answer or a tool request (e.g. a content filter or length cut-off).
	KindCompleted ResultKind = "completed"
	// KindTruncated means the iteration cap was hit while the model was
	// still requesting tools.
	KindTruncated ResultKind = "truncated"
)

const (
	disabledMessage   = "The assistant is not configured on this deployment. Ask an administrator to set the chat endpoint and deployment."
	noResponseMessage = "I don't have a response for that. Could you rephrase?"
	completedMessage  = "The assistant ended the conversation without a final answer. Please try again."
	truncatedMessage  = "That request needed more steps than I'm allowed to take. Try narrowing it down."
)

// Turn is one prior exchange entry supplied by the caller. Only user and
// assistant turns are replayed; tool traffic never leaves a single run.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Result is the outcome of one orchestration run. Message is always
// user-presentable, whatever the kind.
type Result struct {
	Kind    ResultKind `json:"kind"`
	Message string     `json:"message"`
}

// Orchestrator runs the bounded exchange with the completion service. It is
// stateless across runs; conversation memory is the caller's history slice.
type Orchestrator struct {
	provider llm.ChatProvider
	tools    *Toolset
	logger   *log.Logger
}

// NewOrchestrator builds an orchestrator. provider may be nil, which puts the
// assistant in disabled mode. logger may be nil.
func NewOrchestrator(provider llm.ChatProvider, tools *Toolset, logger *log.Logger) *Orchestrator {
	if logger == nil {
		logger = log.Default()
	}
	return &Orchestrator{provider: provider, tools: tools, logger: logger}
}

// Enabled reports whether a completion service is configured.
func (o *Orchestrator) Enabled() bool { return o.provider != nil }

// GetResponse runs one user message through the tool-calling loop and returns
// the outcome. A non-nil error means the completion service itself could not
// be reached or answered abnormally; tool faults never surface here, they are
// fed back to the model as error result turns.
func (o *Orchestrator) GetResponse(ctx context.Context, message string, history []Turn) (*Result, error) {
	if !o.Enabled() {
		return &Result{Kind: KindDisabled, Message: disabledMessage}, nil
	}

	msgs := make([]llm.Message, 0, len(history)+2)
	msgs = append(msgs, llm.Message{Role: llm.RoleSystem, Content: systemPrompt})
	for _, turn := range history {
		if turn.Role != llm.RoleUser && turn.Role != llm.RoleAssistant {
			continue
		}
		msgs = append(msgs, llm.Message{Role: turn.Role, Content: turn.Content})
	}
	msgs = append(msgs, llm.Message{Role: llm.RoleUser, Content: message})

	catalog := o.tools.Catalog()
	for i := 0; i < maxIterations; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		resp, err := o.provider.ChatCompletion(ctx, llm.ChatRequest{
			Messages:    msgs,
			Tools:       catalog,
			Temperature: 0.2,
			MaxTokens:   1024,
		})
		if err != nil {
			return nil, fmt.Errorf("completion service: %w", err)
		}

		switch resp.FinishReason {
		case llm.FinishStop:
			content := resp.Content
			if content == "" {
				content = noResponseMessage
			}
			return &Result{Kind: KindAnswer, Message: content}, nil

		case llm.FinishToolCalls:
			msgs = append(msgs, resp.AssistantMessage())
			for _, call := range resp.ToolCalls {
				msgs = append(msgs, llm.Message{
					Role:       llm.RoleTool,
					Content:    o.runTool(ctx, call),
					ToolCallID: call.ID,
				})
			}

		default:
			o.logger.Printf("chat: completion finished with reason %q", resp.FinishReason)
			return &Result{Kind: KindCompleted, Message: completedMessage}, nil
		}
	}

	o.logger.Printf("chat: iteration cap reached after %d completions", maxIterations)
	return &Result{Kind: KindTruncated, Message: truncatedMessage}, nil
}

// runTool executes one tool call and serializes the outcome for the model.
// Failures become {"error": ...} payloads rather than aborting the run.
func (o *Orchestrator) runTool(ctx context.Context, call llm.ToolCall) string {
	out, err := o.tools.Execute(ctx, call.Name, call.Arguments)
	if err != nil {
		o.logger.Printf("chat: tool %s failed: %v", call.Name, err)
		payload, _ := json.Marshal(map[string]string{"error": err.Error()})
		return string(payload)
	}
	return string(out)
}
