// Azure-OpenAI-style chat-completions adapter.
// Endpoints used:
//
//	POST {endpoint}/openai/deployments/{deployment}/chat/completions?api-version=...
//
// Authentication is the api-key header; when only a workload-identity client ID
// is configured it is forwarded as x-ms-client-id for request attribution.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const apiVersion = "2024-06-01"

// AzureProvider implements ChatProvider against an Azure-OpenAI-compatible
// chat-completions endpoint.
type AzureProvider struct {
	endpoint   string
	deployment string
	apiKey     string
	clientID   string
	httpClient *http.Client
}

// NewAzureProvider creates an adapter with a 120s timeout; tool-calling chains
// routinely exceed the 30s that suits smaller calls.
func NewAzureProvider(endpoint, deployment, apiKey, clientID string) *AzureProvider {
	return &AzureProvider{
		endpoint:   strings.TrimRight(endpoint, "/"),
		deployment: deployment,
		apiKey:     apiKey,
		clientID:   clientID,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
}

// ─── wire types ──────────────────────────────────────────────────────────────

type wireFunction struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
}

type wireTool struct {
	Type     string       `json:"type"`
	Function wireFunction `json:"function"`
}

type wireToolCall struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

type wireMessage struct {
	Role       string         `json:"role"`
	Content    string         `json:"content"`
	ToolCalls  []wireToolCall `json:"tool_calls,omitempty"`
	ToolCallID string         `json:"tool_call_id,omitempty"`
}

type wireRequest struct {
	Messages    []wireMessage `json:"messages"`
	Tools       []wireTool    `json:"tools,omitempty"`
	Temperature float32       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type wireResponse struct {
	Choices []struct {
		FinishReason string      `json:"finish_reason"`
		Message      wireMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// ─── ChatProvider implementation ─────────────────────────────────────────────

// ChatCompletion sends one chat-completions request and maps the first choice.
func (p *AzureProvider) ChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	body, err := json.Marshal(buildWireRequest(req))
	if err != nil {
		return nil, fmt.Errorf("chat completion: marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		p.endpoint, p.deployment, apiVersion)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("chat completion: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		httpReq.Header.Set("api-key", p.apiKey)
	}
	if p.clientID != "" {
		httpReq.Header.Set("x-ms-client-id", p.clientID)
	}

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	var wire wireResponse
	if decodeErr := json.NewDecoder(resp.Body).Decode(&wire); decodeErr != nil {
		return nil, fmt.Errorf("chat completion: decode response (status %d): %w", resp.StatusCode, decodeErr)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if wire.Error != nil {
			return nil, fmt.Errorf("chat completion: status %d: %s", resp.StatusCode, wire.Error.Message)
		}
		return nil, fmt.Errorf("chat completion: status %d", resp.StatusCode)
	}
	if len(wire.Choices) == 0 {
		return nil, fmt.Errorf("chat completion: response has no choices")
	}

	return mapChoice(wire), nil
}

func buildWireRequest(req ChatRequest) wireRequest {
	out := wireRequest{
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		Messages:    make([]wireMessage, len(req.Messages)),
	}
	for i, m := range req.Messages {
		wm := wireMessage{
			Role:       m.Role,
			Content:    m.Content,
			ToolCallID: m.ToolCallID,
		}
		for _, tc := range m.ToolCalls {
			wtc := wireToolCall{ID: tc.ID, Type: "function"}
			wtc.Function.Name = tc.Name
			wtc.Function.Arguments = string(tc.Arguments)
			wm.ToolCalls = append(wm.ToolCalls, wtc)
		}
		out.Messages[i] = wm
	}
	for _, t := range req.Tools {
		out.Tools = append(out.Tools, wireTool{
			Type: "function",
			Function: wireFunction{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		})
	}
	return out
}

func mapChoice(wire wireResponse) *ChatResponse {
	choice := wire.Choices[0]
	out := &ChatResponse{
		Content:      choice.Message.Content,
		FinishReason: choice.FinishReason,
		Tokens:       wire.Usage.TotalTokens,
	}
	for _, wtc := range choice.Message.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, ToolCall{
			ID:        wtc.ID,
			Name:      wtc.Function.Name,
			Arguments: json.RawMessage(wtc.Function.Arguments),
		})
	}
	return out
}
