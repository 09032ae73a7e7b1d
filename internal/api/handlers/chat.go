// HTTP handler for the assistant endpoint. Each request builds its own
// facade, toolset, and orchestrator run; conversation memory is the client's
// history array.
package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/expensahq/expensa/internal/domain/chat"
	"github.com/expensahq/expensa/internal/domain/expense"
	"github.com/expensahq/expensa/internal/infra/llm"
)

// ChatHandler handles POST /api/v1/chat.
type ChatHandler struct {
	store    *expense.Store
	provider llm.ChatProvider
	logger   *log.Logger
}

// NewChatHandler builds the handler. provider may be nil; the assistant then
// answers in disabled mode.
func NewChatHandler(store *expense.Store, provider llm.ChatProvider, logger *log.Logger) *ChatHandler {
	return &ChatHandler{store: store, provider: provider, logger: logger}
}

// ChatRequest is the body for POST /api/v1/chat.
type ChatRequest struct {
	Message string      `json:"message"`
	History []chat.Turn `json:"history,omitempty"`
}

// ChatResponse is the assistant's reply.
type ChatResponse struct {
	Kind    chat.ResultKind `json:"kind"`
	Message string          `json:"message"`
}

// Chat runs one orchestration round.
//
// Response codes:
//   - 200 OK: a result, including disabled and truncated outcomes
//   - 400 Bad Request: invalid JSON or empty message
//   - 502 Bad Gateway: the completion service could not be reached
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	facade := expense.NewFacade(h.store, expense.NewErrorState(), h.logger)
	orchestrator := chat.NewOrchestrator(h.provider, chat.NewToolset(facade), h.logger)

	result, err := orchestrator.GetResponse(r.Context(), req.Message, req.History)
	if err != nil {
		h.logger.Printf("chat: %v", err)
		writeError(w, http.StatusBadGateway, "assistant is unreachable, try again later")
		return
	}

	writeFacadeData(w, http.StatusOK, ChatResponse{Kind: result.Kind, Message: result.Message}, facade.State())
}
