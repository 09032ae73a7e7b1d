// Shared response envelope and helpers for the HTTP handlers.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/expensahq/expensa/internal/domain/expense"
)

// envelope is the uniform response shape: success with data, or failure with
// an error message. Degraded and Notice surface the per-request error state
// when a gateway fault was absorbed behind fallback data.
type envelope struct {
	Success  bool   `json:"success"`
	Data     any    `json:"data,omitempty"`
	Error    string `json:"error,omitempty"`
	Degraded bool   `json:"degraded,omitempty"`
	Notice   string `json:"notice,omitempty"`
}

func writeJSON(w http.ResponseWriter, statusCode int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		http.Error(w, `{"success":false,"error":"failed to encode response"}`, http.StatusInternalServerError)
	}
}

// writeData writes a success envelope without degradation info.
func writeData(w http.ResponseWriter, statusCode int, data any) {
	writeJSON(w, statusCode, envelope{Success: true, Data: data})
}

// writeFacadeData writes a success envelope carrying the error state outcome:
// when the backing call faulted, Degraded is set and Notice holds the
// remediation hint so clients can show a banner over the fallback data.
func writeFacadeData(w http.ResponseWriter, statusCode int, data any, state *expense.ErrorState) {
	body := envelope{Success: true, Data: data}
	if state.Degraded() {
		body.Degraded = true
		if record := state.Last(); record != nil {
			body.Notice = record.Message
		}
	}
	writeJSON(w, statusCode, body)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, envelope{Success: false, Error: message})
}
