// Package response centralises JSON encoding of the uniform API
// envelope, so every handler reports success and failure the same way.
package response

import (
	"encoding/json"
	"net/http"
	"runtime/debug"

	"github.com/savemyigcse/backend/internal/apperrors"
	"github.com/savemyigcse/backend/internal/types"
)

// IncludeStacks controls whether 500 envelopes carry a stack trace.
// Enabled outside production only.
var IncludeStacks bool

// WriteJSON writes any payload with the given status code.
func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// OK writes a success envelope carrying data.
func OK(w http.ResponseWriter, status int, data any) {
	WriteJSON(w, status, types.APIResponse{Success: true, Data: data})
}

// Message writes a success envelope carrying only a message.
func Message(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, types.APIResponse{Success: true, Message: message})
}

// Paginated writes a paginated list envelope.
func Paginated(w http.ResponseWriter, data any, page, limit, total int) {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	WriteJSON(w, http.StatusOK, types.PaginatedResponse{
		Success: true,
		Data:    data,
		Pagination: types.Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: totalPages,
		},
	})
}

// Error writes the failure envelope for err, mapping the error taxonomy
// onto status codes. Unhandled errors (the 500 branch) carry a stack
// outside production.
func Error(w http.ResponseWriter, err error) {
	status := apperrors.StatusCode(err)
	resp := types.APIResponse{
		Success: false,
		Error:   err.Error(),
	}
	if status == http.StatusInternalServerError && IncludeStacks {
		resp.Stack = string(debug.Stack())
	}
	WriteJSON(w, status, resp)
}

// Fail writes a failure envelope with an explicit status and message.
func Fail(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, types.APIResponse{Success: false, Error: message})
}

// Panic writes the catch-all 500 envelope for a recovered panic, with
// the stack included only when IncludeStacks is set.
func Panic(w http.ResponseWriter, message, stack string) {
	resp := types.APIResponse{Success: false, Error: message}
	if IncludeStacks {
		resp.Stack = stack
	}
	WriteJSON(w, http.StatusInternalServerError, resp)
}
