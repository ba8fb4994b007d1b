package service

import (
	"encoding/json"
	"net/http"
)

// WriteJSON writes v as a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// WriteHttpError writes a JSON error response.
func WriteHttpError(w http.ResponseWriter, code int, message string) {
	WriteJSON(w, code, map[string]any{
		"status":  "error",
		"code":    code,
		"message": message,
	})
}
