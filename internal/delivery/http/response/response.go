package response

import (
	"encoding/json"
	"fmt"
	"net/http"
)

type ErrorsBody struct {
	Errors []string `json:"errors"`
}

type ErrorBody struct {
	Error string `json:"error"`
}

// JSON writes payload as indented JSON with the given status.
func JSON(w http.ResponseWriter, status int, payload any) error {
	b, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return fmt.Errorf("failed to marshal response: %w", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(b, '\n')); err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}
	return nil
}

func Errors(w http.ResponseWriter, status int, messages ...string) error {
	if messages == nil {
		messages = []string{}
	}
	return JSON(w, status, ErrorsBody{Errors: messages})
}

func Error(w http.ResponseWriter, status int, message string) error {
	return JSON(w, status, ErrorBody{Error: message})
}
