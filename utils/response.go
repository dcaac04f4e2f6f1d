package utils

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"dukaan/apperr"
)

type M map[string]any

func RespondWithError(w http.ResponseWriter, code int, msg string) {
	RespondWithJSON(w, code, M{"error": msg})
}

// RespondWithAppError maps err onto its status code. Internal causes are
// logged and replaced by a generic message.
func RespondWithAppError(w http.ResponseWriter, op string, err error) {
	code := apperr.Status(err)
	if code == http.StatusInternalServerError {
		log.Printf("%s error: %v", op, err)
	}

	body := M{"error": apperr.Message(err)}
	var ae *apperr.Error
	if errors.As(err, &ae) && len(ae.Fields) > 0 {
		body["fields"] = ae.Fields
	}
	RespondWithJSON(w, code, body)
}

// Sends a JSON response
func RespondWithJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}
