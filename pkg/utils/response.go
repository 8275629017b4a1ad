package utils

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

const (
	StatusSuccess = "success"
	StatusFail    = "fail"
	StatusError   = "error"
)

// Response is the envelope of every JSON body the API writes.
type Response struct {
	Status  string            `json:"status" example:"fail"`
	Kind    string            `json:"kind,omitempty" example:"InvalidArgument"`
	Message string            `json:"message,omitempty" example:"invalid data supplied"`
	Errors  map[string]string `json:"errors,omitempty"`
	Warning string            `json:"warning,omitempty"`
	Data    any               `json:"data,omitempty"`
}

func RespondWithJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload == nil || code == http.StatusNoContent {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zap.L().Error("can't encode response", zap.Error(err))
	}
}

func RespondWithData(w http.ResponseWriter, code int, data any) {
	RespondWithJSON(w, code, Response{Status: StatusSuccess, Data: data})
}

// RespondWithWarning reports a completed action whose follow-up, such as a notice, failed.
func RespondWithWarning(w http.ResponseWriter, code int, data any, warning string) {
	RespondWithJSON(w, code, Response{Status: StatusSuccess, Data: data, Warning: warning})
}

func RespondWithError(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, Response{Status: StatusFor(code), Message: message})
}

// StatusFor is "error" for server faults and "fail" for everything the caller got wrong.
func StatusFor(code int) string {
	if code >= http.StatusInternalServerError {
		return StatusError
	}
	return StatusFail
}
