package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondWithError(t *testing.T) {
	tests := []struct {
		name           string
		code           int
		message        string
		expectedStatus string
	}{
		{"client error", http.StatusBadRequest, "Invalid request body", StatusFail},
		{"not found", http.StatusNotFound, "wallet not found", StatusFail},
		{"server error", http.StatusInternalServerError, "Something went very wrong!", StatusError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			RespondWithError(rr, tt.code, tt.message)

			assert.Equal(t, tt.code, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

			var resp Response
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
			assert.Equal(t, tt.expectedStatus, resp.Status)
			assert.Equal(t, tt.message, resp.Message)
		})
	}
}

func TestRespondWithData(t *testing.T) {
	rr := httptest.NewRecorder()
	RespondWithData(rr, http.StatusCreated, map[string]string{"reference": "tr1234561234"})

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.JSONEq(t, `{"status":"success","data":{"reference":"tr1234561234"}}`, rr.Body.String())
}

func TestRespondWithWarning(t *testing.T) {
	rr := httptest.NewRecorder()
	RespondWithWarning(rr, http.StatusOK, map[string]string{"status": "declined"}, "notice not sent")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"success","warning":"notice not sent","data":{"status":"declined"}}`, rr.Body.String())
}

func TestRespondWithJSON_NoContent(t *testing.T) {
	rr := httptest.NewRecorder()
	RespondWithJSON(rr, http.StatusNoContent, Response{Status: StatusSuccess})

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, rr.Body.String())
}
