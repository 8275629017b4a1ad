package apierr

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/GlebRadaev/bankapi/internal/domain"
	"github.com/GlebRadaev/bankapi/pkg/utils"
)

const internalMessage = "Something went very wrong!"

type kind struct {
	sentinel error
	name     string
	code     int
}

var kinds = []kind{
	{domain.ErrUnauthorized, "Unauthorized", http.StatusUnauthorized},
	{domain.ErrForbidden, "Forbidden", http.StatusForbidden},
	{domain.ErrNotFound, "NotFound", http.StatusNotFound},
	{domain.ErrInsufficientFunds, "InsufficientFunds", http.StatusBadRequest},
	{domain.ErrAlreadyProcessed, "AlreadyProcessed", http.StatusConflict},
	{domain.ErrConflict, "Conflict", http.StatusConflict},
	{domain.ErrInvalidArgument, "InvalidArgument", http.StatusBadRequest},
}

// From classifies err into the response envelope and its HTTP status.
func From(err error) (int, utils.Response) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest, utils.Response{
			Status:  utils.StatusFail,
			Kind:    "InvalidArgument",
			Message: "invalid data supplied",
			Errors:  verr.Fields,
		}
	}

	for _, k := range kinds {
		if errors.Is(err, k.sentinel) {
			return k.code, utils.Response{
				Status:  utils.StatusFor(k.code),
				Kind:    k.name,
				Message: message(err, k.sentinel),
			}
		}
	}

	return http.StatusInternalServerError, utils.Response{
		Status:  utils.StatusError,
		Kind:    "Internal",
		Message: internalMessage,
	}
}

// Respond writes err as a JSON error body. Internal errors are logged and never echoed.
func Respond(w http.ResponseWriter, err error) {
	code, resp := From(err)
	if code >= http.StatusInternalServerError {
		zap.L().Error("internal error", zap.Error(err))
	}
	utils.RespondWithJSON(w, code, resp)
}

// message drops the sentinel prefix added by %w wrapping so users see only the detail.
func message(err, sentinel error) string {
	msg := err.Error()
	if detail, ok := strings.CutPrefix(msg, sentinel.Error()+": "); ok {
		return detail
	}
	return msg
}
