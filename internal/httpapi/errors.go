package httpapi

import (
	"errors"
	"net/http"

	"github.com/bookstore/library/internal/apperror"
	"go.uber.org/zap"
)

const internalErrorMessage = "Internal server error"

// messageEnvelope is the body of every non-validation error response.
type messageEnvelope struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// validationEnvelope is the body of a 400 validation failure.
type validationEnvelope struct {
	Status int      `json:"status"`
	Errors []string `json:"errors"`
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind apperror.Kind) int {
	switch kind {
	case apperror.KindValidation, apperror.KindBadRequest:
		return http.StatusBadRequest
	case apperror.KindDuplicate:
		return http.StatusConflict
	case apperror.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// WriteError renders err as a JSON envelope. Anything that is not an
// *apperror.Error is reported as an internal error and logged.
func WriteError(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	var appErr *apperror.Error
	if !errors.As(err, &appErr) {
		appErr = apperror.Internal(err)
	}

	status := StatusFor(appErr.Kind)
	switch appErr.Kind {
	case apperror.KindValidation:
		errs := appErr.Errors
		if errs == nil {
			errs = []string{}
		}
		writeJSON(w, log, status, validationEnvelope{Status: status, Errors: errs})
	case apperror.KindInternal:
		log.Error("Request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", RequestIDFrom(r.Context())),
			zap.Error(appErr),
		)
		writeMessage(w, log, status, internalErrorMessage)
	default:
		writeMessage(w, log, status, appErr.Message)
	}
}

func writeMessage(w http.ResponseWriter, log *zap.Logger, status int, message string) {
	writeJSON(w, log, status, messageEnvelope{Status: status, Message: message})
}
