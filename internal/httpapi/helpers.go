package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/bookstore/library/internal/apperror"
	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// writeJSON encodes data with the given status. log may be nil.
func writeJSON(w http.ResponseWriter, log *zap.Logger, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil && log != nil {
		log.Error("Failed to encode response", zap.Error(err))
	}
}

// readIDParam parses the ":id" route parameter.
func readIDParam(r *http.Request) (int64, error) {
	params := httprouter.ParamsFromContext(r.Context())
	id, err := strconv.ParseInt(params.ByName("id"), 10, 64)
	if err != nil {
		return 0, apperror.BadRequest("invalid id parameter")
	}
	return id, nil
}

// readJSON decodes a single JSON value from the request body into dst.
// Unknown fields are ignored. Every failure is returned as a bad request.
func readJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)

	if err := dec.Decode(dst); err != nil {
		var (
			syntaxErr   *json.SyntaxError
			typeErr     *json.UnmarshalTypeError
			maxBytesErr *http.MaxBytesError
		)
		switch {
		case errors.As(err, &syntaxErr):
			return apperror.BadRequest(fmt.Sprintf("request body contains malformed JSON (at character %d)", syntaxErr.Offset))
		case errors.Is(err, io.ErrUnexpectedEOF):
			return apperror.BadRequest("request body contains malformed JSON")
		case errors.As(err, &typeErr):
			if typeErr.Field != "" {
				return apperror.BadRequest(fmt.Sprintf("request body contains an incorrect JSON type for field %q", typeErr.Field))
			}
			return apperror.BadRequest(fmt.Sprintf("request body contains an incorrect JSON type (at character %d)", typeErr.Offset))
		case errors.Is(err, io.EOF):
			return apperror.BadRequest("request body must not be empty")
		case errors.As(err, &maxBytesErr):
			return apperror.BadRequest(fmt.Sprintf("request body must not be larger than %d bytes", maxBytesErr.Limit))
		default:
			return apperror.BadRequest("request body could not be decoded")
		}
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return apperror.BadRequest("request body must only contain a single JSON value")
	}

	return nil
}
