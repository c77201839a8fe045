package httpapi

import (
	"context"
	"net/http"

	"github.com/bookstore/library/internal/db"
	"github.com/bookstore/library/internal/service"
	"github.com/bookstore/library/internal/validation"
	"go.uber.org/zap"
)

// BookService is the catalog behaviour the HTTP handlers depend on.
type BookService interface {
	Create(ctx context.Context, input service.BookInput) (*db.Book, error)
	FindByID(ctx context.Context, id int64) (*db.Book, error)
	FindAll(ctx context.Context, search string) ([]db.Book, error)
	Update(ctx context.Context, id int64, input service.BookInput) (*db.Book, error)
	Delete(ctx context.Context, id int64) error
}

type bookHandler struct {
	books BookService
	log   *zap.Logger
}

func (h *bookHandler) create(w http.ResponseWriter, r *http.Request) {
	input, err := h.decodeInput(w, r)
	if err != nil {
		WriteError(w, r, h.log, err)
		return
	}

	book, err := h.books.Create(r.Context(), input)
	if err != nil {
		WriteError(w, r, h.log, err)
		return
	}

	writeJSON(w, h.log, http.StatusCreated, book)
}

func (h *bookHandler) list(w http.ResponseWriter, r *http.Request) {
	books, err := h.books.FindAll(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		WriteError(w, r, h.log, err)
		return
	}

	writeJSON(w, h.log, http.StatusOK, books)
}

func (h *bookHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := readIDParam(r)
	if err != nil {
		WriteError(w, r, h.log, err)
		return
	}

	book, err := h.books.FindByID(r.Context(), id)
	if err != nil {
		WriteError(w, r, h.log, err)
		return
	}

	writeJSON(w, h.log, http.StatusOK, book)
}

func (h *bookHandler) update(w http.ResponseWriter, r *http.Request) {
	id, err := readIDParam(r)
	if err != nil {
		WriteError(w, r, h.log, err)
		return
	}

	input, err := h.decodeInput(w, r)
	if err != nil {
		WriteError(w, r, h.log, err)
		return
	}

	book, err := h.books.Update(r.Context(), id, input)
	if err != nil {
		WriteError(w, r, h.log, err)
		return
	}

	writeJSON(w, h.log, http.StatusOK, book)
}

// delete answers 200 with no body.
func (h *bookHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := readIDParam(r)
	if err != nil {
		WriteError(w, r, h.log, err)
		return
	}

	if err := h.books.Delete(r.Context(), id); err != nil {
		WriteError(w, r, h.log, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *bookHandler) decodeInput(w http.ResponseWriter, r *http.Request) (service.BookInput, error) {
	var req validation.BookRequest
	if err := readJSON(w, r, &req); err != nil {
		return service.BookInput{}, err
	}
	return validation.Validate(req)
}

func healthHandler(check func() error, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			if err := check(); err != nil {
				log.Warn("Health check failed", zap.Error(err))
				writeMessage(w, log, http.StatusServiceUnavailable, "unhealthy: dependency unavailable")
				return
			}
		}
		writeMessage(w, log, http.StatusOK, "healthy")
	}
}
