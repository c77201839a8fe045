// Package validation turns decoded book payloads into validated service input.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/bookstore/library/internal/apperror"
	"github.com/bookstore/library/internal/service"
	"github.com/go-playground/validator/v10"
)

// ISBNPattern accepts 13 digits with a 978 or 979 prefix and no separators.
var ISBNPattern = regexp.MustCompile(`^(978|979)\d{10}$`)

const isbnFormatMessage = "ISBN must be 13 digits, start with 978 or 979, and contain no dashes"

// BookRequest is the JSON body of create and update requests. Pointer fields
// distinguish an absent or null value from an empty one. Unknown fields and
// "id" are ignored.
type BookRequest struct {
	Title           *string `json:"title" validate:"required,notblank"`
	Author          *string `json:"author" validate:"required,notblank"`
	ISBN            *string `json:"isbn" validate:"required,notblank,isbn13"`
	PublicationYear *string `json:"publicationYear" validate:"required,notblank"`
	Genre           *string `json:"genre" validate:"required,notblank"`
	Description     *string `json:"description"`
}

var labels = map[string]string{
	"title":           "Title",
	"author":          "Author",
	"isbn":            "ISBN",
	"publicationYear": "Publication year",
	"genre":           "Genre",
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	// registration only fails for an empty tag or nil func
	_ = v.RegisterValidation("notblank", notBlank)
	_ = v.RegisterValidation("isbn13", func(fl validator.FieldLevel) bool {
		return ISBNPattern.MatchString(fl.Field().String())
	})

	return v
}

func notBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// Validate checks req and returns the validated input. Every violated rule
// produces one "<field>: <message>" entry; entries are sorted ascending and
// returned as an apperror validation failure.
func Validate(req BookRequest) (service.BookInput, error) {
	if messages := Messages(req); len(messages) > 0 {
		return service.BookInput{}, apperror.Validation(messages)
	}

	return service.BookInput{
		Title:           *req.Title,
		Author:          *req.Author,
		ISBN:            *req.ISBN,
		PublicationYear: *req.PublicationYear,
		Genre:           *req.Genre,
		Description:     req.Description,
	}, nil
}

// Messages returns the sorted field errors for req, or nil when req is valid.
func Messages(req BookRequest) []string {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []string{err.Error()}
	}

	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		messages = append(messages, fmt.Sprintf("%s: %s", fe.Field(), message(fe)))
	}
	sort.Strings(messages)
	return messages
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return labels[fe.Field()] + " is required"
	case "isbn13":
		return isbnFormatMessage
	default:
		return labels[fe.Field()] + " is invalid"
	}
}
