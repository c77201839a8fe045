package validation

import (
	"encoding/json"
	"testing"

	"github.com/bookstore/library/internal/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, body string) BookRequest {
	t.Helper()
	var req BookRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))
	return req
}

const validBody = `{
	"title": "Mommyclopedia: 78 Resep MPASI",
	"author": "dr. Meta Hanindita, Sp.A",
	"isbn": "9786028519939",
	"publicationYear": "2016",
	"genre": "Parenting",
	"description": "Kumpulan resep MPASI untuk bayi"
}`

func TestValidateSuccess(t *testing.T) {
	input, err := Validate(decode(t, validBody))
	require.NoError(t, err)

	assert.Equal(t, "Mommyclopedia: 78 Resep MPASI", input.Title)
	assert.Equal(t, "dr. Meta Hanindita, Sp.A", input.Author)
	assert.Equal(t, "9786028519939", input.ISBN)
	assert.Equal(t, "2016", input.PublicationYear)
	assert.Equal(t, "Parenting", input.Genre)
	require.NotNil(t, input.Description)
	assert.Equal(t, "Kumpulan resep MPASI untuk bayi", *input.Description)
}

func TestValidateKeepsValuesUntrimmed(t *testing.T) {
	input, err := Validate(decode(t, `{"title":"  Padded  ","author":"A","isbn":"9791234567890","publicationYear":"circa 1990","genre":"G"}`))
	require.NoError(t, err)
	assert.Equal(t, "  Padded  ", input.Title)
	assert.Equal(t, "circa 1990", input.PublicationYear)
	assert.Nil(t, input.Description)
}

func TestValidateAllRequiredMissing(t *testing.T) {
	_, err := Validate(decode(t, `{"description":"Some description"}`))

	var appErr *apperror.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.KindValidation, appErr.Kind)
	assert.Equal(t, []string{
		"author: Author is required",
		"genre: Genre is required",
		"isbn: ISBN is required",
		"publicationYear: Publication year is required",
		"title: Title is required",
	}, appErr.Errors)
}

func TestValidateBlankAndNull(t *testing.T) {
	messages := Messages(decode(t, `{"title":"   ","author":null,"isbn":"","publicationYear":"\t","genre":"Parenting"}`))
	assert.Equal(t, []string{
		"author: Author is required",
		"isbn: ISBN is required",
		"publicationYear: Publication year is required",
		"title: Title is required",
	}, messages)
}

func TestValidateISBNFormat(t *testing.T) {
	cases := map[string]bool{
		"9786028519939":     true,
		"9791234567890":     true,
		"978-602-8519-93-9": false,
		"9776028519939":     false,
		"978602851993":      false,
		"97860285199390":    false,
		"978602851993X":     false,
		" 9786028519939":    false,
	}

	for isbn, ok := range cases {
		req := decode(t, validBody)
		req.ISBN = &isbn
		messages := Messages(req)
		if ok {
			assert.Empty(t, messages, isbn)
			continue
		}
		assert.Equal(t, []string{"isbn: " + isbnFormatMessage}, messages, isbn)
	}
}

func TestValidateSortsMixedErrors(t *testing.T) {
	messages := Messages(decode(t, `{"title":"T","isbn":"978-602-8519-93-9","publicationYear":"2016"}`))
	assert.Equal(t, []string{
		"author: Author is required",
		"genre: Genre is required",
		"isbn: ISBN must be 13 digits, start with 978 or 979, and contain no dashes",
	}, messages)
}

func TestValidateIgnoresIDAndUnknownFields(t *testing.T) {
	var req BookRequest
	require.NoError(t, json.Unmarshal([]byte(`{"id":42,"title":"T","author":"A","isbn":"9786028519939","publicationYear":"2016","genre":"G","rating":5}`), &req))
	_, err := Validate(req)
	assert.NoError(t, err)
}
