package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bookstore/library/internal/apperror"
	"github.com/bookstore/library/internal/db"
	"github.com/bookstore/library/internal/repo"
	"go.uber.org/zap"
)

const publishTimeout = 10 * time.Second

// BookInput is a validated create/update payload.
type BookInput struct {
	Title           string
	Author          string
	ISBN            string
	PublicationYear string
	Genre           string
	Description     *string
}

// BookService enforces the catalog rules on top of a Store.
type BookService struct {
	store     Store
	publisher EventPublisher
	log       *zap.Logger
}

// NewBookService creates a new book service
func NewBookService(store Store, publisher EventPublisher, log *zap.Logger) *BookService {
	return &BookService{
		store:     store,
		publisher: publisher,
		log:       log,
	}
}

// Create stores a new book unless its ISBN is taken.
func (s *BookService) Create(ctx context.Context, input BookInput) (*db.Book, error) {
	exists, err := s.store.ExistsByISBN(ctx, input.ISBN)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if exists {
		return nil, duplicateISBN(input.ISBN)
	}

	book := &db.Book{}
	input.applyTo(book)

	if err := s.store.Insert(ctx, book); err != nil {
		return nil, s.storeError(err, input.ISBN, 0)
	}

	s.publish("created", book.ID, func(ctx context.Context) error {
		return s.publisher.PublishBookCreated(ctx, book)
	})

	return book, nil
}

// FindByID returns the book with the given id.
func (s *BookService) FindByID(ctx context.Context, id int64) (*db.Book, error) {
	book, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, s.storeError(err, "", id)
	}
	return book, nil
}

// FindAll returns every book, or only those whose title or author contains
// search (case-insensitive) when search is non-empty.
func (s *BookService) FindAll(ctx context.Context, search string) ([]db.Book, error) {
	var (
		books []db.Book
		err   error
	)
	if search == "" {
		books, err = s.store.FindAll(ctx)
	} else {
		books, err = s.store.SearchByTitleOrAuthor(ctx, search)
	}
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if books == nil {
		books = []db.Book{}
	}
	return books, nil
}

// Update overwrites every field of an existing book. The existence check runs
// before the ISBN check, and both run before the write.
func (s *BookService) Update(ctx context.Context, id int64, input BookInput) (*db.Book, error) {
	book, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, s.storeError(err, "", id)
	}

	taken, err := s.store.ExistsByISBNExcluding(ctx, input.ISBN, id)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if taken {
		return nil, duplicateISBN(input.ISBN)
	}

	input.applyTo(book)
	book.ID = id

	if err := s.store.Update(ctx, book); err != nil {
		return nil, s.storeError(err, input.ISBN, id)
	}

	s.publish("updated", id, func(ctx context.Context) error {
		return s.publisher.PublishBookUpdated(ctx, book)
	})

	return book, nil
}

// Delete removes an existing book.
func (s *BookService) Delete(ctx context.Context, id int64) error {
	if _, err := s.store.FindByID(ctx, id); err != nil {
		return s.storeError(err, "", id)
	}

	if err := s.store.DeleteByID(ctx, id); err != nil {
		return apperror.Internal(err)
	}

	s.publish("deleted", id, func(ctx context.Context) error {
		return s.publisher.PublishBookDeleted(ctx, id)
	})

	return nil
}

// storeError maps repository sentinels onto client-facing kinds.
func (s *BookService) storeError(err error, isbn string, id int64) error {
	switch {
	case errors.Is(err, repo.ErrBookNotFound):
		return notFound(id)
	case errors.Is(err, repo.ErrBookAlreadyExists):
		return duplicateISBN(isbn)
	default:
		return apperror.Internal(err)
	}
}

// publish runs fn in the background; event delivery never fails a request.
func (s *BookService) publish(action string, id int64, fn func(ctx context.Context) error) {
	if s.publisher == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()

		if err := fn(ctx); err != nil {
			s.log.Error("Failed to publish book event",
				zap.String("action", action),
				zap.Int64("id", id),
				zap.Error(err),
			)
		}
	}()
}

func (in BookInput) applyTo(book *db.Book) {
	book.Title = in.Title
	book.Author = in.Author
	book.ISBN = in.ISBN
	book.PublicationYear = in.PublicationYear
	book.Genre = in.Genre
	book.Description = in.Description
}

func duplicateISBN(isbn string) error {
	return apperror.Duplicate(fmt.Sprintf("Book with ISBN %s already exists", isbn))
}

func notFound(id int64) error {
	return apperror.NotFound(fmt.Sprintf("Book not found with id: %d", id))
}
