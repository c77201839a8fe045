package service

import (
	"context"

	"github.com/bookstore/library/internal/db"
)

// Store is the persistence contract the book service relies on.
type Store interface {
	Insert(ctx context.Context, book *db.Book) error
	FindByID(ctx context.Context, id int64) (*db.Book, error)
	FindAll(ctx context.Context) ([]db.Book, error)
	SearchByTitleOrAuthor(ctx context.Context, term string) ([]db.Book, error)
	ExistsByISBN(ctx context.Context, isbn string) (bool, error)
	ExistsByISBNExcluding(ctx context.Context, isbn string, excludeID int64) (bool, error)
	Update(ctx context.Context, book *db.Book) error
	DeleteByID(ctx context.Context, id int64) error
}

// EventPublisher announces book lifecycle changes.
type EventPublisher interface {
	PublishBookCreated(ctx context.Context, book *db.Book) error
	PublishBookUpdated(ctx context.Context, book *db.Book) error
	PublishBookDeleted(ctx context.Context, id int64) error
}
