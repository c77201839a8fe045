package repo

import (
	"context"
	"errors"
	"strings"

	"github.com/bookstore/library/internal/db"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	// ErrBookNotFound is returned when a book is not found
	ErrBookNotFound = errors.New("book not found")

	// ErrBookAlreadyExists is returned when the isbn unique constraint rejects a write
	ErrBookAlreadyExists = errors.New("book already exists")
)

// pgUniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// BookRepository handles book persistence
type BookRepository struct {
	db  *db.DB
	log *zap.Logger
}

// NewBookRepository creates a new book repository
func NewBookRepository(database *db.DB, logger *zap.Logger) *BookRepository {
	return &BookRepository{
		db:  database,
		log: logger,
	}
}

// Insert stores a new book and fills in its id.
func (r *BookRepository) Insert(ctx context.Context, book *db.Book) error {
	book.ID = 0
	if err := r.db.WithContext(ctx).Create(book).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrBookAlreadyExists
		}
		r.log.Error("Failed to create book", zap.String("isbn", book.ISBN), zap.Error(err))
		return err
	}

	r.log.Info("Book created", zap.Int64("id", book.ID), zap.String("isbn", book.ISBN))
	return nil
}

// FindByID retrieves a book by id
func (r *BookRepository) FindByID(ctx context.Context, id int64) (*db.Book, error) {
	var book db.Book
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&book).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		r.log.Error("Failed to get book", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}

	return &book, nil
}

// FindAll returns every book in insertion order
func (r *BookRepository) FindAll(ctx context.Context) ([]db.Book, error) {
	books := []db.Book{}
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&books).Error; err != nil {
		r.log.Error("Failed to list books", zap.Error(err))
		return nil, err
	}
	return books, nil
}

// SearchByTitleOrAuthor returns the books whose title or author contains term,
// ignoring case. Both sides are folded by the database's LOWER. Wildcard
// characters in term match literally.
func (r *BookRepository) SearchByTitleOrAuthor(ctx context.Context, term string) ([]db.Book, error) {
	pattern := "%" + likeEscaper.Replace(term) + "%"

	books := []db.Book{}
	err := r.db.WithContext(ctx).
		Where(`LOWER(title) LIKE LOWER(?) ESCAPE '\' OR LOWER(author) LIKE LOWER(?) ESCAPE '\'`, pattern, pattern).
		Order("id ASC").
		Find(&books).Error
	if err != nil {
		r.log.Error("Failed to search books", zap.String("term", term), zap.Error(err))
		return nil, err
	}
	return books, nil
}

// ExistsByISBN reports whether any book carries isbn
func (r *BookRepository) ExistsByISBN(ctx context.Context, isbn string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&db.Book{}).Where("isbn = ?", isbn).Count(&count).Error; err != nil {
		r.log.Error("Failed to check isbn", zap.String("isbn", isbn), zap.Error(err))
		return false, err
	}
	return count > 0, nil
}

// ExistsByISBNExcluding reports whether a book other than excludeID carries isbn
func (r *BookRepository) ExistsByISBNExcluding(ctx context.Context, isbn string, excludeID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&db.Book{}).
		Where("isbn = ? AND id <> ?", isbn, excludeID).
		Count(&count).Error
	if err != nil {
		r.log.Error("Failed to check isbn", zap.String("isbn", isbn), zap.Int64("exclude_id", excludeID), zap.Error(err))
		return false, err
	}
	return count > 0, nil
}

// Update replaces every non-id field of the stored book
func (r *BookRepository) Update(ctx context.Context, book *db.Book) error {
	result := r.db.WithContext(ctx).Model(book).
		Select("title", "author", "isbn", "publication_year", "genre", "description", "updated_at").
		Updates(book)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return ErrBookAlreadyExists
		}
		r.log.Error("Failed to update book", zap.Int64("id", book.ID), zap.Error(result.Error))
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrBookNotFound
	}

	r.log.Info("Book updated", zap.Int64("id", book.ID), zap.String("isbn", book.ISBN))
	return nil
}

// DeleteByID removes a book. Deleting a missing id is a no-op.
func (r *BookRepository) DeleteByID(ctx context.Context, id int64) error {
	if err := r.db.WithContext(ctx).Delete(&db.Book{}, id).Error; err != nil {
		r.log.Error("Failed to delete book", zap.Int64("id", id), zap.Error(err))
		return err
	}

	r.log.Info("Book deleted", zap.Int64("id", id))
	return nil
}

// Count returns the number of stored books
func (r *BookRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&db.Book{}).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
