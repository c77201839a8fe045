package db

import "time"

// Book represents a book in the library catalog
type Book struct {
	ID              int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Title           string    `gorm:"type:varchar(255);not null" json:"title"`
	Author          string    `gorm:"type:varchar(255);not null;index:idx_books_author" json:"author"`
	ISBN            string    `gorm:"column:isbn;type:varchar(13);not null;uniqueIndex:idx_books_isbn" json:"isbn"`
	PublicationYear string    `gorm:"type:varchar(255);not null" json:"publicationYear"`
	Genre           string    `gorm:"type:varchar(255);not null" json:"genre"`
	Description     *string   `gorm:"type:text" json:"description"`
	CreatedAt       time.Time `gorm:"not null" json:"-"`
	UpdatedAt       time.Time `gorm:"not null" json:"-"`
}

// TableName specifies the table name for Book model
func (Book) TableName() string {
	return "books"
}
