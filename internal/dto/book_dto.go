package dto

import (
	"time"

	"github.com/Zhandos04/library-management-system/internal/models"
)

// BookRequest: payload for creating or updating a catalog entry.
// available_copies is never accepted from the client; the loan engine and
// the total-copies adjustment own that field.
type BookRequest struct {
	ISBN            string  `json:"isbn" binding:"required"`
	Title           string  `json:"title" binding:"required"`
	Author          string  `json:"author" binding:"required"`
	Category        string  `json:"category"`
	Publisher       string  `json:"publisher"`
	PublicationYear int     `json:"publication_year"`
	TotalCopies     int     `json:"total_copies" binding:"required,min=1"`
	Description     *string `json:"description,omitempty"`
}

func (r *BookRequest) ToModel() *models.Book {
	return &models.Book{
		ISBN:            r.ISBN,
		Title:           r.Title,
		Author:          r.Author,
		Category:        r.Category,
		Publisher:       r.Publisher,
		PublicationYear: r.PublicationYear,
		TotalCopies:     r.TotalCopies,
		Description:     r.Description,
	}
}

type BookListResponse struct {
	Items    []models.Book `json:"items"`
	Total    int64         `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
}

type CoverResponse struct {
	BookID   int64  `json:"book_id"`
	CoverURL string `json:"cover_url"`
}

type DescriptionResponse struct {
	BookID      int64     `json:"book_id"`
	Description string    `json:"description"`
	GeneratedAt time.Time `json:"generated_at"`
}
