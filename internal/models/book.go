package models

import "time"

type Book struct {
	ID              int64      `json:"id" gorm:"primaryKey;autoIncrement"`
	ISBN            string     `json:"isbn" gorm:"uniqueIndex;size:20;not null"`
	Title           string     `json:"title" gorm:"not null"`
	Author          string     `json:"author" gorm:"not null"`
	Category        string     `json:"category"`
	Publisher       string     `json:"publisher"`
	PublicationYear int        `json:"publication_year"`
	TotalCopies     int        `json:"total_copies" gorm:"not null;default:1"`
	AvailableCopies int        `json:"available_copies" gorm:"not null;default:1"`
	Description     *string    `json:"description,omitempty"`
	CoverURL        *string    `json:"cover_url,omitempty"`
	CreatedAt       *time.Time `json:"created_at,omitempty" gorm:"autoCreateTime"`
}

func (Book) TableName() string {
	return "books"
}

// CopiesOnLoan is the number of copies currently checked out.
func (b *Book) CopiesOnLoan() int {
	return b.TotalCopies - b.AvailableCopies
}

// AdjustedAvailable computes the available count after the total copy count
// changes to newTotal, preserving the number of copies on loan. A shrink below
// the on-loan count clamps at zero instead of going negative.
func (b *Book) AdjustedAvailable(newTotal int) int {
	adjusted := b.AvailableCopies + (newTotal - b.TotalCopies)
	if adjusted < 0 {
		return 0
	}
	if adjusted > newTotal {
		return newTotal
	}
	return adjusted
}
