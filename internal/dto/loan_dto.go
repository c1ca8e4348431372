package dto

import (
	"time"

	"github.com/Zhandos04/library-management-system/internal/models"
)

// CheckoutRequest: payload for checking out a book. member_id may be
// omitted by plain users, whose own member record is used.
type CheckoutRequest struct {
	BookID   int64 `json:"book_id" binding:"required"`
	MemberID int64 `json:"member_id"`
}

// LoanResponse: a loan row joined with book and member display names
type LoanResponse struct {
	ID           int64      `json:"id"`
	BookID       int64      `json:"book_id"`
	MemberID     int64      `json:"member_id"`
	CheckoutDate time.Time  `json:"checkout_date"`
	DueDate      time.Time  `json:"due_date"`
	ReturnDate   *time.Time `json:"return_date,omitempty"`
	Status       string     `json:"status"`
	Fine         float64    `json:"fine"`
	BookTitle    string     `json:"book_title,omitempty"`
	MemberName   string     `json:"member_name,omitempty"`
}

func FromLoanModel(l models.Loan) LoanResponse {
	resp := LoanResponse{
		ID:           l.ID,
		BookID:       l.BookID,
		MemberID:     l.MemberID,
		CheckoutDate: l.CheckoutDate,
		DueDate:      l.DueDate,
		ReturnDate:   l.ReturnDate,
		Status:       string(l.Status),
		Fine:         l.Fine,
	}
	if l.Book != nil {
		resp.BookTitle = l.Book.Title
	}
	if l.Member != nil {
		resp.MemberName = l.Member.FullName()
	}
	return resp
}

func FromLoanModels(loans []models.Loan) []LoanResponse {
	items := make([]LoanResponse, 0, len(loans))
	for _, l := range loans {
		items = append(items, FromLoanModel(l))
	}
	return items
}

type LoanListResponse struct {
	Items    []LoanResponse `json:"items"`
	Total    int64          `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
}

// SweepResponse: result of a bulk loan-ledger action
type SweepResponse struct {
	Affected int64  `json:"affected"`
	Message  string `json:"message"`
}
