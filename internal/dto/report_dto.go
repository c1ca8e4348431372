package dto

import "time"

// Report row shapes. These are produced straight from aggregation queries
// and returned to the client as-is.

type PopularBookRow struct {
	BookID    int64  `json:"book_id"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	LoanCount int64  `json:"loan_count"`
}

type ActiveMemberRow struct {
	MemberID  int64  `json:"member_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	LoanCount int64  `json:"loan_count"`
}

type OverdueLoanRow struct {
	LoanID       int64     `json:"loan_id"`
	Title        string    `json:"title"`
	Author       string    `json:"author"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Email        string    `json:"email"`
	CheckoutDate time.Time `json:"checkout_date"`
	DueDate      time.Time `json:"due_date"`
	DaysOverdue  int       `json:"days_overdue"`
}

type FinesCollectedRow struct {
	MemberID  int64   `json:"member_id"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Email     string  `json:"email"`
	TotalFine float64 `json:"total_fine"`
	LoanCount int64   `json:"loan_count"`
}

type InventoryRow struct {
	BookID          int64  `json:"book_id"`
	ISBN            string `json:"isbn"`
	Title           string `json:"title"`
	Author          string `json:"author"`
	Category        string `json:"category"`
	TotalCopies     int    `json:"total_copies"`
	AvailableCopies int    `json:"available_copies"`
	CheckedOut      int    `json:"checked_out"`
}

type DailyLoanCountRow struct {
	LoanDate  time.Time `json:"loan_date"`
	LoanCount int64     `json:"loan_count"`
}

// DashboardStats is the admin overview snapshot.
type DashboardStats struct {
	TotalBooks    int64   `json:"total_books"`
	TotalMembers  int64   `json:"total_members"`
	ActiveMembers int64   `json:"active_members"`
	TotalLoans    int64   `json:"total_loans"`
	ActiveLoans   int64   `json:"active_loans"`
	OverdueLoans  int64   `json:"overdue_loans"`
	TotalFines    float64 `json:"total_fines"`
}
