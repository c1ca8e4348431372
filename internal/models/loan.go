package models

import "time"

// LoanStatus is a closed set, validated at the boundary.
//
// Transitions: checked_out -> overdue (sweep), checked_out -> returned,
// overdue -> returned. returned is terminal.
type LoanStatus string

const (
	LoanCheckedOut LoanStatus = "checked_out"
	LoanOverdue    LoanStatus = "overdue"
	LoanReturned   LoanStatus = "returned"
)

// Valid reports whether s is one of the known loan statuses.
func (s LoanStatus) Valid() bool {
	switch s {
	case LoanCheckedOut, LoanOverdue, LoanReturned:
		return true
	}
	return false
}

type Loan struct {
	ID           int64      `json:"id" gorm:"primaryKey;autoIncrement"`
	BookID       int64      `json:"book_id" gorm:"not null;index"`
	MemberID     int64      `json:"member_id" gorm:"not null;index"`
	CheckoutDate time.Time  `json:"checkout_date" gorm:"type:date;not null"`
	DueDate      time.Time  `json:"due_date" gorm:"type:date;not null"`
	ReturnDate   *time.Time `json:"return_date,omitempty" gorm:"type:date"`
	Status       LoanStatus `json:"status" gorm:"size:20;not null;default:'checked_out'"`
	Fine         float64    `json:"fine" gorm:"type:decimal(10,2);not null;default:0"`
	CreatedAt    *time.Time `json:"created_at,omitempty" gorm:"autoCreateTime"`

	// Associations
	Book   *Book   `json:"book,omitempty" gorm:"foreignKey:BookID"`
	Member *Member `json:"member,omitempty" gorm:"foreignKey:MemberID"`
}

func (Loan) TableName() string {
	return "loan_history"
}

// DateOnly truncates t to its calendar day in UTC. Loan dates have day
// granularity, so fine math always works on truncated values.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysLate returns the number of whole days the loan is past due at the
// given date, or zero if it is not past due. The loan's own due date is
// used regardless of whether the overdue sweep has run.
func (l *Loan) DaysLate(at time.Time) int {
	due := DateOnly(l.DueDate)
	day := DateOnly(at)
	if !day.After(due) {
		return 0
	}
	return int(day.Sub(due) / (24 * time.Hour))
}

// FineAt computes the fine owed if the loan is returned at the given date.
func (l *Loan) FineAt(at time.Time, finePerDay float64) float64 {
	return float64(l.DaysLate(at)) * finePerDay
}
