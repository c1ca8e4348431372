package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Zhandos04/library-management-system/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LoanRepository is the loan ledger plus the lifecycle operations over it.
// Checkout and Return wrap their multi-statement effect in a transaction so
// a storage failure mid-update never leaves an orphaned copy-count change
// or an orphaned loan record.
type LoanRepository interface {
	Checkout(ctx context.Context, bookID, memberID int64, today time.Time, loanPeriodDays int) (*models.Loan, error)
	Return(ctx context.Context, loanID int64, today time.Time, finePerDay float64) (*models.Loan, error)
	MarkOverdue(ctx context.Context, today time.Time) (int64, error)
	ResetFines(ctx context.Context) (int64, error)

	GetByID(ctx context.Context, id int64) (*models.Loan, error)
	GetAll(ctx context.Context, page, pageSize int) ([]models.Loan, int64, error)
	GetMemberLoans(ctx context.Context, memberID int64) ([]models.Loan, error)
	GetMemberActiveLoans(ctx context.Context, memberID int64) ([]models.Loan, error)
	GetOverdue(ctx context.Context, today time.Time) ([]models.Loan, error)
}

type loanRepository struct {
	db *gorm.DB
}

func NewLoanRepository(db *gorm.DB) LoanRepository {
	return &loanRepository{db: db}
}

// Checkout creates a loan record and decrements the book's available copy
// count, all-or-nothing. The decrement is conditional on
// available_copies > 0, so two concurrent checkouts of the last copy
// resolve to one success and one ErrBookUnavailable, never a negative
// count.
func (r *loanRepository) Checkout(ctx context.Context, bookID, memberID int64, today time.Time, loanPeriodDays int) (*models.Loan, error) {
	checkoutDate := models.DateOnly(today)
	loan := &models.Loan{
		BookID:       bookID,
		MemberID:     memberID,
		CheckoutDate: checkoutDate,
		DueDate:      checkoutDate.AddDate(0, 0, loanPeriodDays),
		Status:       models.LoanCheckedOut,
		Fine:         0,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var member models.Member
		if err := tx.First(&member, memberID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrMemberNotFound
			}
			return fmt.Errorf("load member: %w", err)
		}
		if member.MembershipStatus != models.MembershipActive {
			return ErrMemberInactive
		}

		// Conditional decrement doubles as the availability re-check
		// inside the transaction.
		result := tx.Model(&models.Book{}).
			Where("id = ? AND available_copies > 0", bookID).
			UpdateColumn("available_copies", gorm.Expr("available_copies - 1"))
		if result.Error != nil {
			return fmt.Errorf("decrement available copies: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&models.Book{}).Where("id = ?", bookID).Count(&count).Error; err != nil {
				return fmt.Errorf("load book: %w", err)
			}
			if count == 0 {
				return ErrBookNotFound
			}
			return ErrBookUnavailable
		}

		if err := tx.Create(loan).Error; err != nil {
			return fmt.Errorf("create loan record: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return loan, nil
}

// Return closes a loan: sets return date, status and fine, and gives the
// copy back to the book's available count. The fine comes from the loan's
// own due date, so a loan already swept to overdue pays the same as one
// still marked checked_out.
func (r *loanRepository) Return(ctx context.Context, loanID int64, today time.Time, finePerDay float64) (*models.Loan, error) {
	returnDate := models.DateOnly(today)
	var loan models.Loan

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&loan, loanID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrLoanNotFound
			}
			return fmt.Errorf("load loan: %w", err)
		}
		if loan.Status == models.LoanReturned {
			return ErrLoanAlreadyReturned
		}

		fine := loan.FineAt(returnDate, finePerDay)
		if err := tx.Model(&loan).Updates(map[string]interface{}{
			"return_date": returnDate,
			"status":      models.LoanReturned,
			"fine":        fine,
		}).Error; err != nil {
			return fmt.Errorf("update loan record: %w", err)
		}
		loan.ReturnDate = &returnDate
		loan.Status = models.LoanReturned
		loan.Fine = fine

		// Guarded so a copy can never come back past the total.
		if err := tx.Model(&models.Book{}).
			Where("id = ? AND available_copies < total_copies", loan.BookID).
			UpdateColumn("available_copies", gorm.Expr("available_copies + 1")).Error; err != nil {
			return fmt.Errorf("increment available copies: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

// MarkOverdue flips every checked_out loan past its due date to overdue.
// Idempotent: a second run matches nothing new. Fines are untouched, the
// sweep only rewrites status.
func (r *loanRepository) MarkOverdue(ctx context.Context, today time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.Loan{}).
		Where("status = ? AND due_date < ?", models.LoanCheckedOut, models.DateOnly(today)).
		Update("status", models.LoanOverdue)
	if result.Error != nil {
		return 0, fmt.Errorf("mark overdue: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// ResetFines zeroes the fine on every returned loan. Open loans keep their
// state; statuses and dates are never altered.
func (r *loanRepository) ResetFines(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.Loan{}).
		Where("status = ?", models.LoanReturned).
		Update("fine", 0)
	if result.Error != nil {
		return 0, fmt.Errorf("reset fines: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *loanRepository) GetByID(ctx context.Context, id int64) (*models.Loan, error) {
	var loan models.Loan
	if err := r.db.WithContext(ctx).
		Preload("Book").
		Preload("Member").
		First(&loan, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLoanNotFound
		}
		return nil, err
	}
	return &loan, nil
}

func (r *loanRepository) GetAll(ctx context.Context, page, pageSize int) ([]models.Loan, int64, error) {
	var list []models.Loan
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Loan{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize

	if err := r.db.WithContext(ctx).
		Preload("Book").
		Preload("Member").
		Order("checkout_date desc").
		Limit(pageSize).
		Offset(offset).
		Find(&list).Error; err != nil {
		return nil, 0, err
	}

	return list, total, nil
}

func (r *loanRepository) GetMemberLoans(ctx context.Context, memberID int64) ([]models.Loan, error) {
	var list []models.Loan
	if err := r.db.WithContext(ctx).
		Preload("Book").
		Where("member_id = ?", memberID).
		Order("checkout_date desc").
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("member loan history: %w", err)
	}
	return list, nil
}

func (r *loanRepository) GetMemberActiveLoans(ctx context.Context, memberID int64) ([]models.Loan, error) {
	var list []models.Loan
	if err := r.db.WithContext(ctx).
		Preload("Book").
		Where("member_id = ? AND status IN ?", memberID, []models.LoanStatus{models.LoanCheckedOut, models.LoanOverdue}).
		Order("due_date asc").
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("member active loans: %w", err)
	}
	return list, nil
}

// GetOverdue also catches checked_out loans past due that the sweep has
// not visited yet.
func (r *loanRepository) GetOverdue(ctx context.Context, today time.Time) ([]models.Loan, error) {
	var list []models.Loan
	if err := r.db.WithContext(ctx).
		Preload("Book").
		Preload("Member").
		Where("status = ? OR (status = ? AND due_date < ?)",
			models.LoanOverdue, models.LoanCheckedOut, models.DateOnly(today)).
		Order("due_date asc").
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("overdue loans: %w", err)
	}
	return list, nil
}
