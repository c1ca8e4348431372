package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Zhandos04/library-management-system/internal/dto"
	"github.com/Zhandos04/library-management-system/internal/models"

	"gorm.io/gorm"
)

// ReportRepository holds the read-only aggregations over the loan ledger
// and the two stores. Nothing here mutates state.
type ReportRepository interface {
	PopularBooks(ctx context.Context, start, end time.Time) ([]dto.PopularBookRow, error)
	ActiveMembers(ctx context.Context, start, end time.Time) ([]dto.ActiveMemberRow, error)
	OverdueLoans(ctx context.Context, today time.Time) ([]dto.OverdueLoanRow, error)
	FinesCollected(ctx context.Context, start, end time.Time) ([]dto.FinesCollectedRow, error)
	Inventory(ctx context.Context) ([]dto.InventoryRow, error)
	DailyLoanCounts(ctx context.Context, start, end time.Time) ([]dto.DailyLoanCountRow, error)
	DashboardStats(ctx context.Context) (*dto.DashboardStats, error)
}

type reportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) PopularBooks(ctx context.Context, start, end time.Time) ([]dto.PopularBookRow, error) {
	var rows []dto.PopularBookRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT b.id AS book_id, b.title, b.author, COUNT(l.id) AS loan_count
		FROM books b
		JOIN loan_history l ON b.id = l.book_id
		WHERE l.checkout_date BETWEEN ? AND ?
		GROUP BY b.id, b.title, b.author
		ORDER BY loan_count DESC
		LIMIT 10`, start, end).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("popular books report: %w", err)
	}
	return rows, nil
}

func (r *reportRepository) ActiveMembers(ctx context.Context, start, end time.Time) ([]dto.ActiveMemberRow, error) {
	var rows []dto.ActiveMemberRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT m.id AS member_id, m.first_name, m.last_name, m.email, COUNT(l.id) AS loan_count
		FROM members m
		JOIN loan_history l ON m.id = l.member_id
		WHERE l.checkout_date BETWEEN ? AND ?
		GROUP BY m.id, m.first_name, m.last_name, m.email
		ORDER BY loan_count DESC
		LIMIT 10`, start, end).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("active members report: %w", err)
	}
	return rows, nil
}

func (r *reportRepository) OverdueLoans(ctx context.Context, today time.Time) ([]dto.OverdueLoanRow, error) {
	day := models.DateOnly(today)
	var rows []dto.OverdueLoanRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT l.id AS loan_id, b.title, b.author,
		       m.first_name, m.last_name, m.email,
		       l.checkout_date, l.due_date,
		       (?::date - l.due_date::date) AS days_overdue
		FROM loan_history l
		JOIN books b ON l.book_id = b.id
		JOIN members m ON l.member_id = m.id
		WHERE l.status IN ('checked_out', 'overdue') AND l.due_date < ?
		ORDER BY days_overdue DESC`, day, day).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("overdue loans report: %w", err)
	}
	return rows, nil
}

func (r *reportRepository) FinesCollected(ctx context.Context, start, end time.Time) ([]dto.FinesCollectedRow, error) {
	var rows []dto.FinesCollectedRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT m.id AS member_id, m.first_name, m.last_name, m.email,
		       SUM(l.fine) AS total_fine, COUNT(l.id) AS loan_count
		FROM loan_history l
		JOIN members m ON l.member_id = m.id
		WHERE l.fine > 0 AND l.return_date BETWEEN ? AND ?
		GROUP BY m.id, m.first_name, m.last_name, m.email
		ORDER BY total_fine DESC`, start, end).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("fines collected report: %w", err)
	}
	return rows, nil
}

func (r *reportRepository) Inventory(ctx context.Context) ([]dto.InventoryRow, error) {
	var rows []dto.InventoryRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT b.id AS book_id, b.isbn, b.title, b.author, b.category,
		       b.total_copies, b.available_copies,
		       (b.total_copies - b.available_copies) AS checked_out
		FROM books b
		ORDER BY b.category, b.title`).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("inventory report: %w", err)
	}
	return rows, nil
}

func (r *reportRepository) DailyLoanCounts(ctx context.Context, start, end time.Time) ([]dto.DailyLoanCountRow, error) {
	var rows []dto.DailyLoanCountRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT checkout_date AS loan_date, COUNT(*) AS loan_count
		FROM loan_history
		WHERE checkout_date BETWEEN ? AND ?
		GROUP BY checkout_date
		ORDER BY loan_date`, start, end).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("loan stats report: %w", err)
	}
	return rows, nil
}

func (r *reportRepository) DashboardStats(ctx context.Context) (*dto.DashboardStats, error) {
	stats := &dto.DashboardStats{}
	db := r.db.WithContext(ctx)

	if err := db.Model(&models.Book{}).Count(&stats.TotalBooks).Error; err != nil {
		return nil, fmt.Errorf("dashboard stats: %w", err)
	}
	if err := db.Model(&models.Member{}).Count(&stats.TotalMembers).Error; err != nil {
		return nil, fmt.Errorf("dashboard stats: %w", err)
	}
	if err := db.Model(&models.Member{}).
		Where("membership_status = ?", models.MembershipActive).
		Count(&stats.ActiveMembers).Error; err != nil {
		return nil, fmt.Errorf("dashboard stats: %w", err)
	}

	row := struct {
		TotalLoans   int64
		ActiveLoans  int64
		OverdueLoans int64
		TotalFines   float64
	}{}
	if err := db.Raw(`
		SELECT COUNT(*) AS total_loans,
		       COALESCE(SUM(CASE WHEN status = 'checked_out' THEN 1 ELSE 0 END), 0) AS active_loans,
		       COALESCE(SUM(CASE WHEN status = 'overdue' THEN 1 ELSE 0 END), 0) AS overdue_loans,
		       COALESCE(SUM(fine), 0) AS total_fines
		FROM loan_history`).Scan(&row).Error; err != nil {
		return nil, fmt.Errorf("dashboard stats: %w", err)
	}
	stats.TotalLoans = row.TotalLoans
	stats.ActiveLoans = row.ActiveLoans
	stats.OverdueLoans = row.OverdueLoans
	stats.TotalFines = row.TotalFines

	return stats, nil
}
