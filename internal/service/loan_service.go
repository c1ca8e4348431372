package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Zhandos04/library-management-system/internal/config"
	"github.com/Zhandos04/library-management-system/internal/models"
	"github.com/Zhandos04/library-management-system/internal/repository"

	"gorm.io/gorm"
)

var ErrForbidden = errors.New("operation not allowed for this account")

// Actor identifies who is performing a loan operation. Plain users may
// only act on the member record linked to their own account; librarians
// and admins may act on any member.
type Actor struct {
	UserID string
	Role   models.Role
}

type LoanService interface {
	// Checkout creates a loan. memberID 0 means "the actor's own member
	// record" for self-service checkout.
	Checkout(ctx context.Context, bookID, memberID int64, actor Actor) (*models.Loan, error)
	Return(ctx context.Context, loanID int64) (*models.Loan, error)
	MarkOverdue(ctx context.Context) (int64, error)
	ResetFines(ctx context.Context) (int64, error)

	GetByID(ctx context.Context, id int64) (*models.Loan, error)
	GetAll(ctx context.Context, page, pageSize int) ([]models.Loan, int64, error)
	GetMemberLoans(ctx context.Context, memberID int64, activeOnly bool, actor Actor) ([]models.Loan, error)
	GetOverdue(ctx context.Context) ([]models.Loan, error)
}

type loanService struct {
	repo       repository.LoanRepository
	memberRepo repository.MemberRepository
	logger     *slog.Logger

	loanPeriodDays int
	finePerDay     float64
	now            func() time.Time
}

func NewLoanService(repo repository.LoanRepository, memberRepo repository.MemberRepository, cfg *config.Config, logger *slog.Logger) LoanService {
	return &loanService{
		repo:           repo,
		memberRepo:     memberRepo,
		logger:         logger,
		loanPeriodDays: cfg.LoanPeriodDays,
		finePerDay:     cfg.FinePerDay,
		now:            time.Now,
	}
}

func (s *loanService) Checkout(ctx context.Context, bookID, memberID int64, actor Actor) (*models.Loan, error) {
	memberID, err := s.resolveMember(ctx, memberID, actor)
	if err != nil {
		return nil, err
	}

	loan, err := s.repo.Checkout(ctx, bookID, memberID, s.now(), s.loanPeriodDays)
	if err != nil {
		return nil, err
	}
	s.logger.Info("book checked out",
		"loan_id", loan.ID, "book_id", bookID, "member_id", memberID, "due_date", loan.DueDate)
	return loan, nil
}

func (s *loanService) Return(ctx context.Context, loanID int64) (*models.Loan, error) {
	loan, err := s.repo.Return(ctx, loanID, s.now(), s.finePerDay)
	if err != nil {
		return nil, err
	}
	s.logger.Info("book returned", "loan_id", loan.ID, "book_id", loan.BookID, "fine", loan.Fine)
	return loan, nil
}

func (s *loanService) MarkOverdue(ctx context.Context) (int64, error) {
	n, err := s.repo.MarkOverdue(ctx, s.now())
	if err != nil {
		return 0, err
	}
	s.logger.Info("overdue sweep complete", "loans_marked", n)
	return n, nil
}

func (s *loanService) ResetFines(ctx context.Context) (int64, error) {
	n, err := s.repo.ResetFines(ctx)
	if err != nil {
		return 0, err
	}
	s.logger.Info("fines reset", "loans_affected", n)
	return n, nil
}

func (s *loanService) GetByID(ctx context.Context, id int64) (*models.Loan, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *loanService) GetAll(ctx context.Context, page, pageSize int) ([]models.Loan, int64, error) {
	return s.repo.GetAll(ctx, page, pageSize)
}

func (s *loanService) GetMemberLoans(ctx context.Context, memberID int64, activeOnly bool, actor Actor) ([]models.Loan, error) {
	if !actor.Role.AtLeastLibrarian() {
		member, err := s.memberRepo.GetByID(ctx, memberID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, repository.ErrMemberNotFound
			}
			return nil, err
		}
		if member.UserID == nil || *member.UserID != actor.UserID {
			return nil, ErrForbidden
		}
	}

	if activeOnly {
		return s.repo.GetMemberActiveLoans(ctx, memberID)
	}
	return s.repo.GetMemberLoans(ctx, memberID)
}

func (s *loanService) GetOverdue(ctx context.Context) ([]models.Loan, error) {
	return s.repo.GetOverdue(ctx, s.now())
}

// resolveMember maps the requested member to the one the actor may check
// out for.
func (s *loanService) resolveMember(ctx context.Context, memberID int64, actor Actor) (int64, error) {
	if actor.Role.AtLeastLibrarian() {
		if memberID == 0 {
			return 0, repository.ErrMemberNotFound
		}
		return memberID, nil
	}

	own, err := s.memberRepo.GetByUserID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrForbidden
		}
		return 0, err
	}
	if memberID != 0 && memberID != own.ID {
		return 0, ErrForbidden
	}
	return own.ID, nil
}
