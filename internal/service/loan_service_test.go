package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/Zhandos04/library-management-system/internal/config"
	"github.com/Zhandos04/library-management-system/internal/models"
	"github.com/Zhandos04/library-management-system/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

// --- MOCK REPOSITORIES ---

type MockLoanRepository struct {
	mock.Mock
}

func (m *MockLoanRepository) Checkout(ctx context.Context, bookID, memberID int64, today time.Time, loanPeriodDays int) (*models.Loan, error) {
	args := m.Called(ctx, bookID, memberID, today, loanPeriodDays)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Loan), args.Error(1)
}

func (m *MockLoanRepository) Return(ctx context.Context, loanID int64, today time.Time, finePerDay float64) (*models.Loan, error) {
	args := m.Called(ctx, loanID, today, finePerDay)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Loan), args.Error(1)
}

func (m *MockLoanRepository) MarkOverdue(ctx context.Context, today time.Time) (int64, error) {
	args := m.Called(ctx, today)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLoanRepository) ResetFines(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLoanRepository) GetByID(ctx context.Context, id int64) (*models.Loan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Loan), args.Error(1)
}

func (m *MockLoanRepository) GetAll(ctx context.Context, page, pageSize int) ([]models.Loan, int64, error) {
	args := m.Called(ctx, page, pageSize)
	return args.Get(0).([]models.Loan), args.Get(1).(int64), args.Error(2)
}

func (m *MockLoanRepository) GetMemberLoans(ctx context.Context, memberID int64) ([]models.Loan, error) {
	args := m.Called(ctx, memberID)
	return args.Get(0).([]models.Loan), args.Error(1)
}

func (m *MockLoanRepository) GetMemberActiveLoans(ctx context.Context, memberID int64) ([]models.Loan, error) {
	args := m.Called(ctx, memberID)
	return args.Get(0).([]models.Loan), args.Error(1)
}

func (m *MockLoanRepository) GetOverdue(ctx context.Context, today time.Time) ([]models.Loan, error) {
	args := m.Called(ctx, today)
	return args.Get(0).([]models.Loan), args.Error(1)
}

type MockMemberRepository struct {
	mock.Mock
}

func (m *MockMemberRepository) GetAll(ctx context.Context, page, pageSize int) ([]models.Member, int64, error) {
	args := m.Called(ctx, page, pageSize)
	return args.Get(0).([]models.Member), args.Get(1).(int64), args.Error(2)
}

func (m *MockMemberRepository) GetByID(ctx context.Context, id int64) (*models.Member, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Member), args.Error(1)
}

func (m *MockMemberRepository) GetByUserID(ctx context.Context, userID string) (*models.Member, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Member), args.Error(1)
}

func (m *MockMemberRepository) Create(ctx context.Context, member *models.Member) error {
	args := m.Called(ctx, member)
	return args.Error(0)
}

func (m *MockMemberRepository) Update(ctx context.Context, id int64, member *models.Member) error {
	args := m.Called(ctx, id, member)
	return args.Error(0)
}

func (m *MockMemberRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockMemberRepository) Search(ctx context.Context, query string) ([]models.Member, error) {
	args := m.Called(ctx, query)
	return args.Get(0).([]models.Member), args.Error(1)
}

// --- SETUP ---

func newTestLoanService(loanRepo *MockLoanRepository, memberRepo *MockMemberRepository) *loanService {
	cfg := &config.Config{LoanPeriodDays: 14, FinePerDay: 0.50}
	svc := NewLoanService(loanRepo, memberRepo, cfg, slog.New(slog.NewTextHandler(io.Discard, nil))).(*loanService)
	svc.now = func() time.Time {
		return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	}
	return svc
}

func strPtr(s string) *string { return &s }

// --- TESTS ---

func TestLoanService_Checkout(t *testing.T) {
	ctx := context.Background()

	t.Run("LibrarianForAnyMember", func(t *testing.T) {
		loanRepo := new(MockLoanRepository)
		memberRepo := new(MockMemberRepository)
		svc := newTestLoanService(loanRepo, memberRepo)

		expected := &models.Loan{ID: 1, BookID: 10, MemberID: 7, Status: models.LoanCheckedOut}
		loanRepo.On("Checkout", mock.Anything, int64(10), int64(7), svc.now(), 14).
			Return(expected, nil).Once()

		loan, err := svc.Checkout(ctx, 10, 7, Actor{UserID: "lib-1", Role: models.RoleLibrarian})

		assert.NoError(t, err)
		assert.Equal(t, expected, loan)
		loanRepo.AssertExpectations(t)
		memberRepo.AssertNotCalled(t, "GetByUserID")
	})

	t.Run("LibrarianWithoutMemberID", func(t *testing.T) {
		loanRepo := new(MockLoanRepository)
		memberRepo := new(MockMemberRepository)
		svc := newTestLoanService(loanRepo, memberRepo)

		_, err := svc.Checkout(ctx, 10, 0, Actor{UserID: "lib-1", Role: models.RoleLibrarian})

		assert.ErrorIs(t, err, repository.ErrMemberNotFound)
		loanRepo.AssertNotCalled(t, "Checkout")
	})

	t.Run("UserSelfService", func(t *testing.T) {
		loanRepo := new(MockLoanRepository)
		memberRepo := new(MockMemberRepository)
		svc := newTestLoanService(loanRepo, memberRepo)

		memberRepo.On("GetByUserID", mock.Anything, "user-1").
			Return(&models.Member{ID: 7, UserID: strPtr("user-1")}, nil).Once()
		expected := &models.Loan{ID: 1, BookID: 10, MemberID: 7}
		loanRepo.On("Checkout", mock.Anything, int64(10), int64(7), svc.now(), 14).
			Return(expected, nil).Once()

		loan, err := svc.Checkout(ctx, 10, 0, Actor{UserID: "user-1", Role: models.RoleUser})

		assert.NoError(t, err)
		assert.Equal(t, int64(7), loan.MemberID)
		memberRepo.AssertExpectations(t)
	})

	t.Run("UserForOtherMemberForbidden", func(t *testing.T) {
		loanRepo := new(MockLoanRepository)
		memberRepo := new(MockMemberRepository)
		svc := newTestLoanService(loanRepo, memberRepo)

		memberRepo.On("GetByUserID", mock.Anything, "user-1").
			Return(&models.Member{ID: 7, UserID: strPtr("user-1")}, nil).Once()

		_, err := svc.Checkout(ctx, 10, 99, Actor{UserID: "user-1", Role: models.RoleUser})

		assert.ErrorIs(t, err, ErrForbidden)
		loanRepo.AssertNotCalled(t, "Checkout")
	})

	t.Run("UserWithoutMemberRecordForbidden", func(t *testing.T) {
		loanRepo := new(MockLoanRepository)
		memberRepo := new(MockMemberRepository)
		svc := newTestLoanService(loanRepo, memberRepo)

		memberRepo.On("GetByUserID", mock.Anything, "user-2").
			Return(nil, gorm.ErrRecordNotFound).Once()

		_, err := svc.Checkout(ctx, 10, 0, Actor{UserID: "user-2", Role: models.RoleUser})

		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("RepositoryErrorPassedThrough", func(t *testing.T) {
		loanRepo := new(MockLoanRepository)
		memberRepo := new(MockMemberRepository)
		svc := newTestLoanService(loanRepo, memberRepo)

		loanRepo.On("Checkout", mock.Anything, int64(10), int64(7), svc.now(), 14).
			Return(nil, repository.ErrBookUnavailable).Once()

		_, err := svc.Checkout(ctx, 10, 7, Actor{UserID: "lib-1", Role: models.RoleAdmin})

		assert.ErrorIs(t, err, repository.ErrBookUnavailable)
	})
}

func TestLoanService_Return(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		loanRepo := new(MockLoanRepository)
		memberRepo := new(MockMemberRepository)
		svc := newTestLoanService(loanRepo, memberRepo)

		expected := &models.Loan{ID: 5, Status: models.LoanReturned, Fine: 2.0}
		loanRepo.On("Return", mock.Anything, int64(5), svc.now(), 0.50).
			Return(expected, nil).Once()

		loan, err := svc.Return(ctx, 5)

		assert.NoError(t, err)
		assert.Equal(t, models.LoanReturned, loan.Status)
		assert.Equal(t, 2.0, loan.Fine)
	})

	t.Run("AlreadyReturned", func(t *testing.T) {
		loanRepo := new(MockLoanRepository)
		memberRepo := new(MockMemberRepository)
		svc := newTestLoanService(loanRepo, memberRepo)

		loanRepo.On("Return", mock.Anything, int64(5), svc.now(), 0.50).
			Return(nil, repository.ErrLoanAlreadyReturned).Once()

		_, err := svc.Return(ctx, 5)

		assert.ErrorIs(t, err, repository.ErrLoanAlreadyReturned)
	})
}

func TestLoanService_MarkOverdue(t *testing.T) {
	loanRepo := new(MockLoanRepository)
	memberRepo := new(MockMemberRepository)
	svc := newTestLoanService(loanRepo, memberRepo)

	loanRepo.On("MarkOverdue", mock.Anything, svc.now()).Return(int64(3), nil).Once()

	n, err := svc.MarkOverdue(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestLoanService_ResetFines(t *testing.T) {
	loanRepo := new(MockLoanRepository)
	memberRepo := new(MockMemberRepository)
	svc := newTestLoanService(loanRepo, memberRepo)

	loanRepo.On("ResetFines", mock.Anything).Return(int64(8), nil).Once()

	n, err := svc.ResetFines(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, int64(8), n)
}

func TestLoanService_GetMemberLoans(t *testing.T) {
	ctx := context.Background()

	t.Run("LibrarianSkipsOwnershipCheck", func(t *testing.T) {
		loanRepo := new(MockLoanRepository)
		memberRepo := new(MockMemberRepository)
		svc := newTestLoanService(loanRepo, memberRepo)

		loanRepo.On("GetMemberLoans", mock.Anything, int64(7)).
			Return([]models.Loan{{ID: 1}, {ID: 2}}, nil).Once()

		loans, err := svc.GetMemberLoans(ctx, 7, false, Actor{UserID: "lib-1", Role: models.RoleLibrarian})

		assert.NoError(t, err)
		assert.Len(t, loans, 2)
		memberRepo.AssertNotCalled(t, "GetByID")
	})

	t.Run("OwnerAllowedActiveOnly", func(t *testing.T) {
		loanRepo := new(MockLoanRepository)
		memberRepo := new(MockMemberRepository)
		svc := newTestLoanService(loanRepo, memberRepo)

		memberRepo.On("GetByID", mock.Anything, int64(7)).
			Return(&models.Member{ID: 7, UserID: strPtr("user-1")}, nil).Once()
		loanRepo.On("GetMemberActiveLoans", mock.Anything, int64(7)).
			Return([]models.Loan{{ID: 1, Status: models.LoanCheckedOut}}, nil).Once()

		loans, err := svc.GetMemberLoans(ctx, 7, true, Actor{UserID: "user-1", Role: models.RoleUser})

		assert.NoError(t, err)
		assert.Len(t, loans, 1)
	})

	t.Run("StrangerForbidden", func(t *testing.T) {
		loanRepo := new(MockLoanRepository)
		memberRepo := new(MockMemberRepository)
		svc := newTestLoanService(loanRepo, memberRepo)

		memberRepo.On("GetByID", mock.Anything, int64(7)).
			Return(&models.Member{ID: 7, UserID: strPtr("someone-else")}, nil).Once()

		_, err := svc.GetMemberLoans(ctx, 7, false, Actor{UserID: "user-1", Role: models.RoleUser})

		assert.ErrorIs(t, err, ErrForbidden)
		loanRepo.AssertNotCalled(t, "GetMemberLoans")
	})

	t.Run("UnlinkedMemberForbidden", func(t *testing.T) {
		loanRepo := new(MockLoanRepository)
		memberRepo := new(MockMemberRepository)
		svc := newTestLoanService(loanRepo, memberRepo)

		memberRepo.On("GetByID", mock.Anything, int64(7)).
			Return(&models.Member{ID: 7}, nil).Once()

		_, err := svc.GetMemberLoans(ctx, 7, false, Actor{UserID: "user-1", Role: models.RoleUser})

		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("UnknownMember", func(t *testing.T) {
		loanRepo := new(MockLoanRepository)
		memberRepo := new(MockMemberRepository)
		svc := newTestLoanService(loanRepo, memberRepo)

		memberRepo.On("GetByID", mock.Anything, int64(404)).
			Return(nil, gorm.ErrRecordNotFound).Once()

		_, err := svc.GetMemberLoans(ctx, 404, false, Actor{UserID: "user-1", Role: models.RoleUser})

		assert.ErrorIs(t, err, repository.ErrMemberNotFound)
	})
}
