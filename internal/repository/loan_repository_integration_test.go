package repository_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/Zhandos04/library-management-system/internal/models"
	"github.com/Zhandos04/library-management-system/internal/repository"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// LoanRepositoryIntegrationSuite exercises the loan engine against a real
// PostgreSQL database. Set TEST_DATABASE_URL to run it.
type LoanRepositoryIntegrationSuite struct {
	suite.Suite
	db         *gorm.DB
	loans      repository.LoanRepository
	books      repository.BookRepository
	members    repository.MemberRepository
	today      time.Time
	finePerDay float64
}

func (s *LoanRepositoryIntegrationSuite) SetupSuite() {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		s.T().Skip("TEST_DATABASE_URL not set, skipping integration tests")
		return
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(s.T(), err)

	require.NoError(s.T(), db.AutoMigrate(&models.Book{}, &models.Member{}, &models.Loan{}))

	s.db = db
	s.loans = repository.NewLoanRepository(db)
	s.books = repository.NewBookRepository(db)
	s.members = repository.NewMemberRepository(db)
	s.today = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	s.finePerDay = 0.50
}

func (s *LoanRepositoryIntegrationSuite) SetupTest() {
	s.db.Exec("TRUNCATE loan_history, books, members RESTART IDENTITY CASCADE")
}

func (s *LoanRepositoryIntegrationSuite) seedBook(total int) *models.Book {
	b := &models.Book{
		ISBN:            "isbn-" + time.Now().Format("150405.000000000"),
		Title:           "Dune",
		Author:          "Frank Herbert",
		TotalCopies:     total,
		AvailableCopies: total,
	}
	require.NoError(s.T(), s.books.Create(context.Background(), b))
	return b
}

func (s *LoanRepositoryIntegrationSuite) seedMember(status models.MembershipStatus) *models.Member {
	m := &models.Member{
		FirstName:        "Ada",
		LastName:         "Lovelace",
		Email:            "ada-" + time.Now().Format("150405.000000000") + "@example.com",
		MembershipDate:   s.today,
		MembershipStatus: status,
	}
	require.NoError(s.T(), s.members.Create(context.Background(), m))
	return m
}

func (s *LoanRepositoryIntegrationSuite) availableCopies(bookID int64) int {
	b, err := s.books.GetByID(context.Background(), bookID)
	require.NoError(s.T(), err)
	return b.AvailableCopies
}

func (s *LoanRepositoryIntegrationSuite) TestCheckoutDecrementsAvailability() {
	ctx := context.Background()
	book := s.seedBook(3)
	member := s.seedMember(models.MembershipActive)

	loan, err := s.loans.Checkout(ctx, book.ID, member.ID, s.today, 14)

	s.Require().NoError(err)
	s.Equal(models.LoanCheckedOut, loan.Status)
	s.Equal(s.today.AddDate(0, 0, 14), models.DateOnly(loan.DueDate))
	s.Equal(2, s.availableCopies(book.ID))
}

func (s *LoanRepositoryIntegrationSuite) TestCheckoutRejectsInactiveMember() {
	ctx := context.Background()
	book := s.seedBook(3)

	for _, status := range []models.MembershipStatus{models.MembershipExpired, models.MembershipSuspended} {
		member := s.seedMember(status)
		_, err := s.loans.Checkout(ctx, book.ID, member.ID, s.today, 14)
		s.ErrorIs(err, repository.ErrMemberInactive)
	}
	s.Equal(3, s.availableCopies(book.ID))
}

func (s *LoanRepositoryIntegrationSuite) TestCheckoutUnknownBookAndMember() {
	ctx := context.Background()
	book := s.seedBook(1)
	member := s.seedMember(models.MembershipActive)

	_, err := s.loans.Checkout(ctx, 99999, member.ID, s.today, 14)
	s.ErrorIs(err, repository.ErrBookNotFound)

	_, err = s.loans.Checkout(ctx, book.ID, 99999, s.today, 14)
	s.ErrorIs(err, repository.ErrMemberNotFound)
}

// Hammer a single-copy book with concurrent checkouts; exactly one may
// win and the count must never go negative.
func (s *LoanRepositoryIntegrationSuite) TestConcurrentCheckoutNeverOversells() {
	ctx := context.Background()
	book := s.seedBook(1)
	member := s.seedMember(models.MembershipActive)

	const attempts = 10
	var wg sync.WaitGroup
	errs := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.loans.Checkout(ctx, book.ID, member.ID, s.today, 14)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var won, lost int
	for err := range errs {
		switch {
		case err == nil:
			won++
		default:
			s.ErrorIs(err, repository.ErrBookUnavailable)
			lost++
		}
	}

	s.Equal(1, won)
	s.Equal(attempts-1, lost)
	s.Equal(0, s.availableCopies(book.ID))
}

func (s *LoanRepositoryIntegrationSuite) TestReturnOnTimeHasNoFine() {
	ctx := context.Background()
	book := s.seedBook(2)
	member := s.seedMember(models.MembershipActive)

	loan, err := s.loans.Checkout(ctx, book.ID, member.ID, s.today, 14)
	s.Require().NoError(err)

	returned, err := s.loans.Return(ctx, loan.ID, s.today.AddDate(0, 0, 14), s.finePerDay)

	s.Require().NoError(err)
	s.Equal(models.LoanReturned, returned.Status)
	s.Equal(0.0, returned.Fine)
	s.Equal(2, s.availableCopies(book.ID))
}

func (s *LoanRepositoryIntegrationSuite) TestLateReturnChargesPerDay() {
	ctx := context.Background()
	book := s.seedBook(1)
	member := s.seedMember(models.MembershipActive)

	loan, err := s.loans.Checkout(ctx, book.ID, member.ID, s.today, 14)
	s.Require().NoError(err)

	// 4 days past due at 0.50/day.
	returned, err := s.loans.Return(ctx, loan.ID, s.today.AddDate(0, 0, 18), s.finePerDay)

	s.Require().NoError(err)
	s.Equal(2.0, returned.Fine)
}

func (s *LoanRepositoryIntegrationSuite) TestLateReturnAfterSweepChargesSameFine() {
	ctx := context.Background()
	book := s.seedBook(1)
	member := s.seedMember(models.MembershipActive)

	loan, err := s.loans.Checkout(ctx, book.ID, member.ID, s.today, 14)
	s.Require().NoError(err)

	_, err = s.loans.MarkOverdue(ctx, s.today.AddDate(0, 0, 18))
	s.Require().NoError(err)

	returned, err := s.loans.Return(ctx, loan.ID, s.today.AddDate(0, 0, 18), s.finePerDay)

	s.Require().NoError(err)
	s.Equal(2.0, returned.Fine)
}

func (s *LoanRepositoryIntegrationSuite) TestDoubleReturnRejected() {
	ctx := context.Background()
	book := s.seedBook(1)
	member := s.seedMember(models.MembershipActive)

	loan, err := s.loans.Checkout(ctx, book.ID, member.ID, s.today, 14)
	s.Require().NoError(err)

	_, err = s.loans.Return(ctx, loan.ID, s.today.AddDate(0, 0, 7), s.finePerDay)
	s.Require().NoError(err)

	_, err = s.loans.Return(ctx, loan.ID, s.today.AddDate(0, 0, 8), s.finePerDay)
	s.ErrorIs(err, repository.ErrLoanAlreadyReturned)

	// The second attempt must not bump the count past the total.
	s.Equal(1, s.availableCopies(book.ID))
}

func (s *LoanRepositoryIntegrationSuite) TestMarkOverdueIsIdempotent() {
	ctx := context.Background()
	book := s.seedBook(3)
	member := s.seedMember(models.MembershipActive)

	_, err := s.loans.Checkout(ctx, book.ID, member.ID, s.today, 14)
	s.Require().NoError(err)
	_, err = s.loans.Checkout(ctx, book.ID, member.ID, s.today, 14)
	s.Require().NoError(err)

	sweepDay := s.today.AddDate(0, 0, 20)

	n, err := s.loans.MarkOverdue(ctx, sweepDay)
	s.Require().NoError(err)
	s.Equal(int64(2), n)

	n, err = s.loans.MarkOverdue(ctx, sweepDay)
	s.Require().NoError(err)
	s.Equal(int64(0), n)
}

func (s *LoanRepositoryIntegrationSuite) TestMarkOverdueSkipsLoansNotYetDue() {
	ctx := context.Background()
	book := s.seedBook(1)
	member := s.seedMember(models.MembershipActive)

	_, err := s.loans.Checkout(ctx, book.ID, member.ID, s.today, 14)
	s.Require().NoError(err)

	// On the due date itself nothing is overdue yet.
	n, err := s.loans.MarkOverdue(ctx, s.today.AddDate(0, 0, 14))
	s.Require().NoError(err)
	s.Equal(int64(0), n)
}

func (s *LoanRepositoryIntegrationSuite) TestResetFinesClearsReturnedLoansOnly() {
	ctx := context.Background()
	book := s.seedBook(2)
	member := s.seedMember(models.MembershipActive)

	late, err := s.loans.Checkout(ctx, book.ID, member.ID, s.today, 14)
	s.Require().NoError(err)
	_, err = s.loans.Return(ctx, late.ID, s.today.AddDate(0, 0, 20), s.finePerDay)
	s.Require().NoError(err)

	open, err := s.loans.Checkout(ctx, book.ID, member.ID, s.today, 14)
	s.Require().NoError(err)

	n, err := s.loans.ResetFines(ctx)
	s.Require().NoError(err)
	s.Equal(int64(1), n)

	cleared, err := s.loans.GetByID(ctx, late.ID)
	s.Require().NoError(err)
	s.Equal(0.0, cleared.Fine)

	stillOpen, err := s.loans.GetByID(ctx, open.ID)
	s.Require().NoError(err)
	s.Equal(models.LoanCheckedOut, stillOpen.Status)
}

func (s *LoanRepositoryIntegrationSuite) TestGetOverdueIncludesUnsweptLoans() {
	ctx := context.Background()
	book := s.seedBook(2)
	member := s.seedMember(models.MembershipActive)

	_, err := s.loans.Checkout(ctx, book.ID, member.ID, s.today, 14)
	s.Require().NoError(err)

	// Past due but not yet swept into overdue status.
	overdue, err := s.loans.GetOverdue(ctx, s.today.AddDate(0, 0, 20))
	s.Require().NoError(err)
	s.Len(overdue, 1)

	// Not yet due.
	overdue, err = s.loans.GetOverdue(ctx, s.today.AddDate(0, 0, 5))
	s.Require().NoError(err)
	s.Len(overdue, 0)
}

func TestLoanRepositoryIntegration(t *testing.T) {
	suite.Run(t, new(LoanRepositoryIntegrationSuite))
}
