package service

import (
	"context"
	"errors"

	"github.com/Zhandos04/library-management-system/internal/models"
	"github.com/Zhandos04/library-management-system/internal/repository"

	"gorm.io/gorm"
)

var ErrInvalidMembershipStatus = errors.New("invalid membership status")

type MemberService interface {
	GetAll(ctx context.Context, page, pageSize int) ([]models.Member, int64, error)
	GetByID(ctx context.Context, id int64) (*models.Member, error)
	GetByUserID(ctx context.Context, userID string) (*models.Member, error)
	Create(ctx context.Context, m *models.Member) error
	Update(ctx context.Context, id int64, m *models.Member) error
	Delete(ctx context.Context, id int64) error
	Search(ctx context.Context, query string) ([]models.Member, error)
}

type memberService struct {
	repo repository.MemberRepository
}

func NewMemberService(repo repository.MemberRepository) MemberService {
	return &memberService{repo: repo}
}

func (s *memberService) GetAll(ctx context.Context, page, pageSize int) ([]models.Member, int64, error) {
	return s.repo.GetAll(ctx, page, pageSize)
}

func (s *memberService) GetByID(ctx context.Context, id int64) (*models.Member, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrMemberNotFound
		}
		return nil, err
	}
	return m, nil
}

func (s *memberService) GetByUserID(ctx context.Context, userID string) (*models.Member, error) {
	m, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrMemberNotFound
		}
		return nil, err
	}
	return m, nil
}

func (s *memberService) Create(ctx context.Context, m *models.Member) error {
	if m.MembershipStatus == "" {
		m.MembershipStatus = models.MembershipActive
	}
	if !m.MembershipStatus.Valid() {
		return ErrInvalidMembershipStatus
	}
	return s.repo.Create(ctx, m)
}

// Update edits member fields. A status change never touches the member's
// existing loans.
func (s *memberService) Update(ctx context.Context, id int64, m *models.Member) error {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if m.MembershipStatus == "" {
		m.MembershipStatus = existing.MembershipStatus
	}
	if !m.MembershipStatus.Valid() {
		return ErrInvalidMembershipStatus
	}
	m.MembershipDate = existing.MembershipDate
	m.CreatedAt = existing.CreatedAt
	return s.repo.Update(ctx, id, m)
}

func (s *memberService) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (s *memberService) Search(ctx context.Context, query string) ([]models.Member, error) {
	return s.repo.Search(ctx, query)
}
