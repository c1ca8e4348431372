package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/Zhandos04/library-management-system/internal/models"

	"gorm.io/gorm"
)

// MemberRepository is the membership store.
type MemberRepository interface {
	GetAll(ctx context.Context, page, pageSize int) ([]models.Member, int64, error)
	GetByID(ctx context.Context, id int64) (*models.Member, error)
	GetByUserID(ctx context.Context, userID string) (*models.Member, error)
	Create(ctx context.Context, m *models.Member) error
	Update(ctx context.Context, id int64, m *models.Member) error
	Delete(ctx context.Context, id int64) error
	Search(ctx context.Context, query string) ([]models.Member, error)
}

type memberRepository struct {
	db *gorm.DB
}

func NewMemberRepository(db *gorm.DB) MemberRepository {
	return &memberRepository{db: db}
}

func (r *memberRepository) GetAll(ctx context.Context, page, pageSize int) ([]models.Member, int64, error) {
	var list []models.Member
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Member{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize

	if err := r.db.WithContext(ctx).
		Order("last_name asc").
		Limit(pageSize).
		Offset(offset).
		Find(&list).Error; err != nil {
		return nil, 0, err
	}

	return list, total, nil
}

func (r *memberRepository) GetByID(ctx context.Context, id int64) (*models.Member, error) {
	var m models.Member
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// GetByUserID resolves the member record owned by a user account, for
// self-service checkout and profile views.
func (r *memberRepository) GetByUserID(ctx context.Context, userID string) (*models.Member, error) {
	var m models.Member
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *memberRepository) Create(ctx context.Context, m *models.Member) error {
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("email %s: %w", m.Email, ErrDuplicateKey)
		}
		return fmt.Errorf("create member: %w", err)
	}
	return nil
}

func (r *memberRepository) Update(ctx context.Context, id int64, m *models.Member) error {
	m.ID = id
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("email %s: %w", m.Email, ErrDuplicateKey)
		}
		return fmt.Errorf("update member: %w", err)
	}
	return nil
}

func (r *memberRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&models.Member{}, id)
	if result.Error != nil {
		return fmt.Errorf("delete member: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrMemberNotFound
	}
	return nil
}

// Search performs case-insensitive partial match on name and email.
func (r *memberRepository) Search(ctx context.Context, query string) ([]models.Member, error) {
	var list []models.Member
	tokens := strings.Fields(query)
	db := r.db.WithContext(ctx)

	if len(tokens) == 0 {
		return list, nil
	}

	clauses := make([]string, 0, len(tokens))
	args := make([]interface{}, 0, len(tokens)*3)
	for _, t := range tokens {
		p := "%" + t + "%"
		clauses = append(clauses, "(first_name ILIKE ? OR last_name ILIKE ? OR email ILIKE ?)")
		args = append(args, p, p, p)
	}

	where := strings.Join(clauses, " AND ")
	if err := db.Where(where, args...).Order("last_name asc").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("search members: %w", err)
	}
	return list, nil
}
