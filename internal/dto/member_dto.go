package dto

import (
	"time"

	"github.com/Zhandos04/library-management-system/internal/models"
)

// MemberRequest: payload for creating or updating a member record
type MemberRequest struct {
	FirstName        string  `json:"first_name" binding:"required"`
	LastName         string  `json:"last_name" binding:"required"`
	Email            string  `json:"email" binding:"required,email"`
	Phone            string  `json:"phone"`
	Address          string  `json:"address"`
	MembershipStatus string  `json:"membership_status" binding:"omitempty,oneof=active expired suspended"`
	UserID           *string `json:"user_id,omitempty"`
}

func (r *MemberRequest) ToModel() *models.Member {
	return &models.Member{
		FirstName:        r.FirstName,
		LastName:         r.LastName,
		Email:            r.Email,
		Phone:            r.Phone,
		Address:          r.Address,
		MembershipDate:   models.DateOnly(time.Now()),
		MembershipStatus: models.MembershipStatus(r.MembershipStatus),
		UserID:           r.UserID,
	}
}

type MemberListResponse struct {
	Items    []models.Member `json:"items"`
	Total    int64           `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
}
