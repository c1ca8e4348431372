package models

import "time"

// MembershipStatus is a closed set, validated at the boundary.
type MembershipStatus string

const (
	MembershipActive    MembershipStatus = "active"
	MembershipExpired   MembershipStatus = "expired"
	MembershipSuspended MembershipStatus = "suspended"
)

// Valid reports whether s is one of the known membership statuses.
func (s MembershipStatus) Valid() bool {
	switch s {
	case MembershipActive, MembershipExpired, MembershipSuspended:
		return true
	}
	return false
}

type Member struct {
	ID               int64            `json:"id" gorm:"primaryKey;autoIncrement"`
	FirstName        string           `json:"first_name" gorm:"not null"`
	LastName         string           `json:"last_name" gorm:"not null"`
	Email            string           `json:"email" gorm:"uniqueIndex;not null"`
	Phone            string           `json:"phone"`
	Address          string           `json:"address"`
	MembershipDate   time.Time        `json:"membership_date" gorm:"type:date;not null"`
	MembershipStatus MembershipStatus `json:"membership_status" gorm:"size:20;not null;default:'active'"`
	UserID           *string          `json:"user_id,omitempty" gorm:"type:uuid;index"`
	CreatedAt        *time.Time       `json:"created_at,omitempty" gorm:"autoCreateTime"`
}

func (Member) TableName() string {
	return "members"
}

// FullName is the display name used in loan listings and reports.
func (m *Member) FullName() string {
	return m.FirstName + " " + m.LastName
}
