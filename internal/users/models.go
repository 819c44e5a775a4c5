package users

import (
	"time"

	"github.com/google/uuid"
)

// Role controls what a user may do. level_1 is the ordinary tier; admin
// unlocks the management surface.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleLevel1 Role = "level_1"
)

// Status gates whether an account may log in at all.
type Status string

const (
	StatusActive   Status = "active"
	StatusDisabled Status = "disabled"
	StatusLocked   Status = "locked"
)

// User is the account record. Email and Phone are nullable so an account
// registered by only one channel leaves the other unset; uniqueness applies
// per channel.
type User struct {
	ID            uuid.UUID `json:"id" gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Account       string    `json:"account" gorm:"uniqueIndex;not null;size:50"`
	Name          string    `json:"name" gorm:"size:50"`
	Avatar        string    `json:"avatar" gorm:"size:255"`
	Email         *string   `json:"email" gorm:"uniqueIndex;size:128"`
	Phone         *string   `json:"phone" gorm:"uniqueIndex;size:20"`
	Password      string    `json:"-" gorm:"not null"` // bcrypt hash, hide in json
	EmailVerified bool      `json:"email_verified" gorm:"default:false"`
	PhoneVerified bool      `json:"phone_verified" gorm:"default:false"`
	Status        Status    `json:"status" gorm:"not null;default:'active';size:16"`
	Role          Role      `json:"role" gorm:"not null;default:'level_1';size:16"`
	CreatedAt     time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt     time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func IsValidRole(role string) bool {
	switch role {
	case string(RoleLevel1), string(RoleAdmin):
		return true
	default:
		return false
	}
}

func IsValidStatus(status string) bool {
	switch status {
	case string(StatusActive), string(StatusDisabled), string(StatusLocked):
		return true
	default:
		return false
	}
}

// ToResponse strips the password hash and flattens nullable channels for the
// wire.
func (u *User) ToResponse() UserResponse {
	resp := UserResponse{
		ID:            u.ID.String(),
		Account:       u.Account,
		Name:          u.Name,
		Avatar:        u.Avatar,
		EmailVerified: u.EmailVerified,
		PhoneVerified: u.PhoneVerified,
		Status:        string(u.Status),
		Role:          string(u.Role),
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
	if u.Email != nil {
		resp.Email = *u.Email
	}
	if u.Phone != nil {
		resp.Phone = *u.Phone
	}
	return resp
}

// TableName specifies the table name for GORM
func (User) TableName() string {
	return "users"
}
