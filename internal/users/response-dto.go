package users

import "time"

type UserResponse struct {
	ID            string    `json:"id"`
	Account       string    `json:"account"`
	Name          string    `json:"name"`
	Avatar        string    `json:"avatar"`
	Email         string    `json:"email,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	EmailVerified bool      `json:"email_verified"`
	PhoneVerified bool      `json:"phone_verified"`
	Status        string    `json:"status"`
	Role          string    `json:"role"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
