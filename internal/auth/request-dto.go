package auth

// registration request payload; at least one of account/email/phone must be
// set, which the service checks because validator cannot express it. Charset
// and pattern rules also live in the service so their errors stay in Chinese.
type RegisterRequest struct {
	Name       string `json:"name,omitempty" validate:"omitempty,min=2,max=50"`
	Account    string `json:"account,omitempty" validate:"omitempty,min=3,max=50"`
	Email      string `json:"email,omitempty" validate:"omitempty,email"`
	Phone      string `json:"phone,omitempty"`
	Password   string `json:"password" validate:"required,min=6,max=50"`
	VerifyCode string `json:"verify_code,omitempty"`
}

// login request payload; Account takes an account name, email or phone and
// the service tells them apart. With login_type "verify_code" the password
// field carries the code instead.
type LoginRequest struct {
	Account   string `json:"account" validate:"required"`
	Password  string `json:"password" validate:"required"`
	LoginType string `json:"login_type,omitempty" validate:"omitempty,oneof=password verify_code"`
}

// represents refresh token request
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// represents logout request
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token,omitempty"`
}

// query parameters of the verify-code endpoints
type SendCodeRequest struct {
	Target string `form:"target" validate:"required"`
}
