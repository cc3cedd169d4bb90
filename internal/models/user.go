package models

import "time"

// User is the cached copy of the signed-in account
type User struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	Phone           string     `json:"phone,omitempty"`
	Role            Role       `json:"role"`
	IsVerified      *bool      `json:"isVerified,omitempty"` // landlords only; nil when not reported
	PayoutAccountID string     `json:"payoutAccountId,omitempty"`
	PayoutStatus    string     `json:"payoutStatus,omitempty"`
	CreatedAt       *time.Time `json:"createdAt,omitempty"`
}

// Verified reports whether the user is explicitly verified
func (u *User) Verified() bool {
	return u != nil && u.IsVerified != nil && *u.IsVerified
}

// HasPayoutAccount reports whether a payout account is linked
func (u *User) HasPayoutAccount() bool {
	return u != nil && u.PayoutAccountID != ""
}

// RegisterRequest is the sign-up payload
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required,in_phone"`
	Password string `json:"password" validate:"required,min=6,max=128"`
	Role     Role   `json:"role" validate:"required,oneof=tenant landlord"`
}

// LoginRequest is the sign-in payload
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// VerifyOTPRequest confirms an email with the code sent at registration
type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,numeric,len=6"`
}

// ResetPasswordRequest sets a new password using an emailed code
type ResetPasswordRequest struct {
	Email    string `json:"email" validate:"required,email"`
	OTP      string `json:"otp" validate:"required,numeric,len=6"`
	Password string `json:"password" validate:"required,min=6,max=128"`
}

// AuthResponse is returned by login and, optionally, OTP verification
type AuthResponse struct {
	Token   string `json:"token,omitempty"`
	User    *User  `json:"user,omitempty"`
	Message string `json:"message,omitempty"`
}
