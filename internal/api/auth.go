package api

import (
	"context"

	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/models"
)

// Login exchanges credentials for a token and user
func (c *Client) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	if err := c.post(ctx, "/api/auth/login", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates an account and triggers the email OTP
func (c *Client) Register(ctx context.Context, req models.RegisterRequest) (*MessageResponse, error) {
	var resp MessageResponse
	if err := c.post(ctx, "/api/auth/register", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// VerifyEmailOTP confirms the registration code. The response may carry a session.
func (c *Client) VerifyEmailOTP(ctx context.Context, req models.VerifyOTPRequest) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	if err := c.post(ctx, "/api/auth/verify-email-otp", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ResendOTP asks for a fresh registration code
func (c *Client) ResendOTP(ctx context.Context, email string) (*MessageResponse, error) {
	var resp MessageResponse
	if err := c.post(ctx, "/api/auth/resend-otp", map[string]string{"email": email}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ForgotPassword sends a reset code if the account exists
func (c *Client) ForgotPassword(ctx context.Context, email string) (*MessageResponse, error) {
	var resp MessageResponse
	if err := c.post(ctx, "/api/auth/forgot-password", map[string]string{"email": email}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ResetPassword sets a new password using the emailed code
func (c *Client) ResetPassword(ctx context.Context, req models.ResetPasswordRequest) (*MessageResponse, error) {
	var resp MessageResponse
	if err := c.post(ctx, "/api/auth/reset-password", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Me fetches the account behind the bearer token
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var resp struct {
		User *models.User `json:"user"`
	}
	if err := c.get(ctx, "/api/auth/me", nil, &resp); err != nil {
		return nil, err
	}
	return resp.User, nil
}
