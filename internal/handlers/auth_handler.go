package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/guard"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/middleware"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/models"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/services"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/session"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/utils"
)

// RateLimiter throttles auth attempts per identifier
type RateLimiter interface {
	Check(ctx context.Context, action string, identifiers ...string) error
	Record(ctx context.Context, action string, identifiers ...string) error
}

// AuthHandler handles sign-in, registration and session endpoints
type AuthHandler struct {
	sessions *middleware.SessionManager
	limiter  RateLimiter
	logger   *logrus.Logger
}

// NewAuthHandler creates a new auth handler. limiter may be nil.
func NewAuthHandler(sessions *middleware.SessionManager, limiter RateLimiter, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{sessions: sessions, limiter: limiter, logger: logger}
}

// LoginRequest represents the request to sign in
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	From     string `json:"from"`
}

// EmailRequest carries just an email address
type EmailRequest struct {
	Email string `json:"email"`
}

// VerifyOTPRequest represents the request to confirm a registration code
type VerifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

// AuthResponse is the answer to every auth action
type AuthResponse struct {
	Success    bool         `json:"success"`
	Message    string       `json:"message,omitempty"`
	User       *models.User `json:"user,omitempty"`
	Redirect   string       `json:"redirect,omitempty"`
	RetryAfter int          `json:"retry_after_seconds,omitempty"`
}

// SessionResponse describes the browser's session
type SessionResponse struct {
	Loading       bool         `json:"loading"`
	Authenticated bool         `json:"authenticated"`
	User          *models.User `json:"user,omitempty"`
	HomePath      string       `json:"homePath"`
}

// safeRedirect keeps ?from= targets on this site
func safeRedirect(from string, fallback string) string {
	if strings.HasPrefix(from, "/") && !strings.HasPrefix(from, "//") && !strings.Contains(from, "\\") {
		return from
	}
	return fallback
}

// checkLimit answers 429 and reports false when the action is throttled
func (h *AuthHandler) checkLimit(c *gin.Context, ws *middleware.WebSession, action string, identifiers ...string) bool {
	if h.limiter == nil {
		return true
	}
	ctx := c.Request.Context()

	err := h.limiter.Check(ctx, action, identifiers...)
	var rateLimitErr *services.RateLimitError
	if errors.As(err, &rateLimitErr) {
		h.logger.WithFields(logrus.Fields{
			"action":      action,
			"ip":          utils.GetRealIP(c),
			"retry_after": rateLimitErr.RetryAfter.String(),
		}).Warn("Auth rate limit exceeded")
		ws.Toasts.Error(rateLimitErr.Message)
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":               "rate_limit_exceeded",
			"message":             rateLimitErr.Message,
			"code":                "RATE_LIMIT_EXCEEDED",
			"retry_after_seconds": int(rateLimitErr.RetryAfter.Seconds()),
		})
		return false
	}
	if err != nil {
		// a broken limiter must not lock everyone out
		h.logger.WithError(err).Error("Rate limit check failed")
	}

	if err := h.limiter.Record(ctx, action, identifiers...); err != nil {
		h.logger.WithError(err).Warn("Failed to record auth attempt")
	}
	return true
}

// respondResult renders a session.Result and mirrors its message as a toast
func respondResult(c *gin.Context, ws *middleware.WebSession, res session.Result, okStatus int, redirect string) {
	if !res.Success {
		if res.Message != "" {
			ws.Toasts.Error(res.Message)
		}
		if len(res.Errors) > 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "validation_error",
				Message: res.Message,
				Code:    "VALIDATION_ERROR",
				Fields:  res.Errors,
			})
			return
		}
		if res.RetryAfter > 0 {
			c.JSON(http.StatusTooManyRequests, AuthResponse{
				Message:    res.Message,
				RetryAfter: int(res.RetryAfter.Seconds() + 0.999),
			})
			return
		}
		status := http.StatusBadRequest
		if res.Message == session.MsgNetworkError {
			status = http.StatusBadGateway
		}
		c.JSON(status, AuthResponse{Message: res.Message})
		return
	}

	if res.Message != "" {
		ws.Toasts.Success(res.Message)
	}
	c.JSON(okStatus, AuthResponse{
		Success:    true,
		Message:    res.Message,
		User:       res.User,
		Redirect:   redirect,
		RetryAfter: int(res.RetryAfter.Seconds()),
	})
}

// Session handles GET /session
func (h *AuthHandler) Session(c *gin.Context) {
	ws := middleware.MustGetWebSession(c)
	st := guard.StateOf(ws.Store)

	resp := SessionResponse{
		Loading:       st.Loading,
		Authenticated: st.Authenticated,
		HomePath:      "/",
	}
	if st.Authenticated {
		resp.User = ws.Store.User()
		resp.HomePath = st.Role.HomePath()
	}
	c.JSON(http.StatusOK, resp)
}

// Login handles POST /login
func (h *AuthHandler) Login(c *gin.Context) {
	h.login(c, "")
}

// AdminLogin handles POST /admin. Only admin accounts may stay signed in.
func (h *AuthHandler) AdminLogin(c *gin.Context) {
	h.login(c, models.RoleAdmin)
}

func (h *AuthHandler) login(c *gin.Context, requiredRole models.Role) {
	ws := middleware.MustGetWebSession(c)

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c)
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !h.checkLimit(c, ws, services.ActionLogin, email, utils.GetRealIP(c)) {
		return
	}

	res := ws.Store.Login(c.Request.Context(), req.Email, req.Password)
	if !res.Success {
		respondResult(c, ws, res, http.StatusOK, "")
		return
	}

	if requiredRole != "" && res.User.Role != requiredRole {
		ws.Store.Logout(c.Request.Context())
		msg := "This sign-in is for administrators only."
		ws.Toasts.Error(msg)
		c.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "forbidden",
			Message: msg,
			Code:    "ADMIN_ONLY",
		})
		return
	}

	if err := h.sessions.IssueCookie(c, ws.ID, res.User); err != nil {
		h.logger.WithError(err).Warn("Failed to refresh session cookie after login")
	}

	res.Message = fmt.Sprintf("Welcome back, %s!", firstNonEmpty(res.User.Name, res.User.Email))
	fallback := res.User.Role.HomePath()
	if req.From == "" {
		req.From = c.Query("from")
	}
	respondResult(c, ws, res, http.StatusOK, safeRedirect(req.From, fallback))
}

// Register handles POST /register
func (h *AuthHandler) Register(c *gin.Context) {
	ws := middleware.MustGetWebSession(c)

	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c)
		return
	}

	res := ws.Store.Register(c.Request.Context(), req)
	respondResult(c, ws, res, http.StatusCreated, "/verify-otp?email="+url.QueryEscape(strings.TrimSpace(req.Email)))
}

// VerifyOTP handles POST /verify-otp
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	ws := middleware.MustGetWebSession(c)

	var req VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c)
		return
	}

	res := ws.Store.VerifyEmailOTP(c.Request.Context(), req.Email, req.OTP)
	redirect := guard.LoginPath
	if res.Success && res.User != nil && ws.Store.IsAuthenticated() {
		if err := h.sessions.IssueCookie(c, ws.ID, res.User); err != nil {
			h.logger.WithError(err).Warn("Failed to refresh session cookie after verification")
		}
		redirect = res.User.Role.HomePath()
	}
	respondResult(c, ws, res, http.StatusOK, redirect)
}

// ResendOTP handles POST /resend-otp
func (h *AuthHandler) ResendOTP(c *gin.Context) {
	ws := middleware.MustGetWebSession(c)

	var req EmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c)
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email != "" && !h.checkLimit(c, ws, services.ActionResendOTP, email) {
		return
	}

	res := ws.Store.ResendOTP(c.Request.Context(), req.Email)
	respondResult(c, ws, res, http.StatusOK, "")
}

// ForgotPassword handles POST /forgot-password
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	ws := middleware.MustGetWebSession(c)

	var req EmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c)
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email != "" && !h.checkLimit(c, ws, services.ActionForgotPassword, email, utils.GetRealIP(c)) {
		return
	}

	res := ws.Store.ForgotPassword(c.Request.Context(), req.Email)
	respondResult(c, ws, res, http.StatusOK, "/reset-password?email="+strings.TrimSpace(req.Email))
}

// ResetPassword handles POST /reset-password
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	ws := middleware.MustGetWebSession(c)

	var req models.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c)
		return
	}

	res := ws.Store.ResetPassword(c.Request.Context(), req)
	respondResult(c, ws, res, http.StatusOK, guard.LoginPath)
}

// Logout handles POST /logout
func (h *AuthHandler) Logout(c *gin.Context) {
	ws := middleware.MustGetWebSession(c)

	redirect := guard.LoginPath
	if u := ws.Store.User(); u != nil && u.Role == models.RoleAdmin {
		redirect = guard.AdminLoginPath
	}

	ws.Store.Logout(c.Request.Context())
	if err := h.sessions.IssueCookie(c, ws.ID, nil); err != nil {
		h.logger.WithError(err).Warn("Failed to refresh session cookie after logout")
	}

	ws.Toasts.Info("You have been logged out.")
	c.JSON(http.StatusOK, AuthResponse{Success: true, Redirect: redirect})
}

// Me handles GET /me: refreshes the cached user from the API
func (h *AuthHandler) Me(c *gin.Context) {
	ws := middleware.MustGetWebSession(c)

	res := ws.Store.FetchMe(c.Request.Context())
	if !res.Success && !ws.Store.IsAuthenticated() {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:    "session_expired",
			Message:  res.Message,
			Code:     "SESSION_EXPIRED",
			Redirect: guard.LoginPath,
		})
		return
	}
	respondResult(c, ws, res, http.StatusOK, "")
}

// ListSessions handles GET /account/sessions
func (h *AuthHandler) ListSessions(c *gin.Context) {
	ws := middleware.MustGetWebSession(c)
	user := ws.Store.User()

	list, err := h.sessions.ListForUser(c.Request.Context(), user.ID, ws.ID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": list})
}

// RevokeSession handles DELETE /account/sessions/:id
func (h *AuthHandler) RevokeSession(c *gin.Context) {
	ws := middleware.MustGetWebSession(c)
	target := c.Param("id")

	if target == ws.ID {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "bad_request",
			Message: "Use logout to end the session you are using.",
			Code:    "CURRENT_SESSION",
		})
		return
	}

	list, err := h.sessions.ListForUser(c.Request.Context(), ws.Store.User().ID, ws.ID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	owned := false
	for _, s := range list {
		if s.ID == target {
			owned = true
			break
		}
	}
	if !owned {
		notFound(c, "Session not found")
		return
	}

	if err := h.sessions.Revoke(c.Request.Context(), target); err != nil {
		respondError(c, h.logger, err)
		return
	}
	ws.Toasts.Success("Signed out of the other device.")
	c.Status(http.StatusNoContent)
}

// Toasts handles GET /toasts: drains the session's pending messages
func (h *AuthHandler) Toasts(c *gin.Context) {
	ws := middleware.MustGetWebSession(c)
	c.JSON(http.StatusOK, gin.H{"toasts": ws.Toasts.Drain()})
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
