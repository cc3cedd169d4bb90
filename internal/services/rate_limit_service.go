package services

import (
	"context"
	"fmt"
	"time"

	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/database"
)

// Auth actions the web front-end throttles before forwarding to the API
const (
	ActionLogin          = "login"
	ActionResendOTP      = "resend_otp"
	ActionForgotPassword = "forgot_password"
)

// RateLimitService throttles credential endpoints per client IP and per email
type RateLimitService struct {
	db     database.DB
	limits map[string]RateLimit
	now    func() time.Time
}

// RateLimit is the allowance for one action and identifier
type RateLimit struct {
	MaxRequests int
	Window      time.Duration
}

// DefaultRateLimits returns the built-in allowances
func DefaultRateLimits() map[string]RateLimit {
	return map[string]RateLimit{
		ActionLogin:          {MaxRequests: 10, Window: 15 * time.Minute},
		ActionResendOTP:      {MaxRequests: 5, Window: time.Hour},
		ActionForgotPassword: {MaxRequests: 5, Window: time.Hour},
	}
}

// NewRateLimitService creates a new rate limit service
func NewRateLimitService(db database.DB) *RateLimitService {
	return &RateLimitService{
		db:     db,
		limits: DefaultRateLimits(),
		now:    time.Now,
	}
}

// RateLimitError represents a rate limit exceeded error
type RateLimitError struct {
	Message    string
	RetryAfter time.Duration
	Action     string
}

func (e *RateLimitError) Error() string {
	return e.Message
}

type requestCount struct {
	Count         int       `db:"count"`
	OldestRequest time.Time `db:"oldest_request"`
}

// Check returns a *RateLimitError when any identifier is over its allowance.
// Empty identifiers are skipped.
func (s *RateLimitService) Check(ctx context.Context, action string, identifiers ...string) error {
	limit, ok := s.limits[action]
	if !ok {
		return nil
	}

	for _, id := range identifiers {
		if id == "" {
			continue
		}

		rc, err := s.getRequestCount(ctx, action, id, limit.Window)
		if err != nil {
			return fmt.Errorf("failed to check rate limit: %w", err)
		}

		if rc.Count >= limit.MaxRequests {
			// the window frees up when its oldest counted attempt expires
			freeAt := rc.OldestRequest.Add(limit.Window)
			retryAfter := freeAt.Sub(s.now())
			if retryAfter < 0 {
				retryAfter = 0
			}
			return &RateLimitError{
				Message:    fmt.Sprintf("Too many attempts. Please try again after %s", freeAt.Format("15:04")),
				RetryAfter: retryAfter,
				Action:     action,
			}
		}
	}

	return nil
}

func (s *RateLimitService) getRequestCount(ctx context.Context, action, identifier string, window time.Duration) (requestCount, error) {
	query := `
		SELECT COUNT(*) AS count, COALESCE(MIN(created_at), NOW()) AS oldest_request
		FROM auth_rate_limits
		WHERE identifier = $1
		  AND action = $2
		  AND created_at > $3
	`

	var rc requestCount
	err := s.db.GetContext(ctx, &rc, query, identifier, action, s.now().Add(-window))
	return rc, err
}

// Record counts one attempt against each identifier
func (s *RateLimitService) Record(ctx context.Context, action string, identifiers ...string) error {
	query := `
		INSERT INTO auth_rate_limits (identifier, action, created_at)
		VALUES ($1, $2, $3)
	`

	for _, id := range identifiers {
		if id == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, query, id, action, s.now()); err != nil {
			return fmt.Errorf("failed to record %s attempt: %w", action, err)
		}
	}
	return nil
}

// CleanupExpired removes records older than the longest window
func (s *RateLimitService) CleanupExpired(ctx context.Context) (int64, error) {
	var maxWindow time.Duration
	for _, l := range s.limits {
		if l.Window > maxWindow {
			maxWindow = l.Window
		}
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM auth_rate_limits WHERE created_at < $1`, s.now().Add(-maxWindow))
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup rate limits: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}
