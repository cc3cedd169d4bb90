// Package session holds the signed-in user and token and exposes the auth
// operations as request/result pairs.
package session

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/api"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/models"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/validation"
	pkgjwt "github.com/Kiran6976/Houserent-Frontend-sub000/pkg/jwt"
)

// User-facing messages
const (
	MsgNetworkError       = api.NetworkErrorMessage
	MsgVerifyEmailFirst   = "Please verify your email before logging in."
	MsgLoginFailed        = "Login failed. Please check your credentials."
	MsgFixFields          = "Please fix the highlighted fields."
	MsgRegistered         = "Registration successful. Please check your email for the verification code."
	MsgEmailVerified      = "Email verified successfully."
	MsgOTPResent          = "A new verification code has been sent to your email."
	MsgResetCodeSent      = "If an account exists for this email, a password reset code has been sent."
	MsgPasswordReset      = "Password reset successfully. You can now log in."
	MsgNotSignedIn        = "You are not signed in."
	MsgSessionExpired     = "Your session has expired. Please sign in again."
	MsgSessionSaveFailed  = "Could not save your session. Please try again."
	DefaultResendCooldown = 30 * time.Second
)

// Result is the outcome of an auth operation. Failures never surface as Go
// errors; they are described by Message and, for form input, Errors.
type Result struct {
	Success    bool
	User       *models.User
	Message    string
	Errors     validation.Errors
	RetryAfter time.Duration
}

func failure(message string) Result {
	return Result{Success: false, Message: message}
}

// Options tunes a Store
type Options struct {
	ResendCooldown time.Duration
	Logger         logrus.FieldLogger
	Validator      *validation.Validator
	Now            func() time.Time
}

// Store is the session of one user agent. It is created once per terminal
// process or browser session and passed to whatever needs it.
type Store struct {
	base      *api.Client
	storage   Storage
	validator *validation.Validator
	logger    logrus.FieldLogger
	now       func() time.Time
	cooldown  time.Duration

	mu          sync.RWMutex
	user        *models.User
	token       string
	loading     bool
	lastResend  map[string]time.Time
	logoutHooks []func()
}

// New creates a store that is loading until Init runs
func New(client *api.Client, storage Storage, opts Options) *Store {
	if opts.ResendCooldown <= 0 {
		opts.ResendCooldown = DefaultResendCooldown
	}
	if opts.Logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		opts.Logger = l
	}
	if opts.Validator == nil {
		opts.Validator = validation.New()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Store{
		base:       client,
		storage:    storage,
		validator:  opts.Validator,
		logger:     opts.Logger,
		now:        opts.Now,
		cooldown:   opts.ResendCooldown,
		loading:    true,
		lastResend: make(map[string]time.Time),
	}
}

// Init reads durable storage once. A persisted token whose exp has passed is
// discarded along with the cached user.
func (s *Store) Init(ctx context.Context) error {
	s.mu.Lock()
	if !s.loading {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	snap, err := s.storage.Load(ctx)
	if err != nil {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
		return fmt.Errorf("failed to load session: %w", err)
	}

	if snap.Token != "" && pkgjwt.IsTokenExpired(snap.Token, s.now()) {
		s.logger.Info("Discarding expired session token")
		if err := s.storage.Clear(ctx); err != nil {
			s.logger.WithError(err).Warn("Failed to clear expired session")
		}
		snap = Snapshot{}
	}

	s.mu.Lock()
	s.token = snap.Token
	s.user = snap.User
	s.loading = false
	s.mu.Unlock()
	return nil
}

// Token returns the bearer token, or "" when signed out
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns a copy of the cached user, or nil
func (s *Store) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// IsAuthenticated reports whether both a token and a user are held
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != "" && s.user != nil
}

// Loading reports whether Init has not completed yet
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Client returns an API client that authenticates with the current token
func (s *Store) Client() *api.Client {
	return s.base.WithAuth(s)
}

// OnLogout registers fn to run after every logout
func (s *Store) OnLogout(fn func()) {
	s.mu.Lock()
	s.logoutHooks = append(s.logoutHooks, fn)
	s.mu.Unlock()
}

// Login signs in and persists the session
func (s *Store) Login(ctx context.Context, email, password string) Result {
	req := models.LoginRequest{Email: strings.TrimSpace(email), Password: password}
	if res, ok := s.validate(req); !ok {
		return res
	}

	resp, err := s.base.Login(ctx, req)
	if err != nil {
		if api.StatusOf(err) == http.StatusForbidden {
			return failure(MsgVerifyEmailFirst)
		}
		return s.fail(err, MsgLoginFailed)
	}
	if resp.Token == "" || resp.User == nil {
		return failure(MsgLoginFailed)
	}

	if err := s.persist(ctx, resp.Token, resp.User); err != nil {
		return failure(MsgSessionSaveFailed)
	}

	s.logger.WithFields(logrus.Fields{"user_id": resp.User.ID, "role": resp.User.Role}).Info("User logged in")
	return Result{Success: true, User: resp.User}
}

// Register creates an account. The server emails an OTP; no session is created.
func (s *Store) Register(ctx context.Context, req models.RegisterRequest) Result {
	req.Email = strings.TrimSpace(req.Email)
	if res, ok := s.validate(req); !ok {
		return res
	}

	resp, err := s.base.Register(ctx, req)
	if err != nil {
		return s.fail(err, "Registration failed.")
	}
	return Result{Success: true, Message: nonEmpty(resp.Message, MsgRegistered)}
}

// VerifyEmailOTP confirms the registration code. When the server answers
// with a session it is persisted exactly like a login.
func (s *Store) VerifyEmailOTP(ctx context.Context, email, otp string) Result {
	req := models.VerifyOTPRequest{Email: strings.TrimSpace(email), OTP: strings.TrimSpace(otp)}
	if res, ok := s.validate(req); !ok {
		return res
	}

	resp, err := s.base.VerifyEmailOTP(ctx, req)
	if err != nil {
		return s.fail(err, "Invalid or expired code.")
	}

	if resp.Token != "" && resp.User != nil {
		if err := s.persist(ctx, resp.Token, resp.User); err != nil {
			return failure(MsgSessionSaveFailed)
		}
	}
	return Result{Success: true, User: resp.User, Message: nonEmpty(resp.Message, MsgEmailVerified)}
}

// ResendOTP requests a new registration code, at most once per cooldown
// per email
func (s *Store) ResendOTP(ctx context.Context, email string) Result {
	email = strings.TrimSpace(email)
	key := strings.ToLower(email)
	if key == "" {
		return Result{Message: MsgFixFields, Errors: validation.Errors{"email": "This field is required"}}
	}

	s.mu.RLock()
	last, seen := s.lastResend[key]
	s.mu.RUnlock()
	if seen {
		if wait := s.cooldown - s.now().Sub(last); wait > 0 {
			secs := int((wait + time.Second - 1) / time.Second)
			return Result{
				Message:    fmt.Sprintf("Please wait %d seconds before requesting another code.", secs),
				RetryAfter: wait,
			}
		}
	}

	resp, err := s.base.ResendOTP(ctx, email)
	if err != nil {
		return s.fail(err, "Could not resend the code.")
	}

	s.mu.Lock()
	s.lastResend[key] = s.now()
	s.mu.Unlock()

	return Result{Success: true, Message: nonEmpty(resp.Message, MsgOTPResent), RetryAfter: s.cooldown}
}

// ForgotPassword requests a reset code. The answer never reveals whether
// the email is registered.
func (s *Store) ForgotPassword(ctx context.Context, email string) Result {
	email = strings.TrimSpace(email)
	if email == "" {
		return Result{Message: MsgFixFields, Errors: validation.Errors{"email": "This field is required"}}
	}

	if _, err := s.base.ForgotPassword(ctx, email); err != nil {
		if api.IsNetworkError(err) {
			return failure(MsgNetworkError)
		}
		s.logger.WithError(err).Debug("Forgot password request rejected")
	}
	return Result{Success: true, Message: MsgResetCodeSent}
}

// ResetPassword sets a new password with the emailed code
func (s *Store) ResetPassword(ctx context.Context, req models.ResetPasswordRequest) Result {
	req.Email = strings.TrimSpace(req.Email)
	req.OTP = strings.TrimSpace(req.OTP)
	if res, ok := s.validate(req); !ok {
		return res
	}

	resp, err := s.base.ResetPassword(ctx, req)
	if err != nil {
		return s.fail(err, "Could not reset password.")
	}
	return Result{Success: true, Message: nonEmpty(resp.Message, MsgPasswordReset)}
}

// FetchMe refreshes the cached user from the server
func (s *Store) FetchMe(ctx context.Context) Result {
	token := s.Token()
	if token == "" {
		return failure(MsgNotSignedIn)
	}

	user, err := s.base.WithAuth(api.StaticToken(token)).Me(ctx)
	if err != nil {
		if s.HandleAuthFailure(ctx, err) {
			return failure(MsgSessionExpired)
		}
		return s.fail(err, "Could not load your profile.")
	}
	if user == nil {
		return failure("Could not load your profile.")
	}

	if err := s.persist(ctx, token, user); err != nil {
		return failure(MsgSessionSaveFailed)
	}
	return Result{Success: true, User: user}
}

// UpdateUser applies fn to the cached user and writes it through
func (s *Store) UpdateUser(ctx context.Context, fn func(u *models.User)) error {
	s.mu.RLock()
	if s.user == nil {
		s.mu.RUnlock()
		return fmt.Errorf("no signed-in user")
	}
	updated := *s.user
	token := s.token
	s.mu.RUnlock()

	fn(&updated)
	return s.persist(ctx, token, &updated)
}

// Logout clears persisted and in-memory state
func (s *Store) Logout(ctx context.Context) {
	if err := s.storage.Clear(ctx); err != nil {
		s.logger.WithError(err).Warn("Failed to clear persisted session")
	}

	s.mu.Lock()
	userID := ""
	if s.user != nil {
		userID = s.user.ID
	}
	s.user = nil
	s.token = ""
	hooks := append([]func(){}, s.logoutHooks...)
	s.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}
	s.logger.WithField("user_id", userID).Info("User logged out")
}

// HandleAuthFailure logs the user out when err says the token is no longer
// accepted, and reports whether it did
func (s *Store) HandleAuthFailure(ctx context.Context, err error) bool {
	if !api.IsAuthFailure(err) {
		return false
	}
	s.logger.WithError(err).Info("Forcing logout after auth failure")
	s.Logout(ctx)
	return true
}

func (s *Store) persist(ctx context.Context, token string, user *models.User) error {
	u := *user
	if err := s.storage.Save(ctx, Snapshot{Token: token, User: &u}); err != nil {
		s.logger.WithError(err).Error("Failed to persist session")
		return fmt.Errorf("failed to persist session: %w", err)
	}

	s.mu.Lock()
	s.token = token
	s.user = &u
	s.mu.Unlock()
	return nil
}

func (s *Store) validate(v interface{}) (Result, bool) {
	err := s.validator.Struct(v)
	if err == nil {
		return Result{}, true
	}
	if verrs, ok := validation.AsErrors(err); ok {
		return Result{Message: MsgFixFields, Errors: verrs}, false
	}
	return failure(err.Error()), false
}

func (s *Store) fail(err error, fallback string) Result {
	if api.IsNetworkError(err) {
		s.logger.WithError(err).Warn("Auth request failed")
		return failure(MsgNetworkError)
	}
	return failure(api.MessageOf(err, fallback))
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
