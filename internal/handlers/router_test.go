package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/api/apitest"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/booking"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/middleware"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/models"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/notify"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/services"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/session"
	pkgjwt "github.com/Kiran6976/Houserent-Frontend-sub000/pkg/jwt"
)

const (
	testCookie   = "homerent_session"
	testAPIToken = "api-token"
	testBrowser  = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"
)

type fakeLimiter struct {
	mu       sync.Mutex
	blocked  bool
	failing  bool
	recorded []string
}

func (l *fakeLimiter) Check(_ context.Context, action string, _ ...string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.failing {
		return errors.New("database unavailable")
	}
	if l.blocked {
		return &services.RateLimitError{
			Message:    "Too many attempts. Please try again later.",
			RetryAfter: 5 * time.Minute,
			Action:     action,
		}
	}
	return nil
}

func (l *fakeLimiter) Record(_ context.Context, action string, _ ...string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.recorded = append(l.recorded, action)
	return nil
}

type testEnv struct {
	t        *testing.T
	api      *apitest.Server
	backend  *middleware.MemoryBackend
	jwt      *pkgjwt.Service
	sessions *middleware.SessionManager
	registry *booking.Registry
	spaces   *Workspaces
	limiter  *fakeLimiter
	router   *gin.Engine
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	srv := apitest.New(t)
	backend := middleware.NewMemoryBackend()
	jwtService := pkgjwt.NewService("test-session-secret-123456789", time.Hour)
	sessions := middleware.NewSessionManager(backend, jwtService, srv.APIClient(""), notify.NewHub(), middleware.SessionOptions{
		CookieName: testCookie,
		Logger:     logger,
	})
	registry := booking.NewRegistry(booking.Config{PollInterval: time.Hour, Logger: logger})
	t.Cleanup(func() { registry.CloseAll() })
	spaces := NewWorkspaces(logger, nil, nil)
	limiter := &fakeLimiter{}

	router := NewRouter(RouterDeps{
		Sessions:   sessions,
		Registry:   registry,
		Workspaces: spaces,
		Limiter:    limiter,
		Logger:     logger,
		Version:    "test",
	})

	return &testEnv{
		t:        t,
		api:      srv,
		backend:  backend,
		jwt:      jwtService,
		sessions: sessions,
		registry: registry,
		spaces:   spaces,
		limiter:  limiter,
		router:   router,
	}
}

// signIn stores a signed-in session for user and returns its cookie
func (e *testEnv) signIn(user *models.User) *http.Cookie {
	e.t.Helper()
	ctx := context.Background()

	id, err := e.backend.Create(ctx, middleware.DeviceMeta{}, time.Now().Add(time.Hour))
	require.NoError(e.t, err)
	require.NoError(e.t, e.backend.Storage(id).Save(ctx, session.Snapshot{Token: testAPIToken, User: user}))

	token, err := e.jwt.GenerateSessionToken(id, user.ID, string(user.Role))
	require.NoError(e.t, err)
	return &http.Cookie{Name: testCookie, Value: token}
}

func (e *testEnv) do(method, path string, body interface{}, cookie *http.Cookie) *httptest.ResponseRecorder {
	e.t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(e.t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("User-Agent", testBrowser)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// lastCookie returns the newest session cookie set on the response
func lastCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	var found *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == testCookie {
			found = c
		}
	}
	require.NotNil(t, found, "no session cookie in response")
	return found
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}

var (
	verified   = true
	unverified = false

	tenant          = &models.User{ID: "t1", Name: "Asha", Email: "asha@example.com", Role: models.RoleTenant}
	landlord        = &models.User{ID: "l1", Name: "Ravi", Email: "ravi@example.com", Role: models.RoleLandlord, IsVerified: &verified}
	pendingLandlord = &models.User{ID: "l2", Name: "Meera", Email: "meera@example.com", Role: models.RoleLandlord, IsVerified: &unverified}
	adminUser       = &models.User{ID: "a1", Name: "Admin", Email: "admin@example.com", Role: models.RoleAdmin}
)

func TestRouter_Health(t *testing.T) {
	env := setupTestEnv(t)

	w := env.do(http.MethodGet, "/health", nil, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	decode(t, w, &resp)
	assert.Equal(t, "healthy", resp["status"])
	assert.Equal(t, "not_configured", resp["database"])
	assert.Equal(t, "test", resp["version"])
}

func TestRouter_NotFound(t *testing.T) {
	env := setupTestEnv(t)

	w := env.do(http.MethodGet, "/no/such/page", nil, nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"view":"not_found"`)
}

func TestRouter_Guards(t *testing.T) {
	env := setupTestEnv(t)

	tests := []struct {
		name       string
		path       string
		user       *models.User
		wantStatus int
		wantLoc    string
		wantBody   string
	}{
		{
			name:       "Anonymous tenant route redirects to login",
			path:       "/tenant/bookings",
			wantStatus: http.StatusSeeOther,
			wantLoc:    "/login?from=%2Ftenant%2Fbookings",
		},
		{
			name:       "Anonymous admin route redirects to admin login",
			path:       "/admin/dashboard",
			wantStatus: http.StatusSeeOther,
			wantLoc:    "/admin?from=%2Fadmin%2Fdashboard",
		},
		{
			name:       "Tenant on landlord route is denied",
			path:       "/landlord/dashboard",
			user:       tenant,
			wantStatus: http.StatusForbidden,
			wantBody:   `"homePath":"/tenant/browse"`,
		},
		{
			name:       "Unverified landlord awaits verification",
			path:       "/landlord/houses",
			user:       pendingLandlord,
			wantStatus: http.StatusForbidden,
			wantBody:   "ACCOUNT_NOT_VERIFIED",
		},
		{
			name:       "Landlord on admin route is denied",
			path:       "/admin/users",
			user:       landlord,
			wantStatus: http.StatusForbidden,
			wantBody:   "ACCESS_DENIED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cookie *http.Cookie
			if tt.user != nil {
				cookie = env.signIn(tt.user)
			}

			w := env.do(http.MethodGet, tt.path, nil, cookie)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantLoc != "" {
				assert.Equal(t, tt.wantLoc, w.Header().Get("Location"))
			}
			if tt.wantBody != "" {
				assert.Contains(t, w.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestAuthHandler_Login(t *testing.T) {
	loginReply := map[string]interface{}{
		"token": testAPIToken,
		"user":  tenant,
	}

	t.Run("Success redirects home and signs the session in", func(t *testing.T) {
		env := setupTestEnv(t)
		env.api.Reply(http.MethodPost, "/api/auth/login", http.StatusOK, loginReply)

		w := env.do(http.MethodPost, "/login", LoginRequest{Email: "asha@example.com", Password: "secret1"}, nil)

		require.Equal(t, http.StatusOK, w.Code)
		var resp AuthResponse
		decode(t, w, &resp)
		assert.True(t, resp.Success)
		assert.Equal(t, "/tenant/browse", resp.Redirect)
		assert.Equal(t, "Welcome back, Asha!", resp.Message)
		assert.Equal(t, []string{services.ActionLogin}, env.limiter.recorded)

		cookie := lastCookie(t, w)
		sessionView := env.do(http.MethodGet, "/session", nil, cookie)
		var state SessionResponse
		decode(t, sessionView, &state)
		assert.True(t, state.Authenticated)
		assert.Equal(t, "/tenant/browse", state.HomePath)

		toasts := env.do(http.MethodGet, "/toasts", nil, cookie)
		assert.Contains(t, toasts.Body.String(), "Welcome back, Asha!")
	})

	t.Run("From is honoured only for local paths", func(t *testing.T) {
		env := setupTestEnv(t)
		env.api.Reply(http.MethodPost, "/api/auth/login", http.StatusOK, loginReply)

		w := env.do(http.MethodPost, "/login", LoginRequest{Email: "asha@example.com", Password: "secret1", From: "/tenant/rent"}, nil)
		var resp AuthResponse
		decode(t, w, &resp)
		assert.Equal(t, "/tenant/rent", resp.Redirect)

		w = env.do(http.MethodPost, "/login", LoginRequest{Email: "asha@example.com", Password: "secret1", From: "//evil.example"}, nil)
		decode(t, w, &resp)
		assert.Equal(t, "/tenant/browse", resp.Redirect)
	})

	t.Run("Invalid email never reaches the API", func(t *testing.T) {
		env := setupTestEnv(t)
		env.api.Reply(http.MethodPost, "/api/auth/login", http.StatusOK, loginReply)

		w := env.do(http.MethodPost, "/login", LoginRequest{Email: "not-an-email", Password: "secret1"}, nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var resp ErrorResponse
		decode(t, w, &resp)
		assert.Equal(t, "VALIDATION_ERROR", resp.Code)
		assert.Contains(t, resp.Fields, "email")
		assert.Equal(t, 0, env.api.Calls(http.MethodPost, "/api/auth/login"))
	})

	t.Run("Wrong password", func(t *testing.T) {
		env := setupTestEnv(t)
		env.api.Reply(http.MethodPost, "/api/auth/login", http.StatusBadRequest, map[string]string{"message": "Invalid credentials"})

		w := env.do(http.MethodPost, "/login", LoginRequest{Email: "asha@example.com", Password: "wrong"}, nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid credentials")
	})

	t.Run("Rate limited", func(t *testing.T) {
		env := setupTestEnv(t)
		env.api.Reply(http.MethodPost, "/api/auth/login", http.StatusOK, loginReply)
		env.limiter.blocked = true

		w := env.do(http.MethodPost, "/login", LoginRequest{Email: "asha@example.com", Password: "secret1"}, nil)

		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Contains(t, w.Body.String(), "RATE_LIMIT_EXCEEDED")
		assert.Contains(t, w.Body.String(), `"retry_after_seconds":300`)
		assert.Equal(t, 0, env.api.Calls(http.MethodPost, "/api/auth/login"))
	})

	t.Run("Broken limiter does not block sign in", func(t *testing.T) {
		env := setupTestEnv(t)
		env.api.Reply(http.MethodPost, "/api/auth/login", http.StatusOK, loginReply)
		env.limiter.failing = true

		w := env.do(http.MethodPost, "/login", LoginRequest{Email: "asha@example.com", Password: "secret1"}, nil)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Bad body", func(t *testing.T) {
		env := setupTestEnv(t)

		req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewBufferString("{"))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "INVALID_BODY")
	})
}

func TestAuthHandler_AdminLogin(t *testing.T) {
	t.Run("Admin lands on the dashboard", func(t *testing.T) {
		env := setupTestEnv(t)
		env.api.Reply(http.MethodPost, "/api/auth/login", http.StatusOK, map[string]interface{}{"token": testAPIToken, "user": adminUser})

		w := env.do(http.MethodPost, "/admin", LoginRequest{Email: "admin@example.com", Password: "secret1"}, nil)

		require.Equal(t, http.StatusOK, w.Code)
		var resp AuthResponse
		decode(t, w, &resp)
		assert.Equal(t, "/admin/dashboard", resp.Redirect)
	})

	t.Run("Non-admin is signed straight out", func(t *testing.T) {
		env := setupTestEnv(t)
		env.api.Reply(http.MethodPost, "/api/auth/login", http.StatusOK, map[string]interface{}{"token": testAPIToken, "user": tenant})

		w := env.do(http.MethodPost, "/admin", LoginRequest{Email: "asha@example.com", Password: "secret1"}, nil)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "ADMIN_ONLY")

		sessionView := env.do(http.MethodGet, "/session", nil, lastCookie(t, w))
		assert.Contains(t, sessionView.Body.String(), `"authenticated":false`)
	})
}

func TestAuthHandler_Register(t *testing.T) {
	env := setupTestEnv(t)
	env.api.Reply(http.MethodPost, "/api/auth/register", http.StatusCreated, map[string]string{"message": "OTP sent to your email"})

	w := env.do(http.MethodPost, "/register", models.RegisterRequest{
		Name:     "Asha",
		Email:    "asha@example.com",
		Phone:    "9876543210",
		Password: "secret1",
		Role:     models.RoleTenant,
	}, nil)

	require.Equal(t, http.StatusCreated, w.Code)
	var resp AuthResponse
	decode(t, w, &resp)
	assert.Equal(t, "/verify-otp?email=asha%40example.com", resp.Redirect)
}

func TestAuthHandler_Logout(t *testing.T) {
	t.Run("Tenant goes back to login", func(t *testing.T) {
		env := setupTestEnv(t)
		cookie := env.signIn(tenant)

		w := env.do(http.MethodPost, "/logout", nil, cookie)

		require.Equal(t, http.StatusOK, w.Code)
		var resp AuthResponse
		decode(t, w, &resp)
		assert.Equal(t, "/login", resp.Redirect)

		sessionView := env.do(http.MethodGet, "/session", nil, cookie)
		assert.Contains(t, sessionView.Body.String(), `"authenticated":false`)
	})

	t.Run("Admin goes back to admin login", func(t *testing.T) {
		env := setupTestEnv(t)
		cookie := env.signIn(adminUser)

		w := env.do(http.MethodPost, "/logout", nil, cookie)

		var resp AuthResponse
		decode(t, w, &resp)
		assert.Equal(t, "/admin", resp.Redirect)
	})
}

func TestAuthHandler_SessionExpiredMidRequest(t *testing.T) {
	env := setupTestEnv(t)
	cookie := env.signIn(tenant)
	env.api.Reply(http.MethodGet, "/api/bookings/my", http.StatusUnauthorized, map[string]string{"message": "Token expired"})

	w := env.do(http.MethodGet, "/tenant/bookings", nil, cookie)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	var resp ErrorResponse
	decode(t, w, &resp)
	assert.Equal(t, "SESSION_EXPIRED", resp.Code)
	assert.Equal(t, "/login", resp.Redirect)

	sessionView := env.do(http.MethodGet, "/session", nil, cookie)
	assert.Contains(t, sessionView.Body.String(), `"authenticated":false`)
}

func TestAuthHandler_Sessions(t *testing.T) {
	env := setupTestEnv(t)
	current := env.signIn(tenant)
	other := env.signIn(tenant)

	w := env.do(http.MethodGet, "/account/sessions", nil, current)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Sessions []middleware.SessionInfo `json:"sessions"`
	}
	decode(t, w, &resp)
	require.Len(t, resp.Sessions, 2)

	var currentID, otherID string
	for _, s := range resp.Sessions {
		if s.Current {
			currentID = s.ID
		} else {
			otherID = s.ID
		}
	}
	require.NotEmpty(t, currentID)
	require.NotEmpty(t, otherID)

	t.Run("Current session cannot be revoked", func(t *testing.T) {
		w := env.do(http.MethodDelete, "/account/sessions/"+currentID, nil, current)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "CURRENT_SESSION")
	})

	t.Run("Unknown session", func(t *testing.T) {
		w := env.do(http.MethodDelete, "/account/sessions/00000000-0000-0000-0000-000000000000", nil, current)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Other device is signed out", func(t *testing.T) {
		w := env.do(http.MethodDelete, "/account/sessions/"+otherID, nil, current)
		assert.Equal(t, http.StatusNoContent, w.Code)

		sessionView := env.do(http.MethodGet, "/session", nil, other)
		assert.Contains(t, sessionView.Body.String(), `"authenticated":false`)
	})
}
