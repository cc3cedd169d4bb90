package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/api"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/guard"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/models"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/notify"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/session"
	pkgjwt "github.com/Kiran6976/Houserent-Frontend-sub000/pkg/jwt"
)

const testCookie = "homerent_session"

func setupTestManager(t *testing.T) (*SessionManager, *MemoryBackend, *pkgjwt.Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	backend := NewMemoryBackend()
	jwtService := pkgjwt.NewService("test-session-secret-123456789", time.Hour)
	client := api.NewClient("http://127.0.0.1:1", 0, nil)
	m := NewSessionManager(backend, jwtService, client, notify.NewHub(), SessionOptions{
		CookieName: testCookie,
		Logger:     logger,
	})
	return m, backend, jwtService
}

func setupTestRouter(m *SessionManager) *gin.Engine {
	router := gin.New()
	router.Use(m.Handler())
	router.GET("/whoami", func(c *gin.Context) {
		ws := MustGetWebSession(c)
		st := GuardState(c)
		c.JSON(http.StatusOK, gin.H{
			"session_id":    ws.ID,
			"authenticated": st.Authenticated,
			"loading":       st.Loading,
		})
	})
	router.GET("/tenant", Require(guard.Requirement{Role: models.RoleTenant}), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "tenant area"})
	})
	return router
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == testCookie {
			return c
		}
	}
	t.Fatalf("no %s cookie in response", testCookie)
	return nil
}

func get(router *gin.Engine, path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func signedInCookie(t *testing.T, backend *MemoryBackend, jwtService *pkgjwt.Service, user *models.User) (uuid.UUID, *http.Cookie) {
	t.Helper()
	id, err := backend.Create(context.Background(), DeviceMeta{}, time.Now().Add(time.Hour))
	require.NoError(t, err)
	require.NoError(t, backend.Storage(id).Save(context.Background(), session.Snapshot{Token: "api-token", User: user}))

	token, err := jwtService.GenerateSessionToken(id, user.ID, string(user.Role))
	require.NoError(t, err)
	return id, &http.Cookie{Name: testCookie, Value: token}
}

func TestSessionManager_OpensAnonymousSession(t *testing.T) {
	m, backend, _ := setupTestManager(t)
	router := setupTestRouter(m)

	w := get(router, "/whoami", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"authenticated":false`)
	assert.Contains(t, w.Body.String(), `"loading":false`)
	cookie := sessionCookie(t, w)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, 1, backend.Len())
	assert.Equal(t, 1, m.Len())
}

func TestSessionManager_ReusesCookie(t *testing.T) {
	m, backend, _ := setupTestManager(t)
	router := setupTestRouter(m)

	first := get(router, "/whoami", nil)
	cookie := sessionCookie(t, first)

	second := get(router, "/whoami", cookie)

	assert.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, 1, backend.Len())
	assert.JSONEq(t, first.Body.String(), second.Body.String())
}

func TestSessionManager_InvalidCookie(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"Garbage", "not-a-jwt"},
		{"Wrong secret", func() string {
			other := pkgjwt.NewService("another-secret", time.Hour)
			token, _ := other.GenerateSessionToken(uuid.New(), "", "")
			return token
		}()},
		{"Unknown session", func() string {
			svc := pkgjwt.NewService("test-session-secret-123456789", time.Hour)
			token, _ := svc.GenerateSessionToken(uuid.New(), "", "")
			return token
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, backend, _ := setupTestManager(t)
			router := setupTestRouter(m)

			w := get(router, "/whoami", &http.Cookie{Name: testCookie, Value: tt.value})

			assert.Equal(t, http.StatusOK, w.Code)
			assert.NotEqual(t, tt.value, sessionCookie(t, w).Value)
			assert.Equal(t, 1, backend.Len())
		})
	}
}

func TestSessionManager_RestoresSignedInSession(t *testing.T) {
	m, backend, jwtService := setupTestManager(t)
	router := setupTestRouter(m)
	_, cookie := signedInCookie(t, backend, jwtService, &models.User{ID: "u1", Role: models.RoleTenant})

	w := get(router, "/tenant", cookie)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "tenant area")
}

func TestSessionManager_GuardsRoutes(t *testing.T) {
	t.Run("Anonymous is redirected to login", func(t *testing.T) {
		m, _, _ := setupTestManager(t)
		router := setupTestRouter(m)

		w := get(router, "/tenant", nil)

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/login?from=%2Ftenant", w.Header().Get("Location"))
	})

	t.Run("Wrong role is denied", func(t *testing.T) {
		m, backend, jwtService := setupTestManager(t)
		router := setupTestRouter(m)
		_, cookie := signedInCookie(t, backend, jwtService, &models.User{ID: "l1", Role: models.RoleLandlord})

		w := get(router, "/tenant", cookie)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "ACCESS_DENIED")
		assert.Contains(t, w.Body.String(), "/landlord")
	})
}

func TestSessionManager_ExpiredBackendSession(t *testing.T) {
	m, backend, jwtService := setupTestManager(t)
	router := setupTestRouter(m)
	id, cookie := signedInCookie(t, backend, jwtService, &models.User{ID: "u1", Role: models.RoleTenant})
	backend.Expire(id)

	w := get(router, "/whoami", cookie)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"authenticated":false`)
	assert.NotContains(t, w.Body.String(), id.String())
}

func TestSessionManager_LogoutHooks(t *testing.T) {
	m, backend, jwtService := setupTestManager(t)
	id, cookie := signedInCookie(t, backend, jwtService, &models.User{ID: "u1", Role: models.RoleTenant})

	var loggedOut []string
	m.OnLogout(func(sessionID string) { loggedOut = append(loggedOut, sessionID) })

	router := gin.New()
	router.Use(m.Handler())
	router.POST("/logout", func(c *gin.Context) {
		MustGetWebSession(c).Store.Logout(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, []string{id.String()}, loggedOut)

	snap, err := backend.Storage(id).Load(context.Background())
	require.NoError(t, err)
	assert.True(t, snap.Empty())
}

func TestSessionManager_ListAndRevoke(t *testing.T) {
	m, backend, jwtService := setupTestManager(t)
	user := &models.User{ID: "u1", Role: models.RoleTenant}
	first, _ := signedInCookie(t, backend, jwtService, user)
	second, _ := signedInCookie(t, backend, jwtService, user)
	_, _ = signedInCookie(t, backend, jwtService, &models.User{ID: "u2", Role: models.RoleTenant})

	list, err := m.ListForUser(context.Background(), "u1", first.String())
	require.NoError(t, err)
	require.Len(t, list, 2)

	current := 0
	for _, s := range list {
		if s.Current {
			current++
			assert.Equal(t, first.String(), s.ID)
		}
	}
	assert.Equal(t, 1, current)

	var revoked []string
	m.OnLogout(func(sessionID string) { revoked = append(revoked, sessionID) })
	require.NoError(t, m.Revoke(context.Background(), second.String()))

	list, err = m.ListForUser(context.Background(), "u1", first.String())
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, []string{second.String()}, revoked)
}

func TestSessionManager_CloseIdle(t *testing.T) {
	m, _, _ := setupTestManager(t)
	router := setupTestRouter(m)
	get(router, "/whoami", nil)
	require.Equal(t, 1, m.Len())

	assert.Equal(t, 0, m.CloseIdle(time.Hour))

	m.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	assert.Equal(t, 1, m.CloseIdle(time.Hour))
	assert.Equal(t, 0, m.Len())
}

func TestGetWebSession_Missing(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	_, ok := GetWebSession(c)
	assert.False(t, ok)
	assert.Equal(t, guard.State{}, GuardState(c))
	assert.Panics(t, func() { MustGetWebSession(c) })
}
