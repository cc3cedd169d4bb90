package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-session-secret-key-for-testing-purposes"

func apiToken(t *testing.T, expiresIn time.Duration) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("api-only-secret"))
	require.NoError(t, err)
	return token
}

func TestNewService(t *testing.T) {
	service := NewService(testSecret, time.Hour)

	assert.NotNil(t, service)
	assert.Equal(t, testSecret, service.secret)
	assert.Equal(t, time.Hour, service.SessionExpiry())
}

func TestGenerateSessionToken(t *testing.T) {
	service := NewService(testSecret, time.Hour)
	sessionID := uuid.New()

	token, err := service.GenerateSessionToken(sessionID, "u-42", "landlord")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := service.ValidateSessionToken(token)
	require.NoError(t, err)
	assert.Equal(t, sessionID, claims.SessionID)
	assert.Equal(t, "u-42", claims.UserID)
	assert.Equal(t, "landlord", claims.Role)
	assert.Equal(t, WebSessionToken, claims.TokenType)
	assert.Equal(t, "homerent-web", claims.Issuer)
	assert.Equal(t, sessionID.String(), claims.Subject)
}

func TestGenerateSessionToken_Anonymous(t *testing.T) {
	service := NewService(testSecret, time.Hour)

	token, err := service.GenerateSessionToken(uuid.New(), "", "")
	require.NoError(t, err)

	claims, err := service.ValidateSessionToken(token)
	require.NoError(t, err)
	assert.Empty(t, claims.UserID)
	assert.Empty(t, claims.Role)
}

func TestValidateSessionToken_Rejects(t *testing.T) {
	service := NewService(testSecret, time.Hour)

	token, err := service.GenerateSessionToken(uuid.New(), "u-1", "tenant")
	require.NoError(t, err)

	t.Run("Malformed", func(t *testing.T) {
		_, err := service.ValidateSessionToken("invalid.token.here")
		assert.Error(t, err)
	})

	t.Run("Wrong secret", func(t *testing.T) {
		_, err := NewService("wrong-secret", time.Hour).ValidateSessionToken(token)
		assert.Error(t, err)
	})

	t.Run("Expired", func(t *testing.T) {
		expired, err := NewService(testSecret, -time.Hour).GenerateSessionToken(uuid.New(), "", "")
		require.NoError(t, err)
		_, err = service.ValidateSessionToken(expired)
		assert.Error(t, err)
	})

	t.Run("Foreign token type", func(t *testing.T) {
		claims := Claims{
			SessionID:        uuid.New(),
			TokenType:        "access",
			RegisteredClaims: jwt.RegisteredClaims{Issuer: "homerent-web"},
		}
		foreign, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		require.NoError(t, err)
		_, err = service.ValidateSessionToken(foreign)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "invalid token type")
	})
}

func TestIsTokenExpired(t *testing.T) {
	now := time.Now()

	assert.False(t, IsTokenExpired(apiToken(t, time.Hour), now))
	assert.True(t, IsTokenExpired(apiToken(t, -time.Hour), now))

	// Opaque tokens are left to the API
	assert.False(t, IsTokenExpired("opaque-token", now))
}

func TestGetTokenExpiry(t *testing.T) {
	expiry, err := GetTokenExpiry(apiToken(t, time.Hour))
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiry, 5*time.Second)

	_, err = GetTokenExpiry("invalid.token.here")
	assert.Error(t, err)
}

func TestConcurrentTokenGeneration(t *testing.T) {
	service := NewService(testSecret, time.Hour)

	done := make(chan bool)
	errs := make(chan error, 100)

	for i := 0; i < 100; i++ {
		go func() {
			token, err := service.GenerateSessionToken(uuid.New(), "u", "tenant")
			if err != nil {
				errs <- err
				done <- true
				return
			}

			if _, err := service.ValidateSessionToken(token); err != nil {
				errs <- err
			}
			done <- true
		}()
	}

	for i := 0; i < 100; i++ {
		<-done
	}

	close(errs)
	assert.Empty(t, errs)
}
