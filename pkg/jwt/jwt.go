package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenType represents the type of JWT token
type TokenType string

const (
	// WebSessionToken is carried in the browser session cookie
	WebSessionToken TokenType = "web_session"
)

const issuer = "homerent-web"

// Claims represents the session cookie claims
type Claims struct {
	SessionID uuid.UUID `json:"sid"`
	UserID    string    `json:"uid,omitempty"`
	Role      string    `json:"role,omitempty"`
	TokenType TokenType `json:"token_type"`
	jwt.RegisteredClaims
}

// Service signs and validates session cookies and inspects API bearer tokens
type Service struct {
	secret        string
	sessionExpiry time.Duration
}

// NewService creates a new JWT service
func NewService(secret string, sessionExpiry time.Duration) *Service {
	return &Service{
		secret:        secret,
		sessionExpiry: sessionExpiry,
	}
}

// SessionExpiry returns the lifetime given to new session tokens
func (s *Service) SessionExpiry() time.Duration {
	return s.sessionExpiry
}

// GenerateSessionToken signs a cookie token for a stored web session.
// userID and role are empty for an anonymous session.
func (s *Service) GenerateSessionToken(sessionID uuid.UUID, userID, role string) (string, error) {
	now := time.Now()
	claims := Claims{
		SessionID: sessionID,
		UserID:    userID,
		Role:      role,
		TokenType: WebSessionToken,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.sessionExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    issuer,
			Subject:   sessionID.String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}

	return tokenString, nil
}

// ValidateSessionToken validates and parses a session cookie token
func (s *Service) ValidateSessionToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.secret), nil
	}, jwt.WithIssuer(issuer))

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}

	if claims.TokenType != WebSessionToken {
		return nil, fmt.Errorf("invalid token type: expected %s, got %s", WebSessionToken, claims.TokenType)
	}

	if claims.SessionID == uuid.Nil {
		return nil, fmt.Errorf("token has no session id")
	}

	return claims, nil
}

// ExtractRegisteredClaims reads the standard claims of any JWT without verifying
// its signature. Used on API bearer tokens, whose key only the API holds.
func ExtractRegisteredClaims(tokenString string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	return claims, nil
}

// IsTokenExpired reports whether an unverified JWT carries an exp in the past.
// Opaque (non-JWT) tokens and tokens without exp are treated as not expired;
// the API stays the judge for those.
func IsTokenExpired(tokenString string, now time.Time) bool {
	claims, err := ExtractRegisteredClaims(tokenString)
	if err != nil || claims.ExpiresAt == nil {
		return false
	}
	return !claims.ExpiresAt.Time.After(now)
}

// GetTokenExpiry returns the expiry time of a token
func GetTokenExpiry(tokenString string) (time.Time, error) {
	claims, err := ExtractRegisteredClaims(tokenString)
	if err != nil {
		return time.Time{}, err
	}

	if claims.ExpiresAt == nil {
		return time.Time{}, fmt.Errorf("token has no expiry time")
	}

	return claims.ExpiresAt.Time, nil
}
