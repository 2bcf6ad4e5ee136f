// Package auth verifies the bearer tokens issued by the identity provider.
package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims defines the payload the identity provider encodes for signed-in users.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Role  string `json:"role"`
}

// JWTManager verifies, and for tooling and tests issues, HMAC signed tokens.
type JWTManager struct {
	secret   []byte
	ttl      time.Duration
	audience string
	issuer   string
}

// Option configures optional token checks.
type Option func(*JWTManager)

// WithAudience requires tokens to carry the given audience.
func WithAudience(audience string) Option {
	return func(m *JWTManager) {
		m.audience = strings.TrimSpace(audience)
	}
}

// WithIssuer requires tokens to carry the given issuer.
func WithIssuer(issuer string) Option {
	return func(m *JWTManager) {
		m.issuer = strings.TrimSpace(issuer)
	}
}

// NewJWTManager constructs a manager with the given secret and token lifetime.
func NewJWTManager(secret string, ttl time.Duration, opts ...Option) *JWTManager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	m := &JWTManager{secret: []byte(secret), ttl: ttl}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// GenerateToken creates an access token for the provided subject.
func (m *JWTManager) GenerateToken(subject, email, role string) (string, error) {
	if len(m.secret) == 0 {
		return "", errors.New("jwt secret must not be empty")
	}

	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    m.issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Email: email,
		Role:  role,
	}
	if m.audience != "" {
		claims.Audience = jwt.ClaimStrings{m.audience}
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", err
	}

	return signed, nil
}

// ParseToken verifies the token signature, expiry and the configured audience and issuer.
func (m *JWTManager) ParseToken(token string) (*Claims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}), jwt.WithExpirationRequired()}
	if m.audience != "" {
		opts = append(opts, jwt.WithAudience(m.audience))
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}

	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return nil, errors.New("token has no subject")
	}

	return claims, nil
}
