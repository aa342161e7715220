package auth

import (
	"errors"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// DefaultSessionDays is the token and session lifetime when none is configured.
const DefaultSessionDays = 3

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// Claims is the identity snapshot embedded in an access token.
type Claims struct {
	SessionID        string      `json:"sid"`
	AccountID        string      `json:"aid"`
	Register         string      `json:"register"`
	Email            string      `json:"email"`
	Name             string      `json:"name"`
	Position         string      `json:"position,omitempty"`
	Sector           string      `json:"sector,omitempty"`
	Role             domain.Role `json:"role"`
	IsBanned         bool        `json:"isBanned"`
	CanCreateTicket  bool        `json:"canCreateTicket"`
	CanResolveTicket bool        `json:"canResolveTicket"`
	jwt.RegisteredClaims
}

// UserID returns the identity id carried in the subject.
func (c *Claims) UserID() string {
	return c.Subject
}

// TokenCodec issues and verifies HS256 access tokens.
type TokenCodec struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewTokenCodec builds a codec for the given secret and issuer.
func NewTokenCodec(secret, issuer string) *TokenCodec {
	return &TokenCodec{secret: []byte(secret), issuer: issuer, now: time.Now}
}

// WithClock returns a copy of the codec that reads time from now.
func (tc *TokenCodec) WithClock(now func() time.Time) *TokenCodec {
	cp := *tc
	cp.now = now
	return &cp
}

// Issue signs claims with an expiry of now + expiresInDays.
func (tc *TokenCodec) Issue(claims Claims, expiresInDays int) (string, time.Time, error) {
	if expiresInDays <= 0 {
		expiresInDays = DefaultSessionDays
	}
	now := tc.now()
	issuedAt := jwt.NewNumericDate(now)
	expiresAt := jwt.NewNumericDate(now.Add(time.Duration(expiresInDays) * 24 * time.Hour))

	claims.Issuer = tc.issuer
	claims.IssuedAt = issuedAt
	claims.ExpiresAt = expiresAt

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims)
	signed, err := token.SignedString(tc.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt.Time, nil
}

// Verify validates raw (optionally prefixed with "Bearer") and returns its claims.
func (tc *TokenCodec) Verify(raw string) (*Claims, error) {
	tokenStr := StripBearer(raw)
	if tokenStr == "" {
		return nil, ErrInvalidToken
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return tc.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tc.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(tc.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// StripBearer removes a leading "Bearer" scheme regardless of case and surrounding whitespace.
func StripBearer(raw string) string {
	value := strings.TrimSpace(raw)
	const scheme = "bearer"
	if len(value) >= len(scheme) && strings.EqualFold(value[:len(scheme)], scheme) {
		return strings.TrimSpace(value[len(scheme):])
	}
	return value
}
