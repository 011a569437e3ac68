// Package auth provides JWT session tokens, bcrypt password hashing, the
// configurable password policy, and the HTTP middleware that enforces them.
//
// SESSION MODEL:
// Login (or registration, or the OAuth callback) issues a PAIR of tokens:
//
//	access  — short-lived (default 15m), sent as "Authorization: Bearer ..."
//	refresh — long-lived (default 7d), exchanged at /auth/refresh for a new pair
//
// Both carry the user ID in the "sub" claim and a "typ" claim naming which
// kind they are. Validation checks the typ: a refresh token presented as an
// access token (or vice versa) is rejected even though both carry valid
// signatures. Without that check, a leaked long-lived refresh token would be
// a 7-day access token.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "devspace"

// TokenType distinguishes the two kinds of token we issue.
type TokenType string

const (
	TokenAccess  TokenType = "access"
	TokenRefresh TokenType = "refresh"
)

// TokenService signs and validates JWTs with a shared HMAC secret (HS256).
// The same secret signs both token kinds; the typ claim keeps them apart.
type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenService creates a TokenService. The secret should be at least
// 32 bytes of random data in production (JWT_SECRET=$(openssl rand -hex 32));
// we hard-fail under 16 so a weak dev secret can't slide into production.
func NewTokenService(secret string, accessTTL, refreshTTL time.Duration) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &TokenService{secret: []byte(secret), accessTTL: accessTTL, refreshTTL: refreshTTL}, nil
}

// claims embeds the registered claims and adds our typ discriminator.
type claims struct {
	Type TokenType `json:"typ"`
	jwt.RegisteredClaims
}

// TokenPair bundles the two tokens issued together on login/registration.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// IssuePair generates a fresh access+refresh pair for the given user.
func (s *TokenService) IssuePair(userID string) (TokenPair, error) {
	access, err := s.generate(userID, TokenAccess, s.accessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.generate(userID, TokenRefresh, s.refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *TokenService) generate(userID string, typ TokenType, ttl time.Duration) (string, error) {
	now := time.Now()
	c := claims{
		Type: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing %s token: %w", typ, err)
	}
	return signed, nil
}

// ValidateAccess verifies an access token and returns the user ID it names.
func (s *TokenService) ValidateAccess(tokenStr string) (string, error) {
	return s.validate(tokenStr, TokenAccess)
}

// ValidateRefresh verifies a refresh token and returns the user ID it names.
func (s *TokenService) ValidateRefresh(tokenStr string) (string, error) {
	return s.validate(tokenStr, TokenRefresh)
}

// validate parses, verifies signature/expiry/issuer, and enforces the typ
// claim. jwt.WithValidMethods pins HS256 so an attacker can't downgrade to
// "none" or confuse HMAC with an asymmetric algorithm.
func (s *TokenService) validate(tokenStr string, want TokenType) (string, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("auth: token expired")
		}
		return "", fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("auth: invalid token claims")
	}
	if c.Type != want {
		return "", fmt.Errorf("auth: %s token presented where %s token required", c.Type, want)
	}
	if c.Subject == "" {
		return "", fmt.Errorf("auth: token has no subject")
	}

	return c.Subject, nil
}
