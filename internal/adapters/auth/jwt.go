// Package auth verifies bearer tokens issued by the identity provider and
// maps their claims to grievance actors.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/example/grievd/internal/core/grievance"
	"github.com/example/grievd/internal/ports/secondary"
)

var (
	// ErrMissingToken indicates no token was provided.
	ErrMissingToken = errors.New("missing bearer token")
	// ErrInvalidToken indicates the token failed verification.
	ErrInvalidToken = errors.New("invalid bearer token")
	// ErrExpiredToken indicates the token has expired.
	ErrExpiredToken = errors.New("bearer token has expired")
	// ErrInvalidClaims indicates the token verified but its claims are unusable.
	ErrInvalidClaims = errors.New("invalid token claims")
)

// Claims are the JWT claims grievd reads. The subject is the actor id.
type Claims struct {
	jwt.RegisteredClaims
	Role grievance.Role `json:"role"`
}

// JWTAuthenticator implements secondary.Authenticator for HS256 tokens.
type JWTAuthenticator struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewJWTAuthenticator creates an authenticator. An empty issuer accepts any issuer.
func NewJWTAuthenticator(secret, issuer string) *JWTAuthenticator {
	return &JWTAuthenticator{
		secret: []byte(secret),
		issuer: issuer,
		now:    time.Now,
	}
}

var _ secondary.Authenticator = (*JWTAuthenticator)(nil)

// Authenticate verifies token and returns the actor it names.
func (a *JWTAuthenticator) Authenticate(_ context.Context, token string) (grievance.Actor, error) {
	token = strings.TrimSpace(strings.TrimPrefix(token, "Bearer "))
	if token == "" {
		return grievance.Actor{}, ErrMissingToken
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(a.now),
	}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}

	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return grievance.Actor{}, ErrExpiredToken
		}
		if errors.Is(err, jwt.ErrTokenInvalidIssuer) {
			return grievance.Actor{}, fmt.Errorf("%w: unexpected issuer", ErrInvalidClaims)
		}
		return grievance.Actor{}, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return grievance.Actor{}, ErrInvalidClaims
	}
	if claims.Subject == "" {
		return grievance.Actor{}, fmt.Errorf("%w: subject is required", ErrInvalidClaims)
	}
	if !claims.Role.Valid() {
		return grievance.Actor{}, fmt.Errorf("%w: unknown role %q", ErrInvalidClaims, claims.Role)
	}

	return grievance.Actor{ID: claims.Subject, Role: claims.Role}, nil
}

// Issue signs a token for actor that expires after ttl. It exists for the
// CLI and tests; production tokens come from the identity provider.
func (a *JWTAuthenticator) Issue(actor grievance.Actor, ttl time.Duration) (string, error) {
	now := a.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.ID,
			Issuer:    a.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Role: actor.Role,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}
