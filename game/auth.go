package game

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/golang-jwt/jwt/v4"

	"github.com/quasarhq/quasar-backend/models"
)

// AuthResult is the identity an authenticator resolved for a login.
type AuthResult struct {
	ID   string
	Name string
}

// Authenticator resolves a login token to a stable identity. The
// strategy is selected by name from the map handed to the coordinator
// at construction.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (AuthResult, error)
}

// JWTAuthenticator validates HS256 tokens minted by the account HTTP
// endpoints.
type JWTAuthenticator struct {
	secret []byte
}

func NewJWTAuthenticator(secret string) *JWTAuthenticator {
	return &JWTAuthenticator{secret: []byte(secret)}
}

func (a *JWTAuthenticator) Authenticate(ctx context.Context, token string) (AuthResult, error) {
	claims := &models.CustomClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		return AuthResult{}, err
	}
	if !parsed.Valid {
		return AuthResult{}, fmt.Errorf("invalid token")
	}
	return AuthResult{ID: claims.ID, Name: claims.Username}, nil
}

// AnonymousAuthenticator hands out a fresh sequential guest identity
// per call; the token is ignored.
type AnonymousAuthenticator struct {
	nextID atomic.Uint64
}

func NewAnonymousAuthenticator() *AnonymousAuthenticator {
	return &AnonymousAuthenticator{}
}

func (a *AnonymousAuthenticator) Authenticate(ctx context.Context, token string) (AuthResult, error) {
	n := a.nextID.Add(1) - 1
	return AuthResult{
		ID:   fmt.Sprintf("anon/%d", n),
		Name: fmt.Sprintf("guest-%d", n),
	}, nil
}
