// Package token issues and verifies the signed session tokens used by the
// API. Tokens are stateless: validity is purely a function of signature and
// expiry, which means sign-out cannot revoke a token that has already been
// issued; it simply expires on its own.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TTL is the fixed lifetime of a session token.
const TTL = time.Hour

var (
	// ErrExpired means the token was well formed but its expiry has elapsed.
	ErrExpired = errors.New("token expired")
	// ErrInvalidToken covers bad signatures, tampered payloads, and
	// malformed tokens.
	ErrInvalidToken = errors.New("invalid token")
)

// Identity is the normalized claim set attached to authenticated requests.
type Identity struct {
	ID     string
	Email  string
	Avatar string
}

// Owns reports whether the identity owns the resource with the given owner
// id. Every mutating handler goes through this one predicate.
func (i Identity) Owns(ownerID string) bool {
	return i.ID != "" && i.ID == ownerID
}

type claims struct {
	UserID string `json:"uid"`
	Email  string `json:"email"`
	Avatar string `json:"avatar,omitempty"`
	jwt.RegisteredClaims
}

// Service signs and verifies session tokens with a single shared secret.
type Service struct {
	secret []byte
	ttl    time.Duration
}

func NewService(secret string) *Service {
	return &Service{secret: []byte(secret), ttl: TTL}
}

// Issue returns a signed HS256 token carrying the identity claims, expiring
// TTL from now.
func (s *Service) Issue(id, email, avatar string) (string, error) {
	now := time.Now()
	c := claims{
		UserID: id,
		Email:  email,
		Avatar: avatar,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	return tok.SignedString(s.secret)
}

// Parse verifies the signature and expiry and returns the embedded identity.
func (s *Service) Parse(tokenStr string) (Identity, error) {
	var c claims
	tok, err := jwt.ParseWithClaims(tokenStr, &c, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, ErrExpired
		}
		return Identity{}, ErrInvalidToken
	}
	if !tok.Valid || c.UserID == "" {
		return Identity{}, ErrInvalidToken
	}
	return Identity{ID: c.UserID, Email: c.Email, Avatar: c.Avatar}, nil
}
