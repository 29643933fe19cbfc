// Package identity answers "who am I" for scoping a user's own records.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken  = errors.New("invalid identity token")
	ErrMissingSecret = errors.New("identity token configured without token_secret")
)

// User is the signed-in person. A nil *User means anonymous.
type User struct {
	Email       string
	DisplayName string
}

// Name returns the display name, falling back to the local part of the email.
func (u *User) Name() string {
	if u == nil {
		return "Anonymous"
	}
	if u.DisplayName != "" {
		return u.DisplayName
	}
	if at := strings.Index(u.Email, "@"); at > 0 {
		return u.Email[:at]
	}
	return u.Email
}

// Owner returns the created_by value for records written by u; "" when anonymous.
func Owner(u *User) string {
	if u == nil {
		return ""
	}
	return u.Email
}

// Provider resolves the current user.
type Provider interface {
	Current(ctx context.Context) (*User, error)
}

// Static always returns the same user.
type Static struct {
	User *User
}

func (s Static) Current(ctx context.Context) (*User, error) {
	if s.User == nil {
		return nil, nil
	}
	u := *s.User
	return &u, nil
}

// Anonymous returns a provider with no signed-in user.
func Anonymous() Provider {
	return Static{}
}

// Claims are the JWT claims carrying a user's identity.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// GenerateToken signs an HS256 token for u, valid for validity (0 = no expiry).
func GenerateToken(u User, secretKey []byte, validity time.Duration, now time.Time) (string, error) {
	claims := Claims{Email: u.Email, Name: u.DisplayName}
	claims.IssuedAt = jwt.NewNumericDate(now)
	if validity > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(validity))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secretKey)
}

// TokenProvider reads the user from a signed token.
type TokenProvider struct {
	token  string
	secret []byte
	now    func() time.Time
}

// NewTokenProvider returns a provider validating token with secret.
func NewTokenProvider(token string, secret []byte, now func() time.Time) *TokenProvider {
	if now == nil {
		now = time.Now
	}
	return &TokenProvider{token: token, secret: secret, now: now}
}

func (p *TokenProvider) Current(ctx context.Context) (*User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(p.token, claims, func(t *jwt.Token) (interface{}, error) {
		return p.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(p.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Email == "" {
		return nil, ErrInvalidToken
	}
	return &User{Email: claims.Email, DisplayName: claims.Name}, nil
}

// FromConfig picks a provider: a token wins over a plain email, and neither means anonymous.
func FromConfig(email, displayName, token, secret string, now func() time.Time) (Provider, error) {
	switch {
	case token != "":
		if secret == "" {
			return nil, ErrMissingSecret
		}
		return NewTokenProvider(token, []byte(secret), now), nil
	case email != "":
		return Static{User: &User{Email: email, DisplayName: displayName}}, nil
	default:
		return Anonymous(), nil
	}
}
