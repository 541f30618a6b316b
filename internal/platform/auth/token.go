package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrBadToken = errors.New("invalid token")

// Claims are the JWT claims issued at login. The subject is the account
// email; Role scopes what the token may do.
type Claims struct {
	Email string `json:"email"`
	Role  Role   `json:"role"`
	jwt.RegisteredClaims
}

// Tokens issues and verifies the HS256 tokens used by every login flow.
type Tokens struct {
	secret []byte
	ttl    time.Duration
}

func NewTokens(secret string, ttl time.Duration) *Tokens {
	return &Tokens{secret: []byte(secret), ttl: ttl}
}

// Generate signs a token for email scoped to role.
func (t *Tokens) Generate(email string, role Role) (string, error) {
	now := time.Now()
	c := Claims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(t.secret)
}

// Parse verifies the signature and expiry and returns the claims.
func (t *Tokens) Parse(raw string) (*Claims, error) {
	tok, err := jwt.ParseWithClaims(raw, &Claims{}, func(tk *jwt.Token) (any, error) {
		// block alg confusion
		if _, ok := tk.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrBadToken
		}
		return t.secret, nil
	})
	if err != nil {
		return nil, err
	}
	c, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid {
		return nil, ErrBadToken
	}
	if _, err := ParseRole(string(c.Role)); err != nil {
		return nil, ErrBadToken
	}
	return c, nil
}

// Validate reports whether raw is a live token carrying the required role.
func (t *Tokens) Validate(raw string, required Role) bool {
	c, err := t.Parse(raw)
	return err == nil && c.Is(required)
}

// ExtractEmail returns the email a valid token was issued to.
func (t *Tokens) ExtractEmail(raw string) (string, error) {
	c, err := t.Parse(raw)
	if err != nil {
		return "", err
	}
	return c.Email, nil
}
