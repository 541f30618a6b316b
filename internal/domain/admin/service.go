package admin

import (
	"context"
	"errors"

	"github.com/smartclinic/clinic/internal/platform/auth"
)

var (
	ErrNotFound       = errors.New("admin not found")
	ErrBadCredentials = errors.New("invalid username or password")
)

// TokenIssuer issues login tokens. Satisfied by auth.Tokens.
type TokenIssuer interface {
	Generate(email string, role auth.Role) (string, error)
}

type Service struct {
	admins Repository
	tokens TokenIssuer
}

func NewService(admins Repository, tokens TokenIssuer) *Service {
	return &Service{admins: admins, tokens: tokens}
}

// Login checks the credential and issues an admin-scoped token. The
// username stands in for the email claim; admin accounts have no email.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	a, err := s.admins.GetByUsername(ctx, username)
	if errors.Is(err, ErrNotFound) {
		return "", ErrBadCredentials
	}
	if err != nil {
		return "", err
	}
	if !auth.CheckPassword(a.PasswordHash, password) {
		return "", ErrBadCredentials
	}
	return s.tokens.Generate(a.Username, auth.RoleAdmin)
}
