package admin

import (
	"context"
	"testing"

	"github.com/smartclinic/clinic/internal/platform/auth"
)

type mockRepo struct {
	admins map[string]*Admin
}

func (m *mockRepo) GetByUsername(_ context.Context, username string) (*Admin, error) {
	a, ok := m.admins[username]
	if !ok {
		return nil, ErrNotFound
	}
	return a, nil
}

type mockIssuer struct{}

func (mockIssuer) Generate(email string, role auth.Role) (string, error) {
	return string(role) + ":" + email, nil
}

func TestLogin(t *testing.T) {
	hash, err := auth.HashPassword("secret")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	repo := &mockRepo{admins: map[string]*Admin{
		"root": {Username: "root", PasswordHash: hash},
	}}
	svc := NewService(repo, mockIssuer{})

	token, err := svc.Login(context.Background(), "root", "secret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if token != "admin:root" {
		t.Errorf("token = %q", token)
	}

	if _, err := svc.Login(context.Background(), "root", "wrong"); err != ErrBadCredentials {
		t.Errorf("wrong password: err = %v, want ErrBadCredentials", err)
	}
	if _, err := svc.Login(context.Background(), "ghost", "secret"); err != ErrBadCredentials {
		t.Errorf("unknown user: err = %v, want ErrBadCredentials", err)
	}
}
