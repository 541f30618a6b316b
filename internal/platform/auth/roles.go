package auth

import "fmt"

// Role is the closed set of caller identities the API recognizes. Every
// authorization decision goes through Claims.Is; handlers and services
// never compare raw role strings.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleDoctor  Role = "doctor"
	RolePatient Role = "patient"
)

// ParseRole validates a role string coming off the wire.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleDoctor, RolePatient:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Is reports whether the claims carry exactly the required role.
func (c *Claims) Is(required Role) bool {
	return c != nil && c.Role == required
}
