package admin

import (
	"time"

	"github.com/google/uuid"
)

// Admin maps to the admin table. Accounts are provisioned by migration or
// operator tooling; there is no self-service registration.
type Admin struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
