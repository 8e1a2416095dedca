package domain

import (
	"strings"
	"time"
)

// User roles
const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// DigestPrefix tags passwords stored with the salted PBKDF2 scheme.
// Records without it hold a legacy plaintext value awaiting migration.
const DigestPrefix = "pbkdf2$"

// User represents a registered account. Password holds either a tagged
// PBKDF2 digest or, for pre-migration records, the legacy plaintext value.
type User struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Password  string    `json:"-" db:"password"`
	Role      string    `json:"role" db:"role"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// HasHashedPassword reports whether the stored credential carries the
// recognized digest tag.
func (u *User) HasHashedPassword() bool {
	return strings.HasPrefix(u.Password, DigestPrefix)
}
