package entity

import "time"

type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

type User struct {
	Base
	Name                 string     `db:"name"`
	Email                string     `db:"email"`
	PasswordHash         string     `db:"password"`
	Role                 UserRole   `db:"role"`
	Active               bool       `db:"active"`
	Photo                *string    `db:"photo"`
	PasswordChangedAt    *time.Time `db:"password_changed_at"`
	PasswordResetToken   *string    `db:"password_reset_token"`
	PasswordResetExpires *time.Time `db:"password_reset_expires"`
}

// ChangedPasswordAfter reports whether the password changed after a token was
// issued. JWT iat has second resolution so the comparison is done in seconds.
func (u *User) ChangedPasswordAfter(issuedAt time.Time) bool {
	if u.PasswordChangedAt == nil {
		return false
	}
	return u.PasswordChangedAt.Unix() > issuedAt.Unix()
}
