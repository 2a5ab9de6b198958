package user

import (
	"time"

	"github.com/google/uuid"
)

// User is a back-office account: front-desk staff or a hotel administrator.
// Guests are identified by email on their bookings and never log in.
type User struct {
	id           uuid.UUID
	email        Email
	passwordHash string
	role         Role
	active       bool
	createdAt    time.Time
}

// NewUser opens an active account. passwordHash must already be a bcrypt hash.
func NewUser(email Email, passwordHash string, role Role, now time.Time) (*User, error) {
	if email.Value() == "" {
		return nil, ErrInvalidEmail
	}
	if passwordHash == "" {
		return nil, ErrMissingPasswordHash
	}
	if !role.IsValid() {
		return nil, ErrInvalidRole
	}
	return &User{
		id:           uuid.New(),
		email:        email,
		passwordHash: passwordHash,
		role:         role,
		active:       true,
		createdAt:    now,
	}, nil
}

func (u *User) ID() uuid.UUID        { return u.id }
func (u *User) Email() Email         { return u.email }
func (u *User) PasswordHash() string { return u.passwordHash }
func (u *User) Role() Role           { return u.role }
func (u *User) IsActive() bool       { return u.active }
func (u *User) CreatedAt() time.Time { return u.createdAt }
