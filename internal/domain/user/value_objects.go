package user

import (
	"errors"
	"regexp"
	"strings"
)

const minPasswordLength = 8

var (
	ErrInvalidEmail        = errors.New("invalid email format")
	ErrInvalidRole         = errors.New("invalid role")
	ErrPasswordTooWeak     = errors.New("password must be at least 8 characters long")
	ErrMissingPasswordHash = errors.New("password hash is required")
)

var emailPattern = regexp.MustCompile(`^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}$`)

// Email is stored lower-cased so lookups ignore case.
type Email struct{ value string }

func NewEmail(raw string) (Email, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if !emailPattern.MatchString(normalized) {
		return Email{}, ErrInvalidEmail
	}
	return Email{value: normalized}, nil
}

func (e Email) Value() string { return e.value }

// Password holds a plaintext candidate only until it is hashed or compared.
type Password struct{ value string }

func NewPassword(raw string) (Password, error) {
	if len(raw) < minPasswordLength {
		return Password{}, ErrPasswordTooWeak
	}
	return Password{value: raw}, nil
}

func (p Password) Value() string { return p.value }

type Credentials struct {
	email    Email
	password Password
}

func NewCredentials(rawEmail, rawPassword string) (Credentials, error) {
	email, err := NewEmail(rawEmail)
	if err != nil {
		return Credentials{}, err
	}
	pw, err := NewPassword(rawPassword)
	if err != nil {
		return Credentials{}, err
	}
	return Credentials{email: email, password: pw}, nil
}

func (c Credentials) Email() Email       { return c.email }
func (c Credentials) Password() Password { return c.password }
