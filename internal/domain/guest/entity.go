package guest

import (
	"errors"
	"strings"
	"time"
)

var ErrNameRequired = errors.New("guest name is required")

// Guest is the contact record behind a booking email. The confirmed-booking
// count lives in the store, which increments it atomically.
type Guest struct {
	email     Email
	name      string
	phone     string
	createdAt time.Time
}

func NewGuest(email Email, name, phone string, now time.Time) (*Guest, error) {
	if email.IsZero() {
		return nil, ErrInvalidEmail
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}
	return &Guest{
		email:     email,
		name:      name,
		phone:     strings.TrimSpace(phone),
		createdAt: now,
	}, nil
}

func (g *Guest) Email() Email         { return g.email }
func (g *Guest) Name() string         { return g.name }
func (g *Guest) Phone() string        { return g.phone }
func (g *Guest) CreatedAt() time.Time { return g.createdAt }
