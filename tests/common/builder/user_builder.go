//go:build unit || e2e

package builder

import (
	"time"

	"hotel-booking/internal/domain/user"
	reqdto "hotel-booking/internal/handler/dto/request"
	"hotel-booking/internal/usecase/queries"

	"github.com/google/uuid"
)

const DefaultPassword = "password123"

// UserBuilder describes a back-office account. The defaults are an active
// admin, which is what most handler tests need.
type UserBuilder struct {
	ID           uuid.UUID
	Email        string
	Password     string
	PasswordHash string
	Role         string
	IsActive     bool
	Now          time.Time
}

func NewUserBuilder() *UserBuilder {
	return &UserBuilder{
		ID:           uuid.MustParse("7d1c2a8e-3b4f-4c6d-9e0a-1f2b3c4d5e6f"),
		Email:        "manager@hotel.example",
		Password:     DefaultPassword,
		PasswordHash: "$2a$10$placeholder.hash.for.domain.tests.only",
		Role:         string(user.RoleAdmin),
		IsActive:     true,
		Now:          time.Date(2026, 11, 1, 9, 0, 0, 0, time.UTC),
	}
}

func (u *UserBuilder) With(mutate func(*UserBuilder)) *UserBuilder {
	mutate(u)
	return u
}

func (u *UserBuilder) WithEmail(email string) *UserBuilder {
	u.Email = email
	return u
}

func (u *UserBuilder) WithRole(role string) *UserBuilder {
	u.Role = role
	return u
}

func (u *UserBuilder) AsStaff() *UserBuilder { return u.WithRole(string(user.RoleStaff)) }

func (u *UserBuilder) AsInactive() *UserBuilder {
	u.IsActive = false
	return u
}

func (u *UserBuilder) BuildDomain() (*user.User, error) {
	email, err := user.NewEmail(u.Email)
	if err != nil {
		return nil, err
	}
	role, err := user.NewRole(u.Role)
	if err != nil {
		return nil, err
	}
	return user.NewUser(email, u.PasswordHash, role, u.Now)
}

func (u *UserBuilder) BuildReadModel() *queries.AuthorizedUserView {
	return &queries.AuthorizedUserView{
		ID:       u.ID,
		Email:    u.Email,
		Role:     u.Role,
		IsActive: u.IsActive,
	}
}

// BuildLoginDTO is the login body for this account.
func (u *UserBuilder) BuildLoginDTO() reqdto.LoginRequest {
	return reqdto.LoginRequest{Email: u.Email, Password: u.Password}
}
