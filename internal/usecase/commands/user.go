package commands

import (
	"context"
	"log/slog"

	"hotel-booking/internal/domain/user"
	"hotel-booking/internal/pkg/clock"
	"hotel-booking/internal/pkg/errs"
	"hotel-booking/internal/pkg/password"
	"hotel-booking/internal/usecase/shared"

	"github.com/google/uuid"
)

var ErrInvalidAccount = errs.New("invalid account")

// UserCommands provisions back-office accounts at deploy time. There is no
// self-service signup.
type UserCommands interface {
	Provision(ctx context.Context, email, plainPassword, role string) (uuid.UUID, error)
}

type userCommandsImpl struct {
	uow   shared.UnitOfWork
	clock clock.Clock
}

func NewUserCommands(uow shared.UnitOfWork, clock clock.Clock) UserCommands {
	return &userCommandsImpl{uow: uow, clock: clock}
}

// Provision creates the account or resets its password and role.
func (c *userCommandsImpl) Provision(ctx context.Context, email, plainPassword, role string) (uuid.UUID, error) {
	creds, err := user.NewCredentials(email, plainPassword)
	if err != nil {
		return uuid.Nil, errs.Mark(err, ErrInvalidAccount)
	}
	r, err := user.NewRole(role)
	if err != nil {
		return uuid.Nil, errs.Mark(err, ErrInvalidAccount)
	}
	hash, err := password.HashPassword(creds.Password().Value())
	if err != nil {
		return uuid.Nil, errs.Wrap(err, "failed to hash password")
	}

	u, err := user.NewUser(creds.Email(), hash, r, c.clock.Now())
	if err != nil {
		return uuid.Nil, errs.Mark(err, ErrInvalidAccount)
	}
	var id uuid.UUID
	err = c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		id, err = tx.Users().Upsert(ctx, tx.DB(), u)
		return err
	})
	if err != nil {
		return uuid.Nil, errs.Mark(errs.Wrap(err, "failed to provision user"), ErrStoreUnavailable)
	}
	slog.Info("user provisioned", "user_id", id.String(), "role", r.String())
	return id, nil
}
