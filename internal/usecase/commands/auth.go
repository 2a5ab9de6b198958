package commands

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"hotel-booking/internal/domain/user"
	reqdto "hotel-booking/internal/handler/dto/request"
	"hotel-booking/internal/infra"
	"hotel-booking/internal/pkg/errs"
	"hotel-booking/internal/pkg/jwt"
	"hotel-booking/internal/pkg/password"
	"hotel-booking/internal/usecase/queries"
	"hotel-booking/internal/usecase/shared"
)

var (
	ErrUserNotFound         = errs.New("user not found")
	ErrInvalidCredentials   = errs.New("invalid credentials")
	ErrUserInactive         = errs.New("user inactive")
	ErrAuthenticationFailed = errs.New("authentication failed")
	ErrTokenGeneration      = errs.New("token generation failed")
	ErrTokenValidation      = errs.New("token validation failed")
)

type LoginResult struct {
	UserID    uuid.UUID
	Role      user.Role
	TokenPair *TokenPair
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// AuthCommands signs staff and admins into the dashboard. Guests never log in.
type AuthCommands interface {
	Login(ctx context.Context, req reqdto.LoginRequest) (*LoginResult, error)
	RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error)
}

type authCommandsImpl struct {
	uow        shared.UnitOfWork
	readStore  queries.UserReadStore
	jwtService jwt.Service
}

func NewAuthCommands(uow shared.UnitOfWork, readStore queries.UserReadStore, jwtService jwt.Service) AuthCommands {
	return &authCommandsImpl{
		uow:        uow,
		readStore:  readStore,
		jwtService: jwtService,
	}
}

func (a *authCommandsImpl) Login(ctx context.Context, req reqdto.LoginRequest) (*LoginResult, error) {
	creds, err := req.ToDomain()
	if err != nil {
		return nil, errs.Mark(err, ErrAuthenticationFailed)
	}

	account, err := a.authenticate(ctx, creds)
	if err != nil {
		return nil, err
	}

	pair, err := a.issue(account.ID, account.Role)
	if err != nil {
		return nil, err
	}

	err = a.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Users().UpdateLastLogin(ctx, tx.DB(), account.ID)
	})
	if err != nil {
		// the tokens are already issued; a stale last_login is acceptable
		slog.Warn("failed to update last login", "user_id", account.ID.String(), "error", err.Error())
	}

	slog.Info("staff login", "user_id", account.ID.String(), "role", string(account.Role))
	return &LoginResult{UserID: account.ID, Role: account.Role, TokenPair: pair}, nil
}

// RefreshToken re-reads the account so a deactivation or role change applies
// at the next refresh instead of when the refresh token expires.
func (a *authCommandsImpl) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := a.jwtService.ValidateToken(refreshToken)
	if err != nil {
		return nil, errs.Mark(err, ErrTokenValidation)
	}
	if claims.TokenType != jwt.TokenTypeRefresh {
		return nil, ErrTokenValidation
	}

	view, err := a.readStore.FindByID(ctx, claims.UserID)
	if err != nil || view == nil {
		return nil, ErrUserNotFound
	}
	if !view.IsActive {
		return nil, ErrUserInactive
	}
	role, err := user.NewRole(view.Role)
	if err != nil {
		return nil, errs.Mark(err, ErrTokenValidation)
	}

	return a.issue(claims.UserID, role)
}

type authenticatedUser struct {
	ID   uuid.UUID
	Role user.Role
}

// authenticate answers ErrInvalidCredentials for both an unknown email and a
// wrong password, and spends the same bcrypt time on each.
func (a *authCommandsImpl) authenticate(ctx context.Context, creds user.Credentials) (*authenticatedUser, error) {
	view, hash, err := a.readStore.FindByEmail(ctx, creds.Email().Value())
	if err != nil || view == nil {
		password.CompareDummy(creds.Password().Value())
		if err != nil && !infra.IsKind(err, infra.KindNotFound) {
			slog.Error("user lookup failed during login", "error", err.Error())
		}
		return nil, ErrInvalidCredentials
	}

	if err := password.ComparePassword(hash, creds.Password().Value()); err != nil {
		if !errs.Is(err, password.ErrMismatch) {
			slog.Error("stored password hash unusable", "user_id", view.ID.String(), "error", err.Error())
		}
		return nil, ErrInvalidCredentials
	}

	// checked after the password so an inactive account is not revealed to guessers
	if !view.IsActive {
		return nil, ErrUserInactive
	}

	role, err := user.NewRole(view.Role)
	if err != nil {
		return nil, errs.Mark(err, ErrAuthenticationFailed)
	}
	return &authenticatedUser{ID: view.ID, Role: role}, nil
}

func (a *authCommandsImpl) issue(id uuid.UUID, role user.Role) (*TokenPair, error) {
	access, err := a.jwtService.GenerateAccessToken(id, role)
	if err != nil {
		return nil, errs.Mark(err, ErrTokenGeneration)
	}
	refresh, err := a.jwtService.GenerateRefreshToken(id, role)
	if err != nil {
		return nil, errs.Mark(err, ErrTokenGeneration)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
