//go:build unit

package commands_test

import (
	"context"
	"testing"
	"time"

	"hotel-booking/internal/domain/inventory"
	"hotel-booking/internal/domain/user"
	"hotel-booking/internal/handler/dto/request"
	"hotel-booking/internal/infra"
	"hotel-booking/internal/pkg/errs"
	"hotel-booking/internal/pkg/jwt"
	"hotel-booking/internal/pkg/password"
	"hotel-booking/internal/usecase/commands"
	"hotel-booking/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserRow struct {
	view queries.AuthorizedUserView
	hash string
}

type fakeUserReadStore struct {
	rows map[string]*fakeUserRow
}

func (f *fakeUserReadStore) add(t *testing.T, email string, role user.Role, active bool) uuid.UUID {
	t.Helper()
	hash, err := password.HashPassword("password123")
	require.NoError(t, err)
	id := uuid.New()
	f.rows[email] = &fakeUserRow{
		view: queries.AuthorizedUserView{ID: id, Email: email, Role: string(role), IsActive: active},
		hash: hash,
	}
	return id
}

func (f *fakeUserReadStore) FindByID(_ context.Context, id uuid.UUID) (*queries.AuthorizedUserView, error) {
	for _, row := range f.rows {
		if row.view.ID == id {
			v := row.view
			return &v, nil
		}
	}
	return nil, infra.NewRepoErr(infra.KindNotFound, "user not found")
}

func (f *fakeUserReadStore) FindByEmail(_ context.Context, email string) (*queries.AuthorizedUserView, string, error) {
	row, ok := f.rows[email]
	if !ok {
		return nil, "", infra.NewRepoErr(infra.KindNotFound, "user not found")
	}
	v := row.view
	return &v, row.hash, nil
}

func newAuthFixture(t *testing.T) (commands.AuthCommands, *fakeUserReadStore, jwt.Service) {
	t.Helper()
	store := newMemStore(map[inventory.RoomType]int{inventory.RoomStandard: 1})
	users := &fakeUserReadStore{rows: map[string]*fakeUserRow{}}
	tokens := jwt.NewService("test-jwt-secret", 15*time.Minute, 168*time.Hour)
	return commands.NewAuthCommands(store, users, tokens), users, tokens
}

func TestAuthCommands_Login(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		password string
		errIs    error
	}{
		{name: "admin", email: "manager@example.com", password: "password123"},
		{name: "email is case-insensitive", email: "Manager@Example.COM", password: "password123"},
		{name: "unknown email", email: "ghost@example.com", password: "password123", errIs: commands.ErrInvalidCredentials},
		{name: "wrong password", email: "manager@example.com", password: "password999", errIs: commands.ErrInvalidCredentials},
		{name: "inactive account", email: "retired@example.com", password: "password123", errIs: commands.ErrUserInactive},
		{name: "inactive account with wrong password", email: "retired@example.com", password: "password999", errIs: commands.ErrInvalidCredentials},
		{name: "malformed email", email: "not-an-email", password: "password123", errIs: commands.ErrAuthenticationFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth, users, tokens := newAuthFixture(t)
			adminID := users.add(t, "manager@example.com", user.RoleAdmin, true)
			users.add(t, "retired@example.com", user.RoleStaff, false)

			res, err := auth.Login(ctx, request.LoginRequest{Email: tt.email, Password: tt.password})
			if tt.errIs != nil {
				require.Error(t, err)
				assert.True(t, errs.Is(err, tt.errIs), "got %v", err)
				assert.Nil(t, res)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, adminID, res.UserID)
			assert.Equal(t, user.RoleAdmin, res.Role)

			claims, err := tokens.ValidateToken(res.TokenPair.AccessToken)
			require.NoError(t, err)
			assert.Equal(t, jwt.TokenTypeAccess, claims.TokenType)
			assert.Equal(t, adminID, claims.UserID)
		})
	}
}

func TestAuthCommands_RefreshToken(t *testing.T) {
	ctx := context.Background()

	t.Run("role is re-read from the store", func(t *testing.T) {
		auth, users, tokens := newAuthFixture(t)
		id := users.add(t, "desk@example.com", user.RoleStaff, true)

		res, err := auth.Login(ctx, request.LoginRequest{Email: "desk@example.com", Password: "password123"})
		require.NoError(t, err)

		users.rows["desk@example.com"].view.Role = string(user.RoleAdmin)

		pair, err := auth.RefreshToken(ctx, res.TokenPair.RefreshToken)
		require.NoError(t, err)
		claims, err := tokens.ValidateToken(pair.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, id, claims.UserID)
		assert.Equal(t, string(user.RoleAdmin), claims.Role)
	})

	t.Run("deactivated after login", func(t *testing.T) {
		auth, users, _ := newAuthFixture(t)
		users.add(t, "desk@example.com", user.RoleStaff, true)

		res, err := auth.Login(ctx, request.LoginRequest{Email: "desk@example.com", Password: "password123"})
		require.NoError(t, err)
		users.rows["desk@example.com"].view.IsActive = false

		_, err = auth.RefreshToken(ctx, res.TokenPair.RefreshToken)
		require.Error(t, err)
		assert.True(t, errs.Is(err, commands.ErrUserInactive))
	})

	t.Run("deleted after login", func(t *testing.T) {
		auth, users, _ := newAuthFixture(t)
		users.add(t, "desk@example.com", user.RoleStaff, true)

		res, err := auth.Login(ctx, request.LoginRequest{Email: "desk@example.com", Password: "password123"})
		require.NoError(t, err)
		delete(users.rows, "desk@example.com")

		_, err = auth.RefreshToken(ctx, res.TokenPair.RefreshToken)
		require.Error(t, err)
		assert.True(t, errs.Is(err, commands.ErrUserNotFound))
	})

	t.Run("access token is not a refresh token", func(t *testing.T) {
		auth, users, _ := newAuthFixture(t)
		users.add(t, "desk@example.com", user.RoleStaff, true)

		res, err := auth.Login(ctx, request.LoginRequest{Email: "desk@example.com", Password: "password123"})
		require.NoError(t, err)

		_, err = auth.RefreshToken(ctx, res.TokenPair.AccessToken)
		require.Error(t, err)
		assert.True(t, errs.Is(err, commands.ErrTokenValidation))
	})

	t.Run("garbage", func(t *testing.T) {
		auth, _, _ := newAuthFixture(t)
		_, err := auth.RefreshToken(ctx, "not.a.token")
		require.Error(t, err)
		assert.True(t, errs.Is(err, commands.ErrTokenValidation))
	})
}
