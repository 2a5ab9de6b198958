//go:build unit

package user_test

import (
	"testing"

	"hotel-booking/internal/domain/user"
	"hotel-booking/tests/common/builder"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	t.Run("正常系: 有効なアカウントが作成される", func(t *testing.T) {
		b := builder.NewUserBuilder()
		got, err := b.BuildDomain()
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, got.ID())
		assert.Equal(t, "manager@hotel.example", got.Email().Value())
		assert.Equal(t, user.RoleAdmin, got.Role())
		assert.True(t, got.IsActive())
		assert.Equal(t, b.Now, got.CreatedAt())
	})

	tests := []struct {
		name      string
		mutate    func(*builder.UserBuilder)
		errIs     error
		wantEmail string
	}{
		{
			name:      "大文字と空白は正規化される",
			mutate:    func(b *builder.UserBuilder) { b.WithEmail("  Front.Desk@Hotel.Example ") },
			wantEmail: "front.desk@hotel.example",
		},
		{
			name:   "空のメールアドレスNG",
			mutate: func(b *builder.UserBuilder) { b.WithEmail("") },
			errIs:  user.ErrInvalidEmail,
		},
		{
			name:   "@なしNG",
			mutate: func(b *builder.UserBuilder) { b.WithEmail("frontdesk.hotel.example") },
			errIs:  user.ErrInvalidEmail,
		},
		{
			name:      "staff ロールOK",
			mutate:    func(b *builder.UserBuilder) { b.AsStaff() },
			wantEmail: "manager@hotel.example",
		},
		{
			name:      "ロールの大文字は正規化される",
			mutate:    func(b *builder.UserBuilder) { b.WithRole(" ADMIN ") },
			wantEmail: "manager@hotel.example",
		},
		{
			name:   "guest ロールNG",
			mutate: func(b *builder.UserBuilder) { b.WithRole("guest") },
			errIs:  user.ErrInvalidRole,
		},
		{
			name:   "パスワードハッシュなしNG",
			mutate: func(b *builder.UserBuilder) { b.PasswordHash = "" },
			errIs:  user.ErrMissingPasswordHash,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := builder.NewUserBuilder().With(tt.mutate).BuildDomain()
			if tt.errIs != nil {
				require.ErrorIs(t, err, tt.errIs)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantEmail, got.Email().Value())
		})
	}
}

func TestRole_Satisfies(t *testing.T) {
	tests := []struct {
		have user.Role
		min  user.Role
		want bool
	}{
		{have: user.RoleAdmin, min: user.RoleStaff, want: true},
		{have: user.RoleAdmin, min: user.RoleAdmin, want: true},
		{have: user.RoleStaff, min: user.RoleStaff, want: true},
		{have: user.RoleStaff, min: user.RoleAdmin, want: false},
		{have: user.Role("guest"), min: user.RoleStaff, want: false},
		{have: user.RoleAdmin, min: user.Role("owner"), want: false},
	}
	for _, tt := range tests {
		t.Run(string(tt.have)+">="+string(tt.min), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.have.Satisfies(tt.min))
		})
	}
}

func TestCredentials(t *testing.T) {
	type view struct{ Email, Password string }

	tests := []struct {
		name     string
		email    string
		password string
		want     view
		errIs    error
	}{
		{name: "valid", email: "Staff@Hotel.Example", password: "password", want: view{"staff@hotel.example", "password"}},
		{name: "password 7 chars", email: "staff@hotel.example", password: "passwor", errIs: user.ErrPasswordTooWeak},
		{name: "invalid email", email: "staff", password: "password", errIs: user.ErrInvalidEmail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			creds, err := user.NewCredentials(tt.email, tt.password)
			if tt.errIs != nil {
				require.ErrorIs(t, err, tt.errIs)
				return
			}
			require.NoError(t, err)
			got := view{creds.Email().Value(), creds.Password().Value()}
			if diff := cmp.Diff(tt.want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("credentials mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
