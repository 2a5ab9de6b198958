//go:build unit || e2e

// Package authtest signs staff in against a running router, or mints tokens
// directly when a test needs one the login flow cannot produce.
package authtest

import (
	"net/http"
	"testing"
	"time"

	"hotel-booking/internal/domain/user"
	"hotel-booking/internal/handler/dto/request"
	"hotel-booking/internal/pkg/config"
	"hotel-booking/internal/pkg/jwt"
	"hotel-booking/tests/common/dbtest"
	"hotel-booking/tests/common/httptest"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const (
	loginPath = "/api/auth/login"

	// DefaultPassword is the plaintext behind dbtest's seeded hash.
	DefaultPassword = "password123"
)

// LoginUser returns the access token from the login cookie.
func LoginUser(t *testing.T, router *gin.Engine, email, password string) string {
	t.Helper()

	w := httptest.PerformRequest(t, router, http.MethodPost, loginPath,
		request.LoginRequest{Email: email, Password: password}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	access := httptest.ExtractCookie(w, "access_token")
	require.NotNil(t, access, "login did not set the access_token cookie")
	require.NotEmpty(t, access.Value)
	return access.Value
}

func CreateAndLogin(t *testing.T, db dbtest.DBLike, router *gin.Engine, email, role string) string {
	t.Helper()
	dbtest.CreateTestUser(t, db, email, role)
	return LoginUser(t, router, email, DefaultPassword)
}

// JWTHelper signs with the same secret as the app under test.
type JWTHelper struct {
	secret  string
	refresh time.Duration
}

func NewJWTHelper(cfg config.JWTConfig) *JWTHelper {
	refresh, err := time.ParseDuration(cfg.RefreshTokenDuration)
	if err != nil {
		refresh = 24 * time.Hour
	}
	return &JWTHelper{secret: cfg.Secret, refresh: refresh}
}

// CreateExpiredToken returns an access token that has already expired.
func (h *JWTHelper) CreateExpiredToken(t *testing.T, userID uuid.UUID, role user.Role) string {
	t.Helper()
	token := h.sign(t, time.Millisecond, userID, role)
	time.Sleep(10 * time.Millisecond)
	return token
}

func (h *JWTHelper) sign(t *testing.T, ttl time.Duration, userID uuid.UUID, role user.Role) string {
	t.Helper()
	token, err := jwt.NewService(h.secret, ttl, h.refresh).GenerateAccessToken(userID, role)
	require.NoError(t, err)
	return token
}
