package cookie

import (
	"net/http"
	"strings"
	"time"

	"hotel-booking/internal/pkg/config"

	"github.com/gin-gonic/gin"
)

const (
	AccessTokenCookieName  = "access_token"
	RefreshTokenCookieName = "refresh_token"
)

// The refresh cookie is only sent back to the auth endpoints; the access
// cookie goes with every API call from the staff dashboard.
const (
	accessTokenPath  = "/api"
	refreshTokenPath = "/api/auth"
)

func SetTokenCookies(c *gin.Context, cfg config.CookieConfig, accessToken, refreshToken string, accessExpiry, refreshExpiry time.Duration) {
	write(c, cfg, AccessTokenCookieName, accessToken, accessTokenPath, maxAge(accessExpiry))
	write(c, cfg, RefreshTokenCookieName, refreshToken, refreshTokenPath, maxAge(refreshExpiry))
}

func ClearTokenCookies(c *gin.Context, cfg config.CookieConfig) {
	write(c, cfg, AccessTokenCookieName, "", accessTokenPath, -1)
	write(c, cfg, RefreshTokenCookieName, "", refreshTokenPath, -1)
}

func GetAccessToken(c *gin.Context) string {
	token, _ := c.Cookie(AccessTokenCookieName)
	return token
}

func GetRefreshToken(c *gin.Context) string {
	token, _ := c.Cookie(RefreshTokenCookieName)
	return token
}

func write(c *gin.Context, cfg config.CookieConfig, name, value, path string, age int) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		Domain:   cfg.Domain,
		MaxAge:   age,
		Secure:   cfg.Secure,
		HttpOnly: true,
		SameSite: sameSite(cfg.SameSite),
	})
}

func maxAge(d time.Duration) int {
	if d <= 0 {
		return -1
	}
	return int(d.Seconds())
}

func sameSite(v string) http.SameSite {
	switch strings.ToLower(v) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
