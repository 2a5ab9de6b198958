package bootstrap

import (
	"context"
	"time"

	"hotel-booking/internal/infra/db"
	"hotel-booking/internal/pkg/config"
	"hotel-booking/internal/pkg/errs"
	"hotel-booking/internal/pkg/jwt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var ConfigModule = fx.Module("config",
	fx.Provide(config.LoadConfig),
)

var DBModule = fx.Module("db",
	fx.Provide(NewDB),
)

var JWTModule = fx.Module("jwt",
	fx.Provide(NewJWTService),
)

// NewDB opens the pool at construction so a bad DSN fails startup instead of
// the first booking.
func NewDB(lc fx.Lifecycle, cfg config.Config) (*pgxpool.Pool, error) {
	pool, closePool, err := db.Connect(cfg.DB)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.StopHook(func(context.Context) error {
		closePool()
		return nil
	}))
	return pool, nil
}

func NewJWTService(cfg config.Config) (jwt.Service, error) {
	if cfg.JWT.Secret == "" {
		return nil, errs.New("JWT_SECRET must be set")
	}
	access, err := time.ParseDuration(cfg.JWT.AccessTokenDuration)
	if err != nil {
		return nil, errs.Wrapf(err, "invalid access token duration %q", cfg.JWT.AccessTokenDuration)
	}
	refresh, err := time.ParseDuration(cfg.JWT.RefreshTokenDuration)
	if err != nil {
		return nil, errs.Wrapf(err, "invalid refresh token duration %q", cfg.JWT.RefreshTokenDuration)
	}
	if refresh <= access {
		return nil, errs.Newf("refresh token duration %s must exceed access token duration %s", refresh, access)
	}
	return jwt.NewService(cfg.JWT.Secret, access, refresh), nil
}
