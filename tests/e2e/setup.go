//go:build e2e

package e2e

import (
	"context"
	"strings"
	"testing"
	"time"

	"hotel-booking/cmd/bootstrap"
	"hotel-booking/cmd/bootstrap/components"
	"hotel-booking/internal/infra/db"
	"hotel-booking/internal/infra/payment"
	"hotel-booking/internal/pkg/config"
	"hotel-booking/internal/usecase/commands"
	"hotel-booking/migrations"
	"hotel-booking/tests/common/dbtest"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/fx"
)

// SharedSuite boots the whole application against fresh containers. Every
// subtest starts from the seeded inventory with an empty Redis.
type SharedSuite struct {
	suite.Suite
	Router *gin.Engine
	DB     *pgxpool.Pool
	Redis  *redis.Client
	Config config.Config
	Signer *payment.Signer
	// background workers are off, so tests drive hold expiry themselves
	Holds commands.HoldCommands
}

func (s *SharedSuite) SetupSuite() {
	t := s.T()
	gin.SetMode(gin.TestMode)

	pg, rd := startContainers(t)
	dbCfg := createDatabase(t, pg)
	cfg := testConfig(dbCfg, config.RedisConfig{
		Addr: rd.addr(),
		// suites run as separate processes; separate DB numbers keep their keys apart
		DB: int(uuid.New().ID() % 16),
	})

	pool, _, err := db.Connect(dbCfg)
	require.NoError(t, err, "データベース接続に失敗")
	t.Cleanup(pool.Close)
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	_, err = migrations.Apply(ctx, pool)
	require.NoError(t, err, "マイグレーションに失敗")
	require.NoError(t, dbtest.SeedReferenceData(pool), "在庫データの投入に失敗")

	s.DB = pool
	s.Config = cfg
	s.Signer = payment.NewSigner(cfg.Gateway.KeySecret)
	s.startApp(t, pool, cfg)
}

func (s *SharedSuite) SetupSubTest() {
	require.NoError(s.T(), dbtest.ResetDB(s.DB), "DBのリセットに失敗")
	require.NoError(s.T(), s.Redis.FlushDB(s.T().Context()).Err(), "Redisのリセットに失敗")
}

// startApp wires the production modules, swapping only the pool, the config
// and the payment gateway.
func (s *SharedSuite) startApp(t *testing.T, pool *pgxpool.Pool, cfg config.Config) {
	t.Helper()

	app := fx.New(
		fx.Supply(pool, cfg),
		fx.Provide(
			func() *gin.Engine { return gin.New() },
			fx.Annotate(NewStubGateway, fx.As(new(commands.PaymentGateway))),
			fx.Annotate(bootstrap.NewSigner, fx.As(new(commands.SignatureVerifier))),
		),
		bootstrap.LoggerModule,
		bootstrap.JWTModule,
		bootstrap.RedisModule,
		// the kafka writer dials lazily and nothing publishes while workers are off
		bootstrap.MessagingModule,
		components.PersistenceModule,
		components.UseCaseModule,
		components.HandlerModule,
		bootstrap.WorkerModule,
		fx.Populate(&s.Router, &s.Redis, &s.Holds),
		fx.NopLogger,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	require.NoError(t, app.Start(ctx), "アプリケーションの起動に失敗")

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := app.Stop(ctx); err != nil {
			t.Logf("fx stop: %v", err)
		}
	})
}

// createDatabase gives each test process its own database on the shared
// container and drops it afterwards.
func createDatabase(t *testing.T, pg endpoint) config.DBConfig {
	t.Helper()

	name := "booking_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	admin, err := pgxpool.New(ctx, adminDSN(pg))
	require.NoError(t, err)
	defer admin.Close()

	// CREATE DATABASE fails while another process is copying template1
	var createErr error
	for attempt := range 5 {
		if attempt > 0 {
			time.Sleep(time.Duration(attempt) * 500 * time.Millisecond)
		}
		if _, createErr = admin.Exec(ctx, "CREATE DATABASE "+name); createErr == nil {
			break
		}
		t.Logf("CREATE DATABASE attempt %d: %v", attempt+1, createErr)
	}
	require.NoError(t, createErr, "テスト用データベースの作成に失敗")

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		admin, err := pgxpool.New(ctx, adminDSN(pg))
		if err != nil {
			return
		}
		defer admin.Close()
		_, _ = admin.Exec(ctx, "DROP DATABASE IF EXISTS "+name+" WITH (FORCE)")
	})

	return config.DBConfig{
		Host:     pg.host,
		Port:     pg.port.Port(),
		User:     pgUser,
		Password: pgPassword,
		DBName:   name,
		SSLMode:  "disable",
		TimeZone: "Asia/Kolkata",
		MaxConns: 20,
	}
}

func testConfig(dbCfg config.DBConfig, redisCfg config.RedisConfig) config.Config {
	cfg := config.NewTestConfig()
	cfg.DB = dbCfg
	cfg.Redis = redisCfg
	cfg.Booking.InventoryCacheTTL = time.Minute
	cfg.Booking.WorkersEnabled = false
	return cfg
}
