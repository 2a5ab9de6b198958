package components

import (
	"log/slog"

	"hotel-booking/internal/infra/cache"
	"hotel-booking/internal/infra/db"
	"hotel-booking/internal/infra/readstore"
	"hotel-booking/internal/infra/uow"
	"hotel-booking/internal/pkg/config"
	"hotel-booking/internal/usecase/commands"
	"hotel-booking/internal/usecase/queries"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

// Write-side repositories are not provided here: they are bound to a
// transaction and handed out by the UnitOfWork.
var PersistenceModule = fx.Module("persistence",
	baseOption,
	readstoreModule,
	cacheModule,
)

var baseOption = fx.Provide(
	NewDBTX,
	uow.NewPostgresUoW,
)

var readstoreModule = fx.Module("persistence/readstore",
	fx.Provide(
		fx.Annotate(
			readstore.NewBookingReadStore,
			fx.As(new(queries.BookingReadStore)),
		),
		fx.Annotate(
			readstore.NewGuestReadStore,
			fx.As(new(queries.GuestReadStore)),
		),
		fx.Annotate(
			readstore.NewUserReadStore,
			fx.As(new(queries.UserReadStore)),
		),
		// wrapped by the inventory cache below
		readstore.NewInventoryReadStore,
	),
)

var cacheModule = fx.Module("persistence/cache",
	fx.Provide(
		fx.Annotate(
			NewInventoryCache,
			fx.As(new(queries.InventoryReadStore)),
			fx.As(new(commands.InventoryCache)),
		),
		fx.Annotate(
			NewPaymentLocker,
			fx.As(new(commands.PaymentLocker)),
		),
	),
)

func NewDBTX(pool *pgxpool.Pool) db.DBTX {
	return pool
}

func NewInventoryCache(client *redis.Client, store *readstore.InventoryReadStore, cfg config.Config, logger *slog.Logger) *cache.InventoryCache {
	return cache.NewInventoryCache(client, store, cfg.Booking.InventoryCacheTTL, logger)
}

func NewPaymentLocker(client *redis.Client) *cache.PaymentLocker {
	return cache.NewPaymentLocker(client)
}
