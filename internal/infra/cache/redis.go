package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"hotel-booking/internal/domain/inventory"
	"hotel-booking/internal/pkg/config"
	"hotel-booking/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const inventoryKey = "cache:inventory"

// ErrLockLost means the lock expired, possibly to another holder, before release.
var ErrLockLost = errors.New("payment lock expired before release")

func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
}

// releaseLockScript deletes the key only while it still holds the caller's
// token. A holder whose TTL lapsed must not drop the next holder's lock.
var releaseLockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// PaymentLocker is a SETNX lock per gateway order id. The TTL bounds how long a
// crashed holder can block retries.
type PaymentLocker struct {
	client redis.Cmdable
}

func NewPaymentLocker(client redis.Cmdable) *PaymentLocker {
	return &PaymentLocker{client: client}
}

func (l *PaymentLocker) Acquire(ctx context.Context, orderID string, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, paymentLockKey(orderID), token, ttl).Result()
	if err != nil || !ok {
		return "", false, err
	}
	return token, true, nil
}

// Release reports whether the lock was still ours; a false result means it
// expired while the callback ran.
func (l *PaymentLocker) Release(ctx context.Context, orderID, token string) error {
	n, err := releaseLockScript.Run(ctx, l.client, []string{paymentLockKey(orderID)}, token).Int()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrLockLost
	}
	return nil
}

func paymentLockKey(orderID string) string {
	return "lock:payment:" + orderID
}

// InventoryCache fronts the inventory read store for the public availability
// endpoint. Redis failures fall through to the database.
type InventoryCache struct {
	client redis.Cmdable
	next   queries.InventoryReadStore
	ttl    time.Duration
	logger *slog.Logger
}

func NewInventoryCache(client redis.Cmdable, next queries.InventoryReadStore, ttl time.Duration, logger *slog.Logger) *InventoryCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &InventoryCache{client: client, next: next, ttl: ttl, logger: logger}
}

func (c *InventoryCache) List(ctx context.Context) ([]*queries.InventoryView, error) {
	if c.ttl <= 0 {
		return c.next.List(ctx)
	}

	data, err := c.client.Get(ctx, inventoryKey).Bytes()
	switch {
	case err == nil:
		var views []*queries.InventoryView
		if jsonErr := json.Unmarshal(data, &views); jsonErr == nil {
			return views, nil
		}
		c.logger.Warn("discarding undecodable inventory cache entry")
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("inventory cache read failed", "error", err.Error())
	}

	views, err := c.next.List(ctx)
	if err != nil {
		return nil, err
	}
	if payload, jsonErr := json.Marshal(views); jsonErr == nil {
		if setErr := c.client.Set(ctx, inventoryKey, payload, c.ttl).Err(); setErr != nil {
			c.logger.Warn("inventory cache write failed", "error", setErr.Error())
		}
	}
	return views, nil
}

// Get always reads through; single room lookups back admin screens.
func (c *InventoryCache) Get(ctx context.Context, roomType inventory.RoomType) (*queries.InventoryView, error) {
	return c.next.Get(ctx, roomType)
}

func (c *InventoryCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, inventoryKey).Err()
}
