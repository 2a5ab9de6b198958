package uow

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"hotel-booking/internal/infra/db"
	"hotel-booking/internal/infra/repository"
	"hotel-booking/internal/pkg/errs"
	"hotel-booking/internal/usecase/shared"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pgErrCodeSerializationFailure = "40001"
	pgErrCodeDeadlockDetected     = "40P01"
	pgErrCodeLockNotAvailable     = "55P03"
)

var (
	errTransactionBegin   = errs.New("failed to begin transaction")
	errTransactionCommit  = errs.New("failed to commit transaction")
	errMaxRetriesExceeded = errs.New("transaction failed after max retries")
)

type PostgresUoW struct {
	pool        *pgxpool.Pool
	maxRetries  int
	baseDelay   time.Duration
	lockTimeout time.Duration
}

func NewPostgresUoW(pool *pgxpool.Pool) shared.UnitOfWork {
	return &PostgresUoW{
		pool:        pool,
		maxRetries:  3,
		baseDelay:   50 * time.Millisecond,
		lockTimeout: 5 * time.Second,
	}
}

// Within runs fn in a ReadCommitted transaction. Row locks taken by the stores
// (FOR UPDATE, conditional UPDATE) carry the consistency guarantees; a lock
// wait longer than lockTimeout aborts the attempt and it is retried like a
// deadlock. fn may run more than once and must reset anything it captures.
func (u *PostgresUoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	var lastErr error
	for attempt := 0; attempt <= u.maxRetries; attempt++ {
		err := u.attempt(ctx, fn)
		if err == nil {
			return nil
		}
		lastErr = err
		if !isRetryableError(err) {
			return err
		}
		if attempt == u.maxRetries {
			break
		}

		wait := backoff(attempt, u.baseDelay)
		slog.Warn("retrying booking transaction",
			"attempt", attempt+1,
			"wait_ms", wait.Milliseconds(),
			"error", err.Error())

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}

	slog.Error("transaction failed after max retries",
		"attempts", u.maxRetries+1,
		"error", lastErr.Error())
	return errs.Mark(lastErr, errMaxRetriesExceeded)
}

// attempt owns one transaction. Rollback also runs when fn panics, so a
// half-applied booking never commits.
func (u *PostgresUoW) attempt(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) (err error) {
	pgxTx, err := u.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return errs.Mark(err, errTransactionBegin)
	}
	defer func() {
		if err == nil {
			return
		}
		if rbErr := pgxTx.Rollback(context.WithoutCancel(ctx)); rbErr != nil && !errs.Is(rbErr, pgx.ErrTxClosed) {
			slog.Warn("rollback failed", "error", rbErr.Error())
		}
	}()
	defer func() {
		if rec := recover(); rec != nil {
			_ = pgxTx.Rollback(context.WithoutCancel(ctx))
			panic(rec)
		}
	}()

	if u.lockTimeout > 0 {
		stmt := fmt.Sprintf("SET LOCAL lock_timeout = %d", u.lockTimeout.Milliseconds())
		if _, err = pgxTx.Exec(ctx, stmt); err != nil {
			return errs.Wrap(err, "failed to set lock timeout")
		}
	}

	if err = fn(ctx, &pgTx{dbtx: pgxTx}); err != nil {
		return err
	}
	if err = pgxTx.Commit(ctx); err != nil {
		return errs.Mark(err, errTransactionCommit)
	}
	return nil
}

func (u *PostgresUoW) WithDB(ctx context.Context, fn func(ctx context.Context, db db.DBTX) error) error {
	return fn(ctx, u.pool)
}

func backoff(attempt int, base time.Duration) time.Duration {
	wait := base << attempt
	return wait + rand.N(wait/5+1)
}

func isRetryableError(err error) bool {
	var pgErr *pgconn.PgError
	if !errs.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case pgErrCodeSerializationFailure, pgErrCodeDeadlockDetected, pgErrCodeLockNotAvailable:
		return true
	default:
		return false
	}
}

// pgTx hands out stores bound to one transaction, built on first use.
type pgTx struct {
	dbtx db.DBTX

	bookings  shared.BookingRepository
	inventory shared.InventoryRepository
	guests    shared.GuestRepository
	events    shared.EventRepository
	users     shared.UserRepository
}

func (t *pgTx) DB() db.DBTX {
	return t.dbtx
}

func (t *pgTx) Bookings() shared.BookingRepository {
	if t.bookings == nil {
		t.bookings = repository.NewBookingRepository(t.dbtx)
	}
	return t.bookings
}

func (t *pgTx) Inventory() shared.InventoryRepository {
	if t.inventory == nil {
		t.inventory = repository.NewInventoryRepository(t.dbtx)
	}
	return t.inventory
}

func (t *pgTx) Guests() shared.GuestRepository {
	if t.guests == nil {
		t.guests = repository.NewGuestRepository(t.dbtx)
	}
	return t.guests
}

func (t *pgTx) Events() shared.EventRepository {
	if t.events == nil {
		t.events = repository.NewEventRepository(t.dbtx)
	}
	return t.events
}

func (t *pgTx) Users() shared.UserRepository {
	if t.users == nil {
		t.users = repository.NewUserRepository(t.dbtx)
	}
	return t.users
}
