package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"hotel-booking/internal/domain/booking"
	"hotel-booking/internal/domain/guest"
	"hotel-booking/internal/domain/inventory"
	reqdto "hotel-booking/internal/handler/dto/request"
	"hotel-booking/internal/infra"
	"hotel-booking/internal/pkg/clock"
	"hotel-booking/internal/pkg/config"
	"hotel-booking/internal/pkg/errs"
	"hotel-booking/internal/usecase/queries"
	"hotel-booking/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrRoomUnavailable           = errs.New("room unavailable")
	ErrBookingNotFound           = errs.New("booking not found")
	ErrDuplicateBookingID        = errs.New("duplicate booking id")
	ErrPaymentVerificationFailed = errs.New("payment verification failed")
	ErrGatewayUnavailable        = errs.New("payment gateway unavailable")
	ErrStoreUnavailable          = errs.New("store unavailable")
	ErrNoRoomsAvailable          = errs.New("no rooms available")
	ErrUnknownRoomType           = errs.New("unknown room type")
	ErrOrderMismatch             = errs.New("gateway order does not belong to booking")
	ErrPaymentInProgress         = errs.New("payment verification already in progress")
	ErrInvalidBooking            = errs.New("invalid booking")
	ErrBookingCancelled          = errs.New("booking was cancelled")
)

// businessErrors pass through the transaction boundary untouched; anything
// else coming out of a transaction is a store failure.
var businessErrors = []error{
	ErrRoomUnavailable,
	ErrBookingNotFound,
	ErrDuplicateBookingID,
	ErrNoRoomsAvailable,
	ErrUnknownRoomType,
	ErrOrderMismatch,
	ErrInvalidBooking,
	ErrBookingCancelled,
}

const (
	maxReferenceAttempts        = 3
	paymentFailedMessage        = "Payment verification failed"
	paymentVerifiedMessage      = "Payment verified successfully"
	paymentAlreadyVerifiedMsg   = "Payment already verified"
	gatewayNoteBookingID        = "bookingId"
	gatewayNoteGuestEmail       = "guestEmail"
	defaultGatewayCurrency      = "INR"
	defaultHoldTTL              = 15 * time.Minute
	defaultPaymentLockTTL       = 30 * time.Second
	releaseAfterFailureDeadline = 10 * time.Second
)

type CreateOrderResult struct {
	Order     *GatewayOrder
	BookingID string
	Booking   *queries.BookingView
}

// VerificationResult is returned for both outcomes of a callback. A rejected
// signature is a result with Success=false, never an error.
type VerificationResult struct {
	Success bool
	Booking *queries.BookingView
	Message string
	Reason  error
}

type BookingSettings struct {
	Currency       string
	HoldTTL        time.Duration
	PaymentLockTTL time.Duration
}

func NewBookingSettings(cfg config.Config) BookingSettings {
	return BookingSettings{
		Currency:       cfg.Gateway.Currency,
		HoldTTL:        cfg.Booking.HoldTTL,
		PaymentLockTTL: cfg.Booking.PaymentLockTTL,
	}
}

func (s BookingSettings) withDefaults() BookingSettings {
	if s.Currency == "" {
		s.Currency = defaultGatewayCurrency
	}
	if s.HoldTTL <= 0 {
		s.HoldTTL = defaultHoldTTL
	}
	if s.PaymentLockTTL <= 0 {
		s.PaymentLockTTL = defaultPaymentLockTTL
	}
	return s
}

// BookingCommands is the only writer of effects that span bookings, inventory
// and guests. Every such effect happens inside one UnitOfWork transaction.
type BookingCommands interface {
	CreateOrder(ctx context.Context, req reqdto.CreateOrderRequest) (*CreateOrderResult, error)
	VerifyPayment(ctx context.Context, req reqdto.VerifyPaymentRequest) (*VerificationResult, error)
	// CancelBooking accepts the internal UUID or the external booking id.
	CancelBooking(ctx context.Context, id string) (*queries.BookingView, error)
	DirectCreate(ctx context.Context, req reqdto.DirectBookingRequest) (*queries.BookingView, error)
}

type bookingCommandsImpl struct {
	uow      shared.UnitOfWork
	gateway  PaymentGateway
	verifier SignatureVerifier
	locker   PaymentLocker
	cache    InventoryCache
	clock    clock.Clock
	settings BookingSettings
}

func NewBookingCommands(
	uow shared.UnitOfWork,
	gateway PaymentGateway,
	verifier SignatureVerifier,
	locker PaymentLocker,
	cache InventoryCache,
	clock clock.Clock,
	settings BookingSettings,
) BookingCommands {
	return &bookingCommandsImpl{
		uow:      uow,
		gateway:  gateway,
		verifier: verifier,
		locker:   locker,
		cache:    cache,
		clock:    clock,
		settings: settings.withDefaults(),
	}
}

func (c *bookingCommandsImpl) CreateOrder(ctx context.Context, req reqdto.CreateOrderRequest) (*CreateOrderResult, error) {
	details, amount, err := req.ToDetails()
	if err != nil {
		return nil, inputErr(err)
	}
	now := c.clock.Now()

	// Tx A: reserve one unit and persist the pending booking.
	var b *booking.Booking
	for attempt := 1; ; attempt++ {
		b, err = booking.NewPending(details, now, c.settings.HoldTTL)
		if err != nil {
			return nil, inputErr(err)
		}
		err = c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
			return c.reserve(ctx, tx, b, now)
		})
		if err == nil {
			break
		}
		retryable := errs.Is(err, ErrDuplicateBookingID) && details.Reference.IsZero()
		if !retryable || attempt == maxReferenceAttempts {
			return nil, storeErr(err, "failed to reserve room")
		}
		slog.Warn("generated booking id collided, regenerating", "booking_id", b.Reference().String(), "attempt", attempt)
	}
	c.invalidateInventory(ctx)

	order, err := c.gateway.CreateOrder(ctx, GatewayOrderRequest{
		AmountMinor: amount,
		Currency:    c.settings.Currency,
		Receipt:     b.Reference().String(),
		Notes: map[string]string{
			gatewayNoteBookingID:  b.Reference().String(),
			gatewayNoteGuestEmail: b.GuestEmail().Value(),
		},
	})
	if err != nil {
		slog.Error("payment gateway order creation failed",
			"booking_id", b.Reference().String(),
			"error", err.Error())
		c.releaseHold(ctx, b.ID())
		return nil, errs.Mark(err, ErrGatewayUnavailable)
	}

	// Tx B: attach the remote order. If this fails the hold stays in place and
	// the sweeper releases it after HoldTTL.
	var view *queries.BookingView
	err = c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		locked, err := tx.Bookings().LockByID(ctx, tx.DB(), b.ID())
		if err != nil {
			return bookingLoadErr(err)
		}
		if err := locked.AttachGatewayOrder(order.ID, c.clock.Now()); err != nil {
			return errs.Wrap(err, "failed to attach gateway order")
		}
		if err := tx.Bookings().Update(ctx, tx.DB(), locked); err != nil {
			return errs.Wrap(err, "failed to save gateway order id")
		}
		if err := c.enqueue(ctx, tx, shared.EventBookingCreated, locked); err != nil {
			return err
		}
		view = queries.BookingViewFromDomain(locked)
		return nil
	})
	if err != nil {
		return nil, storeErr(err, "failed to record gateway order")
	}

	return &CreateOrderResult{
		Order:     order,
		BookingID: view.BookingID,
		Booking:   view,
	}, nil
}

func (c *bookingCommandsImpl) reserve(ctx context.Context, tx shared.Tx, b *booking.Booking, now time.Time) error {
	if _, err := tx.Inventory().Decrement(ctx, tx.DB(), b.RoomType()); err != nil {
		return inventoryErr(err, ErrRoomUnavailable)
	}
	g, err := guestFor(b, now)
	if err != nil {
		return err
	}
	if err := tx.Guests().Ensure(ctx, tx.DB(), g); err != nil {
		return errs.Wrap(err, "failed to ensure guest")
	}
	if err := tx.Bookings().Create(ctx, tx.DB(), b); err != nil {
		return bookingCreateErr(err)
	}
	return nil
}

// releaseHold undoes Tx A after the gateway refused the order. It runs detached
// from the request so a client disconnect cannot strand the unit.
func (c *bookingCommandsImpl) releaseHold(ctx context.Context, id uuid.UUID) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseAfterFailureDeadline)
	defer cancel()

	released := false
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		released = false
		b, err := tx.Bookings().LockByID(ctx, tx.DB(), id)
		if err != nil {
			return err
		}
		if b.Status() != booking.StatusPending {
			return nil
		}
		releasesUnit, err := b.FailPayment(c.clock.Now())
		if err != nil {
			return err
		}
		if releasesUnit {
			if _, err := tx.Inventory().Increment(ctx, tx.DB(), b.RoomType()); err != nil {
				return err
			}
			released = true
		}
		if err := tx.Bookings().Update(ctx, tx.DB(), b); err != nil {
			return err
		}
		return c.enqueue(ctx, tx, shared.EventPaymentFailed, b)
	})
	if err != nil {
		slog.Error("failed to release hold after gateway failure; sweeper will retry",
			"booking_uuid", id.String(),
			"error", err.Error())
		return
	}
	if released {
		c.invalidateInventory(ctx)
	}
}

func (c *bookingCommandsImpl) VerifyPayment(ctx context.Context, req reqdto.VerifyPaymentRequest) (*VerificationResult, error) {
	orderID := strings.TrimSpace(req.GatewayOrderID)
	paymentID := strings.TrimSpace(req.GatewayPaymentID)
	signature := strings.TrimSpace(req.GatewaySignature)
	ref := strings.TrimSpace(req.BookingID)

	unlock, err := c.lockOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if !c.verifier.Verify(orderID, paymentID, signature) {
		slog.Warn("payment signature mismatch", "booking_id", ref, "gateway_order_id", orderID)
		c.failPayment(ctx, ref, orderID)
		return &VerificationResult{
			Success: false,
			Message: paymentFailedMessage,
			Reason:  ErrPaymentVerificationFailed,
		}, nil
	}

	var (
		view             *queries.BookingView
		outcome          error
		message          string
		inventoryChanged bool
	)
	err = c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		view, outcome, message, inventoryChanged = nil, nil, "", false
		now := c.clock.Now()

		b, err := tx.Bookings().LockByReference(ctx, tx.DB(), ref)
		if err != nil {
			return bookingLoadErr(err)
		}
		if b.GatewayOrderID() != orderID {
			return ErrOrderMismatch
		}

		switch {
		case b.PaymentStatus() == booking.PaymentCompleted && b.Status() == booking.StatusConfirmed:
			view, message = queries.BookingViewFromDomain(b), paymentAlreadyVerifiedMsg
			return nil
		case b.PaymentStatus() == booking.PaymentCompleted:
			return ErrBookingCancelled
		case !b.CanConfirm():
			// Cancelled by staff before the money arrived.
			outcome = ErrBookingCancelled
			return c.recordUnfulfilled(ctx, tx, b, paymentID, signature, now)
		}

		if !b.InventoryHeld() {
			if _, err := tx.Inventory().Decrement(ctx, tx.DB(), b.RoomType()); err != nil {
				if infra.IsKind(err, infra.KindConditionFailed) {
					outcome = ErrNoRoomsAvailable
					return c.recordUnfulfilled(ctx, tx, b, paymentID, signature, now)
				}
				return inventoryErr(err, ErrNoRoomsAvailable)
			}
			inventoryChanged = true
		}

		if err := b.Confirm(paymentID, signature, now); err != nil {
			return errs.Wrap(err, "failed to confirm booking")
		}
		if err := c.countGuest(ctx, tx, b, now); err != nil {
			return err
		}
		if err := tx.Bookings().Update(ctx, tx.DB(), b); err != nil {
			return errs.Wrap(err, "failed to save confirmed booking")
		}
		if err := c.enqueue(ctx, tx, shared.EventBookingConfirmed, b); err != nil {
			return err
		}
		view, message = queries.BookingViewFromDomain(b), paymentVerifiedMessage
		return nil
	})
	if err != nil {
		return nil, storeErr(err, "failed to verify payment")
	}
	if inventoryChanged {
		c.invalidateInventory(ctx)
	}
	if outcome != nil {
		slog.Warn("verified payment could not be fulfilled; refund required",
			"booking_id", ref,
			"gateway_payment_id", paymentID,
			"reason", outcome.Error())
		return nil, outcome
	}

	return &VerificationResult{
		Success: true,
		Booking: view,
		Message: message,
	}, nil
}

func (c *bookingCommandsImpl) recordUnfulfilled(ctx context.Context, tx shared.Tx, b *booking.Booking, paymentID, signature string, now time.Time) error {
	if err := b.RecordUnfulfilledPayment(paymentID, signature, now); err != nil {
		return errs.Wrap(err, "failed to record unfulfilled payment")
	}
	if err := tx.Bookings().Update(ctx, tx.DB(), b); err != nil {
		return errs.Wrap(err, "failed to save unfulfilled payment")
	}
	return c.enqueue(ctx, tx, shared.EventRefundRequired, b)
}

// failPayment flips a pending booking to cancelled/failed after a rejected
// signature. Only the booking that owns orderID is touched, and confirmed
// bookings are never downgraded.
func (c *bookingCommandsImpl) failPayment(ctx context.Context, ref, orderID string) {
	released := false
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		released = false
		b, err := tx.Bookings().LockByReference(ctx, tx.DB(), ref)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return nil
			}
			return err
		}
		if b.Status() != booking.StatusPending || b.GatewayOrderID() != orderID {
			return nil
		}
		releasesUnit, err := b.FailPayment(c.clock.Now())
		if err != nil {
			return err
		}
		if releasesUnit {
			if _, err := tx.Inventory().Increment(ctx, tx.DB(), b.RoomType()); err != nil {
				return err
			}
			released = true
		}
		if err := tx.Bookings().Update(ctx, tx.DB(), b); err != nil {
			return err
		}
		return c.enqueue(ctx, tx, shared.EventPaymentFailed, b)
	})
	if err != nil {
		slog.Error("failed to record rejected payment", "booking_id", ref, "error", err.Error())
		return
	}
	if released {
		c.invalidateInventory(ctx)
	}
}

func (c *bookingCommandsImpl) CancelBooking(ctx context.Context, id string) (*queries.BookingView, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrBookingNotFound
	}

	var (
		view             *queries.BookingView
		inventoryChanged bool
	)
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		inventoryChanged = false
		b, err := lockBooking(ctx, tx, id)
		if err != nil {
			return err
		}

		changed, releasesUnit := b.Cancel(c.clock.Now())
		if !changed {
			view = queries.BookingViewFromDomain(b)
			return nil
		}
		if releasesUnit {
			if _, err := tx.Inventory().Increment(ctx, tx.DB(), b.RoomType()); err != nil {
				return errs.Wrap(err, "failed to release inventory")
			}
			inventoryChanged = true
		}
		if err := tx.Bookings().Update(ctx, tx.DB(), b); err != nil {
			return errs.Wrap(err, "failed to save cancelled booking")
		}
		if err := c.enqueue(ctx, tx, shared.EventBookingCancelled, b); err != nil {
			return err
		}
		view = queries.BookingViewFromDomain(b)
		return nil
	})
	if err != nil {
		return nil, storeErr(err, "failed to cancel booking")
	}
	if inventoryChanged {
		c.invalidateInventory(ctx)
	}
	return view, nil
}

func (c *bookingCommandsImpl) DirectCreate(ctx context.Context, req reqdto.DirectBookingRequest) (*queries.BookingView, error) {
	details, err := req.ToDetails()
	if err != nil {
		return nil, inputErr(err)
	}
	status, paymentStatus, err := req.Statuses()
	if err != nil {
		return nil, inputErr(err)
	}
	now := c.clock.Now()
	if details.Reference.IsZero() {
		details.Reference = booking.NewReference()
	}
	if _, err := booking.NewDirect(details, status, paymentStatus, now); err != nil {
		return nil, inputErr(err)
	}

	var view *queries.BookingView
	err = c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		// rebuilt per attempt so a retried transaction starts from a clean aggregate
		b, err := booking.NewDirect(details, status, paymentStatus, now)
		if err != nil {
			return errs.Mark(err, ErrInvalidBooking)
		}
		if b.Status() == booking.StatusConfirmed {
			if _, err := tx.Inventory().Decrement(ctx, tx.DB(), b.RoomType()); err != nil {
				return inventoryErr(err, ErrNoRoomsAvailable)
			}
			if err := c.countGuest(ctx, tx, b, now); err != nil {
				return err
			}
		} else {
			g, err := guestFor(b, now)
			if err != nil {
				return err
			}
			if err := tx.Guests().Ensure(ctx, tx.DB(), g); err != nil {
				return errs.Wrap(err, "failed to ensure guest")
			}
		}
		if err := tx.Bookings().Create(ctx, tx.DB(), b); err != nil {
			return bookingCreateErr(err)
		}
		if err := c.enqueue(ctx, tx, shared.EventBookingCreated, b); err != nil {
			return err
		}
		view = queries.BookingViewFromDomain(b)
		return nil
	})
	if err != nil {
		return nil, storeErr(err, "failed to create booking")
	}
	if status == booking.StatusConfirmed {
		c.invalidateInventory(ctx)
	}
	return view, nil
}

// countGuest adds the booking to its guest's confirmed count at most once.
func (c *bookingCommandsImpl) countGuest(ctx context.Context, tx shared.Tx, b *booking.Booking, at time.Time) error {
	if !b.MarkGuestCounted() {
		return nil
	}
	g, err := guestFor(b, at)
	if err != nil {
		return err
	}
	if _, err := tx.Guests().IncrementOrCreate(ctx, tx.DB(), g, at); err != nil {
		return errs.Wrap(err, "failed to update guest history")
	}
	return nil
}

func (c *bookingCommandsImpl) enqueue(ctx context.Context, tx shared.Tx, t shared.EventType, b *booking.Booking) error {
	if err := tx.Events().Enqueue(ctx, tx.DB(), shared.NewBookingEvent(t, b, c.clock.Now())); err != nil {
		return errs.Wrapf(err, "failed to enqueue %s", t)
	}
	return nil
}

func (c *bookingCommandsImpl) lockOrder(ctx context.Context, orderID string) (func(), error) {
	noop := func() {}
	if c.locker == nil || orderID == "" {
		return noop, nil
	}
	token, acquired, err := c.locker.Acquire(ctx, orderID, c.settings.PaymentLockTTL)
	if err != nil {
		// the booking row lock still serializes the callback
		slog.Warn("payment lock unavailable, continuing without it", "gateway_order_id", orderID, "error", err.Error())
		return noop, nil
	}
	if !acquired {
		return nil, ErrPaymentInProgress
	}
	return func() {
		if err := c.locker.Release(context.WithoutCancel(ctx), orderID, token); err != nil {
			slog.Warn("failed to release payment lock", "gateway_order_id", orderID, "error", err.Error())
		}
	}, nil
}

func (c *bookingCommandsImpl) invalidateInventory(ctx context.Context) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Invalidate(context.WithoutCancel(ctx)); err != nil {
		slog.Warn("failed to invalidate inventory cache", "error", err.Error())
	}
}

// lockBooking resolves id as the primary key first. Client-chosen booking ids
// may themselves look like UUIDs, so a miss falls back to the booking id.
func lockBooking(ctx context.Context, tx shared.Tx, id string) (*booking.Booking, error) {
	if parsed, parseErr := uuid.Parse(id); parseErr == nil {
		b, err := tx.Bookings().LockByID(ctx, tx.DB(), parsed)
		if err == nil {
			return b, nil
		}
		if !infra.IsKind(err, infra.KindNotFound) {
			return nil, bookingLoadErr(err)
		}
	}
	b, err := tx.Bookings().LockByReference(ctx, tx.DB(), id)
	if err != nil {
		return nil, bookingLoadErr(err)
	}
	return b, nil
}

func guestFor(b *booking.Booking, at time.Time) (*guest.Guest, error) {
	d := b.Details()
	g, err := guest.NewGuest(d.GuestEmail, d.GuestName, d.GuestPhone, at)
	if err != nil {
		return nil, errs.Mark(err, ErrInvalidBooking)
	}
	return g, nil
}

func inputErr(err error) error {
	if errs.Is(err, inventory.ErrUnknownRoomType) {
		return errs.Mark(err, ErrUnknownRoomType)
	}
	return errs.Mark(err, ErrInvalidBooking)
}

func inventoryErr(err error, whenEmpty error) error {
	switch {
	case infra.IsKind(err, infra.KindConditionFailed):
		return errs.Mark(err, whenEmpty)
	case infra.IsKind(err, infra.KindNotFound):
		return errs.Mark(err, ErrUnknownRoomType)
	default:
		return errs.Wrap(err, "failed to update inventory")
	}
}

func bookingLoadErr(err error) error {
	if infra.IsKind(err, infra.KindNotFound) {
		return errs.Mark(err, ErrBookingNotFound)
	}
	return errs.Wrap(err, "failed to load booking")
}

func bookingCreateErr(err error) error {
	if infra.IsKind(err, infra.KindDuplicateKey) {
		return errs.Mark(err, ErrDuplicateBookingID)
	}
	return errs.Wrap(err, "failed to insert booking")
}

// storeErr keeps business outcomes and marks everything else as a store failure.
func storeErr(err error, msg string) error {
	if errs.IsAny(err, businessErrors...) {
		return err
	}
	return errs.Mark(errs.Wrap(err, msg), ErrStoreUnavailable)
}
