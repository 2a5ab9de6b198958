package booking

import (
	"strings"
	"time"

	"hotel-booking/internal/domain/guest"
	"hotel-booking/internal/domain/inventory"

	"github.com/google/uuid"
)

// Details are the guest-supplied parts of a booking.
type Details struct {
	Reference     Reference
	GuestName     string
	GuestEmail    guest.Email
	GuestPhone    string
	RoomType      inventory.RoomType
	Stay          Stay
	Guests        int
	PricePerNight int64
	TotalAmount   int64
}

func (d Details) validate() error {
	if strings.TrimSpace(d.GuestName) == "" {
		return ErrGuestNameRequired
	}
	if d.GuestEmail.IsZero() {
		return guest.ErrInvalidEmail
	}
	if !d.RoomType.IsValid() {
		return inventory.ErrUnknownRoomType
	}
	if d.Stay.Nights() < 1 {
		return ErrInvalidStay
	}
	if d.Guests < 1 {
		return ErrInvalidGuestCount
	}
	if d.PricePerNight < 0 || d.TotalAmount < 0 {
		return ErrInvalidAmount
	}
	return nil
}

type Booking struct {
	id             uuid.UUID
	reference      Reference
	details        Details
	status         Status
	paymentStatus  PaymentStatus
	source         Source
	gatewayOrderID string
	paymentID      string
	signature      string
	holdExpiresAt  *time.Time
	inventoryHeld  bool
	guestCounted   bool
	createdAt      time.Time
	updatedAt      time.Time
	cancelledAt    *time.Time
}

// NewPending creates a gateway booking whose inventory unit the caller reserves
// in the same transaction. The hold lapses after holdTTL.
func NewPending(d Details, now time.Time, holdTTL time.Duration) (*Booking, error) {
	if d.Reference.IsZero() {
		d.Reference = NewReference()
	}
	d.GuestName = strings.TrimSpace(d.GuestName)
	if err := d.validate(); err != nil {
		return nil, err
	}
	expires := now.Add(holdTTL)
	return &Booking{
		id:            uuid.New(),
		reference:     d.Reference,
		details:       d,
		status:        StatusPending,
		paymentStatus: PaymentPending,
		source:        SourceGateway,
		holdExpiresAt: &expires,
		inventoryHeld: true,
		createdAt:     now,
		updatedAt:     now,
	}, nil
}

// NewDirect creates an admin-entered booking with caller-chosen statuses.
// A confirmed direct booking holds one unit from creation.
func NewDirect(d Details, status Status, paymentStatus PaymentStatus, now time.Time) (*Booking, error) {
	if d.Reference.IsZero() {
		d.Reference = NewReference()
	}
	d.GuestName = strings.TrimSpace(d.GuestName)
	if err := d.validate(); err != nil {
		return nil, err
	}
	if _, err := ParseStatus(string(status)); err != nil {
		return nil, err
	}
	if _, err := ParsePaymentStatus(string(paymentStatus)); err != nil {
		return nil, err
	}
	if status == StatusConfirmed && paymentStatus == PaymentFailed {
		return nil, ErrInvalidTransition
	}
	b := &Booking{
		id:            uuid.New(),
		reference:     d.Reference,
		details:       d,
		status:        status,
		paymentStatus: paymentStatus,
		source:        SourceDirect,
		inventoryHeld: status == StatusConfirmed,
		createdAt:     now,
		updatedAt:     now,
	}
	if status == StatusCancelled {
		b.cancelledAt = &now
	}
	return b, nil
}

// ReconstructParams carries persisted state back into an aggregate.
type ReconstructParams struct {
	ID             uuid.UUID
	Details        Details
	Status         Status
	PaymentStatus  PaymentStatus
	Source         Source
	GatewayOrderID string
	PaymentID      string
	Signature      string
	HoldExpiresAt  *time.Time
	InventoryHeld  bool
	GuestCounted   bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
	CancelledAt    *time.Time
}

func Reconstruct(p ReconstructParams) *Booking {
	return &Booking{
		id:             p.ID,
		reference:      p.Details.Reference,
		details:        p.Details,
		status:         p.Status,
		paymentStatus:  p.PaymentStatus,
		source:         p.Source,
		gatewayOrderID: p.GatewayOrderID,
		paymentID:      p.PaymentID,
		signature:      p.Signature,
		holdExpiresAt:  p.HoldExpiresAt,
		inventoryHeld:  p.InventoryHeld,
		guestCounted:   p.GuestCounted,
		createdAt:      p.CreatedAt,
		updatedAt:      p.UpdatedAt,
		cancelledAt:    p.CancelledAt,
	}
}

func (b *Booking) AttachGatewayOrder(orderID string, now time.Time) error {
	if b.status != StatusPending || b.gatewayOrderID != "" {
		return ErrInvalidTransition
	}
	b.gatewayOrderID = orderID
	b.updatedAt = now
	return nil
}

// CanConfirm is true for pending bookings and for bookings cancelled by a lapsed
// hold or a failed callback (never for explicit cancellations).
func (b *Booking) CanConfirm() bool {
	if b.paymentStatus == PaymentCompleted {
		return false
	}
	return b.status == StatusPending || (b.status == StatusCancelled && b.cancelledAt == nil)
}

// Confirm records a verified payment. The caller must own an inventory unit for
// this booking before calling.
func (b *Booking) Confirm(paymentID, signature string, now time.Time) error {
	if b.paymentStatus == PaymentCompleted {
		return ErrPaymentAlreadyDone
	}
	if !b.CanConfirm() {
		return ErrInvalidTransition
	}
	b.status = StatusConfirmed
	b.paymentStatus = PaymentCompleted
	b.paymentID = paymentID
	b.signature = signature
	b.holdExpiresAt = nil
	b.inventoryHeld = true
	b.updatedAt = now
	return nil
}

// RecordUnfulfilledPayment keeps the verified payment on a booking that could
// not get a room, leaving it cancelled for refund.
func (b *Booking) RecordUnfulfilledPayment(paymentID, signature string, now time.Time) error {
	if b.paymentStatus == PaymentCompleted {
		return ErrPaymentAlreadyDone
	}
	b.status = StatusCancelled
	b.paymentStatus = PaymentCompleted
	b.paymentID = paymentID
	b.signature = signature
	b.holdExpiresAt = nil
	b.inventoryHeld = false
	b.updatedAt = now
	return nil
}

// FailPayment cancels a pending booking after a rejected callback or a gateway
// error. It reports whether an inventory unit must be released.
func (b *Booking) FailPayment(now time.Time) (releasesUnit bool, err error) {
	if b.status != StatusPending {
		return false, ErrInvalidTransition
	}
	releasesUnit = b.inventoryHeld
	b.status = StatusCancelled
	b.paymentStatus = PaymentFailed
	b.holdExpiresAt = nil
	b.inventoryHeld = false
	b.updatedAt = now
	return releasesUnit, nil
}

func (b *Booking) HoldExpired(now time.Time) bool {
	return b.status == StatusPending && b.holdExpiresAt != nil && !now.Before(*b.holdExpiresAt)
}

// Expire releases a lapsed hold.
func (b *Booking) Expire(now time.Time) (releasesUnit bool, err error) {
	if !b.HoldExpired(now) {
		return false, ErrInvalidTransition
	}
	return b.FailPayment(now)
}

// Cancel is idempotent: cancelling a cancelled booking changes nothing.
func (b *Booking) Cancel(now time.Time) (changed, releasesUnit bool) {
	if b.status == StatusCancelled {
		return false, false
	}
	releasesUnit = b.inventoryHeld
	b.status = StatusCancelled
	b.cancelledAt = &now
	b.holdExpiresAt = nil
	b.inventoryHeld = false
	b.updatedAt = now
	return true, releasesUnit
}

// MarkGuestCounted returns false when the booking was already counted.
func (b *Booking) MarkGuestCounted() bool {
	if b.guestCounted {
		return false
	}
	b.guestCounted = true
	return true
}

func (b *Booking) ID() uuid.UUID                { return b.id }
func (b *Booking) Reference() Reference         { return b.reference }
func (b *Booking) Details() Details             { return b.details }
func (b *Booking) GuestEmail() guest.Email      { return b.details.GuestEmail }
func (b *Booking) RoomType() inventory.RoomType { return b.details.RoomType }
func (b *Booking) Status() Status               { return b.status }
func (b *Booking) PaymentStatus() PaymentStatus { return b.paymentStatus }
func (b *Booking) Source() Source               { return b.source }
func (b *Booking) GatewayOrderID() string       { return b.gatewayOrderID }
func (b *Booking) PaymentID() string            { return b.paymentID }
func (b *Booking) Signature() string            { return b.signature }
func (b *Booking) HoldExpiresAt() *time.Time    { return b.holdExpiresAt }
func (b *Booking) InventoryHeld() bool          { return b.inventoryHeld }
func (b *Booking) GuestCounted() bool           { return b.guestCounted }
func (b *Booking) CreatedAt() time.Time         { return b.createdAt }
func (b *Booking) UpdatedAt() time.Time         { return b.updatedAt }
func (b *Booking) CancelledAt() *time.Time      { return b.cancelledAt }
