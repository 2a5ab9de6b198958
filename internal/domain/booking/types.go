package booking

import "errors"

var (
	ErrInvalidStatus        = errors.New("invalid booking status")
	ErrInvalidPaymentStatus = errors.New("invalid payment status")
	ErrInvalidReference     = errors.New("invalid booking id")
	ErrInvalidStay          = errors.New("check-out must be at least one night after check-in")
	ErrInvalidGuestCount    = errors.New("guest count must be at least 1")
	ErrInvalidAmount        = errors.New("amount must not be negative")
	ErrGuestNameRequired    = errors.New("guest name is required")
	ErrInvalidTransition    = errors.New("booking state does not allow this transition")
	ErrPaymentAlreadyDone   = errors.New("payment already completed")
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

func (s Status) String() string { return string(s) }

func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return st, nil
	default:
		return "", ErrInvalidStatus
	}
}

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

func (p PaymentStatus) String() string { return string(p) }

func ParsePaymentStatus(s string) (PaymentStatus, error) {
	switch ps := PaymentStatus(s); ps {
	case PaymentPending, PaymentCompleted, PaymentFailed:
		return ps, nil
	default:
		return "", ErrInvalidPaymentStatus
	}
}

// Source records which path created the booking.
type Source string

const (
	SourceGateway Source = "gateway"
	SourceDirect  Source = "direct"
)
