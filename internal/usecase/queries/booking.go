package queries

import (
	"context"
	"strings"
	"time"

	"hotel-booking/internal/domain/booking"
	"hotel-booking/internal/domain/guest"
	"hotel-booking/internal/infra"
	"hotel-booking/internal/pkg/errs"
	"hotel-booking/internal/pkg/ptr"

	"github.com/google/uuid"
)

var (
	ErrBookingNotFound = errs.New("booking not found")
	ErrInvalidFilter   = errs.New("invalid booking filter")
)

// BookingFilter narrows the admin booking list. After is an opaque keyset cursor.
type BookingFilter struct {
	Status   string
	RoomType string
	After    string
	Limit    int
}

// BookingListPage carries one page ordered by created_at descending.
type BookingListPage struct {
	Items      []*BookingView `json:"items"`
	NextCursor string         `json:"nextCursor,omitempty"`
}

// BookingListParams is the decoded form of BookingFilter handed to the store.
type BookingListParams struct {
	Status       string
	RoomType     string
	AfterCreated *time.Time
	AfterID      uuid.UUID
	Limit        int
}

type BookingQueries interface {
	// Get accepts either the internal UUID or the external booking id.
	Get(ctx context.Context, id string) (*BookingView, error)
	List(ctx context.Context, filter BookingFilter) (*BookingListPage, error)
	ListByGuestEmail(ctx context.Context, email string) ([]*BookingView, error)
	Stats(ctx context.Context) (*BookingStatsView, error)
}

type BookingReadStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*BookingView, error)
	FindByBookingID(ctx context.Context, bookingID string) (*BookingView, error)
	ListByGuestEmail(ctx context.Context, email string) ([]*BookingView, error)
	List(ctx context.Context, params BookingListParams) ([]*BookingView, error)
	Stats(ctx context.Context) (*BookingStatsView, error)
}

type bookingQueriesImpl struct {
	store BookingReadStore
}

func NewBookingQueries(store BookingReadStore) BookingQueries {
	return &bookingQueriesImpl{store: store}
}

// Get accepts the primary key or the booking id. A UUID-shaped id that is not a
// primary key is retried as a booking id.
func (q *bookingQueriesImpl) Get(ctx context.Context, id string) (*BookingView, error) {
	id = strings.TrimSpace(id)
	if parsed, parseErr := uuid.Parse(id); parseErr == nil {
		view, err := q.store.FindByID(ctx, parsed)
		if err == nil {
			return view, nil
		}
		if !infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Wrap(err, "failed to load booking")
		}
	}
	view, err := q.store.FindByBookingID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, errs.Wrap(err, "failed to load booking")
	}
	return view, nil
}

func (q *bookingQueriesImpl) List(ctx context.Context, filter BookingFilter) (*BookingListPage, error) {
	params := BookingListParams{Limit: clampLimit(filter.Limit)}

	if filter.Status != "" {
		s, err := booking.ParseStatus(filter.Status)
		if err != nil {
			return nil, errs.Mark(err, ErrInvalidFilter)
		}
		params.Status = s.String()
	}
	if filter.RoomType != "" {
		params.RoomType = strings.ToLower(strings.TrimSpace(filter.RoomType))
	}
	if filter.After != "" {
		at, id, err := DecodeAfterCursor(filter.After)
		if err != nil {
			return nil, errs.Mark(err, ErrInvalidFilter)
		}
		params.AfterCreated = ptr.Of(at)
		params.AfterID = id
	}

	// one extra row tells us whether another page exists
	fetch := params
	fetch.Limit = params.Limit + 1
	rows, err := q.store.List(ctx, fetch)
	if err != nil {
		return nil, errs.Wrap(err, "failed to list bookings")
	}

	page := &BookingListPage{Items: rows}
	if len(rows) > params.Limit {
		page.Items = rows[:params.Limit]
		last := page.Items[len(page.Items)-1]
		page.NextCursor = EncodeAfterCursor(last.CreatedAt, last.ID)
	}
	return page, nil
}

func (q *bookingQueriesImpl) ListByGuestEmail(ctx context.Context, email string) ([]*BookingView, error) {
	normalized := guest.NormalizeEmail(email)
	if normalized == "" {
		return nil, errs.Mark(guest.ErrInvalidEmail, ErrInvalidFilter)
	}
	rows, err := q.store.ListByGuestEmail(ctx, normalized)
	if err != nil {
		return nil, errs.Wrap(err, "failed to list bookings by guest")
	}
	return rows, nil
}

func (q *bookingQueriesImpl) Stats(ctx context.Context) (*BookingStatsView, error) {
	stats, err := q.store.Stats(ctx)
	if err != nil {
		return nil, errs.Wrap(err, "failed to load booking stats")
	}
	return stats, nil
}
