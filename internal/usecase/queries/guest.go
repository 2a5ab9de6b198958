package queries

import (
	"context"

	"hotel-booking/internal/domain/guest"
	"hotel-booking/internal/infra"
	"hotel-booking/internal/pkg/errs"
)

var ErrGuestNotFound = errs.New("guest not found")

type GuestQueries interface {
	Get(ctx context.Context, email string) (*GuestView, error)
	List(ctx context.Context, limit int) ([]*GuestView, error)
}

type GuestReadStore interface {
	FindByEmail(ctx context.Context, email string) (*GuestView, error)
	List(ctx context.Context, limit int) ([]*GuestView, error)
}

type guestQueriesImpl struct {
	store GuestReadStore
}

func NewGuestQueries(store GuestReadStore) GuestQueries {
	return &guestQueriesImpl{store: store}
}

func (q *guestQueriesImpl) Get(ctx context.Context, email string) (*GuestView, error) {
	e, err := guest.NewEmail(email)
	if err != nil {
		return nil, err
	}
	view, err := q.store.FindByEmail(ctx, e.Value())
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrGuestNotFound
		}
		return nil, errs.Wrap(err, "failed to load guest")
	}
	return view, nil
}

func (q *guestQueriesImpl) List(ctx context.Context, limit int) ([]*GuestView, error) {
	rows, err := q.store.List(ctx, clampLimit(limit))
	if err != nil {
		return nil, errs.Wrap(err, "failed to list guests")
	}
	return rows, nil
}
