//go:build unit

package commands_test

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"hotel-booking/internal/domain/booking"
	"hotel-booking/internal/domain/guest"
	"hotel-booking/internal/domain/inventory"
	"hotel-booking/internal/domain/user"
	"hotel-booking/internal/infra"
	"hotel-booking/internal/infra/db"
	"hotel-booking/internal/pkg/errs"
	"hotel-booking/internal/usecase/commands"
	"hotel-booking/internal/usecase/shared"

	"github.com/google/uuid"
)

// memStore is an in-memory UnitOfWork. Transactions run one at a time and roll
// back to a snapshot on error, which gives the same serial outcomes as the
// row locks in Postgres.
type memStore struct {
	mu    sync.Mutex
	state memState
	seq   int64

	// failOn makes the named operation fail inside the transaction.
	failOn map[string]error
}

type memState struct {
	bookings  map[uuid.UUID]*booking.Booking
	inventory map[inventory.RoomType]int
	guests    map[string]guestRow
	events    []eventRow
	users     map[string]*user.User
}

type guestRow struct {
	name     string
	phone    string
	bookings int
}

type eventRow struct {
	shared.OutboxEvent
	status  string
	lastErr string
}

func newMemStore(counts map[inventory.RoomType]int) *memStore {
	s := &memStore{
		state: memState{
			bookings:  map[uuid.UUID]*booking.Booking{},
			inventory: map[inventory.RoomType]int{},
			guests:    map[string]guestRow{},
			users:     map[string]*user.User{},
		},
		failOn: map[string]error{},
	}
	for rt, n := range counts {
		s.state.inventory[rt] = n
	}
	return s
}

func (s memState) clone() memState {
	out := memState{
		bookings:  make(map[uuid.UUID]*booking.Booking, len(s.bookings)),
		inventory: make(map[inventory.RoomType]int, len(s.inventory)),
		guests:    make(map[string]guestRow, len(s.guests)),
		events:    append([]eventRow(nil), s.events...),
		users:     make(map[string]*user.User, len(s.users)),
	}
	for k, v := range s.bookings {
		out.bookings[k] = cloneBooking(v)
	}
	for k, v := range s.inventory {
		out.inventory[k] = v
	}
	for k, v := range s.guests {
		out.guests[k] = v
	}
	for k, v := range s.users {
		out.users[k] = v
	}
	return out
}

func cloneBooking(b *booking.Booking) *booking.Booking {
	return booking.Reconstruct(booking.ReconstructParams{
		ID:             b.ID(),
		Details:        b.Details(),
		Status:         b.Status(),
		PaymentStatus:  b.PaymentStatus(),
		Source:         b.Source(),
		GatewayOrderID: b.GatewayOrderID(),
		PaymentID:      b.PaymentID(),
		Signature:      b.Signature(),
		HoldExpiresAt:  copyTime(b.HoldExpiresAt()),
		InventoryHeld:  b.InventoryHeld(),
		GuestCounted:   b.GuestCounted(),
		CreatedAt:      b.CreatedAt(),
		UpdatedAt:      b.UpdatedAt(),
		CancelledAt:    copyTime(b.CancelledAt()),
	})
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func (s *memStore) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := s.state.clone()
	if err := fn(ctx, &memTx{s: s}); err != nil {
		s.state = snapshot
		return err
	}
	return nil
}

func (s *memStore) WithDB(ctx context.Context, fn func(ctx context.Context, db db.DBTX) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(ctx, nil)
}

func (s *memStore) fail(op string) error {
	if err, ok := s.failOn[op]; ok {
		return err
	}
	return nil
}

// accessors used by assertions; they take the lock themselves

func (s *memStore) available(rt inventory.RoomType) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.inventory[rt]
}

func (s *memStore) bookingByRef(ref string) *booking.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.state.bookings {
		if b.Reference().String() == ref {
			return cloneBooking(b)
		}
	}
	return nil
}

func (s *memStore) bookingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.state.bookings)
}

func (s *memStore) guestBookings(email string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.state.guests[email]
	return g.bookings, ok
}

func (s *memStore) eventTypes() []shared.EventType {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]shared.EventType, 0, len(s.state.events))
	for _, ev := range s.state.events {
		out = append(out, ev.Type)
	}
	return out
}

func (s *memStore) eventStatuses() map[int64]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[int64]string, len(s.state.events))
	for _, ev := range s.state.events {
		out[ev.ID] = ev.status
	}
	return out
}

type memTx struct {
	s *memStore
}

func (t *memTx) Bookings() shared.BookingRepository    { return memBookings{t.s} }
func (t *memTx) Inventory() shared.InventoryRepository { return memInventory{t.s} }
func (t *memTx) Guests() shared.GuestRepository        { return memGuests{t.s} }
func (t *memTx) Events() shared.EventRepository        { return memEvents{t.s} }
func (t *memTx) Users() shared.UserRepository          { return memUsers{t.s} }
func (t *memTx) DB() db.DBTX                           { return nil }

type memBookings struct{ s *memStore }

func (r memBookings) Create(_ context.Context, _ db.DBTX, b *booking.Booking) error {
	if err := r.s.fail("bookings.create"); err != nil {
		return err
	}
	for _, existing := range r.s.state.bookings {
		if existing.Reference() == b.Reference() {
			return infra.NewRepoErr(infra.KindDuplicateKey, "booking_id already exists")
		}
	}
	r.s.state.bookings[b.ID()] = cloneBooking(b)
	return nil
}

func (r memBookings) Update(_ context.Context, _ db.DBTX, b *booking.Booking) error {
	if err := r.s.fail("bookings.update"); err != nil {
		return err
	}
	if _, ok := r.s.state.bookings[b.ID()]; !ok {
		return infra.NewRepoErr(infra.KindNotFound, "booking not found")
	}
	r.s.state.bookings[b.ID()] = cloneBooking(b)
	return nil
}

func (r memBookings) LockByID(_ context.Context, _ db.DBTX, id uuid.UUID) (*booking.Booking, error) {
	b, ok := r.s.state.bookings[id]
	if !ok {
		return nil, infra.NewRepoErr(infra.KindNotFound, "booking not found")
	}
	return cloneBooking(b), nil
}

func (r memBookings) LockByReference(_ context.Context, _ db.DBTX, ref string) (*booking.Booking, error) {
	for _, b := range r.s.state.bookings {
		if b.Reference().String() == ref {
			return cloneBooking(b), nil
		}
	}
	return nil, infra.NewRepoErr(infra.KindNotFound, "booking not found")
}

func (r memBookings) ListExpiredHolds(_ context.Context, _ db.DBTX, now time.Time, limit int) ([]uuid.UUID, error) {
	var expired []*booking.Booking
	for _, b := range r.s.state.bookings {
		if b.InventoryHeld() && b.HoldExpired(now) {
			expired = append(expired, b)
		}
	}
	sort.Slice(expired, func(i, j int) bool {
		return expired[i].HoldExpiresAt().Before(*expired[j].HoldExpiresAt())
	})
	ids := make([]uuid.UUID, 0, len(expired))
	for i, b := range expired {
		if i == limit {
			break
		}
		ids = append(ids, b.ID())
	}
	return ids, nil
}

type memInventory struct{ s *memStore }

func (r memInventory) Decrement(_ context.Context, _ db.DBTX, rt inventory.RoomType) (int, error) {
	n, ok := r.s.state.inventory[rt]
	if !ok {
		return 0, infra.NewRepoErr(infra.KindNotFound, "room type not found")
	}
	if n == 0 {
		return 0, infra.NewRepoErr(infra.KindConditionFailed, "no rooms available")
	}
	r.s.state.inventory[rt] = n - 1
	return n - 1, nil
}

func (r memInventory) Increment(_ context.Context, _ db.DBTX, rt inventory.RoomType) (int, error) {
	n, ok := r.s.state.inventory[rt]
	if !ok {
		return 0, infra.NewRepoErr(infra.KindNotFound, "room type not found")
	}
	r.s.state.inventory[rt] = n + 1
	return n + 1, nil
}

func (r memInventory) Set(_ context.Context, _ db.DBTX, rt inventory.RoomType, available int) error {
	if _, ok := r.s.state.inventory[rt]; !ok {
		return infra.NewRepoErr(infra.KindNotFound, "room type not found")
	}
	r.s.state.inventory[rt] = available
	return nil
}

func (r memInventory) Initialize(_ context.Context, _ db.DBTX, counts inventory.Counts) ([]inventory.RoomType, error) {
	var created []inventory.RoomType
	for _, rt := range inventory.AllRoomTypes() {
		n, ok := counts[rt]
		if !ok {
			continue
		}
		if _, exists := r.s.state.inventory[rt]; exists {
			continue
		}
		r.s.state.inventory[rt] = n
		created = append(created, rt)
	}
	return created, nil
}

type memGuests struct{ s *memStore }

func (r memGuests) Ensure(_ context.Context, _ db.DBTX, g *guest.Guest) error {
	row := r.s.state.guests[g.Email().Value()]
	row.name, row.phone = g.Name(), g.Phone()
	r.s.state.guests[g.Email().Value()] = row
	return nil
}

func (r memGuests) IncrementOrCreate(_ context.Context, _ db.DBTX, g *guest.Guest, _ time.Time) (int, error) {
	row := r.s.state.guests[g.Email().Value()]
	row.name, row.phone = g.Name(), g.Phone()
	row.bookings++
	r.s.state.guests[g.Email().Value()] = row
	return row.bookings, nil
}

type memEvents struct{ s *memStore }

func (r memEvents) Enqueue(_ context.Context, _ db.DBTX, ev shared.BookingEvent) error {
	if err := r.s.fail("events.enqueue"); err != nil {
		return err
	}
	payload, err := ev.Payload()
	if err != nil {
		return err
	}
	r.s.seq++
	r.s.state.events = append(r.s.state.events, eventRow{
		OutboxEvent: shared.OutboxEvent{
			ID:        r.s.seq,
			BookingID: ev.ID,
			Type:      ev.Type,
			Key:       ev.BookingID,
			Payload:   payload,
			CreatedAt: ev.OccurredAt,
		},
		status: "pending",
	})
	return nil
}

func (r memEvents) ClaimPending(_ context.Context, _ db.DBTX, limit int) ([]shared.OutboxEvent, error) {
	if err := r.s.fail("events.claim"); err != nil {
		return nil, err
	}
	var out []shared.OutboxEvent
	for _, ev := range r.s.state.events {
		if len(out) == limit {
			break
		}
		if ev.status == "pending" {
			out = append(out, ev.OutboxEvent)
		}
	}
	return out, nil
}

func (r memEvents) MarkPublished(_ context.Context, _ db.DBTX, ids []int64, _ time.Time) error {
	set := make(map[int64]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	for i := range r.s.state.events {
		if set[r.s.state.events[i].ID] {
			r.s.state.events[i].status = "published"
		}
	}
	return nil
}

func (r memEvents) MarkFailed(_ context.Context, _ db.DBTX, id int64, lastError string, maxAttempts int) error {
	for i := range r.s.state.events {
		ev := &r.s.state.events[i]
		if ev.ID != id {
			continue
		}
		ev.Attempts++
		ev.lastErr = lastError
		if ev.Attempts >= maxAttempts {
			ev.status = "failed"
		}
		return nil
	}
	return infra.NewRepoErr(infra.KindNotFound, "event not found")
}

type memUsers struct{ s *memStore }

func (r memUsers) UpdateLastLogin(_ context.Context, _ db.DBTX, _ uuid.UUID) error {
	return nil
}

func (r memUsers) Upsert(_ context.Context, _ db.DBTX, u *user.User) (uuid.UUID, error) {
	if existing, ok := r.s.state.users[u.Email().Value()]; ok {
		r.s.state.users[u.Email().Value()] = u
		return existing.ID(), nil
	}
	r.s.state.users[u.Email().Value()] = u
	return u.ID(), nil
}

// fakeGateway hands out sequential order ids.
type fakeGateway struct {
	seq   atomic.Int64
	err   error
	calls atomic.Int64
}

func (g *fakeGateway) CreateOrder(_ context.Context, req commands.GatewayOrderRequest) (*commands.GatewayOrder, error) {
	g.calls.Add(1)
	if g.err != nil {
		return nil, g.err
	}
	n := g.seq.Add(1)
	return &commands.GatewayOrder{
		ID:       fmt.Sprintf("order_%04d", n),
		Amount:   req.AmountMinor,
		Currency: req.Currency,
		Receipt:  req.Receipt,
		Status:   "created",
	}, nil
}

// fakeLocker mirrors the compare-and-delete release of the Redis locker.
type fakeLocker struct {
	mu       sync.Mutex
	held     map[string]string
	seq      int
	err      error
	released []string
}

func newFakeLocker() *fakeLocker {
	return &fakeLocker{held: map[string]string{}}
}

func (l *fakeLocker) Acquire(_ context.Context, orderID string, _ time.Duration) (string, bool, error) {
	if l.err != nil {
		return "", false, l.err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.held[orderID]; ok {
		return "", false, nil
	}
	l.seq++
	token := fmt.Sprintf("token-%d", l.seq)
	l.held[orderID] = token
	return token, true, nil
}

// expire drops the lock as a lapsed TTL would.
func (l *fakeLocker) expire(orderID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, orderID)
}

func (l *fakeLocker) Release(_ context.Context, orderID, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.released = append(l.released, token)
	if l.held[orderID] != token {
		return errs.New("payment lock expired before release")
	}
	delete(l.held, orderID)
	return nil
}

type countingCache struct {
	n atomic.Int64
}

func (c *countingCache) Invalidate(context.Context) error {
	c.n.Add(1)
	return nil
}

var errInjected = errs.New("injected failure")
