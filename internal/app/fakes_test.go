package app_test

import (
	"context"
	"sync"
	"time"

	"hotel_booking_web/internal/domain"
)

// ---- fakes ----

type fakeHotelAPI struct {
	mu       sync.Mutex
	hotel    domain.Hotel
	getErr   error
	gets     int
	page     domain.HotelsPage
	pages    map[int]domain.HotelsPage
	searchFn func(q domain.HotelSearch) (domain.HotelsPage, error)
	searches []domain.HotelSearch
	avail    *domain.Availability
	availErr error
	deleted  []string
	updated  []string
}

func (f *fakeHotelAPI) SearchHotels(ctx context.Context, q domain.HotelSearch) (domain.HotelsPage, error) {
	f.mu.Lock()
	f.searches = append(f.searches, q)
	fn := f.searchFn
	f.mu.Unlock()
	if fn != nil {
		return fn(q)
	}
	if p, ok := f.pages[q.Page]; ok {
		return p, nil
	}
	return f.page, nil
}

func (f *fakeHotelAPI) GetHotel(ctx context.Context, id string) (domain.Hotel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	if f.getErr != nil {
		return domain.Hotel{}, f.getErr
	}
	return f.hotel, nil
}

func (f *fakeHotelAPI) CheckAvailability(ctx context.Context, id string, in, out time.Time) (domain.Availability, error) {
	if f.availErr != nil {
		return domain.Availability{}, f.availErr
	}
	if f.avail == nil {
		return domain.Availability{HotelID: id, Available: true}, nil
	}
	return *f.avail, nil
}

func (f *fakeHotelAPI) CreateHotel(ctx context.Context, h domain.Hotel) (domain.Hotel, error) {
	h.ID = "new"
	return h, nil
}

func (f *fakeHotelAPI) UpdateHotel(ctx context.Context, id string, h domain.Hotel) (domain.Hotel, error) {
	f.updated = append(f.updated, id)
	h.ID = id
	return h, nil
}

func (f *fakeHotelAPI) DeleteHotel(ctx context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeBookingAPI struct {
	mu       sync.Mutex
	calls    []domain.BookingRequest
	resp     domain.BookingConfirmation
	err      error
	block    chan struct{} // when set, CreateBooking waits on it
	entered  chan struct{} // signalled when CreateBooking starts
	statuses map[int64]domain.BookingStatus
	list     []domain.BookingConfirmation
}

func (f *fakeBookingAPI) CreateBooking(ctx context.Context, r domain.BookingRequest) (domain.BookingConfirmation, error) {
	f.mu.Lock()
	f.calls = append(f.calls, r)
	f.mu.Unlock()
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
	return f.resp, f.err
}

func (f *fakeBookingAPI) ListBookings(ctx context.Context) ([]domain.BookingConfirmation, error) {
	return f.list, nil
}

func (f *fakeBookingAPI) ListUserBookings(ctx context.Context) ([]domain.BookingConfirmation, error) {
	return f.list, nil
}

func (f *fakeBookingAPI) UpdateBookingStatus(ctx context.Context, id int64, s domain.BookingStatus) error {
	if f.statuses == nil {
		f.statuses = map[int64]domain.BookingStatus{}
	}
	f.statuses[id] = s
	return nil
}

func (f *fakeBookingAPI) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeAuthAPI struct {
	res   domain.AuthResult
	err   error
	calls int
}

func (f *fakeAuthAPI) Login(ctx context.Context, c domain.Credentials) (domain.AuthResult, error) {
	f.calls++
	return f.res, f.err
}

func (f *fakeAuthAPI) Register(ctx context.Context, r domain.Registration) (domain.AuthResult, error) {
	f.calls++
	return f.res, f.err
}

func (f *fakeAuthAPI) Me(ctx context.Context) (domain.User, error) {
	f.calls++
	return f.res.User, f.err
}

type fakeUserAPI struct{ users []domain.User }

func (f *fakeUserAPI) GetProfile(ctx context.Context) (domain.User, error) { return f.users[0], nil }
func (f *fakeUserAPI) UpdateProfile(ctx context.Context, p domain.ProfileUpdate) (domain.User, error) {
	u := f.users[0]
	u.Name, u.Phone = p.Name, p.Phone
	return u, nil
}
func (f *fakeUserAPI) ListUsers(ctx context.Context) ([]domain.User, error) { return f.users, nil }

type fakeCache struct {
	mu    sync.Mutex
	store map[string]any
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.store[key]
	if !ok {
		return false, nil
	}
	switch d := dst.(type) {
	case *domain.Hotel:
		*d = v.(domain.Hotel)
	}
	return true, nil
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store == nil {
		c.store = map[string]any{}
	}
	c.store[key] = v
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, key)
	return nil
}

type fakeJournal struct {
	mu         sync.Mutex
	recorded   []domain.Confirmation
	pending    []domain.JournalEntry
	reconciled map[int64]int64
	manual     map[int64]string
}

func (j *fakeJournal) Record(ctx context.Context, c domain.Confirmation) (int64, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.recorded = append(j.recorded, c)
	return int64(len(j.recorded)), nil
}

func (j *fakeJournal) ListUnreconciled(ctx context.Context, limit int) ([]domain.JournalEntry, error) {
	return j.pending, nil
}

func (j *fakeJournal) MarkReconciled(ctx context.Context, localID, serverID int64) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.reconciled == nil {
		j.reconciled = map[int64]int64{}
	}
	j.reconciled[localID] = serverID
	return nil
}

func (j *fakeJournal) MarkManual(ctx context.Context, localID int64, reason string) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.manual == nil {
		j.manual = map[int64]string{}
	}
	j.manual[localID] = reason
	return nil
}

type fakeNav struct {
	mu    sync.Mutex
	views []domain.View
}

func (n *fakeNav) Navigate(v domain.View) {
	n.mu.Lock()
	n.views = append(n.views, v)
	n.mu.Unlock()
}

func (n *fakeNav) last() domain.View {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.views) == 0 {
		return ""
	}
	return n.views[len(n.views)-1]
}

func date(s string) time.Time {
	d, ok := domain.ParseDate(s)
	if !ok {
		panic("bad date " + s)
	}
	return d
}
