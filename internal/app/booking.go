package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"hotel_booking_web/internal/adapters/observability"
	"hotel_booking_web/internal/domain"
)

type BookingState int

const (
	StateIdle BookingState = iota
	StateValidating
	StateSubmitting
	StateSucceeded
	StateFailed
)

func (s BookingState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateSubmitting:
		return "submitting"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("BookingState(%d)", int(s))
}

type BookingDeps struct {
	API     domain.BookingAPI
	Session domain.Session
	Nav     domain.Navigator
	Journal domain.BookingJournal // optional

	// OfflineFallback turns a network/server failure of the create call into a
	// locally confirmed booking with a client-generated id.
	OfflineFallback bool

	Now func() time.Time // defaults to time.Now
}

type BookingForm struct {
	Guests          int    `json:"guests"`
	SpecialRequests string `json:"special_requests"`
}

// SubmitResult carries either the confirmation for the next view or the view
// the user was sent to instead.
type SubmitResult struct {
	Confirmation *domain.Confirmation
	Redirect     domain.View
}

// BookingDialog is one reservation dialog for a hotel and a date range.
// At most one submission is in flight at a time.
type BookingDialog struct {
	deps     BookingDeps
	hotel    domain.Hotel
	checkIn  time.Time
	checkOut time.Time

	mu    sync.Mutex
	state BookingState
	err   error
}

func NewBookingDialog(deps BookingDeps, hotel domain.Hotel, checkIn, checkOut time.Time) *BookingDialog {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &BookingDialog{deps: deps, hotel: hotel, checkIn: checkIn, checkOut: checkOut}
}

func (d *BookingDialog) State() BookingState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Err is the error of the last failed submission, nil otherwise.
func (d *BookingDialog) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.err
}

// Quote prices the dialog's range for guests, as shown next to the submit control.
func (d *BookingDialog) Quote(guests int) domain.PriceQuote {
	return domain.Quote(d.hotel.PricePerNight, d.checkIn, d.checkOut, guests)
}

// Submit runs Idle -> Validating -> Submitting -> Succeeded|Failed.
// A call made while another is in progress returns ErrSubmitInFlight and
// does nothing else.
func (d *BookingDialog) Submit(ctx context.Context, form BookingForm) (SubmitResult, error) {
	d.mu.Lock()
	if d.state == StateValidating || d.state == StateSubmitting {
		d.mu.Unlock()
		return SubmitResult{}, domain.ErrSubmitInFlight
	}
	// a finished submission starts over from Idle
	d.state = StateValidating
	d.err = nil
	d.mu.Unlock()

	l := log.With().Str("hotel_id", d.hotel.ID).Logger()

	if d.deps.Session == nil || !d.deps.Session.IsAuthenticated() {
		d.setState(StateIdle, nil)
		if d.deps.Nav != nil {
			d.deps.Nav.Navigate(domain.ViewLogin)
		}
		observability.ObserveBooking("redirected")
		l.Info().Msg("booking requires login; redirecting")
		return SubmitResult{Redirect: domain.ViewLogin}, nil
	}

	if err := ValidateStay(d.checkIn, d.checkOut, form.Guests); err != nil {
		return d.invalid(err)
	}

	q := d.Quote(form.Guests)
	req := domain.BookingRequest{
		HotelID:         d.hotel.ID,
		CheckIn:         d.checkIn,
		CheckOut:        d.checkOut,
		Guests:          form.Guests,
		SpecialRequests: form.SpecialRequests,
		TotalPrice:      q.Total,
	}

	d.setState(StateSubmitting, nil)
	bc, err := d.deps.API.CreateBooking(ctx, req)
	if err == nil {
		conf := domain.Confirmation{Booking: d.confirmed(bc, req), Success: true}
		l.Info().Int64("booking_id", conf.Booking.ID).Float64("total", req.TotalPrice).Msg("booking created")
		observability.ObserveBooking("server")
		return d.succeed(ctx, conf), nil
	}

	if d.deps.OfflineFallback && IsOffline(err) {
		b := domain.BookingConfirmation{
			ID:              nextLocalID(d.deps.Now()),
			HotelID:         req.HotelID,
			HotelName:       d.hotel.Name,
			CheckIn:         req.CheckIn,
			CheckOut:        req.CheckOut,
			Guests:          req.Guests,
			TotalPrice:      req.TotalPrice,
			Status:          domain.StatusConfirmed,
			SpecialRequests: req.SpecialRequests,
		}
		d.withOwner(&b)
		conf := domain.Confirmation{Booking: b, Success: true, Synthesized: true}
		l.Warn().Err(err).Int64("local_id", conf.Booking.ID).Msg("create booking failed; showing offline confirmation")
		observability.ObserveBooking("synthesized")
		return d.succeed(ctx, conf), nil
	}

	l.Error().Err(err).Msg("create booking failed")
	observability.ObserveBooking("failed")
	err = fmt.Errorf("create booking: %w", err)
	d.setState(StateFailed, err)
	return SubmitResult{}, err
}

func (d *BookingDialog) invalid(err error) (SubmitResult, error) {
	observability.ObserveBooking("invalid")
	d.setState(StateFailed, err)
	return SubmitResult{}, err
}

func (d *BookingDialog) succeed(ctx context.Context, conf domain.Confirmation) SubmitResult {
	if d.deps.Journal != nil {
		if _, err := d.deps.Journal.Record(ctx, conf); err != nil {
			log.Error().Err(err).Int64("booking_id", conf.Booking.ID).Msg("journal record failed")
		}
	}
	d.setState(StateSucceeded, nil)
	if d.deps.Nav != nil {
		d.deps.Nav.Navigate(domain.ViewConfirmation)
	}
	return SubmitResult{Confirmation: &conf}
}

// confirmed fills what the server left out from the request that produced it.
func (d *BookingDialog) confirmed(bc domain.BookingConfirmation, req domain.BookingRequest) domain.BookingConfirmation {
	if bc.HotelID == "" {
		bc.HotelID = req.HotelID
	}
	if bc.HotelName == "" {
		bc.HotelName = d.hotel.Name
	}
	if bc.CheckIn.IsZero() {
		bc.CheckIn = req.CheckIn
	}
	if bc.CheckOut.IsZero() {
		bc.CheckOut = req.CheckOut
	}
	if bc.Guests == 0 {
		bc.Guests = req.Guests
	}
	if bc.TotalPrice == 0 {
		bc.TotalPrice = req.TotalPrice
	}
	if bc.Status == "" {
		bc.Status = domain.StatusPending
	}
	if bc.SpecialRequests == "" {
		bc.SpecialRequests = req.SpecialRequests
	}
	d.withOwner(&bc)
	return bc
}

func (d *BookingDialog) withOwner(b *domain.BookingConfirmation) {
	u, ok := d.deps.Session.User()
	if !ok {
		return
	}
	if b.UserID == 0 {
		b.UserID = u.ID
	}
	if b.UserEmail == "" {
		b.UserEmail = u.Email
	}
}

func (d *BookingDialog) setState(s BookingState, err error) {
	d.mu.Lock()
	d.state = s
	d.err = err
	d.mu.Unlock()
}

// ValidateStay checks what a booking needs before anything is sent.
func ValidateStay(checkIn, checkOut time.Time, guests int) error {
	if checkIn.IsZero() || checkOut.IsZero() {
		return &domain.ValidationError{Field: "dates", Msg: "please select check-in and check-out dates"}
	}
	if guests < 1 {
		return &domain.ValidationError{Field: "guests", Msg: "at least one guest is required"}
	}
	return nil
}

// IsOffline: only transport and 5xx failures. A 401, a validation or a
// conflict answer from the server is always reported.
func IsOffline(err error) bool {
	return errors.Is(err, domain.ErrNetwork) || errors.Is(err, context.DeadlineExceeded)
}

var lastLocalID atomic.Int64

// nextLocalID returns now in Unix milliseconds, bumped to stay strictly
// increasing within the process.
func nextLocalID(now time.Time) int64 {
	id := now.UnixMilli()
	for {
		prev := lastLocalID.Load()
		if id <= prev {
			id = prev + 1
		}
		if lastLocalID.CompareAndSwap(prev, id) {
			return id
		}
	}
}
