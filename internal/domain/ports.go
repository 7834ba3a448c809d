package domain

import (
	"context"
	"time"
)

// HotelAPI covers the hotel endpoints of the backend.
type HotelAPI interface {
	SearchHotels(ctx context.Context, q HotelSearch) (HotelsPage, error)
	GetHotel(ctx context.Context, id string) (Hotel, error)
	CheckAvailability(ctx context.Context, id string, checkIn, checkOut time.Time) (Availability, error)
	CreateHotel(ctx context.Context, h Hotel) (Hotel, error)
	UpdateHotel(ctx context.Context, id string, h Hotel) (Hotel, error)
	DeleteHotel(ctx context.Context, id string) error
}

type BookingAPI interface {
	CreateBooking(ctx context.Context, r BookingRequest) (BookingConfirmation, error)
	ListBookings(ctx context.Context) ([]BookingConfirmation, error)
	ListUserBookings(ctx context.Context) ([]BookingConfirmation, error)
	UpdateBookingStatus(ctx context.Context, id int64, s BookingStatus) error
}

type AuthAPI interface {
	Login(ctx context.Context, c Credentials) (AuthResult, error)
	Register(ctx context.Context, r Registration) (AuthResult, error)
	Me(ctx context.Context) (User, error)
}

type UserAPI interface {
	GetProfile(ctx context.Context) (User, error)
	UpdateProfile(ctx context.Context, p ProfileUpdate) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
}

// Session is the auth context handed to every flow. Nothing reads ambient
// global state.
type Session interface {
	Token() string
	User() (User, bool)
	IsAuthenticated() bool
	Set(token string, u User)
	Clear()
}

// View names a screen the front can move to.
type View string

const (
	ViewHome         View = "/"
	ViewLogin        View = "/login"
	ViewSearch       View = "/search"
	ViewHotel        View = "/hotel"
	ViewConfirmation View = "/confirmation"
	ViewAdmin        View = "/admin"
)

type Navigator interface {
	Navigate(v View)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// BookingJournal keeps a local record of every confirmation the front showed.
type BookingJournal interface {
	Record(ctx context.Context, c Confirmation) (int64, error)
	ListUnreconciled(ctx context.Context, limit int) ([]JournalEntry, error)
	MarkReconciled(ctx context.Context, localID, serverID int64) error
	MarkManual(ctx context.Context, localID int64, reason string) error
}
