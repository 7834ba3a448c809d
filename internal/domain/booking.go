package domain

import "time"

type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
	StatusRejected  BookingStatus = "rejected"
)

// Valid reports whether s is one of the statuses the backend understands.
func (s BookingStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusRejected:
		return true
	}
	return false
}

// BookingRequest is built by the booking dialog and submitted once.
type BookingRequest struct {
	HotelID         string
	CheckIn         time.Time
	CheckOut        time.Time
	Guests          int
	SpecialRequests string
	TotalPrice      float64
}

// BookingConfirmation is the server's view of a booking. Status transitions
// belong to the backend only.
type BookingConfirmation struct {
	ID         int64         `json:"id"`
	HotelID    string        `json:"hotel_id"`
	HotelName  string        `json:"hotel_name"`
	CheckIn    time.Time     `json:"check_in_date"`
	CheckOut   time.Time     `json:"check_out_date"`
	Guests     int           `json:"guests"`
	TotalPrice float64       `json:"total_price"`
	Status     BookingStatus `json:"status"`
	UserID     int64         `json:"user_id,omitempty"`
	UserEmail  string        `json:"user_email,omitempty"`

	SpecialRequests string `json:"special_requests,omitempty"`
}

// Owner is the user a booking was made for, if known.
func (b BookingConfirmation) Owner() (User, bool) {
	if b.UserID == 0 && b.UserEmail == "" {
		return User{}, false
	}
	return User{ID: b.UserID, Email: b.UserEmail}, true
}

// Confirmation is handed from the booking dialog to the confirmation view.
type Confirmation struct {
	Booking     BookingConfirmation `json:"booking"`
	Success     bool                `json:"success"`
	Synthesized bool                `json:"synthesized"`
}

// JournalEntry is a confirmation as recorded locally.
type JournalEntry struct {
	LocalID     int64
	ServerID    *int64
	Booking     BookingConfirmation
	Synthesized bool
	Reconciled  bool
	CreatedAt   time.Time
}
