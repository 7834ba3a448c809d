package app

import "hotel_booking_web/internal/domain"

// ConfirmationView is built straight from what the booking dialog returned.
type ConfirmationView struct {
	Success     bool                 `json:"success"`
	Synthesized bool                 `json:"synthesized"`
	BookingID   int64                `json:"booking_id"`
	HotelID     string               `json:"hotel_id"`
	HotelName   string               `json:"hotel_name"`
	CheckIn     string               `json:"check_in_date"`
	CheckOut    string               `json:"check_out_date"`
	Nights      int                  `json:"nights"`
	Guests      int                  `json:"guests"`
	TotalPrice  float64              `json:"total_price"`
	Status      domain.BookingStatus `json:"status"`

	SpecialRequests string `json:"special_requests,omitempty"`
}

func NewConfirmationView(c domain.Confirmation) ConfirmationView {
	b := c.Booking
	return ConfirmationView{
		Success:     c.Success,
		Synthesized: c.Synthesized,
		BookingID:   b.ID,
		HotelID:     b.HotelID,
		HotelName:   b.HotelName,
		CheckIn:     domain.FormatDate(b.CheckIn),
		CheckOut:    domain.FormatDate(b.CheckOut),
		Nights:      domain.NightsBetween(b.CheckIn, b.CheckOut),
		Guests:      b.Guests,
		TotalPrice:  b.TotalPrice,
		Status:      b.Status,

		SpecialRequests: b.SpecialRequests,
	}
}
