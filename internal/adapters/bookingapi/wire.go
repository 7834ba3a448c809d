package bookingapi

import (
	"bytes"
	"encoding/json"
	"strconv"

	"hotel_booking_web/internal/domain"
)

// flexID accepts both "abc" and 123: hotel ids come from a document store,
// booking and user ids from SQL.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexID(n.String())
	return nil
}

func (f flexID) int64() int64 {
	n, _ := strconv.ParseInt(string(f), 10, 64)
	return n
}

type hotelDTO struct {
	ID            flexID   `json:"id,omitempty"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	City          string   `json:"city"`
	Address       string   `json:"address"`
	Photos        []string `json:"photos"`
	Thumbnail     string   `json:"thumbnail"`
	Amenities     []string `json:"amenities"`
	Rating        float64  `json:"rating"`
	PricePerNight float64  `json:"price_per_night"`
}

func (h hotelDTO) toDomain() domain.Hotel {
	return domain.Hotel{
		ID:            string(h.ID),
		Name:          h.Name,
		City:          h.City,
		Address:       h.Address,
		Description:   h.Description,
		PricePerNight: h.PricePerNight,
		Rating:        h.Rating,
		Amenities:     nonNil(h.Amenities),
		Photos:        nonNil(h.Photos),
		Thumbnail:     h.Thumbnail,
	}
}

func hotelFromDomain(h domain.Hotel) hotelDTO {
	return hotelDTO{
		ID:            flexID(h.ID),
		Name:          h.Name,
		Description:   h.Description,
		City:          h.City,
		Address:       h.Address,
		Photos:        nonNil(h.Photos),
		Thumbnail:     h.Thumbnail,
		Amenities:     nonNil(h.Amenities),
		Rating:        h.Rating,
		PricePerNight: h.PricePerNight,
	}
}

type searchDTO struct {
	Hotels []hotelDTO `json:"hotels"`
	Total  int        `json:"total"`
}

func (s searchDTO) toDomain() domain.HotelsPage {
	out := domain.HotelsPage{Hotels: make([]domain.Hotel, 0, len(s.Hotels)), Total: s.Total}
	for _, h := range s.Hotels {
		out.Hotels = append(out.Hotels, h.toDomain())
	}
	return out
}

type bookingRequestDTO struct {
	HotelID         string  `json:"hotel_id"`
	CheckInDate     string  `json:"check_in_date"`
	CheckOutDate    string  `json:"check_out_date"`
	Guests          int     `json:"guests"`
	TotalPrice      float64 `json:"total_price"`
	SpecialRequests string  `json:"special_requests,omitempty"`
}

func bookingRequestFromDomain(r domain.BookingRequest) bookingRequestDTO {
	return bookingRequestDTO{
		HotelID:         r.HotelID,
		CheckInDate:     domain.FormatDate(r.CheckIn),
		CheckOutDate:    domain.FormatDate(r.CheckOut),
		Guests:          r.Guests,
		TotalPrice:      r.TotalPrice,
		SpecialRequests: r.SpecialRequests,
	}
}

type bookingDTO struct {
	ID           flexID  `json:"id"`
	HotelID      flexID  `json:"hotel_id"`
	HotelName    string  `json:"hotel_name"`
	CheckInDate  string  `json:"check_in_date"`
	CheckOutDate string  `json:"check_out_date"`
	Guests       int     `json:"guests"`
	TotalPrice   float64 `json:"total_price"`
	Status       string  `json:"status"`
	UserEmail    string  `json:"user_email"`
}

func (b bookingDTO) toDomain() domain.BookingConfirmation {
	in, _ := domain.ParseDate(b.CheckInDate)
	out, _ := domain.ParseDate(b.CheckOutDate)
	return domain.BookingConfirmation{
		ID:         b.ID.int64(),
		HotelID:    string(b.HotelID),
		HotelName:  b.HotelName,
		CheckIn:    in,
		CheckOut:   out,
		Guests:     b.Guests,
		TotalPrice: b.TotalPrice,
		Status:     domain.BookingStatus(b.Status),
		UserEmail:  b.UserEmail,
	}
}

func bookingsToDomain(in []bookingDTO) []domain.BookingConfirmation {
	out := make([]domain.BookingConfirmation, 0, len(in))
	for _, b := range in {
		out = append(out, b.toDomain())
	}
	return out
}

type userDTO struct {
	ID    flexID `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Role  string `json:"role"`
}

func (u userDTO) toDomain() domain.User {
	return domain.User{ID: u.ID.int64(), Name: u.Name, Email: u.Email, Phone: u.Phone, Role: u.Role}
}

type authDTO struct {
	Token string  `json:"token"`
	User  userDTO `json:"user"`
}

func (a authDTO) toDomain() domain.AuthResult {
	return domain.AuthResult{Token: a.Token, User: a.User.toDomain()}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
