package app

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"hotel_booking_web/internal/domain"
)

const adminHotelListSize = 100

type AdminDeps struct {
	Hotels   domain.HotelAPI
	Bookings domain.BookingAPI
	Users    domain.UserAPI
	Session  domain.Session
	Nav      domain.Navigator
	Queries  *HotelQueries // optional; invalidated on hotel writes
}

// AdminService is the dashboard: straight passthroughs guarded by the admin role.
type AdminService struct{ d AdminDeps }

func NewAdminService(d AdminDeps) *AdminService { return &AdminService{d: d} }

func (s *AdminService) guard() error {
	if s.d.Session == nil || !s.d.Session.IsAuthenticated() {
		if s.d.Nav != nil {
			s.d.Nav.Navigate(domain.ViewLogin)
		}
		return domain.ErrUnauthorized
	}
	if u, ok := s.d.Session.User(); !ok || !u.IsAdmin() {
		return domain.ErrForbidden
	}
	return nil
}

func (s *AdminService) ListHotels(ctx context.Context) ([]domain.Hotel, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}
	page, err := s.d.Hotels.SearchHotels(ctx, domain.HotelSearch{City: "", Size: adminHotelListSize})
	if err != nil {
		return nil, err
	}
	return page.Hotels, nil
}

func (s *AdminService) CreateHotel(ctx context.Context, h domain.Hotel) (domain.Hotel, error) {
	if err := s.guard(); err != nil {
		return domain.Hotel{}, err
	}
	if err := validateHotel(h); err != nil {
		return domain.Hotel{}, err
	}
	return s.d.Hotels.CreateHotel(ctx, h)
}

func (s *AdminService) UpdateHotel(ctx context.Context, id string, h domain.Hotel) (domain.Hotel, error) {
	if err := s.guard(); err != nil {
		return domain.Hotel{}, err
	}
	if err := validateHotel(h); err != nil {
		return domain.Hotel{}, err
	}
	out, err := s.d.Hotels.UpdateHotel(ctx, id, h)
	if err != nil {
		return domain.Hotel{}, err
	}
	s.invalidate(ctx, id)
	return out, nil
}

func (s *AdminService) DeleteHotel(ctx context.Context, id string) error {
	if err := s.guard(); err != nil {
		return err
	}
	if err := s.d.Hotels.DeleteHotel(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	log.Info().Str("hotel_id", id).Msg("hotel deleted")
	return nil
}

func (s *AdminService) ListBookings(ctx context.Context) ([]domain.BookingConfirmation, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}
	return s.d.Bookings.ListBookings(ctx)
}

// UpdateBookingStatus asks the backend to move a booking. The client never
// changes status on its own.
func (s *AdminService) UpdateBookingStatus(ctx context.Context, id int64, st domain.BookingStatus) error {
	if err := s.guard(); err != nil {
		return err
	}
	if !st.Valid() {
		return &domain.ValidationError{Field: "status", Msg: "status must be one of pending, confirmed, cancelled, rejected"}
	}
	return s.d.Bookings.UpdateBookingStatus(ctx, id, st)
}

func (s *AdminService) ListUsers(ctx context.Context) ([]domain.User, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}
	return s.d.Users.ListUsers(ctx)
}

func (s *AdminService) invalidate(ctx context.Context, id string) {
	if s.d.Queries != nil {
		s.d.Queries.Invalidate(ctx, id)
	}
}

func validateHotel(h domain.Hotel) error {
	switch {
	case strings.TrimSpace(h.Name) == "":
		return &domain.ValidationError{Field: "name", Msg: "name is required"}
	case strings.TrimSpace(h.City) == "":
		return &domain.ValidationError{Field: "city", Msg: "city is required"}
	case h.PricePerNight < 0:
		return &domain.ValidationError{Field: "price_per_night", Msg: "price per night cannot be negative"}
	case h.Rating < 0 || h.Rating > 5:
		return &domain.ValidationError{Field: "rating", Msg: "rating must be between 0 and 5"}
	}
	return nil
}
