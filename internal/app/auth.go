package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"hotel_booking_web/internal/domain"
)

const minPasswordLen = 6

type AuthService struct {
	api     domain.AuthAPI
	session domain.Session
	nav     domain.Navigator
}

func NewAuthService(api domain.AuthAPI, s domain.Session, nav domain.Navigator) *AuthService {
	return &AuthService{api: api, session: s, nav: nav}
}

// Login stores the token in the session and goes back to from (home when empty).
func (s *AuthService) Login(ctx context.Context, c domain.Credentials, from domain.View) (domain.User, error) {
	c.Email = strings.TrimSpace(c.Email)
	if c.Email == "" || c.Password == "" {
		return domain.User{}, &domain.ValidationError{Field: "credentials", Msg: "email and password are required"}
	}
	res, err := s.api.Login(ctx, c)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			return domain.User{}, &domain.ValidationError{Field: "credentials", Msg: "invalid email or password"}
		}
		return domain.User{}, fmt.Errorf("login: %w", err)
	}
	s.signedIn(res, from)
	return res.User, nil
}

type RegisterForm struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	Phone           string `json:"phone"`
}

// Register checks the form locally before any network call.
func (s *AuthService) Register(ctx context.Context, f RegisterForm, from domain.View) (domain.User, error) {
	if strings.TrimSpace(f.Name) == "" || strings.TrimSpace(f.Email) == "" {
		return domain.User{}, &domain.ValidationError{Field: "name", Msg: "name and email are required"}
	}
	if f.Password != f.ConfirmPassword {
		return domain.User{}, &domain.ValidationError{Field: "confirm_password", Msg: "passwords do not match"}
	}
	if len(f.Password) < minPasswordLen {
		return domain.User{}, &domain.ValidationError{Field: "password", Msg: fmt.Sprintf("password must be at least %d characters", minPasswordLen)}
	}
	res, err := s.api.Register(ctx, domain.Registration{
		Name:     strings.TrimSpace(f.Name),
		Email:    strings.TrimSpace(f.Email),
		Password: f.Password,
		Phone:    strings.TrimSpace(f.Phone),
	})
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return domain.User{}, &domain.ValidationError{Field: "email", Msg: "email already registered"}
		}
		return domain.User{}, fmt.Errorf("register: %w", err)
	}
	s.signedIn(res, from)
	return res.User, nil
}

func (s *AuthService) Logout() {
	s.session.Clear()
	s.nav.Navigate(domain.ViewHome)
}

// Me refreshes the session's user from the backend.
func (s *AuthService) Me(ctx context.Context) (domain.User, error) {
	u, err := s.api.Me(ctx)
	if err != nil {
		return domain.User{}, err
	}
	s.session.Set(s.session.Token(), u)
	return u, nil
}

func (s *AuthService) signedIn(res domain.AuthResult, from domain.View) {
	s.session.Set(res.Token, res.User)
	if from == "" || from == domain.ViewLogin {
		from = domain.ViewHome
	}
	log.Info().Int64("user_id", res.User.ID).Msg("signed in")
	s.nav.Navigate(from)
}

// AccountService covers the signed-in user's own data.
type AccountService struct {
	users    domain.UserAPI
	bookings domain.BookingAPI
}

func NewAccountService(u domain.UserAPI, b domain.BookingAPI) *AccountService {
	return &AccountService{users: u, bookings: b}
}

func (s *AccountService) Profile(ctx context.Context) (domain.User, error) {
	return s.users.GetProfile(ctx)
}

func (s *AccountService) UpdateProfile(ctx context.Context, p domain.ProfileUpdate) (domain.User, error) {
	if strings.TrimSpace(p.Name) == "" {
		return domain.User{}, &domain.ValidationError{Field: "name", Msg: "name is required"}
	}
	return s.users.UpdateProfile(ctx, p)
}

func (s *AccountService) MyBookings(ctx context.Context) ([]domain.BookingConfirmation, error) {
	return s.bookings.ListUserBookings(ctx)
}
