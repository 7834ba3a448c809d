// internal/adapters/bookingapi/client.go
package bookingapi

import (
	"bytes"
	"context"
	crand "crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"hotel_booking_web/internal/adapters/observability"
	"hotel_booking_web/internal/domain"
)

const service = "hotel-api"

// transport is shared by every session-bound Client so the rate limit is
// process wide.
type transport struct {
	base string
	hc   *http.Client
	rl   *rate.Limiter
}

// Client talks to the hotel REST API on behalf of one session.
type Client struct {
	t       *transport
	session domain.Session
	nav     domain.Navigator
}

func New(base string, rps int, timeout time.Duration) (*Client, error) {
	if strings.TrimSpace(base) == "" {
		return nil, fmt.Errorf("API base URL is required")
	}
	if rps <= 0 {
		rps = 20
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		t: &transport{
			base: strings.TrimRight(base, "/"),
			hc:   &http.Client{Timeout: timeout},
			rl:   rate.NewLimiter(rate.Limit(rps), rps),
		},
	}, nil
}

// WithSession returns a client bound to s. On any 401 the token in s is
// cleared and nav is sent to the login view.
func (c *Client) WithSession(s domain.Session, nav domain.Navigator) *Client {
	return &Client{t: c.t, session: s, nav: nav}
}

// ---- Hotels ----

func (c *Client) SearchHotels(ctx context.Context, q domain.HotelSearch) (domain.HotelsPage, error) {
	v := url.Values{}
	v.Set("city", q.City)
	if d := domain.FormatDate(q.CheckIn); d != "" {
		v.Set("checkIn", d)
	}
	if d := domain.FormatDate(q.CheckOut); d != "" {
		v.Set("checkOut", d)
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Size > 0 {
		v.Set("size", strconv.Itoa(q.Size))
	}
	var out searchDTO
	if err := c.do(ctx, "hotels.search", http.MethodGet, "/hotels/search", v, nil, &out); err != nil {
		return domain.HotelsPage{}, err
	}
	return out.toDomain(), nil
}

func (c *Client) GetHotel(ctx context.Context, id string) (domain.Hotel, error) {
	var out hotelDTO
	if err := c.do(ctx, "hotels.get", http.MethodGet, "/hotels/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return domain.Hotel{}, err
	}
	return out.toDomain(), nil
}

func (c *Client) CheckAvailability(ctx context.Context, id string, checkIn, checkOut time.Time) (domain.Availability, error) {
	v := url.Values{}
	v.Set("checkIn", domain.FormatDate(checkIn))
	v.Set("checkOut", domain.FormatDate(checkOut))
	var out struct {
		Available bool `json:"available"`
	}
	if err := c.do(ctx, "hotels.availability", http.MethodGet, "/hotels/"+url.PathEscape(id)+"/availability", v, nil, &out); err != nil {
		return domain.Availability{}, err
	}
	return domain.Availability{HotelID: id, Available: out.Available}, nil
}

func (c *Client) CreateHotel(ctx context.Context, h domain.Hotel) (domain.Hotel, error) {
	var out hotelDTO
	if err := c.do(ctx, "hotels.create", http.MethodPost, "/hotels", nil, hotelFromDomain(h), &out); err != nil {
		return domain.Hotel{}, err
	}
	return out.toDomain(), nil
}

func (c *Client) UpdateHotel(ctx context.Context, id string, h domain.Hotel) (domain.Hotel, error) {
	var out hotelDTO
	if err := c.do(ctx, "hotels.update", http.MethodPut, "/hotels/"+url.PathEscape(id), nil, hotelFromDomain(h), &out); err != nil {
		return domain.Hotel{}, err
	}
	return out.toDomain(), nil
}

func (c *Client) DeleteHotel(ctx context.Context, id string) error {
	return c.do(ctx, "hotels.delete", http.MethodDelete, "/hotels/"+url.PathEscape(id), nil, nil, nil)
}

// ---- Bookings ----

func (c *Client) CreateBooking(ctx context.Context, r domain.BookingRequest) (domain.BookingConfirmation, error) {
	var out bookingDTO
	if err := c.do(ctx, "bookings.create", http.MethodPost, "/bookings", nil, bookingRequestFromDomain(r), &out); err != nil {
		return domain.BookingConfirmation{}, err
	}
	return out.toDomain(), nil
}

func (c *Client) ListBookings(ctx context.Context) ([]domain.BookingConfirmation, error) {
	var out []bookingDTO
	if err := c.do(ctx, "bookings.list", http.MethodGet, "/bookings", nil, nil, &out); err != nil {
		return nil, err
	}
	return bookingsToDomain(out), nil
}

func (c *Client) ListUserBookings(ctx context.Context) ([]domain.BookingConfirmation, error) {
	var out []bookingDTO
	if err := c.do(ctx, "bookings.user", http.MethodGet, "/bookings/user", nil, nil, &out); err != nil {
		return nil, err
	}
	return bookingsToDomain(out), nil
}

func (c *Client) UpdateBookingStatus(ctx context.Context, id int64, s domain.BookingStatus) error {
	body := map[string]string{"status": string(s)}
	return c.do(ctx, "bookings.status", http.MethodPatch, "/bookings/"+strconv.FormatInt(id, 10)+"/status", nil, body, nil)
}

// ---- Auth & users ----

func (c *Client) Login(ctx context.Context, cr domain.Credentials) (domain.AuthResult, error) {
	var out authDTO
	if err := c.do(ctx, "auth.login", http.MethodPost, "/auth/login", nil, cr, &out); err != nil {
		return domain.AuthResult{}, err
	}
	return out.toDomain(), nil
}

func (c *Client) Register(ctx context.Context, r domain.Registration) (domain.AuthResult, error) {
	var out authDTO
	if err := c.do(ctx, "auth.register", http.MethodPost, "/auth/register", nil, r, &out); err != nil {
		return domain.AuthResult{}, err
	}
	return out.toDomain(), nil
}

func (c *Client) Me(ctx context.Context) (domain.User, error) {
	var out userDTO
	if err := c.do(ctx, "auth.me", http.MethodGet, "/auth/me", nil, nil, &out); err != nil {
		return domain.User{}, err
	}
	return out.toDomain(), nil
}

func (c *Client) GetProfile(ctx context.Context) (domain.User, error) {
	var out userDTO
	if err := c.do(ctx, "users.profile", http.MethodGet, "/users/profile", nil, nil, &out); err != nil {
		return domain.User{}, err
	}
	return out.toDomain(), nil
}

func (c *Client) UpdateProfile(ctx context.Context, p domain.ProfileUpdate) (domain.User, error) {
	var out userDTO
	if err := c.do(ctx, "users.profile.update", http.MethodPut, "/users/profile", nil, p, &out); err != nil {
		return domain.User{}, err
	}
	return out.toDomain(), nil
}

func (c *Client) ListUsers(ctx context.Context) ([]domain.User, error) {
	var out []userDTO
	if err := c.do(ctx, "users.list", http.MethodGet, "/users", nil, nil, &out); err != nil {
		return nil, err
	}
	users := make([]domain.User, 0, len(out))
	for _, u := range out {
		users = append(users, u.toDomain())
	}
	return users, nil
}

// ---- Internals ----

// do sends one API call. GETs are retried on 429 and transient 5xx honoring
// Retry-After; writes go out exactly once.
func (c *Client) do(ctx context.Context, endpoint, method, path string, query url.Values, in, out any) error {
	u := c.t.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var payload []byte
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s body: %w", endpoint, err)
		}
		payload = b
	}

	attempts := 1
	if method == http.MethodGet {
		attempts = 4
	}

	if err := c.t.rl.Wait(ctx); err != nil {
		return err
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		req, err := http.NewRequestWithContext(ctx, method, u, bodyReader(payload))
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "hotel-booking-web/1.0")
		req.Header.Set("X-Request-ID", uuid.NewString())
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if c.session != nil {
			if tok := c.session.Token(); tok != "" {
				req.Header.Set("Authorization", "Bearer "+tok)
			}
		}

		start := time.Now()
		resp, err := c.t.hc.Do(req)
		if err != nil {
			observability.ObserveExternal(service, endpoint, 0, time.Since(start))
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = fmt.Errorf("%w: %s %s: %v", domain.ErrNetwork, method, path, err)
			if i < attempts-1 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr
		}
		observability.ObserveExternal(service, endpoint, resp.StatusCode, time.Since(start))

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			defer resp.Body.Close()
			if out == nil || resp.StatusCode == http.StatusNoContent {
				_, _ = io.Copy(io.Discard, resp.Body)
				return nil
			}
			if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
				return fmt.Errorf("decode %s: %w", endpoint, err)
			}
			return nil

		case resp.StatusCode == http.StatusUnauthorized:
			resp.Body.Close()
			c.unauthorized(endpoint)
			return domain.ErrUnauthorized

		case resp.StatusCode == http.StatusForbidden:
			resp.Body.Close()
			return domain.ErrForbidden

		case resp.StatusCode == http.StatusNotFound:
			resp.Body.Close()
			return domain.ErrNotFound

		case resp.StatusCode == http.StatusConflict:
			msg := errorMessage(resp)
			return fmt.Errorf("%w: %s", domain.ErrConflict, msg)

		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			wait := retryAfter(resp)
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(i)
			}
			lastErr = fmt.Errorf("%w: remote %d", domain.ErrNetwork, resp.StatusCode)
			if i < attempts-1 && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr

		default:
			return &domain.APIError{Status: resp.StatusCode, Msg: errorMessage(resp)}
		}
	}
	return lastErr
}

// unauthorized is the global 401 policy: drop the token, go to login.
func (c *Client) unauthorized(endpoint string) {
	log.Warn().Str("endpoint", endpoint).Msg("api answered 401; clearing session")
	if c.session != nil {
		c.session.Clear()
	}
	if c.nav != nil {
		c.nav.Navigate(domain.ViewLogin)
	}
}

func bodyReader(b []byte) io.Reader {
	if b == nil {
		return nil
	}
	return bytes.NewReader(b)
}

// errorMessage reads {"error": "..."} or falls back to the raw body. Closes the body.
func errorMessage(resp *http.Response) string {
	defer resp.Body.Close()
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(b, &e) == nil && e.Error != "" {
		return e.Error
	}
	if s := strings.TrimSpace(string(b)); s != "" {
		return s
	}
	return http.StatusText(resp.StatusCode)
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After (seconds or HTTP-date). Returns 0 if absent/invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff: 100ms, 200ms, 400ms... plus up to 50% jitter.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 100 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	return base + time.Duration(0.5*f*float64(base))
}
