package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"hotel_booking_web/internal/domain"
)

func hotelKey(id string) string { return fmt.Sprintf("hotel:%s", id) }

// HotelQueries reads hotels through the cache. cache may be nil.
type HotelQueries struct {
	api      domain.HotelAPI
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewHotelQueries(api domain.HotelAPI, c domain.Cache, ttl time.Duration) *HotelQueries {
	return &HotelQueries{api: api, cache: c, cacheTTL: ttl}
}

func (s *HotelQueries) GetHotel(ctx context.Context, id string) (domain.Hotel, error) {
	key := hotelKey(id)
	var h domain.Hotel
	if s.cache != nil {
		if ok, err := s.cache.Get(ctx, key, &h); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("cache get failed")
		} else if ok {
			return h, nil
		}
	}
	h, err := s.api.GetHotel(ctx, id)
	if err != nil {
		return domain.Hotel{}, err
	}
	if s.cache != nil && s.cacheTTL > 0 {
		_ = s.cache.Set(ctx, key, h, int(s.cacheTTL.Seconds()))
	}
	return h, nil
}

// HotelDetail is the state of the hotel page.
type HotelDetail struct {
	Hotel     domain.Hotel      `json:"hotel"`
	CheckIn   string            `json:"check_in,omitempty"`
	CheckOut  string            `json:"check_out,omitempty"`
	Available *bool             `json:"available,omitempty"` // nil: unknown
	Quote     domain.PriceQuote `json:"quote"`
}

// Detail loads the hotel and, when both dates are known, its availability in
// parallel. Availability failures leave it unknown.
func (s *HotelQueries) Detail(ctx context.Context, id string, checkIn, checkOut time.Time, guests int) (HotelDetail, error) {
	if guests < 1 {
		guests = 1
	}
	var (
		h     domain.Hotel
		avail *bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		h, err = s.GetHotel(gctx, id)
		return err
	})
	if !checkIn.IsZero() && !checkOut.IsZero() {
		g.Go(func() error {
			a, err := s.api.CheckAvailability(gctx, id, checkIn, checkOut)
			if err != nil {
				if errors.Is(err, domain.ErrUnauthorized) {
					return err
				}
				log.Warn().Err(err).Str("hotel_id", id).Msg("availability lookup failed")
				return nil
			}
			avail = &a.Available
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return HotelDetail{}, err
	}
	return HotelDetail{
		Hotel:     h,
		CheckIn:   domain.FormatDate(checkIn),
		CheckOut:  domain.FormatDate(checkOut),
		Available: avail,
		Quote:     domain.Quote(h.PricePerNight, checkIn, checkOut, guests),
	}, nil
}

// Invalidate drops the cached copy of a hotel after an admin write.
func (s *HotelQueries) Invalidate(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, hotelKey(id)); err != nil {
		log.Warn().Err(err).Str("hotel_id", id).Msg("cache invalidate failed")
	}
}
