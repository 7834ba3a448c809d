package app_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"hotel_booking_web/internal/app"
	"hotel_booking_web/internal/domain"
)

func TestGetHotel_CacheMissThenHit(t *testing.T) {
	api := &fakeHotelAPI{hotel: domain.Hotel{ID: "42", Name: "Hôtel Test", PricePerNight: 100}}
	cache := &fakeCache{}
	q := app.NewHotelQueries(api, cache, 10*time.Minute)

	// Miss (first time, populates cache)
	h, err := q.GetHotel(context.Background(), "42")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if h.ID != "42" || h.Name != "Hôtel Test" {
		t.Fatalf("unexpected hotel: %+v", h)
	}

	// Hit: change the backend answer, cached value must win
	api.hotel = domain.Hotel{ID: "42", Name: "Changed"}
	h2, err := q.GetHotel(context.Background(), "42")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if h2.Name != "Hôtel Test" {
		t.Fatalf("expected cached hotel, got %+v", h2)
	}
	if api.gets != 1 {
		t.Fatalf("expected 1 backend call, got %d", api.gets)
	}

	q.Invalidate(context.Background(), "42")
	h3, _ := q.GetHotel(context.Background(), "42")
	if h3.Name != "Changed" || api.gets != 2 {
		t.Fatalf("invalidate did not drop the cached copy: %+v gets=%d", h3, api.gets)
	}
}

func TestGetHotel_NilCache(t *testing.T) {
	api := &fakeHotelAPI{hotel: domain.Hotel{ID: "1"}}
	q := app.NewHotelQueries(api, nil, 0)
	for i := 0; i < 2; i++ {
		if _, err := q.GetHotel(context.Background(), "1"); err != nil {
			t.Fatalf("err: %v", err)
		}
	}
	if api.gets != 2 {
		t.Fatalf("expected 2 backend calls, got %d", api.gets)
	}
	q.Invalidate(context.Background(), "1")
}

func TestDetail_QuoteAndAvailability(t *testing.T) {
	api := &fakeHotelAPI{
		hotel: domain.Hotel{ID: "7", Name: "Sheraton", PricePerNight: 17000},
		avail: &domain.Availability{HotelID: "7", Available: false},
	}
	q := app.NewHotelQueries(api, &fakeCache{}, time.Minute)

	d, err := q.Detail(context.Background(), "7", date("2024-01-15"), date("2024-01-18"), 2)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if d.Available == nil || *d.Available {
		t.Fatalf("expected known unavailability, got %v", d.Available)
	}
	if d.Quote.Nights != 3 || d.Quote.Total != 102000 {
		t.Fatalf("unexpected quote: %+v", d.Quote)
	}
	if d.CheckIn != "2024-01-15" || d.CheckOut != "2024-01-18" {
		t.Fatalf("unexpected dates: %s %s", d.CheckIn, d.CheckOut)
	}
}

func TestDetail_AvailabilityFailureIsNotFatal(t *testing.T) {
	api := &fakeHotelAPI{
		hotel:    domain.Hotel{ID: "7", PricePerNight: 100},
		availErr: fmt.Errorf("%w: status 502", domain.ErrNetwork),
	}
	q := app.NewHotelQueries(api, nil, 0)

	d, err := q.Detail(context.Background(), "7", date("2024-01-15"), date("2024-01-16"), 0)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if d.Available != nil {
		t.Fatalf("availability should be unknown")
	}
	if d.Quote.Guests != 1 || d.Quote.Total != 100 {
		t.Fatalf("unexpected quote: %+v", d.Quote)
	}
}

func TestDetail_NoDatesSkipsAvailability(t *testing.T) {
	api := &fakeHotelAPI{hotel: domain.Hotel{ID: "7", PricePerNight: 100}, availErr: domain.ErrUnauthorized}
	q := app.NewHotelQueries(api, nil, 0)

	d, err := q.Detail(context.Background(), "7", time.Time{}, time.Time{}, 1)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if d.Available != nil || d.CheckIn != "" {
		t.Fatalf("unexpected detail: %+v", d)
	}
	if d.Quote.Nights != 1 {
		t.Fatalf("missing dates price one night, got %d", d.Quote.Nights)
	}
}

func TestDetail_HotelNotFound(t *testing.T) {
	api := &fakeHotelAPI{getErr: domain.ErrNotFound}
	q := app.NewHotelQueries(api, nil, 0)
	if _, err := q.Detail(context.Background(), "x", time.Time{}, time.Time{}, 1); err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
