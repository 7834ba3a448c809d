package domain_test

import (
	"testing"
	"time"

	"hotel_booking_web/internal/domain"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, ok := domain.ParseDate(s)
	if !ok {
		t.Fatalf("bad date %q", s)
	}
	return d
}

func TestNightsBetween(t *testing.T) {
	cases := []struct {
		name      string
		in, out   string
		wantNight int
	}{
		{"three nights", "2024-01-15", "2024-01-18", 3},
		{"one night", "2024-01-15", "2024-01-16", 1},
		{"same day floors to one", "2024-01-15", "2024-01-15", 1},
		{"reversed range uses absolute value", "2024-01-18", "2024-01-15", 3},
		{"across month end", "2024-01-30", "2024-02-02", 3},
		{"across leap day", "2024-02-28", "2024-03-01", 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := domain.NightsBetween(mustDate(t, tc.in), mustDate(t, tc.out))
			if got != tc.wantNight {
				t.Fatalf("NightsBetween(%s,%s)=%d want %d", tc.in, tc.out, got, tc.wantNight)
			}
		})
	}
}

func TestNightsBetween_PartialDayRoundsUp(t *testing.T) {
	in := time.Date(2024, 1, 15, 14, 0, 0, 0, time.UTC)
	out := time.Date(2024, 1, 17, 11, 0, 0, 0, time.UTC) // 1d21h
	if got := domain.NightsBetween(in, out); got != 2 {
		t.Fatalf("want 2, got %d", got)
	}
}

func TestNightsBetween_MissingDates(t *testing.T) {
	d := mustDate(t, "2024-01-15")
	if got := domain.NightsBetween(time.Time{}, d); got != 1 {
		t.Fatalf("missing check-in: want 1, got %d", got)
	}
	if got := domain.NightsBetween(d, time.Time{}); got != 1 {
		t.Fatalf("missing check-out: want 1, got %d", got)
	}
	bad, _ := domain.ParseDate("15/01/2024")
	if got := domain.NightsBetween(bad, d); got != 1 {
		t.Fatalf("malformed check-in: want 1, got %d", got)
	}
}

func TestTotalPrice(t *testing.T) {
	if got := domain.TotalPrice(15000, 3, 2); got != 90000 {
		t.Fatalf("want 90000, got %v", got)
	}
	if got := domain.TotalPrice(0, 5, 4); got != 0 {
		t.Fatalf("free stay: want 0, got %v", got)
	}
	// no rounding
	if got := domain.TotalPrice(99.99, 1, 1); got != 99.99 {
		t.Fatalf("want 99.99, got %v", got)
	}
}

func TestQuote(t *testing.T) {
	q := domain.Quote(17000, mustDate(t, "2024-01-15"), mustDate(t, "2024-01-18"), 2)
	if q.Nights != 3 || q.Guests != 2 || q.Total != 102000 {
		t.Fatalf("unexpected quote: %+v", q)
	}
}

func TestParseDate(t *testing.T) {
	d, ok := domain.ParseDate("2024-01-15T10:00:00-03:00")
	if !ok || d.Location() != time.UTC || d.Hour() != 13 {
		t.Fatalf("unexpected RFC3339 parse: %v %v", d, ok)
	}
	if _, ok := domain.ParseDate(""); ok {
		t.Fatalf("empty string must not parse")
	}
	if got := domain.FormatDate(mustDate(t, "2024-01-15")); got != "2024-01-15" {
		t.Fatalf("FormatDate round trip: %s", got)
	}
}

func TestSearchQueryValidate(t *testing.T) {
	now := time.Date(2024, 1, 10, 18, 30, 0, 0, time.UTC)
	base := domain.SearchQuery{City: "Córdoba", CheckIn: mustDate(t, "2024-01-15"), CheckOut: mustDate(t, "2024-01-18")}

	if err := base.Validate(now); err != nil {
		t.Fatalf("valid query rejected: %v", err)
	}

	today := base
	today.CheckIn = mustDate(t, "2024-01-10")
	if err := today.Validate(now); err != nil {
		t.Fatalf("check-in today must be allowed: %v", err)
	}

	bad := []domain.SearchQuery{
		{City: "", CheckIn: base.CheckIn, CheckOut: base.CheckOut},
		{City: "Córdoba", CheckOut: base.CheckOut},
		{City: "Córdoba", CheckIn: base.CheckIn, CheckOut: base.CheckIn},
		{City: "Córdoba", CheckIn: mustDate(t, "2024-01-09"), CheckOut: base.CheckOut},
	}
	for i, q := range bad {
		if err := q.Validate(now); !domain.IsValidation(err) {
			t.Fatalf("case %d: expected ValidationError, got %v", i, err)
		}
	}
}

func TestBookingStatusValid(t *testing.T) {
	for _, s := range []domain.BookingStatus{"pending", "confirmed", "cancelled", "rejected"} {
		if !s.Valid() {
			t.Fatalf("%s should be valid", s)
		}
	}
	if domain.BookingStatus("completed").Valid() {
		t.Fatalf("completed is not a backend status")
	}
}
