package domain

import (
	"math"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// ParseDate accepts YYYY-MM-DD (UTC midnight) or RFC 3339. Empty or malformed
// input yields the zero time and false.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.ParseInLocation(DateLayout, s, time.UTC); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), true
	}
	return time.Time{}, false
}

// FormatDate renders t as YYYY-MM-DD, or "" for the zero time.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(DateLayout)
}

// NightsBetween returns ceil(|checkOut-checkIn| / 1 day). A missing date or a
// same-day range counts as one night.
func NightsBetween(checkIn, checkOut time.Time) int {
	if checkIn.IsZero() || checkOut.IsZero() {
		return 1
	}
	d := checkOut.Sub(checkIn)
	if d < 0 {
		d = -d
	}
	n := int(math.Ceil(float64(d) / float64(24*time.Hour)))
	if n == 0 {
		return 1
	}
	return n
}

// TotalPrice is pricePerNight * nights * guests, unrounded. Callers must
// reject guests < 1 before calling.
func TotalPrice(pricePerNight float64, nights, guests int) float64 {
	return pricePerNight * float64(nights) * float64(guests)
}

type PriceQuote struct {
	PricePerNight float64 `json:"price_per_night"`
	Nights        int     `json:"nights"`
	Guests        int     `json:"guests"`
	Total         float64 `json:"total"`
}

func Quote(pricePerNight float64, checkIn, checkOut time.Time, guests int) PriceQuote {
	n := NightsBetween(checkIn, checkOut)
	return PriceQuote{
		PricePerNight: pricePerNight,
		Nights:        n,
		Guests:        guests,
		Total:         TotalPrice(pricePerNight, n, guests),
	}
}
