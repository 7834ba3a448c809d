package domain

import (
	"strings"
	"time"
)

type Hotel struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	City          string   `json:"city"`
	Address       string   `json:"address"`
	Description   string   `json:"description"`
	PricePerNight float64  `json:"price_per_night"`
	Rating        float64  `json:"rating"` // 0..5
	Amenities     []string `json:"amenities"`
	Photos        []string `json:"photos"`
	Thumbnail     string   `json:"thumbnail"`
}

// SearchQuery is what the home page submits and the results view consumes.
type SearchQuery struct {
	City     string
	CheckIn  time.Time
	CheckOut time.Time
}

// Validate applies the home form rules. now is truncated to its UTC day.
func (q SearchQuery) Validate(now time.Time) error {
	if strings.TrimSpace(q.City) == "" {
		return &ValidationError{Field: "city", Msg: "city is required"}
	}
	if q.CheckIn.IsZero() || q.CheckOut.IsZero() {
		return &ValidationError{Field: "dates", Msg: "check-in and check-out dates are required"}
	}
	if !q.CheckOut.After(q.CheckIn) {
		return &ValidationError{Field: "checkOut", Msg: "check-out must be after check-in"}
	}
	today := now.UTC().Truncate(24 * time.Hour)
	if q.CheckIn.Before(today) {
		return &ValidationError{Field: "checkIn", Msg: "check-in cannot be in the past"}
	}
	return nil
}

// Equal compares by calendar value, not by time.Time internals.
func (q SearchQuery) Equal(o SearchQuery) bool {
	return q.City == o.City && q.CheckIn.Equal(o.CheckIn) && q.CheckOut.Equal(o.CheckOut)
}

// HotelSearch is the paginated request sent to GET /hotels/search.
type HotelSearch struct {
	City     string
	CheckIn  time.Time
	CheckOut time.Time
	Page     int
	Size     int
}

type HotelsPage struct {
	Hotels []Hotel `json:"hotels"`
	Total  int     `json:"total"`
}

type Availability struct {
	HotelID   string `json:"hotel_id"`
	Available bool   `json:"available"`
}
