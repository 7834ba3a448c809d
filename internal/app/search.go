package app

import (
	"context"
	"net/url"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"hotel_booking_web/internal/adapters/observability"
	"hotel_booking_web/internal/domain"
)

const (
	SearchPageSize = 6
	searchErrorMsg = "Error searching hotels. Please try again."
)

// ParseSearchQuery reads city, checkIn and checkOut from navigation params.
// Malformed dates are treated as absent.
func ParseSearchQuery(v url.Values) domain.SearchQuery {
	in, _ := domain.ParseDate(v.Get("checkIn"))
	out, _ := domain.ParseDate(v.Get("checkOut"))
	return domain.SearchQuery{City: strings.TrimSpace(v.Get("city")), CheckIn: in, CheckOut: out}
}

// SearchParams renders q back into navigation params.
func SearchParams(q domain.SearchQuery) url.Values {
	v := url.Values{}
	v.Set("city", q.City)
	v.Set("checkIn", domain.FormatDate(q.CheckIn))
	v.Set("checkOut", domain.FormatDate(q.CheckOut))
	return v
}

type SearchState struct {
	Query      domain.SearchQuery `json:"-"`
	Page       int                `json:"page"`
	Hotels     []domain.Hotel     `json:"hotels"`
	Total      int                `json:"total"`
	TotalPages int                `json:"total_pages"`
	Loading    bool               `json:"loading"`
	Error      string             `json:"error,omitempty"`
}

// SearchFlow backs the results view. It keeps no cache between navigations.
type SearchFlow struct {
	api domain.HotelAPI

	mu     sync.Mutex
	st     SearchState
	loaded bool
	seq    uint64
}

func NewSearchFlow(api domain.HotelAPI) *SearchFlow {
	return &SearchFlow{api: api, st: SearchState{Page: 1, Hotels: []domain.Hotel{}}}
}

func (f *SearchFlow) State() SearchState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshot()
}

// Load runs q. A query different from the current one starts again at page 1;
// the same query keeps the selected page.
func (f *SearchFlow) Load(ctx context.Context, q domain.SearchQuery) (SearchState, error) {
	f.mu.Lock()
	page := f.st.Page
	if !f.loaded || !f.st.Query.Equal(q) {
		page = 1
	}
	f.mu.Unlock()
	return f.run(ctx, q, page)
}

// LoadPage runs q at an explicit page, as when a results link carries one.
func (f *SearchFlow) LoadPage(ctx context.Context, q domain.SearchQuery, page int) (SearchState, error) {
	if page < 1 {
		page = 1
	}
	return f.run(ctx, q, page)
}

// SelectPage re-runs the current query at page.
func (f *SearchFlow) SelectPage(ctx context.Context, page int) (SearchState, error) {
	if page < 1 {
		page = 1
	}
	f.mu.Lock()
	q := f.st.Query
	f.mu.Unlock()
	return f.run(ctx, q, page)
}

// Retry repeats the last run, for the error banner's retry action.
func (f *SearchFlow) Retry(ctx context.Context) (SearchState, error) {
	f.mu.Lock()
	q, page := f.st.Query, f.st.Page
	f.mu.Unlock()
	return f.run(ctx, q, page)
}

func (f *SearchFlow) run(ctx context.Context, q domain.SearchQuery, page int) (SearchState, error) {
	f.mu.Lock()
	f.seq++
	seq := f.seq
	f.loaded = true
	f.st.Query = q
	f.st.Page = page
	f.st.Loading = true
	f.st.Error = ""
	f.mu.Unlock()

	res, err := f.api.SearchHotels(ctx, domain.HotelSearch{
		City:     q.City,
		CheckIn:  q.CheckIn,
		CheckOut: q.CheckOut,
		Page:     page,
		Size:     SearchPageSize,
	})
	observability.ObserveSearch(err)

	f.mu.Lock()
	defer f.mu.Unlock()
	if seq != f.seq {
		// a newer run owns the state
		return f.snapshot(), err
	}
	f.st.Loading = false
	if err != nil {
		log.Error().Err(err).Str("city", q.City).Int("page", page).Msg("hotel search failed")
		f.st.Hotels = []domain.Hotel{}
		f.st.Error = searchErrorMsg
		return f.snapshot(), err
	}
	f.st.Hotels = res.Hotels
	if f.st.Hotels == nil {
		f.st.Hotels = []domain.Hotel{}
	}
	f.st.Total = res.Total
	f.st.TotalPages = TotalPages(res.Total, SearchPageSize)
	return f.snapshot(), nil
}

func (f *SearchFlow) snapshot() SearchState {
	out := f.st
	out.Hotels = make([]domain.Hotel, len(f.st.Hotels))
	copy(out.Hotels, f.st.Hotels)
	return out
}

// TotalPages is ceil(total/size).
func TotalPages(total, size int) int {
	if total <= 0 || size <= 0 {
		return 0
	}
	return (total + size - 1) / size
}
