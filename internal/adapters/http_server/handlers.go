package httpserver

import (
	"context"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"hotel_booking_web/internal/app"
	"hotel_booking_web/internal/domain"
)

// Backend is everything the views ask of the hotel API.
type Backend interface {
	domain.HotelAPI
	domain.BookingAPI
	domain.AuthAPI
	domain.UserAPI
}

type Handlers struct {
	// Backend binds the API client to one request's session and navigator.
	Backend func(s domain.Session, nav domain.Navigator) Backend

	Cache           domain.Cache // optional
	CacheTTL        time.Duration
	SessionTTL      time.Duration         // token -> user entries; 0 disables
	Journal         domain.BookingJournal // optional
	OfflineFallback bool
	Now             func() time.Time

	dialogs sync.Map // dialog key -> *app.BookingDialog while submitting
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

type redirectBody struct {
	Redirect string `json:"redirect"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Route("/v1", func(r chi.Router) {
		r.Get("/search", h.search)
		r.Post("/search", h.submitSearch)
		r.Get("/hotels/{id}", h.getHotel)
		r.Post("/hotels/{id}/bookings", h.createBooking)

		r.Post("/auth/login", h.login)
		r.Post("/auth/register", h.register)
		r.Get("/auth/me", h.me)
		r.Get("/profile", h.getProfile)
		r.Put("/profile", h.updateProfile)
		r.Get("/bookings", h.myBookings)

		r.Route("/admin", func(r chi.Router) {
			r.Get("/hotels", h.adminListHotels)
			r.Post("/hotels", h.adminCreateHotel)
			r.Put("/hotels/{id}", h.adminUpdateHotel)
			r.Delete("/hotels/{id}", h.adminDeleteHotel)
			r.Get("/bookings", h.adminListBookings)
			r.Patch("/bookings/{id}/status", h.adminUpdateBookingStatus)
			r.Get("/users", h.adminListUsers)
		})
	})
}

// scope is the per-request auth context: the caller's bearer token becomes a
// session, and navigation requests are recorded for the response.
type scope struct {
	session  *app.MemorySession
	nav      *app.Redirects
	api      Backend
	hadToken bool
}

func (h *Handlers) scope(r *http.Request) *scope {
	s := app.NewSession(bearerToken(r))
	nav := &app.Redirects{}
	return &scope{session: s, nav: nav, api: h.Backend(s, nav), hadToken: s.IsAuthenticated()}
}

func (h *Handlers) queries(sc *scope) *app.HotelQueries {
	return app.NewHotelQueries(sc.api, h.Cache, h.CacheTTL)
}

func (h *Handlers) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeRedirect tells the front to move to v. X-Session-Cleared marks that
// the token the caller sent is no longer valid.
func writeRedirect(w http.ResponseWriter, sc *scope, status int, v domain.View) {
	if sc != nil && sc.hadToken && !sc.session.IsAuthenticated() {
		w.Header().Set("X-Session-Cleared", "1")
	}
	writeJSON(w, status, redirectBody{Redirect: string(v)})
}

func writeError(w http.ResponseWriter, sc *scope, err error) {
	var (
		ve *domain.ValidationError
		ae *domain.APIError
	)
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		writeRedirect(w, sc, http.StatusUnauthorized, domain.ViewLogin)
	case errors.As(err, &ve):
		writeProblem(w, http.StatusBadRequest, "Invalid input", ve.Error())
	case errors.Is(err, domain.ErrSubmitInFlight):
		writeProblem(w, http.StatusConflict, "Submission in progress", "this booking is already being submitted")
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", "resource not found")
	case errors.Is(err, domain.ErrForbidden):
		writeProblem(w, http.StatusForbidden, "Forbidden", "admin role required")
	case errors.Is(err, domain.ErrConflict):
		writeProblem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.As(err, &ae):
		writeProblem(w, ae.Status, http.StatusText(ae.Status), ae.Msg)
	case errors.Is(err, domain.ErrNetwork), errors.Is(err, context.DeadlineExceeded):
		writeProblem(w, http.StatusBadGateway, "Bad Gateway", "hotel service unavailable")
	default:
		log.Error().Err(err).Msg("unhandled error")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
	}
}

func decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return &domain.ValidationError{Field: "body", Msg: "malformed JSON body"}
	}
	return nil
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// ---- search ----

type searchView struct {
	City     string `json:"city"`
	CheckIn  string `json:"checkIn"`
	CheckOut string `json:"checkOut"`
	app.SearchState
}

func (h *Handlers) search(w http.ResponseWriter, r *http.Request) {
	sc := h.scope(r)
	q := app.ParseSearchQuery(r.URL.Query())
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))

	st, err := app.NewSearchFlow(sc.api).LoadPage(r.Context(), q, page)
	if errors.Is(err, domain.ErrUnauthorized) {
		writeError(w, sc, err)
		return
	}
	status := http.StatusOK
	if err != nil {
		// the state carries the error banner
		status = http.StatusBadGateway
	}
	writeJSON(w, status, searchView{
		City:        q.City,
		CheckIn:     domain.FormatDate(q.CheckIn),
		CheckOut:    domain.FormatDate(q.CheckOut),
		SearchState: st,
	})
}

// submitSearch is the home form: validate, then send the browser to the results.
func (h *Handlers) submitSearch(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid form", err.Error())
		return
	}
	q := app.ParseSearchQuery(r.Form)
	if err := q.Validate(h.now()); err != nil {
		writeError(w, nil, err)
		return
	}
	http.Redirect(w, r, "/v1/search?"+app.SearchParams(q).Encode(), http.StatusSeeOther)
}

// ---- hotel detail + booking ----

func (h *Handlers) getHotel(w http.ResponseWriter, r *http.Request) {
	sc := h.scope(r)
	qv := r.URL.Query()
	in, _ := domain.ParseDate(qv.Get("checkIn"))
	out, _ := domain.ParseDate(qv.Get("checkOut"))
	guests, _ := strconv.Atoi(qv.Get("guests"))

	d, err := h.queries(sc).Detail(r.Context(), chi.URLParam(r, "id"), in, out, guests)
	if err != nil {
		writeError(w, sc, err)
		return
	}

	etag, body := calcETagAndBody(d)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write getHotel body")
	}
}

type bookingBody struct {
	CheckIn  string `json:"check_in"`
	CheckOut string `json:"check_out"`
	// the rate the detail view quoted; only used when the hotel cannot be loaded
	HotelName     string  `json:"hotel_name"`
	PricePerNight float64 `json:"price_per_night"`
	app.BookingForm
}

func (h *Handlers) createBooking(w http.ResponseWriter, r *http.Request) {
	var b bookingBody
	if err := decode(r, &b); err != nil {
		writeError(w, nil, err)
		return
	}
	sc := h.scope(r)
	id := chi.URLParam(r, "id")
	in, _ := domain.ParseDate(b.CheckIn)
	out, _ := domain.ParseDate(b.CheckOut)

	// the dialog sends anonymous callers to login before any call
	hotel := domain.Hotel{ID: id}
	if sc.session.IsAuthenticated() {
		if err := app.ValidateStay(in, out, b.Guests); err != nil {
			writeError(w, sc, err)
			return
		}
		var err error
		if hotel, err = h.bookingHotel(r.Context(), sc, id, b); err != nil {
			writeError(w, sc, err)
			return
		}
		if err := h.loadSessionUser(r.Context(), sc); err != nil {
			writeError(w, sc, err)
			return
		}
	}

	dlg := app.NewBookingDialog(app.BookingDeps{
		API:             sc.api,
		Session:         sc.session,
		Nav:             sc.nav,
		Journal:         h.Journal,
		OfflineFallback: h.OfflineFallback,
		Now:             h.Now,
	}, hotel, in, out)

	if sc.session.IsAuthenticated() {
		key := strings.Join([]string{sc.session.Token(), id, domain.FormatDate(in), domain.FormatDate(out)}, "|")
		if _, busy := h.dialogs.LoadOrStore(key, dlg); busy {
			writeError(w, sc, domain.ErrSubmitInFlight)
			return
		}
		defer h.dialogs.CompareAndDelete(key, dlg)
	}

	res, err := dlg.Submit(r.Context(), b.BookingForm)
	if err != nil {
		writeError(w, sc, err)
		return
	}
	if res.Redirect != "" {
		writeRedirect(w, sc, http.StatusUnauthorized, res.Redirect)
		return
	}
	writeJSON(w, http.StatusCreated, app.NewConfirmationView(*res.Confirmation))
}

// bookingHotel loads the hotel being booked. With the offline fallback on, an
// unreachable backend is priced from the rate the caller was quoted.
func (h *Handlers) bookingHotel(ctx context.Context, sc *scope, id string, b bookingBody) (domain.Hotel, error) {
	hotel, err := h.queries(sc).GetHotel(ctx, id)
	if err == nil {
		return hotel, nil
	}
	if !h.OfflineFallback || !app.IsOffline(err) || b.PricePerNight <= 0 {
		return domain.Hotel{}, err
	}
	log.Warn().Err(err).Str("hotel_id", id).Float64("price_per_night", b.PricePerNight).Msg("hotel lookup failed; using quoted rate")
	return domain.Hotel{ID: id, Name: b.HotelName, PricePerNight: b.PricePerNight}, nil
}

// loadSessionUser fills in who the caller is, from the session cache or
// /auth/me. Only a rejected token is an error; otherwise the user stays unknown.
func (h *Handlers) loadSessionUser(ctx context.Context, sc *scope) error {
	token := sc.session.Token()
	if h.Cache != nil && h.SessionTTL > 0 {
		var u domain.User
		if ok, err := h.Cache.Get(ctx, sessionKey(token), &u); err == nil && ok {
			sc.session.Set(token, u)
			return nil
		}
	}
	u, err := app.NewAuthService(sc.api, sc.session, sc.nav).Me(ctx)
	switch {
	case err == nil:
		h.rememberUser(ctx, token, u)
		return nil
	case errors.Is(err, domain.ErrUnauthorized):
		return err
	}
	log.Warn().Err(err).Msg("caller's user unknown")
	return nil
}

func (h *Handlers) rememberUser(ctx context.Context, token string, u domain.User) {
	if h.Cache == nil || h.SessionTTL <= 0 || token == "" {
		return
	}
	if err := h.Cache.Set(ctx, sessionKey(token), u, int(h.SessionTTL.Seconds())); err != nil {
		log.Warn().Err(err).Msg("session cache set failed")
	}
}

func sessionKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "session:" + hex.EncodeToString(sum[:])
}

// ---- auth + account ----

type authView struct {
	Token    string      `json:"token"`
	User     domain.User `json:"user"`
	Redirect string      `json:"redirect,omitempty"`
}

type loginBody struct {
	domain.Credentials
	From string `json:"from"`
}

func (h *Handlers) login(w http.ResponseWriter, r *http.Request) {
	var b loginBody
	if err := decode(r, &b); err != nil {
		writeError(w, nil, err)
		return
	}
	sc := h.scope(r)
	u, err := app.NewAuthService(sc.api, sc.session, sc.nav).Login(r.Context(), b.Credentials, domain.View(b.From))
	if err != nil {
		writeError(w, sc, err)
		return
	}
	h.rememberUser(r.Context(), sc.session.Token(), u)
	next, _ := sc.nav.Last()
	writeJSON(w, http.StatusOK, authView{Token: sc.session.Token(), User: u, Redirect: string(next)})
}

type registerBody struct {
	app.RegisterForm
	From string `json:"from"`
}

func (h *Handlers) register(w http.ResponseWriter, r *http.Request) {
	var b registerBody
	if err := decode(r, &b); err != nil {
		writeError(w, nil, err)
		return
	}
	sc := h.scope(r)
	u, err := app.NewAuthService(sc.api, sc.session, sc.nav).Register(r.Context(), b.RegisterForm, domain.View(b.From))
	if err != nil {
		writeError(w, sc, err)
		return
	}
	h.rememberUser(r.Context(), sc.session.Token(), u)
	next, _ := sc.nav.Last()
	writeJSON(w, http.StatusCreated, authView{Token: sc.session.Token(), User: u, Redirect: string(next)})
}

func (h *Handlers) me(w http.ResponseWriter, r *http.Request) {
	sc := h.scope(r)
	u, err := app.NewAuthService(sc.api, sc.session, sc.nav).Me(r.Context())
	if err != nil {
		writeError(w, sc, err)
		return
	}
	h.rememberUser(r.Context(), sc.session.Token(), u)
	writeJSON(w, http.StatusOK, u)
}

func (h *Handlers) getProfile(w http.ResponseWriter, r *http.Request) {
	sc := h.scope(r)
	u, err := app.NewAccountService(sc.api, sc.api).Profile(r.Context())
	if err != nil {
		writeError(w, sc, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *Handlers) updateProfile(w http.ResponseWriter, r *http.Request) {
	var p domain.ProfileUpdate
	if err := decode(r, &p); err != nil {
		writeError(w, nil, err)
		return
	}
	sc := h.scope(r)
	u, err := app.NewAccountService(sc.api, sc.api).UpdateProfile(r.Context(), p)
	if err != nil {
		writeError(w, sc, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *Handlers) myBookings(w http.ResponseWriter, r *http.Request) {
	sc := h.scope(r)
	bs, err := app.NewAccountService(sc.api, sc.api).MyBookings(r.Context())
	if err != nil {
		writeError(w, sc, err)
		return
	}
	writeJSON(w, http.StatusOK, bs)
}

// ---- admin ----

// admin loads the caller's user so the role guard has something to check.
func (h *Handlers) admin(r *http.Request) (*scope, *app.AdminService, error) {
	sc := h.scope(r)
	if sc.session.IsAuthenticated() {
		if _, err := app.NewAuthService(sc.api, sc.session, sc.nav).Me(r.Context()); err != nil {
			return sc, nil, err
		}
	}
	return sc, app.NewAdminService(app.AdminDeps{
		Hotels:   sc.api,
		Bookings: sc.api,
		Users:    sc.api,
		Session:  sc.session,
		Nav:      sc.nav,
		Queries:  h.queries(sc),
	}), nil
}

func (h *Handlers) adminListHotels(w http.ResponseWriter, r *http.Request) {
	sc, svc, err := h.admin(r)
	if err == nil {
		var hs []domain.Hotel
		if hs, err = svc.ListHotels(r.Context()); err == nil {
			writeJSON(w, http.StatusOK, hs)
			return
		}
	}
	writeError(w, sc, err)
}

func (h *Handlers) adminCreateHotel(w http.ResponseWriter, r *http.Request) {
	var in domain.Hotel
	if err := decode(r, &in); err != nil {
		writeError(w, nil, err)
		return
	}
	sc, svc, err := h.admin(r)
	if err == nil {
		var out domain.Hotel
		if out, err = svc.CreateHotel(r.Context(), in); err == nil {
			writeJSON(w, http.StatusCreated, out)
			return
		}
	}
	writeError(w, sc, err)
}

func (h *Handlers) adminUpdateHotel(w http.ResponseWriter, r *http.Request) {
	var in domain.Hotel
	if err := decode(r, &in); err != nil {
		writeError(w, nil, err)
		return
	}
	sc, svc, err := h.admin(r)
	if err == nil {
		var out domain.Hotel
		if out, err = svc.UpdateHotel(r.Context(), chi.URLParam(r, "id"), in); err == nil {
			writeJSON(w, http.StatusOK, out)
			return
		}
	}
	writeError(w, sc, err)
}

func (h *Handlers) adminDeleteHotel(w http.ResponseWriter, r *http.Request) {
	sc, svc, err := h.admin(r)
	if err == nil {
		if err = svc.DeleteHotel(r.Context(), chi.URLParam(r, "id")); err == nil {
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeError(w, sc, err)
}

func (h *Handlers) adminListBookings(w http.ResponseWriter, r *http.Request) {
	sc, svc, err := h.admin(r)
	if err == nil {
		var bs []domain.BookingConfirmation
		if bs, err = svc.ListBookings(r.Context()); err == nil {
			writeJSON(w, http.StatusOK, bs)
			return
		}
	}
	writeError(w, sc, err)
}

func (h *Handlers) adminUpdateBookingStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a number")
		return
	}
	var b struct {
		Status domain.BookingStatus `json:"status"`
	}
	if err := decode(r, &b); err != nil {
		writeError(w, nil, err)
		return
	}
	sc, svc, err := h.admin(r)
	if err == nil {
		if err = svc.UpdateBookingStatus(r.Context(), id, b.Status); err == nil {
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeError(w, sc, err)
}

func (h *Handlers) adminListUsers(w http.ResponseWriter, r *http.Request) {
	sc, svc, err := h.admin(r)
	if err == nil {
		var us []domain.User
		if us, err = svc.ListUsers(r.Context()); err == nil {
			writeJSON(w, http.StatusOK, us)
			return
		}
	}
	writeError(w, sc, err)
}
