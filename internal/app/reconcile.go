package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"hotel_booking_web/internal/domain"
)

// ReconcileService re-submits bookings that were only confirmed locally by
// the offline fallback. The backend books for whoever owns the token, so
// only entries that belong to the service's own account are re-submitted;
// every other entry is left for manual handling.
type ReconcileService struct {
	api     domain.BookingAPI
	journal domain.BookingJournal
	account domain.User
}

func NewReconcileService(api domain.BookingAPI, j domain.BookingJournal, account domain.User) *ReconcileService {
	return &ReconcileService{api: api, journal: j, account: account}
}

func (s *ReconcileService) Pending(ctx context.Context, limit int) ([]domain.JournalEntry, error) {
	return s.journal.ListUnreconciled(ctx, limit)
}

// ReconcileOne creates the booking on the server and links the local entry
// to the server id. Conflicts (no longer available) are recorded as
// reconciled with id 0 so they are not retried forever.
func (s *ReconcileService) ReconcileOne(ctx context.Context, e domain.JournalEntry) error {
	if !e.Synthesized || e.Reconciled {
		return nil
	}
	b := e.Booking
	owner, ok := b.Owner()
	if !ok || !owner.Is(s.account) {
		reason := "owner unknown"
		if ok {
			reason = "booked by another user"
		}
		log.Warn().Int64("local_id", e.LocalID).Int64("user_id", b.UserID).Str("reason", reason).Msg("offline booking needs manual handling")
		return s.journal.MarkManual(ctx, e.LocalID, reason)
	}
	bc, err := s.api.CreateBooking(ctx, domain.BookingRequest{
		HotelID:         b.HotelID,
		CheckIn:         b.CheckIn,
		CheckOut:        b.CheckOut,
		Guests:          b.Guests,
		SpecialRequests: b.SpecialRequests,
		TotalPrice:      b.TotalPrice,
	})
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			log.Warn().Int64("local_id", e.LocalID).Str("hotel_id", b.HotelID).Msg("offline booking no longer available")
			return s.journal.MarkReconciled(ctx, e.LocalID, 0)
		}
		// network and auth failures stay pending for the next run
		return fmt.Errorf("resubmit %d: %w", e.LocalID, err)
	}
	if err := s.journal.MarkReconciled(ctx, e.LocalID, bc.ID); err != nil {
		return fmt.Errorf("mark reconciled %d: %w", e.LocalID, err)
	}
	log.Info().Int64("local_id", e.LocalID).Int64("booking_id", bc.ID).Msg("offline booking reconciled")
	return nil
}
