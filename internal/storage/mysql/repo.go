package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"hotel_booking_web/internal/domain"
)

func valStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func valInt(n int64) any {
	if n == 0 {
		return nil
	}
	return n
}

func valJSON(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}

// Journal is the MySQL BookingJournal.
type Journal struct{ db *sql.DB }

func New(db *sql.DB) *Journal { return &Journal{db: db} }

func (r *Journal) Record(ctx context.Context, c domain.Confirmation) (int64, error) {
	b := c.Booking
	raw, _ := json.Marshal(c)
	var serverID any
	if !c.Synthesized {
		serverID = b.ID
	}
	synth := 0
	if c.Synthesized {
		synth = 1
	}
	res, err := r.db.ExecContext(ctx, insertJournalSQL,
		b.ID,
		serverID,
		b.HotelID,
		valStr(b.HotelName),
		b.CheckIn,
		b.CheckOut,
		b.Guests,
		b.TotalPrice,
		string(b.Status),
		valInt(b.UserID),
		valStr(b.UserEmail),
		valStr(b.SpecialRequests),
		synth,
		valJSON(raw),
		synth,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *Journal) ListUnreconciled(ctx context.Context, limit int) ([]domain.JournalEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx, listUnreconciledSQL, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.JournalEntry{}
	for rows.Next() {
		var (
			e                     domain.JournalEntry
			hotelName, mail, reqs sql.NullString
			userID                sql.NullInt64
			status                string
		)
		if err := rows.Scan(
			&e.LocalID,
			&e.Booking.ID,
			&e.Booking.HotelID,
			&hotelName,
			&e.Booking.CheckIn,
			&e.Booking.CheckOut,
			&e.Booking.Guests,
			&e.Booking.TotalPrice,
			&status,
			&userID,
			&mail,
			&reqs,
			&e.CreatedAt,
		); err != nil {
			return nil, err
		}
		e.Booking.HotelName = hotelName.String
		e.Booking.UserID = userID.Int64
		e.Booking.UserEmail = mail.String
		e.Booking.SpecialRequests = reqs.String
		e.Booking.Status = domain.BookingStatus(status)
		e.Synthesized = true
		out = append(out, e)
	}
	return out, rows.Err()
}

// MarkReconciled closes a pending entry. Closing an unknown or already closed
// entry is ErrNotFound.
func (r *Journal) MarkReconciled(ctx context.Context, localID, serverID int64) error {
	res, err := r.db.ExecContext(ctx, markReconciledSQL, serverID, localID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// MarkManual takes a pending entry out of automatic reconciliation.
func (r *Journal) MarkManual(ctx context.Context, localID int64, reason string) error {
	res, err := r.db.ExecContext(ctx, markManualSQL, valStr(reason), localID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Ping is used by the readiness check.
func (r *Journal) Ping(ctx context.Context) error {
	if r.db == nil {
		return errors.New("mysql: no connection")
	}
	return r.db.PingContext(ctx)
}
