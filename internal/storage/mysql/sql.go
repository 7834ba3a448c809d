package mysql

// Server-created bookings are reconciled on insert; only synthesized rows
// start out pending.
const insertJournalSQL = `
INSERT INTO booking_journal
  (booking_id, server_id, hotel_id, hotel_name, check_in, check_out,
   guests, total_price, status, user_id, user_email, special_requests,
   synthesized, raw, reconciled_at)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, IF(? = 1, NULL, CURRENT_TIMESTAMP))
`

const listUnreconciledSQL = `
SELECT
  local_id,
  booking_id,
  hotel_id,
  hotel_name,
  check_in,
  check_out,
  guests,
  total_price,
  status,
  user_id,
  user_email,
  special_requests,
  created_at
FROM booking_journal
WHERE synthesized = 1 AND reconciled_at IS NULL AND manual_review = 0
ORDER BY local_id
LIMIT ?
`

// server_id 0 means the backend refused the booking; it is stored as NULL.
const markReconciledSQL = `
UPDATE booking_journal
SET server_id = NULLIF(?, 0), reconciled_at = CURRENT_TIMESTAMP
WHERE local_id = ? AND reconciled_at IS NULL
`

const markManualSQL = `
UPDATE booking_journal
SET manual_review = 1, manual_reason = ?
WHERE local_id = ? AND reconciled_at IS NULL AND manual_review = 0
`
