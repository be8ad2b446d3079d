package repo

import (
	"context"
	"database/sql"

	"github.com/staybook/audit-service/internal/models"
)

// BookingRepo reads the platform's booking records for compliance exports.
// The bookings table belongs to the platform; this repo never writes to it.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo.
func NewBookingRepo(db *sql.DB) *BookingRepo {
	return &BookingRepo{db: db}
}

// ListBySubject returns every booking where the subject is the guest or the host.
func (r *BookingRepo) ListBySubject(ctx context.Context, subjectID string) ([]models.Booking, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, guest_id, host_id, status, amount_cents, currency, check_in, check_out, created_at
		 FROM bookings WHERE guest_id = $1 OR host_id = $1 ORDER BY created_at DESC`,
		subjectID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []models.Booking
	for rows.Next() {
		var b models.Booking
		if err := rows.Scan(&b.ID, &b.GuestID, &b.HostID, &b.Status, &b.Amount, &b.Currency, &b.CheckIn, &b.CheckOut, &b.CreatedAt); err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}
