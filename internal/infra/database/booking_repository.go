package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/xavierca1/sitm-outreach/internal/entity"
)

const bookingSlotConstraint = "bookings_slot_key"

type BookingRepository struct {
	DB *sql.DB
}

func NewBookingRepository(db *sql.DB) *BookingRepository {
	return &BookingRepository{DB: db}
}

func (r *BookingRepository) Create(ctx context.Context, b *entity.Booking) error {
	query := `
		INSERT INTO bookings (id, name, email, phone, service, date, slot, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.DB.ExecContext(ctx, query,
		b.ID, b.Name, b.Email, b.Phone, b.Service, b.Date, b.Slot, b.CreatedAt,
	)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation && pqErr.Constraint == bookingSlotConstraint {
		return fmt.Errorf("%s %s: %w", b.Date.Format(entity.DateLayout), b.Slot, entity.ErrSlotTaken)
	}
	if err != nil {
		return mapUniqueViolation(err)
	}
	return nil
}

func (r *BookingRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return entity.ErrBookingNotFound
	}
	return nil
}

func (r *BookingRepository) ListByDate(ctx context.Context, date time.Time) ([]*entity.Booking, error) {
	query := `
		SELECT id, name, email, phone, service, date, slot, created_at
		FROM bookings WHERE date = $1
		ORDER BY created_at
	`
	rows, err := r.DB.QueryContext(ctx, query, date.Format(entity.DateLayout))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*entity.Booking
	for rows.Next() {
		var b entity.Booking
		if err := rows.Scan(&b.ID, &b.Name, &b.Email, &b.Phone, &b.Service, &b.Date, &b.Slot, &b.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &b)
	}
	return out, rows.Err()
}
