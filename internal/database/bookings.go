package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"shareit/internal/models"
)

const bookingSelect = `SELECT b.id, b.start_date, b.end_date, b.status, b.created_at, b.updated_at,
                              i.id, i.name, i.owner_id, u.id, u.name
                       FROM bookings b
                       JOIN items i ON i.id = b.item_id
                       JOIN users u ON u.id = b.booker_id`

func scanBooking(row rowScanner) (models.Booking, error) {
	var b models.Booking
	err := row.Scan(
		&b.ID, &b.Start, &b.End, &b.Status, &b.CreatedAt, &b.UpdatedAt,
		&b.Item.ID, &b.Item.Name, &b.OwnerID, &b.Booker.ID, &b.Booker.Name,
	)
	return b, err
}

func (db *DB) CreateBooking(ctx context.Context, booking *models.Booking) error {
	now := utc(time.Now())
	if booking.Status == "" {
		booking.Status = models.StatusWaiting
	}
	res, err := db.conn(ctx).ExecContext(ctx,
		`INSERT INTO bookings (start_date, end_date, item_id, booker_id, status, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		utc(booking.Start), utc(booking.End), booking.Item.ID, booking.Booker.ID, booking.Status, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	booking.ID = id
	booking.CreatedAt = now
	booking.UpdatedAt = now
	return nil
}

func (db *DB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	b, err := scanBooking(db.conn(ctx).QueryRowContext(ctx, bookingSelect+` WHERE b.id = ?`, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get booking %d: %w", id, err)
	}
	return &b, nil
}

func (db *DB) UpdateBookingStatus(ctx context.Context, id int64, status string) error {
	res, err := db.conn(ctx).ExecContext(ctx,
		`UPDATE bookings SET status = ?, updated_at = ? WHERE id = ?`,
		status, utc(time.Now()), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	if err := rowsAffected(res); err != nil {
		return fmt.Errorf("failed to update booking %d: %w", id, err)
	}
	return nil
}

// ListBookings returns the bookings of userID in the given role that match
// filter at instant now, newest start first.
func (db *DB) ListBookings(ctx context.Context, role models.Role, userID int64, filter models.StateFilter, now time.Time) ([]models.Booking, error) {
	query := bookingSelect
	args := []any{userID}

	if role == models.RoleOwner {
		query += ` WHERE i.owner_id = ?`
	} else {
		query += ` WHERE b.booker_id = ?`
	}

	now = utc(now)
	switch filter {
	case models.StateAll, "":
	case models.StateCurrent:
		query += ` AND b.start_date <= ? AND b.end_date >= ?`
		args = append(args, now, now)
	case models.StatePast:
		query += ` AND b.end_date < ?`
		args = append(args, now)
	case models.StateFuture:
		query += ` AND b.start_date > ?`
		args = append(args, now)
	case models.StateWaiting:
		query += ` AND b.status = ?`
		args = append(args, models.StatusWaiting)
	case models.StateRejected:
		query += ` AND b.status = ?`
		args = append(args, models.StatusRejected)
	default:
		return nil, fmt.Errorf("unsupported state filter %q", filter)
	}
	query += ` ORDER BY b.start_date DESC, b.id DESC`

	rows, err := db.conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()

	bookings := make([]models.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

// LastBookingForItem returns the booking in progress at now, the one ending
// latest if several overlap. Status is not considered.
func (db *DB) LastBookingForItem(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error) {
	now = utc(now)
	return db.optionalBooking(ctx,
		bookingSelect+` WHERE b.item_id = ? AND b.start_date <= ? AND b.end_date >= ?
                        ORDER BY b.end_date DESC, b.id DESC LIMIT 1`,
		itemID, now, now,
	)
}

// NextBookingForItem returns the booking with the earliest start after now.
// Status is not considered.
func (db *DB) NextBookingForItem(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error) {
	return db.optionalBooking(ctx,
		bookingSelect+` WHERE b.item_id = ? AND b.start_date > ?
                        ORDER BY b.start_date ASC, b.id ASC LIMIT 1`,
		itemID, utc(now),
	)
}

func (db *DB) optionalBooking(ctx context.Context, query string, args ...any) (*models.Booking, error) {
	b, err := scanBooking(db.conn(ctx).QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return &b, nil
}

// CountFinishedBookings counts bookings of bookerID on itemID that ended before now.
func (db *DB) CountFinishedBookings(ctx context.Context, itemID, bookerID int64, now time.Time) (int, error) {
	var count int
	err := db.conn(ctx).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bookings WHERE item_id = ? AND booker_id = ? AND end_date < ?`,
		itemID, bookerID, utc(now),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count finished bookings: %w", err)
	}
	return count, nil
}
