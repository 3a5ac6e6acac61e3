package database

import (
	"context"
	"fmt"
	"time"

	"shareit/internal/models"
)

const requestSelect = `SELECT r.id, r.description, r.created_at, u.id, u.name
                       FROM requests r
                       JOIN users u ON u.id = r.requestor_id`

func (db *DB) CreateRequest(ctx context.Context, req *models.Request) error {
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now()
	}
	res, err := db.conn(ctx).ExecContext(ctx,
		`INSERT INTO requests (description, requestor_id, created_at) VALUES (?, ?, ?)`,
		req.Description, req.Requestor.ID, utc(req.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	req.ID = id
	return nil
}

func (db *DB) GetRequest(ctx context.Context, id int64) (*models.Request, error) {
	var r models.Request
	err := db.conn(ctx).QueryRowContext(ctx, requestSelect+` WHERE r.id = ?`, id).
		Scan(&r.ID, &r.Description, &r.CreatedAt, &r.Requestor.ID, &r.Requestor.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to get request %d: %w", id, err)
	}
	return &r, nil
}

func (db *DB) ListRequests(ctx context.Context) ([]models.Request, error) {
	reqs, err := db.queryRequests(ctx, requestSelect+` ORDER BY r.created_at DESC, r.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	return reqs, nil
}

func (db *DB) ListRequestsByRequestor(ctx context.Context, requestorID int64) ([]models.Request, error) {
	reqs, err := db.queryRequests(ctx,
		requestSelect+` WHERE r.requestor_id = ? ORDER BY r.created_at DESC, r.id DESC`, requestorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests of user %d: %w", requestorID, err)
	}
	return reqs, nil
}

func (db *DB) queryRequests(ctx context.Context, query string, args ...any) ([]models.Request, error) {
	rows, err := db.conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reqs := make([]models.Request, 0)
	for rows.Next() {
		var r models.Request
		if err := rows.Scan(&r.ID, &r.Description, &r.CreatedAt, &r.Requestor.ID, &r.Requestor.Name); err != nil {
			return nil, fmt.Errorf("failed to scan request: %w", err)
		}
		reqs = append(reqs, r)
	}
	return reqs, rows.Err()
}
