package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"shareit/internal/models"
)

const itemSelect = `SELECT i.id, i.name, i.description, i.available, i.request_id,
                           i.created_at, i.updated_at, u.id, u.name
                    FROM items i
                    JOIN users u ON u.id = i.owner_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (models.Item, error) {
	var (
		item      models.Item
		requestID sql.NullInt64
	)
	err := row.Scan(
		&item.ID, &item.Name, &item.Description, &item.Available, &requestID,
		&item.CreatedAt, &item.UpdatedAt, &item.Owner.ID, &item.Owner.Name,
	)
	if err != nil {
		return item, err
	}
	if requestID.Valid {
		id := requestID.Int64
		item.RequestID = &id
	}
	return item, nil
}

func (db *DB) queryItems(ctx context.Context, query string, args ...any) ([]models.Item, error) {
	rows, err := db.conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]models.Item, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (db *DB) CreateItem(ctx context.Context, item *models.Item) error {
	now := utc(time.Now())
	res, err := db.conn(ctx).ExecContext(ctx,
		`INSERT INTO items (name, description, available, owner_id, request_id, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		item.Name, item.Description, item.Available, item.Owner.ID, item.RequestID, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	item.ID = id
	item.CreatedAt = now
	item.UpdatedAt = now
	return nil
}

func (db *DB) GetItem(ctx context.Context, id int64) (*models.Item, error) {
	item, err := scanItem(db.conn(ctx).QueryRowContext(ctx, itemSelect+` WHERE i.id = ?`, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get item %d: %w", id, err)
	}
	return &item, nil
}

func (db *DB) ListItemsByOwner(ctx context.Context, ownerID int64) ([]models.Item, error) {
	items, err := db.queryItems(ctx, itemSelect+` WHERE i.owner_id = ? ORDER BY i.id`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list items of owner %d: %w", ownerID, err)
	}
	return items, nil
}

func (db *DB) ListItemsByRequest(ctx context.Context, requestID int64) ([]models.Item, error) {
	items, err := db.queryItems(ctx, itemSelect+` WHERE i.request_id = ? ORDER BY i.id`, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to list items of request %d: %w", requestID, err)
	}
	return items, nil
}

// SearchAvailableItems matches text as a substring of name or description,
// ignoring case in any script.
func (db *DB) SearchAvailableItems(ctx context.Context, text string) ([]models.Item, error) {
	folded := models.FoldCase(text)
	items, err := db.queryItems(ctx,
		itemSelect+` WHERE i.available = 1
                     AND (instr(casefold(i.name), ?) > 0 OR instr(casefold(i.description), ?) > 0)
                     ORDER BY i.id`,
		folded, folded,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search items: %w", err)
	}
	return items, nil
}

func (db *DB) UpdateItem(ctx context.Context, item *models.Item) error {
	now := utc(time.Now())
	res, err := db.conn(ctx).ExecContext(ctx,
		`UPDATE items SET name = ?, description = ?, available = ?, updated_at = ? WHERE id = ?`,
		item.Name, item.Description, item.Available, now, item.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update item %d: %w", item.ID, err)
	}
	if err := rowsAffected(res); err != nil {
		return fmt.Errorf("failed to update item %d: %w", item.ID, err)
	}
	item.UpdatedAt = now
	return nil
}
