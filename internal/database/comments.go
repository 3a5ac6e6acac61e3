package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"shareit/internal/models"
)

func (db *DB) CreateComment(ctx context.Context, comment *models.Comment) error {
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now()
	}
	res, err := db.conn(ctx).ExecContext(ctx,
		`INSERT INTO comments (text, item_id, author_id, created_at) VALUES (?, ?, ?, ?)`,
		comment.Text, comment.ItemID, comment.Author.ID, utc(comment.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	comment.ID = id
	return nil
}

// ListCommentsByItems loads the comments of every item in itemIDs with one query.
func (db *DB) ListCommentsByItems(ctx context.Context, itemIDs []int64) ([]models.Comment, error) {
	comments := make([]models.Comment, 0)
	if len(itemIDs) == 0 {
		return comments, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(itemIDs)), ",")
	args := make([]any, len(itemIDs))
	for i, id := range itemIDs {
		args[i] = id
	}

	rows, err := db.conn(ctx).QueryContext(ctx,
		`SELECT c.id, c.text, c.item_id, c.created_at, u.id, u.name
         FROM comments c
         JOIN users u ON u.id = c.author_id
         WHERE c.item_id IN (`+placeholders+`)
         ORDER BY c.created_at ASC, c.id ASC`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.Text, &c.ItemID, &c.CreatedAt, &c.Author.ID, &c.Author.Name); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
