package models

import "time"

type Comment struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	ItemID    int64     `json:"item_id"`
	Author    Ref       `json:"author"`
	CreatedAt time.Time `json:"created_at"`
}
