package models

import "time"

// Request is a "wanted item" post on the request board.
type Request struct {
	ID          int64     `json:"id" yaml:"id"`
	Description string    `json:"description" yaml:"description"`
	Requestor   Ref       `json:"requestor" yaml:"-"`
	CreatedAt   time.Time `json:"created_at" yaml:"-"`
}

type RequestWithItems struct {
	Request
	Items []Item
}
