package models

import "time"

type Item struct {
	ID          int64     `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	Description string    `json:"description" yaml:"description"`
	Available   bool      `json:"available" yaml:"available"`
	Owner       Ref       `json:"owner" yaml:"-"`
	RequestID   *int64    `json:"request_id,omitempty" yaml:"request_id"`
	CreatedAt   time.Time `json:"created_at" yaml:"-"`
	UpdatedAt   time.Time `json:"updated_at" yaml:"-"`
}

func (i Item) Ref() Ref {
	return Ref{ID: i.ID, Name: i.Name}
}

// ItemPatch carries the optional fields of an item update.
type ItemPatch struct {
	Name        *string
	Description *string
	Available   *bool
}

// Apply copies the present fields onto item.
func (p ItemPatch) Apply(item *Item) {
	if p.Name != nil {
		item.Name = *p.Name
	}
	if p.Description != nil {
		item.Description = *p.Description
	}
	if p.Available != nil {
		item.Available = *p.Available
	}
}

// ItemDetail is an item composed with its comments and, optionally,
// its in-progress and next scheduled bookings.
type ItemDetail struct {
	Item
	Comments    []Comment
	LastBooking *Booking
	NextBooking *Booking
}
