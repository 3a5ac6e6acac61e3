package models

import "time"

type Booking struct {
	ID        int64     `json:"id"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Item      Ref       `json:"item"`
	Booker    Ref       `json:"booker"`
	OwnerID   int64     `json:"owner_id"`
	Status    string    `json:"status"` // WAITING, APPROVED, REJECTED
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// InProgress reports whether now falls inside the booking window, bounds included.
func (b Booking) InProgress(now time.Time) bool {
	return !now.Before(b.Start) && !now.After(b.End)
}

// Finished reports whether the booking window closed before now.
func (b Booking) Finished(now time.Time) bool {
	return b.End.Before(now)
}
