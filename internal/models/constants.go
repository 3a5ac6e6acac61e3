package models

const (
	StatusWaiting  = "WAITING"
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"
	// StatusCancelled is part of the status vocabulary but no operation produces it.
	StatusCancelled = "CANCELLED"
)

const (
	SyncStatusPending   = "pending"
	SyncStatusRetry     = "retry"
	SyncStatusCompleted = "completed"
	SyncStatusFailed    = "failed"
)

const (
	// HeaderUserID carries the caller's user id on every request.
	HeaderUserID = "X-Sharer-User-Id"

	// DateTimeLayout is the wire format of every timestamp, local zone, no suffix.
	DateTimeLayout = "2006-01-02T15:04:05"

	MinNameLength = 3

	// DefaultRateLimitRequests requests per user within DefaultRateLimitWindow seconds
	DefaultRateLimitRequests = 120
	DefaultRateLimitWindow   = 60

	// SheetsCacheTTL row cache lifetime of the bookings sheet, seconds
	SheetsCacheTTL = 60 * 60
)
