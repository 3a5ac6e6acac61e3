package domain

import (
	"context"
	"time"

	"shareit/internal/models"
)

// Transactor runs fn inside one transaction. Nested calls join the outer one.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type UserRepository interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id int64) error
	EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error)
}

type ItemRepository interface {
	GetItem(ctx context.Context, id int64) (*models.Item, error)
	ListItemsByOwner(ctx context.Context, ownerID int64) ([]models.Item, error)
	ListItemsByRequest(ctx context.Context, requestID int64) ([]models.Item, error)
	SearchAvailableItems(ctx context.Context, text string) ([]models.Item, error)
	CreateItem(ctx context.Context, item *models.Item) error
	UpdateItem(ctx context.Context, item *models.Item) error
}

type RequestRepository interface {
	GetRequest(ctx context.Context, id int64) (*models.Request, error)
	ListRequests(ctx context.Context) ([]models.Request, error)
	ListRequestsByRequestor(ctx context.Context, requestorID int64) ([]models.Request, error)
	CreateRequest(ctx context.Context, req *models.Request) error
}

type BookingRepository interface {
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	CreateBooking(ctx context.Context, booking *models.Booking) error
	UpdateBookingStatus(ctx context.Context, id int64, status string) error
	ListBookings(ctx context.Context, role models.Role, userID int64, filter models.StateFilter, now time.Time) ([]models.Booking, error)
	LastBookingForItem(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error)
	NextBookingForItem(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error)
	CountFinishedBookings(ctx context.Context, itemID, bookerID int64, now time.Time) (int, error)
}

type CommentRepository interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	ListCommentsByItems(ctx context.Context, itemIDs []int64) ([]models.Comment, error)
}

// BookingFinder answers the item-scoped booking lookups the catalog composes.
type BookingFinder interface {
	FindLastForItem(ctx context.Context, itemID int64) (*models.Booking, error)
	FindNextForItem(ctx context.Context, itemID int64) (*models.Booking, error)
}

// CommentFinder batches comment lookups for many items at once.
type CommentFinder interface {
	ListForItems(ctx context.Context, itemIDs []int64) ([]models.Comment, error)
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

type SyncWorker interface {
	EnqueueTask(ctx context.Context, taskType string, bookingID int64, booking *models.Booking, status string) error
}

// RateLimitStore counts requests per key inside a fixed window.
type RateLimitStore interface {
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type SheetsWriter interface {
	UpsertBooking(ctx context.Context, booking *models.Booking) error
	UpdateBookingStatus(ctx context.Context, bookingID int64, status string) error
}
