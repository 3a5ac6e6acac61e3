package service

import (
	"context"
	"time"

	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

const (
	syncTaskUpsert       = "upsert"
	syncTaskUpdateStatus = "update_status"
)

// BookingService is the booking ledger.
type BookingService struct {
	users    domain.UserRepository
	items    domain.ItemRepository
	bookings domain.BookingRepository
	tx       domain.Transactor
	eventBus domain.EventPublisher
	sheets   domain.SyncWorker
	now      Clock
	logger   *zerolog.Logger
}

func NewBookingService(
	users domain.UserRepository,
	items domain.ItemRepository,
	bookings domain.BookingRepository,
	tx domain.Transactor,
	eventBus domain.EventPublisher,
	sheets domain.SyncWorker,
	clock Clock,
	logger *zerolog.Logger,
) *BookingService {
	return &BookingService{
		users:    users,
		items:    items,
		bookings: bookings,
		tx:       tx,
		eventBus: eventBus,
		sheets:   sheets,
		now:      orSystemClock(clock),
		logger:   orNop(logger),
	}
}

// CreateBooking books itemID for bookerID over [start, end]. Checks run in
// order: booker exists, item exists, item available, end after start.
// Overlapping bookings of the same item are allowed.
func (s *BookingService) CreateBooking(ctx context.Context, bookerID, itemID int64, start, end time.Time) (*models.Booking, error) {
	s.logger.Debug().Int64("booker_id", bookerID).Int64("item_id", itemID).Msg("CreateBooking")

	var booking *models.Booking
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		booker, err := s.users.GetUser(ctx, bookerID)
		if err != nil {
			return notFound(err, "user %d not found", bookerID)
		}

		item, err := s.items.GetItem(ctx, itemID)
		if err != nil {
			return notFound(err, "item %d not found", itemID)
		}
		if !item.Available {
			return domain.DataNotAvailable("item %d is not available for booking", itemID)
		}

		if !end.Truncate(time.Second).After(start.Truncate(time.Second)) {
			return domain.Validation("booking end %s must be after start %s",
				end.Format(models.DateTimeLayout), start.Format(models.DateTimeLayout))
		}

		booking = &models.Booking{
			Start:   start,
			End:     end,
			Item:    item.Ref(),
			Booker:  booker.Ref(),
			OwnerID: item.Owner.ID,
			Status:  models.StatusWaiting,
		}
		return s.bookings.CreateBooking(ctx, booking)
	})
	if err != nil {
		return nil, logFailure(s.logger, "CreateBooking", err)
	}

	s.publishEvent(events.EventBookingCreated, *booking, bookerID)
	s.enqueueSync(ctx, *booking, syncTaskUpsert)
	return booking, nil
}

// Approve sets the booking to APPROVED or REJECTED. Only the item owner may
// decide; deciding again overwrites the previous decision.
func (s *BookingService) Approve(ctx context.Context, bookingID, ownerID int64, approved bool) (*models.Booking, error) {
	s.logger.Debug().Int64("booking_id", bookingID).Int64("owner_id", ownerID).Bool("approved", approved).Msg("Approve")

	var booking *models.Booking
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		b, err := s.bookings.GetBooking(ctx, bookingID)
		if err != nil {
			return notFound(err, "booking %d not found", bookingID)
		}
		if b.OwnerID != ownerID {
			return domain.Forbidden("user %d is not the owner of item %d", ownerID, b.Item.ID)
		}

		b.Status = models.StatusRejected
		if approved {
			b.Status = models.StatusApproved
		}
		if err := s.bookings.UpdateBookingStatus(ctx, b.ID, b.Status); err != nil {
			return notFound(err, "booking %d not found", bookingID)
		}
		booking = b
		return nil
	})
	if err != nil {
		return nil, logFailure(s.logger, "Approve", err)
	}

	eventType := events.EventBookingRejected
	if approved {
		eventType = events.EventBookingApproved
	}
	s.publishEvent(eventType, *booking, ownerID)
	s.enqueueSync(ctx, *booking, syncTaskUpdateStatus)
	return booking, nil
}

// GetForUser returns the booking if userID is its booker or the item owner.
func (s *BookingService) GetForUser(ctx context.Context, bookingID, userID int64) (*models.Booking, error) {
	s.logger.Debug().Int64("booking_id", bookingID).Int64("user_id", userID).Msg("GetForUser")

	booking, err := s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, logFailure(s.logger, "GetForUser", notFound(err, "booking %d not found", bookingID))
	}
	if booking.Booker.ID != userID && booking.OwnerID != userID {
		return nil, logFailure(s.logger, "GetForUser",
			domain.Forbidden("user %d is neither the booker nor the owner of item %d", userID, booking.Item.ID))
	}
	return booking, nil
}

// ListForUser lists the bookings userID made (RoleBooker) or received on their
// items (RoleOwner), narrowed by filter, newest start first.
func (s *BookingService) ListForUser(ctx context.Context, userID int64, role models.Role, filter models.StateFilter) ([]models.Booking, error) {
	s.logger.Debug().Int64("user_id", userID).Stringer("role", role).Str("state", string(filter)).Msg("ListForUser")

	var bookings []models.Booking
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.users.GetUser(ctx, userID); err != nil {
			return notFound(err, "user %d not found", userID)
		}
		var err error
		bookings, err = s.bookings.ListBookings(ctx, role, userID, filter, s.now())
		return err
	})
	if err != nil {
		return nil, logFailure(s.logger, "ListForUser", err)
	}
	return bookings, nil
}

// FindLastForItem returns the in-progress booking of the item, or nil.
func (s *BookingService) FindLastForItem(ctx context.Context, itemID int64) (*models.Booking, error) {
	booking, err := s.bookings.LastBookingForItem(ctx, itemID, s.now())
	return booking, logFailure(s.logger, "FindLastForItem", err)
}

// FindNextForItem returns the earliest booking of the item starting after now, or nil.
func (s *BookingService) FindNextForItem(ctx context.Context, itemID int64) (*models.Booking, error) {
	booking, err := s.bookings.NextBookingForItem(ctx, itemID, s.now())
	return booking, logFailure(s.logger, "FindNextForItem", err)
}

func (s *BookingService) publishEvent(eventType string, booking models.Booking, changedBy int64) {
	if s.eventBus == nil {
		return
	}

	payload := events.BookingEventPayload{
		BookingID:  booking.ID,
		ItemID:     booking.Item.ID,
		ItemName:   booking.Item.Name,
		OwnerID:    booking.OwnerID,
		BookerID:   booking.Booker.ID,
		BookerName: booking.Booker.Name,
		Status:     booking.Status,
		Start:      booking.Start,
		End:        booking.End,
		ChangedBy:  changedBy,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("booking_id", booking.ID).Msg("publish event error")
	}
}

func (s *BookingService) enqueueSync(ctx context.Context, booking models.Booking, taskType string) {
	if s.sheets == nil {
		return
	}

	var status string
	if taskType == syncTaskUpdateStatus {
		status = booking.Status
	}

	if err := s.sheets.EnqueueTask(ctx, taskType, booking.ID, &booking, status); err != nil {
		s.logger.Error().Err(err).Int64("booking_id", booking.ID).Str("task", taskType).Msg("sheets enqueue error")
	}
}
