package service

import (
	"context"

	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

// CommentService is the comment log.
type CommentService struct {
	items    domain.ItemRepository
	users    domain.UserRepository
	bookings domain.BookingRepository
	comments domain.CommentRepository
	tx       domain.Transactor
	eventBus domain.EventPublisher
	now      Clock
	logger   *zerolog.Logger
}

func NewCommentService(
	items domain.ItemRepository,
	users domain.UserRepository,
	bookings domain.BookingRepository,
	comments domain.CommentRepository,
	tx domain.Transactor,
	eventBus domain.EventPublisher,
	clock Clock,
	logger *zerolog.Logger,
) *CommentService {
	return &CommentService{
		items:    items,
		users:    users,
		bookings: bookings,
		comments: comments,
		tx:       tx,
		eventBus: eventBus,
		now:      orSystemClock(clock),
		logger:   orNop(logger),
	}
}

// ListForItems loads the comments of all itemIDs in one query.
func (s *CommentService) ListForItems(ctx context.Context, itemIDs []int64) ([]models.Comment, error) {
	comments, err := s.comments.ListCommentsByItems(ctx, itemIDs)
	return comments, logFailure(s.logger, "ListForItems", err)
}

// CreateComment records a comment by authorID on itemID. The author must have
// at least one booking of the item that ended before now.
func (s *CommentService) CreateComment(ctx context.Context, itemID, authorID int64, text string) (*models.Comment, error) {
	s.logger.Debug().Int64("item_id", itemID).Int64("author_id", authorID).Msg("CreateComment")

	var comment *models.Comment
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.items.GetItem(ctx, itemID); err != nil {
			return notFound(err, "item %d not found", itemID)
		}
		author, err := s.users.GetUser(ctx, authorID)
		if err != nil {
			return notFound(err, "user %d not found", authorID)
		}

		now := s.now()
		finished, err := s.bookings.CountFinishedBookings(ctx, itemID, authorID, now)
		if err != nil {
			return err
		}
		if finished == 0 {
			return domain.DataNotAvailable("user %d has no finished booking of item %d", authorID, itemID)
		}

		comment = &models.Comment{
			Text:      text,
			ItemID:    itemID,
			Author:    author.Ref(),
			CreatedAt: now,
		}
		return s.comments.CreateComment(ctx, comment)
	})
	if err != nil {
		return nil, logFailure(s.logger, "CreateComment", err)
	}

	if s.eventBus != nil {
		payload := events.CommentEventPayload{
			CommentID:  comment.ID,
			ItemID:     comment.ItemID,
			AuthorID:   comment.Author.ID,
			AuthorName: comment.Author.Name,
			Text:       comment.Text,
			CreatedAt:  comment.CreatedAt,
		}
		if err := s.eventBus.PublishJSON(events.EventCommentCreated, payload); err != nil {
			s.logger.Error().Err(err).Int64("comment_id", comment.ID).Msg("publish event error")
		}
	}
	return comment, nil
}
