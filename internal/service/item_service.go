package service

import (
	"context"
	"strings"

	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

// ItemService is the item catalog. It composes comments and bookings into
// item views through the finder interfaces.
type ItemService struct {
	items    domain.ItemRepository
	users    domain.UserRepository
	requests domain.RequestRepository
	bookings domain.BookingFinder
	comments domain.CommentFinder
	tx       domain.Transactor
	logger   *zerolog.Logger
}

func NewItemService(
	items domain.ItemRepository,
	users domain.UserRepository,
	requests domain.RequestRepository,
	bookings domain.BookingFinder,
	comments domain.CommentFinder,
	tx domain.Transactor,
	logger *zerolog.Logger,
) *ItemService {
	return &ItemService{
		items:    items,
		users:    users,
		requests: requests,
		bookings: bookings,
		comments: comments,
		tx:       tx,
		logger:   orNop(logger),
	}
}

func (s *ItemService) GetItem(ctx context.Context, id int64) (*models.Item, error) {
	item, err := s.items.GetItem(ctx, id)
	if err != nil {
		return nil, logFailure(s.logger, "GetItem", notFound(err, "item %d not found", id))
	}
	return item, nil
}

// ListByOwner returns the owner's items, each with its comments attached.
func (s *ItemService) ListByOwner(ctx context.Context, ownerID int64) ([]models.ItemDetail, error) {
	s.logger.Debug().Int64("owner_id", ownerID).Msg("ListByOwner")
	items, err := s.items.ListItemsByOwner(ctx, ownerID)
	if err != nil {
		return nil, logFailure(s.logger, "ListByOwner", err)
	}
	details, err := s.withComments(ctx, items)
	return details, logFailure(s.logger, "ListByOwner", err)
}

// Search matches text against name and description of available items,
// ignoring case. A blank text lists the caller's own items instead.
func (s *ItemService) Search(ctx context.Context, callerID int64, text string) ([]models.ItemDetail, error) {
	s.logger.Debug().Int64("user_id", callerID).Str("text", text).Msg("Search")
	if strings.TrimSpace(text) == "" {
		return s.ListByOwner(ctx, callerID)
	}

	items, err := s.items.SearchAvailableItems(ctx, text)
	if err != nil {
		return nil, logFailure(s.logger, "Search", err)
	}
	details, err := s.withComments(ctx, items)
	return details, logFailure(s.logger, "Search", err)
}

// GetDetail returns the item with its comments and, when withBookings is set,
// the in-progress and next bookings.
func (s *ItemService) GetDetail(ctx context.Context, id int64, withBookings bool) (*models.ItemDetail, error) {
	s.logger.Debug().Int64("item_id", id).Bool("with_bookings", withBookings).Msg("GetDetail")

	var detail *models.ItemDetail
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		item, err := s.items.GetItem(ctx, id)
		if err != nil {
			return notFound(err, "item %d not found", id)
		}

		details, err := s.withComments(ctx, []models.Item{*item})
		if err != nil {
			return err
		}
		detail = &details[0]

		if !withBookings {
			return nil
		}
		if detail.LastBooking, err = s.bookings.FindLastForItem(ctx, id); err != nil {
			return err
		}
		detail.NextBooking, err = s.bookings.FindNextForItem(ctx, id)
		return err
	})
	if err != nil {
		return nil, logFailure(s.logger, "GetDetail", err)
	}
	return detail, nil
}

// CreateItem stores item under ownerID, linking it to item.RequestID when set.
func (s *ItemService) CreateItem(ctx context.Context, ownerID int64, item *models.Item) (*models.Item, error) {
	s.logger.Debug().Int64("owner_id", ownerID).Str("name", item.Name).Msg("CreateItem")

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		owner, err := s.users.GetUser(ctx, ownerID)
		if err != nil {
			return notFound(err, "user %d not found", ownerID)
		}
		item.Owner = owner.Ref()

		if item.RequestID != nil {
			if _, err := s.requests.GetRequest(ctx, *item.RequestID); err != nil {
				return notFound(err, "request %d not found", *item.RequestID)
			}
		}
		return s.items.CreateItem(ctx, item)
	})
	if err != nil {
		return nil, logFailure(s.logger, "CreateItem", err)
	}
	return item, nil
}

// UpdateItem applies patch to the item. Only its owner may do so.
func (s *ItemService) UpdateItem(ctx context.Context, ownerID, itemID int64, patch models.ItemPatch) (*models.Item, error) {
	s.logger.Debug().Int64("owner_id", ownerID).Int64("item_id", itemID).Msg("UpdateItem")

	var updated *models.Item
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.users.GetUser(ctx, ownerID); err != nil {
			return notFound(err, "user %d not found", ownerID)
		}
		item, err := s.items.GetItem(ctx, itemID)
		if err != nil {
			return notFound(err, "item %d not found", itemID)
		}
		if item.Owner.ID != ownerID {
			return domain.Forbidden("user %d may not edit item %d", ownerID, itemID)
		}

		patch.Apply(item)
		if err := s.items.UpdateItem(ctx, item); err != nil {
			return notFound(err, "item %d not found", itemID)
		}
		updated = item
		return nil
	})
	if err != nil {
		return nil, logFailure(s.logger, "UpdateItem", err)
	}
	return updated, nil
}

func (s *ItemService) withComments(ctx context.Context, items []models.Item) ([]models.ItemDetail, error) {
	details := make([]models.ItemDetail, len(items))
	if len(items) == 0 {
		return details, nil
	}

	ids := make([]int64, len(items))
	index := make(map[int64]int, len(items))
	for i, item := range items {
		ids[i] = item.ID
		index[item.ID] = i
		details[i] = models.ItemDetail{Item: item, Comments: []models.Comment{}}
	}

	comments, err := s.comments.ListForItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, c := range comments {
		if i, ok := index[c.ItemID]; ok {
			details[i].Comments = append(details[i].Comments, c)
		}
	}
	return details, nil
}
