package service

import (
	"context"

	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

// RequestService is the request board.
type RequestService struct {
	requests domain.RequestRepository
	users    domain.UserRepository
	items    domain.ItemRepository
	tx       domain.Transactor
	now      Clock
	logger   *zerolog.Logger
}

func NewRequestService(
	requests domain.RequestRepository,
	users domain.UserRepository,
	items domain.ItemRepository,
	tx domain.Transactor,
	clock Clock,
	logger *zerolog.Logger,
) *RequestService {
	return &RequestService{
		requests: requests,
		users:    users,
		items:    items,
		tx:       tx,
		now:      orSystemClock(clock),
		logger:   orNop(logger),
	}
}

// ListAll returns every request, newest first.
func (s *RequestService) ListAll(ctx context.Context) ([]models.Request, error) {
	requests, err := s.requests.ListRequests(ctx)
	return requests, logFailure(s.logger, "ListAll", err)
}

// ListByRequestor returns the requests posted by requestorID, newest first.
func (s *RequestService) ListByRequestor(ctx context.Context, requestorID int64) ([]models.Request, error) {
	s.logger.Debug().Int64("requestor_id", requestorID).Msg("ListByRequestor")
	requests, err := s.requests.ListRequestsByRequestor(ctx, requestorID)
	return requests, logFailure(s.logger, "ListByRequestor", err)
}

func (s *RequestService) GetRequest(ctx context.Context, id int64) (*models.Request, error) {
	req, err := s.requests.GetRequest(ctx, id)
	if err != nil {
		return nil, logFailure(s.logger, "GetRequest", notFound(err, "request %d not found", id))
	}
	return req, nil
}

// GetWithItems returns the request and every item created in answer to it.
func (s *RequestService) GetWithItems(ctx context.Context, id int64) (*models.RequestWithItems, error) {
	s.logger.Debug().Int64("request_id", id).Msg("GetWithItems")

	var result *models.RequestWithItems
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		req, err := s.requests.GetRequest(ctx, id)
		if err != nil {
			return notFound(err, "request %d not found", id)
		}
		items, err := s.items.ListItemsByRequest(ctx, id)
		if err != nil {
			return err
		}
		result = &models.RequestWithItems{Request: *req, Items: items}
		return nil
	})
	if err != nil {
		return nil, logFailure(s.logger, "GetWithItems", err)
	}
	return result, nil
}

// CreateRequest posts a request for requestorID, stamped with the current time.
func (s *RequestService) CreateRequest(ctx context.Context, requestorID int64, description string) (*models.Request, error) {
	s.logger.Debug().Int64("requestor_id", requestorID).Msg("CreateRequest")

	var req *models.Request
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		requestor, err := s.users.GetUser(ctx, requestorID)
		if err != nil {
			return notFound(err, "user %d not found", requestorID)
		}
		req = &models.Request{
			Description: description,
			Requestor:   requestor.Ref(),
			CreatedAt:   s.now(),
		}
		return s.requests.CreateRequest(ctx, req)
	})
	if err != nil {
		return nil, logFailure(s.logger, "CreateRequest", err)
	}
	return req, nil
}
