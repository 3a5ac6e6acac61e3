package service

import (
	"context"

	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

// UserService is the user directory.
type UserService struct {
	users  domain.UserRepository
	tx     domain.Transactor
	logger *zerolog.Logger
}

func NewUserService(users domain.UserRepository, tx domain.Transactor, logger *zerolog.Logger) *UserService {
	return &UserService{users: users, tx: tx, logger: orNop(logger)}
}

func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.users.ListUsers(ctx)
	return users, logFailure(s.logger, "ListUsers", err)
}

func (s *UserService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	s.logger.Debug().Int64("user_id", id).Msg("GetUser")
	user, err := s.users.GetUser(ctx, id)
	if err != nil {
		return nil, logFailure(s.logger, "GetUser", notFound(err, "user %d not found", id))
	}
	return user, nil
}

// CreateUser stores a new user. The email must not be in use by anyone else,
// ignoring case.
func (s *UserService) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	s.logger.Debug().Str("email", user.Email).Msg("CreateUser")
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.ensureEmailFree(ctx, user.Email, 0); err != nil {
			return err
		}
		return s.users.CreateUser(ctx, user)
	})
	if err != nil {
		return nil, logFailure(s.logger, "CreateUser", err)
	}
	return user, nil
}

// UpdateUser merges patch onto the stored user and re-checks email uniqueness
// against the merged record.
func (s *UserService) UpdateUser(ctx context.Context, id int64, patch models.UserPatch) (*models.User, error) {
	s.logger.Debug().Int64("user_id", id).Msg("UpdateUser")
	var updated *models.User
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		user, err := s.users.GetUser(ctx, id)
		if err != nil {
			return notFound(err, "user %d not found", id)
		}
		patch.Apply(user)

		if err := s.ensureEmailFree(ctx, user.Email, user.ID); err != nil {
			return err
		}
		if err := s.users.UpdateUser(ctx, user); err != nil {
			return notFound(err, "user %d not found", id)
		}
		updated = user
		return nil
	})
	if err != nil {
		return nil, logFailure(s.logger, "UpdateUser", err)
	}
	return updated, nil
}

func (s *UserService) DeleteUser(ctx context.Context, id int64) error {
	s.logger.Debug().Int64("user_id", id).Msg("DeleteUser")
	if err := s.users.DeleteUser(ctx, id); err != nil {
		return logFailure(s.logger, "DeleteUser", notFound(err, "user %d not found", id))
	}
	return nil
}

func (s *UserService) ensureEmailFree(ctx context.Context, email string, excludeID int64) error {
	taken, err := s.users.EmailTaken(ctx, email, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return domain.DuplicateEmail("email %s is already in use", email)
	}
	return nil
}
