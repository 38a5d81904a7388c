package service

import (
	"context"
	"fmt"

	"casino/models"
)

// userService implements the UserService interface
type userService struct {
	uowFactory UnitOfWorkFactory
}

// NewUserService creates a new user service
func NewUserService(uowFactory UnitOfWorkFactory) UserService {
	return &userService{uowFactory: uowFactory}
}

// GetOrCreateUser retrieves an existing user or creates a new one with the starting balance
func (s *userService) GetOrCreateUser(ctx context.Context, discordID int64, username string) (*models.User, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	existing, err := uow.UserRepository().GetByDiscordID(ctx, discordID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	user, err := newLedger(uow).GetOrCreateAccount(ctx, discordID, username)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return user, nil
}

// GetCurrentHighRoller returns the user with the highest balance, nil when
// nobody holds any coins
func (s *userService) GetCurrentHighRoller(ctx context.Context) (*models.User, error) {
	top, err := s.GetScoreboard(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(top) == 0 || top[0].Balance <= 0 {
		return nil, nil
	}
	return top[0], nil
}

// GetScoreboard returns the richest users
func (s *userService) GetScoreboard(ctx context.Context, limit int) ([]*models.User, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	users, err := uow.UserRepository().GetTopByBalance(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}
	return users, nil
}
