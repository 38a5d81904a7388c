package service

import (
	"context"
	"errors"
	"fmt"

	"casino/config"
	"casino/models"

	log "github.com/sirupsen/logrus"
)

var (
	ErrNotAdmin      = errors.New("only administrators can manage coins")
	ErrInvalidAmount = errors.New("amount must be positive")
)

type adminService struct {
	uowFactory UnitOfWorkFactory
}

// NewAdminService creates a service for manual balance corrections
func NewAdminService(uowFactory UnitOfWorkFactory) AdminService {
	return &adminService{uowFactory: uowFactory}
}

// GiveCoins credits amount to the user, creating the account if needed
func (s *adminService) GiveCoins(ctx context.Context, adminID, discordID int64, username string, amount int64) (*models.User, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	return s.adjust(ctx, adminID, discordID, username, models.TransactionTypeAdminGive, func(int64) int64 {
		return amount
	})
}

// TakeCoins debits amount from the user. The balance never goes negative.
func (s *adminService) TakeCoins(ctx context.Context, adminID, discordID int64, username string, amount int64) (*models.User, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	return s.adjust(ctx, adminID, discordID, username, models.TransactionTypeAdminTake, func(int64) int64 {
		return -amount
	})
}

// SetCoins overwrites the user's balance
func (s *adminService) SetCoins(ctx context.Context, adminID, discordID int64, username string, amount int64) (*models.User, error) {
	if amount < 0 {
		return nil, ErrInvalidAmount
	}
	return s.adjust(ctx, adminID, discordID, username, models.TransactionTypeAdminSet, func(current int64) int64 {
		return amount - current
	})
}

func (s *adminService) adjust(ctx context.Context, adminID, discordID int64, username string, txType models.TransactionType, delta func(current int64) int64) (*models.User, error) {
	if !config.Get().IsAdmin(adminID) {
		return nil, ErrNotAdmin
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	l := newLedger(uow)
	user, err := l.GetOrCreateAccount(ctx, discordID, username)
	if err != nil {
		return nil, err
	}

	change := delta(user.Balance)
	newBalance, err := l.AdjustBalance(ctx, discordID, change, adjustment{
		txType: txType,
		metadata: map[string]any{
			"admin_discord_id": adminID,
		},
	})
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"adminID":    adminID,
		"discordID":  discordID,
		"type":       txType,
		"change":     change,
		"newBalance": newBalance,
	}).Info("Admin adjusted balance")

	user.Balance = newBalance
	return user, nil
}

// GetUserInfo returns the user with their latest balance history, nil when
// the user has never played
func (s *adminService) GetUserInfo(ctx context.Context, adminID, discordID int64, historyLimit int) (*models.User, []*models.BalanceHistory, error) {
	if !config.Get().IsAdmin(adminID) {
		return nil, nil, ErrNotAdmin
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetByDiscordID(ctx, discordID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, nil, nil
	}

	history, err := uow.BalanceHistoryRepository().GetByUser(ctx, discordID, historyLimit)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get balance history: %w", err)
	}
	return user, history, nil
}
