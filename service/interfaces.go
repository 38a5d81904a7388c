package service

import (
	"context"

	"casino/blackjack"
	"casino/events"
	"casino/models"
)

// UserRepository defines the interface for user account data access
type UserRepository interface {
	// GetByDiscordID retrieves a user by their Discord ID, nil when absent
	GetByDiscordID(ctx context.Context, discordID int64) (*models.User, error)

	// Create creates a new user with the initial balance
	Create(ctx context.Context, discordID int64, username string, initialBalance int64) (*models.User, error)

	// UpdateBalance overwrites a user's balance
	UpdateBalance(ctx context.Context, discordID int64, newBalance int64) error

	// AddBalance adds to a user's balance and returns the new balance
	AddBalance(ctx context.Context, discordID int64, amount int64) (int64, error)

	// DeductBalance deducts from a user's balance, failing with
	// blackjack.ErrInsufficientFunds instead of going negative
	DeductBalance(ctx context.Context, discordID int64, amount int64) (int64, error)

	// RecordOutcome bumps the played counter and the matching win/loss counter
	RecordOutcome(ctx context.Context, discordID int64, outcome models.Outcome) error

	// GetTopByBalance returns the richest users first
	GetTopByBalance(ctx context.Context, limit int) ([]*models.User, error)
}

// BalanceHistoryRepository defines the interface for balance history tracking
type BalanceHistoryRepository interface {
	// Record creates a new balance history entry
	Record(ctx context.Context, history *models.BalanceHistory) error

	// GetByUser returns the latest balance history for a specific user
	GetByUser(ctx context.Context, discordID int64, limit int) ([]*models.BalanceHistory, error)
}

// GameRepository persists blackjack sessions together with their players
type GameRepository interface {
	// GetCurrentByChannel returns the unfinished game in a channel with its
	// players in join order, nil when there is none
	GetCurrentByChannel(ctx context.Context, channelID int64) (*blackjack.Session, error)

	// Create inserts a new game, filling in ID, Version and CreatedAt.
	// Fails with blackjack.ErrGameAlreadyExists when the channel is occupied.
	Create(ctx context.Context, game *blackjack.Session) error

	// Save writes the game and all of its players. Fails with
	// blackjack.ErrConcurrentUpdate when the stored version moved on.
	Save(ctx context.Context, game *blackjack.Session) error

	// GetRecentByChannel returns the channel's latest finished or cancelled
	// games with their players, newest first
	GetRecentByChannel(ctx context.Context, channelID int64, limit int) ([]*blackjack.Session, error)
}

// Locker serializes work on a key across goroutines or processes
type Locker interface {
	// Lock blocks until the key is held or ctx is done
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork groups repository calls into one transaction
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() UserRepository
	BalanceHistoryRepository() BalanceHistoryRepository
	GameRepository() GameRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory creates units of work
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// UserService defines the interface for user operations
type UserService interface {
	// GetOrCreateUser retrieves an existing user or creates a new one with the starting balance
	GetOrCreateUser(ctx context.Context, discordID int64, username string) (*models.User, error)

	// GetCurrentHighRoller returns the user with the highest balance
	GetCurrentHighRoller(ctx context.Context) (*models.User, error)

	// GetScoreboard returns the richest users
	GetScoreboard(ctx context.Context, limit int) ([]*models.User, error)
}

// AdminService defines coin adjustments restricted to administrators
type AdminService interface {
	GiveCoins(ctx context.Context, adminID, discordID int64, username string, amount int64) (*models.User, error)
	TakeCoins(ctx context.Context, adminID, discordID int64, username string, amount int64) (*models.User, error)
	SetCoins(ctx context.Context, adminID, discordID int64, username string, amount int64) (*models.User, error)
	GetUserInfo(ctx context.Context, adminID, discordID int64, historyLimit int) (*models.User, []*models.BalanceHistory, error)
}

// BlackjackService runs blackjack games, one atomic unit of work per call
type BlackjackService interface {
	Create(ctx context.Context, guildID, channelID, hostID int64, hostName string) (*blackjack.Session, error)
	Join(ctx context.Context, channelID, discordID int64, username string, bet int64) (*blackjack.Session, *blackjack.Player, error)
	Start(ctx context.Context, channelID, callerID int64) (*blackjack.Session, error)
	Cancel(ctx context.Context, channelID, callerID int64) (*blackjack.Session, error)
	Hit(ctx context.Context, channelID, discordID int64) (*ActionOutcome, error)
	Stand(ctx context.Context, channelID, discordID int64) (*ActionOutcome, error)
	DoubleDown(ctx context.Context, channelID, discordID int64) (*ActionOutcome, error)
	Split(ctx context.Context, channelID, discordID int64) (*ActionOutcome, error)
	Insurance(ctx context.Context, channelID, discordID int64) (*InsuranceOutcome, error)
	PlayDealer(ctx context.Context, channelID int64) (*SettlementOutcome, error)
	Current(ctx context.Context, channelID int64) (*blackjack.Session, error)
	Recent(ctx context.Context, channelID int64, limit int) ([]*blackjack.Session, error)
}
