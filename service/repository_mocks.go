package service

import (
	"context"
	"sync"

	"casino/blackjack"
	"casino/events"
	"casino/models"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByDiscordID(ctx context.Context, discordID int64) (*models.User, error) {
	args := m.Called(ctx, discordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, discordID int64, username string, initialBalance int64) (*models.User, error) {
	args := m.Called(ctx, discordID, username, initialBalance)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) UpdateBalance(ctx context.Context, discordID int64, newBalance int64) error {
	args := m.Called(ctx, discordID, newBalance)
	return args.Error(0)
}

func (m *MockUserRepository) AddBalance(ctx context.Context, discordID int64, amount int64) (int64, error) {
	args := m.Called(ctx, discordID, amount)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) DeductBalance(ctx context.Context, discordID int64, amount int64) (int64, error) {
	args := m.Called(ctx, discordID, amount)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) RecordOutcome(ctx context.Context, discordID int64, outcome models.Outcome) error {
	args := m.Called(ctx, discordID, outcome)
	return args.Error(0)
}

func (m *MockUserRepository) GetTopByBalance(ctx context.Context, limit int) ([]*models.User, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

// MockBalanceHistoryRepository is a mock implementation of BalanceHistoryRepository
type MockBalanceHistoryRepository struct {
	mock.Mock
}

func (m *MockBalanceHistoryRepository) Record(ctx context.Context, history *models.BalanceHistory) error {
	args := m.Called(ctx, history)
	return args.Error(0)
}

func (m *MockBalanceHistoryRepository) GetByUser(ctx context.Context, discordID int64, limit int) ([]*models.BalanceHistory, error) {
	args := m.Called(ctx, discordID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BalanceHistory), args.Error(1)
}

// MockGameRepository is a mock implementation of GameRepository
type MockGameRepository struct {
	mock.Mock
}

func (m *MockGameRepository) GetCurrentByChannel(ctx context.Context, channelID int64) (*blackjack.Session, error) {
	args := m.Called(ctx, channelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*blackjack.Session), args.Error(1)
}

func (m *MockGameRepository) Create(ctx context.Context, game *blackjack.Session) error {
	args := m.Called(ctx, game)
	return args.Error(0)
}

func (m *MockGameRepository) Save(ctx context.Context, game *blackjack.Session) error {
	args := m.Called(ctx, game)
	return args.Error(0)
}

func (m *MockGameRepository) GetRecentByChannel(ctx context.Context, channelID int64, limit int) ([]*blackjack.Session, error) {
	args := m.Called(ctx, channelID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*blackjack.Session), args.Error(1)
}

// MockEventPublisher records published events
type MockEventPublisher struct {
	mu     sync.Mutex
	Events []events.Event
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, event)
}

// OfType returns the recorded events of one type
func (m *MockEventPublisher) OfType(eventType events.EventType) []events.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	var matched []events.Event
	for _, e := range m.Events {
		if e.Type() == eventType {
			matched = append(matched, e)
		}
	}
	return matched
}

// MockUnitOfWork is a mock implementation of UnitOfWork. Begin, Commit and
// Rollback are expectations; repositories are plain fields.
type MockUnitOfWork struct {
	mock.Mock
	userRepo           UserRepository
	balanceHistoryRepo BalanceHistoryRepository
	gameRepo           GameRepository
	eventBus           *MockEventPublisher
}

// SetRepositories wires the repositories handed out by the unit of work
func (m *MockUnitOfWork) SetRepositories(userRepo UserRepository, balanceHistoryRepo BalanceHistoryRepository, gameRepo GameRepository) {
	m.userRepo = userRepo
	m.balanceHistoryRepo = balanceHistoryRepo
	m.gameRepo = gameRepo
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) UserRepository() UserRepository {
	return m.userRepo
}

func (m *MockUnitOfWork) BalanceHistoryRepository() BalanceHistoryRepository {
	return m.balanceHistoryRepo
}

func (m *MockUnitOfWork) GameRepository() GameRepository {
	return m.gameRepo
}

func (m *MockUnitOfWork) EventBus() EventPublisher {
	if m.eventBus == nil {
		m.eventBus = &MockEventPublisher{}
	}
	return m.eventBus
}

// PublishedEvents returns the events raised inside this unit of work
func (m *MockUnitOfWork) PublishedEvents() *MockEventPublisher {
	m.EventBus()
	return m.eventBus
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}

// MockLocker is a mock implementation of Locker
type MockLocker struct {
	mock.Mock
}

func (m *MockLocker) Lock(ctx context.Context, key string) (func(), error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(func()), args.Error(1)
}
