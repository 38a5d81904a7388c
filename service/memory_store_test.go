package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"casino/blackjack"
	"casino/events"
	"casino/models"
)

// memoryStore is a transactional in-memory backing store for service tests.
// Each unit of work stages a copy of the data and writes it back on commit.
type memoryStore struct {
	mu         sync.Mutex
	users      map[int64]models.User
	history    []models.BalanceHistory
	games      map[int64]*blackjack.Session
	nextGameID int64
	published  []events.Event

	// failures injected by tests
	failHistory error
	conflicts   int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		users: make(map[int64]models.User),
		games: make(map[int64]*blackjack.Session),
	}
}

func (s *memoryStore) Create() UnitOfWork {
	return &memoryUnitOfWork{store: s}
}

func (s *memoryStore) seedUser(discordID int64, username string, balance int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[discordID] = models.User{DiscordID: discordID, Username: username, Balance: balance}
}

func (s *memoryStore) user(discordID int64) (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[discordID]
	return u, ok
}

func (s *memoryStore) historyFor(discordID int64) []models.BalanceHistory {
	s.mu.Lock()
	defer s.mu.Unlock()
	var rows []models.BalanceHistory
	for _, h := range s.history {
		if h.DiscordID == discordID {
			rows = append(rows, h)
		}
	}
	return rows
}

func (s *memoryStore) eventsOfType(eventType events.EventType) []events.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matched []events.Event
	for _, e := range s.published {
		if e.Type() == eventType {
			matched = append(matched, e)
		}
	}
	return matched
}

func cloneSession(src *blackjack.Session) *blackjack.Session {
	dst := *src
	dst.Dealer = append(blackjack.Hand(nil), src.Dealer...)
	dst.Deck = blackjack.NewDeckFromCards(src.Deck.Cards(), blackjack.NewSeededShuffler(1))
	dst.Players = make([]*blackjack.Player, len(src.Players))
	for i, p := range src.Players {
		pc := *p
		pc.Hands = make([]*blackjack.SubHand, len(p.Hands))
		for j, h := range p.Hands {
			hc := *h
			hc.Cards = append(blackjack.Hand(nil), h.Cards...)
			pc.Hands[j] = &hc
		}
		dst.Players[i] = &pc
	}
	return &dst
}

type memoryUnitOfWork struct {
	store      *memoryStore
	users      map[int64]models.User
	history    []models.BalanceHistory
	games      map[int64]*blackjack.Session
	nextGameID int64
	bus        MockEventPublisher
	begun      bool
	done       bool
}

func (u *memoryUnitOfWork) Begin(ctx context.Context) error {
	if u.begun {
		return errors.New("transaction already started")
	}
	u.store.mu.Lock()
	defer u.store.mu.Unlock()

	u.users = make(map[int64]models.User, len(u.store.users))
	for id, user := range u.store.users {
		u.users[id] = user
	}
	u.history = append([]models.BalanceHistory(nil), u.store.history...)
	u.games = make(map[int64]*blackjack.Session, len(u.store.games))
	for id, g := range u.store.games {
		u.games[id] = cloneSession(g)
	}
	u.nextGameID = u.store.nextGameID
	u.begun = true
	return nil
}

func (u *memoryUnitOfWork) Commit() error {
	if !u.begun || u.done {
		return errors.New("no transaction in progress")
	}
	u.store.mu.Lock()
	defer u.store.mu.Unlock()

	u.store.users = u.users
	u.store.history = u.history
	u.store.games = u.games
	u.store.nextGameID = u.nextGameID
	u.store.published = append(u.store.published, u.bus.Events...)
	u.done = true
	return nil
}

func (u *memoryUnitOfWork) Rollback() error {
	u.done = true
	return nil
}

func (u *memoryUnitOfWork) UserRepository() UserRepository {
	return &memoryUserRepository{uow: u}
}

func (u *memoryUnitOfWork) BalanceHistoryRepository() BalanceHistoryRepository {
	return &memoryBalanceHistoryRepository{uow: u}
}

func (u *memoryUnitOfWork) GameRepository() GameRepository {
	return &memoryGameRepository{uow: u}
}

func (u *memoryUnitOfWork) EventBus() EventPublisher {
	return &u.bus
}

type memoryUserRepository struct {
	uow *memoryUnitOfWork
}

func (r *memoryUserRepository) GetByDiscordID(ctx context.Context, discordID int64) (*models.User, error) {
	user, ok := r.uow.users[discordID]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

func (r *memoryUserRepository) Create(ctx context.Context, discordID int64, username string, initialBalance int64) (*models.User, error) {
	if _, ok := r.uow.users[discordID]; ok {
		return nil, errors.New("duplicate user")
	}
	now := time.Now()
	user := models.User{DiscordID: discordID, Username: username, Balance: initialBalance, CreatedAt: now, UpdatedAt: now}
	r.uow.users[discordID] = user
	return &user, nil
}

func (r *memoryUserRepository) UpdateBalance(ctx context.Context, discordID int64, newBalance int64) error {
	user, ok := r.uow.users[discordID]
	if !ok {
		return errors.New("user not found")
	}
	user.Balance = newBalance
	r.uow.users[discordID] = user
	return nil
}

func (r *memoryUserRepository) AddBalance(ctx context.Context, discordID int64, amount int64) (int64, error) {
	user, ok := r.uow.users[discordID]
	if !ok {
		return 0, errors.New("user not found")
	}
	user.Balance += amount
	r.uow.users[discordID] = user
	return user.Balance, nil
}

func (r *memoryUserRepository) DeductBalance(ctx context.Context, discordID int64, amount int64) (int64, error) {
	user, ok := r.uow.users[discordID]
	if !ok {
		return 0, errors.New("user not found")
	}
	if user.Balance < amount {
		return 0, blackjack.ErrInsufficientFunds
	}
	user.Balance -= amount
	r.uow.users[discordID] = user
	return user.Balance, nil
}

func (r *memoryUserRepository) RecordOutcome(ctx context.Context, discordID int64, outcome models.Outcome) error {
	user, ok := r.uow.users[discordID]
	if !ok {
		return errors.New("user not found")
	}
	user.GamesPlayed++
	switch outcome {
	case models.OutcomeWin:
		user.GamesWon++
	case models.OutcomeLoss:
		user.GamesLost++
	}
	r.uow.users[discordID] = user
	return nil
}

func (r *memoryUserRepository) GetTopByBalance(ctx context.Context, limit int) ([]*models.User, error) {
	users := make([]*models.User, 0, len(r.uow.users))
	for _, u := range r.uow.users {
		user := u
		users = append(users, &user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Balance > users[j].Balance })
	if len(users) > limit {
		users = users[:limit]
	}
	return users, nil
}

type memoryBalanceHistoryRepository struct {
	uow *memoryUnitOfWork
}

func (r *memoryBalanceHistoryRepository) Record(ctx context.Context, history *models.BalanceHistory) error {
	if r.uow.store.failHistory != nil {
		return r.uow.store.failHistory
	}
	history.ID = int64(len(r.uow.history) + 1)
	r.uow.history = append(r.uow.history, *history)
	return nil
}

func (r *memoryBalanceHistoryRepository) GetByUser(ctx context.Context, discordID int64, limit int) ([]*models.BalanceHistory, error) {
	var rows []*models.BalanceHistory
	for i := len(r.uow.history) - 1; i >= 0 && len(rows) < limit; i-- {
		if r.uow.history[i].DiscordID == discordID {
			row := r.uow.history[i]
			rows = append(rows, &row)
		}
	}
	return rows, nil
}

type memoryGameRepository struct {
	uow *memoryUnitOfWork
}

func (r *memoryGameRepository) GetCurrentByChannel(ctx context.Context, channelID int64) (*blackjack.Session, error) {
	for _, g := range r.uow.games {
		if g.ChannelID == channelID && g.Status.IsActive() {
			return cloneSession(g), nil
		}
	}
	return nil, nil
}

func (r *memoryGameRepository) Create(ctx context.Context, game *blackjack.Session) error {
	for _, g := range r.uow.games {
		if g.ChannelID == game.ChannelID && g.Status.IsActive() {
			return blackjack.ErrGameAlreadyExists
		}
	}
	r.uow.nextGameID++
	game.ID = r.uow.nextGameID
	game.Version = 1
	r.uow.games[game.ID] = cloneSession(game)
	return nil
}

func (r *memoryGameRepository) Save(ctx context.Context, game *blackjack.Session) error {
	r.uow.store.mu.Lock()
	conflict := r.uow.store.conflicts > 0
	if conflict {
		r.uow.store.conflicts--
	}
	r.uow.store.mu.Unlock()
	if conflict {
		return blackjack.ErrConcurrentUpdate
	}

	stored, ok := r.uow.games[game.ID]
	if !ok || stored.Version != game.Version {
		return blackjack.ErrConcurrentUpdate
	}
	game.Version++
	r.uow.games[game.ID] = cloneSession(game)
	return nil
}

func (r *memoryGameRepository) GetRecentByChannel(ctx context.Context, channelID int64, limit int) ([]*blackjack.Session, error) {
	var games []*blackjack.Session
	for _, g := range r.uow.games {
		if g.ChannelID == channelID && !g.Status.IsActive() {
			games = append(games, cloneSession(g))
		}
	}
	sort.Slice(games, func(i, j int) bool { return games[i].ID > games[j].ID })
	if len(games) > limit {
		games = games[:limit]
	}
	return games, nil
}
