package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"casino/blackjack"
	"casino/events"
	"casino/models"

	log "github.com/sirupsen/logrus"
)

// maxConflictRetries bounds how often an operation is replayed after losing
// an optimistic version race
const maxConflictRetries = 3

// ActionOutcome is the state after a player decision
type ActionOutcome struct {
	Session *blackjack.Session
	Result  *blackjack.ActionResult
}

// InsuranceOutcome is the state after an insurance purchase
type InsuranceOutcome struct {
	Session *blackjack.Session
	Player  *blackjack.Player
	Cost    int64
}

// SettlementOutcome is the finished game with the dealer's play
type SettlementOutcome struct {
	Session    *blackjack.Session
	Settlement *blackjack.Settlement
}

type blackjackService struct {
	uowFactory UnitOfWorkFactory
	locker     Locker
	rules      blackjack.Rules
	newDeck    func() *blackjack.Deck
	now        func() time.Time
}

// BlackjackOption customizes a blackjack service
type BlackjackOption func(*blackjackService)

// WithDeckFactory sets how new games get their deck. Seeded decks make games
// reproducible.
func WithDeckFactory(newDeck func() *blackjack.Deck) BlackjackOption {
	return func(s *blackjackService) {
		s.newDeck = newDeck
	}
}

// WithClock overrides the time source used for game timestamps
func WithClock(now func() time.Time) BlackjackOption {
	return func(s *blackjackService) {
		s.now = now
	}
}

// NewBlackjackService creates a blackjack service. Every mutating call holds
// the channel's lock for the whole unit of work.
func NewBlackjackService(uowFactory UnitOfWorkFactory, locker Locker, rules blackjack.Rules, opts ...BlackjackOption) BlackjackService {
	s := &blackjackService{
		uowFactory: uowFactory,
		locker:     locker,
		rules:      rules,
		newDeck: func() *blackjack.Deck {
			return blackjack.NewDeck(blackjack.NewShuffler())
		},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func channelLockKey(channelID int64) string {
	return "blackjack:channel:" + strconv.FormatInt(channelID, 10)
}

// inChannel runs fn in one locked unit of work and replays it on a version
// conflict. fn receives the game loaded for the channel, or nil.
func (s *blackjackService) inChannel(ctx context.Context, channelID int64, fn func(uow UnitOfWork, game *blackjack.Session) error) error {
	unlock, err := s.locker.Lock(ctx, channelLockKey(channelID))
	if err != nil {
		return fmt.Errorf("failed to lock channel %d: %w", channelID, err)
	}
	defer unlock()

	for attempt := 1; ; attempt++ {
		err = s.runUnitOfWork(ctx, channelID, fn)
		if !errors.Is(err, blackjack.ErrConcurrentUpdate) || attempt >= maxConflictRetries {
			return err
		}
		log.WithFields(log.Fields{
			"channelID": channelID,
			"attempt":   attempt,
		}).Warn("Blackjack game changed concurrently, retrying")
	}
}

func (s *blackjackService) runUnitOfWork(ctx context.Context, channelID int64, fn func(uow UnitOfWork, game *blackjack.Session) error) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	game, err := uow.GameRepository().GetCurrentByChannel(ctx, channelID)
	if err != nil {
		return fmt.Errorf("failed to load game: %w", err)
	}

	if err := fn(uow, game); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// mutate loads the channel's game, applies op and saves it with a state
// change event when the status moved.
func (s *blackjackService) mutate(ctx context.Context, channelID int64, op func(uow UnitOfWork, game *blackjack.Session) error) (*blackjack.Session, error) {
	var saved *blackjack.Session
	err := s.inChannel(ctx, channelID, func(uow UnitOfWork, game *blackjack.Session) error {
		if game == nil {
			return blackjack.ErrNoActiveGame
		}
		before := game.Status

		if err := op(uow, game); err != nil {
			return err
		}

		if err := uow.GameRepository().Save(ctx, game); err != nil {
			return fmt.Errorf("failed to save game: %w", err)
		}
		if game.Status != before {
			uow.EventBus().Publish(events.BlackjackStateChangeEvent{
				GameID:    game.ID,
				GuildID:   game.GuildID,
				ChannelID: game.ChannelID,
				OldState:  string(before),
				NewState:  string(game.Status),
			})
		}
		saved = game
		return nil
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

func (s *blackjackService) adjustment(game *blackjack.Session, txType models.TransactionType) adjustment {
	return adjustment{
		guildID: game.GuildID,
		gameID:  game.ID,
		txType:  txType,
		metadata: map[string]any{
			"channel_id": game.ChannelID,
		},
	}
}

// Create opens a waiting game hosted by hostID
func (s *blackjackService) Create(ctx context.Context, guildID, channelID, hostID int64, hostName string) (*blackjack.Session, error) {
	var created *blackjack.Session
	err := s.inChannel(ctx, channelID, func(uow UnitOfWork, game *blackjack.Session) error {
		if game != nil {
			return blackjack.ErrGameAlreadyExists
		}

		created = blackjack.NewSession(guildID, channelID, hostID, hostName, s.newDeck(), s.now())
		if err := uow.GameRepository().Create(ctx, created); err != nil {
			if errors.Is(err, blackjack.ErrGameAlreadyExists) {
				return err
			}
			return fmt.Errorf("failed to create game: %w", err)
		}

		uow.EventBus().Publish(events.BlackjackStateChangeEvent{
			GameID:    created.ID,
			GuildID:   guildID,
			ChannelID: channelID,
			NewState:  string(blackjack.StatusWaiting),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"gameID":    created.ID,
		"channelID": channelID,
		"hostID":    hostID,
	}).Info("Blackjack game created")
	return created, nil
}

// Join seats a player and takes their stake
func (s *blackjackService) Join(ctx context.Context, channelID, discordID int64, username string, bet int64) (*blackjack.Session, *blackjack.Player, error) {
	var player *blackjack.Player
	game, err := s.mutate(ctx, channelID, func(uow UnitOfWork, game *blackjack.Session) error {
		l := newLedger(uow)
		account, err := l.GetOrCreateAccount(ctx, discordID, username)
		if err != nil {
			return err
		}

		player, err = game.Join(s.rules, discordID, username, bet, account.Balance, s.now())
		if err != nil {
			return err
		}

		_, err = l.AdjustBalance(ctx, discordID, -bet, s.adjustment(game, models.TransactionTypeBlackjackBet))
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return game, player, nil
}

// Start deals the opening cards
func (s *blackjackService) Start(ctx context.Context, channelID, callerID int64) (*blackjack.Session, error) {
	return s.mutate(ctx, channelID, func(uow UnitOfWork, game *blackjack.Session) error {
		return game.Start(callerID, s.now())
	})
}

// Cancel abandons a waiting game and refunds every stake
func (s *blackjackService) Cancel(ctx context.Context, channelID, callerID int64) (*blackjack.Session, error) {
	return s.mutate(ctx, channelID, func(uow UnitOfWork, game *blackjack.Session) error {
		refunds, err := game.Cancel(callerID, s.now())
		if err != nil {
			return err
		}

		l := newLedger(uow)
		for _, p := range refunds {
			if _, err := l.AdjustBalance(ctx, p.DiscordID, p.Bet, s.adjustment(game, models.TransactionTypeBlackjackRefund)); err != nil {
				return err
			}
		}
		return nil
	})
}

// Hit deals one more card to the caller's active hand
func (s *blackjackService) Hit(ctx context.Context, channelID, discordID int64) (*ActionOutcome, error) {
	var result *blackjack.ActionResult
	game, err := s.mutate(ctx, channelID, func(uow UnitOfWork, game *blackjack.Session) error {
		var err error
		result, err = game.Hit(discordID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &ActionOutcome{Session: game, Result: result}, nil
}

// Stand ends the caller's active hand
func (s *blackjackService) Stand(ctx context.Context, channelID, discordID int64) (*ActionOutcome, error) {
	var result *blackjack.ActionResult
	game, err := s.mutate(ctx, channelID, func(uow UnitOfWork, game *blackjack.Session) error {
		var err error
		result, err = game.Stand(discordID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &ActionOutcome{Session: game, Result: result}, nil
}

// DoubleDown doubles the active hand's stake for exactly one more card
func (s *blackjackService) DoubleDown(ctx context.Context, channelID, discordID int64) (*ActionOutcome, error) {
	return s.stakedAction(ctx, channelID, discordID, models.TransactionTypeBlackjackDouble,
		func(game *blackjack.Session, balance int64) (*blackjack.ActionResult, error) {
			return game.DoubleDown(discordID, balance)
		})
}

// Split turns a pair into two hands, staking the original bet again
func (s *blackjackService) Split(ctx context.Context, channelID, discordID int64) (*ActionOutcome, error) {
	return s.stakedAction(ctx, channelID, discordID, models.TransactionTypeBlackjackSplit,
		func(game *blackjack.Session, balance int64) (*blackjack.ActionResult, error) {
			return game.Split(discordID, balance)
		})
}

// stakedAction runs a decision that puts more coins on the table
func (s *blackjackService) stakedAction(ctx context.Context, channelID, discordID int64, txType models.TransactionType, action func(game *blackjack.Session, balance int64) (*blackjack.ActionResult, error)) (*ActionOutcome, error) {
	var result *blackjack.ActionResult
	game, err := s.mutate(ctx, channelID, func(uow UnitOfWork, game *blackjack.Session) error {
		l := newLedger(uow)
		balance, err := l.Balance(ctx, discordID)
		if err != nil {
			return err
		}

		result, err = action(game, balance)
		if err != nil {
			return err
		}

		_, err = l.AdjustBalance(ctx, discordID, -result.Cost, s.adjustment(game, txType))
		return err
	})
	if err != nil {
		return nil, err
	}
	return &ActionOutcome{Session: game, Result: result}, nil
}

// Insurance buys insurance for half the caller's bet
func (s *blackjackService) Insurance(ctx context.Context, channelID, discordID int64) (*InsuranceOutcome, error) {
	var cost int64
	game, err := s.mutate(ctx, channelID, func(uow UnitOfWork, game *blackjack.Session) error {
		l := newLedger(uow)
		balance, err := l.Balance(ctx, discordID)
		if err != nil {
			return err
		}

		cost, err = game.Insure(discordID, balance)
		if err != nil {
			return err
		}

		_, err = l.AdjustBalance(ctx, discordID, -cost, s.adjustment(game, models.TransactionTypeBlackjackInsurance))
		return err
	})
	if err != nil {
		return nil, err
	}
	return &InsuranceOutcome{Session: game, Player: game.Player(discordID), Cost: cost}, nil
}

// PlayDealer plays the dealer's hand and pays every player in the same
// transaction that finishes the game.
func (s *blackjackService) PlayDealer(ctx context.Context, channelID int64) (*SettlementOutcome, error) {
	var settlement *blackjack.Settlement
	game, err := s.mutate(ctx, channelID, func(uow UnitOfWork, game *blackjack.Session) error {
		var err error
		settlement, err = game.PlayDealer(s.now())
		if err != nil {
			return err
		}

		l := newLedger(uow)
		finished := events.BlackjackFinishedEvent{
			GameID:      game.ID,
			GuildID:     game.GuildID,
			ChannelID:   game.ChannelID,
			DealerValue: settlement.DealerValue,
			DealerBust:  settlement.DealerBust,
		}

		for _, p := range settlement.Players {
			if p.Payout > 0 {
				if _, err := l.AdjustBalance(ctx, p.DiscordID, p.Payout, s.adjustment(game, models.TransactionTypeBlackjackPayout)); err != nil {
					return err
				}
			}
			if p.InsurancePayout > 0 {
				if _, err := l.AdjustBalance(ctx, p.DiscordID, p.InsurancePayout, s.adjustment(game, models.TransactionTypeBlackjackInsurancePayout)); err != nil {
					return err
				}
			}
			if err := l.RecordOutcome(ctx, p.DiscordID, outcomeFor(p.Result)); err != nil {
				return err
			}

			finished.Players = append(finished.Players, events.BlackjackPlayerOutcome{
				DiscordID: p.DiscordID,
				Username:  p.Username,
				Bet:       p.Bet,
				Payout:    p.Payout + p.InsurancePayout,
				Result:    string(p.Result),
			})
		}

		uow.EventBus().Publish(finished)
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"gameID":      game.ID,
		"channelID":   channelID,
		"dealerValue": settlement.DealerValue,
		"players":     len(settlement.Players),
	}).Info("Blackjack game settled")
	return &SettlementOutcome{Session: game, Settlement: settlement}, nil
}

// Current returns the channel's unfinished game without changing it
func (s *blackjackService) Current(ctx context.Context, channelID int64) (*blackjack.Session, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	game, err := uow.GameRepository().GetCurrentByChannel(ctx, channelID)
	if err != nil {
		return nil, fmt.Errorf("failed to load game: %w", err)
	}
	if game == nil {
		return nil, blackjack.ErrNoActiveGame
	}
	return game, nil
}

// Recent returns the channel's latest closed games, newest first
func (s *blackjackService) Recent(ctx context.Context, channelID int64, limit int) ([]*blackjack.Session, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	games, err := uow.GameRepository().GetRecentByChannel(ctx, channelID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent games: %w", err)
	}
	return games, nil
}

func outcomeFor(result blackjack.Result) models.Outcome {
	switch result {
	case blackjack.ResultWin, blackjack.ResultBlackjack:
		return models.OutcomeWin
	case blackjack.ResultLose:
		return models.OutcomeLoss
	default:
		return models.OutcomePush
	}
}
