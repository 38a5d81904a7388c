package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"casino/blackjack"
	"casino/database"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	uniqueViolation         = "23505"
	activeChannelConstraint = "idx_blackjack_games_active_channel"
)

// GameRepository stores blackjack games and their seats. Cards are kept as
// JSONB so a game is restored exactly as it was saved.
type GameRepository struct {
	q queryable
}

// NewGameRepository creates a new game repository
func NewGameRepository(db *database.DB) *GameRepository {
	return &GameRepository{q: db.Pool}
}

func newGameRepositoryWithTx(tx queryable) *GameRepository {
	return &GameRepository{q: tx}
}

const gameColumns = `id, guild_id, channel_id, host_discord_id, host_username, status, current_turn,
	dealer_cards, deck, version, created_at, started_at, finished_at`

func scanGame(row pgx.Row) (*blackjack.Session, error) {
	var (
		game       blackjack.Session
		status     string
		dealerJSON []byte
		deckJSON   []byte
	)
	err := row.Scan(
		&game.ID,
		&game.GuildID,
		&game.ChannelID,
		&game.HostID,
		&game.HostName,
		&status,
		&game.CurrentTurn,
		&dealerJSON,
		&deckJSON,
		&game.Version,
		&game.CreatedAt,
		&game.StartedAt,
		&game.FinishedAt,
	)
	if err != nil {
		return nil, err
	}

	game.Status = blackjack.Status(status)
	if err := json.Unmarshal(dealerJSON, &game.Dealer); err != nil {
		return nil, fmt.Errorf("failed to unmarshal dealer cards for game %d: %w", game.ID, err)
	}
	var cards []blackjack.Card
	if err := json.Unmarshal(deckJSON, &cards); err != nil {
		return nil, fmt.Errorf("failed to unmarshal deck for game %d: %w", game.ID, err)
	}
	game.Deck = blackjack.NewDeckFromCards(cards, blackjack.NewShuffler())
	return &game, nil
}

// GetCurrentByChannel returns the channel's unfinished game with its players,
// nil when there is none. Inside a transaction the game row stays locked
// until commit.
func (r *GameRepository) GetCurrentByChannel(ctx context.Context, channelID int64) (*blackjack.Session, error) {
	query := `
		SELECT ` + gameColumns + `
		FROM blackjack_games
		WHERE channel_id = $1 AND status IN ('waiting', 'playing', 'dealer_turn')
		FOR UPDATE
	`

	game, err := scanGame(r.q.QueryRow(ctx, query, channelID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game for channel %d: %w", channelID, err)
	}

	game.Players, err = r.getPlayers(ctx, game.ID)
	if err != nil {
		return nil, err
	}
	return game, nil
}

// GetRecentByChannel returns the channel's latest closed games, newest first
func (r *GameRepository) GetRecentByChannel(ctx context.Context, channelID int64, limit int) ([]*blackjack.Session, error) {
	query := `
		SELECT ` + gameColumns + `
		FROM blackjack_games
		WHERE channel_id = $1 AND status IN ('finished', 'cancelled')
		ORDER BY COALESCE(finished_at, created_at) DESC, id DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, channelID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent games for channel %d: %w", channelID, err)
	}

	var games []*blackjack.Session
	for rows.Next() {
		game, err := scanGame(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		games = append(games, game)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate games: %w", err)
	}

	// Players are loaded after the game rows are drained since a
	// transaction runs one query at a time
	for _, game := range games {
		game.Players, err = r.getPlayers(ctx, game.ID)
		if err != nil {
			return nil, err
		}
	}
	return games, nil
}

func (r *GameRepository) getPlayers(ctx context.Context, gameID int64) ([]*blackjack.Player, error) {
	query := `
		SELECT id, discord_id, username, join_order, bet_amount, hands, active_hand,
		       has_insurance, insurance_amount, insurance_payout, result, payout, joined_at
		FROM blackjack_players
		WHERE game_id = $1
		ORDER BY join_order
	`

	rows, err := r.q.Query(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get players for game %d: %w", gameID, err)
	}
	defer rows.Close()

	var players []*blackjack.Player
	for rows.Next() {
		var (
			p         blackjack.Player
			handsJSON []byte
			result    *string
		)
		err := rows.Scan(
			&p.ID,
			&p.DiscordID,
			&p.Username,
			&p.JoinOrder,
			&p.Bet,
			&handsJSON,
			&p.ActiveHand,
			&p.HasInsurance,
			&p.InsuranceAmount,
			&p.InsurancePayout,
			&result,
			&p.Payout,
			&p.JoinedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		if err := json.Unmarshal(handsJSON, &p.Hands); err != nil {
			return nil, fmt.Errorf("failed to unmarshal hands for player %d: %w", p.DiscordID, err)
		}
		if result != nil {
			p.Result = blackjack.Result(*result)
		}
		players = append(players, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate players: %w", err)
	}
	return players, nil
}

// Create inserts a new game and any players already seated
func (r *GameRepository) Create(ctx context.Context, game *blackjack.Session) error {
	dealerJSON, deckJSON, err := marshalTable(game)
	if err != nil {
		return err
	}
	if game.CreatedAt.IsZero() {
		game.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO blackjack_games
		(guild_id, channel_id, host_discord_id, host_username, status, current_turn, dealer_cards, deck, created_at, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, version
	`

	err = r.q.QueryRow(ctx, query,
		game.GuildID,
		game.ChannelID,
		game.HostID,
		game.HostName,
		string(game.Status),
		game.CurrentTurn,
		dealerJSON,
		deckJSON,
		game.CreatedAt,
		game.StartedAt,
		game.FinishedAt,
	).Scan(&game.ID, &game.Version)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == activeChannelConstraint {
			return blackjack.ErrGameAlreadyExists
		}
		return fmt.Errorf("failed to create game in channel %d: %w", game.ChannelID, err)
	}

	return r.savePlayers(ctx, game)
}

// Save writes the game when its stored version still matches and bumps the
// version. Players are upserted in one batch.
func (r *GameRepository) Save(ctx context.Context, game *blackjack.Session) error {
	dealerJSON, deckJSON, err := marshalTable(game)
	if err != nil {
		return err
	}

	query := `
		UPDATE blackjack_games
		SET status = $1, current_turn = $2, dealer_cards = $3, deck = $4,
		    started_at = $5, finished_at = $6, version = version + 1
		WHERE id = $7 AND version = $8
		RETURNING version
	`

	var version int64
	err = r.q.QueryRow(ctx, query,
		string(game.Status),
		game.CurrentTurn,
		dealerJSON,
		deckJSON,
		game.StartedAt,
		game.FinishedAt,
		game.ID,
		game.Version,
	).Scan(&version)
	if errors.Is(err, pgx.ErrNoRows) {
		return blackjack.ErrConcurrentUpdate
	}
	if err != nil {
		return fmt.Errorf("failed to save game %d: %w", game.ID, err)
	}

	if err := r.savePlayers(ctx, game); err != nil {
		return err
	}
	game.Version = version
	return nil
}

func (r *GameRepository) savePlayers(ctx context.Context, game *blackjack.Session) error {
	if len(game.Players) == 0 {
		return nil
	}

	query := `
		INSERT INTO blackjack_players
		(game_id, discord_id, username, join_order, bet_amount, hands, active_hand,
		 has_insurance, insurance_amount, insurance_payout, result, payout, joined_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (game_id, discord_id) DO UPDATE SET
			bet_amount = EXCLUDED.bet_amount,
			hands = EXCLUDED.hands,
			active_hand = EXCLUDED.active_hand,
			has_insurance = EXCLUDED.has_insurance,
			insurance_amount = EXCLUDED.insurance_amount,
			insurance_payout = EXCLUDED.insurance_payout,
			result = EXCLUDED.result,
			payout = EXCLUDED.payout
		RETURNING id
	`

	batch := &pgx.Batch{}
	for _, p := range game.Players {
		handsJSON, err := json.Marshal(p.Hands)
		if err != nil {
			return fmt.Errorf("failed to marshal hands for player %d: %w", p.DiscordID, err)
		}
		var result *string
		if p.Result != "" {
			s := string(p.Result)
			result = &s
		}

		player := p
		batch.Queue(query,
			game.ID,
			p.DiscordID,
			p.Username,
			p.JoinOrder,
			p.Bet,
			handsJSON,
			p.ActiveHand,
			p.HasInsurance,
			p.InsuranceAmount,
			p.InsurancePayout,
			result,
			p.Payout,
			p.JoinedAt,
		).QueryRow(func(row pgx.Row) error {
			return row.Scan(&player.ID)
		})
	}

	if err := r.q.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to save players for game %d: %w", game.ID, err)
	}
	return nil
}

func marshalTable(game *blackjack.Session) (dealerJSON, deckJSON []byte, err error) {
	dealer := game.Dealer
	if dealer == nil {
		dealer = blackjack.Hand{}
	}
	dealerJSON, err = json.Marshal(dealer)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal dealer cards: %w", err)
	}

	var cards []blackjack.Card
	if game.Deck != nil {
		cards = game.Deck.Cards()
	}
	deckJSON, err = json.Marshal(cards)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal deck: %w", err)
	}
	return dealerJSON, deckJSON, nil
}
