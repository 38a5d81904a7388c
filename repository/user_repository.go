package repository

import (
	"context"
	"errors"
	"fmt"

	"casino/blackjack"
	"casino/database"
	"casino/models"

	"github.com/jackc/pgx/v5"
)

const userColumns = `discord_id, username, balance, games_played, games_won, games_lost, created_at, updated_at`

// UserRepository implements the UserRepository interface
type UserRepository struct {
	q queryable
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{q: db.Pool}
}

// newUserRepositoryWithTx creates a new user repository with a transaction
func newUserRepositoryWithTx(tx queryable) *UserRepository {
	return &UserRepository{q: tx}
}

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.DiscordID,
		&user.Username,
		&user.Balance,
		&user.GamesPlayed,
		&user.GamesWon,
		&user.GamesLost,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByDiscordID retrieves a user by their Discord ID
func (r *UserRepository) GetByDiscordID(ctx context.Context, discordID int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE discord_id = $1`

	user, err := scanUser(r.q.QueryRow(ctx, query, discordID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by discord ID %d: %w", discordID, err)
	}
	return user, nil
}

// Create creates a new user with the initial balance
func (r *UserRepository) Create(ctx context.Context, discordID int64, username string, initialBalance int64) (*models.User, error) {
	query := `
		INSERT INTO users (discord_id, username, balance)
		VALUES ($1, $2, $3)
		RETURNING ` + userColumns

	user, err := scanUser(r.q.QueryRow(ctx, query, discordID, username, initialBalance))
	if err != nil {
		return nil, fmt.Errorf("failed to create user with discord ID %d: %w", discordID, err)
	}
	return user, nil
}

// UpdateBalance updates a user's balance atomically
func (r *UserRepository) UpdateBalance(ctx context.Context, discordID int64, newBalance int64) error {
	query := `
		UPDATE users
		SET balance = $1, updated_at = NOW()
		WHERE discord_id = $2
	`

	result, err := r.q.Exec(ctx, query, newBalance, discordID)
	if err != nil {
		return fmt.Errorf("failed to update balance for user %d: %w", discordID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("user with discord ID %d not found", discordID)
	}
	return nil
}

// AddBalance adds to a user's balance atomically and returns the new balance
func (r *UserRepository) AddBalance(ctx context.Context, discordID int64, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("amount must be positive")
	}

	query := `
		UPDATE users
		SET balance = balance + $1, updated_at = NOW()
		WHERE discord_id = $2
		RETURNING balance
	`

	var balance int64
	err := r.q.QueryRow(ctx, query, amount, discordID).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("user with discord ID %d not found", discordID)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to add balance for user %d: %w", discordID, err)
	}
	return balance, nil
}

// DeductBalance deducts from a user's balance atomically, failing with
// blackjack.ErrInsufficientFunds when the balance would go negative
func (r *UserRepository) DeductBalance(ctx context.Context, discordID int64, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("amount must be positive")
	}

	query := `
		UPDATE users
		SET balance = balance - $1, updated_at = NOW()
		WHERE discord_id = $2 AND balance >= $1
		RETURNING balance
	`

	var balance int64
	err := r.q.QueryRow(ctx, query, amount, discordID).Scan(&balance)
	if err == nil {
		return balance, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("failed to deduct balance for user %d: %w", discordID, err)
	}

	// Either the user is missing or the balance is too low
	user, err := r.GetByDiscordID(ctx, discordID)
	if err != nil {
		return 0, fmt.Errorf("failed to check user: %w", err)
	}
	if user == nil {
		return 0, fmt.Errorf("user with discord ID %d not found", discordID)
	}
	return 0, fmt.Errorf("%w: have %d, need %d", blackjack.ErrInsufficientFunds, user.Balance, amount)
}

// RecordOutcome bumps the played counter and the matching win/loss counter
func (r *UserRepository) RecordOutcome(ctx context.Context, discordID int64, outcome models.Outcome) error {
	var won, lost int
	switch outcome {
	case models.OutcomeWin:
		won = 1
	case models.OutcomeLoss:
		lost = 1
	case models.OutcomePush:
	default:
		return fmt.Errorf("unknown outcome %q", outcome)
	}

	query := `
		UPDATE users
		SET games_played = games_played + 1,
		    games_won = games_won + $1,
		    games_lost = games_lost + $2,
		    updated_at = NOW()
		WHERE discord_id = $3
	`

	result, err := r.q.Exec(ctx, query, won, lost, discordID)
	if err != nil {
		return fmt.Errorf("failed to record outcome for user %d: %w", discordID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("user with discord ID %d not found", discordID)
	}
	return nil
}

// GetTopByBalance returns the richest users first
func (r *UserRepository) GetTopByBalance(ctx context.Context, limit int) ([]*models.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		ORDER BY balance DESC, discord_id
		LIMIT $1
	`

	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get top users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}
	return users, nil
}
