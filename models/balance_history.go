package models

import (
	"time"
)

// TransactionType represents the type of balance change
type TransactionType string

const (
	TransactionTypeInitial                  TransactionType = "initial"
	TransactionTypeBlackjackBet             TransactionType = "blackjack_bet"
	TransactionTypeBlackjackDouble          TransactionType = "blackjack_double"
	TransactionTypeBlackjackSplit           TransactionType = "blackjack_split"
	TransactionTypeBlackjackInsurance       TransactionType = "blackjack_insurance"
	TransactionTypeBlackjackPayout          TransactionType = "blackjack_payout"
	TransactionTypeBlackjackInsurancePayout TransactionType = "blackjack_insurance_payout"
	TransactionTypeBlackjackRefund          TransactionType = "blackjack_refund"
	TransactionTypeAdminGive                TransactionType = "admin_give"
	TransactionTypeAdminTake                TransactionType = "admin_take"
	TransactionTypeAdminSet                 TransactionType = "admin_set"
)

// IsDebit reports whether the transaction type takes coins from the user
func (t TransactionType) IsDebit() bool {
	switch t {
	case TransactionTypeBlackjackBet, TransactionTypeBlackjackDouble,
		TransactionTypeBlackjackSplit, TransactionTypeBlackjackInsurance,
		TransactionTypeAdminTake:
		return true
	}
	return false
}

// RelatedType represents what type of entity the related_id refers to
type RelatedType string

const (
	RelatedTypeBlackjackGame RelatedType = "blackjack_game"
)

// BalanceHistory represents a historical balance change
type BalanceHistory struct {
	ID                  int64           `db:"id"`
	DiscordID           int64           `db:"discord_id"`
	GuildID             int64           `db:"guild_id"`
	BalanceBefore       int64           `db:"balance_before"`
	BalanceAfter        int64           `db:"balance_after"`
	ChangeAmount        int64           `db:"change_amount"`
	TransactionType     TransactionType `db:"transaction_type"`
	TransactionMetadata map[string]any  `db:"transaction_metadata"`
	RelatedID           *int64          `db:"related_id"`
	RelatedType         *RelatedType    `db:"related_type"`
	CreatedAt           time.Time       `db:"created_at"`
}
