package observability

const MetricPrefix = "casino"

// Metric names
const (
	// Discord metrics
	InteractionsTotal = MetricPrefix + ".discord.interactions_total"

	// Blackjack metrics
	GamesActive       = MetricPrefix + ".blackjack.games_active"
	GamesClosedTotal  = MetricPrefix + ".blackjack.games_closed_total"
	HandsSettledTotal = MetricPrefix + ".blackjack.players_settled_total"
	DealerBustsTotal  = MetricPrefix + ".blackjack.dealer_busts_total"
	CoinsWageredTotal = MetricPrefix + ".blackjack.coins_wagered_total"
	CoinsPaidOutTotal = MetricPrefix + ".blackjack.coins_paid_total"

	// Balance metrics
	BalanceTransactionsTotal = MetricPrefix + ".balance.transactions_total"
)

// Label keys
const (
	LabelType   = "type"
	LabelName   = "name"
	LabelStatus = "status"
	LabelResult = "result"
)

// Interaction types
const (
	InteractionTypeCommand   = "command"
	InteractionTypeComponent = "component"
)
