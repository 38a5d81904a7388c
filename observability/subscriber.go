package observability

import (
	"context"

	"casino/blackjack"
	"casino/events"
)

// Subscribe feeds game and balance events from the bus into the metrics
func (mp *MetricsProvider) Subscribe(bus *events.Bus) {
	bus.Subscribe(events.EventTypeBlackjackStateChange, mp.handleEvent)
	bus.Subscribe(events.EventTypeBlackjackFinished, mp.handleEvent)
	bus.Subscribe(events.EventTypeBalanceChange, mp.handleEvent)
}

func (mp *MetricsProvider) handleEvent(ctx context.Context, event events.Event) {
	switch e := event.(type) {
	case events.BlackjackStateChangeEvent:
		switch blackjack.Status(e.NewState) {
		case blackjack.StatusWaiting:
			if e.OldState == "" {
				mp.UpdateActiveGames(1)
			}
		case blackjack.StatusFinished, blackjack.StatusCancelled:
			mp.UpdateActiveGames(-1)
			mp.RecordGameClosed(e.NewState)
		}

	case events.BlackjackFinishedEvent:
		results := make([]string, 0, len(e.Players))
		var wagered, paid int64
		for _, p := range e.Players {
			results = append(results, p.Result)
			wagered += p.Bet
			paid += p.Payout
		}
		mp.RecordSettlement(results, wagered, paid, e.DealerBust)

	case events.BalanceChangeEvent:
		mp.RecordBalanceTransaction(string(e.TransactionType))
	}
}
