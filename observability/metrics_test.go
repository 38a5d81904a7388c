package observability

import (
	"context"
	"testing"

	"casino/config"
	"casino/events"
	"casino/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestProvider(t *testing.T) (*MetricsProvider, *sdkmetric.ManualReader) {
	t.Helper()

	cfg := config.NewTestConfig()
	cfg.OTelEnabled = true
	cfg.OTelServiceName = "casino-test"

	mp := NewMetricsProvider(cfg)
	reader := sdkmetric.NewManualReader()
	mp.mu.Lock()
	err := mp.start(reader)
	mp.mu.Unlock()
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = mp.Shutdown(context.Background())
	})
	return mp, reader
}

// sum returns the value of the data point of name carrying every given
// attribute, or zero when there is none
func sum(t *testing.T, reader *sdkmetric.ManualReader, name string, attrs ...attribute.KeyValue) int64 {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			data, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "metric %s is not an int64 sum", name)

			var total int64
			for _, dp := range data.DataPoints {
				if hasAttributes(dp.Attributes, attrs) {
					total += dp.Value
				}
			}
			return total
		}
	}
	return 0
}

func hasAttributes(set attribute.Set, attrs []attribute.KeyValue) bool {
	for _, want := range attrs {
		got, ok := set.Value(want.Key)
		if !ok || got.Emit() != want.Value.Emit() {
			return false
		}
	}
	return true
}

func TestMetricsProvider_GameLifecycle(t *testing.T) {
	mp, reader := newTestProvider(t)
	ctx := context.Background()

	mp.handleEvent(ctx, events.BlackjackStateChangeEvent{GameID: 1, NewState: "waiting"})
	mp.handleEvent(ctx, events.BlackjackStateChangeEvent{GameID: 2, NewState: "waiting"})
	mp.handleEvent(ctx, events.BlackjackStateChangeEvent{GameID: 1, OldState: "waiting", NewState: "playing"})
	assert.Equal(t, int64(2), sum(t, reader, GamesActive))

	mp.handleEvent(ctx, events.BlackjackStateChangeEvent{GameID: 1, OldState: "playing", NewState: "dealer_turn"})
	mp.handleEvent(ctx, events.BlackjackStateChangeEvent{GameID: 1, OldState: "dealer_turn", NewState: "finished"})
	mp.handleEvent(ctx, events.BlackjackStateChangeEvent{GameID: 2, OldState: "waiting", NewState: "cancelled"})

	assert.Equal(t, int64(0), sum(t, reader, GamesActive))
	assert.Equal(t, int64(1), sum(t, reader, GamesClosedTotal, attribute.String(LabelStatus, "finished")))
	assert.Equal(t, int64(1), sum(t, reader, GamesClosedTotal, attribute.String(LabelStatus, "cancelled")))
}

func TestMetricsProvider_Settlement(t *testing.T) {
	mp, reader := newTestProvider(t)

	mp.handleEvent(context.Background(), events.BlackjackFinishedEvent{
		GameID:      7,
		DealerValue: 23,
		DealerBust:  true,
		Players: []events.BlackjackPlayerOutcome{
			{DiscordID: 1, Bet: 100, Payout: 200, Result: "win"},
			{DiscordID: 2, Bet: 50, Payout: 125, Result: "blackjack"},
			{DiscordID: 3, Bet: 40, Payout: 0, Result: "lose"},
		},
	})

	assert.Equal(t, int64(190), sum(t, reader, CoinsWageredTotal))
	assert.Equal(t, int64(325), sum(t, reader, CoinsPaidOutTotal))
	assert.Equal(t, int64(1), sum(t, reader, DealerBustsTotal))
	assert.Equal(t, int64(3), sum(t, reader, HandsSettledTotal))
	assert.Equal(t, int64(1), sum(t, reader, HandsSettledTotal, attribute.String(LabelResult, "blackjack")))
}

func TestMetricsProvider_BalanceAndInteractions(t *testing.T) {
	mp, reader := newTestProvider(t)
	ctx := context.Background()

	mp.handleEvent(ctx, events.BalanceChangeEvent{UserID: 1, TransactionType: models.TransactionTypeBlackjackBet})
	mp.handleEvent(ctx, events.BalanceChangeEvent{UserID: 2, TransactionType: models.TransactionTypeBlackjackBet})
	mp.handleEvent(ctx, events.BalanceChangeEvent{UserID: 1, TransactionType: models.TransactionTypeBlackjackPayout})
	mp.RecordInteraction(InteractionTypeCommand, "blackjack")
	mp.RecordInteraction(InteractionTypeComponent, "blackjack_hit")

	assert.Equal(t, int64(2), sum(t, reader, BalanceTransactionsTotal, attribute.String(LabelType, "blackjack_bet")))
	assert.Equal(t, int64(3), sum(t, reader, BalanceTransactionsTotal))
	assert.Equal(t, int64(1), sum(t, reader, InteractionsTotal,
		attribute.String(LabelType, InteractionTypeComponent),
		attribute.String(LabelName, "blackjack_hit"),
	))
}

func TestMetricsProvider_DisabledIsNoop(t *testing.T) {
	cfg := config.NewTestConfig()
	mp := NewMetricsProvider(cfg)
	require.NoError(t, mp.Initialize(context.Background()))

	assert.NotPanics(t, func() {
		mp.RecordInteraction(InteractionTypeCommand, "balance")
		mp.UpdateActiveGames(1)
		mp.RecordSettlement([]string{"win"}, 10, 20, false)
	})
	assert.NoError(t, mp.Shutdown(context.Background()))

	var nilProvider *MetricsProvider
	assert.NotPanics(t, func() {
		nilProvider.RecordBalanceTransaction("admin_give")
	})
	assert.NoError(t, nilProvider.Shutdown(context.Background()))
}

func TestMetricsProvider_NoneExporterIsNoop(t *testing.T) {
	cfg := config.NewTestConfig()
	cfg.OTelEnabled = true
	cfg.OTelExporterType = "none"

	mp := NewMetricsProvider(cfg)
	require.NoError(t, mp.Initialize(context.Background()))
	assert.NotPanics(t, func() {
		mp.RecordGameClosed("finished")
	})
}

func TestMetricsProvider_UnknownExporter(t *testing.T) {
	cfg := config.NewTestConfig()
	cfg.OTelEnabled = true
	cfg.OTelExporterType = "carrier-pigeon"

	err := NewMetricsProvider(cfg).Initialize(context.Background())
	assert.ErrorContains(t, err, "unknown exporter type")
}
