package observability

import (
	"context"
	"fmt"
	"sync"
	"time"

	"casino/config"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

// MetricsProvider records casino metrics through OpenTelemetry. A nil or
// disabled provider accepts every call and records nothing.
type MetricsProvider struct {
	config        *config.Config
	meterProvider *sdkmetric.MeterProvider
	meter         metric.Meter
	initialized   bool
	mu            sync.RWMutex

	interactionsCounter        metric.Int64Counter
	gamesActiveGauge           metric.Int64UpDownCounter
	gamesClosedCounter         metric.Int64Counter
	handsSettledCounter        metric.Int64Counter
	dealerBustsCounter         metric.Int64Counter
	coinsWageredCounter        metric.Int64Counter
	coinsPaidCounter           metric.Int64Counter
	balanceTransactionsCounter metric.Int64Counter
}

// NewMetricsProvider creates a new metrics provider
func NewMetricsProvider(cfg *config.Config) *MetricsProvider {
	return &MetricsProvider{
		config: cfg,
	}
}

// Initialize builds the exporter named by the config and starts exporting
func (mp *MetricsProvider) Initialize(ctx context.Context) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.initialized {
		return nil
	}

	if !mp.config.OTelEnabled {
		log.Info("OpenTelemetry metrics disabled")
		mp.initialized = true
		return nil
	}

	var (
		exporter sdkmetric.Exporter
		err      error
	)
	switch mp.config.OTelExporterType {
	case "console":
		exporter, err = stdoutmetric.New()
		if err != nil {
			return fmt.Errorf("failed to create console exporter: %w", err)
		}
		log.Info("Using console metric exporter")

	case "otlp":
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		exporter, err = otlpmetricgrpc.New(ctx,
			otlpmetricgrpc.WithEndpoint(mp.config.OTelOTLPEndpoint),
			otlpmetricgrpc.WithInsecure(),
		)
		if err != nil {
			return fmt.Errorf("failed to create OTLP exporter: %w", err)
		}
		log.WithField("endpoint", mp.config.OTelOTLPEndpoint).Info("Using OTLP metric exporter")

	case "none":
		log.Info("Metrics export disabled (exporter type 'none')")
		mp.initialized = true
		return nil

	default:
		return fmt.Errorf("unknown exporter type: %s", mp.config.OTelExporterType)
	}

	reader := sdkmetric.NewPeriodicReader(
		exporter,
		sdkmetric.WithInterval(time.Duration(mp.config.OTelExportIntervalMillis)*time.Millisecond),
	)
	if err := mp.start(reader); err != nil {
		return err
	}
	otel.SetMeterProvider(mp.meterProvider)

	log.Info("Metrics provider initialized")
	return nil
}

// start wires a meter provider around reader. Callers hold mp.mu.
func (mp *MetricsProvider) start(reader sdkmetric.Reader) error {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(
			semconv.ServiceName(mp.config.OTelServiceName),
			attribute.String("environment", mp.config.Environment),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	mp.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)
	mp.meter = mp.meterProvider.Meter("casino")

	if err := mp.createInstruments(); err != nil {
		return fmt.Errorf("failed to create instruments: %w", err)
	}
	mp.initialized = true
	return nil
}

func (mp *MetricsProvider) createInstruments() error {
	var err error

	mp.interactionsCounter, err = mp.meter.Int64Counter(
		InteractionsTotal,
		metric.WithDescription("Total number of Discord interactions handled"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create interactions counter: %w", err)
	}

	// UpDownCounter for gauge-like behavior
	mp.gamesActiveGauge, err = mp.meter.Int64UpDownCounter(
		GamesActive,
		metric.WithDescription("Current number of open blackjack games"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create games active gauge: %w", err)
	}

	mp.gamesClosedCounter, err = mp.meter.Int64Counter(
		GamesClosedTotal,
		metric.WithDescription("Total number of blackjack games finished or cancelled"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create games closed counter: %w", err)
	}

	mp.handsSettledCounter, err = mp.meter.Int64Counter(
		HandsSettledTotal,
		metric.WithDescription("Total number of settled blackjack seats by result"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create settled seats counter: %w", err)
	}

	mp.dealerBustsCounter, err = mp.meter.Int64Counter(
		DealerBustsTotal,
		metric.WithDescription("Total number of games where the dealer busted"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create dealer busts counter: %w", err)
	}

	mp.coinsWageredCounter, err = mp.meter.Int64Counter(
		CoinsWageredTotal,
		metric.WithDescription("Total coins staked on settled games"),
		metric.WithUnit("{coin}"),
	)
	if err != nil {
		return fmt.Errorf("failed to create coins wagered counter: %w", err)
	}

	mp.coinsPaidCounter, err = mp.meter.Int64Counter(
		CoinsPaidOutTotal,
		metric.WithDescription("Total coins paid back to players on settled games"),
		metric.WithUnit("{coin}"),
	)
	if err != nil {
		return fmt.Errorf("failed to create coins paid counter: %w", err)
	}

	mp.balanceTransactionsCounter, err = mp.meter.Int64Counter(
		BalanceTransactionsTotal,
		metric.WithDescription("Total number of balance transactions"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create balance transactions counter: %w", err)
	}

	return nil
}

// Shutdown flushes pending metrics and stops the exporter
func (mp *MetricsProvider) Shutdown(ctx context.Context) error {
	if mp == nil {
		return nil
	}
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.meterProvider != nil {
		return mp.meterProvider.Shutdown(ctx)
	}
	return nil
}

// RecordInteraction records a slash command or button press
func (mp *MetricsProvider) RecordInteraction(interactionType, name string) {
	if !mp.isEnabled() {
		return
	}

	mp.interactionsCounter.Add(context.Background(), 1,
		metric.WithAttributes(
			attribute.String(LabelType, interactionType),
			attribute.String(LabelName, name),
		),
	)
}

// UpdateActiveGames moves the open game count by delta
func (mp *MetricsProvider) UpdateActiveGames(delta int64) {
	if !mp.isEnabled() {
		return
	}
	mp.gamesActiveGauge.Add(context.Background(), delta)
}

// RecordGameClosed records a game reaching finished or cancelled
func (mp *MetricsProvider) RecordGameClosed(status string) {
	if !mp.isEnabled() {
		return
	}

	mp.gamesClosedCounter.Add(context.Background(), 1,
		metric.WithAttributes(
			attribute.String(LabelStatus, status),
		),
	)
}

// RecordSettlement records one settled game's seats and money
func (mp *MetricsProvider) RecordSettlement(results []string, wagered, paid int64, dealerBust bool) {
	if !mp.isEnabled() {
		return
	}

	ctx := context.Background()
	for _, result := range results {
		mp.handsSettledCounter.Add(ctx, 1,
			metric.WithAttributes(
				attribute.String(LabelResult, result),
			),
		)
	}
	mp.coinsWageredCounter.Add(ctx, wagered)
	mp.coinsPaidCounter.Add(ctx, paid)
	if dealerBust {
		mp.dealerBustsCounter.Add(ctx, 1)
	}
}

// RecordBalanceTransaction records a balance transaction
func (mp *MetricsProvider) RecordBalanceTransaction(transactionType string) {
	if !mp.isEnabled() {
		return
	}

	mp.balanceTransactionsCounter.Add(context.Background(), 1,
		metric.WithAttributes(
			attribute.String(LabelType, transactionType),
		),
	)
}

// isEnabled reports whether instruments exist to record into
func (mp *MetricsProvider) isEnabled() bool {
	if mp == nil {
		return false
	}
	mp.mu.RLock()
	defer mp.mu.RUnlock()
	return mp.initialized && mp.meterProvider != nil
}
