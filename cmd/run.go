package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"casino/blackjack"
	"casino/bot"
	"casino/config"
	"casino/database"
	"casino/events"
	"casino/locker"
	"casino/observability"
	"casino/repository"
	"casino/service"

	log "github.com/sirupsen/logrus"
)

// ConfigureLogging applies the configured level and picks the JSON formatter
// in production
func ConfigureLogging(cfg *config.Config) {
	log.SetOutput(os.Stdout)
	if cfg.Environment == "production" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warnf("Unknown log level %q, using info", cfg.LogLevel)
		level = log.InfoLevel
	}
	log.SetLevel(level)
}

// newLocker picks Redis when it is configured so several bot processes can
// share the tables, and an in-process lock otherwise
func newLocker(ctx context.Context, cfg *config.Config) (service.Locker, func(), error) {
	if cfg.RedisURL == "" {
		log.Info("REDIS_URL not set, using in-process game locks")
		return locker.NewMemoryLocker(), func() {}, nil
	}

	redisLocker, err := locker.NewRedisLocker(ctx, cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	log.Info("Using Redis game locks")
	return redisLocker, func() {
		if err := redisLocker.Close(); err != nil {
			log.Errorf("Error closing Redis client: %v", err)
		}
	}, nil
}

// Run initializes and starts the application
func Run(ctx context.Context) error {
	cfg := config.Get()
	ConfigureLogging(cfg)
	log.Info("Starting casino bot...")

	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	log.Info("Database connection established successfully")

	if err := database.RunMigrationsWithURL(cfg.GetDatabaseURL()); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	eventBus := events.NewBus()

	metrics := observability.NewMetricsProvider(cfg)
	if err := metrics.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := metrics.Shutdown(shutdownCtx); err != nil {
			log.Errorf("Error shutting down metrics: %v", err)
		}
	}()
	metrics.Subscribe(eventBus)

	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	gameLocker, closeLocker, err := newLocker(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize game locks: %w", err)
	}
	defer closeLocker()

	rules := blackjack.Rules{
		MinBet:     cfg.BlackjackMinBet,
		MaxPlayers: cfg.BlackjackMaxPlayers,
	}

	log.Info("Initializing services...")
	userService := service.NewUserService(uowFactory)
	blackjackService := service.NewBlackjackService(uowFactory, gameLocker, rules)
	adminService := service.NewAdminService(uowFactory)

	log.Info("Initializing Discord bot...")
	botConfig := bot.Config{
		Token:             cfg.DiscordToken,
		GuildID:           cfg.GuildID,
		HighRollerRoleID:  cfg.HighRollerRoleID,
		HighRollerEnabled: cfg.HighRollerEnabled,
		MinBet:            cfg.BlackjackMinBet,
		Metrics:           metrics,
	}
	discordBot, err := bot.New(botConfig, userService, blackjackService, adminService, eventBus)
	if err != nil {
		return fmt.Errorf("failed to initialize Discord bot: %w", err)
	}

	log.WithFields(log.Fields{
		"environment": cfg.Environment,
		"minBet":      rules.MinBet,
		"maxPlayers":  rules.MaxPlayers,
	}).Info("Bot is running")
	<-ctx.Done()

	log.Info("Shutting down bot...")
	if err := discordBot.Close(); err != nil {
		log.Errorf("Error closing Discord bot: %v", err)
	}

	// Let in-flight event handlers finish before the pool closes
	time.Sleep(1 * time.Second)
	log.Info("Shutdown completed")
	return nil
}
