package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"casino/cmd"
	"casino/database"

	log "github.com/sirupsen/logrus"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "migrate":
			if err := handleMigrationCommand(); err != nil {
				log.Fatalf("Migration error: %v", err)
			}
			return
		case "simulate":
			if err := handleSimulateCommand(); err != nil {
				log.Fatalf("Simulation error: %v", err)
			}
			return
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("Received shutdown signal, shutting down gracefully...")
		cancel()
	}()

	if err := cmd.Run(ctx); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func handleMigrationCommand() error {
	if len(os.Args) < 3 {
		return fmt.Errorf("usage: casino migrate [up|down|status] [args...]")
	}

	command := os.Args[2]
	switch command {
	case "up":
		return database.MigrateUp()
	case "down":
		steps := "1"
		if len(os.Args) > 3 {
			steps = os.Args[3]
		}
		return database.MigrateDown(steps)
	case "status":
		return database.MigrateStatus()
	default:
		return fmt.Errorf("unknown migration command: %s", command)
	}
}

// handleSimulateCommand runs `casino simulate [rounds] [seed] [seats]`
func handleSimulateCommand() error {
	rounds, seats := 10000, 1
	seed := time.Now().UnixNano()

	args := os.Args[2:]
	var err error
	if len(args) > 0 {
		if rounds, err = strconv.Atoi(args[0]); err != nil {
			return fmt.Errorf("invalid rounds %q: %w", args[0], err)
		}
	}
	if len(args) > 1 {
		if seed, err = strconv.ParseInt(args[1], 10, 64); err != nil {
			return fmt.Errorf("invalid seed %q: %w", args[1], err)
		}
	}
	if len(args) > 2 {
		if seats, err = strconv.Atoi(args[2]); err != nil {
			return fmt.Errorf("invalid seats %q: %w", args[2], err)
		}
	}

	result, err := cmd.Simulate(rounds, seats, seed)
	if err != nil {
		return err
	}
	cmd.PrintSimulation(os.Stdout, seed, result)
	return nil
}
