package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	goredis "github.com/redis/go-redis/v9"

	"chat-backend/infrastructure/broker"
	"chat-backend/internal"
	"chat-backend/moderation"
	"chat-backend/repositories"
	"chat-backend/runtime"
	"chat-backend/search"
	"chat-backend/services"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components and centralizes error reporting, so every
// defer executes before the process exits and main stays testable.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Database (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.INFO))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()
	store := repositories.NewStore(db, log)

	// 3. Full-text index
	index, err := search.Open(config.BlugeFilepath, log)
	if err != nil {
		return fmt.Errorf("search index opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing search index...")
		_ = index.Close()
	}()

	// 4. Moderation
	words, err := moderation.LoadWords(config.CensoredWordsPath)
	if err != nil {
		return fmt.Errorf("censored words loading failed: %w", err)
	}
	replacement, err := internal.CharacterRune(config.CharReplacement)
	if err != nil {
		return err
	}
	moderator, err := moderation.NewModerator(words, replacement, log)
	if err != nil {
		return fmt.Errorf("moderator build failed: %w", err)
	}

	// 5. Broker (Redis pub/sub)
	client := goredis.NewClient(&goredis.Options{
		Addr:     config.RedisAddr,
		Password: config.RedisPassword,
		DB:       config.RedisDB,
	})
	defer func() { _ = client.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis unreachable at %s: %w", config.RedisAddr, err)
	}
	publisher := broker.NewRedisBroker(client, log, config.PollTimeout)

	// 6. Mediator wiring
	mediator := services.NewChatMediator(store, publisher, index, &moderator, log)

	// 7. Background workers under supervision
	sup := runtime.NewSupervisor(log)
	sup.Add(
		runtime.NewHealthWorker(log, config.MetricInterval),
		runtime.NewStorageGCWorker(db, log, config.GCInterval),
	)
	go sup.Run(ctx)

	log.Info("chat backend started", "badger", config.BadgerFilepath, "redis", config.RedisAddr)

	// 8. Wait for stop, then drain
	<-ctx.Done()
	log.Info("Shutting down gracefully...")
	sup.Stop()
	mediator.Wait()
	log.Info("Program stopped cleanly")

	return nil
}
