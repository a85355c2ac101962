package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"finsync/internal/domain/account"
	"finsync/internal/domain/openfinance"
	"finsync/internal/infrastructure/crypto"
	"finsync/internal/infrastructure/plaid"
	"finsync/internal/infrastructure/postgres"
	"finsync/internal/infrastructure/rabbitmq"
	"finsync/internal/infrastructure/redislock"
	"finsync/internal/shared/config"
	"finsync/internal/shared/logger"
)

const usage = `finsync admin - maintenance commands for the finsync API

Usage:
  admin <command> [args]

Commands:
  fetch [days] [userId]     Refresh accounts, then sync the last <days> of transactions
  fetchAccounts [userId]    Insert accounts not stored yet
  updateItemInfo [userId]   Refresh institution id and name of the user's items (0 = all items)
  balance [userId]          Record today's balance for depository and other accounts
  migrate                   Create missing tables and indexes

userId defaults to CLI_DEFAULT_USER_ID (1) and days to CLI_DEFAULT_DAYS (30).
Arguments that are not integers fall back to the default.

Examples:
  admin fetch
  admin fetch 90 2
  admin balance 2
`

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usage + "\n")
		os.Exit(1)
	}

	switch os.Args[1] {
	case "help", "-h", "--help":
		fmt.Print(usage + "\n")
		return
	}

	if err := run(os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "admin %s: %v\n", os.Args[1], err)
		os.Exit(1)
	}
}

func run(command string, args []string) error {
	if !isCommand(command) {
		fmt.Printf("Unknown command: %s\n\n", command)
		fmt.Print(usage + "\n")
		return fmt.Errorf("unknown command %q", command)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(cfg.Log.Env, cfg.Log.Level)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.New(ctx, cfg.Database.ConnectionString())
	if err != nil {
		return err
	}
	defer db.Close()

	cmds, err := newCommands(ctx, cfg, db, log)
	if err != nil {
		return err
	}
	defer cmds.close()

	return cmds.Run(ctx, command, args)
}

// newCommands wires the services the commands call.
func newCommands(ctx context.Context, cfg *config.Config, db *postgres.DB, log *zap.Logger) (*Commands, error) {
	encryptor, err := crypto.NewEncryptor(cfg.Encryption.Key)
	if err != nil {
		return nil, err
	}

	itemRepo := postgres.NewItemRepository(db, encryptor)
	accountService := account.NewService(postgres.NewAccountRepository(db))

	adapter := openfinance.NewAdapter(plaid.NewClient(plaid.Config{
		BaseURL:      cfg.Plaid.BaseURL,
		ClientID:     cfg.Plaid.ClientID,
		Secret:       cfg.Plaid.Secret,
		CountryCodes: cfg.Plaid.CountryCodes,
		Timeout:      cfg.Plaid.Timeout,
	}), cfg.Plaid.Concurrency, log)

	accountSync := openfinance.NewAccountSyncService(adapter, itemRepo, accountService, log)
	transactionSync := openfinance.NewTransactionSyncService(adapter, itemRepo, postgres.NewTransactionRepository(db), log)
	balances := openfinance.NewBalanceService(adapter, itemRepo, postgres.NewBalanceRepository(db), log)

	var publisher interface {
		openfinance.Publisher
		Close()
	} = rabbitmq.NewFallback(log)
	if cfg.RabbitMQ.URL != "" {
		producer, err := rabbitmq.NewEventProducer(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, log)
		if err != nil {
			log.Warn("rabbitmq unavailable, events will only be logged", zap.Error(err))
		} else {
			publisher = producer
		}
	}

	closers := []func(){publisher.Close}

	// Same per-user lock keys as the API.
	locker, redisClient := redislock.Open(ctx, cfg.Redis.URL, cfg.Redis.LockTTL, log)
	if redisClient != nil {
		closers = append(closers, func() { redisClient.Close() })
	}

	return &Commands{
		Accounts: accountSync,
		Sync:     openfinance.NewSyncService(accountSync, transactionSync, balances, publisher, locker, log),
		Items:    openfinance.NewItemSyncService(adapter, itemRepo, log),
		Migrate:  func(ctx context.Context) error { return postgres.Migrate(ctx, db) },
		Defaults: Defaults{UserID: cfg.CLI.DefaultUserID, Days: cfg.CLI.DefaultDays},
		Out:      os.Stdout,
		closers:  closers,
	}, nil
}
