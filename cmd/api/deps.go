package main

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"finsync/internal/domain/account"
	"finsync/internal/domain/item"
	"finsync/internal/domain/openfinance"
	"finsync/internal/infrastructure/crypto"
	"finsync/internal/infrastructure/plaid"
	"finsync/internal/infrastructure/postgres"
	"finsync/internal/infrastructure/rabbitmq"
	"finsync/internal/infrastructure/redislock"
	httphandlers "finsync/internal/interfaces/http"
	"finsync/internal/shared/config"
)

// eventPublisher is an openfinance.Publisher that owns a connection.
type eventPublisher interface {
	openfinance.Publisher
	Close()
}

// Dependencies holds all initialized application components.
type Dependencies struct {
	DB    *postgres.DB
	Redis *redis.Client

	Publisher eventPublisher

	Handlers httphandlers.Handlers

	// For the scheduler
	SyncService *openfinance.SyncService
	UserRepo    *postgres.UserRepository
}

// NewDependencies connects to the database and builds every service and
// handler. RabbitMQ and Redis are optional: without them events are only
// logged and per-user locking is skipped.
func NewDependencies(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Dependencies, error) {
	db, err := postgres.New(ctx, cfg.Database.ConnectionString())
	if err != nil {
		return nil, err
	}
	log.Info("connected to database", zap.String("host", cfg.Database.Host), zap.String("db", cfg.Database.DBName))

	if cfg.Database.AutoMigrate {
		if err := postgres.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
		log.Info("database schema up to date")
	}

	encryptor, err := crypto.NewEncryptor(cfg.Encryption.Key)
	if err != nil {
		db.Close()
		return nil, err
	}

	deps := &Dependencies{DB: db}

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	itemRepo := postgres.NewItemRepository(db, encryptor)
	accountRepo := postgres.NewAccountRepository(db)
	transactionRepo := postgres.NewTransactionRepository(db)
	balanceRepo := postgres.NewBalanceRepository(db)
	deps.UserRepo = userRepo

	// Upstream
	plaidClient := plaid.NewClient(plaid.Config{
		BaseURL:      cfg.Plaid.BaseURL,
		ClientID:     cfg.Plaid.ClientID,
		Secret:       cfg.Plaid.Secret,
		CountryCodes: cfg.Plaid.CountryCodes,
		Timeout:      cfg.Plaid.Timeout,
	})
	adapter := openfinance.NewAdapter(plaidClient, cfg.Plaid.Concurrency, log)

	// Events
	if cfg.RabbitMQ.URL != "" {
		producer, err := rabbitmq.NewEventProducer(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, log)
		if err != nil {
			log.Warn("rabbitmq unavailable, events will only be logged", zap.Error(err))
			deps.Publisher = rabbitmq.NewFallback(log)
		} else {
			deps.Publisher = producer
		}
	} else {
		deps.Publisher = rabbitmq.NewFallback(log)
	}

	// Locking
	locker, redisClient := redislock.Open(ctx, cfg.Redis.URL, cfg.Redis.LockTTL, log)
	deps.Redis = redisClient

	// Domain services
	accountService := account.NewService(accountRepo)
	itemService := item.NewService(itemRepo, adapter, log)
	accountSync := openfinance.NewAccountSyncService(adapter, itemRepo, accountService, log)
	transactionSync := openfinance.NewTransactionSyncService(adapter, itemRepo, transactionRepo, log)
	balanceService := openfinance.NewBalanceService(adapter, itemRepo, balanceRepo, log)
	deps.SyncService = openfinance.NewSyncService(accountSync, transactionSync, balanceService, deps.Publisher, locker, log)

	deps.Handlers = httphandlers.Handlers{
		Users:        httphandlers.NewUserHandler(userRepo, itemService, log),
		Items:        httphandlers.NewItemHandler(itemRepo, itemService, log),
		Accounts:     httphandlers.NewAccountHandler(accountService, log),
		Transactions: httphandlers.NewTransactionHandler(transactionRepo, log),
		Sync:         httphandlers.NewSyncHandler(deps.SyncService, balanceRepo, cfg.Scheduler.Days, log),
	}

	return deps, nil
}

// Close releases all resources held by dependencies.
func (d *Dependencies) Close() {
	if d.Publisher != nil {
		d.Publisher.Close()
	}
	if d.Redis != nil {
		d.Redis.Close()
	}
	if d.DB != nil {
		d.DB.Close()
	}
}
