package backend

import (
	"context"
	"fmt"
	"log/slog"

	"divvy/internal/amqp"
	"divvy/internal/ledger"
	"divvy/internal/services"
	"divvy/internal/storage"
)

// Factory creates ledger backends from configuration.
type Factory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) *Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Factory{logger: logger}
}

// CreateBackend builds the ledger service for the configured backend type.
func (f *Factory) CreateBackend(ctx context.Context, config Config) (*Result, error) {
	if !config.Type.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", config.Type)
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(ctx, config)
	default:
		return f.createMemoryBackend()
	}
}

func (f *Factory) createSQLiteBackend(ctx context.Context, config Config) (*Result, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("initialize SQLite repository: %w", err)
	}

	snap, err := repo.Load(ctx)
	if err != nil {
		repo.Close()
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	store := ledger.NewFromSnapshot(snap)

	// AMQP is optional; the ledger works without the mirror pipeline.
	var publisher services.SyncPublisher
	var amqpClient *amqp.Client
	if config.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without mirror sync", "error", err)
		} else {
			publisher = amqpClient
			f.logger.Info("Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	svc := services.NewLedgerService(store, repo, publisher)

	f.logger.Info("Initialized SQLite backend",
		"db_path", config.SQLiteDBPath,
		"groups", len(snap.Groups),
		"amqp_enabled", publisher != nil)

	cleanup := func() error {
		if amqpClient != nil {
			amqpClient.Close()
		}
		return repo.Close()
	}
	return &Result{Service: svc, Cleanup: cleanup}, nil
}

func (f *Factory) createMemoryBackend() (*Result, error) {
	svc := services.NewLedgerService(ledger.New(), nil, nil)
	f.logger.Info("Initialized memory backend")
	return &Result{Service: svc, Cleanup: nil}, nil
}
