// Package tracker собирает приложение учёта зарплаты: хранилище, репозиторий и сервисы.
package tracker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/salary-tracker/internal/config"
	"github.com/magabrotheeeer/salary-tracker/internal/kvstore"
	"github.com/magabrotheeeer/salary-tracker/internal/lib/metrics"
	"github.com/magabrotheeeer/salary-tracker/internal/migrations"
	authservice "github.com/magabrotheeeer/salary-tracker/internal/services/auth"
	earningsservice "github.com/magabrotheeeer/salary-tracker/internal/services/earnings"
	"github.com/magabrotheeeer/salary-tracker/internal/storage"
)

type App struct {
	logger   *slog.Logger
	store    kvstore.Closer
	Metrics  *metrics.Metrics
	Auth     *authservice.AuthService
	Earnings *earningsservice.EarningsService
}

// New открывает хранилище, выбранное в cfg, и собирает поверх него сервисы.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "tracker.New"

	store, err := openStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	logger.Debug("storage opened", slog.String("driver", cfg.Driver), slog.String("namespace", cfg.Namespace))

	return NewWithStore(store, cfg.Namespace, logger), nil
}

// NewWithStore собирает приложение поверх готового хранилища.
func NewWithStore(store kvstore.Closer, namespace string, logger *slog.Logger) *App {
	m := metrics.New()
	repo := storage.New(kvstore.WithNamespace(store, namespace), logger, m)

	return &App{
		logger:   logger,
		store:    store,
		Metrics:  m,
		Auth:     authservice.NewAuthService(repo, logger, m),
		Earnings: earningsservice.NewEarningsService(repo, logger, m),
	}
}

// Close освобождает соединения хранилища.
func (a *App) Close() error {
	if err := a.store.Close(); err != nil {
		return fmt.Errorf("tracker.Close: %w", err)
	}
	return nil
}

func openStore(ctx context.Context, cfg *config.Config) (kvstore.Closer, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		return kvstore.NewMemory(), nil
	case config.DriverSQLite:
		store, err := kvstore.NewSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.DriverRedis:
		store, err := kvstore.NewRedis(ctx, cfg.RedisConnection)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.DriverPostgres:
		store, err := kvstore.NewPostgres(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		if err := migrations.Run(store.DB, cfg.MigrationsPath); err != nil {
			_ = store.Close()
			return nil, err
		}
		if err := store.CheckReady(ctx); err != nil {
			_ = store.Close()
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
