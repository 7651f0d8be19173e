package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mrops-br/catalog-api/internal/domain"
	"github.com/mrops-br/catalog-api/internal/infrastructure/config"
	"github.com/mrops-br/catalog-api/internal/infrastructure/repository/database"
	"github.com/mrops-br/catalog-api/internal/infrastructure/repository/memory"
	"go.opentelemetry.io/otel/trace"
)

// stores is the persistence layer selected by CATALOG_DB_DRIVER
type stores struct {
	products domain.ProductRepository
	lookups  domain.LookupRepository
	uow      domain.UnitOfWork
	close    func() error
}

func openStores(ctx context.Context, cfg config.DBConfig, tracer trace.Tracer, logger *slog.Logger) (*stores, error) {
	if cfg.Driver == config.DriverMemory {
		store := memory.NewStore(tracer, logger)
		seedMemory(store, cfg)
		logger.WarnContext(ctx, "Using in-memory store, data is lost on exit",
			slog.Int("categories", len(cfg.SeedCategories)),
			slog.Int("manufacturers", len(cfg.SeedManufacturers)),
			slog.Int("users", len(cfg.SeedUsers)),
		)
		return &stores{
			products: store.Products(),
			lookups:  store.Lookups(),
			uow:      store,
			close:    func() error { return nil },
		}, nil
	}

	client, err := database.New(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	// sqlite has no goose history, so its schema is always synced
	if cfg.AutoMigrate || cfg.Driver == config.DriverSQLite {
		if err := client.Migrate(ctx); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("migrating schema: %w", err)
		}
		logger.InfoContext(ctx, "Database schema up to date", slog.String("driver", cfg.Driver))
	}

	db := client.DB()
	return &stores{
		products: database.NewProductRepository(db, tracer, logger),
		lookups:  database.NewLookupRepository(db, tracer, logger),
		uow:      database.NewUnitOfWork(client, tracer, logger),
		close:    client.Close,
	}, nil
}

// seedMemory registers the configured lookup rows, skipping blanks
func seedMemory(store *memory.Store, cfg config.DBConfig) {
	for _, name := range cfg.SeedCategories {
		if name = strings.TrimSpace(name); name != "" {
			store.AddCategory(name)
		}
	}
	for _, name := range cfg.SeedManufacturers {
		if name = strings.TrimSpace(name); name != "" {
			store.AddManufacturer(name)
		}
	}
	for _, username := range cfg.SeedUsers {
		if username = strings.TrimSpace(username); username != "" {
			store.AddUser(username)
		}
	}
}
