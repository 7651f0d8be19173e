//go:build integration

package database

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mrops-br/catalog-api/internal/app/service"
	"github.com/mrops-br/catalog-api/internal/domain"
	"github.com/mrops-br/catalog-api/internal/infrastructure/config"
	"github.com/mrops-br/catalog-api/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupPostgres starts a throwaway PostgreSQL container and returns its DSN
func setupPostgres(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:alpine",
		postgres.WithDatabase("catalog"),
		postgres.WithUsername("catalog"),
		postgres.WithPassword("catalog"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "failed to start PostgreSQL container")
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	})

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	return dsn
}

func seedLookups(t *testing.T, dsn string) {
	t.Helper()
	ctx := context.Background()

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	defer pool.Close()

	_, err = pool.Exec(ctx, `
		INSERT INTO categories (name) VALUES ('Electronics'), ('Accessories');
		INSERT INTO manufacturers (name) VALUES ('Acme'), ('Globex');
		INSERT INTO users (username) VALUES ('ana'), ('bo');
	`)
	require.NoError(t, err)
}

func TestPostgresReconciliation(t *testing.T) {
	dsn := setupPostgres(t)
	ctx := context.Background()

	telem := telemetry.NewNoOpTelemetry(io.Discard)
	tracer := telem.TracerProvider.Tracer("integration")
	meter := telem.MeterProvider.Meter("integration")

	client, err := New(ctx, config.DBConfig{Driver: config.DriverPostgres, DSN: dsn}, telem.Logger)
	require.NoError(t, err)
	defer client.Close()

	require.NoError(t, client.Migrate(ctx))
	require.NoError(t, client.MigrateCommand(ctx, "status"))
	seedLookups(t, dsn)

	repo := NewProductRepository(client.DB(), tracer, telem.Logger)
	reconciler := service.NewReconciler(repo, NewUnitOfWork(client, tracer, telem.Logger), tracer, meter, telem.Logger)

	p, err := domain.NewProduct("Laptop", nil)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, p))

	updated, err := reconciler.UpdateProduct(ctx, p.ID, domain.UpdateProductInput{
		Categories:    domain.Some([]string{"Electronics", "Accessories", "Electronics"}),
		Manufacturers: domain.Some([]int64{1, 2}),
		Version:       domain.Some(int64(1)),
	})
	require.NoError(t, err)
	assert.EqualValues(t, 2, updated.Version)
	assert.Len(t, updated.Categories, 2)
	assert.Len(t, updated.Manufacturers, 2)
	assert.Empty(t, updated.Users)

	_, err = reconciler.UpdateProduct(ctx, p.ID, domain.UpdateProductInput{
		Categories: domain.Some([]string{"Toys"}),
		Users:      domain.Some([]int64{1}),
	})
	require.ErrorIs(t, err, domain.ErrUnknownCategory)

	after, err := repo.FindHydrated(ctx, p.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, after.Version, "failed update leaves no trace")
	assert.Len(t, after.Categories, 2)
	assert.Empty(t, after.Users)

	_, err = reconciler.UpdateProduct(ctx, p.ID, domain.UpdateProductInput{
		Name:    domain.Some("Notebook"),
		Version: domain.Some(int64(1)),
	})
	assert.ErrorIs(t, err, domain.ErrVersionConflict)

	require.NoError(t, repo.Delete(ctx, p.ID))
	_, err = repo.FindHydrated(ctx, p.ID)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	require.NoError(t, client.MigrateCommand(ctx, "down"))
}
