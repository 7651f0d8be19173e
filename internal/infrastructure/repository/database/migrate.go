package database

import (
	"context"
	"embed"
	"fmt"

	"github.com/mrops-br/catalog-api/internal/infrastructure/config"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

const migrationsDir = "migrations"

// Migrate brings the schema up to date. Postgres runs the versioned goose
// migrations; sqlite is a development store and uses AutoMigrate.
func (c *Client) Migrate(ctx context.Context) error {
	switch c.driver {
	case config.DriverPostgres:
		return c.goose(ctx, "up")
	case config.DriverSQLite:
		if err := c.conn.WithContext(ctx).AutoMigrate(Models()...); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported database driver %q", c.driver)
	}
}

// MigrateCommand runs an arbitrary goose command (up, down, status, ...)
// against a postgres database.
func (c *Client) MigrateCommand(ctx context.Context, command string, args ...string) error {
	if c.driver != config.DriverPostgres {
		return fmt.Errorf("goose migrations require the postgres driver, got %q", c.driver)
	}
	return c.goose(ctx, command, args...)
}

func (c *Client) goose(ctx context.Context, command string, args ...string) error {
	sqlDB, err := c.conn.DB()
	if err != nil {
		return fmt.Errorf("getting sql db handle: %w", err)
	}

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.RunContext(ctx, command, sqlDB, migrationsDir, args...); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}
