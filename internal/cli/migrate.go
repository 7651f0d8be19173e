package cli

import (
	"fmt"
	"os"

	"github.com/mrops-br/catalog-api/internal/infrastructure/config"
	"github.com/mrops-br/catalog-api/internal/infrastructure/repository/database"
	"github.com/mrops-br/catalog-api/internal/infrastructure/telemetry"
	"github.com/spf13/cobra"
)

// migrateCmd runs goose against the configured database
var migrateCmd = &cobra.Command{
	Use:   "migrate [command] [args...]",
	Short: "Manage the database schema",
	Long: `Run a goose command against the configured database. Defaults to "up".

On postgres any goose command is accepted (up, down, status, redo, version, ...).
The sqlite store only supports "up", which syncs the schema from the models.

Examples:
  catalog-api migrate                  # apply pending migrations
  catalog-api migrate status           # show migration status
  catalog-api migrate down-to 0        # roll everything back`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		if cfg.DB.Driver == config.DriverMemory {
			return fmt.Errorf("the memory driver has no schema to migrate")
		}

		command := "up"
		if len(args) > 0 {
			command, args = args[0], args[1:]
		}

		ctx := cmd.Context()
		logger := telemetry.NewNoOpTelemetry(os.Stderr).Logger

		client, err := database.New(ctx, cfg.DB, logger)
		if err != nil {
			return err
		}
		defer client.Close()

		if command == "up" && len(args) == 0 {
			err = client.Migrate(ctx)
		} else {
			err = client.MigrateCommand(ctx, command, args...)
		}
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "migrate %s: done\n", command)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
