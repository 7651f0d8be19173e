package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mrops-br/catalog-api/internal/app/aggregation"
	"github.com/mrops-br/catalog-api/internal/app/service"
	"github.com/mrops-br/catalog-api/internal/infrastructure/config"
	"github.com/mrops-br/catalog-api/internal/infrastructure/http"
	"github.com/mrops-br/catalog-api/internal/infrastructure/http/handler"
	"github.com/mrops-br/catalog-api/internal/infrastructure/telemetry"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
)

const instrumentationName = "catalog-api"

var (
	// Serve flags
	forceMigrate bool
)

// serveCmd runs the HTTP API until SIGINT or SIGTERM
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Run the HTTP API using the store selected by CATALOG_DB_DRIVER.

Examples:
  catalog-api serve                    # sqlite file store, schema synced on start
  CATALOG_DB_DRIVER=memory catalog-api serve
  catalog-api serve --migrate          # apply goose migrations before serving`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		if forceMigrate {
			cfg.DB.AutoMigrate = true
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return runServe(ctx, cfg)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().BoolVar(&forceMigrate, "migrate", false, "Apply database migrations before serving")
}

func runServe(ctx context.Context, cfg *config.Config) (err error) {
	telem, err := telemetry.NewTelemetry(ctx, &cfg.OTLP, &cfg.Log, os.Stdout)
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		err = multierr.Append(err, telem.Shutdown(shutdownCtx))
	}()

	tracer := telem.TracerProvider.Tracer(instrumentationName)
	meter := telem.MeterProvider.Meter(instrumentationName)
	logger := telem.Logger

	logger.InfoContext(ctx, "Starting catalog API",
		slog.String("version", version),
		slog.String("db_driver", cfg.DB.Driver),
	)

	st, err := openStores(ctx, cfg.DB, tracer, logger)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, st.close())
	}()

	locale, err := language.Parse(cfg.Pipeline.Locale)
	if err != nil {
		return fmt.Errorf("invalid pipeline locale %q: %w", cfg.Pipeline.Locale, err)
	}

	products := service.NewProductService(st.products, st.uow, tracer, meter, logger)
	catalog := service.NewCatalogService(st.lookups, tracer, logger)
	dashboard := service.NewDashboardService(st.products, aggregation.New(locale), tracer, logger)

	server := http.NewServer(&cfg.Server, http.Handlers{
		Products: handler.NewProductHandler(products, logger),
		Catalog:  handler.NewCatalogHandler(catalog, dashboard, logger),
	}, logger, telem)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(server.Start)
	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped")
	return nil
}
