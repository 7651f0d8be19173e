package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const EnvPrefix = "CATALOG"

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// Config is read from CATALOG_<SECTION>_<KEY>, e.g. CATALOG_DB_DRIVER or
// CATALOG_OTEL_ENABLED.
type Config struct {
	Server   ServerConfig
	DB       DBConfig
	OTLP     OTLPConfig `envconfig:"OTEL"`
	Log      LogConfig
	Pipeline PipelineConfig
}

type ServerConfig struct {
	Host            string        `envconfig:"HOST" default:"0.0.0.0"`
	Port            string        `envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"READ_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `envconfig:"WRITE_TIMEOUT" default:"15s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"5s"`
}

type DBConfig struct {
	Driver          string        `envconfig:"DRIVER" default:"sqlite"`
	DSN             string        `envconfig:"DSN"`
	MaxOpenConns    int           `envconfig:"MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CONN_MAX_LIFETIME" default:"1h"`
	AutoMigrate     bool          `envconfig:"AUTO_MIGRATE" default:"false"`
	Debug           bool          `envconfig:"DEBUG" default:"false"`

	// Seed* fill the lookup tables of the memory driver, comma separated.
	SeedCategories    []string `envconfig:"SEED_CATEGORIES"`
	SeedManufacturers []string `envconfig:"SEED_MANUFACTURERS"`
	SeedUsers         []string `envconfig:"SEED_USERS"`
}

type OTLPConfig struct {
	Enabled     bool   `envconfig:"ENABLED" default:"false"`
	Endpoint    string `envconfig:"EXPORTER_OTLP_ENDPOINT" default:"localhost:4317"`
	ServiceName string `envconfig:"SERVICE_NAME" default:"catalog-api"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
}

type LogConfig struct {
	Level string `envconfig:"LEVEL" default:"info"`
}

type PipelineConfig struct {
	// Locale is the BCP 47 tag used when sorting product names.
	Locale string `envconfig:"LOCALE" default:"und"`
}

// LoadConfig loads configuration from environment variables, reading a
// .env file first when one exists.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Address returns the host:port pair the HTTP server listens on.
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%s", s.Host, s.Port)
}

func (db *DBConfig) normalize() error {
	db.Driver = strings.ToLower(strings.TrimSpace(db.Driver))
	if db.Driver == "" {
		db.Driver = DriverSQLite
	}
	switch db.Driver {
	case DriverPostgres:
		if db.DSN == "" {
			return fmt.Errorf("%s_DB_DSN is required for the postgres driver", EnvPrefix)
		}
	case DriverSQLite:
		if db.DSN == "" {
			db.DSN = "file:catalog.db?_foreign_keys=on"
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unsupported database driver %q", db.Driver)
	}
	return nil
}
