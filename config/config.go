package config

import (
	"time"

	"github.com/Gobusters/ectoenv"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"

	"github.com/Ramsey-B/sorrel/pkg/database"
	"github.com/Ramsey-B/sorrel/pkg/ingest"
	"github.com/Ramsey-B/sorrel/pkg/pipeline"
	"github.com/Ramsey-B/sorrel/pkg/refresh"
	"github.com/Ramsey-B/sorrel/pkg/tracing"
)

type Config struct {
	AppName                       string   `env:"APP_NAME" env-default:"sorrel-api"`
	Port                          int      `env:"PORT" env-default:"3004"`
	LogLevel                      string   `env:"LOG_LEVEL" env-default:"info"`
	PrettyLogs                    bool     `env:"PRETTY_LOGS" env-default:"false"`
	HttpServerWriteTimeoutSeconds int      `env:"HTTP_SERVER_WRITE_TIMEOUT_SECONDS" env-default:"10"`
	HttpServerReadTimeoutSeconds  int      `env:"HTTP_SERVER_READ_TIMEOUT_SECONDS" env-default:"10"`
	HttpServerIdleTimeoutSeconds  int      `env:"HTTP_SERVER_IDLE_TIMEOUT_SECONDS" env-default:"10"`
	AllowOrigins                  []string `env:"HTTP_SERVER_ALLOW_ORIGINS" env-default:"*"`
	AllowMethods                  []string `env:"HTTP_SERVER_ALLOW_METHODS" env-default:"GET,POST,PUT,DELETE"`
	StartupMaxAttempts            int      `env:"STARTUP_MAX_ATTEMPTS" env-default:"5"`

	// serve runs the API with the scheduler; once runs a single refresh and exits
	RunMode string `env:"RUN_MODE" env-default:"serve" validate:"oneof=serve once"`

	// Source extract path
	SourcePath string `env:"SOURCE_PATH" env-default:"data/service_requests.csv"`
	// Time zone naive source timestamps are interpreted in
	TimeLocation string `env:"TIME_LOCATION" env-default:"America/New_York"`

	// Reporting window length in calendar months
	ReportWindowMonths int `env:"REPORT_WINDOW_MONTHS" env-default:"6" validate:"gte=1"`
	// Geo plausibility box, inclusive
	GeoMinLat float64 `env:"GEO_MIN_LAT" env-default:"40.40" validate:"ltfield=GeoMaxLat"`
	GeoMaxLat float64 `env:"GEO_MAX_LAT" env-default:"40.95"`
	GeoMinLng float64 `env:"GEO_MIN_LNG" env-default:"-74.30" validate:"ltfield=GeoMaxLng"`
	GeoMaxLng float64 `env:"GEO_MAX_LNG" env-default:"-73.65"`
	// Duration plausibility clamp in fractional hours, inclusive
	DurationMinHours float64 `env:"DURATION_MIN_HOURS" env-default:"-0.1" validate:"ltefield=DurationMaxHours"`
	DurationMaxHours float64 `env:"DURATION_MAX_HOURS" env-default:"720"`
	// Exact digit count of a valid postal code
	ZipDigits int `env:"ZIP_DIGITS" env-default:"5" validate:"gte=1"`
	// Decimal precision of the dedup coordinate rounding
	RoundPrecision int `env:"ROUND_PRECISION" env-default:"5" validate:"gte=0"`

	// How often the scheduler refreshes the fact table
	RefreshInterval time.Duration `env:"REFRESH_INTERVAL" env-default:"6h"`
	// Enable/disable the refresh scheduler
	SchedulerEnabled bool `env:"SCHEDULER_ENABLED" env-default:"true"`

	// Database driver
	DatabaseDriver string `env:"DB_DRIVER" env-default:"postgres"`
	// Database host
	DatabaseHost string `env:"DB_HOST" env-default:""`
	// Database port
	DatabasePort string `env:"DB_PORT" env-default:"5432"`
	// Database user
	DatabaseUserName string `env:"DB_USER_NAME" env-default:""`
	// Database user password
	DatabasePassword string `env:"DB_PASSWORD" env-default:""`
	// Database name
	DatabaseName string `env:"DB_NAME" env-default:"sorrel"`
	// Database SSL Mode
	DatabaseSSLMode string `env:"DB_SQL_MODE" env-default:"disable"`
	// Max Open Conns
	DatabaseMaxOpenConns int `env:"DB_MAX_OPEN_CONNS" env-default:"25"`
	// Max Idle Conns
	DatabaseMaxIdleConns int `env:"DB_MAX_IDLE_CONNS" env-default:"10"`
	// Conn Max Lifetime
	DatabaseConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" env-default:"10s"`
	// Migration Folder Path
	DatabaseMigrationFolderPath string `env:"DB_MIGRATION_FOLDER_PATH" env-default:"db/pg"`
	// Database Migration Version
	DatabaseMigrationVersion int `env:"DB_MIGRATION_VERSION" env-default:"0"`
	// Database Migration Force
	DatabaseMigrationForce int `env:"DB_MIGRATION_FORCE" env-default:"0"`
	// Database Migration Auto Rollback
	DatabaseMigrationAutoRollback bool `env:"DB_MIGRATION_AUTO_ROLLBACK" env-default:"true"`

	// Trace exporter (none, console or otlp)
	TraceExporter string `env:"TRACE_EXPORTER" env-default:"none" validate:"oneof=none console otlp"`
	// OTLP collector endpoint
	OTLPEndpoint string `env:"OTLP_ENDPOINT" env-default:"localhost:4317"`
	// OTLP protocol (grpc or http)
	OTLPProtocol string `env:"OTLP_PROTOCOL" env-default:"grpc"`
	// Disable TLS for OTLP (for local development)
	OTLPInsecure bool `env:"OTLP_INSECURE" env-default:"true"`
}

var validate = validator.New()

// Load reads configuration from the environment. A .env file is honored when
// present but never required.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := ectoenv.BindEnvVars(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to bind environment")
	}
	if err := validate.Struct(&cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return &cfg, nil
}

// DatabaseConfig builds the connection settings for the staging database.
func (c *Config) DatabaseConfig() database.ConnectionConfig {
	return database.ConnectionConfig{
		Driver:          c.DatabaseDriver,
		Host:            c.DatabaseHost,
		Port:            c.DatabasePort,
		UserName:        c.DatabaseUserName,
		Password:        c.DatabasePassword,
		Name:            c.DatabaseName,
		SSLMode:         c.DatabaseSSLMode,
		MaxOpenConns:    c.DatabaseMaxOpenConns,
		MaxIdleConns:    c.DatabaseMaxIdleConns,
		ConnMaxLifetime: c.DatabaseConnMaxLifetime,
	}
}

// MigrationConfig builds the migration settings.
func (c *Config) MigrationConfig() *database.MigrationConfig {
	return &database.MigrationConfig{
		MigrationFolderPath: c.DatabaseMigrationFolderPath,
		Version:             uint(c.DatabaseMigrationVersion),
		Force:               c.DatabaseMigrationForce,
		AutoRollback:        c.DatabaseMigrationAutoRollback,
	}
}

// PipelineConfig builds the stage knobs.
func (c *Config) PipelineConfig() pipeline.Config {
	return pipeline.Config{
		WindowMonths:     c.ReportWindowMonths,
		GeoMinLat:        c.GeoMinLat,
		GeoMaxLat:        c.GeoMaxLat,
		GeoMinLng:        c.GeoMinLng,
		GeoMaxLng:        c.GeoMaxLng,
		DurationMinHours: c.DurationMinHours,
		DurationMaxHours: c.DurationMaxHours,
		ZipDigits:        c.ZipDigits,
		RoundPrecision:   c.RoundPrecision,
	}
}

// IngestConfig builds the loader settings. Fails when TimeLocation does not
// name a valid IANA zone.
func (c *Config) IngestConfig() (ingest.Config, error) {
	loc, err := time.LoadLocation(c.TimeLocation)
	if err != nil {
		return ingest.Config{}, errors.Wrapf(err, "invalid TIME_LOCATION %q", c.TimeLocation)
	}
	return ingest.Config{
		SourcePath: c.SourcePath,
		Location:   loc,
	}, nil
}

// RefreshConfig builds the refresh service settings.
func (c *Config) RefreshConfig() refresh.Config {
	return refresh.Config{
		SourcePath: c.SourcePath,
		Pipeline:   c.PipelineConfig(),
	}
}

// TracingConfig builds the tracer settings.
func (c *Config) TracingConfig() tracing.Config {
	return tracing.Config{
		ServiceName:  c.AppName,
		Exporter:     c.TraceExporter,
		OTLPEndpoint: c.OTLPEndpoint,
		OTLPProtocol: c.OTLPProtocol,
		OTLPInsecure: c.OTLPInsecure,
	}
}
