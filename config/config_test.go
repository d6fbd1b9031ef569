package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultTestConfig() *Config {
	return &Config{
		AppName:            "sorrel-api",
		RunMode:            "serve",
		SourcePath:         "data/service_requests.csv",
		TimeLocation:       "America/New_York",
		ReportWindowMonths: 6,
		GeoMinLat:          40.40,
		GeoMaxLat:          40.95,
		GeoMinLng:          -74.30,
		GeoMaxLng:          -73.65,
		DurationMinHours:   -0.1,
		DurationMaxHours:   720,
		ZipDigits:          5,
		RoundPrecision:     5,
		TraceExporter:      "none",
	}
}

func TestValidate_Defaults(t *testing.T) {
	require.NoError(t, validate.Struct(defaultTestConfig()))
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{
			name:   "unknown run mode",
			mutate: func(c *Config) { c.RunMode = "daemon" },
		},
		{
			name:   "zero window months",
			mutate: func(c *Config) { c.ReportWindowMonths = 0 },
		},
		{
			name:   "inverted geo box",
			mutate: func(c *Config) { c.GeoMinLat = 41.0 },
		},
		{
			name:   "inverted duration clamp",
			mutate: func(c *Config) { c.DurationMinHours = 800 },
		},
		{
			name:   "negative round precision",
			mutate: func(c *Config) { c.RoundPrecision = -1 },
		},
		{
			name:   "unknown trace exporter",
			mutate: func(c *Config) { c.TraceExporter = "jaeger" },
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg := defaultTestConfig()
			test.mutate(cfg)
			assert.Error(t, validate.Struct(cfg))
		})
	}
}

func TestPipelineConfig(t *testing.T) {
	cfg := defaultTestConfig()
	pipe := cfg.PipelineConfig()

	assert.Equal(t, 6, pipe.WindowMonths)
	assert.Equal(t, 40.40, pipe.GeoMinLat)
	assert.Equal(t, 40.95, pipe.GeoMaxLat)
	assert.Equal(t, -74.30, pipe.GeoMinLng)
	assert.Equal(t, -73.65, pipe.GeoMaxLng)
	assert.Equal(t, -0.1, pipe.DurationMinHours)
	assert.Equal(t, 720.0, pipe.DurationMaxHours)
	assert.Equal(t, 5, pipe.ZipDigits)
	assert.Equal(t, 5, pipe.RoundPrecision)
}

func TestIngestConfig(t *testing.T) {
	cfg := defaultTestConfig()

	ingestCfg, err := cfg.IngestConfig()
	require.NoError(t, err)
	assert.Equal(t, "data/service_requests.csv", ingestCfg.SourcePath)
	require.NotNil(t, ingestCfg.Location)
	assert.Equal(t, "America/New_York", ingestCfg.Location.String())
}

func TestIngestConfig_BadLocation(t *testing.T) {
	cfg := defaultTestConfig()
	cfg.TimeLocation = "Mars/Olympus_Mons"

	_, err := cfg.IngestConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid TIME_LOCATION")
}

func TestRefreshConfig(t *testing.T) {
	cfg := defaultTestConfig()
	refreshCfg := cfg.RefreshConfig()

	assert.Equal(t, "data/service_requests.csv", refreshCfg.SourcePath)
	assert.Equal(t, cfg.PipelineConfig(), refreshCfg.Pipeline)
	assert.Nil(t, refreshCfg.Now)
}

func TestDatabaseConfig(t *testing.T) {
	cfg := defaultTestConfig()
	cfg.DatabaseDriver = "postgres"
	cfg.DatabaseHost = "localhost"
	cfg.DatabasePort = "5432"
	cfg.DatabaseUserName = "sorrel"
	cfg.DatabasePassword = "secret"
	cfg.DatabaseName = "sorrel"
	cfg.DatabaseSSLMode = "disable"
	cfg.DatabaseConnMaxLifetime = 10 * time.Second

	dbCfg := cfg.DatabaseConfig()
	assert.Equal(t, "localhost", dbCfg.Host)
	assert.Equal(t, "5432", dbCfg.Port)
	assert.Equal(t, "host=localhost port=5432 user=sorrel password=secret dbname=sorrel sslmode=disable", dbCfg.DSN())
}

func TestMigrationConfig(t *testing.T) {
	cfg := defaultTestConfig()
	cfg.DatabaseMigrationFolderPath = "db/pg"
	cfg.DatabaseMigrationVersion = 2
	cfg.DatabaseMigrationAutoRollback = true

	migrationCfg := cfg.MigrationConfig()
	assert.Equal(t, "db/pg", migrationCfg.MigrationFolderPath)
	assert.Equal(t, uint(2), migrationCfg.Version)
	assert.True(t, migrationCfg.AutoRollback)
}
