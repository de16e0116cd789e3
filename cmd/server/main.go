// Package main provides the NataCare cost-control API server.
// Store connections are optional: without them the compute endpoints
// still serve, which is all a fresh deployment needs.
package main

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"natacare-cost/api"
	"natacare-cost/db/clickhouse"
	"natacare-cost/db/postgres"
	"natacare-cost/internal/benchmark"
	"natacare-cost/internal/costcontrol"
	"natacare-cost/pkg/platform"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	table := benchmark.Default()
	service := costcontrol.NewService(table, log.Logger)

	config := api.DefaultConfig()
	config.Port = platform.GetEnvInt("PORT", 8080)
	config.ReadTimeout = platform.GetEnvDuration("READ_TIMEOUT", config.ReadTimeout)
	config.WriteTimeout = platform.GetEnvDuration("WRITE_TIMEOUT", config.WriteTimeout)

	server := api.NewServer(service, table, config, log.Logger)

	ctx := context.Background()

	if host := platform.GetEnv("CLICKHOUSE_HOST", ""); host != "" {
		store, err := clickhouse.NewStore(&clickhouse.Config{
			Host:     host,
			Port:     platform.GetEnvInt("CLICKHOUSE_PORT", 9000),
			Database: platform.GetEnv("CLICKHOUSE_DATABASE", "natacare"),
			Username: platform.GetEnv("CLICKHOUSE_USER", "default"),
			Password: platform.GetEnv("CLICKHOUSE_PASSWORD", ""),
			Debug:    platform.GetEnvBool("CLICKHOUSE_DEBUG", false),
		})
		if err != nil {
			log.Fatal().Err(err).Msg("ClickHouse connection failed")
		}
		defer store.Close()
		if err := store.EnsureSchema(ctx); err != nil {
			log.Fatal().Err(err).Msg("ClickHouse schema setup failed")
		}
		service.WithSnapshotStore(store)
		server.WithSnapshotStore(store)
		log.Info().Str("host", host).Msg("snapshot store connected")
	}

	if host := platform.GetEnv("POSTGRES_HOST", ""); host != "" {
		store, err := postgres.NewStore(&postgres.Config{
			Host:     host,
			Port:     platform.GetEnvInt("POSTGRES_PORT", 5432),
			Database: platform.GetEnv("POSTGRES_DATABASE", "natacare"),
			Username: platform.GetEnv("POSTGRES_USER", "postgres"),
			Password: platform.GetEnv("POSTGRES_PASSWORD", ""),
			SSLMode:  platform.GetEnv("POSTGRES_SSLMODE", "disable"),
		})
		if err != nil {
			log.Fatal().Err(err).Msg("PostgreSQL connection failed")
		}
		defer store.Close()
		if err := store.EnsureSchema(ctx); err != nil {
			log.Fatal().Err(err).Msg("PostgreSQL schema setup failed")
		}
		service.WithAlertStore(store)
		server.WithAlertStore(store)
		log.Info().Str("host", host).Msg("alert store connected")
	}

	if err := server.StartWithGracefulShutdown(); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}
