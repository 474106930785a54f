// Package progression parses progression service flags and launches the service.
package progression

import (
	"context"
	"flag"

	entrypoint "github.com/hawthornlabs/journey/internal/platform/cmd"
	server "github.com/hawthornlabs/journey/internal/services/progression/app"
)

// Config holds progression command configuration.
type Config struct {
	Port   int    `env:"JOURNEY_PROGRESSION_PORT" envDefault:"8093"`
	DBPath string `env:"JOURNEY_PROGRESSION_DB_PATH" envDefault:"data/progression.db"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The progression HTTP server port")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Path to the progression sqlite database")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the progression HTTP API service.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceProgression, func(context.Context) error {
		return server.Run(ctx, cfg.Port, cfg.DBPath)
	})
}
