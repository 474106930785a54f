// Package mcp parses MCP command flags and launches the stdio server.
package mcp

import (
	"context"
	"flag"

	entrypoint "github.com/hawthornlabs/journey/internal/platform/cmd"
	mcpserver "github.com/hawthornlabs/journey/internal/services/progression/mcp"
)

// Config holds MCP command configuration.
type Config struct {
	DBPath string `env:"JOURNEY_PROGRESSION_DB_PATH" envDefault:"data/progression.db"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Path to the progression sqlite database")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the MCP protocol adapter over stdio.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceMCP, func(context.Context) error {
		return mcpserver.Run(ctx, cfg.DBPath)
	})
}
