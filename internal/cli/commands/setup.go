package commands

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/csvql/internal/cli/config"
	"github.com/leapstack-labs/csvql/internal/store"
)

// getConfig returns the configuration loaded by the root command.
func getConfig() *config.Config {
	return config.GetCurrentConfig()
}

// getLogger returns the process logger wired by the root command.
func getLogger(cmd *cobra.Command) *slog.Logger {
	return config.GetLogger(cmd.Context())
}

// openStore opens the configured database. Every command acquires its
// own connection and releases it with defer, so a failing operation
// never leaks the handle.
func openStore(cfg *config.Config) (*store.Store, error) {
	return store.Open(cfg.Database)
}
