// Package cli holds the shiftboard command tree.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/shiftboard/internal/config"
	"github.com/spec-kit/shiftboard/internal/observability"
)

var appVersion = "dev"

var rootCmd = &cobra.Command{
	Use:           "shiftboard",
	Short:         "Day schedule dashboard service",
	SilenceUsage:  true,
	SilenceErrors: false,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the build version",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println(appVersion)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(versionCmd)
}

// SetVersion records the build version reported by the service.
func SetVersion(v string) {
	if v != "" {
		appVersion = v
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func loadRuntime() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.App.Version == "dev" {
		cfg.App.Version = appVersion
	}
	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, logger, nil
}
