package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/zap"

	"gm-rewards/config"
	"gm-rewards/logger"
)

const programName = "gm-rewards"

var configFile string

// setup loads the config and the logger shared by every subcommand
func setup() (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	if err := logger.InitLogger(cfg.Log.AppLogFile, cfg.Log.Level); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	// Configure max processes with our logger, toss undo func
	sugar := logger.Logger.Sugar()
	if _, err := maxprocs.Set(maxprocs.Logger(sugar.Infof)); err != nil {
		logger.Logger.Warn("Failed to set GOMAXPROCS", zap.Error(err))
	}
	return cfg, nil
}

func main() {
	rootCmd := &cobra.Command{
		Use:   programName,
		Short: "Membership leveling and voting rewards service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serveRun()
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().
		StringVar(&configFile, "config", "config/config.yaml", "path to config file")

	rootCmd.AddCommand(serveCommand())
	rootCmd.AddCommand(migrateCommand())

	if err := rootCmd.Execute(); err != nil {
		// cobra has already printed the error
		os.Exit(1)
	}
}
