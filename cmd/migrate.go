package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"gm-rewards/db"
	"gm-rewards/logger"
	"gm-rewards/migrate"
	"gm-rewards/repository"
)

func migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending store migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup()
			if err != nil {
				return err
			}
			ldb, err := db.NewLevelDB(cfg.LevelDB.Path)
			if err != nil {
				return fmt.Errorf("open leveldb: %w", err)
			}
			defer ldb.Close()

			version, err := migrate.Run(repository.NewStore(ldb), cfg)
			if err != nil {
				return err
			}
			logger.Logger.Info("Migrations complete",
				zap.Int("schema_version", version), zap.Int("latest", migrate.Latest()))
			fmt.Fprintf(cmd.OutOrStdout(), "schema version %d\n", version)
			return nil
		},
	}
}
