package main

import (
	"fmt"

	"MediChain/database"
	"MediChain/logger"

	"github.com/spf13/cobra"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.ValidateDatabase(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			log := logger.New(cfg)

			db, err := database.InitDB(cmd.Context(), cfg.DBURL, cfg.IsDevelopment(), log)
			if err != nil {
				return fmt.Errorf("failed to initialize database: %w", err)
			}
			defer database.Close(db)

			if err := database.RunMigrations(db); err != nil {
				return err
			}
			log.Info("migrations executed successfully")
			return nil
		},
	}
}
