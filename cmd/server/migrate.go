package main

import (
	"github.com/spf13/cobra"

	pgInfra "github.com/fastygo/sessionauth/internal/infrastructure/postgres"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations and exit",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, zapLogger, err := loadConfig()
		if err != nil {
			return err
		}
		defer zapLogger.Sync()
		return pgInfra.RunMigrations(cfg, true, zapLogger)
	},
}
