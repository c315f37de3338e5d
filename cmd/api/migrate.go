package main

import (
	"github.com/spf13/cobra"

	"forum-tags-service/internal/infra/postgres/migrations"
)

var rollback bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap()
		if err != nil {
			return err
		}
		defer rt.close()

		if rollback {
			if err := migrations.Rollback(rt.db); err != nil {
				return err
			}
			rt.log.Info("last migration rolled back")

			return nil
		}

		if err := migrations.Run(rt.db); err != nil {
			return err
		}
		rt.log.Info("database migrations completed")

		return nil
	},
}

func init() {
	migrateCmd.Flags().BoolVar(&rollback, "rollback", false, "Roll back the last migration")
}
