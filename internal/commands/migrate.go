package commands

import (
	"github.com/Homesapp/HomesappNew-sub000/internal/database"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func MigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the billing tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := bootstrap(cmd)
			if err != nil {
				return err
			}
			defer rt.close()

			if err := database.AutoMigrate(rt.db); err != nil {
				return err
			}
			rt.logger.Info("schema migrated", zap.String("driver", rt.cfg.Database.Driver))
			return nil
		},
	}
}
