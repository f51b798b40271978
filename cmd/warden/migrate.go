package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/warden/internal/app"
	"github.com/dropDatabas3/warden/internal/observability/logger"
	migrations "github.com/dropDatabas3/warden/migrations/postgres"
)

func (c *cli) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Aplica las migraciones pendientes de postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.cfg.Validate(); err != nil {
				return err
			}
			ct, err := app.Open(cmd.Context(), c.cfg)
			if err != nil {
				return err
			}
			defer ct.Close()
			if ct.Store.PG == nil {
				return errors.New("migrate requiere storage.driver=postgres")
			}
			n, err := ct.Store.PG.Migrate(cmd.Context(), migrations.FS)
			if err != nil {
				return err
			}
			logger.L().Info("migrations applied", logger.Count(n))
			fmt.Fprintf(cmd.OutOrStdout(), "aplicadas: %d\n", n)
			return nil
		},
	}
}
