package main

import (
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/warden/internal/app"
	whttp "github.com/dropDatabas3/warden/internal/http"
	"github.com/dropDatabas3/warden/internal/observability/logger"
	"github.com/dropDatabas3/warden/internal/util"
)

func (c *cli) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Levanta la API HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.cfg.Validate(); err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			ct, err := app.Open(ctx, c.cfg)
			if err != nil {
				return err
			}
			defer ct.Close()

			h, err := ct.Handler()
			if err != nil {
				// ruta protegida sin predicado, regla desconocida o clave inválida
				return err
			}
			logger.L().Info("warden starting",
				logger.String("version", c.cfg.App.Version),
				logger.String("storage", c.cfg.Storage.Driver),
				logger.String("dsn", util.MaskDSN(c.cfg.Storage.DSN)),
				logger.String("algorithm", ct.Codec.Algorithm()),
				logger.Int("rules", ct.Registry.Len()),
			)

			srv := &http.Server{
				Addr:         c.cfg.Server.Addr,
				Handler:      h,
				ReadTimeout:  c.cfg.ReadTimeout(),
				WriteTimeout: c.cfg.WriteTimeout(),
			}
			return whttp.Serve(ctx, srv, c.cfg.ShutdownTimeout())
		},
	}
}
