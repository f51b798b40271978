package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dropDatabas3/warden/internal/config"
	"github.com/dropDatabas3/warden/internal/observability/logger"
)

var version = "dev"

// cli es el estado compartido entre comandos.
type cli struct {
	configPath string
	envFile    string
	cfg        *config.Config
}

func main() {
	c := &cli{configPath: envOr("WARDEN_CONFIG", ""), envFile: ".env"}

	root := &cobra.Command{
		Use:           "warden",
		Short:         "Autorización y tokens de sesión",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(c.envFile); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("leyendo %s: %w", c.envFile, err)
			}
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			if cfg.App.Version == "" {
				cfg.App.Version = version
			}
			c.cfg = cfg
			logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level, ServiceName: cfg.App.Name})
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
	}
	root.PersistentFlags().StringVar(&c.configPath, "config", c.configPath, "Archivo YAML de configuración (env WARDEN_CONFIG)")
	root.PersistentFlags().StringVar(&c.envFile, "env-file", c.envFile, "Archivo .env opcional")

	root.AddCommand(
		c.serveCmd(),
		c.migrateCmd(),
		c.keysCmd(),
		c.userCmd(),
		c.tokenCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
