package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/warden/internal/jwt"
)

func (c *cli) keysCmd() *cobra.Command {
	keys := &cobra.Command{Use: "keys", Short: "Material de firma"}

	var alg, priv, pub, pass string
	gen := &cobra.Command{
		Use:   "generate",
		Short: "Genera un par de claves (privada cifrada con password)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if alg == "" {
				alg = c.cfg.JWT.Algorithm
			}
			if priv == "" {
				priv = c.cfg.JWT.PrivateKeyPath
			}
			if pub == "" {
				pub = c.cfg.JWT.PublicKeyPath
			}
			if pass == "" {
				pass = c.cfg.JWT.PrivateKeyPassword
			}
			if priv == "" {
				return fmt.Errorf("--private es requerido (o jwt.private_key_path)")
			}
			if err := jwt.GenerateKeyFiles(alg, pass, priv, pub); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "clave %s escrita en %s\n", alg, priv)
			if pass == "" {
				fmt.Fprintln(cmd.ErrOrStderr(), "aviso: la clave privada quedó sin cifrar")
			}
			return nil
		},
	}
	gen.Flags().StringVar(&alg, "alg", "", "Algoritmo (RS512, ES256, EdDSA, ...)")
	gen.Flags().StringVar(&priv, "private", "", "Ruta de la clave privada")
	gen.Flags().StringVar(&pub, "public", "", "Ruta de la clave pública (opcional)")
	gen.Flags().StringVar(&pass, "password", "", "Password de la clave privada")

	keys.AddCommand(gen)
	return keys
}
