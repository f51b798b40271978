package main

import (
	"encoding/json"
	"errors"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/warden/internal/app"
)

func (c *cli) tokenCmd() *cobra.Command {
	tok := &cobra.Command{Use: "token", Short: "Tokens de sesión"}

	var userID int64
	issue := &cobra.Command{
		Use:   "issue",
		Short: "Emite un token para un usuario existente (sin password)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID <= 0 {
				return errors.New("--user-id es requerido")
			}
			if err := c.cfg.Validate(); err != nil {
				return err
			}
			ct, err := app.Open(cmd.Context(), c.cfg)
			if err != nil {
				return err
			}
			defer ct.Close()
			if err := ct.Codec.Verify(); err != nil {
				return err
			}
			out, err := ct.Codec.Issue(cmd.Context(), userID)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]any{
				"token":         out.Token,
				"refresh_token": out.RefreshToken,
				"expires_at":    out.ExpiresAt,
			})
		},
	}
	issue.Flags().Int64Var(&userID, "user-id", 0, "Id numérico del usuario")

	tok.AddCommand(issue)
	return tok
}
