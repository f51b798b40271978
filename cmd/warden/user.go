package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/warden/internal/app"
	"github.com/dropDatabas3/warden/internal/audit"
	"github.com/dropDatabas3/warden/internal/domain/repository"
	"github.com/dropDatabas3/warden/internal/observability/logger"
	"github.com/dropDatabas3/warden/internal/security/password"
	"github.com/dropDatabas3/warden/internal/util"
	"github.com/dropDatabas3/warden/internal/validation"
)

// systemExecutor figura como autor de lo creado desde la CLI.
const systemExecutor int64 = 0

func (c *cli) userCmd() *cobra.Command {
	user := &cobra.Command{Use: "user", Short: "Administración de usuarios"}

	var username, email, pass, locale string
	var roles, groups []string
	create := &cobra.Command{
		Use:   "create",
		Short: "Crea un usuario y opcionalmente le asigna roles y grupos",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.cfg.Validate(); err != nil {
				return err
			}
			if strings.TrimSpace(username) == "" || strings.TrimSpace(email) == "" {
				return errors.New("--username y --email son requeridos")
			}
			if ok, reasons := password.DefaultPolicy.Validate(pass); !ok {
				return fmt.Errorf("password rechazada: %s", strings.Join(reasons, ", "))
			}
			for _, n := range append(append([]string{}, roles...), groups...) {
				if !validation.ValidName(n) {
					return fmt.Errorf("nombre inválido: %q", n)
				}
			}
			if locale == "" {
				locale = c.cfg.Locale.Default
			}

			ctx := cmd.Context()
			ct, err := app.Open(ctx, c.cfg)
			if err != nil {
				return err
			}
			defer ct.Close()

			hash, err := password.Hash(password.Default, pass)
			if err != nil {
				return err
			}
			st := ct.Store.Store
			u, err := st.Users().Create(ctx, repository.CreateUserInput{
				Username: username, Email: email, PasswordHash: hash, Locale: locale,
			}, systemExecutor)
			if err != nil {
				return fmt.Errorf("creando usuario: %w", err)
			}
			for _, name := range roles {
				r, err := ensureRole(ctx, st, name)
				if err != nil {
					return err
				}
				if err := st.Grants().AssignRole(ctx, u.ID, r.ID, systemExecutor); err != nil {
					return fmt.Errorf("asignando %s: %w", name, err)
				}
			}
			for _, name := range groups {
				g, err := ensureGroup(ctx, st, name)
				if err != nil {
					return err
				}
				if err := st.Grants().AddToGroup(ctx, u.ID, g.ID, systemExecutor); err != nil {
					return fmt.Errorf("agregando a %s: %w", name, err)
				}
			}

			audit.Log(ctx, audit.EventUserCreated,
				logger.UserID(u.ID),
				logger.String("email", util.MaskEmail(u.Email)),
				logger.Any("roles", roles),
				logger.Any("groups", groups),
			)
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]any{"id": u.ID, "username": u.Username, "roles": roles, "groups": groups})
		},
	}
	create.Flags().StringVar(&username, "username", "", "Nombre de usuario")
	create.Flags().StringVar(&email, "email", "", "Email")
	create.Flags().StringVar(&pass, "password", "", "Password (se valida contra la política)")
	create.Flags().StringVar(&locale, "locale", "", "Locale (default: locale.default)")
	create.Flags().StringSliceVar(&roles, "role", nil, "Rol a asignar (repetible)")
	create.Flags().StringSliceVar(&groups, "group", nil, "Grupo al que agregar (repetible)")

	user.AddCommand(create)
	return user
}

func ensureRole(ctx context.Context, st repository.Store, name string) (*repository.Role, error) {
	r, err := st.Catalog().GetRoleByName(ctx, name)
	if errors.Is(err, repository.ErrNotFound) {
		return st.Catalog().CreateRole(ctx, name, "", systemExecutor)
	}
	return r, err
}

func ensureGroup(ctx context.Context, st repository.Store, name string) (*repository.Group, error) {
	g, err := st.Catalog().GetGroupByName(ctx, name)
	if errors.Is(err, repository.ErrNotFound) {
		return st.Catalog().CreateGroup(ctx, name, "", systemExecutor)
	}
	return g, err
}
