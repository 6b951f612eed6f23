package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sheikh-riyadh/due-sample-server/internal/api/validate"
	"github.com/sheikh-riyadh/due-sample-server/internal/auth"
	"github.com/sheikh-riyadh/due-sample-server/internal/config"
	"github.com/sheikh-riyadh/due-sample-server/internal/factory"
	"github.com/sheikh-riyadh/due-sample-server/internal/logger"
	"github.com/sheikh-riyadh/due-sample-server/internal/services"
	"github.com/sheikh-riyadh/due-sample-server/internal/store"
)

// openStore connects straight to the configured database; credential records
// have no HTTP surface.
func openStore(ctx context.Context) (store.Store, *config.Config, error) {
	cfg, err := config.New()
	if err != nil {
		return nil, nil, err
	}
	st, err := factory.NewStore(ctx, cfg, logger.New("samplectl"))
	if err != nil {
		return nil, nil, err
	}
	return st, cfg, nil
}

func init() {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create collections, tables and unique indexes",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, cfg, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = st.Close(context.Background()) }()
			_, _ = fmt.Fprintf(os.Stdout, "%s store migrated\n", cfg.DBDriver)
			return nil
		},
	}
	rootCmd.AddCommand(migrateCmd)

	usersCmd := &cobra.Command{Use: "users", Short: "Credential record operations"}

	var email, password, role string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a login",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validate.Email(strings.ToLower(strings.TrimSpace(email))); err != nil {
				return err
			}
			st, cfg, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = st.Close(context.Background()) }()
			svc := services.NewAuthService(st, auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL))
			u, err := svc.CreateUser(cmd.Context(), email, password, role)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(os.Stdout, "created %s (%s)\n", u.Email, u.Role)
			return nil
		},
	}
	createCmd.Flags().StringVar(&email, "user-email", "", "Email of the new login (required)")
	createCmd.Flags().StringVar(&password, "user-password", "", "Password of the new login (required)")
	createCmd.Flags().StringVar(&role, "role", auth.RoleStaff, "Role: admin or staff")
	_ = createCmd.MarkFlagRequired("user-email")
	_ = createCmd.MarkFlagRequired("user-password")
	usersCmd.AddCommand(createCmd)

	rootCmd.AddCommand(usersCmd)
}
