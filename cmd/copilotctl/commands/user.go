package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kmazur/interview-copilot/internal/auth"
	"github.com/kmazur/interview-copilot/internal/config"
	"github.com/kmazur/interview-copilot/internal/store"
)

// NewUserCmd creates the account management command.
func NewUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
		Long:  "Create accounts and issue tokens directly against the database",
	}
	cmd.AddCommand(newUserCreateCmd())
	cmd.AddCommand(newUserTokenCmd())
	return cmd
}

// openDatabaseStore loads config and connects to the durable store.
// Account management always works against the database; the in-process
// store would vanish with this command.
func openDatabaseStore() (*config.Config, *store.PostgresStore, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.DatabaseURL == "" {
		return nil, nil, fmt.Errorf("DATABASE_URL is required for account management")
	}
	pg, err := store.OpenPostgres(cfg.DatabaseURL, cfg.HistoryRetention)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	return cfg, pg, nil
}

func newUserCreateCmd() *cobra.Command {
	var email, password, fullName string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user account",
		RunE: func(cmd *cobra.Command, args []string) error {
			email = strings.TrimSpace(email)
			if email == "" || password == "" {
				return fmt.Errorf("--email and --password are required")
			}
			cfg, pg, err := openDatabaseStore()
			if err != nil {
				return err
			}
			defer func() { _ = pg.Close() }()

			svc := auth.NewService(pg, cfg.JWTSecretKey, time.Duration(cfg.JWTExpireMinutes)*time.Minute)
			user, err := svc.Register(context.Background(), email, password, fullName)
			if err != nil {
				return fmt.Errorf("create user: %w", err)
			}
			fmt.Printf("Created user %s (%s)\n", user.Email, user.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	cmd.Flags().StringVar(&fullName, "full-name", "", "Display name")
	return cmd
}

func newUserTokenCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" || password == "" {
				return fmt.Errorf("--email and --password are required")
			}
			cfg, pg, err := openDatabaseStore()
			if err != nil {
				return err
			}
			defer func() { _ = pg.Close() }()

			svc := auth.NewService(pg, cfg.JWTSecretKey, time.Duration(cfg.JWTExpireMinutes)*time.Minute)
			token, expiry, err := svc.Login(context.Background(), email, password)
			if err != nil {
				return fmt.Errorf("issue token: %w", err)
			}
			fmt.Printf("Token (expires in %s):\n%s\n", expiry, token)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	return cmd
}
