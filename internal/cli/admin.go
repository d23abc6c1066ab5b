package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Operator commands",
	}

	cmd.AddCommand(newAdminLoginCmd())
	cmd.AddCommand(newAdminStatsCmd())

	return cmd
}

func newAdminLoginCmd() *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in as admin and save the session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv("FBOARD_ADMIN_PASSWORD")
			}
			if password == "" {
				return errors.New("--password or FBOARD_ADMIN_PASSWORD is required")
			}

			result, err := client.AdminLogin(password)
			if err != nil {
				return err
			}

			if err := cfg.SaveAdminToken(result.Token); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			output(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "Admin password (env: FBOARD_ADMIN_PASSWORD)")

	return cmd
}

func newAdminStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show registration counts per faction",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.AdminToken == "" {
				return errors.New("not logged in: run 'fboard admin login' first")
			}

			result, err := client.AdminStats()
			if err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}
