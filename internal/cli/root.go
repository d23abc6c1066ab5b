// Package cli implements fboard, a command line client for the faction
// registration API.
package cli

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	cfg         *Config
	client      *Client
	credentials *Credentials
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "fboard",
		Short: "CLI tool for the faction registration API",
		Long: `fboard registers players into the efemeros and rosetta factions and
manages those registrations.

Registering returns an owner secret, which fboard saves to a local
credentials file and sends with every later update, transfer or delete of
that registration. The server cannot recover a lost secret.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cfg.NoColor {
				color.NoColor = true
			}

			// Load admin token from file if not provided via flag/env
			if err := cfg.LoadAdminToken(); err != nil {
				return err
			}

			client = NewClient(cfg.ServerURL, cfg.AdminToken)
			credentials = NewCredentials(cfg.CredentialsFile)
			return nil
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL (env: FBOARD_SERVER)")
	rootCmd.PersistentFlags().StringVar(&cfg.CredentialsFile, "credentials", cfg.CredentialsFile, "Owner secrets file (env: FBOARD_CREDENTIALS)")
	rootCmd.PersistentFlags().StringVar(&cfg.AdminToken, "admin-token", cfg.AdminToken, "Admin session token (env: FBOARD_ADMIN_TOKEN)")
	rootCmd.PersistentFlags().StringVar(&cfg.AdminTokenFile, "admin-token-file", cfg.AdminTokenFile, "Admin token file path (env: FBOARD_ADMIN_TOKEN_FILE)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")
	rootCmd.PersistentFlags().BoolVar(&cfg.NoColor, "no-color", cfg.NoColor, "Disable colored output")

	// Add subcommands
	rootCmd.AddCommand(newRegisterCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newLeaderboardCmd())
	rootCmd.AddCommand(newUpdateCmd())
	rootCmd.AddCommand(newTransferCmd())
	rootCmd.AddCommand(newDeleteCmd())
	rootCmd.AddCommand(newAdminCmd())
	rootCmd.AddCommand(newHealthCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func output(cmd *cobra.Command) *Output {
	return NewOutput(cfg.Output, cmd.OutOrStdout(), cmd.ErrOrStderr())
}
