package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dw-610/schwab-tracking-app/auth"
	"github.com/dw-610/schwab-tracking-app/config"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "schwab",
	Short: "Track Schwab account values against target allocations",
	Long: `Schwab is a small personal-finance CLI for the Schwab Trader API.

It provides commands for:
  - Authorizing access with the OAuth authorization-code flow (PKCE)
  - Showing an account's value split against its target allocation
  - Summarizing all accounts for a profile
  - Managing the accounts configuration file

Credentials (SCHWAB_APP_KEY, SCHWAB_APP_SECRET) and tokens live in
~/.config/schwab-oauth, one token file per named profile.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// loadConfig resolves the secure directory and loads credentials plus the
// accounts file. Every command that touches the API goes through here, so
// missing credentials fail before any authorization attempt.
func loadConfig() (string, *config.Config, error) {
	dir, err := config.SecureDir()
	if err != nil {
		return "", nil, err
	}
	cfg, err := config.Load(dir, config.AccountsFile(dir))
	if err != nil {
		return "", nil, err
	}
	return dir, cfg, nil
}

// tokenManager wires the token store and manager for a loaded config.
func tokenManager(dir string, cfg *config.Config) *auth.Manager {
	return auth.NewManager(cfg.AppKey, cfg.AppSecret, auth.NewStore(dir))
}
