package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dw-610/schwab-tracking-app/config"
	"github.com/dw-610/schwab-tracking-app/report"
	"github.com/dw-610/schwab-tracking-app/schwab"
)

var statusCmd = &cobra.Command{
	Use:   "status <profile> <account>",
	Short: "Show an account's value split against its target allocation",
	Long: `Fetch balances and positions for one account and print the current
allocation next to the configured targets.

The account selector is one of CUSTODIAL, INVESTING, ROTH, ROTH2, IRA.

Example:
  schwab status default INVESTING`,
	Args: cobra.ExactArgs(2),
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	profile := args[0]

	// Validate the selector before touching config or the network.
	acct, err := config.ParseAccount(args[1])
	if err != nil {
		return err
	}

	dir, cfg, err := loadConfig()
	if err != nil {
		return err
	}
	number, err := cfg.Number(acct)
	if err != nil {
		return err
	}
	targets, err := cfg.Targets(acct)
	if err != nil {
		return err
	}

	client := schwab.NewClient(profile, tokenManager(dir, cfg))
	values, err := client.AccountValues(cmd.Context(), number)
	if err != nil {
		return err
	}

	rep := report.Build(values, report.FloatTargets(targets))
	fmt.Printf("Account: %s\n", acct)
	fmt.Print(report.Format(rep))
	return nil
}
