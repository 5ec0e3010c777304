package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/dw-610/schwab-tracking-app/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Generate or validate the accounts file",
	Long: `Manage the accounts file that maps account selectors to brokerage
account numbers and target allocations.

Subcommands:
  init     - Generate a skeleton accounts file
  validate - Check credentials and the accounts file

Examples:
  schwab config init
  schwab config validate`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate a skeleton accounts file",
	RunE:  runConfigInit,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check credentials and the accounts file",
	RunE:  runConfigValidate,
}

var configInitOutput string

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configValidateCmd)

	configInitCmd.Flags().StringVarP(&configInitOutput, "output", "o", "", "output path (default: accounts.yaml in the secure dir)")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := configInitOutput
	if path == "" {
		dir, err := config.SecureDir()
		if err != nil {
			return err
		}
		path = config.AccountsFile(dir)
	}

	cfg := config.Default()
	if err := cfg.SaveTo(path); err != nil {
		return err
	}

	fmt.Printf("✓ Created accounts file: %s\n", path)
	fmt.Println("\nFill in your account numbers and targets, then run:")
	fmt.Println("  schwab status <profile> <account>")
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	dir, cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	fmt.Printf("✓ Configuration valid (%s)\n", config.AccountsFile(dir))

	selectors := make([]string, 0, len(cfg.Accounts))
	for acct := range cfg.Accounts {
		selectors = append(selectors, string(acct))
	}
	sort.Strings(selectors)
	for _, s := range selectors {
		ac := cfg.Accounts[config.Account(s)]
		fmt.Printf("  %-9s number set: %-5v targets: %d\n", s, ac.Number != "", len(ac.Targets))
	}
	return nil
}
