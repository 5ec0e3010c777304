package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dw-610/schwab-tracking-app/report"
	"github.com/dw-610/schwab-tracking-app/schwab"
)

var accountsCmd = &cobra.Command{
	Use:   "accounts <profile>",
	Short: "Summarize all accounts for a profile",
	Long: `Fetch every account visible to the profile and print each one's total
value and share of the combined total.

Example:
  schwab accounts default`,
	Args: cobra.ExactArgs(1),
	RunE: runAccounts,
}

var numbersCmd = &cobra.Command{
	Use:   "numbers <profile>",
	Short: "Print the raw account numbers response as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runNumbers,
}

func init() {
	rootCmd.AddCommand(accountsCmd)
	rootCmd.AddCommand(numbersCmd)
}

func runAccounts(cmd *cobra.Command, args []string) error {
	client, err := apiClient(args[0])
	if err != nil {
		return err
	}

	numbers, err := client.GetAccountNumbers(cmd.Context())
	if err != nil {
		return err
	}

	summaries := make([]report.AccountSummary, 0, len(numbers))
	for _, n := range numbers {
		values, err := client.AccountValues(cmd.Context(), n.HashValue)
		if err != nil {
			return err
		}
		summaries = append(summaries, report.AccountSummary{
			Number: n.AccountNumber,
			Value:  values.Total,
		})
	}

	fmt.Print(report.FormatAccounts(summaries))
	return nil
}

func runNumbers(cmd *cobra.Command, args []string) error {
	client, err := apiClient(args[0])
	if err != nil {
		return err
	}

	numbers, err := client.GetAccountNumbers(cmd.Context())
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(numbers, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal account numbers: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

// apiClient builds an authenticated API client for a profile.
func apiClient(profile string) (*schwab.Client, error) {
	dir, cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return schwab.NewClient(profile, tokenManager(dir, cfg)), nil
}
