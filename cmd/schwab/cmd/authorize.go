package cmd

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/dw-610/schwab-tracking-app/auth"
)

var authorizeCmd = &cobra.Command{
	Use:   "authorize <profile>",
	Short: "Run the OAuth authorization flow for a profile",
	Long: `Perform the interactive OAuth authorization-code flow with PKCE and
save the resulting tokens for the profile.

By default a local TLS server on 127.0.0.1:8443 receives the browser
callback; the certificate pair 127.0.0.1.pem / 127.0.0.1-key.pem must exist
in the secure directory. With --manual the authorize URL is printed and you
paste the redirect URL back instead, which needs no certificates.

Examples:
  schwab authorize default
  schwab authorize default --manual`,
	Args: cobra.ExactArgs(1),
	RunE: runAuthorize,
}

var (
	authorizeManual  bool
	authorizeTimeout time.Duration
)

func init() {
	rootCmd.AddCommand(authorizeCmd)

	authorizeCmd.Flags().BoolVar(&authorizeManual, "manual", false, "paste the redirect URL instead of running the callback server")
	authorizeCmd.Flags().DurationVar(&authorizeTimeout, "timeout", 5*time.Minute, "how long to wait for the browser callback")
}

func runAuthorize(cmd *cobra.Command, args []string) error {
	profile := args[0]

	dir, cfg, err := loadConfig()
	if err != nil {
		return err
	}

	mgr := tokenManager(dir, cfg)
	err = mgr.Authorize(cmd.Context(), profile, auth.AuthorizeOptions{
		Manual:   authorizeManual,
		CertFile: filepath.Join(dir, "127.0.0.1.pem"),
		KeyFile:  filepath.Join(dir, "127.0.0.1-key.pem"),
		Timeout:  authorizeTimeout,
	})
	if err != nil {
		return err
	}

	fmt.Printf("✓ Authorized profile %q\n", profile)
	return nil
}
