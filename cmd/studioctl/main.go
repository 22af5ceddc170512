package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"tunestudio/pkg/config"
)

var version = "0.1.0"

const (
	EnvAPIURL     = "STUDIO_API_URL"
	DefaultAPIURL = "http://localhost:8080"
)

type options struct {
	apiURL     string
	siteSecret string
	timeout    time.Duration
}

func main() {
	config.LoadDotEnvUp(0)

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "studioctl",
		Short: "Front desk client for the tuning studio",
		Long: `studioctl talks to the studio API on behalf of the front desk.

It manages clients, callback requests and orders, and exposes the phone
formatter used by every input field:
  - phone normalize|format|partial for one-off conversions
  - phone mask to try the interactive input mask in a terminal`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.apiURL, "api", envOr(EnvAPIURL, DefaultAPIURL), "studio API base URL (env "+EnvAPIURL+")")
	rootCmd.PersistentFlags().StringVar(&opts.siteSecret, "site-secret", os.Getenv(config.EnvSiteFormSecret), "secret used to sign callback submissions")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "per-request timeout")

	rootCmd.AddCommand(phoneCmd())
	rootCmd.AddCommand(clientsCmd(opts))
	rootCmd.AddCommand(callbacksCmd(opts))
	rootCmd.AddCommand(ordersCmd(opts))
	rootCmd.AddCommand(intakeCmd(opts))

	return rootCmd
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
