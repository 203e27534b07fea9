package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// Set at build time with -ldflags "-X main.version=...".
var version = "dev"

var (
	configPath string

	rootCmd = &cobra.Command{
		Use:   "sosapp",
		Short: "Run the SOS companion server.",
		Long: `Starts the HTTP and websocket server the handset talks to.

Live location sharing sends the device position over SMS to the configured
recipients. The SOS flow records video from the handset and saves it to the
"SOSApp" album. Settings come from the environment, optionally overlaid by a
YAML file given with --config or CONFIG_FILE.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			return run(ctx, configPath)
		},
		SilenceUsage: true,
	}
)

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a YAML configuration file")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information.",
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
