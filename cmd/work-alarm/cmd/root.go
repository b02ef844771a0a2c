package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/work-alarm/internal/config"
	client "github.com/oshokin/work-alarm/internal/service/client"
	"github.com/oshokin/work-alarm/internal/version"
)

var (
	// cfgPath stores the configuration file path.
	cfgPath string
	// serverAddress overrides the configured daemon address.
	serverAddress string

	// rootCmd represents the base command; without a subcommand it prints the status.
	rootCmd = &cobra.Command{
		Use:   "work-alarm",
		Short: "Control the work alarm daemon.",
		Long: `Shows and changes the work alarm settings kept by work-alarm-server.

Alarms remind you to take a break: on the configured weekdays they fire every
interval minutes from the start hour until the end hour.
When the daemon is not reachable, status and catch-up read the settings store directly.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return client.Status(cmd.Context(), options(cmd))
		},
	}
)

// options builds the client options shared by every subcommand.
func options(cmd *cobra.Command) *client.Options {
	return &client.Options{
		ConfigPath:    cfgPath,
		ServerAddress: serverAddress,
		Out:           cmd.OutOrStdout(),
	}
}

// Execute runs the work-alarm CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	// Setup graceful shutdown handling.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)

	err := rootCmd.ExecuteContext(ctx)

	stop()

	if err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", config.DefaultPath(), "path to configuration file")
	rootCmd.PersistentFlags().StringVarP(&serverAddress, "server", "s", "", "daemon address, overrides server_addr")

	rootCmd.AddCommand(statusCmd, enableCmd, disableCmd, ruleCmd, previewCmd, catchUpCmd)
}
