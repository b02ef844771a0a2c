package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/work-alarm/internal/config"
	"github.com/oshokin/work-alarm/internal/service/server"
	"github.com/oshokin/work-alarm/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// storePath overrides where alarm settings are persisted.
	storePath string

	// rootCmd represents the base command for running the alarm daemon.
	rootCmd = &cobra.Command{
		Use:   "work-alarm-server [listen-address]",
		Short: "Run the work alarm daemon.",
		Long: `Starts the daemon that arms work alarms and serves the gRPC API used by work-alarm.

Alarms fire on the configured weekdays, every interval minutes within the working hours.
The listen address defaults to server_addr from the configuration file and can be
overridden by the argument (e.g., 127.0.0.1:50061, :9090).
Settings are persisted to the configured store and re-armed after a restart.
Only one daemon may run per machine.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			// Use listen address argument if provided, otherwise rely on config.
			var listenAddress string
			if len(args) > 0 {
				listenAddress = args[0]
			}

			options := &server.Options{
				ConfigPath:    configPath,
				ListenAddress: listenAddress,
				StorePath:     storePath,
			}

			return server.Run(ctx, options)
		},
	}
)

// Execute runs the work-alarm-server CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath(), "path to configuration file")
	rootCmd.Flags().StringVarP(&storePath, "store-path", "s", "", "override the settings store location")

	rootCmd.AddCommand(installCmd, uninstallCmd)
}
