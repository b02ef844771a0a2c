package cmd

import (
	"github.com/spf13/cobra"

	"github.com/oshokin/work-alarm/internal/service/autostart"
)

var (
	// installCmd registers the daemon to start with the user session.
	installCmd = &cobra.Command{
		Use:   "install",
		Short: "Start the daemon with the user session.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			entry, err := autostart.New("", "--config", configPath)
			if err != nil {
				return err
			}

			return entry.Install(cmd.Context())
		},
	}

	// uninstallCmd removes the session autostart entry.
	uninstallCmd = &cobra.Command{
		Use:   "uninstall",
		Short: "Stop starting the daemon with the user session.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			entry, err := autostart.New("")
			if err != nil {
				return err
			}

			return entry.Uninstall(cmd.Context())
		},
	}
)
