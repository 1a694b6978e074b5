// Package cli wires configuration, connectors, the pipeline, outputs and
// notifiers into the fwdigest command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

type rootFlags struct {
	configPath string
	logLevel   string
}

// NewRootCmd builds the fwdigest command tree.
func NewRootCmd() *cobra.Command {
	var flags rootFlags

	root := &cobra.Command{
		Use:   "fwdigest",
		Short: "fwdigest: firewall log digest",
		Long: `fwdigest pulls the threat and event logs of a fleet of firewalls for a
time window, decodes every line into a structured record, writes one text
artifact per log category and sends the artifacts as a digest by email,
NATS or webhook.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "config.yaml", "YAML configuration file")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "override log level: debug, info, warn, error")

	root.AddCommand(newRunCmd(&flags), newDecodeCmd(&flags), newVersionCmd())
	return root
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
