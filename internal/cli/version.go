package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hejijunhao/fwdigest/internal/config"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the fwdigest version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "fwdigest %s\n", config.Version)
			return err
		},
	}
}
