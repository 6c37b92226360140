package cli

import (
	"github.com/flowbaker/agentflow/internal/version"

	"github.com/spf13/cobra"
)

func NewVersionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version and build information",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printJSON(version.Get())
		},
	}

	return cmd
}
