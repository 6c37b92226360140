package cli

import (
	"context"

	"github.com/flowbaker/agentflow/internal/initialization"
	"github.com/flowbaker/agentflow/pkg/domain/executor"

	"github.com/spf13/cobra"
)

func NewLayoutCommand(container *initialization.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "layout <workflow-id>",
		Short: "Recompute node positions for a stored workflow",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			workflow, err := container.Store.GetWorkflow(ctx, args[0])
			if err != nil {
				return err
			}

			executor.ApplyLayout(workflow)

			if err := container.Store.SaveWorkflow(ctx, workflow); err != nil {
				return err
			}

			return printJSON(workflow)
		},
	}

	return cmd
}
