package cli

import (
	"context"
	"strings"

	"github.com/flowbaker/agentflow/internal/initialization"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func NewPlanCommand(container *initialization.Container) *cobra.Command {
	var save bool

	cmd := &cobra.Command{
		Use:   "plan <goal>",
		Short: "Plan a workflow from a natural language goal",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			goal := strings.Join(args, " ")

			workflow, err := container.Planner.PlanWorkflow(ctx, goal)
			if err != nil {
				return err
			}

			if save {
				if err := container.Store.SaveWorkflow(ctx, workflow); err != nil {
					return err
				}

				log.Info().Str("workflow_id", workflow.ID).Msgf("Saved workflow %q", workflow.Title)
			}

			return printJSON(workflow)
		},
	}

	cmd.Flags().BoolVar(&save, "save", false, "Persist the planned workflow to the configured store")

	return cmd
}
