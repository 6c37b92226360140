package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/flowbaker/agentflow/internal/initialization"
	"github.com/flowbaker/agentflow/internal/planner"
	"github.com/flowbaker/agentflow/pkg/domain"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func NewRunCommand(container *initialization.Container) *cobra.Command {
	var planFile string
	var goal string

	cmd := &cobra.Command{
		Use:   "run [workflow-id]",
		Short: "Execute a workflow to completion",
		Long: `Execute a stored workflow by id, or plan and execute a workflow from a
declarative plan file. Ctrl-C pauses the run at the next node boundary.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			workflowID := ""
			if len(args) > 0 {
				workflowID = args[0]
			}

			if workflowID == "" && planFile == "" {
				return fmt.Errorf("provide a workflow id or --file")
			}

			return runWorkflow(container, workflowID, planFile, goal)
		},
	}

	cmd.Flags().StringVarP(&planFile, "file", "f", "", "Plan file (yaml or json) to build and run")
	cmd.Flags().StringVarP(&goal, "goal", "g", "", "Run-level goal passed to every node")

	return cmd
}

func runWorkflow(container *initialization.Container, workflowID, planFile, goal string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var summary domain.RunSummary
	var err error

	if planFile != "" {
		filePlanner := planner.NewFilePlanner(planFile)

		workflow, planErr := filePlanner.PlanWorkflow(ctx, goal)
		if planErr != nil {
			return planErr
		}

		if saveErr := container.Store.SaveWorkflow(ctx, workflow); saveErr != nil {
			return saveErr
		}

		log.Info().Str("workflow_id", workflow.ID).Msgf("Built workflow %q from %s", workflow.Title, planFile)

		summary, err = container.Orchestrator.ExecuteByID(ctx, workflow.ID)
	} else if goal != "" {
		workflow, getErr := container.Store.GetWorkflow(ctx, workflowID)
		if getErr != nil {
			return getErr
		}

		workflow.Goal = goal

		summary, err = container.Orchestrator.Execute(ctx, workflow)
	} else {
		summary, err = container.Orchestrator.ExecuteByID(ctx, workflowID)
	}

	if err != nil {
		return err
	}

	return printJSON(summary)
}

func printJSON(value any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")

	return encoder.Encode(value)
}
