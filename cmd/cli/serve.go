package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/flowbaker/agentflow/internal/controllers"
	"github.com/flowbaker/agentflow/internal/initialization"
	"github.com/flowbaker/agentflow/internal/server"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func NewServeCommand(container *initialization.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the workflow HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(container)
		},
	}

	return cmd
}

func runServer(container *initialization.Container) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	workflowController := controllers.NewWorkflowController(controllers.WorkflowControllerDeps{
		Store:        container.Store,
		Orchestrator: container.Orchestrator,
		PlanProvider: container.Planner,
	})

	app := server.NewHTTPServer(server.HTTPServerDeps{
		WorkflowController: workflowController,
		MetricsHandler:     container.Metrics.Handler(),
	})

	log.Info().Str("address", container.Config.HTTPAddress).Msg("Starting workflow API")

	if err := app.Listen(container.Config.HTTPAddress, fiber.ListenConfig{
		GracefulContext:       ctx,
		DisableStartupMessage: true,
	}); err != nil {
		log.Error().Err(err).Msg("HTTP server failed")
		return err
	}

	log.Info().Msg("Workflow API stopped")

	return nil
}
