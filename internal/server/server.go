package server

import (
	"net/http"
	"time"

	"github.com/flowbaker/agentflow/internal/controllers"
	"github.com/flowbaker/agentflow/internal/version"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/logger"
)

type HTTPServerDeps struct {
	WorkflowController *controllers.WorkflowController
	MetricsHandler     http.Handler
}

func NewHTTPServer(deps HTTPServerDeps) *fiber.App {
	router := fiber.New(fiber.Config{
		AppName: "agentflow",
	})

	router.Use(cors.New())
	router.Use(logger.New())

	router.Get("/health", func(c fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":    "healthy",
			"service":   "agentflow",
			"version":   version.GetVersion(),
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	if deps.MetricsHandler != nil {
		router.Get("/metrics", adaptor.HTTPHandler(deps.MetricsHandler))
	}

	v1 := router.Group("/v1")

	v1.Get("/workflows", deps.WorkflowController.ListWorkflows)
	v1.Post("/workflows", deps.WorkflowController.CreateWorkflow)
	v1.Get("/workflows/:workflowID", deps.WorkflowController.GetWorkflow)
	v1.Delete("/workflows/:workflowID", deps.WorkflowController.DeleteWorkflow)
	v1.Post("/workflows/:workflowID/executions", deps.WorkflowController.StartExecution)
	v1.Post("/workflows/:workflowID/layout", deps.WorkflowController.RecomputeLayout)
	v1.Post("/plans", deps.WorkflowController.PlanWorkflow)

	return router
}
