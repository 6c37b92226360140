package controllers

import (
	"errors"

	"github.com/flowbaker/agentflow/internal/planner"
	"github.com/flowbaker/agentflow/pkg/domain"
	"github.com/flowbaker/agentflow/pkg/domain/executor"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"
)

// WorkflowController exposes the orchestrator, store, and planners over HTTP.
type WorkflowController struct {
	store        domain.WorkflowStore
	orchestrator *executor.Orchestrator
	planProvider domain.PlanProvider
}

type WorkflowControllerDeps struct {
	Store        domain.WorkflowStore
	Orchestrator *executor.Orchestrator
	PlanProvider domain.PlanProvider
}

func NewWorkflowController(deps WorkflowControllerDeps) *WorkflowController {
	return &WorkflowController{
		store:        deps.Store,
		orchestrator: deps.Orchestrator,
		planProvider: deps.PlanProvider,
	}
}

func (c *WorkflowController) ListWorkflows(ctx fiber.Ctx) error {
	workflows, err := c.store.ListWorkflows(ctx.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list workflows")
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to list workflows")
	}

	return ctx.JSON(fiber.Map{"workflows": workflows})
}

func (c *WorkflowController) GetWorkflow(ctx fiber.Ctx) error {
	workflow, err := c.store.GetWorkflow(ctx.Context(), ctx.Params("workflowID"))
	if err != nil {
		if errors.Is(err, domain.ErrWorkflowNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Workflow not found")
		}

		log.Error().Err(err).Msg("Failed to load workflow")
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to load workflow")
	}

	return ctx.JSON(workflow)
}

func (c *WorkflowController) DeleteWorkflow(ctx fiber.Ctx) error {
	workflowID := ctx.Params("workflowID")

	if c.orchestrator.IsExecuting(workflowID) {
		return fiber.NewError(fiber.StatusConflict, "An execution is already active for this workflow")
	}

	if err := c.store.DeleteWorkflow(ctx.Context(), workflowID); err != nil {
		if errors.Is(err, domain.ErrWorkflowNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Workflow not found")
		}

		log.Error().Err(err).Msg("Failed to delete workflow")
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to delete workflow")
	}

	return ctx.SendStatus(fiber.StatusNoContent)
}

// CreateWorkflow accepts a plan document and stores the resolved workflow.
func (c *WorkflowController) CreateWorkflow(ctx fiber.Ctx) error {
	doc := planner.PlanDocument{}

	if err := ctx.Bind().Body(&doc); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	workflow, err := planner.BuildWorkflow(doc)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	if err := c.store.SaveWorkflow(ctx.Context(), workflow); err != nil {
		log.Error().Err(err).Msg("Failed to save workflow")
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to save workflow")
	}

	return ctx.Status(fiber.StatusCreated).JSON(workflow)
}

type planRequest struct {
	Goal string `json:"goal"`
}

// PlanWorkflow asks the configured plan provider to design a workflow for a
// goal and stores the result.
func (c *WorkflowController) PlanWorkflow(ctx fiber.Ctx) error {
	req := planRequest{}

	if err := ctx.Bind().Body(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if req.Goal == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Goal is required")
	}

	workflow, err := c.planProvider.PlanWorkflow(ctx.Context(), req.Goal)
	if err != nil {
		log.Error().Err(err).Str("goal", req.Goal).Msg("Planning failed")
		return fiber.NewError(fiber.StatusBadGateway, "Planning failed")
	}

	if err := c.store.SaveWorkflow(ctx.Context(), workflow); err != nil {
		log.Error().Err(err).Msg("Failed to save planned workflow")
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to save planned workflow")
	}

	return ctx.Status(fiber.StatusCreated).JSON(workflow)
}

// StartExecution runs a stored workflow to a terminal status and returns the
// run summary.
func (c *WorkflowController) StartExecution(ctx fiber.Ctx) error {
	summary, err := c.orchestrator.ExecuteByID(ctx.Context(), ctx.Params("workflowID"))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrWorkflowNotFound):
			return fiber.NewError(fiber.StatusNotFound, "Workflow not found")
		case errors.Is(err, executor.ErrExecutionActive):
			return fiber.NewError(fiber.StatusConflict, "An execution is already active for this workflow")
		case errors.Is(err, executor.ErrGraphCyclic):
			return fiber.NewError(fiber.StatusUnprocessableEntity, "Workflow graph contains a cycle")
		}

		log.Error().Err(err).Msg("Failed to execute workflow")
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to execute workflow")
	}

	return ctx.JSON(summary)
}

// RecomputeLayout reapplies the layered auto-layout and stores the result.
func (c *WorkflowController) RecomputeLayout(ctx fiber.Ctx) error {
	workflow, err := c.store.GetWorkflow(ctx.Context(), ctx.Params("workflowID"))
	if err != nil {
		if errors.Is(err, domain.ErrWorkflowNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Workflow not found")
		}

		log.Error().Err(err).Msg("Failed to load workflow")
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to load workflow")
	}

	executor.ApplyLayout(workflow)

	if err := c.store.SaveWorkflow(ctx.Context(), workflow); err != nil {
		log.Error().Err(err).Msg("Failed to save workflow")
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to save workflow")
	}

	return ctx.JSON(workflow)
}
