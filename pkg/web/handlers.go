package web

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/weftlabs/weft/pkg/analytics"
	"github.com/weftlabs/weft/pkg/catalog"
	"github.com/weftlabs/weft/pkg/engine"
	"github.com/weftlabs/weft/pkg/models"
	"github.com/weftlabs/weft/pkg/scheduler"
	"github.com/weftlabs/weft/pkg/store"
)

type APIHandlers struct {
	store     store.Store
	engine    *engine.Engine
	catalog   *catalog.Catalog
	recorder  *analytics.Recorder
	matcher   *scheduler.TriggerMatcher
	validator *validator.Validate
	logger    *slog.Logger
}

func NewAPIHandlers(
	st store.Store,
	eng *engine.Engine,
	cat *catalog.Catalog,
	recorder *analytics.Recorder,
	validate *validator.Validate,
	logger *slog.Logger,
) *APIHandlers {
	return &APIHandlers{
		store:     st,
		engine:    eng,
		catalog:   cat,
		recorder:  recorder,
		matcher:   scheduler.NewTriggerMatcher(st, eng, logger),
		validator: validate,
		logger:    logger.With("module", "web"),
	}
}

func (h *APIHandlers) CreateWorkflow(c fiber.Ctx) error {
	var req CreateWorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	now := time.Now().UTC()
	workflow := &models.Workflow{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Description: req.Description,
		Version:     1,
		Status:      models.WorkflowStatusDraft,
		Category:    req.Category,
		Nodes:       req.Nodes,
		Connections: req.Connections,
		Variables:   req.Variables,
		Triggers:    req.Triggers,
		Schedule:    req.Schedule,
		Owner:       req.Owner,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.Permissions != nil {
		workflow.Permissions = *req.Permissions
	}

	if err := h.store.SaveWorkflow(c.Context(), workflow); err != nil {
		return internalError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(workflow)
}

func (h *APIHandlers) CreateWorkflowFromTemplate(c fiber.Ctx) error {
	templateID := c.Params("templateId")
	if templateID == "" {
		return badRequest(c, "Template ID is required")
	}

	var req InstantiateTemplateRequest
	if len(c.Body()) > 0 {
		if err := c.Bind().JSON(&req); err != nil {
			return badRequest(c, "Invalid JSON format")
		}

		if err := h.validator.Struct(req); err != nil {
			return badRequest(c, err.Error())
		}
	}

	workflow, err := h.catalog.Instantiate(c.Context(), templateID, req.UserID, catalog.Overrides{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Variables:   req.Variables,
	})
	if err != nil {
		if store.IsTemplateNotFound(err) {
			return notFound(c, "Template not found")
		}

		return internalError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(workflow)
}

func (h *APIHandlers) GetWorkflows(c fiber.Ctx) error {
	workflows, err := h.store.Workflows(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	if statusFilter := c.Query("status"); statusFilter != "" {
		filtered := make([]*models.Workflow, 0, len(workflows))

		for _, workflow := range workflows {
			if workflow.Status == models.WorkflowStatus(statusFilter) {
				filtered = append(filtered, workflow)
			}
		}

		workflows = filtered
	}

	return c.JSON(fiber.Map{
		"workflows":   workflows,
		"total_count": len(workflows),
	})
}

func (h *APIHandlers) GetWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	workflow, err := h.store.WorkflowByID(c.Context(), id)
	if err != nil {
		if store.IsWorkflowNotFound(err) {
			return notFound(c, "Workflow not found")
		}

		return internalError(c, err)
	}

	return c.JSON(workflow)
}

func (h *APIHandlers) UpdateWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	var req UpdateWorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	existing, err := h.store.WorkflowByID(c.Context(), id)
	if err != nil {
		if store.IsWorkflowNotFound(err) {
			return notFound(c, "Workflow not found")
		}

		return internalError(c, err)
	}

	applyWorkflowUpdate(existing, req)

	if err := h.store.SaveWorkflow(c.Context(), existing); err != nil {
		return internalError(c, err)
	}

	return c.JSON(existing)
}

func applyWorkflowUpdate(workflow *models.Workflow, req UpdateWorkflowRequest) {
	if req.Name != nil {
		workflow.Name = *req.Name
	}

	if req.Description != nil {
		workflow.Description = *req.Description
	}

	if req.Category != nil {
		workflow.Category = *req.Category
	}

	if req.Nodes != nil || req.Connections != nil {
		workflow.Version++
	}

	if req.Nodes != nil {
		workflow.Nodes = req.Nodes
	}

	if req.Connections != nil {
		workflow.Connections = req.Connections
	}

	if req.Variables != nil {
		workflow.Variables = req.Variables
	}

	if req.Triggers != nil {
		workflow.Triggers = req.Triggers
	}

	if req.Schedule != nil {
		workflow.Schedule = req.Schedule
	}

	workflow.UpdatedAt = time.Now().UTC()
}

func (h *APIHandlers) DeleteWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	if err := h.store.DeleteWorkflow(c.Context(), id); err != nil {
		if store.IsWorkflowNotFound(err) {
			return notFound(c, "Workflow not found")
		}

		return internalError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) ActivateWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	workflow, err := h.engine.ActivateWorkflow(c.Context(), id)
	if err != nil {
		return handleEngineError(c, err)
	}

	return c.JSON(workflow)
}

func (h *APIHandlers) DeactivateWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	workflow, err := h.engine.DeactivateWorkflow(c.Context(), id)
	if err != nil {
		return handleEngineError(c, err)
	}

	return c.JSON(workflow)
}

func (h *APIHandlers) ExecuteWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	var req ExecuteWorkflowRequest
	if len(c.Body()) > 0 {
		if err := c.Bind().JSON(&req); err != nil {
			return badRequest(c, "Invalid JSON format")
		}
	}

	async := false

	if asyncStr := c.Query("async"); asyncStr != "" {
		parsed, err := strconv.ParseBool(asyncStr)
		if err != nil {
			return badRequest(c, "Invalid async parameter")
		}

		async = parsed
	}

	triggeredBy := models.TriggeredBy{
		Type:   models.TriggerSourceAPI,
		UserID: req.UserID,
		Source: req.Source,
	}

	if async {
		execution, err := h.engine.ExecuteWorkflowAsync(c.Context(), id, req.Context, triggeredBy)
		if err != nil {
			return handleEngineError(c, err)
		}

		return c.Status(fiber.StatusAccepted).JSON(execution)
	}

	execution, err := h.engine.ExecuteWorkflow(c.Context(), id, req.Context, triggeredBy)
	if err != nil {
		return handleEngineError(c, err)
	}

	return c.JSON(execution)
}

func (h *APIHandlers) CancelExecution(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Execution ID is required")
	}

	var req CancelExecutionRequest
	if len(c.Body()) > 0 {
		if err := c.Bind().JSON(&req); err != nil {
			return badRequest(c, "Invalid JSON format")
		}
	}

	execution, err := h.engine.CancelExecution(c.Context(), id, req.CancelledBy)
	if err != nil {
		return handleEngineError(c, err)
	}

	return c.JSON(execution)
}

// IngestEvent is the entry point chat platforms and other producers call
// when something happens. The event is matched against the triggers of every
// active workflow; each match fires one execution.
func (h *APIHandlers) IngestEvent(c fiber.Ctx) error {
	var req InboundEventRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	executions, err := h.matcher.Match(c.Context(), scheduler.InboundEvent{
		Type:   models.TriggerType(req.Type),
		Text:   req.Text,
		UserID: req.UserID,
		Source: req.Source,
		Data:   req.Data,
	})
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{
		"executions":  executions,
		"total_count": len(executions),
	})
}

func (h *APIHandlers) GetExecutions(c fiber.Ctx) error {
	var (
		executions []*models.Execution
		err        error
	)

	if workflowID := c.Query("workflow_id"); workflowID != "" {
		executions, err = h.store.ExecutionsByWorkflow(c.Context(), workflowID)
	} else {
		executions, err = h.store.Executions(c.Context())
	}

	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{
		"executions":  executions,
		"total_count": len(executions),
	})
}

func (h *APIHandlers) GetExecution(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Execution ID is required")
	}

	execution, err := h.store.ExecutionByID(c.Context(), id)
	if err != nil {
		if store.IsExecutionNotFound(err) {
			return notFound(c, "Execution not found")
		}

		return internalError(c, err)
	}

	return c.JSON(execution)
}

func (h *APIHandlers) GetTemplates(c fiber.Ctx) error {
	templates, err := h.catalog.Templates(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{
		"templates":   templates,
		"total_count": len(templates),
	})
}

func (h *APIHandlers) GetWorkflowMetrics(c fiber.Ctx) error {
	metrics, err := h.recorder.FleetMetrics(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(metrics)
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	if err := h.store.HealthCheck(c.Context()); err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"status":    "unhealthy",
			"error":     err.Error(),
			"timestamp": time.Now().UTC(),
		})
	}

	return c.JSON(fiber.Map{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
	})
}
