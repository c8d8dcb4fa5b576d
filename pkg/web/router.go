package web

import "github.com/gofiber/fiber/v3"

// Router registers the API surface on app. The from-template route is
// registered before the parameterized workflow routes so the literal segment
// wins.
func Router(app *fiber.App, handlers *APIHandlers) {
	workflows := app.Group("/workflows")
	workflows.Post("/", handlers.CreateWorkflow)
	workflows.Post("/from-template/:templateId", handlers.CreateWorkflowFromTemplate)
	workflows.Get("/", handlers.GetWorkflows)
	workflows.Get("/:id", handlers.GetWorkflow)
	workflows.Patch("/:id", handlers.UpdateWorkflow)
	workflows.Delete("/:id", handlers.DeleteWorkflow)
	workflows.Post("/:id/activate", handlers.ActivateWorkflow)
	workflows.Post("/:id/deactivate", handlers.DeactivateWorkflow)
	workflows.Post("/:id/execute", handlers.ExecuteWorkflow)

	executions := app.Group("/executions")
	executions.Get("/", handlers.GetExecutions)
	executions.Get("/:id", handlers.GetExecution)
	executions.Post("/:id/cancel", handlers.CancelExecution)

	app.Post("/events", handlers.IngestEvent)
	app.Get("/templates", handlers.GetTemplates)
	app.Get("/metrics/workflows", handlers.GetWorkflowMetrics)
	app.Get("/health", handlers.HealthCheck)
}
