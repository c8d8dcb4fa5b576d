package web

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"

	"github.com/weftlabs/weft/pkg/engine"
	"github.com/weftlabs/weft/pkg/store"
)

func badRequest(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(400).
		WithInstance(c.Path()).
		WithType("validation_error").
		WithDetail(detail)

	return c.Status(fiber.StatusBadRequest).JSON(problem)
}

func notFound(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(404).
		WithInstance(c.Path()).
		WithType("not_found").
		WithDetail(detail)

	return c.Status(fiber.StatusNotFound).JSON(problem)
}

func conflict(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(409).
		WithInstance(c.Path()).
		WithType("state_conflict").
		WithDetail(detail)

	return c.Status(fiber.StatusConflict).JSON(problem)
}

func unprocessable(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(422).
		WithInstance(c.Path()).
		WithType("definition_error").
		WithDetail(detail)

	return c.Status(fiber.StatusUnprocessableEntity).JSON(problem)
}

func internalError(c fiber.Ctx, err error) error {
	problem := problems.NewStatusProblem(500).
		WithInstance(c.Path()).
		WithType("internal_error").
		WithError(err)

	return c.Status(fiber.StatusInternalServerError).JSON(problem)
}

// handleEngineError maps engine and store errors onto problem responses:
// lifecycle conflicts become 409, missing records 404, definition problems
// 422, anything else 500. The not-found check runs before the definition
// check because the engine wraps unknown-workflow errors in a
// DefinitionError.
func handleEngineError(c fiber.Ctx, err error) error {
	switch {
	case engine.IsStateError(err):
		return conflict(c, err.Error())
	case errors.Is(err, engine.ErrExecutionNotRunning):
		return conflict(c, err.Error())
	case store.IsNotFound(err):
		return notFound(c, err.Error())
	case engine.IsDefinitionError(err):
		return unprocessable(c, err.Error())
	default:
		return internalError(c, err)
	}
}
