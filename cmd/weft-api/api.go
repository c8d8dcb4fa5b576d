// Package main provides the Weft API server.
package main

import (
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	fiberlogger "github.com/gofiber/fiber/v3/middleware/logger"
	"go.opentelemetry.io/otel/trace"

	"github.com/weftlabs/weft/pkg/actions"
	"github.com/weftlabs/weft/pkg/analytics"
	"github.com/weftlabs/weft/pkg/catalog"
	"github.com/weftlabs/weft/pkg/collaborators"
	"github.com/weftlabs/weft/pkg/engine"
	"github.com/weftlabs/weft/pkg/eventbus"
	"github.com/weftlabs/weft/pkg/store"
	"github.com/weftlabs/weft/pkg/web"
)

type API struct {
	logger    *slog.Logger
	store     store.Store
	bus       eventbus.EventBus
	tracer    trace.Tracer
	exportDir string
	validate  *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	st store.Store,
	bus eventbus.EventBus,
	tracer trace.Tracer,
	exportDir string,
) *API {
	return &API{
		logger:    logger,
		store:     st,
		bus:       bus,
		tracer:    tracer,
		exportDir: exportDir,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	local := collaborators.Local(a.logger, a.exportDir)
	dispatcher := actions.NewDispatcher(local, a.logger)
	recorder := analytics.NewRecorder(a.store, a.logger)
	eng := engine.New(a.store, dispatcher, local.Classifier, recorder, a.bus, a.tracer, a.logger)
	cat := catalog.NewCatalog(a.store, a.logger)

	handlers := web.NewAPIHandlers(a.store, eng, cat, recorder, a.validate, a.logger)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Weft API")
	})

	web.Router(app, handlers)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	return app.Listen(":" + strconv.Itoa(port))
}
