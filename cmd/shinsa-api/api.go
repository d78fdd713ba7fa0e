// Package main provides the Shinsa API server implementation.
package main

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"go.opentelemetry.io/otel/trace"

	"github.com/hokensys/shinsa/pkg/configstore"
	"github.com/hokensys/shinsa/pkg/eventbus"
	"github.com/hokensys/shinsa/pkg/events"
	"github.com/hokensys/shinsa/pkg/flow"
	"github.com/hokensys/shinsa/pkg/judgment"
	"github.com/hokensys/shinsa/pkg/persistence"
	"github.com/hokensys/shinsa/pkg/services"
	"github.com/hokensys/shinsa/pkg/web"
)

type API struct {
	logger      *slog.Logger
	configs     *configstore.Cache
	persistence persistence.Persistence
	eventBus    eventbus.EventBus
	tracer      trace.Tracer
	validate    *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	configs *configstore.Cache,
	persist persistence.Persistence,
	eventBus eventbus.EventBus,
	tracer trace.Tracer,
) *API {
	return &API{
		logger:      logger,
		configs:     configs,
		persistence: persist,
		eventBus:    eventBus,
		tracer:      tracer,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	interviewService := services.NewInterview(a.configs, flow.NewEngine(a.logger))
	judgmentService := services.NewJudgment(
		judgment.NewEngine(a.configs, a.logger),
		a.configs,
		a.persistence,
		a.eventBus,
		a.tracer,
		a.logger,
	)

	handlers := web.NewAPIHandlers(interviewService, judgmentService, a.validate)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Shinsa API")
	})

	s := app.Group("/sessions")
	s.Post("/", handlers.StartSession)
	s.Get("/:id", handlers.GetSession)
	s.Post("/:id/answers", handlers.AnswerQuestion)
	s.Post("/:id/back", handlers.GoBack)

	j := app.Group("/judgments")
	j.Post("/", handlers.ExecuteJudgment)
	j.Put("/:subjectId", handlers.SaveJudgment)
	j.Get("/:subjectId", handlers.GetJudgment)

	app.Get("/health", handlers.HealthCheck)

	// Operational escape hatch: force the next configuration reads to hit
	// the store without waiting for the freshness window or an update event.
	app.Post("/cache/clear", func(c fiber.Ctx) error {
		a.configs.ClearCache()

		return c.SendStatus(fiber.StatusNoContent)
	})

	return app
}

// Start subscribes to configuration update events and serves the API until
// the listener stops.
func (a *API) Start(ctx context.Context, port int) error {
	if a.eventBus != nil {
		err := a.eventBus.Handle(events.ConfigurationUpdatedEvent, func(ctx context.Context, event interface{}) error {
			updated, ok := event.(*events.ConfigurationUpdated)
			if !ok {
				return nil
			}

			a.logger.InfoContext(ctx, "Configuration updated, clearing cache",
				"kind", string(updated.Kind), "updated_by", updated.UpdatedBy)
			a.configs.ClearCache()

			return nil
		})
		if err != nil {
			return err
		}

		err = a.eventBus.Subscribe(ctx)
		if err != nil {
			return err
		}
	}

	app := a.App()

	return app.Listen(":" + strconv.Itoa(port))
}
