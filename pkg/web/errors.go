package web

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"

	"github.com/hokensys/shinsa/pkg/configstore"
	"github.com/hokensys/shinsa/pkg/flow"
	"github.com/hokensys/shinsa/pkg/judgment"
	"github.com/hokensys/shinsa/pkg/models"
	"github.com/hokensys/shinsa/pkg/persistence"
	"github.com/hokensys/shinsa/pkg/services"
)

// judgmentProblem extends the problem document with the uniform fallback
// result so callers can still present the degraded outcome.
type judgmentProblem struct {
	*problems.Problem
	Eligibility models.InsuranceEligibility `json:"eligibility"`
	Summary     string                      `json:"summary"`
}

func noApplicableRules(c fiber.Ctx, err error, result *services.ExecuteResponse) error {
	problem := problems.NewStatusProblem(422).
		WithInstance(c.Path()).
		WithType("no_applicable_rules").
		WithDetail(err.Error())

	return c.Status(fiber.StatusUnprocessableEntity).JSON(judgmentProblem{
		Problem:     problem,
		Eligibility:    result.Eligibility,
		Summary:        result.Summary,
	})
}

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

func internalError(c fiber.Ctx, err error) error {
	problem := problems.NewStatusProblem(500).
		WithInstance(c.Path()).
		WithType("internal_error").
		WithError(err)

	return c.Status(fiber.StatusInternalServerError).JSON(problem)
}

// handleServiceError provides typed error handling for service layer errors.
func handleServiceError(c fiber.Ctx, err error) error {
	switch {
	case services.IsNotFoundError(err):
		return notFound(c, err.Error())

	case persistence.IsJudgmentNotFound(err):
		problem := problems.NewStatusProblem(404).
			WithInstance(c.Path()).
			WithType("judgment_not_found").
			WithDetail("no saved judgment for subject")

		return c.Status(fiber.StatusNotFound).JSON(problem)

	case services.IsConflictError(err), errors.Is(err, flow.ErrFlowCompleted):
		problem := problems.NewStatusProblem(409).
			WithInstance(c.Path()).
			WithType("conflict").
			WithDetail(err.Error())

		return c.Status(fiber.StatusConflict).JSON(problem)

	case judgment.IsNoApplicableRules(err):
		problem := problems.NewStatusProblem(422).
			WithInstance(c.Path()).
			WithType("no_applicable_rules").
			WithDetail(err.Error())

		return c.Status(fiber.StatusUnprocessableEntity).JSON(problem)

	case configstore.IsConfigurationUnavailable(err):
		problem := problems.NewStatusProblem(502).
			WithInstance(c.Path()).
			WithType("configuration_unavailable").
			WithDetail("configuration source is unavailable")

		return c.Status(fiber.StatusBadGateway).JSON(problem)

	case services.IsValidationError(err),
		errors.Is(err, flow.ErrIncompleteDateRange),
		errors.Is(err, flow.ErrEmptyAnswer),
		errors.Is(err, flow.ErrNoHistory):
		return badRequest(c, err.Error())

	default:
		// Configuration corruption and unexpected errors stay opaque 500s.
		return internalError(c, err)
	}
}
