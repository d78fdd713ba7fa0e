package web

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/hokensys/shinsa/pkg/flow"
	"github.com/hokensys/shinsa/pkg/judgment"
	"github.com/hokensys/shinsa/pkg/services"
)

type APIHandlers struct {
	interviewService *services.Interview
	judgmentService  *services.Judgment
	validator        *validator.Validate
}

func NewAPIHandlers(
	interviewService *services.Interview,
	judgmentService *services.Judgment,
	validator *validator.Validate,
) *APIHandlers {
	return &APIHandlers{
		interviewService: interviewService,
		judgmentService:  judgmentService,
		validator:        validator,
	}
}

func (h *APIHandlers) StartSession(c fiber.Ctx) error {
	var req StartSessionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	session, err := h.interviewService.Start(c.Context(), req.FlowID)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(session)
}

func (h *APIHandlers) GetSession(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Session ID is required")
	}

	session, err := h.interviewService.Get(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(session)
}

func (h *APIHandlers) AnswerQuestion(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Session ID is required")
	}

	var req AnswerRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	answer := flow.Answer{
		Value:      req.Value,
		RangeStart: req.RangeStart,
		RangeEnd:   req.RangeEnd,
	}

	session, err := h.interviewService.Answer(c.Context(), id, answer)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(session)
}

func (h *APIHandlers) GoBack(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Session ID is required")
	}

	session, err := h.interviewService.Back(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(session)
}

func (h *APIHandlers) ExecuteJudgment(c fiber.Ctx) error {
	var req ExecuteJudgmentRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	answers := req.Answers
	if answers == nil && req.SessionID != "" {
		sessionAnswers, err := h.interviewService.Answers(req.SessionID)
		if err != nil {
			return handleServiceError(c, err)
		}

		answers = sessionAnswers
	}

	var birthDate time.Time

	if req.BirthDate != "" {
		parsed, err := time.Parse(birthDateLayout, req.BirthDate)
		if err != nil {
			return badRequest(c, "Invalid birth date, expected YYYY-MM-DD")
		}

		birthDate = parsed
	}

	result, err := h.judgmentService.Execute(c.Context(), services.ExecuteRequest{
		SubjectID:      req.SubjectID,
		BirthDate:      birthDate,
		Age:            req.Age,
		EmploymentType: req.EmploymentType,
		Answers:        answers,
	})
	if err != nil {
		if judgment.IsNoApplicableRules(err) && result != nil {
			return noApplicableRules(c, err, result)
		}

		return handleServiceError(c, err)
	}

	return c.JSON(result)
}

func (h *APIHandlers) SaveJudgment(c fiber.Ctx) error {
	subjectID := c.Params("subjectId")
	if subjectID == "" {
		return badRequest(c, "Subject ID is required")
	}

	var req SaveJudgmentRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	var birthDate time.Time

	if req.BirthDate != "" {
		parsed, err := time.Parse(birthDateLayout, req.BirthDate)
		if err != nil {
			return badRequest(c, "Invalid birth date, expected YYYY-MM-DD")
		}

		birthDate = parsed
	}

	saved, err := h.judgmentService.Save(c.Context(), services.SaveRequest{
		SubjectID:      subjectID,
		EmployeeName:   req.EmployeeName,
		EmployeeNumber: req.EmployeeNumber,
		BirthDate:      birthDate,
		Age:            req.Age,
		EmploymentType: req.EmploymentType,
		CompanyID:      req.CompanyID,
		OfficeNumber:   req.OfficeNumber,
		Answers:        req.Answers,
		Eligibility:    req.Eligibility,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(saved)
}

func (h *APIHandlers) GetJudgment(c fiber.Ctx) error {
	subjectID := c.Params("subjectId")
	if subjectID == "" {
		return badRequest(c, "Subject ID is required")
	}

	req := services.LoadRequest{
		SubjectID:      subjectID,
		EmployeeNumber: c.Query("employee_number"),
		OfficeNumber:   c.Query("office_number"),
		CompanyID:      c.Query("company_id"),
	}

	if req.EmployeeNumber == "" || req.OfficeNumber == "" || req.CompanyID == "" {
		return badRequest(c, "employee_number, office_number and company_id are required")
	}

	saved, err := h.judgmentService.Load(c.Context(), req)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(saved)
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	configCheck, cfgOk := h.interviewService.HealthCheck(c.Context())
	repositoryCheck, repOk := h.judgmentService.HealthCheck(c.Context())

	status := "unhealthy"
	message := "Shinsa API is unhealthy"
	httpStatus := http.StatusInternalServerError

	if cfgOk && repOk {
		status = "healthy"
		message = "Shinsa API is healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"configuration": configCheck,
			"repository":    repositoryCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}
