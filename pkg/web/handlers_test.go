package web_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hokensys/shinsa/pkg/configstore"
	"github.com/hokensys/shinsa/pkg/flow"
	"github.com/hokensys/shinsa/pkg/judgment"
	"github.com/hokensys/shinsa/pkg/models"
	"github.com/hokensys/shinsa/pkg/persistence/file"
	"github.com/hokensys/shinsa/pkg/services"
	"github.com/hokensys/shinsa/pkg/web"
)

type stubStore struct {
	flows    []*models.QuestionFlowConfig
	configs  []*models.InsuranceJudgmentConfig
	offices  []*models.OfficeMaster
	failWith error
}

func (s *stubStore) QuestionFlows(_ context.Context) ([]*models.QuestionFlowConfig, error) {
	if s.failWith != nil {
		return nil, s.failWith
	}

	return s.flows, nil
}

func (s *stubStore) JudgmentConfigs(_ context.Context) ([]*models.InsuranceJudgmentConfig, error) {
	if s.failWith != nil {
		return nil, s.failWith
	}

	return s.configs, nil
}

func (s *stubStore) ValidationRules(_ context.Context) ([]*models.ValidationRule, error) {
	return nil, nil
}

func (s *stubStore) CalculationRules(_ context.Context) ([]*models.CalculationRule, error) {
	return nil, nil
}

func (s *stubStore) ReasonTemplates(_ context.Context) ([]*models.ReasonTemplate, error) {
	return nil, nil
}

func (s *stubStore) MasterData(_ context.Context) ([]*models.OfficeMaster, error) {
	return s.offices, nil
}

func (s *stubStore) HealthCheck(_ context.Context) error { return nil }

func (s *stubStore) Close(_ context.Context) error { return nil }

func yesNoFlow() *models.QuestionFlowConfig {
	return &models.QuestionFlowConfig{
		ID:                "flow-basic",
		Version:           1,
		Active:            true,
		InitialQuestionID: "q_employed",
		Questions: []models.QuestionConfig{
			{
				ID:   "q_employed",
				Text: "Are you currently employed?",
				Type: models.QuestionTypeYesNo,
				Next: []models.NextQuestionRule{
					{ConditionType: models.TransitionEquals, ConditionValue: "yes", IsEndCondition: true},
					{ConditionType: models.TransitionEquals, ConditionValue: "no", IsEndCondition: true},
				},
			},
		},
	}
}

func regularConfig() *models.InsuranceJudgmentConfig {
	return &models.InsuranceJudgmentConfig{
		ID:             "judgment-regular",
		Version:        1,
		Active:         true,
		EmploymentType: "regular",
		Rules: []models.InsuranceTypeRule{
			{
				InsuranceType: models.InsuranceHealth,
				Conditions: []models.JudgmentCondition{
					{
						Priority: 1,
						Expressions: []models.ConditionExpression{
							{QuestionID: "q_employed", Operator: models.OperatorEquals, Value: "yes"},
						},
						Result: models.JudgmentResult{Eligible: true, Reason: "full-time employee"},
					},
				},
			},
		},
	}
}

func setupTestApp(t *testing.T, store *stubStore) *fiber.App {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	cache := configstore.NewCache(store, time.Minute, logger)
	persist := file.NewPersistence(t.TempDir())

	interviewService := services.NewInterview(cache, flow.NewEngine(logger))
	judgmentService := services.NewJudgment(
		judgment.NewEngine(cache, logger), cache, persist, nil, nil, logger)

	handlers := web.NewAPIHandlers(interviewService, judgmentService,
		validator.New(validator.WithRequiredStructEnabled()))

	app := fiber.New()

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

	return app
}

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	return req
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()

	defer func() { _ = resp.Body.Close() }()

	var value T

	require.NoError(t, json.NewDecoder(resp.Body).Decode(&value))

	return value
}

func TestStartSession(t *testing.T) {
	app := setupTestApp(t, &stubStore{flows: []*models.QuestionFlowConfig{yesNoFlow()}})

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/sessions/", map[string]string{"flow_id": "flow-basic"}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	session := decodeBody[services.InterviewSession](t, resp)
	assert.NotEmpty(t, session.ID)
	require.NotNil(t, session.CurrentQuestion)
	assert.Equal(t, "q_employed", session.CurrentQuestion.ID)
}

func TestStartSession_UnknownFlow(t *testing.T) {
	app := setupTestApp(t, &stubStore{flows: []*models.QuestionFlowConfig{yesNoFlow()}})

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/sessions/", map[string]string{"flow_id": "missing"}))
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestStartSession_MissingFlowID(t *testing.T) {
	app := setupTestApp(t, &stubStore{flows: []*models.QuestionFlowConfig{yesNoFlow()}})

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/sessions/", map[string]string{}))
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAnswerQuestion_CompletesFlow(t *testing.T) {
	app := setupTestApp(t, &stubStore{flows: []*models.QuestionFlowConfig{yesNoFlow()}})

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/sessions/", map[string]string{"flow_id": "flow-basic"}))
	require.NoError(t, err)

	session := decodeBody[services.InterviewSession](t, resp)

	resp, err = app.Test(jsonRequest(t, http.MethodPost, "/sessions/"+session.ID+"/answers", map[string]string{"value": "yes"}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	session = decodeBody[services.InterviewSession](t, resp)
	assert.True(t, session.State.Completed)
}

func TestAnswerQuestion_EmptyAnswer(t *testing.T) {
	app := setupTestApp(t, &stubStore{flows: []*models.QuestionFlowConfig{yesNoFlow()}})

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/sessions/", map[string]string{"flow_id": "flow-basic"}))
	require.NoError(t, err)

	session := decodeBody[services.InterviewSession](t, resp)

	resp, err = app.Test(jsonRequest(t, http.MethodPost, "/sessions/"+session.ID+"/answers", map[string]string{}))
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGoBack_OnInitialQuestion(t *testing.T) {
	app := setupTestApp(t, &stubStore{flows: []*models.QuestionFlowConfig{yesNoFlow()}})

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/sessions/", map[string]string{"flow_id": "flow-basic"}))
	require.NoError(t, err)

	session := decodeBody[services.InterviewSession](t, resp)

	resp, err = app.Test(jsonRequest(t, http.MethodPost, "/sessions/"+session.ID+"/back", nil))
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestExecuteJudgment(t *testing.T) {
	app := setupTestApp(t, &stubStore{configs: []*models.InsuranceJudgmentConfig{regularConfig()}})

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/judgments/", web.ExecuteJudgmentRequest{
		SubjectID:      "subj-1",
		Age:            45,
		EmploymentType: "regular",
		Answers:        map[string]string{"q_employed": "yes"},
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	result := decodeBody[services.ExecuteResponse](t, resp)
	assert.True(t, result.Eligibility.HealthInsurance.Eligible)
	require.NotNil(t, result.Eligibility.CareInsurance)
	assert.True(t, result.Eligibility.CareInsurance.Eligible)
}

func TestExecuteJudgment_UnknownEmploymentType(t *testing.T) {
	app := setupTestApp(t, &stubStore{configs: []*models.InsuranceJudgmentConfig{regularConfig()}})

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/judgments/", web.ExecuteJudgmentRequest{
		SubjectID:      "subj-1",
		Age:            30,
		EmploymentType: "freelancer",
		Answers:        map[string]string{},
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	// The problem document carries the uniform fallback result.
	body := decodeBody[struct {
		Status      int                         `json:"status"`
		Eligibility models.InsuranceEligibility `json:"eligibility"`
		Summary     string                      `json:"summary"`
	}](t, resp)
	assert.Equal(t, http.StatusUnprocessableEntity, body.Status)
	assert.False(t, body.Eligibility.HealthInsurance.Eligible)
	assert.Equal(t, judgment.ReasonProcessingError, body.Eligibility.HealthInsurance.Reason)
	assert.Equal(t, judgment.SummaryNoneEligible, body.Summary)
}

func TestExecuteJudgment_BirthDateOverridesAge(t *testing.T) {
	app := setupTestApp(t, &stubStore{configs: []*models.InsuranceJudgmentConfig{regularConfig()}})

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/judgments/", web.ExecuteJudgmentRequest{
		SubjectID:      "subj-1",
		BirthDate:      time.Now().UTC().AddDate(-45, 0, -1).Format("2006-01-02"),
		Age:            20,
		EmploymentType: "regular",
		Answers:        map[string]string{"q_employed": "yes"},
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	result := decodeBody[services.ExecuteResponse](t, resp)
	require.NotNil(t, result.Eligibility.CareInsurance)
	assert.True(t, result.Eligibility.CareInsurance.Eligible)
}

func TestExecuteJudgment_FromCompletedSession(t *testing.T) {
	app := setupTestApp(t, &stubStore{
		flows:   []*models.QuestionFlowConfig{yesNoFlow()},
		configs: []*models.InsuranceJudgmentConfig{regularConfig()},
	})

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/sessions/", map[string]string{"flow_id": "flow-basic"}))
	require.NoError(t, err)

	session := decodeBody[services.InterviewSession](t, resp)

	resp, err = app.Test(jsonRequest(t, http.MethodPost, "/sessions/"+session.ID+"/answers", map[string]string{"value": "yes"}))
	require.NoError(t, err)

	_ = decodeBody[services.InterviewSession](t, resp)

	resp, err = app.Test(jsonRequest(t, http.MethodPost, "/judgments/", web.ExecuteJudgmentRequest{
		SubjectID:      "subj-1",
		SessionID:      session.ID,
		Age:            50,
		EmploymentType: "regular",
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	result := decodeBody[services.ExecuteResponse](t, resp)
	assert.True(t, result.Eligibility.HealthInsurance.Eligible)
}

func TestSaveAndGetJudgment(t *testing.T) {
	office := &models.OfficeMaster{
		ID: "office-1", Version: 1, Active: true,
		OfficeNumber: "05-678", OfficeRegion: "27", CompanyID: "co-1",
	}
	app := setupTestApp(t, &stubStore{offices: []*models.OfficeMaster{office}})

	resp, err := app.Test(jsonRequest(t, http.MethodPut, "/judgments/subj-1", web.SaveJudgmentRequest{
		EmployeeNumber: "emp-1",
		BirthDate:      "1980-04-01",
		Age:            45,
		EmploymentType: "regular",
		CompanyID:      "co-1",
		OfficeNumber:   "05-678",
		Eligibility: models.InsuranceEligibility{
			HealthInsurance: models.EligibilityDecision{Eligible: true, Reason: "full-time employee"},
		},
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	saved := decodeBody[models.SavedJudgment](t, resp)
	assert.Equal(t, "27", saved.OfficeRegion)

	resp, err = app.Test(jsonRequest(t, http.MethodGet,
		"/judgments/subj-1?employee_number=emp-1&office_number=05-678&company_id=co-1", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	loaded := decodeBody[models.SavedJudgment](t, resp)
	assert.Equal(t, "emp-1", loaded.EmployeeNumber)
}

func TestGetJudgment_StaleIdentity(t *testing.T) {
	office := &models.OfficeMaster{
		ID: "office-1", Version: 1, Active: true,
		OfficeNumber: "05-678", OfficeRegion: "27", CompanyID: "co-1",
	}
	app := setupTestApp(t, &stubStore{offices: []*models.OfficeMaster{office}})

	resp, err := app.Test(jsonRequest(t, http.MethodPut, "/judgments/subj-1", web.SaveJudgmentRequest{
		EmployeeNumber: "emp-1",
		CompanyID:      "co-1",
		OfficeNumber:   "05-678",
	}))
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, err = app.Test(jsonRequest(t, http.MethodGet,
		"/judgments/subj-1?employee_number=emp-2&office_number=05-678&company_id=co-1", nil))
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestGetJudgment_NotFound(t *testing.T) {
	app := setupTestApp(t, &stubStore{})

	resp, err := app.Test(jsonRequest(t, http.MethodGet,
		"/judgments/subj-none?employee_number=emp-1&office_number=05-678&company_id=co-1", nil))
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetJudgment_MissingIdentityParams(t *testing.T) {
	app := setupTestApp(t, &stubStore{})

	resp, err := app.Test(jsonRequest(t, http.MethodGet, "/judgments/subj-1", nil))
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHealthCheck(t *testing.T) {
	app := setupTestApp(t, &stubStore{})

	resp, err := app.Test(jsonRequest(t, http.MethodGet, "/health", nil))
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
