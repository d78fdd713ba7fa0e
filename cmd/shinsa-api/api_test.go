package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hokensys/shinsa/pkg/cmd"
	"github.com/hokensys/shinsa/pkg/persistence/file"
	"github.com/hokensys/shinsa/pkg/services"
)

func writeConfigFile(t *testing.T, root, dir, name, content string) {
	t.Helper()

	path := filepath.Join(root, dir)
	require.NoError(t, os.MkdirAll(path, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(path, name), []byte(content), 0o600))
}

func writeConfigTree(t *testing.T) string {
	t.Helper()

	root := t.TempDir()

	writeConfigFile(t, root, "question_flows", "employment.json", `{
		"id": "flow-employment",
		"version": 1,
		"active": true,
		"initial_question_id": "q_employed",
		"questions": [
			{
				"id": "q_employed",
				"text": "Are you currently employed?",
				"type": "yes_no",
				"next": [
					{"condition_type": "equals", "condition_value": "yes", "is_end_condition": true},
					{"condition_type": "equals", "condition_value": "no", "is_end_condition": true}
				]
			}
		]
	}`)

	writeConfigFile(t, root, "judgment_rules", "regular.json", `{
		"id": "judgment-regular",
		"version": 1,
		"active": true,
		"employment_type": "regular",
		"rules": [
			{
				"insurance_type": "health",
				"conditions": [
					{
						"priority": 1,
						"expressions": [
							{"question_id": "q_employed", "operator": "equals", "value": "yes"}
						],
						"result": {"eligible": true, "reason": "full-time employee"}
					}
				]
			}
		]
	}`)

	writeConfigFile(t, root, "master_data", "office.json", `{
		"id": "office-1",
		"version": 1,
		"active": true,
		"name": "Head Office",
		"office_number": "05-678",
		"office_region": "27",
		"company_id": "co-1"
	}`)

	return root
}

func setupTestAPI(t *testing.T) *fiber.App {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	configs, err := cmd.NewConfigStore(context.Background(), logger, writeConfigTree(t), time.Minute)
	require.NoError(t, err)

	persist := file.NewPersistence(t.TempDir())

	api := NewAPI(logger, configs, persist, nil, nil)

	return api.App()
}

func TestAPI_RootEndpoint(t *testing.T) {
	app := setupTestAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "Shinsa API", string(body))
}

func TestAPI_Liveness(t *testing.T) {
	app := setupTestAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/livez", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAPI_HealthCheck(t *testing.T) {
	app := setupTestAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Accept", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAPI_SessionAndJudgmentLifecycle(t *testing.T) {
	app := setupTestAPI(t)

	// Start a session on the configured flow.
	req := httptest.NewRequest(http.MethodPost, "/sessions/",
		strings.NewReader(`{"flow_id": "flow-employment"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var session services.InterviewSession

	err = json.NewDecoder(resp.Body).Decode(&session)
	_ = resp.Body.Close()
	require.NoError(t, err)
	require.NotNil(t, session.CurrentQuestion)
	assert.Equal(t, "q_employed", session.CurrentQuestion.ID)

	// Answer the only question; the flow completes.
	req = httptest.NewRequest(http.MethodPost, "/sessions/"+session.ID+"/answers",
		strings.NewReader(`{"value": "yes"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	err = json.NewDecoder(resp.Body).Decode(&session)
	_ = resp.Body.Close()
	require.NoError(t, err)
	assert.True(t, session.State.Completed)

	// Run the judgment from the completed session.
	req = httptest.NewRequest(http.MethodPost, "/judgments/",
		strings.NewReader(`{"subject_id": "subj-1", "session_id": "`+session.ID+`", "age": 45, "employment_type": "regular"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result services.ExecuteResponse

	err = json.NewDecoder(resp.Body).Decode(&result)
	_ = resp.Body.Close()
	require.NoError(t, err)
	assert.True(t, result.Eligibility.HealthInsurance.Eligible)
	require.NotNil(t, result.Eligibility.CareInsurance)
	assert.True(t, result.Eligibility.CareInsurance.Eligible)

	// Persist it against the configured office.
	req = httptest.NewRequest(http.MethodPut, "/judgments/subj-1",
		strings.NewReader(`{
			"employee_number": "emp-1",
			"age": 45,
			"employment_type": "regular",
			"company_id": "co-1",
			"office_number": "05-678",
			"eligibility": {
				"health_insurance": {"eligible": true, "reason": "full-time employee"},
				"pension_insurance": {"eligible": false, "reason": "judgment condition indeterminate"}
			}
		}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}
