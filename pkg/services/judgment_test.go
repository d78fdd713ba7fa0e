package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hokensys/shinsa/pkg/configstore"
	"github.com/hokensys/shinsa/pkg/judgment"
	"github.com/hokensys/shinsa/pkg/models"
	"github.com/hokensys/shinsa/pkg/persistence"
	"github.com/hokensys/shinsa/pkg/persistence/file"
)

func regularJudgmentConfig() *models.InsuranceJudgmentConfig {
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
			{
				InsuranceType: models.InsurancePension,
				Conditions: []models.JudgmentCondition{
					{
						Priority: 1,
						Expressions: []models.ConditionExpression{
							{QuestionID: "q_hours", Operator: models.OperatorEquals, Value: "over_30"},
						},
						Result: models.JudgmentResult{Eligible: true, Reason: "working hours above threshold"},
					},
				},
			},
		},
	}
}

func testOffice() *models.OfficeMaster {
	return &models.OfficeMaster{
		ID:           "office-1",
		Version:      1,
		Active:       true,
		Name:         "Head Office",
		OfficeNumber: "05-678",
		OfficeRegion: "27",
		CompanyID:    "co-1",
	}
}

func newTestJudgment(t *testing.T, store *stubStore) *Judgment {
	t.Helper()

	logger := testLogger()
	cache := configstore.NewCache(store, time.Minute, logger)
	persist := file.NewPersistence(t.TempDir())

	return NewJudgment(judgment.NewEngine(cache, logger), cache, persist, nil, nil, logger)
}

func TestJudgment_Execute(t *testing.T) {
	service := newTestJudgment(t, &stubStore{configs: []*models.InsuranceJudgmentConfig{regularJudgmentConfig()}})

	result, err := service.Execute(context.Background(), ExecuteRequest{
		SubjectID:      "subj-1",
		Age:            45,
		EmploymentType: "regular",
		Answers:        map[string]string{"q_employed": "yes", "q_hours": "over_30"},
	})
	require.NoError(t, err)

	assert.True(t, result.Eligibility.HealthInsurance.Eligible)
	assert.True(t, result.Eligibility.PensionInsurance.Eligible)
	require.NotNil(t, result.Eligibility.CareInsurance)
	assert.True(t, result.Eligibility.CareInsurance.Eligible)
	assert.Contains(t, result.Summary, "health insurance")
}

func TestJudgment_ExecuteUnknownEmploymentType(t *testing.T) {
	service := newTestJudgment(t, &stubStore{configs: []*models.InsuranceJudgmentConfig{regularJudgmentConfig()}})

	result, err := service.Execute(context.Background(), ExecuteRequest{
		SubjectID:      "subj-1",
		Age:            30,
		EmploymentType: "freelancer",
		Answers:        map[string]string{},
	})
	require.Error(t, err)
	assert.True(t, judgment.IsNoApplicableRules(err))

	// The uniform fallback result still travels with the error.
	require.NotNil(t, result)
	assert.False(t, result.Eligibility.HealthInsurance.Eligible)
	assert.Equal(t, judgment.ReasonProcessingError, result.Eligibility.HealthInsurance.Reason)
	assert.Equal(t, judgment.SummaryNoneEligible, result.Summary)
}

func TestJudgment_ExecuteDerivesAgeFromBirthDate(t *testing.T) {
	service := newTestJudgment(t, &stubStore{configs: []*models.InsuranceJudgmentConfig{regularJudgmentConfig()}})

	// Whoever is 45 by birth date falls in the care insurance band even when
	// the caller-supplied age says otherwise.
	result, err := service.Execute(context.Background(), ExecuteRequest{
		SubjectID:      "subj-1",
		BirthDate:      time.Now().UTC().AddDate(-45, 0, -1),
		Age:            20,
		EmploymentType: "regular",
		Answers:        map[string]string{"q_employed": "yes", "q_hours": "over_30"},
	})
	require.NoError(t, err)

	require.NotNil(t, result.Eligibility.CareInsurance)
	assert.True(t, result.Eligibility.CareInsurance.Eligible)
}

func TestJudgment_ExecuteMissingInput(t *testing.T) {
	service := newTestJudgment(t, &stubStore{})

	_, err := service.Execute(context.Background(), ExecuteRequest{
		SubjectID:      "subj-1",
		EmploymentType: "regular",
	})
	assert.ErrorIs(t, err, ErrEmployeeInfoRequired)

	_, err = service.Execute(context.Background(), ExecuteRequest{
		EmploymentType: "regular",
		Answers:        map[string]string{},
	})
	assert.ErrorIs(t, err, ErrSubjectIDRequired)
}

func TestJudgment_SaveStampsOfficeRegion(t *testing.T) {
	service := newTestJudgment(t, &stubStore{offices: []*models.OfficeMaster{testOffice()}})

	saved, err := service.Save(context.Background(), SaveRequest{
		SubjectID:      "subj-1",
		EmployeeName:   "Yamada Hanako",
		EmployeeNumber: "emp-1",
		Age:            41,
		EmploymentType: "regular",
		CompanyID:      "co-1",
		OfficeNumber:   "05-678",
		Answers:        map[string]string{"q_employed": "yes"},
		Eligibility: models.InsuranceEligibility{
			HealthInsurance: models.EligibilityDecision{Eligible: true, Reason: "full-time employee"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "27", saved.OfficeRegion)
	assert.False(t, saved.SavedAt.IsZero())
}

func TestJudgment_SaveDerivesAgeFromBirthDate(t *testing.T) {
	service := newTestJudgment(t, &stubStore{offices: []*models.OfficeMaster{testOffice()}})
	birthDate := time.Now().UTC().AddDate(-50, 0, -1)

	saved, err := service.Save(context.Background(), SaveRequest{
		SubjectID:      "subj-1",
		EmployeeNumber: "emp-1",
		BirthDate:      birthDate,
		Age:            20,
		CompanyID:      "co-1",
		OfficeNumber:   "05-678",
	})
	require.NoError(t, err)

	assert.Equal(t, models.AgeAt(birthDate, saved.SavedAt), saved.Age)
	assert.NotEqual(t, 20, saved.Age)
}

func TestJudgment_SaveUnknownOffice(t *testing.T) {
	service := newTestJudgment(t, &stubStore{offices: []*models.OfficeMaster{testOffice()}})

	_, err := service.Save(context.Background(), SaveRequest{
		SubjectID:      "subj-1",
		EmployeeNumber: "emp-1",
		CompanyID:      "co-other",
		OfficeNumber:   "05-678",
	})
	assert.ErrorIs(t, err, ErrOfficeNotFound)
}

func TestJudgment_LoadRoundTrip(t *testing.T) {
	service := newTestJudgment(t, &stubStore{offices: []*models.OfficeMaster{testOffice()}})
	ctx := context.Background()

	_, err := service.Save(ctx, SaveRequest{
		SubjectID:      "subj-1",
		EmployeeNumber: "emp-1",
		CompanyID:      "co-1",
		OfficeNumber:   "05-678",
	})
	require.NoError(t, err)

	loaded, err := service.Load(ctx, LoadRequest{
		SubjectID:      "subj-1",
		EmployeeNumber: "emp-1",
		OfficeNumber:   "05-678",
		CompanyID:      "co-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "emp-1", loaded.EmployeeNumber)
}

func TestJudgment_LoadStaleIdentity(t *testing.T) {
	service := newTestJudgment(t, &stubStore{offices: []*models.OfficeMaster{testOffice()}})
	ctx := context.Background()

	_, err := service.Save(ctx, SaveRequest{
		SubjectID:      "subj-1",
		EmployeeNumber: "emp-1",
		CompanyID:      "co-1",
		OfficeNumber:   "05-678",
	})
	require.NoError(t, err)

	// Same subject id, different employee number: the snapshot belonged to a
	// previous occupant and must be hidden.
	_, err = service.Load(ctx, LoadRequest{
		SubjectID:      "subj-1",
		EmployeeNumber: "emp-2",
		OfficeNumber:   "05-678",
		CompanyID:      "co-1",
	})
	assert.ErrorIs(t, err, ErrJudgmentStale)
	assert.True(t, IsConflictError(err))
}

func TestJudgment_LoadRequiresIdentity(t *testing.T) {
	service := newTestJudgment(t, &stubStore{})

	_, err := service.Load(context.Background(), LoadRequest{
		SubjectID:    "subj-1",
		OfficeNumber: "05-678",
		CompanyID:    "co-1",
	})
	assert.ErrorIs(t, err, ErrInvalidRequest)
	assert.True(t, IsValidationError(err))
}

func TestJudgment_LoadMissing(t *testing.T) {
	service := newTestJudgment(t, &stubStore{})

	_, err := service.Load(context.Background(), LoadRequest{
		SubjectID:      "subj-none",
		EmployeeNumber: "emp-1",
		OfficeNumber:   "05-678",
		CompanyID:      "co-1",
	})
	assert.True(t, persistence.IsJudgmentNotFound(err))
}
