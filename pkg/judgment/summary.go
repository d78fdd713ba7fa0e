package judgment

import (
	"strings"

	"github.com/hokensys/shinsa/pkg/models"
)

// GenerateJudgmentSummary renders the one-line natural-language summary of
// a judgment: the display names of every eligible category, or the fixed
// none-eligible sentence.
func GenerateJudgmentSummary(eligibility *models.InsuranceEligibility) string {
	eligible := eligibility.EligibleTypes()
	if len(eligible) == 0 {
		return SummaryNoneEligible
	}

	names := make([]string, 0, len(eligible))
	for _, insuranceType := range eligible {
		names = append(names, insuranceType.DisplayName())
	}

	return "eligible for " + strings.Join(names, summarySeparator)
}
