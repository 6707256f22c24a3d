package recommend

import (
	"context"
	"fmt"

	"github.com/Laza-adina/drsp-vak/internal/models"
)

// StaticRecommender returns severity-graded stock recommendations. It
// never fails, which also makes it the degradation path for the LLM
// client.
type StaticRecommender struct{}

// NewStaticRecommender creates the deterministic recommender.
func NewStaticRecommender() *StaticRecommender {
	return &StaticRecommender{}
}

// RecommendActions returns the stock action list for the alert
// severity, with the disease and district filled into the lead action.
func (s *StaticRecommender) RecommendActions(_ context.Context, alert models.Alert, disease models.Disease, district models.District) ([]string, error) {
	lead := fmt.Sprintf("Launch an epidemiological investigation of the %s cases in %s", disease.Name, district.Name)

	switch alert.Severity {
	case models.SeverityCritical:
		return []string{
			lead,
			"Activate the district epidemic response committee",
			"Notify the regional and national health authorities immediately",
			"Secure treatment supplies and isolation capacity at referral facilities",
			"Start community awareness campaigns in the affected area",
		}, nil
	case models.SeverityAlert:
		return []string{
			lead,
			"Reinforce active case finding in surrounding health centers",
			"Verify vaccine and treatment stock levels for the district",
			"Brief community health workers on case definitions and referral",
		}, nil
	default:
		return []string{
			lead,
			"Increase surveillance frequency for the affected pair",
			"Verify case classifications with the reporting health centers",
		}, nil
	}
}
