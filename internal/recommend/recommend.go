// Package recommend produces response recommendations for epidemic
// alerts. The primary implementation calls an OpenAI-compatible LLM
// endpoint (Groq); a deterministic fallback serves deployments without
// an API key.
package recommend

import (
	"context"
	"log/slog"

	"github.com/Laza-adina/drsp-vak/internal/config"
	"github.com/Laza-adina/drsp-vak/internal/models"
)

// Recommender generates recommended response actions for an alert.
type Recommender interface {
	RecommendActions(ctx context.Context, alert models.Alert, disease models.Disease, district models.District) ([]string, error)
}

// NewFromConfig returns the LLM-backed recommender when an API key is
// configured and the deterministic fallback otherwise.
func NewFromConfig(cfg config.RecommendConfig, logger *slog.Logger) Recommender {
	if cfg.APIKey == "" {
		logger.Info("no recommendation API key configured, using static recommender")
		return NewStaticRecommender()
	}
	return NewGroqClient(cfg, logger)
}
