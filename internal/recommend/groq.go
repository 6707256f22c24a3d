package recommend

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/Laza-adina/drsp-vak/internal/config"
	"github.com/Laza-adina/drsp-vak/internal/models"
)

const systemPrompt = `You are a public health advisor for a regional disease surveillance
directorate in Madagascar. Given an epidemic alert, propose concrete,
locally feasible response actions for the district health team.
Respond with a JSON object: {"actions": ["...", "..."]}. Between 3 and
6 actions, each a single imperative sentence.`

// GroqClient generates recommendations through an OpenAI-compatible
// chat completion endpoint.
type GroqClient struct {
	client   *openai.Client
	model    string
	timeout  time.Duration
	fallback *StaticRecommender
	logger   *slog.Logger
}

// NewGroqClient creates a recommendation client for the configured
// endpoint and model.
func NewGroqClient(cfg config.RecommendConfig, logger *slog.Logger) *GroqClient {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &GroqClient{
		client:   openai.NewClientWithConfig(clientCfg),
		model:    cfg.Model,
		timeout:  30 * time.Second,
		fallback: NewStaticRecommender(),
		logger:   logger,
	}
}

// RecommendActions asks the model for response actions tailored to the
// alert. On any API or parse failure it degrades to the static
// recommendations rather than leaving the alert without guidance.
func (c *GroqClient) RecommendActions(ctx context.Context, alert models.Alert, disease models.Disease, district models.District) ([]string, error) {
	prompt := buildAlertPrompt(alert, disease, district)

	apiCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(apiCtx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: 0.3,
		MaxTokens:   600,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		c.logger.Warn("recommendation api call failed, using static fallback",
			"alert_id", alert.ID, "model", c.model, "error", err)
		return c.fallback.RecommendActions(ctx, alert, disease, district)
	}

	c.logger.Debug("recommendation generated",
		"alert_id", alert.ID,
		"model", c.model,
		"duration_ms", time.Since(start).Milliseconds())

	if len(resp.Choices) == 0 {
		c.logger.Warn("recommendation model returned no choices, using static fallback",
			"alert_id", alert.ID, "model", c.model)
		return c.fallback.RecommendActions(ctx, alert, disease, district)
	}

	actions, err := parseActions(resp.Choices[0].Message.Content)
	if err != nil {
		c.logger.Warn("failed to parse recommendation response, using static fallback",
			"alert_id", alert.ID, "error", err)
		return c.fallback.RecommendActions(ctx, alert, disease, district)
	}

	return actions, nil
}

func buildAlertPrompt(alert models.Alert, disease models.Disease, district models.District) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Alert: %s (%s)\n", alert.Type, alert.Severity)
	fmt.Fprintf(&b, "Disease: %s", disease.Name)
	if disease.ICD10Code != "" {
		fmt.Fprintf(&b, " (ICD-10 %s)", disease.ICD10Code)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "District: %s", district.Name)
	if district.Population > 0 {
		fmt.Fprintf(&b, " (population %d)", district.Population)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Cases in window: %d (threshold crossed: %d)\n", alert.CaseCount, alert.TriggeredThreshold)
	fmt.Fprintf(&b, "Detected: %s\n", alert.DetectionDate.Format("2006-01-02"))
	return b.String()
}

func parseActions(content string) ([]string, error) {
	var parsed struct {
		Actions []string `json:"actions"`
	}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, fmt.Errorf("invalid recommendation payload: %w", err)
	}

	actions := make([]string, 0, len(parsed.Actions))
	for _, a := range parsed.Actions {
		a = strings.TrimSpace(a)
		if a != "" {
			actions = append(actions, a)
		}
	}
	if len(actions) == 0 {
		return nil, fmt.Errorf("recommendation payload contained no actions")
	}

	return actions, nil
}
