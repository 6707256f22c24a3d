package recommend

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Laza-adina/drsp-vak/internal/config"
	"github.com/Laza-adina/drsp-vak/internal/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testAlert() (models.Alert, models.Disease, models.District) {
	alert := models.Alert{
		ID:                 "alert-1",
		Type:               "major cluster",
		Severity:           models.SeverityAlert,
		CaseCount:          8,
		TriggeredThreshold: 5,
	}
	disease := models.Disease{Name: "Measles", ICD10Code: "B05"}
	district := models.District{Name: "Antsirabe I", Population: 250000}
	return alert, disease, district
}

func TestNewFromConfigSelectsImplementation(t *testing.T) {
	if _, ok := NewFromConfig(config.RecommendConfig{}, testLogger()).(*StaticRecommender); !ok {
		t.Error("expected static recommender without API key")
	}
	if _, ok := NewFromConfig(config.RecommendConfig{APIKey: "gsk-test"}, testLogger()).(*GroqClient); !ok {
		t.Error("expected groq client with API key")
	}
}

func TestStaticRecommenderBySeverity(t *testing.T) {
	s := NewStaticRecommender()
	alert, disease, district := testAlert()

	for _, severity := range []models.Severity{models.SeverityWarning, models.SeverityAlert, models.SeverityCritical} {
		alert.Severity = severity
		actions, err := s.RecommendActions(context.Background(), alert, disease, district)
		if err != nil {
			t.Fatalf("severity %s: unexpected error: %v", severity, err)
		}
		if len(actions) < 3 {
			t.Errorf("severity %s: expected at least 3 actions, got %d", severity, len(actions))
		}
		if !strings.Contains(actions[0], "Measles") || !strings.Contains(actions[0], "Antsirabe I") {
			t.Errorf("severity %s: lead action should name disease and district: %q", severity, actions[0])
		}
	}

	alert.Severity = models.SeverityCritical
	critical, _ := s.RecommendActions(context.Background(), alert, disease, district)
	alert.Severity = models.SeverityWarning
	warning, _ := s.RecommendActions(context.Background(), alert, disease, district)
	if len(critical) <= len(warning) {
		t.Errorf("critical alerts should carry more actions than warnings: %d vs %d", len(critical), len(warning))
	}
}

func TestGroqClientParsesActions(t *testing.T) {
	var gotModel string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Model string `json:"model"`
		}
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &req)
		gotModel = req.Model

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"choices": [{"message": {"role": "assistant",
				"content": "{\"actions\": [\"Investigate the cluster\", \"Notify regional authorities\", \"  \", \"Check vaccine stocks\"]}"}}]
		}`))
	}))
	defer server.Close()

	client := NewGroqClient(config.RecommendConfig{
		APIKey:  "gsk-test",
		BaseURL: server.URL,
		Model:   "llama-3.3-70b-versatile",
	}, testLogger())

	alert, disease, district := testAlert()
	actions, err := client.RecommendActions(context.Background(), alert, disease, district)
	if err != nil {
		t.Fatalf("RecommendActions returned error: %v", err)
	}

	if gotModel != "llama-3.3-70b-versatile" {
		t.Errorf("request model = %q", gotModel)
	}

	want := []string{"Investigate the cluster", "Notify regional authorities", "Check vaccine stocks"}
	if len(actions) != len(want) {
		t.Fatalf("expected %d actions, got %d: %v", len(want), len(actions), actions)
	}
	for i := range want {
		if actions[i] != want[i] {
			t.Errorf("action %d = %q, want %q", i, actions[i], want[i])
		}
	}
}

func TestGroqClientFallsBackOnAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"message": "rate limit"}}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewGroqClient(config.RecommendConfig{
		APIKey:  "gsk-test",
		BaseURL: server.URL,
		Model:   "llama-3.3-70b-versatile",
	}, testLogger())

	alert, disease, district := testAlert()
	actions, err := client.RecommendActions(context.Background(), alert, disease, district)
	if err != nil {
		t.Fatalf("expected static fallback, got error: %v", err)
	}
	if len(actions) == 0 {
		t.Fatal("expected fallback actions")
	}
}

func TestGroqClientFallsBackOnBadPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"choices": [{"message": {"role": "assistant", "content": "not json at all"}}]
		}`))
	}))
	defer server.Close()

	client := NewGroqClient(config.RecommendConfig{
		APIKey:  "gsk-test",
		BaseURL: server.URL,
		Model:   "llama-3.3-70b-versatile",
	}, testLogger())

	alert, disease, district := testAlert()
	actions, err := client.RecommendActions(context.Background(), alert, disease, district)
	if err != nil {
		t.Fatalf("expected static fallback, got error: %v", err)
	}
	if len(actions) == 0 {
		t.Fatal("expected fallback actions")
	}
}

func TestParseActions(t *testing.T) {
	if _, err := parseActions(`{"actions": []}`); err == nil {
		t.Error("expected error for empty action list")
	}
	if _, err := parseActions(`{}`); err == nil {
		t.Error("expected error for missing actions field")
	}

	actions, err := parseActions(`{"actions": ["a", "b"]}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(actions) != 2 {
		t.Errorf("expected 2 actions, got %d", len(actions))
	}
}
