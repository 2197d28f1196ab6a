package smoketest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/scoregraph/scoregraph/pkg/logger"
)

// scenario is one query fired at the engine with the envelope kind it must
// answer with.
type scenario struct {
	name     string
	body     map[string]string
	wantKind string
	// wantStatus 0 means 200.
	wantStatus int
	wantCode   string
}

// scenarios builds the run list from the seeded topics.
func scenarios(cfg *Config) []scenario {
	return []scenario{
		{
			name:     "find_highest",
			body:     map[string]string{"intent_kind": "find_highest", "topic_a": cfg.TopicA, "grade": cfg.Grade},
			wantKind: "scalar_answer",
		},
		{
			name:     "find_top_students",
			body:     map[string]string{"intent_kind": "find_top_students", "topic_a": cfg.TopicA, "grade": cfg.Grade},
			wantKind: "ranked_list",
		},
		{
			name:     "get_statistics",
			body:     map[string]string{"intent_kind": "get_statistics", "topic_a": cfg.TopicA, "grade": cfg.Grade},
			wantKind: "statistics",
		},
		{
			name:     "compare_topics",
			body:     map[string]string{"intent_kind": "compare_topics", "topic_a": cfg.TopicA, "topic_b": cfg.TopicB, "grade": cfg.Grade},
			wantKind: "comparison",
		},
		{
			name:     "form_teams",
			body:     map[string]string{"intent_kind": "form_teams", "topic_a": cfg.TopicA, "topic_b": cfg.TopicB, "grade": cfg.Grade},
			wantKind: "team_set",
		},
		{
			name:       "unknown_topic",
			body:       map[string]string{"intent_kind": "form_teams", "topic_a": "No Such Topic", "grade": cfg.Grade},
			wantStatus: http.StatusNotFound,
			wantCode:   "topic_not_found",
		},
		{
			name:       "unsupported_intent",
			body:       map[string]string{"intent_kind": "find_weakest", "topic_a": cfg.TopicA},
			wantStatus: http.StatusBadRequest,
			wantCode:   "unsupported_intent",
		},
	}
}

// Run executes every scenario against the engine at cfg.BaseURL. The first
// failure aborts the run.
func Run(ctx context.Context, cfg *Config) error {
	cfg.Normalize()
	log := logger.Get().Named("smoke")
	client := &http.Client{Timeout: cfg.Timeout}

	if err := checkHealth(ctx, client, cfg.BaseURL); err != nil {
		return err
	}

	for _, sc := range scenarios(cfg) {
		start := time.Now()
		if err := runOne(ctx, client, cfg.BaseURL, sc); err != nil {
			return fmt.Errorf("scenario %s: %w", sc.name, err)
		}
		if cfg.Verbose {
			log.Info(ctx, "scenario passed",
				logger.String("scenario", sc.name),
				logger.Duration("elapsed", time.Since(start)),
			)
		}
	}

	log.Info(ctx, "smoke run passed", logger.Int("scenarios", len(scenarios(cfg))))
	return nil
}

func checkHealth(ctx context.Context, client *http.Client, baseURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/healthz", http.NoBody)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("engine unreachable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("engine unhealthy: status %d", resp.StatusCode)
	}
	return nil
}

func runOne(ctx context.Context, client *http.Client, baseURL string, sc scenario) error {
	payload, err := json.Marshal(sc.body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/query", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var decoded map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return fmt.Errorf("bad response body: %w", err)
	}

	wantStatus := sc.wantStatus
	if wantStatus == 0 {
		wantStatus = http.StatusOK
	}
	if resp.StatusCode != wantStatus {
		return fmt.Errorf("status %d, want %d (body %v)", resp.StatusCode, wantStatus, decoded)
	}

	if sc.wantKind != "" {
		if kind, _ := decoded["kind"].(string); kind != sc.wantKind {
			return fmt.Errorf("kind %q, want %q", kind, sc.wantKind)
		}
	}
	if sc.wantCode != "" {
		if code, _ := decoded["code"].(string); code != sc.wantCode {
			return fmt.Errorf("error code %q, want %q", code, sc.wantCode)
		}
	}
	return nil
}
