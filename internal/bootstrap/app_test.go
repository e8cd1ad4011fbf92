package bootstrap

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"classify-backend/internal/llm"
	"classify-backend/internal/shared/config"
)

const classifyBody = `{"subjects":["Biology"],"grades":{"Biology":"A"},"favorite_subjects":["Biology"],"hobbies":["hiking"],"interests":["nature"],"personality_type":"ISFP"}`

func testConfig(databaseURL string) config.Config {
	cfg := config.Default()
	cfg.DatabaseURL = databaseURL
	return cfg
}

func serve(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req)
	return resp
}

func TestBuildWithoutCredential(t *testing.T) {
	gin.SetMode(gin.TestMode)
	app, err := Build(context.Background(), testConfig(""))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer app.Close()

	if _, ok := app.Completer.(llm.PlaceholderClient); !ok {
		t.Fatalf("expected placeholder completer, got %T", app.Completer)
	}

	resp := serve(t, app.Router, http.MethodGet, "/health/", "")
	var health map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &health); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if health["status"] != "ok" || health["openai_configured"] != false {
		t.Fatalf("unexpected health: %v", health)
	}

	if resp := serve(t, app.Router, http.MethodPost, "/classify/", classifyBody); resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", resp.Code)
	}
	list, err := app.ProfilesRepo.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected nothing persisted, got %d", len(list))
	}
}

func TestBuildEndToEndWithSQLite(t *testing.T) {
	gin.SetMode(gin.TestMode)
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{\"name\":\"Environmental Science\",\"description\":\"d\",\"fit_reason\":\"f\",\"career_paths\":[\"Ecologist\"]}"}}]}`))
	}))
	defer provider.Close()

	cfg := testConfig("sqlite::memory:")
	cfg.OpenAIAPIKey = "test-key"
	cfg.OpenAIBaseURL = provider.URL
	cfg.LLMBreakerCooldown = time.Second

	app, err := Build(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer app.Close()
	if app.DB == nil {
		t.Fatalf("expected sqlite database")
	}

	resp := serve(t, app.Router, http.MethodPost, "/classify/", classifyBody)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d (%s)", resp.Code, resp.Body.String())
	}
	var created struct {
		ID              int64 `json:"id"`
		Recommendations []struct {
			Name        string   `json:"name"`
			CareerPaths []string `json:"career_paths"`
		} `json:"recommendations"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(created.Recommendations) != 1 || created.Recommendations[0].Name != "Environmental Science" {
		t.Fatalf("unexpected recommendations: %+v", created.Recommendations)
	}

	health := serve(t, app.Router, http.MethodGet, "/health", "")
	if !bytes.Contains(health.Body.Bytes(), []byte(`"openai_configured":true`)) {
		t.Fatalf("expected configured health, got %s", health.Body.String())
	}
}

func TestBuildRequiresDatabaseOutsideDev(t *testing.T) {
	cfg := testConfig("")
	cfg.Env = "staging"
	if _, err := Build(context.Background(), cfg); err == nil {
		t.Fatalf("expected error without DATABASE_URL outside dev")
	}
}

func TestGeneratorOptionsFromConfig(t *testing.T) {
	cfg := config.Default()
	opts := GeneratorOptions(cfg)
	if opts.Temperature != 0.7 || opts.MaxTokens != 2000 {
		t.Fatalf("unexpected generator options: %+v", opts)
	}
}
