package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/anubad/internal/cache"
	"github.com/smallbiznis/anubad/internal/clock"
	"github.com/smallbiznis/anubad/internal/config"
	"github.com/smallbiznis/anubad/internal/migration"
	"github.com/smallbiznis/anubad/internal/observability"
	"github.com/smallbiznis/anubad/internal/providers/completion"
	"github.com/smallbiznis/anubad/internal/server"
	"github.com/smallbiznis/anubad/internal/translation"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

type testEnv struct {
	app      *fx.App
	db       *gorm.DB
	history  cache.HistoryCache
	provider *providerStub
	httpSrv  *httptest.Server
	baseURL  string
}

var env *testEnv

// providerStub answers chat completion calls with a fixed reply.
type providerStub struct {
	srv   *httptest.Server
	mu    sync.Mutex
	reply string
	seen  []string
}

func newProviderStub() *providerStub {
	p := &providerStub{reply: "Hello"}
	p.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)

		p.mu.Lock()
		for _, m := range req.Messages {
			if m.Role == "user" {
				p.seen = append(p.seen, m.Content)
			}
		}
		reply := p.reply
		p.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": reply}},
			},
		})
	}))
	return p
}

func (p *providerStub) setReply(reply string) {
	p.mu.Lock()
	p.reply = reply
	p.mu.Unlock()
}

func (p *providerStub) calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.seen)
}

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)

	var err error
	env, err = startEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to start test environment:", err)
		os.Exit(1)
	}

	code := m.Run()
	env.shutdown()
	os.Exit(code)
}

func startEnv() (*testEnv, error) {
	stub := newProviderStub()

	setEnvIfEmpty("ENVIRONMENT", "test")
	setEnvIfEmpty("LOG_LEVEL", "error")
	_ = os.Setenv("DATABASE_TYPE", "sqlite")
	_ = os.Setenv("PROVIDER_TYPE", completion.TypeOpenAI)
	_ = os.Setenv("PROVIDER_BASE_URL", stub.srv.URL)
	_ = os.Setenv("PROVIDER_API_KEY", "test-key")
	_ = os.Setenv("PROVIDER_TIMEOUT_SECONDS", "5")
	_ = os.Setenv("PROMPT_WATCH", "false")
	_ = os.Setenv("HISTORY_CACHE", config.HistoryCacheMemory)

	var (
		engine  *gin.Engine
		dbConn  *gorm.DB
		history cache.HistoryCache
	)

	app := fx.New(
		fx.NopLogger,
		observability.Module,
		config.Module,
		clock.Module,
		fx.Provide(openTestDB),
		fx.Provide(func() (*snowflake.Node, error) {
			return snowflake.NewNode(1)
		}),
		migration.Module,
		completion.Module,
		cache.Module,
		translation.Module,
		fx.Provide(server.NewEngine),
		fx.Invoke(server.NewServer),
		fx.Populate(&engine, &dbConn, &history),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := app.Start(ctx); err != nil {
		stub.srv.Close()
		return nil, err
	}

	httpSrv := httptest.NewServer(engine)
	return &testEnv{
		app:      app,
		db:       dbConn,
		history:  history,
		provider: stub,
		httpSrv:  httpSrv,
		baseURL:  httpSrv.URL,
	}, nil
}

func openTestDB(lc fx.Lifecycle) (*gorm.DB, error) {
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := conn.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error { return sqlDB.Close() },
	})
	return conn, nil
}

func (e *testEnv) shutdown() {
	if e == nil {
		return
	}
	if e.httpSrv != nil {
		e.httpSrv.Close()
	}
	if e.app != nil {
		_ = e.app.Stop(context.Background())
	}
	if e.provider != nil {
		e.provider.srv.Close()
	}
}

func setEnvIfEmpty(key, value string) {
	if strings.TrimSpace(os.Getenv(key)) != "" {
		return
	}
	_ = os.Setenv(key, value)
}

func resetDatabase(t *testing.T) {
	t.Helper()
	if err := env.db.Exec(`DELETE FROM translations`).Error; err != nil {
		t.Fatalf("reset translations: %v", err)
	}
	env.history.Invalidate(context.Background())
	env.provider.setReply("Hello")
}

func doJSON(t *testing.T, method, path string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, env.baseURL+path, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, data
}

type historyItem struct {
	ID             string    `json:"id"`
	SourceText     string    `json:"sourceText"`
	TranslatedText string    `json:"translatedText"`
	CreatedAt      time.Time `json:"createdAt"`
}

func listHistory(t *testing.T) []historyItem {
	t.Helper()
	resp, body := doJSON(t, http.MethodGet, "/api/translations", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list translations: expected 200, got %d: %s", resp.StatusCode, body)
	}
	var items []historyItem
	if err := json.Unmarshal(body, &items); err != nil {
		t.Fatalf("decode history %s: %v", body, err)
	}
	return items
}

func TestE2E_HealthCheck(t *testing.T) {
	resp, body := doJSON(t, http.MethodGet, "/health", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), `"ok"`) {
		t.Fatalf("unexpected health body %s", body)
	}
}

func TestE2E_TranslateThenList(t *testing.T) {
	resetDatabase(t)
	before := env.provider.calls()

	resp, body := doJSON(t, http.MethodPost, "/api/translate", map[string]string{"text": "নমস্কাৰ"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
	}
	var out struct {
		TranslatedText string `json:"translatedText"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("decode translate response: %v", err)
	}
	if out.TranslatedText != "Hello" {
		t.Fatalf("expected Hello, got %q", out.TranslatedText)
	}
	if env.provider.calls() != before+1 {
		t.Fatalf("expected exactly one provider call")
	}

	items := listHistory(t)
	if len(items) != 1 {
		t.Fatalf("expected 1 record, got %d", len(items))
	}
	if items[0].SourceText != "নমস্কাৰ" || items[0].TranslatedText != "Hello" {
		t.Fatalf("unexpected record %+v", items[0])
	}
	if items[0].ID == "" || items[0].CreatedAt.IsZero() {
		t.Fatalf("record missing id or timestamp: %+v", items[0])
	}
}

func TestE2E_EmptyTextRejected(t *testing.T) {
	resetDatabase(t)
	before := env.provider.calls()

	resp, body := doJSON(t, http.MethodPost, "/api/translate", map[string]string{"text": ""})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", resp.StatusCode, body)
	}
	var payload map[string]string
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("decode error payload: %v", err)
	}
	if payload["field"] != "text" || payload["message"] == "" {
		t.Fatalf("unexpected error payload %v", payload)
	}
	if env.provider.calls() != before {
		t.Fatalf("provider must not be called for empty text")
	}
	if items := listHistory(t); len(items) != 0 {
		t.Fatalf("expected no records, got %d", len(items))
	}
}

func TestE2E_EmptyProviderOutputStoresNothing(t *testing.T) {
	resetDatabase(t)
	env.provider.setReply("   ")

	resp, body := doJSON(t, http.MethodPost, "/api/translate", map[string]string{"text": "নমস্কাৰ"})
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d: %s", resp.StatusCode, body)
	}
	if !strings.Contains(string(body), "An error occurred during translation") {
		t.Fatalf("unexpected body %s", body)
	}
	if items := listHistory(t); len(items) != 0 {
		t.Fatalf("expected no records, got %d", len(items))
	}
}

func TestE2E_HistoryNewestFirst(t *testing.T) {
	resetDatabase(t)

	for _, reply := range []string{"one", "two", "three"} {
		env.provider.setReply(reply)
		resp, body := doJSON(t, http.MethodPost, "/api/translate", map[string]string{"text": reply})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("translate %s: %d %s", reply, resp.StatusCode, body)
		}
	}

	first := listHistory(t)
	second := listHistory(t)
	if len(first) != 3 {
		t.Fatalf("expected 3 records, got %d", len(first))
	}
	want := []string{"three", "two", "one"}
	for i, item := range first {
		if item.TranslatedText != want[i] {
			t.Fatalf("position %d: expected %s, got %s", i, want[i], item.TranslatedText)
		}
		if item != second[i] {
			t.Fatalf("consecutive reads differ at %d: %+v vs %+v", i, item, second[i])
		}
	}
}
