package assistant

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"mdip/config"
	"mdip/core/store"
	"mdip/core/utils"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	cfg := &config.AppConfig{DBPath: filepath.Join(t.TempDir(), "test.db")}
	logger := utils.NewLogger()
	db, err := store.NewDB(cfg, logger)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := store.ApplyMigrations(context.Background(), db, logger); err != nil {
		t.Fatalf("migrations: %v", err)
	}
	return db
}

func newTestService(t *testing.T, baseURL string, keys map[string]string) *Service {
	t.Helper()
	db := openTestDB(t)
	sla := store.SLAThresholds{Urgent: 4, High: 8, Medium: 24, Low: 72}
	return NewService(Options{
		BaseURL: baseURL,
		Model:   "gemini-1.5-flash",
		Timeout: 5 * time.Second,
		Keys:    keys,
	}, store.NewIncidentsStore(db), store.NewDatasetsStore(db), store.NewTicketsStore(db, sla), utils.NewLogger())
}

func jsonDecode(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func TestChatAnswersWithProviderText(t *testing.T) {
	var calls int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		if !strings.Contains(r.URL.Path, ":generateContent") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "k-cyber" {
			t.Errorf("missing api key in query")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Rotate the exposed credentials."}]}}]}`))
	}))
	defer srv.Close()

	svc := newTestService(t, srv.URL, map[string]string{"cybersecurity": "k-cyber"})
	reply, err := svc.Chat(context.Background(), "cybersecurity", "How should we respond to credential theft?")
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if reply.Outcome != OutcomeAnswered {
		t.Fatalf("outcome: %q", reply.Outcome)
	}
	if reply.Text != "Rotate the exposed credentials." {
		t.Fatalf("text: %q", reply.Text)
	}
	if atomic.LoadInt64(&calls) != 1 {
		t.Fatalf("provider calls: %d", calls)
	}
}

func TestChatRefusesBlockedTopicsWithoutCallingProvider(t *testing.T) {
	var calls int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
	}))
	defer srv.Close()

	svc := newTestService(t, srv.URL, map[string]string{"cybersecurity": "k"})
	reply, err := svc.Chat(context.Background(), "cybersecurity", "What is our SLA compliance this month?")
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if reply.Outcome != OutcomeRefused {
		t.Fatalf("outcome: %q", reply.Outcome)
	}
	if !strings.Contains(reply.Text, "Cybersecurity AI Assistant") {
		t.Fatalf("refusal text: %q", reply.Text)
	}
	if atomic.LoadInt64(&calls) != 0 {
		t.Fatalf("blocked question reached the provider (%d calls)", calls)
	}
}

func TestChatDisabledWithoutKey(t *testing.T) {
	svc := newTestService(t, "http://unused.invalid", map[string]string{})
	reply, err := svc.Chat(context.Background(), "datascience", "How do I improve data quality?")
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if reply.Outcome != OutcomeDisabled {
		t.Fatalf("outcome: %q", reply.Outcome)
	}
	if !strings.Contains(reply.Text, "not configured") {
		t.Fatalf("disabled text: %q", reply.Text)
	}
}

func TestChatUnavailableOnProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"code":429,"message":"quota exceeded","status":"RESOURCE_EXHAUSTED"}}`))
	}))
	defer srv.Close()

	svc := newTestService(t, srv.URL, map[string]string{"it_operations": "k"})
	_, err := svc.Chat(context.Background(), "it_operations", "How do we shorten ticket queues?")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestChatUnavailableOnNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	svc := newTestService(t, srv.URL, map[string]string{"it_operations": "k"})
	_, err := svc.Chat(context.Background(), "it_operations", "Why is the printer on fire?")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestChatUnknownDomain(t *testing.T) {
	svc := newTestService(t, "http://unused.invalid", map[string]string{})
	if _, err := svc.Chat(context.Background(), "finance", "q"); !errors.Is(err, store.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if _, err := svc.Chat(context.Background(), "cybersecurity", "   "); !errors.Is(err, store.ErrValidation) {
		t.Fatalf("empty question: expected ErrValidation, got %v", err)
	}
}

func TestAnalyzeIncludesDomainStats(t *testing.T) {
	var gotPrompt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		if err := jsonDecode(r, &req); err == nil && len(req.Contents) > 0 && len(req.Contents[0].Parts) > 0 {
			gotPrompt = req.Contents[0].Parts[0].Text
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Archive the stale datasets."}]}}]}`))
	}))
	defer srv.Close()

	svc := newTestService(t, srv.URL, map[string]string{"datascience": "k"})
	reply, err := svc.Analyze(context.Background(), "datascience")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if reply.Outcome != OutcomeAnswered {
		t.Fatalf("outcome: %q", reply.Outcome)
	}
	if !strings.Contains(gotPrompt, "DATASET CATALOG DATA") {
		t.Fatalf("prompt missing dataset context: %q", gotPrompt)
	}
	if strings.Contains(gotPrompt, "CYBERSECURITY INCIDENT DATA") {
		t.Fatal("prompt leaked another domain's context")
	}
}
