package cmd

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"

	"github.com/pders01/timewarp/internal/models"
)

// newOllamaServer fakes the endpoints used for chat summaries. The model
// list advertises the given names.
func newOllamaServer(t *testing.T, names ...string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/tags":
			list := make([]map[string]string, 0, len(names))
			for _, m := range names {
				list = append(list, map[string]string{"name": m})
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]interface{}{"models": list})
		case "/api/generate":
			w.Header().Set("Content-Type", "application/x-ndjson")
			json.NewEncoder(w).Encode(map[string]interface{}{
				"model":    "llama3.2",
				"response": "User hit a login failure.",
				"done":     true,
			})
		default:
			w.WriteHeader(http.StatusOK)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

// setSummaryConfig enables summaries against url and restores the previous
// settings when the test ends.
func setSummaryConfig(t *testing.T, enabled bool, url string) {
	t.Helper()
	prevEnabled := viper.GetBool("summary.enabled")
	prevURL := viper.GetString("summary.ollama_url")
	prevModel := viper.GetString("summary.model")
	viper.Set("summary.enabled", enabled)
	viper.Set("summary.ollama_url", url)
	viper.Set("summary.model", "llama3.2")
	t.Cleanup(func() {
		viper.Set("summary.enabled", prevEnabled)
		viper.Set("summary.ollama_url", prevURL)
		viper.Set("summary.model", prevModel)
	})
}

func TestSummaryOptions(t *testing.T) {
	ready := newOllamaServer(t, "llama3.2:latest")
	missingModel := newOllamaServer(t, "another-model")
	down := httptest.NewServer(http.NotFoundHandler())
	down.Close()

	tests := []struct {
		name    string
		enabled bool
		url     string
		want    int
	}{
		{name: "disabled", enabled: false, url: ready.URL, want: 0},
		{name: "server and model available", enabled: true, url: ready.URL, want: 1},
		{name: "model not pulled", enabled: true, url: missingModel.URL, want: 0},
		{name: "server unreachable", enabled: true, url: down.URL, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setSummaryConfig(t, tt.enabled, tt.url)
			if got := summaryOptions(context.Background()); len(got) != tt.want {
				t.Errorf("summaryOptions() returned %d options, want %d", len(got), tt.want)
			}
		})
	}
}

func TestIssueReportGeneratesSummary(t *testing.T) {
	ws := setupWorkspace(t)
	defer ws.Cleanup()

	server := newOllamaServer(t, "llama3.2:latest")
	setSummaryConfig(t, true, server.URL)

	createTestSnapshot(t, ws, "")
	id := reportTestIssue(t, testMessages)

	var rec models.Issue
	data := ws.ReadFile(filepath.Join(".timewarp", "issues", id, "issue.json"))
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		t.Fatalf("failed to parse issue.json: %v", err)
	}
	if got := models.Deref(rec.ChatSummary); got != "User hit a login failure." {
		t.Errorf("chat_summary = %q", got)
	}
}

func TestIssueReportWithoutOllama(t *testing.T) {
	ws := setupWorkspace(t)
	defer ws.Cleanup()

	down := httptest.NewServer(http.NotFoundHandler())
	down.Close()
	setSummaryConfig(t, true, down.URL)

	createTestSnapshot(t, ws, "")
	id := reportTestIssue(t, testMessages)

	var rec models.Issue
	data := ws.ReadFile(filepath.Join(".timewarp", "issues", id, "issue.json"))
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		t.Fatalf("failed to parse issue.json: %v", err)
	}
	if rec.ChatSummary != nil {
		t.Errorf("expected no chat summary, got %q", *rec.ChatSummary)
	}
}
