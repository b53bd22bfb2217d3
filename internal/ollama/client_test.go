package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type mockGenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream *bool  `json:"stream"`
}

type mockGenerateResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

type mockListResponse struct {
	Models []mockModel `json:"models"`
}

type mockModel struct {
	Name string `json:"name"`
}

func newMockServer(t *testing.T, summary string) (*httptest.Server, *mockGenerateRequest) {
	t.Helper()
	var got mockGenerateRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/generate":
			if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
				t.Errorf("failed to decode request: %v", err)
			}
			w.Header().Set("Content-Type", "application/x-ndjson")
			json.NewEncoder(w).Encode(mockGenerateResponse{Model: got.Model, Response: summary, Done: true})
		case "/api/tags":
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(mockListResponse{
				Models: []mockModel{{Name: "llama3.2:latest"}, {Name: "another-model"}},
			})
		default:
			w.WriteHeader(http.StatusOK)
		}
	}))
	t.Cleanup(server.Close)
	return server, &got
}

func TestNewClient(t *testing.T) {
	tests := []struct {
		name      string
		url       string
		model     string
		wantModel string
		wantErr   bool
	}{
		{
			name:      "with custom url and model",
			url:       "http://localhost:11434",
			model:     "custom-model",
			wantModel: "custom-model",
		},
		{
			name:      "with all defaults",
			wantModel: DefaultModel,
		},
		{
			name:    "invalid url",
			url:     "http://[::1",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.url, tt.model, nil)

			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if client.GetModel() != tt.wantModel {
				t.Errorf("expected model %s, got %s", tt.wantModel, client.GetModel())
			}
		})
	}
}

func TestIsAvailable(t *testing.T) {
	server, _ := newMockServer(t, "")

	if !IsAvailable(server.URL) {
		t.Error("expected mock server to be available")
	}
	if IsAvailable("http://127.0.0.1:1") {
		t.Error("expected closed port to be unavailable")
	}
}

func TestSummarize(t *testing.T) {
	server, got := newMockServer(t, "  The user hit a 500 on login.  \n")

	client, err := NewClient(server.URL, "test-model", server.Client())
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	summary, err := client.Summarize(context.Background(), "[user]\nlogin returns 500\n")
	if err != nil {
		t.Fatalf("summarize failed: %v", err)
	}
	if summary != "The user hit a 500 on login." {
		t.Errorf("unexpected summary %q", summary)
	}

	if got.Model != "test-model" {
		t.Errorf("expected model test-model, got %s", got.Model)
	}
	if got.Stream == nil || *got.Stream {
		t.Error("expected a non-streaming request")
	}
	if !strings.Contains(got.Prompt, "login returns 500") {
		t.Errorf("prompt does not contain the transcript: %q", got.Prompt)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	server, _ := newMockServer(t, "")
	client, err := NewClient(server.URL, "", server.Client())
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	if _, err := client.Summarize(context.Background(), "   "); err == nil {
		t.Error("expected error for empty transcript")
	}
	if _, err := client.Summarize(context.Background(), "text"); err == nil {
		t.Error("expected error for empty model response")
	}
}

func TestSummarizeTruncatesPrompt(t *testing.T) {
	server, got := newMockServer(t, "ok")
	client, err := NewClient(server.URL, "", server.Client())
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	if _, err := client.Summarize(context.Background(), strings.Repeat("a", maxPromptChars+500)); err != nil {
		t.Fatalf("summarize failed: %v", err)
	}
	if n := strings.Count(got.Prompt, "a"); n > maxPromptChars+strings.Count(promptTemplate, "a") {
		t.Errorf("prompt was not truncated: %d characters of transcript", n)
	}
}

func TestCheckModel(t *testing.T) {
	server, _ := newMockServer(t, "")

	t.Run("model exists", func(t *testing.T) {
		client, err := NewClient(server.URL, "llama3.2", server.Client())
		if err != nil {
			t.Fatalf("could not create client: %v", err)
		}
		if err := client.CheckModel(context.Background()); err != nil {
			t.Errorf("expected model to be found: %v", err)
		}
	})

	t.Run("model does not exist", func(t *testing.T) {
		client, err := NewClient(server.URL, "nonexistent-model-xyz", server.Client())
		if err != nil {
			t.Fatalf("could not create client: %v", err)
		}
		if err := client.CheckModel(context.Background()); err == nil {
			t.Error("expected error for nonexistent model")
		}
	})
}
