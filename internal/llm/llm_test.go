package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestBuildSystemPrompt(t *testing.T) {
	tests := []struct {
		name     string
		opts     Options
		contains []string
	}{
		{
			name: "all options enabled",
			opts: Options{
				RemoveFillerWords: true,
				AddPunctuation:    true,
				FixGrammar:        true,
				Simplify:          true,
			},
			contains: []string{
				"Remove filler words",
				"Add proper punctuation",
				"Fix grammar",
				"short, plain sentences",
			},
		},
		{
			name:     "only grammar",
			opts:     Options{FixGrammar: true},
			contains: []string{"Fix grammar"},
		},
		{
			name:     "no options - should have default",
			opts:     Options{},
			contains: []string{"Clean up the text"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := BuildSystemPrompt(tc.opts)
			for _, expected := range tc.contains {
				if !strings.Contains(result, expected) {
					t.Errorf("expected prompt to contain %q, got: %s", expected, result)
				}
			}
		})
	}
}

func TestBuildUserPrompt(t *testing.T) {
	if got := BuildUserPrompt("hello world", ""); got != "hello world" {
		t.Errorf("expected plain text, got %q", got)
	}
	want := "Use simple words\n\nText to process:\nhello world"
	if got := BuildUserPrompt("hello world", "Use simple words"); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestNewAdapter(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"openai", Config{Provider: "openai", APIKey: "sk-test"}, false},
		{"groq", Config{Provider: "groq", APIKey: "gsk_test"}, false},
		{"missing key", Config{Provider: "openai"}, true},
		{"unsupported", Config{Provider: "unsupported", APIKey: "key"}, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			adapter, err := NewAdapter(tc.cfg)
			if tc.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if _, ok := adapter.(*OpenAIAdapter); !ok {
				t.Errorf("expected *OpenAIAdapter, got %T", adapter)
			}
		})
	}
}

func TestOpenAIAdapter_Process(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Model != "test-model" {
			t.Errorf("model = %q, want test-model", req.Model)
		}
		if len(req.Messages) != 2 || req.Messages[1].Content != "um hello uh there" {
			t.Errorf("unexpected messages: %+v", req.Messages)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"index":0,"message":{"role":"assistant","content":" Hello there. "}}]}`))
	}))
	defer server.Close()

	a := NewOpenAIAdapter(Config{APIKey: "sk-test", Model: "test-model", BaseURL: server.URL + "/v1"})
	got, err := a.Process(context.Background(), "um hello uh there")
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if got != "Hello there." {
		t.Errorf("Process() = %q, want %q", got, "Hello there.")
	}
}

func TestOpenAIAdapter_EmptyInput(t *testing.T) {
	a := NewOpenAIAdapter(Config{APIKey: "sk-test", BaseURL: "http://127.0.0.1:1"})
	got, err := a.Process(context.Background(), "  ")
	if err != nil || got != "  " {
		t.Errorf("Process(blank) = %q, %v; want input unchanged", got, err)
	}
}
