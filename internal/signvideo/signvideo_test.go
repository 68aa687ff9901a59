package signvideo

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestClient_Translate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q, want application/json", ct)
		}
		var req struct {
			Text string `json:"text"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Text != "hello world" {
			t.Errorf("text = %q, want hello world", req.Text)
		}
		w.Header().Set("Content-Type", "video/mp4")
		w.Write([]byte("fake-mp4"))
	}))
	defer server.Close()

	c := NewClient(Config{URL: server.URL, Timeout: 5 * time.Second})
	video, err := c.Translate(context.Background(), "hello world")
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if string(video.Data) != "fake-mp4" {
		t.Errorf("Data = %q", video.Data)
	}
	if video.Extension() != ".mp4" {
		t.Errorf("Extension() = %q, want .mp4", video.Extension())
	}
}

func TestClient_TranslateErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"json error field", http.StatusInternalServerError, `{"error": "no signs for word"}`, "no signs for word"},
		{"json message field", http.StatusBadRequest, `{"message": "text required"}`, "text required"},
		{"plain text", http.StatusBadGateway, "upstream down\n", "upstream down"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := NewClient(Config{URL: server.URL}).Translate(context.Background(), "hi")
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("error = %v, want *APIError", err)
			}
			if apiErr.Code != tt.status {
				t.Errorf("Code = %d, want %d", apiErr.Code, tt.status)
			}
			if apiErr.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", apiErr.Message, tt.wantMsg)
			}
		})
	}
}

func TestClient_EmptyText(t *testing.T) {
	c := NewClient(DefaultConfig())
	if _, err := c.Translate(context.Background(), "   "); !errors.Is(err, ErrEmptyText) {
		t.Errorf("error = %v, want ErrEmptyText", err)
	}
}

func TestVideoExtension(t *testing.T) {
	tests := map[string]string{
		"video/mp4":                ".mp4",
		"video/webm; codecs=vp9":   ".webm",
		"video/ogg":                ".ogv",
		"image/gif":                ".gif",
		"application/octet-stream": ".bin",
		"":                         ".bin",
	}
	for ct, want := range tests {
		v := &Video{ContentType: ct}
		if got := v.Extension(); got != want {
			t.Errorf("Extension(%q) = %q, want %q", ct, got, want)
		}
	}
}

func TestStore_Save(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "videos")
	store := NewStore(dir)

	path, err := store.Save("session-1", &Video{Data: []byte("abc"), ContentType: "video/webm"})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if path != filepath.Join(dir, "session-1.webm") {
		t.Errorf("path = %q", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read saved video: %v", err)
	}
	if string(data) != "abc" {
		t.Errorf("saved data = %q, want abc", data)
	}
}

func TestPlayer(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		p := NewPlayer("")
		if p.Enabled() {
			t.Error("empty command should disable the player")
		}
		if err := p.Open("/tmp/x.mp4"); err != nil {
			t.Errorf("Open on disabled player should be a no-op: %v", err)
		}
	})

	t.Run("missing binary", func(t *testing.T) {
		p := NewPlayer("aslbridge-no-such-player")
		if err := p.Open("/tmp/x.mp4"); err == nil {
			t.Error("expected error for missing player")
		}
	})
}
