package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func geminiStub(t *testing.T, status int, reply string, gotBody *map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if !strings.HasSuffix(r.URL.Path, ":generateContent") {
			t.Errorf("path = %s, want :generateContent suffix", r.URL.Path)
		}
		if got := r.Header.Get("x-goog-api-key"); got != "test-key" {
			t.Errorf("x-goog-api-key = %q", got)
		}
		if gotBody != nil {
			if err := json.NewDecoder(r.Body).Decode(gotBody); err != nil {
				t.Errorf("decode request: %v", err)
			}
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(reply))
	}))
}

func candidatesJSON(texts ...string) string {
	parts := make([]map[string]string, 0, len(texts))
	for _, s := range texts {
		parts = append(parts, map[string]string{"text": s})
	}
	b, _ := json.Marshal(map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"parts": parts}},
		},
	})
	return string(b)
}

func TestGenerateLoveNote(t *testing.T) {
	var body map[string]any
	srv := geminiStub(t, 200, candidatesJSON("Kalbim hep seninle."), &body)
	defer srv.Close()
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("GEMINI_API_BASE", srv.URL)

	got, err := GenerateLoveNote(context.Background(), "özlem")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Kalbim hep seninle." {
		t.Fatalf("note = %q", got)
	}

	prompt := body["contents"].([]any)[0].(map[string]any)["parts"].([]any)[0].(map[string]any)["text"].(string)
	if !strings.Contains(prompt, "özlem") {
		t.Fatalf("prompt missing topic: %q", prompt)
	}
	if !strings.Contains(prompt, "Türkçe yaz") {
		t.Fatalf("prompt missing language instruction: %q", prompt)
	}
	cfg := body["generationConfig"].(map[string]any)
	if temp := cfg["temperature"].(float64); temp != 0.7 {
		t.Fatalf("temperature = %v", temp)
	}
}

func TestGenerateLoveNoteJoinsParts(t *testing.T) {
	srv := geminiStub(t, 200, candidatesJSON("Seni ", "çok seviyorum."), nil)
	defer srv.Close()
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("GEMINI_API_BASE", srv.URL)

	got, err := GenerateLoveNote(context.Background(), "biz")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Seni çok seviyorum." {
		t.Fatalf("note = %q", got)
	}
}

func TestGenerateLoveNoteEmptyReplyFallsBack(t *testing.T) {
	srv := geminiStub(t, 200, candidatesJSON("   "), nil)
	defer srv.Close()
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("GEMINI_API_BASE", srv.URL)

	got, err := GenerateLoveNote(context.Background(), "biz")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != EmptyNoteFallback {
		t.Fatalf("note = %q, want fallback", got)
	}
}

func TestGenerateLoveNoteHTTPError(t *testing.T) {
	srv := geminiStub(t, 500, `{"error":{"message":"boom"}}`, nil)
	defer srv.Close()
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("GEMINI_API_BASE", srv.URL)

	_, err := GenerateLoveNote(context.Background(), "biz")
	if err == nil || !strings.Contains(err.Error(), "gemini http 500") {
		t.Fatalf("err = %v", err)
	}
}

func TestGenerateLoveNoteMissingKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")
	if _, err := GenerateLoveNote(context.Background(), "biz"); err == nil {
		t.Fatal("expected error without an API key")
	}
}

func TestGenerateLoveNoteBlankTopic(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	if _, err := GenerateLoveNote(context.Background(), "  "); err == nil {
		t.Fatal("expected error for blank topic")
	}
}

func TestGoogleAPIKeyFallback(t *testing.T) {
	srv := geminiStub(t, 200, candidatesJSON("not"), nil)
	defer srv.Close()
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "test-key")
	t.Setenv("GEMINI_API_BASE", srv.URL)

	if _, err := GenerateLoveNote(context.Background(), "biz"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestEnvModelOverride(t *testing.T) {
	t.Setenv("GEMINI_MODEL", "gemini-pro-test")
	opts := envNoteOptions()
	if opts.Model != "gemini-pro-test" {
		t.Fatalf("model = %q", opts.Model)
	}
	t.Setenv("GEMINI_MODEL", "")
	if opts := envNoteOptions(); opts.Model != defaultModel {
		t.Fatalf("default model = %q", opts.Model)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("merhaba", 100); got != "merhaba" {
		t.Fatalf("got %q", got)
	}
	if got := truncate("merhaba dunya", 10); got != "merhaba..." {
		t.Fatalf("got %q", got)
	}
	if got := truncate("abc", 2); got != "ab" {
		t.Fatalf("got %q", got)
	}
}
