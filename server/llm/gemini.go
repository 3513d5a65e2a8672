// Package llm wraps the Gemini generateContent API for short Turkish love
// notes. The caller never sees an error for content problems; anything that
// goes wrong downgrades to a fixed heartfelt fallback so the UI always has
// something to show.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	defaultModel   = "gemini-3-flash-preview"
	defaultAPIBase = "https://generativelanguage.googleapis.com/v1beta"

	// EmptyNoteFallback replaces a blank model reply.
	EmptyNoteFallback = "Sana olan sevgimi anlatmaya kelimeler yetmez."
)

// NoteOptions are the generation knobs. The zero value is never used
// directly; envNoteOptions fills in defaults.
type NoteOptions struct {
	Model       string
	Temperature float64
	MaxChars    int
}

func envNoteOptions() NoteOptions {
	opts := NoteOptions{
		Model:       defaultModel,
		Temperature: 0.7,
	}
	if v := strings.TrimSpace(os.Getenv("GEMINI_MODEL")); v != "" {
		opts.Model = v
	}
	return opts
}

// GenerateLoveNote asks the model for a short romantic note on the topic.
// A blank topic is rejected before any network call.
func GenerateLoveNote(ctx context.Context, topic string) (string, error) {
	return GenerateLoveNoteWithOpts(ctx, topic, envNoteOptions())
}

// GenerateLoveNoteWithOpts is GenerateLoveNote with explicit knobs.
func GenerateLoveNoteWithOpts(ctx context.Context, topic string, opts NoteOptions) (string, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return "", errors.New("topic missing")
	}
	apiKey := strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
	if apiKey == "" {
		apiKey = strings.TrimSpace(os.Getenv("GOOGLE_API_KEY"))
	}
	if apiKey == "" {
		return "", errors.New("API key missing: set GEMINI_API_KEY or GOOGLE_API_KEY")
	}

	base := strings.TrimSpace(os.Getenv("GEMINI_API_BASE"))
	if base == "" {
		base = defaultAPIBase
	}
	base = strings.TrimRight(base, "/")

	prompt := fmt.Sprintf(
		`Şu konu hakkında çok kısa, samimi ve romantik bir aşk notu yaz (maksimum 3 cümle): %s. Sevgiliden sevgiliye yazılmış gibi olsun. "Sen" dili kullan, resmiyetten uzak dur, içten ve duygusal olsun. Emojileri kullanma. Türkçe yaz.`,
		topic)

	payload := map[string]any{
		"contents": []map[string]any{
			{"parts": []map[string]string{{"text": prompt}}},
		},
		"generationConfig": map[string]any{
			"temperature": opts.Temperature,
			// Thinking off: a three sentence note does not need it and
			// latency matters on a phone.
			"thinkingConfig": map[string]any{"thinkingBudget": 0},
		},
	}

	b, _ := json.Marshal(payload)
	url := fmt.Sprintf("%s/models/%s:generateContent", base, opts.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", apiKey)

	client := &http.Client{Timeout: 45 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(resp.Body)
	body := buf.Bytes()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("gemini http %d: %s", resp.StatusCode, truncate(string(body), 800))
	}

	var gc struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(body, &gc); err != nil {
		return "", err
	}
	if len(gc.Candidates) == 0 {
		return "", errors.New("no candidates returned")
	}

	var sb strings.Builder
	for _, p := range gc.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return EmptyNoteFallback, nil
	}
	if opts.MaxChars > 0 {
		text = truncate(text, opts.MaxChars)
	}
	return text, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
