package modelcaller

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/seanblong/doctran/internal/doctranerr"
)

// HTTPCaller speaks an OpenAI-chat-completions-compatible protocol, so
// it works against any self-hosted or third-party endpoint exposing
// that same shape (vLLM, text-generation-inference, Azure OpenAI, etc).
type HTTPCaller struct {
	endpoint    string
	apiKey      string
	model       string
	temperature float32
	maxTokens   int32
	cooldown    time.Duration
	http        *http.Client
}

func newHTTPCaller(cfg Config) *HTTPCaller {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = "https://api.openai.com/v1/chat/completions"
	}
	return &HTTPCaller{
		endpoint:    endpoint,
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		cooldown:    cfg.Cooldown,
		http:        &http.Client{Timeout: 60 * time.Second},
	}
}

func (c *HTTPCaller) Call(ctx context.Context, prompt string) (string, error) {
	payload := map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
		"temperature": c.temperature,
		"max_tokens":  c.maxTokens,
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return "", &doctranerr.ApiCallError{Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &buf)
	if err != nil {
		return "", &doctranerr.ApiCallError{Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", &doctranerr.ApiCallError{Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusServiceUnavailable {
		return "", &doctranerr.ModelOverloaded{Cause: errors.New(resp.Status)}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &doctranerr.ApiCallError{Cause: errors.New(resp.Status)}
	}

	var out struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", &doctranerr.ApiCallError{Cause: err}
	}
	if len(out.Choices) == 0 {
		return "", &doctranerr.ApiCallError{Cause: errors.New("http caller: no choices returned")}
	}
	return out.Choices[0].Message.Content, nil
}

func (c *HTTPCaller) WaitCooldown() {
	if c.cooldown > 0 {
		time.Sleep(c.cooldown)
	}
}
