package modelcaller

import (
	"context"
	"errors"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/seanblong/doctran/internal/doctranerr"
)

// GeminiCaller calls the Gemini API via google.golang.org/genai with a
// single blocking prompt/response call.
type GeminiCaller struct {
	client   *genai.Client
	model    string
	cooldown time.Duration
}

func newGeminiCaller(cfg Config) (*GeminiCaller, error) {
	ctx := context.Background()
	cc := genai.ClientConfig{Backend: genai.BackendVertexAI}
	if strings.TrimSpace(cfg.APIKey) != "" {
		cc.APIKey = cfg.APIKey
	}
	if strings.TrimSpace(cfg.ProjectID) != "" {
		cc.Project = cfg.ProjectID
	}
	if strings.TrimSpace(cfg.Location) != "" {
		cc.Location = cfg.Location
	}

	client, err := genai.NewClient(ctx, &cc)
	if err != nil {
		return nil, &doctranerr.ApiCallError{Cause: err}
	}

	model := cfg.Model
	if model == "" {
		model = "gemini-2.0-flash"
	}

	return &GeminiCaller{client: client, model: model, cooldown: cfg.Cooldown}, nil
}

// Call sends prompt to Gemini and returns the first candidate's text.
// A quota/overloaded response is reported as ModelOverloaded so the
// orchestrator's retry loop, not this caller, decides whether to retry.
func (g *GeminiCaller) Call(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		if isOverloaded(err) {
			return "", &doctranerr.ModelOverloaded{Cause: err}
		}
		return "", &doctranerr.ApiCallError{Cause: err}
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", &doctranerr.ApiCallError{Cause: errors.New("gemini: empty response")}
	}
	return string(resp.Candidates[0].Content.Parts[0].Text), nil
}

func (g *GeminiCaller) WaitCooldown() {
	if g.cooldown > 0 {
		time.Sleep(g.cooldown)
	}
}

func isOverloaded(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "overloaded") || strings.Contains(msg, "resource_exhausted") ||
		strings.Contains(msg, "429") || strings.Contains(msg, "503")
}
