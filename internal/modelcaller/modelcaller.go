// Package modelcaller defines the ModelCaller transport contract (spec
// §6) and ships reference implementations. The orchestrator (internal
// /translator) depends only on the ModelCaller interface; swapping the
// backing model is a wiring change, never a Translator change.
package modelcaller

import (
	"context"
	"time"
)

// ModelCaller is the external transport boundary: a single blocking
// request/response call plus a cooldown hook invoked after every
// success. Implementations translate backend-specific failures into
// doctranerr.ModelOverloaded (retried by the orchestrator) or
// doctranerr.ApiCallError (propagated immediately).
type ModelCaller interface {
	Call(ctx context.Context, prompt string) (string, error)
	WaitCooldown()
}

// Provider enumerates the reference ModelCaller backends.
type Provider string

const (
	ProviderGemini         Provider = "gemini"
	ProviderHTTPCompatible Provider = "http"
	ProviderStub           Provider = "stub"
)

// Config configures whichever ModelCaller backend Provider selects.
type Config struct {
	Provider    Provider
	APIKey      string
	Model       string
	Endpoint    string // HTTPCompatible only
	ProjectID   string // Gemini only
	Location    string // Gemini only
	Cooldown    time.Duration
	Temperature float32
	MaxTokens   int32
}

// New dispatches to the configured ModelCaller backend.
func New(cfg Config) (ModelCaller, error) {
	switch cfg.Provider {
	case ProviderGemini:
		return newGeminiCaller(cfg)
	case ProviderHTTPCompatible:
		return newHTTPCaller(cfg), nil
	case ProviderStub, "":
		return NewStubCaller(cfg.Cooldown), nil
	default:
		return nil, &unsupportedProviderError{provider: string(cfg.Provider)}
	}
}

type unsupportedProviderError struct{ provider string }

func (e *unsupportedProviderError) Error() string {
	return "modelcaller: unsupported provider " + e.provider
}
