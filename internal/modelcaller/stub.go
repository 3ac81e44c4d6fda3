package modelcaller

import (
	"context"
	"strings"
	"time"
)

// StubCaller never leaves the process: it echoes the prompt's <input>
// payload back wrapped as a fake translation, which is enough to drive
// the orchestrator's integration tests without a real model.
type StubCaller struct {
	cooldown time.Duration
	Prefix   string
}

func NewStubCaller(cooldown time.Duration) *StubCaller {
	return &StubCaller{cooldown: cooldown, Prefix: "[stub] "}
}

// Call echoes back whatever sits between <input> and </input>, wrapped
// in <output>...</output>, so the orchestrator's extraction and (for
// XML-enveloped strategies) placeholder reconstruction can be exercised
// end-to-end without a real model.
func (s *StubCaller) Call(ctx context.Context, prompt string) (string, error) {
	start := strings.Index(prompt, "<input>")
	end := strings.Index(prompt, "</input>")
	if start < 0 || end < 0 || end < start {
		return "<output>" + s.Prefix + prompt + "</output>", nil
	}
	payload := strings.TrimSpace(prompt[start+len("<input>") : end])
	return "<output>" + payload + "</output>", nil
}

func (s *StubCaller) WaitCooldown() {
	if s.cooldown > 0 {
		time.Sleep(s.cooldown)
	}
}
