package modelcaller

import "testing"

// newGeminiCaller resolves Vertex AI credentials at construction time;
// in a sandboxed test environment with no project/ADC configured,
// client construction itself should fail rather than defer the error
// to the first Call.
func TestNewGeminiCaller_FailsWithoutCredentials(t *testing.T) {
	_, err := newGeminiCaller(Config{Provider: ProviderGemini})
	if err == nil {
		t.Skip("environment has ambient Vertex AI credentials; construction succeeded")
	}
}

func TestIsOverloaded_MatchesGeminiQuotaLanguage(t *testing.T) {
	if !isOverloaded(errString("googleapi: Error 429: Quota exceeded")) {
		t.Error("expected a 429 quota message to be classified as overloaded")
	}
}
