package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestInitialize(t *testing.T) {
	Initialize("test-secret", true)

	if authConfig == nil {
		t.Fatal("authConfig should not be nil after initialization")
	}
	if string(authConfig.JwtSecret) != "test-secret" {
		t.Errorf("Expected JwtSecret 'test-secret', got %q", string(authConfig.JwtSecret))
	}
	if !authConfig.Enabled {
		t.Error("Expected Enabled to be true")
	}
}

func TestEnabled(t *testing.T) {
	authConfig = nil
	if Enabled() {
		t.Error("Expected Enabled() to return false when authConfig is nil")
	}

	Initialize("secret", false)
	if Enabled() {
		t.Error("Expected Enabled() to return false when auth is disabled")
	}

	Initialize("secret", true)
	if !Enabled() {
		t.Error("Expected Enabled() to return true when auth is enabled")
	}
}

func TestGenerateAndValidateToken(t *testing.T) {
	Initialize("test-secret", true)

	token, err := GenerateToken("operator", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	if token == "" {
		t.Fatal("expected a non-empty token")
	}

	subject, err := ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if subject != "operator" {
		t.Errorf("ValidateToken() subject = %q, want 'operator'", subject)
	}
}

func TestValidateToken_RejectsExpired(t *testing.T) {
	Initialize("test-secret", true)

	token, err := GenerateToken("operator", -time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	if _, err := ValidateToken(token); err == nil {
		t.Error("expected an error validating an expired token")
	}
}

func TestValidateToken_RejectsWrongSecret(t *testing.T) {
	Initialize("secret-a", true)
	token, err := GenerateToken("operator", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	Initialize("secret-b", true)
	if _, err := ValidateToken(token); err == nil {
		t.Error("expected an error validating a token signed with a different secret")
	}
}

func TestRequireBearer_PassesThroughWhenDisabled(t *testing.T) {
	Initialize("secret", false)

	called := false
	h := RequireBearer(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/cache/stats", nil)
	rr := httptest.NewRecorder()
	h(rr, req)

	if !called {
		t.Error("expected the handler to be invoked when auth is disabled")
	}
	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rr.Code)
	}
}

func TestRequireBearer_RejectsMissingToken(t *testing.T) {
	Initialize("secret", true)

	h := RequireBearer(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called without a token")
	})

	req := httptest.NewRequest(http.MethodGet, "/cache/stats", nil)
	rr := httptest.NewRecorder()
	h(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rr.Code)
	}
}

func TestRequireBearer_AcceptsValidToken(t *testing.T) {
	Initialize("secret", true)
	token, err := GenerateToken("operator", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	var seenSubject string
	h := RequireBearer(func(w http.ResponseWriter, r *http.Request) {
		seenSubject = SubjectFromContext(r)
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/cache/stats", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	h(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rr.Code)
	}
	if seenSubject != "operator" {
		t.Errorf("SubjectFromContext() = %q, want 'operator'", seenSubject)
	}
}
