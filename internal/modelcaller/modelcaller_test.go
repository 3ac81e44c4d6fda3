package modelcaller

import (
	"context"
	"testing"
)

func TestNew_DispatchesStubByDefault(t *testing.T) {
	caller, err := New(Config{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, ok := caller.(*StubCaller); !ok {
		t.Errorf("expected *StubCaller for an empty Provider, got %T", caller)
	}
}

func TestNew_DispatchesStubExplicitly(t *testing.T) {
	caller, err := New(Config{Provider: ProviderStub})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, ok := caller.(*StubCaller); !ok {
		t.Errorf("expected *StubCaller, got %T", caller)
	}
}

func TestNew_DispatchesHTTPCompatible(t *testing.T) {
	caller, err := New(Config{Provider: ProviderHTTPCompatible, Endpoint: "http://example.invalid"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, ok := caller.(*HTTPCaller); !ok {
		t.Errorf("expected *HTTPCaller, got %T", caller)
	}
}

func TestNew_RejectsUnknownProvider(t *testing.T) {
	_, err := New(Config{Provider: "not-a-real-provider"})
	if err == nil {
		t.Fatal("expected an error for an unsupported provider")
	}
}

func TestStubCaller_EchoesInputElement(t *testing.T) {
	s := NewStubCaller(0)
	out, err := s.Call(context.Background(), "preamble <input>hola mundo</input> postamble")
	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	if out != "<output>hola mundo</output>" {
		t.Errorf("Call() = %q, want %q", out, "<output>hola mundo</output>")
	}
}

func TestStubCaller_FallsBackWithoutInputElement(t *testing.T) {
	s := NewStubCaller(0)
	out, err := s.Call(context.Background(), "no markers here")
	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	if out != "<output>[stub] no markers here</output>" {
		t.Errorf("Call() = %q, want the prefixed echo", out)
	}
}

func TestIsOverloaded(t *testing.T) {
	cases := []struct {
		msg  string
		want bool
	}{
		{"model overloaded, try again", true},
		{"RESOURCE_EXHAUSTED: quota exceeded", true},
		{"rpc error: code = Unavailable desc = 503 Service Unavailable", true},
		{"429 Too Many Requests", true},
		{"permission denied", false},
	}
	for _, tc := range cases {
		if got := isOverloaded(errString(tc.msg)); got != tc.want {
			t.Errorf("isOverloaded(%q) = %v, want %v", tc.msg, got, tc.want)
		}
	}
}

type errString string

func (e errString) Error() string { return string(e) }
