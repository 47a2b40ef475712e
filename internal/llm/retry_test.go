package llm

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
)

// flakyProvider fails a set number of times before succeeding.
type flakyProvider struct {
	failures int
	calls    int
}

func (p *flakyProvider) Name() string { return "flaky" }

func (p *flakyProvider) Complete(_ context.Context, _, _ string) (string, error) {
	p.calls++
	if p.calls <= p.failures {
		return "", errors.New("transient")
	}
	return "ok", nil
}

func (p *flakyProvider) IsAvailable(_ context.Context) bool { return true }

func withFastSleep(t *testing.T) {
	t.Helper()
	orig := retrySleep
	retrySleep = func(_ context.Context, _ time.Duration) error { return nil }
	t.Cleanup(func() { retrySleep = orig })
}

func TestCompleteWithRetry_EventualSuccess(t *testing.T) {
	withFastSleep(t)
	p := &flakyProvider{failures: 2}

	out, err := CompleteWithRetry(context.Background(), p, 3, "sys", "user")
	if err != nil {
		t.Fatalf("expected success on third attempt, got %v", err)
	}
	if out != "ok" {
		t.Errorf("out = %q, want ok", out)
	}
	if p.calls != 3 {
		t.Errorf("calls = %d, want 3", p.calls)
	}
}

func TestCompleteWithRetry_Exhausted(t *testing.T) {
	withFastSleep(t)
	p := &flakyProvider{failures: 10}

	if _, err := CompleteWithRetry(context.Background(), p, 2, "sys", "user"); err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if p.calls != 2 {
		t.Errorf("calls = %d, want 2", p.calls)
	}
}

func TestCompleteWithRetry_ContextCancelled(t *testing.T) {
	withFastSleep(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := &flakyProvider{failures: 10}
	if _, err := CompleteWithRetry(ctx, p, 5, "sys", "user"); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if p.calls > 1 {
		t.Errorf("calls = %d, cancellation must stop retries", p.calls)
	}
}

func TestNewProvider_EmptyNameIsRuleMode(t *testing.T) {
	p, err := NewProvider(Config{})
	if err != nil {
		t.Fatalf("empty provider name is valid, got %v", err)
	}
	if p != nil {
		t.Error("empty provider name must yield a nil provider")
	}
}

func TestNewProvider_Unknown(t *testing.T) {
	if _, err := NewProvider(Config{Provider: "carrier-pigeon"}); err == nil {
		t.Error("expected error for unknown provider")
	}
}
