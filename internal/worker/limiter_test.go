package worker

import (
	"context"
	"testing"
	"time"
)

func TestLimiter_New(t *testing.T) {
	limiter := NewLimiter(10, 5)
	if limiter.defaultBurst != 5 {
		t.Errorf("expected burst 5, got %d", limiter.defaultBurst)
	}

	l2 := NewLimiter(10, -1)
	if l2.defaultBurst != 5 {
		t.Errorf("expected default burst 5 for negative input, got %d", l2.defaultBurst)
	}
}

func TestLimiter_Wait(t *testing.T) {
	limiter := NewLimiter(100, 1)
	ctx := context.Background()

	if err := limiter.Wait(ctx, "http://localhost:8080/v1"); err != nil {
		t.Errorf("wait failed: %v", err)
	}
	if err := limiter.Wait(ctx, "https://api.openai.com/v1"); err != nil {
		t.Errorf("wait failed: %v", err)
	}
}

func TestLimiter_WaitCancelled(t *testing.T) {
	limiter := NewLimiter(0.01, 1)
	key := "https://api.openai.com/v1"

	if err := limiter.Wait(context.Background(), key); err != nil {
		t.Fatalf("first wait failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := limiter.Wait(ctx, key); err == nil {
		t.Error("expected error once the context expires")
	}
}

func TestLimiter_RateLimit(t *testing.T) {
	limiter := NewLimiter(1, 1)
	key := "https://reports.example.com/2024.md"

	if !limiter.Allow(key) {
		t.Fatal("first call should pass")
	}
	// same host, different path shares the bucket
	if limiter.Allow("https://reports.example.com/2023.md") {
		t.Error("expected allow to fail (exhausted tokens)")
	}
	if !limiter.Allow("https://other.example.com") {
		t.Error("expected allow for other host")
	}
}

func TestLimiter_Unlimited(t *testing.T) {
	limiter := NewLimiter(0, 1)
	for i := 0; i < 20; i++ {
		if !limiter.Allow("openai") {
			t.Fatalf("call %d throttled with pacing disabled", i)
		}
	}
}

func TestLimiter_Nil(t *testing.T) {
	var limiter *Limiter
	if err := limiter.Wait(context.Background(), "x"); err != nil {
		t.Errorf("nil limiter should not block: %v", err)
	}
	if !limiter.Allow("x") {
		t.Error("nil limiter should allow")
	}
}

func TestLimiter_SetRate(t *testing.T) {
	limiter := NewLimiter(10, 10)

	limiter.SetRate("http://localhost:11434", 0.1, 1)

	if !limiter.Allow("http://localhost:11434/api/generate") {
		t.Error("first request should pass")
	}
	if limiter.Allow("http://localhost:11434/api/generate") {
		t.Error("second request should fail")
	}
	if !limiter.Allow("http://fast.example.com") {
		t.Error("other host should pass")
	}
}

func TestLimiter_SetRateIfAbsent(t *testing.T) {
	limiter := NewLimiter(0, 1)

	if !limiter.SetRateIfAbsent("https://reports.example.com/a.html", 0.1, 1) {
		t.Fatal("first call should create the bucket")
	}
	if !limiter.Allow("https://reports.example.com/a.html") {
		t.Error("first request should pass")
	}

	// a second call must not refill the bucket
	if limiter.SetRateIfAbsent("https://reports.example.com/b.html", 0.1, 1) {
		t.Error("second call should keep the existing bucket")
	}
	if limiter.Allow("https://reports.example.com/b.html") {
		t.Error("second request should fail")
	}
}

func TestLimiter_SetRateIfAbsentKeepsDefaultBucket(t *testing.T) {
	limiter := NewLimiter(0, 1)

	if !limiter.Allow("https://fast.example.com/x") {
		t.Fatal("unlimited request should pass")
	}
	if limiter.SetRateIfAbsent("https://fast.example.com/y", 0.1, 1) {
		t.Error("existing bucket should not be replaced")
	}
}

func TestKeyFor(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"http://example.com/foo", "example.com"},
		{"https://api.openai.com/v1", "api.openai.com"},
		{"ollama", "ollama"},
		{"reports/2024.md", "reports/2024.md"},
		{"::invalid", "::invalid"},
	}
	for _, tt := range tests {
		if got := KeyFor(tt.in); got != tt.want {
			t.Errorf("KeyFor(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
