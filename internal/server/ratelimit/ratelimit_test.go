package ratelimit

import (
	"sync"
	"testing"
	"time"
)

// newTestLimiter returns a limiter without a cleanup goroutine and a function that
// advances its clock.
func newTestLimiter(config *Config) (*Limiter, func(time.Duration)) {
	config.CleanupInterval = 0
	l := NewLimiter(config)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	return l, func(d time.Duration) { now = now.Add(d) }
}

func TestBucket_TakeAndRefill(t *testing.T) {
	start := time.Now()
	b := newBucket(10, 1.0, start)

	for i := 0; i < 10; i++ {
		if ok, _, _ := b.take(start); !ok {
			t.Errorf("Expected request %d to be allowed", i+1)
		}
	}
	if ok, _, _ := b.take(start); ok {
		t.Error("Expected 11th request to be denied")
	}

	ok, remaining, reset := b.take(start.Add(1100 * time.Millisecond))
	if !ok {
		t.Error("Expected request to be allowed after refill")
	}
	if remaining != 0 {
		t.Errorf("Expected 0 remaining, got %d", remaining)
	}
	if !reset.After(start) {
		t.Error("Reset time should be in the future")
	}
}

func TestLimiter_DefaultLimit(t *testing.T) {
	l, _ := newTestLimiter(&Config{Enabled: true, DefaultLimit: 10, DefaultWindow: time.Minute})
	defer l.Stop()

	for i := 0; i < 10; i++ {
		d := l.Allow("127.0.0.1", "GET", "/resume/experience")
		if !d.Allowed {
			t.Errorf("Expected request %d to be allowed", i+1)
		}
		if d.Limit != 10 {
			t.Errorf("Expected limit 10, got %d", d.Limit)
		}
		if d.Remaining != 9-i {
			t.Errorf("Expected remaining %d, got %d", 9-i, d.Remaining)
		}
	}

	d := l.Allow("127.0.0.1", "GET", "/resume/experience")
	if d.Allowed {
		t.Error("Expected 11th request to be denied")
	}
	if d.RetryAfter < time.Second {
		t.Errorf("Expected retry after of at least 1s, got %v", d.RetryAfter)
	}
}

func TestLimiter_SuggestRuleSharedAcrossRoutes(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Rules = DefaultRules(6, 300, time.Minute) // burst 1
	l, advance := newTestLimiter(cfg)
	defer l.Stop()

	if d := l.Allow("c", "POST", "/resume/experience/0/suggest-description"); !d.Allowed || d.Rule != "suggest" {
		t.Fatalf("Expected first suggestion to be allowed by the suggest rule, got %+v", d)
	}
	if d := l.Allow("c", "POST", "/resume/education/suggest-description"); d.Allowed {
		t.Error("Expected second suggestion to share the exhausted bucket")
	}
	if d := l.Allow("c", "POST", "/resume/education"); !d.Allowed || d.Rule != "write" {
		t.Errorf("Expected create to use the write rule, got %+v", d)
	}
	if d := l.Allow("other", "POST", "/resume/education/suggest-description"); !d.Allowed {
		t.Error("Expected a different client to have its own bucket")
	}

	advance(11 * time.Second)
	if d := l.Allow("c", "POST", "/resume/experience/suggest-description"); !d.Allowed {
		t.Error("Expected suggestion to be allowed after refill")
	}
}

func TestLimiter_HealthUnlimited(t *testing.T) {
	l, _ := newTestLimiter(&Config{Enabled: true, DefaultLimit: 1, DefaultWindow: time.Minute})
	defer l.Stop()

	for i := 0; i < 5; i++ {
		if d := l.Allow("c", "GET", "/health"); !d.Allowed || d.Limit != 0 {
			t.Errorf("Expected health check %d to be unlimited, got %+v", i+1, d)
		}
	}
}

func TestLimiter_ExemptAndDisabled(t *testing.T) {
	l, _ := newTestLimiter(&Config{
		Enabled: true, DefaultLimit: 1, DefaultWindow: time.Minute,
		Exempt: map[string]bool{"10.0.0.1": true},
	})
	defer l.Stop()
	for i := 0; i < 3; i++ {
		if !l.Allow("10.0.0.1", "GET", "/resume/experience").Allowed {
			t.Error("Expected exempt client to be allowed")
		}
	}

	off, _ := newTestLimiter(&Config{Enabled: false, DefaultLimit: 1, DefaultWindow: time.Minute})
	defer off.Stop()
	for i := 0; i < 3; i++ {
		if !off.Allow("c", "GET", "/resume/experience").Allowed {
			t.Error("Expected disabled limiter to allow")
		}
	}
}

func TestLimiter_Cleanup(t *testing.T) {
	l, advance := newTestLimiter(&Config{Enabled: true, DefaultLimit: 10, DefaultWindow: time.Minute})
	defer l.Stop()

	l.Allow("old", "GET", "/resume/experience")
	advance(2 * time.Hour)
	l.Allow("new", "GET", "/resume/experience")

	l.cleanup(l.now().Add(-time.Hour))

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.buckets["old:default"]; ok {
		t.Error("Expected idle bucket to be removed")
	}
	if _, ok := l.buckets["new:default"]; !ok {
		t.Error("Expected recent bucket to be kept")
	}
}

func TestLimiter_Concurrent(t *testing.T) {
	l, _ := newTestLimiter(&Config{Enabled: true, DefaultLimit: 50, DefaultWindow: time.Hour})
	defer l.Stop()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Allow("c", "GET", "/resume/experience").Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if allowed != 50 {
		t.Errorf("Expected exactly 50 allowed requests, got %d", allowed)
	}
}

func TestLoadConfig(t *testing.T) {
	env := map[string]string{
		EnvSuggestLimit:  "12",
		EnvWindow:        "30s",
		EnvExemptClients: "127.0.0.1, ::1",
		EnvWriteLimit:    "bogus",
	}
	cfg := LoadConfig(func(k string) string { return env[k] })

	if !cfg.Enabled {
		t.Fatal("Expected rate limiting to be enabled by default")
	}
	if !cfg.Exempt["127.0.0.1"] || !cfg.Exempt["::1"] {
		t.Errorf("Expected exempt clients to be parsed, got %v", cfg.Exempt)
	}
	suggest, ok := Match(cfg.Rules, "POST", "/resume/experience/suggest-description")
	if !ok || suggest.Limit != 12 || suggest.Window != 30*time.Second || suggest.Burst != 2 {
		t.Errorf("Unexpected suggest rule %+v", suggest)
	}
	write, _ := Match(cfg.Rules, "DELETE", "/resume/experience/3")
	if write.Limit != 300 {
		t.Errorf("Expected malformed write limit to keep default, got %d", write.Limit)
	}

	off := LoadConfig(func(k string) string {
		if k == EnvEnabled {
			return "false"
		}
		return ""
	})
	if off.Enabled {
		t.Error("Expected rate limiting to be disabled")
	}
}

func TestMatch_NoRule(t *testing.T) {
	if _, ok := Match(DefaultRules(30, 300, time.Minute), "GET", "/resume/experience"); ok {
		t.Error("Expected reads to fall through to the default limit")
	}
}
