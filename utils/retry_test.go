package utils

import (
	"errors"
	"testing"
	"time"
)

func TestAttemptPolicySucceedsFirstTry(t *testing.T) {
	p := &AttemptPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond, Logger: NewLogger(false)}

	calls := 0
	err := p.Do("op", func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestAttemptPolicyRetriesThenSucceeds(t *testing.T) {
	p := &AttemptPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond, Logger: NewLogger(false)}

	calls := 0
	err := p.Do("op", func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestAttemptPolicyExhaustsAttempts(t *testing.T) {
	sentinel := errors.New("page timeout")
	p := &AttemptPolicy{MaxAttempts: 2, BaseDelay: time.Millisecond, Logger: NewLogger(false)}

	calls := 0
	err := p.Do("fetch model page", func() error {
		calls++
		return sentinel
	})
	if err == nil {
		t.Fatal("expected terminal error")
	}
	if calls != 2 {
		t.Errorf("expected 2 calls, got %d", calls)
	}
	if !errors.Is(err, sentinel) {
		t.Errorf("terminal error should wrap the last failure, got %v", err)
	}
}

func TestPacerEnforcesInterval(t *testing.T) {
	p := NewPacer(20 * time.Millisecond)

	p.Wait() // first call should not block
	start := time.Now()
	p.Wait()
	if elapsed := time.Since(start); elapsed < 15*time.Millisecond {
		t.Errorf("second Wait returned after %v, expected ~20ms pause", elapsed)
	}
}

func TestURLSetAdd(t *testing.T) {
	s := NewURLSet()

	if !s.Add("https://astararetail.cl/jeep-avenger") {
		t.Error("first Add should return true")
	}
	if s.Add("https://astararetail.cl/jeep-avenger") {
		t.Error("duplicate Add should return false")
	}
	if !s.Contains("https://astararetail.cl/jeep-avenger") {
		t.Error("Contains should report tracked URL")
	}
	if s.Size() != 1 {
		t.Errorf("expected size 1, got %d", s.Size())
	}
}
