package omssync

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestDeliveryScheduler_FiresOnceAfterDelay(t *testing.T) {
	var calls int32
	var gotOrderId int
	var gotAuth string
	firedAt := make(chan time.Time, 1)

	downstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		var body map[string]int
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode delivery payload: %v", err)
		}
		gotOrderId = body["orderId"]
		gotAuth = r.Header.Get("Authorization")
		firedAt <- time.Now()
		w.WriteHeader(http.StatusOK)
	}))
	defer downstream.Close()

	scheduler := &DeliveryScheduler{
		baseURL: downstream.URL,
		delay:   150 * time.Millisecond,
		http:    downstream.Client(),
	}

	scheduledAt := time.Now()
	scheduler.Schedule(42, "Bearer abc123")

	select {
	case fired := <-firedAt:
		if elapsed := fired.Sub(scheduledAt); elapsed < 150*time.Millisecond {
			t.Fatalf("trigger fired after %s, before the configured delay", elapsed)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("delivery trigger never fired")
	}

	if gotOrderId != 42 {
		t.Fatalf("expected orderId 42, got %d", gotOrderId)
	}
	if gotAuth != "Bearer abc123" {
		t.Fatalf("expected auth header passthrough, got %q", gotAuth)
	}

	// No second call shows up.
	time.Sleep(300 * time.Millisecond)
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("expected exactly 1 delivery call, got %d", n)
	}
}

func TestDeliveryScheduler_DownstreamFailureIsSwallowed(t *testing.T) {
	fired := make(chan struct{}, 1)
	downstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fired <- struct{}{}
	}))
	defer downstream.Close()

	scheduler := &DeliveryScheduler{
		baseURL: downstream.URL,
		delay:   50 * time.Millisecond,
		http:    downstream.Client(),
	}

	// Schedule must not panic or surface the failure to the caller.
	scheduler.Schedule(7, "")

	select {
	case <-fired:
	case <-time.After(3 * time.Second):
		t.Fatal("delivery trigger never fired")
	}
}

func TestNewDeliveryScheduler_DefaultDelay(t *testing.T) {
	t.Setenv("DELIVERY_TRIGGER_DELAY_SECONDS", "")
	s := NewDeliveryScheduler()
	if s.delay != 5*time.Second {
		t.Fatalf("expected 5s default delay, got %s", s.delay)
	}

	t.Setenv("DELIVERY_TRIGGER_DELAY_SECONDS", "2")
	s = NewDeliveryScheduler()
	if s.delay != 2*time.Second {
		t.Fatalf("expected 2s delay from env, got %s", s.delay)
	}
}
