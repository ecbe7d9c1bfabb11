package ratelimit

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestAllowUpToLimit(t *testing.T) {
	l := New(3, time.Minute)

	for i := 0; i < 3; i++ {
		if !l.Allow("1.2.3.4") {
			t.Fatalf("request %d denied below the limit", i+1)
		}
	}
	if l.Allow("1.2.3.4") {
		t.Error("request over the limit allowed")
	}
	// Other keys are unaffected.
	if !l.Allow("5.6.7.8") {
		t.Error("separate key denied")
	}
}

func TestWindowExpires(t *testing.T) {
	l := New(1, 30*time.Millisecond)

	if !l.Allow("k") {
		t.Fatal("first request denied")
	}
	if l.Allow("k") {
		t.Fatal("second request allowed within window")
	}
	time.Sleep(50 * time.Millisecond)
	if !l.Allow("k") {
		t.Error("request denied after window expired")
	}
}

func TestReset(t *testing.T) {
	l := New(1, time.Minute)

	l.Allow("k")
	if l.Allow("k") {
		t.Fatal("limit not enforced")
	}
	l.Reset("k")
	if !l.Allow("k") {
		t.Error("request denied after Reset")
	}
}

func TestStop(t *testing.T) {
	l := New(1, 10*time.Millisecond)
	l.Stop()

	// The limiter stays usable after the cleanup loop ends.
	if !l.Allow("k") {
		t.Error("first request denied after Stop")
	}
	if l.Allow("k") {
		t.Error("limit not enforced after Stop")
	}
}

func TestClientKey(t *testing.T) {
	r := httptest.NewRequest("POST", "/api/auth/login", nil)
	r.RemoteAddr = "203.0.113.5:51234"
	if got := ClientKey(r); got != "203.0.113.5" {
		t.Errorf("ClientKey = %q, want remote host", got)
	}

	r.Header.Set("X-Forwarded-For", " 198.51.100.7 , 10.0.0.1")
	if got := ClientKey(r); got != "198.51.100.7" {
		t.Errorf("ClientKey = %q, want first forwarded hop", got)
	}
}
