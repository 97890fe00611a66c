package store

import (
	"testing"
	"time"

	"negotiatord/internal/negotiation"
)

func TestActiveCache_PutGetRoundtrip(t *testing.T) {
	t.Parallel()
	c := NewActiveCache()
	s := &negotiation.Session{SessionID: "sess-1", ExpiresAt: time.Now().Add(time.Minute)}
	c.Put(s)

	got, ok := c.Get("sess-1")
	if !ok || got.SessionID != "sess-1" {
		t.Fatalf("Get = %+v, %v", got, ok)
	}
}

func TestActiveCache_GetExpiredEntryMisses(t *testing.T) {
	t.Parallel()
	c := NewActiveCache()
	s := &negotiation.Session{SessionID: "sess-1", ExpiresAt: time.Now().Add(-time.Second)}
	c.Put(s)

	_, ok := c.Get("sess-1")
	if ok {
		t.Errorf("expected expired session to miss")
	}
}

func TestActiveCache_Invalidate(t *testing.T) {
	t.Parallel()
	c := NewActiveCache()
	s := &negotiation.Session{SessionID: "sess-1", ExpiresAt: time.Now().Add(time.Minute)}
	c.Put(s)
	c.Invalidate("sess-1")

	if _, ok := c.Get("sess-1"); ok {
		t.Errorf("expected session gone after Invalidate")
	}
}

func TestAcquireLock_SecondCallerBlockedUntilRelease(t *testing.T) {
	t.Parallel()
	c := NewActiveCache()

	if !c.AcquireLock("sess-1") {
		t.Fatalf("first AcquireLock should succeed")
	}
	if c.AcquireLock("sess-1") {
		t.Errorf("second AcquireLock should fail while held")
	}

	c.ReleaseLock("sess-1")
	if !c.AcquireLock("sess-1") {
		t.Errorf("AcquireLock should succeed after release")
	}
}

func TestCooldown_SetAndExpire(t *testing.T) {
	t.Parallel()
	c := NewActiveCache()
	c.SetCooldown("sess-1", 10*time.Millisecond)

	if !c.OnCooldown("sess-1") {
		t.Fatalf("expected OnCooldown true immediately after SetCooldown")
	}
	time.Sleep(20 * time.Millisecond)
	if c.OnCooldown("sess-1") {
		t.Errorf("expected cooldown to have elapsed")
	}
}

func TestAllowRequest_CapsAtMaxPerMinute(t *testing.T) {
	t.Parallel()
	c := NewActiveCache()

	for i := 0; i < 3; i++ {
		if !c.AllowRequest("1.2.3.4", 3) {
			t.Fatalf("request %d should be allowed", i)
		}
	}
	if c.AllowRequest("1.2.3.4", 3) {
		t.Errorf("4th request should be rejected at cap of 3")
	}
	if !c.AllowRequest("5.6.7.8", 3) {
		t.Errorf("different IP should have its own window")
	}
}
