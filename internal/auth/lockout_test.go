package auth

import (
	"log/slog"
	"os"
	"testing"
	"time"

	pkglogger "github.com/bitleap/linkauth/pkg/logger"
)

func newTestLockoutTracker() *LockoutTracker {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	return NewLockoutTracker(LockoutConfig{
		MaxFailedAttempts: 5,
		LockoutDuration:   15 * time.Minute,
	}, logger, pkglogger.NewAuditLogger(logger))
}

func TestLockoutTracker_AllowsUnknownSource(t *testing.T) {
	lt := newTestLockoutTracker()

	if !lt.CheckAllowed("203.0.113.7") {
		t.Error("unknown source should be allowed")
	}
}

func TestLockoutTracker_LocksAfterThreshold(t *testing.T) {
	lt := newTestLockoutTracker()
	source := "203.0.113.7"

	for i := 0; i < 4; i++ {
		lt.RecordFailure(source, "alice")
		if !lt.CheckAllowed(source) {
			t.Fatalf("source should still be allowed after %d failures", i+1)
		}
	}

	// Fifth failure crosses the threshold
	lt.RecordFailure(source, "bob")

	if lt.CheckAllowed(source) {
		t.Error("source should be locked out after 5 failures")
	}
}

func TestLockoutTracker_LockoutExpires(t *testing.T) {
	lt := newTestLockoutTracker()
	source := "203.0.113.7"

	start := time.Now()
	lt.now = func() time.Time { return start }

	for i := 0; i < 5; i++ {
		lt.RecordFailure(source, "alice")
	}
	if lt.CheckAllowed(source) {
		t.Fatal("source should be locked out")
	}

	// Still locked just inside the window
	lt.now = func() time.Time { return start.Add(14 * time.Minute) }
	if lt.CheckAllowed(source) {
		t.Error("source should stay locked inside the lockout window")
	}

	// Free again once the window elapses, and the record is discarded
	lt.now = func() time.Time { return start.Add(16 * time.Minute) }
	if !lt.CheckAllowed(source) {
		t.Error("source should be allowed after the lockout expires")
	}
	if lt.Size() != 0 {
		t.Errorf("expired record should be discarded, tracker size = %d", lt.Size())
	}
}

func TestLockoutTracker_ClearResetsCount(t *testing.T) {
	lt := newTestLockoutTracker()
	source := "203.0.113.7"

	for i := 0; i < 4; i++ {
		lt.RecordFailure(source, "alice")
	}

	// Successful login wipes the record
	lt.Clear(source)
	if lt.Size() != 0 {
		t.Fatalf("Clear should discard the record, tracker size = %d", lt.Size())
	}

	// A new failure counts from one, so four more failures don't lock
	for i := 0; i < 4; i++ {
		lt.RecordFailure(source, "alice")
	}
	if !lt.CheckAllowed(source) {
		t.Error("source should not be locked after a reset streak of 4")
	}
}

func TestLockoutTracker_SourcesAreIndependent(t *testing.T) {
	lt := newTestLockoutTracker()

	for i := 0; i < 5; i++ {
		lt.RecordFailure("203.0.113.7", "alice")
	}

	if lt.CheckAllowed("203.0.113.7") {
		t.Error("failing source should be locked out")
	}
	if !lt.CheckAllowed("198.51.100.9") {
		t.Error("other sources should be unaffected")
	}
}

func TestLockoutTracker_EvictStale(t *testing.T) {
	lt := newTestLockoutTracker()

	start := time.Now()
	lt.now = func() time.Time { return start }

	lt.RecordFailure("203.0.113.7", "alice") // below threshold, never retries
	for i := 0; i < 5; i++ {
		lt.RecordFailure("198.51.100.9", "bob") // locked out
	}

	// Ten minutes later: the idle sub-threshold record goes, the still
	// active lockout stays
	lt.now = func() time.Time { return start.Add(10 * time.Minute) }
	evicted := lt.EvictStale(5 * time.Minute)

	if evicted != 1 {
		t.Errorf("evicted = %d, want 1", evicted)
	}
	if lt.Size() != 1 {
		t.Errorf("tracker size = %d, want 1", lt.Size())
	}
}

func TestLockoutTracker_ConcurrentFailures(t *testing.T) {
	lt := newTestLockoutTracker()
	source := "203.0.113.7"

	done := make(chan struct{})
	for i := 0; i < 10; i++ {
		go func() {
			lt.RecordFailure(source, "alice")
			done <- struct{}{}
		}()
	}
	for i := 0; i < 10; i++ {
		<-done
	}

	// All ten failures must be counted; lost updates would let an
	// attacker slip under the threshold
	if lt.CheckAllowed(source) {
		t.Error("source should be locked out after 10 concurrent failures")
	}
}
