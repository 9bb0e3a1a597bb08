package auth

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	pkglogger "github.com/bitleap/linkauth/pkg/logger"
)

// LockoutConfig holds the thresholds for failed-attempt tracking
type LockoutConfig struct {
	MaxFailedAttempts int
	LockoutDuration   time.Duration
}

// lockoutRecord tracks failed attempts from a single source
type lockoutRecord struct {
	count        int
	firstAttempt time.Time
	lastAttempt  time.Time
	usernames    map[string]struct{}
	lockedUntil  time.Time // zero while below threshold
}

// LockoutTracker counts failed authentication attempts per source (client
// IP) and locks a source out once it crosses the threshold. State is
// process-local and owned by the instance; the request layer receives it by
// handle, never through package globals.
//
// Lockout is per source, not per account: it stops credential stuffing from
// one origin but does not shield a single account from a distributed attack.
type LockoutTracker struct {
	mu      sync.Mutex
	records map[string]*lockoutRecord
	config  LockoutConfig
	logger  *slog.Logger
	audit   *pkglogger.AuditLogger
	now     func() time.Time
}

// NewLockoutTracker creates a LockoutTracker
func NewLockoutTracker(config LockoutConfig, logger *slog.Logger, audit *pkglogger.AuditLogger) *LockoutTracker {
	return &LockoutTracker{
		records: make(map[string]*lockoutRecord),
		config:  config,
		logger:  logger,
		audit:   audit,
		now:     time.Now,
	}
}

// CheckAllowed reports whether authentication attempts from source are
// currently permitted. An expired lockout is discarded on the way through,
// so the source starts fresh.
func (lt *LockoutTracker) CheckAllowed(source string) bool {
	lt.mu.Lock()
	defer lt.mu.Unlock()

	rec, ok := lt.records[source]
	if !ok {
		return true
	}

	if !rec.lockedUntil.IsZero() {
		if lt.now().After(rec.lockedUntil) {
			delete(lt.records, source)
			return true
		}
		return false
	}

	return true
}

// RecordFailure increments the failure count for source and remembers which
// username was attempted. Crossing the threshold sets the lockout window and
// emits a security-audit line listing every username tried from the source.
func (lt *LockoutTracker) RecordFailure(source, username string) {
	lt.mu.Lock()
	defer lt.mu.Unlock()

	now := lt.now()
	rec, ok := lt.records[source]
	if !ok {
		rec = &lockoutRecord{
			firstAttempt: now,
			usernames:    make(map[string]struct{}),
		}
		lt.records[source] = rec
	}

	rec.count++
	rec.lastAttempt = now
	if username != "" {
		rec.usernames[username] = struct{}{}
	}

	if rec.count >= lt.config.MaxFailedAttempts && rec.lockedUntil.IsZero() {
		rec.lockedUntil = now.Add(lt.config.LockoutDuration)

		usernames := make([]string, 0, len(rec.usernames))
		for name := range rec.usernames {
			usernames = append(usernames, name)
		}
		sort.Strings(usernames)

		lt.audit.LogLockout(source, rec.count, rec.lockedUntil, usernames)
	}
}

// Clear discards the record for source unconditionally. Called after a
// successful authentication so a later failure counts from one, not from
// where the old streak left off.
func (lt *LockoutTracker) Clear(source string) {
	lt.mu.Lock()
	defer lt.mu.Unlock()
	delete(lt.records, source)
}

// EvictStale removes records whose last activity is older than maxIdle and
// whose lockout (if any) has expired. Sources that failed a few times and
// never came back would otherwise accumulate forever.
func (lt *LockoutTracker) EvictStale(maxIdle time.Duration) int {
	lt.mu.Lock()
	defer lt.mu.Unlock()

	now := lt.now()
	evicted := 0
	for source, rec := range lt.records {
		if !rec.lockedUntil.IsZero() && now.Before(rec.lockedUntil) {
			continue
		}
		if now.Sub(rec.lastAttempt) > maxIdle {
			delete(lt.records, source)
			evicted++
		}
	}

	if evicted > 0 {
		lt.logger.Info("evicted stale lockout records", slog.Int("count", evicted))
	}

	return evicted
}

// Size returns the number of tracked sources
func (lt *LockoutTracker) Size() int {
	lt.mu.Lock()
	defer lt.mu.Unlock()
	return len(lt.records)
}
