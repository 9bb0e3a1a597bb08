package logger

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// AuditEvent represents a security audit event
type AuditEvent struct {
	EventType     string
	AccountID     int64
	Source        string
	Success       bool
	FailureReason string
	Usernames     []string
	Metadata      map[string]string
}

// AuditLogger provides audit logging functionality
type AuditLogger struct {
	logger *slog.Logger
}

// NewAuditLogger creates a new audit logger
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	return &AuditLogger{
		logger: logger,
	}
}

// LogAuthAttempt logs authentication attempts. Failures log at warn,
// successes at info. Plaintext secrets never appear here.
func (al *AuditLogger) LogAuthAttempt(event AuditEvent) {
	attrs := []slog.Attr{
		slog.String("audit_type", "auth"),
		slog.String("event_type", event.EventType),
		slog.Bool("success", event.Success),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	}

	if event.AccountID != 0 {
		attrs = append(attrs, slog.Int64("account_id", event.AccountID))
	}
	if event.Source != "" {
		attrs = append(attrs, slog.String("source", event.Source))
	}
	if event.FailureReason != "" {
		attrs = append(attrs, slog.String("failure_reason", event.FailureReason))
	}

	if event.Success {
		al.logger.LogAttrs(context.Background(), slog.LevelInfo, "audit", attrs...)
	} else {
		al.logger.LogAttrs(context.Background(), slog.LevelWarn, "audit", attrs...)
	}
}

// LogLockout logs a source lockout with the usernames that were attempted
// from it, for credential-stuffing forensics.
func (al *AuditLogger) LogLockout(source string, attempts int, until time.Time, usernames []string) {
	al.logger.LogAttrs(context.Background(), slog.LevelWarn, "audit",
		slog.String("audit_type", "lockout"),
		slog.String("event_type", "source_locked_out"),
		slog.String("source", source),
		slog.Int("failed_attempts", attempts),
		slog.Time("locked_until", until),
		slog.String("usernames_attempted", strings.Join(usernames, ",")),
	)
}

// LogAccountAction logs general account actions (admin changes, registration)
func (al *AuditLogger) LogAccountAction(eventType string, accountID int64, source string, metadata map[string]string) {
	attrs := []slog.Attr{
		slog.String("audit_type", "account"),
		slog.String("event_type", eventType),
		slog.Int64("account_id", accountID),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	}

	if source != "" {
		attrs = append(attrs, slog.String("source", source))
	}

	for key, val := range metadata {
		attrs = append(attrs, slog.String(key, val))
	}

	al.logger.LogAttrs(context.Background(), slog.LevelInfo, "audit", attrs...)
}
