// Package audit records back-office mutations (who changed what) without ever
// failing the mutation itself.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"poseidon-capital/backend/internal/audit/domain"
	auditrepo "poseidon-capital/backend/internal/audit/repository"
)

// IPExtractor returns the client IP for the request in ctx.
type IPExtractor func(context.Context) string

// Recorder writes a single audit event with explicit action/resource.
// LogEvent is best-effort: failures are logged and do not affect the caller.
type Recorder interface {
	LogEvent(ctx context.Context, actor, action, resource, resourceID, metadata string)
}

// Logger implements Recorder using the audit repository and an optional IP extractor.
type Logger struct {
	repo        auditrepo.Repository
	ipExtractor IPExtractor
}

// NewLogger returns a Recorder that persists to repo and uses ipExtractor for client IP.
// ipExtractor may be nil; then IP is recorded as "unknown".
func NewLogger(repo auditrepo.Repository, ipExtractor IPExtractor) *Logger {
	return &Logger{repo: repo, ipExtractor: ipExtractor}
}

// LogEvent writes one audit log entry. Best-effort: errors are logged and not returned.
func (l *Logger) LogEvent(ctx context.Context, actor, action, resource, resourceID, metadata string) {
	if l == nil || l.repo == nil {
		return
	}
	ip := "unknown"
	if l.ipExtractor != nil {
		if extracted := l.ipExtractor(ctx); extracted != "" {
			ip = extracted
		}
	}
	entry := &domain.AuditLog{
		ID:         uuid.New().String(),
		Actor:      actor,
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		IP:         ip,
		Metadata:   metadata,
		CreatedAt:  time.Now().UTC(),
	}
	if err := l.repo.Create(ctx, entry); err != nil {
		log.Error().Err(err).
			Str("action", action).
			Str("resource", resource).
			Msg("audit: failed to log event")
	}
}
