package audit

import (
	"context"
	"errors"
	"sync"
	"testing"

	"poseidon-capital/backend/internal/audit/domain"
)

type memAuditRepo struct {
	mu      sync.Mutex
	entries []*domain.AuditLog
	fail    bool
}

func (r *memAuditRepo) Create(ctx context.Context, a *domain.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errors.New("insert failed")
	}
	r.entries = append(r.entries, a)
	return nil
}

func (r *memAuditRepo) ListByResource(ctx context.Context, resource, resourceID string, limit int32) ([]*domain.AuditLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.AuditLog
	for _, a := range r.entries {
		if a.Resource == resource && a.ResourceID == resourceID {
			out = append(out, a)
		}
	}
	return out, nil
}

func TestLogEvent(t *testing.T) {
	repo := &memAuditRepo{}
	l := NewLogger(repo, func(context.Context) string { return "10.0.0.7" })

	l.LogEvent(context.Background(), "admin", "user_created", "user", "42", `{"username":"alice"}`)

	if len(repo.entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(repo.entries))
	}
	e := repo.entries[0]
	if e.ID == "" {
		t.Error("entry ID should be assigned")
	}
	if e.Actor != "admin" || e.Action != "user_created" || e.Resource != "user" || e.ResourceID != "42" {
		t.Errorf("entry = %+v, want actor/action/resource/resource_id recorded", e)
	}
	if e.IP != "10.0.0.7" {
		t.Errorf("IP = %q, want %q", e.IP, "10.0.0.7")
	}
	if e.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}
}

func TestLogEvent_NilExtractor(t *testing.T) {
	repo := &memAuditRepo{}
	l := NewLogger(repo, nil)
	l.LogEvent(context.Background(), "admin", "user_deleted", "user", "42", "")
	if len(repo.entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(repo.entries))
	}
	if repo.entries[0].IP != "unknown" {
		t.Errorf("IP = %q, want %q", repo.entries[0].IP, "unknown")
	}
}

func TestLogEvent_BestEffort(t *testing.T) {
	repo := &memAuditRepo{fail: true}
	l := NewLogger(repo, nil)
	// Must not panic or propagate the repository failure.
	l.LogEvent(context.Background(), "admin", "user_created", "user", "42", "")
}

func TestLogEvent_NilLogger(t *testing.T) {
	var l *Logger
	l.LogEvent(context.Background(), "admin", "user_created", "user", "42", "")
}
