package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"poseidon-capital/backend/internal/audit/domain"
)

type memAuditRepo struct {
	entries []*domain.AuditLog
}

func (r *memAuditRepo) Create(ctx context.Context, a *domain.AuditLog) error {
	r.entries = append(r.entries, a)
	return nil
}

func (r *memAuditRepo) ListByResource(ctx context.Context, resource, resourceID string, limit int32) ([]*domain.AuditLog, error) {
	var out []*domain.AuditLog
	for _, e := range r.entries {
		if e.Resource == resource && e.ResourceID == resourceID {
			out = append(out, e)
		}
		if int32(len(out)) == limit {
			break
		}
	}
	return out, nil
}

func serve(repo *memAuditRepo, path string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewAuditAPI(repo).RegisterRoutes(r)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestList(t *testing.T) {
	repo := &memAuditRepo{entries: []*domain.AuditLog{
		{ID: "a1", Actor: "jdoe", Action: "user_updated", Resource: "user", ResourceID: "7", IP: "10.0.0.1", CreatedAt: time.Now().UTC()},
		{ID: "a2", Actor: "jdoe", Action: "trade_created", Resource: "trade", ResourceID: "3", IP: "10.0.0.1", CreatedAt: time.Now().UTC()},
	}}

	w := serve(repo, "/auditLogs?resource=user&resourceId=7")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; body %s", w.Code, w.Body)
	}
	var entries []map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &entries); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(entries) != 1 || entries[0]["action"] != "user_updated" {
		t.Errorf("entries = %v, want the single user entry", entries)
	}
}

func TestList_Validation(t *testing.T) {
	repo := &memAuditRepo{}

	tests := []struct {
		name string
		path string
	}{
		{"missing resource", "/auditLogs?resourceId=7"},
		{"missing resource id", "/auditLogs?resource=user"},
		{"bad limit", "/auditLogs?resource=user&resourceId=7&limit=zero"},
		{"negative limit", "/auditLogs?resource=user&resourceId=7&limit=-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := serve(repo, tt.path); w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
		})
	}
}
