package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"

	"poseidon-capital/backend/internal/bidlist/domain"
)

type memRepo struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*domain.BidList
}

func (r *memRepo) GetByID(ctx context.Context, id int64) (*domain.BidList, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.byID[id]; ok {
		b2 := *b
		return &b2, nil
	}
	return nil, nil
}

func (r *memRepo) List(ctx context.Context) ([]*domain.BidList, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.BidList, 0, len(r.byID))
	for _, b := range r.byID {
		b2 := *b
		out = append(out, &b2)
	}
	return out, nil
}

func (r *memRepo) Create(ctx context.Context, b *domain.BidList) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	b.ID = r.nextID
	b2 := *b
	r.byID[b.ID] = &b2
	return nil
}

func (r *memRepo) Update(ctx context.Context, b *domain.BidList) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if stored, ok := r.byID[b.ID]; ok {
		stored.Account = b.Account
		stored.Type = b.Type
		stored.BidQuantity = b.BidQuantity
		stored.RevisionDate = b.RevisionDate
	}
	return nil
}

func (r *memRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, id)
	return nil
}

func newTestRouter() (*gin.Engine, *memRepo) {
	gin.SetMode(gin.TestMode)
	repo := &memRepo{byID: map[int64]*domain.BidList{}}
	r := gin.New()
	NewBidListAPI(repo, nil).RegisterRoutes(r)
	return r, repo
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateBidList(t *testing.T) {
	r, repo := newTestRouter()

	w := doJSON(t, r, http.MethodPost, "/bidLists",
		`{"account":"acc-1","type":"equity","bidQuantity":10.5,"commentary":"initial"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body %s", w.Code, w.Body)
	}
	b, _ := repo.GetByID(context.Background(), 1)
	if b == nil || b.Account != "acc-1" || b.BidQuantity == nil || *b.BidQuantity != 10.5 {
		t.Errorf("stored = %+v, want acc-1 with quantity 10.5", b)
	}
	if b.CreationDate == nil {
		t.Error("creation date should be stamped")
	}
}

func TestCreateBidList_Validation(t *testing.T) {
	r, repo := newTestRouter()

	tests := []struct {
		name string
		body string
	}{
		{"missing account", `{"type":"equity"}`},
		{"short account", `{"account":"ab","type":"equity"}`},
		{"long status", `{"account":"acc-1","type":"equity","status":"01234567890"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := doJSON(t, r, http.MethodPost, "/bidLists", tt.body); w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400; body %s", w.Code, w.Body)
			}
		})
	}
	if len(repo.byID) != 0 {
		t.Errorf("rows = %d, want 0", len(repo.byID))
	}
}

func TestUpdateBidList(t *testing.T) {
	r, repo := newTestRouter()
	doJSON(t, r, http.MethodPost, "/bidLists", `{"account":"acc-1","type":"equity","commentary":"initial"}`)

	w := doJSON(t, r, http.MethodPut, "/bidLists/1", `{"account":"acc-2","type":"bond","bidQuantity":7}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", w.Code, w.Body)
	}
	b, _ := repo.GetByID(context.Background(), 1)
	if b.Account != "acc-2" || b.Type != "bond" || b.BidQuantity == nil || *b.BidQuantity != 7 {
		t.Errorf("stored = %+v, want mutable fields overwritten", b)
	}
	// Immutable descriptive data survives the update.
	if b.Commentary != "initial" {
		t.Errorf("commentary = %q, want untouched", b.Commentary)
	}
	if b.RevisionDate == nil {
		t.Error("revision date should be stamped")
	}
}

func TestUpdateBidList_NotFound(t *testing.T) {
	r, _ := newTestRouter()

	w := doJSON(t, r, http.MethodPut, "/bidLists/42", `{"account":"acc-2","type":"bond"}`)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestDeleteBidList(t *testing.T) {
	r, repo := newTestRouter()
	doJSON(t, r, http.MethodPost, "/bidLists", `{"account":"acc-1","type":"equity"}`)

	if w := doJSON(t, r, http.MethodDelete, "/bidLists/1", ""); w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", w.Code)
	}
	if len(repo.byID) != 0 {
		t.Error("row should be removed")
	}
	if w := doJSON(t, r, http.MethodDelete, "/bidLists/1", ""); w.Code != http.StatusNotFound {
		t.Errorf("repeat delete status = %d, want 404", w.Code)
	}
}

func TestListBidLists(t *testing.T) {
	r, _ := newTestRouter()

	w := doJSON(t, r, http.MethodGet, "/bidLists", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if got := strings.TrimSpace(w.Body.String()); got != "[]" {
		t.Errorf("empty list body = %s, want []", got)
	}

	doJSON(t, r, http.MethodPost, "/bidLists", `{"account":"acc-1","type":"equity"}`)
	w = doJSON(t, r, http.MethodGet, "/bidLists", "")
	var items []json.RawMessage
	if err := json.Unmarshal(w.Body.Bytes(), &items); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(items) != 1 {
		t.Errorf("len = %d, want 1", len(items))
	}
}
