package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

// mockPinger implements Pinger for tests.
type mockPinger struct {
	pingErr error
}

func (m *mockPinger) PingContext(context.Context) error {
	return m.pingErr
}

func serve(api *HealthAPI, path string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api.RegisterRoutes(r)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestLive(t *testing.T) {
	if w := serve(NewHealthAPI(nil), "/healthz"); w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestReady_NilPinger(t *testing.T) {
	if w := serve(NewHealthAPI(nil), "/readyz"); w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestReady_PingerSuccess(t *testing.T) {
	if w := serve(NewHealthAPI(&mockPinger{}), "/readyz"); w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestReady_PingerFailure(t *testing.T) {
	api := NewHealthAPI(&mockPinger{pingErr: errors.New("connection refused")})
	if w := serve(api, "/readyz"); w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
}
