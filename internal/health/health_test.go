package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

type fakePinger struct {
	err error
}

func (f *fakePinger) PingContext(context.Context) error { return f.err }

func newTestRouter(db Pinger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/healthz", healthzHandler(db))
	return router
}

func TestHealthzOK(t *testing.T) {
	router := newTestRouter(&fakePinger{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `"status":"ok"`) || !strings.Contains(body, `"db":"up"`) {
		t.Fatalf("body = %s", body)
	}
}

func TestHealthzDBDown(t *testing.T) {
	router := newTestRouter(&fakePinger{err: errors.New("connection refused")})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"db":"down"`) {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestHealthzNoDB(t *testing.T) {
	router := newTestRouter(nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), `"db"`) {
		t.Fatalf("nil pinger should omit db field: %s", rec.Body.String())
	}
}
