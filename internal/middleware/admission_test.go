package middleware_test

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stockroom-labs/stockroom/internal/admission"
	custommw "github.com/stockroom-labs/stockroom/internal/middleware"
	"github.com/stretchr/testify/assert"
)

func newController(maxRequests int) *admission.Controller {
	cfg := admission.DefaultConfig()
	cfg.MaxRequests = maxRequests
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	return admission.New(cfg, logger, nil)
}

func serve(handler http.Handler, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	req.RemoteAddr = remoteAddr
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestAdmission_AdmitsUnderCap(t *testing.T) {
	controller := newController(2)
	handler := custommw.Admission(controller, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	assert.Equal(t, http.StatusOK, serve(handler, "1.2.3.4:1000").Code)
	assert.Equal(t, http.StatusOK, serve(handler, "1.2.3.4:1000").Code)
}

func TestAdmission_RateLimitedIs429(t *testing.T) {
	controller := newController(1)
	handlerRan := false
	handler := custommw.Admission(controller, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerRan = true
		w.WriteHeader(http.StatusOK)
	}))

	assert.Equal(t, http.StatusOK, serve(handler, "1.2.3.4:1000").Code)

	handlerRan = false
	rr := serve(handler, "1.2.3.4:1000")
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.False(t, handlerRan, "rejected request must not reach the handler")
	assert.Contains(t, rr.Body.String(), "rate_limit_exceeded")
}

func TestAdmission_LockedOutIs403(t *testing.T) {
	controller := newController(100)
	now := time.Now()
	for i := 0; i < 5; i++ {
		controller.RecordFailure("1.2.3.4", now)
	}

	handler := custommw.Admission(controller, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("blocked request must not reach the handler")
	}))

	rr := serve(handler, "1.2.3.4:1000")
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestAdmission_ClientsAreIndependent(t *testing.T) {
	controller := newController(1)
	handler := custommw.Admission(controller, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	assert.Equal(t, http.StatusOK, serve(handler, "1.2.3.4:1000").Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(handler, "1.2.3.4:1000").Code)
	assert.Equal(t, http.StatusOK, serve(handler, "4.3.2.1:1000").Code)
}
