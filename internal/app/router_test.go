package app

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"peerpay_settlement/internal/provider"
	"peerpay_settlement/internal/service"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newDebugServiceForRouting() *service.DebugService {
	// Handlers are never reached in these tests; only route registration is
	// exercised.
	return service.NewDebugService(nil, nil, service.KnownWorkers{"outbox_processor"}, zap.NewNop())
}

func TestHttpHandlerRegister_DebugRoutes(t *testing.T) {
	t.Run("ReleaseModeReturns404", func(t *testing.T) {
		register := NewHttpHandlerRegister(provider.AppMode("release"), nil, newDebugServiceForRouting())
		mux := http.NewServeMux()
		register(mux)

		for _, path := range []string{"/debug/outbox", "/debug/workers"} {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
			assert.Equal(t, http.StatusNotFound, rec.Code, "path %s", path)
		}
	})

	t.Run("DevModeRegistersRoutes", func(t *testing.T) {
		register := NewHttpHandlerRegister(provider.AppMode("dev"), nil, newDebugServiceForRouting())
		mux := http.NewServeMux()
		register(mux)

		// A POST is rejected by the handler itself, which proves the route is
		// mounted without touching any backing store.
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/debug/outbox", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}
