package live

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"peerpay_settlement/internal/conf"
	"peerpay_settlement/pkg/jwt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/net/websocket"
)

func newTestWSHandler(t *testing.T) (*WSHandler, *jwt.Manager, *Hub) {
	t.Helper()
	tokens, err := jwt.NewSymmetric([]byte("test-secret"), "peerpay_settlement")
	require.NoError(t, err)
	hub := NewHub(&conf.LiveConfig{SendBuffer: 8}, zap.NewNop())
	return NewWSHandler(hub, tokens, nil, nil, zap.NewNop()), tokens, hub
}

func TestWSHandler_Gate(t *testing.T) {
	t.Run("RejectsNonGet", func(t *testing.T) {
		h, _, _ := newTestWSHandler(t)
		rec := httptest.NewRecorder()
		h.serveHTTP(rec, httptest.NewRequest(http.MethodPost, "/ws?order=order-1", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})

	t.Run("RequiresOrderParameter", func(t *testing.T) {
		h, _, _ := newTestWSHandler(t)
		rec := httptest.NewRecorder()
		h.serveHTTP(rec, httptest.NewRequest(http.MethodGet, "/ws", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("RejectsMissingToken", func(t *testing.T) {
		h, _, _ := newTestWSHandler(t)
		rec := httptest.NewRecorder()
		h.serveHTTP(rec, httptest.NewRequest(http.MethodGet, "/ws?order=order-1", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("RejectsInvalidToken", func(t *testing.T) {
		h, _, _ := newTestWSHandler(t)
		rec := httptest.NewRecorder()
		h.serveHTTP(rec, httptest.NewRequest(http.MethodGet, "/ws?order=order-1&token=garbage", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("RejectsTokenWithoutUserID", func(t *testing.T) {
		h, tokens, _ := newTestWSHandler(t)
		token, err := tokens.Generate(map[string]interface{}{"role": "guest"})
		require.NoError(t, err)

		rec := httptest.NewRecorder()
		h.serveHTTP(rec, httptest.NewRequest(http.MethodGet, "/ws?order=order-1&token="+token, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("AcceptsBearerHeader", func(t *testing.T) {
		h, tokens, _ := newTestWSHandler(t)
		token, err := tokens.Generate(map[string]interface{}{"user_id": "user-1"})
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/ws?order=order-1", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		userID, err := h.authenticate(req)
		require.NoError(t, err)
		assert.Equal(t, "user-1", userID)
	})
}

func TestWSHandler_StreamsHubMessages(t *testing.T) {
	h, tokens, hub := newTestWSHandler(t)
	token, err := tokens.Generate(map[string]interface{}{"user_id": "user-1"})
	require.NoError(t, err)

	mux := http.NewServeMux()
	h.Register(mux)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?order=order-1&token=" + token
	conn, err := websocket.Dial(wsURL, "", srv.URL)
	require.NoError(t, err)
	defer conn.Close()

	// Wait for the subscription before delivering.
	require.Eventually(t, func() bool {
		return hub.SubscriberCount("order-1") == 1
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, hub.Deliver(context.Background(), "order-1", []byte(`{"type":"order_created"}`)))

	var received string
	require.NoError(t, websocket.Message.Receive(conn, &received))
	assert.Equal(t, `{"type":"order_created"}`, received)
}
