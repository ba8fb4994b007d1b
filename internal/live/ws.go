package live

import (
	"net/http"
	"strings"

	"peerpay_settlement/internal/limiter"
	"peerpay_settlement/pkg/jwt"
	"peerpay_settlement/pkg/relation"

	"go.uber.org/zap"
	"golang.org/x/net/websocket"
)

const wsConnectPolicy = "ws_connect"

// orderParticipantRelation is the Keto relation a subscriber must hold on the
// order before joining its live feed.
const orderParticipantRelation = "participant"

const orderNamespace = "orders"

// WSHandler upgrades authenticated clients to a live subscription on one
// order's event feed. The relation client and rate limiter are optional;
// when nil the corresponding check is skipped, which is how tests and offline
// paths run the handler.
type WSHandler struct {
	hub       *Hub
	tokens    *jwt.Manager
	relations *relation.Client
	limits    *limiter.Manager
	logger    *zap.Logger
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(hub *Hub, tokens *jwt.Manager, relations *relation.Client, limits *limiter.Manager, logger *zap.Logger) *WSHandler {
	return &WSHandler{
		hub:       hub,
		tokens:    tokens,
		relations: relations,
		limits:    limits,
		logger:    logger.Named("WSHandler"),
	}
}

// Register mounts the websocket endpoint on the mux.
func (h *WSHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/ws", h.serveHTTP)
}

func (h *WSHandler) serveHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	orderID := strings.TrimSpace(r.URL.Query().Get("order"))
	if orderID == "" {
		http.Error(w, "missing order parameter", http.StatusBadRequest)
		return
	}

	userID, err := h.authenticate(r)
	if err != nil {
		h.logger.Debug("Websocket auth rejected", zap.Error(err), zap.String("remote", r.RemoteAddr))
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	if h.limits != nil {
		allowed, err := h.limits.Allow(r.Context(), wsConnectPolicy, "ws:"+userID)
		if err != nil {
			h.logger.Error("Rate limit check failed", zap.Error(err), zap.String("user_id", userID))
			http.Error(w, "service unavailable", http.StatusServiceUnavailable)
			return
		}
		if !allowed {
			http.Error(w, "too many connections", http.StatusTooManyRequests)
			return
		}
	}

	if h.relations != nil {
		allowed, err := h.relations.CheckBySubjectId(r.Context(), orderNamespace, orderID, orderParticipantRelation, userID)
		if err != nil {
			h.logger.Error("Participant check failed", zap.Error(err),
				zap.String("order_id", orderID), zap.String("user_id", userID))
			http.Error(w, "service unavailable", http.StatusServiceUnavailable)
			return
		}
		if !allowed {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
	}

	wsHandler := websocket.Handler(func(conn *websocket.Conn) {
		h.serveConn(conn, orderID, userID)
	})
	wsHandler.ServeHTTP(w, r)
}

// authenticate resolves the user id from the token query parameter or the
// Authorization header.
func (h *WSHandler) authenticate(r *http.Request) (string, error) {
	token := strings.TrimSpace(r.URL.Query().Get("token"))
	if token == "" {
		token = strings.TrimSpace(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
	}
	if token == "" {
		return "", jwt.ErrTokenInvalid
	}

	payload, err := h.tokens.Parse(token)
	if err != nil {
		return "", err
	}
	userID, _ := payload["user_id"].(string)
	if strings.TrimSpace(userID) == "" {
		return "", jwt.ErrTokenInvalid
	}
	return userID, nil
}

func (h *WSHandler) serveConn(conn *websocket.Conn, orderID, userID string) {
	defer func() {
		_ = conn.Close()
	}()

	sub := h.hub.Subscribe(orderID)
	defer h.hub.Unsubscribe(orderID, sub)

	h.logger.Info("Live subscription opened",
		zap.String("order_id", orderID), zap.String("user_id", userID))

	// Drain the read side only to detect the peer closing; inbound frames
	// carry no meaning on this feed.
	readClosed := make(chan struct{})
	go func() {
		defer close(readClosed)
		var discard string
		for {
			if err := websocket.Message.Receive(conn, &discard); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case msg := <-sub.Out():
			if err := websocket.Message.Send(conn, string(msg)); err != nil {
				h.logger.Debug("Websocket send failed, closing subscription",
					zap.Error(err), zap.String("order_id", orderID))
				return
			}
		case <-readClosed:
			return
		case <-sub.Done():
			return
		}
	}
}
