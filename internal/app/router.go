package app

import (
	"net/http"

	"peerpay_settlement/internal/live"
	"peerpay_settlement/internal/provider"
	"peerpay_settlement/internal/service"
)

// NewHttpHandlerRegister wires the HTTP surface: the live websocket endpoint
// always, the debug routes only outside release mode. Skipping registration
// entirely is what makes the debug surface fail closed: in release the
// routes 404 like any other unknown path, revealing nothing.
func NewHttpHandlerRegister(mode provider.AppMode, ws *live.WSHandler, debug *service.DebugService) HttpHandlerRegister {
	return func(mux *http.ServeMux) {
		if ws != nil {
			ws.Register(mux)
		}
		if debug != nil && mode != "release" {
			debug.Register(mux)
		}
	}
}
