package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/tmccall/arenad/internal/middleware"
	"github.com/tmccall/arenad/internal/transport/ws"
)

// RouterConfig holds configuration for the HTTP router
type RouterConfig struct {
	Logger     *slog.Logger
	Hub        *ws.Hub
	Dispatcher *ws.Dispatcher
}

// NewRouter creates the HTTP router: the websocket endpoint plus health
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	r.Use(middleware.Recovery(cfg.Logger, middleware.DefaultPanicHandler))
	r.Use(middleware.Logging(cfg.Logger))

	r.HandleFunc("/ws", func(w http.ResponseWriter, req *http.Request) {
		ws.ServeWS(cfg.Hub, cfg.Dispatcher.HandleMessage, w, req)
	}).Methods(http.MethodGet)

	r.HandleFunc("/healthz", healthHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
