package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/DoyleJ11/arena-sync/internal/engine"
	"github.com/DoyleJ11/arena-sync/internal/hub"
	"github.com/DoyleJ11/arena-sync/internal/ws"
)

func SetupRoutes(h *hub.Hub, eng engine.Enqueuer, log *zap.Logger) http.Handler {
	log = log.Named("http")

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(log))

	r.Get("/healthz", Healthz)
	r.Get("/status", Status(h))
	r.Get("/arena", Arena(h))
	r.Get("/logs", Logs(h))

	r.Post("/moves", SubmitMoves(eng))
	r.Post("/reconnect", Reconnect(eng))
	r.Post("/logs", RequestLogs(eng))

	r.Get("/ws", ws.Handler(h, eng, log))
	return r
}

func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Debug("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("took", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}
