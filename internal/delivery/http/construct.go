package handlers

import (
	"log/slog"
	"net/http"

	message "chatterbox/internal/delivery/http/message"
	mwLogger "chatterbox/internal/delivery/http/middleware/logger"
	"chatterbox/internal/delivery/http/middleware/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

const indexPage = "<h1>Chatterbox API</h1>"

type HTTPHandler struct {
	MessageHandler *message.MessageHandler
	Logger         *slog.Logger
	AllowedOrigins []string
}

func NewHTTPHandler(messageHandler *message.MessageHandler, logger *slog.Logger, allowedOrigins []string) *HTTPHandler {
	return &HTTPHandler{
		MessageHandler: messageHandler,
		Logger:         logger,
		AllowedOrigins: allowedOrigins,
	}
}

// Router returns the API with its middleware stack.
func (h *HTTPHandler) Router() http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(metrics.PrometheusMiddleware)
	router.Use(mwLogger.New(h.Logger))
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: h.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}))

	h.RegisterRoutes(router)
	return router
}

func (h *HTTPHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Index)

	r.Route("/messages", func(r chi.Router) {
		h.MessageHandler.RegisterRoutes(r)
	})
}

func (h *HTTPHandler) Index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(indexPage)); err != nil {
		h.Logger.Error("failed to write response", slog.String("error", err.Error()))
	}
}
