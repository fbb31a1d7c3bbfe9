package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"foxgate/internal/logger"
)

type Server struct {
	Router *chi.Mux
}

func NewServer(handler *Handler, log *zap.Logger) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(logger.RequestLog(log))
	r.Use(cors)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/gateways", handler.GetGateways)
	r.Get("/currencies", handler.GetCurrencies)

	r.Route("/order", func(r chi.Router) {
		r.Post("/", handler.CreateOrder)
		r.Get("/{orderId}", handler.GetOrder)
		r.Patch("/{orderId}/confirm", handler.ConfirmPayment)
		r.Patch("/{orderId}/cancel", handler.CancelOrder)
		r.Post("/{orderId}/receipt", handler.UploadReceipt)
	})

	return &Server{Router: r}
}
