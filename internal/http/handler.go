// Package http exposes the proxy endpoints the storefront UI talks to.
// This layer is the only place provider credentials are handled; they are
// taken from request headers (with an optional single-tenant config
// fallback) and are never echoed back.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"foxgate/internal/catalog"
	"foxgate/internal/foxpays"
	"foxgate/internal/gateway"
)

const (
	headerProviderURL   = "X-Provider-URL"
	headerProviderToken = "X-Provider-Token"

	maxReceiptBytes = 10 << 20
)

var errNotConfigured = errors.New("provider not configured")

type Handler struct {
	svc      *gateway.Service
	caches   *catalog.Registry
	fallback foxpays.Credentials
	timeout  time.Duration
	log      *zap.Logger
}

func NewHandler(svc *gateway.Service, caches *catalog.Registry, fallback foxpays.Credentials, timeout time.Duration, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{svc: svc, caches: caches, fallback: fallback, timeout: timeout, log: log}
}

// credentials resolves the per-request merchant configuration. It must be
// checked before any provider call so unconfigured requests fail closed.
func (h *Handler) credentials(r *http.Request) (foxpays.Credentials, error) {
	creds := foxpays.Credentials{
		BaseURL:     r.Header.Get(headerProviderURL),
		AccessToken: r.Header.Get(headerProviderToken),
	}
	if creds.BaseURL == "" {
		creds.BaseURL = h.fallback.BaseURL
	}
	if creds.AccessToken == "" {
		creds.AccessToken = h.fallback.AccessToken
	}
	if creds.BaseURL == "" || creds.AccessToken == "" {
		return foxpays.Credentials{}, errNotConfigured
	}
	return creds, nil
}

func (h *Handler) client(r *http.Request) (*foxpays.Client, foxpays.Credentials, error) {
	creds, err := h.credentials(r)
	if err != nil {
		return nil, foxpays.Credentials{}, err
	}
	var opts []foxpays.Option
	if h.timeout > 0 {
		opts = append(opts, foxpays.WithTimeout(h.timeout))
	}
	client, err := foxpays.New(creds, opts...)
	if err != nil {
		return nil, foxpays.Credentials{}, err
	}
	return client, creds, nil
}

func (h *Handler) GetGateways(w http.ResponseWriter, r *http.Request) {
	client, creds, err := h.client(r)
	if err != nil {
		h.writeFailure(w, err)
		return
	}

	cache := h.caches.For(creds.BaseURL, creds.AccessToken, client.PaymentGateways)
	gateways, res, err := cache.Get(r.Context())
	if err != nil {
		h.writeFailure(w, err)
		return
	}

	if raw := r.URL.Query().Get("amount"); raw != "" {
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid amount")
			return
		}
		gateways = catalog.FilterByAmount(gateways, amount)
	}

	writeJSON(w, http.StatusOK, gatewaysResponse{
		Success: true,
		Data:    gateways,
		Cached:  res.Cached,
		Stale:   res.Stale,
	})
}

func (h *Handler) GetCurrencies(w http.ResponseWriter, r *http.Request) {
	client, _, err := h.client(r)
	if err != nil {
		h.writeFailure(w, err)
		return
	}
	currencies, err := client.Currencies(r.Context())
	if err != nil {
		h.writeFailure(w, err)
		return
	}
	writeData(w, currencies)
}

type createOrderRequest struct {
	Amount         string `json:"amount"`
	Currency       string `json:"currency"`
	PaymentGateway string `json:"payment_gateway"`
	ExternalID     string `json:"external_id"`
	CoinID         string `json:"coinId"`
	CoinSymbol     string `json:"coinSymbol"`
	CoinAmount     string `json:"coinAmount"`
	UserContact    string `json:"userContact"`
}

func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	client, _, err := h.client(r)
	if err != nil {
		h.writeFailure(w, err)
		return
	}

	var req createOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	record, err := h.svc.CreateOrder(r.Context(), client, gateway.CreateOrderInput{
		Amount:         req.Amount,
		Currency:       req.Currency,
		PaymentGateway: req.PaymentGateway,
		ExternalID:     req.ExternalID,
		CoinID:         req.CoinID,
		CoinSymbol:     req.CoinSymbol,
		CoinAmount:     req.CoinAmount,
		UserContact:    req.UserContact,
	})
	if err != nil {
		h.writeFailure(w, err)
		return
	}
	writeData(w, record)
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	client, _, err := h.client(r)
	if err != nil {
		h.writeFailure(w, err)
		return
	}
	snap, err := h.svc.OrderStatus(r.Context(), client, chi.URLParam(r, "orderId"))
	if err != nil {
		h.writeFailure(w, err)
		return
	}
	writeData(w, snap)
}

func (h *Handler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	h.orderAction(w, r, h.svc.ConfirmPayment)
}

func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	h.orderAction(w, r, h.svc.CancelOrder)
}

func (h *Handler) orderAction(
	w http.ResponseWriter,
	r *http.Request,
	action func(ctx context.Context, client *foxpays.Client, orderID string) (*gateway.StatusSnapshot, error),
) {
	client, _, err := h.client(r)
	if err != nil {
		h.writeFailure(w, err)
		return
	}
	snap, err := action(r.Context(), client, chi.URLParam(r, "orderId"))
	if err != nil {
		h.writeFailure(w, err)
		return
	}
	writeData(w, gateway.ActionResult{
		OrderID:   snap.OrderID,
		Status:    snap.Status,
		SubStatus: snap.SubStatus,
	})
}

func (h *Handler) UploadReceipt(w http.ResponseWriter, r *http.Request) {
	client, _, err := h.client(r)
	if err != nil {
		h.writeFailure(w, err)
		return
	}

	if err := r.ParseMultipartForm(maxReceiptBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}
	file, header, err := r.FormFile("receipt")
	if err != nil {
		writeError(w, http.StatusBadRequest, "receipt file is required")
		return
	}
	defer file.Close()

	if err := h.svc.UploadReceipt(r.Context(), client, chi.URLParam(r, "orderId"), header.Filename, file); err != nil {
		h.writeFailure(w, err)
		return
	}
	writeData(w, map[string]string{"orderId": chi.URLParam(r, "orderId")})
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// writeFailure maps the error taxonomy onto the uniform failure envelope:
// configuration and validation problems are the caller's fault (400),
// provider and transport problems are upstream failures (500). Raw provider
// bodies go to the log, not the response.
func (h *Handler) writeFailure(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errNotConfigured) || foxpays.IsConfig(err):
		writeError(w, http.StatusBadRequest, "provider not configured")
	case errors.Is(err, gateway.ErrAmountNotPositive),
		errors.Is(err, gateway.ErrCurrencyRequired),
		errors.Is(err, gateway.ErrGatewayRequired),
		errors.Is(err, gateway.ErrOrderIDRequired):
		writeError(w, http.StatusBadRequest, err.Error())
	case foxpays.IsAPI(err):
		var apiErr *foxpays.APIError
		errors.As(err, &apiErr)
		msg := apiErr.Message
		if msg == "" {
			msg = "provider request failed"
		}
		writeError(w, http.StatusInternalServerError, msg)
	case foxpays.IsTransport(err):
		var trErr *foxpays.TransportError
		errors.As(err, &trErr)
		h.log.Error("provider transport failure",
			zap.Error(trErr.Cause),
			zap.String("raw_body", trErr.RawBody),
		)
		writeError(w, http.StatusInternalServerError, "provider returned malformed response")
	default:
		h.log.Error("unexpected proxy failure", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
