// Package gateway orchestrates the order lifecycle against the provider:
// validation, external-id generation, response shaping and the
// confirm/cancel-then-refetch round trips.
package gateway

import (
	"context"
	"errors"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"foxgate/internal/foxpays"
	"foxgate/internal/notify"
)

var (
	ErrAmountNotPositive = errors.New("amount must be a positive number")
	ErrCurrencyRequired  = errors.New("currency is required")
	ErrGatewayRequired   = errors.New("payment gateway is required")
	ErrOrderIDRequired   = errors.New("order id is required")
)

type Service struct {
	log      *zap.Logger
	notifier notify.Notifier
	now      func() time.Time
}

func NewService(log *zap.Logger, notifier notify.Notifier) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Service{log: log, notifier: notifier, now: time.Now}
}

type CreateOrderInput struct {
	Amount         string
	Currency       string
	PaymentGateway string
	ExternalID     string

	// Display-only metadata, echoed back and used for notifications.
	CoinID      string
	CoinSymbol  string
	CoinAmount  string
	UserContact string
}

func (s *Service) CreateOrder(ctx context.Context, client *foxpays.Client, in CreateOrderInput) (*OrderRecord, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(in.Amount))
	if err != nil || !amount.IsPositive() {
		return nil, ErrAmountNotPositive
	}
	if strings.TrimSpace(in.Currency) == "" {
		return nil, ErrCurrencyRequired
	}
	if strings.TrimSpace(in.PaymentGateway) == "" {
		return nil, ErrGatewayRequired
	}

	externalID := in.ExternalID
	if externalID == "" {
		externalID = NewExternalID()
	}

	order, err := client.CreateOrder(ctx, foxpays.CreateOrderParams{
		Amount:         amount.String(),
		Currency:       in.Currency,
		PaymentGateway: in.PaymentGateway,
		ExternalID:     externalID,
	})
	if err != nil {
		return nil, err
	}

	detail, pending := normalizeDetail(order)
	record := &OrderRecord{
		FoxpaysOrderID:     order.OrderID,
		ExternalID:         externalID,
		Status:             order.Status,
		SubStatus:          order.SubStatus,
		Amount:             order.Amount,
		BaseAmount:         order.BaseAmount,
		Currency:           order.Currency,
		PaymentGateway:     order.PaymentGateway,
		PaymentGatewayName: order.PaymentGatewayName,
		PaymentDetail:      detail,
		DetailsPending:     pending,
		ExpiresAt:          order.ExpiresAt,
		CreatedAt:          order.CreatedAt,
		CoinID:             in.CoinID,
		CoinSymbol:         in.CoinSymbol,
		CoinAmount:         in.CoinAmount,
		UserContact:        in.UserContact,
	}

	s.log.Info("provider order created",
		zap.String("order_id", order.OrderID),
		zap.String("external_id", externalID),
		zap.String("gateway", order.PaymentGateway),
	)

	go s.notifier.OrderCreated(context.WithoutCancel(ctx), notify.OrderEvent{
		OrderID:     order.OrderID,
		ExternalID:  externalID,
		Amount:      order.Amount,
		Currency:    order.Currency,
		Gateway:     order.PaymentGateway,
		CoinSymbol:  in.CoinSymbol,
		CoinAmount:  in.CoinAmount,
		UserContact: in.UserContact,
	})

	return record, nil
}

// OrderStatus always hits the provider live. Order state is time-sensitive;
// caching here would be a correctness bug.
func (s *Service) OrderStatus(ctx context.Context, client *foxpays.Client, orderID string) (*StatusSnapshot, error) {
	if strings.TrimSpace(orderID) == "" {
		return nil, ErrOrderIDRequired
	}
	order, err := client.Order(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return s.snapshot(order), nil
}

// ConfirmPayment signals "I have paid" and re-fetches so the caller gets the
// post-confirmation state in one round trip.
func (s *Service) ConfirmPayment(ctx context.Context, client *foxpays.Client, orderID string) (*StatusSnapshot, error) {
	if strings.TrimSpace(orderID) == "" {
		return nil, ErrOrderIDRequired
	}
	if err := client.ConfirmPayment(ctx, orderID); err != nil {
		return nil, err
	}
	return s.OrderStatus(ctx, client, orderID)
}

func (s *Service) CancelOrder(ctx context.Context, client *foxpays.Client, orderID string) (*StatusSnapshot, error) {
	if strings.TrimSpace(orderID) == "" {
		return nil, ErrOrderIDRequired
	}
	if err := client.CancelOrder(ctx, orderID); err != nil {
		return nil, err
	}
	return s.OrderStatus(ctx, client, orderID)
}

func (s *Service) UploadReceipt(ctx context.Context, client *foxpays.Client, orderID, filename string, file io.Reader) error {
	if strings.TrimSpace(orderID) == "" {
		return ErrOrderIDRequired
	}
	return client.UploadReceipt(ctx, orderID, filename, file)
}

func (s *Service) snapshot(order *foxpays.Order) *StatusSnapshot {
	detail, pending := normalizeDetail(order)

	// Prefer the provider's clock for the countdown; local time is only a
	// fallback when the response carries no server time.
	serverNow := order.CurrentServerTime
	if serverNow == 0 {
		serverNow = s.now().Unix()
	}
	remaining := order.ExpiresAt - serverNow
	if remaining < 0 {
		remaining = 0
	}

	return &StatusSnapshot{
		OrderID:            order.OrderID,
		ExternalID:         order.ExternalID,
		Status:             order.Status,
		SubStatus:          order.SubStatus,
		Amount:             order.Amount,
		BaseAmount:         order.BaseAmount,
		Currency:           order.Currency,
		PaymentGateway:     order.PaymentGateway,
		PaymentGatewayName: order.PaymentGatewayName,
		PaymentDetail:      detail,
		DetailsPending:     pending,
		ExpiresAt:          order.ExpiresAt,
		CreatedAt:          order.CreatedAt,
		FinishedAt:         order.FinishedAt,
		ServerTime:         order.CurrentServerTime,
		RemainingSeconds:   remaining,
		IsExpired:          order.Status == foxpays.StatusPending && remaining == 0,
	}
}

// normalizeDetail maps a null provider detail to an empty card placeholder.
// The pending flag keeps "provider is still waiting for a detail type to be
// selected" distinguishable from "provider returned nothing unexpectedly".
func normalizeDetail(order *foxpays.Order) (PaymentDetail, bool) {
	if order.PaymentDetail == nil {
		return PaymentDetail{Detail: "", DetailType: "card", Initials: ""},
			order.SubStatus == foxpays.SubStatusWaitingDetails
	}
	return PaymentDetail{
		Detail:     order.PaymentDetail.Detail,
		DetailType: order.PaymentDetail.DetailType,
		Initials:   order.PaymentDetail.Initials,
		QRCodeURL:  order.PaymentDetail.QRCodeURL,
	}, false
}

// NewExternalID builds the caller-side correlation id: a timestamp for
// ordering plus a random suffix to make collisions negligible.
func NewExternalID() string {
	ts := strconv.FormatInt(time.Now().UnixMilli(), 36)
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return "exch-" + ts + "-" + suffix
}
