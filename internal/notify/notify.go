// Package notify delivers fire-and-forget operator notifications.
// Delivery failures are logged and swallowed; nothing in the order flow
// depends on them.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// OrderEvent carries the display-only metadata of a freshly created order.
type OrderEvent struct {
	OrderID     string
	ExternalID  string
	Amount      string
	Currency    string
	Gateway     string
	CoinSymbol  string
	CoinAmount  string
	UserContact string
}

type Notifier interface {
	OrderCreated(ctx context.Context, ev OrderEvent)
}

// Nop is used when no notification channel is configured.
type Nop struct{}

func (Nop) OrderCreated(context.Context, OrderEvent) {}

// Telegram posts order events to a Telegram bot chat.
type Telegram struct {
	http   *resty.Client
	chatID string
	log    *zap.Logger
}

func NewTelegram(botToken, chatID string, log *zap.Logger) *Telegram {
	return &Telegram{
		http: resty.New().
			SetBaseURL("https://api.telegram.org/bot" + botToken).
			SetTimeout(10 * time.Second),
		chatID: chatID,
		log:    log,
	}
}

func (t *Telegram) OrderCreated(ctx context.Context, ev OrderEvent) {
	text := fmt.Sprintf(
		"New exchange order\nOrder: %s\nAmount: %s %s via %s\nCoin: %s %s\nContact: %s",
		ev.OrderID, ev.Amount, ev.Currency, ev.Gateway, ev.CoinAmount, ev.CoinSymbol, ev.UserContact,
	)

	resp, err := t.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"chat_id": t.chatID, "text": text}).
		SetHeader("Content-Type", "application/json").
		Post("/sendMessage")
	if err != nil {
		t.log.Warn("telegram notification failed", zap.String("order_id", ev.OrderID), zap.Error(err))
		return
	}
	if resp.IsError() {
		t.log.Warn("telegram notification rejected",
			zap.String("order_id", ev.OrderID),
			zap.Int("status", resp.StatusCode()),
		)
	}
}
