package foxpays

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const defaultTimeout = 15 * time.Second

// Credentials identify one merchant configuration against the provider.
// They are supplied per request by the proxy layer, never read from globals.
type Credentials struct {
	BaseURL     string
	AccessToken string
}

// Client talks to the FoxPays H2H REST API. One instance per credential set.
type Client struct {
	creds Credentials
	http  *resty.Client
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.SetTimeout(d)
	}
}

func New(creds Credentials, opts ...Option) (*Client, error) {
	if strings.TrimSpace(creds.BaseURL) == "" {
		return nil, &ConfigError{Reason: "base URL is empty"}
	}
	if strings.TrimSpace(creds.AccessToken) == "" {
		return nil, &ConfigError{Reason: "access token is empty"}
	}

	hc := resty.New().
		SetBaseURL(strings.TrimRight(creds.BaseURL, "/")).
		SetTimeout(defaultTimeout).
		SetHeader("Access-Token", creds.AccessToken).
		SetHeader("Accept", "application/json")

	c := &Client{creds: creds, http: hc}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) Currencies(ctx context.Context) ([]Currency, error) {
	var out []Currency
	if err := c.call(ctx, http.MethodGet, "/api/currencies", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) PaymentGateways(ctx context.Context) ([]PaymentGateway, error) {
	var out []PaymentGateway
	if err := c.call(ctx, http.MethodGet, "/api/payment-gateways", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateOrder opens a new H2H order. params.ExternalID must be set by the
// caller and unique per attempt; the provider uses it for correlation.
func (c *Client) CreateOrder(ctx context.Context, params CreateOrderParams) (*Order, error) {
	var out Order
	if err := c.call(ctx, http.MethodPost, "/api/h2h/order", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Order(ctx context.Context, orderID string) (*Order, error) {
	var out Order
	if err := c.call(ctx, http.MethodGet, orderPath(orderID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ConfirmPayment tells the provider the customer claims to have paid.
// This is distinct from the provider's own payment detection.
func (c *Client) ConfirmPayment(ctx context.Context, orderID string) error {
	return c.call(ctx, http.MethodPatch, orderPath(orderID)+"/confirm-client", nil, nil)
}

func (c *Client) CancelOrder(ctx context.Context, orderID string) error {
	return c.call(ctx, http.MethodPatch, orderPath(orderID)+"/cancel", nil, nil)
}

// UploadReceipt attaches a payment receipt to an order (dispute evidence).
func (c *Client) UploadReceipt(ctx context.Context, orderID, filename string, file io.Reader) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetFileReader("receipt", filename, file).
		Post(orderPath(orderID) + "/receipt")
	if err != nil {
		return &TransportError{Cause: err}
	}
	return c.decode(resp, nil)
}

func (c *Client) call(ctx context.Context, method, path string, body any, out any) error {
	req := c.http.R().SetContext(ctx)
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}
	resp, err := req.Execute(method, path)
	if err != nil {
		return &TransportError{Cause: err}
	}
	return c.decode(resp, out)
}

func (c *Client) decode(resp *resty.Response, out any) error {
	body := resp.Body()
	if len(strings.TrimSpace(string(body))) == 0 {
		if resp.IsError() {
			return &APIError{HTTPStatus: resp.StatusCode(), Message: "provider returned empty response"}
		}
		return nil
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return &TransportError{Cause: err, RawBody: truncateBody(body)}
	}

	if resp.IsError() || !env.Success {
		msg := env.Message
		if msg == "" {
			msg = "provider request failed"
		}
		return &APIError{HTTPStatus: resp.StatusCode(), Message: msg, Errors: env.Errors}
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &TransportError{Cause: err, RawBody: truncateBody(env.Data)}
	}
	return nil
}

func orderPath(orderID string) string {
	return "/api/h2h/order/" + url.PathEscape(orderID)
}
