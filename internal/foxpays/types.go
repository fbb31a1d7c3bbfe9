package foxpays

import "encoding/json"

type Status string

const (
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusFail    Status = "fail"
)

// Terminal reports whether the provider will never change this status again.
func (s Status) Terminal() bool {
	return s == StatusSuccess || s == StatusFail
}

type SubStatus string

const (
	SubStatusAccepted              SubStatus = "accepted"
	SubStatusSuccessfullyPaid      SubStatus = "successfully_paid"
	SubStatusPaidByResolvedDispute SubStatus = "successfully_paid_by_resolved_dispute"
	SubStatusWaitingDetails        SubStatus = "waiting_details_to_be_selected"
	SubStatusWaitingForPayment     SubStatus = "waiting_for_payment"
	SubStatusWaitingForDispute     SubStatus = "waiting_for_dispute_to_be_resolved"
	SubStatusCanceledByDispute     SubStatus = "canceled_by_dispute"
	SubStatusExpired               SubStatus = "expired"
	SubStatusCancelled             SubStatus = "cancelled"
)

// PaymentDetail is the requisite the customer pays to. The provider keeps it
// null until the customer (or the provider's operator) picks a detail type.
type PaymentDetail struct {
	Detail     string `json:"detail"`
	DetailType string `json:"detail_type"`
	Initials   string `json:"initials"`
	QRCodeURL  string `json:"qr_code_url,omitempty"`
}

// Order is the provider's authoritative view of an H2H order.
// All timestamps are Unix seconds.
type Order struct {
	OrderID            string         `json:"order_id"`
	ExternalID         string         `json:"external_id"`
	BaseAmount         string         `json:"base_amount"`
	Amount             string         `json:"amount"`
	Currency           string         `json:"currency"`
	Status             Status         `json:"status"`
	SubStatus          SubStatus      `json:"sub_status"`
	PaymentGateway     string         `json:"payment_gateway"`
	PaymentGatewayName string         `json:"payment_gateway_name"`
	PaymentDetail      *PaymentDetail `json:"payment_detail"`
	ExpiresAt          int64          `json:"expires_at"`
	CreatedAt          int64          `json:"created_at"`
	FinishedAt         int64          `json:"finished_at"`
	CurrentServerTime  int64          `json:"current_server_time"`
}

type PaymentGateway struct {
	Code            string   `json:"code"`
	Name            string   `json:"name"`
	Currency        string   `json:"currency"`
	MinLimit        string   `json:"min_limit"`
	MaxLimit        string   `json:"max_limit"`
	ReservationTime int      `json:"reservation_time"`
	DetailTypes     []string `json:"detail_types"`
	IsActive        *bool    `json:"is_active"`
}

// Active treats an absent is_active as true, mirroring the provider contract.
func (g PaymentGateway) Active() bool {
	return g.IsActive == nil || *g.IsActive
}

type Currency struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type CreateOrderParams struct {
	Amount         string `json:"amount"`
	Currency       string `json:"currency"`
	PaymentGateway string `json:"payment_gateway"`
	ExternalID     string `json:"external_id"`
}

// envelope wraps every JSON response of the provider API.
// Callers of the client never see it; only Data is handed out.
type envelope struct {
	Success bool                `json:"success"`
	Data    json.RawMessage     `json:"data"`
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}
