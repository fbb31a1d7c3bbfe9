package gateway

import "foxgate/internal/foxpays"

// PaymentDetail is the normalized requisite shown to the customer. When the
// provider has not picked one yet it degrades to an empty card placeholder.
type PaymentDetail struct {
	Detail     string `json:"detail"`
	DetailType string `json:"detailType"`
	Initials   string `json:"initials"`
	QRCodeURL  string `json:"qrCodeUrl,omitempty"`
}

// OrderRecord is the create-order response shaped for the storefront: the
// provider order plus the caller metadata echoed back so the browser can
// reconstruct its local exchange record.
type OrderRecord struct {
	FoxpaysOrderID     string            `json:"foxpaysOrderId"`
	ExternalID         string            `json:"externalId"`
	Status             foxpays.Status    `json:"status"`
	SubStatus          foxpays.SubStatus `json:"subStatus"`
	Amount             string            `json:"amount"`
	BaseAmount         string            `json:"baseAmount"`
	Currency           string            `json:"currency"`
	PaymentGateway     string            `json:"paymentGateway"`
	PaymentGatewayName string            `json:"paymentGatewayName"`
	PaymentDetail      PaymentDetail     `json:"paymentDetail"`
	DetailsPending     bool              `json:"detailsPending"`
	ExpiresAt          int64             `json:"expiresAt"`
	CreatedAt          int64             `json:"createdAt"`

	CoinID      string `json:"coinId,omitempty"`
	CoinSymbol  string `json:"coinSymbol,omitempty"`
	CoinAmount  string `json:"coinAmount,omitempty"`
	UserContact string `json:"userContact,omitempty"`
}

// StatusSnapshot carries everything the client state machine needs from one
// live fetch, including the skew-corrected remaining seconds.
type StatusSnapshot struct {
	OrderID            string            `json:"orderId"`
	ExternalID         string            `json:"externalId"`
	Status             foxpays.Status    `json:"status"`
	SubStatus          foxpays.SubStatus `json:"subStatus"`
	Amount             string            `json:"amount"`
	BaseAmount         string            `json:"baseAmount"`
	Currency           string            `json:"currency"`
	PaymentGateway     string            `json:"paymentGateway"`
	PaymentGatewayName string            `json:"paymentGatewayName"`
	PaymentDetail      PaymentDetail     `json:"paymentDetail"`
	DetailsPending     bool              `json:"detailsPending"`
	ExpiresAt          int64             `json:"expiresAt"`
	CreatedAt          int64             `json:"createdAt"`
	FinishedAt         int64             `json:"finishedAt,omitempty"`
	ServerTime         int64             `json:"serverTime"`
	RemainingSeconds   int64             `json:"remainingSeconds"`
	IsExpired          bool              `json:"isExpired"`
}

// ActionResult is returned by confirm and cancel: the post-action state in
// the same round trip.
type ActionResult struct {
	OrderID   string            `json:"orderId"`
	Status    foxpays.Status    `json:"status"`
	SubStatus foxpays.SubStatus `json:"subStatus"`
}
