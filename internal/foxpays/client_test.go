package foxpays

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := New(Credentials{BaseURL: srv.URL, AccessToken: "test-token"})
	require.NoError(t, err)
	return client, srv
}

func TestNewRequiresCredentials(t *testing.T) {
	_, err := New(Credentials{BaseURL: "", AccessToken: "t"})
	require.Error(t, err)
	require.True(t, IsConfig(err))

	_, err = New(Credentials{BaseURL: "http://x", AccessToken: "  "})
	require.Error(t, err)
	require.True(t, IsConfig(err))
}

func TestPaymentGatewaysUnwrapsEnvelope(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/api/payment-gateways", r.URL.Path)
		require.Equal(t, "test-token", r.Header.Get("Access-Token"))
		require.Equal(t, "application/json", r.Header.Get("Accept"))

		io.WriteString(w, `{"success":true,"data":[
			{"code":"sberbank","name":"Sberbank","currency":"rub","min_limit":"500.00","max_limit":"100000.00","reservation_time":15},
			{"code":"tinkoff","name":"Tinkoff","currency":"rub","min_limit":"1000.00","max_limit":"50000.00","reservation_time":15,"is_active":false}
		]}`)
	})

	gateways, err := client.PaymentGateways(context.Background())
	require.NoError(t, err)
	require.Len(t, gateways, 2)
	require.Equal(t, "sberbank", gateways[0].Code)
	require.True(t, gateways[0].Active())
	require.False(t, gateways[1].Active())
}

func TestProviderReportedFailure(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		io.WriteString(w, `{"success":false,"message":"amount is out of range","errors":{"amount":["below gateway minimum"]}}`)
	})

	_, err := client.CreateOrder(context.Background(), CreateOrderParams{
		Amount: "1", Currency: "rub", PaymentGateway: "sberbank", ExternalID: "x1",
	})
	require.Error(t, err)
	require.True(t, IsAPI(err))

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusUnprocessableEntity, apiErr.HTTPStatus)
	require.Equal(t, "amount is out of range", apiErr.Message)
	require.Contains(t, apiErr.Errors, "amount")
}

func TestEnvelopeSuccessFalseOn200(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"success":false,"message":"order not found"}`)
	})

	_, err := client.Order(context.Background(), "missing")
	require.True(t, IsAPI(err))
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "order not found", apiErr.Message)
}

func TestTransportErrorOnHTMLBody(t *testing.T) {
	longBody := "<html>" + strings.Repeat("Internal Server Error ", 100) + "</html>"
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, longBody)
	})

	_, err := client.Order(context.Background(), "abc123")
	require.Error(t, err)
	require.True(t, IsTransport(err))
	require.False(t, IsAPI(err))

	var trErr *TransportError
	require.ErrorAs(t, err, &trErr)
	require.NotEmpty(t, trErr.RawBody)
	require.LessOrEqual(t, len(trErr.RawBody), maxRawBody)
	require.True(t, strings.HasPrefix(trErr.RawBody, "<html>"))
}

func TestTransportErrorOnNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	client, err := New(Credentials{BaseURL: srv.URL, AccessToken: "t"})
	require.NoError(t, err)

	_, err = client.Currencies(context.Background())
	require.True(t, IsTransport(err))
}

func TestCreateOrderRequestBody(t *testing.T) {
	var got CreateOrderParams
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/h2h/order", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		io.WriteString(w, `{"success":true,"data":{
			"order_id":"abc123","external_id":"`+got.ExternalID+`",
			"status":"pending","sub_status":"waiting_for_payment",
			"amount":"1000.00","currency":"rub","payment_detail":null,
			"expires_at":1900000900,"created_at":1900000000,"current_server_time":1900000000
		}}`)
	})

	order, err := client.CreateOrder(context.Background(), CreateOrderParams{
		Amount: "1000", Currency: "rub", PaymentGateway: "sberbank", ExternalID: "ext-42",
	})
	require.NoError(t, err)
	require.Equal(t, "1000", got.Amount)
	require.Equal(t, "rub", got.Currency)
	require.Equal(t, "sberbank", got.PaymentGateway)
	require.Equal(t, "ext-42", got.ExternalID)

	require.Equal(t, "abc123", order.OrderID)
	require.Equal(t, StatusPending, order.Status)
	require.Equal(t, SubStatusWaitingForPayment, order.SubStatus)
	require.Nil(t, order.PaymentDetail)
}

func TestConfirmAndCancelUsePatch(t *testing.T) {
	var confirmed, cancelled atomic.Bool
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPatch, r.Method)
		switch r.URL.Path {
		case "/api/h2h/order/abc123/confirm-client":
			confirmed.Store(true)
		case "/api/h2h/order/abc123/cancel":
			cancelled.Store(true)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		io.WriteString(w, `{"success":true}`)
	})

	require.NoError(t, client.ConfirmPayment(context.Background(), "abc123"))
	require.NoError(t, client.CancelOrder(context.Background(), "abc123"))
	require.True(t, confirmed.Load())
	require.True(t, cancelled.Load())
}

func TestUploadReceiptIsMultipart(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/h2h/order/abc123/receipt", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))

		file, header, err := r.FormFile("receipt")
		require.NoError(t, err)
		defer file.Close()
		require.Equal(t, "receipt.png", header.Filename)

		data, err := io.ReadAll(file)
		require.NoError(t, err)
		require.Equal(t, []byte("png-bytes"), data)

		io.WriteString(w, `{"success":true}`)
	})

	err := client.UploadReceipt(context.Background(), "abc123", "receipt.png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
}

func TestStatusTerminal(t *testing.T) {
	require.False(t, StatusPending.Terminal())
	require.True(t, StatusSuccess.Terminal())
	require.True(t, StatusFail.Terminal())
}
