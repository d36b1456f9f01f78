package cashfree

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cashfree-checkout/config"
	"cashfree-checkout/internal/core/domain"
	"cashfree-checkout/internal/core/ports"
)

func testCredentials(baseURL string) Credentials {
	return Credentials{
		AppID:     "app_test",
		SecretKey: "secret_test",
		BaseURL:   baseURL,
		TestMode:  true,
	}
}

func newTestClient(baseURL string) *Client {
	return NewClient(testCredentials(baseURL), "2025-01-01", http.DefaultClient, zerolog.Nop())
}

func TestResolveCredentials(t *testing.T) {
	cfg := config.CashfreeConfig{
		AppID:          "live_app",
		SecretKey:      "live_secret",
		TestAppID:      "test_app",
		TestSecretKey:  "test_secret",
		BaseURL:        "https://api.cashfree.com/pg",
		SandboxBaseURL: "https://sandbox.cashfree.com/pg",
	}

	live := ResolveCredentials(cfg)
	assert.Equal(t, "live_app", live.AppID)
	assert.Equal(t, "https://api.cashfree.com/pg", live.BaseURL)
	assert.False(t, live.TestMode)

	cfg.TestMode = true
	sandbox := ResolveCredentials(cfg)
	assert.Equal(t, "test_app", sandbox.AppID)
	assert.Equal(t, "test_secret", sandbox.SecretKey)
	assert.Equal(t, "https://sandbox.cashfree.com/pg", sandbox.BaseURL)
	assert.True(t, sandbox.TestMode)
}

func TestClient_CreateOrder_Success(t *testing.T) {
	var gotHeaders http.Header
	var gotBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/orders", r.URL.Path)
		gotHeaders = r.Header.Clone()
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"order_id":"INV_ABC_42","order_status":"ACTIVE","payment_session_id":"session_xyz"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	imageURL := "https://cdn.example.com/pro.png"
	created, err := client.CreateOrder(context.Background(), &ports.GatewayOrderRequest{
		OrderID:  "INV_ABC_42",
		Amount:   500,
		Currency: "INR",
		Customer: ports.GatewayCustomer{
			ID:    "7",
			Name:  "Priya Sharma",
			Email: "priya@example.com",
			Phone: "+919876543210",
		},
		ReturnURL: "https://app.example.com/cb?order_id={order_id}",
		NotifyURL: "https://app.example.com/wh",
		Note:      "Payment for Invoice #INV-2024-001",
		Tags:      map[string]string{"invoice_id": "42"},
		Cart: &ports.GatewayCart{
			Items: []ports.GatewayCartItem{
				{
					ID:                  "inv_42",
					Name:                "Pro Hosting",
					Description:         "Hosting plan",
					ImageURL:            imageURL,
					OriginalUnitPrice:   500,
					DiscountedUnitPrice: 500,
					Quantity:            1,
					Currency:            "INR",
				},
			},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "INV_ABC_42", created.OrderID)
	assert.Equal(t, "session_xyz", created.PaymentSessionID)

	assert.Equal(t, "2025-01-01", gotHeaders.Get("x-api-version"))
	assert.Equal(t, "app_test", gotHeaders.Get("x-client-id"))
	assert.Equal(t, "secret_test", gotHeaders.Get("x-client-secret"))
	assert.Equal(t, "application/json", gotHeaders.Get("Content-Type"))

	assert.Equal(t, "INV_ABC_42", gotBody["order_id"])
	assert.Equal(t, 500.0, gotBody["order_amount"])
	assert.Equal(t, "INR", gotBody["order_currency"])

	customer := gotBody["customer_details"].(map[string]any)
	assert.Equal(t, "7", customer["customer_id"])
	assert.Equal(t, "+919876543210", customer["customer_phone"])

	meta := gotBody["order_meta"].(map[string]any)
	assert.Contains(t, meta["return_url"], "{order_id}")

	tags := gotBody["order_tags"].(map[string]any)
	assert.Equal(t, "42", tags["invoice_id"])

	cart := gotBody["cart_details"].(map[string]any)
	items := cart["cart_items"].([]any)
	require.Len(t, items, 1)
	item := items[0].(map[string]any)
	assert.Equal(t, "inv_42", item["item_id"])
	assert.Equal(t, "Pro Hosting", item["item_name"])
	assert.Equal(t, "Hosting plan", item["item_description"])
	assert.Equal(t, imageURL, item["item_image_url"])
	assert.Equal(t, 500.0, item["item_original_unit_price"])
	assert.Equal(t, 500.0, item["item_discounted_unit_price"])
	assert.Equal(t, 1.0, item["item_quantity"])
	assert.Equal(t, "INR", item["item_currency"])
}

func TestClient_CreateOrder_Rejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"order_id : invalid characters","code":"order_id_invalid","type":"invalid_request_error"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	created, err := client.CreateOrder(context.Background(), &ports.GatewayOrderRequest{OrderID: "bad id"})
	assert.Nil(t, created)

	var rejection *ports.GatewayRejection
	require.ErrorAs(t, err, &rejection)
	assert.Equal(t, http.StatusBadRequest, rejection.StatusCode)
	assert.Equal(t, "order_id : invalid characters", rejection.Message)
}

func TestClient_CreateOrder_RejectionAltShape(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error_description":"invalid credentials"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.CreateOrder(context.Background(), &ports.GatewayOrderRequest{OrderID: "X"})

	var rejection *ports.GatewayRejection
	require.ErrorAs(t, err, &rejection)
	assert.Equal(t, "invalid credentials", rejection.Message)
}

func TestClient_CreateOrder_ServerErrorIsNotRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`upstream unavailable`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.CreateOrder(context.Background(), &ports.GatewayOrderRequest{OrderID: "X"})
	require.Error(t, err)

	var rejection *ports.GatewayRejection
	assert.False(t, errors.As(err, &rejection))
	assert.Contains(t, err.Error(), "502")
}

func TestClient_GetOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/orders/INV_ABC_42", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"order_id":"INV_ABC_42","order_status":"PAID","order_amount":500}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	order, err := client.GetOrder(context.Background(), "INV_ABC_42")
	require.NoError(t, err)
	assert.Equal(t, "INV_ABC_42", order.OrderID)
	assert.Equal(t, domain.OrderStatusPaid, order.Status)
	assert.Equal(t, 500.0, order.Amount)
}

func TestClient_TransportFailure(t *testing.T) {
	// Closed server makes every request fail at the transport layer.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := newTestClient(server.URL)
	_, err := client.GetOrder(context.Background(), "INV_ABC_42")
	require.Error(t, err)

	var rejection *ports.GatewayRejection
	assert.False(t, errors.As(err, &rejection))
}
