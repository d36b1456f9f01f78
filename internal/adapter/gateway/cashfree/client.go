package cashfree

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"cashfree-checkout/config"
	"cashfree-checkout/internal/core/domain"
	"cashfree-checkout/internal/core/ports"
)

const apiVersionHeader = "x-api-version"

// Credentials selects which Cashfree app the client authenticates as.
type Credentials struct {
	AppID     string
	SecretKey string
	BaseURL   string
	TestMode  bool
}

// ResolveCredentials picks live or sandbox credentials from configuration.
// Test mode swaps both the key pair and the API host.
func ResolveCredentials(cfg config.CashfreeConfig) Credentials {
	if cfg.TestMode {
		return Credentials{
			AppID:     cfg.TestAppID,
			SecretKey: cfg.TestSecretKey,
			BaseURL:   cfg.SandboxBaseURL,
			TestMode:  true,
		}
	}
	return Credentials{
		AppID:     cfg.AppID,
		SecretKey: cfg.SecretKey,
		BaseURL:   cfg.BaseURL,
	}
}

// HTTPClient interface for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client implements ports.GatewayClient against the Cashfree PG orders API.
type Client struct {
	creds      Credentials
	apiVersion string
	httpClient HTTPClient
	log        zerolog.Logger
}

// NewClient creates a Cashfree API client.
func NewClient(creds Credentials, apiVersion string, httpClient HTTPClient, log zerolog.Logger) *Client {
	return &Client{
		creds:      creds,
		apiVersion: apiVersion,
		httpClient: httpClient,
		log:        log,
	}
}

type customerDetails struct {
	CustomerID    string `json:"customer_id"`
	CustomerName  string `json:"customer_name,omitempty"`
	CustomerEmail string `json:"customer_email"`
	CustomerPhone string `json:"customer_phone"`
}

type orderMeta struct {
	ReturnURL string `json:"return_url"`
	NotifyURL string `json:"notify_url,omitempty"`
}

type cartItem struct {
	ItemID                  string  `json:"item_id"`
	ItemName                string  `json:"item_name"`
	ItemDescription         string  `json:"item_description"`
	ItemImageURL            string  `json:"item_image_url"`
	ItemOriginalUnitPrice   float64 `json:"item_original_unit_price"`
	ItemDiscountedUnitPrice float64 `json:"item_discounted_unit_price"`
	ItemQuantity            int     `json:"item_quantity"`
	ItemCurrency            string  `json:"item_currency"`
}

type cartDetails struct {
	CartItems []cartItem `json:"cart_items"`
}

type createOrderRequest struct {
	OrderID         string            `json:"order_id"`
	OrderAmount     float64           `json:"order_amount"`
	OrderCurrency   string            `json:"order_currency"`
	CustomerDetails customerDetails   `json:"customer_details"`
	OrderMeta       orderMeta         `json:"order_meta"`
	OrderNote       string            `json:"order_note,omitempty"`
	OrderTags       map[string]string `json:"order_tags,omitempty"`
	CartDetails     *cartDetails      `json:"cart_details,omitempty"`
}

type orderResponse struct {
	OrderID          string  `json:"order_id"`
	OrderStatus      string  `json:"order_status"`
	OrderAmount      float64 `json:"order_amount"`
	PaymentSessionID string  `json:"payment_session_id"`
}

type errorResponse struct {
	Message          string `json:"message"`
	ErrorDescription string `json:"error_description"`
	Code             string `json:"code"`
	Type             string `json:"type"`
}

// CreateOrder creates a hosted checkout order.
func (c *Client) CreateOrder(ctx context.Context, req *ports.GatewayOrderRequest) (*ports.GatewayOrderCreated, error) {
	payload := createOrderRequest{
		OrderID:       req.OrderID,
		OrderAmount:   req.Amount,
		OrderCurrency: req.Currency,
		CustomerDetails: customerDetails{
			CustomerID:    req.Customer.ID,
			CustomerName:  req.Customer.Name,
			CustomerEmail: req.Customer.Email,
			CustomerPhone: req.Customer.Phone,
		},
		OrderMeta: orderMeta{
			ReturnURL: req.ReturnURL,
			NotifyURL: req.NotifyURL,
		},
		OrderNote: req.Note,
		OrderTags: req.Tags,
	}
	if req.Cart != nil {
		cart := &cartDetails{}
		for _, item := range req.Cart.Items {
			cart.CartItems = append(cart.CartItems, cartItem{
				ItemID:                  item.ID,
				ItemName:                item.Name,
				ItemDescription:         item.Description,
				ItemImageURL:            item.ImageURL,
				ItemOriginalUnitPrice:   item.OriginalUnitPrice,
				ItemDiscountedUnitPrice: item.DiscountedUnitPrice,
				ItemQuantity:            item.Quantity,
				ItemCurrency:            item.Currency,
			})
		}
		payload.CartDetails = cart
	}

	var resp orderResponse
	if err := c.do(ctx, http.MethodPost, "/orders", payload, &resp); err != nil {
		return nil, err
	}

	return &ports.GatewayOrderCreated{
		OrderID:          resp.OrderID,
		PaymentSessionID: resp.PaymentSessionID,
	}, nil
}

// GetOrder fetches the current state of an order.
func (c *Client) GetOrder(ctx context.Context, orderID string) (*ports.GatewayOrder, error) {
	var resp orderResponse
	if err := c.do(ctx, http.MethodGet, "/orders/"+orderID, nil, &resp); err != nil {
		return nil, err
	}

	return &ports.GatewayOrder{
		OrderID: resp.OrderID,
		Status:  domain.OrderStatus(resp.OrderStatus),
		Amount:  resp.OrderAmount,
	}, nil
}

// do executes one authenticated API call. Definitive 4xx answers surface as
// ports.GatewayRejection; transport faults and 5xx answers surface as plain
// errors so callers can tell the two failure families apart.
func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.creds.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(apiVersionHeader, c.apiVersion)
	req.Header.Set("x-client-id", c.creds.AppID)
	req.Header.Set("x-client-secret", c.creds.SecretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("cashfree request failed: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read cashfree response: %w", err)
	}

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return &ports.GatewayRejection{
			StatusCode: resp.StatusCode,
			Message:    parseErrorMessage(raw),
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("cashfree returned status %d: %s", resp.StatusCode, truncate(raw, 512))
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode cashfree response: %w", err)
	}
	return nil
}

// parseErrorMessage pulls the human-readable message out of an error body,
// falling back to the raw body when it is not the documented shape.
func parseErrorMessage(raw []byte) string {
	var errResp errorResponse
	if err := json.Unmarshal(raw, &errResp); err == nil {
		if errResp.Message != "" {
			return errResp.Message
		}
		if errResp.ErrorDescription != "" {
			return errResp.ErrorDescription
		}
	}
	return truncate(raw, 256)
}

func truncate(raw []byte, limit int) string {
	if len(raw) > limit {
		return string(raw[:limit]) + "..."
	}
	return string(raw)
}
