package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"testing"
	"time"

	"cashfree-checkout/internal/adapter/gateway/cashfree"
	httpHandler "cashfree-checkout/internal/adapter/http/handler"
	redisStorage "cashfree-checkout/internal/adapter/storage/redis"
	"cashfree-checkout/internal/core/domain"
	"cashfree-checkout/internal/service"
	"cashfree-checkout/pkg/logger"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const webhookSecret = "cf_test_secret_0123456789"

// fakeGateway simulates the Cashfree orders API: order creation registers an
// order in ACTIVE state, and tests flip the status to drive reconciliation.
type fakeGateway struct {
	mu     sync.Mutex
	server *httptest.Server
	orders map[string]*fakeOrder
}

type fakeOrder struct {
	amount    float64
	status    string
	tags      map[string]string
	returnURL string
}

func newFakeGateway() *fakeGateway {
	g := &fakeGateway{orders: make(map[string]*fakeOrder)}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /orders", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			OrderID     string            `json:"order_id"`
			OrderAmount float64           `json:"order_amount"`
			OrderTags   map[string]string `json:"order_tags"`
			OrderMeta   struct {
				ReturnURL string `json:"return_url"`
			} `json:"order_meta"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		g.mu.Lock()
		g.orders[req.OrderID] = &fakeOrder{
			amount:    req.OrderAmount,
			status:    string(domain.OrderStatusActive),
			tags:      req.OrderTags,
			returnURL: req.OrderMeta.ReturnURL,
		}
		g.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"order_id":%q,"order_status":"ACTIVE","payment_session_id":"session_%s"}`, req.OrderID, req.OrderID)
	})
	mux.HandleFunc("GET /orders/{orderID}", func(w http.ResponseWriter, r *http.Request) {
		g.mu.Lock()
		order, ok := g.orders[r.PathValue("orderID")]
		g.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"message":"Order reference not found"}`)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"order_id":%q,"order_status":%q,"order_amount":%v}`, r.PathValue("orderID"), order.status, order.amount)
	})

	g.server = httptest.NewServer(mux)
	return g
}

func (g *fakeGateway) setStatus(orderID, status string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.orders[orderID].status = status
}

func (g *fakeGateway) order(orderID string) fakeOrder {
	g.mu.Lock()
	defer g.mu.Unlock()
	return *g.orders[orderID]
}

// testApp wires the full stack: real HTTP layer and services, in-memory
// postgres repos, miniredis, and a fake Cashfree API.
type testApp struct {
	server      *httptest.Server
	redis       *miniredis.Miniredis
	gateway     *fakeGateway
	invoiceRepo *inMemoryInvoiceRepo
	txRepo      *inMemoryTransactionRepo
	eventRepo   *inMemoryEventRepo
	sigSvc      *service.HMACSignatureService
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})

	gw := newFakeGateway()

	invoiceRepo := newInMemoryInvoiceRepo()
	productRepo := newInMemoryProductRepo()
	txRepo := newInMemoryTransactionRepo()
	eventRepo := newInMemoryEventRepo()
	transactor := newInMemoryTransactor()

	dedupeStore := redisStorage.NewDedupeStore(rdb)

	log := logger.New("debug", false)

	creds := cashfree.Credentials{
		AppID:     "TEST_APP_ID",
		SecretKey: webhookSecret,
		BaseURL:   gw.server.URL,
		TestMode:  true,
	}
	gatewayClient := cashfree.NewClient(creds, "2025-01-01", &http.Client{Timeout: 5 * time.Second}, log)
	sigSvc := service.NewHMACSignatureService(creds.SecretKey)

	routes := httpHandler.NewRoutes("https://app.example.com")

	recorder := service.NewPaymentRecorder(transactor, txRepo, invoiceRepo, log)
	checkoutSvc := service.NewCheckoutService(invoiceRepo, productRepo, gatewayClient, routes, false, creds.TestMode, log)
	webhookSvc := service.NewWebhookService(sigSvc, dedupeStore, invoiceRepo, txRepo, eventRepo, recorder, log)
	reconcileSvc := service.NewReconcileService(invoiceRepo, txRepo, gatewayClient, eventRepo, recorder, log)

	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		CheckoutSvc:  checkoutSvc,
		WebhookSvc:   webhookSvc,
		ReconcileSvc: reconcileSvc,
		Routes:       routes,
		Logger:       log,
	})

	server := httptest.NewServer(router)

	return &testApp{
		server:      server,
		redis:       mr,
		gateway:     gw,
		invoiceRepo: invoiceRepo,
		txRepo:      txRepo,
		eventRepo:   eventRepo,
		sigSvc:      sigSvc,
	}
}

func (a *testApp) close() {
	a.server.Close()
	a.gateway.server.Close()
	a.redis.Close()
}

func (a *testApp) seedInvoice(id int64, total float64) {
	a.invoiceRepo.put(&domain.Invoice{
		ID:           id,
		Number:       fmt.Sprintf("INV-%04d", id),
		Description:  "Consulting services",
		CurrencyCode: domain.SupportedCurrency,
		Total:        total,
		Status:       domain.InvoiceStatusPending,
		Customer: domain.Customer{
			ID:    7,
			Name:  "Asha Rao",
			Email: "asha@example.com",
			Phone: "9876543210",
		},
		CreatedAt: time.Now(),
	})
}

// checkout drives the checkout endpoint and returns the gateway order id.
func (a *testApp) checkout(t *testing.T, invoiceID int64) string {
	t.Helper()

	resp, err := http.Post(fmt.Sprintf("%s/api/v1/invoices/%d/checkout", a.server.URL, invoiceID), "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var body struct {
		Data struct {
			OrderID          string `json:"order_id"`
			PaymentSessionID string `json:"payment_session_id"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.NotEmpty(t, body.Data.OrderID)
	require.NotEmpty(t, body.Data.PaymentSessionID)
	return body.Data.OrderID
}

// webhookPayload builds a signed PAYMENT_SUCCESS_WEBHOOK request body.
func (a *testApp) webhookPayload(invoiceID int64, orderID string, amount float64) (body []byte, timestamp, signature string) {
	payload := map[string]any{
		"type": domain.EventPaymentSuccess,
		"data": map[string]any{
			"order": map[string]any{
				"order_id":     orderID,
				"order_amount": amount,
				"order_tags":   map[string]string{"invoice_id": strconv.FormatInt(invoiceID, 10)},
			},
		},
	}
	body, _ = json.Marshal(payload)
	timestamp = strconv.FormatInt(time.Now().Unix(), 10)
	signature = a.sigSvc.Sign(timestamp, body)
	return body, timestamp, signature
}

func (a *testApp) postWebhook(t *testing.T, body []byte, timestamp, signature string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodPost, a.server.URL+"/api/v1/gateway/cashfree/webhook", bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(domain.HeaderWebhookTimestamp, timestamp)
	req.Header.Set(domain.HeaderWebhookSignature, signature)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

// noRedirectClient returns the redirect response instead of following it.
var noRedirectClient = &http.Client{
	CheckRedirect: func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	},
}

// --- Integration Tests ---

func TestIntegration_HealthCheck(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	resp, err := http.Get(app.server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
}

func TestIntegration_Checkout(t *testing.T) {
	app := newTestApp(t)
	defer app.close()
	app.seedInvoice(101, 500)

	orderID := app.checkout(t, 101)

	order := app.gateway.order(orderID)
	assert.Equal(t, 500.0, order.amount)
	assert.Equal(t, "101", order.tags["invoice_id"])
	assert.Contains(t, order.returnURL, "/api/v1/gateway/cashfree/callback/101")
	assert.Contains(t, order.returnURL, "order_id={order_id}")
}

func TestIntegration_Checkout_UnknownInvoice(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	resp, err := http.Post(app.server.URL+"/api/v1/invoices/999/checkout", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestIntegration_CallbackRecordsPaidOrder(t *testing.T) {
	app := newTestApp(t)
	defer app.close()
	app.seedInvoice(101, 500)

	orderID := app.checkout(t, 101)
	app.gateway.setStatus(orderID, string(domain.OrderStatusPaid))

	resp, err := noRedirectClient.Get(fmt.Sprintf(
		"%s/api/v1/gateway/cashfree/callback/101?order_id=%s", app.server.URL, orderID))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusFound, resp.StatusCode)
	loc, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/invoices/101", loc.Path)
	assert.Equal(t, "success", loc.Query().Get("notification_type"))
	assert.Contains(t, loc.Query().Get("notification_message"), "500.00")
	assert.Contains(t, loc.Query().Get("notification_message"), orderID)

	assert.Equal(t, 1, app.txRepo.count())
	assert.Equal(t, domain.InvoiceStatusPaid, app.invoiceRepo.status(101))
}

func TestIntegration_CallbackUnpaidOrderWarns(t *testing.T) {
	app := newTestApp(t)
	defer app.close()
	app.seedInvoice(101, 500)

	orderID := app.checkout(t, 101)

	resp, err := noRedirectClient.Get(fmt.Sprintf(
		"%s/api/v1/gateway/cashfree/callback/101?order_id=%s", app.server.URL, orderID))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusFound, resp.StatusCode)
	loc, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "warning", loc.Query().Get("notification_type"))

	assert.Equal(t, 0, app.txRepo.count())
	assert.Equal(t, domain.InvoiceStatusPending, app.invoiceRepo.status(101))
}

func TestIntegration_WebhookRecordsPayment(t *testing.T) {
	app := newTestApp(t)
	defer app.close()
	app.seedInvoice(101, 500)

	body, ts, sig := app.webhookPayload(101, "ORDER_101", 500)
	resp := app.postWebhook(t, body, ts, sig)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, app.txRepo.count())
	assert.Equal(t, domain.InvoiceStatusPaid, app.invoiceRepo.status(101))
	assert.Equal(t, []string{domain.EventOutcomeRecorded}, app.eventRepo.outcomes())
}

func TestIntegration_WebhookRedelivery(t *testing.T) {
	app := newTestApp(t)
	defer app.close()
	app.seedInvoice(101, 500)

	body, ts, sig := app.webhookPayload(101, "ORDER_101", 500)

	first := app.postWebhook(t, body, ts, sig)
	first.Body.Close()
	second := app.postWebhook(t, body, ts, sig)
	second.Body.Close()

	assert.Equal(t, http.StatusOK, first.StatusCode)
	assert.Equal(t, http.StatusOK, second.StatusCode)
	assert.Equal(t, 1, app.txRepo.count())
}

func TestIntegration_WebhookBadSignature(t *testing.T) {
	app := newTestApp(t)
	defer app.close()
	app.seedInvoice(101, 500)

	body, ts, _ := app.webhookPayload(101, "ORDER_101", 500)
	resp := app.postWebhook(t, body, ts, "bogus-signature")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, 0, app.txRepo.count())
	assert.Equal(t, domain.InvoiceStatusPending, app.invoiceRepo.status(101))
}

func TestIntegration_WebhookUnknownEventTypeAcked(t *testing.T) {
	app := newTestApp(t)
	defer app.close()
	app.seedInvoice(101, 500)

	body, _ := json.Marshal(map[string]any{"type": "PAYMENT_FAILED_WEBHOOK"})
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	sig := app.sigSvc.Sign(ts, body)

	resp := app.postWebhook(t, body, ts, sig)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 0, app.txRepo.count())
	assert.Equal(t, []string{domain.EventOutcomeIgnored}, app.eventRepo.outcomes())
}

// Webhook before callback: the callback must see the already-recorded
// transaction and still hand the payer a success notification.
func TestIntegration_WebhookThenCallback(t *testing.T) {
	app := newTestApp(t)
	defer app.close()
	app.seedInvoice(101, 500)

	orderID := app.checkout(t, 101)
	app.gateway.setStatus(orderID, string(domain.OrderStatusPaid))

	body, ts, sig := app.webhookPayload(101, orderID, 500)
	wresp := app.postWebhook(t, body, ts, sig)
	wresp.Body.Close()
	require.Equal(t, 1, app.txRepo.count())

	resp, err := noRedirectClient.Get(fmt.Sprintf(
		"%s/api/v1/gateway/cashfree/callback/101?order_id=%s", app.server.URL, orderID))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusFound, resp.StatusCode)
	loc, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "success", loc.Query().Get("notification_type"))
	assert.Equal(t, 1, app.txRepo.count())
}
