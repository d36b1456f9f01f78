package service

import (
	"context"
	"errors"
	"strconv"

	"github.com/rs/zerolog"

	"cashfree-checkout/internal/core/domain"
	"cashfree-checkout/internal/core/ports"
	"cashfree-checkout/pkg/apperror"
)

// orderIDPlaceholder is substituted by the gateway with the real order id
// when it redirects the payer back to the return URL.
const orderIDPlaceholder = "{order_id}"

// CheckoutServiceImpl implements ports.CheckoutService.
type CheckoutServiceImpl struct {
	invoiceRepo ports.InvoiceRepository
	productRepo ports.ProductRepository
	gateway     ports.GatewayClient
	routes      ports.RouteResolver
	cartEnabled bool
	testMode    bool
	log         zerolog.Logger
}

// NewCheckoutService creates a new CheckoutServiceImpl.
func NewCheckoutService(
	invoiceRepo ports.InvoiceRepository,
	productRepo ports.ProductRepository,
	gateway ports.GatewayClient,
	routes ports.RouteResolver,
	cartEnabled bool,
	testMode bool,
	log zerolog.Logger,
) *CheckoutServiceImpl {
	return &CheckoutServiceImpl{
		invoiceRepo: invoiceRepo,
		productRepo: productRepo,
		gateway:     gateway,
		routes:      routes,
		cartEnabled: cartEnabled,
		testMode:    testMode,
		log:         log,
	}
}

// InitiateCheckout validates the invoice, creates a hosted checkout order at
// the gateway, and returns the payment session for the caller to redirect to.
func (s *CheckoutServiceImpl) InitiateCheckout(ctx context.Context, invoiceID int64, amount *float64) (*ports.CheckoutSession, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	if invoice == nil {
		return nil, apperror.ErrNotFound("invoice")
	}

	chargeAmount := invoice.Total
	if amount != nil {
		chargeAmount = *amount
	}
	if chargeAmount <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}

	if invoice.CurrencyCode != domain.SupportedCurrency {
		return nil, apperror.ErrUnsupportedCurrency()
	}

	// A missing phone and a malformed one are distinct failures: only a
	// truly empty value asks the user to add a number.
	if invoice.Customer.Phone == "" {
		return nil, apperror.ErrMissingPhone()
	}
	phone := domain.SanitizePhone(invoice.Customer.Phone)
	if !domain.ValidIndianMobile(phone) {
		return nil, apperror.ErrInvalidPhoneFormat()
	}

	if invoice.Customer.Email == "" {
		return nil, apperror.ErrMissingEmail()
	}

	orderID := domain.NewOrderID(invoiceID)
	req := &ports.GatewayOrderRequest{
		OrderID:  orderID,
		Amount:   chargeAmount,
		Currency: invoice.CurrencyCode,
		Customer: ports.GatewayCustomer{
			ID:    strconv.FormatInt(invoice.Customer.ID, 10),
			Name:  invoice.Customer.DisplayName(),
			Email: invoice.Customer.Email,
			Phone: domain.FormatPhoneE164(phone),
		},
		ReturnURL: s.routes.CallbackURL(invoiceID, orderIDPlaceholder),
		NotifyURL: s.routes.WebhookURL(),
		Note:      "Payment for Invoice #" + invoice.DisplayNumber(),
		Tags: map[string]string{
			"invoice_id": strconv.FormatInt(invoiceID, 10),
		},
	}
	if s.cartEnabled {
		cart, label := s.buildCart(ctx, invoice, chargeAmount)
		req.Cart = cart
		req.Tags["user_id"] = strconv.FormatInt(invoice.Customer.ID, 10)
		req.Tags["email"] = invoice.Customer.Email
		req.Tags["package"] = label
		req.Tags["amount"] = strconv.FormatFloat(chargeAmount, 'f', -1, 64)
	}

	created, err := s.gateway.CreateOrder(ctx, req)
	if err != nil {
		var rejection *ports.GatewayRejection
		if errors.As(err, &rejection) {
			s.log.Warn().
				Int64("invoice_id", invoiceID).
				Str("order_id", orderID).
				Int("status", rejection.StatusCode).
				Str("gateway_message", rejection.Message).
				Msg("gateway rejected order creation")
			return nil, apperror.ErrGatewayRejected(rejection.Message)
		}
		s.log.Error().Err(err).
			Int64("invoice_id", invoiceID).
			Str("order_id", orderID).
			Msg("order creation failed")
		return nil, apperror.ErrOrderCreationFailed(err)
	}
	if created.PaymentSessionID == "" {
		return nil, apperror.ErrOrderCreationFailed(errors.New("gateway response missing payment session id"))
	}

	s.log.Info().
		Int64("invoice_id", invoiceID).
		Str("order_id", created.OrderID).
		Float64("amount", chargeAmount).
		Bool("test_mode", s.testMode).
		Msg("checkout order created")

	return &ports.CheckoutSession{
		InvoiceID:        invoiceID,
		OrderID:          created.OrderID,
		PaymentSessionID: created.PaymentSessionID,
		TestMode:         s.testMode,
	}, nil
}

// buildCart assembles the single-line display cart Cashfree expects: one
// item labelled after the invoice's first line, priced at the charged
// amount. Catalog lookups are best-effort: a missing or failed product
// keeps the invoice-number label and empty image but never blocks checkout.
// The returned label also feeds the order tags.
func (s *CheckoutServiceImpl) buildCart(ctx context.Context, invoice *domain.Invoice, amount float64) (*ports.GatewayCart, string) {
	name := "Invoice #" + invoice.DisplayNumber()
	description := invoice.Description
	imageURL := ""

	if len(invoice.Items) > 0 {
		first := invoice.Items[0]
		if first.Description != "" {
			description = first.Description
		}
		if first.ProductID != nil {
			product, err := s.productRepo.GetByID(ctx, *first.ProductID)
			if err != nil {
				s.log.Warn().Err(err).
					Int64("product_id", *first.ProductID).
					Msg("product lookup failed while building cart")
			} else if product != nil {
				if product.Name != "" {
					name = product.Name
				}
				imageURL = product.ImageURL
			}
		}
	}

	cart := &ports.GatewayCart{
		Items: []ports.GatewayCartItem{{
			ID:                  "inv_" + strconv.FormatInt(invoice.ID, 10),
			Name:                name,
			Description:         description,
			ImageURL:            imageURL,
			OriginalUnitPrice:   amount,
			DiscountedUnitPrice: amount,
			Quantity:            1,
			Currency:            domain.SupportedCurrency,
		}},
	}
	return cart, name
}
