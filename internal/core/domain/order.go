package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// OrderStatus is the gateway-reported state of a checkout order.
type OrderStatus string

const (
	OrderStatusActive    OrderStatus = "ACTIVE"
	OrderStatusPaid      OrderStatus = "PAID"
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusCancelled OrderStatus = "CANCELLED"
	OrderStatusExpired   OrderStatus = "EXPIRED"
)

// NewOrderID generates the order identifier for one checkout attempt. The
// invoice id is embedded for later correlation, and the microsecond
// timestamp plus a random fragment keep concurrent attempts for the same
// invoice from colliding. Uppercased per the gateway convention.
func NewOrderID(invoiceID int64) string {
	token := fmt.Sprintf("inv_%x%s_%d", time.Now().UnixMicro(), uuid.New().String()[:8], invoiceID)
	return strings.ToUpper(token)
}
