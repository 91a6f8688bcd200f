package model

import "time"

// OrderStatus is the order lifecycle state. System-driven transitions only
// ever use the constants below; the admin override may store other text.
type OrderStatus string

const (
	StatusPlaced         OrderStatus = "PLACED"
	StatusPendingPayment OrderStatus = "PENDING_PAYMENT"
	StatusPaid           OrderStatus = "PAID"
	StatusProcessing     OrderStatus = "PROCESSING"
	StatusShipped        OrderStatus = "SHIPPED"
	StatusDelivered      OrderStatus = "DELIVERED"
	StatusCancelled      OrderStatus = "CANCELLED"
	StatusPaymentFailed  OrderStatus = "PAYMENT_FAILED"
)

// Known reports whether s is one of the enumerated lifecycle states.
func (s OrderStatus) Known() bool {
	switch s {
	case StatusPlaced, StatusPendingPayment, StatusPaid, StatusProcessing,
		StatusShipped, StatusDelivered, StatusCancelled, StatusPaymentFailed:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentUnpaid  PaymentStatus = "UNPAID"
	PaymentPending PaymentStatus = "PENDING"
	PaymentPaid    PaymentStatus = "PAID"
	PaymentFailed  PaymentStatus = "FAILED"
)

// Payment methods and providers
const (
	MethodCOD      = "COD"
	MethodRazorpay = "RAZORPAY"

	ProviderRazorpay = "razorpay"
)

// Customer is the contact captured at checkout, independent of any account.
type Customer struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

// LineItem is an immutable snapshot of a product at order time.
type LineItem struct {
	ProductID string   `json:"productId"`
	Qty       int      `json:"qty"`
	Name      string   `json:"name"`
	Pack      string   `json:"pack"`
	Price     *float64 `json:"price"`
	Currency  *string  `json:"currency"`
}

type Payment struct {
	Method            string        `json:"method"`
	Status            PaymentStatus `json:"status"`
	Provider          *string       `json:"provider"`
	ProviderOrderID   *string       `json:"providerOrderId"`
	ProviderPaymentID *string       `json:"providerPaymentId"`
	VerifiedAt        *time.Time    `json:"verifiedAt"`
}

// Order is a placed order. Total and Currency are nil unless every line
// item carries a price.
type Order struct {
	ID        string      `json:"id"`
	UserID    *string     `json:"userId"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
	Status    OrderStatus `json:"status"`
	Payment   Payment     `json:"payment"`
	Customer  Customer    `json:"customer"`
	Items     []LineItem  `json:"items"`
	Total     *float64    `json:"total"`
	Currency  *string     `json:"currency"`
}

// OwnedBy reports whether the order is linked to the given account.
func (o *Order) OwnedBy(userID string) bool {
	return o.UserID != nil && *o.UserID == userID
}

// Guest reports whether the order has no linked account.
func (o *Order) Guest() bool {
	return o.UserID == nil || *o.UserID == ""
}
