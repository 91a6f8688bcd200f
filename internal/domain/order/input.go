package order

import (
	"strings"

	"github.com/example/varsha-shop/internal/model"
)

// CustomerInput is the contact block of a checkout request.
type CustomerInput struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

// ItemInput is one cart line. A missing qty means 1.
type ItemInput struct {
	ProductID string `json:"productId"`
	Qty       *int   `json:"qty"`
}

// PlaceOrderInput is the body of both checkout paths.
type PlaceOrderInput struct {
	Customer      *CustomerInput `json:"customer"`
	Items         []ItemInput    `json:"items"`
	PaymentMethod string         `json:"paymentMethod"`
}

// VerifyPaymentInput is what the hosted checkout hands back to the browser.
type VerifyPaymentInput struct {
	OrderID           string `json:"orderId"`
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpaySignature string `json:"razorpay_signature"`
}

// GatewayCheckout is returned to the browser so it can open the hosted checkout.
type GatewayCheckout struct {
	OrderID  string          `json:"orderId"`
	Razorpay RazorpayDetails `json:"razorpay"`
}

type RazorpayDetails struct {
	KeyID    string `json:"keyId"`
	OrderID  string `json:"orderId"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// Requester is who is asking: an account id (empty for anonymous) and
// whether admin privilege was established.
type Requester struct {
	UserID string
	Admin  bool
}

// Anonymous reports whether no account is attached.
func (r Requester) Anonymous() bool {
	return r.UserID == ""
}

func (r Requester) userRef() *string {
	if r.Anonymous() {
		return nil
	}
	id := r.UserID
	return &id
}

// canRead enforces order visibility. Guest orders are readable by anyone
// holding the id.
func (r Requester) canRead(o *model.Order) error {
	if o.Guest() || r.Admin {
		return nil
	}
	if r.Anonymous() {
		return ErrLoginRequired
	}
	if !o.OwnedBy(r.UserID) {
		return ErrForbidden
	}
	return nil
}

// canSettle guards payment verification. Unlike reads, an anonymous caller
// on a user-linked order is refused outright rather than asked to log in.
func (r Requester) canSettle(o *model.Order) error {
	if o.Guest() || r.Admin {
		return nil
	}
	if r.Anonymous() || !o.OwnedBy(r.UserID) {
		return ErrForbidden
	}
	return nil
}

func sanitizeCustomer(in *CustomerInput) (model.Customer, error) {
	if in == nil {
		return model.Customer{}, ErrCustomerRequired
	}
	c := model.Customer{
		Name:    strings.TrimSpace(in.Name),
		Phone:   strings.TrimSpace(in.Phone),
		Email:   strings.TrimSpace(in.Email),
		Address: strings.TrimSpace(in.Address),
	}
	switch {
	case len([]rune(c.Name)) < 2:
		return c, ErrCustomerName
	case len([]rune(c.Phone)) < 6:
		return c, ErrCustomerPhone
	case len([]rune(c.Address)) < 5:
		return c, ErrCustomerAddress
	}
	return c, nil
}
