package order

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/example/varsha-shop/internal/apperror"
	"github.com/example/varsha-shop/internal/infrastructure/store"
	"github.com/example/varsha-shop/internal/model"
	"github.com/example/varsha-shop/internal/payment"
	"github.com/shopspring/decimal"
)

var (
	ErrOrderNotFound = apperror.New(apperror.ErrNotFound, "Order not found")
	ErrLoginRequired = apperror.New(apperror.ErrUnauthorized, "Login required to view this order")
	ErrForbidden     = apperror.New(apperror.ErrForbidden, "Forbidden")

	ErrCustomerRequired = apperror.Validation("customer is required")
	ErrCustomerName     = apperror.Validation("customer.name is required")
	ErrCustomerPhone    = apperror.Validation("customer.phone is required")
	ErrCustomerAddress  = apperror.Validation("customer.address is required")
	ErrItemsRequired    = apperror.Validation("items is required (non-empty array)")
	ErrItemProductID    = apperror.Validation("Each item must have productId")
	ErrItemQty          = apperror.Validation("qty must be >= 1")
	ErrUseGateway       = apperror.Validation("For online payments, use /api/payments/razorpay/create-order")
	ErrStatusRequired   = apperror.Validation("status is required")

	ErrPricesRequired = apperror.New(apperror.ErrUnsupported,
		"Online payment needs prices for all cart items. Please add prices (admin) or use Cash on Delivery.")

	ErrVerifyOrderIDRequired = apperror.Validation("orderId is required")
	ErrVerifyFieldsRequired  = apperror.Validation("razorpay_payment_id, razorpay_order_id and razorpay_signature are required")
	ErrPaymentVerification   = apperror.New(apperror.ErrVerification, "Payment verification failed")
)

const publishTimeout = 5 * time.Second

// EventPublisher delivers lifecycle events. The Kafka producer satisfies it.
type EventPublisher interface {
	Publish(ctx context.Context, key string, event any) error
}

// Options configures the payment side of the service. A nil Gateway or an
// empty KeySecret disables the online payment path.
type Options struct {
	Gateway   payment.Gateway
	KeySecret string
	Currency  string
	Publisher EventPublisher
}

type Service struct {
	store     store.DocumentStoreInterface
	gateway   payment.Gateway
	keySecret string
	currency  string
	publisher EventPublisher
	now       func() time.Time
}

func NewService(ds store.DocumentStoreInterface, opts Options) *Service {
	currency := opts.Currency
	if currency == "" {
		currency = "INR"
	}
	return &Service{
		store:     ds,
		gateway:   opts.Gateway,
		keySecret: opts.KeySecret,
		currency:  currency,
		publisher: opts.Publisher,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// PlaceCOD creates a cash-on-delivery order in PLACED / UNPAID.
func (s *Service) PlaceCOD(ctx context.Context, req Requester, in PlaceOrderInput) (*model.Order, error) {
	customer, err := sanitizeCustomer(in.Customer)
	if err != nil {
		return nil, err
	}

	doc, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	items, total, err := snapshotItems(doc, in.Items)
	if err != nil {
		return nil, err
	}

	method := strings.ToUpper(strings.TrimSpace(in.PaymentMethod))
	if method != "" && method != model.MethodCOD {
		return nil, ErrUseGateway
	}

	var currency *string
	if total != nil {
		c := s.currency
		if items[0].Currency != nil && *items[0].Currency != "" {
			c = *items[0].Currency
		}
		currency = &c
	}

	now := s.now()
	o := model.Order{
		ID:        model.NewID(model.OrderIDPrefix),
		UserID:    req.userRef(),
		CreatedAt: now,
		UpdatedAt: now,
		Status:    model.StatusPlaced,
		Payment: model.Payment{
			Method: model.MethodCOD,
			Status: model.PaymentUnpaid,
		},
		Customer: customer,
		Items:    items,
		Total:    total,
		Currency: currency,
	}

	doc.Orders = append([]model.Order{o}, doc.Orders...)
	if err := s.store.Save(ctx, doc); err != nil {
		return nil, err
	}

	s.publish(ctx, EventOrderPlaced, &o, "")
	return &o, nil
}

// PlaceGateway persists a PENDING_PAYMENT order, then asks the provider for
// a payment intent. A provider failure leaves the order as PAYMENT_FAILED.
func (s *Service) PlaceGateway(ctx context.Context, req Requester, in PlaceOrderInput) (*GatewayCheckout, error) {
	if s.gateway == nil {
		return nil, payment.ErrGatewayNotConfigured
	}

	customer, err := sanitizeCustomer(in.Customer)
	if err != nil {
		return nil, err
	}

	doc, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	items, total, err := snapshotItems(doc, in.Items)
	if err != nil {
		return nil, err
	}
	if total == nil || *total <= 0 {
		return nil, ErrPricesRequired
	}

	amount := minorUnits(*total)
	if amount <= 0 {
		return nil, ErrPricesRequired
	}

	now := s.now()
	currency := s.currency
	provider := model.ProviderRazorpay
	o := model.Order{
		ID:        model.NewID(model.OrderIDPrefix),
		UserID:    req.userRef(),
		CreatedAt: now,
		UpdatedAt: now,
		Status:    model.StatusPendingPayment,
		Payment: model.Payment{
			Method:   model.MethodRazorpay,
			Status:   model.PaymentPending,
			Provider: &provider,
		},
		Customer: customer,
		Items:    items,
		Total:    total,
		Currency: &currency,
	}

	doc.Orders = append([]model.Order{o}, doc.Orders...)
	if err := s.store.Save(ctx, doc); err != nil {
		return nil, err
	}
	s.publish(ctx, EventOrderPaymentPending, &o, "")

	providerOrder, err := s.gateway.CreateOrder(ctx, payment.CreateOrderRequest{
		Amount:   amount,
		Currency: currency,
		Receipt:  o.ID,
		Notes:    map[string]string{"internalOrderId": o.ID},
	})
	if err != nil {
		log.Printf("[Order] Gateway order creation failed for %s: %v", o.ID, err)
		failed, ferr := s.mutate(ctx, o.ID, func(o *model.Order) (bool, error) {
			o.Payment.Status = model.PaymentFailed
			o.Status = model.StatusPaymentFailed
			o.UpdatedAt = s.now()
			return true, nil
		})
		if ferr != nil {
			log.Printf("[Order] Failed to mark %s as PAYMENT_FAILED: %v", o.ID, ferr)
		} else {
			s.publish(ctx, EventOrderPaymentFailed, failed, model.StatusPendingPayment)
		}
		return nil, fmt.Errorf("%w: %v", payment.ErrCreateOrderFailed, err)
	}

	if _, err := s.mutate(ctx, o.ID, func(o *model.Order) (bool, error) {
		ref := providerOrder.ID
		o.Payment.ProviderOrderID = &ref
		o.UpdatedAt = s.now()
		return true, nil
	}); err != nil {
		return nil, err
	}

	respCurrency := providerOrder.Currency
	if respCurrency == "" {
		respCurrency = currency
	}
	respAmount := providerOrder.Amount
	if respAmount == 0 {
		respAmount = amount
	}

	return &GatewayCheckout{
		OrderID: o.ID,
		Razorpay: RazorpayDetails{
			KeyID:    s.gateway.KeyID(),
			OrderID:  providerOrder.ID,
			Amount:   respAmount,
			Currency: respCurrency,
		},
	}, nil
}

// VerifyPayment checks the checkout signature and settles the order.
// A mismatch marks the order PAYMENT_FAILED unless it is already PAID.
func (s *Service) VerifyPayment(ctx context.Context, req Requester, in VerifyPaymentInput) (*model.Order, error) {
	if s.keySecret == "" {
		return nil, payment.ErrGatewayNotConfigured
	}

	in.OrderID = strings.TrimSpace(in.OrderID)
	if in.OrderID == "" {
		return nil, ErrVerifyOrderIDRequired
	}
	if in.RazorpayOrderID == "" || in.RazorpayPaymentID == "" || in.RazorpaySignature == "" {
		return nil, ErrVerifyFieldsRequired
	}

	var previous model.OrderStatus
	settled, failed := false, false
	o, err := s.mutate(ctx, in.OrderID, func(o *model.Order) (bool, error) {
		if err := req.canSettle(o); err != nil {
			return false, err
		}
		previous = o.Status

		valid := payment.VerifySignature(in.RazorpayOrderID, in.RazorpayPaymentID, in.RazorpaySignature, s.keySecret)
		if valid && o.Payment.ProviderOrderID != nil && *o.Payment.ProviderOrderID != in.RazorpayOrderID {
			valid = false
		}

		if !valid {
			if o.Payment.Status == model.PaymentPaid {
				return false, ErrPaymentVerification
			}
			o.Payment.Status = model.PaymentFailed
			o.Status = model.StatusPaymentFailed
			o.UpdatedAt = s.now()
			failed = true
			return true, ErrPaymentVerification
		}

		if o.Payment.Status == model.PaymentPaid && o.Status == model.StatusPaid &&
			o.Payment.ProviderPaymentID != nil && *o.Payment.ProviderPaymentID == in.RazorpayPaymentID {
			return false, nil
		}

		now := s.now()
		orderRef, paymentRef := in.RazorpayOrderID, in.RazorpayPaymentID
		o.Payment.Status = model.PaymentPaid
		o.Payment.ProviderOrderID = &orderRef
		o.Payment.ProviderPaymentID = &paymentRef
		o.Payment.VerifiedAt = &now
		o.Status = model.StatusPaid
		o.UpdatedAt = now
		settled = true
		return true, nil
	})

	if failed && o != nil {
		s.publish(ctx, EventOrderPaymentFailed, o, previous)
	}
	if err != nil {
		return nil, err
	}
	if settled {
		s.publish(ctx, EventOrderPaid, o, previous)
	}
	return o, nil
}

// OverrideStatus stores raw (trimmed, uppercased) as the order status
// without checking it against the known states.
func (s *Service) OverrideStatus(ctx context.Context, id, raw string) (*model.Order, error) {
	status := model.OrderStatus(strings.ToUpper(strings.TrimSpace(raw)))
	if status == "" {
		return nil, ErrStatusRequired
	}

	var previous model.OrderStatus
	o, err := s.mutate(ctx, id, func(o *model.Order) (bool, error) {
		previous = o.Status
		o.Status = status
		o.UpdatedAt = s.now()
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	if !status.Known() {
		log.Printf("[Order] Order %s set to non-standard status %q", id, status)
	}
	s.publish(ctx, EventOrderStatusChanged, o, previous)
	return o, nil
}

// MarkPaid forces the payment to PAID. A PLACED order also moves to PAID;
// later statuses are left alone. Already-paid orders are returned unchanged.
func (s *Service) MarkPaid(ctx context.Context, id string) (*model.Order, error) {
	var previous model.OrderStatus
	changed := false
	o, err := s.mutate(ctx, id, func(o *model.Order) (bool, error) {
		if o.Payment.Status == model.PaymentPaid {
			return false, nil
		}
		previous = o.Status
		now := s.now()
		o.Payment.Status = model.PaymentPaid
		o.Payment.VerifiedAt = &now
		if o.Status == "" || o.Status == model.StatusPlaced {
			o.Status = model.StatusPaid
		}
		o.UpdatedAt = now
		changed = true
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.publish(ctx, EventOrderPaid, o, previous)
	}
	return o, nil
}

// Get returns an order if req may see it.
func (s *Service) Get(ctx context.Context, req Requester, id string) (*model.Order, error) {
	doc, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	idx := doc.FindOrder(id)
	if idx == -1 {
		return nil, ErrOrderNotFound
	}

	o := doc.Orders[idx]
	if err := req.canRead(&o); err != nil {
		return nil, err
	}
	return &o, nil
}

// ListMine returns the orders linked to userID, newest first.
func (s *Service) ListMine(ctx context.Context, userID string) ([]model.Order, error) {
	doc, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	items := []model.Order{}
	for _, o := range doc.Orders {
		if o.OwnedBy(userID) {
			items = append(items, o)
		}
	}
	return items, nil
}

// mutate loads the document, applies fn to the order with id and saves when
// fn reports a change. fn's error is returned after the save, so a failed
// verification is still persisted.
func (s *Service) mutate(ctx context.Context, id string, fn func(o *model.Order) (bool, error)) (*model.Order, error) {
	doc, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	idx := doc.FindOrder(id)
	if idx == -1 {
		return nil, ErrOrderNotFound
	}

	o := &doc.Orders[idx]
	changed, fnErr := fn(o)
	if changed {
		if err := s.store.Save(ctx, doc); err != nil {
			return nil, err
		}
	}

	result := *o
	return &result, fnErr
}

func (s *Service) publish(ctx context.Context, eventType string, o *model.Order, previous model.OrderStatus) {
	if s.publisher == nil || o == nil {
		return
	}

	event := newEvent(eventType, o, s.now())
	event.PreviousStatus = previous

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := s.publisher.Publish(pubCtx, o.ID, event); err != nil {
		log.Printf("[Order] Failed to publish %s for order %s: %v", eventType, o.ID, err)
	}
}

// snapshotItems validates cart lines against the catalogue and copies each
// product's current name, pack, price and currency. total is nil unless
// every line has a price.
func snapshotItems(doc *model.Document, in []ItemInput) ([]model.LineItem, *float64, error) {
	if len(in) == 0 {
		return nil, nil, ErrItemsRequired
	}

	items := make([]model.LineItem, 0, len(in))
	for _, it := range in {
		productID := strings.TrimSpace(it.ProductID)
		if productID == "" {
			return nil, nil, ErrItemProductID
		}

		qty := 1
		if it.Qty != nil {
			qty = *it.Qty
		}
		if qty < 1 {
			return nil, nil, ErrItemQty
		}

		idx := doc.FindProduct(productID)
		if idx == -1 {
			return nil, nil, apperror.New(apperror.ErrNotFound, "Unknown productId: "+productID)
		}
		p := doc.Products[idx]

		line := model.LineItem{
			ProductID: productID,
			Qty:       qty,
			Name:      p.Name,
			Pack:      p.Pack,
		}
		if p.Price != nil {
			price := *p.Price
			line.Price = &price
		}
		if p.Currency != "" {
			currency := p.Currency
			line.Currency = &currency
		}
		items = append(items, line)
	}

	return items, computeTotal(items), nil
}

func computeTotal(items []model.LineItem) *float64 {
	sum := decimal.Zero
	for _, it := range items {
		if it.Price == nil {
			return nil
		}
		sum = sum.Add(decimal.NewFromFloat(*it.Price).Mul(decimal.NewFromInt(int64(it.Qty))))
	}
	total, _ := sum.Float64()
	return &total
}

// minorUnits converts a total to currency subunits, rounding half away from zero.
func minorUnits(total float64) int64 {
	return decimal.NewFromFloat(total).Shift(2).Round(0).IntPart()
}
