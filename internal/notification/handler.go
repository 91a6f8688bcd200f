package notification

import (
	"context"
	"encoding/json"
	"log"
	"strings"

	"github.com/example/varsha-shop/internal/domain/order"
	"github.com/example/varsha-shop/internal/email"
)

// Mailer is the part of email.Service the handler needs.
type Mailer interface {
	SendOrderConfirmation(to string, o email.OrderSummary) error
	SendPaymentReceipt(to string, o email.OrderSummary) error
	SendPaymentFailed(to string, o email.OrderSummary) error
}

// Handler processes order events for sending notifications
type Handler struct {
	mailer Mailer
}

// NewHandler creates a new notification handler
func NewHandler(mailer Mailer) *Handler {
	return &Handler{mailer: mailer}
}

// HandleEvent processes an event from Kafka
func (h *Handler) HandleEvent(ctx context.Context, key, value []byte) error {
	var event order.Event
	if err := json.Unmarshal(value, &event); err != nil {
		log.Printf("[Notifier] Failed to unmarshal event: %v", err)
		return err
	}

	to := strings.TrimSpace(event.Customer.Email)
	if to == "" {
		switch event.Type {
		case order.EventOrderPlaced, order.EventOrderPaid, order.EventOrderPaymentFailed:
			log.Printf("[Notifier] No customer email on order %s, skipping %s", event.OrderID, event.Type)
		}
		return nil
	}

	summary := summarize(event)
	var err error
	switch event.Type {
	case order.EventOrderPlaced:
		err = h.mailer.SendOrderConfirmation(to, summary)
	case order.EventOrderPaid:
		err = h.mailer.SendPaymentReceipt(to, summary)
	case order.EventOrderPaymentFailed:
		err = h.mailer.SendPaymentFailed(to, summary)
	default:
		return nil
	}
	if err != nil {
		log.Printf("[Notifier] Failed to send %s email to %s: %v", event.Type, to, err)
		return err
	}

	log.Printf("[Notifier] %s email sent to %s for order %s", event.Type, to, event.OrderID)
	return nil
}

func summarize(e order.Event) email.OrderSummary {
	summary := email.OrderSummary{
		OrderID:       e.OrderID,
		CustomerName:  e.Customer.Name,
		PaymentMethod: e.Payment.Method,
		Total:         e.Total,
		Currency:      currencyOf(e),
	}
	for _, item := range e.Items {
		summary.Items = append(summary.Items, email.OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Pack:      item.Pack,
			Quantity:  item.Qty,
			Price:     item.Price,
		})
	}
	return summary
}

func currencyOf(e order.Event) string {
	if e.Currency != nil {
		return *e.Currency
	}
	for _, item := range e.Items {
		if item.Currency != nil {
			return *item.Currency
		}
	}
	return ""
}
