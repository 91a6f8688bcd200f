package order

import (
	"time"

	"github.com/example/varsha-shop/internal/model"
)

const (
	EventOrderPlaced         = "OrderPlaced"
	EventOrderPaymentPending = "OrderPaymentPending"
	EventOrderPaid           = "OrderPaid"
	EventOrderPaymentFailed  = "OrderPaymentFailed"
	EventOrderStatusChanged  = "OrderStatusChanged"
)

// Event is the message published after an order change has been persisted.
// It carries enough of the order for consumers to act without reading the
// datastore.
type Event struct {
	Type           string            `json:"type"`
	OrderID        string            `json:"orderId"`
	UserID         *string           `json:"userId"`
	Status         model.OrderStatus `json:"status"`
	PreviousStatus model.OrderStatus `json:"previousStatus,omitempty"`
	Payment        model.Payment     `json:"payment"`
	Customer       model.Customer    `json:"customer"`
	Items          []model.LineItem  `json:"items"`
	Total          *float64          `json:"total"`
	Currency       *string           `json:"currency"`
	OccurredAt     time.Time         `json:"occurredAt"`
}

func newEvent(eventType string, o *model.Order, at time.Time) Event {
	return Event{
		Type:       eventType,
		OrderID:    o.ID,
		UserID:     o.UserID,
		Status:     o.Status,
		Payment:    o.Payment,
		Customer:   o.Customer,
		Items:      o.Items,
		Total:      o.Total,
		Currency:   o.Currency,
		OccurredAt: at,
	}
}
