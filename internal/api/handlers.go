package api

import (
	"net/http"

	"github.com/example/varsha-shop/internal/api/middleware"
	"github.com/example/varsha-shop/internal/domain/order"
	"github.com/example/varsha-shop/internal/domain/product"
	"github.com/example/varsha-shop/internal/query"
)

const serviceName = "varsha-ayurveda-shop-api"

type Handlers struct {
	products     *product.Service
	orders       *order.Service
	queryHandler *query.Handler
	adminKey     string
}

func NewHandlers(products *product.Service, orders *order.Service, queryHandler *query.Handler, adminKey string) *Handlers {
	return &Handlers{
		products:     products,
		orders:       orders,
		queryHandler: queryHandler,
		adminKey:     adminKey,
	}
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"ok": true, "service": serviceName})
}

// Product Handlers

func (h *Handlers) GetProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, offset := query.ParsePaging(q.Get("limit"), q.Get("offset"))

	page, err := h.queryHandler.SearchProducts(r.Context(), query.ProductSearch{
		Query:    q.Get("q"),
		Category: q.Get("category"),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, page)
}

func (h *Handlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.queryHandler.GetProduct(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

// Order Handlers

// PlaceOrder creates a cash-on-delivery order.
func (h *Handlers) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var in order.PlaceOrderInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondError(w, r, err)
		return
	}

	o, err := h.orders.PlaceCOD(r.Context(), h.requester(r), in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, o)
}

func (h *Handlers) GetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.Get(r.Context(), h.requester(r), r.PathValue("id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, o)
}

// GetMyOrders sits behind AuthMiddleware.
func (h *Handlers) GetMyOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListMine(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"items": orders})
}

// Payment Handlers

func (h *Handlers) CreateRazorpayOrder(w http.ResponseWriter, r *http.Request) {
	var in order.PlaceOrderInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondError(w, r, err)
		return
	}

	checkout, err := h.orders.PlaceGateway(r.Context(), h.requester(r), in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, checkout)
}

func (h *Handlers) VerifyRazorpayPayment(w http.ResponseWriter, r *http.Request) {
	var in order.VerifyPaymentInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondError(w, r, err)
		return
	}

	o, err := h.orders.VerifyPayment(r.Context(), h.requester(r), in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"ok": true, "order": o})
}

func (h *Handlers) requester(r *http.Request) order.Requester {
	return order.Requester{
		UserID: middleware.GetUserID(r.Context()),
		Admin:  middleware.IsAdmin(r, h.adminKey),
	}
}
