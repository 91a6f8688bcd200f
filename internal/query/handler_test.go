package query

import (
	"context"
	"fmt"
	"testing"

	"github.com/example/varsha-shop/internal/apperror"
	"github.com/example/varsha-shop/internal/infrastructure/store"
	"github.com/example/varsha-shop/internal/infrastructure/store/mocks"
	"github.com/example/varsha-shop/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func newTestQueryHandler(t *testing.T, doc *model.Document) *Handler {
	t.Helper()
	ds := store.NewDocumentStore(mocks.NewMockBackend())
	t.Cleanup(func() { _ = ds.Close() })
	require.NoError(t, ds.Save(context.Background(), doc))
	return NewHandler(ds, "INR")
}

func catalogue() *model.Document {
	doc := model.NewDocument()
	doc.Products = []model.Product{
		{ID: "p1", Name: "Neem Tablet", Brand: "Varsha Ayurveda", Category: "Tablets", Pack: "60 tabs", Price: ptr(100.0), Currency: "INR", Tags: []string{"skin"}},
		{ID: "p2", Name: "Triphala Churna", Brand: "Varsha Ayurveda", Category: "Churna", Pack: "100 g", Price: ptr(150.0), Currency: "INR", Tags: []string{"digestion"}},
		{ID: "p3", Name: "Giloy Tablet", Brand: "Other", Category: "tablets", Pack: "30 tabs", Currency: "INR", Tags: []string{"immunity"}},
		{ID: "p4", Name: "Brahmi Tablet", Brand: "Varsha Ayurveda", Category: "Tablets", Pack: "60 tabs", Currency: "INR", Tags: []string{}},
	}
	return doc
}

// ============================================
// Product Query Tests
// ============================================

func TestHandler_SearchProducts_CaseInsensitiveSubstring(t *testing.T) {
	handler := newTestQueryHandler(t, catalogue())
	ctx := context.Background()

	for _, q := range []string{"neem", "NEEM TAB", "Neem Tablet"} {
		page, err := handler.SearchProducts(ctx, ProductSearch{Query: q})
		require.NoError(t, err)
		require.Equal(t, 1, page.Total, q)
		assert.Equal(t, "p1", page.Items[0].ID)
	}

	page, err := handler.SearchProducts(ctx, ProductSearch{Query: "TABLET"})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
}

func TestHandler_SearchProducts_MatchesTagsPackBrand(t *testing.T) {
	handler := newTestQueryHandler(t, catalogue())
	ctx := context.Background()

	tests := []struct {
		query string
		want  []string
	}{
		{"immunity", []string{"p3"}},
		{"100 g", []string{"p2"}},
		{"other", []string{"p3"}},
		{"churna", []string{"p2"}},
		{"nothing-matches", nil},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			page, err := handler.SearchProducts(ctx, ProductSearch{Query: tt.query})
			require.NoError(t, err)
			var ids []string
			for _, p := range page.Items {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestHandler_SearchProducts_CategoryExact(t *testing.T) {
	handler := newTestQueryHandler(t, catalogue())

	page, err := handler.SearchProducts(context.Background(), ProductSearch{Category: "TABLETS"})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)

	page, err = handler.SearchProducts(context.Background(), ProductSearch{Category: "Tab"})
	require.NoError(t, err)
	assert.Equal(t, 0, page.Total)
	assert.NotNil(t, page.Items)
}

func TestHandler_SearchProducts_Pagination(t *testing.T) {
	handler := newTestQueryHandler(t, catalogue())

	page, err := handler.SearchProducts(context.Background(), ProductSearch{Query: "tablet", Limit: 1, Offset: 1})

	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, 1, page.Limit)
	assert.Equal(t, 1, page.Offset)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "p3", page.Items[0].ID)
}

func TestHandler_SearchProducts_Clamping(t *testing.T) {
	handler := newTestQueryHandler(t, catalogue())
	ctx := context.Background()

	tests := []struct {
		name       string
		limit      int
		offset     int
		wantLimit  int
		wantOffset int
		wantItems  int
	}{
		{"defaults", 0, 0, 50, 0, 4},
		{"too large", 1000, 0, 200, 0, 4},
		{"negative limit", -5, 0, 1, 0, 1},
		{"negative offset", 2, -3, 2, 0, 2},
		{"offset past end", 10, 99, 10, 99, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := handler.SearchProducts(ctx, ProductSearch{Limit: tt.limit, Offset: tt.offset})
			require.NoError(t, err)
			assert.Equal(t, tt.wantLimit, page.Limit)
			assert.Equal(t, tt.wantOffset, page.Offset)
			assert.Len(t, page.Items, tt.wantItems)
			assert.Equal(t, 4, page.Total)
		})
	}
}

func TestParsePaging(t *testing.T) {
	l, o := ParsePaging("", "")
	assert.Equal(t, 0, l)
	assert.Equal(t, 0, o)

	l, o = ParsePaging("abc", "x")
	assert.Equal(t, 0, l)
	assert.Equal(t, 0, o)

	l, o = ParsePaging(" 5 ", "10")
	assert.Equal(t, 5, l)
	assert.Equal(t, 10, o)
}

func TestHandler_GetProduct(t *testing.T) {
	handler := newTestQueryHandler(t, catalogue())

	p, err := handler.GetProduct(context.Background(), "p2")
	require.NoError(t, err)
	assert.Equal(t, "Triphala Churna", p.Name)

	_, err = handler.GetProduct(context.Background(), "missing")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

// ============================================
// Order Query Tests
// ============================================

func orderFixture(id string, status model.OrderStatus, payment model.PaymentStatus, items ...model.LineItem) model.Order {
	o := model.Order{
		ID:       id,
		Status:   status,
		Payment:  model.Payment{Method: model.MethodCOD, Status: payment},
		Customer: model.Customer{Name: "Customer " + id, Phone: "98765" + id, Email: id + "@example.com"},
		Items:    items,
	}
	total := 0.0
	for _, it := range items {
		if it.Price == nil {
			return o
		}
		total += *it.Price * float64(it.Qty)
	}
	o.Total = &total
	o.Currency = ptr("INR")
	return o
}

func TestHandler_ListOrders_Filters(t *testing.T) {
	doc := catalogue()
	doc.Orders = []model.Order{
		orderFixture("ord_a", model.StatusPaid, model.PaymentPaid),
		orderFixture("ord_b", model.StatusPlaced, model.PaymentUnpaid),
		orderFixture("ord_c", "ON HOLD", model.PaymentUnpaid),
	}
	doc.Orders[1].Customer.Name = "Ravi Kumar"
	handler := newTestQueryHandler(t, doc)
	ctx := context.Background()

	all, err := handler.ListOrders(ctx, OrderFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	placed, err := handler.ListOrders(ctx, OrderFilter{Status: "placed"})
	require.NoError(t, err)
	require.Len(t, placed, 1)
	assert.Equal(t, "ord_b", placed[0].ID)

	onHold, err := handler.ListOrders(ctx, OrderFilter{Status: "on hold"})
	require.NoError(t, err)
	assert.Len(t, onHold, 1)

	byName, err := handler.ListOrders(ctx, OrderFilter{Query: "RAVI"})
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, "ord_b", byName[0].ID)

	byEmail, err := handler.ListOrders(ctx, OrderFilter{Query: "ord_c@example"})
	require.NoError(t, err)
	assert.Len(t, byEmail, 1)

	none, err := handler.ListOrders(ctx, OrderFilter{Query: "zzz"})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestHandler_GetOrder(t *testing.T) {
	doc := catalogue()
	doc.Orders = []model.Order{orderFixture("ord_a", model.StatusPlaced, model.PaymentUnpaid)}
	handler := newTestQueryHandler(t, doc)

	o, err := handler.GetOrder(context.Background(), "ord_a")
	require.NoError(t, err)
	assert.Equal(t, "ord_a", o.ID)

	_, err = handler.GetOrder(context.Background(), "ord_missing")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

// ============================================
// Admin Aggregation Tests
// ============================================

func TestHandler_AdminMeta(t *testing.T) {
	doc := catalogue()
	doc.Meta = map[string]any{"seededAt": "2024-01-01"}
	doc.Orders = []model.Order{orderFixture("ord_a", model.StatusPlaced, model.PaymentUnpaid)}
	doc.Users = []model.User{{ID: "usr_1"}, {ID: "usr_2"}}
	handler := newTestQueryHandler(t, doc)

	meta, err := handler.AdminMeta(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "2024-01-01", meta.Meta["seededAt"])
	assert.Equal(t, MetaCounts{Products: 4, Orders: 1, Users: 2}, meta.Counts)
}

func TestHandler_SalesSummary(t *testing.T) {
	neem := func(qty int) model.LineItem {
		return model.LineItem{ProductID: "p1", Name: "Neem Tablet", Qty: qty, Price: ptr(100.0), Currency: ptr("INR")}
	}
	triphala := func(qty int) model.LineItem {
		return model.LineItem{ProductID: "p2", Name: "Triphala Churna", Qty: qty, Price: ptr(150.0), Currency: ptr("INR")}
	}
	giloy := func(qty int) model.LineItem {
		return model.LineItem{ProductID: "p3", Name: "Giloy Tablet", Qty: qty}
	}

	doc := catalogue()
	doc.Users = []model.User{{ID: "usr_1"}}
	doc.Orders = []model.Order{
		orderFixture("ord_5", model.StatusPaid, model.PaymentPaid, neem(3)),
		orderFixture("ord_4", model.StatusPlaced, model.PaymentUnpaid, triphala(10)),
		orderFixture("ord_3", model.StatusShipped, model.PaymentPaid, triphala(2), giloy(7)),
		orderFixture("ord_2", model.StatusPaid, model.PaymentPaid, giloy(1)),
		orderFixture("ord_1", model.StatusPaymentFailed, model.PaymentFailed, neem(50)),
	}
	handler := newTestQueryHandler(t, doc)

	summary, err := handler.SalesSummary(context.Background())
	require.NoError(t, err)

	assert.Equal(t, SummaryCounts{OrdersTotal: 5, OrdersPaid: 3, UsersTotal: 1}, summary.Counts)
	assert.Equal(t, Revenue{Currency: "INR", Total: 300}, summary.Revenue)

	require.Len(t, summary.TopProducts, 3)
	assert.Equal(t, TopProduct{ProductID: "p1", Name: "Neem Tablet", Qty: 3, Revenue: 300}, summary.TopProducts[0])
	assert.Equal(t, TopProduct{ProductID: "p2", Name: "Triphala Churna", Qty: 2, Revenue: 300}, summary.TopProducts[1])
	assert.Equal(t, TopProduct{ProductID: "p3", Name: "Giloy Tablet", Qty: 8, Revenue: 0}, summary.TopProducts[2])

	require.Len(t, summary.RecentOrders, 5)
	assert.Equal(t, "ord_5", summary.RecentOrders[0].ID)
}

func TestHandler_SalesSummary_RevenueTieBreaksOnQty(t *testing.T) {
	doc := catalogue()
	doc.Orders = []model.Order{
		orderFixture("ord_1", model.StatusPaid, model.PaymentPaid,
			model.LineItem{ProductID: "a", Name: "A", Qty: 1, Price: ptr(200.0)},
			model.LineItem{ProductID: "b", Name: "B", Qty: 4, Price: ptr(50.0)},
		),
	}
	handler := newTestQueryHandler(t, doc)

	summary, err := handler.SalesSummary(context.Background())
	require.NoError(t, err)

	require.Len(t, summary.TopProducts, 2)
	assert.Equal(t, "b", summary.TopProducts[0].ProductID)
	assert.Equal(t, "a", summary.TopProducts[1].ProductID)
}

func TestHandler_SalesSummary_Limits(t *testing.T) {
	doc := catalogue()
	for i := 0; i < 15; i++ {
		doc.Orders = append(doc.Orders, orderFixture(fmt.Sprintf("ord_%02d", i), model.StatusPaid, model.PaymentPaid,
			model.LineItem{ProductID: fmt.Sprintf("p%02d", i), Name: "P", Qty: 1, Price: ptr(float64(i + 1))},
		))
	}
	handler := newTestQueryHandler(t, doc)

	summary, err := handler.SalesSummary(context.Background())
	require.NoError(t, err)

	assert.Len(t, summary.TopProducts, 10)
	assert.Equal(t, "p14", summary.TopProducts[0].ProductID)
	assert.Len(t, summary.RecentOrders, 10)
	assert.Equal(t, "ord_00", summary.RecentOrders[0].ID)
	assert.Equal(t, 120.0, summary.Revenue.Total)
}

func TestHandler_SalesSummary_Empty(t *testing.T) {
	handler := newTestQueryHandler(t, model.NewDocument())

	summary, err := handler.SalesSummary(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 0.0, summary.Revenue.Total)
	assert.NotNil(t, summary.TopProducts)
	assert.NotNil(t, summary.RecentOrders)
	assert.Empty(t, summary.TopProducts)
}
