package query

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/example/varsha-shop/internal/apperror"
	"github.com/example/varsha-shop/internal/infrastructure/store"
	"github.com/example/varsha-shop/internal/model"
	"github.com/shopspring/decimal"
)

var (
	ErrProductNotFound = apperror.New(apperror.ErrNotFound, "Not found")
	ErrOrderNotFound   = apperror.New(apperror.ErrNotFound, "Not found")
)

// Handler answers read-only questions by scanning the current document.
type Handler struct {
	store    store.DocumentStoreInterface
	currency string
}

func NewHandler(ds store.DocumentStoreInterface, currency string) *Handler {
	if currency == "" {
		currency = "INR"
	}
	return &Handler{store: ds, currency: currency}
}

// SearchProducts filters and pages the catalogue in store order.
func (h *Handler) SearchProducts(ctx context.Context, q ProductSearch) (*ProductPage, error) {
	doc, err := h.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	category := strings.ToLower(strings.TrimSpace(q.Category))
	needle := strings.ToLower(strings.TrimSpace(q.Query))

	items := make([]model.Product, 0, len(doc.Products))
	for _, p := range doc.Products {
		if category != "" && strings.ToLower(p.Category) != category {
			continue
		}
		if needle != "" && !strings.Contains(productHaystack(p), needle) {
			continue
		}
		items = append(items, p)
	}

	limit, offset := clampLimit(q.Limit), max(q.Offset, 0)
	start := min(offset, len(items))
	end := min(start+limit, len(items))

	return &ProductPage{
		Total:  len(items),
		Limit:  limit,
		Offset: offset,
		Items:  items[start:end],
	}, nil
}

// GetProduct returns one catalogue entry.
func (h *Handler) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	doc, err := h.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	idx := doc.FindProduct(id)
	if idx == -1 {
		return nil, ErrProductNotFound
	}
	p := doc.Products[idx]
	return &p, nil
}

// ListOrders returns orders newest first, optionally filtered by status
// and a free-text match on id and customer contact fields.
func (h *Handler) ListOrders(ctx context.Context, f OrderFilter) ([]model.Order, error) {
	doc, err := h.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	status := strings.ToUpper(strings.TrimSpace(f.Status))
	needle := strings.ToLower(strings.TrimSpace(f.Query))

	items := []model.Order{}
	for _, o := range doc.Orders {
		if status != "" && strings.ToUpper(string(o.Status)) != status {
			continue
		}
		if needle != "" && !strings.Contains(orderHaystack(o), needle) {
			continue
		}
		items = append(items, o)
	}
	return items, nil
}

// GetOrder returns any order regardless of owner.
func (h *Handler) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	doc, err := h.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	idx := doc.FindOrder(id)
	if idx == -1 {
		return nil, ErrOrderNotFound
	}
	o := doc.Orders[idx]
	return &o, nil
}

func (h *Handler) AdminMeta(ctx context.Context) (*AdminMeta, error) {
	doc, err := h.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	return &AdminMeta{
		Meta: doc.Meta,
		Counts: MetaCounts{
			Products: len(doc.Products),
			Orders:   len(doc.Orders),
			Users:    len(doc.Users),
		},
	}, nil
}

type productTally struct {
	TopProduct
	revenue decimal.Decimal
}

// SalesSummary aggregates paid orders. Revenue only counts orders with a
// total; top products are ranked by revenue, then quantity.
func (h *Handler) SalesSummary(ctx context.Context) (*SalesSummary, error) {
	doc, err := h.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	paid := 0
	revenue := decimal.Zero
	tallies := map[string]*productTally{}
	var firstSeen []string

	for _, o := range doc.Orders {
		if o.Payment.Status != model.PaymentPaid {
			continue
		}
		paid++
		if o.Total != nil {
			revenue = revenue.Add(decimal.NewFromFloat(*o.Total))
		}

		for _, it := range o.Items {
			t, ok := tallies[it.ProductID]
			if !ok {
				t = &productTally{TopProduct: TopProduct{ProductID: it.ProductID, Name: it.Name}}
				tallies[it.ProductID] = t
				firstSeen = append(firstSeen, it.ProductID)
			}
			t.Qty += it.Qty
			if it.Price != nil {
				t.revenue = t.revenue.Add(decimal.NewFromFloat(*it.Price).Mul(decimal.NewFromInt(int64(it.Qty))))
			}
		}
	}

	ranked := make([]*productTally, 0, len(firstSeen))
	for _, id := range firstSeen {
		ranked = append(ranked, tallies[id])
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if c := ranked[i].revenue.Cmp(ranked[j].revenue); c != 0 {
			return c > 0
		}
		return ranked[i].Qty > ranked[j].Qty
	})

	top := make([]TopProduct, 0, topProductsLimit)
	for _, t := range ranked[:min(len(ranked), topProductsLimit)] {
		t.Revenue, _ = t.revenue.Float64()
		top = append(top, t.TopProduct)
	}

	total, _ := revenue.Float64()
	recent := doc.Orders[:min(len(doc.Orders), recentOrdersLimit)]

	return &SalesSummary{
		Counts: SummaryCounts{
			OrdersTotal: len(doc.Orders),
			OrdersPaid:  paid,
			UsersTotal:  len(doc.Users),
		},
		Revenue:      Revenue{Currency: h.currency, Total: total},
		TopProducts:  top,
		RecentOrders: recent,
	}, nil
}

// ParsePaging reads limit and offset query values. Missing, non-numeric or
// zero limits fall back to DefaultLimit; the handler clamps the rest.
func ParsePaging(limit, offset string) (int, int) {
	l, err := strconv.Atoi(strings.TrimSpace(limit))
	if err != nil {
		l = 0
	}
	o, err := strconv.Atoi(strings.TrimSpace(offset))
	if err != nil {
		o = 0
	}
	return l, o
}

func clampLimit(limit int) int {
	if limit == 0 {
		return DefaultLimit
	}
	return max(1, min(MaxLimit, limit))
}

func productHaystack(p model.Product) string {
	parts := make([]string, 0, 4+len(p.Tags))
	for _, s := range append([]string{p.Name, p.Brand, p.Category, p.Pack}, p.Tags...) {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.ToLower(strings.Join(parts, " "))
}

func orderHaystack(o model.Order) string {
	parts := make([]string, 0, 4)
	for _, s := range []string{o.ID, o.Customer.Name, o.Customer.Phone, o.Customer.Email} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.ToLower(strings.Join(parts, " "))
}
