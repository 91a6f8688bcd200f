package query

import "github.com/example/varsha-shop/internal/model"

const (
	DefaultLimit = 50
	MaxLimit     = 200

	topProductsLimit  = 10
	recentOrdersLimit = 10
)

// ProductSearch filters the catalogue. A zero Limit means DefaultLimit.
type ProductSearch struct {
	Query    string
	Category string
	Limit    int
	Offset   int
}

type ProductPage struct {
	Total  int             `json:"total"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
	Items  []model.Product `json:"items"`
}

// OrderFilter narrows the admin order list. Empty fields match everything.
type OrderFilter struct {
	Query  string
	Status string
}

type MetaCounts struct {
	Products int `json:"products"`
	Orders   int `json:"orders"`
	Users    int `json:"users"`
}

type AdminMeta struct {
	Meta   map[string]any `json:"meta"`
	Counts MetaCounts     `json:"counts"`
}

type SummaryCounts struct {
	OrdersTotal int `json:"ordersTotal"`
	OrdersPaid  int `json:"ordersPaid"`
	UsersTotal  int `json:"usersTotal"`
}

type Revenue struct {
	Currency string  `json:"currency"`
	Total    float64 `json:"total"`
}

type TopProduct struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Qty       int     `json:"qty"`
	Revenue   float64 `json:"revenue"`
}

// SalesSummary is derived on demand from the orders collection.
type SalesSummary struct {
	Counts       SummaryCounts `json:"counts"`
	Revenue      Revenue       `json:"revenue"`
	TopProducts  []TopProduct  `json:"topProducts"`
	RecentOrders []model.Order `json:"recentOrders"`
}
