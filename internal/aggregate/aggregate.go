// Package aggregate derives dashboard metrics from repository results. It
// never reads storage; callers collect the rows first.
package aggregate

import (
	"cmp"
	"slices"
	"strings"

	"storefront/internal/config"
	"storefront/internal/envelope"
	"storefront/internal/logging"
	"storefront/internal/model"
)

// DefaultLowStockThreshold is the stock level below which a product counts
// as low on stock.
const DefaultLowStockThreshold = 10

// DefaultTopProducts is how many best sellers Compute reports.
const DefaultTopProducts = 5

// Options tunes the derived metrics.
type Options struct {
	// RevenueStatuses are the order statuses whose totals count as revenue.
	RevenueStatuses   []model.OrderStatus
	LowStockThreshold int
	TopProducts       int
}

// DefaultOptions counts delivered orders as revenue.
func DefaultOptions() Options {
	return Options{
		RevenueStatuses:   []model.OrderStatus{model.OrderDelivered},
		LowStockThreshold: DefaultLowStockThreshold,
		TopProducts:       DefaultTopProducts,
	}
}

// OptionsFrom maps the dashboard configuration onto Options. Unknown revenue
// statuses are dropped with a warning.
func OptionsFrom(cfg config.DashboardConfig) Options {
	o := Options{LowStockThreshold: cfg.LowStockThreshold}
	for _, s := range cfg.RevenueStatuses {
		st := model.OrderStatus(strings.ToLower(strings.TrimSpace(s)))
		if !st.Valid() {
			logging.Warn("aggregate", "unknown_revenue_status", map[string]any{"status": s})
			continue
		}
		o.RevenueStatuses = append(o.RevenueStatuses, st)
	}
	return o.withDefaults()
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.RevenueStatuses == nil {
		o.RevenueStatuses = d.RevenueStatuses
	}
	if o.LowStockThreshold <= 0 {
		o.LowStockThreshold = d.LowStockThreshold
	}
	if o.TopProducts <= 0 {
		o.TopProducts = d.TopProducts
	}
	return o
}

// ProductSales is one row of the best seller list.
type ProductSales struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	Revenue     float64 `json:"revenue"`
}

// DashboardStats is the admin dashboard summary.
type DashboardStats struct {
	Revenue           float64                   `json:"revenue"`
	OrderCount        int                       `json:"orderCount"`
	AverageOrderValue float64                   `json:"averageOrderValue"`
	CustomerCount     int                       `json:"customerCount"`
	DistinctCustomers int                       `json:"distinctCustomers"`
	ProductCount      int                       `json:"productCount"`
	LowStockCount     int                       `json:"lowStockCount"`
	OutOfStockCount   int                       `json:"outOfStockCount"`
	ConversionRate    float64                   `json:"conversionRate"`
	OrdersByStatus    map[model.OrderStatus]int `json:"ordersByStatus"`
	TopProducts       []ProductSales            `json:"topProducts"`
}

// Revenue sums the totals of orders whose status is in statuses.
func Revenue(orders []model.Order, statuses []model.OrderStatus) float64 {
	var sum float64
	for _, o := range orders {
		if slices.Contains(statuses, o.Status) {
			sum += o.Total
		}
	}
	return model.RoundMoney(sum)
}

// DistinctCustomers counts the customers that placed at least one of orders.
func DistinctCustomers(orders []model.Order) int {
	seen := make(map[string]struct{}, len(orders))
	for _, o := range orders {
		seen[o.CustomerID] = struct{}{}
	}
	return len(seen)
}

// LowStockCount counts products with stock strictly below threshold.
func LowStockCount(products []model.Product, threshold int) int {
	n := 0
	for _, p := range products {
		if p.StockQuantity < threshold {
			n++
		}
	}
	return n
}

func OutOfStockCount(products []model.Product) int {
	n := 0
	for _, p := range products {
		if p.StockQuantity == 0 {
			n++
		}
	}
	return n
}

// ConversionRate is delivered orders over all orders, and 0 for no orders.
func ConversionRate(orders []model.Order) float64 {
	if len(orders) == 0 {
		return 0
	}
	delivered := 0
	for _, o := range orders {
		if o.Status == model.OrderDelivered {
			delivered++
		}
	}
	return float64(delivered) / float64(len(orders))
}

func OrdersByStatus(orders []model.Order) map[model.OrderStatus]int {
	out := make(map[model.OrderStatus]int)
	for _, o := range orders {
		out[o.Status]++
	}
	return out
}

// TopProducts ranks products by units sold across orders that were not
// cancelled, breaking ties by revenue and then product id.
func TopProducts(orders []model.Order, n int) []ProductSales {
	byID := make(map[string]*ProductSales)
	for _, o := range orders {
		if o.Status == model.OrderCancelled || o.Status == model.OrderPartial {
			continue
		}
		for _, it := range o.Items {
			s, ok := byID[it.ProductID]
			if !ok {
				s = &ProductSales{ProductID: it.ProductID, ProductName: it.ProductName}
				byID[it.ProductID] = s
			}
			s.Quantity += it.Quantity
			s.Revenue += it.Subtotal()
		}
	}

	out := make([]ProductSales, 0, len(byID))
	for _, s := range byID {
		s.Revenue = model.RoundMoney(s.Revenue)
		out = append(out, *s)
	}
	slices.SortFunc(out, func(a, b ProductSales) int {
		if c := cmp.Compare(b.Quantity, a.Quantity); c != 0 {
			return c
		}
		if c := cmp.Compare(b.Revenue, a.Revenue); c != 0 {
			return c
		}
		return cmp.Compare(a.ProductID, b.ProductID)
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Compute derives every dashboard metric from the given rows.
func Compute(orders []model.Order, customers []model.Customer, products []model.Product, opts Options) envelope.Envelope[DashboardStats] {
	return envelope.Guard(func() envelope.Envelope[DashboardStats] {
		opts = opts.withDefaults()
		stats := DashboardStats{
			Revenue:           Revenue(orders, opts.RevenueStatuses),
			OrderCount:        len(orders),
			CustomerCount:     len(customers),
			DistinctCustomers: DistinctCustomers(orders),
			ProductCount:      len(products),
			LowStockCount:     LowStockCount(products, opts.LowStockThreshold),
			OutOfStockCount:   OutOfStockCount(products),
			ConversionRate:    ConversionRate(orders),
			OrdersByStatus:    OrdersByStatus(orders),
			TopProducts:       TopProducts(orders, opts.TopProducts),
		}
		if counted := countIn(orders, opts.RevenueStatuses); counted > 0 {
			stats.AverageOrderValue = model.RoundMoney(stats.Revenue / float64(counted))
		}
		return envelope.OK(stats)
	})
}

// FromEnvelopes is Compute over repository results. The first failed input
// fails the whole computation with its error.
func FromEnvelopes(
	orders envelope.Envelope[[]model.Order],
	customers envelope.Envelope[[]model.Customer],
	products envelope.Envelope[[]model.Product],
	opts Options,
) envelope.Envelope[DashboardStats] {
	if !orders.Success {
		return envelope.Map(orders, func([]model.Order) DashboardStats { return DashboardStats{} })
	}
	if !customers.Success {
		return envelope.Map(customers, func([]model.Customer) DashboardStats { return DashboardStats{} })
	}
	if !products.Success {
		return envelope.Map(products, func([]model.Product) DashboardStats { return DashboardStats{} })
	}
	return Compute(orders.Data, customers.Data, products.Data, opts)
}

func countIn(orders []model.Order, statuses []model.OrderStatus) int {
	n := 0
	for _, o := range orders {
		if slices.Contains(statuses, o.Status) {
			n++
		}
	}
	return n
}
