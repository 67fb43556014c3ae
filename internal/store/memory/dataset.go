// Package memory is the deterministic in-memory fallback dataset. It mirrors
// the live schema's constraints and honors the full query.Descriptor contract
// so a caller cannot tell which backend served a read.
package memory

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"storefront/internal/model"
	"storefront/internal/store"
)

//go:embed seed.yaml
var seedYAML []byte

type seed struct {
	Products  []model.Product         `yaml:"products"`
	Customers []model.Customer        `yaml:"customers"`
	Orders    []model.Order           `yaml:"orders"`
	Admins    []model.AdminUser       `yaml:"admin_users"`
	Cart      []model.CartItem        `yaml:"cart_items"`
	Metrics   []model.AnalyticsMetric `yaml:"analytics_metrics"`
}

// Dataset holds every table of the fallback store. Rows keep insertion order;
// the seed is loaded once and never re-randomized.
type Dataset struct {
	mu        sync.RWMutex
	products  []model.Product
	customers []model.Customer
	orders    []model.Order
	admins    []model.AdminUser
	cart      []model.CartItem
	metrics   []model.AnalyticsMetric
}

// NewDataset returns a dataset loaded with the embedded seed.
func NewDataset() (*Dataset, error) {
	return Load(seedYAML)
}

// MustDataset is NewDataset for wiring code that cannot continue without it.
func MustDataset() *Dataset {
	ds, err := NewDataset()
	if err != nil {
		panic(err)
	}
	return ds
}

// Load parses a YAML seed. Order totals and customer counters are derived
// while loading so the seed cannot violate those invariants.
func Load(data []byte) (*Dataset, error) {
	var s seed
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse fallback seed: %w", err)
	}

	ds := &Dataset{
		products:  s.Products,
		customers: s.Customers,
		admins:    s.Admins,
		cart:      s.Cart,
		metrics:   s.Metrics,
	}
	for _, o := range s.Orders {
		for i := range o.Items {
			o.Items[i].OrderID = o.ID
		}
		o.Recalculate()
		ds.orders = append(ds.orders, o)
	}
	for i := range ds.customers {
		ds.refreshStatsLocked(i)
	}
	return ds, nil
}

// NewStores exposes ds through the store interfaces.
func NewStores(ds *Dataset) *store.Set {
	return &store.Set{
		Name:      "fallback",
		Products:  &ProductStore{ds: ds},
		Orders:    &OrderStore{ds: ds},
		Customers: &CustomerStore{ds: ds},
		Admins:    &AdminUserStore{ds: ds},
		Cart:      &CartStore{ds: ds},
		Metrics:   &MetricStore{ds: ds},
	}
}

func (ds *Dataset) productIndex(id string) int {
	for i := range ds.products {
		if ds.products[i].ID == id {
			return i
		}
	}
	return -1
}

func (ds *Dataset) customerIndex(id string) int {
	for i := range ds.customers {
		if ds.customers[i].ID == id {
			return i
		}
	}
	return -1
}

func (ds *Dataset) orderIndex(id string) int {
	for i := range ds.orders {
		if ds.orders[i].ID == id {
			return i
		}
	}
	return -1
}

func (ds *Dataset) refreshStatsLocked(i int) {
	c := &ds.customers[i]
	c.TotalOrders = 0
	var spent float64
	for _, o := range ds.orders {
		if o.CustomerID != c.ID || o.Status == model.OrderPartial {
			continue
		}
		c.TotalOrders++
		if o.Status != model.OrderCancelled {
			spent += o.Total
		}
	}
	c.TotalSpent = model.RoundMoney(spent)
}

func (ds *Dataset) dropCartWhere(keep func(model.CartItem) bool) {
	out := ds.cart[:0]
	for _, it := range ds.cart {
		if keep(it) {
			out = append(out, it)
		}
	}
	ds.cart = out
}
