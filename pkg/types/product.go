package types

import (
	"github.com/ferretex/storefront-client/pkg/enums"
	"github.com/shopspring/decimal"
)

// Product is the canonical projection of a backend product. The backend emits
// several naming schemes for the same fields; only normalized records cross
// into the rest of the client.
type Product struct {
	ID       string              `json:"id"`
	Name     string              `json:"name"`
	Price    decimal.Decimal     `json:"price"`
	ImageURL string              `json:"image_url"`
	Stock    int                 `json:"stock"`
	Category string              `json:"category"`
	Status   enums.ProductStatus `json:"status"`
}

// InStock reports whether at least one unit is purchasable.
func (p Product) InStock() bool {
	return p.Stock > 0
}

// Category is a catalog grouping.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}
