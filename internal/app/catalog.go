package app

import (
	"context"
	"sort"
	"strings"

	"github.com/ferretex/storefront-client/internal/api"
	"github.com/ferretex/storefront-client/pkg/enums"
	"github.com/ferretex/storefront-client/pkg/types"
)

// BrowseProducts fetches the catalog and applies the persisted sort
// preference unless the filters carry an explicit one. A result superseded by
// a newer browse returns ErrStale.
func (a *App) BrowseProducts(ctx context.Context, filters api.ProductFilters) ([]types.Product, error) {
	sortOrder := filters.Sort
	if sortOrder == "" {
		sortOrder = a.store.Snapshot().UI.Sort
	}

	stamp := a.beginRequest(api.ResourceProducts)
	products, err := a.backend.ListProducts(ctx, filters)
	if err != nil {
		return nil, err
	}
	if !a.isLatest(api.ResourceProducts, stamp) {
		return nil, ErrStale
	}

	sortProducts(products, sortOrder)
	return products, nil
}

// ProductDetail fetches one product.
func (a *App) ProductDetail(ctx context.Context, id string) (types.Product, error) {
	return a.backend.GetProduct(ctx, id)
}

// Categories fetches the catalog groupings.
func (a *App) Categories(ctx context.Context) ([]types.Category, error) {
	return a.backend.ListCategories(ctx)
}

// AddToCart puts one unit of the product in the cart, honoring the stock cap.
func (a *App) AddToCart(ctx context.Context, product types.Product) error {
	return a.store.AddToCart(ctx, product)
}

// IncrementQuantity bumps a cart line.
func (a *App) IncrementQuantity(ctx context.Context, productID string) error {
	return a.store.IncrementQuantity(ctx, productID)
}

// DecrementQuantity lowers a cart line, removing it at zero.
func (a *App) DecrementQuantity(ctx context.Context, productID string) error {
	return a.store.DecrementQuantity(ctx, productID)
}

// RemoveFromCart drops a cart line.
func (a *App) RemoveFromCart(ctx context.Context, productID string) error {
	return a.store.RemoveFromCart(ctx, productID)
}

// SetSortOrder persists the catalog sort preference.
func (a *App) SetSortOrder(ctx context.Context, order enums.SortOrder) error {
	return a.store.SetSortOrder(ctx, order)
}

// sortProducts orders the slice in place according to the preference. The
// backend may already sort server-side; sorting again keeps the invariant
// regardless of what it returned.
func sortProducts(products []types.Product, order enums.SortOrder) {
	switch order {
	case enums.SortPriceAsc:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Price.LessThan(products[j].Price)
		})
	case enums.SortPriceDesc:
		sort.SliceStable(products, func(i, j int) bool {
			return products[j].Price.LessThan(products[i].Price)
		})
	case enums.SortNameAsc:
		sort.SliceStable(products, func(i, j int) bool {
			return lessName(products[i].Name, products[j].Name)
		})
	case enums.SortNameDesc:
		sort.SliceStable(products, func(i, j int) bool {
			return lessName(products[j].Name, products[i].Name)
		})
	}
}

func lessName(a, b string) bool {
	return strings.ToLower(a) < strings.ToLower(b)
}
