package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/shopspring/decimal"

	"github.com/ferretex/storefront-client/pkg/enums"
	"github.com/ferretex/storefront-client/pkg/types"
)

// ProductFilters narrows a catalog listing. Zero values are omitted from the
// request entirely; the backend treats absent and empty filters differently.
type ProductFilters struct {
	Query    string
	Category string
	Status   enums.ProductStatus
	Sort     enums.SortOrder
	InStock  bool
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
}

func (f ProductFilters) values() url.Values {
	query := url.Values{}
	if f.Query != "" {
		query.Set("q", f.Query)
	}
	if f.Category != "" {
		query.Set("cat", f.Category)
	}
	if f.Status != "" && f.Status != enums.ProductStatusNone {
		query.Set("status", f.Status.String())
	}
	if f.Sort != "" {
		query.Set("sort", f.Sort.String())
	}
	if f.InStock {
		query.Set("inStock", "true")
	}
	if f.MinPrice != nil {
		query.Set("minPrice", f.MinPrice.String())
	}
	if f.MaxPrice != nil {
		query.Set("maxPrice", f.MaxPrice.String())
	}
	return query
}

// ListProducts fetches the catalog with optional server-side filters.
func (c *Client) ListProducts(ctx context.Context, filters ProductFilters) ([]types.Product, error) {
	var raws []json.RawMessage
	err := c.do(ctx, requestSpec{
		method: http.MethodGet,
		path:   "/api/products",
		op:     "list_products",
		query:  filters.values(),
	}, &raws)
	if err != nil {
		return nil, err
	}
	return normalizeProducts(raws), nil
}

// GetProduct fetches a single product by id.
func (c *Client) GetProduct(ctx context.Context, id string) (types.Product, error) {
	var raw json.RawMessage
	err := c.do(ctx, requestSpec{
		method: http.MethodGet,
		path:   "/api/products/" + url.PathEscape(id),
		op:     "get_product",
	}, &raw)
	if err != nil {
		return types.Product{}, err
	}
	return normalizeProduct(raw), nil
}

// ListCategories fetches the catalog groupings.
func (c *Client) ListCategories(ctx context.Context) ([]types.Category, error) {
	var categories []types.Category
	err := c.do(ctx, requestSpec{
		method: http.MethodGet,
		path:   "/api/categories",
		op:     "list_categories",
	}, &categories)
	if err != nil {
		return nil, err
	}
	return categories, nil
}

// ProductInput is the manager-facing create/update payload.
type ProductInput struct {
	Name     string              `json:"name"`
	Price    decimal.Decimal     `json:"price"`
	ImageURL string              `json:"image_url,omitempty"`
	Stock    int                 `json:"stock"`
	Category string              `json:"category,omitempty"`
	Status   enums.ProductStatus `json:"status,omitempty"`
}

// CreateProduct adds a catalog entry. Manager only; the backend enforces it.
func (c *Client) CreateProduct(ctx context.Context, token string, input ProductInput) (types.Product, error) {
	if err := requireToken(token); err != nil {
		return types.Product{}, err
	}
	var raw json.RawMessage
	err := c.do(ctx, requestSpec{
		method: http.MethodPost,
		path:   "/api/products",
		op:     "create_product",
		token:  token,
		body:   input,
	}, &raw)
	if err != nil {
		return types.Product{}, err
	}
	return normalizeProduct(raw), nil
}

// UpdateProduct patches a catalog entry. Manager only.
func (c *Client) UpdateProduct(ctx context.Context, token, id string, input ProductInput) (types.Product, error) {
	if err := requireToken(token); err != nil {
		return types.Product{}, err
	}
	var raw json.RawMessage
	err := c.do(ctx, requestSpec{
		method: http.MethodPatch,
		path:   "/api/products/" + url.PathEscape(id),
		op:     "update_product",
		token:  token,
		body:   input,
	}, &raw)
	if err != nil {
		return types.Product{}, err
	}
	return normalizeProduct(raw), nil
}

// DeactivateProduct soft-deletes a catalog entry. Manager only.
func (c *Client) DeactivateProduct(ctx context.Context, token, id string) error {
	if err := requireToken(token); err != nil {
		return err
	}
	return c.do(ctx, requestSpec{
		method: http.MethodPatch,
		path:   "/api/products/" + url.PathEscape(id) + "/deactivate",
		op:     "deactivate_product",
		token:  token,
	}, nil)
}
