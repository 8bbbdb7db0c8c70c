package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/ferretex/storefront-client/pkg/enums"
	"github.com/ferretex/storefront-client/pkg/types"
)

// OrderLine is one requested line within an order payload.
type OrderLine struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"qty"`
}

// OrderPayload is the checkout submission. Address is required iff Mode is
// delivery; internal/checkout guards that before this call is made.
type OrderPayload struct {
	Mode    enums.DeliveryMode `json:"mode"`
	Phone   string             `json:"phone"`
	Address string             `json:"address,omitempty"`
	Notes   string             `json:"notes,omitempty"`
	Items   []OrderLine        `json:"items"`
}

// OrderFilters narrows the staff order listing.
type OrderFilters struct {
	Limit int
}

func (f OrderFilters) values() url.Values {
	query := url.Values{}
	if f.Limit > 0 {
		query.Set("limit", strconv.Itoa(f.Limit))
	}
	return query
}

// CreateOrder submits a checkout.
func (c *Client) CreateOrder(ctx context.Context, token string, payload OrderPayload) (types.Order, error) {
	if err := requireToken(token); err != nil {
		return types.Order{}, err
	}
	var raw json.RawMessage
	err := c.do(ctx, requestSpec{
		method: http.MethodPost,
		path:   "/api/orders",
		op:     "create_order",
		token:  token,
		body:   payload,
	}, &raw)
	if err != nil {
		return types.Order{}, err
	}
	return normalizeOrder(raw), nil
}

// ListMyOrders fetches the authenticated customer's order history.
func (c *Client) ListMyOrders(ctx context.Context, token string) ([]types.Order, error) {
	if err := requireToken(token); err != nil {
		return nil, err
	}
	var raws []json.RawMessage
	err := c.do(ctx, requestSpec{
		method: http.MethodGet,
		path:   "/api/orders/me",
		op:     "list_my_orders",
		token:  token,
	}, &raws)
	if err != nil {
		return nil, err
	}
	return normalizeOrders(raws), nil
}

// ListOrders fetches all orders for the operations panel. Staff/manager only;
// authorization is enforced server-side.
func (c *Client) ListOrders(ctx context.Context, token string, filters OrderFilters) ([]types.Order, error) {
	if err := requireToken(token); err != nil {
		return nil, err
	}
	var raws []json.RawMessage
	err := c.do(ctx, requestSpec{
		method: http.MethodGet,
		path:   "/api/orders",
		op:     "list_orders",
		token:  token,
		query:  filters.values(),
	}, &raws)
	if err != nil {
		return nil, err
	}
	return normalizeOrders(raws), nil
}

// GetOrder fetches one order by id.
func (c *Client) GetOrder(ctx context.Context, token, id string) (types.Order, error) {
	if err := requireToken(token); err != nil {
		return types.Order{}, err
	}
	var raw json.RawMessage
	err := c.do(ctx, requestSpec{
		method: http.MethodGet,
		path:   "/api/orders/" + url.PathEscape(id),
		op:     "get_order",
		token:  token,
	}, &raw)
	if err != nil {
		return types.Order{}, err
	}
	return normalizeOrder(raw), nil
}

// UpdateOrderStatus moves an order through its lifecycle.
func (c *Client) UpdateOrderStatus(ctx context.Context, token, id string, status enums.OrderStatus) error {
	if err := requireToken(token); err != nil {
		return err
	}
	return c.do(ctx, requestSpec{
		method: http.MethodPatch,
		path:   "/api/orders/" + url.PathEscape(id) + "/status",
		op:     "update_order_status",
		token:  token,
		body:   map[string]string{"status": status.String()},
	}, nil)
}

// ChangeMarker fetches the cheap staleness probe for a resource. The token is
// optional; the orders marker needs one, the products marker does not.
func (c *Client) ChangeMarker(ctx context.Context, resource Resource, token string) (types.ChangeMarker, error) {
	var marker types.ChangeMarker
	err := c.do(ctx, requestSpec{
		method: http.MethodGet,
		path:   "/api/" + string(resource) + "/meta",
		op:     "change_marker",
		token:  token,
	}, &marker)
	if err != nil {
		return types.ChangeMarker{}, err
	}
	return marker, nil
}
