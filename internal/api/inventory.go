package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/ferretex/storefront-client/pkg/types"
)

// ListInventory fetches the staff inventory rows with on-hand, reserved, and
// available stock.
func (c *Client) ListInventory(ctx context.Context, token string) ([]types.InventoryRow, error) {
	if err := requireToken(token); err != nil {
		return nil, err
	}
	var raws []json.RawMessage
	err := c.do(ctx, requestSpec{
		method: http.MethodGet,
		path:   "/api/inventory",
		op:     "list_inventory",
		token:  token,
	}, &raws)
	if err != nil {
		return nil, err
	}
	rows := make([]types.InventoryRow, 0, len(raws))
	for _, raw := range raws {
		record := decodeRecord(raw)
		rows = append(rows, types.InventoryRow{
			ProductID: record.firstString(idAliases),
			Name:      record.firstString(nameAliases),
			OnHand:    record.firstInt([]string{"stock_on_hand", "stockOnHand", "on_hand"}),
			Reserved:  record.firstInt([]string{"stock_reserved", "stockReserved", "reserved"}),
			Available: record.firstInt([]string{"stock_available", "stockAvailable", "available"}),
		})
	}
	return rows, nil
}

// UpdateInventoryStock sets the on-hand stock for a product.
func (c *Client) UpdateInventoryStock(ctx context.Context, token, productID string, stockOnHand int) error {
	if err := requireToken(token); err != nil {
		return err
	}
	return c.do(ctx, requestSpec{
		method: http.MethodPatch,
		path:   "/api/inventory/" + url.PathEscape(productID),
		op:     "update_inventory",
		token:  token,
		body:   map[string]int{"stock_on_hand": stockOnHand},
	}, nil)
}
