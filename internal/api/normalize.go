package api

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ferretex/storefront-client/pkg/enums"
	"github.com/ferretex/storefront-client/pkg/types"
)

// The backend emits two naming schemes for the same concepts: the canonical
// English fields and a legacy localized set. Each field resolves through an
// ordered alias list; the first present alias wins and a missing field
// defaults to zero, never to an error.
var (
	idAliases        = []string{"id", "product_id", "producto_id"}
	nameAliases      = []string{"name", "nombre"}
	priceAliases     = []string{"price", "precio"}
	imageAliases     = []string{"image_url", "imageUrl", "image", "imagen_url", "imagen"}
	stockAliases     = []string{"stock", "stock_actual", "stockActual", "inventory_stock", "stock_available"}
	categoryAliases  = []string{"category", "categoria", "category_name", "category_nombre", "category_slug"}
	roleAliases      = []string{"role", "rol"}
	quantityAliases  = []string{"quantity", "qty", "cantidad"}
	unitPriceAliases = []string{"unit_price", "unitPrice", "price", "precio"}
	createdAtAliases = []string{"created_at", "createdAt", "fecha"}
)

type rawRecord map[string]json.RawMessage

func decodeRecord(raw json.RawMessage) rawRecord {
	var record rawRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return rawRecord{}
	}
	return record
}

// firstString resolves the first present alias to a string, tolerating
// numeric values (ids arrive as numbers from the legacy scheme).
func (r rawRecord) firstString(aliases []string) string {
	for _, alias := range aliases {
		raw, ok := r[alias]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
		var n json.Number
		if err := json.Unmarshal(raw, &n); err == nil {
			return n.String()
		}
	}
	return ""
}

// firstInt resolves the first present alias to an int, tolerating floats and
// numeric strings.
func (r rawRecord) firstInt(aliases []string) int {
	for _, alias := range aliases {
		raw, ok := r[alias]
		if !ok {
			continue
		}
		var n int
		if err := json.Unmarshal(raw, &n); err == nil {
			return n
		}
		var f float64
		if err := json.Unmarshal(raw, &f); err == nil {
			return int(f)
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			if parsed, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
				return parsed
			}
		}
	}
	return 0
}

// firstDecimal resolves the first present alias to a decimal, tolerating both
// JSON numbers and quoted numeric strings.
func (r rawRecord) firstDecimal(aliases []string) decimal.Decimal {
	for _, alias := range aliases {
		raw, ok := r[alias]
		if !ok {
			continue
		}
		var d decimal.Decimal
		if err := json.Unmarshal(raw, &d); err == nil {
			return d
		}
	}
	return decimal.Zero
}

func (r rawRecord) firstTime(aliases []string) time.Time {
	value := r.firstString(aliases)
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05"} {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

func normalizeProduct(raw json.RawMessage) types.Product {
	record := decodeRecord(raw)
	status := enums.ProductStatusNone
	if parsed, err := enums.ParseProductStatus(record.firstString([]string{"status"})); err == nil {
		status = parsed
	}
	return types.Product{
		ID:       record.firstString(idAliases),
		Name:     record.firstString(nameAliases),
		Price:    record.firstDecimal(priceAliases),
		ImageURL: record.firstString(imageAliases),
		Stock:    record.firstInt(stockAliases),
		Category: record.firstString(categoryAliases),
		Status:   status,
	}
}

func normalizeProducts(raws []json.RawMessage) []types.Product {
	products := make([]types.Product, 0, len(raws))
	for _, raw := range raws {
		products = append(products, normalizeProduct(raw))
	}
	return products
}

func normalizeUser(raw json.RawMessage) types.User {
	record := decodeRecord(raw)
	return types.User{
		ID:    record.firstString(idAliases),
		Name:  record.firstString(nameAliases),
		Email: record.firstString([]string{"email"}),
		Role:  enums.NormalizeRole(record.firstString(roleAliases)),
	}
}

func normalizeOrderItem(raw json.RawMessage) types.OrderItem {
	record := decodeRecord(raw)
	return types.OrderItem{
		ProductID: record.firstString([]string{"product_id", "productId", "producto_id", "id"}),
		Name:      record.firstString(nameAliases),
		UnitPrice: record.firstDecimal(unitPriceAliases),
		Quantity:  record.firstInt(quantityAliases),
	}
}

func normalizeOrder(raw json.RawMessage) types.Order {
	record := decodeRecord(raw)

	var items []types.OrderItem
	if rawItems, ok := record["items"]; ok {
		var list []json.RawMessage
		if err := json.Unmarshal(rawItems, &list); err == nil {
			for _, item := range list {
				items = append(items, normalizeOrderItem(item))
			}
		}
	}

	// Unknown statuses are kept verbatim: the panel renders them but offers
	// no transitions, which is the safe direction.
	status := enums.OrderStatus(strings.ToLower(record.firstString([]string{"status"})))
	mode, err := enums.ParseDeliveryMode(record.firstString([]string{"mode", "delivery_mode", "deliveryMode"}))
	if err != nil {
		mode = enums.DeliveryModePickup
	}

	return types.Order{
		ID:           record.firstString(idAliases),
		Status:       status,
		DeliveryMode: mode,
		Items:        items,
		Total:        record.firstDecimal([]string{"total"}),
		CreatedAt:    record.firstTime(createdAtAliases),
		Customer:     record.firstString([]string{"customer", "customer_name", "cliente"}),
		Phone:        record.firstString([]string{"phone", "telefono"}),
		Address:      record.firstString([]string{"address", "direccion"}),
		Notes:        record.firstString([]string{"notes", "notas"}),
	}
}

func normalizeOrders(raws []json.RawMessage) []types.Order {
	orders := make([]types.Order, 0, len(raws))
	for _, raw := range raws {
		orders = append(orders, normalizeOrder(raw))
	}
	return orders
}
