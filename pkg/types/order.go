package types

import (
	"time"

	"github.com/ferretex/storefront-client/pkg/enums"
	"github.com/shopspring/decimal"
)

// OrderItem is one purchased line within an order.
type OrderItem struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

// Order is a backend-owned order as seen by the client.
type Order struct {
	ID           string             `json:"id"`
	Status       enums.OrderStatus  `json:"status"`
	DeliveryMode enums.DeliveryMode `json:"mode"`
	Items        []OrderItem        `json:"items"`
	Total        decimal.Decimal    `json:"total"`
	CreatedAt    time.Time          `json:"created_at"`
	Customer     string             `json:"customer"`
	Phone        string             `json:"phone,omitempty"`
	Address      string             `json:"address,omitempty"`
	Notes        string             `json:"notes,omitempty"`
}
