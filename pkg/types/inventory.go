package types

// InventoryRow is one line of the staff inventory screen.
type InventoryRow struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	OnHand    int    `json:"stock_on_hand"`
	Reserved  int    `json:"stock_reserved"`
	Available int    `json:"stock_available"`
}

// ChangeMarker is the opaque staleness probe exposed by the meta endpoints.
// Clients compare successive values; the content carries no other meaning.
type ChangeMarker struct {
	LastChanged string `json:"lastChanged"`
}
