package enums

import "fmt"

// OrderStatus tracks the operational lifecycle of an order. The backend owns
// the transition rules; the client only needs to know which forward moves to
// offer in the status panel.
type OrderStatus string

const (
	OrderStatusPendingPayment OrderStatus = "pending_payment"
	OrderStatusPaid           OrderStatus = "paid"
	OrderStatusPreparing      OrderStatus = "preparing"
	OrderStatusReadyForPickup OrderStatus = "ready_for_pickup"
	OrderStatusShipped        OrderStatus = "shipped"
	OrderStatusDelivered      OrderStatus = "delivered"
	OrderStatusCancelled      OrderStatus = "cancelled"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPendingPayment,
	OrderStatusPaid,
	OrderStatusPreparing,
	OrderStatusReadyForPickup,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// forwardOrderStatus maps each status to its single forward successor.
var forwardOrderStatus = map[OrderStatus]OrderStatus{
	OrderStatusPendingPayment: OrderStatusPaid,
	OrderStatusPaid:           OrderStatusPreparing,
	OrderStatusPreparing:      OrderStatusReadyForPickup,
	OrderStatusReadyForPickup: OrderStatusShipped,
	OrderStatusShipped:        OrderStatusDelivered,
}

// String implements fmt.Stringer.
func (o OrderStatus) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OrderStatus.
func (o OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == o {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are offered.
func (o OrderStatus) IsTerminal() bool {
	return o == OrderStatusDelivered || o == OrderStatusCancelled
}

// NextStatuses lists the transitions the client may offer from this status:
// the forward successor plus cancellation while non-terminal.
func (o OrderStatus) NextStatuses() []OrderStatus {
	if o.IsTerminal() || !o.IsValid() {
		return nil
	}
	next := []OrderStatus{}
	if forward, ok := forwardOrderStatus[o]; ok {
		next = append(next, forward)
	}
	return append(next, OrderStatusCancelled)
}

// CanTransition reports whether moving from o to target is a valid forward
// move or a cancellation of a non-terminal order.
func (o OrderStatus) CanTransition(target OrderStatus) bool {
	for _, candidate := range o.NextStatuses() {
		if candidate == target {
			return true
		}
	}
	return false
}

// RequiresManager reports whether reaching the target status is gated to
// managers in the UI. Advisory only; the backend is the actual authority.
func (o OrderStatus) RequiresManager() bool {
	return o == OrderStatusShipped || o == OrderStatusCancelled
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
