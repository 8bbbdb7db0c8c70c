package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/ferretex/storefront-client/internal/api"
	"github.com/ferretex/storefront-client/internal/checkout"
	"github.com/ferretex/storefront-client/internal/store"
	"github.com/ferretex/storefront-client/pkg/enums"
	pkgerrors "github.com/ferretex/storefront-client/pkg/errors"
	"github.com/ferretex/storefront-client/pkg/types"
)

// Checkout validates the form, submits the cart as an order, and empties the
// cart on success. The order cache refresh afterwards is best-effort.
func (a *App) Checkout(ctx context.Context, form checkout.Form) (types.Order, error) {
	session, err := a.session()
	if err != nil {
		return types.Order{}, err
	}

	payload, err := checkout.BuildPayload(form, a.store.Snapshot().Cart.Items)
	if err != nil {
		return types.Order{}, err
	}

	order, err := a.backend.CreateOrder(ctx, session.Token, payload)
	if err != nil {
		return types.Order{}, err
	}
	ctx = a.logger.WithOrderID(ctx, order.ID)
	a.logger.Info(ctx, "order placed")

	if err := a.store.ClearCart(ctx); err != nil {
		return order, err
	}
	if err := a.RefreshMyOrders(ctx); err != nil && !errors.Is(err, ErrStale) {
		a.logger.Warn(ctx, "order cache refresh after checkout failed: "+err.Error())
	}
	if err := a.store.Notify(ctx, fmt.Sprintf("Order %s placed", order.ID), enums.SeveritySuccess); err != nil {
		return order, err
	}
	return order, nil
}

// RefreshMyOrders reloads the customer's order history into the cache. The
// cache is replaced wholesale; a superseded fetch returns ErrStale and leaves
// the cache alone.
func (a *App) RefreshMyOrders(ctx context.Context) error {
	session, err := a.session()
	if err != nil {
		return err
	}

	stamp := a.beginRequest(api.ResourceOrders)
	orders, err := a.backend.ListMyOrders(ctx, session.Token)
	if err != nil {
		return err
	}
	if !a.isLatest(api.ResourceOrders, stamp) {
		return ErrStale
	}
	return a.store.CacheMyOrders(ctx, orders)
}

// MyOrders returns the cached order history.
func (a *App) MyOrders() []types.Order {
	return a.store.Snapshot().Orders
}

// OrderDetail fetches one order.
func (a *App) OrderDetail(ctx context.Context, id string) (types.Order, error) {
	session, err := a.session()
	if err != nil {
		return types.Order{}, err
	}
	return a.backend.GetOrder(ctx, session.Token, id)
}

// StaffOrders lists all orders for the operations panel.
func (a *App) StaffOrders(ctx context.Context, filters api.OrderFilters) ([]types.Order, error) {
	session, err := a.staffSession()
	if err != nil {
		return nil, err
	}
	return a.backend.ListOrders(ctx, session.Token, filters)
}

// AdvanceOrder moves an order to the next lifecycle status. The transition is
// checked client-side so the panel never offers a move the backend would
// reject; the backend remains the authority.
func (a *App) AdvanceOrder(ctx context.Context, orderID string, target enums.OrderStatus) error {
	session, err := a.staffSession()
	if err != nil {
		return err
	}

	order, err := a.backend.GetOrder(ctx, session.Token, orderID)
	if err != nil {
		return err
	}
	if !order.Status.CanTransition(target) {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("order cannot move from %s to %s", order.Status, target))
	}
	if target.RequiresManager() && session.User.Role != enums.RoleManager {
		return pkgerrors.New(pkgerrors.CodeForbidden,
			fmt.Sprintf("moving an order to %s requires a manager", target))
	}
	return a.backend.UpdateOrderStatus(ctx, session.Token, orderID, target)
}

// RequestCancelOrder stages an order cancellation behind password
// confirmation. Nothing is sent until ConfirmPending succeeds.
func (a *App) RequestCancelOrder(ctx context.Context, orderID string) error {
	session, err := a.staffSession()
	if err != nil {
		return err
	}
	token := session.Token
	return a.confirm.Request(fmt.Sprintf("cancel order %s", orderID), func(ctx context.Context) error {
		return a.backend.UpdateOrderStatus(ctx, token, orderID, enums.OrderStatusCancelled)
	})
}

// RequestDeactivateProduct stages a product deactivation behind password
// confirmation.
func (a *App) RequestDeactivateProduct(ctx context.Context, productID string) error {
	session, err := a.staffSession()
	if err != nil {
		return err
	}
	if session.User.Role != enums.RoleManager {
		return pkgerrors.New(pkgerrors.CodeForbidden, "deactivating a product requires a manager")
	}
	token := session.Token
	return a.confirm.Request(fmt.Sprintf("deactivate product %s", productID), func(ctx context.Context) error {
		return a.backend.DeactivateProduct(ctx, token, productID)
	})
}

// CreateProduct adds a catalog entry. Manager only.
func (a *App) CreateProduct(ctx context.Context, input api.ProductInput) (types.Product, error) {
	session, err := a.managerSession()
	if err != nil {
		return types.Product{}, err
	}
	return a.backend.CreateProduct(ctx, session.Token, input)
}

// UpdateProduct patches a catalog entry. Manager only.
func (a *App) UpdateProduct(ctx context.Context, id string, input api.ProductInput) (types.Product, error) {
	session, err := a.managerSession()
	if err != nil {
		return types.Product{}, err
	}
	return a.backend.UpdateProduct(ctx, session.Token, id, input)
}

// Inventory lists the stock rows for the operations panel.
func (a *App) Inventory(ctx context.Context) ([]types.InventoryRow, error) {
	session, err := a.staffSession()
	if err != nil {
		return nil, err
	}
	return a.backend.ListInventory(ctx, session.Token)
}

// SetInventoryStock updates the on-hand stock for a product.
func (a *App) SetInventoryStock(ctx context.Context, productID string, stockOnHand int) error {
	session, err := a.staffSession()
	if err != nil {
		return err
	}
	if stockOnHand < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "stock on hand cannot be negative")
	}
	return a.backend.UpdateInventoryStock(ctx, session.Token, productID, stockOnHand)
}

// managerSession requires the manager role.
func (a *App) managerSession() (store.SessionState, error) {
	session, err := a.staffSession()
	if err != nil {
		return store.SessionState{}, err
	}
	if session.User.Role != enums.RoleManager {
		return store.SessionState{}, pkgerrors.New(pkgerrors.CodeForbidden, "manager role required")
	}
	return session, nil
}
