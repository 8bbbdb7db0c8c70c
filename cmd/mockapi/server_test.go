package main

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ferretex/storefront-client/internal/api"
	"github.com/ferretex/storefront-client/pkg/enums"
	pkgerrors "github.com/ferretex/storefront-client/pkg/errors"
	"github.com/ferretex/storefront-client/pkg/logger"
)

// The mock backend is tested through the real client so the two stay in
// agreement about paths, payloads, and the legacy field spellings.
func newClientAgainstMock(t *testing.T) *api.Client {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	server := httptest.NewServer(NewServer(logg).Router())
	t.Cleanup(server.Close)

	client, err := api.NewClient(server.URL, logg)
	require.NoError(t, err)
	return client
}

func TestLoginNormalizesLegacyRole(t *testing.T) {
	t.Parallel()

	client := newClientAgainstMock(t)
	ctx := context.Background()

	result, err := client.Login(ctx, "jorge@ferretex.cl", "admin123")
	require.NoError(t, err)
	require.NotEmpty(t, result.Token)
	require.Equal(t, enums.RoleManager, result.User.Role, "legacy rol=admin must normalize to manager")

	_, err = client.Login(ctx, "jorge@ferretex.cl", "wrong")
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeAuthFailed))
	require.Equal(t, "credenciales invalidas", pkgerrors.As(err).Message())
}

func TestCatalogNormalizesLegacyFields(t *testing.T) {
	t.Parallel()

	client := newClientAgainstMock(t)
	products, err := client.ListProducts(context.Background(), api.ProductFilters{Query: "taladro"})
	require.NoError(t, err)
	require.Len(t, products, 1)

	drill := products[0]
	require.Equal(t, "Taladro Percutor 650W", drill.Name, "nombre must resolve")
	require.Equal(t, "45990", drill.Price.String(), "quoted precio must resolve")
	require.Equal(t, 7, drill.Stock, "stock_actual must resolve")
	require.Equal(t, enums.ProductStatusOffer, drill.Status)
}

func TestOrderLifecycleThroughClient(t *testing.T) {
	t.Parallel()

	client := newClientAgainstMock(t)
	ctx := context.Background()

	customer, err := client.Login(ctx, "ana@example.com", "cliente123")
	require.NoError(t, err)
	manager, err := client.Login(ctx, "jorge@ferretex.cl", "admin123")
	require.NoError(t, err)

	before, err := client.ChangeMarker(ctx, api.ResourceOrders, customer.Token)
	require.NoError(t, err)

	order, err := client.CreateOrder(ctx, customer.Token, api.OrderPayload{
		Mode:  enums.DeliveryModePickup,
		Phone: "+56 9 1234 5678",
		Items: []api.OrderLine{{ProductID: "p-hammer", Quantity: 2}},
	})
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusPendingPayment, order.Status)
	require.Equal(t, "25980", order.Total.String())

	after, err := client.ChangeMarker(ctx, api.ResourceOrders, customer.Token)
	require.NoError(t, err)
	require.NotEqual(t, before.LastChanged, after.LastChanged, "creating an order must move the marker")

	// Stock is decremented, visible through the catalog.
	hammer, err := client.GetProduct(ctx, "p-hammer")
	require.NoError(t, err)
	require.Equal(t, 22, hammer.Stock)

	mine, err := client.ListMyOrders(ctx, customer.Token)
	require.NoError(t, err)
	require.Len(t, mine, 1)

	// Customers cannot drive the lifecycle; managers can.
	err = client.UpdateOrderStatus(ctx, customer.Token, order.ID, enums.OrderStatusPaid)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeForbidden))

	require.NoError(t, client.UpdateOrderStatus(ctx, manager.Token, order.ID, enums.OrderStatusPaid))
	err = client.UpdateOrderStatus(ctx, manager.Token, order.ID, enums.OrderStatusDelivered)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation), "skipping lifecycle steps must be rejected")
}

func TestOrderRejectsInsufficientStock(t *testing.T) {
	t.Parallel()

	client := newClientAgainstMock(t)
	ctx := context.Background()

	customer, err := client.Login(ctx, "ana@example.com", "cliente123")
	require.NoError(t, err)

	_, err = client.CreateOrder(ctx, customer.Token, api.OrderPayload{
		Mode:  enums.DeliveryModePickup,
		Phone: "+56 9 1234 5678",
		Items: []api.OrderLine{{ProductID: "p-paint", Quantity: 1}},
	})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation), "out-of-stock order must fail, got %v", err)
}

func TestInventoryEndpointsGatedToStaff(t *testing.T) {
	t.Parallel()

	client := newClientAgainstMock(t)
	ctx := context.Background()

	customer, err := client.Login(ctx, "ana@example.com", "cliente123")
	require.NoError(t, err)
	staff, err := client.Login(ctx, "sofia@ferretex.cl", "staff123")
	require.NoError(t, err)

	_, err = client.ListInventory(ctx, customer.Token)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeForbidden))

	rows, err := client.ListInventory(ctx, staff.Token)
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	for _, row := range rows {
		require.NotEmpty(t, row.ProductID)
		require.NotEmpty(t, row.Name, "legacy and canonical stock rows must both normalize")
	}

	require.NoError(t, client.UpdateInventoryStock(ctx, staff.Token, "p-paint", 12))
	paint, err := client.GetProduct(ctx, "p-paint")
	require.NoError(t, err)
	require.Equal(t, 12, paint.Stock)
}

func TestDeactivatedProductDisappears(t *testing.T) {
	t.Parallel()

	client := newClientAgainstMock(t)
	ctx := context.Background()

	manager, err := client.Login(ctx, "jorge@ferretex.cl", "admin123")
	require.NoError(t, err)

	require.NoError(t, client.DeactivateProduct(ctx, manager.Token, "p-brush"))
	_, err = client.GetProduct(ctx, "p-brush")
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}
