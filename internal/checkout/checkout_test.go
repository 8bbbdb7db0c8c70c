package checkout

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ferretex/storefront-client/internal/store"
	"github.com/ferretex/storefront-client/pkg/enums"
	pkgerrors "github.com/ferretex/storefront-client/pkg/errors"
)

func cartLines() []store.CartLine {
	return []store.CartLine{
		{ProductID: "p1", Name: "Hammer", UnitPrice: decimal.NewFromInt(12990), Quantity: 2},
		{ProductID: "p2", Name: "Nails", UnitPrice: decimal.NewFromInt(990), Quantity: 5},
	}
}

func TestValidatePickupWithoutAddress(t *testing.T) {
	t.Parallel()

	form := Form{Mode: enums.DeliveryModePickup, Phone: "+56 9 1234 5678"}
	if err := Validate(form); err != nil {
		t.Fatalf("pickup without address must pass, got %v", err)
	}
}

func TestValidateDeliveryRequiresAddress(t *testing.T) {
	t.Parallel()

	form := Form{Mode: enums.DeliveryModeDelivery, Phone: "+56 9 1234 5678"}
	err := Validate(form)
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}

	details, ok := pkgerrors.As(err).Details().(map[string]any)
	if !ok {
		t.Fatalf("expected field details, got %#v", pkgerrors.As(err).Details())
	}
	if _, present := details["address"]; !present {
		t.Fatalf("expected the address field flagged, got %v", details)
	}
}

func TestValidateMissingPhone(t *testing.T) {
	t.Parallel()

	err := Validate(Form{Mode: enums.DeliveryModePickup})
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestValidateUnknownMode(t *testing.T) {
	t.Parallel()

	err := Validate(Form{Mode: enums.DeliveryMode("drone"), Phone: "+56 9 1234 5678"})
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected VALIDATION_ERROR for unknown mode, got %v", err)
	}
}

func TestBuildPayloadEmptyCart(t *testing.T) {
	t.Parallel()

	form := Form{Mode: enums.DeliveryModePickup, Phone: "+56 9 1234 5678"}
	_, err := BuildPayload(form, nil)
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("empty cart must be a validation failure, got %v", err)
	}
}

func TestBuildPayloadMapsCart(t *testing.T) {
	t.Parallel()

	form := Form{
		Mode:    enums.DeliveryModeDelivery,
		Phone:   "+56 9 1234 5678",
		Address: "Av. Siempre Viva 742",
		Notes:   "ring twice",
	}
	payload, err := BuildPayload(form, cartLines())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payload.Mode != enums.DeliveryModeDelivery || payload.Address != "Av. Siempre Viva 742" {
		t.Fatalf("form fields not mapped: %+v", payload)
	}
	if len(payload.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(payload.Items))
	}
	if payload.Items[0].ProductID != "p1" || payload.Items[0].Quantity != 2 {
		t.Fatalf("unexpected first item: %+v", payload.Items[0])
	}
}
