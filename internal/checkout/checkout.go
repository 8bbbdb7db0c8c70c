// Package checkout validates the order form and assembles the payload sent
// to the orders endpoint from the current cart.
package checkout

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ferretex/storefront-client/internal/api"
	"github.com/ferretex/storefront-client/internal/store"
	"github.com/ferretex/storefront-client/pkg/enums"
	pkgerrors "github.com/ferretex/storefront-client/pkg/errors"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Form is the checkout input. Address is only required for delivery orders.
type Form struct {
	Mode    enums.DeliveryMode `json:"mode" validate:"required,oneof=pickup delivery"`
	Phone   string             `json:"phone" validate:"required"`
	Address string             `json:"address" validate:"required_if=Mode delivery"`
	Notes   string             `json:"notes"`
}

// Validate checks the form and reports every failing field at once.
func Validate(form Form) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}

	var invalid validator.ValidationErrors
	if !errors.As(err, &invalid) {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "validating checkout form")
	}

	details := make(map[string]any, len(invalid))
	for _, fieldErr := range invalid {
		details[fieldErr.Field()] = fmt.Sprintf("failed %q validation", fieldErr.Tag())
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "checkout form is invalid").
		WithDetails(details)
}

// BuildPayload validates the form and maps the cart onto the order payload.
// An empty cart is a validation failure, not an API call.
func BuildPayload(form Form, lines []store.CartLine) (api.OrderPayload, error) {
	if len(lines) == 0 {
		return api.OrderPayload{}, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	if err := Validate(form); err != nil {
		return api.OrderPayload{}, err
	}

	items := make([]api.OrderLine, 0, len(lines))
	for _, line := range lines {
		items = append(items, api.OrderLine{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
		})
	}
	return api.OrderPayload{
		Mode:    form.Mode,
		Phone:   form.Phone,
		Address: form.Address,
		Notes:   form.Notes,
		Items:   items,
	}, nil
}
