package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type linea struct {
	ProductID string `json:"product_id" validate:"required,uuid_str"`
	Quantity  int    `json:"quantity" validate:"gt=0"`
}

type pedido struct {
	StoreID string  `json:"store_id" validate:"required"`
	Items   []linea `json:"items" validate:"required,min=1,dive"`
}

func TestValidateStruct_Valido(t *testing.T) {
	p := pedido{
		StoreID: "s-1",
		Items:   []linea{{ProductID: "7d4f3c56-4f0c-4c3e-9a7f-2a8f7f1a9b10", Quantity: 2}},
	}
	assert.Nil(t, ValidateStruct(p))
}

func TestValidateStruct_UsaNombresJSON(t *testing.T) {
	p := pedido{
		Items: []linea{{ProductID: "no-es-uuid", Quantity: 0}},
	}
	errs := ValidateStruct(p)
	require.Len(t, errs, 3)

	fields := map[string]string{}
	for _, e := range errs {
		fields[e.Field] = e.Tag
	}
	assert.Equal(t, "required", fields["store_id"])
	assert.Equal(t, "uuid_str", fields["items[0].product_id"])
	assert.Equal(t, "gt", fields["items[0].quantity"])
}
