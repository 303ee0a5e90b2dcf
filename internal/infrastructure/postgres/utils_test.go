package postgres

import (
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tienda-api/internal/domain"
)

func TestMapError(t *testing.T) {
	cases := []struct {
		name string
		code string
		want error
	}{
		{"único", "23505", domain.ErrDuplicate},
		{"llave foránea", "23503", domain.ErrInvalidInput},
		{"check", "23514", domain.ErrInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := mapError("op", &pgconn.PgError{Code: tc.code})
			assert.ErrorIs(t, err, tc.want)
		})
	}

	plain := errors.New("conexión cerrada")
	err := mapError("insert sale", plain)
	assert.ErrorIs(t, err, plain)
	assert.Contains(t, err.Error(), "insert sale")
}

func TestSchemaEmbebido(t *testing.T) {
	assert.Contains(t, schemaSQL, "CHECK (quantity >= 0)")
	assert.Contains(t, schemaSQL, "subtotal + vat_amount = total")
	assert.Contains(t, schemaSQL, "sales_immutable")
}

func TestProductLockQuery_NoChocaConKeyShare(t *testing.T) {
	require.True(t, strings.HasSuffix(productLockQuery, "FOR NO KEY UPDATE"))
	assert.NotContains(t, strings.TrimSuffix(productLockQuery, "FOR NO KEY UPDATE"), "FOR UPDATE")
}
