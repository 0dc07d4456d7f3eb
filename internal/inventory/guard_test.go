package inventory

import (
	"testing"

	"retail-orders/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReserveDecrementsStock(t *testing.T) {
	p := &models.Product{Name: "Widget", Stock: 10}

	err := Reserve(p, 3)

	require.NoError(t, err)
	assert.Equal(t, 7, p.Stock)
}

func TestReserveInsufficientStock(t *testing.T) {
	p := &models.Product{Name: "Widget", Stock: 2}

	err := Reserve(p, 5)

	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "Widget", stockErr.ProductName)
	assert.Equal(t, 5, stockErr.Requested)
	assert.Equal(t, 2, stockErr.Available)
	assert.Equal(t, 2, p.Stock, "failed reservation must not mutate stock")
}

func TestReserveExactStock(t *testing.T) {
	p := &models.Product{Name: "Widget", Stock: 5}

	err := Reserve(p, 5)

	require.NoError(t, err)
	assert.Equal(t, 0, p.Stock)
}

func TestReleaseRestoresStock(t *testing.T) {
	p := &models.Product{Name: "Widget", Stock: 0}

	Release(p, 4)

	assert.Equal(t, 4, p.Stock)
}

func TestCheckDoesNotMutate(t *testing.T) {
	p := &models.Product{Name: "Widget", Stock: 10}

	require.NoError(t, Check(p, 10))
	assert.Equal(t, 10, p.Stock)
}
