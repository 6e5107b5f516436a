package cart

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zambezimeats/backend/internal/domain/shared"
)

func TestCart_AddItemMerges(t *testing.T) {
	c := NewCart(uuid.New())
	productID := uuid.New()

	item, err := c.AddItem(productID, decimal.RequireFromString("1.5"), DefaultMaxLines)
	require.NoError(t, err)
	assert.Equal(t, c.ID, item.CartID)

	item, err = c.AddItem(productID, decimal.RequireFromString("0.75"), DefaultMaxLines)
	require.NoError(t, err)
	assert.Len(t, c.Items, 1)
	assert.Equal(t, "2.25", item.Quantity.String())
}

func TestCart_MaxLines(t *testing.T) {
	c := NewCart(uuid.New())
	_, err := c.AddItem(uuid.New(), decimal.NewFromInt(1), 1)
	require.NoError(t, err)

	_, err = c.AddItem(uuid.New(), decimal.NewFromInt(1), 1)
	assert.True(t, shared.HasCode(err, "CART_FULL"))
}

func TestCart_SetQuantityAndRemove(t *testing.T) {
	c := NewCart(uuid.New())
	item, err := c.AddItem(uuid.New(), decimal.NewFromInt(2), 0)
	require.NoError(t, err)
	id := item.ID

	require.NoError(t, c.SetQuantity(id, decimal.NewFromInt(4)))
	assert.True(t, c.Item(id).Quantity.Equal(decimal.NewFromInt(4)))

	assert.Error(t, c.SetQuantity(id, decimal.NewFromInt(-1)))

	require.NoError(t, c.SetQuantity(id, decimal.Zero))
	assert.True(t, c.IsEmpty())
	assert.ErrorIs(t, c.RemoveItem(id), shared.ErrNotFound)
}

func TestCart_Clear(t *testing.T) {
	c := NewCart(uuid.New())
	p1, p2 := uuid.New(), uuid.New()
	_, _ = c.AddItem(p1, decimal.NewFromInt(1), 0)
	_, _ = c.AddItem(p2, decimal.NewFromInt(1), 0)
	assert.Equal(t, []uuid.UUID{p1, p2}, c.ProductIDs())

	c.Clear()
	assert.True(t, c.IsEmpty())
}
