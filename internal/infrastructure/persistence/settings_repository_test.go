package persistence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zambezimeats/backend/internal/domain/settings"
	"github.com/zambezimeats/backend/internal/domain/shared"
)

func TestGormSettingRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormSettingRepository(db)
	ctx := context.Background()
	require.NoError(t, db.Create(&[]settings.Setting{
		{Key: settings.KeyStoreName, Value: "Zambezi Meats", Type: settings.TypeString, Group: settings.GroupGeneral, IsPublic: true},
		{Key: settings.KeyTaxRate, Value: "10", Type: settings.TypeNumber, Group: settings.GroupPayment},
		{Key: settings.KeyCODEnabled, Value: "true", Type: settings.TypeBoolean, Group: settings.GroupPayment},
	}).Error)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, settings.GroupGeneral, all[0].Group)

	require.NoError(t, repo.SaveAll(ctx, []settings.Setting{{Key: settings.KeyTaxRate, Value: "15"}}))
	found, err := repo.FindByKeys(ctx, []string{settings.KeyTaxRate})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "15", found[0].Value)
	assert.Equal(t, settings.TypeNumber, found[0].Type)

	err = repo.SaveAll(ctx, []settings.Setting{{Key: "no_such_key", Value: "1"}})
	assert.ErrorIs(t, err, shared.ErrNotFound)

	empty, err := repo.FindByKeys(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
