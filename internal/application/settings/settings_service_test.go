package settings

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/zambezimeats/backend/internal/domain/settings"
	"github.com/zambezimeats/backend/internal/domain/shared"
	"go.uber.org/zap"
)

type MockSettingRepository struct {
	mock.Mock
}

func (m *MockSettingRepository) FindAll(ctx context.Context) ([]settings.Setting, error) {
	args := m.Called(ctx)
	return args.Get(0).([]settings.Setting), args.Error(1)
}

func (m *MockSettingRepository) FindByKeys(ctx context.Context, keys []string) ([]settings.Setting, error) {
	args := m.Called(ctx, keys)
	return args.Get(0).([]settings.Setting), args.Error(1)
}

func (m *MockSettingRepository) SaveAll(ctx context.Context, list []settings.Setting) error {
	return m.Called(ctx, list).Error(0)
}

// memoryStore is a Store that counts invalidations.
type memoryStore struct {
	list        []settings.Setting
	invalidated int
}

func (s *memoryStore) Get(context.Context) ([]settings.Setting, bool) {
	return s.list, s.list != nil
}

func (s *memoryStore) Set(_ context.Context, list []settings.Setting) {
	s.list = list
}

func (s *memoryStore) Invalidate(context.Context) {
	s.list = nil
	s.invalidated++
}

func seeded() []settings.Setting {
	return []settings.Setting{
		{Key: settings.KeyStoreName, Value: "Zambezi Meats", Type: settings.TypeString, Group: settings.GroupGeneral, IsPublic: true},
		{Key: settings.KeyTaxRate, Value: "10", Type: settings.TypeNumber, Group: settings.GroupPayment},
		{Key: settings.KeyMinOrderAmount, Value: "50", Type: settings.TypeNumber, Group: settings.GroupOrders, IsPublic: true},
		{Key: settings.KeyLowStockNotifications, Value: "true", Type: settings.TypeBoolean, Group: settings.GroupStore},
	}
}

func TestSettingsService_Values_LoadsOnceThenCaches(t *testing.T) {
	ctx := context.Background()
	repo := new(MockSettingRepository)
	repo.On("FindAll", ctx).Return(seeded(), nil).Once()
	svc := NewSettingsService(repo, &memoryStore{}, zap.NewNop())

	for range 3 {
		values, err := svc.Values(ctx)
		require.NoError(t, err)
		assert.Equal(t, "10", values.String(settings.KeyTaxRate, ""))
	}
	repo.AssertNumberOfCalls(t, "FindAll", 1)
}

func TestSettingsService_Public(t *testing.T) {
	svc := NewSettingsService(new(MockSettingRepository), &memoryStore{list: seeded()}, zap.NewNop())

	public, err := svc.Public(context.Background())

	require.NoError(t, err)
	assert.Equal(t, map[string]any{"store_name": "Zambezi Meats", "min_order_amount": float64(50)}, public)
}

func TestSettingsService_Grouped(t *testing.T) {
	svc := NewSettingsService(new(MockSettingRepository), &memoryStore{list: seeded()}, zap.NewNop())

	grouped, err := svc.Grouped(context.Background())

	require.NoError(t, err)
	assert.Len(t, grouped, 4)
	assert.Equal(t, true, grouped["store"][0].Value)
}

func TestSettingsService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("validates and invalidates", func(t *testing.T) {
		repo := new(MockSettingRepository)
		store := &memoryStore{list: seeded()}
		repo.On("FindByKeys", ctx, []string{"min_order_amount", "tax_rate"}).Return(seeded()[1:3], nil)
		repo.On("SaveAll", ctx, mock.MatchedBy(func(list []settings.Setting) bool {
			return len(list) == 2 && list[0].Value == "60" && list[1].Value == "12.5"
		})).Return(nil)
		repo.On("FindAll", ctx).Return(seeded(), nil)

		_, err := NewSettingsService(repo, store, zap.NewNop()).Update(ctx, "admin@example.com", UpdateSettingsRequest{
			Settings: map[string]any{"tax_rate": 12.5, "min_order_amount": "60"},
		})

		require.NoError(t, err)
		assert.Equal(t, 1, store.invalidated)
		repo.AssertExpectations(t)
	})

	t.Run("unknown key", func(t *testing.T) {
		repo := new(MockSettingRepository)
		repo.On("FindByKeys", ctx, []string{"nope"}).Return([]settings.Setting{}, nil)

		_, err := NewSettingsService(repo, &memoryStore{}, zap.NewNop()).Update(ctx, "admin", UpdateSettingsRequest{
			Settings: map[string]any{"nope": 1},
		})

		assert.True(t, shared.HasCode(err, "UNKNOWN_SETTING"))
		repo.AssertNotCalled(t, "SaveAll", mock.Anything, mock.Anything)
	})

	t.Run("wrong type", func(t *testing.T) {
		repo := new(MockSettingRepository)
		repo.On("FindByKeys", ctx, []string{"tax_rate"}).Return(seeded()[1:2], nil)

		_, err := NewSettingsService(repo, &memoryStore{}, zap.NewNop()).Update(ctx, "admin", UpdateSettingsRequest{
			Settings: map[string]any{"tax_rate": true},
		})

		assert.True(t, shared.HasCode(err, "INVALID_SETTING_VALUE"))
	})
}
