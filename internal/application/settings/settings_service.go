package settings

import (
	"context"
	"sort"

	"github.com/zambezimeats/backend/internal/domain/settings"
	"github.com/zambezimeats/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Store caches the full settings list.
type Store interface {
	Get(ctx context.Context) ([]settings.Setting, bool)
	Set(ctx context.Context, list []settings.Setting)
	Invalidate(ctx context.Context)
}

// SettingsService reads settings through the cache and lets admins change them.
type SettingsService struct {
	repo   settings.SettingRepository
	cache  Store
	logger *zap.Logger
}

// NewSettingsService creates a new SettingsService
func NewSettingsService(repo settings.SettingRepository, cache Store, logger *zap.Logger) *SettingsService {
	return &SettingsService{repo: repo, cache: cache, logger: logger}
}

// Values returns a snapshot of every setting for typed lookups.
func (s *SettingsService) Values(ctx context.Context) (settings.Values, error) {
	list, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return settings.NewValues(list), nil
}

// Public returns the settings the storefront may see.
func (s *SettingsService) Public(ctx context.Context) (map[string]any, error) {
	values, err := s.Values(ctx)
	if err != nil {
		return nil, err
	}
	return values.Public(), nil
}

// Grouped returns every setting bucketed by group.
func (s *SettingsService) Grouped(ctx context.Context) (GroupedSettings, error) {
	list, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return group(list), nil
}

// Update validates each value against its declared type and saves them
// together. Unknown keys reject the whole request.
func (s *SettingsService) Update(ctx context.Context, actor string, req UpdateSettingsRequest) (GroupedSettings, error) {
	keys := make([]string, 0, len(req.Settings))
	for k := range req.Settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	existing, err := s.repo.FindByKeys(ctx, keys)
	if err != nil {
		return nil, err
	}
	byKey := settings.NewValues(existing)
	changed := make([]settings.Setting, 0, len(keys))
	for _, k := range keys {
		current, ok := byKey[k]
		if !ok {
			return nil, shared.NewDomainError("UNKNOWN_SETTING", "Unknown setting: "+k)
		}
		if err := current.SetValue(req.Settings[k]); err != nil {
			return nil, err
		}
		changed = append(changed, current)
	}

	if err := s.repo.SaveAll(ctx, changed); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx)
	s.logger.Info("Settings updated", zap.Strings("keys", keys), zap.String("actor", actor))
	return s.Grouped(ctx)
}

func (s *SettingsService) load(ctx context.Context) ([]settings.Setting, error) {
	if list, ok := s.cache.Get(ctx); ok {
		return list, nil
	}
	list, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, list)
	return list, nil
}

func group(list []settings.Setting) GroupedSettings {
	out := make(GroupedSettings)
	for _, st := range list {
		g := string(st.Group)
		out[g] = append(out[g], ToSettingResponse(st))
	}
	for _, items := range out {
		sort.Slice(items, func(i, j int) bool { return items[i].Key < items[j].Key })
	}
	return out
}
