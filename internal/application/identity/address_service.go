package identity

import (
	"context"

	"github.com/google/uuid"
	"github.com/zambezimeats/backend/internal/domain/identity"
	"github.com/zambezimeats/backend/internal/domain/shared"
	"go.uber.org/zap"
)

const maxAddressesPerUser = 10

// AddressService manages a customer's saved delivery addresses.
type AddressService struct {
	repo   identity.AddressRepository
	logger *zap.Logger
}

// NewAddressService creates a new AddressService
func NewAddressService(repo identity.AddressRepository, logger *zap.Logger) *AddressService {
	return &AddressService{repo: repo, logger: logger}
}

// List returns the user's addresses, default first.
func (s *AddressService) List(ctx context.Context, userID uuid.UUID) ([]AddressResponse, error) {
	addresses, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]AddressResponse, len(addresses))
	for i, a := range addresses {
		out[i] = ToAddressResponse(a)
	}
	return out, nil
}

// Get returns one of the user's addresses. Addresses of other users are
// reported as not found.
func (s *AddressService) Get(ctx context.Context, userID, id uuid.UUID) (*identity.Address, error) {
	address, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !address.BelongsTo(userID) {
		return nil, shared.NotFound("Address")
	}
	return address, nil
}

// Create saves a new address. The first address always becomes the default.
func (s *AddressService) Create(ctx context.Context, userID uuid.UUID, req AddressRequest) (*AddressResponse, error) {
	existing, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(existing) >= maxAddressesPerUser {
		return nil, shared.NewDomainError("ADDRESS_LIMIT", "You can save at most 10 addresses")
	}

	address, err := identity.NewAddress(userID, req.fields())
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, address); err != nil {
		return nil, err
	}
	if req.IsDefault || len(existing) == 0 {
		if err := s.repo.SetDefault(ctx, userID, address.ID); err != nil {
			return nil, err
		}
		address.IsDefault = true
	}

	resp := ToAddressResponse(address)
	return &resp, nil
}

// Update replaces an address. Setting is_default moves the default to it;
// clearing it on the current default is ignored so one default remains.
func (s *AddressService) Update(ctx context.Context, userID, id uuid.UUID, req AddressRequest) (*AddressResponse, error) {
	address, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := address.Update(req.fields()); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, address); err != nil {
		return nil, err
	}
	if req.IsDefault && !address.IsDefault {
		if err := s.repo.SetDefault(ctx, userID, address.ID); err != nil {
			return nil, err
		}
		address.IsDefault = true
	}

	resp := ToAddressResponse(address)
	return &resp, nil
}

// SetDefault makes the address the user's default.
func (s *AddressService) SetDefault(ctx context.Context, userID, id uuid.UUID) (*AddressResponse, error) {
	address, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetDefault(ctx, userID, id); err != nil {
		return nil, err
	}
	address.IsDefault = true
	resp := ToAddressResponse(address)
	return &resp, nil
}

// Delete removes an address. When the default goes, the oldest remaining
// address takes its place.
func (s *AddressService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	address, err := s.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if !address.IsDefault {
		return nil
	}

	remaining, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return err
	}
	if len(remaining) == 0 {
		return nil
	}
	if err := s.repo.SetDefault(ctx, userID, remaining[0].ID); err != nil {
		s.logger.Warn("Failed to promote default address", zap.String("user_id", userID.String()), zap.Error(err))
	}
	return nil
}
