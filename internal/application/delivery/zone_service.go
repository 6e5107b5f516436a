package delivery

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/zambezimeats/backend/internal/domain/delivery"
	"github.com/zambezimeats/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// CodeZoneOverlap reports a postcode already served by another active zone.
const CodeZoneOverlap = "ZONE_OVERLAP"

// ZoneService manages delivery zones and answers postcode checks.
type ZoneService struct {
	repo   delivery.ZoneRepository
	logger *zap.Logger
}

// NewZoneService creates a new ZoneService
func NewZoneService(repo delivery.ZoneRepository, logger *zap.Logger) *ZoneService {
	return &ZoneService{repo: repo, logger: logger}
}

// ListActive returns the zones currently delivered to.
func (s *ZoneService) ListActive(ctx context.Context) ([]ZoneResponse, error) {
	return s.list(ctx, true)
}

// ListAll returns every zone for admins.
func (s *ZoneService) ListAll(ctx context.Context) ([]ZoneResponse, error) {
	return s.list(ctx, false)
}

func (s *ZoneService) list(ctx context.Context, activeOnly bool) ([]ZoneResponse, error) {
	zones, err := s.repo.FindAll(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	out := make([]ZoneResponse, len(zones))
	for i := range zones {
		out[i] = ToZoneResponse(&zones[i])
	}
	return out, nil
}

// Get returns a zone by id.
func (s *ZoneService) Get(ctx context.Context, id uuid.UUID) (*ZoneResponse, error) {
	z, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToZoneResponse(z)
	return &resp, nil
}

// Create adds a zone. Its postcodes must not be served by another active zone.
func (s *ZoneService) Create(ctx context.Context, req ZoneRequest) (*ZoneResponse, error) {
	z, err := delivery.NewZone(req.terms())
	if err != nil {
		return nil, err
	}
	if req.IsActive != nil {
		z.SetActive(*req.IsActive)
	}
	if err := s.checkOverlap(ctx, z); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, z); err != nil {
		return nil, err
	}
	s.logger.Info("Delivery zone created",
		zap.String("zone_id", z.ID.String()),
		zap.String("name", z.Name),
		zap.Int("postcodes", len(z.Postcodes)))
	resp := ToZoneResponse(z)
	return &resp, nil
}

// Update replaces a zone's terms.
func (s *ZoneService) Update(ctx context.Context, id uuid.UUID, req ZoneRequest) (*ZoneResponse, error) {
	z, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := z.Update(req.terms()); err != nil {
		return nil, err
	}
	if req.IsActive != nil {
		z.SetActive(*req.IsActive)
	}
	if err := s.checkOverlap(ctx, z); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, z); err != nil {
		return nil, err
	}
	resp := ToZoneResponse(z)
	return &resp, nil
}

// Delete removes a zone. Orders keep their copied fee.
func (s *ZoneService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Delivery zone deleted", zap.String("zone_id", id.String()))
	return nil
}

// checkOverlap enforces one active zone per postcode. Inactive zones may
// overlap anything.
func (s *ZoneService) checkOverlap(ctx context.Context, z *delivery.Zone) error {
	if !z.IsActive {
		return nil
	}
	active, err := s.repo.FindAll(ctx, true)
	if err != nil {
		return err
	}
	for i := range active {
		other := &active[i]
		if other.ID == z.ID {
			continue
		}
		if common := z.Overlaps(other); len(common) > 0 {
			return shared.NewDomainError(CodeZoneOverlap,
				"Postcodes already served by zone "+other.Name+": "+strings.Join(common, ", "))
		}
	}
	return nil
}

// Check reports whether a postcode is served and what delivery would cost
// for the given subtotal. An unserved postcode is not an error.
func (s *ZoneService) Check(ctx context.Context, req CheckRequest) (*CheckResponse, error) {
	postcode := strings.TrimSpace(req.Postcode)
	resp := &CheckResponse{Postcode: postcode}

	z, err := s.repo.FindByPostcode(ctx, postcode)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return resp, nil
		}
		return nil, err
	}

	basis := decimal.Zero
	if req.Subtotal != nil && req.Subtotal.IsPositive() {
		basis = *req.Subtotal
	}
	fee := z.FeeFor(basis)
	zone := ToZoneResponse(z)
	resp.Deliverable = true
	resp.Zone = &zone
	resp.DeliveryFee = &fee
	resp.FreeDeliveryRemaining = z.FreeDeliveryRemaining(basis)
	resp.MeetsMinimum = z.MeetsMinimum(basis)
	return resp, nil
}
