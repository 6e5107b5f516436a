// Package transaction lets application services run several repository
// operations in one database transaction.
package transaction

import (
	"context"

	"github.com/zambezimeats/backend/internal/domain/cart"
	"github.com/zambezimeats/backend/internal/domain/catalog"
	"github.com/zambezimeats/backend/internal/domain/delivery"
	"github.com/zambezimeats/backend/internal/domain/inventory"
	"github.com/zambezimeats/backend/internal/domain/order"
	"github.com/zambezimeats/backend/internal/domain/promotion"
)

// Scope provides transactional access to repositories. When fn returns an
// error every write made through repos is rolled back.
type Scope interface {
	Execute(ctx context.Context, fn func(repos Repositories) error) error
}

// Repositories provides repositories sharing one database transaction.
type Repositories interface {
	Products() catalog.ProductRepository
	Movements() inventory.MovementRepository
	Orders() order.OrderRepository
	Payments() order.PaymentRepository
	Promotions() promotion.PromotionRepository
	Carts() cart.CartRepository
	Proofs() delivery.ProofRepository
}

// StaticRepositories is a Repositories backed by fixed instances.
type StaticRepositories struct {
	ProductRepo   catalog.ProductRepository
	MovementRepo  inventory.MovementRepository
	OrderRepo     order.OrderRepository
	PaymentRepo   order.PaymentRepository
	PromotionRepo promotion.PromotionRepository
	CartRepo      cart.CartRepository
	ProofRepo     delivery.ProofRepository
}

func (r *StaticRepositories) Products() catalog.ProductRepository       { return r.ProductRepo }
func (r *StaticRepositories) Movements() inventory.MovementRepository   { return r.MovementRepo }
func (r *StaticRepositories) Orders() order.OrderRepository             { return r.OrderRepo }
func (r *StaticRepositories) Payments() order.PaymentRepository         { return r.PaymentRepo }
func (r *StaticRepositories) Promotions() promotion.PromotionRepository { return r.PromotionRepo }
func (r *StaticRepositories) Carts() cart.CartRepository                { return r.CartRepo }
func (r *StaticRepositories) Proofs() delivery.ProofRepository          { return r.ProofRepo }

// NoOpScope runs fn directly against fixed repositories without a
// transaction. It is meant for tests.
type NoOpScope struct {
	Repos *StaticRepositories
}

// NewNoOpScope creates a NoOpScope.
func NewNoOpScope(repos *StaticRepositories) *NoOpScope {
	return &NoOpScope{Repos: repos}
}

// Execute runs fn without a real transaction.
func (s *NoOpScope) Execute(_ context.Context, fn func(repos Repositories) error) error {
	return fn(s.Repos)
}

var (
	_ Scope        = (*NoOpScope)(nil)
	_ Repositories = (*StaticRepositories)(nil)
)
