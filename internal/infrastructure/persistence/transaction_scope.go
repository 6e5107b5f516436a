package persistence

import (
	"context"

	"github.com/zambezimeats/backend/internal/application/transaction"
	"github.com/zambezimeats/backend/internal/domain/cart"
	"github.com/zambezimeats/backend/internal/domain/catalog"
	"github.com/zambezimeats/backend/internal/domain/delivery"
	"github.com/zambezimeats/backend/internal/domain/inventory"
	"github.com/zambezimeats/backend/internal/domain/order"
	"github.com/zambezimeats/backend/internal/domain/promotion"
	"gorm.io/gorm"
)

// GormTransactionScope implements transaction.Scope using GORM transactions.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs fn within a database transaction. The transaction is rolled
// back when fn returns an error or panics, and committed otherwise.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos transaction.Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// gormTransactionalRepositories hands out repositories bound to tx.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

func (r *gormTransactionalRepositories) Products() catalog.ProductRepository {
	return NewGormProductRepository(r.tx)
}

func (r *gormTransactionalRepositories) Movements() inventory.MovementRepository {
	return NewGormStockMovementRepository(r.tx)
}

func (r *gormTransactionalRepositories) Orders() order.OrderRepository {
	return NewGormOrderRepository(r.tx)
}

func (r *gormTransactionalRepositories) Payments() order.PaymentRepository {
	return NewGormPaymentRepository(r.tx)
}

func (r *gormTransactionalRepositories) Promotions() promotion.PromotionRepository {
	return NewGormPromotionRepository(r.tx)
}

func (r *gormTransactionalRepositories) Carts() cart.CartRepository {
	return NewGormCartRepository(r.tx)
}

func (r *gormTransactionalRepositories) Proofs() delivery.ProofRepository {
	return NewGormProofRepository(r.tx)
}

var (
	_ transaction.Scope        = (*GormTransactionScope)(nil)
	_ transaction.Repositories = (*gormTransactionalRepositories)(nil)
)
