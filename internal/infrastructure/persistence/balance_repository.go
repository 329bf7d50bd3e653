package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/openledger/backend/internal/domain/ledger"
	"github.com/openledger/backend/internal/domain/shared"
	"github.com/openledger/backend/internal/infrastructure/persistence/models"
	"github.com/openledger/backend/internal/infrastructure/persistence/tenant"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormBalanceRepository implements ledger.BalanceRepository using GORM
type GormBalanceRepository struct {
	gormRepository
}

// NewGormBalanceRepository creates a new GormBalanceRepository
func NewGormBalanceRepository(db *gorm.DB) *GormBalanceRepository {
	return &GormBalanceRepository{gormRepository{db: db}}
}

// FindByIDForTenant finds an opening balance by ID within a tenant
func (r *GormBalanceRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*ledger.Balance, error) {
	return r.findOne(r.conn(ctx), tenantID, id)
}

// FindByIDForUpdate finds an opening balance and locks its row
func (r *GormBalanceRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*ledger.Balance, error) {
	return r.findOne(r.conn(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), tenantID, id)
}

func (r *GormBalanceRepository) findOne(db *gorm.DB, tenantID, id uuid.UUID) (*ledger.Balance, error) {
	var model models.BalanceModel
	if err := db.
		Scopes(tenant.TenantScope(tenantID)).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ListBy returns every opening balance matching the filter in date order
func (r *GormBalanceRepository) ListBy(ctx context.Context, tenantID uuid.UUID, filter ledger.BalanceFilter) ([]*ledger.Balance, error) {
	query := r.conn(ctx).Scopes(tenant.TenantScope(tenantID))
	if filter.AccountID != nil {
		query = query.Where("account_id = ?", *filter.AccountID)
	}
	if filter.BalanceType != nil {
		query = query.Where("balance_type = ?", *filter.BalanceType)
	}
	if filter.ToDate != nil {
		query = query.Where("transaction_date <= ?", filter.ToDate.UTC())
	}

	var balanceModels []models.BalanceModel
	if err := query.Order("transaction_date ASC, id ASC").Find(&balanceModels).Error; err != nil {
		return nil, err
	}
	balances := make([]*ledger.Balance, len(balanceModels))
	for i := range balanceModels {
		balances[i] = balanceModels[i].ToDomain()
	}
	return balances, nil
}

// Save creates or updates an opening balance
func (r *GormBalanceRepository) Save(ctx context.Context, balance *ledger.Balance) error {
	return r.conn(ctx).Save(models.BalanceModelFromDomain(balance)).Error
}
