package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/openledger/backend/internal/domain/ledger"
	"github.com/openledger/backend/internal/domain/shared"
	"github.com/openledger/backend/internal/infrastructure/persistence/models"
	"github.com/openledger/backend/internal/infrastructure/persistence/tenant"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTransactionRepository implements ledger.TransactionRepository using GORM.
// Line items are stored in their own table and always loaded with the transaction.
type GormTransactionRepository struct {
	gormRepository
}

// NewGormTransactionRepository creates a new GormTransactionRepository
func NewGormTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{gormRepository{db: db}}
}

func preloadLineItems(db *gorm.DB) *gorm.DB {
	return db.Preload("LineItems", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC, id ASC")
	})
}

// FindByIDForTenant finds a transaction by ID within a tenant
func (r *GormTransactionRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*ledger.Transaction, error) {
	return r.findOne(r.conn(ctx), tenantID, id)
}

// FindByIDForUpdate finds a transaction and takes a row lock held until the
// surrounding transaction ends
func (r *GormTransactionRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*ledger.Transaction, error) {
	return r.findOne(r.conn(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), tenantID, id)
}

func (r *GormTransactionRepository) findOne(db *gorm.DB, tenantID, id uuid.UUID) (*ledger.Transaction, error) {
	var model models.TransactionModel
	if err := db.
		Scopes(tenant.TenantScope(tenantID), preloadLineItems).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForTenant lists transactions for a tenant with the total matching count
func (r *GormTransactionRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter ledger.TransactionFilter) ([]*ledger.Transaction, int64, error) {
	query := r.applyFilter(
		r.conn(ctx).Model(&models.TransactionModel{}).Scopes(tenant.TenantScope(tenantID)),
		filter,
	).Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var txModels []models.TransactionModel
	if err := query.
		Scopes(preloadLineItems).
		Order(orderClause(filter.Filter, TransactionSortFields, "transaction_date")).
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&txModels).Error; err != nil {
		return nil, 0, err
	}
	return toDomainTransactions(txModels), total, nil
}

// ListBy returns every transaction matching the filter in date order, ignoring pagination
func (r *GormTransactionRepository) ListBy(ctx context.Context, tenantID uuid.UUID, filter ledger.TransactionFilter) ([]*ledger.Transaction, error) {
	var txModels []models.TransactionModel
	if err := r.applyFilter(
		r.conn(ctx).Scopes(tenant.TenantScope(tenantID), preloadLineItems),
		filter,
	).
		Order("transaction_date ASC, id ASC").
		Find(&txModels).Error; err != nil {
		return nil, err
	}
	return toDomainTransactions(txModels), nil
}

// Save creates or updates a transaction and replaces its line items
func (r *GormTransactionRepository) Save(ctx context.Context, tx *ledger.Transaction) error {
	model := models.TransactionModelFromDomain(tx)
	return r.atomically(ctx, func(db *gorm.DB) error {
		if err := db.Omit(clause.Associations).Save(model).Error; err != nil {
			return err
		}
		if err := db.
			Where("tenant_id = ? AND transaction_id = ?", model.TenantID, model.ID).
			Delete(&models.LineItemModel{}).Error; err != nil {
			return err
		}
		if len(model.LineItems) == 0 {
			return nil
		}
		return db.Create(&model.LineItems).Error
	})
}

func (r *GormTransactionRepository) applyFilter(query *gorm.DB, filter ledger.TransactionFilter) *gorm.DB {
	if filter.AccountID != nil {
		query = query.Where("account_id = ?", *filter.AccountID)
	}
	if len(filter.Kinds) > 0 {
		query = query.Where("kind IN ?", filter.Kinds)
	}
	if filter.Posted != nil {
		query = query.Where("is_posted = ?", *filter.Posted)
	}
	if filter.FromDate != nil {
		query = query.Where("transaction_date >= ?", filter.FromDate.UTC())
	}
	if filter.ToDate != nil {
		query = query.Where("transaction_date <= ?", filter.ToDate.UTC())
	}
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(narration) LIKE ? OR LOWER(reference) LIKE ?", pattern, pattern)
	}
	return query
}

func toDomainTransactions(txModels []models.TransactionModel) []*ledger.Transaction {
	txs := make([]*ledger.Transaction, len(txModels))
	for i := range txModels {
		txs[i] = txModels[i].ToDomain()
	}
	return txs
}
