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
)

// GormTaxRepository implements ledger.TaxRepository using GORM
type GormTaxRepository struct {
	gormRepository
}

// NewGormTaxRepository creates a new GormTaxRepository
func NewGormTaxRepository(db *gorm.DB) *GormTaxRepository {
	return &GormTaxRepository{gormRepository{db: db}}
}

// FindByIDForTenant finds a tax by ID within a tenant
func (r *GormTaxRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*ledger.Tax, error) {
	var model models.TaxModel
	if err := r.conn(ctx).
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

// FindByIDs finds multiple taxes by their IDs
func (r *GormTaxRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]*ledger.Tax, error) {
	if len(ids) == 0 {
		return []*ledger.Tax{}, nil
	}
	var taxModels []models.TaxModel
	if err := r.conn(ctx).
		Scopes(tenant.TenantScope(tenantID)).
		Where("id IN ?", ids).
		Find(&taxModels).Error; err != nil {
		return nil, err
	}
	return toDomainTaxes(taxModels), nil
}

// FindAllForTenant lists every tax of a tenant by code
func (r *GormTaxRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]*ledger.Tax, error) {
	var taxModels []models.TaxModel
	if err := r.conn(ctx).
		Scopes(tenant.TenantScope(tenantID)).
		Order("code ASC, id ASC").
		Find(&taxModels).Error; err != nil {
		return nil, err
	}
	return toDomainTaxes(taxModels), nil
}

// Save creates or updates a tax
func (r *GormTaxRepository) Save(ctx context.Context, tax *ledger.Tax) error {
	return r.conn(ctx).Save(models.TaxModelFromDomain(tax)).Error
}

func toDomainTaxes(taxModels []models.TaxModel) []*ledger.Tax {
	taxes := make([]*ledger.Tax, len(taxModels))
	for i := range taxModels {
		taxes[i] = taxModels[i].ToDomain()
	}
	return taxes
}
