package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/openledger/backend/internal/domain/ledger"
	"github.com/openledger/backend/internal/domain/shared"
	"github.com/openledger/backend/internal/infrastructure/persistence/models"
	"github.com/openledger/backend/internal/infrastructure/persistence/tenant"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormAssignmentRepository implements ledger.AssignmentRepository using GORM.
// Cleared amounts are never cached; they are summed from the assignment rows.
type GormAssignmentRepository struct {
	gormRepository
}

// NewGormAssignmentRepository creates a new GormAssignmentRepository
func NewGormAssignmentRepository(db *gorm.DB) *GormAssignmentRepository {
	return &GormAssignmentRepository{gormRepository{db: db}}
}

// FindByIDForTenant finds an assignment by ID within a tenant
func (r *GormAssignmentRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*ledger.Assignment, error) {
	var model models.AssignmentModel
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

// Insert persists a new assignment
func (r *GormAssignmentRepository) Insert(ctx context.Context, assignment *ledger.Assignment) error {
	return r.conn(ctx).Create(models.AssignmentModelFromDomain(assignment)).Error
}

// Delete removes an assignment
func (r *GormAssignmentRepository) Delete(ctx context.Context, assignment *ledger.Assignment) error {
	result := r.conn(ctx).
		Scopes(tenant.TenantScope(assignment.TenantID)).
		Where("id = ?", assignment.ID).
		Delete(&models.AssignmentModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// SumAssignedTo sums the assignments cleared against an entry
func (r *GormAssignmentRepository) SumAssignedTo(ctx context.Context, tenantID, assignedID uuid.UUID, asOf *time.Time) (decimal.Decimal, error) {
	query := r.conn(ctx).
		Model(&models.AssignmentModel{}).
		Scopes(tenant.TenantScope(tenantID)).
		Where("assigned_id = ?", assignedID)
	if asOf != nil {
		query = query.Where("assignment_date <= ?", asOf.UTC())
	}
	return sumAmounts(query)
}

// SumAssignedBy sums the assignments made by a clearing transaction
func (r *GormAssignmentRepository) SumAssignedBy(ctx context.Context, tenantID, transactionID uuid.UUID) (decimal.Decimal, error) {
	return sumAmounts(r.conn(ctx).
		Model(&models.AssignmentModel{}).
		Scopes(tenant.TenantScope(tenantID)).
		Where("transaction_id = ?", transactionID))
}

// ListByAssigned returns the assignments cleared against any of the entries
func (r *GormAssignmentRepository) ListByAssigned(ctx context.Context, tenantID uuid.UUID, assignedIDs []uuid.UUID) ([]*ledger.Assignment, error) {
	if len(assignedIDs) == 0 {
		return []*ledger.Assignment{}, nil
	}
	return r.list(r.conn(ctx).Scopes(tenant.TenantScope(tenantID)).Where("assigned_id IN ?", assignedIDs))
}

// ListByTransaction returns the assignments made by a clearing transaction
func (r *GormAssignmentRepository) ListByTransaction(ctx context.Context, tenantID, transactionID uuid.UUID) ([]*ledger.Assignment, error) {
	return r.list(r.conn(ctx).Scopes(tenant.TenantScope(tenantID)).Where("transaction_id = ?", transactionID))
}

func (r *GormAssignmentRepository) list(query *gorm.DB) ([]*ledger.Assignment, error) {
	var assignmentModels []models.AssignmentModel
	if err := query.Order("assignment_date ASC, id ASC").Find(&assignmentModels).Error; err != nil {
		return nil, err
	}
	assignments := make([]*ledger.Assignment, len(assignmentModels))
	for i := range assignmentModels {
		assignments[i] = assignmentModels[i].ToDomain()
	}
	return assignments, nil
}
