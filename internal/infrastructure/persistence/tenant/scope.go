// Package tenant provides multi-tenant database scoping for GORM.
//
// Every ledger table carries a tenant_id column. Repositories apply
// TenantScope to each query so that rows of one tenant are never visible
// to another:
//
//	db.Scopes(tenant.TenantScope(tenantID)).Find(&accounts)
package tenant

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrTenantIDRequired is returned when a query is scoped to the nil tenant
var ErrTenantIDRequired = errors.New("tenant_id is required")

// TenantScope applies tenant filtering to GORM queries.
// A nil tenant ID poisons the query instead of matching nothing silently.
func TenantScope(tenantID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if tenantID == uuid.Nil {
			_ = db.AddError(ErrTenantIDRequired)
			return db
		}
		return db.Where("tenant_id = ?", tenantID)
	}
}
