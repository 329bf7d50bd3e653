package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/openledger/backend/internal/domain/ledger"
	"github.com/openledger/backend/internal/infrastructure/persistence/models"
	"github.com/openledger/backend/internal/infrastructure/persistence/tenant"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormLedgerEntryRepository implements ledger.LedgerEntryRepository using GORM.
// Entries are append-only.
type GormLedgerEntryRepository struct {
	gormRepository
}

// NewGormLedgerEntryRepository creates a new GormLedgerEntryRepository
func NewGormLedgerEntryRepository(db *gorm.DB) *GormLedgerEntryRepository {
	return &GormLedgerEntryRepository{gormRepository{db: db}}
}

// InsertBatch persists the entries of one posting
func (r *GormLedgerEntryRepository) InsertBatch(ctx context.Context, entries []*ledger.LedgerEntry) error {
	if len(entries) == 0 {
		return nil
	}
	entryModels := make([]*models.LedgerEntryModel, len(entries))
	for i, e := range entries {
		entryModels[i] = models.LedgerEntryModelFromDomain(e)
	}
	return r.conn(ctx).Create(&entryModels).Error
}

// ListByTransaction returns the entries of a transaction
func (r *GormLedgerEntryRepository) ListByTransaction(ctx context.Context, tenantID, transactionID uuid.UUID) ([]*ledger.LedgerEntry, error) {
	var entryModels []models.LedgerEntryModel
	if err := r.conn(ctx).
		Scopes(tenant.TenantScope(tenantID)).
		Where("transaction_id = ?", transactionID).
		Order("created_at ASC, id ASC").
		Find(&entryModels).Error; err != nil {
		return nil, err
	}
	entries := make([]*ledger.LedgerEntry, len(entryModels))
	for i := range entryModels {
		entries[i] = entryModels[i].ToDomain()
	}
	return entries, nil
}

// SumByAccount totals the debits and credits posted to an account up to asOf
func (r *GormLedgerEntryRepository) SumByAccount(ctx context.Context, tenantID, accountID uuid.UUID, asOf time.Time) (decimal.Decimal, decimal.Decimal, error) {
	query := r.conn(ctx).
		Model(&models.LedgerEntryModel{}).
		Scopes(tenant.TenantScope(tenantID)).
		Where("account_id = ? AND transaction_date <= ?", accountID, asOf.UTC())

	if exactSum(query) {
		var result struct {
			Debits  decimal.Decimal
			Credits decimal.Decimal
		}
		if err := query.Select(
			"COALESCE(SUM(CASE WHEN entry_type = ? THEN amount ELSE 0 END), 0) as debits, "+
				"COALESCE(SUM(CASE WHEN entry_type = ? THEN amount ELSE 0 END), 0) as credits",
			ledger.EntryTypeDebit, ledger.EntryTypeCredit,
		).Scan(&result).Error; err != nil {
			return decimal.Zero, decimal.Zero, err
		}
		return result.Debits, result.Credits, nil
	}

	var rows []struct {
		EntryType ledger.EntryType
		Amount    decimal.Decimal
	}
	if err := query.Select("entry_type, amount").Scan(&rows).Error; err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	debits, credits := decimal.Zero, decimal.Zero
	for _, row := range rows {
		if row.EntryType == ledger.EntryTypeDebit {
			debits = debits.Add(row.Amount)
		} else {
			credits = credits.Add(row.Amount)
		}
	}
	return debits, credits, nil
}
