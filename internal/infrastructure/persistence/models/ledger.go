package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/openledger/backend/internal/domain/ledger"
	"github.com/openledger/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// AllModels returns every ledger model in migration order
func AllModels() []any {
	return []any{
		&AccountModel{},
		&TaxModel{},
		&TransactionModel{},
		&LineItemModel{},
		&BalanceModel{},
		&AssignmentModel{},
		&LedgerEntryModel{},
	}
}

// AccountModel is the persistence model for the Account aggregate root
type AccountModel struct {
	TenantAggregateModel
	Name        string             `gorm:"type:varchar(200);not null"`
	Code        string             `gorm:"type:varchar(50);index"`
	AccountType ledger.AccountType `gorm:"type:varchar(30);not null;index"`
	Currency    string             `gorm:"type:varchar(3);not null"`
	Description string             `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (AccountModel) TableName() string {
	return "accounts"
}

// ToDomain converts the persistence model to a domain Account entity
func (m *AccountModel) ToDomain() *ledger.Account {
	a := &ledger.Account{
		Name:        m.Name,
		Code:        m.Code,
		AccountType: m.AccountType,
		Currency:    valueobject.Currency(m.Currency),
		Description: m.Description,
	}
	m.PopulateTenantAggregateRoot(&a.TenantAggregateRoot)
	return a
}

// AccountModelFromDomain creates a persistence model from a domain Account entity
func AccountModelFromDomain(a *ledger.Account) *AccountModel {
	m := &AccountModel{
		Name:        a.Name,
		Code:        a.Code,
		AccountType: a.AccountType,
		Currency:    a.Currency.String(),
		Description: a.Description,
	}
	m.FromDomainTenantAggregateRoot(a.TenantAggregateRoot)
	return m
}

// TaxModel is the persistence model for the Tax aggregate root
type TaxModel struct {
	TenantAggregateModel
	Name      string          `gorm:"type:varchar(100);not null"`
	Code      string          `gorm:"type:varchar(20);not null"`
	Rate      decimal.Decimal `gorm:"type:decimal(9,4);not null"`
	AccountID uuid.UUID       `gorm:"type:uuid;not null;index"`
}

// TableName returns the table name for GORM
func (TaxModel) TableName() string {
	return "taxes"
}

// ToDomain converts the persistence model to a domain Tax entity
func (m *TaxModel) ToDomain() *ledger.Tax {
	t := &ledger.Tax{
		Name:      m.Name,
		Code:      m.Code,
		Rate:      m.Rate,
		AccountID: m.AccountID,
	}
	m.PopulateTenantAggregateRoot(&t.TenantAggregateRoot)
	return t
}

// TaxModelFromDomain creates a persistence model from a domain Tax entity
func TaxModelFromDomain(t *ledger.Tax) *TaxModel {
	m := &TaxModel{
		Name:      t.Name,
		Code:      t.Code,
		Rate:      t.Rate,
		AccountID: t.AccountID,
	}
	m.FromDomainTenantAggregateRoot(t.TenantAggregateRoot)
	return m
}

// TransactionModel is the persistence model for the Transaction aggregate root
type TransactionModel struct {
	TenantAggregateModel
	Kind            ledger.TransactionKind `gorm:"type:varchar(30);not null;index"`
	TransactionDate time.Time              `gorm:"not null;index"`
	Narration       string                 `gorm:"type:varchar(500);not null"`
	Reference       string                 `gorm:"type:varchar(100)"`
	AccountID       uuid.UUID              `gorm:"type:uuid;not null;index"`
	Credited        bool                   `gorm:"not null"`
	IsPosted        bool                   `gorm:"not null;default:false;index"`
	Amount          decimal.Decimal        `gorm:"type:decimal(18,4);not null"`
	PostedAt        *time.Time
	LineItems       []LineItemModel `gorm:"foreignKey:TransactionID;references:ID"`
}

// TableName returns the table name for GORM
func (TransactionModel) TableName() string {
	return "transactions"
}

// ToDomain converts the persistence model to a domain Transaction entity
func (m *TransactionModel) ToDomain() *ledger.Transaction {
	tx := &ledger.Transaction{
		Kind:            m.Kind,
		TransactionDate: m.TransactionDate.UTC(),
		Narration:       m.Narration,
		Reference:       m.Reference,
		AccountID:       m.AccountID,
		Credited:        m.Credited,
		IsPosted:        m.IsPosted,
		Amount:          m.Amount,
		PostedAt:        m.PostedAt,
		LineItems:       make([]ledger.LineItem, len(m.LineItems)),
	}
	m.PopulateTenantAggregateRoot(&tx.TenantAggregateRoot)
	for i := range m.LineItems {
		tx.LineItems[i] = *m.LineItems[i].ToDomain()
	}
	return tx
}

// TransactionModelFromDomain creates a persistence model from a domain Transaction entity
func TransactionModelFromDomain(tx *ledger.Transaction) *TransactionModel {
	m := &TransactionModel{
		Kind:            tx.Kind,
		TransactionDate: tx.TransactionDate.UTC(),
		Narration:       tx.Narration,
		Reference:       tx.Reference,
		AccountID:       tx.AccountID,
		Credited:        tx.IsCredited(),
		IsPosted:        tx.IsPosted,
		Amount:          tx.Amount,
		PostedAt:        tx.PostedAt,
		LineItems:       make([]LineItemModel, len(tx.LineItems)),
	}
	m.FromDomainTenantAggregateRoot(tx.TenantAggregateRoot)
	for i := range tx.LineItems {
		m.LineItems[i] = *LineItemModelFromDomain(&tx.LineItems[i])
	}
	return m
}

// LineItemModel is the persistence model for a transaction line item
type LineItemModel struct {
	TenantModel
	TransactionID uuid.UUID       `gorm:"type:uuid;not null;index"`
	AccountID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Narration     string          `gorm:"type:varchar(500)"`
	Quantity      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Amount        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TaxID         *uuid.UUID      `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (LineItemModel) TableName() string {
	return "line_items"
}

// ToDomain converts the persistence model to a domain LineItem
func (m *LineItemModel) ToDomain() *ledger.LineItem {
	return &ledger.LineItem{
		BaseEntity:    m.BaseModel.ToDomain(),
		TenantID:      m.TenantID,
		TransactionID: m.TransactionID,
		AccountID:     m.AccountID,
		Narration:     m.Narration,
		Quantity:      m.Quantity,
		Amount:        m.Amount,
		TaxID:         m.TaxID,
	}
}

// LineItemModelFromDomain creates a persistence model from a domain LineItem
func LineItemModelFromDomain(l *ledger.LineItem) *LineItemModel {
	m := &LineItemModel{
		TransactionID: l.TransactionID,
		AccountID:     l.AccountID,
		Narration:     l.Narration,
		Quantity:      l.Quantity,
		Amount:        l.Amount,
		TaxID:         l.TaxID,
	}
	m.FromDomainBaseEntity(l.BaseEntity)
	m.TenantID = l.TenantID
	return m
}

// BalanceModel is the persistence model for an opening balance
type BalanceModel struct {
	TenantAggregateModel
	AccountID       uuid.UUID              `gorm:"type:uuid;not null;index"`
	TransactionKind ledger.TransactionKind `gorm:"type:varchar(30);not null"`
	TransactionDate time.Time              `gorm:"not null;index"`
	Reference       string                 `gorm:"type:varchar(100)"`
	Narration       string                 `gorm:"type:varchar(500)"`
	Amount          decimal.Decimal        `gorm:"type:decimal(18,4);not null"`
	BalanceType     ledger.EntryType       `gorm:"type:varchar(10);not null"`
}

// TableName returns the table name for GORM
func (BalanceModel) TableName() string {
	return "balances"
}

// ToDomain converts the persistence model to a domain Balance entity
func (m *BalanceModel) ToDomain() *ledger.Balance {
	b := &ledger.Balance{
		AccountID:       m.AccountID,
		TransactionKind: m.TransactionKind,
		TransactionDate: m.TransactionDate.UTC(),
		Reference:       m.Reference,
		Narration:       m.Narration,
		Amount:          m.Amount,
		BalanceType:     m.BalanceType,
	}
	m.PopulateTenantAggregateRoot(&b.TenantAggregateRoot)
	return b
}

// BalanceModelFromDomain creates a persistence model from a domain Balance entity
func BalanceModelFromDomain(b *ledger.Balance) *BalanceModel {
	m := &BalanceModel{
		AccountID:       b.AccountID,
		TransactionKind: b.TransactionKind,
		TransactionDate: b.TransactionDate.UTC(),
		Reference:       b.Reference,
		Narration:       b.Narration,
		Amount:          b.Amount,
		BalanceType:     b.BalanceType,
	}
	m.FromDomainTenantAggregateRoot(b.TenantAggregateRoot)
	return m
}

// AssignmentModel is the persistence model for an assignment
type AssignmentModel struct {
	TenantAggregateModel
	TransactionID  uuid.UUID           `gorm:"type:uuid;not null;index"`
	AccountID      uuid.UUID           `gorm:"type:uuid;not null;index"`
	AssignedID     uuid.UUID           `gorm:"type:uuid;not null;index"`
	AssignedType   ledger.AssignedType `gorm:"type:varchar(20);not null"`
	Amount         decimal.Decimal     `gorm:"type:decimal(18,4);not null"`
	AssignmentDate time.Time           `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (AssignmentModel) TableName() string {
	return "assignments"
}

// ToDomain converts the persistence model to a domain Assignment entity
func (m *AssignmentModel) ToDomain() *ledger.Assignment {
	a := &ledger.Assignment{
		TransactionID:  m.TransactionID,
		AccountID:      m.AccountID,
		AssignedID:     m.AssignedID,
		AssignedType:   m.AssignedType,
		Amount:         m.Amount,
		AssignmentDate: m.AssignmentDate.UTC(),
	}
	m.PopulateTenantAggregateRoot(&a.TenantAggregateRoot)
	return a
}

// AssignmentModelFromDomain creates a persistence model from a domain Assignment entity
func AssignmentModelFromDomain(a *ledger.Assignment) *AssignmentModel {
	m := &AssignmentModel{
		TransactionID:  a.TransactionID,
		AccountID:      a.AccountID,
		AssignedID:     a.AssignedID,
		AssignedType:   a.AssignedType,
		Amount:         a.Amount,
		AssignmentDate: a.AssignmentDate.UTC(),
	}
	m.FromDomainTenantAggregateRoot(a.TenantAggregateRoot)
	return m
}

// LedgerEntryModel is the persistence model for a posted ledger entry
type LedgerEntryModel struct {
	TenantModel
	TransactionID   uuid.UUID        `gorm:"type:uuid;not null;index"`
	AccountID       uuid.UUID        `gorm:"type:uuid;not null;index"`
	LineItemID      *uuid.UUID       `gorm:"type:uuid"`
	TaxID           *uuid.UUID       `gorm:"type:uuid"`
	EntryType       ledger.EntryType `gorm:"type:varchar(10);not null"`
	Amount          decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	TransactionDate time.Time        `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (LedgerEntryModel) TableName() string {
	return "ledger_entries"
}

// ToDomain converts the persistence model to a domain LedgerEntry
func (m *LedgerEntryModel) ToDomain() *ledger.LedgerEntry {
	return &ledger.LedgerEntry{
		BaseEntity:      m.BaseModel.ToDomain(),
		TenantID:        m.TenantID,
		TransactionID:   m.TransactionID,
		AccountID:       m.AccountID,
		LineItemID:      m.LineItemID,
		TaxID:           m.TaxID,
		EntryType:       m.EntryType,
		Amount:          m.Amount,
		TransactionDate: m.TransactionDate.UTC(),
	}
}

// LedgerEntryModelFromDomain creates a persistence model from a domain LedgerEntry
func LedgerEntryModelFromDomain(e *ledger.LedgerEntry) *LedgerEntryModel {
	m := &LedgerEntryModel{
		TransactionID:   e.TransactionID,
		AccountID:       e.AccountID,
		LineItemID:      e.LineItemID,
		TaxID:           e.TaxID,
		EntryType:       e.EntryType,
		Amount:          e.Amount,
		TransactionDate: e.TransactionDate.UTC(),
	}
	m.FromDomainBaseEntity(e.BaseEntity)
	m.TenantID = e.TenantID
	return m
}
