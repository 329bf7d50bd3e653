package ledger

import (
	"github.com/google/uuid"
	"github.com/openledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// LineItem is a secondary entry of a transaction. Amount is the line
// total; Quantity is informational.
type LineItem struct {
	shared.BaseEntity
	TenantID      uuid.UUID
	TransactionID uuid.UUID
	AccountID     uuid.UUID
	Narration     string
	Quantity      decimal.Decimal
	Amount        decimal.Decimal
	TaxID         *uuid.UUID
}

// NewLineItem creates a new line item
func NewLineItem(tenantID, accountID uuid.UUID, narration string, amount decimal.Decimal) (*LineItem, error) {
	if accountID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ACCOUNT", "Line item account cannot be empty")
	}
	if err := checkAmount("line item amount", amount); err != nil {
		return nil, err
	}
	return &LineItem{
		BaseEntity: shared.NewBaseEntity(),
		TenantID:   tenantID,
		AccountID:  accountID,
		Narration:  narration,
		Quantity:   decimal.NewFromInt(1),
		Amount:     amount,
	}, nil
}

// WithQuantity sets the quantity
func (l *LineItem) WithQuantity(quantity decimal.Decimal) error {
	if err := checkAmount("line item quantity", quantity); err != nil {
		return err
	}
	l.Quantity = quantity
	return nil
}

// WithTax applies a tax to the line item
func (l *LineItem) WithTax(taxID uuid.UUID) {
	l.TaxID = &taxID
}

// IsTaxed reports whether a tax applies to the line item
func (l *LineItem) IsTaxed() bool {
	return l.TaxID != nil && *l.TaxID != uuid.Nil
}
