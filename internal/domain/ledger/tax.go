package ledger

import (
	"strings"

	"github.com/google/uuid"
	"github.com/openledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Tax is a rate applied to line items, collected on a CONTROL account
type Tax struct {
	shared.TenantAggregateRoot
	Name      string
	Code      string
	Rate      decimal.Decimal
	AccountID uuid.UUID
}

// NewTax creates a tax collected on the given control account
func NewTax(tenantID uuid.UUID, name, code string, rate decimal.Decimal, account *Account) (*Tax, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Tax name cannot be empty")
	}
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Tax code cannot be empty")
	}
	if rate.IsNegative() {
		return nil, shared.NewDomainError("INVALID_RATE", "Tax rate cannot be negative")
	}
	if !rate.Equal(rate.Truncate(AmountScale)) {
		return nil, shared.NewDomainError("INVALID_RATE", "Tax rate cannot have more than 4 decimal places")
	}
	if account == nil || account.TenantID != tenantID {
		var id uuid.UUID
		if account != nil {
			id = account.ID
		}
		return nil, &MissingEntityError{Resource: "account", ID: id}
	}
	if account.AccountType != AccountTypeControl {
		return nil, &InvalidAccountTypeError{
			Role:        "tax",
			AccountID:   account.ID,
			AccountType: account.AccountType,
			Allowed:     []AccountType{AccountTypeControl},
		}
	}

	return &Tax{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		Code:                code,
		Rate:                rate,
		AccountID:           account.ID,
	}, nil
}

// TaxCalculator computes the tax carried by a line item. It returns the
// tax amount and the control account the tax is posted to.
type TaxCalculator interface {
	ComputeTax(item LineItem) (decimal.Decimal, uuid.UUID, error)
}

// RateTaxCalculator applies percentage rates from a set of tax records
type RateTaxCalculator struct {
	taxes map[uuid.UUID]*Tax
}

// NewRateTaxCalculator creates a calculator over the given taxes
func NewRateTaxCalculator(taxes ...*Tax) *RateTaxCalculator {
	m := make(map[uuid.UUID]*Tax, len(taxes))
	for _, t := range taxes {
		m[t.ID] = t
	}
	return &RateTaxCalculator{taxes: m}
}

// ComputeTax implements TaxCalculator
func (c *RateTaxCalculator) ComputeTax(item LineItem) (decimal.Decimal, uuid.UUID, error) {
	if !item.IsTaxed() {
		return decimal.Zero, uuid.Nil, nil
	}
	tax, ok := c.taxes[*item.TaxID]
	if !ok || tax.TenantID != item.TenantID {
		return decimal.Zero, uuid.Nil, &MissingEntityError{Resource: "tax", ID: *item.TaxID}
	}
	amount := item.Amount.Mul(tax.Rate).Div(hundred).Round(4)
	return amount, tax.AccountID, nil
}
