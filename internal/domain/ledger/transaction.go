package ledger

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/openledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Transaction is a posted or unposted accounting document of one of the
// closed set of kinds. Kind specific behavior comes from its KindRule.
type Transaction struct {
	shared.TenantAggregateRoot
	Kind            TransactionKind
	TransactionDate time.Time
	Narration       string
	Reference       string
	AccountID       uuid.UUID
	Credited        bool
	IsPosted        bool
	Amount          decimal.Decimal
	PostedAt        *time.Time
	LineItems       []LineItem
}

// NewTransaction creates a new unposted transaction against a main account
func NewTransaction(tenantID uuid.UUID, kind TransactionKind, accountID uuid.UUID, transactionDate time.Time, narration string) (*Transaction, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Entity ID cannot be empty")
	}
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_TRANSACTION_KIND", "Unknown transaction kind: "+string(kind))
	}
	if accountID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ACCOUNT", "Main account cannot be empty")
	}
	if transactionDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "Transaction date is required")
	}
	narration = strings.TrimSpace(narration)
	if narration == "" {
		return nil, shared.NewDomainError("INVALID_NARRATION", "Narration cannot be empty")
	}

	return &Transaction{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Kind:                kind,
		TransactionDate:     transactionDate,
		Narration:           narration,
		AccountID:           accountID,
		Credited:            RuleFor(kind).Credited,
		Amount:              decimal.Zero,
		LineItems:           make([]LineItem, 0),
	}, nil
}

// Rule returns the kind's rule configuration
func (t *Transaction) Rule() KindRule {
	return RuleFor(t.Kind)
}

// IsCredited reports whether the main account is credited on posting.
// Only journal entries choose their side; every other kind takes it from
// its rule.
func (t *Transaction) IsCredited() bool {
	if t.Kind == KindJournalEntry {
		return t.Credited
	}
	return t.Rule().Credited
}

// MainSide returns the side the main account is posted to
func (t *Transaction) MainSide() EntryType {
	return sideFor(t.IsCredited())
}

// SetCredited chooses the main account side of a journal entry
func (t *Transaction) SetCredited(credited bool) error {
	if err := t.ensureUnposted("change side"); err != nil {
		return err
	}
	if t.Kind != KindJournalEntry {
		return shared.NewDomainError("CREDITED_FIXED", "Only journal entries can choose the credited side")
	}
	t.Credited = credited
	t.Touch()
	return nil
}

// SetReference sets the external reference
func (t *Transaction) SetReference(reference string) error {
	if err := t.ensureUnposted("change reference"); err != nil {
		return err
	}
	t.Reference = strings.TrimSpace(reference)
	t.Touch()
	return nil
}

// AddLineItem attaches a line item to the transaction
func (t *Transaction) AddLineItem(item *LineItem) error {
	if err := t.ensureUnposted("add line item"); err != nil {
		return err
	}
	if item == nil {
		return shared.NewDomainError("INVALID_LINE_ITEM", "Line item cannot be nil")
	}
	if item.TenantID != t.TenantID {
		return &MissingEntityError{Resource: "line item", ID: item.ID}
	}
	if err := checkAmount("line item amount", item.Amount); err != nil {
		return err
	}
	item.TransactionID = t.ID
	t.LineItems = append(t.LineItems, *item)
	t.Touch()
	return nil
}

// RemoveLineItem detaches a line item from the transaction
func (t *Transaction) RemoveLineItem(lineItemID uuid.UUID) error {
	if err := t.ensureUnposted("remove line item"); err != nil {
		return err
	}
	for i := range t.LineItems {
		if t.LineItems[i].ID == lineItemID {
			t.LineItems = append(t.LineItems[:i], t.LineItems[i+1:]...)
			t.Touch()
			return nil
		}
	}
	return &MissingEntityError{Resource: "line item", ID: lineItemID}
}

// LineItemTotal sums the line item amounts, excluding tax
func (t *Transaction) LineItemTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range t.LineItems {
		total = total.Add(item.Amount)
	}
	return total
}

// AccountIDs returns the main account and every line item account
func (t *Transaction) AccountIDs() []uuid.UUID {
	ids := []uuid.UUID{t.AccountID}
	seen := map[uuid.UUID]bool{t.AccountID: true}
	for _, item := range t.LineItems {
		if !seen[item.AccountID] {
			seen[item.AccountID] = true
			ids = append(ids, item.AccountID)
		}
	}
	return ids
}

// TaxIDs returns the distinct taxes applied to line items
func (t *Transaction) TaxIDs() []uuid.UUID {
	var ids []uuid.UUID
	seen := map[uuid.UUID]bool{}
	for _, item := range t.LineItems {
		if item.IsTaxed() && !seen[*item.TaxID] {
			seen[*item.TaxID] = true
			ids = append(ids, *item.TaxID)
		}
	}
	return ids
}

// Entry returns the transaction as a clearable entry
func (t *Transaction) Entry() ClearableEntry {
	return ClearableEntry{
		ID:              t.ID,
		Type:            AssignedTypeTransaction,
		Kind:            t.Kind,
		TenantID:        t.TenantID,
		AccountID:       t.AccountID,
		Reference:       t.Reference,
		Narration:       t.Narration,
		TransactionDate: t.TransactionDate,
		Amount:          t.Amount,
		Side:            t.MainSide(),
		Posted:          t.IsPosted,
	}
}

func (t *Transaction) markPosted(amount decimal.Decimal, at time.Time) {
	t.IsPosted = true
	t.Amount = amount
	t.PostedAt = &at
	t.UpdatedAt = at
	t.IncrementVersion()
	t.AddDomainEvent(NewTransactionPostedEvent(t))
}

func (t *Transaction) ensureUnposted(action string) error {
	if t.IsPosted {
		return &PostedTransactionError{TransactionID: t.ID, Action: action}
	}
	return nil
}
