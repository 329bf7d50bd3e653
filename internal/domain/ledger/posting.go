package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TaxLine is an implicit line created for the tax carried by a line item
type TaxLine struct {
	LineItemID uuid.UUID
	TaxID      uuid.UUID
	AccountID  uuid.UUID
	Amount     decimal.Decimal
}

// Posting is the result of posting a transaction
type Posting struct {
	Transaction *Transaction
	Entries     []*LedgerEntry
	TaxLines    []TaxLine
	Total       decimal.Decimal
}

// PostingService turns validated transactions into balanced ledger entries
type PostingService struct {
	now func() time.Time
}

// PostingOption configures a PostingService
type PostingOption func(*PostingService)

// WithClock overrides the clock used to stamp postings
func WithClock(now func() time.Time) PostingOption {
	return func(s *PostingService) {
		s.now = now
	}
}

// NewPostingService creates a new posting service
func NewPostingService(opts ...PostingOption) *PostingService {
	s := &PostingService{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Post validates the transaction and builds its ledger entries: one entry
// for the total on the main account's side and one opposite entry per
// line item and tax line. The transaction is only marked posted when the
// entries balance. taxes may be nil when no line item is taxed.
func (s *PostingService) Post(tx *Transaction, accounts Accounts, taxes TaxCalculator) (*Posting, error) {
	if err := tx.ensureUnposted("post"); err != nil {
		return nil, err
	}
	if err := Validate(tx, accounts); err != nil {
		return nil, err
	}
	if len(tx.LineItems) == 0 {
		return nil, &MissingLineItemError{TransactionID: tx.ID}
	}

	taxLines, err := s.taxLines(tx, accounts, taxes)
	if err != nil {
		return nil, err
	}

	total := tx.LineItemTotal()
	for _, tl := range taxLines {
		total = total.Add(tl.Amount)
	}

	mainSide := tx.MainSide()
	entries := make([]*LedgerEntry, 0, 1+len(tx.LineItems)+len(taxLines))
	entries = append(entries, newLedgerEntry(tx, tx.AccountID, mainSide, total))
	for i := range tx.LineItems {
		item := &tx.LineItems[i]
		entry := newLedgerEntry(tx, item.AccountID, mainSide.Opposite(), item.Amount)
		entry.LineItemID = &item.ID
		entries = append(entries, entry)
	}
	for _, tl := range taxLines {
		entry := newLedgerEntry(tx, tl.AccountID, mainSide.Opposite(), tl.Amount)
		lineItemID, taxID := tl.LineItemID, tl.TaxID
		entry.LineItemID = &lineItemID
		entry.TaxID = &taxID
		entries = append(entries, entry)
	}

	debits, credits := SumEntries(entries)
	if !debits.Equal(credits) {
		return nil, &UnbalancedTransactionError{TransactionID: tx.ID, Debits: debits, Credits: credits}
	}

	tx.markPosted(total, s.now())

	return &Posting{
		Transaction: tx,
		Entries:     entries,
		TaxLines:    taxLines,
		Total:       total,
	}, nil
}

func (s *PostingService) taxLines(tx *Transaction, accounts Accounts, taxes TaxCalculator) ([]TaxLine, error) {
	if tx.Rule().NoTax {
		return nil, nil
	}
	var lines []TaxLine
	for _, item := range tx.LineItems {
		if !item.IsTaxed() {
			continue
		}
		if taxes == nil {
			return nil, &MissingEntityError{Resource: "tax", ID: *item.TaxID}
		}
		amount, accountID, err := taxes.ComputeTax(item)
		if err != nil {
			return nil, err
		}
		if amount.IsZero() {
			continue
		}
		control, err := accounts.Resolve(tx.TenantID, accountID)
		if err != nil {
			return nil, err
		}
		if control.AccountType != AccountTypeControl {
			return nil, &InvalidAccountTypeError{
				Kind:        tx.Kind,
				Role:        "tax",
				AccountID:   control.ID,
				AccountType: control.AccountType,
				Allowed:     []AccountType{AccountTypeControl},
			}
		}
		lines = append(lines, TaxLine{
			LineItemID: item.ID,
			TaxID:      *item.TaxID,
			AccountID:  control.ID,
			Amount:     amount,
		})
	}
	return lines, nil
}
