package ledger

import "slices"

// TransactionKind tags the variant of a transaction
type TransactionKind string

const (
	KindCashSale        TransactionKind = "CASH_SALE"
	KindCashPurchase    TransactionKind = "CASH_PURCHASE"
	KindClientInvoice   TransactionKind = "CLIENT_INVOICE"
	KindSupplierBill    TransactionKind = "SUPPLIER_BILL"
	KindCreditNote      TransactionKind = "CREDIT_NOTE"
	KindDebitNote       TransactionKind = "DEBIT_NOTE"
	KindClientReceipt   TransactionKind = "CLIENT_RECEIPT"
	KindSupplierPayment TransactionKind = "SUPPLIER_PAYMENT"
	KindContraEntry     TransactionKind = "CONTRA_ENTRY"
	KindJournalEntry    TransactionKind = "JOURNAL_ENTRY"
)

var transactionKinds = []TransactionKind{
	KindCashSale,
	KindCashPurchase,
	KindClientInvoice,
	KindSupplierBill,
	KindCreditNote,
	KindDebitNote,
	KindClientReceipt,
	KindSupplierPayment,
	KindContraEntry,
	KindJournalEntry,
}

// AllTransactionKinds returns every transaction kind
func AllTransactionKinds() []TransactionKind {
	return slices.Clone(transactionKinds)
}

// IsValid checks if the kind is known
func (k TransactionKind) IsValid() bool {
	return slices.Contains(transactionKinds, k)
}

// String returns the string representation
func (k TransactionKind) String() string {
	return string(k)
}

// Rule returns the static rule configuration of the kind
func (k TransactionKind) Rule() KindRule {
	return RuleFor(k)
}

// IsOpeningBalanceKind reports whether an opening balance may be tagged
// with the kind
func (k TransactionKind) IsOpeningBalanceKind() bool {
	return k == KindClientInvoice || k == KindSupplierBill || k == KindJournalEntry
}

// EntryType is the side of a ledger entry
type EntryType string

const (
	EntryTypeDebit  EntryType = "DEBIT"
	EntryTypeCredit EntryType = "CREDIT"
)

// IsValid checks if the entry type is valid
func (e EntryType) IsValid() bool {
	return e == EntryTypeDebit || e == EntryTypeCredit
}

// String returns the string representation
func (e EntryType) String() string {
	return string(e)
}

// Opposite returns the other side
func (e EntryType) Opposite() EntryType {
	if e == EntryTypeDebit {
		return EntryTypeCredit
	}
	return EntryTypeDebit
}

// sideFor maps the credited flag to the main account side
func sideFor(credited bool) EntryType {
	if credited {
		return EntryTypeCredit
	}
	return EntryTypeDebit
}
