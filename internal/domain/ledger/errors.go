package ledger

import (
	"fmt"
	"strings"

	"github.com/openledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Error codes for ledger failures. Every typed error below unwraps to one
// of these so callers can match with errors.Is or errors.As on
// *shared.DomainError.
var (
	ErrInvalidAccountType        = shared.NewDomainError("INVALID_ACCOUNT_TYPE", "Invalid account type")
	ErrMissingLineItem           = shared.NewDomainError("MISSING_LINE_ITEM", "Transaction has no line items")
	ErrMismatchedAccount         = shared.NewDomainError("MISMATCHED_ACCOUNT", "Entries do not share account or entity")
	ErrPostedTransaction         = shared.NewDomainError("POSTED_TRANSACTION", "Transaction is already posted")
	ErrInsufficientBalance       = shared.NewDomainError("INSUFFICIENT_BALANCE", "Insufficient balance available")
	ErrMissingEntity             = shared.NewDomainError("MISSING_ENTITY", "Referenced record does not exist for this entity")
	ErrTaxNotAllowed             = shared.NewDomainError("TAX_NOT_ALLOWED", "Transaction kind does not allow taxes")
	ErrUnbalancedTransaction     = shared.NewDomainError("UNBALANCED_TRANSACTION", "Debits do not equal credits")
	ErrUnpostedAssignment        = shared.NewDomainError("UNPOSTED_ASSIGNMENT", "Assignments require posted entries")
	ErrSelfClearance             = shared.NewDomainError("SELF_CLEARANCE", "Transaction cannot clear itself")
	ErrInvalidClearanceEntryType = shared.NewDomainError("INVALID_CLEARANCE_ENTRY_TYPE", "Entry cannot take part in this clearance")
	ErrMixedAssignment           = shared.NewDomainError("MIXED_ASSIGNMENT", "Entry cannot both clear and be cleared")
	ErrInvalidAmount             = shared.NewDomainError("INVALID_AMOUNT", "Amount must be positive")
	ErrInvalidLineItemAccount    = shared.NewDomainError("INVALID_LINE_ITEM_ACCOUNT", "Line item account cannot be the main account")
	ErrInvalidBalanceKind        = shared.NewDomainError("INVALID_BALANCE_TRANSACTION", "Opening balance kind is not allowed")
)

// InvalidAccountTypeError reports an account whose type is not allowed
// where it is used
type InvalidAccountTypeError struct {
	Kind        TransactionKind
	Role        string
	AccountID   uuid.UUID
	AccountType AccountType
	Allowed     []AccountType
}

func (e *InvalidAccountTypeError) Error() string {
	allowed := make([]string, len(e.Allowed))
	for i, t := range e.Allowed {
		allowed[i] = string(t)
	}
	if e.Kind == "" {
		return fmt.Sprintf("%s account type must be one of %s, got %s",
			e.Role, strings.Join(allowed, ", "), e.AccountType)
	}
	return fmt.Sprintf("%s %s account type must be one of %s, got %s",
		e.Kind, e.Role, strings.Join(allowed, ", "), e.AccountType)
}

func (e *InvalidAccountTypeError) Unwrap() error { return ErrInvalidAccountType }

// MissingLineItemError reports posting a transaction without line items
type MissingLineItemError struct {
	TransactionID uuid.UUID
}

func (e *MissingLineItemError) Error() string {
	return fmt.Sprintf("transaction %s must have at least one line item to be posted", e.TransactionID)
}

func (e *MissingLineItemError) Unwrap() error { return ErrMissingLineItem }

// MismatchedAccountError reports an assignment across accounts or tenants
type MismatchedAccountError struct {
	ClearingAccountID uuid.UUID
	AssignedAccountID uuid.UUID
	CrossTenant       bool
}

func (e *MismatchedAccountError) Error() string {
	if e.CrossTenant {
		return "assigned entry belongs to a different entity"
	}
	return fmt.Sprintf("clearing account %s does not match assigned account %s",
		e.ClearingAccountID, e.AssignedAccountID)
}

func (e *MismatchedAccountError) Unwrap() error { return ErrMismatchedAccount }

// PostedTransactionError reports mutating or re-posting a posted transaction
type PostedTransactionError struct {
	TransactionID uuid.UUID
	Action        string
}

func (e *PostedTransactionError) Error() string {
	return fmt.Sprintf("cannot %s: transaction %s is already posted", e.Action, e.TransactionID)
}

func (e *PostedTransactionError) Unwrap() error { return ErrPostedTransaction }

// InsufficientBalanceError reports an assignment exceeding either bound
type InsufficientBalanceError struct {
	EntryID   uuid.UUID
	Requested decimal.Decimal
	Available decimal.Decimal
	Side      string
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("%s %s has %s available, cannot assign %s",
		e.Side, e.EntryID, e.Available.String(), e.Requested.String())
}

func (e *InsufficientBalanceError) Unwrap() error { return ErrInsufficientBalance }

// MissingEntityError reports a reference that does not resolve inside the
// caller's entity
type MissingEntityError struct {
	Resource string
	ID       uuid.UUID
}

func (e *MissingEntityError) Error() string {
	return fmt.Sprintf("%s %s not found for this entity", e.Resource, e.ID)
}

func (e *MissingEntityError) Unwrap() error { return ErrMissingEntity }

// TaxNotAllowedError reports a taxed line item on a tax free kind
type TaxNotAllowedError struct {
	Kind       TransactionKind
	LineItemID uuid.UUID
}

func (e *TaxNotAllowedError) Error() string {
	return fmt.Sprintf("%s transactions cannot carry taxed line items (line item %s)", e.Kind, e.LineItemID)
}

func (e *TaxNotAllowedError) Unwrap() error { return ErrTaxNotAllowed }

// UnbalancedTransactionError reports a posting whose sides differ
type UnbalancedTransactionError struct {
	TransactionID uuid.UUID
	Debits        decimal.Decimal
	Credits       decimal.Decimal
}

func (e *UnbalancedTransactionError) Error() string {
	return fmt.Sprintf("transaction %s is unbalanced: debits %s, credits %s",
		e.TransactionID, e.Debits.String(), e.Credits.String())
}

func (e *UnbalancedTransactionError) Unwrap() error { return ErrUnbalancedTransaction }

// UnpostedAssignmentError reports an assignment involving an unposted entry
type UnpostedAssignmentError struct {
	EntryID uuid.UUID
}

func (e *UnpostedAssignmentError) Error() string {
	return fmt.Sprintf("entry %s must be posted before it can take part in an assignment", e.EntryID)
}

func (e *UnpostedAssignmentError) Unwrap() error { return ErrUnpostedAssignment }

// SelfClearanceError reports a transaction assigned to itself
type SelfClearanceError struct {
	TransactionID uuid.UUID
}

func (e *SelfClearanceError) Error() string {
	return fmt.Sprintf("transaction %s cannot clear itself", e.TransactionID)
}

func (e *SelfClearanceError) Unwrap() error { return ErrSelfClearance }

// InvalidClearanceEntryTypeError reports an entry of the wrong kind or side
// for a clearance
type InvalidClearanceEntryTypeError struct {
	Kind   TransactionKind
	Reason string
}

func (e *InvalidClearanceEntryTypeError) Error() string {
	return fmt.Sprintf("%s %s", e.Kind, e.Reason)
}

func (e *InvalidClearanceEntryTypeError) Unwrap() error { return ErrInvalidClearanceEntryType }

// MixedAssignmentError reports an entry used both to clear and be cleared
type MixedAssignmentError struct {
	EntryID uuid.UUID
	Reason  string
}

func (e *MixedAssignmentError) Error() string {
	return fmt.Sprintf("entry %s %s", e.EntryID, e.Reason)
}

func (e *MixedAssignmentError) Unwrap() error { return ErrMixedAssignment }

// AmountScale is the number of decimal places amounts are stored with
const AmountScale int32 = 4

// InvalidAmountError reports a non-positive amount, or one with more
// decimal places than AmountScale
type InvalidAmountError struct {
	Field  string
	Amount decimal.Decimal
	Scale  int32
}

func (e *InvalidAmountError) Error() string {
	if e.Scale > 0 {
		return fmt.Sprintf("%s cannot have more than %d decimal places, got %s", e.Field, e.Scale, e.Amount.String())
	}
	return fmt.Sprintf("%s must be positive, got %s", e.Field, e.Amount.String())
}

// checkAmount requires a positive amount that survives storage unrounded
func checkAmount(field string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return &InvalidAmountError{Field: field, Amount: amount}
	}
	if !amount.Equal(amount.Truncate(AmountScale)) {
		return &InvalidAmountError{Field: field, Amount: amount, Scale: AmountScale}
	}
	return nil
}

func (e *InvalidAmountError) Unwrap() error { return ErrInvalidAmount }

// InvalidLineItemAccountError reports a line item posted to the main account
type InvalidLineItemAccountError struct {
	LineItemID uuid.UUID
	AccountID  uuid.UUID
}

func (e *InvalidLineItemAccountError) Error() string {
	return fmt.Sprintf("line item %s cannot use the main account %s", e.LineItemID, e.AccountID)
}

func (e *InvalidLineItemAccountError) Unwrap() error { return ErrInvalidLineItemAccount }

// InvalidBalanceKindError reports an opening balance tagged with a kind
// that cannot carry one
type InvalidBalanceKindError struct {
	Kind TransactionKind
}

func (e *InvalidBalanceKindError) Error() string {
	return fmt.Sprintf("opening balances cannot be of kind %s", e.Kind)
}

func (e *InvalidBalanceKindError) Unwrap() error { return ErrInvalidBalanceKind }
