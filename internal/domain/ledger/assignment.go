package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/openledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// AssignedType tags what an assignment clears
type AssignedType string

const (
	AssignedTypeTransaction AssignedType = "TRANSACTION"
	AssignedTypeBalance     AssignedType = "BALANCE"
)

// IsValid checks if the assigned type is valid
func (t AssignedType) IsValid() bool {
	return t == AssignedTypeTransaction || t == AssignedTypeBalance
}

// ClearableEntry is the view of a transaction or opening balance used by
// the clearing and schedule engines
type ClearableEntry struct {
	ID              uuid.UUID
	Type            AssignedType
	Kind            TransactionKind
	TenantID        uuid.UUID
	AccountID       uuid.UUID
	Reference       string
	Narration       string
	TransactionDate time.Time
	Amount          decimal.Decimal
	Side            EntryType
	Posted          bool
}

// Clearable reports whether assignments can be made against the entry
func (e ClearableEntry) Clearable() bool {
	if e.Type == AssignedTypeBalance {
		return true
	}
	return RuleFor(e.Kind).Clearable()
}

// Assignment records that part of a clearing transaction settles an entry
type Assignment struct {
	shared.TenantAggregateRoot
	TransactionID  uuid.UUID
	AccountID      uuid.UUID
	AssignedID     uuid.UUID
	AssignedType   AssignedType
	Amount         decimal.Decimal
	AssignmentDate time.Time
}

// ClearingState carries the live assignment sums both sides of a new
// assignment are checked against. It must be read under the same lock as
// the assignment insert.
type ClearingState struct {
	// AssignedCleared is the sum already assigned against the assigned entry
	AssignedCleared decimal.Decimal
	// ClearingUsed is the sum the clearing transaction already assigned
	ClearingUsed decimal.Decimal
	// ClearingCleared is the sum assigned against the clearing transaction
	ClearingCleared decimal.Decimal
	// AssignedUsed is the sum the assigned entry has used to clear others
	AssignedUsed decimal.Decimal
}

// NewAssignment checks every precondition of a clearance and returns the
// assignment to persist
func NewAssignment(
	tenantID uuid.UUID,
	clearing *Transaction,
	assigned ClearableEntry,
	amount decimal.Decimal,
	assignmentDate time.Time,
	state ClearingState,
) (*Assignment, error) {
	if clearing.TenantID != tenantID || assigned.TenantID != tenantID {
		return nil, &MismatchedAccountError{
			ClearingAccountID: clearing.AccountID,
			AssignedAccountID: assigned.AccountID,
			CrossTenant:       true,
		}
	}
	if err := checkAmount("assignment amount", amount); err != nil {
		return nil, err
	}
	if !clearing.IsPosted {
		return nil, &UnpostedAssignmentError{EntryID: clearing.ID}
	}
	if !assigned.Posted {
		return nil, &UnpostedAssignmentError{EntryID: assigned.ID}
	}
	if assigned.Type == AssignedTypeTransaction && assigned.ID == clearing.ID {
		return nil, &SelfClearanceError{TransactionID: clearing.ID}
	}
	if !clearing.Rule().Assigning() {
		return nil, &InvalidClearanceEntryTypeError{Kind: clearing.Kind, Reason: "transactions cannot clear other entries"}
	}
	if !assigned.Clearable() {
		return nil, &InvalidClearanceEntryTypeError{Kind: assigned.Kind, Reason: "entries cannot be cleared"}
	}
	if clearing.AccountID != assigned.AccountID {
		return nil, &MismatchedAccountError{
			ClearingAccountID: clearing.AccountID,
			AssignedAccountID: assigned.AccountID,
		}
	}
	if clearing.MainSide() == assigned.Side {
		return nil, &InvalidClearanceEntryTypeError{
			Kind:   assigned.Kind,
			Reason: "entry is on the same side as the clearing transaction",
		}
	}
	if state.ClearingCleared.IsPositive() {
		return nil, &MixedAssignmentError{EntryID: clearing.ID, Reason: "has been cleared and cannot clear other entries"}
	}
	if state.AssignedUsed.IsPositive() {
		return nil, &MixedAssignmentError{EntryID: assigned.ID, Reason: "has cleared other entries and cannot be cleared"}
	}

	assignable := clearing.Amount.Sub(state.ClearingUsed)
	if amount.GreaterThan(assignable) {
		return nil, &InsufficientBalanceError{
			EntryID:   clearing.ID,
			Requested: amount,
			Available: assignable,
			Side:      "clearing transaction",
		}
	}
	outstanding := assigned.Amount.Sub(state.AssignedCleared)
	if amount.GreaterThan(outstanding) {
		return nil, &InsufficientBalanceError{
			EntryID:   assigned.ID,
			Requested: amount,
			Available: outstanding,
			Side:      "assigned entry",
		}
	}

	a := &Assignment{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		TransactionID:       clearing.ID,
		AccountID:           clearing.AccountID,
		AssignedID:          assigned.ID,
		AssignedType:        assigned.Type,
		Amount:              amount,
		AssignmentDate:      assignmentDate,
	}
	a.AddDomainEvent(NewAssignmentCreatedEvent(a))
	return a, nil
}

// Remove records the removal of the assignment
func (a *Assignment) Remove() {
	a.AddDomainEvent(NewAssignmentRemovedEvent(a))
}

// Clearance is the derived settlement state of an entry
type Clearance struct {
	Amount    decimal.Decimal
	Cleared   decimal.Decimal
	Uncleared decimal.Decimal
}

// NewClearance derives the uncleared amount
func NewClearance(amount, cleared decimal.Decimal) Clearance {
	return Clearance{
		Amount:    amount,
		Cleared:   cleared,
		Uncleared: amount.Sub(cleared),
	}
}
