package ledger

import (
	"github.com/google/uuid"
	"github.com/openledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type names
const (
	AggregateTypeTransaction = "Transaction"
	AggregateTypeAssignment  = "Assignment"
)

// Event types
const (
	EventTypeTransactionPosted = "TransactionPosted"
	EventTypeAssignmentCreated = "AssignmentCreated"
	EventTypeAssignmentRemoved = "AssignmentRemoved"
)

// TransactionPostedEvent is raised when a transaction is posted
type TransactionPostedEvent struct {
	shared.BaseDomainEvent
	Kind      TransactionKind `json:"kind"`
	AccountID uuid.UUID       `json:"account_id"`
	Amount    decimal.Decimal `json:"amount"`
	Credited  bool            `json:"credited"`
}

// NewTransactionPostedEvent creates a TransactionPostedEvent
func NewTransactionPostedEvent(tx *Transaction) *TransactionPostedEvent {
	return &TransactionPostedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransactionPosted, AggregateTypeTransaction, tx.ID, tx.TenantID),
		Kind:            tx.Kind,
		AccountID:       tx.AccountID,
		Amount:          tx.Amount,
		Credited:        tx.IsCredited(),
	}
}

// AssignmentEvent is raised when an assignment is created or removed
type AssignmentEvent struct {
	shared.BaseDomainEvent
	TransactionID uuid.UUID       `json:"transaction_id"`
	AssignedID    uuid.UUID       `json:"assigned_id"`
	AssignedType  AssignedType    `json:"assigned_type"`
	Amount        decimal.Decimal `json:"amount"`
}

// NewAssignmentCreatedEvent creates an AssignmentCreated event
func NewAssignmentCreatedEvent(a *Assignment) *AssignmentEvent {
	return newAssignmentEvent(EventTypeAssignmentCreated, a)
}

// NewAssignmentRemovedEvent creates an AssignmentRemoved event
func NewAssignmentRemovedEvent(a *Assignment) *AssignmentEvent {
	return newAssignmentEvent(EventTypeAssignmentRemoved, a)
}

func newAssignmentEvent(eventType string, a *Assignment) *AssignmentEvent {
	return &AssignmentEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeAssignment, a.ID, a.TenantID),
		TransactionID:   a.TransactionID,
		AssignedID:      a.AssignedID,
		AssignedType:    a.AssignedType,
		Amount:          a.Amount,
	}
}
