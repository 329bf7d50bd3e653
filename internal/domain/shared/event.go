package shared

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent is a fact recorded by a ledger aggregate, such as a posted
// transaction or an assignment being made or undone. Handlers receive it
// after the change that raised it has been committed.
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	OccurredAt() time.Time
	AggregateID() uuid.UUID
	AggregateType() string
	TenantID() uuid.UUID
}

// BaseDomainEvent is embedded by concrete ledger events. The JSON layout is
// what the audit trail stores.
type BaseDomainEvent struct {
	ID         uuid.UUID `json:"id"`
	Kind       string    `json:"type"`
	At         time.Time `json:"timestamp"`
	SourceID   uuid.UUID `json:"aggregate_id"`
	SourceType string    `json:"aggregate_type"`
	Tenant     uuid.UUID `json:"tenant_id"`
}

func (e *BaseDomainEvent) EventID() uuid.UUID     { return e.ID }
func (e *BaseDomainEvent) EventType() string      { return e.Kind }
func (e *BaseDomainEvent) OccurredAt() time.Time  { return e.At }
func (e *BaseDomainEvent) AggregateID() uuid.UUID { return e.SourceID }
func (e *BaseDomainEvent) AggregateType() string  { return e.SourceType }
func (e *BaseDomainEvent) TenantID() uuid.UUID    { return e.Tenant }

// NewBaseDomainEvent stamps a fresh event raised by the given transaction or
// assignment. Times are kept in UTC so journal ordering does not depend on
// the server zone.
func NewBaseDomainEvent(eventType, aggType string, aggID, tenantID uuid.UUID) BaseDomainEvent {
	return BaseDomainEvent{
		ID:         NewID(),
		Kind:       eventType,
		At:         time.Now().UTC(),
		SourceID:   aggID,
		SourceType: aggType,
		Tenant:     tenantID,
	}
}
