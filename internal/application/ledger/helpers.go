package ledger

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/openledger/backend/internal/domain/ledger"
	"github.com/openledger/backend/internal/domain/shared"
	"github.com/openledger/backend/internal/infrastructure/logger"
	"github.com/openledger/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// eventSource is an aggregate that collects domain events until published
type eventSource interface {
	GetDomainEvents() []shared.DomainEvent
	ClearDomainEvents()
}

// publishEvents hands pending events to the publisher. Callers invoke it
// only after their unit of work committed.
func publishEvents(ctx context.Context, publisher shared.EventPublisher, sources ...eventSource) {
	if publisher == nil {
		return
	}
	for _, src := range sources {
		events := src.GetDomainEvents()
		if len(events) == 0 {
			continue
		}
		if err := publisher.Publish(ctx, events...); err != nil {
			logger.L(ctx).Warn("Failed to publish ledger events",
				zap.Int("count", len(events)),
				zap.Error(err),
			)
		}
		src.ClearDomainEvents()
	}
}

// missingEntity turns a not-found lookup of a referenced record into a
// MissingEntityError. Other errors pass through.
func missingEntity(err error, resource string, id uuid.UUID) error {
	if errors.Is(err, shared.ErrNotFound) {
		return &ledger.MissingEntityError{Resource: resource, ID: id}
	}
	return err
}

func parseAccountType(s string) (ledger.AccountType, error) {
	t := ledger.AccountType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", &ledger.InvalidAccountTypeError{
			Role:        "account",
			AccountType: t,
			Allowed:     ledger.AllAccountTypes(),
		}
	}
	return t, nil
}

func parseTransactionKind(s string) (ledger.TransactionKind, error) {
	k := ledger.TransactionKind(strings.ToUpper(strings.TrimSpace(s)))
	if !k.IsValid() {
		return "", shared.NewDomainError("INVALID_TRANSACTION_KIND", "Unknown transaction kind: "+s)
	}
	return k, nil
}

func outcomeOf(err error) string {
	if err == nil {
		return telemetry.OutcomeSuccess
	}
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return telemetry.OutcomeRejected
	}
	return telemetry.OutcomeError
}
