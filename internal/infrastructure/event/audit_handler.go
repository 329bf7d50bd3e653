package event

import (
	"context"

	"github.com/openledger/backend/internal/domain/shared"
	"github.com/openledger/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// AuditHandler writes every ledger event it receives to the log as a
// structured audit record
type AuditHandler struct {
	serializer *EventSerializer
	logger     *zap.Logger
}

// NewAuditHandler creates an AuditHandler
func NewAuditHandler(serializer *EventSerializer, log *zap.Logger) *AuditHandler {
	if serializer == nil {
		serializer = NewLedgerEventSerializer()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &AuditHandler{
		serializer: serializer,
		logger:     log.Named("audit"),
	}
}

// Handle logs the event with its JSON payload
func (h *AuditHandler) Handle(ctx context.Context, evt shared.DomainEvent) error {
	payload, err := h.serializer.Serialize(evt)
	if err != nil {
		return err
	}
	logger.Enrich(ctx, h.logger).Info("Ledger event",
		zap.String("event_type", evt.EventType()),
		zap.String("event_id", evt.EventID().String()),
		zap.String("aggregate_type", evt.AggregateType()),
		zap.String("aggregate_id", evt.AggregateID().String()),
		zap.String("tenant_id", evt.TenantID().String()),
		zap.Time("occurred_at", evt.OccurredAt()),
		zap.ByteString("payload", payload),
	)
	return nil
}

// EventTypes returns nil so the handler receives every event
func (h *AuditHandler) EventTypes() []string {
	return nil
}

var _ shared.EventHandler = (*AuditHandler)(nil)
