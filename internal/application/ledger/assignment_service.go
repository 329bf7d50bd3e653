package ledger

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/openledger/backend/internal/domain/ledger"
	"github.com/openledger/backend/internal/domain/shared"
	"github.com/openledger/backend/internal/infrastructure/logger"
	"github.com/openledger/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// AssignmentService clears receivable and payable entries with clearing
// transactions
type AssignmentService struct {
	assignments  ledger.AssignmentRepository
	transactions ledger.TransactionRepository
	balances     ledger.BalanceRepository
	uow          ledger.UnitOfWork
	publisher    shared.EventPublisher
	metrics      *telemetry.LedgerMetrics
	now          func() time.Time
}

// AssignmentServiceOption configures an AssignmentService
type AssignmentServiceOption func(*AssignmentService)

// WithAssignmentEvents publishes assignment events after commit
func WithAssignmentEvents(publisher shared.EventPublisher) AssignmentServiceOption {
	return func(s *AssignmentService) {
		s.publisher = publisher
	}
}

// WithAssignmentMetrics records assignment counters
func WithAssignmentMetrics(metrics *telemetry.LedgerMetrics) AssignmentServiceOption {
	return func(s *AssignmentService) {
		s.metrics = metrics
	}
}

// WithAssignmentClock overrides the clock used for undated assignments
func WithAssignmentClock(now func() time.Time) AssignmentServiceOption {
	return func(s *AssignmentService) {
		s.now = now
	}
}

// NewAssignmentService creates a new AssignmentService
func NewAssignmentService(
	assignments ledger.AssignmentRepository,
	transactions ledger.TransactionRepository,
	balances ledger.BalanceRepository,
	uow ledger.UnitOfWork,
	opts ...AssignmentServiceOption,
) *AssignmentService {
	s := &AssignmentService{
		assignments:  assignments,
		transactions: transactions,
		balances:     balances,
		uow:          uow,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Assign clears part of an entry with a clearing transaction. Both rows are
// locked in ID order before the live sums are read, so concurrent
// assignments against either side cannot overdraw it.
func (s *AssignmentService) Assign(ctx context.Context, tenantID uuid.UUID, req AssignRequest) (*AssignmentResponse, error) {
	assignedType := ledger.AssignedType(req.AssignedType)
	if !assignedType.IsValid() {
		return nil, shared.NewDomainError("INVALID_ASSIGNED_TYPE", "Assigned type must be TRANSACTION or BALANCE")
	}
	date := s.now().UTC()
	if req.AssignmentDate != nil {
		date = req.AssignmentDate.UTC()
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "assignment", "assign",
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrTransactionID, req.TransactionID.String(),
		telemetry.SpanAttrAssignedID, req.AssignedID.String(),
		telemetry.SpanAttrAmount, req.Amount.String(),
	)
	defer span.End()

	var assignment *ledger.Assignment
	err := s.uow.Do(ctx, func(ctx context.Context) error {
		clearing, assigned, err := s.lockEntries(ctx, tenantID, req.TransactionID, req.AssignedID, assignedType)
		if err != nil {
			return err
		}
		state, err := s.clearingState(ctx, tenantID, clearing, assigned)
		if err != nil {
			return err
		}
		assignment, err = ledger.NewAssignment(tenantID, clearing, assigned, req.Amount, date, state)
		if err != nil {
			return err
		}
		if err := s.assignments.Insert(ctx, assignment); err != nil {
			return fmt.Errorf("failed to save assignment: %w", err)
		}
		return nil
	})

	s.metrics.RecordAssignment(ctx, string(assignedType), outcomeOf(err), req.Amount)
	if err != nil {
		telemetry.RecordError(span, err)
		logger.L(ctx).Info("Assignment rejected",
			zap.String("transaction_id", req.TransactionID.String()),
			zap.String("assigned_id", req.AssignedID.String()),
			zap.String("amount", req.Amount.String()),
			zap.Error(err),
		)
		return nil, err
	}

	telemetry.SetAttributes(span, telemetry.SpanAttrAssignmentID, assignment.ID.String())
	logger.L(ctx).Info("Assignment created",
		zap.String("assignment_id", assignment.ID.String()),
		zap.String("transaction_id", assignment.TransactionID.String()),
		zap.String("assigned_id", assignment.AssignedID.String()),
		zap.String("amount", assignment.Amount.String()),
	)
	publishEvents(ctx, s.publisher, assignment)

	resp := ToAssignmentResponse(assignment)
	return &resp, nil
}

// Unassign removes an assignment, restoring both sides' open amounts
func (s *AssignmentService) Unassign(ctx context.Context, tenantID, id uuid.UUID) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "assignment", "unassign",
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrAssignmentID, id.String(),
	)
	defer span.End()

	var assignment *ledger.Assignment
	err := s.uow.Do(ctx, func(ctx context.Context) error {
		var err error
		assignment, err = s.assignments.FindByIDForTenant(ctx, tenantID, id)
		if err != nil {
			return err
		}
		// serialize with assignments made by the same clearing transaction
		if _, err := s.transactions.FindByIDForUpdate(ctx, tenantID, assignment.TransactionID); err != nil {
			return missingEntity(err, "transaction", assignment.TransactionID)
		}
		if err := s.assignments.Delete(ctx, assignment); err != nil {
			return err
		}
		assignment.Remove()
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	s.metrics.RecordUnassignment(ctx, string(assignment.AssignedType))
	logger.L(ctx).Info("Assignment removed",
		zap.String("assignment_id", assignment.ID.String()),
		zap.String("assigned_id", assignment.AssignedID.String()),
	)
	publishEvents(ctx, s.publisher, assignment)
	return nil
}

type lockTarget struct {
	id   uuid.UUID
	lock func(ctx context.Context) error
}

// lockEntries loads and row-locks the clearing transaction and the assigned
// entry, always in ascending ID order
func (s *AssignmentService) lockEntries(
	ctx context.Context,
	tenantID, clearingID, assignedID uuid.UUID,
	assignedType ledger.AssignedType,
) (*ledger.Transaction, ledger.ClearableEntry, error) {
	var (
		clearing *ledger.Transaction
		assigned ledger.ClearableEntry
	)
	targets := []lockTarget{{
		id: clearingID,
		lock: func(ctx context.Context) error {
			tx, err := s.transactions.FindByIDForUpdate(ctx, tenantID, clearingID)
			if err != nil {
				return missingEntity(err, "transaction", clearingID)
			}
			clearing = tx
			return nil
		},
	}}

	selfAssigned := assignedType == ledger.AssignedTypeTransaction && assignedID == clearingID
	if !selfAssigned {
		targets = append(targets, lockTarget{
			id: assignedID,
			lock: func(ctx context.Context) error {
				if assignedType == ledger.AssignedTypeBalance {
					b, err := s.balances.FindByIDForUpdate(ctx, tenantID, assignedID)
					if err != nil {
						return missingEntity(err, "balance", assignedID)
					}
					assigned = b.Entry()
					return nil
				}
				tx, err := s.transactions.FindByIDForUpdate(ctx, tenantID, assignedID)
				if err != nil {
					return missingEntity(err, "transaction", assignedID)
				}
				assigned = tx.Entry()
				return nil
			},
		})
	}

	slices.SortFunc(targets, func(a, b lockTarget) int {
		return shared.CompareIDs(a.id, b.id)
	})
	for _, t := range targets {
		if err := t.lock(ctx); err != nil {
			return nil, ledger.ClearableEntry{}, err
		}
	}
	if selfAssigned {
		assigned = clearing.Entry()
	}
	return clearing, assigned, nil
}

// clearingState reads the live assignment sums for both sides
func (s *AssignmentService) clearingState(
	ctx context.Context,
	tenantID uuid.UUID,
	clearing *ledger.Transaction,
	assigned ledger.ClearableEntry,
) (ledger.ClearingState, error) {
	var (
		state ledger.ClearingState
		err   error
	)
	if state.AssignedCleared, err = s.assignments.SumAssignedTo(ctx, tenantID, assigned.ID, nil); err != nil {
		return state, fmt.Errorf("failed to sum assigned entry clearance: %w", err)
	}
	if state.ClearingUsed, err = s.assignments.SumAssignedBy(ctx, tenantID, clearing.ID); err != nil {
		return state, fmt.Errorf("failed to sum clearing assignments: %w", err)
	}
	if state.ClearingCleared, err = s.assignments.SumAssignedTo(ctx, tenantID, clearing.ID, nil); err != nil {
		return state, fmt.Errorf("failed to sum clearing clearance: %w", err)
	}
	state.AssignedUsed = decimal.Zero
	if assigned.Type == ledger.AssignedTypeTransaction {
		if state.AssignedUsed, err = s.assignments.SumAssignedBy(ctx, tenantID, assigned.ID); err != nil {
			return state, fmt.Errorf("failed to sum assigned entry assignments: %w", err)
		}
	}
	return state, nil
}
