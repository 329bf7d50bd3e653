package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/openledger/backend/internal/domain/ledger"
	"github.com/openledger/backend/internal/infrastructure/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// BalanceService records opening balances brought forward
type BalanceService struct {
	balances    ledger.BalanceRepository
	accounts    ledger.AccountRepository
	assignments ledger.AssignmentRepository
	uow         ledger.UnitOfWork
}

// NewBalanceService creates a new BalanceService
func NewBalanceService(
	balances ledger.BalanceRepository,
	accounts ledger.AccountRepository,
	assignments ledger.AssignmentRepository,
	uow ledger.UnitOfWork,
) *BalanceService {
	return &BalanceService{
		balances:    balances,
		accounts:    accounts,
		assignments: assignments,
		uow:         uow,
	}
}

// Create records an opening balance on a balance sheet account
func (s *BalanceService) Create(ctx context.Context, tenantID uuid.UUID, req CreateBalanceRequest) (*BalanceResponse, error) {
	kind, err := parseTransactionKind(req.TransactionKind)
	if err != nil {
		return nil, err
	}
	balanceType := ledger.EntryType(strings.ToUpper(req.BalanceType))

	account, err := s.accounts.FindByIDForTenant(ctx, tenantID, req.AccountID)
	if err != nil {
		return nil, missingEntity(err, "account", req.AccountID)
	}

	balance, err := ledger.NewBalance(tenantID, account, kind, req.TransactionDate.UTC(), req.Amount, balanceType)
	if err != nil {
		return nil, err
	}
	balance.WithReference(req.Reference, req.Narration)

	if err := s.balances.Save(ctx, balance); err != nil {
		return nil, fmt.Errorf("failed to save balance: %w", err)
	}

	logger.L(ctx).Info("Opening balance recorded",
		zap.String("balance_id", balance.ID.String()),
		zap.String("account_id", account.ID.String()),
		zap.String("amount", balance.Amount.String()),
		zap.String("balance_type", string(balance.BalanceType)),
	)
	resp := ToBalanceResponse(balance)
	return &resp, nil
}

// Get returns one opening balance
func (s *BalanceService) Get(ctx context.Context, tenantID, id uuid.UUID) (*BalanceResponse, error) {
	balance, err := s.balances.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	resp := ToBalanceResponse(balance)
	return &resp, nil
}

// Clearance returns how much of the opening balance has been cleared
func (s *BalanceService) Clearance(ctx context.Context, tenantID, id uuid.UUID) (*ClearanceResponse, error) {
	var resp *ClearanceResponse
	err := s.uow.Read(ctx, func(ctx context.Context) error {
		balance, err := s.balances.FindByIDForTenant(ctx, tenantID, id)
		if err != nil {
			return err
		}
		cleared, err := s.assignments.SumAssignedTo(ctx, tenantID, balance.ID, nil)
		if err != nil {
			return fmt.Errorf("failed to sum cleared amount: %w", err)
		}
		c := ledger.NewClearance(balance.Amount, cleared)
		resp = &ClearanceResponse{
			ID:              balance.ID,
			Type:            string(ledger.AssignedTypeBalance),
			Amount:          c.Amount,
			ClearedAmount:   c.Cleared,
			UnclearedAmount: c.Uncleared,
			AssignedAmount:  decimal.Zero,
			Assignable:      decimal.Zero,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}
