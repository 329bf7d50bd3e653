package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/openledger/backend/internal/domain/ledger"
	"github.com/openledger/backend/internal/domain/shared"
	"github.com/openledger/backend/internal/domain/shared/valueobject"
	"github.com/openledger/backend/internal/infrastructure/logger"
	"github.com/openledger/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// AccountService handles the chart of accounts and account level reports
type AccountService struct {
	accounts     ledger.AccountRepository
	transactions ledger.TransactionRepository
	balances     ledger.BalanceRepository
	assignments  ledger.AssignmentRepository
	entries      ledger.LedgerEntryRepository
	uow          ledger.UnitOfWork
	currency     valueobject.Currency
	now          func() time.Time
}

// AccountServiceOption configures an AccountService
type AccountServiceOption func(*AccountService)

// WithDefaultCurrency sets the currency of accounts opened without one
func WithDefaultCurrency(currency valueobject.Currency) AccountServiceOption {
	return func(s *AccountService) {
		s.currency = currency
	}
}

// WithAccountClock overrides the clock used when no schedule or balance
// date is given
func WithAccountClock(now func() time.Time) AccountServiceOption {
	return func(s *AccountService) {
		s.now = now
	}
}

// NewAccountService creates a new AccountService
func NewAccountService(
	accounts ledger.AccountRepository,
	transactions ledger.TransactionRepository,
	balances ledger.BalanceRepository,
	assignments ledger.AssignmentRepository,
	entries ledger.LedgerEntryRepository,
	uow ledger.UnitOfWork,
	opts ...AccountServiceOption,
) *AccountService {
	s := &AccountService{
		accounts:     accounts,
		transactions: transactions,
		balances:     balances,
		assignments:  assignments,
		entries:      entries,
		uow:          uow,
		currency:     valueobject.DefaultCurrency,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create opens a new account
func (s *AccountService) Create(ctx context.Context, tenantID uuid.UUID, req CreateAccountRequest) (*AccountResponse, error) {
	accountType, err := parseAccountType(req.AccountType)
	if err != nil {
		return nil, err
	}
	currency := s.currency
	if req.Currency != "" {
		if currency, err = valueobject.ParseCurrency(req.Currency); err != nil {
			return nil, shared.NewDomainError("INVALID_CURRENCY", err.Error())
		}
	}

	account, err := ledger.NewAccount(tenantID, req.Name, accountType, currency)
	if err != nil {
		return nil, err
	}
	if req.Code != "" {
		account.SetCode(req.Code)
	}
	if req.Description != "" {
		account.SetDescription(req.Description)
	}

	if err := s.accounts.Save(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to save account: %w", err)
	}

	logger.L(ctx).Info("Account created",
		zap.String("account_id", account.ID.String()),
		zap.String("account_type", string(account.AccountType)),
	)
	resp := ToAccountResponse(account)
	return &resp, nil
}

// Get returns one account
func (s *AccountService) Get(ctx context.Context, tenantID, id uuid.UUID) (*AccountResponse, error) {
	account, err := s.accounts.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	resp := ToAccountResponse(account)
	return &resp, nil
}

// List returns a page of accounts
func (s *AccountService) List(ctx context.Context, tenantID uuid.UUID, req AccountListFilter) ([]AccountResponse, int64, error) {
	filter := ledger.AccountFilter{
		Filter: shared.Filter{
			Page:     req.Page,
			PageSize: req.PageSize,
			OrderBy:  req.OrderBy,
			OrderDir: req.OrderDir,
			Search:   strings.TrimSpace(req.Search),
		},
	}
	if req.AccountType != "" {
		accountType, err := parseAccountType(req.AccountType)
		if err != nil {
			return nil, 0, err
		}
		filter.AccountTypes = []ledger.AccountType{accountType}
	}

	accounts, total, err := s.accounts.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, 0, err
	}
	return ToAccountResponses(accounts), total, nil
}

// Schedule builds the aging schedule of a receivable or payable account as
// of endDate, or now when endDate is nil. Every read happens in one
// snapshot.
func (s *AccountService) Schedule(ctx context.Context, tenantID, accountID uuid.UUID, endDate *time.Time) (*ScheduleResponse, error) {
	end := s.now().UTC()
	if endDate != nil {
		end = endDate.UTC()
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "account", "schedule",
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrAccountID, accountID.String(),
	)
	defer span.End()

	var schedule *ledger.Schedule
	err := s.uow.Read(ctx, func(ctx context.Context) error {
		account, err := s.accounts.FindByIDForTenant(ctx, tenantID, accountID)
		if err != nil {
			return err
		}
		telemetry.SetAttributes(span, telemetry.SpanAttrAccountType, string(account.AccountType))

		side, err := ledger.ScheduleSide(account.AccountType)
		if err != nil {
			return err
		}

		posted := true
		txs, err := s.transactions.ListBy(ctx, tenantID, ledger.TransactionFilter{
			AccountID: &account.ID,
			Posted:    &posted,
			ToDate:    &end,
		})
		if err != nil {
			return fmt.Errorf("failed to load transactions: %w", err)
		}
		balances, err := s.balances.ListBy(ctx, tenantID, ledger.BalanceFilter{
			AccountID:   &account.ID,
			BalanceType: &side,
			ToDate:      &end,
		})
		if err != nil {
			return fmt.Errorf("failed to load balances: %w", err)
		}

		candidates := make([]ledger.ClearableEntry, 0, len(txs)+len(balances))
		ids := make([]uuid.UUID, 0, cap(candidates))
		for _, tx := range txs {
			candidates = append(candidates, tx.Entry())
			ids = append(ids, tx.ID)
		}
		for _, b := range balances {
			candidates = append(candidates, b.Entry())
			ids = append(ids, b.ID)
		}

		assignments, err := s.assignments.ListByAssigned(ctx, tenantID, ids)
		if err != nil {
			return fmt.Errorf("failed to load assignments: %w", err)
		}

		schedule, err = ledger.BuildSchedule(account, end, candidates, assignments)
		return err
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttributes(span, telemetry.SpanAttrEntryCount, len(schedule.Entries))
	resp := ToScheduleResponse(schedule)
	return &resp, nil
}

// ClosingBalance returns the debits, credits and net balance of an account
// up to asOf, or now when asOf is nil. Opening balances count on their side.
func (s *AccountService) ClosingBalance(ctx context.Context, tenantID, accountID uuid.UUID, asOf *time.Time) (*ClosingBalanceResponse, error) {
	at := s.now().UTC()
	if asOf != nil {
		at = asOf.UTC()
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "account", "closing_balance",
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrAccountID, accountID.String(),
	)
	defer span.End()

	resp := &ClosingBalanceResponse{AccountID: accountID, AsOf: at}
	err := s.uow.Read(ctx, func(ctx context.Context) error {
		if _, err := s.accounts.FindByIDForTenant(ctx, tenantID, accountID); err != nil {
			return err
		}
		debits, credits, err := s.entries.SumByAccount(ctx, tenantID, accountID, at)
		if err != nil {
			return fmt.Errorf("failed to sum ledger entries: %w", err)
		}
		balances, err := s.balances.ListBy(ctx, tenantID, ledger.BalanceFilter{
			AccountID: &accountID,
			ToDate:    &at,
		})
		if err != nil {
			return fmt.Errorf("failed to load balances: %w", err)
		}
		for _, b := range balances {
			if b.BalanceType == ledger.EntryTypeDebit {
				debits = debits.Add(b.Amount)
			} else {
				credits = credits.Add(b.Amount)
			}
		}
		resp.Debits, resp.Credits = debits, credits
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	resp.Balance = resp.Debits.Sub(resp.Credits)
	telemetry.SetAttributes(span, telemetry.SpanAttrAmount, resp.Balance.String())
	return resp, nil
}
