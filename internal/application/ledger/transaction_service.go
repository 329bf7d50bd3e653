package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/openledger/backend/internal/domain/ledger"
	"github.com/openledger/backend/internal/domain/shared"
	"github.com/openledger/backend/internal/infrastructure/logger"
	"github.com/openledger/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// TransactionService drafts, edits and posts transactions
type TransactionService struct {
	transactions ledger.TransactionRepository
	accounts     ledger.AccountRepository
	taxes        ledger.TaxRepository
	entries      ledger.LedgerEntryRepository
	assignments  ledger.AssignmentRepository
	uow          ledger.UnitOfWork
	posting      *ledger.PostingService
	publisher    shared.EventPublisher
	metrics      *telemetry.LedgerMetrics
}

// TransactionServiceOption configures a TransactionService
type TransactionServiceOption func(*TransactionService)

// WithTransactionEvents publishes TransactionPosted events after commit
func WithTransactionEvents(publisher shared.EventPublisher) TransactionServiceOption {
	return func(s *TransactionService) {
		s.publisher = publisher
	}
}

// WithPostingMetrics records posting counters and durations
func WithPostingMetrics(metrics *telemetry.LedgerMetrics) TransactionServiceOption {
	return func(s *TransactionService) {
		s.metrics = metrics
	}
}

// WithPostingService replaces the domain posting service, e.g. to pin its clock
func WithPostingService(posting *ledger.PostingService) TransactionServiceOption {
	return func(s *TransactionService) {
		s.posting = posting
	}
}

// NewTransactionService creates a new TransactionService
func NewTransactionService(
	transactions ledger.TransactionRepository,
	accounts ledger.AccountRepository,
	taxes ledger.TaxRepository,
	entries ledger.LedgerEntryRepository,
	assignments ledger.AssignmentRepository,
	uow ledger.UnitOfWork,
	opts ...TransactionServiceOption,
) *TransactionService {
	s := &TransactionService{
		transactions: transactions,
		accounts:     accounts,
		taxes:        taxes,
		entries:      entries,
		assignments:  assignments,
		uow:          uow,
		posting:      ledger.NewPostingService(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create drafts an unposted transaction with optional line items. The
// draft is validated against its kind's rule before it is stored.
func (s *TransactionService) Create(ctx context.Context, tenantID uuid.UUID, req CreateTransactionRequest) (*TransactionResponse, error) {
	kind, err := parseTransactionKind(req.Kind)
	if err != nil {
		return nil, err
	}

	tx, err := ledger.NewTransaction(tenantID, kind, req.AccountID, req.TransactionDate.UTC(), req.Narration)
	if err != nil {
		return nil, err
	}
	if req.Credited != nil && *req.Credited != tx.IsCredited() {
		if err := tx.SetCredited(*req.Credited); err != nil {
			return nil, err
		}
	}
	if req.Reference != "" {
		if err := tx.SetReference(req.Reference); err != nil {
			return nil, err
		}
	}

	err = s.uow.Do(ctx, func(ctx context.Context) error {
		for _, item := range req.LineItems {
			if _, err := s.addLineItem(ctx, tx, item); err != nil {
				return err
			}
		}
		if err := s.validate(ctx, tx); err != nil {
			return err
		}
		if err := s.transactions.Save(ctx, tx); err != nil {
			return fmt.Errorf("failed to save transaction: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.L(ctx).Info("Transaction drafted",
		zap.String("transaction_id", tx.ID.String()),
		zap.String("kind", string(tx.Kind)),
		zap.Int("line_items", len(tx.LineItems)),
	)
	resp := ToTransactionResponse(tx)
	return &resp, nil
}

// Get returns one transaction with its line items
func (s *TransactionService) Get(ctx context.Context, tenantID, id uuid.UUID) (*TransactionResponse, error) {
	tx, err := s.transactions.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	resp := ToTransactionResponse(tx)
	return &resp, nil
}

// List returns a page of transactions
func (s *TransactionService) List(ctx context.Context, tenantID uuid.UUID, req TransactionListFilter) ([]TransactionResponse, int64, error) {
	filter := ledger.TransactionFilter{
		Filter: shared.Filter{
			Page:     req.Page,
			PageSize: req.PageSize,
			OrderBy:  req.OrderBy,
			OrderDir: req.OrderDir,
			Search:   strings.TrimSpace(req.Search),
		},
		AccountID: req.AccountID,
		Posted:    req.Posted,
		FromDate:  req.FromDate,
		ToDate:    req.ToDate,
	}
	if req.Kind != "" {
		kind, err := parseTransactionKind(req.Kind)
		if err != nil {
			return nil, 0, err
		}
		filter.Kinds = []ledger.TransactionKind{kind}
	}

	txs, total, err := s.transactions.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, 0, err
	}
	return ToTransactionResponses(txs), total, nil
}

// AddLineItem attaches a line item to an unposted transaction
func (s *TransactionService) AddLineItem(ctx context.Context, tenantID, transactionID uuid.UUID, req LineItemRequest) (*TransactionResponse, error) {
	var tx *ledger.Transaction
	err := s.uow.Do(ctx, func(ctx context.Context) error {
		var err error
		tx, err = s.transactions.FindByIDForUpdate(ctx, tenantID, transactionID)
		if err != nil {
			return err
		}
		if _, err := s.addLineItem(ctx, tx, req); err != nil {
			return err
		}
		if err := s.validate(ctx, tx); err != nil {
			return err
		}
		return s.transactions.Save(ctx, tx)
	})
	if err != nil {
		return nil, err
	}
	resp := ToTransactionResponse(tx)
	return &resp, nil
}

// RemoveLineItem detaches a line item from an unposted transaction
func (s *TransactionService) RemoveLineItem(ctx context.Context, tenantID, transactionID, lineItemID uuid.UUID) (*TransactionResponse, error) {
	var tx *ledger.Transaction
	err := s.uow.Do(ctx, func(ctx context.Context) error {
		var err error
		tx, err = s.transactions.FindByIDForUpdate(ctx, tenantID, transactionID)
		if err != nil {
			return err
		}
		if err := tx.RemoveLineItem(lineItemID); err != nil {
			return err
		}
		return s.transactions.Save(ctx, tx)
	})
	if err != nil {
		return nil, err
	}
	resp := ToTransactionResponse(tx)
	return &resp, nil
}

// Post validates the transaction and writes its balanced ledger entries.
// The transaction row stays locked until the entries and the posted flag
// are committed together.
func (s *TransactionService) Post(ctx context.Context, tenantID, transactionID uuid.UUID) (*PostingResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "transaction", "post",
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrTransactionID, transactionID.String(),
	)
	defer span.End()

	start := time.Now()
	var (
		tx      *ledger.Transaction
		posting *ledger.Posting
	)
	err := s.uow.Do(ctx, func(ctx context.Context) error {
		var err error
		tx, err = s.transactions.FindByIDForUpdate(ctx, tenantID, transactionID)
		if err != nil {
			return err
		}
		telemetry.SetAttributes(span, telemetry.SpanAttrTransactionKind, string(tx.Kind))

		accounts, taxes, err := s.resolve(ctx, tx)
		if err != nil {
			return err
		}
		posting, err = s.posting.Post(tx, accounts, taxes)
		if err != nil {
			return err
		}
		if err := s.entries.InsertBatch(ctx, posting.Entries); err != nil {
			return fmt.Errorf("failed to write ledger entries: %w", err)
		}
		if err := s.transactions.Save(ctx, tx); err != nil {
			return fmt.Errorf("failed to save transaction: %w", err)
		}
		return nil
	})

	kind := ""
	if tx != nil {
		kind = string(tx.Kind)
	}
	if err != nil {
		telemetry.RecordError(span, err)
		s.metrics.RecordPosting(ctx, kind, outcomeOf(err), 0, time.Since(start))
		logger.L(ctx).Warn("Transaction posting failed",
			zap.String("transaction_id", transactionID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	s.metrics.RecordPosting(ctx, kind, telemetry.OutcomeSuccess, len(posting.Entries), time.Since(start))
	telemetry.SetAttributes(span,
		telemetry.SpanAttrEntryCount, len(posting.Entries),
		telemetry.SpanAttrAmount, posting.Total.String(),
	)
	logger.L(ctx).Info("Transaction posted",
		zap.String("transaction_id", tx.ID.String()),
		zap.String("kind", kind),
		zap.String("amount", posting.Total.String()),
		zap.Int("entries", len(posting.Entries)),
	)
	publishEvents(ctx, s.publisher, tx)

	resp := ToPostingResponse(posting)
	return &resp, nil
}

// Clearance returns how much of the transaction has been cleared and, for
// clearing kinds, how much of it has been assigned to other entries
func (s *TransactionService) Clearance(ctx context.Context, tenantID, transactionID uuid.UUID) (*ClearanceResponse, error) {
	var resp *ClearanceResponse
	err := s.uow.Read(ctx, func(ctx context.Context) error {
		tx, err := s.transactions.FindByIDForTenant(ctx, tenantID, transactionID)
		if err != nil {
			return err
		}
		cleared, err := s.assignments.SumAssignedTo(ctx, tenantID, tx.ID, nil)
		if err != nil {
			return fmt.Errorf("failed to sum cleared amount: %w", err)
		}
		assigned, err := s.assignments.SumAssignedBy(ctx, tenantID, tx.ID)
		if err != nil {
			return fmt.Errorf("failed to sum assigned amount: %w", err)
		}

		c := ledger.NewClearance(tx.Amount, cleared)
		resp = &ClearanceResponse{
			ID:              tx.ID,
			Type:            string(ledger.AssignedTypeTransaction),
			Amount:          c.Amount,
			ClearedAmount:   c.Cleared,
			UnclearedAmount: c.Uncleared,
			AssignedAmount:  assigned,
			Assignable:      decimal.Zero,
		}
		if tx.Rule().Assigning() {
			resp.Assignable = tx.Amount.Sub(assigned)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// Assignments lists the assignments made by a clearing transaction
func (s *TransactionService) Assignments(ctx context.Context, tenantID, transactionID uuid.UUID) ([]AssignmentResponse, error) {
	var assignments []*ledger.Assignment
	err := s.uow.Read(ctx, func(ctx context.Context) error {
		if _, err := s.transactions.FindByIDForTenant(ctx, tenantID, transactionID); err != nil {
			return err
		}
		var err error
		assignments, err = s.assignments.ListByTransaction(ctx, tenantID, transactionID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ToAssignmentResponses(assignments), nil
}

func (s *TransactionService) addLineItem(ctx context.Context, tx *ledger.Transaction, req LineItemRequest) (*ledger.LineItem, error) {
	item, err := ledger.NewLineItem(tx.TenantID, req.AccountID, strings.TrimSpace(req.Narration), req.Amount)
	if err != nil {
		return nil, err
	}
	if req.Quantity != nil {
		if err := item.WithQuantity(*req.Quantity); err != nil {
			return nil, err
		}
	}
	if req.TaxID != nil && *req.TaxID != uuid.Nil {
		if _, err := s.taxes.FindByIDForTenant(ctx, tx.TenantID, *req.TaxID); err != nil {
			return nil, missingEntity(err, "tax", *req.TaxID)
		}
		item.WithTax(*req.TaxID)
	}
	if err := tx.AddLineItem(item); err != nil {
		return nil, err
	}
	return item, nil
}

// validate checks the transaction against its kind's rule using the
// accounts it references
func (s *TransactionService) validate(ctx context.Context, tx *ledger.Transaction) error {
	accounts, _, err := s.resolve(ctx, tx)
	if err != nil {
		return err
	}
	return ledger.Validate(tx, accounts)
}

// resolve loads every account and tax a posting of tx touches
func (s *TransactionService) resolve(ctx context.Context, tx *ledger.Transaction) (ledger.Accounts, *ledger.RateTaxCalculator, error) {
	taxes, err := s.taxes.FindByIDs(ctx, tx.TenantID, tx.TaxIDs())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load taxes: %w", err)
	}
	ids := tx.AccountIDs()
	for _, t := range taxes {
		ids = append(ids, t.AccountID)
	}
	accounts, err := s.accounts.FindByIDs(ctx, tx.TenantID, ids)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load accounts: %w", err)
	}
	return ledger.NewAccounts(accounts...), ledger.NewRateTaxCalculator(taxes...), nil
}
