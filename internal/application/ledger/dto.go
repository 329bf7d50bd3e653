package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/openledger/backend/internal/domain/ledger"
	"github.com/shopspring/decimal"
)

// ===================== Request DTOs =====================

// CreateAccountRequest represents a request to open a ledger account
// @Description Create account request
type CreateAccountRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=200" example:"Trade Debtors"`
	Code        string `json:"code" binding:"max=50" example:"1200"`
	AccountType string `json:"account_type" binding:"required" example:"RECEIVABLE"`
	Currency    string `json:"currency" binding:"omitempty,len=3" example:"USD"`
	Description string `json:"description" binding:"max=2000"`
}

// AccountListFilter represents account list query parameters
type AccountListFilter struct {
	Search      string `form:"search"`
	AccountType string `form:"account_type"`
	Page        int    `form:"page" binding:"omitempty,min=1"`
	PageSize    int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy     string `form:"order_by"`
	OrderDir    string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// CreateTaxRequest represents a request to define a tax
// @Description Create tax request
type CreateTaxRequest struct {
	Name      string          `json:"name" binding:"required,min=1,max=100" example:"Value Added Tax"`
	Code      string          `json:"code" binding:"required,min=1,max=20" example:"VAT"`
	Rate      decimal.Decimal `json:"rate" binding:"required" example:"16"`
	AccountID uuid.UUID       `json:"account_id" binding:"required"`
}

// LineItemRequest describes a line item to attach to a transaction
// @Description Line item request
type LineItemRequest struct {
	AccountID uuid.UUID        `json:"account_id" binding:"required"`
	Narration string           `json:"narration" binding:"max=500" example:"Consulting services"`
	Amount    decimal.Decimal  `json:"amount" binding:"required" example:"100.00"`
	Quantity  *decimal.Decimal `json:"quantity" example:"1"`
	TaxID     *uuid.UUID       `json:"tax_id"`
}

// CreateTransactionRequest represents a request to draft a transaction
// @Description Create transaction request
type CreateTransactionRequest struct {
	Kind            string            `json:"kind" binding:"required" example:"CLIENT_INVOICE"`
	AccountID       uuid.UUID         `json:"account_id" binding:"required"`
	TransactionDate time.Time         `json:"transaction_date" binding:"required"`
	Narration       string            `json:"narration" binding:"required,min=1,max=500" example:"Invoice for March services"`
	Reference       string            `json:"reference" binding:"max=100" example:"INV-0001"`
	Credited        *bool             `json:"credited"`
	LineItems       []LineItemRequest `json:"line_items" binding:"omitempty,dive"`
}

// TransactionListFilter represents transaction list query parameters
type TransactionListFilter struct {
	Search    string     `form:"search"`
	AccountID *uuid.UUID `form:"account_id"`
	Kind      string     `form:"kind"`
	Posted    *bool      `form:"posted"`
	FromDate  *time.Time `form:"from_date" time_format:"2006-01-02"`
	ToDate    *time.Time `form:"to_date" time_format:"2006-01-02"`
	Page      int        `form:"page" binding:"omitempty,min=1"`
	PageSize  int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy   string     `form:"order_by"`
	OrderDir  string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// CreateBalanceRequest represents a request to bring forward an opening balance
// @Description Create opening balance request
type CreateBalanceRequest struct {
	AccountID       uuid.UUID       `json:"account_id" binding:"required"`
	TransactionKind string          `json:"transaction_kind" binding:"required" example:"CLIENT_INVOICE"`
	TransactionDate time.Time       `json:"transaction_date" binding:"required"`
	Amount          decimal.Decimal `json:"amount" binding:"required" example:"250.00"`
	BalanceType     string          `json:"balance_type" binding:"required,oneof=DEBIT CREDIT" example:"DEBIT"`
	Reference       string          `json:"reference" binding:"max=100" example:"OB-0001"`
	Narration       string          `json:"narration" binding:"max=500"`
}

// AssignRequest represents a request to clear an entry with a clearing transaction
// @Description Assignment request
type AssignRequest struct {
	TransactionID  uuid.UUID       `json:"transaction_id" binding:"required"`
	AssignedID     uuid.UUID       `json:"assigned_id" binding:"required"`
	AssignedType   string          `json:"assigned_type" binding:"required,oneof=TRANSACTION BALANCE" example:"TRANSACTION"`
	Amount         decimal.Decimal `json:"amount" binding:"required" example:"45.00"`
	AssignmentDate *time.Time      `json:"assignment_date"`
}

// ===================== Response DTOs =====================

// AccountResponse represents an account in API responses
// @Description Ledger account response
type AccountResponse struct {
	ID          uuid.UUID `json:"id"`
	TenantID    uuid.UUID `json:"tenant_id"`
	Name        string    `json:"name" example:"Trade Debtors"`
	Code        string    `json:"code" example:"1200"`
	AccountType string    `json:"account_type" example:"RECEIVABLE"`
	Currency    string    `json:"currency" example:"USD"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TaxResponse represents a tax in API responses
// @Description Tax response
type TaxResponse struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Code      string          `json:"code" example:"VAT"`
	Rate      decimal.Decimal `json:"rate" example:"16"`
	AccountID uuid.UUID       `json:"account_id"`
	CreatedAt time.Time       `json:"created_at"`
}

// LineItemResponse represents a line item in API responses
// @Description Line item response
type LineItemResponse struct {
	ID        uuid.UUID       `json:"id"`
	AccountID uuid.UUID       `json:"account_id"`
	Narration string          `json:"narration"`
	Quantity  decimal.Decimal `json:"quantity"`
	Amount    decimal.Decimal `json:"amount" example:"100.00"`
	TaxID     *uuid.UUID      `json:"tax_id,omitempty"`
}

// TransactionResponse represents a transaction in API responses
// @Description Transaction response
type TransactionResponse struct {
	ID              uuid.UUID          `json:"id"`
	TenantID        uuid.UUID          `json:"tenant_id"`
	Kind            string             `json:"kind" example:"CLIENT_INVOICE"`
	AccountID       uuid.UUID          `json:"account_id"`
	TransactionDate time.Time          `json:"transaction_date"`
	Narration       string             `json:"narration"`
	Reference       string             `json:"reference"`
	Credited        bool               `json:"credited"`
	IsPosted        bool               `json:"is_posted"`
	Amount          decimal.Decimal    `json:"amount" example:"116.00"`
	LineItemTotal   decimal.Decimal    `json:"line_item_total" example:"100.00"`
	PostedAt        *time.Time         `json:"posted_at,omitempty"`
	LineItems       []LineItemResponse `json:"line_items"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
	Version         int                `json:"version" example:"1"`
}

// LedgerEntryResponse represents one posted ledger entry
// @Description Ledger entry response
type LedgerEntryResponse struct {
	ID         uuid.UUID       `json:"id"`
	AccountID  uuid.UUID       `json:"account_id"`
	LineItemID *uuid.UUID      `json:"line_item_id,omitempty"`
	TaxID      *uuid.UUID      `json:"tax_id,omitempty"`
	EntryType  string          `json:"entry_type" example:"DEBIT"`
	Amount     decimal.Decimal `json:"amount" example:"116.00"`
}

// PostingResponse represents the outcome of posting a transaction
// @Description Posting result with the written ledger entries
type PostingResponse struct {
	Transaction TransactionResponse   `json:"transaction"`
	Entries     []LedgerEntryResponse `json:"entries"`
	Total       decimal.Decimal       `json:"total" example:"116.00"`
}

// BalanceResponse represents an opening balance in API responses
// @Description Opening balance response
type BalanceResponse struct {
	ID              uuid.UUID       `json:"id"`
	AccountID       uuid.UUID       `json:"account_id"`
	TransactionKind string          `json:"transaction_kind"`
	TransactionDate time.Time       `json:"transaction_date"`
	Reference       string          `json:"reference"`
	Narration       string          `json:"narration"`
	Amount          decimal.Decimal `json:"amount" example:"250.00"`
	BalanceType     string          `json:"balance_type" example:"DEBIT"`
	CreatedAt       time.Time       `json:"created_at"`
}

// AssignmentResponse represents an assignment in API responses
// @Description Assignment response
type AssignmentResponse struct {
	ID             uuid.UUID       `json:"id"`
	TransactionID  uuid.UUID       `json:"transaction_id"`
	AccountID      uuid.UUID       `json:"account_id"`
	AssignedID     uuid.UUID       `json:"assigned_id"`
	AssignedType   string          `json:"assigned_type" example:"TRANSACTION"`
	Amount         decimal.Decimal `json:"amount" example:"45.00"`
	AssignmentDate time.Time       `json:"assignment_date"`
}

// ClearanceResponse is the settlement state of a transaction or balance.
// Assigned and Assignable are only meaningful for clearing transactions.
// @Description Clearance state of a transaction or opening balance
type ClearanceResponse struct {
	ID              uuid.UUID       `json:"id"`
	Type            string          `json:"type" example:"TRANSACTION"`
	Amount          decimal.Decimal `json:"amount" example:"116.00"`
	ClearedAmount   decimal.Decimal `json:"cleared_amount" example:"45.00"`
	UnclearedAmount decimal.Decimal `json:"uncleared_amount" example:"71.00"`
	AssignedAmount  decimal.Decimal `json:"assigned_amount"`
	Assignable      decimal.Decimal `json:"assignable_amount"`
}

// ScheduleEntryResponse is one row of an aging schedule
// @Description Aging schedule entry
type ScheduleEntryResponse struct {
	ID              uuid.UUID       `json:"id"`
	Type            string          `json:"type" example:"TRANSACTION"`
	Kind            string          `json:"kind"`
	Reference       string          `json:"reference"`
	Narration       string          `json:"narration"`
	TransactionDate time.Time       `json:"transaction_date"`
	Amount          decimal.Decimal `json:"amount"`
	ClearedAmount   decimal.Decimal `json:"cleared_amount"`
	UnclearedAmount decimal.Decimal `json:"uncleared_amount" example:"71.00"`
	Age             int             `json:"age" example:"30"`
}

// ScheduleResponse is an aging schedule of a receivable or payable account
// @Description Aging schedule response
type ScheduleResponse struct {
	AccountID       uuid.UUID               `json:"account_id"`
	AccountType     string                  `json:"account_type" example:"RECEIVABLE"`
	EndDate         time.Time               `json:"end_date"`
	Entries         []ScheduleEntryResponse `json:"entries"`
	TotalAmount     decimal.Decimal         `json:"total_amount"`
	ClearedAmount   decimal.Decimal         `json:"cleared_amount"`
	UnclearedAmount decimal.Decimal         `json:"uncleared_amount" example:"71.00"`
}

// ClosingBalanceResponse is the balance of an account as of a date.
// Balance is debits minus credits.
// @Description Closing balance response
type ClosingBalanceResponse struct {
	AccountID uuid.UUID       `json:"account_id"`
	AsOf      time.Time       `json:"as_of"`
	Debits    decimal.Decimal `json:"debits"`
	Credits   decimal.Decimal `json:"credits"`
	Balance   decimal.Decimal `json:"balance" example:"71.00"`
}

// ===================== Converters =====================

// ToAccountResponse converts a domain account to its response DTO
func ToAccountResponse(a *ledger.Account) AccountResponse {
	return AccountResponse{
		ID:          a.ID,
		TenantID:    a.TenantID,
		Name:        a.Name,
		Code:        a.Code,
		AccountType: string(a.AccountType),
		Currency:    a.Currency.String(),
		Description: a.Description,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

// ToAccountResponses converts a slice of accounts
func ToAccountResponses(accounts []*ledger.Account) []AccountResponse {
	out := make([]AccountResponse, len(accounts))
	for i, a := range accounts {
		out[i] = ToAccountResponse(a)
	}
	return out
}

// ToTaxResponse converts a domain tax to its response DTO
func ToTaxResponse(t *ledger.Tax) TaxResponse {
	return TaxResponse{
		ID:        t.ID,
		Name:      t.Name,
		Code:      t.Code,
		Rate:      t.Rate,
		AccountID: t.AccountID,
		CreatedAt: t.CreatedAt,
	}
}

// ToTransactionResponse converts a domain transaction to its response DTO
func ToTransactionResponse(tx *ledger.Transaction) TransactionResponse {
	items := make([]LineItemResponse, len(tx.LineItems))
	for i, item := range tx.LineItems {
		items[i] = LineItemResponse{
			ID:        item.ID,
			AccountID: item.AccountID,
			Narration: item.Narration,
			Quantity:  item.Quantity,
			Amount:    item.Amount,
			TaxID:     item.TaxID,
		}
	}
	return TransactionResponse{
		ID:              tx.ID,
		TenantID:        tx.TenantID,
		Kind:            string(tx.Kind),
		AccountID:       tx.AccountID,
		TransactionDate: tx.TransactionDate,
		Narration:       tx.Narration,
		Reference:       tx.Reference,
		Credited:        tx.IsCredited(),
		IsPosted:        tx.IsPosted,
		Amount:          tx.Amount,
		LineItemTotal:   tx.LineItemTotal(),
		PostedAt:        tx.PostedAt,
		LineItems:       items,
		CreatedAt:       tx.CreatedAt,
		UpdatedAt:       tx.UpdatedAt,
		Version:         tx.Version,
	}
}

// ToTransactionResponses converts a slice of transactions
func ToTransactionResponses(txs []*ledger.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, len(txs))
	for i, tx := range txs {
		out[i] = ToTransactionResponse(tx)
	}
	return out
}

// ToPostingResponse converts a posting result
func ToPostingResponse(p *ledger.Posting) PostingResponse {
	entries := make([]LedgerEntryResponse, len(p.Entries))
	for i, e := range p.Entries {
		entries[i] = LedgerEntryResponse{
			ID:         e.ID,
			AccountID:  e.AccountID,
			LineItemID: e.LineItemID,
			TaxID:      e.TaxID,
			EntryType:  string(e.EntryType),
			Amount:     e.Amount,
		}
	}
	return PostingResponse{
		Transaction: ToTransactionResponse(p.Transaction),
		Entries:     entries,
		Total:       p.Total,
	}
}

// ToBalanceResponse converts an opening balance
func ToBalanceResponse(b *ledger.Balance) BalanceResponse {
	return BalanceResponse{
		ID:              b.ID,
		AccountID:       b.AccountID,
		TransactionKind: string(b.TransactionKind),
		TransactionDate: b.TransactionDate,
		Reference:       b.Reference,
		Narration:       b.Narration,
		Amount:          b.Amount,
		BalanceType:     string(b.BalanceType),
		CreatedAt:       b.CreatedAt,
	}
}

// ToAssignmentResponse converts an assignment
func ToAssignmentResponse(a *ledger.Assignment) AssignmentResponse {
	return AssignmentResponse{
		ID:             a.ID,
		TransactionID:  a.TransactionID,
		AccountID:      a.AccountID,
		AssignedID:     a.AssignedID,
		AssignedType:   string(a.AssignedType),
		Amount:         a.Amount,
		AssignmentDate: a.AssignmentDate,
	}
}

// ToAssignmentResponses converts a slice of assignments
func ToAssignmentResponses(assignments []*ledger.Assignment) []AssignmentResponse {
	out := make([]AssignmentResponse, len(assignments))
	for i, a := range assignments {
		out[i] = ToAssignmentResponse(a)
	}
	return out
}

// ToScheduleResponse converts an aging schedule
func ToScheduleResponse(s *ledger.Schedule) ScheduleResponse {
	entries := make([]ScheduleEntryResponse, len(s.Entries))
	for i, e := range s.Entries {
		entries[i] = ScheduleEntryResponse{
			ID:              e.ID,
			Type:            string(e.Type),
			Kind:            string(e.Kind),
			Reference:       e.Reference,
			Narration:       e.Narration,
			TransactionDate: e.TransactionDate,
			Amount:          e.Amount,
			ClearedAmount:   e.ClearedAmount,
			UnclearedAmount: e.UnclearedAmount,
			Age:             e.Age,
		}
	}
	return ScheduleResponse{
		AccountID:       s.AccountID,
		AccountType:     string(s.AccountType),
		EndDate:         s.EndDate,
		Entries:         entries,
		TotalAmount:     s.TotalAmount,
		ClearedAmount:   s.ClearedAmount,
		UnclearedAmount: s.UnclearedAmount,
	}
}
