package ledger

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/openledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

const day = 24 * time.Hour

// ScheduleEntry is one outstanding document of an aging schedule
type ScheduleEntry struct {
	ID              uuid.UUID
	Type            AssignedType
	Kind            TransactionKind
	Reference       string
	Narration       string
	TransactionDate time.Time
	Amount          decimal.Decimal
	ClearedAmount   decimal.Decimal
	UnclearedAmount decimal.Decimal
	Age             int
}

// Schedule is an aging report of a receivable or payable account
type Schedule struct {
	AccountID       uuid.UUID
	AccountType     AccountType
	EndDate         time.Time
	Entries         []ScheduleEntry
	TotalAmount     decimal.Decimal
	ClearedAmount   decimal.Decimal
	UnclearedAmount decimal.Decimal
}

// ScheduleSide returns the side on which clearable entries of the account
// type increase the outstanding balance
func ScheduleSide(t AccountType) (EntryType, error) {
	switch t {
	case AccountTypeReceivable:
		return EntryTypeDebit, nil
	case AccountTypePayable:
		return EntryTypeCredit, nil
	default:
		return "", &InvalidAccountTypeError{
			Role:        "schedule",
			AccountType: t,
			Allowed:     []AccountType{AccountTypeReceivable, AccountTypePayable},
		}
	}
}

// BuildSchedule computes the aging schedule of the account as of endDate
// from the candidate entries and every assignment made against them.
// Entries on the wrong side, unposted, not clearable or dated after
// endDate are skipped; assignments dated after endDate are ignored.
func BuildSchedule(account *Account, endDate time.Time, candidates []ClearableEntry, assignments []*Assignment) (*Schedule, error) {
	side, err := ScheduleSide(account.AccountType)
	if err != nil {
		if typeErr, ok := err.(*InvalidAccountTypeError); ok {
			typeErr.AccountID = account.ID
		}
		return nil, err
	}

	cleared := make(map[uuid.UUID]decimal.Decimal)
	for _, a := range assignments {
		if a.TenantID != account.TenantID || a.AssignmentDate.After(endDate) {
			continue
		}
		cleared[a.AssignedID] = cleared[a.AssignedID].Add(a.Amount)
	}

	entries := make([]ClearableEntry, 0, len(candidates))
	for _, c := range candidates {
		if c.TenantID != account.TenantID || c.AccountID != account.ID {
			continue
		}
		if !c.Posted || !c.Clearable() || c.Side != side || c.TransactionDate.After(endDate) {
			continue
		}
		entries = append(entries, c)
	}
	slices.SortStableFunc(entries, func(a, b ClearableEntry) int {
		if c := a.TransactionDate.Compare(b.TransactionDate); c != 0 {
			return c
		}
		return shared.CompareIDs(a.ID, b.ID)
	})

	schedule := &Schedule{
		AccountID:       account.ID,
		AccountType:     account.AccountType,
		EndDate:         endDate,
		Entries:         make([]ScheduleEntry, 0, len(entries)),
		TotalAmount:     decimal.Zero,
		ClearedAmount:   decimal.Zero,
		UnclearedAmount: decimal.Zero,
	}
	for _, e := range entries {
		c := cleared[e.ID]
		row := ScheduleEntry{
			ID:              e.ID,
			Type:            e.Type,
			Kind:            e.Kind,
			Reference:       e.Reference,
			Narration:       e.Narration,
			TransactionDate: e.TransactionDate,
			Amount:          e.Amount,
			ClearedAmount:   c,
			UnclearedAmount: e.Amount.Sub(c),
			Age:             int(endDate.Sub(e.TransactionDate) / day),
		}
		schedule.Entries = append(schedule.Entries, row)
		schedule.TotalAmount = schedule.TotalAmount.Add(row.Amount)
		schedule.ClearedAmount = schedule.ClearedAmount.Add(row.ClearedAmount)
		schedule.UnclearedAmount = schedule.UnclearedAmount.Add(row.UnclearedAmount)
	}
	return schedule, nil
}
