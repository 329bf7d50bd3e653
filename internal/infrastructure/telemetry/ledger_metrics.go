package telemetry

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
)

// Outcome values recorded with ledger operations
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// LedgerMetrics holds the bookkeeping instruments. A nil *LedgerMetrics
// records nothing.
type LedgerMetrics struct {
	postings           *Counter
	postingDuration    *Histogram
	postedEntries      *Counter
	assignments        *Counter
	assignedAmount     *Histogram
	removedAssignments *Counter
}

// NewLedgerMetrics creates the ledger instruments on meter
func NewLedgerMetrics(meter metric.Meter) (*LedgerMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	postings, err := NewCounter(meter, "ledger_postings_total",
		"Posting attempts by transaction kind and outcome", "{posting}")
	if err != nil {
		return nil, err
	}
	postingDuration, err := NewHistogram(meter, HistogramOpts{
		Name:        "ledger_posting_duration_seconds",
		Description: "Time to validate and post a transaction",
		Unit:        "s",
		Boundaries:  ServiceDurationBuckets,
	})
	if err != nil {
		return nil, err
	}
	postedEntries, err := NewCounter(meter, "ledger_entries_posted_total",
		"Ledger entries written by successful postings", "{entry}")
	if err != nil {
		return nil, err
	}
	assignments, err := NewCounter(meter, "ledger_assignments_total",
		"Assignment attempts by assigned type and outcome", "{assignment}")
	if err != nil {
		return nil, err
	}
	assignedAmount, err := NewHistogram(meter, HistogramOpts{
		Name:        "ledger_assigned_amount",
		Description: "Amounts cleared by successful assignments",
		Unit:        "1",
	})
	if err != nil {
		return nil, err
	}
	removed, err := NewCounter(meter, "ledger_assignments_removed_total",
		"Assignments removed", "{assignment}")
	if err != nil {
		return nil, err
	}

	return &LedgerMetrics{
		postings:           postings,
		postingDuration:    postingDuration,
		postedEntries:      postedEntries,
		assignments:        assignments,
		assignedAmount:     assignedAmount,
		removedAssignments: removed,
	}, nil
}

// RecordPosting records one posting attempt
func (m *LedgerMetrics) RecordPosting(ctx context.Context, kind, outcome string, entries int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.postings.Inc(ctx, AttrTransactionKind.String(kind), AttrOutcome.String(outcome))
	m.postingDuration.RecordDuration(ctx, elapsed, AttrTransactionKind.String(kind))
	if outcome == OutcomeSuccess {
		m.postedEntries.Add(ctx, int64(entries), AttrTransactionKind.String(kind))
	}
}

// RecordAssignment records one assignment attempt
func (m *LedgerMetrics) RecordAssignment(ctx context.Context, assignedType, outcome string, amount decimal.Decimal) {
	if m == nil {
		return
	}
	m.assignments.Inc(ctx, AttrAssignedType.String(assignedType), AttrOutcome.String(outcome))
	if outcome == OutcomeSuccess {
		m.assignedAmount.Record(ctx, amount.InexactFloat64(), AttrAssignedType.String(assignedType))
	}
}

// RecordUnassignment records a removed assignment
func (m *LedgerMetrics) RecordUnassignment(ctx context.Context, assignedType string) {
	if m == nil {
		return
	}
	m.removedAssignments.Inc(ctx, AttrAssignedType.String(assignedType))
}
