package persistence

import (
	"strings"

	"github.com/openledger/backend/internal/domain/shared"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// orderClause builds a safe ORDER BY expression from a filter. The id
// column always breaks ties so pages are stable.
func orderClause(filter shared.Filter, allowedFields map[string]bool, defaultField string) string {
	field := ValidateSortField(filter.OrderBy, allowedFields, defaultField)
	order := field + " " + ValidateSortOrder(filter.OrderDir)
	if field != "id" {
		order += ", id ASC"
	}
	return order
}

// AccountSortFields contains allowed sort fields for accounts
var AccountSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"name":         true,
	"code":         true,
	"account_type": true,
	"currency":     true,
}

// TransactionSortFields contains allowed sort fields for transactions
var TransactionSortFields = map[string]bool{
	"id":               true,
	"created_at":       true,
	"updated_at":       true,
	"transaction_date": true,
	"kind":             true,
	"reference":        true,
	"amount":           true,
	"is_posted":        true,
}
