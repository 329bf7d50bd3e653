package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation error codes
const (
	ErrCodeValidation         = "ERR_VALIDATION"
	ErrCodeValidationRequired = "ERR_VALIDATION_REQUIRED"
	ErrCodeValidationFormat   = "ERR_VALIDATION_FORMAT"
)

// Tenancy error codes
const (
	// ErrCodeUnauthorized is used when the tenant header is missing or malformed
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeForbidden    = "ERR_FORBIDDEN"
)

// Resource error codes
const (
	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeConflict            = "ERR_CONFLICT"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
	// ErrCodeDuplicateRequest is returned when an Idempotency-Key is replayed
	ErrCodeDuplicateRequest = "ERR_DUPLICATE_REQUEST"
	ErrCodeRequestTooLarge  = "ERR_REQUEST_TOO_LARGE"
)

// Ledger rule error codes
const (
	ErrCodeInvalidState              = "ERR_INVALID_STATE"
	ErrCodeInvalidAccountType        = "ERR_INVALID_ACCOUNT_TYPE"
	ErrCodeMissingLineItem           = "ERR_MISSING_LINE_ITEM"
	ErrCodeMismatchedAccount         = "ERR_MISMATCHED_ACCOUNT"
	ErrCodePostedTransaction         = "ERR_POSTED_TRANSACTION"
	ErrCodeInsufficientBalance       = "ERR_INSUFFICIENT_BALANCE"
	ErrCodeMissingEntity             = "ERR_MISSING_ENTITY"
	ErrCodeTaxNotAllowed             = "ERR_TAX_NOT_ALLOWED"
	ErrCodeUnbalancedTransaction     = "ERR_UNBALANCED_TRANSACTION"
	ErrCodeUnpostedAssignment        = "ERR_UNPOSTED_ASSIGNMENT"
	ErrCodeSelfClearance             = "ERR_SELF_CLEARANCE"
	ErrCodeInvalidClearanceEntryType = "ERR_INVALID_CLEARANCE_ENTRY_TYPE"
	ErrCodeMixedAssignment           = "ERR_MIXED_ASSIGNMENT"
	ErrCodeInvalidLineItemAccount    = "ERR_INVALID_LINE_ITEM_ACCOUNT"
	ErrCodeInvalidBalanceKind        = "ERR_INVALID_BALANCE_KIND"
	ErrCodeCreditedFixed             = "ERR_CREDITED_FIXED"
)

// Input error codes
const (
	ErrCodeBadRequest             = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput           = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON            = "ERR_INVALID_JSON"
	ErrCodeInvalidAmount          = "ERR_INVALID_AMOUNT"
	ErrCodeInvalidTransactionKind = "ERR_INVALID_TRANSACTION_KIND"
	ErrCodeInvalidAssignedType    = "ERR_INVALID_ASSIGNED_TYPE"
	ErrCodeInvalidBalanceType     = "ERR_INVALID_BALANCE_TYPE"
	ErrCodeInvalidCurrency        = "ERR_INVALID_CURRENCY"
	ErrCodeInvalidDate            = "ERR_INVALID_DATE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeValidationRequired: http.StatusBadRequest,
	ErrCodeValidationFormat:   http.StatusBadRequest,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,

	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,
	ErrCodeDuplicateRequest:    http.StatusConflict,
	ErrCodeRequestTooLarge:     http.StatusRequestEntityTooLarge,

	// Ledger rules -> 422 Unprocessable Entity, except re-posting
	ErrCodeInvalidState:              http.StatusUnprocessableEntity,
	ErrCodeInvalidAccountType:        http.StatusUnprocessableEntity,
	ErrCodeMissingLineItem:           http.StatusUnprocessableEntity,
	ErrCodeMismatchedAccount:         http.StatusUnprocessableEntity,
	ErrCodePostedTransaction:         http.StatusConflict,
	ErrCodeInsufficientBalance:       http.StatusUnprocessableEntity,
	ErrCodeMissingEntity:             http.StatusUnprocessableEntity,
	ErrCodeTaxNotAllowed:             http.StatusUnprocessableEntity,
	ErrCodeUnbalancedTransaction:     http.StatusUnprocessableEntity,
	ErrCodeUnpostedAssignment:        http.StatusUnprocessableEntity,
	ErrCodeSelfClearance:             http.StatusUnprocessableEntity,
	ErrCodeInvalidClearanceEntryType: http.StatusUnprocessableEntity,
	ErrCodeMixedAssignment:           http.StatusUnprocessableEntity,
	ErrCodeInvalidLineItemAccount:    http.StatusUnprocessableEntity,
	ErrCodeInvalidBalanceKind:        http.StatusUnprocessableEntity,
	ErrCodeCreditedFixed:             http.StatusUnprocessableEntity,

	ErrCodeBadRequest:             http.StatusBadRequest,
	ErrCodeInvalidInput:           http.StatusBadRequest,
	ErrCodeInvalidJSON:            http.StatusBadRequest,
	ErrCodeInvalidAmount:          http.StatusBadRequest,
	ErrCodeInvalidTransactionKind: http.StatusBadRequest,
	ErrCodeInvalidAssignedType:    http.StatusBadRequest,
	ErrCodeInvalidBalanceType:     http.StatusBadRequest,
	ErrCodeInvalidCurrency:        http.StatusBadRequest,
	ErrCodeInvalidDate:            http.StatusBadRequest,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to API error codes
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":            ErrCodeNotFound,
	"ALREADY_EXISTS":       ErrCodeAlreadyExists,
	"INVALID_INPUT":        ErrCodeInvalidInput,
	"INVALID_STATE":        ErrCodeInvalidState,
	"FORBIDDEN":            ErrCodeForbidden,
	"CONCURRENCY_CONFLICT": ErrCodeConcurrencyConflict,
	"INTERNAL_ERROR":       ErrCodeInternal,

	"INVALID_ACCOUNT_TYPE":         ErrCodeInvalidAccountType,
	"MISSING_LINE_ITEM":            ErrCodeMissingLineItem,
	"MISMATCHED_ACCOUNT":           ErrCodeMismatchedAccount,
	"POSTED_TRANSACTION":           ErrCodePostedTransaction,
	"INSUFFICIENT_BALANCE":         ErrCodeInsufficientBalance,
	"MISSING_ENTITY":               ErrCodeMissingEntity,
	"TAX_NOT_ALLOWED":              ErrCodeTaxNotAllowed,
	"UNBALANCED_TRANSACTION":       ErrCodeUnbalancedTransaction,
	"UNPOSTED_ASSIGNMENT":          ErrCodeUnpostedAssignment,
	"SELF_CLEARANCE":               ErrCodeSelfClearance,
	"INVALID_CLEARANCE_ENTRY_TYPE": ErrCodeInvalidClearanceEntryType,
	"MIXED_ASSIGNMENT":             ErrCodeMixedAssignment,
	"INVALID_LINE_ITEM_ACCOUNT":    ErrCodeInvalidLineItemAccount,
	"INVALID_BALANCE_TRANSACTION":  ErrCodeInvalidBalanceKind,
	"CREDITED_FIXED":               ErrCodeCreditedFixed,

	"INVALID_AMOUNT":           ErrCodeInvalidAmount,
	"INVALID_TRANSACTION_KIND": ErrCodeInvalidTransactionKind,
	"INVALID_ASSIGNED_TYPE":    ErrCodeInvalidAssignedType,
	"INVALID_BALANCE_TYPE":     ErrCodeInvalidBalanceType,
	"INVALID_CURRENCY":         ErrCodeInvalidCurrency,
	"INVALID_DATE":             ErrCodeInvalidDate,
	"INVALID_ACCOUNT":          ErrCodeInvalidInput,
	"INVALID_CODE":             ErrCodeInvalidInput,
	"INVALID_LINE_ITEM":        ErrCodeInvalidInput,
	"INVALID_NAME":             ErrCodeInvalidInput,
	"INVALID_NARRATION":        ErrCodeInvalidInput,
	"INVALID_RATE":             ErrCodeInvalidInput,
	"INVALID_TENANT":           ErrCodeInvalidInput,
}

// NormalizeErrorCode converts a domain error code to the API format.
// Codes already in the API format, or unknown ones, are returned as-is.
func NormalizeErrorCode(code string) string {
	if apiCode, ok := DomainErrorCodeMapping[code]; ok {
		return apiCode
	}
	return code
}
