package ledger

import "slices"

// AccountType is the closed classification of an account
type AccountType string

const (
	AccountTypeNonCurrentAsset     AccountType = "NON_CURRENT_ASSET"
	AccountTypeContraAsset         AccountType = "CONTRA_ASSET"
	AccountTypeInventory           AccountType = "INVENTORY"
	AccountTypeBank                AccountType = "BANK"
	AccountTypeCurrentAsset        AccountType = "CURRENT_ASSET"
	AccountTypeReceivable          AccountType = "RECEIVABLE"
	AccountTypeNonCurrentLiability AccountType = "NON_CURRENT_LIABILITY"
	AccountTypeControl             AccountType = "CONTROL"
	AccountTypeCurrentLiability    AccountType = "CURRENT_LIABILITY"
	AccountTypePayable             AccountType = "PAYABLE"
	AccountTypeReconciliation      AccountType = "RECONCILIATION"
	AccountTypeEquity              AccountType = "EQUITY"
	AccountTypeOperatingRevenue    AccountType = "OPERATING_REVENUE"
	AccountTypeOperatingExpense    AccountType = "OPERATING_EXPENSE"
	AccountTypeNonOperatingRevenue AccountType = "NON_OPERATING_REVENUE"
	AccountTypeDirectExpense       AccountType = "DIRECT_EXPENSE"
	AccountTypeOverheadExpense     AccountType = "OVERHEAD_EXPENSE"
	AccountTypeOtherExpense        AccountType = "OTHER_EXPENSE"
)

// accountTypes is the account type universe. Complement markers are
// expanded against it on every validation.
var accountTypes = []AccountType{
	AccountTypeNonCurrentAsset,
	AccountTypeContraAsset,
	AccountTypeInventory,
	AccountTypeBank,
	AccountTypeCurrentAsset,
	AccountTypeReceivable,
	AccountTypeNonCurrentLiability,
	AccountTypeControl,
	AccountTypeCurrentLiability,
	AccountTypePayable,
	AccountTypeReconciliation,
	AccountTypeEquity,
	AccountTypeOperatingRevenue,
	AccountTypeOperatingExpense,
	AccountTypeNonOperatingRevenue,
	AccountTypeDirectExpense,
	AccountTypeOverheadExpense,
	AccountTypeOtherExpense,
}

// nonTradingTypes can never appear as trade line items. Receivables and
// payables are main accounts, CONTROL lines are only created by tax
// posting and RECONCILIATION is a suspense account.
var nonTradingTypes = []AccountType{
	AccountTypeReceivable,
	AccountTypePayable,
	AccountTypeControl,
	AccountTypeReconciliation,
}

// balanceSheetTypes can carry opening balances
var balanceSheetTypes = []AccountType{
	AccountTypeNonCurrentAsset,
	AccountTypeContraAsset,
	AccountTypeInventory,
	AccountTypeBank,
	AccountTypeCurrentAsset,
	AccountTypeReceivable,
	AccountTypeNonCurrentLiability,
	AccountTypeControl,
	AccountTypeCurrentLiability,
	AccountTypePayable,
	AccountTypeReconciliation,
	AccountTypeEquity,
}

// AllAccountTypes returns the account type universe
func AllAccountTypes() []AccountType {
	return slices.Clone(accountTypes)
}

// IsValid checks if the account type is part of the universe
func (t AccountType) IsValid() bool {
	return slices.Contains(accountTypes, t)
}

// String returns the string representation
func (t AccountType) String() string {
	return string(t)
}

// IsBalanceSheet reports whether accounts of this type appear on the balance sheet
func (t AccountType) IsBalanceSheet() bool {
	return slices.Contains(balanceSheetTypes, t)
}

// IsSchedulable reports whether an aging schedule can be produced for the type
func (t AccountType) IsSchedulable() bool {
	return t == AccountTypeReceivable || t == AccountTypePayable
}

type setMarker int

const (
	markerExplicit setMarker = iota
	markerPurchasables
	markerSellables
	markerAny
)

// AccountTypeSet is a declared set of account types. It is either an
// explicit list or a marker that is resolved against the universe when
// the set is used.
type AccountTypeSet struct {
	types  []AccountType
	marker setMarker
}

// Types declares an explicit account type set
func Types(types ...AccountType) AccountTypeSet {
	return AccountTypeSet{types: types}
}

var (
	// Purchasables are all account types a business can buy into
	Purchasables = AccountTypeSet{marker: markerPurchasables}
	// Sellables are all account types a business can sell out of
	Sellables = AccountTypeSet{marker: markerSellables}
	// AnyAccountType places no restriction on the account type
	AnyAccountType = AccountTypeSet{marker: markerAny}
)

// Expand resolves the set against the current account type universe
func (s AccountTypeSet) Expand() []AccountType {
	switch s.marker {
	case markerPurchasables, markerSellables:
		out := make([]AccountType, 0, len(accountTypes))
		for _, t := range accountTypes {
			if !slices.Contains(nonTradingTypes, t) {
				out = append(out, t)
			}
		}
		return out
	case markerAny:
		return AllAccountTypes()
	default:
		return slices.Clone(s.types)
	}
}

// Contains reports whether the account type is allowed by the set
func (s AccountTypeSet) Contains(t AccountType) bool {
	return slices.Contains(s.Expand(), t)
}

// IsUnrestricted reports whether the set allows every account type
func (s AccountTypeSet) IsUnrestricted() bool {
	return s.marker == markerAny
}
