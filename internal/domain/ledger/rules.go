package ledger

import (
	"slices"
)

// Fragment is one composable rule constraint. A kind's rule is the
// conjunction of its fragments; a fragment may only add constraints.
type Fragment struct {
	Name  string
	Check func(rule KindRule, tx *Transaction, accounts Accounts) error
}

// KindRule is the static configuration of a transaction kind
type KindRule struct {
	Kind             TransactionKind
	MainAccountTypes AccountTypeSet
	LineItemTypes    AccountTypeSet
	Credited         bool
	NoTax            bool
	// AccountTypeMap pins the main account type per kind where several
	// kinds share a line item set but post to different main accounts.
	AccountTypeMap map[TransactionKind]AccountType
	Fragments      []Fragment
}

// Has reports whether the rule includes the named fragment
func (r KindRule) Has(name string) bool {
	return slices.ContainsFunc(r.Fragments, func(f Fragment) bool { return f.Name == name })
}

// Clearable reports whether entries of the kind can be cleared by assignments
func (r KindRule) Clearable() bool {
	return r.Has(FragmentClearing)
}

// Assigning reports whether the kind can clear other entries
func (r KindRule) Assigning() bool {
	return r.Has(FragmentAssigning)
}

// ExpectedMainType returns the main account type pinned for the kind
func (r KindRule) ExpectedMainType() (AccountType, bool) {
	t, ok := r.AccountTypeMap[r.Kind]
	return t, ok
}

// Fragment names
const (
	FragmentTrading   = "trading"
	FragmentSelling   = "selling"
	FragmentBuying    = "buying"
	FragmentSettling  = "settling"
	FragmentClearing  = "clearing"
	FragmentAssigning = "assigning"
	FragmentTaxFree   = "tax_free"
	FragmentJournal   = "journal"
)

var (
	sellingTypeMap = map[TransactionKind]AccountType{
		KindCashSale:      AccountTypeBank,
		KindClientInvoice: AccountTypeReceivable,
		KindCreditNote:    AccountTypeReceivable,
	}
	buyingTypeMap = map[TransactionKind]AccountType{
		KindCashPurchase: AccountTypeBank,
		KindSupplierBill: AccountTypePayable,
		KindDebitNote:    AccountTypePayable,
	}
	settlingTypeMap = map[TransactionKind]AccountType{
		KindClientReceipt:   AccountTypeReceivable,
		KindSupplierPayment: AccountTypePayable,
		KindContraEntry:     AccountTypeBank,
	}
)

var (
	// Trading checks the main and line item accounts against the rule's
	// declared type sets
	Trading = Fragment{Name: FragmentTrading, Check: checkTrading}
	// Selling restricts line items to revenue accounts
	Selling = Fragment{Name: FragmentSelling, Check: checkLineTypes(Types(AccountTypeOperatingRevenue))}
	// Buying restricts line items to purchasable accounts
	Buying = Fragment{Name: FragmentBuying, Check: checkLineTypes(Purchasables)}
	// Settling restricts line items to bank accounts
	Settling = Fragment{Name: FragmentSettling, Check: checkLineTypes(Types(AccountTypeBank))}
	// Clearing marks entries that can be cleared
	Clearing = Fragment{Name: FragmentClearing, Check: noCheck}
	// Assigning marks entries that can clear others
	Assigning = Fragment{Name: FragmentAssigning, Check: noCheck}
	// TaxFree rejects taxed line items
	TaxFree = Fragment{Name: FragmentTaxFree, Check: checkTaxFree}
	// Journal places no account type restrictions beyond resolvable accounts
	Journal = Fragment{Name: FragmentJournal, Check: checkJournal}
)

var kindRules = map[TransactionKind]KindRule{
	KindCashSale: {
		Kind:             KindCashSale,
		MainAccountTypes: Types(AccountTypeBank),
		LineItemTypes:    Types(AccountTypeOperatingRevenue),
		Credited:         false,
		AccountTypeMap:   sellingTypeMap,
		Fragments:        []Fragment{Trading, Selling},
	},
	KindCashPurchase: {
		Kind:             KindCashPurchase,
		MainAccountTypes: Types(AccountTypeBank),
		LineItemTypes:    Purchasables,
		Credited:         true,
		AccountTypeMap:   buyingTypeMap,
		Fragments:        []Fragment{Trading, Buying},
	},
	KindClientInvoice: {
		Kind:             KindClientInvoice,
		MainAccountTypes: Types(AccountTypeReceivable),
		LineItemTypes:    Types(AccountTypeOperatingRevenue),
		Credited:         false,
		AccountTypeMap:   sellingTypeMap,
		Fragments:        []Fragment{Trading, Selling, Clearing},
	},
	KindSupplierBill: {
		Kind:             KindSupplierBill,
		MainAccountTypes: Types(AccountTypePayable),
		LineItemTypes:    Purchasables,
		Credited:         true,
		AccountTypeMap:   buyingTypeMap,
		Fragments:        []Fragment{Trading, Buying, Clearing},
	},
	KindCreditNote: {
		Kind:             KindCreditNote,
		MainAccountTypes: Types(AccountTypeReceivable),
		LineItemTypes:    Types(AccountTypeOperatingRevenue),
		Credited:         true,
		AccountTypeMap:   sellingTypeMap,
		Fragments:        []Fragment{Trading, Selling, Assigning},
	},
	KindDebitNote: {
		Kind:             KindDebitNote,
		MainAccountTypes: Types(AccountTypePayable),
		LineItemTypes:    Purchasables,
		Credited:         false,
		AccountTypeMap:   buyingTypeMap,
		Fragments:        []Fragment{Trading, Buying, Assigning},
	},
	KindClientReceipt: {
		Kind:             KindClientReceipt,
		MainAccountTypes: Types(AccountTypeReceivable),
		LineItemTypes:    Types(AccountTypeBank),
		Credited:         true,
		AccountTypeMap:   settlingTypeMap,
		Fragments:        []Fragment{Trading, Settling, Assigning},
	},
	KindSupplierPayment: {
		Kind:             KindSupplierPayment,
		MainAccountTypes: Types(AccountTypePayable),
		LineItemTypes:    Types(AccountTypeBank),
		Credited:         false,
		AccountTypeMap:   settlingTypeMap,
		Fragments:        []Fragment{Trading, Settling, Assigning},
	},
	KindContraEntry: {
		Kind:             KindContraEntry,
		MainAccountTypes: Types(AccountTypeBank),
		LineItemTypes:    Types(AccountTypeBank),
		Credited:         false,
		NoTax:            true,
		AccountTypeMap:   settlingTypeMap,
		Fragments:        []Fragment{Trading, Settling, TaxFree},
	},
	KindJournalEntry: {
		Kind:             KindJournalEntry,
		MainAccountTypes: AnyAccountType,
		LineItemTypes:    AnyAccountType,
		Credited:         true,
		Fragments:        []Fragment{Journal, Clearing, Assigning},
	},
}

// RuleFor returns the rule configuration of a kind. Unknown kinds get an
// empty rule that rejects every account.
func RuleFor(kind TransactionKind) KindRule {
	rule, ok := kindRules[kind]
	if !ok {
		return KindRule{Kind: kind, MainAccountTypes: Types(), LineItemTypes: Types(), Fragments: []Fragment{Trading}}
	}
	return rule
}

// Validate applies the kind's rule to the transaction. It has no side
// effects and can be called any number of times.
func Validate(tx *Transaction, accounts Accounts) error {
	rule := tx.Rule()
	for _, f := range rule.Fragments {
		if err := f.Check(rule, tx, accounts); err != nil {
			return err
		}
	}
	return nil
}

func noCheck(KindRule, *Transaction, Accounts) error {
	return nil
}

func checkTrading(rule KindRule, tx *Transaction, accounts Accounts) error {
	main, err := accounts.Resolve(tx.TenantID, tx.AccountID)
	if err != nil {
		return err
	}
	if !rule.MainAccountTypes.Contains(main.AccountType) {
		return &InvalidAccountTypeError{
			Kind:        tx.Kind,
			Role:        "main",
			AccountID:   main.ID,
			AccountType: main.AccountType,
			Allowed:     rule.MainAccountTypes.Expand(),
		}
	}
	if expected, ok := rule.ExpectedMainType(); ok && main.AccountType != expected {
		return &InvalidAccountTypeError{
			Kind:        tx.Kind,
			Role:        "main",
			AccountID:   main.ID,
			AccountType: main.AccountType,
			Allowed:     []AccountType{expected},
		}
	}
	if err := checkLineTypes(rule.LineItemTypes)(rule, tx, accounts); err != nil {
		return err
	}
	for _, item := range tx.LineItems {
		if item.AccountID == tx.AccountID {
			return &InvalidLineItemAccountError{LineItemID: item.ID, AccountID: item.AccountID}
		}
	}
	return nil
}

func checkLineTypes(allowed AccountTypeSet) func(KindRule, *Transaction, Accounts) error {
	return func(_ KindRule, tx *Transaction, accounts Accounts) error {
		for _, item := range tx.LineItems {
			account, err := accounts.Resolve(tx.TenantID, item.AccountID)
			if err != nil {
				return err
			}
			if !allowed.Contains(account.AccountType) {
				return &InvalidAccountTypeError{
					Kind:        tx.Kind,
					Role:        "line item",
					AccountID:   account.ID,
					AccountType: account.AccountType,
					Allowed:     allowed.Expand(),
				}
			}
		}
		return nil
	}
}

func checkTaxFree(_ KindRule, tx *Transaction, _ Accounts) error {
	for _, item := range tx.LineItems {
		if item.IsTaxed() {
			return &TaxNotAllowedError{Kind: tx.Kind, LineItemID: item.ID}
		}
	}
	return nil
}

func checkJournal(_ KindRule, tx *Transaction, accounts Accounts) error {
	if _, err := accounts.Resolve(tx.TenantID, tx.AccountID); err != nil {
		return err
	}
	for _, item := range tx.LineItems {
		if _, err := accounts.Resolve(tx.TenantID, item.AccountID); err != nil {
			return err
		}
		if item.AccountID == tx.AccountID {
			return &InvalidLineItemAccountError{LineItemID: item.ID, AccountID: item.AccountID}
		}
	}
	return nil
}
