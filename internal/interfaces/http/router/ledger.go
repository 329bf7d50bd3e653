package router

import (
	"github.com/openledger/backend/internal/interfaces/http/handler"
)

// LedgerHandlers are the handlers behind the ledger API
type LedgerHandlers struct {
	Accounts     *handler.AccountHandler
	Taxes        *handler.TaxHandler
	Transactions *handler.TransactionHandler
	Balances     *handler.BalanceHandler
	Assignments  *handler.AssignmentHandler
	System       *handler.SystemHandler
}

// LedgerGroups builds the route groups of the ledger API
func LedgerGroups(h LedgerHandlers) []*DomainGroup {
	accounts := NewDomainGroup("accounts", "/accounts").
		POST("", h.Accounts.Create).
		GET("", h.Accounts.List).
		GET("/:id", h.Accounts.Get).
		GET("/:id/schedule", h.Accounts.Schedule).
		GET("/:id/closing-balance", h.Accounts.ClosingBalance)

	taxes := NewDomainGroup("taxes", "/taxes").
		POST("", h.Taxes.Create).
		GET("", h.Taxes.List)

	transactions := NewDomainGroup("transactions", "/transactions").
		POST("", h.Transactions.Create).
		GET("", h.Transactions.List).
		GET("/:id", h.Transactions.Get).
		POST("/:id/post", h.Transactions.Post).
		GET("/:id/clearance", h.Transactions.Clearance).
		GET("/:id/assignments", h.Transactions.Assignments)
	transactions.Group("line-items", "/:id/line-items").
		POST("", h.Transactions.AddLineItem).
		DELETE("/:lineItemId", h.Transactions.RemoveLineItem)

	balances := NewDomainGroup("balances", "/balances").
		POST("", h.Balances.Create).
		GET("/:id", h.Balances.Get).
		GET("/:id/clearance", h.Balances.Clearance)

	assignments := NewDomainGroup("assignments", "/assignments").
		POST("", h.Assignments.Assign).
		DELETE("/:id", h.Assignments.Unassign)

	system := NewDomainGroup("system", "/system").
		GET("/info", h.System.GetSystemInfo).
		GET("/ping", h.System.Ping)

	return []*DomainGroup{accounts, taxes, transactions, balances, assignments, system}
}
