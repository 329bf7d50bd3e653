// Package models holds the GORM row types of the ledger tables and their
// mapping to and from domain objects. The domain package stays free of ORM
// tags; repositories only read and write these models.
//
// Dates used in range queries are stored in UTC so comparisons behave the
// same on PostgreSQL and SQLite.
package models
