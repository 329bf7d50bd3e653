package telemetry

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"
)

type queryStartKey struct{ scope string }

// registerAround registers before and after callbacks on every gorm
// processor. after receives the SQL verb of the processor; row and raw
// statements report an empty verb.
func registerAround(db *gorm.DB, scope string, before func(*gorm.DB), after func(verb string) func(*gorm.DB)) error {
	cb := db.Callback()
	registrations := []func() error{
		func() error { return cb.Create().Before("gorm:create").Register(scope+":before_create", before) },
		func() error { return cb.Query().Before("gorm:query").Register(scope+":before_query", before) },
		func() error { return cb.Update().Before("gorm:update").Register(scope+":before_update", before) },
		func() error { return cb.Delete().Before("gorm:delete").Register(scope+":before_delete", before) },
		func() error { return cb.Row().Before("gorm:row").Register(scope+":before_row", before) },
		func() error { return cb.Raw().Before("gorm:raw").Register(scope+":before_raw", before) },
		func() error { return cb.Create().After("gorm:create").Register(scope+":after_create", after("INSERT")) },
		func() error { return cb.Query().After("gorm:query").Register(scope+":after_query", after("SELECT")) },
		func() error { return cb.Update().After("gorm:update").Register(scope+":after_update", after("UPDATE")) },
		func() error { return cb.Delete().After("gorm:delete").Register(scope+":after_delete", after("DELETE")) },
		func() error { return cb.Row().After("gorm:row").Register(scope+":after_row", after("")) },
		func() error { return cb.Raw().After("gorm:raw").Register(scope+":after_raw", after("")) },
	}
	for _, register := range registrations {
		if err := register(); err != nil {
			return err
		}
	}
	return nil
}

// markStart returns a before callback that stores the statement start time
func markStart(scope string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		ctx := db.Statement.Context
		if ctx == nil {
			ctx = context.Background()
		}
		db.Statement.Context = context.WithValue(ctx, queryStartKey{scope}, time.Now())
	}
}

// elapsedSince returns how long the statement has run, if markStart saw it
func elapsedSince(db *gorm.DB, scope string) (time.Duration, bool) {
	if db.Statement.Context == nil {
		return 0, false
	}
	start, ok := db.Statement.Context.Value(queryStartKey{scope}).(time.Time)
	if !ok {
		return 0, false
	}
	return time.Since(start), true
}

// statementVerb picks the SQL verb for row and raw statements
func statementVerb(verb, sql string) string {
	if verb != "" {
		return verb
	}
	fields := strings.Fields(sql)
	if len(fields) == 0 {
		return "UNKNOWN"
	}
	switch first := strings.ToUpper(fields[0]); first {
	case "SELECT", "INSERT", "UPDATE", "DELETE", "WITH":
		return first
	default:
		return "OTHER"
	}
}
