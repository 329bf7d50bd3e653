package persistence

import (
	"context"
	"database/sql"

	"github.com/openledger/backend/internal/infrastructure/config"
	"gorm.io/gorm"
)

type txContextKey struct{}

// GormUnitOfWork implements ledger.UnitOfWork by carrying a *gorm.DB
// transaction in the context. Repositories called with that context run
// inside the transaction.
type GormUnitOfWork struct {
	db       *gorm.DB
	readOpts *sql.TxOptions
}

// UnitOfWorkOption configures a GormUnitOfWork
type UnitOfWorkOption func(*GormUnitOfWork)

// WithReadOptions sets the options used to begin read snapshots.
// sqlite ignores isolation levels, so leave them unset there.
func WithReadOptions(opts *sql.TxOptions) UnitOfWorkOption {
	return func(u *GormUnitOfWork) {
		u.readOpts = opts
	}
}

// NewGormUnitOfWork creates a new GormUnitOfWork
func NewGormUnitOfWork(db *gorm.DB, opts ...UnitOfWorkOption) *GormUnitOfWork {
	u := &GormUnitOfWork{db: db}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// NewGormUnitOfWorkForDatabase picks read options suited to the database driver
func NewGormUnitOfWorkForDatabase(d *Database) *GormUnitOfWork {
	if d.Driver() == config.DriverSQLite {
		return NewGormUnitOfWork(d.DB)
	}
	return NewGormUnitOfWork(d.DB, WithReadOptions(&sql.TxOptions{
		Isolation: sql.LevelRepeatableRead,
		ReadOnly:  true,
	}))
}

// Do runs fn in a read-write transaction. A nested call joins the
// transaction already carried by ctx.
func (u *GormUnitOfWork) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := txFromContext(ctx); ok {
		return fn(ctx)
	}
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txContextKey{}, tx))
	})
}

// Read runs fn against one consistent snapshot
func (u *GormUnitOfWork) Read(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := txFromContext(ctx); ok {
		return fn(ctx)
	}
	var opts []*sql.TxOptions
	if u.readOpts != nil {
		opts = append(opts, u.readOpts)
	}
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txContextKey{}, tx))
	}, opts...)
}

func txFromContext(ctx context.Context) (*gorm.DB, bool) {
	tx, ok := ctx.Value(txContextKey{}).(*gorm.DB)
	return tx, ok && tx != nil
}

// gormRepository is embedded by every ledger repository
type gormRepository struct {
	db *gorm.DB
}

// conn returns the transaction carried by ctx, or the base connection
func (r gormRepository) conn(ctx context.Context) *gorm.DB {
	if tx, ok := txFromContext(ctx); ok {
		return tx.WithContext(ctx)
	}
	return r.db.WithContext(ctx)
}

// atomically runs fn in the ambient transaction or a fresh one
func (r gormRepository) atomically(ctx context.Context, fn func(db *gorm.DB) error) error {
	if tx, ok := txFromContext(ctx); ok {
		return fn(tx.WithContext(ctx))
	}
	return r.db.WithContext(ctx).Transaction(fn)
}
