// Package store holds the tenant-scoped persistence for schedules,
// payments and ledger entries. Every method takes the agency id right after
// the context; rows of another agency behave as if they did not exist.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/Homesapp/HomesappNew-sub000/internal/apperr"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Stores bundles the stores bound to one *gorm.DB (a pool or a transaction).
type Stores struct {
	db *gorm.DB

	Schedules *ScheduleStore
	Payments  *PaymentStore
	Ledger    *LedgerStore
	Directory *Directory
}

func New(db *gorm.DB) *Stores {
	dir := &Directory{db: db}
	return &Stores{
		db:        db,
		Directory: dir,
		Schedules: &ScheduleStore{db: db, dir: dir},
		Payments:  &PaymentStore{db: db, dir: dir},
		Ledger:    &LedgerStore{db: db},
	}
}

// DB exposes the underlying handle.
func (s *Stores) DB() *gorm.DB { return s.db }

// Transaction runs fn against stores bound to a single database
// transaction. Any error returned by fn rolls everything back. Errors that
// are not part of the domain taxonomy are reported as ErrTransactionFailure.
func (s *Stores) Transaction(ctx context.Context, fn func(tx *Stores) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(New(tx))
	})
	if err == nil {
		return nil
	}
	if apperr.IsDomain(err) {
		return err
	}
	return fmt.Errorf("%w: %v", apperr.ErrTransactionFailure, err)
}

// lockForUpdate adds SELECT ... FOR UPDATE where the dialect has it.
// SQLite serializes writers on its own.
func lockForUpdate(db *gorm.DB) *gorm.DB {
	if db.Dialector.Name() == "postgres" {
		return db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return db
}

// Paginate is a GORM scope applying offset and limit for a 1-based page.
func Paginate(page, pageSize int) func(db *gorm.DB) *gorm.DB {
	page, pageSize = normalizePage(page, pageSize)
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset((page - 1) * pageSize).Limit(pageSize)
	}
}

func normalizePage(page, pageSize int) (int, int) {
	if page <= 0 {
		page = 1
	}
	switch {
	case pageSize > MaxPageSize:
		pageSize = MaxPageSize
	case pageSize <= 0:
		pageSize = DefaultPageSize
	}
	return page, pageSize
}

// notFound converts gorm.ErrRecordNotFound; other errors pass through wrapped.
func notFound(err error, kind, id string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(kind, id)
	}
	return fmt.Errorf("load %s: %w", kind, err)
}
