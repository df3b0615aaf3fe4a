// Package gormrepo implements the repository interfaces on top of gorm. It
// backs the SQLite storage driver used for local runs and tests.
package gormrepo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/spec-kit/staff-schedule/internal/repository"
)

type txKey struct{}

// Store bundles the gorm-backed repositories over one database handle.
type Store struct {
	db *gorm.DB
}

// NewStore migrates the schema and returns the store.
func NewStore(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&userModel{}, &userRoleModel{}, &monthModel{}, &entryModel{}); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Users returns the account repository.
func (s *Store) Users() repository.UserRepository {
	return &userRepository{store: s}
}

// Months returns the month repository.
func (s *Store) Months() repository.MonthRepository {
	return &monthRepository{store: s}
}

// DayEntries returns the day entry repository.
func (s *Store) DayEntries() repository.DayEntryRepository {
	return &dayEntryRepository{store: s}
}

// WithinTransaction implements repository.Transactor.
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// Ping verifies the underlying connection.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) conn(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return s.db.WithContext(ctx)
}

func mapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return repository.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return repository.ErrDuplicate
	}
	return err
}
