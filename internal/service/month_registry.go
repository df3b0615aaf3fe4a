package service

import (
	"context"
	"errors"

	"github.com/spec-kit/staff-schedule/internal/domain"
	"github.com/spec-kit/staff-schedule/internal/repository"
	apperrors "github.com/spec-kit/staff-schedule/pkg/util"
)

// MonthRegistry maps a calendar month to its single persisted Month record.
type MonthRegistry struct {
	months repository.MonthRepository
}

// NewMonthRegistry constructs the registry.
func NewMonthRegistry(months repository.MonthRepository) *MonthRegistry {
	return &MonthRegistry{months: months}
}

// GetOrCreate returns the Month for ym, creating an unapproved one on first
// touch. Concurrent first touches resolve to the same record.
func (r *MonthRegistry) GetOrCreate(ctx context.Context, ym domain.YearMonth) (*domain.Month, error) {
	return r.months.GetOrCreate(ctx, ym.Year, int(ym.Month))
}

// Find returns the Month for ym without creating it.
func (r *MonthRegistry) Find(ctx context.Context, ym domain.YearMonth) (*domain.Month, error) {
	month, err := r.months.GetByYearMonth(ctx, ym.Year, int(ym.Month))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewMonthNotFound(ym.String())
	}
	return month, err
}

// GetOrCreateLocked is GetOrCreate followed by a row lock held until the
// surrounding transaction ends. Writers to the same month queue here.
func (r *MonthRegistry) GetOrCreateLocked(ctx context.Context, ym domain.YearMonth) (*domain.Month, error) {
	month, err := r.GetOrCreate(ctx, ym)
	if err != nil {
		return nil, err
	}
	return r.months.Lock(ctx, month.ID)
}

// SetApproval stores the approved flag and the approver.
func (r *MonthRegistry) SetApproval(ctx context.Context, month *domain.Month, approved bool, approverID string) (*domain.Month, error) {
	updated, err := r.months.SetApproval(ctx, month.ID, approved, approverID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewMonthNotFound(month.YearMonth().String())
	}
	return updated, err
}
