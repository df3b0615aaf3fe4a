package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/staff-schedule/internal/domain"
)

// MonthRepository persists per-month scheduling state. At most one row exists
// per (year, month).
type MonthRepository interface {
	GetByYearMonth(ctx context.Context, year, month int) (*domain.Month, error)
	// GetOrCreate returns the row for (year, month), inserting an unapproved
	// one if none exists. Concurrent callers observe the same row.
	GetOrCreate(ctx context.Context, year, month int) (*domain.Month, error)
	// Lock re-reads the month holding a row lock until the surrounding
	// transaction ends.
	Lock(ctx context.Context, id string) (*domain.Month, error)
	SetApproval(ctx context.Context, id string, approved bool, approverID string) (*domain.Month, error)
}

type monthRepository struct {
	pool *pgxpool.Pool
}

// NewMonthRepository instantiates the repository.
func NewMonthRepository(pool *pgxpool.Pool) MonthRepository {
	return &monthRepository{pool: pool}
}

const monthColumns = `id, year, month, approved, approved_by, created_at, updated_at`

func (r *monthRepository) GetByYearMonth(ctx context.Context, year, month int) (*domain.Month, error) {
	const query = `SELECT ` + monthColumns + ` FROM schedule_months WHERE year=$1 AND month=$2`
	return r.fetchSingle(ctx, query, year, month)
}

func (r *monthRepository) GetOrCreate(ctx context.Context, year, month int) (*domain.Month, error) {
	const insert = `
        INSERT INTO schedule_months (id, year, month, approved)
        VALUES ($1, $2, $3, FALSE)
        ON CONFLICT (year, month) DO NOTHING`

	if _, err := conn(ctx, r.pool).Exec(ctx, insert, uuid.NewString(), year, month); err != nil {
		return nil, mapPgError(err)
	}
	return r.GetByYearMonth(ctx, year, month)
}

func (r *monthRepository) Lock(ctx context.Context, id string) (*domain.Month, error) {
	const query = `SELECT ` + monthColumns + ` FROM schedule_months WHERE id=$1 FOR UPDATE`
	return r.fetchSingle(ctx, query, id)
}

func (r *monthRepository) SetApproval(ctx context.Context, id string, approved bool, approverID string) (*domain.Month, error) {
	const query = `
        UPDATE schedule_months SET approved=$1, approved_by=$2, updated_at=NOW()
        WHERE id=$3
        RETURNING ` + monthColumns

	var approver *string
	if approverID != "" {
		approver = &approverID
	}
	return r.fetchSingle(ctx, query, approved, approver, id)
}

func (r *monthRepository) fetchSingle(ctx context.Context, query string, args ...any) (*domain.Month, error) {
	var month domain.Month
	if err := conn(ctx, r.pool).QueryRow(ctx, query, args...).Scan(
		&month.ID,
		&month.Year,
		&month.Month,
		&month.Approved,
		&month.ApprovedBy,
		&month.CreatedAt,
		&month.UpdatedAt,
	); err != nil {
		return nil, mapPgError(err)
	}
	return &month, nil
}
