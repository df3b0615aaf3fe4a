package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/staff-schedule/internal/domain"
)

// DayEntryRepository persists per-user day statuses. Entries are only ever
// replaced wholesale: delete, then insert.
type DayEntryRepository interface {
	// ListByMonth returns entries ordered by user id, then date.
	ListByMonth(ctx context.Context, monthID string) ([]domain.DayEntry, error)
	// ListByUserAndMonth returns entries ordered by date.
	ListByUserAndMonth(ctx context.Context, userID, monthID string) ([]domain.DayEntry, error)
	DeleteByUserAndMonth(ctx context.Context, userID, monthID string) (int64, error)
	DeleteByMonth(ctx context.Context, monthID string) (int64, error)
	DeleteByUser(ctx context.Context, userID string) (int64, error)
	Insert(ctx context.Context, entries []domain.DayEntry) error
}

type dayEntryRepository struct {
	pool *pgxpool.Pool
}

// NewDayEntryRepository instantiates the repository.
func NewDayEntryRepository(pool *pgxpool.Pool) DayEntryRepository {
	return &dayEntryRepository{pool: pool}
}

func (r *dayEntryRepository) ListByMonth(ctx context.Context, monthID string) ([]domain.DayEntry, error) {
	const query = `
        SELECT id, user_id, schedule_month_id, entry_date, status
        FROM schedule_entries WHERE schedule_month_id=$1
        ORDER BY user_id, entry_date`
	return r.list(ctx, query, monthID)
}

func (r *dayEntryRepository) ListByUserAndMonth(ctx context.Context, userID, monthID string) ([]domain.DayEntry, error) {
	const query = `
        SELECT id, user_id, schedule_month_id, entry_date, status
        FROM schedule_entries WHERE user_id=$1 AND schedule_month_id=$2
        ORDER BY entry_date`
	return r.list(ctx, query, userID, monthID)
}

func (r *dayEntryRepository) DeleteByUserAndMonth(ctx context.Context, userID, monthID string) (int64, error) {
	cmd, err := conn(ctx, r.pool).Exec(ctx,
		`DELETE FROM schedule_entries WHERE user_id=$1 AND schedule_month_id=$2`, userID, monthID)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *dayEntryRepository) DeleteByMonth(ctx context.Context, monthID string) (int64, error) {
	cmd, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM schedule_entries WHERE schedule_month_id=$1`, monthID)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *dayEntryRepository) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	cmd, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM schedule_entries WHERE user_id=$1`, userID)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *dayEntryRepository) Insert(ctx context.Context, entries []domain.DayEntry) error {
	if len(entries) == 0 {
		return nil
	}
	rows := make([][]any, 0, len(entries))
	for i := range entries {
		if entries[i].ID == "" {
			entries[i].ID = uuid.NewString()
		}
		e := entries[i]
		rows = append(rows, []any{e.ID, e.UserID, e.MonthID, e.Date, string(e.Status)})
	}
	_, err := conn(ctx, r.pool).CopyFrom(ctx,
		pgx.Identifier{"schedule_entries"},
		[]string{"id", "user_id", "schedule_month_id", "entry_date", "status"},
		pgx.CopyFromRows(rows),
	)
	return mapPgError(err)
}

func (r *dayEntryRepository) list(ctx context.Context, query string, args ...any) ([]domain.DayEntry, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.DayEntry
	for rows.Next() {
		var (
			entry  domain.DayEntry
			status string
		)
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.MonthID, &entry.Date, &status); err != nil {
			return nil, err
		}
		entry.Status = domain.Status(status)
		result = append(result, entry)
	}
	return result, rows.Err()
}
