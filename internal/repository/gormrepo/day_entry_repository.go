package gormrepo

import (
	"context"

	"github.com/google/uuid"

	"github.com/spec-kit/staff-schedule/internal/domain"
)

const insertBatchSize = 100

type dayEntryRepository struct {
	store *Store
}

func (r *dayEntryRepository) ListByMonth(ctx context.Context, monthID string) ([]domain.DayEntry, error) {
	var models []entryModel
	err := r.store.conn(ctx).
		Where("schedule_month_id = ?", monthID).
		Order("user_id ASC, entry_date ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return toEntries(models), nil
}

func (r *dayEntryRepository) ListByUserAndMonth(ctx context.Context, userID, monthID string) ([]domain.DayEntry, error) {
	var models []entryModel
	err := r.store.conn(ctx).
		Where("user_id = ? AND schedule_month_id = ?", userID, monthID).
		Order("entry_date ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return toEntries(models), nil
}

func (r *dayEntryRepository) DeleteByUserAndMonth(ctx context.Context, userID, monthID string) (int64, error) {
	result := r.store.conn(ctx).
		Where("user_id = ? AND schedule_month_id = ?", userID, monthID).
		Delete(&entryModel{})
	return result.RowsAffected, result.Error
}

func (r *dayEntryRepository) DeleteByMonth(ctx context.Context, monthID string) (int64, error) {
	result := r.store.conn(ctx).Where("schedule_month_id = ?", monthID).Delete(&entryModel{})
	return result.RowsAffected, result.Error
}

func (r *dayEntryRepository) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	result := r.store.conn(ctx).Where("user_id = ?", userID).Delete(&entryModel{})
	return result.RowsAffected, result.Error
}

func (r *dayEntryRepository) Insert(ctx context.Context, entries []domain.DayEntry) error {
	if len(entries) == 0 {
		return nil
	}
	models := make([]entryModel, 0, len(entries))
	for i := range entries {
		if entries[i].ID == "" {
			entries[i].ID = uuid.NewString()
		}
		e := entries[i]
		models = append(models, entryModel{
			ID:        e.ID,
			UserID:    e.UserID,
			MonthID:   e.MonthID,
			EntryDate: e.Date,
			Status:    string(e.Status),
		})
	}
	return mapError(r.store.conn(ctx).CreateInBatches(&models, insertBatchSize).Error)
}

func toEntries(models []entryModel) []domain.DayEntry {
	entries := make([]domain.DayEntry, 0, len(models))
	for i := range models {
		entries = append(entries, models[i].toDomain())
	}
	return entries
}
