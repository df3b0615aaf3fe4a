package gormrepo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm/clause"

	"github.com/spec-kit/staff-schedule/internal/domain"
	"github.com/spec-kit/staff-schedule/internal/repository"
)

type monthRepository struct {
	store *Store
}

func (r *monthRepository) GetByYearMonth(ctx context.Context, year, month int) (*domain.Month, error) {
	var model monthModel
	if err := r.store.conn(ctx).Where("year = ? AND month = ?", year, month).First(&model).Error; err != nil {
		return nil, mapError(err)
	}
	return model.toDomain(), nil
}

func (r *monthRepository) GetOrCreate(ctx context.Context, year, month int) (*domain.Month, error) {
	model := monthModel{ID: uuid.NewString(), Year: year, Month: month}
	err := r.store.conn(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "year"}, {Name: "month"}},
			DoNothing: true,
		}).
		Create(&model).Error
	if err != nil {
		return nil, mapError(err)
	}
	return r.GetByYearMonth(ctx, year, month)
}

// Lock relies on the dialect: SQLite drops the FOR UPDATE clause and
// serializes writers on its own.
func (r *monthRepository) Lock(ctx context.Context, id string) (*domain.Month, error) {
	var model monthModel
	err := r.store.conn(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&model).Error
	if err != nil {
		return nil, mapError(err)
	}
	return model.toDomain(), nil
}

func (r *monthRepository) SetApproval(ctx context.Context, id string, approved bool, approverID string) (*domain.Month, error) {
	var approver *string
	if approverID != "" {
		approver = &approverID
	}
	result := r.store.conn(ctx).Model(&monthModel{}).Where("id = ?", id).Updates(map[string]any{
		"approved":    approved,
		"approved_by": approver,
		"updated_at":  time.Now(),
	})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, repository.ErrNotFound
	}

	var model monthModel
	if err := r.store.conn(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		return nil, mapError(err)
	}
	return model.toDomain(), nil
}
