package gormrepo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/spec-kit/staff-schedule/internal/domain"
	"github.com/spec-kit/staff-schedule/internal/repository"
)

type userRepository struct {
	store *Store
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	model := userModel{
		ID:           user.ID,
		Username:     user.Username,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		Position:     user.Position,
	}
	return r.store.WithinTransaction(ctx, func(ctx context.Context) error {
		db := r.store.conn(ctx)
		if err := db.Omit("Roles").Create(&model).Error; err != nil {
			return mapError(err)
		}
		user.CreatedAt = model.CreatedAt
		user.UpdatedAt = model.UpdatedAt
		return replaceRoles(db, user.ID, user.Roles)
	})
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	return r.store.WithinTransaction(ctx, func(ctx context.Context) error {
		db := r.store.conn(ctx)
		result := db.Model(&userModel{}).Where("id = ?", user.ID).Updates(map[string]any{
			"username":      user.Username,
			"email":         user.Email,
			"password_hash": user.PasswordHash,
			"first_name":    user.FirstName,
			"last_name":     user.LastName,
			"position":      user.Position,
		})
		if result.Error != nil {
			return mapError(result.Error)
		}
		if result.RowsAffected == 0 {
			return repository.ErrNotFound
		}
		return replaceRoles(db, user.ID, user.Roles)
	})
}

func replaceRoles(db *gorm.DB, userID string, roles []domain.Role) error {
	if err := db.Where("user_id = ?", userID).Delete(&userRoleModel{}).Error; err != nil {
		return err
	}
	roles = domain.SortRoles(roles)
	if len(roles) == 0 {
		return nil
	}
	models := make([]userRoleModel, 0, len(roles))
	for _, role := range roles {
		models = append(models, userRoleModel{UserID: userID, Role: string(role)})
	}
	return db.Create(&models).Error
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	return r.store.WithinTransaction(ctx, func(ctx context.Context) error {
		db := r.store.conn(ctx)
		if err := db.Where("user_id = ?", id).Delete(&userRoleModel{}).Error; err != nil {
			return err
		}
		result := db.Where("id = ?", id).Delete(&userModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return repository.ErrNotFound
		}
		return nil
	})
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.fetchSingle(ctx, "id = ?", id)
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.fetchSingle(ctx, "username = ?", username)
}

func (r *userRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, "username = ?", username)
}

func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, "email = ?", email)
}

func (r *userRepository) List(ctx context.Context) ([]domain.User, error) {
	var models []userModel
	if err := r.store.conn(ctx).Preload("Roles").Order("username ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	users := make([]domain.User, 0, len(models))
	for i := range models {
		users = append(users, *models[i].toDomain())
	}
	return users, nil
}

func (r *userRepository) fetchSingle(ctx context.Context, cond string, arg any) (*domain.User, error) {
	var model userModel
	if err := r.store.conn(ctx).Preload("Roles").Where(cond, arg).First(&model).Error; err != nil {
		return nil, mapError(err)
	}
	return model.toDomain(), nil
}

func (r *userRepository) exists(ctx context.Context, cond string, arg any) (bool, error) {
	var count int64
	if err := r.store.conn(ctx).Model(&userModel{}).Where(cond, arg).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
