package gormrepo

import (
	"time"

	"github.com/spec-kit/staff-schedule/internal/domain"
)

type userModel struct {
	ID           string          `gorm:"primaryKey;size:36"`
	Username     string          `gorm:"size:64;not null;uniqueIndex"`
	Email        string          `gorm:"size:255;not null;uniqueIndex"`
	PasswordHash string          `gorm:"not null"`
	FirstName    string          `gorm:"size:128;not null;default:''"`
	LastName     string          `gorm:"size:128;not null;default:''"`
	Position     string          `gorm:"size:128;not null;default:''"`
	Roles        []userRoleModel `gorm:"foreignKey:UserID"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (userModel) TableName() string {
	return "users"
}

type userRoleModel struct {
	UserID string `gorm:"primaryKey;size:36"`
	Role   string `gorm:"primaryKey;size:32"`
}

func (userRoleModel) TableName() string {
	return "user_roles"
}

type monthModel struct {
	ID         string  `gorm:"primaryKey;size:36"`
	Year       int     `gorm:"not null;uniqueIndex:idx_schedule_months_year_month,priority:1"`
	Month      int     `gorm:"not null;uniqueIndex:idx_schedule_months_year_month,priority:2;check:month >= 1 AND month <= 12"`
	Approved   bool    `gorm:"not null;default:false"`
	ApprovedBy *string `gorm:"size:36"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (monthModel) TableName() string {
	return "schedule_months"
}

type entryModel struct {
	ID        string    `gorm:"primaryKey;size:36"`
	UserID    string    `gorm:"size:36;not null;uniqueIndex:idx_entries_user_date,priority:1;uniqueIndex:idx_entries_month_user_date,priority:2"`
	MonthID   string    `gorm:"column:schedule_month_id;size:36;not null;uniqueIndex:idx_entries_month_user_date,priority:1"`
	EntryDate time.Time `gorm:"type:date;not null;uniqueIndex:idx_entries_user_date,priority:2;uniqueIndex:idx_entries_month_user_date,priority:3"`
	Status    string    `gorm:"size:16;not null"`
}

func (entryModel) TableName() string {
	return "schedule_entries"
}

func (m *userModel) toDomain() *domain.User {
	user := &domain.User{
		ID:           m.ID,
		Username:     m.Username,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		FirstName:    m.FirstName,
		LastName:     m.LastName,
		Position:     m.Position,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
	roles := make([]domain.Role, 0, len(m.Roles))
	for _, r := range m.Roles {
		roles = append(roles, domain.Role(r.Role))
	}
	user.Roles = domain.SortRoles(roles)
	return user
}

func (m *monthModel) toDomain() *domain.Month {
	return &domain.Month{
		ID:         m.ID,
		Year:       m.Year,
		Month:      m.Month,
		Approved:   m.Approved,
		ApprovedBy: m.ApprovedBy,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

func (m *entryModel) toDomain() domain.DayEntry {
	return domain.DayEntry{
		ID:      m.ID,
		UserID:  m.UserID,
		MonthID: m.MonthID,
		Date:    time.Date(m.EntryDate.Year(), m.EntryDate.Month(), m.EntryDate.Day(), 0, 0, 0, 0, time.UTC),
		Status:  domain.Status(m.Status),
	}
}
